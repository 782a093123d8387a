package searches

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/pkg/errors"
)

// SortOutcome says whether server-side ordering was applied. Hard failures
// travel separately as an error.
type SortOutcome int

const (
	SortApplied SortOutcome = iota
	SortUnsupported
)

func (o SortOutcome) String() string {
	if o == SortApplied {
		return "applied"
	}
	return "unsupported"
}

// sortCommand asks for newest-first UIDs matching query.
func sortCommand(query string) string {
	return "UID SORT (REVERSE DATE) UTF-8 " + query
}

// parseSortResponse extracts UIDs from every "* SORT" line in server order.
// An untagged or tagged NO/BAD anywhere in the text is a protocol error.
func parseSortResponse(raw []byte) ([]uint32, error) {
	var uids []uint32

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "*" {
			if len(fields) < 2 {
				continue
			}
			switch strings.ToUpper(fields[1]) {
			case "SORT":
				for _, token := range fields[2:] {
					uid, err := strconv.ParseUint(token, 10, 32)
					if err != nil {
						return nil, errors.Errorf("malformed SORT response token %q", token)
					}
					uids = append(uids, uint32(uid))
				}
			case "NO", "BAD":
				return nil, errors.Errorf("server error in SORT response: %s", line)
			}
			continue
		}

		if len(fields) >= 2 {
			status := strings.ToUpper(fields[1])
			if status == "NO" || status == "BAD" {
				return nil, errors.Errorf("server rejected SORT: %s", line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read SORT response")
	}

	return uids, nil
}

// sortUIDs runs a server-side sort when the session supports it.
func sortUIDs(session base.Session, query string) ([]uint32, SortOutcome, error) {
	if !session.HasCapability(base.CapSort) {
		return nil, SortUnsupported, nil
	}

	raw, err := session.RawCommand(sortCommand(query))
	if err != nil {
		if errors.Is(err, base.ErrRejected) {
			return nil, SortUnsupported, nil
		}
		return nil, SortUnsupported, err
	}

	uids, err := parseSortResponse(raw)
	if err != nil {
		return nil, SortUnsupported, err
	}
	return uids, SortApplied, nil
}
