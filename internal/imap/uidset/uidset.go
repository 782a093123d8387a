// Package uidset turns UID lists into IMAP sequence-set text.
package uidset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxChunkLen bounds a single range expression so the command line stays
// well under common server limits.
const MaxChunkLen = 4000

// Encode sorts and dedupes uids, collapses consecutive runs into a:b
// segments and splits the result at commas into chunks of at most
// MaxChunkLen characters.
func Encode(uids []uint32) []string {
	return EncodeLimit(uids, MaxChunkLen)
}

// EncodeLimit is Encode with an explicit chunk length.
func EncodeLimit(uids []uint32, limit int) []string {
	if len(uids) == 0 {
		return nil
	}

	sorted := make([]uint32, len(uids))
	copy(sorted, uids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	add := func(segment string) {
		if current.Len() > 0 && current.Len()+1+len(segment) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(',')
		}
		current.WriteString(segment)
	}

	start, end := sorted[0], sorted[0]
	for _, uid := range sorted[1:] {
		if uid == end {
			continue
		}
		if uid == end+1 {
			end = uid
			continue
		}
		add(segment(start, end))
		start, end = uid, uid
	}
	add(segment(start, end))
	flush()

	return chunks
}

func segment(start, end uint32) string {
	if start == end {
		return strconv.FormatUint(uint64(start), 10)
	}
	return strconv.FormatUint(uint64(start), 10) + ":" + strconv.FormatUint(uint64(end), 10)
}

// Decode expands a range expression such as "1:3,7" into ascending UIDs.
func Decode(expr string) ([]uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	seen := make(map[uint32]struct{})
	var out []uint32
	for _, part := range strings.Split(expr, ",") {
		lo, hi, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		for uid := lo; ; uid++ {
			if _, ok := seen[uid]; !ok {
				seen[uid] = struct{}{}
				out = append(out, uid)
			}
			if uid == hi {
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func parseSegment(part string) (uint32, uint32, error) {
	bounds := strings.SplitN(part, ":", 2)
	lo, err := parseUID(bounds[0])
	if err != nil {
		return 0, 0, err
	}
	if len(bounds) == 1 {
		return lo, lo, nil
	}
	hi, err := parseUID(bounds[1])
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

func parseUID(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid uid %q", s)
	}
	if n == 0 {
		return 0, errors.Errorf("invalid uid %q", s)
	}
	return uint32(n), nil
}
