package sessionmanager

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/imap/imaptext"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/responses"
)

// rawCollector renders untagged replies back into protocol text so callers
// can parse extension responses the client library does not model.
type rawCollector struct {
	buf bytes.Buffer
}

func (r *rawCollector) Handle(resp imap.Resp) error {
	switch resp := resp.(type) {
	case *imap.DataResp:
		// Message-number responses (EXISTS, EXPUNGE, FETCH) stay with the client.
		if len(resp.Fields) > 0 {
			if _, err := imap.ParseNumber(resp.Fields[0]); err == nil {
				return responses.ErrUnhandled
			}
		}
		r.line("* " + formatFields(resp.Fields))
		return nil
	case *imap.StatusResp:
		if resp.Tag != "*" {
			return responses.ErrUnhandled
		}
		r.line(strings.TrimSpace("* " + string(resp.Type) + " " + resp.Info))
		return nil
	}
	return responses.ErrUnhandled
}

func (r *rawCollector) tagged(status *imap.StatusResp) {
	if status == nil {
		return
	}
	tag := status.Tag
	if tag == "" {
		tag = "A"
	}
	r.line(strings.TrimSpace(tag + " " + string(status.Type) + " " + status.Info))
}

func (r *rawCollector) line(s string) {
	r.buf.WriteString(s)
	r.buf.WriteString("\r\n")
}

func (r *rawCollector) Bytes() []byte {
	return r.buf.Bytes()
}

func formatFields(fields []interface{}) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, formatField(f))
	}
	return strings.Join(parts, " ")
}

func formatField(f interface{}) string {
	switch v := f.(type) {
	case nil:
		return "NIL"
	case imap.RawString:
		return string(v)
	case string:
		if needsQuote(v) {
			return imaptext.Quote(v)
		}
		return v
	case []interface{}:
		return "(" + formatFields(v) + ")"
	case imap.Literal:
		b, _ := io.ReadAll(v)
		return imaptext.Quote(string(b))
	default:
		return fmt.Sprint(v)
	}
}

func needsQuote(s string) bool {
	return s == "" || strings.ContainsAny(s, " ()\"\\{")
}
