package base

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotConnected is returned by managers used before Connect.
	ErrNotConnected = errors.New("IMAP client is not connected")
	// ErrUnsupported marks a capability the server does not offer. Callers
	// treat it as a signal to fall back, not as a failure.
	ErrUnsupported = errors.New("capability not supported by server")
	// ErrRejected marks a command the server answered with NO or BAD.
	ErrRejected = errors.New("command rejected by server")
)

// ValidationError reports user input that cannot become a query.
type ValidationError struct {
	Field string
	Value string
	Hint  string
}

func (e *ValidationError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q (%s)", e.Field, e.Value, e.Hint)
}

// ProtocolError wraps a failed exchange with the operation and mailbox.
type ProtocolError struct {
	Op      string
	Mailbox string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Mailbox == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Mailbox, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// PartialFailure records a mailbox that was skipped during a multi-mailbox
// operation. It never aborts the operation.
type PartialFailure struct {
	Mailbox string
	Err     error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("mailbox %q skipped: %v", e.Mailbox, e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }

// RejectedError carries the server's status text for a NO or BAD reply.
type RejectedError struct {
	Status string
	Info   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("server replied %s: %s", e.Status, e.Info)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
