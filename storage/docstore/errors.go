package docstore

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the error kinds the hosted store surfaces. The set is
// closed; anything else the adapter cannot classify stays KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermissionDenied
	// KindFailedPrecondition signals a filter+sort query with no supporting
	// composite index.
	KindFailedPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindPermissionDenied:
		return "permission-denied"
	case KindFailedPrecondition:
		return "failed-precondition"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Op   string // e.g. "submissions.Query"
	Err  error
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func kindOf(err error) Kind {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool           { return kindOf(err) == KindNotFound }
func IsPermissionDenied(err error) bool   { return kindOf(err) == KindPermissionDenied }
func IsFailedPrecondition(err error) bool { return kindOf(err) == KindFailedPrecondition }
