package synth

import (
	"errors"
	"fmt"
)

// Kind classifies synthesis failures.
type Kind string

const (
	KindInvalidParameter Kind = "invalid_parameter"
	KindEncodingFailure  Kind = "encoding_failure"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrEncodingFailure  = errors.New("encoding failure")
)

// Error is a structured synthesis failure. It matches its kind's sentinel
// with errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindInvalidParameter:
		return target == ErrInvalidParameter
	case KindEncodingFailure:
		return target == ErrEncodingFailure
	}
	return false
}

func invalidParam(format string, args ...any) error {
	return &Error{Kind: KindInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of a synthesis error, or "" for anything else.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
