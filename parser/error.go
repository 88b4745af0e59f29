package parser

import (
	"errors"

	"github.com/sergev/lox/diag"
)

// Error represents a failed scan or parse with optional metadata.
type Error struct {
	Err        error
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Diagnostics returns the individual diagnostics carried by e.
func (e *Error) Diagnostics() []*diag.Diagnostic {
	var list diag.List
	if errors.As(e.Err, &list) {
		return list
	}
	var d *diag.Diagnostic
	if errors.As(e.Err, &d) {
		return []*diag.Diagnostic{d}
	}
	return nil
}

func newError(list diag.List) error {
	if len(list) == 0 {
		return nil
	}
	return &Error{
		Err:        list,
		Incomplete: list.Incomplete(),
	}
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
