package lang

import (
	"errors"
	"fmt"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/parser"
)

// RuntimeError is a failure raised while evaluating a program.
type RuntimeError struct {
	Kind    diag.Kind
	Token   parser.Token
	Message string
}

// NewError builds a runtime error without a location. Natives return these;
// the interpreter attaches the call site.
func NewError(kind diag.Kind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func newErrorAt(kind diag.Kind, tok parser.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Token:   tok,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic().Error()
}

// Diagnostic converts e into the structured diagnostic form.
func (e *RuntimeError) Diagnostic() *diag.Diagnostic {
	return diag.New(e.Kind, e.Token.Pos.Diag(), e.Token.Lexeme, "%s", e.Message)
}

func (e *RuntimeError) located() bool {
	return e.Token.Pos.Line > 0
}

// atCallSite returns err as a located RuntimeError. Unlocated runtime
// errors take tok; other errors become RuntimeErrors mentioning name.
func atCallSite(err error, tok parser.Token, name string) error {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		if rerr.located() {
			return rerr
		}
		located := *rerr
		located.Token = tok
		return &located
	}
	return newErrorAt(diag.KindRuntime, tok, "%s: %v", name, err)
}

// AsDiagnostic extracts a diagnostic from any error produced by the
// interpreter; unknown errors become System diagnostics.
func AsDiagnostic(err error) *diag.Diagnostic {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr.Diagnostic()
	}
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		return d
	}
	return diag.New(diag.KindSystem, diag.Pos{}, "", "%v", err)
}
