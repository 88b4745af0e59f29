package diag

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic by the phase or rule that produced it.
type Kind int

const (
	KindLexer Kind = iota
	KindSyntax
	KindParse
	KindReference
	KindRuntime
	KindType
	KindSystem
	KindWarning
)

func (k Kind) String() string {
	switch k {
	case KindLexer:
		return "LexerError"
	case KindSyntax:
		return "SyntaxError"
	case KindParse:
		return "ParseError"
	case KindReference:
		return "ReferenceError"
	case KindRuntime:
		return "RuntimeError"
	case KindType:
		return "TypeError"
	case KindSystem:
		return "SystemError"
	case KindWarning:
		return "Warning"
	default:
		return "unknown"
	}
}

// WarningKind refines KindWarning diagnostics.
type WarningKind int

const (
	WarningNone WarningKind = iota
	WarningUnusedVariable
	WarningDeadCode
)

func (w WarningKind) String() string {
	switch w {
	case WarningUnusedVariable:
		return "UnusedVariable"
	case WarningDeadCode:
		return "DeadCode"
	default:
		return ""
	}
}

// Pos is a one-based source location. A zero Line means unknown.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Column > 0 {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%d", p.Line)
}

// IsValid reports whether the position carries location information.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Diagnostic is a single error or warning event produced by the pipeline.
type Diagnostic struct {
	Kind    Kind
	Warning WarningKind
	Message string
	Pos     Pos
	Lexeme  string // originating lexeme, if any

	// Incomplete marks errors caused by input ending too early
	// (unterminated string, open block); a REPL may ask for more lines.
	Incomplete bool
}

// New constructs an error diagnostic.
func New(kind Kind, pos Pos, lexeme, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Lexeme:  lexeme,
	}
}

// NewWarning constructs a warning diagnostic.
func NewWarning(w WarningKind, pos Pos, lexeme, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Kind:    KindWarning,
		Warning: w,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Lexeme:  lexeme,
	}
}

// IsWarning reports whether the diagnostic never blocks execution.
func (d *Diagnostic) IsWarning() bool {
	return d != nil && d.Kind == KindWarning
}

// Label returns the display name of the diagnostic category.
func (d *Diagnostic) Label() string {
	if d.Kind == KindWarning && d.Warning != WarningNone {
		return "Warning(" + d.Warning.String() + ")"
	}
	return d.Kind.String()
}

func (d *Diagnostic) Error() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(d.Label())
	if d.Pos.IsValid() {
		b.WriteString(" at ")
		b.WriteString(d.Pos.String())
	}
	if d.Lexeme != "" {
		fmt.Fprintf(&b, " near '%s'", d.Lexeme)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// List is a sequence of diagnostics usable as a single error.
type List []*Diagnostic

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	parts := make([]string, len(l))
	for i, d := range l {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n")
}

// Err returns l as an error, or nil when empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Incomplete reports whether every diagnostic in l was caused by
// input ending too early.
func (l List) Incomplete() bool {
	if len(l) == 0 {
		return false
	}
	for _, d := range l {
		if !d.Incomplete {
			return false
		}
	}
	return true
}
