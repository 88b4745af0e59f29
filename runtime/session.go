package runtime

import (
	"errors"
	"io"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/lang"
	"github.com/sergev/lox/parser"
	"github.com/sergev/lox/sexpr"
)

// Session runs successive chunks of source against one interpreter, so
// definitions from earlier inputs stay visible to later ones.
type Session struct {
	Interp *lang.Interpreter
	Config *Config

	// DumpAST prints each parsed program as s-expressions before running it.
	DumpAST bool

	errOut io.Writer
}

// NewSession creates a session whose diagnostics go to errOut.
func NewSession(cfg *Config, errOut io.Writer, opts ...lang.Option) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Session{
		Interp: NewInterpreter(opts...),
		Config: cfg,
		errOut: errOut,
	}
}

// Run executes src and reports every diagnostic it produced. Warnings are
// printed when enabled but never stop execution. The returned error is
// the one that ended the run, if any.
func (s *Session) Run(name, src string) error {
	stmts, warnings, err := Compile(s.Interp, src)
	f := diag.NewFormatter(name, src)
	if s.Config.ShowWarnings() {
		f.FormatAll(s.errOut, warnings)
	}
	if err != nil {
		f.FormatAll(s.errOut, Diagnostics(err))
		return err
	}
	s.Interp.Logger().Debug("run", "name", name, "statements", len(stmts), "warnings", len(warnings))
	if s.DumpAST {
		if err := sexpr.Fprint(s.errOut, stmts); err != nil {
			return err
		}
	}
	if err := s.Interp.Interpret(stmts); err != nil {
		f.Format(s.errOut, lang.AsDiagnostic(err))
		return err
	}
	return nil
}

// RunFile executes the script at path, allowing a #! first line.
func (s *Session) RunFile(path string) error {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return err
	}
	return s.Run(path, string(data))
}

// IsStaticError reports whether err was raised while scanning, parsing or
// resolving, before any statement ran.
func IsStaticError(err error) bool {
	var perr *parser.Error
	var list diag.List
	return errors.As(err, &perr) || errors.As(err, &list)
}
