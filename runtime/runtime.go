package runtime

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/lang"
	"github.com/sergev/lox/parser"
	"github.com/sergev/lox/resolver"
)

// NewInterpreter constructs an interpreter with the standard runtime installed.
func NewInterpreter(opts ...lang.Option) *lang.Interpreter {
	in := lang.NewInterpreter(opts...)
	if err := installPrimitives(in); err != nil {
		panic(fmt.Errorf("runtime bootstrap failed: %w", err))
	}
	if err := installLibrary(in); err != nil {
		panic(fmt.Errorf("runtime bootstrap failed: %w", err))
	}
	return in
}

// SetArgv exposes the command-line arguments as the global array argv.
func SetArgv(in *lang.Interpreter, args []string) error {
	values := make([]lang.Value, len(args))
	for i, arg := range args {
		values[i] = lang.StringValue(arg)
	}
	return in.Globals().RegisterValue("argv", lang.ArrayValue(values), false)
}

func installLibrary(in *lang.Interpreter) error {
	for _, src := range preludeSources {
		if _, err := EvaluateString(in, src); err != nil {
			return err
		}
	}
	return nil
}

// Compile scans, parses and resolves src against in. Syntax failures are
// returned as a *parser.Error and resolution failures as a diag.List;
// warnings are returned either way.
func Compile(in *lang.Interpreter, src string) ([]parser.Stmt, []*diag.Diagnostic, error) {
	stmts, err := parser.ParseString(src)
	if err != nil {
		return nil, nil, err
	}
	errs, warnings := resolver.Resolve(stmts, in)
	if len(errs) != 0 {
		return nil, warnings, diag.List(errs)
	}
	return stmts, warnings, nil
}

// EvaluateString compiles and runs src, returning any resolver warnings.
func EvaluateString(in *lang.Interpreter, src string) ([]*diag.Diagnostic, error) {
	stmts, warnings, err := Compile(in, src)
	if err != nil {
		return warnings, err
	}
	return warnings, in.Interpret(stmts)
}

// EvaluateReader consumes all source from the reader and runs it.
func EvaluateReader(in *lang.Interpreter, r io.Reader) ([]*diag.Diagnostic, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return EvaluateString(in, string(data))
}

// EvaluateFile loads and executes a script, allowing a #! first line.
func EvaluateFile(in *lang.Interpreter, path string) ([]*diag.Diagnostic, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return nil, err
	}
	return EvaluateReader(in, bytes.NewReader(data))
}

// readFileSkippingShebang blanks out a leading "#!" line. The newline is
// kept so diagnostics still report the file's own line numbers.
func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return data[idx:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// Diagnostics flattens any pipeline error into individual diagnostics.
func Diagnostics(err error) []*diag.Diagnostic {
	if err == nil {
		return nil
	}
	if perr, ok := err.(*parser.Error); ok {
		return perr.Diagnostics()
	}
	if list, ok := err.(diag.List); ok {
		return list
	}
	return []*diag.Diagnostic{lang.AsDiagnostic(err)}
}
