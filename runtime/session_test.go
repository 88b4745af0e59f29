package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sergev/lox/lang"
)

func newTestSession(cfg *Config) (*Session, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewSession(cfg, &errOut, lang.WithOutput(&out)), &out, &errOut
}

func TestSessionKeepsState(t *testing.T) {
	s, out, errOut := newTestSession(nil)
	for _, src := range []string{"let n = 40;", "fun add(x) { return n + x; }", "print add(2);"} {
		if err := s.Run("repl", src); err != nil {
			t.Fatalf("Run(%q): %v", src, err)
		}
	}
	if out.String() != "42\n" {
		t.Fatalf("output = %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected diagnostics %q", errOut.String())
	}
}

func TestSessionReportsRuntimeError(t *testing.T) {
	s, out, errOut := newTestSession(nil)
	err := s.Run("prog.lox", "print 1;\nprint y;\nprint 2;")
	if err == nil {
		t.Fatalf("expected error")
	}
	if IsStaticError(err) {
		t.Fatalf("runtime failure classified as static: %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("output = %q", out.String())
	}
	report := errOut.String()
	for _, want := range []string{"prog.lox:2:7: ReferenceError", "undefined variable 'y'", "print y;", "^"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report %q does not contain %q", report, want)
		}
	}

	// The session stays usable after a failure.
	if err := s.Run("repl", "print 3;"); err != nil {
		t.Fatalf("Run after error: %v", err)
	}
}

func TestSessionReportsEverySyntaxError(t *testing.T) {
	s, out, errOut := newTestSession(nil)
	err := s.Run("prog.lox", "let = 1;\nprint 1;\nprint ;")
	if !IsStaticError(err) {
		t.Fatalf("expected static error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("program ran: %q", out.String())
	}
	if got := strings.Count(errOut.String(), "SyntaxError"); got != 2 {
		t.Fatalf("expected 2 syntax errors, got %d in %q", got, errOut.String())
	}
}

func TestSessionWarnings(t *testing.T) {
	src := "fun f() {\n\tlet unused = 1;\n\treturn 1;\n\tprint 2;\n}\nprint f();"

	s, out, errOut := newTestSession(nil)
	if err := s.Run("w.lox", src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("warnings must not block execution, output = %q", out.String())
	}
	report := errOut.String()
	if !strings.Contains(report, "Warning(UnusedVariable)") || !strings.Contains(report, "Warning(DeadCode)") {
		t.Fatalf("missing warnings in %q", report)
	}

	off := false
	quiet, out, errOut := newTestSession(&Config{Warnings: &off})
	if err := quiet.Run("w.lox", src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "1\n" || errOut.Len() != 0 {
		t.Fatalf("output %q, diagnostics %q", out.String(), errOut.String())
	}
}

func TestSessionDumpAST(t *testing.T) {
	s, out, errOut := newTestSession(nil)
	s.DumpAST = true
	if err := s.Run("repl", "print 1 + 2;"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if errOut.String() != "(print (+ 1 2))\n" {
		t.Fatalf("ast = %q", errOut.String())
	}
	if out.String() != "3\n" {
		t.Fatalf("output = %q", out.String())
	}
}
