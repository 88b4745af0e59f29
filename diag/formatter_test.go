package diag

import (
	"bytes"
	"strings"
	"testing"
)

func format(f *Formatter, d *Diagnostic) string {
	var buf bytes.Buffer
	f.Format(&buf, d)
	return buf.String()
}

func TestFormatterCaret(t *testing.T) {
	f := NewFormatter("prog.lox", "let a = 1;\nlet x = ab;\n")
	got := format(f, New(KindReference, Pos{Line: 2, Column: 9}, "ab", "undefined variable 'ab'"))
	want := "prog.lox:2:9: ReferenceError: undefined variable 'ab'\n" +
		"   2 | let x = ab;\n" +
		strings.Repeat(" ", 7+8) + "^^\n"
	if got != want {
		t.Fatalf("Format =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatterWideRunesAndTabs(t *testing.T) {
	f := NewFormatter("", "print \"日本\" + x;\n\ty;")

	got := format(f, New(KindType, Pos{Line: 1, Column: 14}, "x", "bad operand"))
	lines := strings.Split(got, "\n")
	if lines[0] != "line 1:14: TypeError: bad operand" {
		t.Fatalf("header = %q", lines[0])
	}
	if want := strings.Repeat(" ", 7+15) + "^"; lines[2] != want {
		t.Fatalf("caret line = %q, want %q", lines[2], want)
	}

	got = format(f, New(KindRuntime, Pos{Line: 2, Column: 2}, "y", "boom"))
	lines = strings.Split(got, "\n")
	if want := strings.Repeat(" ", 7) + "\t^"; lines[2] != want {
		t.Fatalf("caret line = %q, want %q", lines[2], want)
	}
}

func TestFormatterWithoutSource(t *testing.T) {
	f := NewFormatter("prog.lox", "print 1;")
	if got := format(f, New(KindSystem, Pos{}, "", "out of memory")); got != "SystemError: out of memory\n" {
		t.Fatalf("Format = %q", got)
	}
	if got := format(f, New(KindRuntime, Pos{Line: 9}, "", "lost")); got != "prog.lox:9: RuntimeError: lost\n" {
		t.Fatalf("Format = %q", got)
	}
	if got := format(f, New(KindRuntime, Pos{Line: 1}, "", "no column")); got != "prog.lox:1: RuntimeError: no column\n   1 | print 1;\n" {
		t.Fatalf("Format = %q", got)
	}
}

func TestFormatAll(t *testing.T) {
	f := NewFormatter("w.lox", "{ let x = 1; }")
	var buf bytes.Buffer
	f.FormatAll(&buf, []*Diagnostic{
		NewWarning(WarningUnusedVariable, Pos{Line: 1, Column: 7}, "x", "local 'x' is declared but never used"),
		NewWarning(WarningDeadCode, Pos{Line: 1, Column: 1}, "", "unreachable statement"),
	})
	out := buf.String()
	if strings.Count(out, "Warning(") != 2 {
		t.Fatalf("FormatAll output %q", out)
	}
	if !strings.Contains(out, "w.lox:1:7: Warning(UnusedVariable): local 'x'") {
		t.Fatalf("FormatAll output %q", out)
	}
}
