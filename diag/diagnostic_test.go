package diag

import (
	"errors"
	"testing"
)

func TestDiagnosticError(t *testing.T) {
	tests := []struct {
		name string
		d    *Diagnostic
		want string
	}{
		{
			name: "Located",
			d:    New(KindSyntax, Pos{Line: 3, Column: 7}, "}", "expected expression"),
			want: "SyntaxError at 3:7 near '}': expected expression",
		},
		{
			name: "LineOnly",
			d:    New(KindRuntime, Pos{Line: 2}, "", "division by zero"),
			want: "RuntimeError at 2: division by zero",
		},
		{
			name: "Unlocated",
			d:    New(KindSystem, Pos{}, "", "disk full"),
			want: "SystemError: disk full",
		},
		{
			name: "Warning",
			d:    NewWarning(WarningUnusedVariable, Pos{Line: 1, Column: 5}, "x", "local '%s' is declared but never used", "x"),
			want: "Warning(UnusedVariable) at 1:5 near 'x': local 'x' is declared but never used",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.d.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsWarning(t *testing.T) {
	if New(KindType, Pos{}, "", "x").IsWarning() {
		t.Fatalf("TypeError reported as warning")
	}
	if !NewWarning(WarningDeadCode, Pos{}, "", "x").IsWarning() {
		t.Fatalf("DeadCode not reported as warning")
	}
	var d *Diagnostic
	if d.IsWarning() {
		t.Fatalf("nil diagnostic reported as warning")
	}
}

func TestListError(t *testing.T) {
	var empty List
	if empty.Err() != nil {
		t.Fatalf("empty list should yield nil error")
	}

	a := New(KindLexer, Pos{Line: 1, Column: 1}, "@", "unexpected character")
	b := New(KindSyntax, Pos{Line: 2, Column: 1}, "", "expected ';'")
	err := List{a, b}.Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	want := a.Error() + "\n" + b.Error()
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	var list List
	if !errors.As(err, &list) || len(list) != 2 {
		t.Fatalf("errors.As failed on %T", err)
	}
}

func TestListIncomplete(t *testing.T) {
	open := New(KindSyntax, Pos{Line: 1}, "", "expected '}'")
	open.Incomplete = true
	other := New(KindSyntax, Pos{Line: 1}, "", "expected expression")

	if (List{}).Incomplete() {
		t.Fatalf("empty list is not incomplete")
	}
	if !(List{open}).Incomplete() {
		t.Fatalf("single incomplete diagnostic should mark the list incomplete")
	}
	if (List{open, other}).Incomplete() {
		t.Fatalf("a hard error makes the list complete")
	}
}
