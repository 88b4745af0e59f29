package runtime

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/lang"
)

func evalScript(t *testing.T, src string, opts ...lang.Option) (string, error) {
	t.Helper()
	var out bytes.Buffer
	in := NewInterpreter(append([]lang.Option{lang.WithOutput(&out)}, opts...)...)
	_, err := EvaluateString(in, src)
	return out.String(), err
}

func mustEval(t *testing.T, src string, opts ...lang.Option) string {
	t.Helper()
	out, err := evalScript(t, src, opts...)
	if err != nil {
		t.Fatalf("EvaluateString(%q) error: %v", src, err)
	}
	return out
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"LenArray", "print len([1, 2, 3]);", "3"},
		{"LenString", `print len("héllo");`, "5"},
		{"StrNumber", "print str(2.5) + str(1);", "2.51"},
		{"StrArray", `print str([1, "a", none]);`, `[1, "a", none]`},
		{"NumString", `print num(" 12.5 ") + 1;`, "13.5"},
		{"NumBool", "print num(true) + num(false);", "1"},
		{"TypeNames", `print type(1) + type("s") + type(true) + type(none);`, "numberstringboolnone"},
		{"TypeCallables", "class A {} print type(A) + type(A()) + type(clock) + type([]);", "classinstancefunctionarray"},
		{"TypeMath", "print type(math);", "math"},
		{"PushReturnsLength", "let a = []; print push(a, 1); print push(a, 2); print a;", "1\n2\n[1, 2]"},
		{"Pop", "let a = [1, 2]; print pop(a); print a;", "2\n[1]"},
		{"CopyIsShallow", "let a = [1, 2]; let b = copy(a); push(b, 3); print len(a); print len(b);", "2\n3"},
		{"Clock", "print clock() > 0;", "true"},
		{"RandomRange", "let r = random(); print r >= 0 and r < 1;", "true"},
		{"RandomSeed", "randomSeed(7); let a = random(); randomSeed(7); print a == random();", "true"},
		{"MathPi", "print math.pi > 3.14 and math.pi < 3.15;", "true"},
		{"MathFunctions", "print math.sqrt(16); print math.floor(2.7); print math.abs(-3);", "4\n2\n3"},
		{"NativeDisplay", "print clock; print math;", "<native fn clock>\n<native math>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mustEval(t, tc.src)
			if got != tc.want+"\n" {
				t.Fatalf("output = %q, want %q", got, tc.want+"\n")
			}
		})
	}
}

func TestPrimitiveErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    diag.Kind
		message string
	}{
		{"LenNumber", "len(1);", diag.KindType, "len expects an array or string, got number"},
		{"PushNotArray", `push("s", 1);`, diag.KindType, "push expects an array, got string"},
		{"PopEmpty", "pop([]);", diag.KindRuntime, "pop from empty array"},
		{"NumGarbage", `num("x");`, diag.KindRuntime, `num: cannot convert "x" to a number`},
		{"NumArray", "num([]);", diag.KindType, "num expects a number, bool or string, got array"},
		{"Error", `error("boom " + 1);`, diag.KindRuntime, "boom 1"},
		{"SqrtNegative", "math.sqrt(-1);", diag.KindRuntime, "sqrt of negative number -1"},
		{"SqrtString", `math.sqrt("4");`, diag.KindType, "sqrt expects a number, got string"},
		{"SeedFraction", "randomSeed(1.5);", diag.KindType, "randomSeed expects an integer, got number"},
		{"Arity", "len();", diag.KindRuntime, "len expected 1 arguments but got 0"},
		{"ProtectedNative", "len = 1;", diag.KindRuntime, "can't assign to native 'len'"},
		{"UnknownMathMember", "math.tan;", diag.KindRuntime, "undefined property 'tan'"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := evalScript(t, tc.src)
			if err == nil {
				t.Fatalf("expected error for %q", tc.src)
			}
			var rerr *lang.RuntimeError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *lang.RuntimeError, got %T (%v)", err, err)
			}
			if rerr.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v (%v)", rerr.Kind, tc.kind, err)
			}
			if !strings.Contains(rerr.Message, tc.message) {
				t.Fatalf("message %q does not contain %q", rerr.Message, tc.message)
			}
			if rerr.Token.Pos.Line != 1 {
				t.Fatalf("error not located on line 1: %v", err)
			}
		})
	}
}

func TestInputPrimitive(t *testing.T) {
	src := `
let a = input();
let b = input();
print a + "|" + b;
print input();
`
	got := mustEval(t, src, lang.WithInput(strings.NewReader("alpha\r\nbeta")))
	if want := "alpha|beta\nnone\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
