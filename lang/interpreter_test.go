package lang

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/parser"
	"github.com/sergev/lox/resolver"
)

// run parses, resolves and interprets src, returning printed output.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	stmts, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	var out bytes.Buffer
	in := NewInterpreter(WithOutput(&out))
	if errs, _ := resolver.Resolve(stmts, in); len(errs) != 0 {
		t.Fatalf("resolve: %v", diag.List(errs))
	}
	err = in.Interpret(stmts)
	return out.String(), err
}

func mustRun(t *testing.T, src string) string {
	t.Helper()
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	return out
}

func runtimeKind(t *testing.T, err error) diag.Kind {
	t.Helper()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %T (%v)", err, err)
	}
	return rerr.Kind
}

func TestInterpretExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"print 1 + 2 * 3;", "7"},
		{"print (1 + 2) * 3;", "9"},
		{"print 7 / 2;", "3.5"},
		{`print 1 + "a";`, "1a"},
		{`print "a" + 1;`, "a1"},
		{`print "n=" + none;`, "n=none"},
		{"print !false;", "true"},
		{"print -(3);", "-3"},
		{"print 1 < 2 and 2 <= 2;", "true"},
		{`print "10" > 9;`, "true"},
		{"print true > false;", "true"},
		{"print 1 == 1.0;", "true"},
		{`print 1 == "1";`, "false"},
		{"print [1, [2]] == [1, [2]];", "true"},
		{"print none == none;", "true"},
		{"print none or 3;", "3"},
		{`print false and undefinedName;`, "false"},
		{"print true ? 1 : 2;", "1"},
		{"print false ? 1 : true ? 2 : 3;", "2"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			if got := strings.TrimSpace(mustRun(t, tc.src)); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInterpretTypeErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.Kind
		msg  string
	}{
		{"print 1 + true;", diag.KindType, "operands of '+'"},
		{`print -"x";`, diag.KindType, "operand of '-' must be a number"},
		{"print !0;", diag.KindType, "operand of '!' must be a bool"},
		{`print "a" - 1;`, diag.KindType, "operands of '-' must be numbers"},
		{"print [1] < 2;", diag.KindType, "comparable as numbers"},
		{`print "abc" < 1;`, diag.KindType, "comparable as numbers"},
		{"print 1 ? 2 : 3;", diag.KindType, "condition of '?:' must be a bool"},
		{"print 1 / 0;", diag.KindRuntime, "division by zero"},
		{"print missing;", diag.KindReference, "undefined variable 'missing'"},
		{"missing = 1;", diag.KindReference, "undefined variable 'missing'"},
		{"let u; print u;", diag.KindReference, "used before being assigned"},
		{"let a = 1; let a = 2;", diag.KindReference, "already defined"},
		{"let s = \"x\"; s++;", diag.KindType, "operand of '++' must be a number"},
		{"1();", diag.KindRuntime, "can only call functions and classes"},
		{"fun f(a) {} f();", diag.KindRuntime, "f expected 1 arguments but got 0"},
		{"print 3.x;", diag.KindRuntime, "only instances have properties"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			_, err := run(t, tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if kind := runtimeKind(t, err); kind != tc.kind {
				t.Fatalf("expected %s, got %s (%v)", tc.kind, kind, err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected %q in %q", tc.msg, err.Error())
			}
		})
	}
}

func TestInterpretRuntimeErrorLocation(t *testing.T) {
	_, err := run(t, "let a = 1;\nprint a + true;")
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %v", err)
	}
	d := rerr.Diagnostic()
	if d.Pos.Line != 2 || d.Lexeme != "+" {
		t.Fatalf("expected error at '+' on line 2, got %v", d)
	}
}

func TestInterpretShadowingInitializer(t *testing.T) {
	out := mustRun(t, "let x = 1; { let x = x + 1; print x; } print x;")
	if out != "2\n1\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInterpretClosureCounter(t *testing.T) {
	src := `
fun makeCounter() {
	let count = 0;
	fun inc() {
		count++;
		return count;
	}
	return inc;
}
let counter = makeCounter();
print counter();
print counter();
print counter();
let other = makeCounter();
print other();
`
	if out := mustRun(t, src); out != "1\n2\n3\n1\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInterpretClosureSeesLaterMutation(t *testing.T) {
	src := `
fun outer() {
	let x = "before";
	let show = fun () { return x; };
	x = "after";
	return show;
}
print outer()();
`
	if out := mustRun(t, src); out != "after\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInterpretControlFlow(t *testing.T) {
	src := `
let sum = 0;
for (let i = 0; i < 10; i++) {
	if (i == 2) continue;
	if (i == 5) break;
	sum += i;
}
print sum;
let n = 0;
while (true) {
	n++;
	if (n < 3) { continue; }
	break;
}
print n;
fun find(limit) {
	for (let i = 0; ; i++) {
		while (true) {
			if (i * i > limit) return i;
			break;
		}
	}
}
print find(10);
`
	if out := mustRun(t, src); out != "8\n3\n4\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInterpretRecursion(t *testing.T) {
	src := `
fun fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2); }
print fib(15);
`
	if out := mustRun(t, src); out != "610\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInterpretStackOverflow(t *testing.T) {
	_, err := run(t, "fun f() { return f(); } f();")
	if err == nil || !strings.Contains(err.Error(), "stack overflow") {
		t.Fatalf("expected stack overflow, got %v", err)
	}
}

func TestInterpretLocalLambdaCallsItself(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "Block",
			src:  "{ let f = fun (n) { if (n == 0) return 0; return n + f(n - 1); }; print f(3); }",
			want: "6\n",
		},
		{
			name: "ShadowsGlobal",
			src: `
fun f(n) { return "global"; }
{
	let f = fun (n) { if (n == 0) return "local"; return f(n - 1); };
	print f(2);
}
print f(2);
`,
			want: "local\nglobal\n",
		},
		{
			name: "InsideFunction",
			src: `
fun countdown(n) {
	let loop = fun (i) { if (i == 0) return "done"; return loop(i - 1); };
	return loop(n);
}
print countdown(4);
`,
			want: "done\n",
		},
		{
			name: "InitializerStillSeesOuter",
			src:  `{ let x = "outer"; { let x = x + "!"; let g = fun () { return x; }; print g(); } }`,
			want: "outer!\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if out := mustRun(t, tc.src); out != tc.want {
				t.Fatalf("unexpected output %q, want %q", out, tc.want)
			}
		})
	}
}

func TestInterpretCompoundAssignment(t *testing.T) {
	src := `
let a = 10;
a -= 3;
a *= 2;
a /= 7;
print a;
let s = "ab";
s *= 3;
print s;
s += 1;
print s;
`
	if out := mustRun(t, src); out != "2\nababab\nababab1\n" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err := run(t, `let s = "x"; s *= -1;`)
	if err == nil || !strings.Contains(err.Error(), "non-negative integer") {
		t.Fatalf("expected repeat count error, got %v", err)
	}

	_, err = run(t, `let s = "0123456789"; s *= 2000000000;`)
	if err == nil || !strings.Contains(err.Error(), "string repeat result exceeds") {
		t.Fatalf("expected repeat length error, got %v", err)
	}
	if kind := runtimeKind(t, err); kind != diag.KindRuntime {
		t.Fatalf("expected %s, got %s", diag.KindRuntime, kind)
	}
}

func TestInterpretUpdateExpressions(t *testing.T) {
	src := `
let i = 5;
print i++;
print i;
print ++i;
print --i;
let a = [1, 2];
print a[0]++;
print ++a[-1];
print a;
`
	if out := mustRun(t, src); out != "5\n6\n7\n6\n1\n3\n[2, 3]\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInterpretClasses(t *testing.T) {
	src := `
class Counter {
	count = 0;
	label = "c";
	init(start) { this.count = start; }
	inc() { this.count++; return this; }
	get() { return this.label + this.count; }
}
let a = Counter(1);
let b = Counter(10);
a.inc().inc();
print a.get();
print b.get();
let m = b.get;
b.label = "b";
print m();
print a.init(0) == a;
print a.count;
`
	if out := mustRun(t, src); out != "c3\nc10\nb10\ntrue\n0\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInterpretClassWithoutInit(t *testing.T) {
	src := `
class Box { value = [1, 2]; }
let x = Box();
let y = Box();
x.value[0]++;
print x.value;
print y.value;
x.extra = "new";
print x.extra;
`
	if out := mustRun(t, src); out != "[2, 2]\n[1, 2]\nnew\n" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err := run(t, "class P {} P(1);")
	if err == nil || !strings.Contains(err.Error(), "P expected 0 arguments but got 1") {
		t.Fatalf("expected arity error, got %v", err)
	}
	_, err = run(t, "class P {} print P().nope;")
	if err == nil || !strings.Contains(err.Error(), "undefined property 'nope'") {
		t.Fatalf("expected undefined property error, got %v", err)
	}
}

func TestInterpretArrayIndexing(t *testing.T) {
	out := mustRun(t, "let a = [10, 20, 30]; print a[0]; print a[-1]; print a[-3];")
	if out != "10\n30\n10\n" {
		t.Fatalf("unexpected output %q", out)
	}

	tests := []struct {
		src  string
		kind diag.Kind
		msg  string
	}{
		{"[1, 2, 3][3];", diag.KindRuntime, "out of range"},
		{"[1, 2, 3][4];", diag.KindRuntime, "out of range"},
		{"[1, 2, 3][-4];", diag.KindRuntime, "out of range"},
		{"[1][0.5];", diag.KindType, "must be an integer"},
		{`"abc"[0];`, diag.KindType, "only arrays can be indexed"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			_, err := run(t, tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if kind := runtimeKind(t, err); kind != tc.kind {
				t.Fatalf("expected %s, got %s", tc.kind, kind)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected %q in %q", tc.msg, err.Error())
			}
		})
	}
}

func TestInterpretErrorAbortsRemainingStatements(t *testing.T) {
	out, err := run(t, "print 1; print 1 + true; print 2;")
	if err == nil {
		t.Fatalf("expected error")
	}
	if out != "1\n" {
		t.Fatalf("expected only the first print to run, got %q", out)
	}
}

func TestInterpretNativeErrorsGetCallSite(t *testing.T) {
	var out bytes.Buffer
	in := NewInterpreter(WithOutput(&out))
	fail := NewNativeFunction("fail", 0, func(*Interpreter, []Value) (Value, error) {
		return None, NewError(diag.KindSystem, "host unavailable")
	})
	if err := in.Globals().Register("fail", fail, true); err != nil {
		t.Fatalf("Register: %v", err)
	}
	stmts, err := parser.ParseString("\nfail();")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	resolver.Resolve(stmts, in)
	err = in.Interpret(stmts)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %v", err)
	}
	if rerr.Kind != diag.KindSystem || rerr.Token.Pos.Line != 2 {
		t.Fatalf("expected located SystemError on line 2, got %v", rerr)
	}

	stmts, _ = parser.ParseString("fail = 1;")
	resolver.Resolve(stmts, in)
	if err := in.Interpret(stmts); err == nil || !strings.Contains(err.Error(), "can't assign to native 'fail'") {
		t.Fatalf("expected protected binding error, got %v", err)
	}
}

func TestCallFunctionFromHost(t *testing.T) {
	var out bytes.Buffer
	in := NewInterpreter(WithOutput(&out))
	stmts, err := parser.ParseString("fun twice(x) { return x * 2; }")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	resolver.Resolve(stmts, in)
	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	fn, err := in.Globals().Get("twice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, err := in.CallFunction(fn, []Value{NumberValue(21)})
	if err != nil || got.Number() != 42 {
		t.Fatalf("CallFunction = %v, %v", got, err)
	}
	if _, err := in.CallFunction(NumberValue(1), nil); err == nil {
		t.Fatalf("expected error calling a number")
	}
}
