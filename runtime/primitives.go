package runtime

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/lang"
)

var (
	randomMu   sync.Mutex
	randomRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func installPrimitives(in *lang.Interpreter) error {
	env := in.Globals()
	var errs []error
	define := func(name string, arity int, fn lang.NativeFunc) {
		errs = append(errs, env.Register(name, lang.NewNativeFunction(name, arity, fn), true))
	}

	define("clock", 0, primClock)
	define("input", 0, primInput)
	define("len", 1, primLen)
	define("str", 1, primStr)
	define("num", 1, primNum)
	define("type", 1, primType)
	define("push", 2, primPush)
	define("pop", 1, primPop)
	define("copy", 1, primCopy)
	define("error", 1, primError)
	define("random", 0, primRandom)
	define("randomSeed", 1, primRandomSeed)

	errs = append(errs, env.RegisterValue("math", lang.NativeValue(newMathObject()), true))
	return errors.Join(errs...)
}

func primClock(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	return lang.NumberValue(float64(time.Now().UnixNano()) / 1e9), nil
}

// primInput reads one line without its terminator. End of input with
// nothing read yields none.
func primInput(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	line, err := in.Input().ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return lang.None, lang.NewError(diag.KindSystem, "input: %v", err)
		}
		if line == "" {
			return lang.None, nil
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return lang.StringValue(line), nil
}

func primLen(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	switch v := args[0]; v.Type {
	case lang.TypeArray:
		return lang.NumberValue(float64(len(v.Array().Elements))), nil
	case lang.TypeString:
		return lang.NumberValue(float64(utf8.RuneCountInString(v.Str()))), nil
	default:
		return lang.None, typeError("len", "an array or string", v)
	}
}

func primStr(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	return lang.StringValue(args[0].String()), nil
}

func primNum(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	switch v := args[0]; v.Type {
	case lang.TypeNumber:
		return v, nil
	case lang.TypeBool:
		if v.Bool() {
			return lang.NumberValue(1), nil
		}
		return lang.NumberValue(0), nil
	case lang.TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil {
			return lang.None, lang.NewError(diag.KindRuntime, "num: cannot convert %q to a number", v.Str())
		}
		return lang.NumberValue(f), nil
	default:
		return lang.None, typeError("num", "a number, bool or string", v)
	}
}

func primType(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	return lang.StringValue(args[0].TypeName()), nil
}

func primPush(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	arr := args[0].Array()
	if args[0].Type != lang.TypeArray || arr == nil {
		return lang.None, typeError("push", "an array", args[0])
	}
	arr.Elements = append(arr.Elements, args[1])
	return lang.NumberValue(float64(len(arr.Elements))), nil
}

func primPop(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	arr := args[0].Array()
	if args[0].Type != lang.TypeArray || arr == nil {
		return lang.None, typeError("pop", "an array", args[0])
	}
	n := len(arr.Elements)
	if n == 0 {
		return lang.None, lang.NewError(diag.KindRuntime, "pop from empty array")
	}
	last := arr.Elements[n-1]
	arr.Elements = arr.Elements[:n-1]
	return last, nil
}

func primCopy(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	return args[0].Clone(), nil
}

func primError(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	return lang.None, lang.NewError(diag.KindRuntime, "%s", args[0].String())
}

func primRandom(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	randomMu.Lock()
	defer randomMu.Unlock()
	return lang.NumberValue(randomRand.Float64()), nil
}

func primRandomSeed(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
	if !args[0].IsIntegral() {
		return lang.None, typeError("randomSeed", "an integer", args[0])
	}
	randomMu.Lock()
	randomRand.Seed(int64(args[0].Number()))
	randomMu.Unlock()
	return lang.None, nil
}

func typeError(name, expected string, got lang.Value) error {
	return lang.NewError(diag.KindType, "%s expects %s, got %s", name, expected, got.TypeName())
}

// mathObject is the read-only "math" namespace.
type mathObject struct {
	props map[string]lang.Value
}

func newMathObject() *mathObject {
	unary := func(name string, fn func(float64) (float64, error)) lang.Value {
		return lang.FunctionValue(lang.NewNativeFunction(name, 1, func(in *lang.Interpreter, args []lang.Value) (lang.Value, error) {
			if args[0].Type != lang.TypeNumber {
				return lang.None, typeError(name, "a number", args[0])
			}
			f, err := fn(args[0].Number())
			if err != nil {
				return lang.None, err
			}
			return lang.NumberValue(f), nil
		}))
	}
	return &mathObject{props: map[string]lang.Value{
		"pi": lang.NumberValue(math.Pi),
		"sqrt": unary("sqrt", func(f float64) (float64, error) {
			if f < 0 {
				return 0, lang.NewError(diag.KindRuntime, "sqrt of negative number %s", lang.NumberValue(f))
			}
			return math.Sqrt(f), nil
		}),
		"floor": unary("floor", func(f float64) (float64, error) { return math.Floor(f), nil }),
		"abs":   unary("abs", func(f float64) (float64, error) { return math.Abs(f), nil }),
	}}
}

func (m *mathObject) TypeName() string { return "math" }

func (m *mathObject) Property(name string) (lang.Value, bool) {
	v, ok := m.props[name]
	return v, ok
}
