package lang

import (
	"math"
	"strconv"
	"strings"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeNone ValueType = iota
	TypeUnset
	TypeNumber
	TypeString
	TypeBool
	TypeFunction
	TypeInstance
	TypeArray
	TypeNative
)

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Array is a mutable, shared sequence of values.
type Array struct {
	Elements []Value
}

// Object is a host value exposing read-only properties to scripts.
type Object interface {
	TypeName() string
	Property(name string) (Value, bool)
}

// None is the singleton absent value.
var None = Value{Type: TypeNone}

// Unset marks a declared variable that has not been assigned yet.
var Unset = Value{Type: TypeUnset}

// NumberValue constructs a number Value.
func NumberValue(f float64) Value {
	return Value{Type: TypeNumber, payload: f}
}

// StringValue constructs a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// FunctionValue wraps any callable, classes included.
func FunctionValue(fn Callable) Value {
	return Value{Type: TypeFunction, payload: fn}
}

// InstanceValue wraps a class instance.
func InstanceValue(inst *Instance) Value {
	return Value{Type: TypeInstance, payload: inst}
}

// ArrayValue constructs a new array holding elems.
func ArrayValue(elems []Value) Value {
	return Value{Type: TypeArray, payload: &Array{Elements: elems}}
}

// NativeValue wraps a host object.
func NativeValue(obj Object) Value {
	return Value{Type: TypeNative, payload: obj}
}

func (v Value) Number() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Callable() Callable {
	if c, ok := v.payload.(Callable); ok {
		return c
	}
	return nil
}

func (v Value) Instance() *Instance {
	if i, ok := v.payload.(*Instance); ok {
		return i
	}
	return nil
}

func (v Value) Array() *Array {
	if a, ok := v.payload.(*Array); ok {
		return a
	}
	return nil
}

func (v Value) Native() Object {
	if o, ok := v.payload.(Object); ok {
		return o
	}
	return nil
}

// IsTruthy reports the value's boolean meaning: only false and none are falsy.
func (v Value) IsTruthy() bool {
	switch v.Type {
	case TypeNone:
		return false
	case TypeBool:
		return v.Bool()
	default:
		return true
	}
}

// TypeName returns the user-facing name of the value's kind.
func (v Value) TypeName() string {
	switch v.Type {
	case TypeNone:
		return "none"
	case TypeUnset:
		return "unset"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeFunction:
		if _, ok := v.payload.(*Class); ok {
			return "class"
		}
		return "function"
	case TypeInstance:
		return "instance"
	case TypeArray:
		return "array"
	case TypeNative:
		if o := v.Native(); o != nil {
			return o.TypeName()
		}
		return "native"
	default:
		return "unknown"
	}
}

// String returns the display form used by print and string concatenation.
func (v Value) String() string {
	switch v.Type {
	case TypeNone:
		return "none"
	case TypeUnset:
		return "unset"
	case TypeNumber:
		return formatNumber(v.Number())
	case TypeString:
		return v.Str()
	case TypeBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case TypeFunction:
		switch fn := v.payload.(type) {
		case *Class:
			return "<class " + fn.Name() + ">"
		case *NativeFunction:
			return "<native fn " + fn.Name() + ">"
		case Callable:
			return "<fn " + fn.Name() + ">"
		}
		return "<fn>"
	case TypeInstance:
		return "<" + v.Instance().Class().Name() + " instance>"
	case TypeArray:
		return arrayToString(v.Array(), nil)
	case TypeNative:
		return "<native " + v.TypeName() + ">"
	default:
		return "<unknown>"
	}
}

// Repr is like String but quotes strings, for use inside containers.
func (v Value) Repr() string {
	if v.Type == TypeString {
		return strconv.Quote(v.Str())
	}
	return v.String()
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// arrayToString renders a. Arrays already being rendered further up the
// chain print as [...].
func arrayToString(a *Array, active map[*Array]bool) string {
	if a == nil {
		return "[]"
	}
	if active[a] {
		return "[...]"
	}
	if active == nil {
		active = make(map[*Array]bool)
	}
	active[a] = true
	defer delete(active, a)

	parts := make([]string, len(a.Elements))
	for i, elem := range a.Elements {
		if elem.Type == TypeArray {
			parts[i] = arrayToString(elem.Array(), active)
			continue
		}
		parts[i] = elem.Repr()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type arrayPair struct{ a, b *Array }

// Equal reports structural equality. Values of different kinds are never
// equal; arrays compare element-wise, while functions, instances and host
// objects compare by identity.
func (v Value) Equal(other Value) bool {
	return v.equal(other, nil)
}

func (v Value) equal(other Value, seen map[arrayPair]bool) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeNone, TypeUnset:
		return true
	case TypeNumber:
		return v.Number() == other.Number()
	case TypeString:
		return v.Str() == other.Str()
	case TypeBool:
		return v.Bool() == other.Bool()
	case TypeArray:
		return arraysEqual(v.Array(), other.Array(), seen)
	case TypeInstance:
		return v.Instance() == other.Instance()
	default:
		return v.payload == other.payload
	}
}

// arraysEqual compares element-wise. A pair already under comparison is
// assumed equal, so cyclic arrays with the same shape compare equal.
func arraysEqual(a, b *Array, seen map[arrayPair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || len(a.Elements) != len(b.Elements) {
		return false
	}
	key := arrayPair{a, b}
	if seen[key] {
		return true
	}
	if seen == nil {
		seen = make(map[arrayPair]bool)
	}
	seen[key] = true
	for i := range a.Elements {
		if !a.Elements[i].equal(b.Elements[i], seen) {
			return false
		}
	}
	return true
}

// Clone returns a copy of v. Arrays get a fresh element slice; every other
// kind is either immutable or a shared handle and is returned as is.
func (v Value) Clone() Value {
	if v.Type != TypeArray {
		return v
	}
	src := v.Array().Elements
	elems := make([]Value, len(src))
	copy(elems, src)
	return ArrayValue(elems)
}

// IsIntegral reports whether v is a number with no fractional part.
func (v Value) IsIntegral() bool {
	if v.Type != TypeNumber {
		return false
	}
	f := v.Number()
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}
