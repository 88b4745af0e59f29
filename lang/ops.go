package lang

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/parser"
)

func (in *Interpreter) evaluate(expr parser.Expr) (Value, error) {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		return literalValue(e.Value), nil

	case *parser.GroupingExpr:
		return in.evaluate(e.Expr)

	case *parser.UnaryExpr:
		operand, err := in.evaluate(e.Expr)
		if err != nil {
			return None, err
		}
		return unary(e.Op, operand)

	case *parser.BinaryExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return None, err
		}
		right, err := in.evaluate(e.Right)
		if err != nil {
			return None, err
		}
		return binary(e.Op, e.Op.Type, left, right)

	case *parser.LogicalExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return None, err
		}
		if e.Op.Type == parser.OpOr {
			if left.IsTruthy() {
				return left, nil
			}
		} else if !left.IsTruthy() {
			return left, nil
		}
		return in.evaluate(e.Right)

	case *parser.TernaryExpr:
		cond, err := in.evaluate(e.Cond)
		if err != nil {
			return None, err
		}
		if cond.Type != TypeBool {
			return None, newErrorAt(diag.KindType, parser.Token{Lexeme: "?", Pos: e.Pos()},
				"condition of '?:' must be a bool, got %s", cond.TypeName())
		}
		if cond.Bool() {
			return in.evaluate(e.Then)
		}
		return in.evaluate(e.Else)

	case *parser.VariableExpr:
		return in.lookupVariable(e.Name, e.ID)

	case *parser.AssignExpr:
		val, err := in.evaluate(e.Value)
		if err != nil {
			return None, err
		}
		if err := in.assignVariable(e.Name, e.ID, val); err != nil {
			return None, err
		}
		return val, nil

	case *parser.CompoundAssignExpr:
		current, err := in.lookupVariable(e.Name, e.ID)
		if err != nil {
			return None, err
		}
		rhs, err := in.evaluate(e.Value)
		if err != nil {
			return None, err
		}
		val, err := compound(e.Op, current, rhs)
		if err != nil {
			return None, err
		}
		if err := in.assignVariable(e.Name, e.ID, val); err != nil {
			return None, err
		}
		return val, nil

	case *parser.UpdateExpr:
		current, err := in.lookupVariable(e.Name, e.ID)
		if err != nil {
			return None, err
		}
		next, err := step(e.Op, current)
		if err != nil {
			return None, err
		}
		if err := in.assignVariable(e.Name, e.ID, next); err != nil {
			return None, err
		}
		return updateResult(e.Prefix, current, next), nil

	case *parser.UpdateIndexExpr:
		return in.evaluateUpdateIndex(e)

	case *parser.UpdateGetExpr:
		return in.evaluateUpdateGet(e)

	case *parser.CallExpr:
		return in.evaluateCall(e)

	case *parser.LambdaExpr:
		return FunctionValue(NewFunction("lambda", e.Params, e.Body, in.env, false)), nil

	case *parser.ArrayExpr:
		elems := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := in.evaluate(el)
			if err != nil {
				return None, err
			}
			elems = append(elems, v)
		}
		return ArrayValue(elems), nil

	case *parser.IndexExpr:
		arr, i, err := in.evaluateIndexTarget(e.Object, e.Index, e.Bracket)
		if err != nil {
			return None, err
		}
		return arr.Elements[i], nil

	case *parser.GetExpr:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return None, err
		}
		return getProperty(obj, e.Name)

	case *parser.SetExpr:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return None, err
		}
		inst := obj.Instance()
		if obj.Type != TypeInstance || inst == nil {
			return None, newErrorAt(diag.KindRuntime, e.Name, "only instances have fields, got %s", obj.TypeName())
		}
		val, err := in.evaluate(e.Value)
		if err != nil {
			return None, err
		}
		inst.Set(e.Name.Lexeme, val)
		return val, nil

	case *parser.ThisExpr:
		return in.lookupVariable(e.Keyword, e.ID)

	default:
		return None, fmt.Errorf("internal error: cannot evaluate %T", expr)
	}
}

func literalValue(v interface{}) Value {
	switch v := v.(type) {
	case float64:
		return NumberValue(v)
	case string:
		return StringValue(v)
	case bool:
		return BoolValue(v)
	default:
		return None
	}
}

func (in *Interpreter) lookupVariable(name parser.Token, id parser.NodeID) (Value, error) {
	var val Value
	if distance, ok := in.locals[id]; ok {
		val = in.env.GetAt(distance, name.Lexeme)
	} else {
		v, err := in.globals.Get(name.Lexeme)
		if err != nil {
			return None, newErrorAt(diag.KindReference, name, "undefined variable '%s'", name.Lexeme)
		}
		val = v
	}
	if val.Type == TypeUnset {
		return None, newErrorAt(diag.KindReference, name, "variable '%s' is used before being assigned", name.Lexeme)
	}
	return val, nil
}

func (in *Interpreter) assignVariable(name parser.Token, id parser.NodeID, val Value) error {
	if distance, ok := in.locals[id]; ok {
		in.env.MutateAt(distance, name.Lexeme, val)
		return nil
	}
	err := in.globals.Mutate(name.Lexeme, val)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProtected):
		return newErrorAt(diag.KindRuntime, name, "can't assign to native '%s'", name.Lexeme)
	default:
		return newErrorAt(diag.KindReference, name, "undefined variable '%s'", name.Lexeme)
	}
}

func (in *Interpreter) evaluateCall(e *parser.CallExpr) (Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return None, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := in.evaluate(a)
		if err != nil {
			return None, err
		}
		args = append(args, v)
	}

	callable := callee.Callable()
	if callee.Type != TypeFunction || callable == nil {
		return None, newErrorAt(diag.KindRuntime, e.Paren, "can only call functions and classes, got %s", callee.TypeName())
	}
	if callable.Arity() != len(args) {
		return None, newErrorAt(diag.KindRuntime, e.Paren, "%s expected %d arguments but got %d",
			callable.Name(), callable.Arity(), len(args))
	}
	result, err := in.call(callable, args)
	if err != nil {
		return None, atCallSite(err, e.Paren, callable.Name())
	}
	return result, nil
}

// evaluateIndexTarget evaluates an array and an index into it, returning
// the array and the normalized element position.
func (in *Interpreter) evaluateIndexTarget(objExpr, indexExpr parser.Expr, bracket parser.Token) (*Array, int, error) {
	obj, err := in.evaluate(objExpr)
	if err != nil {
		return nil, 0, err
	}
	idx, err := in.evaluate(indexExpr)
	if err != nil {
		return nil, 0, err
	}
	arr := obj.Array()
	if obj.Type != TypeArray || arr == nil {
		return nil, 0, newErrorAt(diag.KindType, bracket, "only arrays can be indexed, got %s", obj.TypeName())
	}
	if !idx.IsIntegral() {
		return nil, 0, newErrorAt(diag.KindType, bracket, "array index must be an integer, got %s", idx.Repr())
	}
	i, ok := normalizeIndex(idx.Number(), len(arr.Elements))
	if !ok {
		return nil, 0, newErrorAt(diag.KindRuntime, bracket, "index %s out of range for array of length %d",
			idx.String(), len(arr.Elements))
	}
	return arr, i, nil
}

// normalizeIndex maps a possibly negative index onto [0, length).
func normalizeIndex(f float64, length int) (int, bool) {
	if f < 0 {
		f += float64(length)
	}
	if f < 0 || f >= float64(length) {
		return 0, false
	}
	return int(f), true
}

func (in *Interpreter) evaluateUpdateIndex(e *parser.UpdateIndexExpr) (Value, error) {
	arr, i, err := in.evaluateIndexTarget(e.Object, e.Index, e.Bracket)
	if err != nil {
		return None, err
	}
	current := arr.Elements[i]
	next, err := step(e.Op, current)
	if err != nil {
		return None, err
	}
	arr.Elements[i] = next
	return updateResult(e.Prefix, current, next), nil
}

func (in *Interpreter) evaluateUpdateGet(e *parser.UpdateGetExpr) (Value, error) {
	obj, err := in.evaluate(e.Object)
	if err != nil {
		return None, err
	}
	inst := obj.Instance()
	if obj.Type != TypeInstance || inst == nil {
		return None, newErrorAt(diag.KindRuntime, e.Name, "only instances have fields, got %s", obj.TypeName())
	}
	current, ok := inst.Get(e.Name.Lexeme)
	if !ok {
		return None, newErrorAt(diag.KindRuntime, e.Name, "undefined property '%s'", e.Name.Lexeme)
	}
	next, err := step(e.Op, current)
	if err != nil {
		return None, err
	}
	inst.Set(e.Name.Lexeme, next)
	return updateResult(e.Prefix, current, next), nil
}

func getProperty(obj Value, name parser.Token) (Value, error) {
	switch obj.Type {
	case TypeInstance:
		if v, ok := obj.Instance().Get(name.Lexeme); ok {
			return v, nil
		}
	case TypeNative:
		if o := obj.Native(); o != nil {
			if v, ok := o.Property(name.Lexeme); ok {
				return v, nil
			}
		}
	default:
		return None, newErrorAt(diag.KindRuntime, name, "only instances have properties, got %s", obj.TypeName())
	}
	return None, newErrorAt(diag.KindRuntime, name, "undefined property '%s'", name.Lexeme)
}

func unary(op parser.Token, operand Value) (Value, error) {
	switch op.Type {
	case parser.OpSub:
		if operand.Type != TypeNumber {
			return None, newErrorAt(diag.KindType, op, "operand of '-' must be a number, got %s", operand.TypeName())
		}
		return NumberValue(-operand.Number()), nil
	case parser.OpNot:
		if operand.Type != TypeBool {
			return None, newErrorAt(diag.KindType, op, "operand of '!' must be a bool, got %s", operand.TypeName())
		}
		return BoolValue(!operand.Bool()), nil
	default:
		return None, newErrorAt(diag.KindRuntime, op, "unknown unary operator '%s'", op.Lexeme)
	}
}

// binary applies the operator kind to two values; op locates errors.
func binary(op parser.Token, kind parser.TokenType, left, right Value) (Value, error) {
	switch kind {
	case parser.OpEqual:
		return BoolValue(left.Equal(right)), nil
	case parser.OpNotEqual:
		return BoolValue(!left.Equal(right)), nil
	case parser.OpLess, parser.OpLessEqual, parser.OpGreater, parser.OpGreaterEqual:
		return compare(op, kind, left, right)
	case parser.OpAdd:
		if left.Type == TypeNumber && right.Type == TypeNumber {
			return NumberValue(left.Number() + right.Number()), nil
		}
		if left.Type == TypeString || right.Type == TypeString {
			return StringValue(left.String() + right.String()), nil
		}
		return None, newErrorAt(diag.KindType, op, "operands of '%s' must be two numbers or include a string, got %s and %s",
			op.Lexeme, left.TypeName(), right.TypeName())
	case parser.OpSub, parser.OpMul, parser.OpDiv:
		if left.Type != TypeNumber || right.Type != TypeNumber {
			return None, newErrorAt(diag.KindType, op, "operands of '%s' must be numbers, got %s and %s",
				op.Lexeme, left.TypeName(), right.TypeName())
		}
		a, b := left.Number(), right.Number()
		switch kind {
		case parser.OpSub:
			return NumberValue(a - b), nil
		case parser.OpMul:
			return NumberValue(a * b), nil
		default:
			if b == 0 {
				return None, newErrorAt(diag.KindRuntime, op, "division by zero")
			}
			return NumberValue(a / b), nil
		}
	default:
		return None, newErrorAt(diag.KindRuntime, op, "unknown binary operator '%s'", op.Lexeme)
	}
}

func compare(op parser.Token, kind parser.TokenType, left, right Value) (Value, error) {
	a, okA := toNumber(left)
	b, okB := toNumber(right)
	if !okA || !okB {
		return None, newErrorAt(diag.KindType, op, "operands of '%s' must be comparable as numbers, got %s and %s",
			op.Lexeme, left.TypeName(), right.TypeName())
	}
	switch kind {
	case parser.OpLess:
		return BoolValue(a < b), nil
	case parser.OpLessEqual:
		return BoolValue(a <= b), nil
	case parser.OpGreater:
		return BoolValue(a > b), nil
	default:
		return BoolValue(a >= b), nil
	}
}

// toNumber coerces a comparison operand: numbers as is, bools as 0 or 1,
// strings when they parse as a number.
func toNumber(v Value) (float64, bool) {
	switch v.Type {
	case TypeNumber:
		return v.Number(), true
	case TypeBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// maxStringLen bounds strings built by repetition.
const maxStringLen = 1 << 28

// compound applies a compound assignment operator. String *= count
// repeats the string.
func compound(op parser.Token, current, rhs Value) (Value, error) {
	var kind parser.TokenType
	switch op.Type {
	case parser.OpAddAssign:
		kind = parser.OpAdd
	case parser.OpSubAssign:
		kind = parser.OpSub
	case parser.OpMulAssign:
		if current.Type == TypeString && rhs.Type == TypeNumber {
			n := rhs.Number()
			if !rhs.IsIntegral() || n < 0 || n > math.MaxInt32 {
				return None, newErrorAt(diag.KindType, op, "string repeat count must be a non-negative integer, got %s", rhs.String())
			}
			if n*float64(len(current.Str())) > maxStringLen {
				return None, newErrorAt(diag.KindRuntime, op, "string repeat result exceeds %d bytes", maxStringLen)
			}
			return StringValue(strings.Repeat(current.Str(), int(n))), nil
		}
		kind = parser.OpMul
	case parser.OpDivAssign:
		kind = parser.OpDiv
	default:
		return None, newErrorAt(diag.KindRuntime, op, "unknown assignment operator '%s'", op.Lexeme)
	}
	return binary(op, kind, current, rhs)
}

func step(op parser.Token, current Value) (Value, error) {
	if current.Type != TypeNumber {
		return None, newErrorAt(diag.KindType, op, "operand of '%s' must be a number, got %s", op.Lexeme, current.TypeName())
	}
	if op.Type == parser.OpIncrement {
		return NumberValue(current.Number() + 1), nil
	}
	return NumberValue(current.Number() - 1), nil
}

func updateResult(prefix bool, current, next Value) Value {
	if prefix {
		return next
	}
	return current
}
