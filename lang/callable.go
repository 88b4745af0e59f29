package lang

import (
	"fmt"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/parser"
)

// Callable is anything a script can invoke with call syntax.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	Name() string
}

// Function is a user-defined function or method with its closure.
type Function struct {
	name          string
	params        []parser.Token
	body          []parser.Stmt
	closure       *Env
	isInitializer bool
}

// NewFunction creates a function closing over env.
func NewFunction(name string, params []parser.Token, body []parser.Stmt, env *Env, isInitializer bool) *Function {
	return &Function{
		name:          name,
		params:        params,
		body:          body,
		closure:       env,
		isInitializer: isInitializer,
	}
}

func (f *Function) Name() string { return f.name }
func (f *Function) Arity() int   { return len(f.params) }

// Bind returns a copy of f whose closure binds "this" to inst.
func (f *Function) Bind(inst *Instance) *Function {
	env := NewEnv(f.closure)
	env.Define("this", InstanceValue(inst))
	return NewFunction(f.name, f.params, f.body, env, f.isInitializer)
}

// Call runs the body in a fresh frame enclosing the closure. An
// initializer always yields its receiver.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnv(f.closure)
	for i, param := range f.params {
		if err := env.Define(param.Lexeme, args[i]); err != nil {
			return None, newErrorAt(diag.KindRuntime, param, "%v", err)
		}
	}

	c, err := in.executeBlock(f.body, env)
	if err != nil {
		return None, err
	}
	switch c.kind {
	case completionBreak, completionContinue:
		return None, fmt.Errorf("internal error: %s escaped function %s", c.kind, f.name)
	}
	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	if c.kind == completionReturn {
		return c.value, nil
	}
	return None, nil
}

// NativeFunc is the Go implementation behind a NativeFunction.
type NativeFunc func(in *Interpreter, args []Value) (Value, error)

// NativeFunction wraps a host function for registration in an Env.
type NativeFunction struct {
	name  string
	arity int
	fn    NativeFunc
}

// NewNativeFunction wraps fn as a callable taking exactly arity arguments.
func NewNativeFunction(name string, arity int, fn NativeFunc) *NativeFunction {
	return &NativeFunction{name: name, arity: arity, fn: fn}
}

func (n *NativeFunction) Name() string { return n.name }
func (n *NativeFunction) Arity() int   { return n.arity }

func (n *NativeFunction) Call(in *Interpreter, args []Value) (Value, error) {
	return n.fn(in, args)
}
