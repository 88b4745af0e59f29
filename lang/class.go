package lang

import (
	"github.com/sergev/lox/parser"
)

// Class is a user-defined class. Classes never change after declaration
// and are shared by all their instances.
type Class struct {
	name    string
	methods map[string]*Function
	fields  []*parser.FieldStmt
	closure *Env
}

// NewClass builds a class whose field initializers run in env.
func NewClass(name string, methods map[string]*Function, fields []*parser.FieldStmt, env *Env) *Class {
	return &Class{
		name:    name,
		methods: methods,
		fields:  fields,
		closure: env,
	}
}

func (c *Class) Name() string { return c.name }

// FindMethod returns the unbound method called name.
func (c *Class) FindMethod(name string) (*Function, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Arity is the initializer's arity, or zero without one.
func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call instantiates the class: field initializers run first, in
// declaration order, then init is bound to the new instance and called.
func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	inst := NewInstance(c)
	for _, field := range c.fields {
		val, err := in.evaluateIn(field.Init, c.closure)
		if err != nil {
			return None, err
		}
		inst.Set(field.Name.Lexeme, val)
	}
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(inst).Call(in, args); err != nil {
			return None, err
		}
	}
	return InstanceValue(inst), nil
}

// Instance is an object created by calling a class.
type Instance struct {
	class  *Class
	fields map[string]Value
}

// NewInstance allocates an instance with no fields.
func NewInstance(c *Class) *Instance {
	return &Instance{class: c, fields: make(map[string]Value)}
}

func (i *Instance) Class() *Class { return i.class }

// Get looks up a field first, then a method bound to i.
func (i *Instance) Get(name string) (Value, bool) {
	if v, ok := i.fields[name]; ok {
		return v, true
	}
	if m, ok := i.class.FindMethod(name); ok {
		return FunctionValue(m.Bind(i)), true
	}
	return None, false
}

// Set writes a field, creating it if absent.
func (i *Instance) Set(name string, v Value) {
	i.fields[name] = v
}
