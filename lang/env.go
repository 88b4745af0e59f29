package lang

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyDefined = errors.New("already defined")
	ErrUndefined      = errors.New("undefined variable")
	ErrProtected      = errors.New("cannot assign to native binding")
)

type binding struct {
	value     Value
	protected bool
}

// Env implements a lexical environment chain. Frames are shared: closures
// keep their defining frame alive and observe later mutations through it.
type Env struct {
	parent *Env
	values map[string]*binding
	names  []string
}

// NewEnv creates an environment with optional parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		values: make(map[string]*binding),
	}
}

// Define binds name to value in the current frame. A name may be defined
// only once per frame.
func (e *Env) Define(name string, val Value) error {
	if _, ok := e.values[name]; ok {
		return fmt.Errorf("'%s' %w in this scope", name, ErrAlreadyDefined)
	}
	e.values[name] = &binding{value: val}
	e.names = append(e.names, name)
	return nil
}

// Register binds a host callable in the current frame. A protected binding
// can never be reassigned by scripts.
func (e *Env) Register(name string, fn Callable, protected bool) error {
	if err := e.Define(name, FunctionValue(fn)); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	e.values[name].protected = protected
	return nil
}

// RegisterValue is Register for non-callable host values.
func (e *Env) RegisterValue(name string, val Value, protected bool) error {
	if err := e.Define(name, val); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	e.values[name].protected = protected
	return nil
}

// Mutate updates an existing binding, searching parents if needed.
func (e *Env) Mutate(name string, val Value) error {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.values[name]; ok {
			if b.protected {
				return fmt.Errorf("%w '%s'", ErrProtected, name)
			}
			b.value = val
			return nil
		}
	}
	return fmt.Errorf("%w '%s'", ErrUndefined, name)
}

// Get retrieves a binding, searching parents if necessary.
func (e *Env) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.values[name]; ok {
			return b.value, nil
		}
	}
	return Value{}, fmt.Errorf("%w '%s'", ErrUndefined, name)
}

// GetAt reads name from the frame exactly distance links up the chain.
// Distances come from the resolver; a miss is an interpreter bug.
func (e *Env) GetAt(distance int, name string) Value {
	b, ok := e.ancestor(distance).values[name]
	if !ok {
		panic(fmt.Sprintf("resolved variable %q missing at distance %d", name, distance))
	}
	return b.value
}

// MutateAt writes name in the frame exactly distance links up the chain.
func (e *Env) MutateAt(distance int, name string, val Value) {
	b, ok := e.ancestor(distance).values[name]
	if !ok {
		panic(fmt.Sprintf("resolved variable %q missing at distance %d", name, distance))
	}
	b.value = val
}

func (e *Env) ancestor(distance int) *Env {
	env := e
	for i := 0; i < distance; i++ {
		if env.parent == nil {
			panic(fmt.Sprintf("environment chain shorter than resolved distance %d", distance))
		}
		env = env.parent
	}
	return env
}

// Names lists the names bound in this frame in definition order.
func (e *Env) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Lookup returns the binding of name in this frame only.
func (e *Env) Lookup(name string) (Value, bool) {
	b, ok := e.values[name]
	if !ok {
		return Value{}, false
	}
	return b.value, true
}

// Parent returns the parent environment.
func (e *Env) Parent() *Env {
	return e.parent
}
