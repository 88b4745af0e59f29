package lang

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/parser"
)

// maxCallDepth bounds script recursion so runaway programs fail with a
// RuntimeError instead of exhausting the Go stack.
const maxCallDepth = 10000

// Interpreter executes resolved programs.
type Interpreter struct {
	globals *Env
	env     *Env
	locals  map[parser.NodeID]int

	out    io.Writer
	in     *bufio.Reader
	logger *slog.Logger
	depth  int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput directs print statements to w.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithInput sets the reader consumed by input natives.
func WithInput(r io.Reader) Option {
	return func(in *Interpreter) { in.in = bufio.NewReader(r) }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// NewInterpreter constructs an interpreter rooted at a new global environment.
func NewInterpreter(opts ...Option) *Interpreter {
	globals := NewEnv(nil)
	in := &Interpreter{
		globals: globals,
		env:     globals,
		locals:  make(map[parser.NodeID]int),
		out:     os.Stdout,
		in:      bufio.NewReader(os.Stdin),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Globals returns the outermost environment.
func (in *Interpreter) Globals() *Env { return in.globals }

// Output returns the writer print statements go to.
func (in *Interpreter) Output() io.Writer { return in.out }

// Input returns the reader input natives consume.
func (in *Interpreter) Input() *bufio.Reader { return in.in }

// Logger returns the interpreter's logger.
func (in *Interpreter) Logger() *slog.Logger { return in.logger }

// Resolve records the scope distance of a local variable reference.
func (in *Interpreter) Resolve(id parser.NodeID, depth int) {
	in.locals[id] = depth
}

// Interpret executes stmts in order and stops at the first runtime error.
func (in *Interpreter) Interpret(stmts []parser.Stmt) error {
	in.env = in.globals
	in.depth = 0
	for _, stmt := range stmts {
		c, err := in.execute(stmt)
		if err != nil {
			return err
		}
		if c.kind != completionNormal {
			return fmt.Errorf("internal error: %s escaped the top level", c.kind)
		}
	}
	return nil
}

// CallFunction invokes a callable value from host code, as natives that take
// callbacks do.
func (in *Interpreter) CallFunction(fn Value, args []Value) (Value, error) {
	callable := fn.Callable()
	if fn.Type != TypeFunction || callable == nil {
		return None, NewError(diag.KindRuntime, "can only call functions and classes, got %s", fn.TypeName())
	}
	if callable.Arity() != len(args) {
		return None, NewError(diag.KindRuntime, "%s expected %d arguments but got %d", callable.Name(), callable.Arity(), len(args))
	}
	return in.call(callable, args)
}

func (in *Interpreter) call(callable Callable, args []Value) (Value, error) {
	if in.depth >= maxCallDepth {
		return None, NewError(diag.KindRuntime, "stack overflow")
	}
	in.depth++
	defer func() { in.depth-- }()

	if in.logger.Enabled(context.Background(), slog.LevelDebug) {
		in.logger.Debug("call", "fn", callable.Name(), "args", len(args), "depth", in.depth)
	}
	return callable.Call(in, args)
}
