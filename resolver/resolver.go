// Package resolver computes, for every local variable reference, the number
// of scopes between the reference and its declaration. It also rejects
// misplaced return/break/continue/this and reports unused locals and
// unreachable statements as warnings.
package resolver

import (
	"errors"
	"strings"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/parser"
)

// BindingSink receives resolved scope distances keyed by node identity.
type BindingSink interface {
	Resolve(id parser.NodeID, depth int)
}

type functionType int

const (
	fnNone functionType = iota
	fnFunction
	fnLambda
	fnMethod
	fnInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
)

type entryKind int

const (
	entryVariable entryKind = iota
	entryFunction
	entryClass
	entryParameter
	entryThis
)

type entry struct {
	name    parser.Token
	kind    entryKind
	defined bool
	used    bool
}

type scope struct {
	entries map[string]*entry
	order   []string
}

func newScope() *scope {
	return &scope{entries: make(map[string]*entry)}
}

// Resolver walks the AST once, maintaining a stack of lexical scopes.
// Names at the outermost level are globals and are never entered into
// a scope; references that find no local binding are left unresolved.
type Resolver struct {
	sink      BindingSink
	scopes    []*scope
	fn        functionType
	fnScope   int // index of the innermost function's parameter scope
	class     classType
	loopDepth int

	errors   []*diag.Diagnostic
	warnings []*diag.Diagnostic
}

// New returns a resolver that reports bindings to sink.
func New(sink BindingSink) *Resolver {
	return &Resolver{sink: sink}
}

// Resolve runs a resolver over stmts. An error aborts resolution of the
// statement containing it; sibling statements are still resolved.
func Resolve(stmts []parser.Stmt, sink BindingSink) (errs, warnings []*diag.Diagnostic) {
	r := New(sink)
	r.resolveStmts(stmts)
	return r.errors, r.warnings
}

func (r *Resolver) errorf(tok parser.Token, format string, args ...interface{}) error {
	return diag.New(diag.KindParse, tok.Pos.Diag(), tok.Lexeme, format, args...)
}

func (r *Resolver) record(err error) {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		r.errors = append(r.errors, d)
		return
	}
	r.errors = append(r.errors, diag.New(diag.KindParse, diag.Pos{}, "", "%v", err))
}

// resolveStmts resolves a statement list, recording errors per statement
// and flagging the first statement that follows an unconditional exit.
func (r *Resolver) resolveStmts(stmts []parser.Stmt) {
	exited := false
	for _, stmt := range stmts {
		if exited {
			r.warnings = append(r.warnings, diag.NewWarning(diag.WarningDeadCode, stmt.Pos().Diag(), "", "unreachable statement"))
			exited = false
		}
		if err := r.resolveStmt(stmt); err != nil {
			r.record(err)
		}
		switch stmt.(type) {
		case *parser.ReturnStmt, *parser.BreakStmt, *parser.ContinueStmt:
			exited = true
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, newScope())
}

// endScope pops the innermost scope. Unused-variable warnings are only
// emitted for scopes that were resolved without error.
func (r *Resolver) endScope(warn bool) {
	top := r.scopes[len(r.scopes)-1]
	r.scopes = r.scopes[:len(r.scopes)-1]
	if !warn {
		return
	}
	for _, name := range top.order {
		e := top.entries[name]
		if e.used || strings.HasPrefix(name, "_") {
			continue
		}
		switch e.kind {
		case entryVariable, entryFunction, entryClass:
			r.warnings = append(r.warnings, diag.NewWarning(diag.WarningUnusedVariable, e.name.Pos.Diag(), name,
				"local '%s' is declared but never used", name))
		}
	}
}

func (r *Resolver) withScope(fn func() error) error {
	r.beginScope()
	err := fn()
	r.endScope(err == nil)
	return err
}

func (r *Resolver) declare(name parser.Token, kind entryKind) error {
	if len(r.scopes) == 0 {
		return nil
	}
	top := r.scopes[len(r.scopes)-1]
	if _, exists := top.entries[name.Lexeme]; exists {
		return r.errorf(name, "'%s' is already declared in this scope", name.Lexeme)
	}
	top.entries[name.Lexeme] = &entry{name: name, kind: kind}
	top.order = append(top.order, name.Lexeme)
	return nil
}

func (r *Resolver) define(name parser.Token) {
	if len(r.scopes) == 0 {
		return
	}
	if e, ok := r.scopes[len(r.scopes)-1].entries[name.Lexeme]; ok {
		e.defined = true
	}
}

// resolveLocal records the distance to the nearest binding of name. A
// binding that is declared but not yet defined (the variable whose
// initializer is being resolved) is skipped when the reference is evaluated
// by the initializer itself, so it sees the enclosing binding of the same
// name. A reference from inside a function nested in the initializer runs
// only after the definition and binds to the variable.
func (r *Resolver) resolveLocal(id parser.NodeID, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		e, ok := r.scopes[i].entries[name]
		if !ok || (!e.defined && i >= r.fnScope) {
			continue
		}
		e.used = true
		r.sink.Resolve(id, len(r.scopes)-1-i)
		return
	}
}

func (r *Resolver) resolveStmt(stmt parser.Stmt) error {
	switch s := stmt.(type) {
	case *parser.ExpressionStmt:
		return r.resolveExpr(s.Expr)
	case *parser.PrintStmt:
		return r.resolveExpr(s.Expr)
	case *parser.LetStmt:
		if err := r.declare(s.Name, entryVariable); err != nil {
			return err
		}
		if s.Init != nil {
			if err := r.resolveExpr(s.Init); err != nil {
				return err
			}
		}
		r.define(s.Name)
		return nil
	case *parser.BlockStmt:
		return r.withScope(func() error {
			r.resolveStmts(s.Stmts)
			return nil
		})
	case *parser.IfStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		if err := r.resolveStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveStmt(s.Else)
		}
		return nil
	case *parser.WhileStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		return r.resolveLoopBody(s.Body)
	case *parser.ForStmt:
		return r.withScope(func() error {
			if s.Init != nil {
				if err := r.resolveStmt(s.Init); err != nil {
					return err
				}
			}
			if s.Cond != nil {
				if err := r.resolveExpr(s.Cond); err != nil {
					return err
				}
			}
			if s.Update != nil {
				if err := r.resolveExpr(s.Update); err != nil {
					return err
				}
			}
			return r.resolveLoopBody(s.Body)
		})
	case *parser.BreakStmt:
		if r.loopDepth == 0 {
			return r.errorf(s.Keyword, "'break' outside of a loop")
		}
		return nil
	case *parser.ContinueStmt:
		if r.loopDepth == 0 {
			return r.errorf(s.Keyword, "'continue' outside of a loop")
		}
		return nil
	case *parser.ReturnStmt:
		switch r.fn {
		case fnNone:
			return r.errorf(s.Keyword, "can't return from top-level code")
		case fnInitializer:
			return r.errorf(s.Keyword, "can't return from an initializer")
		}
		if s.Result != nil {
			return r.resolveExpr(s.Result)
		}
		return nil
	case *parser.FunctionStmt:
		if err := r.declare(s.Name, entryFunction); err != nil {
			return err
		}
		r.define(s.Name)
		return r.resolveFunction(s.Params, s.Body, fnFunction)
	case *parser.ClassStmt:
		return r.resolveClass(s)
	case *parser.FieldStmt:
		return r.resolveExpr(s.Init)
	default:
		return diag.New(diag.KindParse, stmt.Pos().Diag(), "", "unsupported statement %T", stmt)
	}
}

func (r *Resolver) resolveLoopBody(body parser.Stmt) error {
	r.loopDepth++
	defer func() { r.loopDepth-- }()
	return r.resolveStmt(body)
}

func (r *Resolver) resolveFunction(params []parser.Token, body []parser.Stmt, kind functionType) error {
	enclosingFn, enclosingScope, enclosingLoop := r.fn, r.fnScope, r.loopDepth
	r.fn, r.fnScope, r.loopDepth = kind, len(r.scopes), 0
	defer func() {
		r.fn, r.fnScope, r.loopDepth = enclosingFn, enclosingScope, enclosingLoop
	}()

	return r.withScope(func() error {
		for _, param := range params {
			if err := r.declare(param, entryParameter); err != nil {
				return err
			}
			r.define(param)
		}
		r.resolveStmts(body)
		return nil
	})
}

func (r *Resolver) resolveClass(s *parser.ClassStmt) error {
	if err := r.declare(s.Name, entryClass); err != nil {
		return err
	}
	r.define(s.Name)

	// Field initializers run in the class's defining scope, without a receiver.
	for _, field := range s.Fields {
		if err := r.resolveExpr(field.Init); err != nil {
			return err
		}
	}

	enclosingClass := r.class
	r.class = classClass
	defer func() { r.class = enclosingClass }()

	return r.withScope(func() error {
		this := parser.Token{Lexeme: "this", Pos: s.Name.Pos}
		if err := r.declare(this, entryThis); err != nil {
			return err
		}
		r.define(this)
		for _, method := range s.Methods {
			kind := fnMethod
			if method.Name.Lexeme == "init" {
				kind = fnInitializer
			}
			if err := r.resolveFunction(method.Params, method.Body, kind); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Resolver) resolveExprs(exprs []parser.Expr) error {
	for _, e := range exprs {
		if err := r.resolveExpr(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveExpr(expr parser.Expr) error {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		return nil
	case *parser.GroupingExpr:
		return r.resolveExpr(e.Expr)
	case *parser.UnaryExpr:
		return r.resolveExpr(e.Expr)
	case *parser.BinaryExpr:
		return r.resolveExprs([]parser.Expr{e.Left, e.Right})
	case *parser.LogicalExpr:
		return r.resolveExprs([]parser.Expr{e.Left, e.Right})
	case *parser.TernaryExpr:
		return r.resolveExprs([]parser.Expr{e.Cond, e.Then, e.Else})
	case *parser.VariableExpr:
		r.resolveLocal(e.ID, e.Name.Lexeme)
		return nil
	case *parser.AssignExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		r.resolveLocal(e.ID, e.Name.Lexeme)
		return nil
	case *parser.CompoundAssignExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		r.resolveLocal(e.ID, e.Name.Lexeme)
		return nil
	case *parser.UpdateExpr:
		r.resolveLocal(e.ID, e.Name.Lexeme)
		return nil
	case *parser.CallExpr:
		if err := r.resolveExpr(e.Callee); err != nil {
			return err
		}
		return r.resolveExprs(e.Args)
	case *parser.LambdaExpr:
		return r.resolveFunction(e.Params, e.Body, fnLambda)
	case *parser.ArrayExpr:
		return r.resolveExprs(e.Elements)
	case *parser.IndexExpr:
		return r.resolveExprs([]parser.Expr{e.Object, e.Index})
	case *parser.UpdateIndexExpr:
		return r.resolveExprs([]parser.Expr{e.Object, e.Index})
	case *parser.GetExpr:
		return r.resolveExpr(e.Object)
	case *parser.UpdateGetExpr:
		return r.resolveExpr(e.Object)
	case *parser.SetExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		return r.resolveExpr(e.Object)
	case *parser.ThisExpr:
		if r.class == classNone {
			return r.errorf(e.Keyword, "can't use 'this' outside of a class")
		}
		r.resolveLocal(e.ID, "this")
		return nil
	default:
		return diag.New(diag.KindParse, expr.Pos().Diag(), "", "unsupported expression %T", expr)
	}
}
