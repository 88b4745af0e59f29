package lang

import (
	"errors"
	"fmt"

	"github.com/sergev/lox/diag"
	"github.com/sergev/lox/parser"
)

type completionKind int

const (
	completionNormal completionKind = iota
	completionReturn
	completionBreak
	completionContinue
)

func (k completionKind) String() string {
	switch k {
	case completionReturn:
		return "return"
	case completionBreak:
		return "break"
	case completionContinue:
		return "continue"
	default:
		return "normal"
	}
}

// completion tells the enclosing construct how a statement finished.
// Function calls consume returns; loops consume breaks and continues.
type completion struct {
	kind  completionKind
	value Value
}

var normal = completion{}

func (in *Interpreter) execute(stmt parser.Stmt) (completion, error) {
	switch s := stmt.(type) {
	case *parser.ExpressionStmt:
		_, err := in.evaluate(s.Expr)
		return normal, err

	case *parser.PrintStmt:
		val, err := in.evaluate(s.Expr)
		if err != nil {
			return normal, err
		}
		if _, err := fmt.Fprintln(in.out, val.String()); err != nil {
			return normal, newErrorAt(diag.KindSystem, parser.Token{Lexeme: "print", Pos: s.Posn}, "%v", err)
		}
		return normal, nil

	case *parser.LetStmt:
		val := Unset
		if s.Init != nil {
			v, err := in.evaluate(s.Init)
			if err != nil {
				return normal, err
			}
			val = v
		}
		if err := in.env.Define(s.Name.Lexeme, val); err != nil {
			return normal, newErrorAt(diag.KindReference, s.Name, "%v", err)
		}
		return normal, nil

	case *parser.BlockStmt:
		return in.executeBlock(s.Stmts, NewEnv(in.env))

	case *parser.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return normal, err
		}
		if cond.IsTruthy() {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return normal, nil

	case *parser.WhileStmt:
		for {
			cond, err := in.evaluate(s.Cond)
			if err != nil {
				return normal, err
			}
			if !cond.IsTruthy() {
				return normal, nil
			}
			c, err := in.execute(s.Body)
			if err != nil {
				return normal, err
			}
			if done, result := loopExit(c); done {
				return result, nil
			}
		}

	case *parser.ForStmt:
		return in.executeFor(s)

	case *parser.BreakStmt:
		return completion{kind: completionBreak}, nil

	case *parser.ContinueStmt:
		return completion{kind: completionContinue}, nil

	case *parser.ReturnStmt:
		val := None
		if s.Result != nil {
			v, err := in.evaluate(s.Result)
			if err != nil {
				return normal, err
			}
			val = v
		}
		return completion{kind: completionReturn, value: val}, nil

	case *parser.FunctionStmt:
		fn := NewFunction(s.Name.Lexeme, s.Params, s.Body, in.env, false)
		if err := in.env.Define(s.Name.Lexeme, FunctionValue(fn)); err != nil {
			return normal, newErrorAt(diag.KindReference, s.Name, "%v", err)
		}
		return normal, nil

	case *parser.ClassStmt:
		methods := make(map[string]*Function, len(s.Methods))
		for _, m := range s.Methods {
			methods[m.Name.Lexeme] = NewFunction(m.Name.Lexeme, m.Params, m.Body, in.env, m.Name.Lexeme == "init")
		}
		class := NewClass(s.Name.Lexeme, methods, s.Fields, in.env)
		if err := in.env.Define(s.Name.Lexeme, FunctionValue(class)); err != nil {
			return normal, newErrorAt(diag.KindReference, s.Name, "%v", err)
		}
		return normal, nil

	default:
		return normal, fmt.Errorf("internal error: cannot execute %T", stmt)
	}
}

// loopExit interprets a body completion. It reports whether the loop
// must stop and, if so, the completion the loop itself finishes with.
func loopExit(c completion) (bool, completion) {
	switch c.kind {
	case completionBreak:
		return true, normal
	case completionReturn:
		return true, c
	default:
		return false, normal
	}
}

func (in *Interpreter) executeFor(s *parser.ForStmt) (completion, error) {
	previous := in.env
	in.env = NewEnv(previous)
	defer func() { in.env = previous }()

	if s.Init != nil {
		if _, err := in.execute(s.Init); err != nil {
			return normal, err
		}
	}
	for {
		if s.Cond != nil {
			cond, err := in.evaluate(s.Cond)
			if err != nil {
				return normal, err
			}
			if !cond.IsTruthy() {
				return normal, nil
			}
		}
		c, err := in.execute(s.Body)
		if err != nil {
			return normal, err
		}
		if done, result := loopExit(c); done {
			return result, nil
		}
		if s.Update != nil {
			if _, err := in.evaluate(s.Update); err != nil {
				return normal, err
			}
		}
	}
}

// executeBlock runs stmts with env as the current environment and restores
// the previous one afterwards, whatever the outcome.
func (in *Interpreter) executeBlock(stmts []parser.Stmt, env *Env) (completion, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		c, err := in.execute(stmt)
		if err != nil {
			return normal, err
		}
		if c.kind != completionNormal {
			return c, nil
		}
	}
	return normal, nil
}

// evaluateIn evaluates expr with env as the current environment.
func (in *Interpreter) evaluateIn(expr parser.Expr, env *Env) (Value, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()
	return in.evaluate(expr)
}

// IsRuntimeError reports whether err is a script-level failure as opposed
// to an interpreter bug.
func IsRuntimeError(err error) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr)
}
