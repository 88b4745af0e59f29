// Package sexpr renders parsed programs as parenthesised prefix
// expressions, one top-level statement per line.
package sexpr

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sergev/lox/parser"
)

// Fprint writes one line per statement to w.
func Fprint(w io.Writer, stmts []parser.Stmt) error {
	for _, s := range stmts {
		if _, err := fmt.Fprintln(w, Stmt(s)); err != nil {
			return err
		}
	}
	return nil
}

// Stmt renders a single statement.
func Stmt(s parser.Stmt) string {
	var p printer
	p.stmt(s)
	return p.String()
}

// Expr renders a single expression.
func Expr(e parser.Expr) string {
	var p printer
	p.expr(e)
	return p.String()
}

type printer struct {
	strings.Builder
}

func (p *printer) list(head string, items ...func()) {
	p.WriteByte('(')
	p.WriteString(head)
	for _, item := range items {
		p.WriteByte(' ')
		item()
	}
	p.WriteByte(')')
}

func (p *printer) atom(s string) func() {
	return func() { p.WriteString(s) }
}

func (p *printer) sub(e parser.Expr) func() {
	return func() { p.expr(e) }
}

func (p *printer) subStmt(s parser.Stmt) func() {
	return func() { p.stmt(s) }
}

func (p *printer) optional(e parser.Expr) func() {
	if e == nil {
		return p.atom("none")
	}
	return p.sub(e)
}

func (p *printer) params(params []parser.Token) func() {
	names := make([]string, len(params))
	for i, tok := range params {
		names[i] = tok.Lexeme
	}
	return p.atom("(" + strings.Join(names, " ") + ")")
}

func (p *printer) body(stmts []parser.Stmt) []func() {
	items := make([]func(), len(stmts))
	for i, s := range stmts {
		items[i] = p.subStmt(s)
	}
	return items
}

func (p *printer) exprs(es []parser.Expr) []func() {
	items := make([]func(), len(es))
	for i, e := range es {
		items[i] = p.sub(e)
	}
	return items
}

func (p *printer) stmt(s parser.Stmt) {
	switch s := s.(type) {
	case *parser.ExpressionStmt:
		p.expr(s.Expr)
	case *parser.PrintStmt:
		p.list("print", p.sub(s.Expr))
	case *parser.LetStmt:
		if s.Init == nil {
			p.list("let", p.atom(s.Name.Lexeme))
			return
		}
		p.list("let", p.atom(s.Name.Lexeme), p.sub(s.Init))
	case *parser.BlockStmt:
		p.list("block", p.body(s.Stmts)...)
	case *parser.IfStmt:
		items := []func(){p.sub(s.Cond), p.subStmt(s.Then)}
		if s.Else != nil {
			items = append(items, p.subStmt(s.Else))
		}
		p.list("if", items...)
	case *parser.WhileStmt:
		p.list("while", p.sub(s.Cond), p.subStmt(s.Body))
	case *parser.ForStmt:
		init := p.atom("none")
		if s.Init != nil {
			init = p.subStmt(s.Init)
		}
		p.list("for", init, p.optional(s.Cond), p.optional(s.Update), p.subStmt(s.Body))
	case *parser.BreakStmt:
		p.WriteString("(break)")
	case *parser.ContinueStmt:
		p.WriteString("(continue)")
	case *parser.ReturnStmt:
		if s.Result == nil {
			p.WriteString("(return)")
			return
		}
		p.list("return", p.sub(s.Result))
	case *parser.FunctionStmt:
		p.list("fun", append([]func(){p.atom(s.Name.Lexeme), p.params(s.Params)}, p.body(s.Body)...)...)
	case *parser.FieldStmt:
		p.list("field", p.atom(s.Name.Lexeme), p.sub(s.Init))
	case *parser.ClassStmt:
		items := []func(){p.atom(s.Name.Lexeme)}
		for _, f := range s.Fields {
			items = append(items, p.subStmt(f))
		}
		for _, m := range s.Methods {
			items = append(items, p.subStmt(m))
		}
		p.list("class", items...)
	default:
		fmt.Fprintf(p, "<%T>", s)
	}
}

func (p *printer) expr(e parser.Expr) {
	switch e := e.(type) {
	case *parser.LiteralExpr:
		switch v := e.Value.(type) {
		case string:
			p.WriteString(strconv.Quote(v))
		case nil:
			p.WriteString("none")
		default:
			p.WriteString(e.Token.Lexeme)
		}
	case *parser.GroupingExpr:
		p.list("group", p.sub(e.Expr))
	case *parser.UnaryExpr:
		p.list(e.Op.Lexeme, p.sub(e.Expr))
	case *parser.BinaryExpr:
		p.list(e.Op.Lexeme, p.sub(e.Left), p.sub(e.Right))
	case *parser.LogicalExpr:
		p.list(e.Op.Lexeme, p.sub(e.Left), p.sub(e.Right))
	case *parser.TernaryExpr:
		p.list("?:", p.sub(e.Cond), p.sub(e.Then), p.sub(e.Else))
	case *parser.VariableExpr:
		p.WriteString(e.Name.Lexeme)
	case *parser.AssignExpr:
		p.list("=", p.atom(e.Name.Lexeme), p.sub(e.Value))
	case *parser.CompoundAssignExpr:
		p.list(e.Op.Lexeme, p.atom(e.Name.Lexeme), p.sub(e.Value))
	case *parser.UpdateExpr:
		p.list(updateHead(e.Op, e.Prefix), p.atom(e.Name.Lexeme))
	case *parser.UpdateIndexExpr:
		p.list(updateHead(e.Op, e.Prefix), func() { p.list("index", p.sub(e.Object), p.sub(e.Index)) })
	case *parser.UpdateGetExpr:
		p.list(updateHead(e.Op, e.Prefix), func() { p.list(".", p.sub(e.Object), p.atom(e.Name.Lexeme)) })
	case *parser.CallExpr:
		p.list("call", append([]func(){p.sub(e.Callee)}, p.exprs(e.Args)...)...)
	case *parser.LambdaExpr:
		p.list("fun", append([]func(){p.params(e.Params)}, p.body(e.Body)...)...)
	case *parser.ArrayExpr:
		p.list("array", p.exprs(e.Elements)...)
	case *parser.IndexExpr:
		p.list("index", p.sub(e.Object), p.sub(e.Index))
	case *parser.GetExpr:
		p.list(".", p.sub(e.Object), p.atom(e.Name.Lexeme))
	case *parser.SetExpr:
		p.list("=", func() { p.list(".", p.sub(e.Object), p.atom(e.Name.Lexeme)) }, p.sub(e.Value))
	case *parser.ThisExpr:
		p.WriteString("this")
	default:
		fmt.Fprintf(p, "<%T>", e)
	}
}

// updateHead distinguishes prefix "++x" from postfix "x++".
func updateHead(op parser.Token, prefix bool) string {
	if prefix {
		return "pre" + op.Lexeme
	}
	return "post" + op.Lexeme
}
