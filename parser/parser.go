package parser

import (
	"errors"
	"sync/atomic"

	"github.com/sergev/lox/diag"
)

const maxArgs = 255

// nextNodeID is process-wide so nodes from separate parses (one per REPL
// line) never share an identity in a long-lived interpreter.
var nextNodeID atomic.Int64

// Parse builds statements from tokens. Syntax errors are collected; after
// each one the parser discards tokens up to the next statement boundary
// and carries on, so one run reports every independent error.
func Parse(tokens []Token) ([]Stmt, []*diag.Diagnostic) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != tokenEOF {
		tokens = append(tokens, Token{Type: tokenEOF})
	}
	p := &parser{tokens: tokens}
	var stmts []Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.errors
}

type parser struct {
	tokens  []Token
	current int
	errors  []*diag.Diagnostic
}

func (p *parser) peek() Token {
	return p.tokens[p.current]
}

func (p *parser) peekAt(offset int) Token {
	i := p.current + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *parser) atEnd() bool {
	return p.peek().Type == tokenEOF
}

func (p *parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) check(tt TokenType) bool {
	return p.peek().Type == tt
}

func (p *parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errorf(p.peek(), diag.KindSyntax, "expected %s, found %s", what, describe(p.peek()))
}

// errorf builds a diagnostic located at tok. It does not record it.
func (p *parser) errorf(tok Token, kind diag.Kind, format string, args ...interface{}) *diag.Diagnostic {
	d := diag.New(kind, tok.Pos.Diag(), tok.Lexeme, format, args...)
	d.Incomplete = tok.Type == tokenEOF
	return d
}

// report records a diagnostic without unwinding the parse.
func (p *parser) report(err error) {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		p.errors = append(p.errors, d)
		return
	}
	p.errors = append(p.errors, diag.New(diag.KindSyntax, p.peek().Pos.Diag(), "", "%v", err))
}

func (p *parser) base(tok Token) exprBase {
	return exprBase{
		ID:   NodeID(nextNodeID.Add(1)),
		Posn: tok.Pos,
	}
}

func describe(tok Token) string {
	if tok.Type == tokenEOF {
		return "end of input"
	}
	return "'" + tok.Lexeme + "'"
}

// synchronize discards tokens until a statement boundary.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == tokenSemicolon {
			return
		}
		switch p.peek().Type {
		case tokenClass, tokenFun, tokenLet, tokenFor, tokenIf, tokenWhile,
			tokenPrint, tokenReturn, tokenBreak, tokenContinue:
			return
		}
		p.advance()
	}
}

// declaration parses one declaration, recovering on failure.
// It returns nil when the declaration was discarded.
func (p *parser) declaration() Stmt {
	stmt, err := p.parseDeclaration()
	if err != nil {
		p.report(err)
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *parser) parseDeclaration() (Stmt, error) {
	switch {
	case p.check(tokenClass):
		return p.parseClassDecl()
	case p.check(tokenFun) && p.peekAt(1).Type == tokenIdentifier:
		p.advance()
		return p.parseFunction("function")
	case p.check(tokenLet):
		return p.parseLetDecl()
	default:
		return p.parseStatement()
	}
}

func (p *parser) parseClassDecl() (Stmt, error) {
	classTok := p.advance()
	nameTok, err := p.expect(tokenIdentifier, "class name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLBrace, "'{' before class body"); err != nil {
		return nil, err
	}
	class := &ClassStmt{
		Name: nameTok,
		Posn: classTok.Pos,
	}
	for !p.check(tokenRBrace) && !p.atEnd() {
		if p.check(tokenIdentifier) && p.peekAt(1).Type == tokenAssign {
			field, err := p.parseField()
			if err != nil {
				return nil, err
			}
			class.Fields = append(class.Fields, field)
			continue
		}
		method, err := p.parseFunction("method")
		if err != nil {
			return nil, err
		}
		class.Methods = append(class.Methods, method)
	}
	if _, err := p.expect(tokenRBrace, "'}' after class body"); err != nil {
		return nil, err
	}
	return class, nil
}

func (p *parser) parseField() (*FieldStmt, error) {
	nameTok := p.advance()
	p.advance() // =
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenSemicolon, "';' after field declaration"); err != nil {
		return nil, err
	}
	return &FieldStmt{
		Name: nameTok,
		Init: init,
		Posn: nameTok.Pos,
	}, nil
}

func (p *parser) parseFunction(kind string) (*FunctionStmt, error) {
	nameTok, err := p.expect(tokenIdentifier, kind+" name")
	if err != nil {
		return nil, err
	}
	params, body, err := p.parseFunctionTail(kind)
	if err != nil {
		return nil, err
	}
	return &FunctionStmt{
		Name:   nameTok,
		Params: params,
		Body:   body,
		Posn:   nameTok.Pos,
	}, nil
}

func (p *parser) parseFunctionTail(kind string) ([]Token, []Stmt, error) {
	what := "'(' after " + kind + " name"
	if kind == "lambda" {
		what = "'(' after 'fun'"
	}
	if _, err := p.expect(tokenLParen, what); err != nil {
		return nil, nil, err
	}
	params, err := p.parseParamNames()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(tokenRParen, "')' after parameters"); err != nil {
		return nil, nil, err
	}
	if !p.check(tokenLBrace) {
		return nil, nil, p.errorf(p.peek(), diag.KindSyntax, "expected '{' before %s body, found %s", kind, describe(p.peek()))
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return params, body.Stmts, nil
}

func (p *parser) parseParamNames() ([]Token, error) {
	var params []Token
	if p.check(tokenRParen) {
		return params, nil
	}
	for {
		if len(params) == maxArgs {
			p.report(p.errorf(p.peek(), diag.KindSyntax, "can't have more than %d parameters", maxArgs))
		}
		tok, err := p.expect(tokenIdentifier, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, tok)
		if !p.match(tokenComma) {
			break
		}
	}
	return params, nil
}

func (p *parser) parseLetDecl() (Stmt, error) {
	letTok := p.advance()
	nameTok, err := p.expect(tokenIdentifier, "variable name")
	if err != nil {
		return nil, err
	}
	var init Expr
	if p.match(tokenAssign) {
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenSemicolon, "';' after variable declaration"); err != nil {
		return nil, err
	}
	return &LetStmt{
		Name: nameTok,
		Init: init,
		Posn: letTok.Pos,
	}, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	switch p.peek().Type {
	case tokenPrint:
		return p.parsePrintStmt()
	case tokenLBrace:
		return p.parseBlock()
	case tokenIf:
		return p.parseIfStmt()
	case tokenWhile:
		return p.parseWhileStmt()
	case tokenFor:
		return p.parseForStmt()
	case tokenReturn:
		return p.parseReturnStmt()
	case tokenBreak:
		tok := p.advance()
		if _, err := p.expect(tokenSemicolon, "';' after 'break'"); err != nil {
			return nil, err
		}
		return &BreakStmt{Keyword: tok, Posn: tok.Pos}, nil
	case tokenContinue:
		tok := p.advance()
		if _, err := p.expect(tokenSemicolon, "';' after 'continue'"); err != nil {
			return nil, err
		}
		return &ContinueStmt{Keyword: tok, Posn: tok.Pos}, nil
	default:
		return p.parseExpressionStmt()
	}
}

func (p *parser) parseExpressionStmt() (Stmt, error) {
	start := p.peek()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenSemicolon, "';' after expression"); err != nil {
		return nil, err
	}
	return &ExpressionStmt{
		Expr: expr,
		Posn: start.Pos,
	}, nil
}

func (p *parser) parsePrintStmt() (Stmt, error) {
	printTok := p.advance()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenSemicolon, "';' after value"); err != nil {
		return nil, err
	}
	return &PrintStmt{
		Expr: expr,
		Posn: printTok.Pos,
	}, nil
}

// parseBlock parses "{ declaration* }". Errors inside the block are
// recovered locally; only a missing closing brace fails the block.
func (p *parser) parseBlock() (*BlockStmt, error) {
	braceTok, err := p.expect(tokenLBrace, "'{'")
	if err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.check(tokenRBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.expect(tokenRBrace, "'}' after block"); err != nil {
		return nil, err
	}
	return &BlockStmt{
		Stmts: stmts,
		Posn:  braceTok.Pos,
	}, nil
}

func (p *parser) parseIfStmt() (Stmt, error) {
	ifTok := p.advance()
	if _, err := p.expect(tokenLParen, "'(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen, "')' after if condition"); err != nil {
		return nil, err
	}
	thenBranch, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseBranch Stmt
	if p.match(tokenElse) {
		elseBranch, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{
		Cond: cond,
		Then: thenBranch,
		Else: elseBranch,
		Posn: ifTok.Pos,
	}, nil
}

func (p *parser) parseWhileStmt() (Stmt, error) {
	whileTok := p.advance()
	if _, err := p.expect(tokenLParen, "'(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen, "')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{
		Cond: cond,
		Body: body,
		Posn: whileTok.Pos,
	}, nil
}

func (p *parser) parseForStmt() (Stmt, error) {
	forTok := p.advance()
	if _, err := p.expect(tokenLParen, "'(' after 'for'"); err != nil {
		return nil, err
	}

	var init Stmt
	var err error
	switch {
	case p.match(tokenSemicolon):
	case p.check(tokenLet):
		init, err = p.parseLetDecl()
	default:
		init, err = p.parseExpressionStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond Expr
	if !p.check(tokenSemicolon) {
		if cond, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenSemicolon, "';' after loop condition"); err != nil {
		return nil, err
	}

	var update Expr
	if !p.check(tokenRParen) {
		if update, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenRParen, "')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ForStmt{
		Init:   init,
		Cond:   cond,
		Update: update,
		Body:   body,
		Posn:   forTok.Pos,
	}, nil
}

func (p *parser) parseReturnStmt() (Stmt, error) {
	retTok := p.advance()
	var result Expr
	if !p.check(tokenSemicolon) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		result = expr
	}
	if _, err := p.expect(tokenSemicolon, "';' after return value"); err != nil {
		return nil, err
	}
	return &ReturnStmt{
		Keyword: retTok,
		Result:  result,
		Posn:    retTok.Pos,
	}, nil
}
