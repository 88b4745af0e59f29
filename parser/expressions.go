package parser

import (
	"github.com/sergev/lox/diag"
)

func (p *parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// parseAssignment validates the target structurally: only a variable or a
// property get may be assigned, and only a variable may be compound-assigned.
func (p *parser) parseAssignment() (Expr, error) {
	expr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if p.match(tokenAssign) {
		eq := p.previous()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *VariableExpr:
			return &AssignExpr{exprBase: p.base(target.Name), Name: target.Name, Value: value}, nil
		case *GetExpr:
			return &SetExpr{exprBase: p.base(target.Name), Object: target.Object, Name: target.Name, Value: value}, nil
		}
		p.report(p.errorf(eq, diag.KindParse, "invalid assignment target"))
		return expr, nil
	}

	if p.match(tokenPlusAssign, tokenMinusAssign, tokenStarAssign, tokenSlashAssign) {
		op := p.previous()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if target, ok := expr.(*VariableExpr); ok {
			return &CompoundAssignExpr{exprBase: p.base(target.Name), Name: target.Name, Op: op, Value: value}, nil
		}
		p.report(p.errorf(op, diag.KindParse, "invalid compound assignment target"))
		return expr, nil
	}
	return expr, nil
}

func (p *parser) parseTernary() (Expr, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.match(tokenQuestion) {
		return cond, nil
	}
	question := p.previous()
	thenExpr, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenColon, "':' in conditional expression"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{
		exprBase: p.base(question),
		Cond:     cond,
		Then:     thenExpr,
		Else:     elseExpr,
	}, nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokenOr) {
		op := p.previous()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{exprBase: p.base(op), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.match(tokenAnd) {
		op := p.previous()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{exprBase: p.base(op), Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseBinary parses a left-associative chain of operators from ops,
// with operands produced by next.
func (p *parser) parseBinary(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{exprBase: p.base(op), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseEquality() (Expr, error) {
	return p.parseBinary(p.parseComparison, tokenEqualEqual, tokenBangEqual)
}

func (p *parser) parseComparison() (Expr, error) {
	return p.parseBinary(p.parseTerm, tokenLess, tokenLessEqual, tokenGreater, tokenGreaterEqual)
}

func (p *parser) parseTerm() (Expr, error) {
	return p.parseBinary(p.parseFactor, tokenPlus, tokenMinus)
}

func (p *parser) parseFactor() (Expr, error) {
	return p.parseBinary(p.parseUnary, tokenStar, tokenSlash)
}

func (p *parser) parseUnary() (Expr, error) {
	if p.match(tokenBang, tokenMinus) {
		op := p.previous()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{exprBase: p.base(op), Op: op, Expr: operand}, nil
	}
	if p.match(tokenPlusPlus, tokenMinusMinus) {
		op := p.previous()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.makeUpdate(operand, op, true), nil
	}
	return p.parseCall()
}

// makeUpdate wraps an increment/decrement around target. Invalid targets
// are reported and the operand is returned unchanged.
func (p *parser) makeUpdate(target Expr, op Token, prefix bool) Expr {
	switch t := target.(type) {
	case *VariableExpr:
		return &UpdateExpr{exprBase: p.base(op), Name: t.Name, Op: op, Prefix: prefix}
	case *IndexExpr:
		return &UpdateIndexExpr{exprBase: p.base(op), Object: t.Object, Bracket: t.Bracket, Index: t.Index, Op: op, Prefix: prefix}
	case *GetExpr:
		return &UpdateGetExpr{exprBase: p.base(op), Object: t.Object, Name: t.Name, Op: op, Prefix: prefix}
	}
	p.report(p.errorf(op, diag.KindParse, "invalid %s operand", op.Lexeme))
	return target
}

func (p *parser) parseCall() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(tokenLParen):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(tokenDot):
			name, err := p.expect(tokenIdentifier, "property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &GetExpr{exprBase: p.base(name), Object: expr, Name: name}
		case p.match(tokenLBracket):
			bracket := p.previous()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRBracket, "']' after index"); err != nil {
				return nil, err
			}
			expr = &IndexExpr{exprBase: p.base(bracket), Object: expr, Bracket: bracket, Index: index}
		case p.match(tokenPlusPlus, tokenMinusMinus):
			return p.makeUpdate(expr, p.previous(), false), nil
		default:
			return expr, nil
		}
	}
}

func (p *parser) finishCall(callee Expr) (Expr, error) {
	args, err := p.parseArguments(tokenRParen, maxArgs)
	if err != nil {
		return nil, err
	}
	paren, err := p.expect(tokenRParen, "')' after arguments")
	if err != nil {
		return nil, err
	}
	return &CallExpr{exprBase: p.base(paren), Callee: callee, Paren: paren, Args: args}, nil
}

// parseArguments parses a comma-separated expression list up to closing.
// A positive limit caps the list length.
func (p *parser) parseArguments(closing TokenType, limit int) ([]Expr, error) {
	var args []Expr
	if p.check(closing) {
		return args, nil
	}
	for {
		if limit > 0 && len(args) == limit {
			p.report(p.errorf(p.peek(), diag.KindSyntax, "can't have more than %d arguments", limit))
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		if !p.match(tokenComma) {
			break
		}
	}
	return args, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case tokenNumber, tokenString, tokenTrue, tokenFalse, tokenNone:
		p.advance()
		return &LiteralExpr{exprBase: p.base(tok), Value: tok.Literal, Token: tok}, nil
	case tokenThis:
		p.advance()
		return &ThisExpr{exprBase: p.base(tok), Keyword: tok}, nil
	case tokenIdentifier:
		p.advance()
		return &VariableExpr{exprBase: p.base(tok), Name: tok}, nil
	case tokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, "')' after expression"); err != nil {
			return nil, err
		}
		return &GroupingExpr{exprBase: p.base(tok), Expr: expr}, nil
	case tokenLBracket:
		p.advance()
		elems, err := p.parseArguments(tokenRBracket, 0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRBracket, "']' after array elements"); err != nil {
			return nil, err
		}
		return &ArrayExpr{exprBase: p.base(tok), Bracket: tok, Elements: elems}, nil
	case tokenFun:
		p.advance()
		params, body, err := p.parseFunctionTail("lambda")
		if err != nil {
			return nil, err
		}
		return &LambdaExpr{exprBase: p.base(tok), Keyword: tok, Params: params, Body: body}, nil
	default:
		return nil, p.errorf(tok, diag.KindSyntax, "expected expression, found %s", describe(tok))
	}
}
