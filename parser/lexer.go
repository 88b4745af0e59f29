package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergev/lox/diag"
)

// Scan converts source text into tokens terminated by an EOF token.
// Lexical errors are collected rather than aborting the scan.
func Scan(src string) ([]Token, []*diag.Diagnostic) {
	lx := newLexer(src)
	var tokens []Token
	for {
		tok := lx.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			break
		}
	}
	return tokens, lx.errors
}

type lexer struct {
	src    string
	pos    int
	line   int
	column int

	errors []*diag.Diagnostic
}

func newLexer(src string) *lexer {
	return &lexer{
		src:    src,
		line:   1,
		column: 1,
	}
}

var errEndOfInput = errors.New("end of input")

type runeState struct {
	pos    int
	line   int
	column int
}

func (lx *lexer) mark() runeState {
	return runeState{
		pos:    lx.pos,
		line:   lx.line,
		column: lx.column,
	}
}

func (lx *lexer) restore(state runeState) {
	lx.pos = state.pos
	lx.line = state.line
	lx.column = state.column
}

// readRune decodes the next rune. Invalid UTF-8 bytes come back as
// utf8.RuneError and are reported by the caller as unknown characters.
func (lx *lexer) readRune() (rune, runeState, error) {
	state := lx.mark()
	if lx.pos >= len(lx.src) {
		return 0, state, errEndOfInput
	}
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += w
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r, state, nil
}

func (lx *lexer) peekRune() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) peekNextRune() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if lx.pos+w >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+w:])
	return r
}

func (lx *lexer) match(expected rune) bool {
	if lx.peekRune() != expected || lx.pos >= len(lx.src) {
		return false
	}
	lx.readRune()
	return true
}

func (lx *lexer) errorAt(start runeState, lexeme string, incomplete bool, format string, args ...interface{}) {
	d := diag.New(diag.KindLexer, positionFromState(start).Diag(), lexeme, format, args...)
	d.Incomplete = incomplete
	lx.errors = append(lx.errors, d)
}

func (lx *lexer) skipWhitespace() {
	for {
		state := lx.mark()
		r, _, err := lx.readRune()
		if err != nil {
			return
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/' && lx.peekRune() == '/':
			lx.skipLine()
		case r == '/' && lx.peekRune() == '*':
			lx.readRune()
			if !lx.skipBlockComment() {
				lx.errorAt(state, "/*", true, "unterminated block comment")
				return
			}
		default:
			lx.restore(state)
			return
		}
	}
}

func (lx *lexer) skipLine() {
	for {
		r, _, err := lx.readRune()
		if err != nil || r == '\n' {
			return
		}
	}
}

// skipBlockComment consumes a comment body after the opening "/*".
// Nested comments are consumed recursively; it reports false when the
// input ends before the matching "*/".
func (lx *lexer) skipBlockComment() bool {
	for {
		r, _, err := lx.readRune()
		if err != nil {
			return false
		}
		switch {
		case r == '*' && lx.peekRune() == '/':
			lx.readRune()
			return true
		case r == '/' && lx.peekRune() == '*':
			lx.readRune()
			if !lx.skipBlockComment() {
				return false
			}
		}
	}
}

func (lx *lexer) nextToken() Token {
	for {
		lx.skipWhitespace()
		start := lx.mark()
		r, _, err := lx.readRune()
		if err != nil {
			return Token{Type: tokenEOF, Pos: positionFromState(start)}
		}

		switch {
		case isIdentifierStart(r):
			return lx.scanIdentifier(start)
		case isDigit(r):
			return lx.scanNumber(start)
		case r == '"':
			if tok, ok := lx.scanString(start); ok {
				return tok
			}
			continue
		}

		if tok, ok := lx.scanOperator(r, start); ok {
			return tok
		}
		lexeme := lx.src[start.pos:lx.pos]
		if r == utf8.RuneError {
			lx.errorAt(start, lexeme, false, "invalid UTF-8 encoding")
		} else {
			lx.errorAt(start, lexeme, false, "unexpected character %q", r)
		}
	}
}

func (lx *lexer) scanOperator(r rune, start runeState) (Token, bool) {
	var tt TokenType
	switch r {
	case '(':
		tt = tokenLParen
	case ')':
		tt = tokenRParen
	case '{':
		tt = tokenLBrace
	case '}':
		tt = tokenRBrace
	case '[':
		tt = tokenLBracket
	case ']':
		tt = tokenRBracket
	case ',':
		tt = tokenComma
	case '.':
		tt = tokenDot
	case ';':
		tt = tokenSemicolon
	case '?':
		tt = tokenQuestion
	case ':':
		tt = tokenColon
	case '+':
		if lx.match('+') {
			tt = tokenPlusPlus
		} else if lx.match('=') {
			tt = tokenPlusAssign
		} else {
			tt = tokenPlus
		}
	case '-':
		if lx.match('-') {
			tt = tokenMinusMinus
		} else if lx.match('=') {
			tt = tokenMinusAssign
		} else {
			tt = tokenMinus
		}
	case '*':
		if lx.match('=') {
			tt = tokenStarAssign
		} else {
			tt = tokenStar
		}
	case '/':
		if lx.match('=') {
			tt = tokenSlashAssign
		} else {
			tt = tokenSlash
		}
	case '=':
		if lx.match('=') {
			tt = tokenEqualEqual
		} else {
			tt = tokenAssign
		}
	case '!':
		if lx.match('=') {
			tt = tokenBangEqual
		} else {
			tt = tokenBang
		}
	case '<':
		if lx.match('=') {
			tt = tokenLessEqual
		} else {
			tt = tokenLess
		}
	case '>':
		if lx.match('=') {
			tt = tokenGreaterEqual
		} else {
			tt = tokenGreater
		}
	default:
		return Token{}, false
	}
	return lx.makeToken(tt, start, nil), true
}

func (lx *lexer) makeToken(tt TokenType, start runeState, literal interface{}) Token {
	return Token{
		Type:    tt,
		Lexeme:  lx.src[start.pos:lx.pos],
		Literal: literal,
		Pos:     positionFromState(start),
	}
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || isDigit(r) || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (lx *lexer) scanIdentifier(start runeState) Token {
	for lx.pos < len(lx.src) && isIdentifierPart(lx.peekRune()) {
		lx.readRune()
	}
	lexeme := lx.src[start.pos:lx.pos]
	if tt, ok := keywords[lexeme]; ok {
		var literal interface{}
		switch tt {
		case tokenTrue:
			literal = true
		case tokenFalse:
			literal = false
		}
		return lx.makeToken(tt, start, literal)
	}
	return lx.makeToken(tokenIdentifier, start, nil)
}

func (lx *lexer) scanNumber(start runeState) Token {
	for isDigit(lx.peekRune()) {
		lx.readRune()
	}
	if lx.peekRune() == '.' && isDigit(lx.peekNextRune()) {
		lx.readRune()
		for isDigit(lx.peekRune()) {
			lx.readRune()
		}
	}
	lexeme := lx.src[start.pos:lx.pos]
	return lx.makeToken(tokenNumber, start, parseNumber(lexeme))
}

func (lx *lexer) scanString(start runeState) (Token, bool) {
	var builder strings.Builder
	for {
		r, _, err := lx.readRune()
		if err != nil {
			lx.errorAt(start, lx.src[start.pos:lx.pos], true, "unterminated string literal")
			return Token{}, false
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			esc, _, err := lx.readRune()
			if err != nil {
				lx.errorAt(start, lx.src[start.pos:lx.pos], true, "unterminated string literal")
				return Token{}, false
			}
			switch esc {
			case 'n':
				builder.WriteRune('\n')
			case 't':
				builder.WriteRune('\t')
			case '\\':
				builder.WriteRune('\\')
			case '"':
				builder.WriteRune('"')
			default:
				builder.WriteRune('\\')
				builder.WriteRune(esc)
			}
			continue
		}
		builder.WriteRune(r)
	}
	return lx.makeToken(tokenString, start, builder.String()), true
}

// parseNumber decodes a lexeme the scanner has already validated.
func parseNumber(lexeme string) float64 {
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0
	}
	return f
}

var keywords = map[string]TokenType{
	"and":      tokenAnd,
	"break":    tokenBreak,
	"class":    tokenClass,
	"continue": tokenContinue,
	"else":     tokenElse,
	"false":    tokenFalse,
	"for":      tokenFor,
	"fun":      tokenFun,
	"if":       tokenIf,
	"let":      tokenLet,
	"none":     tokenNone,
	"or":       tokenOr,
	"print":    tokenPrint,
	"return":   tokenReturn,
	"this":     tokenThis,
	"true":     tokenTrue,
	"while":    tokenWhile,
}

func positionFromState(state runeState) Position {
	return Position{
		Offset: state.pos,
		Line:   state.line,
		Column: state.column,
	}
}
