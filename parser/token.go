package parser

import (
	"fmt"

	"github.com/sergev/lox/diag"
)

// TokenType enumerates lexical categories recognised by the scanner.
type TokenType int

const (
	tokenEOF TokenType = iota

	tokenIdentifier
	tokenNumber
	tokenString

	// Keywords
	tokenAnd
	tokenBreak
	tokenClass
	tokenContinue
	tokenElse
	tokenFalse
	tokenFor
	tokenFun
	tokenIf
	tokenLet
	tokenNone
	tokenOr
	tokenPrint
	tokenReturn
	tokenThis
	tokenTrue
	tokenWhile

	// Operators and punctuation
	tokenAssign       // =
	tokenPlusAssign   // +=
	tokenMinusAssign  // -=
	tokenStarAssign   // *=
	tokenSlashAssign  // /=
	tokenEqualEqual   // ==
	tokenBangEqual    // !=
	tokenPlus         // +
	tokenMinus        // -
	tokenPlusPlus     // ++
	tokenMinusMinus   // --
	tokenStar         // *
	tokenSlash        // /
	tokenLess         // <
	tokenLessEqual    // <=
	tokenGreater      // >
	tokenGreaterEqual // >=
	tokenBang         // !
	tokenQuestion     // ?
	tokenColon        // :

	tokenComma     // ,
	tokenDot       // .
	tokenSemicolon // ;
	tokenLParen    // (
	tokenRParen    // )
	tokenLBrace    // {
	tokenRBrace    // }
	tokenLBracket  // [
	tokenRBracket  // ]
)

var tokenNames = map[TokenType]string{
	tokenEOF:          "EOF",
	tokenIdentifier:   "identifier",
	tokenNumber:       "number",
	tokenString:       "string",
	tokenAnd:          "and",
	tokenBreak:        "break",
	tokenClass:        "class",
	tokenContinue:     "continue",
	tokenElse:         "else",
	tokenFalse:        "false",
	tokenFor:          "for",
	tokenFun:          "fun",
	tokenIf:           "if",
	tokenLet:          "let",
	tokenNone:         "none",
	tokenOr:           "or",
	tokenPrint:        "print",
	tokenReturn:       "return",
	tokenThis:         "this",
	tokenTrue:         "true",
	tokenWhile:        "while",
	tokenAssign:       "=",
	tokenPlusAssign:   "+=",
	tokenMinusAssign:  "-=",
	tokenStarAssign:   "*=",
	tokenSlashAssign:  "/=",
	tokenEqualEqual:   "==",
	tokenBangEqual:    "!=",
	tokenPlus:         "+",
	tokenMinus:        "-",
	tokenPlusPlus:     "++",
	tokenMinusMinus:   "--",
	tokenStar:         "*",
	tokenSlash:        "/",
	tokenLess:         "<",
	tokenLessEqual:    "<=",
	tokenGreater:      ">",
	tokenGreaterEqual: ">=",
	tokenBang:         "!",
	tokenQuestion:     "?",
	tokenColon:        ":",
	tokenComma:        ",",
	tokenDot:          ".",
	tokenSemicolon:    ";",
	tokenLParen:       "(",
	tokenRParen:       ")",
	tokenLBrace:       "{",
	tokenRBrace:       "}",
	tokenLBracket:     "[",
	tokenRBracket:     "]",
}

func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "unknown"
}

// Exported aliases for the operator kinds evaluators switch on.
const (
	OpAdd          = tokenPlus
	OpSub          = tokenMinus
	OpMul          = tokenStar
	OpDiv          = tokenSlash
	OpNot          = tokenBang
	OpEqual        = tokenEqualEqual
	OpNotEqual     = tokenBangEqual
	OpLess         = tokenLess
	OpLessEqual    = tokenLessEqual
	OpGreater      = tokenGreater
	OpGreaterEqual = tokenGreaterEqual
	OpAnd          = tokenAnd
	OpOr           = tokenOr
	OpIncrement    = tokenPlusPlus
	OpDecrement    = tokenMinusMinus
	OpAddAssign    = tokenPlusAssign
	OpSubAssign    = tokenMinusAssign
	OpMulAssign    = tokenStarAssign
	OpDivAssign    = tokenSlashAssign
)

// Position tracks a source location.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

// Diag converts p into a diagnostic location.
func (p Position) Diag() diag.Pos {
	return diag.Pos{Line: p.Line, Column: p.Column}
}

// Token is a single lexical unit produced by the scanner.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw source text
	Literal interface{} // float64, string, bool or nil for literal tokens
	Pos     Position
}

func (t Token) String() string {
	if t.Lexeme != "" {
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	}
	return t.Type.String()
}
