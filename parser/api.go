package parser

import (
	"io"

	"github.com/sergev/lox/diag"
)

// ParseString scans and parses source text. Any lexical or syntax
// diagnostics are returned together as a *Error.
func ParseString(src string) ([]Stmt, error) {
	tokens, lexErrs := Scan(src)
	stmts, parseErrs := Parse(tokens)
	var all diag.List
	all = append(all, lexErrs...)
	all = append(all, parseErrs...)
	if err := newError(all); err != nil {
		return stmts, err
	}
	return stmts, nil
}

// ParseReader consumes source from an io.Reader and parses it.
func ParseReader(r io.Reader) ([]Stmt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}
