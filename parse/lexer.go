// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package parse

import (
	"fmt"
)

type tokenKind byte

const (
	tokenEOF tokenKind = iota
	tokenInt
	tokenWord // identifiers and reserved words
	tokenEquals
	tokenLParen
	tokenRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenInt:
		return "integer"
	case tokenWord:
		return "word"
	case tokenEquals:
		return `"="`
	case tokenLParen:
		return `"("`
	case tokenRParen:
		return `")"`
	}
	return fmt.Sprintf("tokenKind(%d)", byte(k))
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func (t token) String() string {
	if t.kind == tokenEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}

type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) advance() {
	if l.src[l.off] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.off++
}

func (l *lexer) skipSpace() {
	for l.off < len(l.src) {
		switch l.src[l.off] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) next() (token, *SyntaxError) {

	l.skipSpace()

	pos := Position{l.line, l.col}

	if l.off >= len(l.src) {
		return token{tokenEOF, "", pos}, nil
	}

	start := l.off

	switch c := l.src[l.off]; {

	case c == '=':
		l.advance()
		return token{tokenEquals, "=", pos}, nil

	case c == '(':
		l.advance()
		return token{tokenLParen, "(", pos}, nil

	case c == ')':
		l.advance()
		return token{tokenRParen, ")", pos}, nil

	case isDigit(c):
		for l.off < len(l.src) && isDigit(l.src[l.off]) {
			l.advance()
		}
		if l.off < len(l.src) && isWordByte(l.src[l.off]) {
			return token{}, &SyntaxError{Position: Position{l.line, l.col}, Problem: "unexpected letter in integer literal"}
		}
		return token{tokenInt, l.src[start:l.off], pos}, nil

	case isLetter(c):
		for l.off < len(l.src) && isWordByte(l.src[l.off]) {
			l.advance()
		}
		return token{tokenWord, l.src[start:l.off], pos}, nil

	default:
		return token{}, &SyntaxError{Position: pos, Problem: fmt.Sprintf("unexpected character %q", rune(c))}

	}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isWordByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
