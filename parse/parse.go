// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package parse reads the concrete syntax of the expression language:
//
//	expr := INT | "True" | "False" | IDENT
//	      | "if" expr "then" expr "else" expr
//	      | "let" IDENT "=" expr "in" expr
//	      | "(" expr ")"
//
// Integers are unsigned decimal literals of at most 10 digits that fit in an i32.
package parse

import (
	"errors"
	"fmt"
	"github.com/karmarun/exprc/kvm/val"
	"github.com/karmarun/exprc/kvm/xpr"
	"math"
	"strconv"
)

const maxIntDigits = 10

// Parse parses a complete expression. On failure the error is a *SyntaxError.
func Parse(src string) (xpr.Expression[Position], error) {
	p := &parser{lexer: newLexer(src)}
	if e := p.shift(); e != nil {
		return nil, e
	}
	x, e := p.expression()
	if e != nil {
		return nil, e
	}
	if p.tok.kind != tokenEOF {
		return nil, p.unexpected("end of input")
	}
	return x, nil
}

type parser struct {
	lexer *lexer
	tok   token // lookahead
}

func (p *parser) shift() *SyntaxError {
	t, e := p.lexer.next()
	if e != nil {
		return e
	}
	p.tok = t
	return nil
}

func (p *parser) unexpected(want string) *SyntaxError {
	return &SyntaxError{
		Position: p.tok.pos,
		Problem:  fmt.Sprintf("expected %s, found %s", want, p.tok),
	}
}

func (p *parser) keyword(w string) bool {
	return p.tok.kind == tokenWord && p.tok.text == w
}

func (p *parser) expect(w string) *SyntaxError {
	if !p.keyword(w) {
		return p.unexpected(`"` + w + `"`)
	}
	return p.shift()
}

func (p *parser) expression() (xpr.Expression[Position], *SyntaxError) {

	pos := p.tok.pos

	switch p.tok.kind {

	case tokenInt:
		v, e := parseInt(p.tok)
		if e != nil {
			return nil, e
		}
		if e := p.shift(); e != nil {
			return nil, e
		}
		return xpr.Literal[Position]{Ann: pos, Value: v}, nil

	case tokenLParen:
		if e := p.shift(); e != nil {
			return nil, e
		}
		x, e := p.expression()
		if e != nil {
			return nil, e
		}
		if p.tok.kind != tokenRParen {
			return nil, p.unexpected(`")"`)
		}
		if e := p.shift(); e != nil {
			return nil, e
		}
		return x, nil

	case tokenWord:
		switch p.tok.text {
		case "True", "False":
			v := val.Bool(p.tok.text == "True")
			if e := p.shift(); e != nil {
				return nil, e
			}
			return xpr.Literal[Position]{Ann: pos, Value: v}, nil
		case "if":
			return p.ifThenElse(pos)
		case "let":
			return p.letIn(pos)
		}
		name, e := p.identifier()
		if e != nil {
			return nil, e
		}
		return xpr.Var[Position]{Ann: pos, Name: name}, nil

	}

	return nil, p.unexpected("expression")
}

func (p *parser) identifier() (xpr.Identifier, *SyntaxError) {
	if p.tok.kind != tokenWord {
		return xpr.Identifier{}, p.unexpected("identifier")
	}
	id, e := xpr.NewIdentifier(p.tok.text)
	if e != nil {
		problem := fmt.Sprintf("invalid identifier %q", p.tok.text)
		if errors.Is(e, xpr.ErrReservedWord) {
			problem = fmt.Sprintf("reserved word %q cannot be used as an identifier", p.tok.text)
		}
		return xpr.Identifier{}, &SyntaxError{Position: p.tok.pos, Problem: problem}
	}
	return id, p.shift()
}

func (p *parser) ifThenElse(pos Position) (xpr.Expression[Position], *SyntaxError) {
	if e := p.expect("if"); e != nil {
		return nil, e
	}
	condition, e := p.expression()
	if e != nil {
		return nil, e
	}
	if e := p.expect("then"); e != nil {
		return nil, e
	}
	then, e := p.expression()
	if e != nil {
		return nil, e
	}
	if e := p.expect("else"); e != nil {
		return nil, e
	}
	elze, e := p.expression()
	if e != nil {
		return nil, e
	}
	return xpr.If[Position]{
		Ann:       pos,
		Condition: condition,
		Then:      then,
		Else:      elze,
	}, nil
}

func (p *parser) letIn(pos Position) (xpr.Expression[Position], *SyntaxError) {
	if e := p.expect("let"); e != nil {
		return nil, e
	}
	name, e := p.identifier()
	if e != nil {
		return nil, e
	}
	if p.tok.kind != tokenEquals {
		return nil, p.unexpected(`"="`)
	}
	if e := p.shift(); e != nil {
		return nil, e
	}
	bound, e := p.expression()
	if e != nil {
		return nil, e
	}
	if e := p.expect("in"); e != nil {
		return nil, e
	}
	body, e := p.expression()
	if e != nil {
		return nil, e
	}
	return xpr.Let[Position]{
		Ann:   pos,
		Name:  name,
		Bound: bound,
		Body:  body,
	}, nil
}

func parseInt(t token) (val.Value, *SyntaxError) {
	if len(t.text) > maxIntDigits {
		return nil, &SyntaxError{Position: t.pos, Problem: fmt.Sprintf("integer literal %s has more than %d digits", t.text, maxIntDigits)}
	}
	n, e := strconv.ParseInt(t.text, 10, 64)
	if e != nil || n > math.MaxInt32 {
		return nil, &SyntaxError{Position: t.pos, Problem: fmt.Sprintf("integer literal %s does not fit in 32 bits", t.text)}
	}
	return val.Int32(n), nil
}
