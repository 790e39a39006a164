// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package text

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"strconv"
)

// sexp is a parsed s-expression: either an atom, a string or a list.
type sexp struct {
	offset int
	atom   string // set for atoms and strings
	quoted bool
	list   []sexp
	isList bool
}

func (s sexp) head() string {
	if !s.isList || len(s.list) == 0 || s.list[0].isList || s.list[0].quoted {
		return ""
	}
	return s.list[0].atom
}

func fail(offset int, format string, args ...interface{}) err.Error {
	return err.CodecError{Name: "wat", Problem: fmt.Sprintf(format, args...)}.SetOffset(offset)
}

type reader struct {
	src string
	off int
}

func (r *reader) skip() {
	for r.off < len(r.src) {
		switch c := r.src[r.off]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.off++
		case c == ';' && r.off+1 < len(r.src) && r.src[r.off+1] == ';':
			for r.off < len(r.src) && r.src[r.off] != '\n' {
				r.off++
			}
		default:
			return
		}
	}
}

func (r *reader) read() (sexp, err.Error) {
	r.skip()
	if r.off >= len(r.src) {
		return sexp{}, fail(r.off, "unexpected end of input")
	}
	start := r.off
	switch r.src[r.off] {

	case '(':
		r.off++
		out := sexp{offset: start, isList: true}
		for {
			r.skip()
			if r.off >= len(r.src) {
				return sexp{}, fail(start, "unclosed parenthesis")
			}
			if r.src[r.off] == ')' {
				r.off++
				return out, nil
			}
			s, e := r.read()
			if e != nil {
				return sexp{}, e
			}
			out.list = append(out.list, s)
		}

	case ')':
		return sexp{}, fail(start, "unexpected )")

	case '"':
		r.off++
		bs := make([]byte, 0, 16)
		for {
			if r.off >= len(r.src) {
				return sexp{}, fail(start, "unterminated string")
			}
			c := r.src[r.off]
			r.off++
			if c == '"' {
				return sexp{offset: start, atom: string(bs), quoted: true}, nil
			}
			if c != '\\' {
				bs = append(bs, c)
				continue
			}
			if r.off+2 > len(r.src) {
				return sexp{}, fail(r.off, "truncated escape")
			}
			b, e := strconv.ParseUint(r.src[r.off:r.off+2], 16, 8)
			if e != nil {
				return sexp{}, fail(r.off, "invalid escape \\%s", r.src[r.off:r.off+2])
			}
			bs = append(bs, byte(b))
			r.off += 2
		}

	}

	for r.off < len(r.src) {
		c := r.src[r.off]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '"' {
			break
		}
		r.off++
	}
	return sexp{offset: start, atom: r.src[start:r.off]}, nil
}

// Parse reads a module in the format produced by Render.
func Parse(src string) (inst.Module, err.Error) {

	r := &reader{src: src}
	top, e := r.read()
	if e != nil {
		return inst.Module{}, e
	}
	r.skip()
	if r.off != len(src) {
		return inst.Module{}, fail(r.off, "trailing input after module")
	}

	if top.head() != "module" || len(top.list) != 2 {
		return inst.Module{}, fail(top.offset, "expected (module (func ...))")
	}

	m, e := function(top.list[1])
	if e != nil {
		return inst.Module{}, e
	}
	if e := m.Validate(); e != nil {
		return inst.Module{}, err.CodecError{Name: "wat", Problem: "parsed module is invalid", Child_: e}.SetOffset(top.offset)
	}
	return m, nil
}

func function(f sexp) (inst.Module, err.Error) {

	m := inst.Module{}

	if f.head() != "func" {
		return m, fail(f.offset, "expected (func ...)")
	}

	rest := f.list[1:]

	if len(rest) > 0 && !rest[0].isList && !rest[0].quoted && len(rest[0].atom) > 1 && rest[0].atom[0] == '$' {
		rest = rest[1:]
	}

	if len(rest) == 0 || rest[0].head() != "export" || len(rest[0].list) != 2 || !rest[0].list[1].quoted {
		return m, fail(f.offset, `expected (export "name")`)
	}
	m.Export = rest[0].list[1].atom
	rest = rest[1:]

	if len(rest) == 0 || rest[0].head() != "result" || len(rest[0].list) != 2 || rest[0].list[1].atom != "i32" {
		return m, fail(f.offset, "expected (result i32)")
	}
	rest = rest[1:]

	for len(rest) > 0 && rest[0].head() == "local" {
		for _, t := range rest[0].list[1:] {
			if t.isList || t.atom != "i32" {
				return m, fail(t.offset, "only i32 locals are supported")
			}
			m.Locals++
		}
		rest = rest[1:]
	}

	body, e := instructions(rest)
	if e != nil {
		return m, e
	}
	m.Body = append(body, inst.End{})
	return m, nil
}

func instructions(ss []sexp) (inst.Sequence, err.Error) {
	out := make(inst.Sequence, 0, len(ss))
	for _, s := range ss {
		in, e := instruction(s)
		if e != nil {
			return nil, e
		}
		out = append(out, in)
	}
	return out, nil
}

func instruction(s sexp) (inst.Instruction, err.Error) {

	switch s.head() {

	case "i32.const":
		if len(s.list) != 2 || s.list[1].isList {
			return nil, fail(s.offset, "expected (i32.const N)")
		}
		n, e := strconv.ParseInt(s.list[1].atom, 10, 32)
		if e != nil {
			return nil, fail(s.list[1].offset, "invalid i32 %q", s.list[1].atom)
		}
		return inst.Constant{Value: int32(n)}, nil

	case "select":
		if len(s.list) != 1 {
			return nil, fail(s.offset, "expected (select)")
		}
		return inst.Select{}, nil

	case "local.get", "local.set":
		if len(s.list) != 2 || s.list[1].isList {
			return nil, fail(s.offset, "expected (%s N)", s.head())
		}
		n, e := strconv.ParseUint(s.list[1].atom, 10, 32)
		if e != nil {
			return nil, fail(s.list[1].offset, "invalid local index %q", s.list[1].atom)
		}
		if s.head() == "local.get" {
			return inst.LocalGet{Index: uint32(n)}, nil
		}
		return inst.LocalSet{Index: uint32(n)}, nil

	case "if":
		if len(s.list) != 4 ||
			s.list[1].head() != "result" || len(s.list[1].list) != 2 || s.list[1].list[1].atom != "i32" ||
			s.list[2].head() != "then" || s.list[3].head() != "else" {
			return nil, fail(s.offset, "expected (if (result i32) (then ...) (else ...))")
		}
		then, e := instructions(s.list[2].list[1:])
		if e != nil {
			return nil, e
		}
		elze, e := instructions(s.list[3].list[1:])
		if e != nil {
			return nil, e
		}
		return inst.If{Then: then, Else: elze}, nil

	}

	return nil, fail(s.offset, "unsupported instruction %q", s.head())
}
