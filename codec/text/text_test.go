// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package text

import (
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/kr/pretty"
	"strings"
	"testing"
)

func TestRenderSelect(t *testing.T) {
	m := inst.Module{
		Export: "main",
		Body:   inst.Sequence{inst.Constant{Value: 42}, inst.Constant{Value: 41}, inst.Constant{Value: 1}, inst.Select{}, inst.End{}},
	}
	expect := `(module
  (func $main (export "main") (result i32)
    (i32.const 42)
    (i32.const 41)
    (i32.const 1)
    (select)
  )
)
`
	if out := Render(m); out != expect {
		t.Fatalf("got\n%s\nwant\n%s", out, expect)
	}
}

func TestRenderBranchAndLocals(t *testing.T) {
	m := inst.Module{
		Export: "main",
		Locals: 2,
		Body: inst.Sequence{
			inst.Constant{Value: 0},
			inst.LocalSet{Index: 0},
			inst.LocalGet{Index: 0},
			inst.If{
				Then: inst.Sequence{inst.Constant{Value: 21}},
				Else: inst.Sequence{
					inst.Constant{Value: -5},
					inst.LocalSet{Index: 1},
					inst.LocalGet{Index: 1},
				},
			},
			inst.End{},
		},
	}
	expect := `(module
  (func $main (export "main") (result i32)
    (local i32 i32)
    (i32.const 0)
    (local.set 0)
    (local.get 0)
    (if (result i32)
      (then
        (i32.const 21)
      )
      (else
        (i32.const -5)
        (local.set 1)
        (local.get 1)
      )
    )
  )
)
`
	out := Render(m)
	if out != expect {
		t.Fatalf("got\n%s\nwant\n%s", out, expect)
	}
	if Render(m) != out {
		t.Fatal("rendering is not deterministic")
	}
}

func TestRoundTrip(t *testing.T) {
	modules := []inst.Module{
		{Export: "main", Body: inst.Sequence{inst.Constant{Value: 21}, inst.End{}}},
		{Export: "odd name\"", Body: inst.Sequence{inst.Constant{Value: 21}, inst.End{}}},
		{Export: "main", Locals: 3, Body: inst.Sequence{
			inst.Constant{Value: 1},
			inst.LocalSet{Index: 2},
			inst.LocalGet{Index: 2},
			inst.If{
				Then: inst.Sequence{inst.Constant{Value: 1}, inst.Constant{Value: 2}, inst.LocalGet{Index: 2}, inst.Select{}},
				Else: inst.Sequence{inst.Constant{Value: 0}, inst.If{Then: inst.Sequence{inst.Constant{Value: 3}}, Else: inst.Sequence{inst.Constant{Value: 4}}}},
			},
			inst.End{},
		}},
	}
	for i, m := range modules {
		n, e := Parse(Render(m))
		if e != nil {
			t.Fatalf("case %d: %v", i, e)
		}
		if !n.Equals(m) {
			t.Fatalf("case %d:\n%s", i, strings.Join(pretty.Diff(n, m), "\n"))
		}
	}
}

func TestParseHandwritten(t *testing.T) {
	src := `;; hand written
(module (func $f (export "f") (result i32) (local i32) (local i32)
  (i32.const 7) (local.set 1) (local.get 1)))`
	m, e := Parse(src)
	if e != nil {
		t.Fatal(e)
	}
	expect := inst.Module{Export: "f", Locals: 2, Body: inst.Sequence{inst.Constant{Value: 7}, inst.LocalSet{Index: 1}, inst.LocalGet{Index: 1}, inst.End{}}}
	if !m.Equals(expect) {
		t.Fatalf("%# v", pretty.Formatter(m))
	}
}

func TestParseErrors(t *testing.T) {
	srcs := []string{
		``,
		`(module`,
		`(module (func (export "main") (result i32) (i32.const 1))) extra`,
		`(module (func (export "main") (result i64) (i32.const 1)))`,
		`(module (func (export "main") (result i32) (i32.add)))`,
		`(module (func (export "main") (result i32) (i32.const 99999999999)))`,
		`(module (func (export "main") (result i32) (i32.const 1) (i32.const 2)))`,
		`(module (func (export "main") (result i32) (local.get 0)))`,
		`(module (func (result i32) (i32.const 1)))`,
	}
	for i, src := range srcs {
		_, e := Parse(src)
		if e == nil {
			t.Fatalf("case %d: expected error", i)
		}
		if ce, ok := e.(err.CodecError); !ok || ce.Name != "wat" {
			t.Fatalf("case %d: expected wat CodecError, got %#v", i, e)
		}
	}
}

func TestRegistered(t *testing.T) {
	c := codec.Get("wat")
	if c == nil {
		t.Fatal("wat codec not registered")
	}
	m := inst.Module{Export: "main", Body: inst.Sequence{inst.Constant{Value: 1}, inst.End{}}}
	n, e := c.Decode(c.Encode(m))
	if e != nil {
		t.Fatal(e)
	}
	if !n.Equals(m) {
		t.Fatalf("%# v", pretty.Formatter(n))
	}
}
