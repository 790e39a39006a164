// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/val"
	"github.com/karmarun/exprc/kvm/xpr"
	"testing"
)

func TestEvaluate(t *testing.T) {

	cases := []struct {
		program xpr.Expression[xpr.Unit]
		expect  val.Value
	}{
		{xpr.Int(21), val.Int32(21)},
		{xpr.Bool(true), val.Bool(true)},
		{xpr.IfThenElse(xpr.Bool(true), xpr.Int(42), xpr.Int(41)), val.Int32(42)},
		{xpr.IfThenElse(xpr.Bool(false), xpr.Int(21), xpr.Int(42)), val.Int32(42)},
		{xpr.IfThenElse(xpr.IfThenElse(xpr.Bool(false), xpr.Bool(false), xpr.Bool(true)), xpr.Int(1), xpr.Int(2)), val.Int32(1)},
		{xpr.LetIn("x", xpr.Int(5), xpr.Ref("x")), val.Int32(5)},
		{
			xpr.LetIn("x", xpr.Int(1), xpr.LetIn("x", xpr.Int(2), xpr.Ref("x"))),
			val.Int32(2),
		},
		{
			xpr.LetIn("x", xpr.Int(1),
				xpr.IfThenElse(xpr.LetIn("x", xpr.Bool(true), xpr.Ref("x")), xpr.Ref("x"), xpr.Int(0)),
			),
			val.Int32(1),
		},
	}

	for i, c := range cases {
		if _, e := Elaborate(c.program); e != nil {
			t.Fatalf("case %d: %v", i, e)
		}
		out := Evaluate(c.program)
		lit, ok := out.(xpr.Literal[xpr.Unit])
		if !ok {
			t.Fatalf("case %d: result is not a literal: %#v", i, out)
		}
		if !lit.Value.Equals(c.expect) {
			t.Fatalf("case %d: got %s, want %s", i, lit.Value, c.expect)
		}
		if v := EvaluateValue(c.program); !v.Equals(c.expect) {
			t.Fatalf("case %d: EvaluateValue got %s", i, v)
		}
	}
}

func TestEvaluateTypedTree(t *testing.T) {
	typed, e := Elaborate(xpr.IfThenElse(xpr.Bool(false), xpr.Int(21), xpr.Int(42)))
	if e != nil {
		t.Fatal(e)
	}
	if v := EvaluateValue(typed); !v.Equals(val.Int32(42)) {
		t.Fatalf("got %s", v)
	}
}

func expectInternalError(t *testing.T, name string, f func()) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("%s: expected panic", name)
		}
		if _, ok := r.(err.InternalError); !ok {
			t.Fatalf("%s: expected err.InternalError, got %#v", name, r)
		}
	}()
	f()
}

func TestEvaluateInvariantViolations(t *testing.T) {
	expectInternalError(t, "free variable", func() {
		Evaluate(xpr.Ref("x"))
	})
	expectInternalError(t, "integer condition", func() {
		Evaluate(xpr.IfThenElse(xpr.Int(1), xpr.Int(2), xpr.Int(3)))
	})
}
