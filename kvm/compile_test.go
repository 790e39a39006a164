// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/karmarun/exprc/kvm/xpr"
	"github.com/kr/pretty"
	"strings"
	"testing"
)

func TestLowerSelect(t *testing.T) {
	m := Lower(xpr.IfThenElse(xpr.Bool(true), xpr.Int(42), xpr.Int(41)), Target{})
	expect := inst.Module{
		Export: "main",
		Body: inst.Sequence{
			inst.Constant{Value: 42},
			inst.Constant{Value: 41},
			inst.Constant{Value: 1},
			inst.Select{},
			inst.End{},
		},
	}
	if !m.Equals(expect) {
		t.Fatalf("\n%s", strings.Join(pretty.Diff(m, expect), "\n"))
	}
}

func TestLowerBranch(t *testing.T) {
	m := Lower(xpr.IfThenElse(xpr.Bool(false), xpr.Int(21), xpr.Int(42)), Target{BranchStrategy, "f"})
	expect := inst.Module{
		Export: "f",
		Body: inst.Sequence{
			inst.Constant{Value: 0},
			inst.If{
				Then: inst.Sequence{inst.Constant{Value: 21}},
				Else: inst.Sequence{inst.Constant{Value: 42}},
			},
			inst.End{},
		},
	}
	if !m.Equals(expect) {
		t.Fatalf("\n%s", strings.Join(pretty.Diff(m, expect), "\n"))
	}
}

func TestLowerLiteral(t *testing.T) {
	for _, s := range []Strategy{SelectStrategy, BranchStrategy} {
		m := Lower(xpr.Int(21), Target{Strategy: s})
		expect := inst.Module{Export: "main", Body: inst.Sequence{inst.Constant{Value: 21}, inst.End{}}}
		if !m.Equals(expect) {
			t.Fatalf("%s: %# v", s, pretty.Formatter(m))
		}
	}
}

func TestLowerLocals(t *testing.T) {
	// let x = 5 in let y = True in if y then x else 0
	x := xpr.LetIn("x", xpr.Int(5), xpr.LetIn("y", xpr.Bool(true), xpr.IfThenElse(xpr.Ref("y"), xpr.Ref("x"), xpr.Int(0))))
	m := Lower(x, Target{BranchStrategy, ""})
	expect := inst.Module{
		Export: "main",
		Locals: 2,
		Body: inst.Sequence{
			inst.Constant{Value: 5},
			inst.LocalSet{Index: 0},
			inst.Constant{Value: 1},
			inst.LocalSet{Index: 1},
			inst.LocalGet{Index: 1},
			inst.If{
				Then: inst.Sequence{inst.LocalGet{Index: 0}},
				Else: inst.Sequence{inst.Constant{Value: 0}},
			},
			inst.End{},
		},
	}
	if !m.Equals(expect) {
		t.Fatalf("\n%s", strings.Join(pretty.Diff(m, expect), "\n"))
	}
	if e := m.Validate(); e != nil {
		t.Fatal(e)
	}
}

func TestLowerShadowing(t *testing.T) {
	// shadowed names get distinct slots; the body sees the innermost
	x := xpr.LetIn("x", xpr.Int(1), xpr.LetIn("x", xpr.Int(2), xpr.Ref("x")))
	m := Lower(x, Target{})
	if m.Locals != 2 {
		t.Fatalf("expected 2 locals, got %d", m.Locals)
	}
	if g, ok := m.Body[4].(inst.LocalGet); !ok || g.Index != 1 {
		t.Fatalf("expected local.get 1, got %# v", pretty.Formatter(m.Body[4]))
	}
}

func TestLowerUnboundPanics(t *testing.T) {
	expectInternalError(t, "unbound variable", func() {
		Lower(xpr.Ref("x"), Target{})
	})
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{SelectStrategy, BranchStrategy} {
		p, e := ParseStrategy(s.String())
		if e != nil {
			t.Fatal(e)
		}
		if p != s {
			t.Fatalf("%s parsed as %s", s, p)
		}
	}
	if _, e := ParseStrategy("jump"); e == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
