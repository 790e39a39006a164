// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package engine

import (
	"context"
	"github.com/karmarun/exprc/codec/binary"
	"github.com/karmarun/exprc/kvm"
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/karmarun/exprc/kvm/xpr"
	"strings"
	"testing"
)

var strategies = []kvm.Strategy{kvm.SelectStrategy, kvm.BranchStrategy}

func TestRunKnownResults(t *testing.T) {

	cases := []struct {
		program xpr.Expression[xpr.Unit]
		expect  int32
	}{
		{xpr.IfThenElse(xpr.Bool(true), xpr.Int(42), xpr.Int(41)), 42},
		{xpr.IfThenElse(xpr.Bool(false), xpr.Int(21), xpr.Int(42)), 42},
		{xpr.Int(21), 21},
	}

	ctx := context.Background()

	for _, s := range strategies {
		for i, c := range cases {
			bs := binary.Encode(kvm.Lower(c.program, kvm.Target{Strategy: s}))
			out, e := Run(ctx, bs, inst.DefaultExport)
			if e != nil {
				t.Fatalf("%s case %d: %v", s, i, e)
			}
			if out != c.expect {
				t.Fatalf("%s case %d: got %d, want %d", s, i, out, c.expect)
			}
		}
	}
}

func TestRunMatchesInterpreter(t *testing.T) {

	bools := []xpr.Expression[xpr.Unit]{xpr.Bool(true), xpr.Bool(false)}
	ints := []xpr.Expression[xpr.Unit]{xpr.Int(0), xpr.Int(-1), xpr.Int(2147483647), xpr.Int(-2147483648)}

	programs := []xpr.Expression[xpr.Unit]{}
	for _, b := range bools {
		for _, x := range ints {
			for _, y := range ints {
				programs = append(programs, xpr.IfThenElse(b, x, y))
			}
		}
		for _, x := range bools {
			for _, y := range bools {
				programs = append(programs, xpr.IfThenElse(b, x, y))
				programs = append(programs, xpr.IfThenElse(xpr.IfThenElse(b, x, y), xpr.Int(1), xpr.Int(2)))
			}
		}
	}
	programs = append(programs,
		xpr.LetIn("a", xpr.Int(3), xpr.LetIn("b", xpr.Bool(false), xpr.IfThenElse(xpr.Ref("b"), xpr.Int(9), xpr.Ref("a")))),
		xpr.LetIn("x", xpr.Int(1), xpr.IfThenElse(xpr.LetIn("x", xpr.Bool(true), xpr.Ref("x")), xpr.Ref("x"), xpr.Int(0))),
		xpr.IfThenElse(xpr.Bool(false), xpr.LetIn("p", xpr.Int(8), xpr.Ref("p")), xpr.LetIn("q", xpr.Int(9), xpr.Ref("q"))),
	)

	ctx := context.Background()
	vm := kvm.VirtualMachine{}

	for i, x := range programs {
		if _, e := kvm.Elaborate(x); e != nil {
			t.Fatalf("program %d: %v", i, e)
		}
		expect := kvm.EvaluateValue(x).Int32()
		for _, s := range strategies {
			m := kvm.Lower(x, kvm.Target{Strategy: s})
			got, e := vm.Execute(m)
			if e != nil {
				t.Fatalf("%s program %d: %v", s, i, e)
			}
			if got != expect {
				t.Fatalf("%s program %d (%s): vm %d, interpreter %d", s, i, xpr.ToHuman(x), got, expect)
			}
			out, e2 := Run(ctx, binary.Encode(m), m.Export)
			if e2 != nil {
				t.Fatalf("%s program %d: %v", s, i, e2)
			}
			if out != expect {
				t.Fatalf("%s program %d (%s): wazero %d, interpreter %d", s, i, xpr.ToHuman(x), out, expect)
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	{
		_, e := Run(ctx, []byte("not wasm"), "main")
		if e == nil || !strings.Contains(e.Error(), "instantiating module") {
			t.Fatalf("case 1: %v", e)
		}
	}
	{
		bs := binary.Encode(kvm.Lower(xpr.Int(1), kvm.Target{}))
		_, e := Run(ctx, bs, "other")
		if e == nil || !strings.Contains(e.Error(), "export not found") {
			t.Fatalf("case 2: %v", e)
		}
	}
}
