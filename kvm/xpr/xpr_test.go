// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"errors"
	"github.com/karmarun/exprc/kvm/val"
	"testing"
)

func TestMap(t *testing.T) {
	x := LetIn("x", Int(1), IfThenElse(Bool(true), Ref("x"), Int(2)))

	counter := 0
	numbered := Map(x, func(Unit) int { counter++; return counter })

	if counter != Size(x) {
		t.Fatalf("visited %d nodes, tree has %d", counter, Size(x))
	}
	if Size(x) != 6 {
		t.Fatalf("size %d", Size(x))
	}
	if numbered.Annotation() != 1 {
		t.Fatalf("root annotated with %d", numbered.Annotation())
	}
	if !Equal(numbered, x) {
		t.Fatal("Map changed the structure")
	}

	seen := map[int]bool{}
	Map(numbered, func(i int) Unit {
		if seen[i] {
			t.Fatalf("annotation %d appears twice", i)
		}
		seen[i] = true
		return Unit{}
	})
}

func TestEqual(t *testing.T) {
	{
		a := Literal[int]{1, val.Int32(5)}
		b := Literal[string]{"somewhere", val.Int32(5)}
		if !Equal[int, string](a, b) {
			t.Fatal("case 1: annotations affected equality")
		}
	}
	{
		if Equal(Int(1), Bool(true)) {
			t.Fatal("case 2: 1 == True")
		}
		if Equal(Int(0), Bool(false)) {
			t.Fatal("case 3: 0 == False")
		}
	}
	{
		a := LetIn("x", Int(1), Ref("x"))
		b := LetIn("y", Int(1), Ref("y"))
		if Equal(a, b) {
			t.Fatal("case 4: names ignored")
		}
	}
	{
		a := IfThenElse(Bool(true), Int(1), Int(2))
		b := IfThenElse(Bool(true), Int(2), Int(1))
		if Equal(a, b) {
			t.Fatal("case 5: branches ignored")
		}
	}
}

func TestIdentifier(t *testing.T) {
	for _, s := range []string{"x", "abc", "x_1", "Truth", "iff", "lets", "A9"} {
		id, e := NewIdentifier(s)
		if e != nil {
			t.Fatalf("%q: %v", s, e)
		}
		if id.String() != s {
			t.Fatalf("%q: got %q", s, id)
		}
	}
	for _, s := range []string{"True", "False", "if", "then", "else", "let", "in"} {
		if _, e := NewIdentifier(s); !errors.Is(e, ErrReservedWord) {
			t.Fatalf("%q: expected ErrReservedWord, got %v", s, e)
		}
	}
	for _, s := range []string{"", "1x", "_x", "x-y", "x y", "é"} {
		if _, e := NewIdentifier(s); !errors.Is(e, ErrInvalidIdentifier) {
			t.Fatalf("%q: expected ErrInvalidIdentifier, got %v", s, e)
		}
	}
}

func TestMustIdentifierPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustIdentifier("else")
}

func TestToHuman(t *testing.T) {
	cases := []struct {
		x      Expression[Unit]
		expect string
	}{
		{Int(-3), "-3"},
		{Bool(true), "True"},
		{IfThenElse(Bool(true), Int(1), Int(2)), "if True then 1 else 2"},
		{
			IfThenElse(IfThenElse(Bool(true), Bool(false), Bool(true)), Int(1), Int(2)),
			"if (if True then False else True) then 1 else 2",
		},
		{
			LetIn("x", LetIn("y", Int(1), Ref("y")), IfThenElse(Ref("x"), Int(1), LetIn("z", Int(2), Ref("z")))),
			"let x = (let y = 1 in y) in if x then 1 else let z = 2 in z",
		},
	}
	for _, c := range cases {
		if out := ToHuman(c.x); out != c.expect {
			t.Fatalf("got %q, want %q", out, c.expect)
		}
	}
}
