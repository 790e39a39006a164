// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package inst

// Instruction is a stack-machine instruction operating on i32 values.
type Instruction interface {
	_inst() // private interface
}

// Constant pushes Value (i32.const).
type Constant struct {
	Value int32
}

// Select pops a condition c, then b, then a and pushes a if c != 0, else b.
type Select struct{}

// If pops a condition and executes exactly one of its arms.
// Each arm must leave exactly one i32 on the stack.
type If struct {
	Then, Else Sequence
}

type LocalGet struct {
	Index uint32
}

type LocalSet struct {
	Index uint32
}

// End terminates a function body.
type End struct{}

type Sequence []Instruction

func (Constant) _inst() {}
func (Select) _inst()   {}
func (If) _inst()       {}
func (LocalGet) _inst() {}
func (LocalSet) _inst() {}
func (End) _inst()      {}

// Equals reports whether two sequences are structurally identical.
func (s Sequence) Equals(t Sequence) bool {
	if len(s) != len(t) {
		return false
	}
	for i := range s {
		switch a := s[i].(type) {
		case If:
			b, ok := t[i].(If)
			if !ok || !a.Then.Equals(b.Then) || !a.Else.Equals(b.Else) {
				return false
			}
		default:
			if _, ok := t[i].(If); ok || s[i] != t[i] {
				return false
			}
		}
	}
	return true
}
