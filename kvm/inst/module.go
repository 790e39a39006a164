// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package inst

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
)

const DefaultExport = "main"

// Module is a single exported function taking no parameters and
// returning one i32. Locals are all of type i32. Body is terminated by End.
type Module struct {
	Export string
	Locals uint32
	Body   Sequence
}

func (m Module) Equals(n Module) bool {
	return m.Export == n.Export && m.Locals == n.Locals && m.Body.Equals(n.Body)
}

// Validate checks that m is well-formed: Body ends with its only top-level End,
// local indices are in range and the function leaves exactly one value.
func (m Module) Validate() err.Error {
	if m.Export == "" {
		return err.ValidationError{Problem: "module has no export name"}
	}
	if len(m.Body) == 0 {
		return err.ValidationError{Problem: "empty function body"}
	}
	if _, ok := m.Body[len(m.Body)-1].(End); !ok {
		return err.ValidationError{Problem: "function body is not terminated by end"}
	}
	depth, e := validateSequence(m.Body[:len(m.Body)-1], m.Locals)
	if e != nil {
		return e
	}
	if depth != 1 {
		return err.ValidationError{Problem: fmt.Sprintf("function leaves %d values on the stack, want 1", depth)}
	}
	return nil
}

func validateSequence(s Sequence, locals uint32) (int, err.Error) {
	depth := 0
	for pc, in := range s {
		switch it := in.(type) {

		case Constant:
			depth++

		case Select:
			if depth < 3 {
				return 0, err.ValidationError{Problem: fmt.Sprintf("select at %d needs 3 operands, have %d", pc, depth)}
			}
			depth -= 2

		case If:
			if depth < 1 {
				return 0, err.ValidationError{Problem: fmt.Sprintf("if at %d has no condition", pc)}
			}
			for _, arm := range []Sequence{it.Then, it.Else} {
				n, e := validateSequence(arm, locals)
				if e != nil {
					return 0, e
				}
				if n != 1 {
					return 0, err.ValidationError{Problem: fmt.Sprintf("arm of if at %d leaves %d values, want 1", pc, n)}
				}
			}

		case LocalGet:
			if it.Index >= locals {
				return 0, err.ValidationError{Problem: fmt.Sprintf("local.get %d out of range (%d locals)", it.Index, locals)}
			}
			depth++

		case LocalSet:
			if it.Index >= locals {
				return 0, err.ValidationError{Problem: fmt.Sprintf("local.set %d out of range (%d locals)", it.Index, locals)}
			}
			if depth < 1 {
				return 0, err.ValidationError{Problem: fmt.Sprintf("local.set at %d has no operand", pc)}
			}
			depth--

		case End:
			return 0, err.ValidationError{Problem: fmt.Sprintf("unexpected end at %d", pc)}

		default:
			return 0, err.ValidationError{Problem: fmt.Sprintf("unknown instruction %T at %d", in, pc)}
		}
	}
	return depth, nil
}
