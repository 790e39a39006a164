// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package err

import (
	"github.com/karmarun/exprc/kvm/mdl"
)

// TypeError is returned by elaboration. A is the annotation type of
// the elaborated tree; annotations locate the offending nodes.
type TypeError[A any] interface {
	Error
	_typeError() // private interface
}

// PredicateShouldBeBool: the condition of an if expression is not a Bool.
type PredicateShouldBeBool[A any] struct {
	Ann   A
	Found mdl.Model[A]
}

// MismatchedIfBranches: then and else branches have incompatible types.
type MismatchedIfBranches[A any] struct {
	Ann       A
	ThenFound mdl.Model[A]
	ElseFound mdl.Model[A]
}

// TypeMismatch is raised by the subtype check. Callers re-tag it
// into one of the more specific errors above.
type TypeMismatch[A any] struct {
	TypeA mdl.Model[A]
	TypeB mdl.Model[A]
}

type UnboundVariable[A any] struct {
	Ann  A
	Name string
}

// TypeError implementations
var (
	_ TypeError[struct{}] = PredicateShouldBeBool[struct{}]{}
	_ TypeError[struct{}] = MismatchedIfBranches[struct{}]{}
	_ TypeError[struct{}] = TypeMismatch[struct{}]{}
	_ TypeError[struct{}] = UnboundVariable[struct{}]{}
)

func (PredicateShouldBeBool[A]) _typeError() {}
func (MismatchedIfBranches[A]) _typeError()  {}
func (TypeMismatch[A]) _typeError()          {}
func (UnboundVariable[A]) _typeError()       {}

func (e PredicateShouldBeBool[A]) Error() string {
	return e.String()
}
func (e PredicateShouldBeBool[A]) String() string {
	out := heading("Type Error")
	out += section("Problem", "predicate of if expression should be Bool")
	if l := location(e.Ann); l != "" {
		out += section("Location", l)
	}
	out += section("Expected", mdl.KindBool.String())
	out += section("Actual", modelToHuman(e.Found))
	return out
}
func (e PredicateShouldBeBool[A]) Child() Error {
	return nil
}

func (e MismatchedIfBranches[A]) Error() string {
	return e.String()
}
func (e MismatchedIfBranches[A]) String() string {
	out := heading("Type Error")
	out += section("Problem", "branches of if expression have different types")
	if l := location(e.Ann); l != "" {
		out += section("Location", l)
	}
	out += section("Then", modelToHuman(e.ThenFound))
	out += section("Else", modelToHuman(e.ElseFound))
	return out
}
func (e MismatchedIfBranches[A]) Child() Error {
	return nil
}

func (e TypeMismatch[A]) Error() string {
	return e.String()
}
func (e TypeMismatch[A]) String() string {
	out := heading("Type Error")
	out += section("Problem", "type mismatch")
	out += section("Expected", modelToHuman(e.TypeA))
	out += section("Actual", modelToHuman(e.TypeB))
	return out
}
func (e TypeMismatch[A]) Child() Error {
	return nil
}

func (e UnboundVariable[A]) Error() string {
	return e.String()
}
func (e UnboundVariable[A]) String() string {
	out := heading("Type Error")
	out += section("Problem", `unbound variable "`+e.Name+`"`)
	if l := location(e.Ann); l != "" {
		out += section("Location", l)
	}
	return out
}
func (e UnboundVariable[A]) Child() Error {
	return nil
}

func modelToHuman[A any](m mdl.Model[A]) string {
	if m == nil {
		return "(unknown)"
	}
	if l := location(m.Annotation()); l != "" {
		return m.String() + " (at " + l + ")"
	}
	return m.String()
}
