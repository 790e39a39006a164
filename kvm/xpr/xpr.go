// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"github.com/karmarun/exprc/kvm/val"
)

// Expression is an expression tree whose every node carries
// an annotation of type A (a source position, an inferred type, ...).
// The set of node types is closed: Literal, If, Let and Var.
type Expression[A any] interface {
	Annotation() A
	_xpr() // private interface
}

// Unit is the annotation of trees whose annotations have been erased.
type Unit = struct{}

type Literal[A any] struct {
	Ann   A
	Value val.Value
}

type If[A any] struct {
	Ann       A
	Condition Expression[A]
	Then      Expression[A]
	Else      Expression[A]
}

// Let binds Name to the value of Bound inside Body only.
type Let[A any] struct {
	Ann   A
	Name  Identifier
	Bound Expression[A]
	Body  Expression[A]
}

type Var[A any] struct {
	Ann  A
	Name Identifier
}

func (x Literal[A]) Annotation() A { return x.Ann }
func (x If[A]) Annotation() A      { return x.Ann }
func (x Let[A]) Annotation() A     { return x.Ann }
func (x Var[A]) Annotation() A     { return x.Ann }

func (Literal[A]) _xpr() {}
func (If[A]) _xpr()      {}
func (Let[A]) _xpr()     {}
func (Var[A]) _xpr()     {}

// Map returns a structurally identical tree with every
// annotation replaced by f applied to it.
func Map[A, B any](x Expression[A], f func(A) B) Expression[B] {
	switch node := x.(type) {

	case Literal[A]:
		return Literal[B]{f(node.Ann), node.Value}

	case If[A]:
		return If[B]{
			Ann:       f(node.Ann),
			Condition: Map(node.Condition, f),
			Then:      Map(node.Then, f),
			Else:      Map(node.Else, f),
		}

	case Let[A]:
		return Let[B]{
			Ann:   f(node.Ann),
			Name:  node.Name,
			Bound: Map(node.Bound, f),
			Body:  Map(node.Body, f),
		}

	case Var[A]:
		return Var[B]{f(node.Ann), node.Name}

	}
	panic("xpr.Map: unknown expression type")
}

func Erase[A any](x Expression[A]) Expression[Unit] {
	return Map(x, func(A) Unit { return Unit{} })
}

// Equal reports whether two trees are equal when their annotations are ignored.
func Equal[A, B any](x Expression[A], y Expression[B]) bool {
	return equal(Erase(x), Erase(y))
}

func equal(x, y Expression[Unit]) bool {
	switch a := x.(type) {

	case Literal[Unit]:
		b, ok := y.(Literal[Unit])
		return ok && a.Value.Equals(b.Value)

	case If[Unit]:
		b, ok := y.(If[Unit])
		return ok && equal(a.Condition, b.Condition) && equal(a.Then, b.Then) && equal(a.Else, b.Else)

	case Let[Unit]:
		b, ok := y.(Let[Unit])
		return ok && a.Name == b.Name && equal(a.Bound, b.Bound) && equal(a.Body, b.Body)

	case Var[Unit]:
		b, ok := y.(Var[Unit])
		return ok && a.Name == b.Name

	}
	return false
}

// Size returns the number of nodes in a tree.
func Size[A any](x Expression[A]) int {
	switch node := x.(type) {
	case If[A]:
		return 1 + Size(node.Condition) + Size(node.Then) + Size(node.Else)
	case Let[A]:
		return 1 + Size(node.Bound) + Size(node.Body)
	}
	return 1
}
