// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package mdl

// Model is the type of an expression. Like expressions, models carry
// an annotation of type A. Annotations record provenance for error
// messages only; they never affect whether two models are compatible.
type Model[A any] interface {
	Annotation() A
	Kind() Kind
	String() string
	_mdl() // private interface
}

type Kind byte

const (
	KindInt Kind = iota + 1
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	}
	return "Invalid"
}

type Int[A any] struct {
	Ann A
}

type Bool[A any] struct {
	Ann A
}

func (m Int[A]) Annotation() A  { return m.Ann }
func (m Bool[A]) Annotation() A { return m.Ann }

func (Int[A]) Kind() Kind  { return KindInt }
func (Bool[A]) Kind() Kind { return KindBool }

func (Int[A]) String() string  { return KindInt.String() }
func (Bool[A]) String() string { return KindBool.String() }

func (Int[A]) _mdl()  {}
func (Bool[A]) _mdl() {}

// Map returns a model of the same kind with its annotation mapped through f.
func Map[A, B any](m Model[A], f func(A) B) Model[B] {
	switch m := m.(type) {
	case Int[A]:
		return Int[B]{f(m.Ann)}
	case Bool[A]:
		return Bool[B]{f(m.Ann)}
	}
	panic("mdl.Map: unknown model type")
}

func Erase[A any](m Model[A]) Model[struct{}] {
	return Map(m, func(A) struct{} { return struct{}{} })
}

// Compatible reports whether two models agree after erasing their annotations.
func Compatible[A, B any](a Model[A], b Model[B]) bool {
	return Erase(a) == Erase(b)
}

// Annotate returns a model of kind k carrying annotation a.
func Annotate[A any](k Kind, a A) Model[A] {
	switch k {
	case KindInt:
		return Int[A]{a}
	case KindBool:
		return Bool[A]{a}
	}
	panic("mdl.Annotate: invalid kind")
}
