// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/mdl"
	"github.com/karmarun/exprc/kvm/val"
	"github.com/karmarun/exprc/kvm/xpr"
)

// Elaborate type checks x in an empty scope and returns x with every
// annotation replaced by the model of its node.
func Elaborate[A any](x xpr.Expression[A]) (xpr.Expression[mdl.Model[A]], err.TypeError[A]) {
	return ElaborateIn(nil, x)
}

// ElaborateIn is Elaborate with a caller-supplied starting scope.
// The scope is never modified; let bindings go into child scopes.
func ElaborateIn[A any](scope *Scope[mdl.Model[A]], x xpr.Expression[A]) (xpr.Expression[mdl.Model[A]], err.TypeError[A]) {
	return infer(scope, x)
}

func infer[A any](scope *Scope[mdl.Model[A]], x xpr.Expression[A]) (xpr.Expression[mdl.Model[A]], err.TypeError[A]) {

	switch node := x.(type) {

	case xpr.Literal[A]:
		return xpr.Literal[mdl.Model[A]]{Ann: literalModel(node), Value: node.Value}, nil

	case xpr.Var[A]:
		model, ok := scope.Get(node.Name)
		if !ok {
			return nil, err.UnboundVariable[A]{Ann: node.Ann, Name: node.Name.String()}
		}
		model = mdl.Map(model, func(A) A { return node.Ann })
		return xpr.Var[mdl.Model[A]]{Ann: model, Name: node.Name}, nil

	case xpr.If[A]:
		return inferIf(scope, node)

	case xpr.Let[A]:
		bound, e := infer(scope, node.Bound)
		if e != nil {
			return nil, e
		}
		body := scope.Child()
		body.Set(node.Name, bound.Annotation())
		rest, e := infer(body, node.Body)
		if e != nil {
			return nil, e
		}
		return xpr.Let[mdl.Model[A]]{
			Ann:   rest.Annotation(),
			Name:  node.Name,
			Bound: bound,
			Body:  rest,
		}, nil

	}

	panic(err.InternalError{Problem: "kvm.infer: unknown expression type"})
}

func literalModel[A any](node xpr.Literal[A]) mdl.Model[A] {
	switch node.Value.(type) {
	case val.Bool:
		return mdl.Bool[A]{Ann: node.Ann}
	case val.Int32:
		return mdl.Int[A]{Ann: node.Ann}
	}
	panic(err.InternalError{Problem: "kvm.literalModel: literal without value"})
}

func inferIf[A any](scope *Scope[mdl.Model[A]], node xpr.If[A]) (xpr.Expression[mdl.Model[A]], err.TypeError[A]) {

	condition, e := check(scope, node.Condition, mdl.Model[A](mdl.Bool[A]{Ann: node.Ann}))
	if e != nil {
		if mm, ok := e.(err.TypeMismatch[A]); ok {
			return nil, err.PredicateShouldBeBool[A]{Ann: node.Ann, Found: mm.TypeB}
		}
		return nil, e
	}

	then, e := infer(scope, node.Then)
	if e != nil {
		return nil, e
	}

	elze, e := check(scope, node.Else, then.Annotation())
	if e != nil {
		if mm, ok := e.(err.TypeMismatch[A]); ok {
			return nil, err.MismatchedIfBranches[A]{Ann: node.Ann, ThenFound: mm.TypeA, ElseFound: mm.TypeB}
		}
		return nil, e
	}

	return xpr.If[mdl.Model[A]]{
		Ann:       elze.Annotation(),
		Condition: condition,
		Then:      then,
		Else:      elze,
	}, nil
}

// check infers x and verifies it against expected. On success every
// annotation in the checked subtree is the unified model, so only the
// root annotation of a checked subtree is meaningful: an inner node such
// as a let-bound Bool under an Int branch carries Int too.
func check[A any](scope *Scope[mdl.Model[A]], x xpr.Expression[A], expected mdl.Model[A]) (xpr.Expression[mdl.Model[A]], err.TypeError[A]) {
	typed, e := infer(scope, x)
	if e != nil {
		return nil, e
	}
	combined, e := subtype(expected, typed.Annotation())
	if e != nil {
		return nil, e
	}
	return xpr.Map(typed, func(mdl.Model[A]) mdl.Model[A] { return combined }), nil
}

// subtype is equality modulo annotations; there is no real subsumption
// in this language. It returns a, keeping a's annotation.
func subtype[A any](a, b mdl.Model[A]) (mdl.Model[A], err.TypeError[A]) {
	if mdl.Compatible(a, b) {
		return a, nil
	}
	return nil, err.TypeMismatch[A]{TypeA: a, TypeB: b}
}
