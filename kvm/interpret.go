// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/val"
	"github.com/karmarun/exprc/kvm/xpr"
)

// Evaluate reduces a well-typed expression to its normal form, a Literal.
// The result carries the annotation of the node that produced the value.
//
// Evaluate expects its input to have passed Elaborate; a free variable or
// a non-boolean condition panics with err.InternalError.
func Evaluate[A any](x xpr.Expression[A]) xpr.Expression[A] {
	return evaluate(NewScope[xpr.Literal[A]](), x)
}

// EvaluateValue is Evaluate returning the bare value.
func EvaluateValue[A any](x xpr.Expression[A]) val.Value {
	return evaluate(NewScope[xpr.Literal[A]](), x).Value
}

func evaluate[A any](scope *Scope[xpr.Literal[A]], x xpr.Expression[A]) xpr.Literal[A] {

	switch node := x.(type) {

	case xpr.Literal[A]:
		return node

	case xpr.If[A]:
		condition := evaluate(scope, node.Condition)
		b, ok := condition.Value.(val.Bool)
		if !ok {
			panic(err.InternalError{Problem: fmt.Sprintf("kvm.Evaluate: condition evaluated to %s, not a boolean", condition.Value)})
		}
		if b {
			return evaluate(scope, node.Then)
		}
		return evaluate(scope, node.Else)

	case xpr.Let[A]:
		bound := evaluate(scope, node.Bound)
		body := scope.Child()
		body.Set(node.Name, bound)
		return evaluate(body, node.Body)

	case xpr.Var[A]:
		if v, ok := scope.Get(node.Name); ok {
			return v
		}
		panic(err.InternalError{Problem: fmt.Sprintf("kvm.Evaluate: free variable %s", node.Name)})

	}

	panic(err.InternalError{Problem: fmt.Sprintf("kvm.Evaluate: unknown expression type %T", x)})
}
