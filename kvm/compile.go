// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/karmarun/exprc/kvm/xpr"
	"strings"
)

// Strategy selects how conditionals are lowered.
type Strategy byte

const (
	// SelectStrategy evaluates both arms and picks one with select.
	SelectStrategy Strategy = iota
	// BranchStrategy emits a structured if/else block.
	BranchStrategy
)

var strategyNames = map[Strategy]string{
	SelectStrategy: "select",
	BranchStrategy: "branch",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", byte(s))
}

func ParseStrategy(s string) (Strategy, error) {
	for k, v := range strategyNames {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q (want select or branch)", s)
}

// Target describes the module Lower produces.
type Target struct {
	Strategy Strategy
	Export   string // defaults to inst.DefaultExport
}

// Lower translates an expression into a single-function module.
// It does no type checking: x must have passed Elaborate.
func Lower[A any](x xpr.Expression[A], target Target) inst.Module {
	export := target.Export
	if export == "" {
		export = inst.DefaultExport
	}
	l := &lowerer[A]{strategy: target.Strategy}
	body := l.lower(nil, x, make(inst.Sequence, 0, 2*xpr.Size(x)+1))
	return inst.Module{
		Export: export,
		Locals: l.locals,
		Body:   append(body, inst.End{}),
	}
}

type lowerer[A any] struct {
	strategy Strategy
	locals   uint32 // slots allocated so far
}

func (l *lowerer[A]) lower(scope *Scope[uint32], x xpr.Expression[A], prev inst.Sequence) inst.Sequence {

	switch node := x.(type) {

	case xpr.Literal[A]:
		return append(prev, inst.Constant{Value: node.Value.Int32()})

	case xpr.If[A]:
		switch l.strategy {
		case SelectStrategy:
			prev = l.lower(scope, node.Then, prev)
			prev = l.lower(scope, node.Else, prev)
			prev = l.lower(scope, node.Condition, prev)
			return append(prev, inst.Select{})
		case BranchStrategy:
			prev = l.lower(scope, node.Condition, prev)
			return append(prev, inst.If{
				Then: l.lower(scope, node.Then, nil),
				Else: l.lower(scope, node.Else, nil),
			})
		}
		panic(err.InternalError{Problem: fmt.Sprintf("kvm.Lower: unknown strategy %s", l.strategy)})

	case xpr.Let[A]:
		slot := l.locals
		l.locals++
		prev = l.lower(scope, node.Bound, prev)
		prev = append(prev, inst.LocalSet{Index: slot})
		body := scope.Child()
		body.Set(node.Name, slot)
		return l.lower(body, node.Body, prev)

	case xpr.Var[A]:
		slot, ok := scope.Get(node.Name)
		if !ok {
			panic(err.InternalError{Problem: fmt.Sprintf("kvm.Lower: unbound variable %s", node.Name)})
		}
		return append(prev, inst.LocalGet{Index: slot})

	}

	panic(err.InternalError{Problem: fmt.Sprintf("kvm.Lower: unknown expression type %T", x)})
}
