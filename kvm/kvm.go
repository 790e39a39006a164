// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/karmarun/exprc/kvm/mdl"
	"github.com/karmarun/exprc/kvm/val"
	"github.com/karmarun/exprc/kvm/xpr"
	"github.com/karmarun/exprc/parse"
	"github.com/kr/pretty"
)

const Version = `0.3.0`

// Typed is the result of elaborating parsed source.
type Typed = xpr.Expression[mdl.Model[parse.Position]]

// Check parses and elaborates src. The returned error is either a
// *parse.SyntaxError or an err.TypeError[parse.Position].
func Check(src string) (Typed, error) {
	x, e := parse.Parse(src)
	if e != nil {
		return nil, e
	}
	typed, te := Elaborate(x)
	if te != nil {
		return nil, te
	}
	return typed, nil
}

// Eval checks src and evaluates it with the interpreter.
func Eval(src string) (val.Value, mdl.Model[parse.Position], error) {
	typed, e := Check(src)
	if e != nil {
		return nil, nil, e
	}
	return EvaluateValue(typed), typed.Annotation(), nil
}

// Compile checks src and lowers it for target.
func Compile(src string, target Target) (inst.Module, error) {
	typed, e := Check(src)
	if e != nil {
		return inst.Module{}, e
	}
	return Lower(typed, target), nil
}

// Dump renders any tree, model or module structurally, for debugging.
func Dump(v interface{}) string {
	return fmt.Sprintf("%# v", pretty.Formatter(v))
}
