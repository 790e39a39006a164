// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"github.com/karmarun/exprc/kvm/val"
)

// constructors for trees without meaningful annotations

func Int(i int32) Expression[Unit] {
	return Literal[Unit]{Value: val.Int32(i)}
}

func Bool(b bool) Expression[Unit] {
	return Literal[Unit]{Value: val.Bool(b)}
}

func IfThenElse(condition, then, elze Expression[Unit]) Expression[Unit] {
	return If[Unit]{Condition: condition, Then: then, Else: elze}
}

// LetIn panics if name is not a valid identifier.
func LetIn(name string, bound, body Expression[Unit]) Expression[Unit] {
	return Let[Unit]{Name: MustIdentifier(name), Bound: bound, Body: body}
}

// Ref panics if name is not a valid identifier.
func Ref(name string) Expression[Unit] {
	return Var[Unit]{Name: MustIdentifier(name)}
}
