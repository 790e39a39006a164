// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package val

import (
	"strconv"
)

// Value is the payload of a literal expression.
type Value interface {
	Equals(Value) bool
	// Int32 returns the machine representation of the value
	// as it lives on the stack of a compiled module.
	Int32() int32
	String() string
	Type() Type
}

type Bool bool

func (v Bool) Equals(w Value) bool {
	b, ok := w.(Bool)
	return ok && b == v
}

func (v Bool) Int32() int32 {
	if v {
		return 1
	}
	return 0
}

func (v Bool) String() string {
	if v {
		return "True"
	}
	return "False"
}

func (v Bool) Type() Type {
	return TypeBool
}

type Int32 int32

func (v Int32) Equals(w Value) bool {
	i, ok := w.(Int32)
	return ok && i == v
}

func (v Int32) Int32() int32 {
	return int32(v)
}

func (v Int32) String() string {
	return strconv.FormatInt(int64(v), 10)
}

func (v Int32) Type() Type {
	return TypeInt32
}
