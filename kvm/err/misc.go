// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package err

import (
	"fmt"
)

// InternalError signals a pipeline-ordering bug, e.g. a free variable
// reaching the interpreter. It is used as a panic value, never returned.
type InternalError struct {
	Problem string
}

func (e InternalError) Error() string {
	return e.String()
}
func (e InternalError) String() string {
	out := heading("Internal Error")
	out += section("Problem", e.Problem)
	return out
}
func (e InternalError) Child() Error {
	return nil
}

// ExecutionError is a trap raised while running a compiled module.
type ExecutionError struct {
	Problem string
	Child_  Error
}

func (e ExecutionError) Error() string {
	return e.String()
}
func (e ExecutionError) String() string {
	out := heading("Execution Error")
	out += section("Problem", e.Problem)
	if e.Child_ != nil {
		out += e.Child_.String()
	}
	return out
}
func (e ExecutionError) Child() Error {
	return e.Child_
}

// ValidationError reports a malformed instruction module.
type ValidationError struct {
	Problem string
}

func (e ValidationError) Error() string {
	return e.String()
}
func (e ValidationError) String() string {
	out := heading("Validation Error")
	out += section("Problem", e.Problem)
	return out
}
func (e ValidationError) Child() Error {
	return nil
}

type CodecError struct {
	Name    string // the name of the codec
	Offset_ int
	Problem string
	Child_  Error
}

func (e CodecError) SetOffset(o int) CodecError {
	e.Offset_ = o
	return e
}
func (e CodecError) Offset() int {
	return e.Offset_
}
func (e CodecError) Error() string {
	return e.String()
}
func (e CodecError) String() string {
	out := heading("Codec Error")
	out += section("Codec", e.Name)
	out += section("Offset", fmt.Sprintf("%d", e.Offset_))
	if e.Problem != "" {
		out += section("Problem", e.Problem)
	}
	if e.Child_ != nil {
		out += e.Child_.String()
	}
	return out
}
func (e CodecError) Child() Error {
	return e.Child_
}
