// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package val

type Type byte

const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt32
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt32:
		return "int32"
	}
	return "invalid"
}
