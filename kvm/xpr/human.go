// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"strings"
)

// ToHuman renders an expression in the concrete syntax accepted by package parse.
// Nested conditionals and lets in non-tail positions are parenthesized.
func ToHuman[A any](x Expression[A]) string {
	sb := &strings.Builder{}
	toHuman(sb, x, false)
	return sb.String()
}

func toHuman[A any](sb *strings.Builder, x Expression[A], nested bool) {
	switch node := x.(type) {

	case Literal[A]:
		sb.WriteString(node.Value.String())

	case Var[A]:
		sb.WriteString(node.Name.String())

	case If[A]:
		if nested {
			sb.WriteByte('(')
		}
		sb.WriteString("if ")
		toHuman(sb, node.Condition, true)
		sb.WriteString(" then ")
		toHuman(sb, node.Then, true)
		sb.WriteString(" else ")
		toHuman(sb, node.Else, false)
		if nested {
			sb.WriteByte(')')
		}

	case Let[A]:
		if nested {
			sb.WriteByte('(')
		}
		sb.WriteString("let ")
		sb.WriteString(node.Name.String())
		sb.WriteString(" = ")
		toHuman(sb, node.Bound, true)
		sb.WriteString(" in ")
		toHuman(sb, node.Body, false)
		if nested {
			sb.WriteByte(')')
		}

	default:
		panic("xpr.ToHuman: unknown expression type")
	}
}
