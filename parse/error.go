// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package parse

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
)

// Position is a 1-based line and column in the source text.
// It is the annotation of every parsed expression node.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

type SyntaxError struct {
	Position Position
	Problem  string
}

var _ err.Error = (*SyntaxError)(nil)

func (e *SyntaxError) Error() string {
	return e.String()
}

func (e *SyntaxError) String() string {
	title := "Syntax Error"
	out := fmt.Sprintf("%s\n%s\n", title, underline(title, '='))
	out += fmt.Sprintf("Problem\n-------\n%s\n\n", e.Problem)
	out += fmt.Sprintf("Location\n--------\n%s\n\n", e.Position)
	return out
}

func (e *SyntaxError) Child() err.Error {
	return nil
}

func underline(s string, c byte) string {
	bs := make([]byte, len(s))
	for i := range bs {
		bs[i] = c
	}
	return string(bs)
}
