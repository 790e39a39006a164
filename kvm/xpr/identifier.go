// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package xpr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrReservedWord      = errors.New("reserved word")
)

// ReservedWords can never be used as identifiers.
var ReservedWords = map[string]struct{}{
	"True":  struct{}{},
	"False": struct{}{},
	"if":    struct{}{},
	"then":  struct{}{},
	"else":  struct{}{},
	"let":   struct{}{},
	"in":    struct{}{},
}

// Identifier is a variable name. The only way to obtain a non-zero
// Identifier is NewIdentifier, so an Identifier is never a reserved word.
type Identifier struct {
	name string
}

func NewIdentifier(s string) (Identifier, error) {
	if !IsIdentifier(s) {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	if _, ok := ReservedWords[s]; ok {
		return Identifier{}, fmt.Errorf("%w: %q", ErrReservedWord, s)
	}
	return Identifier{s}, nil
}

func MustIdentifier(s string) Identifier {
	id, e := NewIdentifier(s)
	if e != nil {
		panic(e)
	}
	return id
}

func (id Identifier) String() string {
	return id.name
}

// IsIdentifier reports whether s has the shape of an identifier:
// an ASCII letter followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if len(s) == 0 || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if c := s[i]; !isLetter(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
