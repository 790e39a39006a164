// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"github.com/karmarun/exprc/kvm/xpr"
)

// Scope maps identifiers to V. Every let body gets its own Child scope,
// so a binding is visible in its body only and an inner binding hides an
// outer one of the same name until the body ends.
// A nil *Scope is a valid, empty scope.
type Scope[V any] struct {
	parent *Scope[V]
	scope  map[xpr.Identifier]V
}

func NewScope[V any]() *Scope[V] {
	return &Scope[V]{nil, make(map[xpr.Identifier]V)}
}

func (s *Scope[V]) Get(k xpr.Identifier) (V, bool) {
	if s == nil {
		var zero V
		return zero, false
	}
	if v, ok := s.scope[k]; ok {
		return v, true
	}
	return s.parent.Get(k)
}

func (s *Scope[V]) Set(k xpr.Identifier, v V) {
	s.scope[k] = v
}

func (s *Scope[V]) Child() *Scope[V] {
	c := NewScope[V]()
	c.parent = s
	return c
}
