// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package codec

import (
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"log"
	"sort"
)

type Instantiator func() Interface

// Interface translates instruction modules to and from an external representation.
// Encoders may assume a module that passes inst.Module.Validate.
type Interface interface {
	Decode([]byte) (inst.Module, err.Error)
	Encode(inst.Module) []byte
	// MediaType is sent as Content-Type by the HTTP service.
	MediaType() string
}

// Not thread-safe
var registry = make(map[string]Instantiator)

func Register(key string, itr Instantiator) {
	if _, ok := registry[key]; ok {
		log.Panicf(`Codec already registered for key: %s`, key)
	}
	registry[key] = itr
}

// Available returns the registered codec keys in sorted order.
func Available() []string {
	decs := make([]string, 0, len(registry))
	for k, _ := range registry {
		decs = append(decs, k)
	}
	sort.Strings(decs)
	return decs
}

func Get(key string) Interface {
	i := registry[key]
	if i == nil {
		return nil
	}
	return i()
}
