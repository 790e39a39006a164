// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package binary implements the WebAssembly 1.0 binary encoding of an
// instruction module: one type, one function, one export and its code.
package binary

import (
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
)

const MediaType = "application/wasm"

var Magic = []byte{0x00, 0x61, 0x73, 0x6d}
var Version = []byte{0x01, 0x00, 0x00, 0x00}

type Section byte

const (
	SectionType     Section = 1
	SectionFunction Section = 3
	SectionExport   Section = 7
	SectionCode     Section = 10
)

func (s Section) String() string {
	switch s {
	case SectionType:
		return "type"
	case SectionFunction:
		return "function"
	case SectionExport:
		return "export"
	case SectionCode:
		return "code"
	}
	return "unknown"
}

const (
	typeI32    byte = 0x7f
	typeFunc   byte = 0x60
	exportFunc byte = 0x00
)

type Opcode byte

const (
	OpIf       Opcode = 0x04
	OpElse     Opcode = 0x05
	OpEnd      Opcode = 0x0b
	OpSelect   Opcode = 0x1b
	OpLocalGet Opcode = 0x20
	OpLocalSet Opcode = 0x21
	OpI32Const Opcode = 0x41
)

var sharedInstance = WasmCodec{}

func init() {
	codec.Register("wasm", func() codec.Interface { return sharedInstance })
}

type WasmCodec struct{}

func (WasmCodec) Decode(data []byte) (inst.Module, err.Error) {
	return Decode(data)
}

func (WasmCodec) Encode(m inst.Module) []byte {
	return Encode(m)
}

func (WasmCodec) MediaType() string {
	return MediaType
}
