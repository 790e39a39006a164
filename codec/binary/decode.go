// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package binary

import (
	"bytes"
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"unicode/utf8"
)

// Decode reads a module produced by Encode. Anything outside that
// subset of WebAssembly is rejected with an err.CodecError.
func Decode(data []byte) (inst.Module, err.Error) {
	d := &decoder{data: data}
	m, e := d.module()
	if e != nil {
		return inst.Module{}, e
	}
	if e := m.Validate(); e != nil {
		return inst.Module{}, err.CodecError{Name: "wasm", Problem: "decoded module is invalid", Child_: e}.SetOffset(d.off)
	}
	return m, nil
}

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) fail(format string, args ...interface{}) err.CodecError {
	return err.CodecError{Name: "wasm", Problem: fmt.Sprintf(format, args...)}.SetOffset(d.off)
}

func (d *decoder) readByte() (byte, err.Error) {
	if d.off >= len(d.data) {
		return 0, d.fail("unexpected end of data")
	}
	b := d.data[d.off]
	d.off++
	return b, nil
}

func (d *decoder) expect(want []byte, what string) err.Error {
	if len(d.data)-d.off < len(want) || !bytes.Equal(d.data[d.off:d.off+len(want)], want) {
		return d.fail("expected %s", what)
	}
	d.off += len(want)
	return nil
}

func (d *decoder) u32() (uint32, err.Error) {
	v, n := readUleb128(d.data[d.off:], 32)
	if n == 0 {
		return 0, d.fail("malformed unsigned LEB128")
	}
	d.off += n
	return uint32(v), nil
}

func (d *decoder) s32() (int32, err.Error) {
	v, n := readSleb128(d.data[d.off:], 32)
	if n == 0 {
		return 0, d.fail("malformed signed LEB128")
	}
	d.off += n
	return int32(v), nil
}

// section reads a section header and returns the offset its contents end at.
// Custom sections are skipped.
func (d *decoder) section(want Section) (int, err.Error) {
	for {
		id, e := d.readByte()
		if e != nil {
			return 0, e
		}
		size, e := d.u32()
		if e != nil {
			return 0, e
		}
		end := d.off + int(size)
		if end > len(d.data) {
			return 0, d.fail("section exceeds data")
		}
		if id == 0 {
			d.off = end
			continue
		}
		if Section(id) != want {
			d.off -= 1
			return 0, d.fail("expected %s section, found section %d", want, id)
		}
		return end, nil
	}
}

func (d *decoder) closeSection(end int, s Section) err.Error {
	if d.off != end {
		return d.fail("trailing bytes in %s section", s)
	}
	return nil
}

func (d *decoder) module() (inst.Module, err.Error) {

	m := inst.Module{}

	if e := d.expect(Magic, "wasm magic number"); e != nil {
		return m, e
	}
	if e := d.expect(Version, "wasm version 1"); e != nil {
		return m, e
	}

	end, e := d.section(SectionType)
	if e != nil {
		return m, e
	}
	if e := d.expect([]byte{0x01, typeFunc, 0x00, 0x01, typeI32}, "a single () -> i32 signature"); e != nil {
		return m, e
	}
	if e := d.closeSection(end, SectionType); e != nil {
		return m, e
	}

	end, e = d.section(SectionFunction)
	if e != nil {
		return m, e
	}
	if e := d.expect([]byte{0x01, 0x00}, "a single function of type 0"); e != nil {
		return m, e
	}
	if e := d.closeSection(end, SectionFunction); e != nil {
		return m, e
	}

	end, e = d.section(SectionExport)
	if e != nil {
		return m, e
	}
	if e := d.expect([]byte{0x01}, "a single export"); e != nil {
		return m, e
	}
	nameLen, e := d.u32()
	if e != nil {
		return m, e
	}
	if len(d.data)-d.off < int(nameLen) {
		return m, d.fail("export name exceeds data")
	}
	name := d.data[d.off : d.off+int(nameLen)]
	if !utf8.Valid(name) {
		return m, d.fail("export name is not valid UTF-8")
	}
	m.Export = string(name)
	d.off += int(nameLen)
	if e := d.expect([]byte{exportFunc, 0x00}, "an export of function 0"); e != nil {
		return m, e
	}
	if e := d.closeSection(end, SectionExport); e != nil {
		return m, e
	}

	end, e = d.section(SectionCode)
	if e != nil {
		return m, e
	}
	if e := d.expect([]byte{0x01}, "a single function body"); e != nil {
		return m, e
	}
	size, e := d.u32()
	if e != nil {
		return m, e
	}
	bodyEnd := d.off + int(size)
	if bodyEnd != end {
		return m, d.fail("function body size does not match code section")
	}

	groups, e := d.u32()
	if e != nil {
		return m, e
	}
	for i := uint32(0); i < groups; i++ {
		n, e := d.u32()
		if e != nil {
			return m, e
		}
		t, e := d.readByte()
		if e != nil {
			return m, e
		}
		if t != typeI32 {
			return m, d.fail("local of type 0x%02x, only i32 is supported", t)
		}
		if m.Locals+n < m.Locals {
			return m, d.fail("too many locals")
		}
		m.Locals += n
	}

	body, term, e := d.sequence(bodyEnd)
	if e != nil {
		return m, e
	}
	if term != OpEnd {
		return m, d.fail("unexpected else")
	}
	m.Body = append(body, inst.End{})

	if e := d.closeSection(end, SectionCode); e != nil {
		return m, e
	}
	if d.off != len(d.data) {
		return m, d.fail("trailing data after code section")
	}
	return m, nil
}

// sequence reads instructions up to and including the next else or end
// at this nesting level and reports which of the two it stopped at.
func (d *decoder) sequence(limit int) (inst.Sequence, Opcode, err.Error) {

	s := inst.Sequence{}

	for {
		if d.off >= limit {
			return nil, 0, d.fail("function body ends without end")
		}
		op := Opcode(d.data[d.off])
		d.off++

		switch op {

		case OpEnd, OpElse:
			return s, op, nil

		case OpI32Const:
			v, e := d.s32()
			if e != nil {
				return nil, 0, e
			}
			s = append(s, inst.Constant{Value: v})

		case OpSelect:
			s = append(s, inst.Select{})

		case OpLocalGet:
			i, e := d.u32()
			if e != nil {
				return nil, 0, e
			}
			s = append(s, inst.LocalGet{Index: i})

		case OpLocalSet:
			i, e := d.u32()
			if e != nil {
				return nil, 0, e
			}
			s = append(s, inst.LocalSet{Index: i})

		case OpIf:
			bt, e := d.readByte()
			if e != nil {
				return nil, 0, e
			}
			if bt != typeI32 {
				return nil, 0, d.fail("if with block type 0x%02x, only i32 is supported", bt)
			}
			then, term, e := d.sequence(limit)
			if e != nil {
				return nil, 0, e
			}
			if term != OpElse {
				return nil, 0, d.fail("if without else")
			}
			elze, term, e := d.sequence(limit)
			if e != nil {
				return nil, 0, e
			}
			if term != OpEnd {
				return nil, 0, d.fail("duplicate else")
			}
			s = append(s, inst.If{Then: then, Else: elze})

		default:
			d.off--
			return nil, 0, d.fail("unsupported opcode 0x%02x", byte(op))

		}
	}
}
