// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package binary

import (
	"bytes"
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/kr/pretty"
	"math"
	"strings"
	"testing"
)

func TestEncodeConstant(t *testing.T) {
	m := inst.Module{Export: "main", Body: inst.Sequence{inst.Constant{Value: 21}, inst.End{}}}
	expect := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
		0x03, 0x02, 0x01, 0x00,
		0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00,
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x15, 0x0b,
	}
	if bs := Encode(m); !bytes.Equal(bs, expect) {
		t.Fatalf("got  % x\nwant % x", bs, expect)
	}
}

func TestEncodeInstructions(t *testing.T) {
	m := inst.Module{
		Export: "f",
		Locals: 1,
		Body: inst.Sequence{
			inst.Constant{Value: -1},
			inst.LocalSet{Index: 0},
			inst.LocalGet{Index: 0},
			inst.Constant{Value: 64},
			inst.Constant{Value: 1},
			inst.Select{},
			inst.If{Then: inst.Sequence{inst.Constant{Value: 1}}, Else: inst.Sequence{inst.Constant{Value: 0}}},
			inst.End{},
		},
	}
	bs := Encode(m)
	code := []byte{
		0x01, 0x01, 0x7f, // one group of one i32
		0x41, 0x7f, // i32.const -1
		0x21, 0x00,
		0x20, 0x00,
		0x41, 0xc0, 0x00, // i32.const 64 needs two bytes
		0x41, 0x01,
		0x1b,
		0x04, 0x7f, 0x41, 0x01, 0x05, 0x41, 0x00, 0x0b,
		0x0b,
	}
	if !bytes.HasSuffix(bs, code) {
		t.Fatalf("got % x\nwant suffix % x", bs, code)
	}
}

func TestRoundTrip(t *testing.T) {
	modules := []inst.Module{
		{Export: "main", Body: inst.Sequence{inst.Constant{Value: 21}, inst.End{}}},
		{Export: "main", Body: inst.Sequence{inst.Constant{Value: math.MinInt32}, inst.End{}}},
		{Export: "main", Body: inst.Sequence{inst.Constant{Value: math.MaxInt32}, inst.End{}}},
		{Export: "main", Body: inst.Sequence{inst.Constant{Value: 42}, inst.Constant{Value: 41}, inst.Constant{Value: 1}, inst.Select{}, inst.End{}}},
		{Export: "entry_point", Locals: 200, Body: inst.Sequence{
			inst.Constant{Value: 0},
			inst.If{
				Then: inst.Sequence{inst.Constant{Value: 21}},
				Else: inst.Sequence{
					inst.Constant{Value: 1},
					inst.LocalSet{Index: 199},
					inst.LocalGet{Index: 199},
					inst.If{Then: inst.Sequence{inst.Constant{Value: 42}}, Else: inst.Sequence{inst.Constant{Value: 43}}},
				},
			},
			inst.End{},
		}},
	}
	for i, m := range modules {
		bs := Encode(m)
		n, e := Decode(bs)
		if e != nil {
			t.Fatalf("case %d: %v", i, e)
		}
		if !n.Equals(m) {
			t.Fatalf("case %d:\n%s", i, strings.Join(pretty.Diff(n, m), "\n"))
		}
		if !bytes.Equal(Encode(n), bs) {
			t.Fatalf("case %d: re-encoding differs", i)
		}
	}
}

func TestDecodeErrors(t *testing.T) {

	valid := Encode(inst.Module{Export: "main", Body: inst.Sequence{inst.Constant{Value: 21}, inst.End{}}})

	truncated := valid[:len(valid)-1]

	badMagic := append([]byte{}, valid...)
	badMagic[0] = 0xff

	trailing := append(append([]byte{}, valid...), 0x00)

	badOpcode := append([]byte{}, valid...)
	badOpcode[len(badOpcode)-3] = 0x6a // i32.add

	cases := [][]byte{nil, truncated, badMagic, trailing, badOpcode}

	for i, bs := range cases {
		_, e := Decode(bs)
		if e == nil {
			t.Fatalf("case %d: expected error", i)
		}
		ce, ok := e.(err.CodecError)
		if !ok {
			t.Fatalf("case %d: expected CodecError, got %T", i, e)
		}
		if ce.Name != "wasm" {
			t.Fatalf("case %d: codec %q", i, ce.Name)
		}
	}
}

func TestDecodeRejectsInvalidModule(t *testing.T) {
	// well-formed bytes for a function leaving two values
	bs := Encode(inst.Module{Export: "main", Body: inst.Sequence{inst.Constant{Value: 1}, inst.Constant{Value: 2}, inst.End{}}})
	_, e := Decode(bs)
	if e == nil {
		t.Fatal("expected error")
	}
	if _, ok := e.Child().(err.ValidationError); !ok {
		t.Fatalf("expected validation error as child, got %#v", e.Child())
	}
}

func TestRegistered(t *testing.T) {
	c := codec.Get("wasm")
	if c == nil {
		t.Fatal("wasm codec not registered")
	}
	if c.MediaType() != MediaType {
		t.Fatalf("media type %q", c.MediaType())
	}
}

func TestLeb128(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, 64, -64, -65, 127, 128, math.MaxInt32, math.MinInt32} {
		bs := appendSleb128(nil, v)
		w, n := readSleb128(bs, 32)
		if n != len(bs) || w != v {
			t.Fatalf("%d: decoded %d from % x (%d bytes)", v, w, bs, n)
		}
	}
	for _, v := range []uint64{0, 1, 127, 128, 300, math.MaxUint32} {
		bs := appendUleb128(nil, v)
		w, n := readUleb128(bs, 32)
		if n != len(bs) || w != v {
			t.Fatalf("%d: decoded %d from % x (%d bytes)", v, w, bs, n)
		}
	}
	if _, n := readUleb128(appendUleb128(nil, math.MaxUint32+1), 32); n != 0 {
		t.Fatal("accepted a 33 bit unsigned value")
	}
	if _, n := readSleb128(appendSleb128(nil, math.MaxInt32+1), 32); n != 0 {
		t.Fatal("accepted a 33 bit signed value")
	}
}
