// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package json encodes instruction modules as JSON documents, one object
// per instruction, for consumers that cannot read wasm.
//
//	{"export":"main","locals":0,"body":[{"op":"i32.const","value":21},{"op":"end"}]}
package json

import (
	"bytes"
	ej "encoding/json"
	"fmt"
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"log"
	"strconv"
)

const MediaType = "application/json"

func init() {
	codec.Register("json", func() codec.Interface { return JsonCodec{} })
}

type JsonCodec struct{}

func (JsonCodec) Decode(json []byte) (inst.Module, err.Error) {
	return Decode(json)
}

func (JsonCodec) Encode(m inst.Module) []byte {
	return Encode(m)
}

func (JsonCodec) MediaType() string {
	return MediaType
}

type JSON []byte

func (j JSON) MarshalJSON() ([]byte, error) {
	return []byte(j), nil
}

func (j *JSON) UnmarshalJSON(json []byte) error {
	(*j) = append((*j)[:0], json...)
	return nil
}

func (j JSON) String() string {
	return string(j)
}

func Encode(m inst.Module) JSON {
	bs := make(JSON, 0, 64+24*len(m.Body))
	bs = append(bs, `{"export":`...)
	name, _ := ej.Marshal(m.Export)
	bs = append(bs, name...)
	bs = append(bs, `,"locals":`...)
	bs = strconv.AppendUint(bs, uint64(m.Locals), 10)
	bs = append(bs, `,"body":`...)
	bs = encode(m.Body, bs)
	bs = append(bs, '}')
	return bs
}

func encode(s inst.Sequence, cache JSON) JSON {
	bs := append(cache, '[')
	for i, in := range s {
		if i > 0 {
			bs = append(bs, ',')
		}
		switch it := in.(type) {
		case inst.Constant:
			bs = append(bs, `{"op":"i32.const","value":`...)
			bs = strconv.AppendInt(bs, int64(it.Value), 10)
			bs = append(bs, '}')
		case inst.Select:
			bs = append(bs, `{"op":"select"}`...)
		case inst.If:
			bs = append(bs, `{"op":"if","then":`...)
			bs = encode(it.Then, bs)
			bs = append(bs, `,"else":`...)
			bs = encode(it.Else, bs)
			bs = append(bs, '}')
		case inst.LocalGet:
			bs = append(bs, `{"op":"local.get","index":`...)
			bs = strconv.AppendUint(bs, uint64(it.Index), 10)
			bs = append(bs, '}')
		case inst.LocalSet:
			bs = append(bs, `{"op":"local.set","index":`...)
			bs = strconv.AppendUint(bs, uint64(it.Index), 10)
			bs = append(bs, '}')
		case inst.End:
			bs = append(bs, `{"op":"end"}`...)
		default:
			log.Panicf("json.encode: unhandled instruction type: %T", in)
		}
	}
	return append(bs, ']')
}

type module struct {
	Export *string       `json:"export"`
	Locals uint32        `json:"locals"`
	Body   []instruction `json:"body"`
}

type instruction struct {
	Op    string        `json:"op"`
	Value *int32        `json:"value,omitempty"`
	Index *uint32       `json:"index,omitempty"`
	Then  []instruction `json:"then,omitempty"`
	Else  []instruction `json:"else,omitempty"`
}

func Decode(json JSON) (inst.Module, err.Error) {
	decoder := ej.NewDecoder(bytes.NewReader(json))
	decoder.DisallowUnknownFields()
	raw := module{}
	if e := decoder.Decode(&raw); e != nil {
		return inst.Module{}, failure(e)
	}
	if decoder.More() {
		return inst.Module{}, err.CodecError{Name: "json", Offset_: int(decoder.InputOffset()), Problem: "trailing data after module"}
	}
	if raw.Export == nil {
		return inst.Module{}, err.CodecError{Name: "json", Problem: `missing field "export"`}
	}
	body, e := decode(raw.Body, "body")
	if e != nil {
		return inst.Module{}, e
	}
	m := inst.Module{Export: *raw.Export, Locals: raw.Locals, Body: body}
	if e := m.Validate(); e != nil {
		return inst.Module{}, err.CodecError{Name: "json", Problem: "invalid module", Child_: e}
	}
	return m, nil
}

func decode(raw []instruction, path string) (inst.Sequence, err.Error) {
	s := make(inst.Sequence, 0, len(raw))
	for i, r := range raw {
		at := fmt.Sprintf("%s[%d]", path, i)
		switch r.Op {
		case "i32.const":
			if r.Value == nil {
				return nil, err.CodecError{Name: "json", Problem: at + `: i32.const without "value"`}
			}
			s = append(s, inst.Constant{Value: *r.Value})
		case "select":
			s = append(s, inst.Select{})
		case "if":
			then, e := decode(r.Then, at+".then")
			if e != nil {
				return nil, e
			}
			elze, e := decode(r.Else, at+".else")
			if e != nil {
				return nil, e
			}
			s = append(s, inst.If{Then: then, Else: elze})
		case "local.get", "local.set":
			if r.Index == nil {
				return nil, err.CodecError{Name: "json", Problem: at + ": " + r.Op + ` without "index"`}
			}
			if r.Op == "local.get" {
				s = append(s, inst.LocalGet{Index: *r.Index})
			} else {
				s = append(s, inst.LocalSet{Index: *r.Index})
			}
		case "end":
			s = append(s, inst.End{})
		default:
			return nil, err.CodecError{Name: "json", Problem: fmt.Sprintf("%s: unknown op %q", at, r.Op)}
		}
	}
	return s, nil
}

func failure(e error) err.Error {
	switch e := e.(type) {
	case *ej.SyntaxError:
		return err.CodecError{Name: "json", Offset_: int(e.Offset), Problem: e.Error()}
	case *ej.UnmarshalTypeError:
		return err.CodecError{Name: "json", Offset_: int(e.Offset), Problem: e.Error()}
	}
	return err.CodecError{Name: "json", Problem: e.Error()}
}
