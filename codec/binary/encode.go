// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package binary

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
)

func Encode(m inst.Module) []byte {
	buf := make([]byte, 0, 64+2*len(m.Body))
	buf = append(buf, Magic...)
	buf = append(buf, Version...)

	// one signature: () -> i32
	buf = appendSection(buf, SectionType, []byte{0x01, typeFunc, 0x00, 0x01, typeI32})

	// function 0 has signature 0
	buf = appendSection(buf, SectionFunction, []byte{0x01, 0x00})

	exports := []byte{0x01}
	exports = appendName(exports, m.Export)
	exports = append(exports, exportFunc, 0x00)
	buf = appendSection(buf, SectionExport, exports)

	body := make([]byte, 0, 8+2*len(m.Body))
	if m.Locals > 0 {
		body = append(body, 0x01)
		body = appendUleb128(body, uint64(m.Locals))
		body = append(body, typeI32)
	} else {
		body = append(body, 0x00)
	}
	body = encode(m.Body, body)

	code := []byte{0x01}
	code = appendUleb128(code, uint64(len(body)))
	code = append(code, body...)
	buf = appendSection(buf, SectionCode, code)

	return buf
}

func appendSection(buf []byte, id Section, contents []byte) []byte {
	buf = append(buf, byte(id))
	buf = appendUleb128(buf, uint64(len(contents)))
	return append(buf, contents...)
}

func appendName(buf []byte, name string) []byte {
	buf = appendUleb128(buf, uint64(len(name)))
	return append(buf, name...)
}

func encode(s inst.Sequence, buf []byte) []byte {
	for _, in := range s {
		switch it := in.(type) {

		case inst.Constant:
			buf = append(buf, byte(OpI32Const))
			buf = appendSleb128(buf, int64(it.Value))

		case inst.Select:
			buf = append(buf, byte(OpSelect))

		case inst.If:
			buf = append(buf, byte(OpIf), typeI32)
			buf = encode(it.Then, buf)
			buf = append(buf, byte(OpElse))
			buf = encode(it.Else, buf)
			buf = append(buf, byte(OpEnd))

		case inst.LocalGet:
			buf = append(buf, byte(OpLocalGet))
			buf = appendUleb128(buf, uint64(it.Index))

		case inst.LocalSet:
			buf = append(buf, byte(OpLocalSet))
			buf = appendUleb128(buf, uint64(it.Index))

		case inst.End:
			buf = append(buf, byte(OpEnd))

		default:
			panic(err.InternalError{Problem: fmt.Sprintf("binary.Encode: unknown instruction %T", in)})

		}
	}
	return buf
}
