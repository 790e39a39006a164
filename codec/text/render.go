// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package text implements the WebAssembly text format (WAT) of an
// instruction module, one parenthesized instruction per line.
package text

import (
	"fmt"
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"strconv"
	"strings"
)

const MediaType = "text/plain; charset=utf-8"

const indent = "  "

var sharedInstance = WatCodec{}

func init() {
	codec.Register("wat", func() codec.Interface { return sharedInstance })
}

type WatCodec struct{}

func (WatCodec) Decode(data []byte) (inst.Module, err.Error) {
	return Parse(string(data))
}

func (WatCodec) Encode(m inst.Module) []byte {
	return []byte(Render(m))
}

func (WatCodec) MediaType() string {
	return MediaType
}

// Render prints m. The output is deterministic; the End that
// terminates the function body becomes the function's closing paren.
func Render(m inst.Module) string {
	sb := &strings.Builder{}
	sb.WriteString("(module\n")
	sb.WriteString(indent + "(func ")
	if isIdChars(m.Export) {
		sb.WriteString("$" + m.Export + " ")
	}
	sb.WriteString("(export " + quote(m.Export) + ") (result i32)\n")
	if m.Locals > 0 {
		sb.WriteString(indent + indent + "(local" + strings.Repeat(" i32", int(m.Locals)) + ")\n")
	}
	render(sb, m.Body, 2)
	sb.WriteString(indent + ")\n")
	sb.WriteString(")\n")
	return sb.String()
}

func render(sb *strings.Builder, s inst.Sequence, depth int) {
	pad := strings.Repeat(indent, depth)
	for _, in := range s {
		switch it := in.(type) {

		case inst.Constant:
			fmt.Fprintf(sb, "%s(i32.const %d)\n", pad, it.Value)

		case inst.Select:
			sb.WriteString(pad + "(select)\n")

		case inst.LocalGet:
			fmt.Fprintf(sb, "%s(local.get %d)\n", pad, it.Index)

		case inst.LocalSet:
			fmt.Fprintf(sb, "%s(local.set %d)\n", pad, it.Index)

		case inst.If:
			sb.WriteString(pad + "(if (result i32)\n")
			sb.WriteString(pad + indent + "(then\n")
			render(sb, it.Then, depth+2)
			sb.WriteString(pad + indent + ")\n")
			sb.WriteString(pad + indent + "(else\n")
			render(sb, it.Else, depth+2)
			sb.WriteString(pad + indent + ")\n")
			sb.WriteString(pad + ")\n")

		case inst.End:
			// closes the function

		default:
			panic(err.InternalError{Problem: fmt.Sprintf("text.Render: unknown instruction %T", in)})

		}
	}
}

// isIdChars reports whether s can follow $ in a WAT identifier.
func isIdChars(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte("!#$%&'*+-./:<=>?@\\^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}

// quote produces a WAT string literal, escaping bytes as \hh.
func quote(s string) string {
	sb := &strings.Builder{}
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c >= 0x7f || c == '"' || c == '\\' {
			sb.WriteByte('\\')
			hex := strconv.FormatUint(uint64(c), 16)
			if len(hex) < 2 {
				sb.WriteByte('0')
			}
			sb.WriteString(hex)
			continue
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')
	return sb.String()
}
