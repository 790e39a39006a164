// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package llvm translates instruction modules to LLVM IR. The stack is
// executed symbolically: every stack slot becomes an SSA value, locals
// become allocas and structured ifs become diamonds joined by a phi.
package llvm

import (
	"fmt"
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const MediaType = "text/x-llvm; charset=utf-8"

var sharedInstance = LlvmCodec{}

func init() {
	codec.Register("llvm", func() codec.Interface { return sharedInstance })
}

type LlvmCodec struct{}

func (LlvmCodec) Decode(data []byte) (inst.Module, err.Error) {
	return inst.Module{}, err.CodecError{Name: "llvm", Problem: "decoding LLVM IR is not supported"}
}

func (LlvmCodec) Encode(m inst.Module) []byte {
	return []byte(Translate(m).String())
}

func (LlvmCodec) MediaType() string {
	return MediaType
}

var zero = constant.NewInt(types.I32, 0)

// Translate builds an LLVM module defining i32 @<export>().
// m must pass inst.Module.Validate.
func Translate(m inst.Module) *ir.Module {
	out := ir.NewModule()
	f := out.NewFunc(m.Export, types.I32)
	entry := f.NewBlock("entry")

	t := &translator{
		function: f,
		locals:   make([]*ir.InstAlloca, m.Locals),
	}
	for i := range t.locals {
		a := entry.NewAlloca(types.I32)
		a.SetName(fmt.Sprintf("local.%d", i))
		entry.NewStore(zero, a) // wasm locals start at zero
		t.locals[i] = a
	}

	t.translate(entry, m.Body)
	return out
}

type translator struct {
	function *ir.Func
	locals   []*ir.InstAlloca
	stack    []value.Value
	ifs      int
}

func (t *translator) push(v value.Value) {
	t.stack = append(t.stack, v)
}

func (t *translator) pop() value.Value {
	if len(t.stack) == 0 {
		panic(err.InternalError{Problem: "llvm.Translate: stack underflow in unvalidated module"})
	}
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v
}

// translate emits s into block and returns the block control ends up in.
func (t *translator) translate(block *ir.Block, s inst.Sequence) *ir.Block {

	for _, in := range s {
		switch it := in.(type) {

		case inst.Constant:
			t.push(constant.NewInt(types.I32, int64(it.Value)))

		case inst.Select:
			c, b, a := t.pop(), t.pop(), t.pop()
			cond := block.NewICmp(enum.IPredNE, c, zero)
			t.push(block.NewSelect(cond, a, b))

		case inst.LocalGet:
			t.push(block.NewLoad(types.I32, t.locals[it.Index]))

		case inst.LocalSet:
			block.NewStore(t.pop(), t.locals[it.Index])

		case inst.If:
			n := t.ifs
			t.ifs++
			cond := block.NewICmp(enum.IPredNE, t.pop(), zero)
			then := t.function.NewBlock(fmt.Sprintf("then.%d", n))
			elze := t.function.NewBlock(fmt.Sprintf("else.%d", n))
			merge := t.function.NewBlock(fmt.Sprintf("merge.%d", n))
			block.NewCondBr(cond, then, elze)

			thenEnd := t.translate(then, it.Then)
			thenValue := t.pop()
			thenEnd.NewBr(merge)

			elseEnd := t.translate(elze, it.Else)
			elseValue := t.pop()
			elseEnd.NewBr(merge)

			t.push(merge.NewPhi(ir.NewIncoming(thenValue, thenEnd), ir.NewIncoming(elseValue, elseEnd)))
			block = merge

		case inst.End:
			block.NewRet(t.pop())

		default:
			panic(err.InternalError{Problem: fmt.Sprintf("llvm.Translate: unknown instruction %T", in)})

		}
	}

	return block
}
