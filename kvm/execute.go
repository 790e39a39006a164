// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package kvm

import (
	"fmt"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"sync"
)

type Stack []int32

func (s *Stack) Push(v int32) {
	*s = append(*s, v)
}

func (s *Stack) Pop() int32 {
	t := *s
	v := t[len(t)-1]
	*s = t[:len(t)-1]
	return v
}

func (s Stack) Len() int {
	return len(s)
}

var StackPool = &sync.Pool{
	New: func() interface{} {
		s := make(Stack, 0, 32)
		return &s
	},
}

// VirtualMachine runs instruction modules directly, without encoding them.
// It serves as the reference for what an external engine must compute.
type VirtualMachine struct{}

// Execute validates m and runs its function body, returning the single
// i32 the function leaves on the stack.
func (vm VirtualMachine) Execute(m inst.Module) (int32, err.Error) {

	if e := m.Validate(); e != nil {
		return 0, err.ExecutionError{Problem: "refusing to execute invalid module", Child_: e}
	}

	stack := StackPool.Get().(*Stack)
	defer func() {
		s := (*stack)[:0]
		StackPool.Put(&s)
	}()

	locals := make([]int32, m.Locals)

	if e := vm.execute(m.Body, stack, locals); e != nil {
		return 0, e
	}

	if stack.Len() != 1 {
		return 0, err.ExecutionError{Problem: fmt.Sprintf("function returned with %d values on the stack", stack.Len()), Child_: nil}
	}

	return stack.Pop(), nil
}

func (vm VirtualMachine) execute(program inst.Sequence, stack *Stack, locals []int32) err.Error {

	for pc, pl := 0, len(program); pc < pl; pc++ {

		switch it := program[pc].(type) {

		case inst.Constant:
			stack.Push(it.Value)

		case inst.Select:
			if stack.Len() < 3 {
				return underflow("select", pc)
			}
			c, b, a := stack.Pop(), stack.Pop(), stack.Pop()
			if c != 0 {
				stack.Push(a)
			} else {
				stack.Push(b)
			}

		case inst.If:
			if stack.Len() < 1 {
				return underflow("if", pc)
			}
			cont := it.Else
			if stack.Pop() != 0 {
				cont = it.Then
			}
			if e := vm.execute(cont, stack, locals); e != nil {
				return e
			}

		case inst.LocalGet:
			stack.Push(locals[it.Index])

		case inst.LocalSet:
			if stack.Len() < 1 {
				return underflow("local.set", pc)
			}
			locals[it.Index] = stack.Pop()

		case inst.End:
			return nil

		default:
			panic(err.InternalError{Problem: fmt.Sprintf("VirtualMachine.Execute: unknown instruction %T", it)})

		}
	}

	return nil
}

func underflow(op string, pc int) err.Error {
	return err.ExecutionError{
		Problem: fmt.Sprintf("stack underflow in %s at %d", op, pc),
		Child_:  nil,
	}
}
