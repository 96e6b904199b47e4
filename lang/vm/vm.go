// Package vm implements the stack-based virtual machine that executes
// compiled Fox bytecode: a call-frame stack over a single
// operand stack, globals, and an open-upvalue list, dispatching each
// instruction in a tight decode-and-switch loop.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"
	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/value"
)

// StackSize is the number of value slots in the VM's operand/locals stack,
// shared by every call frame. MaxFrames bounds call-stack depth, reported
// as a RuntimeError ("stack overflow") rather than a Go stack overflow.
const (
	StackSize = 16384
	MaxFrames = 64
)

// CallFrame is one active function invocation: the closure executing, its
// instruction pointer into that closure's chunk, and the base index into
// the VM's stack where its locals (parameters first, slot 0 the bound
// receiver for methods) begin. Every call pushes a CallFrame instead of
// recursing into Go, so deeply nested calls cost stack slots, not Go
// goroutine stack.
type CallFrame struct {
	closure   *value.Closure
	ip        int
	stackBase int
}

// VM executes compiled Fox programs. One VM can run multiple programs in
// sequence: each Run call starts a fresh call stack over the same globals
// and stdio.
type VM struct {
	stack []value.Value
	sp    int

	frames []CallFrame

	globals *swiss.Map[string, value.Value]

	// openUpvalues is kept sorted by StackIndex, highest first, so
	// captureUpvalue can binary-search it for "is there already an open
	// upvalue at this slot"; closeUpvalues walks the whole list to close
	// every upvalue at or above a slot.
	openUpvalues []*value.Upvalue

	Stdout io.Writer
	Stderr io.Writer

	// MaxSteps bounds the number of instructions a single Run executes
	// before it is cancelled with a RuntimeError, a safety valve against
	// runaway or malicious scripts. Zero means unlimited.
	MaxSteps int
}

// New returns a VM with an empty global table and stdio defaulted to the
// process's own standard streams.
func New() *VM {
	return &VM{
		stack:   make([]value.Value, StackSize),
		frames:  make([]CallFrame, 0, MaxFrames),
		globals: swiss.NewMap[string, value.Value](64),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// DefineGlobal installs v as the global variable name, for host natives and
// other preregistered bindings.
func (vm *VM) DefineGlobal(name string, v value.Value) {
	vm.globals.Put(name, v)
}

// push pushes v onto the operand stack, returning a RuntimeError instead of
// growing past StackSize: with MaxFrames call frames each holding up to 256
// locals, the stack can genuinely fill, and running past it must not index
// vm.stack out of range.
func (vm *VM) push(v value.Value) error {
	if vm.sp >= StackSize {
		return vm.runtimeError("stack overflow")
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) frame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

// Run executes fn as a top-level program: it is wrapped in a closure with
// no upvalues and called with zero arguments, then the instruction loop
// runs until that top-level call returns or a RuntimeError aborts it.
func (vm *VM) Run(ctx context.Context, fn *value.Function) (value.Value, error) {
	vm.sp = 0
	vm.frames = vm.frames[:0]
	vm.openUpvalues = vm.openUpvalues[:0]

	closure := value.NewClosure(fn, nil)
	if err := vm.push(closure); err != nil {
		return nil, err
	}
	if err := vm.call(closure, 0); err != nil {
		return nil, err
	}
	return vm.dispatch(ctx)
}

// dispatch is the main instruction loop: decode one instruction from the
// current frame's chunk, execute it, repeat until the outermost call frame
// returns (yielding the program's result) or a runtime fault occurs.
func (vm *VM) dispatch(ctx context.Context) (value.Value, error) {
	steps := 0
	for {
		if len(vm.frames) == 0 {
			return vm.pop(), nil
		}
		select {
		case <-ctx.Done():
			return nil, vm.runtimeError(ctx.Err().Error())
		default:
		}
		steps++
		if vm.MaxSteps > 0 && steps > vm.MaxSteps {
			return nil, vm.runtimeError("execution step limit exceeded")
		}

		fr := vm.frame()
		chunk := fr.closure.Function.Chunk
		op := bytecode.OpCode(chunk.Code[fr.ip])
		fr.ip++

		switch op {
		case bytecode.Constant:
			if err := vm.push(vm.readConstant(fr, chunk).(value.Value)); err != nil {
				return nil, err
			}

		case bytecode.Nil:
			if err := vm.push(value.Nil{}); err != nil {
				return nil, err
			}
		case bytecode.True:
			if err := vm.push(value.Bool(true)); err != nil {
				return nil, err
			}
		case bytecode.False:
			if err := vm.push(value.Bool(false)); err != nil {
				return nil, err
			}

		case bytecode.Pop:
			vm.pop()
		case bytecode.Duplicate:
			if err := vm.push(vm.peek(0)); err != nil {
				return nil, err
			}

		case bytecode.Negate:
			v, err := value.Negate(vm.pop())
			if err != nil {
				return nil, vm.runtimeErrorFromOp(err)
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}
		case bytecode.Not:
			if err := vm.push(value.Not(vm.pop())); err != nil {
				return nil, err
			}

		case bytecode.Add, bytecode.Subtract, bytecode.Multiply, bytecode.Divide,
			bytecode.Greater, bytecode.Less:
			b, a := vm.pop(), vm.pop()
			v, err := applyBinary(op, a, b)
			if err != nil {
				return nil, vm.runtimeErrorFromOp(err)
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}

		case bytecode.Equal:
			b, a := vm.pop(), vm.pop()
			if err := vm.push(value.Bool(value.Equal(a, b))); err != nil {
				return nil, err
			}

		case bytecode.Print:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case bytecode.Return:
			if err := vm.doReturn(); err != nil {
				return nil, err
			}

		case bytecode.DefineGlobal:
			name := string(vm.readConstant(fr, chunk).(value.Text))
			vm.globals.Put(name, vm.pop())

		case bytecode.GetGlobal:
			name := string(vm.readConstant(fr, chunk).(value.Text))
			v, ok := vm.globals.Get(name)
			if !ok {
				return nil, vm.runtimeError("undefined variable '" + name + "'")
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}

		case bytecode.SetGlobal:
			name := string(vm.readConstant(fr, chunk).(value.Text))
			if _, ok := vm.globals.Get(name); !ok {
				return nil, vm.runtimeError("undefined variable '" + name + "'")
			}
			vm.globals.Put(name, vm.peek(0))

		case bytecode.GetLocal:
			slot := int(vm.readByte(fr, chunk))
			if err := vm.push(vm.stack[fr.stackBase+slot]); err != nil {
				return nil, err
			}

		case bytecode.SetLocal:
			slot := int(vm.readByte(fr, chunk))
			vm.stack[fr.stackBase+slot] = vm.peek(0)

		case bytecode.GetUpvalue:
			idx := int(vm.readByte(fr, chunk))
			if err := vm.push(fr.closure.Upvalues[idx].Get(vm.stack)); err != nil {
				return nil, err
			}

		case bytecode.SetUpvalue:
			idx := int(vm.readByte(fr, chunk))
			fr.closure.Upvalues[idx].Set(vm.stack, vm.peek(0))

		case bytecode.JumpIfFalse:
			offset := vm.readUint16(fr, chunk)
			if !vm.peek(0).Truth() {
				fr.ip += int(offset)
			}
		case bytecode.Jump:
			offset := vm.readUint16(fr, chunk)
			fr.ip += int(offset)
		case bytecode.Loop:
			offset := vm.readUint16(fr, chunk)
			fr.ip -= int(offset)

		case bytecode.Call:
			argCount := int(vm.readByte(fr, chunk))
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return nil, err
			}

		case bytecode.Closure:
			if err := vm.doClosure(fr, chunk); err != nil {
				return nil, err
			}

		case bytecode.CloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case bytecode.Class:
			name := string(vm.readConstant(fr, chunk).(value.Text))
			if err := vm.push(value.NewClass(name)); err != nil {
				return nil, err
			}

		case bytecode.GetProperty:
			if err := vm.doGetProperty(fr, chunk); err != nil {
				return nil, err
			}

		case bytecode.SetProperty:
			if err := vm.doSetProperty(fr, chunk); err != nil {
				return nil, err
			}

		case bytecode.Method:
			name := string(vm.readConstant(fr, chunk).(value.Text))
			closure := vm.pop().(*value.Closure)
			class := vm.peek(0).(*value.Class)
			class.SetMethod(name, closure)

		case bytecode.Inherit:
			if err := vm.doInherit(); err != nil {
				return nil, err
			}

		case bytecode.GetSuper:
			if err := vm.doGetSuper(fr, chunk); err != nil {
				return nil, err
			}

		default:
			return nil, vm.runtimeError(fmt.Sprintf("unknown opcode %v", op))
		}
	}
}

func (vm *VM) readByte(fr *CallFrame, chunk *bytecode.Chunk) byte {
	b := chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readUint16(fr *CallFrame, chunk *bytecode.Chunk) uint16 {
	v := chunk.ReadUint16(fr.ip)
	fr.ip += 2
	return v
}

func (vm *VM) readConstant(fr *CallFrame, chunk *bytecode.Chunk) any {
	return chunk.Constants[vm.readByte(fr, chunk)]
}

func applyBinary(op bytecode.OpCode, a, b value.Value) (value.Value, error) {
	switch op {
	case bytecode.Add:
		return value.Add(a, b)
	case bytecode.Subtract:
		return value.Subtract(a, b)
	case bytecode.Multiply:
		return value.Multiply(a, b)
	case bytecode.Divide:
		return value.Divide(a, b)
	case bytecode.Greater:
		return value.Greater(a, b)
	case bytecode.Less:
		return value.Less(a, b)
	}
	panic("vm: applyBinary called with non-binary opcode")
}

// runtimeError builds a RuntimeError at the currently executing frame's
// line, with a full stack trace.
func (vm *VM) runtimeError(message string) *RuntimeError {
	err := &RuntimeError{Message: message}
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		line := fr.closure.Function.Chunk.LineFor(fr.ip - 1)
		if i == len(vm.frames)-1 {
			err.Line = line
		}
		err.Trace = append(err.Trace, TraceFrame{FuncName: fr.closure.Function.Name, Line: line})
	}
	return err
}

func (vm *VM) runtimeErrorFromOp(err error) *RuntimeError {
	return vm.runtimeError(err.Error())
}
