package vm

import (
	"sort"
	"strconv"

	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/value"
)

// callValue dispatches a Call instruction against whatever kind of value
// sits below its arguments: a Closure starts a new call frame, a
// NativeFunction runs synchronously and pushes its result, a Class
// constructs a new Instance (invoking `init` if one is defined), and a
// BoundMethod calls its underlying Closure with the bound receiver spliced
// into slot 0.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	switch c := callee.(type) {
	case *value.Closure:
		return vm.call(c, argCount)

	case *value.NativeFunction:
		args := make([]value.Value, argCount)
		copy(args, vm.stack[vm.sp-argCount:vm.sp])
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeError(err.Error())
		}
		vm.sp -= argCount + 1
		return vm.push(result)

	case *value.Class:
		instance := value.NewInstance(c)
		vm.stack[vm.sp-argCount-1] = instance
		if init, ok := c.Method("init"); ok {
			return vm.call(init, argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("expected 0 arguments but got " + strconv.Itoa(argCount))
		}
		return nil

	case *value.BoundMethod:
		vm.stack[vm.sp-argCount-1] = c.Receiver
		return vm.call(c.Method, argCount)

	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

// call pushes a new CallFrame for closure, verifying its arity against
// argCount first.
func (vm *VM) call(closure *value.Closure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError(
			"expected " + strconv.Itoa(closure.Function.Arity) + " arguments but got " + strconv.Itoa(argCount))
	}
	if len(vm.frames) >= MaxFrames {
		return vm.runtimeError("stack overflow")
	}
	vm.frames = append(vm.frames, CallFrame{
		closure:   closure,
		stackBase: vm.sp - argCount - 1,
	})
	return nil
}

// doReturn pops the current frame's result, closes any upvalues still open
// into its locals, unwinds the stack back to the slot the callee occupied,
// and leaves the result there for the caller to find.
func (vm *VM) doReturn() error {
	result := vm.pop()
	fr := vm.frames[len(vm.frames)-1]
	vm.closeUpvalues(fr.stackBase)
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.sp = fr.stackBase
	return vm.push(result)
}

// doClosure executes a Closure instruction: it reads the Function constant
// the compiler emitted, then reads one (isLocal, index) descriptor pair per
// declared upvalue, either capturing a slot in the *calling* frame (if
// isLocal) or sharing an upvalue already held by the *currently executing*
// closure (if not).
func (vm *VM) doClosure(fr *CallFrame, chunk *bytecode.Chunk) error {
	fn := vm.readConstant(fr, chunk).(*value.Function)
	upvalues := make([]*value.Upvalue, fn.UpvalueCount())
	for i := range upvalues {
		isLocal := vm.readByte(fr, chunk) != 0
		index := vm.readByte(fr, chunk)
		if isLocal {
			upvalues[i] = vm.captureUpvalue(fr.stackBase + int(index))
		} else {
			upvalues[i] = fr.closure.Upvalues[index]
		}
	}
	return vm.push(value.NewClosure(fn, upvalues))
}

// captureUpvalue returns the open upvalue already referencing stackIndex,
// reusing it so that two closures capturing the same local share one
// handle, or creates and records a new one if none exists yet.
// openUpvalues is kept sorted by StackIndex descending for an O(log n)
// lookup rather than a linear scan.
func (vm *VM) captureUpvalue(stackIndex int) *value.Upvalue {
	i := sort.Search(len(vm.openUpvalues), func(i int) bool {
		return vm.openUpvalues[i].StackIndex <= stackIndex
	})
	if i < len(vm.openUpvalues) && vm.openUpvalues[i].StackIndex == stackIndex {
		return vm.openUpvalues[i]
	}
	up := value.NewOpenUpvalue(stackIndex)
	vm.openUpvalues = append(vm.openUpvalues, nil)
	copy(vm.openUpvalues[i+1:], vm.openUpvalues[i:])
	vm.openUpvalues[i] = up
	return up
}

// closeUpvalues closes every open upvalue referencing a slot at or above
// fromIndex and drops them from the open list, since those slots are about
// to be overwritten or popped off the stack.
func (vm *VM) closeUpvalues(fromIndex int) {
	n := 0
	for _, up := range vm.openUpvalues {
		if up.StackIndex >= fromIndex {
			up.Close(vm.stack)
		} else {
			vm.openUpvalues[n] = up
			n++
		}
	}
	vm.openUpvalues = vm.openUpvalues[:n]
}

func (vm *VM) doGetProperty(fr *CallFrame, chunk *bytecode.Chunk) error {
	name := string(vm.readConstant(fr, chunk).(value.Text))
	instance, ok := vm.peek(0).(*value.Instance)
	if !ok {
		return vm.runtimeError("only instances have properties")
	}
	if v, ok := instance.Fields.Get(name); ok {
		vm.pop()
		return vm.push(v)
	}
	if method, ok := instance.Class.Method(name); ok {
		vm.pop()
		return vm.push(value.NewBoundMethod(instance, method))
	}
	return vm.runtimeError("undefined property '" + name + "'")
}

func (vm *VM) doSetProperty(fr *CallFrame, chunk *bytecode.Chunk) error {
	name := string(vm.readConstant(fr, chunk).(value.Text))
	val := vm.pop()
	instance, ok := vm.pop().(*value.Instance)
	if !ok {
		return vm.runtimeError("only instances have fields")
	}
	instance.Fields.Put(name, val)
	return vm.push(val)
}

// doInherit copies every method of the superclass value one below the top
// of the stack into the subclass value at the top, leaving the superclass
// in place (it is also the lexically-scoped `super` local at this point in
// the compiled class body; classDeclaration compiles it
// into that very stack slot).
func (vm *VM) doInherit() error {
	sub, ok := vm.pop().(*value.Class)
	if !ok {
		return vm.runtimeError("can only inherit from a class")
	}
	super, ok := vm.peek(0).(*value.Class)
	if !ok {
		return vm.runtimeError("superclass must be a class")
	}
	super.Methods.Iter(func(name string, closure *value.Closure) bool {
		sub.SetMethod(name, closure)
		return false
	})
	return nil
}

// doGetSuper resolves `super.name`: the compiler leaves `this` then the
// superclass on the stack, so GetSuper pops the superclass,
// looks the method up there (never walking a chain -- methods were already
// flattened into the subclass at Inherit time, but `super.foo` still
// needs to explicitly skip the subclass's own override), pops `this`, and
// pushes a BoundMethod pairing them.
func (vm *VM) doGetSuper(fr *CallFrame, chunk *bytecode.Chunk) error {
	name := string(vm.readConstant(fr, chunk).(value.Text))
	super := vm.pop().(*value.Class)
	this := vm.pop()
	method, ok := super.Method(name)
	if !ok {
		return vm.runtimeError("undefined property '" + name + "'")
	}
	return vm.push(value.NewBoundMethod(this, method))
}

