package compiler

import "github.com/foxlang/fox/lang/bytecode"

type funcType int

const (
	typeScript funcType = iota
	typeFunction
	typeMethod
	typeInitializer
)

// local is a declared local variable's compile-time bookkeeping: its name,
// the scope depth it was declared at, and whether any nested function
// closes over it. depth of -1 marks a local whose initializer is still
// being compiled -- referencing it by name in that window is an error
// ("can't read local variable '<name>' in its own initializer").
type local struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalueDesc is one entry in a function's upvalue descriptor list: either a
// capture of a local slot in the immediately enclosing function (isLocal
// true, index is that function's local slot) or a capture of one of the
// enclosing function's own upvalues (isLocal false, index is that
// function's upvalue index). This is the descriptor shape the Closure
// instruction's trailing operand pairs encode.
type upvalueDesc struct {
	index   uint8
	isLocal bool
}

type loopScope struct {
	// loopStart is the code offset the Loop instruction jumps back to.
	loopStart int
	// scopeDepth is the scope depth active when the loop body began, so
	// break/continue know how many scopes they are unwinding past.
	scopeDepth int
	// breakJumps collects the offsets of JumpIfFalse-less Jump stubs emitted
	// by `break`, patched to the loop's exit once the loop is fully compiled.
	breakJumps []int
}

// funcState is the per-function compile-time state: one is pushed for the
// top-level script and one more for every nested function or method body,
// linked via enclosing to its surrounding function. It owns the
// bytecode.Chunk being built for this function.
type funcState struct {
	enclosing *funcState

	name          string
	fnType        funcType
	arity         int
	isInitializer bool

	chunk bytecode.Chunk

	locals     []local
	scopeDepth int

	upvalues []upvalueDesc

	loops []loopScope
}

func newFuncState(enclosing *funcState, name string, fnType funcType) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		name:      name,
		fnType:    fnType,
	}
	// Slot 0 is reserved: for methods and initializers it holds the bound
	// receiver (`this`); for plain functions and the top-level script it is
	// an unnamed slot the compiler never exposes to user code.
	slotName := ""
	if fnType == typeMethod || fnType == typeInitializer {
		slotName = "this"
	}
	fs.locals = append(fs.locals, local{name: slotName, depth: 0})
	return fs
}

func (fs *funcState) currentLoop() *loopScope {
	if len(fs.loops) == 0 {
		return nil
	}
	return &fs.loops[len(fs.loops)-1]
}

// classState tracks the class currently being compiled, linked via
// enclosing to support nested class declarations.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}
