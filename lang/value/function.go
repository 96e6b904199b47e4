package value

import (
	"fmt"

	"github.com/foxlang/fox/lang/bytecode"
)

// Function is an immutable compiled function descriptor, produced once by
// the compiler and shared (by reference) across every Closure created from
// it.
type Function struct {
	Name          string
	Arity         int // parameter count, <= 255
	Chunk         *bytecode.Chunk
	upvalueCount  int
	isInitializer bool
}

// NewFunction constructs a Function descriptor. The chunk must already be
// fully compiled; Function is immutable after construction.
func NewFunction(name string, arity int, chunk *bytecode.Chunk, upvalueCount int, isInitializer bool) *Function {
	return &Function{
		Name:          name,
		Arity:         arity,
		Chunk:         chunk,
		upvalueCount:  upvalueCount,
		isInitializer: isInitializer,
	}
}

// UpvalueCount returns the number of upvalues a Closure built from this
// Function must carry. Implements the interface bytecode.Disassemble uses to
// print a Closure instruction's upvalue descriptors without importing this
// package.
func (f *Function) UpvalueCount() int { return f.upvalueCount }

// IsInitializer reports whether this function is a class's `init` method,
// which implicitly returns `this`.
func (f *Function) IsInitializer() bool { return f.isInitializer }

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
func (*Function) Type() string { return "function" }
func (*Function) Truth() bool  { return true }

var _ Value = (*Function)(nil)
