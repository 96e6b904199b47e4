// Package bytecode defines the compiled code unit (Chunk) and the opcode
// table executed by the virtual machine.
package bytecode

import "fmt"

// OpCode identifies a single bytecode instruction. Every instruction begins
// with a single OpCode byte; the operand bytes (if any) that follow it have a
// width fixed per opcode, known to both the compiler (emitter) and the VM
// (decoder).
type OpCode uint8

// "x y OP z" is a stack picture: values popped from the left, pushed on the
// right.
const ( //nolint:revive
	Constant OpCode = iota //   - Constant idx  constants[idx]

	Nil   // - Nil   Nil
	True  // - True  true
	False // - False false

	Pop       //   x Pop       -
	Duplicate //   x Duplicate x x

	Negate // x Negate -x
	Not    // x Not    !x

	Add      // a b Add      a+b
	Subtract // a b Subtract a-b
	Multiply // a b Multiply a*b
	Divide   // a b Divide   a/b

	Equal   // a b Equal   a==b
	Greater // a b Greater a>b
	Less    // a b Less    a<b

	Print  // x Print -
	Return // x Return (pops frame, pushes x for caller)

	DefineGlobal //   x DefineGlobal idx  -            (globals[constants[idx]] = x)
	GetGlobal    //   - GetGlobal    idx  globals[constants[idx]]
	SetGlobal    //   x SetGlobal    idx  x            (globals[constants[idx]] = x)

	GetLocal //   - GetLocal slot  stack[frame_start+slot]
	SetLocal //   x SetLocal slot  x

	JumpIfFalse // x JumpIfFalse offset  x  (jump forward by offset if !truthy(x))
	Jump        // -  Jump        offset -  (jump forward by offset)
	Loop        // -  Loop        offset -  (jump backward by offset)

	Call // fn arg1..argN Call argc  result

	Closure      // -           Closure idx  closure      (plus N upvalue descriptors)
	CloseUpvalue // x           CloseUpvalue -            (closes open upvalue at stack top, pops)

	GetUpvalue // - GetUpvalue idx  upvalues[idx]
	SetUpvalue // x SetUpvalue idx  x

	Class // - Class idx  class

	GetProperty // instance      GetProperty idx  value
	SetProperty // instance val  SetProperty idx  val

	Method   // class closure Method idx  class  (installs closure as a method on class)
	Inherit  // super sub     Inherit     super  (copies super's methods into sub)
	GetSuper // this super    GetSuper    idx     bound-method

	maxOpCode
)

var opCodeNames = [...]string{
	Constant:     "CONSTANT",
	Nil:          "NIL",
	True:         "TRUE",
	False:        "FALSE",
	Pop:          "POP",
	Duplicate:    "DUPLICATE",
	Negate:       "NEGATE",
	Not:          "NOT",
	Add:          "ADD",
	Subtract:     "SUBTRACT",
	Multiply:     "MULTIPLY",
	Divide:       "DIVIDE",
	Equal:        "EQUAL",
	Greater:      "GREATER",
	Less:         "LESS",
	Print:        "PRINT",
	Return:       "RETURN",
	DefineGlobal: "DEFINE_GLOBAL",
	GetGlobal:    "GET_GLOBAL",
	SetGlobal:    "SET_GLOBAL",
	GetLocal:     "GET_LOCAL",
	SetLocal:     "SET_LOCAL",
	JumpIfFalse:  "JUMP_IF_FALSE",
	Jump:         "JUMP",
	Loop:         "LOOP",
	Call:         "CALL",
	Closure:      "CLOSURE",
	CloseUpvalue: "CLOSE_UPVALUE",
	GetUpvalue:   "GET_UPVALUE",
	SetUpvalue:   "SET_UPVALUE",
	Class:        "CLASS",
	GetProperty:  "GET_PROPERTY",
	SetProperty:  "SET_PROPERTY",
	Method:       "METHOD",
	Inherit:      "INHERIT",
	GetSuper:     "GET_SUPER",
}

func (op OpCode) String() string {
	if int(op) < 0 || int(op) >= len(opCodeNames) || opCodeNames[op] == "" {
		return fmt.Sprintf("<invalid opcode %d>", op)
	}
	return opCodeNames[op]
}

// OperandWidth returns the number of operand bytes that follow op in the
// instruction stream. Closure is special-cased by the caller: its base
// operand width is 1 (the function's constant index), and it is followed by
// 2*N more bytes for the function's N upvalue descriptors, which the decoder
// must read using the function's UpvalueCount, not a fixed width.
func (op OpCode) OperandWidth() int {
	switch op {
	case Constant, DefineGlobal, GetGlobal, SetGlobal,
		GetLocal, SetLocal, GetUpvalue, SetUpvalue,
		Call, Closure, Class, GetProperty, SetProperty, Method, GetSuper:
		return 1
	case JumpIfFalse, Jump, Loop:
		return 2
	default:
		return 0
	}
}

// IsJump reports whether op takes a 2-byte jump offset operand.
func (op OpCode) IsJump() bool {
	switch op {
	case JumpIfFalse, Jump, Loop:
		return true
	default:
		return false
	}
}
