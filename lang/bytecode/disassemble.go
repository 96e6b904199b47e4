package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of chunk to w, one instruction
// per line, prefixed with name as a header. It is a debugging aid used by
// the CLI's "disassemble" command.
func Disassemble(w io.Writer, chunk *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	offset := 0
	for offset < chunk.Len() {
		offset = DisassembleInstruction(w, chunk, offset)
	}
}

// DisassembleInstruction writes a single instruction starting at offset and
// returns the offset of the next instruction.
func DisassembleInstruction(w io.Writer, chunk *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	line := chunk.LineFor(offset)
	if offset > 0 && chunk.LineFor(offset-1) == line {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op := OpCode(chunk.Code[offset])
	switch op {
	case Closure:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, "%-16s %4d %v\n", op, idx, chunk.Constants[idx])
		next := offset + 2
		if fn, ok := chunk.Constants[idx].(interface{ UpvalueCount() int }); ok {
			for i := 0; i < fn.UpvalueCount(); i++ {
				isLocal := chunk.Code[next]
				index := chunk.Code[next+1]
				kind := "upvalue"
				if isLocal != 0 {
					kind = "local"
				}
				fmt.Fprintf(w, "%04d      |                     %s %d\n", next, kind, index)
				next += 2
			}
		}
		return next

	case JumpIfFalse, Jump, Loop:
		jump := chunk.ReadUint16(offset + 1)
		sign := 1
		if op == Loop {
			sign = -1
		}
		target := offset + 3 + sign*int(jump)
		fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, target)
		return offset + 3

	case Constant, DefineGlobal, GetGlobal, SetGlobal, Class, GetProperty, SetProperty, Method, GetSuper:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, "%-16s %4d %v\n", op, idx, chunk.Constants[idx])
		return offset + 2

	case GetLocal, SetLocal, GetUpvalue, SetUpvalue, Call:
		arg := chunk.Code[offset+1]
		fmt.Fprintf(w, "%-16s %4d\n", op, arg)
		return offset + 2

	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1 + op.OperandWidth()
	}
}
