package bytecode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkWriteAndLineTable(t *testing.T) {
	var c Chunk
	c.WriteOp(Nil, 1)
	c.WriteOp(Print, 1)
	c.WriteOp(Return, 2)

	require.Equal(t, 3, c.Len())
	require.Equal(t, 1, c.LineFor(0))
	require.Equal(t, 1, c.LineFor(1))
	require.Equal(t, 2, c.LineFor(2))
}

func TestChunkConstants(t *testing.T) {
	var c Chunk
	idx := c.AddConstant("hello")
	require.Equal(t, 0, idx)
	require.Equal(t, "hello", c.Constants[0])
}

func TestChunkConstantOverflow(t *testing.T) {
	var c Chunk
	for i := 0; i < MaxConstants; i++ {
		c.AddConstant(i)
	}
	require.Panics(t, func() { c.AddConstant("one too many") })
}

func TestChunkJumpPatch(t *testing.T) {
	var c Chunk
	c.WriteOp(JumpIfFalse, 1)
	stub := c.Len()
	c.WriteUint16(0xFFFF, 1)
	c.WriteOp(Pop, 1)
	target := c.Len()
	jump := target - stub - 2
	c.PatchUint16(stub, uint16(jump))
	require.Equal(t, uint16(jump), c.ReadUint16(stub))
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	var c Chunk
	idx := c.AddConstant(1.0)
	c.WriteOp(Constant, 1)
	c.WriteUint8(uint8(idx), 1)
	c.WriteOp(Return, 1)

	var buf bytes.Buffer
	Disassemble(&buf, &c, "test")
	require.Contains(t, buf.String(), "CONSTANT")
	require.Contains(t, buf.String(), "RETURN")
}
