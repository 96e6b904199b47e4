// Package compiler compiles Fox source text directly to bytecode in a
// single pass: a Pratt expression parser fused with
// recursive-descent statement parsing, resolving variables to locals,
// upvalues, or globals as it goes and emitting straight into a
// lang/bytecode.Chunk, patching forward jumps in place once their target is
// known. There is no intermediate AST and no separate resolution pass.
package compiler

import (
	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/scanner"
	"github.com/foxlang/fox/lang/token"
	"github.com/foxlang/fox/lang/value"
)

// compiler holds the parser state shared across an entire compilation: the
// token stream, the current/previous token, accumulated errors, and the
// linked stacks of function and class state. Exactly one compiler exists
// per call to Compile; funcState/classState nesting models entry into
// function bodies and class bodies.
type compiler struct {
	scanner *scanner.Scanner

	prev token.Token
	cur  token.Token

	errors    ErrorList
	panicMode bool

	fs *funcState
	cs *classState
}

// Compile compiles source into a top-level script Function, along with any
// compile errors encountered. Callers should treat a non-empty error list
// as "do not run this function": compilation fails as a whole if any
// compile error was reported, even one recovered from by panic-mode
// synchronization.
func Compile(source string) (*value.Function, []CompileError) {
	c := &compiler{scanner: scanner.New([]byte(source))}
	c.fs = newFuncState(nil, "", typeScript)

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endFunction()

	if len(c.errors) > 0 {
		c.errors.Sort()
		return nil, c.errors
	}
	return fn, nil
}

// --- token stream -----------------------------------------------------

func (c *compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scanner.Scan()
		if c.cur.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.cur.Lexeme)
	}
}

func (c *compiler) check(kind token.Kind) bool { return c.cur.Kind == kind }

func (c *compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *compiler) consume(kind token.Kind, message string) {
	if c.cur.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- error reporting ----------------------------------------------------

func (c *compiler) errorAtCurrent(message string) { c.errorAt(c.cur, message) }
func (c *compiler) error(message string)          { c.errorAt(c.prev, message) }

// errorAt records a compile error at tok's position. While in panic mode
// (already recovering from a prior error) further errors are suppressed
// until synchronize finds a statement boundary, avoiding a cascade of
// follow-on errors caused by the same root mistake.
func (c *compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errors = append(c.errors, CompileError{
		Line:          tok.Line,
		AbsoluteIndex: tok.AbsoluteIndex,
		Message:       message,
	})
}

// synchronize skips tokens until it reaches a plausible statement boundary,
// so one syntax error doesn't cascade into a wall of spurious follow-on
// errors.
func (c *compiler) synchronize() {
	c.panicMode = false
	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMICOLON {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.SWITCH:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ---------------------------------------------------

func (c *compiler) chunk() *bytecode.Chunk { return &c.fs.chunk }

func (c *compiler) emitByte(b byte) { c.chunk().Write(b, c.prev.Line) }

func (c *compiler) emitOp(op bytecode.OpCode) int { return c.chunk().WriteOp(op, c.prev.Line) }

func (c *compiler) emitOpByte(op bytecode.OpCode, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

// emitJump emits op followed by a 2-byte placeholder offset, returning the
// offset of the first placeholder byte so the caller can patch it later
// with patchJump stub-and-patch forward jump scheme.
func (c *compiler) emitJump(op bytecode.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.chunk().Len() - 2
}

// patchJump backpatches the 2-byte operand at offset (as returned by
// emitJump) to jump to the current end of the chunk, measured from the byte
// immediately following the 2-byte operand.
func (c *compiler) patchJump(offset int) {
	jump := c.chunk().Len() - (offset + 2)
	if jump > 0xffff {
		c.error("too much code to jump over")
		return
	}
	c.chunk().PatchUint16(offset, uint16(jump))
}

// emitLoop emits a Loop instruction jumping back to loopStart.
func (c *compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.Loop)
	jump := c.chunk().Len() - loopStart + 2
	if jump > 0xffff {
		c.error("loop body too large")
	}
	c.chunk().WriteUint16(uint16(jump), c.prev.Line)
}

func (c *compiler) emitConstant(v any) {
	c.emitOpByte(bytecode.Constant, c.makeConstant(v))
}

func (c *compiler) makeConstant(v any) byte {
	if len(c.chunk().Constants) >= bytecode.MaxConstants {
		c.error("too many constants in one chunk")
		return 0
	}
	return byte(c.chunk().AddConstant(v))
}

// emitReturn emits the implicit return every function body ends with: `init`
// methods implicitly return `this`,
// everything else implicitly returns Nil.
func (c *compiler) emitReturn() {
	if c.fs.fnType == typeInitializer {
		c.emitOpByte(bytecode.GetLocal, 0)
	} else {
		c.emitOp(bytecode.Nil)
	}
	c.emitOp(bytecode.Return)
}

// endFunction finalizes the current funcState's chunk into an immutable
// value.Function and pops back to the enclosing funcState.
func (c *compiler) endFunction() *value.Function {
	c.emitReturn()
	fs := c.fs
	fn := value.NewFunction(fs.name, fs.arity, &fs.chunk, len(fs.upvalues), fs.isInitializer)
	c.fs = fs.enclosing
	return fn
}
