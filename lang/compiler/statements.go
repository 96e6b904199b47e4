package compiler

import (
	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/token"
)

// declaration parses a single top-level or block-level declaration,
// synchronizing on the nearest statement boundary if a syntax error is
// encountered.
func (c *compiler) declaration() {
	switch {
	case c.match(token.VAR):
		c.varDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.CLASS):
		c.classDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.SWITCH):
		c.switchStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	default:
		c.expressionStatement()
	}
}

func (c *compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "expected '}' after block")
}

func (c *compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after value")
	c.emitOp(bytecode.Print)
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after expression")
	c.emitOp(bytecode.Pop)
}

func (c *compiler) ifStatement() {
	c.consume(token.LPAREN, "expected '(' after 'if'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	thenJump := c.emitJump(bytecode.JumpIfFalse)
	c.emitOp(bytecode.Pop)
	c.statement()

	elseJump := c.emitJump(bytecode.Jump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.Pop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *compiler) whileStatement() {
	loopStart := c.chunk().Len()
	c.fs.loops = append(c.fs.loops, loopScope{loopStart: loopStart, scopeDepth: c.fs.scopeDepth})

	c.consume(token.LPAREN, "expected '(' after 'while'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	exitJump := c.emitJump(bytecode.JumpIfFalse)
	c.emitOp(bytecode.Pop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.Pop)

	c.patchBreaks()
}

// forStatement desugars the C-style for loop into the initializer, the
// while-style conditional loop, and the increment run after each body
// execution; `for` is sugar over `while`.
func (c *compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after 'for'")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk().Len()
	c.fs.loops = append(c.fs.loops, loopScope{loopStart: loopStart, scopeDepth: c.fs.scopeDepth})

	exitJump := -1
	if !c.check(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "expected ';' after loop condition")
		exitJump = c.emitJump(bytecode.JumpIfFalse)
		c.emitOp(bytecode.Pop)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(bytecode.Jump)

		incrementStart := c.chunk().Len()
		c.expression()
		c.emitOp(bytecode.Pop)
		c.consume(token.RPAREN, "expected ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.fs.currentLoop().loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPAREN, "expected ')' after for clauses")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.Pop)
	}

	c.patchBreaks()
	c.endScope()
}

// patchBreaks pops the innermost loop scope and patches every break jump
// it collected to land here, at the loop's exit.
func (c *compiler) patchBreaks() {
	loop := c.fs.loops[len(c.fs.loops)-1]
	c.fs.loops = c.fs.loops[:len(c.fs.loops)-1]
	for _, jump := range loop.breakJumps {
		c.patchJump(jump)
	}
}

func (c *compiler) breakStatement() {
	loop := c.fs.currentLoop()
	if loop == nil {
		c.error("'break' used outside of a loop")
		c.consume(token.SEMICOLON, "expected ';' after 'break'")
		return
	}
	c.closeLocalsAbove(loop.scopeDepth)
	jump := c.emitJump(bytecode.Jump)
	loop.breakJumps = append(loop.breakJumps, jump)
	c.consume(token.SEMICOLON, "expected ';' after 'break'")
}

func (c *compiler) continueStatement() {
	loop := c.fs.currentLoop()
	if loop == nil {
		c.error("'continue' used outside of a loop")
		c.consume(token.SEMICOLON, "expected ';' after 'continue'")
		return
	}
	c.closeLocalsAbove(loop.scopeDepth)
	c.emitLoop(loop.loopStart)
	c.consume(token.SEMICOLON, "expected ';' after 'continue'")
}

// closeLocalsAbove emits the Pop/CloseUpvalue cleanup for every local
// declared deeper than targetDepth, without actually removing them from
// fs.locals -- used by break/continue, which jump out of (or back to the
// top of) nested block scopes without going through the normal endScope
// bookkeeping for those scopes.
func (c *compiler) closeLocalsAbove(targetDepth int) {
	for i := len(c.fs.locals) - 1; i >= 0 && c.fs.locals[i].depth > targetDepth; i-- {
		if c.fs.locals[i].isCaptured {
			c.emitOp(bytecode.CloseUpvalue)
		} else {
			c.emitOp(bytecode.Pop)
		}
	}
}

// switchStatement compiles `switch (expr) { case a:...; case b:...;
// default:... }`. Each case is tested against the switch value using
// runtime equality, the same operator `==` uses, falling through to the
// next case's test on mismatch and jumping to the statement after the
// switch on match.
func (c *compiler) switchStatement() {
	c.consume(token.LPAREN, "expected '(' after 'switch'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after switch value")
	c.consume(token.LBRACE, "expected '{' before switch body")

	var endJumps []int
	sawDefault := false

	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		switch {
		case c.match(token.CASE):
			c.emitOp(bytecode.Duplicate)
			c.expression()
			c.emitOp(bytecode.Equal)
			c.consume(token.COLON, "expected ':' after case value")

			nextCase := c.emitJump(bytecode.JumpIfFalse)
			c.emitOp(bytecode.Pop) // the Equal result
			c.emitOp(bytecode.Pop) // the duplicated switch value
			for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RBRACE) {
				c.statement()
			}
			endJumps = append(endJumps, c.emitJump(bytecode.Jump))
			c.patchJump(nextCase)
			c.emitOp(bytecode.Pop) // the Equal result, on the fallthrough path
		case c.match(token.DEFAULT):
			if sawDefault {
				c.error("a switch can have only one 'default' case")
			}
			sawDefault = true
			c.consume(token.COLON, "expected ':' after 'default'")
			c.emitOp(bytecode.Pop) // the duplicated switch value
			for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RBRACE) {
				c.statement()
			}
		default:
			c.errorAtCurrent("expected 'case' or 'default' in switch body")
			c.advance()
		}
	}
	if !sawDefault {
		c.emitOp(bytecode.Pop) // the switch value, if no case matched
	}
	c.consume(token.RBRACE, "expected '}' after switch body")

	for _, jump := range endJumps {
		c.patchJump(jump)
	}
}

func (c *compiler) returnStatement() {
	if c.fs.fnType == typeScript {
		c.error("'return' used outside of a function")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.fs.fnType == typeInitializer {
		c.error("an initializer cannot return a value")
	}
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after return value")
	c.emitOp(bytecode.Return)
}
