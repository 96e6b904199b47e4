package compiler

import (
	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/token"
	"github.com/foxlang/fox/lang/value"
)

// parseVariable consumes an identifier, declares it as a local (if inside a
// scope), and returns the global-table constant index to use with
// DefineGlobal if it turns out to be a global (the index is harmless but
// unused when the variable ends up local).
func (c *compiler) parseVariable(errorMessage string) byte {
	c.consume(token.IDENT, errorMessage)
	name := c.prev.Lexeme
	c.declareVariable(name)
	if c.fs.scopeDepth > 0 {
		return 0
	}
	return c.makeConstant(value.Text(name))
}

// defineVariable finishes a variable declaration: at local scope the value
// already sitting on the stack simply becomes the local (marking it
// initialized is all that's needed); at global scope it is filed into the
// VM's global table under global.
func (c *compiler) defineVariable(global byte) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.DefineGlobal, global)
}

func (c *compiler) varDeclaration() {
	global := c.parseVariable("expected a variable name")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(bytecode.Nil)
	}
	c.consume(token.SEMICOLON, "expected ';' after variable declaration")
	c.defineVariable(global)
}

func (c *compiler) funDeclaration() {
	global := c.parseVariable("expected a function name")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

// function compiles a function's parameter list and body into a fresh
// nested funcState, then emits a Closure instruction in the enclosing
// function referencing the compiled Function as a constant, followed by
// one 2-byte (isLocal, index) descriptor pair per upvalue it captured, per
// Closure instruction encoding.
func (c *compiler) function(fnType funcType) {
	name := c.prev.Lexeme
	fs := newFuncState(c.fs, name, fnType)
	fs.isInitializer = fnType == typeInitializer
	c.fs = fs

	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after function name")
	if !c.check(token.RPAREN) {
		for {
			c.fs.arity++
			if c.fs.arity > 255 {
				c.error("can't have more than 255 parameters")
			}
			param := c.parseVariable("expected a parameter name")
			c.defineVariable(param)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after parameters")
	c.consume(token.LBRACE, "expected '{' before function body")
	c.block()

	upvalues := fs.upvalues
	fn := c.endFunction()

	idx := c.makeConstant(fn)
	c.emitOpByte(bytecode.Closure, idx)
	for _, up := range upvalues {
		isLocal := byte(0)
		if up.isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(up.index)
	}
}

func (c *compiler) classDeclaration() {
	c.consume(token.IDENT, "expected a class name")
	nameTok := c.prev
	nameConst := c.makeConstant(value.Text(nameTok.Lexeme))
	c.declareVariable(nameTok.Lexeme)

	c.emitOpByte(bytecode.Class, nameConst)
	c.defineVariable(nameConst)

	cs := &classState{enclosing: c.cs}
	c.cs = cs

	if c.match(token.COLON) {
		c.consume(token.IDENT, "expected a superclass name")
		c.namedVariable(c.prev, false)
		if c.prev.Lexeme == nameTok.Lexeme {
			c.error("a class cannot inherit from itself")
		}

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariable(nameTok, false)
		c.emitOp(bytecode.Inherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(nameTok, false)
	c.consume(token.LBRACE, "expected '{' before class body")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "expected '}' after class body")
	c.emitOp(bytecode.Pop) // the class value pushed for method compilation

	if cs.hasSuperclass {
		c.endScope()
	}
	c.cs = cs.enclosing
}

// method compiles a single method declaration inside a class body, leaving
// the enclosing class value on the stack (Method pops only the closure it
// installs, not the class).
func (c *compiler) method() {
	c.consume(token.IDENT, "expected a method name")
	nameTok := c.prev
	nameConst := c.makeConstant(value.Text(nameTok.Lexeme))

	fnType := typeMethod
	if nameTok.Lexeme == "init" {
		fnType = typeInitializer
	}
	c.function(fnType)
	c.emitOpByte(bytecode.Method, nameConst)
}
