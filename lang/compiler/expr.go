package compiler

import (
	"strconv"

	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/token"
	"github.com/foxlang/fox/lang/value"
)

// precedence orders binding power from loosest to tightest.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LPAREN:    {(*compiler).grouping, (*compiler).call, precCall},
		token.DOT:       {nil, (*compiler).dot, precCall},
		token.MINUS:     {(*compiler).unary, (*compiler).binary, precTerm},
		token.PLUS:      {nil, (*compiler).binary, precTerm},
		token.SLASH:     {nil, (*compiler).binary, precFactor},
		token.STAR:      {nil, (*compiler).binary, precFactor},
		token.BANG:      {(*compiler).unary, nil, precNone},
		token.BANG_EQ:   {nil, (*compiler).binary, precEquality},
		token.EQ_EQ:     {nil, (*compiler).binary, precEquality},
		token.GT:        {nil, (*compiler).binary, precComparison},
		token.GT_EQ:     {nil, (*compiler).binary, precComparison},
		token.LT:        {nil, (*compiler).binary, precComparison},
		token.LT_EQ:     {nil, (*compiler).binary, precComparison},
		token.IDENT:     {(*compiler).variable, nil, precNone},
		token.STRING:    {(*compiler).string, nil, precNone},
		token.NUMBER:    {(*compiler).number, nil, precNone},
		token.AND:       {nil, (*compiler).and, precAnd},
		token.OR:        {nil, (*compiler).or, precOr},
		token.FALSE:     {(*compiler).literal, nil, precNone},
		token.TRUE:      {(*compiler).literal, nil, precNone},
		token.NIL:       {(*compiler).literal, nil, precNone},
		token.THIS:      {(*compiler).this, nil, precNone},
		token.SUPER:     {(*compiler).super, nil, precNone},
	}
}

func ruleFor(kind token.Kind) parseRule { return rules[kind] }

func (c *compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := ruleFor(c.prev.Kind).prefix
	if prefix == nil {
		c.error("expected an expression")
		return
	}
	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= ruleFor(c.cur.Kind).precedence {
		c.advance()
		infix := ruleFor(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("invalid assignment target")
	}
}

func (c *compiler) number(bool) {
	n, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		c.error("invalid number literal '" + c.prev.Lexeme + "'")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *compiler) string(bool) {
	// Lexeme includes the surrounding quotes ; strip them.
	lit := c.prev.Lexeme
	c.emitConstant(value.Text(lit[1 : len(lit)-1]))
}

func (c *compiler) literal(bool) {
	switch c.prev.Kind {
	case token.FALSE:
		c.emitOp(bytecode.False)
	case token.TRUE:
		c.emitOp(bytecode.True)
	case token.NIL:
		c.emitOp(bytecode.Nil)
	}
}

func (c *compiler) grouping(bool) {
	c.expression()
	c.consume(token.RPAREN, "expected ')' after expression")
}

func (c *compiler) unary(bool) {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		c.emitOp(bytecode.Negate)
	case token.BANG:
		c.emitOp(bytecode.Not)
	}
}

func (c *compiler) binary(bool) {
	op := c.prev.Kind
	rule := ruleFor(op)
	c.parsePrecedence(rule.precedence + 1)
	switch op {
	case token.PLUS:
		c.emitOp(bytecode.Add)
	case token.MINUS:
		c.emitOp(bytecode.Subtract)
	case token.STAR:
		c.emitOp(bytecode.Multiply)
	case token.SLASH:
		c.emitOp(bytecode.Divide)
	case token.EQ_EQ:
		c.emitOp(bytecode.Equal)
	case token.BANG_EQ:
		c.emitOp(bytecode.Equal)
		c.emitOp(bytecode.Not)
	case token.GT:
		c.emitOp(bytecode.Greater)
	case token.GT_EQ:
		c.emitOp(bytecode.Less)
		c.emitOp(bytecode.Not)
	case token.LT:
		c.emitOp(bytecode.Less)
	case token.LT_EQ:
		c.emitOp(bytecode.Greater)
		c.emitOp(bytecode.Not)
	}
}

// and implements short-circuiting `and`: if the left operand is falsey,
// skip the right operand and leave the left value as the result.
func (c *compiler) and(bool) {
	endJump := c.emitJump(bytecode.JumpIfFalse)
	c.emitOp(bytecode.Pop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or implements short-circuiting `or`: if the left operand is truthy, skip
// the right operand and leave the left value as the result.
func (c *compiler) or(bool) {
	elseJump := c.emitJump(bytecode.JumpIfFalse)
	endJump := c.emitJump(bytecode.Jump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.Pop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *compiler) call(bool) {
	argc := c.argumentList()
	c.emitOpByte(bytecode.Call, argc)
}

func (c *compiler) argumentList() byte {
	var argc int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.error("can't pass more than 255 arguments")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after arguments")
	return byte(argc)
}

func (c *compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "expected a property name after '.'")
	name := c.makeConstant(value.Text(c.prev.Lexeme))

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(bytecode.SetProperty, name)
		return
	}
	c.emitOpByte(bytecode.GetProperty, name)
}

func (c *compiler) variable(canAssign bool) { c.namedVariable(c.prev, canAssign) }

// namedVariable resolves ident against the local/upvalue/global cascade
// and emits the matching get or set instruction, depending
// on whether an assignment follows and canAssign permits it.
func (c *compiler) namedVariable(ident token.Token, canAssign bool) {
	var getOp, setOp bytecode.OpCode
	var slot int

	if slot = resolveLocal(c.fs, ident.Lexeme); slot != -1 {
		if c.fs.locals[slot].depth == -1 {
			c.error("can't read local variable '" + ident.Lexeme + "' in its own initializer")
		}
		getOp, setOp = bytecode.GetLocal, bytecode.SetLocal
	} else if slot = resolveUpvalue(c, c.fs, ident.Lexeme); slot != -1 {
		getOp, setOp = bytecode.GetUpvalue, bytecode.SetUpvalue
	} else {
		slot = int(c.makeConstant(value.Text(ident.Lexeme)))
		getOp, setOp = bytecode.GetGlobal, bytecode.SetGlobal
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, byte(slot))
		return
	}
	c.emitOpByte(getOp, byte(slot))
}

func (c *compiler) this(bool) {
	if c.cs == nil {
		c.error("'this' can only be used inside a method")
		return
	}
	c.variable(false)
}

func (c *compiler) super(bool) {
	if c.cs == nil {
		c.error("'super' can only be used inside a method")
		return
	}
	if !c.cs.hasSuperclass {
		c.error("'super' can only be used in a class that inherits from another class")
	}
	c.consume(token.DOT, "expected '.' after 'super'")
	c.consume(token.IDENT, "expected a superclass method name")
	name := c.makeConstant(value.Text(c.prev.Lexeme))

	// `super.method` needs both the enclosing instance's bound `this` and
	// the lexical `super` upvalue/local holding the superclass, so GetSuper
	// can look the method up there and bind it to `this`.
	c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "this"}, false)
	c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "super"}, false)
	c.emitOpByte(bytecode.GetSuper, name)
}
