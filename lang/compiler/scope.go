package compiler

import "github.com/foxlang/fox/lang/bytecode"

func (c *compiler) beginScope() { c.fs.scopeDepth++ }

// endScope pops every local declared in the scope being left. A local that
// was captured by a nested closure is closed (CloseUpvalue) rather than
// merely popped (Pop), so any closure holding its upvalue observes the
// final value from then on.
func (c *compiler) endScope() {
	c.fs.scopeDepth--
	locals := c.fs.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.fs.scopeDepth {
		if locals[len(locals)-1].isCaptured {
			c.emitOp(bytecode.CloseUpvalue)
		} else {
			c.emitOp(bytecode.Pop)
		}
		locals = locals[:len(locals)-1]
	}
	c.fs.locals = locals
}

// declareVariable registers name as a local in the current scope (a no-op
// at global scope, where variables live in the VM's global table instead).
// It is a compile error to redeclare a name already local to this exact
// scope.
func (c *compiler) declareVariable(name string) {
	if c.fs.scopeDepth == 0 {
		return
	}
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name {
			c.error("a variable named '" + name + "' already exists in this scope")
		}
	}
	c.addLocal(name)
}

func (c *compiler) addLocal(name string) {
	if len(c.fs.locals) >= 256 {
		c.error("too many local variables in one function")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

// markInitialized marks the most recently declared local as usable,
// transitioning it out of the "own initializer" dead zone. At global scope
// there is no local to mark.
func (c *compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

// resolveLocal looks up name among fs's own locals, innermost scope first.
// It returns -1 if name is not a local of fs.
func resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveUpvalue looks up name as a capture from an enclosing function,
// recursively threading the capture chain through every intermediate
// function so each one gets its own upvalue descriptor referencing the
// next one in. It returns -1 if name is not found in any enclosing
// function, meaning it must be a global.
func resolveUpvalue(c *compiler, fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].isCaptured = true
		return addUpvalue(c, fs, uint8(local), true)
	}
	if up := resolveUpvalue(c, fs.enclosing, name); up != -1 {
		return addUpvalue(c, fs, uint8(up), false)
	}
	return -1
}

// addUpvalue records a new upvalue descriptor on fs, or reuses an existing
// one that already captures the same index/isLocal pair so that two
// references to the same captured variable within one function share a
// single Closure upvalue slot. The descriptor's index is encoded as a
// single byte in the Closure instruction's operand pairs, so a function
// cannot capture more than 256 distinct variables.
func addUpvalue(c *compiler, fs *funcState, index uint8, isLocal bool) int {
	for i, up := range fs.upvalues {
		if up.index == index && up.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) == 256 {
		c.error("too many closure variables in function")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}
