package value

// Upvalue is a mutable cell mediating a closure's access to a variable
// captured from an enclosing function. It starts Open, referencing a slot
// in the VM's value stack by index, and transitions to Closed exactly
// once, when the stack slot it referenced is about to be popped. Multiple
// closures that capture the same local share the same *Upvalue handle, so
// the open-to-closed transition, and any write through the cell, is
// observed by all of them.
type Upvalue struct {
	// StackIndex is the absolute VM stack index this upvalue reads/writes
	// through while Closed is false. Unused once Closed.
	StackIndex int
	Closed     bool
	// closedValue holds the value once the upvalue has been closed; it owns
	// the value from that point on, independent of the stack.
	closedValue Value
}

// NewOpenUpvalue returns an Upvalue referencing the given absolute stack
// index.
func NewOpenUpvalue(stackIndex int) *Upvalue {
	return &Upvalue{StackIndex: stackIndex}
}

func (u *Upvalue) String() string { return "upvalue" }
func (*Upvalue) Type() string     { return "upvalue" }
func (*Upvalue) Truth() bool      { return true }

// Get reads the upvalue's current value. stack is the VM's value stack,
// used only while the upvalue is open.
func (u *Upvalue) Get(stack []Value) Value {
	if u.Closed {
		return u.closedValue
	}
	return stack[u.StackIndex]
}

// Set writes through the upvalue. stack is the VM's value stack, used only
// while the upvalue is open.
func (u *Upvalue) Set(stack []Value, v Value) {
	if u.Closed {
		u.closedValue = v
		return
	}
	stack[u.StackIndex] = v
}

// Close transitions the upvalue from open to closed, copying the current
// stack value into the cell it will own from then on. It must be called
// exactly once per upvalue, before the referenced stack slot is overwritten
// or popped.
func (u *Upvalue) Close(stack []Value) {
	u.closedValue = stack[u.StackIndex]
	u.Closed = true
}

var _ Value = (*Upvalue)(nil)

// Closure is a runtime pairing of an immutable Function descriptor with the
// array of Upvalue handles it closed over. Multiple closures can share
// upvalues; a closure's Upvalues length always equals its Function's
// declared upvalue count.
type Closure struct {
	Function *Function
	Upvalues []*Upvalue
}

func NewClosure(fn *Function, upvalues []*Upvalue) *Closure {
	return &Closure{Function: fn, Upvalues: upvalues}
}

func (c *Closure) String() string { return c.Function.String() }
func (*Closure) Type() string     { return "closure" }
func (*Closure) Truth() bool      { return true }

var _ Value = (*Closure)(nil)
