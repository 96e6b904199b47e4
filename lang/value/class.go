package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Class is a class value: a name and a mutable mapping from method name to
// Closure. Superclass methods are copied into a subclass's table at
// inheritance time, so there is no superclass chain walked at call time.
//
// The method table uses dolthub/swiss.Map: it's the hottest string-keyed
// table in the VM, hit on every method call and on every Inherit, and
// swiss's open-addressing layout beats Go's builtin map for that access
// pattern.
type Class struct {
	Name    string
	Methods *swiss.Map[string, *Closure]
}

func NewClass(name string) *Class {
	return &Class{
		Name:    name,
		Methods: swiss.NewMap[string, *Closure](8),
	}
}

func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }
func (*Class) Type() string     { return "class" }
func (*Class) Truth() bool      { return true }

// Method looks up a method by name, returning ok=false if this class (after
// inheritance copying) has no such method.
func (c *Class) Method(name string) (*Closure, bool) {
	return c.Methods.Get(name)
}

// SetMethod installs closure as the method named name on this class,
// overwriting any method (including an inherited, copied-in one) of the
// same name.
func (c *Class) SetMethod(name string, closure *Closure) {
	c.Methods.Put(name, closure)
}

var _ Value = (*Class)(nil)

// Instance is a runtime object instance: a reference to its Class and a
// mutable field table. Property lookup is field-first, then method (which
// binds to produce a BoundMethod); see doGetProperty.
type Instance struct {
	Class  *Class
	Fields *swiss.Map[string, Value]
}

func NewInstance(class *Class) *Instance {
	return &Instance{
		Class:  class,
		Fields: swiss.NewMap[string, Value](4),
	}
}

func (i *Instance) String() string { return fmt.Sprintf("<%s instance>", i.Class.Name) }
func (*Instance) Type() string     { return "instance" }
func (*Instance) Truth() bool      { return true }

var _ Value = (*Instance)(nil)

// BoundMethod is an immutable pair of a receiver and the method Closure it
// was bound to by a property access that found a method rather than a
// field. When called, the receiver is spliced into call-frame slot 0 so
// `this` resolves as local slot 0.
type BoundMethod struct {
	Receiver Value
	Method   *Closure
}

func NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Method: method}
}

func (b *BoundMethod) String() string { return b.Method.String() }
func (*BoundMethod) Type() string     { return "bound method" }
func (*BoundMethod) Truth() bool      { return true }

var _ Value = (*BoundMethod)(nil)
