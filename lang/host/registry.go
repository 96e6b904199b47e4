package host

import (
	"github.com/foxlang/fox/lang/value"
	"github.com/foxlang/fox/lang/vm"
)

// NativeDef pairs a global name with the Go function it is bound to: a
// name plus a `func(args []value.Value) (value.Value, error)`. Each
// becomes a global variable when a NativeRegistry is installed into a VM.
type NativeDef struct {
	Name string
	Fn   value.NativeFunc
}

// NativeRegistry accumulates NativeDefs and installs them into a VM's
// global table in one call.
type NativeRegistry struct {
	defs []NativeDef
}

func NewNativeRegistry() *NativeRegistry { return &NativeRegistry{} }

// Register adds name as a global bound to fn. Later registrations with the
// same name shadow earlier ones, the same "last definition wins" rule that
// applies to `var` at global scope.
func (r *NativeRegistry) Register(name string, fn value.NativeFunc) {
	r.defs = append(r.defs, NativeDef{Name: name, Fn: fn})
}

// Install defines every registered native as a global on m.
func (r *NativeRegistry) Install(m *vm.VM) {
	for _, d := range r.defs {
		m.DefineGlobal(d.Name, value.NewNativeFunction(d.Name, d.Fn))
	}
}
