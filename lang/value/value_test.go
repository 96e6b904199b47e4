package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	require.False(t, Nil{}.Truth())
	require.False(t, Bool(false).Truth())
	require.True(t, Bool(true).Truth())
	require.True(t, Number(0).Truth())
	require.True(t, Text("").Truth())
}

func TestEqualByValue(t *testing.T) {
	require.True(t, Equal(Nil{}, Nil{}))
	require.True(t, Equal(Number(1), Number(1)))
	require.False(t, Equal(Number(1), Number(2)))
	require.True(t, Equal(Text("a"), Text("a")))
	require.False(t, Equal(Text("a"), Text("b")))
	require.False(t, Equal(Number(1), Text("1")))
}

func TestEqualByIdentity(t *testing.T) {
	c1 := NewClass("A")
	c2 := NewClass("A")
	require.True(t, Equal(c1, c1))
	require.False(t, Equal(c1, c2))
}

func TestAddConcatenatesWithCoercion(t *testing.T) {
	v, err := Add(Text("n="), Number(3))
	require.NoError(t, err)
	require.Equal(t, Text("n=3"), v)
}

func TestAddNumbers(t *testing.T) {
	v, err := Add(Number(2), Number(3))
	require.NoError(t, err)
	require.Equal(t, Number(5), v)
}

func TestDivideByZero(t *testing.T) {
	_, err := Divide(Number(1), Number(0))
	require.Error(t, err)
}

func TestUpvalueOpenThenClose(t *testing.T) {
	stack := []Value{Number(10)}
	up := NewOpenUpvalue(0)
	require.False(t, up.Closed)
	require.Equal(t, Number(10), up.Get(stack))

	up.Set(stack, Number(20))
	require.Equal(t, Number(20), stack[0])

	up.Close(stack)
	require.True(t, up.Closed)
	require.Equal(t, Number(20), up.Get(stack))

	// Mutating the stack after closing must not affect the closed value.
	stack[0] = Number(99)
	require.Equal(t, Number(20), up.Get(stack))
}

func TestSharedUpvalueObservesMutation(t *testing.T) {
	stack := []Value{Number(1)}
	up := NewOpenUpvalue(0)
	closureA := NewClosure(&Function{Name: "a"}, []*Upvalue{up})
	closureB := NewClosure(&Function{Name: "b"}, []*Upvalue{up})

	closureA.Upvalues[0].Set(stack, Number(42))
	require.Equal(t, Number(42), closureB.Upvalues[0].Get(stack))
}

func TestClassMethodCopyOnInherit(t *testing.T) {
	super := NewClass("Super")
	sub := NewClass("Sub")
	super.SetMethod("greet", &Closure{Function: &Function{Name: "greet"}})

	// Emulate Inherit: copy super's methods into sub.
	super.Methods.Iter(func(name string, closure *Closure) bool {
		sub.SetMethod(name, closure)
		return false
	})

	m, ok := sub.Method("greet")
	require.True(t, ok)
	require.Equal(t, "greet", m.Function.Name)

	// Adding a method to super after the copy has no effect on sub.
	super.SetMethod("late", &Closure{Function: &Function{Name: "late"}})
	_, ok = sub.Method("late")
	require.False(t, ok)
}
