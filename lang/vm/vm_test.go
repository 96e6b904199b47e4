package vm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/foxlang/fox/lang/compiler"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) string {
	t.Helper()
	fn, errs := compiler.Compile(src)
	require.Empty(t, errs, "unexpected compile errors: %v", errs)

	var out bytes.Buffer
	m := New()
	m.Stdout = &out
	_, err := m.Run(context.Background(), fn)
	require.NoError(t, err)
	return out.String()
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	fn, errs := compiler.Compile(src)
	require.Empty(t, errs)
	m := New()
	m.Stdout = &bytes.Buffer{}
	_, err := m.Run(context.Background(), fn)
	return err
}

func TestArithmeticAndPrint(t *testing.T) {
	out := run(t, "print 1 + 2 * 3;")
	require.Equal(t, "7\n", out)
}

func TestStringConcatenationWithCoercion(t *testing.T) {
	out := run(t, `print "n=" + 3;`)
	require.Equal(t, "n=3\n", out)
}

func TestGlobalVariables(t *testing.T) {
	out := run(t, "var x = 1; x = x + 1; print x;")
	require.Equal(t, "2\n", out)
}

func TestBlockScopedLocals(t *testing.T) {
	out := run(t, `
		var x = "outer";
		{
			var x = "inner";
			print x;
		}
		print x;
	`)
	require.Equal(t, "inner\nouter\n", out)
}

func TestIfElse(t *testing.T) {
	out := run(t, `
		if (1 < 2) { print "yes"; } else { print "no"; }
		if (2 < 1) { print "yes"; } else { print "no"; }
	`)
	require.Equal(t, "yes\nno\n", out)
}

func TestWhileLoop(t *testing.T) {
	out := run(t, `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
	`)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestForLoopWithBreakAndContinue(t *testing.T) {
	out := run(t, `
		for (var i = 0; i < 5; i = i + 1) {
			if (i == 1) continue;
			if (i == 3) break;
			print i;
		}
	`)
	require.Equal(t, "0\n2\n", out)
}

func TestSwitchStatement(t *testing.T) {
	out := run(t, `
		fun describe(x) {
			switch (x) {
				case 1: print "one";
				case 2: print "two";
				default: print "many";
			}
		}
		describe(1);
		describe(2);
		describe(9);
	`)
	require.Equal(t, "one\ntwo\nmany\n", out)
}

func TestFunctionCallAndReturn(t *testing.T) {
	out := run(t, `
		fun add(a, b) { return a + b; }
		print add(2, 3);
	`)
	require.Equal(t, "5\n", out)
}

func TestRecursiveFunction(t *testing.T) {
	out := run(t, `
		fun fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`)
	require.Equal(t, "55\n", out)
}

func TestClosureCapturesAndMutatesUpvalue(t *testing.T) {
	out := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestTwoClosuresShareOneUpvalue(t *testing.T) {
	out := run(t, `
		fun makePair() {
			var shared = 0;
			fun get() { return shared; }
			fun set(v) { shared = v; }
			set(42);
			return get();
		}
		print makePair();
	`)
	require.Equal(t, "42\n", out)
}

func TestClassInitAndMethod(t *testing.T) {
	out := run(t, `
		class Greeter {
			init(name) {
				this.name = name;
			}
			greet() {
				print "hello " + this.name;
			}
		}
		var g = Greeter("fox");
		g.greet();
	`)
	require.Equal(t, "hello fox\n", out)
}

func TestClassInheritanceAndSuper(t *testing.T) {
	out := run(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog : Animal {
			speak() {
				super.speak();
				print "woof";
			}
		}
		Dog().speak();
	`)
	require.Equal(t, "...\nwoof\n", out)
}

func TestBoundMethodRetainsReceiverAfterExtraction(t *testing.T) {
	out := run(t, `
		class Box {
			init(v) { this.v = v; }
			get() { return this.v; }
		}
		var b = Box(7);
		var m = b.get;
		print m();
	`)
	require.Equal(t, "7\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	err := runErr(t, "print nope;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined variable")
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	err := runErr(t, "print 1 / 0;")
	require.Error(t, err)
}

func TestCallingNonCallableIsRuntimeError(t *testing.T) {
	err := runErr(t, `var x = 1; x();`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "can only call")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	err := runErr(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 2 arguments")
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	err := runErr(t, `
		fun inner() { return 1 / 0; }
		fun outer() { return inner(); }
		outer();
	`)
	require.Error(t, err)
	msg := err.Error()
	require.True(t, strings.Contains(msg, "inner") && strings.Contains(msg, "outer"))
}

func TestUndefinedPropertyIsRuntimeError(t *testing.T) {
	err := runErr(t, `
		class A {}
		var a = A();
		print a.missing;
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined property")
}
