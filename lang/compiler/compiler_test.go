package compiler

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/value"
	"github.com/stretchr/testify/require"
)

func disassembled(t *testing.T, src string) (string, *bytecode.Chunk) {
	t.Helper()
	fn, errs := Compile(src)
	require.Empty(t, errs, "unexpected compile errors: %v", errs)
	require.NotNil(t, fn)
	var b strings.Builder
	disassembleAll(&b, fn)
	return b.String(), fn.Chunk
}

// disassembleAll writes fn's chunk, then the chunk of every function nested
// in its constant pool, so opcodes emitted inside function and method bodies
// show up in the listing.
func disassembleAll(w io.Writer, fn *value.Function) {
	bytecode.Disassemble(w, fn.Chunk, fn.String())
	for _, k := range fn.Chunk.Constants {
		if nested, ok := k.(*value.Function); ok {
			disassembleAll(w, nested)
		}
	}
}

func TestCompileEmptyProgram(t *testing.T) {
	fn, errs := Compile("")
	require.Empty(t, errs)
	require.NotNil(t, fn)
	require.Equal(t, 0, fn.Arity)
}

func TestCompileArithmeticExpression(t *testing.T) {
	out, _ := disassembled(t, "print 1 + 2 * 3;")
	require.Contains(t, out, "ADD")
	require.Contains(t, out, "MULTIPLY")
	require.Contains(t, out, "PRINT")
}

func TestCompileGlobalVariable(t *testing.T) {
	out, _ := disassembled(t, "var x = 1; x = 2; print x;")
	require.Contains(t, out, "DEFINE_GLOBAL")
	require.Contains(t, out, "SET_GLOBAL")
	require.Contains(t, out, "GET_GLOBAL")
}

func TestCompileLocalVariableUsesSlotsNotGlobals(t *testing.T) {
	out, _ := disassembled(t, "{ var x = 1; x = 2; print x; }")
	require.Contains(t, out, "GET_LOCAL")
	require.Contains(t, out, "SET_LOCAL")
	require.NotContains(t, out, "DEFINE_GLOBAL")
}

func TestCompileIfElse(t *testing.T) {
	out, _ := disassembled(t, `if (true) { print "y"; } else { print "n"; }`)
	require.Contains(t, out, "JUMP_IF_FALSE")
	require.Contains(t, out, "JUMP")
}

func TestCompileWhileLoop(t *testing.T) {
	out, _ := disassembled(t, "var i = 0; while (i < 3) { i = i + 1; }")
	require.Contains(t, out, "LOOP")
}

func TestCompileForLoopDesugarsToLoop(t *testing.T) {
	out, _ := disassembled(t, "for (var i = 0; i < 3; i = i + 1) { print i; }")
	require.Contains(t, out, "LOOP")
	require.Contains(t, out, "GET_LOCAL")
}

func TestCompileBreakAndContinue(t *testing.T) {
	_, errs := Compile("while (true) { break; }")
	require.Empty(t, errs)
	_, errs = Compile("while (true) { continue; }")
	require.Empty(t, errs)
}

func TestCompileBreakOutsideLoopIsError(t *testing.T) {
	_, errs := Compile("break;")
	require.NotEmpty(t, errs)
}

func TestCompileFunctionEmitsClosure(t *testing.T) {
	out, _ := disassembled(t, "fun add(a, b) { return a + b; } print add(1, 2);")
	require.Contains(t, out, "CLOSURE")
	require.Contains(t, out, "CALL")
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	out, _ := disassembled(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	require.Contains(t, out, "CLOSURE")
	require.Contains(t, out, "GET_UPVALUE")
}

func TestCompileClassWithMethod(t *testing.T) {
	out, _ := disassembled(t, `
		class Greeter {
			init(name) { this.name = name; }
			greet() { print this.name; }
		}
		var g = Greeter("world");
		g.greet();
	`)
	require.Contains(t, out, "CLASS")
	require.Contains(t, out, "METHOD")
	require.Contains(t, out, "GET_PROPERTY")
	require.Contains(t, out, "SET_PROPERTY")
}

func TestCompileClassInheritanceAndSuper(t *testing.T) {
	out, _ := disassembled(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog : Animal {
			speak() {
				super.speak();
				print "woof";
			}
		}
	`)
	require.Contains(t, out, "INHERIT")
	require.Contains(t, out, "GET_SUPER")
}

func TestCompileClassSelfInheritanceIsError(t *testing.T) {
	_, errs := Compile("class A : A {}")
	require.NotEmpty(t, errs)
}

func TestCompileSwitchStatement(t *testing.T) {
	out, _ := disassembled(t, `
		var x = 2;
		switch (x) {
			case 1: print "one";
			case 2: print "two";
			default: print "other";
		}
	`)
	require.Contains(t, out, "EQUAL")
	require.Contains(t, out, "DUPLICATE")
}

func TestCompileThisOutsideMethodIsError(t *testing.T) {
	_, errs := Compile("print this;")
	require.NotEmpty(t, errs)
}

func TestCompileSuperWithoutSuperclassIsError(t *testing.T) {
	_, errs := Compile("class A { m() { super.m(); } }")
	require.NotEmpty(t, errs)
}

func TestCompileMissingSemicolonIsSyntaxError(t *testing.T) {
	_, errs := Compile("var x = 1")
	require.NotEmpty(t, errs)
}

func TestCompileReturnOutsideFunctionIsError(t *testing.T) {
	_, errs := Compile("return 1;")
	require.NotEmpty(t, errs)
}

func TestCompileRedeclaredLocalIsError(t *testing.T) {
	_, errs := Compile("{ var x = 1; var x = 2; }")
	require.NotEmpty(t, errs)
}

func TestCompileSelfReferencingInitializerIsError(t *testing.T) {
	_, errs := Compile("{ var x = x; }")
	require.NotEmpty(t, errs)
}

func TestCompileTooManyConstantsIsError(t *testing.T) {
	var b strings.Builder
	for i := 0; i < bytecode.MaxConstants+1; i++ {
		fmt.Fprintf(&b, "print %d.5;\n", i)
	}
	_, errs := Compile(b.String())
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "too many constants") {
			found = true
		}
	}
	require.True(t, found, "expected a 'too many constants' error, got %v", errs)
}

func TestCompileTooManyUpvaluesIsError(t *testing.T) {
	c := &compiler{}
	fs := newFuncState(nil, "outer", typeFunction)
	inner := newFuncState(fs, "inner", typeFunction)
	c.fs = inner

	for i := 0; i < 256; i++ {
		if idx := addUpvalue(c, inner, uint8(i), true); idx != i {
			t.Fatalf("expected upvalue index %d, got %d", i, idx)
		}
	}
	require.Empty(t, c.errors)

	addUpvalue(c, inner, 0, false)
	require.NotEmpty(t, c.errors)
	require.Contains(t, c.errors[0].Message, "too many closure variables")
}

func TestCompileErrorsAreSortedByPosition(t *testing.T) {
	_, errs := Compile("var ; var ;")
	require.GreaterOrEqual(t, len(errs), 1)
	for i := 1; i < len(errs); i++ {
		require.LessOrEqual(t, errs[i-1].Line, errs[i].Line)
	}
}
