package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/foxlang/fox/lang/bytecode"
	"github.com/foxlang/fox/lang/compiler"
	"github.com/foxlang/fox/lang/value"
)

// Disassemble compiles each file and prints its compiled chunk in
// human-readable form, one instruction per line with operands resolved,
// mirroring clox's disassembleChunk and parse/resolve print
// commands (compile, then hand the result to a dedicated printer).
func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisassembleFiles(stdio, args...)
}

func DisassembleFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		fn, errs := compiler.Compile(string(src))
		if len(errs) > 0 {
			printCompileErrors(stdio.Stderr, name, src, errs)
			if firstErr == nil {
				firstErr = compiler.ErrorList(errs)
			}
			continue
		}

		disassembleRecursive(stdio.Stdout, fn)
	}
	return firstErr
}

// disassembleRecursive prints fn's chunk, then every nested function's
// chunk reachable through its constant pool, the way clox's compiler
// disassembles each function body as soon as it finishes compiling it.
func disassembleRecursive(w io.Writer, fn *value.Function) {
	bytecode.Disassemble(w, fn.Chunk, fn.String())
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*value.Function); ok {
			disassembleRecursive(w, nested)
		}
	}
}
