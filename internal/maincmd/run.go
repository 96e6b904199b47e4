package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/foxlang/fox/lang/compiler"
	"github.com/foxlang/fox/lang/host"
	"github.com/foxlang/fox/lang/vm"
)

// Run compiles and executes each file in turn, exiting non-zero if any
// file fails to compile or raises an uncaught runtime error.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, args...)
}

func RunFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, name := range files {
		if err := runFile(ctx, stdio, name); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func runFile(ctx context.Context, stdio mainer.Stdio, name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
		return err
	}

	fn, errs := compiler.Compile(string(src))
	if len(errs) > 0 {
		printCompileErrors(stdio.Stderr, name, src, errs)
		return compiler.ErrorList(errs)
	}

	m := vm.New()
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr
	host.StandardLibrary(stdio.Stdout, stdio.Stderr, stdio.Stdin).Install(m)

	if _, err := m.Run(ctx, fn); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
