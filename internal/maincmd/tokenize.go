package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/foxlang/fox/lang/scanner"
	"github.com/foxlang/fox/lang/token"
)

// Tokenize runs the scanner phase only and prints the resulting token
// stream, one token per line: a debugging aid for inspecting how a script
// lexes without compiling it.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
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

		sc := scanner.New(src)
		for {
			tok := sc.Scan()
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s", name, tok.Line, tok.Kind)
			if tok.Lexeme != "" {
				fmt.Fprintf(stdio.Stdout, " %q", tok.Lexeme)
			}
			fmt.Fprintln(stdio.Stdout)
			if tok.Kind == token.EOF {
				break
			}
		}
	}
	return firstErr
}
