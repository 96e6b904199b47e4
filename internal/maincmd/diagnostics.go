package maincmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/foxlang/fox/lang/compiler"
)

// printCompileErrors writes one diagnostic per error to w: the offending
// source line, then a caret under the column the error's AbsoluteIndex
// falls on.
func printCompileErrors(w io.Writer, filename string, src []byte, errs []compiler.CompileError) {
	lines := strings.Split(string(src), "\n")
	for _, e := range errs {
		fmt.Fprintf(w, "%s:%d: %s\n", filename, e.Line, e.Message)
		if e.Line-1 >= 0 && e.Line-1 < len(lines) {
			line := lines[e.Line-1]
			fmt.Fprintln(w, line)
			fmt.Fprintln(w, strings.Repeat(" ", caretColumn(src, e.Line, e.AbsoluteIndex))+"^")
		}
	}
}

// caretColumn returns the 0-based column of absoluteIndex within its line,
// so printCompileErrors can pad a caret out to the right position.
func caretColumn(src []byte, line, absoluteIndex int) int {
	lineStart := 0
	seen := 1
	for i, b := range src {
		if seen == line {
			lineStart = i
			break
		}
		if b == '\n' {
			seen++
		}
	}
	col := absoluteIndex - lineStart
	if col < 0 {
		return 0
	}
	return col
}
