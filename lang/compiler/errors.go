package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// CompileError is a single compile-time diagnostic, reported with the
// position of the offending token: `{ line, absolute_index, message }`.
type CompileError struct {
	Line          int
	AbsoluteIndex int
	Message       string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ErrorList is a sorted collection of CompileErrors, in the same spirit as
// go/scanner.ErrorList (accumulate, sort by position, join into one
// error). This package defines its own rather than reusing
// go/scanner.ErrorList because that type is tied to go/token.Position, not
// this module's lang/token.Position.
type ErrorList []CompileError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Line != l[j].Line {
			return l[i].Line < l[j].Line
		}
		return l[i].AbsoluteIndex < l[j].AbsoluteIndex
	})
}
