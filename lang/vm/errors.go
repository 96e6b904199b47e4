package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is a runtime fault raised while executing bytecode: a type
// error, an undefined-variable access, a division by zero, an arity
// mismatch, and so on. It carries the source line active when the fault
// occurred and a newest-frame-first stack trace.
type RuntimeError struct {
	Message string
	Line    int
	Trace   []TraceFrame
}

// TraceFrame is one entry of a RuntimeError's stack trace: the function
// that was executing and the source line active in it.
type TraceFrame struct {
	FuncName string
	Line     int
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n[line %d]", e.Message, e.Line)
	for _, fr := range e.Trace {
		name := fr.FuncName
		if name == "" {
			name = "<script>"
		}
		fmt.Fprintf(&b, "\n\tat %s (line %d)", name, fr.Line)
	}
	return b.String()
}
