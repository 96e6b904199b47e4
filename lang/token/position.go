package token

import "fmt"

// Position identifies a location in a source file: the 1-based line number
// and the absolute byte offset of the token's first byte. It is
// intentionally simpler than a full line/column encoding because the
// compiler and VM only ever need the line number (for error reporting and
// the chunk's line table); the absolute index lets a host pretty-printer
// recover the offending source line and a caret column.
type Position struct {
	Line          int // 1-based line number
	AbsoluteIndex int // 0-based byte offset from the start of the source
}

func (p Position) String() string {
	return fmt.Sprintf("line %d", p.Line)
}
