package host

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/foxlang/fox/lang/value"
)

// StandardLibrary returns the native function registry every `fox run`
// invocation installs. `write`/`writeln`/`readln` match a Lox-family
// reference implementation's trio of the same name and behavior;
// `clock`, `str`, `type`, and `print_err` are added in the same spirit:
// `clock` is a direct port of clox's canonical native, `str` and `type` are
// minimal type-introspection helpers, and `print_err` is `writeln` bound to
// stderr.
func StandardLibrary(stdout, stderr io.Writer, stdin io.Reader) *NativeRegistry {
	r := NewNativeRegistry()
	reader := bufio.NewReader(stdin)

	r.Register("clock", nativeClock)
	r.Register("write", nativeWrite(stdout))
	r.Register("writeln", nativeWriteln(stdout))
	r.Register("readln", nativeReadln(stdout, reader))
	r.Register("str", nativeStr)
	r.Register("type", nativeType)
	r.Register("print_err", nativeWriteln(stderr))
	return r
}

// nativeClock returns the number of seconds elapsed since the Unix epoch,
// as a fractional Number, so scripts can measure elapsed time.
func nativeClock(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("clock() takes no arguments")
	}
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}

func nativeWrite(w io.Writer) value.NativeFunc {
	return func(args []value.Value) (value.Value, error) {
		for _, a := range args {
			fmt.Fprint(w, a.String())
		}
		return value.Nil{}, nil
	}
}

func nativeWriteln(w io.Writer) value.NativeFunc {
	write := nativeWrite(w)
	return func(args []value.Value) (value.Value, error) {
		if _, err := write(args); err != nil {
			return nil, err
		}
		fmt.Fprintln(w)
		return value.Nil{}, nil
	}
}

// nativeReadln writes any arguments as a prompt, then reads and returns one
// line of input from reader with its trailing newline stripped. At EOF it
// returns Nil, the native convention for "no meaningful result".
func nativeReadln(prompt io.Writer, reader *bufio.Reader) value.NativeFunc {
	write := nativeWrite(prompt)
	return func(args []value.Value) (value.Value, error) {
		if _, err := write(args); err != nil {
			return nil, err
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return value.Nil{}, nil
		}
		return value.Text(strings.TrimRight(line, "\r\n")), nil
	}
}

func nativeStr(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str() takes exactly one argument")
	}
	return value.Text(args[0].String()), nil
}

func nativeType(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("type() takes exactly one argument")
	}
	return value.Text(args[0].Type()), nil
}
