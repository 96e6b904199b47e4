// Package host defines the interfaces a host embedding the compiler and VM
// implements to receive diagnostics, plus a native-function registry and a
// small standard native library. Nothing in lang/compiler or lang/vm
// depends on this package; it exists purely to adapt their error/trace
// shapes to whatever the embedding program (a CLI, a test harness, an
// editor plugin) wants to do with them.
package host

import (
	"github.com/foxlang/fox/lang/compiler"
	"github.com/foxlang/fox/lang/value"
	"github.com/foxlang/fox/lang/vm"
)

// CompileErrorSink receives the full list of compile errors produced by a
// failed compilation: `[{ line, absolute_index, message }]`.
type CompileErrorSink interface {
	ReportCompileErrors(errs []compiler.CompileError)
}

// RuntimeSink receives output and fault information from a running VM.
type RuntimeSink interface {
	PrintValue(v value.Value)
	SetError(message string, line int)
	SetStackTrace(frames []vm.TraceFrame)
}

// ReportRuntimeError unpacks a *vm.RuntimeError into the three RuntimeSink
// calls a host expects: the error message and its line, then the full
// trace, newest frame first (as vm.RuntimeError already orders it).
func ReportRuntimeError(sink RuntimeSink, err *vm.RuntimeError) {
	sink.SetError(err.Message, err.Line)
	sink.SetStackTrace(err.Trace)
}
