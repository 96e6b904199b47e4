package maincmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.fox")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunFilesExecutesScript(t *testing.T) {
	path := writeScript(t, `print 1 + 2;`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: &bytes.Buffer{}}

	err := RunFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	require.Equal(t, "3\n", out.String())
	require.Empty(t, errOut.String())
}

func TestRunFilesReportsCompileError(t *testing.T) {
	path := writeScript(t, `print 1 +;`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: &bytes.Buffer{}}

	err := RunFiles(context.Background(), stdio, path)
	require.Error(t, err)
	require.NotEmpty(t, errOut.String())
}

func TestRunFilesReportsRuntimeError(t *testing.T) {
	path := writeScript(t, `print 1 / 0;`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: &bytes.Buffer{}}

	err := RunFiles(context.Background(), stdio, path)
	require.Error(t, err)
	require.Contains(t, errOut.String(), "[line 1]")
}

func TestTokenizeFilesPrintsTokens(t *testing.T) {
	path := writeScript(t, `var x = 1;`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: &bytes.Buffer{}}

	err := TokenizeFiles(stdio, path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "var")
	require.Contains(t, out.String(), "identifier")
	require.Contains(t, out.String(), "end of file")
}

func TestDisassembleFilesPrintsChunk(t *testing.T) {
	path := writeScript(t, `fun add(a, b) { return a + b; } print add(1, 2);`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: &bytes.Buffer{}}

	err := DisassembleFiles(stdio, path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "CLOSURE")
	require.Contains(t, out.String(), "<script>")
	require.Contains(t, out.String(), "<fn add>")
}

func TestCmdMainHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: &bytes.Buffer{}}

	c := Cmd{BuildVersion: "0.1.0", BuildDate: "2026-01-01"}
	code := c.Main([]string{"fox", "--help"}, stdio)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "usage: fox")
}

func TestCmdMainUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: &bytes.Buffer{}}

	c := Cmd{}
	code := c.Main([]string{"fox", "bogus", "file.fox"}, stdio)
	require.Equal(t, mainer.InvalidArgs, code)
}
