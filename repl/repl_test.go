package repl_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vflow/internal/adapter"
	"vflow/internal/engine"
	"vflow/repl"
)

func analyzedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(adapter.NewVerilogAdapter())

	dir := t.TempDir()
	path := dir + "/t.v"
	require.NoError(t, os.WriteFile(path, []byte(`module Mux(input s, input x, input y, output z); assign z = s ? x : y; endmodule`), 0o644))
	require.NoError(t, e.Analyze([]string{path}))
	return e
}

func TestReplQueryAndQuit(t *testing.T) {
	e := analyzedEngine(t)

	in := strings.NewReader("Mux.z\nquit\n")
	var out bytes.Buffer
	repl.Start(in, &out, e)

	output := out.String()
	assert.Contains(t, output, "nontiming:")
	assert.Contains(t, output, "Mux.s")
	assert.Contains(t, output, "Mux.x")
	assert.Contains(t, output, "Mux.y")
}

func TestReplCompletionQuery(t *testing.T) {
	e := analyzedEngine(t)

	in := strings.NewReader("Mux.\nquit\n")
	var out bytes.Buffer
	repl.Start(in, &out, e)

	output := out.String()
	assert.Contains(t, output, "s")
	assert.Contains(t, output, "z")
}

func TestReplMalformedLineIsUsageErrorNotFatal(t *testing.T) {
	e := analyzedEngine(t)

	in := strings.NewReader("nonsense\nMux.z\nquit\n")
	var out bytes.Buffer
	repl.Start(in, &out, e)

	output := out.String()
	// The loop must survive the malformed first line and still answer
	// the valid query that follows it.
	assert.Contains(t, output, "nontiming:")
}
