package batch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vflow/internal/batch"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.v")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestDecodeAndRun(t *testing.T) {
	path := writeSource(t, `module Mux(input s, input x, input y, output z); assign z = s ? x : y; endmodule`)

	req, err := batch.Decode([]byte(`{"sources":["` + path + `"],"signals":[{"module":"Mux","field":"z"}]}`))
	require.NoError(t, err)

	results, err := batch.Run(req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Mux", results[0].Module)
	assert.Equal(t, "z", results[0].Field)
	assert.ElementsMatch(t, []string{"Mux.s", "Mux.x", "Mux.y"}, results[0].NonTiming)
	assert.Empty(t, results[0].Timing)
	assert.Empty(t, results[0].Error)
}

func TestRunExpandsWildcardField(t *testing.T) {
	path := writeSource(t, `module Mux(input s, input x, input y, output z); assign z = s ? x : y; endmodule`)

	req := batch.Request{
		Sources: []string{path},
		Signals: []batch.Signal{{Module: "Mux", Field: "z*"}},
	}
	results, err := batch.Run(req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "z", results[0].Field)
}

func TestRunReportsErrorForUnknownPort(t *testing.T) {
	path := writeSource(t, `module Mux(input s, input x, input y, output z); assign z = s ? x : y; endmodule`)

	req := batch.Request{
		Sources: []string{path},
		Signals: []batch.Signal{{Module: "Mux", Field: "nope"}},
	}
	results, err := batch.Run(req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Error)
}

func TestEncodeProducesIndentedJSON(t *testing.T) {
	out, err := batch.Encode([]batch.Result{{Module: "Mux", Field: "z", NonTiming: []string{"Mux.s"}}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\"module\": \"Mux\"")
}
