package diag_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"vflow/internal/diag"
)

func TestReporterFormatIncludesLocationAndMarker(t *testing.T) {
	source := "module Bad(input a, output b);\nassign b = a & undeclared;\nendmodule"
	reporter := diag.NewReporter("t.v", source)

	pf := diag.NewParseFailure(diag.Position{File: "t.v", Line: 2, Column: 13}, "unexpected character %q", '&')
	formatted := reporter.Format(pf.CompilerError)

	assert.Contains(t, formatted, "error[E0001]")
	assert.Contains(t, formatted, "unexpected character")
	assert.Contains(t, formatted, "t.v:2:13")
	assert.Contains(t, formatted, "assign b = a & undeclared;")

	lines := strings.Split(formatted, "\n")
	foundMarker := false
	for _, l := range lines {
		if strings.Contains(l, "^") {
			foundMarker = true
		}
	}
	assert.True(t, foundMarker, "expected a caret marker line in:\n%s", formatted)
}

func TestReporterFormatIncludesNotesAndHelp(t *testing.T) {
	reporter := diag.NewReporter("t.v", "assign b = a;")
	ce := &diag.CompilerError{
		Level:    diag.LevelWarning,
		Message:  "identifier \"undeclared\" is used but never declared",
		Position: diag.Position{File: "t.v", Line: 1, Column: 1},
		Length:   1,
		Notes:    []string{"identifiers must be declared as a port or assigned before use"},
		HelpText: "check for a typo in the identifier name",
	}
	formatted := reporter.Format(ce)

	assert.Contains(t, formatted, "warning:")
	assert.Contains(t, formatted, "note:")
	assert.Contains(t, formatted, "help:")
}

func TestFatalfPanicsWithCompilerError(t *testing.T) {
	defer func() {
		r := recover()
		f, ok := r.(*diag.Fatal)
		if !ok {
			t.Fatalf("expected *diag.Fatal, got %T", r)
		}
		assert.Equal(t, diag.LevelError, f.Level)
		assert.Contains(t, f.Error(), "invariant broken")
	}()
	diag.Fatalf("invariant broken: %s", "block has no entry")
}

func TestParseFailureErrorCarriesPosition(t *testing.T) {
	pf := diag.NewParseFailure(diag.Position{File: "t.v", Line: 4, Column: 9}, "expected %s, found %q", "identifier", "+")
	assert.Equal(t, "t.v:4:9: expected identifier, found \"+\"", pf.Error())
}

func TestBagAccumulatesWarnings(t *testing.T) {
	b := &diag.Bag{}
	assert.True(t, b.Empty())

	b.Add("t.v", "instance %q references unresolved module %q", "inst", "Missing")
	require := assert.New(t)
	require.False(b.Empty())
	require.Len(b.All(), 1)
	require.Equal("t.v", b.All()[0].File)
	require.Contains(b.All()[0].String(), "Missing")
}
