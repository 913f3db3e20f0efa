package vparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vflow/internal/vast"
	"vflow/internal/vparse"
)

func TestParseSimpleModule(t *testing.T) {
	mods, err := vparse.Parse("t.v", `module Id(input a, output b); assign b = a; endmodule`)
	require.NoError(t, err)
	require.Len(t, mods, 1)

	m := mods[0]
	assert.Equal(t, "Id", m.Name)
	require.Len(t, m.Ports, 2)
	assert.Equal(t, "a", m.Ports[0].Name)
	assert.Equal(t, vast.DirInput, m.Ports[0].Direction)
	assert.Equal(t, "b", m.Ports[1].Name)
	assert.Equal(t, vast.DirOutput, m.Ports[1].Direction)

	require.Len(t, m.Items, 1)
	assign, ok := m.Items[0].(*vast.ContAssignItem)
	require.True(t, ok)
	require.Len(t, assign.Assigns, 1)
}

func TestParseAlwaysWithSensitivityList(t *testing.T) {
	mods, err := vparse.Parse("t.v", `module Reg(input clk, input d, output reg q);
always @(posedge clk) q <= d;
endmodule`)
	require.NoError(t, err)
	require.Len(t, mods, 1)

	always, ok := mods[0].Items[0].(*vast.AlwaysItem)
	require.True(t, ok)
	ec, ok := always.Body.(*vast.EventControlStmt)
	require.True(t, ok)
	require.Len(t, ec.Sensitivity, 1)
}

func TestParseMultipleModulesInOneFile(t *testing.T) {
	mods, err := vparse.Parse("t.v", `module A(input x, output y); assign y = x; endmodule
module B(input x, output y); assign y = x; endmodule`)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "A", mods[0].Name)
	assert.Equal(t, "B", mods[1].Name)
}

func TestParseModuleInstantiation(t *testing.T) {
	mods, err := vparse.Parse("t.v", `module Outer(input in, output out);
Inner inst(.a(in), .b(out));
endmodule`)
	require.NoError(t, err)
	require.Len(t, mods, 1)

	inst, ok := mods[0].Items[0].(*vast.ModuleInstItem)
	require.True(t, ok)
	assert.Equal(t, "Inner", inst.CalleeModule)
	assert.Equal(t, "inst", inst.InstanceName)
	require.Len(t, inst.Conns, 2)
	assert.Equal(t, "a", inst.Conns[0].Formal)
	assert.Equal(t, "b", inst.Conns[1].Formal)
}

func TestParseRejectsSystemVerilogOnlyConstruct(t *testing.T) {
	_, err := vparse.Parse("t.v", `module M; class C; endclass endmodule`)
	assert.Error(t, err)
}

func TestParseUnterminatedModuleErrors(t *testing.T) {
	_, err := vparse.Parse("t.v", `module M(input a, output b);`)
	assert.Error(t, err)
}
