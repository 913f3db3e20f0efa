package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vflow/internal/diag"
	"vflow/internal/ir"
	"vflow/internal/vparse"
)

func lowerSource(t *testing.T, src string) ir.ModuleMap {
	t.Helper()
	asts, err := vparse.Parse("t.v", src)
	require.NoError(t, err)

	mm := ir.ModuleMap{}
	warnings := &diag.Bag{}
	for _, a := range asts {
		mm[a.Name] = ir.Lower(a, "t.v", warnings)
	}
	return mm
}

func TestLowerContinuousAssign(t *testing.T) {
	mm := lowerSource(t, `module Id(input a, output b); assign b = a; endmodule`)
	m := mm["Id"]

	require.Len(t, m.Blocks, 1)
	bb := m.Blocks[0]
	assert.Equal(t, ir.BlockContAssign, bb.Kind)
	require.Len(t, bb.Instructions, 1)

	assign, ok := bb.Instructions[0].(*ir.AssignInstr)
	require.True(t, ok)
	assert.True(t, assign.Defs().Has("b"))
	assert.True(t, assign.Uses().Has("a"))
}

func TestLowerAlwaysProducesTriggerThenStmt(t *testing.T) {
	mm := lowerSource(t, `module Reg(input clk, input d, output reg q);
always @(posedge clk) q <= d;
endmodule`)
	m := mm["Reg"]

	require.Len(t, m.Blocks, 1)
	bb := m.Blocks[0]
	assert.Equal(t, ir.BlockAlways, bb.Kind)
	require.Len(t, bb.Instructions, 2)

	trigger, ok := bb.Instructions[0].(*ir.TriggerInstr)
	require.True(t, ok)
	assert.Equal(t, []string{"clk"}, trigger.TriggerIDs)
	assert.True(t, trigger.Defs().Has("clk"))

	stmt, ok := bb.Instructions[1].(*ir.StmtInstr)
	require.True(t, ok)
	assert.True(t, stmt.Defs().Has("q"))
	assert.True(t, stmt.Uses().Has("d"))
}

func TestLowerIfSplitsBlockAndPreservesInvariant(t *testing.T) {
	mm := lowerSource(t, `module Leak(input clk, input secret, output reg out);
always @(posedge clk)
  if (secret) out <= 1;
  else out <= 0;
endmodule`)
	m := mm["Leak"]

	// entry (Trigger + Cmpr), then, else, merge.
	require.Len(t, m.Blocks, 4)
	entry := m.Blocks[0]
	assert.Equal(t, 2, entry.SuccCount())
	last := entry.Instructions[len(entry.Instructions)-1]
	_, ok := last.(*ir.CmprInstr)
	assert.True(t, ok, "a block with two successors must end in a Cmpr (spec invariant)")

	assert.NotNil(t, entry.Left)
	assert.NotNil(t, entry.Right)
	assert.Same(t, entry, entry.Left.EntryBlock())
	assert.Same(t, entry, entry.Right.EntryBlock())
}

func TestPredecessorSymmetryInvariant(t *testing.T) {
	mm := lowerSource(t, `module Leak(input clk, input secret, output reg out);
always @(posedge clk)
  if (secret) out <= 1;
  else out <= 0;
endmodule`)
	m := mm["Leak"]

	for _, b := range m.Blocks {
		for pred := range b.Preds() {
			assert.True(t, pred.Left == b || pred.Right == b,
				"block %s listed as predecessor of %s but is not wired to it", pred.Name, b.Name)
		}
		if b.Left != nil {
			assert.Contains(t, b.Left.Preds(), b)
		}
		if b.Right != nil {
			assert.Contains(t, b.Right.Preds(), b)
		}
	}
}

func TestTopLevelSetIsExactlyBlocksWithNoPredecessor(t *testing.T) {
	mm := lowerSource(t, `module Leak(input clk, input secret, output reg out);
always @(posedge clk)
  if (secret) out <= 1;
  else out <= 0;
endmodule`)
	m := mm["Leak"]

	expected := map[*ir.BasicBlock]struct{}{}
	for _, b := range m.Blocks {
		if b.IsTopLevel() {
			expected[b] = struct{}{}
		}
	}
	assert.Len(t, m.TopLevel, len(expected))
	for _, b := range m.TopLevel {
		assert.Contains(t, expected, b)
	}
}

func TestHiddenBlocksExcludedFromTopLevel(t *testing.T) {
	mm := lowerSource(t, `module Leak(input clk, input sel, input secret, output reg out);
always @(posedge clk)
  case (sel)
    1: if (secret) out <= 1; else out <= 0;
  endcase
endmodule`)
	m := mm["Leak"]

	var hidden int
	for _, b := range m.Blocks {
		if b.Kind == ir.BlockHidden {
			hidden++
			assert.NotContains(t, m.TopLevel, b,
				"Hidden condition block %s must not pollute the module's top-level set", b.Name)
		}
	}
	require.Greater(t, hidden, 0, "expected the embedded if to synthesize Hidden blocks")
}

func TestLowerModuleInstantiation(t *testing.T) {
	mm := lowerSource(t, `module Outer(input in, output out);
Inner inst(.a(in), .b(out));
endmodule`)
	m := mm["Outer"]

	require.Len(t, m.Blocks, 1)
	invoke, ok := m.Blocks[0].Instructions[0].(*ir.InvokeInstr)
	require.True(t, ok)
	assert.Equal(t, "Inner", invoke.CalleeModule)
	require.Len(t, invoke.Conns, 2)
}

func TestLowerRoundTripIsStructurallyStable(t *testing.T) {
	src := `module Reg(input clk, input d, output reg q);
always @(posedge clk) q <= d;
endmodule`
	mm1 := lowerSource(t, src)
	mm2 := lowerSource(t, src)

	m1, m2 := mm1["Reg"], mm2["Reg"]
	require.Equal(t, len(m1.Blocks), len(m2.Blocks))
	for i := range m1.Blocks {
		assert.Equal(t, m1.Blocks[i].Kind, m2.Blocks[i].Kind)
		assert.Equal(t, m1.Blocks[i].Name, m2.Blocks[i].Name)
		require.Equal(t, len(m1.Blocks[i].Instructions), len(m2.Blocks[i].Instructions))
	}
}

func TestLowerGenerateBlockWarns(t *testing.T) {
	asts, err := vparse.Parse("t.v", `module G(input a, output b);
generate
endgenerate
assign b = a;
endmodule`)
	require.NoError(t, err)
	warnings := &diag.Bag{}
	ir.Lower(asts[0], "t.v", warnings)
	assert.False(t, warnings.Empty())
}
