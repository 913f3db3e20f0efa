package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vflow/internal/dom"
	"vflow/internal/ir"
	"vflow/internal/vast"
)

// buildDiamond constructs a module with a single top-level block that
// branches on a Cmpr into two arms merging back into one block:
//
//	entry -> {then, else} -> merge
func buildDiamond(t *testing.T) (m *ir.Module, entry, then, els, merge *ir.BasicBlock) {
	t.Helper()
	m = ir.NewModule("Diamond")

	entry = m.NewBlock(ir.BlockAlways)
	entry.SetEntryBlock(entry)
	entry.Append(ir.NewCmprInstr(&vast.IdRef{Name: "sel"}, nil))

	then = m.NewBlock(ir.BlockOrdinary)
	then.SetEntryBlock(entry)
	els = m.NewBlock(ir.BlockOrdinary)
	els.SetEntryBlock(entry)
	merge = m.NewBlock(ir.BlockOrdinary)
	merge.SetEntryBlock(entry)

	entry.SetLeft(then)
	entry.SetRight(els)
	then.SetLeft(merge)
	els.SetLeft(merge)

	m.RecomputeTopLevel()
	return m, entry, then, els, merge
}

func TestDominatorsOfDiamond(t *testing.T) {
	m, entry, then, els, merge := buildDiamond(t)
	dom.Build(m)

	assert.True(t, m.DominatorsBuilt)
	assert.Equal(t, entry, then.ImmDom)
	assert.Equal(t, entry, els.ImmDom)
	assert.Equal(t, entry, merge.ImmDom)
	assert.Nil(t, entry.ImmDom)
}

func TestPostDominatorsOfDiamond(t *testing.T) {
	m, entry, then, els, merge := buildDiamond(t)
	dom.Build(m)

	assert.Equal(t, merge, entry.ImmPDom)
	assert.Equal(t, merge, then.ImmPDom)
	assert.Equal(t, merge, els.ImmPDom)
	assert.Nil(t, merge.ImmPDom)
}

func TestPostdominatesIsReflexiveAndTransitive(t *testing.T) {
	m, entry, _, _, merge := buildDiamond(t)
	dom.Build(m)

	assert.True(t, dom.Postdominates(m, entry, entry))
	assert.True(t, dom.Postdominates(m, merge, entry))
}

func TestGuardBlocksOfBranchArm(t *testing.T) {
	m, entry, then, _, merge := buildDiamond(t)
	_ = merge
	dom.Build(m)

	// then does not post-dominate its entry (entry can reach the exit
	// through the else arm instead), so then is guarded by entry itself:
	// the classic "if (sel) then-arm" pattern.
	guards := dom.GuardBlocks(then)
	require.Len(t, guards, 1)
	assert.Equal(t, entry, guards[0])
}

func TestGuardBlocksOfMergeIsEmpty(t *testing.T) {
	m, _, _, _, merge := buildDiamond(t)
	dom.Build(m)

	// merge post-dominates its own entry (every path from entry passes
	// through it), so it is not conditionally guarded.
	guards := dom.GuardBlocks(merge)
	assert.Empty(t, guards)
}

func TestBuildIsIdempotent(t *testing.T) {
	m, entry, _, _, _ := buildDiamond(t)
	dom.Build(m)
	firstImmDom := entry.ImmDom
	dom.Build(m)
	assert.Equal(t, firstImmDom, entry.ImmDom)
	assert.True(t, m.DominatorsBuilt)
}
