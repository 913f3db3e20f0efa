package link_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vflow/internal/diag"
	"vflow/internal/ir"
	"vflow/internal/link"
)

// buildCallerCallee wires a caller Outer(in, out) instantiating
// Inner(a input, b output) via .a(in) / .b(out), mirroring spec §8
// scenario 5 but exercised directly against the IR without going through
// the parser front end.
func buildCallerCallee(t *testing.T) ir.ModuleMap {
	t.Helper()

	inner := ir.NewModule("Inner")
	inner.Ports["a"] = ir.RoleDef
	inner.Ports["b"] = ir.RoleUse

	outer := ir.NewModule("Outer")
	outer.Ports["in"] = ir.RoleDef
	outer.Ports["out"] = ir.RoleUse

	bb := outer.NewBlock(ir.BlockOrdinary)
	bb.SetEntryBlock(bb)
	conns := []*ir.Connection{
		{Formal: "a", Actuals: ir.NewIdSet("in")},
		{Formal: "b", Actuals: ir.NewIdSet("out")},
	}
	bb.Append(ir.NewInvokeInstr("Inner", "inst", conns))

	return ir.ModuleMap{"Inner": inner, "Outer": outer}
}

func TestResolveBridgesCallerAndCallee(t *testing.T) {
	mm := buildCallerCallee(t)
	warnings := &diag.Bag{}
	link.Resolve(mm, warnings)
	link.BuildIndex(mm, warnings)

	assert.True(t, warnings.Empty())

	outer := mm["Outer"]
	inner := mm["Inner"]

	// The Invoke instruction now defines "out" in Outer (output port b
	// feeds back) and uses "in" in Outer (input port a is driven by it).
	defs := outer.DefInstrs("out")
	require.Len(t, defs, 1)
	uses := outer.UseInstrs("in")
	require.Len(t, uses, 1)

	// And in Inner, the same Invoke instruction is registered as a
	// definer of "a" and a user of "b".
	innerDefs := inner.DefInstrs("a")
	require.Len(t, innerDefs, 1)
	innerUses := inner.UseInstrs("b")
	require.Len(t, innerUses, 1)
}

func TestResolveIsIdempotent(t *testing.T) {
	mm := buildCallerCallee(t)
	warnings := &diag.Bag{}
	link.Resolve(mm, warnings)
	link.Resolve(mm, warnings) // second call must be a no-op, not a double-edge
	link.BuildIndex(mm, warnings)

	outer := mm["Outer"]
	assert.Len(t, outer.DefInstrs("out"), 1)
	assert.Len(t, outer.UseInstrs("in"), 1)
}

func TestResolveWarnsOnUnresolvedModule(t *testing.T) {
	outer := ir.NewModule("Outer")
	bb := outer.NewBlock(ir.BlockOrdinary)
	bb.SetEntryBlock(bb)
	bb.Append(ir.NewInvokeInstr("Missing", "inst", nil))

	mm := ir.ModuleMap{"Outer": outer}
	warnings := &diag.Bag{}
	link.Resolve(mm, warnings)

	assert.False(t, warnings.Empty())
}

func TestResolveWarnsOnUnknownPort(t *testing.T) {
	inner := ir.NewModule("Inner")
	inner.Ports["a"] = ir.RoleDef

	outer := ir.NewModule("Outer")
	bb := outer.NewBlock(ir.BlockOrdinary)
	bb.SetEntryBlock(bb)
	conns := []*ir.Connection{{Formal: "nope", Actuals: ir.NewIdSet("in")}}
	bb.Append(ir.NewInvokeInstr("Inner", "inst", conns))

	mm := ir.ModuleMap{"Inner": inner, "Outer": outer}
	warnings := &diag.Bag{}
	link.Resolve(mm, warnings)

	assert.False(t, warnings.Empty())
}

func TestResolveUnknownPortIsIdempotentAndDoesNotDuplicateWarnings(t *testing.T) {
	inner := ir.NewModule("Inner")
	inner.Ports["a"] = ir.RoleDef

	outer := ir.NewModule("Outer")
	bb := outer.NewBlock(ir.BlockOrdinary)
	bb.SetEntryBlock(bb)
	conns := []*ir.Connection{{Formal: "nope", Actuals: ir.NewIdSet("in")}}
	bb.Append(ir.NewInvokeInstr("Inner", "inst", conns))

	mm := ir.ModuleMap{"Inner": inner, "Outer": outer}
	warnings := &diag.Bag{}
	link.Resolve(mm, warnings)
	link.Resolve(mm, warnings) // second call must not reprocess the connection

	assert.Len(t, warnings.All(), 1)
	assert.True(t, conns[0].Resolved)
}

func TestResolveUnknownDirectionIsIdempotentAndDoesNotDuplicateWarnings(t *testing.T) {
	inner := ir.NewModule("Inner")
	inner.Ports["a"] = ir.RoleNone

	outer := ir.NewModule("Outer")
	bb := outer.NewBlock(ir.BlockOrdinary)
	bb.SetEntryBlock(bb)
	conns := []*ir.Connection{{Formal: "a", Actuals: ir.NewIdSet("in")}}
	bb.Append(ir.NewInvokeInstr("Inner", "inst", conns))

	mm := ir.ModuleMap{"Inner": inner, "Outer": outer}
	warnings := &diag.Bag{}
	link.Resolve(mm, warnings)
	link.Resolve(mm, warnings)

	assert.Len(t, warnings.All(), 1)
	assert.True(t, conns[0].Resolved)
}

func TestResolveUnknownDirectionContributesNoDependency(t *testing.T) {
	inner := ir.NewModule("Inner")
	inner.Ports["a"] = ir.RoleNone // unresolved direction

	outer := ir.NewModule("Outer")
	bb := outer.NewBlock(ir.BlockOrdinary)
	bb.SetEntryBlock(bb)
	conns := []*ir.Connection{{Formal: "a", Actuals: ir.NewIdSet("in")}}
	bb.Append(ir.NewInvokeInstr("Inner", "inst", conns))

	mm := ir.ModuleMap{"Inner": inner, "Outer": outer}
	warnings := &diag.Bag{}
	link.Resolve(mm, warnings)

	assert.False(t, warnings.Empty())
	assert.Empty(t, outer.UseInstrs("in"))
	assert.Empty(t, inner.DefInstrs("a"))
}
