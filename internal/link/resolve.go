// Package link implements the link resolver (spec §4.5) and def-use index
// build (spec §4.6): after every module has been lowered, it matches
// actual ports to the invoked module's formal port directions and installs
// cross-module def/use edges so that the dependence-closure engine can
// walk through a call site in either direction.
package link

import (
	"vflow/internal/diag"
	"vflow/internal/ir"
)

// Resolve processes every Invoke instruction across all modules in mm,
// installing cross-module def/use edges per spec §4.5's direction-crossing
// rules. It must run after every module in mm has been lowered, since a
// callee's port directions must be fully known before its ports can be
// matched. Running it twice is a no-op (spec §8 idempotence): a connection
// that has already been examined carries conn.Resolved == true and is
// skipped, whether or not a direction was actually discoverable for it.
func Resolve(mm ir.ModuleMap, warnings *diag.Bag) {
	for _, m := range mm {
		for _, b := range m.Blocks {
			for _, instr := range b.Instructions {
				inv, ok := instr.(*ir.InvokeInstr)
				if !ok {
					continue
				}
				resolveInvoke(mm, m, inv, warnings)
			}
		}
	}
}

func resolveInvoke(mm ir.ModuleMap, caller *ir.Module, inv *ir.InvokeInstr, warnings *diag.Bag) {
	callee, ok := mm[inv.CalleeModule]
	if !ok {
		if warnings != nil {
			warnings.Add(caller.Name, "instance %q references unresolved module %q", inv.InstanceName, inv.CalleeModule)
		}
		return
	}

	for _, conn := range inv.Conns {
		if conn.Resolved {
			continue // already resolved (idempotence)
		}
		conn.Resolved = true

		dir, known := callee.Ports[conn.Formal]
		if !known {
			if warnings != nil {
				warnings.Add(caller.Name, "instance %q: module %q has no port %q", inv.InstanceName, callee.Name, conn.Formal)
			}
			continue
		}
		if dir == ir.RoleNone {
			// Unknown-direction port: conservatively contributes no
			// dependency (spec §7 category 4, §9 "known unsound
			// over-approximation").
			if warnings != nil {
				warnings.Add(caller.Name, "instance %q: port %q on module %q has unknown direction; no dependency assumed", inv.InstanceName, conn.Formal, callee.Name)
			}
			continue
		}

		if dir.Has(ir.RoleUse) {
			// Callee drives this port (it is an output from the callee's
			// perspective): the caller's identifier receives a Def: add a
			// Def edge from formal to the caller's identifier, and
			// register formal as used by the invocation in the callee.
			actuals := conn.Actuals.Slice()
			if len(actuals) > 1 {
				diag.Fatalf("instance %q: output port %q connects to more than one identifier", inv.InstanceName, conn.Formal)
			}
			if len(actuals) == 1 {
				inv.AddCallerDef(actuals[0])
			}
			callee.AddUse(conn.Formal, inv)
		}

		if dir.Has(ir.RoleDef) {
			// Caller drives this port (the callee reads it as an input):
			// each actual identifier becomes a Use in the caller, and
			// formal becomes a def of the callee performed by this
			// invocation.
			for _, actual := range conn.Actuals.Slice() {
				inv.AddCallerUse(actual)
			}
			callee.AddDef(conn.Formal, inv)
		}

		conn.State = dir
	}
}
