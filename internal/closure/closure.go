// Package closure implements the dependence-closure engine of spec §4.7:
// given (module, port), it performs a worklist traversal that yields the
// set of leaking input ports, partitioned into timing and non-timing
// channels.
package closure

import (
	"fmt"
	"sort"

	"github.com/eapache/queue"

	"vflow/internal/dom"
	"vflow/internal/ir"
)

// Kind distinguishes an Ordinary (value) dependency from a Timing
// dependency. Per spec §9's resolution of the Trigger/Timing open
// question, escalation to Timing is monotone: once a workset entry's kind
// is Timing it stays Timing for the remainder of the closure, while an
// Ordinary visit of the same (id, module) is tracked as a separate seen
// entry since Kind is part of the triple key.
type Kind int

const (
	Ordinary Kind = iota
	Timing
)

// triple is one workset/seen element: (kind, identifier, module), per
// spec §4.7.
type triple struct {
	Kind Kind
	ID   string
	Mod  string
}

// Result is the two leak sets produced by a dependence-closure query.
type Result struct {
	Timing    []string
	NonTiming []string
}

// state carries the mutable traversal state threaded through step.
type state struct {
	mm   ir.ModuleMap
	seen map[triple]struct{}
	// seenIDs is the id-only projection of seen: every identifier that has
	// ever been added to the workset, regardless of which module or kind
	// it was seen under. Rule (a)'s "actuals currently intersect seen's
	// id-set" test (spec §4.7, `original_source/dependence.cc`'s
	// gather_inter_module_dependencies, which matches a connection's ids
	// against the whole seen_set by id alone) reads from this projection,
	// not from the single triple currently being traced.
	seenIDs   map[string]struct{}
	queue     *queue.Queue
	timing    map[string]struct{}
	nontiming map[string]struct{}
}

// Query runs the dependence-closure engine seeded at (moduleName,
// portName) and returns the qualified names of every leaking port it
// discovers, partitioned by channel (spec §4.7). The traversal terminates
// only when the workset is empty: it always computes the complete set,
// never exiting early (spec §4.7 "Termination").
func Query(mm ir.ModuleMap, moduleName, portName string) (Result, error) {
	m0, ok := mm[moduleName]
	if !ok {
		return Result{}, fmt.Errorf("unknown module %q", moduleName)
	}
	if !m0.IsPort(portName) {
		return Result{}, fmt.Errorf("module %q has no port %q", moduleName, portName)
	}

	dom.Build(m0)

	st := &state{
		mm:        mm,
		seen:      map[triple]struct{}{},
		seenIDs:   map[string]struct{}{},
		queue:     queue.New(),
		timing:    map[string]struct{}{},
		nontiming: map[string]struct{}{},
	}

	// Seed: (Ordinary, id_0, module_0), added to both workset and seen
	// (spec §4.7), without itself being recorded as a leak.
	seed := triple{Kind: Ordinary, ID: portName, Mod: moduleName}
	st.seen[seed] = struct{}{}
	st.seenIDs[portName] = struct{}{}
	st.queue.Add(seed)

	for st.queue.Length() > 0 {
		t := st.queue.Remove().(triple)
		st.step(t)
	}

	return Result{Timing: sortedKeys(st.timing), NonTiming: sortedKeys(st.nontiming)}, nil
}

// enqueue adds (k, id, M.Name) to the workset if not already seen. Returns
// whether the triple was newly added (used by the Invoke case to decide
// whether to lazily build the far side's dominators).
func (st *state) enqueue(M *ir.Module, k Kind, id string) bool {
	st.seenIDs[id] = struct{}{}

	t := triple{Kind: k, ID: id, Mod: M.Name}
	if _, ok := st.seen[t]; ok {
		return false
	}
	st.seen[t] = struct{}{}
	st.queue.Add(t)
	return true
}

// addToWorkset is enqueue plus leak-recording: it records a leak at M.id if
// id is a port of M. Per spec §4.7, leak-recording belongs to rules (b),
// (c), and (d) — the explicit, implicit, and timing sub-rules — but not to
// rule (a)'s invoke-crossing, which only ever enqueues (see handleInvoke).
func (st *state) addToWorkset(M *ir.Module, k Kind, id string) bool {
	added := st.enqueue(M, k, id)

	if M.IsPort(id) {
		qualified := M.Name + "." + id
		if k == Timing {
			st.timing[qualified] = struct{}{}
		} else {
			st.nontiming[qualified] = struct{}{}
		}
	}
	return added
}

// step pops one workset element (k, id, M) and applies spec §4.7's four
// sub-rules to every defining instruction of id in M.
func (st *state) step(t triple) {
	M := st.mm[t.Mod]
	if M == nil {
		return
	}

	for instr := range M.DefInstrs(t.ID) {
		if inv, ok := instr.(*ir.InvokeInstr); ok {
			st.handleInvoke(M, inv, t)
		}
		st.handleExplicit(M, instr, t)
		st.handleImplicit(M, instr, t)
		st.handleTiming(M, instr, t)
	}
}

// handleInvoke implements spec §4.7 rule (a). An Invoke instruction
// bridges caller and callee def-use indices in both directions (spec
// §4.5): it is reachable as a definer both from the caller module (the
// module that physically owns the instruction) and from the callee module
// (registered there by link.Resolve). The direction of the crossing
// depends on which side M is. Rule (a) only ever enqueues the crossed
// identifier (via enqueue, not addToWorkset): leak-recording belongs to
// rules (b)/(c)/(d), not to the crossing itself (spec §8 scenario 5).
func (st *state) handleInvoke(M *ir.Module, inv *ir.InvokeInstr, t triple) {
	callerModule := inv.Block().Module()

	if M == callerModule {
		// Forward crossing: cross into the callee at every connection
		// whose actuals currently intersect seen's id-set (spec §4.7 rule
		// (a), matching `original_source/dependence.cc`'s
		// gather_inter_module_dependencies, which tests a connection's ids
		// against the whole seen_set by id alone, not just the single id
		// being traced right now).
		callee := st.mm[inv.CalleeModule]
		added := false
		for _, conn := range inv.Conns {
			if st.actualsIntersectSeen(conn.Actuals) {
				if callee != nil && st.enqueue(callee, t.Kind, conn.Formal) {
					added = true
				}
			}
		}
		if added {
			dom.Build(callee)
		}
		return
	}

	// Reverse crossing: M is the callee and t.ID names one of its formal
	// ports; cross back into the caller at every actual bound to it.
	added := false
	for _, conn := range inv.Conns {
		if conn.Formal != t.ID {
			continue
		}
		for _, actual := range conn.Actuals.Slice() {
			if st.enqueue(callerModule, t.Kind, actual) {
				added = true
			}
		}
	}
	if added {
		dom.Build(callerModule)
	}
}

// actualsIntersectSeen reports whether any identifier in actuals has ever
// been added to the workset, under any module or kind (spec §4.7 rule (a)).
func (st *state) actualsIntersectSeen(actuals ir.IdSet) bool {
	for id := range actuals {
		if _, ok := st.seenIDs[id]; ok {
			return true
		}
	}
	return false
}

// handleExplicit implements spec §4.7 rule (b): every identifier in I's
// use-set is an explicit dependency.
func (st *state) handleExplicit(M *ir.Module, instr ir.Instruction, t triple) {
	for u := range instr.Uses() {
		st.addToWorkset(M, t.Kind, u)
	}
}

// handleImplicit implements spec §4.7 rule (c): if I's block is guarded
// (not post-dominated by its entry), the use-set of every guard block's
// terminating Cmpr is an implicit (control) dependency.
func (st *state) handleImplicit(M *ir.Module, instr ir.Instruction, t triple) {
	B := instr.Block()
	if B == nil || B.EntryBlock() == nil {
		return
	}
	for _, guard := range dom.GuardBlocks(B) {
		cmpr := guard.Comparison()
		if cmpr == nil {
			continue
		}
		for u := range cmpr.Uses() {
			st.addToWorkset(M, t.Kind, u)
		}
	}
}

// handleTiming implements spec §4.7 rule (d): if I's entry block is an
// Always block, the trigger identifiers at its head represent a timing
// dependency. Once a triple's kind is already Timing the escalation does
// not re-fire (spec §9's monotone-escalation resolution, and the guard
// against re-walking a Trigger's own definer forever).
func (st *state) handleTiming(M *ir.Module, instr ir.Instruction, t triple) {
	E := instr.Block().EntryBlock()
	if E == nil || E.Kind != ir.BlockAlways {
		return
	}
	if t.Kind == Timing {
		return
	}
	if len(E.Instructions) == 0 {
		return
	}
	trigger, ok := E.Instructions[0].(*ir.TriggerInstr)
	if !ok {
		return
	}
	for _, id := range trigger.TriggerIDs {
		st.addToWorkset(M, Timing, id)
	}
}

func sortedKeys(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
