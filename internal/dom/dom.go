// Package dom implements the per-module dominator and post-dominator
// analysis of spec §4.4: an iterative O(V²) fixpoint computed lazily, once
// per module, the first time a dependence query reaches it (spec §9).
package dom

import (
	"vflow/internal/diag"
	"vflow/internal/ir"
)

// Build computes dominator and post-dominator sets for every block
// reachable from m's top-level blocks, if they have not been computed
// already. It is a no-op on a module whose dominators are already built
// (spec §4.4, §9 lazy-initialization design note).
func Build(m *ir.Module) {
	if m.DominatorsBuilt {
		return
	}

	for _, root := range m.TopLevel {
		if root.PredCount() != 0 {
			diag.Fatalf("module %s: top-level block %s is not actually a root", m.Name, root.Name)
		}
		reachable := buildReachableSet(root)
		buildDominatorSetsForReachable(reachable)
	}

	m.DominatorsBuilt = true
}

func buildReachableSet(root *ir.BasicBlock) []*ir.BasicBlock {
	seen := map[*ir.BasicBlock]struct{}{}
	var order []*ir.BasicBlock
	var walk func(b *ir.BasicBlock)
	walk = func(b *ir.BasicBlock) {
		if b == nil {
			return
		}
		if _, ok := seen[b]; ok {
			return
		}
		seen[b] = struct{}{}
		order = append(order, b)
		walk(b.Left)
		walk(b.Right)
	}
	walk(root)
	return order
}

func intersect(dst map[*ir.BasicBlock]struct{}, src map[*ir.BasicBlock]struct{}) {
	for b := range dst {
		if _, ok := src[b]; !ok {
			delete(dst, b)
		}
	}
}

func buildDominatorSetsForReachable(reachable []*ir.BasicBlock) {
	// Initialization per spec §4.4: root's dominator set = {root}; all
	// other blocks' dominator set = entire reachable set. Symmetrically
	// for post-dominators, roots being blocks with no successor.
	for _, b := range reachable {
		if b.PredCount() == 0 {
			b.Dom = map[*ir.BasicBlock]struct{}{b: {}}
		} else {
			b.Dom = fullSet(reachable)
		}
		if b.SuccCount() == 0 {
			b.PDom = map[*ir.BasicBlock]struct{}{b: {}}
		} else {
			b.PDom = fullSet(reachable)
		}
	}

	changed := true
	for changed {
		changed = false
		for _, b := range reachable {
			if b.PredCount() > 0 && updateDominators(b, reachable) {
				changed = true
			}
			if b.SuccCount() > 0 && updatePostdominators(b, reachable) {
				changed = true
			}
		}
	}

	for _, b := range reachable {
		b.ImmDom = findImmediate(b, b.Dom, func(x *ir.BasicBlock) map[*ir.BasicBlock]struct{} { return x.Dom })
		b.ImmPDom = findImmediate(b, b.PDom, func(x *ir.BasicBlock) map[*ir.BasicBlock]struct{} { return x.PDom })
	}
}

func fullSet(reachable []*ir.BasicBlock) map[*ir.BasicBlock]struct{} {
	s := make(map[*ir.BasicBlock]struct{}, len(reachable))
	for _, b := range reachable {
		s[b] = struct{}{}
	}
	return s
}

// updateDominators recomputes Dom(b) = {b} ∪ ⋂_{p ∈ preds(b)} Dom(p) (spec
// §4.4). Returns whether the set changed.
func updateDominators(b *ir.BasicBlock, reachable []*ir.BasicBlock) bool {
	next := fullSet(reachable)
	for p := range b.Preds() {
		intersect(next, p.Dom)
	}
	next[b] = struct{}{}

	if setsEqual(b.Dom, next) {
		return false
	}
	b.Dom = next
	return true
}

// updatePostdominators recomputes PDom(b) = {b} ∪ ⋂_{s ∈ succs(b)} PDom(s)
// (spec §4.4). Returns whether the set changed.
func updatePostdominators(b *ir.BasicBlock, reachable []*ir.BasicBlock) bool {
	next := fullSet(reachable)
	if b.Left != nil {
		intersect(next, b.Left.PDom)
	}
	if b.Right != nil {
		intersect(next, b.Right.PDom)
	}
	next[b] = struct{}{}

	if setsEqual(b.PDom, next) {
		return false
	}
	b.PDom = next
	return true
}

func setsEqual(a, b map[*ir.BasicBlock]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// findImmediate locates the unique element of set\{start} that is not
// itself dominated (or post-dominated, depending on setOf) by any other
// element of set\{start}. A multiplicity greater than one is a category-3
// fatal error per spec §4.4/§7.
func findImmediate(start *ir.BasicBlock, set map[*ir.BasicBlock]struct{}, setOf func(*ir.BasicBlock) map[*ir.BasicBlock]struct{}) *ir.BasicBlock {
	candidates := make(map[*ir.BasicBlock]struct{}, len(set))
	for b := range set {
		if b != start {
			candidates[b] = struct{}{}
		}
	}

	var found *ir.BasicBlock
	for b1 := range candidates {
		outside := true
		for b2 := range candidates {
			if b1 == b2 {
				continue
			}
			if _, ok := setOf(b2)[b1]; ok {
				outside = false
				break
			}
		}
		if outside {
			if found != nil {
				diag.Fatalf("block %s: found multiple immediate dominators/post-dominators", start.Name)
			}
			found = b1
		}
	}
	return found
}

// Postdominates reports whether lo post-dominates hi: lo ∈ PDom(hi) (spec
// §4.4).
func Postdominates(m *ir.Module, lo, hi *ir.BasicBlock) bool {
	if !m.Exists(lo) || !m.Exists(hi) {
		diag.Fatalf("module %s: postdominates called with block(s) outside the module", m.Name)
	}
	_, ok := hi.PDom[lo]
	return ok
}

// GuardBlocks walks the dominator chain upward from refBB toward its entry
// block, collecting every block whose execution refBB does not
// post-dominate: the guard blocks for refBB (spec §4.4, GLOSSARY).
func GuardBlocks(refBB *ir.BasicBlock) []*ir.BasicBlock {
	var guards []*ir.BasicBlock

	module := refBB.Module()
	entry := refBB.EntryBlock()
	cur := refBB
	hi := refBB

	for hi != entry {
		for hi != nil && Postdominates(module, cur, hi) {
			hi = hi.ImmDom
		}
		if hi == nil {
			break
		}
		guards = append(guards, hi)
		// Continue upwards from the newly discovered guard block.
		cur = hi
	}

	return guards
}
