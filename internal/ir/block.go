package ir

import "vflow/internal/diag"

// BasicBlock is a straight-line sequence of instructions with zero, one, or
// two successor edges (spec §3). A block with two successors must end in a
// CmprInstr: Left is the then-branch, Right is the else-branch.
type BasicBlock struct {
	Name         string
	Kind         BlockKind
	Instructions []Instruction
	Left, Right  *BasicBlock
	preds        map[*BasicBlock]struct{}
	module       *Module
	entry        *BasicBlock

	// Dom/PDom/ImmDom/ImmPDom are filled lazily by package dom on first
	// dependence query that touches this block's module (spec §4.4).
	Dom     map[*BasicBlock]struct{}
	PDom    map[*BasicBlock]struct{}
	ImmDom  *BasicBlock
	ImmPDom *BasicBlock
}

func newBasicBlock(module *Module, name string, kind BlockKind) *BasicBlock {
	return &BasicBlock{
		Name:   name,
		Kind:   kind,
		module: module,
		preds:  make(map[*BasicBlock]struct{}),
	}
}

func (b *BasicBlock) Module() *Module { return b.module }

// Preds returns the block's predecessor set. Invariant (spec §3, §8):
// b.Preds() == { b' : b ∈ {b'.Left, b'.Right} }, maintained incrementally
// by SetLeft/SetRight below.
func (b *BasicBlock) Preds() map[*BasicBlock]struct{} { return b.preds }

func (b *BasicBlock) PredCount() int { return len(b.preds) }

func (b *BasicBlock) SuccCount() int {
	n := 0
	if b.Left != nil {
		n++
	}
	if b.Right != nil {
		n++
	}
	return n
}

// IsTopLevel reports whether b has no predecessors (spec §3).
func (b *BasicBlock) IsTopLevel() bool { return len(b.preds) == 0 }

// EntryBlock returns the top-level block from which b was discovered
// during lowering (spec §3).
func (b *BasicBlock) EntryBlock() *BasicBlock { return b.entry }

func (b *BasicBlock) SetEntryBlock(e *BasicBlock) { b.entry = e }

// Append adds an instruction to the block and sets its back-reference.
func (b *BasicBlock) Append(instr Instruction) {
	instr.setBlock(b)
	b.Instructions = append(b.Instructions, instr)
}

// SetLeft wires b's left (taken) successor and maintains the predecessor
// symmetry invariant.
func (b *BasicBlock) SetLeft(succ *BasicBlock) {
	if b.Left != nil {
		delete(b.Left.preds, b)
	}
	b.Left = succ
	if succ != nil {
		succ.preds[b] = struct{}{}
	}
}

// SetRight wires b's right (not-taken) successor and maintains the
// predecessor symmetry invariant.
func (b *BasicBlock) SetRight(succ *BasicBlock) {
	if b.Right != nil {
		delete(b.Right.preds, b)
	}
	b.Right = succ
	if succ != nil {
		succ.preds[b] = struct{}{}
	}
}

// Comparison returns the block's terminating Cmpr instruction. Per spec
// §3's block invariant, a block with two successors must end in a Cmpr;
// violating that is a category-3 fatal error (spec §7).
func (b *BasicBlock) Comparison() *CmprInstr {
	if len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	c, ok := last.(*CmprInstr)
	if !ok {
		if b.SuccCount() == 2 {
			diag.Fatalf("block %q has two successors but does not end in a comparison", b.Name)
		}
		return nil
	}
	return c
}
