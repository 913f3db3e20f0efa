package ir

import "strconv"

// Module owns its basic blocks exclusively; blocks own their instructions
// exclusively (spec §3 ownership invariant).
type Module struct {
	Name   string
	Blocks []*BasicBlock

	// TopLevel is the exact set of blocks with no predecessor: the roots
	// used for dominator analysis (spec §3).
	TopLevel []*BasicBlock

	defInstrs map[Identifier]map[Instruction]struct{}
	useInstrs map[Identifier]map[Instruction]struct{}

	// Ports maps a port name to its direction. Direction is encoded from
	// the CALLER's perspective per spec §3's load-bearing convention: an
	// input port is something the caller defines (RoleDef) and the
	// callee uses; an output port is RoleUse; inout is RoleDef|RoleUse;
	// an unresolved port direction is RoleNone.
	Ports map[string]Role

	// ProcDecls maps a task/function name to its declaration instruction,
	// used both by the extractor (spec §4.1 user-function-call rule) and
	// by ProcCall construction (spec §4.2).
	ProcDecls map[string]*ProcDeclInstr

	// DominatorsBuilt guards the lazy dominator computation described in
	// spec §4.4 and §9: a simple "computed?" flag under the single-
	// threaded invariant of spec §5.
	DominatorsBuilt bool

	blockCounter int
}

func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		defInstrs: make(map[Identifier]map[Instruction]struct{}),
		useInstrs: make(map[Identifier]map[Instruction]struct{}),
		Ports:     make(map[string]Role),
		ProcDecls: make(map[string]*ProcDeclInstr),
	}
}

// NewBlock creates and registers a new basic block owned by this module,
// with a deterministic, counter-based name (spec §8 round-trip property:
// the block-name generator is the only source of non-structural
// variation across repeated lowerings of the same AST).
func (m *Module) NewBlock(kind BlockKind) *BasicBlock {
	m.blockCounter++
	name := blockName(kind, m.blockCounter)
	b := newBasicBlock(m, name, kind)
	m.Blocks = append(m.Blocks, b)
	return b
}

func blockName(kind BlockKind, n int) string {
	return kind.String() + "#" + strconv.Itoa(n)
}

// RecomputeTopLevel rebuilds the TopLevel set from the current predecessor
// state of every block. Lowering calls this once after all blocks and
// successor edges have been created. Hidden blocks are synthesized
// scaffolding that lives off to the side of the real CFG (spec §4.3); a
// predecessor-less Hidden condition block is excluded here so it never
// becomes a dominator-analysis root and pollutes the module's top-level set
// (spec §3's "exact set of such blocks").
func (m *Module) RecomputeTopLevel() {
	m.TopLevel = m.TopLevel[:0]
	for _, b := range m.Blocks {
		if b.Kind == BlockHidden {
			continue
		}
		if b.IsTopLevel() {
			m.TopLevel = append(m.TopLevel, b)
		}
	}
}

// AddDef registers instr as a definer of id in the def-use index (spec
// §4.6).
func (m *Module) AddDef(id Identifier, instr Instruction) {
	set, ok := m.defInstrs[id]
	if !ok {
		set = make(map[Instruction]struct{})
		m.defInstrs[id] = set
	}
	set[instr] = struct{}{}
}

// AddUse registers instr as a user of id in the def-use index (spec §4.6).
func (m *Module) AddUse(id Identifier, instr Instruction) {
	set, ok := m.useInstrs[id]
	if !ok {
		set = make(map[Instruction]struct{})
		m.useInstrs[id] = set
	}
	set[instr] = struct{}{}
}

// DefInstrs returns the set of instructions that define id in this module.
func (m *Module) DefInstrs(id Identifier) map[Instruction]struct{} {
	return m.defInstrs[id]
}

// UseInstrs returns the set of instructions that use id in this module.
func (m *Module) UseInstrs(id Identifier) map[Instruction]struct{} {
	return m.useInstrs[id]
}

// BuildDefUseChains walks every instruction in every block and populates
// the def-use index (spec §4.6). Called once after lowering and link
// resolution so that Invoke instructions' link-resolved def/use sets are
// included.
func (m *Module) BuildDefUseChains() {
	for _, b := range m.Blocks {
		// Hidden blocks are scaffolding only: their def/use contribution
		// was already folded back into the containing Stmt instruction
		// during lowering (spec §4.3), so indexing them again here would
		// double-count the same identifiers under a dangling entry block.
		if b.Kind == BlockHidden {
			continue
		}
		for _, instr := range b.Instructions {
			for id := range instr.Defs() {
				m.AddDef(id, instr)
			}
			for id := range instr.Uses() {
				m.AddUse(id, instr)
			}
		}
	}
}

// IsPort reports whether id names one of this module's ports.
func (m *Module) IsPort(id Identifier) bool {
	_, ok := m.Ports[id]
	return ok
}

// HasDef reports whether id is defined anywhere in this module's def-use
// index (spec §4.6). Must run after BuildDefUseChains.
func (m *Module) HasDef(id Identifier) bool {
	_, ok := m.defInstrs[id]
	return ok
}

// UsedIdentifiers returns every identifier that appears in this module's
// use index (spec §4.6), unordered. Must run after BuildDefUseChains.
func (m *Module) UsedIdentifiers() []Identifier {
	out := make([]Identifier, 0, len(m.useInstrs))
	for id := range m.useInstrs {
		out = append(out, id)
	}
	return out
}

// LookupProcedure implements ProcedureLookup for the identifier-extractor
// (spec §4.1).
func (m *Module) LookupProcedure(name string) ([]string, bool) {
	decl, ok := m.ProcDecls[name]
	if !ok {
		return nil, false
	}
	return decl.Args, true
}

// Exists reports whether b is owned by this module (used by dom.Postdominates
// to guard against cross-module block pointers, matching
// module_t::postdominates's existence check in the original source).
func (m *Module) Exists(b *BasicBlock) bool {
	for _, bb := range m.Blocks {
		if bb == b {
			return true
		}
	}
	return false
}

// ModuleMap is the process-wide name→module dictionary (spec §3, §9). It
// is an explicit value passed into every resolver/engine call — never
// process-wide state (spec §9 "Global module map" design note).
type ModuleMap map[string]*Module
