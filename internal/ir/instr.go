package ir

import "vflow/internal/vast"

// Instruction is the tagged-variant interface every concrete instruction
// kind implements (spec §3). Def/Use sets are frozen at construction time
// (spec §4.2): the extractor is pure, so there is no benefit to recomputing
// them lazily.
type Instruction interface {
	Block() *BasicBlock
	setBlock(*BasicBlock)
	Defs() IdSet
	Uses() IdSet
	String() string
}

type instrBase struct {
	block *BasicBlock
	defs  IdSet
	uses  IdSet
}

func (i *instrBase) Block() *BasicBlock    { return i.block }
func (i *instrBase) setBlock(b *BasicBlock) { i.block = b }
func (i *instrBase) Defs() IdSet           { return i.defs }
func (i *instrBase) Uses() IdSet           { return i.uses }

// newInstrBase buckets a flat list of (identifier, role) pairs into the
// instruction's def-set and use-set by each pair's own role bits. Pairs
// must be pre-merged from every extraction call that contributed to this
// instruction (e.g. both the LHS-with-Def and RHS-with-Use extractions of
// an assignment) so that a forced-Use index expression nested inside a
// Def-hinted LHS (spec §4.1's IndexedId rule) still lands in the use-set.
func newInstrBase(refs ...[]IdentRef) instrBase {
	d := IdSet{}
	u := IdSet{}
	for _, list := range refs {
		for _, ref := range list {
			if ref.Role.Has(RoleDef) {
				d.Add(ref.Name)
			}
			if ref.Role.Has(RoleUse) {
				u.Add(ref.Name)
			}
		}
	}
	return instrBase{defs: d, uses: u}
}

// ParamInstr is a declared parameter constant: `Param(name)`.
type ParamInstr struct {
	instrBase
	Name string
}

func NewParamInstr(name string) *ParamInstr {
	p := &ParamInstr{Name: name}
	p.instrBase = newInstrBase([]IdentRef{{Name: name, Role: RoleDef}}, nil)
	return p
}

func (p *ParamInstr) String() string { return "Param(" + p.Name + ")" }

// TriggerInstr is the event-control identifiers at the head of an `always`
// block: `Trigger(ids)`. Per spec §4.2, a trigger instruction *is* the
// definition of its identifiers for timing purposes.
type TriggerInstr struct {
	instrBase
	TriggerIDs []string
}

func NewTriggerInstr(ids []string) *TriggerInstr {
	refs := make([]IdentRef, len(ids))
	for i, id := range ids {
		refs[i] = IdentRef{Name: id, Role: RoleDef}
	}
	t := &TriggerInstr{TriggerIDs: ids}
	t.instrBase = newInstrBase(refs, nil)
	return t
}

func (t *TriggerInstr) String() string { return "Trigger(...)" }

// StmtKind distinguishes the generic-statement sub-shapes named in spec
// §4.2 so gather/lowering code can special-case case-selectors, de-assigns,
// event-triggers, and waits without type-asserting back into vast.
type StmtKind int

const (
	StmtAssign StmtKind = iota
	StmtCase
	StmtDeassign
	StmtEventTrigger
	StmtWait
	StmtDelay
	StmtDisable
)

// StmtInstr is a generic procedural statement: `Stmt(s)`.
type StmtInstr struct {
	instrBase
	Kind StmtKind
	Src  vast.Stmt
}

func newStmtInstr(kind StmtKind, src vast.Stmt, defs, uses []IdentRef) *StmtInstr {
	s := &StmtInstr{Kind: kind, Src: src}
	s.instrBase = newInstrBase(defs, uses)
	return s
}

func (s *StmtInstr) String() string { return "Stmt(...)" }

// AssignInstr is a continuous assignment: `Assign(a)`.
type AssignInstr struct {
	instrBase
	LHS, RHS vast.Expr
}

func NewAssignInstr(lhs, rhs vast.Expr, procs ProcedureLookup) *AssignInstr {
	a := &AssignInstr{LHS: lhs, RHS: rhs}
	a.instrBase = newInstrBase(
		ExtractIdentifiers(lhs, RoleDef, procs),
		ExtractIdentifiers(rhs, RoleUse, procs),
	)
	return a
}

func (a *AssignInstr) String() string { return "Assign(...)" }

// Connection is a single (formal, actuals) binding on a module
// instantiation (spec §3, §4.5).
type Connection struct {
	Formal  string
	Actuals IdSet
	// State is filled in by link resolution (§4.5): the formal port's
	// direction as seen from the *callee*, when that direction was
	// actually discoverable.
	State Role
	// Resolved records whether link resolution has already examined this
	// connection at least once, independent of whether a direction was
	// discoverable. An unknown-port or unknown-direction connection never
	// acquires a non-zero State, so idempotence must be tracked here
	// rather than by testing State alone (spec §8 idempotence).
	Resolved bool
}

// InvokeInstr is a module-instantiation site: `Invoke(mod, conns)`. Its
// def/use sets are empty at construction time and are filled in by link
// resolution (spec §3, §4.5) via AddCalleeDef/AddCalleeUse.
type InvokeInstr struct {
	instrBase
	CalleeModule string
	InstanceName string
	Conns        []*Connection
}

func NewInvokeInstr(calleeModule, instanceName string, conns []*Connection) *InvokeInstr {
	inv := &InvokeInstr{CalleeModule: calleeModule, InstanceName: instanceName, Conns: conns}
	inv.instrBase = instrBase{defs: IdSet{}, uses: IdSet{}}
	return inv
}

func (inv *InvokeInstr) String() string { return "Invoke(" + inv.CalleeModule + ")" }

// AddCallerDef records that the caller identifier id is defined by this
// invocation (link resolution, spec §4.5 direction-crossing rule 1).
func (inv *InvokeInstr) AddCallerDef(id string) { inv.defs.Add(id) }

// AddCallerUse records that the caller identifier id is used by this
// invocation (link resolution, spec §4.5 direction-crossing rule 2).
func (inv *InvokeInstr) AddCallerUse(id string) { inv.uses.Add(id) }

// CmprInstr is the predicate of an if/loop: `Cmpr(e)`.
type CmprInstr struct {
	instrBase
	Expr vast.Expr
}

func NewCmprInstr(e vast.Expr, procs ProcedureLookup) *CmprInstr {
	c := &CmprInstr{Expr: e}
	c.instrBase = newInstrBase(nil, ExtractIdentifiers(e, RoleUse, procs))
	return c
}

func (c *CmprInstr) String() string { return "Cmpr(...)" }

// ProcDeclInstr is a task/function declaration: `ProcDecl(name, args, body)`.
// It contributes nothing to def/use on its own (spec §4.1 table).
type ProcDeclInstr struct {
	instrBase
	Name    string
	Args    []string
	Inputs  []string
	Outputs []string
	Body    []vast.Stmt
}

func NewProcDeclInstr(name string, args, inputs, outputs []string, body []vast.Stmt) *ProcDeclInstr {
	p := &ProcDeclInstr{Name: name, Args: args, Inputs: inputs, Outputs: outputs, Body: body}
	p.instrBase = instrBase{defs: IdSet{}, uses: IdSet{}}
	return p
}

func (p *ProcDeclInstr) String() string { return "ProcDecl(" + p.Name + ")" }

// ProcCallInstr is a task/function enable: `ProcCall(name, args)`. Per spec
// §4.2, the callee's declared inputs contribute Use and its declared
// outputs contribute Def; an inout argument contributes both.
type ProcCallInstr struct {
	instrBase
	Name string
	Args []vast.Expr
}

func NewProcCallInstr(name string, args []vast.Expr, decl *ProcDeclInstr, procs ProcedureLookup) *ProcCallInstr {
	p := &ProcCallInstr{Name: name, Args: args}

	var defs, uses []IdentRef
	if decl != nil {
		outputs := NewIdSet(decl.Outputs...)
		inputs := NewIdSet(decl.Inputs...)
		for i, argName := range decl.Args {
			if i >= len(args) {
				break
			}
			role := RoleNone
			if inputs.Has(argName) {
				role |= RoleUse
			}
			if outputs.Has(argName) {
				role |= RoleDef
			}
			if role.Has(RoleDef) {
				defs = append(defs, ExtractIdentifiers(args[i], RoleDef, procs)...)
			}
			if role.Has(RoleUse) || role == RoleNone {
				uses = append(uses, ExtractIdentifiers(args[i], RoleUse, procs)...)
			}
		}
	} else {
		// Unresolved task/function reference: conservative use of every
		// actual (spec §7 category 4 semantic warning is raised by the
		// caller, which has the module context to record it).
		for _, arg := range args {
			uses = append(uses, ExtractIdentifiers(arg, RoleUse, procs)...)
		}
	}

	p.instrBase = newInstrBase(defs, uses)
	return p
}

func (p *ProcCallInstr) String() string { return "ProcCall(" + p.Name + ")" }
