package ir

import (
	"vflow/internal/diag"
	"vflow/internal/vast"
)

// Lower walks a single parsed module AST and produces the populated Module
// described by spec §4.3's dispatch table: one basic block per module-item
// (plus the control-flow sub-graphs created by conditional statements), with
// every instruction's def/use set frozen by the identifier-extractor.
func Lower(ast *vast.Module, file string, warnings *diag.Bag) *Module {
	m := NewModule(ast.Name)

	for _, p := range ast.Ports {
		m.Ports[p.Name] = directionToRole(p.Direction)
	}

	lw := &lowerer{module: m, file: file, warnings: warnings}
	lw.preScanProcDecls(ast.Items)

	for _, item := range ast.Items {
		lw.lowerItem(item)
	}

	m.RecomputeTopLevel()
	return m
}

type lowerer struct {
	module   *Module
	file     string
	warnings *diag.Bag
}

func directionToRole(d vast.Direction) Role {
	switch d {
	case vast.DirInput:
		return RoleDef
	case vast.DirOutput:
		return RoleUse
	case vast.DirInout:
		return RoleDef | RoleUse
	default:
		return RoleNone
	}
}

// preScanProcDecls registers every task/function declaration in the module
// before the main lowering pass runs, so a call site that textually
// precedes its declaration still resolves (spec §4.1's "look up the
// declared procedure by name" rule makes no ordering promise).
func (lw *lowerer) preScanProcDecls(items []vast.ModuleItem) {
	for _, item := range items {
		decl, ok := item.(*vast.FuncTaskDeclItem)
		if !ok {
			continue
		}
		lw.module.ProcDecls[decl.Name] = NewProcDeclInstr(decl.Name, decl.Args, decl.Inputs, decl.Outputs, decl.Body)
	}
}

func (lw *lowerer) warnUnresolvedProc(name string) {
	if lw.warnings != nil {
		lw.warnings.Add(lw.file, "unresolved task/function reference %q; actuals treated conservatively", name)
	}
}

// lowerItem dispatches one module item per spec §4.3's table.
func (lw *lowerer) lowerItem(item vast.ModuleItem) {
	m := lw.module

	switch it := item.(type) {
	case *vast.AlwaysItem:
		bb := m.NewBlock(BlockAlways)
		bb.SetEntryBlock(bb)
		lw.lowerAlwaysBody(bb, it.Body)

	case *vast.ContAssignItem:
		bb := m.NewBlock(BlockContAssign)
		bb.SetEntryBlock(bb)
		for _, pair := range it.Assigns {
			bb.Append(NewAssignInstr(pair.LHS, pair.RHS, m))
		}

	case *vast.InitialItem:
		bb := m.NewBlock(BlockInitial)
		bb.SetEntryBlock(bb)
		cur := bb
		lw.lowerStmtList(&cur, it.Body, BlockOrdinary)

	case *vast.IODeclItem:
		m.Ports[it.Name] = directionToRole(it.Direction)

	case *vast.DefparamItem:
		bb := m.NewBlock(BlockParams)
		bb.SetEntryBlock(bb)
		for _, name := range it.Names {
			bb.Append(NewParamInstr(name))
		}

	case *vast.ParamListItem:
		bb := m.NewBlock(BlockParams)
		bb.SetEntryBlock(bb)
		for _, name := range it.Names {
			bb.Append(NewParamInstr(name))
		}

	case *vast.PortListItem:
		bb := m.NewBlock(BlockArgs)
		bb.SetEntryBlock(bb)
		for _, p := range it.Ports {
			m.Ports[p.Name] = directionToRole(p.Direction)
		}

	case *vast.FuncTaskDeclItem:
		bb := m.NewBlock(BlockOrdinary)
		bb.SetEntryBlock(bb)
		decl := m.ProcDecls[it.Name]
		if decl == nil {
			// Defensive: preScanProcDecls registers every FuncTaskDeclItem,
			// so this only triggers if lowerItem sees an item preScan did
			// not (a model-invariant violation, spec §7 category 3).
			diag.Fatalf("function/task %q was not pre-registered", it.Name)
		}
		bb.Append(decl)

	case *vast.ModuleInstItem:
		bb := m.NewBlock(BlockOrdinary)
		bb.SetEntryBlock(bb)
		conns := make([]*Connection, 0, len(it.Conns))
		for _, c := range it.Conns {
			actuals := IdSet{}
			if c.Actual != nil {
				for _, ref := range ExtractIdentifiers(c.Actual, RoleUse, m) {
					actuals.Add(ref.Name)
				}
			}
			conns = append(conns, &Connection{Formal: c.Formal, Actuals: actuals})
		}
		bb.Append(NewInvokeInstr(it.CalleeModule, it.InstanceName, conns))

	case *vast.DanglingStmtItem:
		bb := m.NewBlock(BlockDangling)
		bb.SetEntryBlock(bb)
		cur := bb
		lw.lowerStmtInto(&cur, it.Body, BlockOrdinary)

	case *vast.GenerateItem:
		// Known over-approximation (spec §9): generate-constructs are
		// recognized but not lowered.
		if lw.warnings != nil {
			lw.warnings.Add(lw.file, "generate block is not lowered (known over-approximation)")
		}

	case *vast.NestedModuleItem:
		diag.Fatalf("nested module declaration %q is not supported", it.Name)

	case *vast.SVOnlyItem:
		diag.Fatalf("SystemVerilog-only construct (%s) is rejected at ingestion", it.Kind)

	default:
		diag.Fatalf("lowering: unrecognized module item %T", item)
	}
}

// lowerAlwaysBody handles the `always S` item. Per spec §4.3, an
// event-control `@(...) S` is only legal at the head of an Always block.
func (lw *lowerer) lowerAlwaysBody(bb *BasicBlock, body vast.Stmt) {
	m := lw.module
	if ec, ok := body.(*vast.EventControlStmt); ok {
		var ids []string
		for _, sens := range ec.Sensitivity {
			for _, ref := range ExtractIdentifiers(sens, RoleUse, m) {
				ids = append(ids, ref.Name)
			}
		}
		bb.Append(NewTriggerInstr(ids))
		cur := bb
		lw.lowerStmtList(&cur, ec.Body, BlockOrdinary)
		return
	}
	cur := bb
	lw.lowerStmtInto(&cur, body, BlockOrdinary)
}

// lowerStmtList lowers each statement in order into *cur, re-seating the
// pointer as branching constructs split the block (spec §4.3).
func (lw *lowerer) lowerStmtList(cur **BasicBlock, stmts []vast.Stmt, kind BlockKind) {
	for _, s := range stmts {
		lw.lowerStmtInto(cur, s, kind)
	}
}

// lowerStmtInto lowers one statement into *cur per the "ordinary statement"
// and conditional-splitting rules of spec §4.3.
func (lw *lowerer) lowerStmtInto(cur **BasicBlock, s vast.Stmt, kind BlockKind) {
	bb := *cur
	m := lw.module

	switch st := s.(type) {
	case *vast.AssignStmt:
		bb.Append(newStmtInstr(StmtAssign, st,
			ExtractIdentifiers(st.LHS, RoleDef, m),
			ExtractIdentifiers(st.RHS, RoleUse, m)))

	case *vast.CaseStmt:
		d, u := lw.foldCase(st)
		bb.Append(newStmtInstr(StmtCase, st, d, u))

	case *vast.DeassignStmt:
		bb.Append(newStmtInstr(StmtDeassign, st, ExtractIdentifiers(st.LHS, RoleDef, m), nil))

	case *vast.EventTriggerStmt:
		d := []IdentRef{{Name: st.EventName, Role: RoleDef}}
		var u []IdentRef
		if st.Control != nil {
			u = ExtractIdentifiers(st.Control, RoleUse, m)
		}
		bb.Append(newStmtInstr(StmtEventTrigger, st, d, u))

	case *vast.WaitStmt:
		u := ExtractIdentifiers(st.Cond, RoleUse, m)
		bd, bu := lw.foldStmt(st.Body)
		bb.Append(newStmtInstr(StmtWait, st, bd, append(u, bu...)))

	case *vast.DelayStmt:
		u := ExtractIdentifiers(st.Delay, RoleUse, m)
		bd, bu := lw.foldStmt(st.Body)
		bb.Append(newStmtInstr(StmtDelay, st, bd, append(u, bu...)))

	case *vast.DisableStmt:
		bb.Append(newStmtInstr(StmtDisable, st, nil, nil))

	case *vast.EventControlStmt:
		diag.Fatalf("event-control statement is only legal at the head of an always block")

	case *vast.IfStmt:
		*cur = lw.lowerIf(bb, st, kind)
		return

	case *vast.SeqBlockStmt:
		for _, inner := range st.Items {
			lw.lowerStmtInto(cur, inner, kind)
		}
		return

	case *vast.LoopStmt:
		// The loop structure itself is not modeled (spec §4.3, §9): only
		// the body is lowered, flattened into the enclosing block.
		for _, inner := range st.Body {
			lw.lowerStmtInto(cur, inner, kind)
		}
		return

	case *vast.TaskEnableStmt:
		decl := m.ProcDecls[st.Name]
		bb.Append(NewProcCallInstr(st.Name, st.Args, decl, m))
		if decl == nil {
			lw.warnUnresolvedProc(st.Name)
		}

	case *vast.SystemTaskStmt, *vast.NullStmt:
		// Ignored per spec §4.3.

	default:
		diag.Fatalf("lowering: unrecognized statement %T", s)
	}

	*cur = bb
}

// lowerIf implements the conditional if-then-else splitting algorithm of
// spec §4.3: append a Cmpr, create then/else/merge blocks, wire left=then,
// right=else (if present), recurse into each arm joining back to merge, and
// return the merge block as the caller's new current position.
func (lw *lowerer) lowerIf(bb *BasicBlock, st *vast.IfStmt, kind BlockKind) *BasicBlock {
	m := lw.module
	entry := bb.EntryBlock()

	bb.Append(NewCmprInstr(st.Cond, m))

	thenBB := m.NewBlock(kind)
	thenBB.SetEntryBlock(entry)
	bb.SetLeft(thenBB)

	mergeBB := m.NewBlock(kind)
	mergeBB.SetEntryBlock(entry)

	thenCur := thenBB
	lw.lowerStmtList(&thenCur, st.Then, kind)
	thenCur.SetLeft(mergeBB)

	if st.Else != nil {
		elseBB := m.NewBlock(kind)
		elseBB.SetEntryBlock(entry)
		bb.SetRight(elseBB)

		elseCur := elseBB
		lw.lowerStmtList(&elseCur, st.Else, kind)
		elseCur.SetLeft(mergeBB)
	}

	return mergeBB
}

// foldCase gathers the def/use contribution of a case statement per spec
// §4.2: selector and arm conditions contribute Use; each arm's inner
// statements are recursively folded into the same flat accumulation.
func (lw *lowerer) foldCase(st *vast.CaseStmt) (defs, uses []IdentRef) {
	m := lw.module
	uses = append(uses, ExtractIdentifiers(st.Selector, RoleUse, m)...)
	for _, arm := range st.Arms {
		for _, cond := range arm.Conditions {
			uses = append(uses, ExtractIdentifiers(cond, RoleUse, m)...)
		}
		for _, inner := range arm.Body {
			d, u := lw.foldStmt(inner)
			defs = append(defs, d...)
			uses = append(uses, u...)
		}
	}
	return defs, uses
}

// foldStmt recursively gathers the def/use contribution of a statement
// nested inside another Stmt's body. A plain statement folds directly; an
// embedded conditional is lowered into a small Hidden sub-graph living off
// to the side of the real CFG, and its forward-reachable def/use sets are
// merged back (spec §4.3's Hidden-block note).
func (lw *lowerer) foldStmt(s vast.Stmt) (defs, uses []IdentRef) {
	m := lw.module

	switch st := s.(type) {
	case *vast.AssignStmt:
		return ExtractIdentifiers(st.LHS, RoleDef, m), ExtractIdentifiers(st.RHS, RoleUse, m)

	case *vast.CaseStmt:
		return lw.foldCase(st)

	case *vast.DeassignStmt:
		return ExtractIdentifiers(st.LHS, RoleDef, m), nil

	case *vast.EventTriggerStmt:
		d := []IdentRef{{Name: st.EventName, Role: RoleDef}}
		var u []IdentRef
		if st.Control != nil {
			u = ExtractIdentifiers(st.Control, RoleUse, m)
		}
		return d, u

	case *vast.WaitStmt:
		u := ExtractIdentifiers(st.Cond, RoleUse, m)
		bd, bu := lw.foldStmt(st.Body)
		return bd, append(u, bu...)

	case *vast.DelayStmt:
		u := ExtractIdentifiers(st.Delay, RoleUse, m)
		bd, bu := lw.foldStmt(st.Body)
		return bd, append(u, bu...)

	case *vast.DisableStmt:
		return nil, nil

	case *vast.IfStmt:
		return lw.foldHiddenIf(st)

	case *vast.SeqBlockStmt:
		var d, u []IdentRef
		for _, inner := range st.Items {
			id, iu := lw.foldStmt(inner)
			d = append(d, id...)
			u = append(u, iu...)
		}
		return d, u

	case *vast.LoopStmt:
		var d, u []IdentRef
		for _, inner := range st.Body {
			id, iu := lw.foldStmt(inner)
			d = append(d, id...)
			u = append(u, iu...)
		}
		return d, u

	case *vast.TaskEnableStmt:
		decl := m.ProcDecls[st.Name]
		call := NewProcCallInstr(st.Name, st.Args, decl, m)
		if decl == nil {
			lw.warnUnresolvedProc(st.Name)
		}
		return refsFromSet(call.Defs(), RoleDef), refsFromSet(call.Uses(), RoleUse)

	case *vast.SystemTaskStmt, *vast.NullStmt:
		return nil, nil

	default:
		diag.Fatalf("lowering: unrecognized embedded statement %T", s)
		return nil, nil
	}
}

// foldHiddenIf builds the off-to-the-side Hidden sub-graph for an embedded
// conditional and returns the def/use contribution gathered by a
// forward-reachable walk from its entry (spec §4.3).
func (lw *lowerer) foldHiddenIf(st *vast.IfStmt) (defs, uses []IdentRef) {
	m := lw.module

	condBB := m.NewBlock(BlockHidden)
	condBB.Append(NewCmprInstr(st.Cond, m))

	thenBB := m.NewBlock(BlockHidden)
	condBB.SetLeft(thenBB)
	thenCur := thenBB
	lw.lowerStmtList(&thenCur, st.Then, BlockHidden)

	if st.Else != nil {
		elseBB := m.NewBlock(BlockHidden)
		condBB.SetRight(elseBB)
		elseCur := elseBB
		lw.lowerStmtList(&elseCur, st.Else, BlockHidden)
	}

	return forwardReachableDefUse(condBB)
}

// forwardReachableDefUse walks every block reachable from root via Left/
// Right successors and flattens every instruction's def/use sets into a
// single pair of reference lists.
func forwardReachableDefUse(root *BasicBlock) (defs, uses []IdentRef) {
	seen := map[*BasicBlock]struct{}{}
	var walk func(b *BasicBlock)
	walk = func(b *BasicBlock) {
		if b == nil {
			return
		}
		if _, ok := seen[b]; ok {
			return
		}
		seen[b] = struct{}{}
		for _, instr := range b.Instructions {
			defs = append(defs, refsFromSet(instr.Defs(), RoleDef)...)
			uses = append(uses, refsFromSet(instr.Uses(), RoleUse)...)
		}
		walk(b.Left)
		walk(b.Right)
	}
	walk(root)
	return defs, uses
}

func refsFromSet(s IdSet, role Role) []IdentRef {
	out := make([]IdentRef, 0, len(s))
	for id := range s {
		out = append(out, IdentRef{Name: id, Role: role})
	}
	return out
}
