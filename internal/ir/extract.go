package ir

import (
	"vflow/internal/diag"
	"vflow/internal/vast"
)

// ProcedureLookup resolves a user-declared function/task name to its
// argument list, so the extractor can apply the "conservative: mark every
// actual as Use" rule from spec §4.1 without needing to know the callee's
// actual def/use split at extraction time.
type ProcedureLookup interface {
	LookupProcedure(name string) (args []string, ok bool)
}

// ExtractIdentifiers walks an expression subtree and yields every identifier
// reference it contains, tagged with the role it plays, per spec §4.1. The
// extractor is pure: calling it twice on the same node yields the same
// list (spec §4.1, §8 idempotence).
func ExtractIdentifiers(e vast.Expr, hint Role, procs ProcedureLookup) []IdentRef {
	var out []IdentRef
	walkExpr(e, hint, procs, &out)
	return out
}

func walkExpr(e vast.Expr, hint Role, procs ProcedureLookup, out *[]IdentRef) {
	if e == nil {
		return
	}

	switch n := e.(type) {
	case *vast.IdRef:
		*out = append(*out, IdentRef{Name: n.Name, Role: hint})

	case *vast.IndexedId:
		*out = append(*out, IdentRef{Name: n.Name, Role: hint})
		walkExpr(n.Index, RoleUse, procs, out)

	case *vast.IndexedMemoryId:
		*out = append(*out, IdentRef{Name: n.Name, Role: hint})
		for _, idx := range n.Indices {
			walkExpr(idx, RoleUse, procs, out)
		}

	case *vast.SelectedName:
		*out = append(*out, IdentRef{Name: n.Base, Role: hint})

	case *vast.BinaryExpr:
		walkExpr(n.Left, hint, procs, out)
		walkExpr(n.Right, hint, procs, out)

	case *vast.UnaryExpr:
		walkExpr(n.Operand, hint, procs, out)

	case *vast.TernaryExpr:
		walkExpr(n.Cond, RoleUse, procs, out)
		walkExpr(n.Then, hint, procs, out)
		walkExpr(n.Else, hint, procs, out)

	case *vast.CastExpr:
		walkExpr(n.Operand, hint, procs, out)

	case *vast.ConcatExpr:
		for _, el := range n.Elems {
			walkExpr(el, hint, procs, out)
		}

	case *vast.RangeExpr:
		walkExpr(n.Hi, hint, procs, out)
		walkExpr(n.Lo, hint, procs, out)

	case *vast.MinTypMaxExpr:
		walkExpr(n.Min, hint, procs, out)
		walkExpr(n.Typ, hint, procs, out)
		walkExpr(n.Max, hint, procs, out)

	case *vast.CaseExpr:
		walkExpr(n.Selector, RoleUse, procs, out)
		for _, arm := range n.Arms {
			for _, cond := range arm.Conditions {
				walkExpr(cond, RoleUse, procs, out)
			}
			walkExpr(arm.Value, hint, procs, out)
		}

	case *vast.SysFuncCall:
		for _, arg := range n.Args {
			walkExpr(arg, RoleUse, procs, out)
		}

	case *vast.UserFuncCall:
		// Conservative: every actual is a Use, regardless of the callee's
		// own parameter directions (spec §4.1, §9 "function-call return
		// values are not tracked through the callee body").
		if procs != nil {
			procs.LookupProcedure(n.Name)
		}
		for _, arg := range n.Args {
			walkExpr(arg, RoleUse, procs, out)
		}

	case *vast.PortConn:
		*out = append(*out, IdentRef{Name: n.Formal, Role: hint})
		walkExpr(n.Actual, hint, procs, out)

	case *vast.Literal, *vast.DataTypeExpr, *vast.DollarToken, *vast.NullExpr:
		// Contribute nothing.

	default:
		diag.Fatalf("identifier-extractor: unrecognized expression node %T", e)
	}
}
