package link

import (
	"sort"

	"vflow/internal/diag"
	"vflow/internal/ir"
)

// BuildIndex populates every module's def-use index (spec §4.6) from its
// instructions, then flags the third spec §7 category-4 warning kind:
// an identifier used but never defined and never a port of its own module
// (spec §8 scenario 6). It must run after Resolve so that Invoke
// instructions' link-resolved def/use sets are included in the index.
func BuildIndex(mm ir.ModuleMap, warnings *diag.Bag) {
	for _, m := range mm {
		m.BuildDefUseChains()
	}
	for _, m := range mm {
		checkUndefinedIdentifiers(m, warnings)
	}
}

// checkUndefinedIdentifiers warns on every identifier in m's use index that
// is neither a port of m nor defined anywhere in m (spec §7 category 4,
// spec §8 scenario 6). Identifiers are visited in sorted order so repeated
// runs produce warnings in a deterministic sequence.
func checkUndefinedIdentifiers(m *ir.Module, warnings *diag.Bag) {
	if warnings == nil {
		return
	}
	used := m.UsedIdentifiers()
	sort.Strings(used)
	for _, id := range used {
		if m.IsPort(id) || m.HasDef(id) {
			continue
		}
		warnings.Add(m.Name, "identifier %q is used but never declared", id)
	}
}
