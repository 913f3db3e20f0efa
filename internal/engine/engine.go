// Package engine orchestrates the full analysis pipeline described by
// spec §6: parse every source file via the adapter, lower each parsed
// module, resolve cross-module links, build the def-use index, then answer
// (module, port) dependence-closure queries on demand.
package engine

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"vflow/internal/adapter"
	"vflow/internal/closure"
	"vflow/internal/diag"
	"vflow/internal/ir"
	"vflow/internal/link"
)

// Engine holds the fully-linked module map produced by one Analyze call.
// It is not safe for concurrent use (spec §5: the core is single-threaded).
type Engine struct {
	adapter  adapter.Adapter
	mm       ir.ModuleMap
	warnings *diag.Bag
}

func New(a adapter.Adapter) *Engine {
	return &Engine{adapter: a, mm: ir.ModuleMap{}, warnings: &diag.Bag{}}
}

// Analyze reads, parses, and lowers every file, then resolves links and
// builds the def-use index across the whole module map. It may be called
// multiple times to add more files to the same analysis; link resolution
// re-runs each time but is idempotent (spec §8).
//
// A file that fails to read or parse does not abort the rest of the batch
// (spec.md §7 category 2, SPEC_FULL.md §7): its failure is collected and
// lowering proceeds with every other file. Analyze only returns an error —
// aborting the whole call — when not a single module was loaded across all
// of files, mirroring the driver's "exits non-zero if no module survived"
// contract.
func (e *Engine) Analyze(files []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*diag.Fatal); ok {
				err = f
				return
			}
			panic(r)
		}
	}()

	var failures []string
	loaded := 0

	for _, file := range files {
		src, readErr := os.ReadFile(file)
		if readErr != nil {
			failures = append(failures, fmt.Sprintf("reading %s: %s", file, readErr))
			continue
		}

		mods, parseErr := e.adapter.Parse(file, string(src))
		if parseErr != nil {
			failures = append(failures, renderParseFailure(file, string(src), parseErr))
			continue
		}

		for _, ast := range mods {
			m := ir.Lower(ast, file, e.warnings)
			e.mm[m.Name] = m
			loaded++
		}
	}

	if loaded == 0 && len(failures) > 0 {
		return fmt.Errorf("no modules loaded from %d source(s): %s", len(files), strings.Join(failures, "; "))
	}

	link.Resolve(e.mm, e.warnings)
	link.BuildIndex(e.mm, e.warnings)
	return nil
}

// renderParseFailure formats parseErr with diag.Reporter's caret display
// when it carries a real source position (spec §7 category 2), falling
// back to its plain Error() text otherwise.
func renderParseFailure(file, src string, parseErr error) string {
	pf, ok := parseErr.(*diag.ParseFailure)
	if !ok {
		return fmt.Sprintf("parsing %s: %s", file, parseErr)
	}
	return diag.NewReporter(file, src).Format(pf.CompilerError)
}

// Query runs the dependence-closure engine for (module, port) and returns
// the timing/non-timing leak sets (spec §4.7).
func (e *Engine) Query(module, port string) (timing, nontiming []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*diag.Fatal); ok {
				err = f
				return
			}
			panic(r)
		}
	}()
	result, qerr := closure.Query(e.mm, module, port)
	if qerr != nil {
		return nil, nil, qerr
	}
	return result.Timing, result.NonTiming, nil
}

// Ports returns every port name declared on module, sorted, for REPL
// completion and batch `*`-suffix expansion.
func (e *Engine) Ports(module string) ([]string, error) {
	m, ok := e.mm[module]
	if !ok {
		return nil, fmt.Errorf("unknown module %q", module)
	}
	names := make([]string, 0, len(m.Ports))
	for name := range m.Ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Modules returns every module name known to the engine, sorted.
func (e *Engine) Modules() []string {
	names := make([]string, 0, len(e.mm))
	for name := range e.mm {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Warnings returns every category-4 semantic warning accumulated so far.
func (e *Engine) Warnings() []diag.Warning {
	return e.warnings.All()
}
