// Package adapter is the parser-adapter contract of spec §6: it isolates
// the engine from the concrete front end (internal/vparse) so a different
// HDL front end could be swapped in without touching internal/ir, dom,
// link, or closure.
package adapter

import "vflow/internal/vast"

// Adapter turns source text into the module ASTs internal/ir.Lower
// consumes. filename is used only for diagnostic positions.
type Adapter interface {
	Parse(filename, source string) ([]*vast.Module, error)
}
