// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"vflow/internal/adapter"
)

// main is a smoke entry point: it parses a single Verilog file and prints
// the module names and port directions it found, for a quick sanity check
// of the front end independent of the engine/cli/repl drivers.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: vflow <file.v>")
		os.Exit(1)
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("❌ failed to read file: %s", err)
		os.Exit(1)
	}

	mods, err := adapter.NewVerilogAdapter().Parse(path, string(source))
	if err != nil {
		color.Red("❌ %s", err)
		os.Exit(1)
	}

	for _, m := range mods {
		fmt.Printf("module %s\n", m.Name)
		for _, p := range m.Ports {
			fmt.Printf("  %s %s\n", p.Direction, p.Name)
		}
	}

	color.Green("✅ parsed %d module(s) from %s", len(mods), path)
}
