// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/fatih/color"

	"vflow/internal/adapter"
	"vflow/internal/diag"
	"vflow/internal/engine"
	"vflow/repl"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*diag.Fatal); ok {
				diag.PrintFatal(f)
				code = 2
				return
			}
			panic(r)
		}
	}()

	if len(os.Args) < 2 {
		diag.PrintUsage(diag.Usagef("vflow-repl <file.v> [file.v ...]"))
		return 1
	}

	e := engine.New(adapter.NewVerilogAdapter())
	if err := e.Analyze(os.Args[1:]); err != nil {
		color.Red("❌ %s", err)
		return 2
	}
	for _, w := range e.Warnings() {
		diag.PrintWarning(w)
	}

	repl.Start(os.Stdin, os.Stdout, e)
	return 0
}
