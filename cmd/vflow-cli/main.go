// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"vflow/internal/batch"
	"vflow/internal/diag"
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
		diag.PrintUsage(diag.Usagef("vflow-cli <request.json>"))
		return 1
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		color.Red("❌ %s", err)
		return 1
	}

	req, err := batch.Decode(data)
	if err != nil {
		color.Red("❌ %s", err)
		return 1
	}

	results, err := batch.Run(req)
	if err != nil {
		color.Red("❌ %s", err)
		return 2
	}

	out, err := batch.Encode(results)
	if err != nil {
		color.Red("❌ %s", err)
		return 2
	}
	fmt.Println(string(out))
	return 0
}
