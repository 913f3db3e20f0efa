// Package repl is a line-oriented REPL for interactive dependence-closure
// queries, shaped directly after kanso/repl/repl.go's bufio.Scanner loop.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"vflow/internal/diag"
	"vflow/internal/engine"
)

const PROMPT = "vflow> "

// Start runs the REPL loop against an already-analyzed engine, reading
// `<module>.<port>` query lines from in and writing results to out until
// `quit` or EOF. A malformed line is a usage error (spec §7 category 1):
// it is printed and the loop continues, it never aborts the session.
func Start(in io.Reader, out io.Writer, e *engine.Engine) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		if strings.HasSuffix(line, ".") {
			module := strings.TrimSuffix(line, ".")
			ports, err := e.Ports(module)
			if err != nil {
				diag.PrintUsage(diag.Usagef("%s", err))
				continue
			}
			fmt.Fprintln(out, strings.Join(ports, " "))
			continue
		}

		module, port, ok := strings.Cut(line, ".")
		if !ok {
			diag.PrintUsage(diag.Usagef("expected <module>.<port>, got %q", line))
			continue
		}

		timing, nontiming, err := e.Query(module, port)
		if err != nil {
			diag.PrintUsage(diag.Usagef("%s", err))
			continue
		}

		fmt.Fprintf(out, "timing:    %s\n", strings.Join(timing, " "))
		fmt.Fprintf(out, "nontiming: %s\n", strings.Join(nontiming, " "))
	}
}
