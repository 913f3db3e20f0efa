// Package batch implements the JSON batch interface of spec §6: a single
// request names a set of source files and a set of (module, port) signals
// to query, and the response reports each signal's timing/non-timing leak
// sets.
package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"vflow/internal/adapter"
	"vflow/internal/engine"
)

func defaultAdapter() adapter.Adapter { return adapter.NewVerilogAdapter() }

// Signal names one query target. A Field ending in `*` is a prefix and
// expands against engine.Ports before querying (spec §6).
type Signal struct {
	Module string `json:"module"`
	Field  string `json:"field"`
}

// Request is the top-level batch input: the source files to analyze and
// the signals to query against them.
type Request struct {
	Sources []string `json:"sources"`
	Signals []Signal `json:"signals"`
}

// Result is one signal's query outcome, or its error if the query failed.
type Result struct {
	Module    string   `json:"module"`
	Field     string   `json:"field"`
	Timing    []string `json:"timing"`
	NonTiming []string `json:"non_timing"`
	Error     string   `json:"error,omitempty"`
}

// Decode parses a batch request from raw JSON.
func Decode(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decoding batch request: %w", err)
	}
	return req, nil
}

// Run analyzes req.Sources and answers every req.Signals entry, expanding
// any `*`-suffixed Field into one Result per matching port.
func Run(req Request) ([]Result, error) {
	e := engine.New(defaultAdapter())
	if err := e.Analyze(req.Sources); err != nil {
		return nil, fmt.Errorf("analyzing sources: %w", err)
	}
	if len(e.Modules()) == 0 {
		return nil, fmt.Errorf("no modules loaded from %d source(s)", len(req.Sources))
	}

	var results []Result
	for _, sig := range req.Signals {
		fields, err := expandFields(e, sig)
		if err != nil {
			results = append(results, Result{Module: sig.Module, Field: sig.Field, Timing: []string{}, NonTiming: []string{}, Error: err.Error()})
			continue
		}
		for _, field := range fields {
			timing, nontiming, qerr := e.Query(sig.Module, field)
			if qerr != nil {
				results = append(results, Result{Module: sig.Module, Field: field, Timing: []string{}, NonTiming: []string{}, Error: qerr.Error()})
				continue
			}
			results = append(results, Result{Module: sig.Module, Field: field, Timing: timing, NonTiming: nontiming})
		}
	}
	return results, nil
}

func expandFields(e *engine.Engine, sig Signal) ([]string, error) {
	if !strings.HasSuffix(sig.Field, "*") {
		return []string{sig.Field}, nil
	}
	prefix := strings.TrimSuffix(sig.Field, "*")
	ports, err := e.Ports(sig.Module)
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, p := range ports {
		if strings.HasPrefix(p, prefix) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Encode renders results as indented JSON for the batch driver's stdout.
func Encode(results []Result) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}
