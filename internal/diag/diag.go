// Package diag implements the four error categories of spec §7: usage
// errors, parse failures, fatal model-invariant violations, and semantic
// warnings. Styling follows kanso/internal/errors's ErrorReporter: category-2
// and category-3 diagnostics are CompilerError values (level, code, message,
// position, notes, help text). Category-2 failures are rendered by Reporter
// with a Rust-like "-->" caret display; category-3 fatals carry no position
// and PrintFatal prints them as one flat line. Both are colorized with
// github.com/fatih/color.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level mirrors kanso/internal/errors's ErrorLevel.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// Position locates a diagnostic in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// CompilerError is a structured diagnostic, the same shape as
// kanso/internal/errors's CompilerError minus Suggestions (vflow never
// proposes a fix, only reports what it found).
type CompilerError struct {
	Level    Level
	Code     string
	Message  string
	Position Position
	Length   int
	Notes    []string
	HelpText string
}

func (c *CompilerError) Error() string {
	if c.Position.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", c.Position.File, c.Position.Line, c.Position.Column, c.Message)
	}
	return c.Message
}

// Fatal represents a category-3 model-invariant violation (spec §7): these
// are never silently approximated. Fatal implements error so it can be
// both panicked and recovered at the boundary of a cmd/ main.
type Fatal struct {
	*CompilerError
}

// Fatalf panics with a *Fatal. internal/engine's Analyze and Query recover
// it and return it as their error; the cmd/ mains also recover any Fatal
// that escapes, print it, and exit with code 2. A Fatal carries no source
// position:
// model-invariant violations are internal bugs, not pinned to one line of
// the input.
func Fatalf(format string, args ...any) {
	panic(&Fatal{&CompilerError{Level: LevelError, Message: fmt.Sprintf(format, args...)}})
}

// ParseFailure is a category-2 parse failure (spec §7): a CompilerError
// carrying the exact position the front end was at when it gave up, so
// Reporter can render full source context instead of a bare
// "file:line:col: message" string.
type ParseFailure struct {
	*CompilerError
}

// NewParseFailure builds a category-2 diagnostic at pos.
func NewParseFailure(pos Position, format string, args ...any) *ParseFailure {
	return &ParseFailure{&CompilerError{
		Level:    LevelError,
		Code:     "E0001",
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
		Length:   1,
	}}
}

// Usage represents a category-1 usage error: malformed CLI arguments or a
// malformed REPL query line. Usage errors never abort a REPL session.
type Usage struct {
	Message string
}

func (u *Usage) Error() string { return u.Message }

func Usagef(format string, args ...any) *Usage {
	return &Usage{Message: fmt.Sprintf(format, args...)}
}

// Warning represents a category-4 semantic warning (spec §7): the analysis
// proceeds with the conservative assumption that the unknown entity carries
// no dependency, but the warning is surfaced.
type Warning struct {
	File    string
	Message string
}

func (w Warning) String() string {
	if w.File == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}

// Bag accumulates warnings over the course of an analysis run, mirroring
// the categorized-accessor style of kanso/internal/semantic's
// FlowAnalyzer.AnalysisResult.
type Bag struct {
	warnings []Warning
}

func (b *Bag) Add(file, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{File: file, Message: fmt.Sprintf(format, args...)})
}

func (b *Bag) All() []Warning { return b.warnings }

func (b *Bag) Empty() bool { return len(b.warnings) == 0 }

// Reporter renders a CompilerError with kanso/internal/errors.ErrorReporter's
// Rust-like display: a colored "level[code]: message" header, a "-->"
// location line, a line of context before and after the error line, a bold
// error line, a caret marker underneath it, then any notes and help text.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter builds a Reporter over one source file's text.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders ce exactly as kanso/internal/errors.ErrorReporter.FormatError
// does, minus the suggestion block (vflow never proposes a fix).
func (r *Reporter) Format(ce *CompilerError) string {
	var b strings.Builder

	levelColor := r.levelColor(ce.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if ce.Code != "" {
		fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor(string(ce.Level)), ce.Code, ce.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s\n", levelColor(string(ce.Level)), ce.Message)
	}

	width := lineNumberWidth(ce.Position.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, ce.Position.Line, ce.Position.Column)
	fmt.Fprintf(&b, "%s %s\n", indent, dim("│"))

	if ce.Position.Line > 1 && ce.Position.Line-1 < len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, ce.Position.Line-1)), dim("│"), r.lines[ce.Position.Line-2])
	}

	if ce.Position.Line > 0 && ce.Position.Line <= len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, ce.Position.Line)), dim("│"), r.lines[ce.Position.Line-1])
		fmt.Fprintf(&b, "%s %s %s\n", indent, dim("│"), r.marker(ce.Position.Column, ce.Length, ce.Level))
	}

	if ce.Position.Line < len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, ce.Position.Line+1)), dim("│"), r.lines[ce.Position.Line])
	}

	for _, note := range ce.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		fmt.Fprintf(&b, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	if ce.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&b, "%s %s %s %s\n", indent, dim("│"), helpColor("help:"), ce.HelpText)
	}

	b.WriteString("\n")
	return b.String()
}

func (r *Reporter) levelColor(level Level) func(...any) string {
	switch level {
	case LevelWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case LevelNote:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (r *Reporter) marker(column, length int, level Level) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max0(column-1))

	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == LevelWarning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max0(a int) int {
	if a > 0 {
		return a
	}
	return 0
}

// PrintFatal renders a *Fatal. Model-invariant violations have no source
// position to show caret context for, so this stays a flat colored line
// (matching cmd/kanso-cli's reportParseError for non-positional errors).
func PrintFatal(f *Fatal) {
	color.Red("❌ internal error: %s", f.Message)
}

// PrintUsage renders a category-1 usage error.
func PrintUsage(u *Usage) {
	color.Yellow("usage: %s", u.Message)
}

// PrintWarning renders a single category-4 semantic warning.
func PrintWarning(w Warning) {
	color.New(color.FgBlue).Printf("warning: %s\n", w.String())
}
