package vparse

import (
	"vflow/internal/vast"
	"vflow/internal/vlex"
)

// Operator precedence levels, lowest to highest, following the Pratt
// precedence-climbing shape kanso's expression parser uses.
const (
	precLowest = iota
	precCond       // ?:
	precLogOr      // ||
	precLogAnd     // &&
	precBitOr      // |
	precBitXor     // ^ ~^ ^~
	precBitAnd     // &
	precEquality   // == != === !==
	precRelational // < <= > >=
	precShift      // << >>
	precAdditive   // + -
	precMultiplicative // * / %
	precUnary
)

var binPrec = map[vlex.TokenType]int{
	vlex.PIPEPIPE:   precLogOr,
	vlex.AMPAMP:     precLogAnd,
	vlex.PIPE:       precBitOr,
	vlex.CARET:      precBitXor,
	vlex.TILDECARET: precBitXor,
	vlex.AMP:        precBitAnd,
	vlex.EQEQ:       precEquality,
	vlex.BANGEQ:     precEquality,
	vlex.EQEQEQ:     precEquality,
	vlex.BANGEQEQ:   precEquality,
	vlex.LT:         precRelational,
	vlex.LTEQ:       precRelational,
	vlex.GT:         precRelational,
	vlex.GTEQ:       precRelational,
	vlex.LTLT:       precShift,
	vlex.GTGT:       precShift,
	vlex.PLUS:       precAdditive,
	vlex.MINUS:      precAdditive,
	vlex.STAR:       precMultiplicative,
	vlex.SLASH:      precMultiplicative,
	vlex.PERCENT:    precMultiplicative,
}

var binOpText = map[vlex.TokenType]string{
	vlex.PIPEPIPE: "||", vlex.AMPAMP: "&&", vlex.PIPE: "|", vlex.CARET: "^",
	vlex.TILDECARET: "~^", vlex.AMP: "&", vlex.EQEQ: "==", vlex.BANGEQ: "!=",
	vlex.EQEQEQ: "===", vlex.BANGEQEQ: "!==", vlex.LT: "<", vlex.LTEQ: "<=",
	vlex.GT: ">", vlex.GTEQ: ">=", vlex.LTLT: "<<", vlex.GTGT: ">>",
	vlex.PLUS: "+", vlex.MINUS: "-", vlex.STAR: "*", vlex.SLASH: "/", vlex.PERCENT: "%",
}

var unaryOpText = map[vlex.TokenType]string{
	vlex.BANG: "!", vlex.TILDE: "~", vlex.MINUS: "-", vlex.PLUS: "+",
	vlex.AMP: "&", vlex.PIPE: "|", vlex.CARET: "^",
	vlex.TILDEAMP: "~&", vlex.TILDEPIPE: "~|",
}

// skipExpr discards one expression without building an AST; used for
// parameter defaults and defparam overrides, which do not contribute to
// taint tracking (spec §4.1 only covers expressions reachable from LHS/RHS
// of an Assign or port connection).
func (p *Parser) skipExpr() error {
	_, err := p.parseExpr(precLowest)
	return err
}

// parseExpr is a standard precedence-climbing parser: parse a primary/unary
// term, then fold in binary operators whose precedence is >= minPrec. The
// ternary `?:` is handled separately, right-associatively, below minPrec.
func (p *Parser) parseExpr(minPrec int) (vast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		prec, ok := binPrec[p.cur().Type]
		if !ok || prec < minPrec {
			break
		}
		pos := p.position()
		opTok := p.advance().Type
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &vast.BinaryExpr{ExprBase: vast.ExprBase{Pos: pos}, Op: binOpText[opTok], Left: left, Right: right}
	}

	if minPrec <= precCond && p.check(vlex.QUESTION) {
		pos := p.position()
		p.advance()
		then, err := p.parseExpr(precCond)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.COLON, "':'"); err != nil {
			return nil, err
		}
		els, err := p.parseExpr(precCond)
		if err != nil {
			return nil, err
		}
		left = &vast.TernaryExpr{ExprBase: vast.ExprBase{Pos: pos}, Cond: left, Then: then, Else: els}
	}

	return left, nil
}

func (p *Parser) parseUnary() (vast.Expr, error) {
	pos := p.position()
	if op, ok := unaryOpText[p.cur().Type]; ok {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &vast.UnaryExpr{ExprBase: vast.ExprBase{Pos: pos}, Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression and applies any trailing
// bit/part/memory-select or hierarchical-member suffixes.
func (p *Parser) parsePostfix() (vast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(vlex.DOT) {
		pos := p.position()
		p.advance()
		fieldTok, err := p.expect(vlex.IDENT, "member name")
		if err != nil {
			return nil, err
		}
		base := ""
		if id, ok := expr.(*vast.IdRef); ok {
			base = id.Name
		}
		expr = &vast.SelectedName{ExprBase: vast.ExprBase{Pos: pos}, Base: base, Field: fieldTok.Text}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (vast.Expr, error) {
	pos := p.position()

	switch p.cur().Type {
	case vlex.NUMBER:
		tok := p.advance()
		return &vast.Literal{ExprBase: vast.ExprBase{Pos: pos}, Text: tok.Text}, nil

	case vlex.STRING:
		tok := p.advance()
		return &vast.Literal{ExprBase: vast.ExprBase{Pos: pos}, Text: tok.Text}, nil

	case vlex.TICK:
		// Bare based literal, e.g. 'b1010 with an implicit width.
		p.advance()
		tok := p.advance()
		return &vast.Literal{ExprBase: vast.ExprBase{Pos: pos}, Text: "'" + tok.Text}, nil

	case vlex.NULLKW:
		p.advance()
		return &vast.NullExpr{ExprBase: vast.ExprBase{Pos: pos}}, nil

	case vlex.SYSIDENT:
		tok := p.advance()
		var args []vast.Expr
		if p.match(vlex.LPAREN) {
			var err error
			args, err = p.parseExprList(vlex.RPAREN)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
				return nil, err
			}
		}
		return &vast.SysFuncCall{ExprBase: vast.ExprBase{Pos: pos}, Name: tok.Text, Args: args}, nil

	case vlex.LBRACE:
		return p.parseConcat(pos)

	case vlex.LPAREN:
		p.advance()
		inner, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if p.match(vlex.COLON) {
			typ, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.COLON, "':'"); err != nil {
				return nil, err
			}
			max, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
				return nil, err
			}
			return &vast.MinTypMaxExpr{ExprBase: vast.ExprBase{Pos: pos}, Min: inner, Typ: typ, Max: max}, nil
		}
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	case vlex.IDENT:
		return p.parseIdentExpr(pos)

	case vlex.INTEGER, vlex.WIRE, vlex.REG:
		tok := p.advance()
		return &vast.DataTypeExpr{ExprBase: vast.ExprBase{Pos: pos}, Name: tok.Text}, nil

	default:
		return nil, p.errorf("unexpected token %q in expression", p.cur().Text)
	}
}

// parseIdentExpr parses a bare identifier and folds in a trailing cast
// (`width'(expr)`), index/memory select, or call form.
func (p *Parser) parseIdentExpr(pos vast.Position) (vast.Expr, error) {
	nameTok := p.advance()
	name := nameTok.Text

	if p.check(vlex.TICK) {
		// sized cast: Width'(expr) — the width identifier/number itself
		// never contributes a taint identifier (spec §4.1).
		p.advance()
		if _, err := p.expect(vlex.LPAREN, "'(' after cast"); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &vast.CastExpr{ExprBase: vast.ExprBase{Pos: pos}, Operand: inner}, nil
	}

	if p.match(vlex.LPAREN) {
		args, err := p.parseExprList(vlex.RPAREN)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &vast.UserFuncCall{ExprBase: vast.ExprBase{Pos: pos}, Name: name, Args: args}, nil
	}

	if p.match(vlex.LBRACK) {
		first, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if p.match(vlex.COLON) {
			lo, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.RBRACK, "']'"); err != nil {
				return nil, err
			}
			return &vast.IndexedId{ExprBase: vast.ExprBase{Pos: pos}, Name: name,
				Index: &vast.RangeExpr{ExprBase: vast.ExprBase{Pos: pos}, Hi: first, Lo: lo}}, nil
		}
		if _, err := p.expect(vlex.RBRACK, "']'"); err != nil {
			return nil, err
		}
		if p.match(vlex.LBRACK) {
			second, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.RBRACK, "']'"); err != nil {
				return nil, err
			}
			return &vast.IndexedMemoryId{ExprBase: vast.ExprBase{Pos: pos}, Name: name, Indices: []vast.Expr{first, second}}, nil
		}
		return &vast.IndexedId{ExprBase: vast.ExprBase{Pos: pos}, Name: name, Index: first}, nil
	}

	return &vast.IdRef{ExprBase: vast.ExprBase{Pos: pos}, Name: name}, nil
}

// parseConcat parses `{elem, elem, ...}`, including a leading replication
// count (`{N{elem}}`), which folds in as an ordinary operand per spec §4.1.
func (p *Parser) parseConcat(pos vast.Position) (vast.Expr, error) {
	p.advance() // {
	elems, err := p.parseExprList(vlex.RBRACE)
	if err != nil {
		return nil, err
	}
	if len(elems) == 1 && p.check(vlex.LBRACE) {
		inner, err := p.parseConcat(p.position())
		if err != nil {
			return nil, err
		}
		elems = append(elems, inner)
	}
	if _, err := p.expect(vlex.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &vast.ConcatExpr{ExprBase: vast.ExprBase{Pos: pos}, Elems: elems}, nil
}

func (p *Parser) parseExprList(end vlex.TokenType) ([]vast.Expr, error) {
	var exprs []vast.Expr
	for !p.check(end) {
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.match(vlex.COMMA) {
			break
		}
	}
	return exprs, nil
}
