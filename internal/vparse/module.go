package vparse

import (
	"vflow/internal/vast"
	"vflow/internal/vlex"
)

// parseModule parses `module Name (...) ; items... endmodule`.
func (p *Parser) parseModule() (*vast.Module, error) {
	pos := p.position()
	if _, err := p.expect(vlex.MODULE, "'module'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(vlex.IDENT, "module name")
	if err != nil {
		return nil, err
	}

	m := &vast.Module{Pos: pos, Name: nameTok.Text}

	if p.match(vlex.HASH) {
		if _, err := p.expect(vlex.LPAREN, "'(' after '#'"); err != nil {
			return nil, err
		}
		params, err := p.parseParamHeaderList()
		if err != nil {
			return nil, err
		}
		m.Params = params
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
	}

	if p.match(vlex.LPAREN) {
		ports, err := p.parsePortHeaderList()
		if err != nil {
			return nil, err
		}
		m.Ports = ports
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
		return nil, err
	}

	for !p.check(vlex.ENDMODULE) {
		if p.check(vlex.EOF) {
			return nil, p.errorf("unterminated module %q: expected 'endmodule'", m.Name)
		}
		item, err := p.parseModuleItem()
		if err != nil {
			return nil, err
		}
		if item != nil {
			m.Items = append(m.Items, item)
		}
	}
	p.advance() // endmodule

	return m, nil
}

func (p *Parser) parseParamHeaderList() ([]vast.ParamDecl, error) {
	var params []vast.ParamDecl
	for !p.check(vlex.RPAREN) {
		p.match(vlex.PARAMETER)
		nameTok, err := p.expect(vlex.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		if p.match(vlex.EQ) {
			if err := p.skipExpr(); err != nil {
				return nil, err
			}
		}
		params = append(params, vast.ParamDecl{Pos: p.position(), Name: nameTok.Text})
		if !p.match(vlex.COMMA) {
			break
		}
	}
	return params, nil
}

// parsePortHeaderList parses the module header's port list, which may be
// ANSI-style (`input a, output [7:0] b`) or non-ANSI (`a, b, c`, directions
// supplied later in the body via IODeclItem).
func (p *Parser) parsePortHeaderList() ([]vast.PortDecl, error) {
	var ports []vast.PortDecl
	dir := vast.DirUnknown

	for !p.check(vlex.RPAREN) {
		switch p.cur().Type {
		case vlex.INPUT:
			dir = vast.DirInput
			p.advance()
		case vlex.OUTPUT:
			dir = vast.DirOutput
			p.advance()
		case vlex.INOUT:
			dir = vast.DirInout
			p.advance()
		}
		p.skipDataType()

		nameTok, err := p.expect(vlex.IDENT, "port name")
		if err != nil {
			return nil, err
		}
		p.skipOptionalRange()
		ports = append(ports, vast.PortDecl{Pos: p.position(), Name: nameTok.Text, Direction: dir})

		if !p.match(vlex.COMMA) {
			break
		}
	}
	return ports, nil
}

// skipDataType consumes optional `wire`/`reg`/`integer`/`signed` type
// decoration and an optional bit-range, none of which affect taint
// tracking.
func (p *Parser) skipDataType() {
	for p.check(vlex.WIRE) || p.check(vlex.REG) || p.check(vlex.INTEGER) {
		p.advance()
	}
	p.skipOptionalRange()
}

func (p *Parser) skipOptionalRange() {
	if p.match(vlex.LBRACK) {
		p.skipBalanced(vlex.LBRACK, vlex.RBRACK)
	}
}

// parseModuleItem dispatches one module-level item per spec §4.3's table.
func (p *Parser) parseModuleItem() (vast.ModuleItem, error) {
	pos := p.position()

	switch p.cur().Type {
	case vlex.INPUT, vlex.OUTPUT, vlex.INOUT:
		return p.parseIODecl()

	case vlex.WIRE, vlex.REG, vlex.INTEGER:
		// Plain data declaration, not a port: no CFG effect (spec §4.3
		// only lists I/O declarations as port-direction-affecting).
		p.advance()
		p.skipOptionalRange()
		for {
			if _, err := p.expect(vlex.IDENT, "identifier"); err != nil {
				return nil, err
			}
			p.skipOptionalRange()
			if p.match(vlex.EQ) {
				if err := p.skipExpr(); err != nil {
					return nil, err
				}
			}
			if !p.match(vlex.COMMA) {
				break
			}
		}
		_, err := p.expect(vlex.SEMI, "';'")
		return nil, err

	case vlex.PARAMETER, vlex.LOCALPARAM:
		return p.parseParamListItem(pos)

	case vlex.DEFPARAM:
		return p.parseDefparamItem(pos)

	case vlex.ASSIGN:
		return p.parseContAssignItem(pos)

	case vlex.ALWAYS:
		p.advance()
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &vast.AlwaysItem{ItemBase: vast.ItemBase{Pos: pos}, Body: body}, nil

	case vlex.INITIAL:
		p.advance()
		body, err := p.parseStmtOrBlock()
		if err != nil {
			return nil, err
		}
		return &vast.InitialItem{ItemBase: vast.ItemBase{Pos: pos}, Body: body}, nil

	case vlex.FUNCTION, vlex.TASK:
		return p.parseFuncTaskDecl(pos)

	case vlex.GENERATE:
		p.advance()
		for !p.check(vlex.ENDGENERATE) && !p.check(vlex.EOF) {
			if _, err := p.parseModuleItem(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(vlex.ENDGENERATE, "'endgenerate'"); err != nil {
			return nil, err
		}
		return &vast.GenerateItem{ItemBase: vast.ItemBase{Pos: pos}}, nil

	case vlex.MODULE:
		return p.skipNestedModule(pos)

	case vlex.CLASS, vlex.CONSTRAINT, vlex.COVERGROUP, vlex.ASSERT, vlex.PROPERTY:
		return nil, p.errorf("SystemVerilog-only construct %q is rejected at ingestion", p.cur().Text)

	case vlex.IDENT:
		return p.parseInstOrDanglingStmt(pos)

	default:
		return nil, p.errorf("unexpected token %q at module scope", p.cur().Text)
	}
}

func (p *Parser) parseIODecl() (vast.ModuleItem, error) {
	pos := p.position()
	var dir vast.Direction
	switch p.advance().Type {
	case vlex.INPUT:
		dir = vast.DirInput
	case vlex.OUTPUT:
		dir = vast.DirOutput
	case vlex.INOUT:
		dir = vast.DirInout
	}
	p.skipDataType()

	nameTok, err := p.expect(vlex.IDENT, "port name")
	if err != nil {
		return nil, err
	}
	p.skipOptionalRange()

	if !p.check(vlex.COMMA) {
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &vast.IODeclItem{ItemBase: vast.ItemBase{Pos: pos}, Name: nameTok.Text, Direction: dir}, nil
	}

	// Multiple names in one declaration: return the first as this item,
	// synthesize the rest into a PortListItem-style aggregate isn't
	// available mid-loop, so collect them all here and hand back a
	// PortListItem instead (spec §4.3's "port declarations" row covers
	// a list of ports uniformly).
	decls := []vast.PortDecl{{Pos: pos, Name: nameTok.Text, Direction: dir}}
	for p.match(vlex.COMMA) {
		nTok, err := p.expect(vlex.IDENT, "port name")
		if err != nil {
			return nil, err
		}
		p.skipOptionalRange()
		decls = append(decls, vast.PortDecl{Pos: p.position(), Name: nTok.Text, Direction: dir})
	}
	if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &vast.PortListItem{ItemBase: vast.ItemBase{Pos: pos}, Ports: decls}, nil
}

func (p *Parser) parseParamListItem(pos vast.Position) (vast.ModuleItem, error) {
	p.advance() // parameter/localparam
	var names []string
	for {
		nameTok, err := p.expect(vlex.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok.Text)
		if p.match(vlex.EQ) {
			if err := p.skipExpr(); err != nil {
				return nil, err
			}
		}
		if !p.match(vlex.COMMA) {
			break
		}
	}
	if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &vast.ParamListItem{ItemBase: vast.ItemBase{Pos: pos}, Names: names}, nil
}

func (p *Parser) parseDefparamItem(pos vast.Position) (vast.ModuleItem, error) {
	p.advance() // defparam
	var names []string
	for {
		nameTok, err := p.expect(vlex.IDENT, "defparam target")
		if err != nil {
			return nil, err
		}
		for p.match(vlex.DOT) {
			if _, err := p.expect(vlex.IDENT, "defparam member"); err != nil {
				return nil, err
			}
		}
		names = append(names, nameTok.Text)
		if _, err := p.expect(vlex.EQ, "'='"); err != nil {
			return nil, err
		}
		if err := p.skipExpr(); err != nil {
			return nil, err
		}
		if !p.match(vlex.COMMA) {
			break
		}
	}
	if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &vast.DefparamItem{ItemBase: vast.ItemBase{Pos: pos}, Names: names}, nil
}

func (p *Parser) parseContAssignItem(pos vast.Position) (vast.ModuleItem, error) {
	p.advance() // assign
	var pairs []vast.ContAssignPair
	for {
		lhs, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.EQ, "'='"); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, vast.ContAssignPair{LHS: lhs, RHS: rhs})
		if !p.match(vlex.COMMA) {
			break
		}
	}
	if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &vast.ContAssignItem{ItemBase: vast.ItemBase{Pos: pos}, Assigns: pairs}, nil
}

// parseInstOrDanglingStmt disambiguates `Callee inst(...)` module
// instantiation from a bare statement at module scope (spec §4.3).
func (p *Parser) parseInstOrDanglingStmt(pos vast.Position) (vast.ModuleItem, error) {
	save := p.pos
	calleeTok := p.advance() // IDENT

	if p.check(vlex.IDENT) {
		instTok := p.advance()
		if p.check(vlex.LPAREN) {
			return p.finishModuleInst(pos, calleeTok.Text, instTok.Text)
		}
	}

	p.pos = save
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &vast.DanglingStmtItem{ItemBase: vast.ItemBase{Pos: pos}, Body: stmt}, nil
}

func (p *Parser) finishModuleInst(pos vast.Position, callee, inst string) (vast.ModuleItem, error) {
	if _, err := p.expect(vlex.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var conns []vast.InstanceConn
	for !p.check(vlex.RPAREN) {
		if p.match(vlex.DOT) {
			formalTok, err := p.expect(vlex.IDENT, "formal port name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.LPAREN, "'('"); err != nil {
				return nil, err
			}
			var actual vast.Expr
			if !p.check(vlex.RPAREN) {
				var exprErr error
				actual, exprErr = p.parseExpr(precLowest)
				if exprErr != nil {
					return nil, exprErr
				}
			}
			if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
				return nil, err
			}
			conns = append(conns, vast.InstanceConn{Formal: formalTok.Text, Actual: actual})
		} else {
			// Positional connection: formal name unknown to the parser;
			// link resolution treats an empty formal as unresolved.
			actual, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			conns = append(conns, vast.InstanceConn{Actual: actual})
		}
		if !p.match(vlex.COMMA) {
			break
		}
	}
	if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &vast.ModuleInstItem{ItemBase: vast.ItemBase{Pos: pos}, CalleeModule: callee, InstanceName: inst, Conns: conns}, nil
}

func (p *Parser) skipNestedModule(pos vast.Position) (vast.ModuleItem, error) {
	p.advance() // module
	nameTok, err := p.expect(vlex.IDENT, "module name")
	if err != nil {
		return nil, err
	}
	depth := 1
	for depth > 0 && !p.check(vlex.EOF) {
		switch p.cur().Type {
		case vlex.MODULE:
			depth++
		case vlex.ENDMODULE:
			depth--
		}
		p.advance()
	}
	return &vast.NestedModuleItem{ItemBase: vast.ItemBase{Pos: pos}, Name: nameTok.Text}, nil
}

func (p *Parser) parseFuncTaskDecl(pos vast.Position) (vast.ModuleItem, error) {
	isFunction := p.check(vlex.FUNCTION)
	endTok := vlex.ENDTASK
	if isFunction {
		endTok = vlex.ENDFUNCTION
	}
	p.advance()

	if isFunction {
		p.skipOptionalRange() // return-type range, e.g. function [7:0] name;
	}
	nameTok, err := p.expect(vlex.IDENT, "function/task name")
	if err != nil {
		return nil, err
	}

	var args, inputs, outputs []string
	parseArgGroup := func(dir vast.Direction) error {
		p.skipDataType()
		for {
			aTok, err := p.expect(vlex.IDENT, "argument name")
			if err != nil {
				return err
			}
			p.skipOptionalRange()
			args = append(args, aTok.Text)
			switch dir {
			case vast.DirInput:
				inputs = append(inputs, aTok.Text)
			case vast.DirOutput:
				outputs = append(outputs, aTok.Text)
			case vast.DirInout:
				inputs = append(inputs, aTok.Text)
				outputs = append(outputs, aTok.Text)
			}
			if !p.match(vlex.COMMA) {
				break
			}
			if p.check(vlex.INPUT) || p.check(vlex.OUTPUT) || p.check(vlex.INOUT) {
				break
			}
		}
		return nil
	}

	if p.match(vlex.LPAREN) {
		for !p.check(vlex.RPAREN) {
			var dir vast.Direction
			switch p.cur().Type {
			case vlex.INPUT:
				dir = vast.DirInput
				p.advance()
			case vlex.OUTPUT:
				dir = vast.DirOutput
				p.advance()
			case vlex.INOUT:
				dir = vast.DirInout
				p.advance()
			default:
				dir = vast.DirInput
			}
			if err := parseArgGroup(dir); err != nil {
				return nil, err
			}
			if !p.match(vlex.COMMA) {
				break
			}
		}
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
	} else {
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		for p.check(vlex.INPUT) || p.check(vlex.OUTPUT) || p.check(vlex.INOUT) {
			var dir vast.Direction
			switch p.advance().Type {
			case vlex.INPUT:
				dir = vast.DirInput
			case vlex.OUTPUT:
				dir = vast.DirOutput
			case vlex.INOUT:
				dir = vast.DirInout
			}
			if err := parseArgGroup(dir); err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
				return nil, err
			}
		}
		// Skip any local variable declarations before the body.
		for p.check(vlex.WIRE) || p.check(vlex.REG) || p.check(vlex.INTEGER) {
			p.advance()
			p.skipOptionalRange()
			for {
				if _, err := p.expect(vlex.IDENT, "identifier"); err != nil {
					return nil, err
				}
				if !p.match(vlex.COMMA) {
					break
				}
			}
			if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
				return nil, err
			}
		}
	}

	var body []vast.Stmt
	for !p.check(endTok) {
		if p.check(vlex.EOF) {
			return nil, p.errorf("unterminated function/task %q", nameTok.Text)
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	p.advance() // endfunction/endtask

	return &vast.FuncTaskDeclItem{
		ItemBase: vast.ItemBase{Pos: pos},
		Name:     nameTok.Text,
		Args:     args,
		Inputs:   inputs,
		Outputs:  outputs,
		Body:     body,
	}, nil
}
