package vparse

import (
	"vflow/internal/vast"
	"vflow/internal/vlex"
)

// parseStatement parses a single procedural statement.
func (p *Parser) parseStatement() (vast.Stmt, error) {
	pos := p.position()

	switch p.cur().Type {
	case vlex.SEMI:
		p.advance()
		return &vast.NullStmt{StmtBase: vast.StmtBase{Pos: pos}}, nil

	case vlex.AT:
		return p.parseEventControl(pos)

	case vlex.BEGIN:
		return p.parseSeqBlock(pos)

	case vlex.FORK:
		return p.parseForkJoin(pos)

	case vlex.IF:
		return p.parseIf(pos)

	case vlex.CASE, vlex.CASEX, vlex.CASEZ:
		return p.parseCase(pos)

	case vlex.DEASSIGN:
		p.advance()
		lhs, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &vast.DeassignStmt{StmtBase: vast.StmtBase{Pos: pos}, LHS: lhs}, nil

	case vlex.ARROW:
		p.advance()
		nameTok, err := p.expect(vlex.IDENT, "event name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &vast.EventTriggerStmt{StmtBase: vast.StmtBase{Pos: pos}, EventName: nameTok.Text}, nil

	case vlex.WAIT:
		p.advance()
		if _, err := p.expect(vlex.LPAREN, "'('"); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &vast.WaitStmt{StmtBase: vast.StmtBase{Pos: pos}, Cond: cond, Body: body}, nil

	case vlex.HASH:
		p.advance()
		var delay vast.Expr
		var err error
		if p.match(vlex.LPAREN) {
			delay, err = p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
				return nil, err
			}
		} else {
			delay, err = p.parsePrimary()
			if err != nil {
				return nil, err
			}
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &vast.DelayStmt{StmtBase: vast.StmtBase{Pos: pos}, Delay: delay, Body: body}, nil

	case vlex.DISABLE:
		p.advance()
		nameTok, err := p.expect(vlex.IDENT, "disable target")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &vast.DisableStmt{StmtBase: vast.StmtBase{Pos: pos}, Name: nameTok.Text}, nil

	case vlex.FOREVER:
		p.advance()
		body, err := p.parseStmtOrBlock()
		if err != nil {
			return nil, err
		}
		return &vast.LoopStmt{StmtBase: vast.StmtBase{Pos: pos}, Body: body}, nil

	case vlex.WHILE, vlex.REPEAT:
		p.advance()
		if _, err := p.expect(vlex.LPAREN, "'('"); err != nil {
			return nil, err
		}
		if err := p.skipExpr(); err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
		body, err := p.parseStmtOrBlock()
		if err != nil {
			return nil, err
		}
		return &vast.LoopStmt{StmtBase: vast.StmtBase{Pos: pos}, Body: body}, nil

	case vlex.FOR:
		p.advance()
		if _, err := p.expect(vlex.LPAREN, "'('"); err != nil {
			return nil, err
		}
		p.skipBalanced(vlex.LPAREN, vlex.RPAREN)
		body, err := p.parseStmtOrBlock()
		if err != nil {
			return nil, err
		}
		return &vast.LoopStmt{StmtBase: vast.StmtBase{Pos: pos}, Body: body}, nil

	case vlex.SYSIDENT:
		nameTok := p.advance()
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
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &vast.SystemTaskStmt{StmtBase: vast.StmtBase{Pos: pos}, Name: nameTok.Text, Args: args}, nil

	case vlex.IDENT:
		return p.parseIdentLedStmt(pos)

	default:
		return nil, p.errorf("unexpected token %q in statement", p.cur().Text)
	}
}

// parseIdentLedStmt disambiguates a procedural assignment (`lhs = rhs;` /
// `lhs <= rhs;`) from a task-enable statement (`task_name(args);` or bare
// `task_name;`), both of which start with a plain identifier.
func (p *Parser) parseIdentLedStmt(pos vast.Position) (vast.Stmt, error) {
	// The left side is parsed above relational precedence so that a
	// non-blocking `<=` is not folded into it as a comparison operator.
	lhs, err := p.parseExpr(precRelational + 1)
	if err != nil {
		return nil, err
	}

	switch p.cur().Type {
	case vlex.EQ:
		p.advance()
		rhs, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &vast.AssignStmt{StmtBase: vast.StmtBase{Pos: pos}, Blocking: true, LHS: lhs, RHS: rhs}, nil

	case vlex.LTEQ:
		p.advance()
		rhs, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(vlex.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &vast.AssignStmt{StmtBase: vast.StmtBase{Pos: pos}, Blocking: false, LHS: lhs, RHS: rhs}, nil

	case vlex.SEMI:
		p.advance()
		if call, ok := lhs.(*vast.UserFuncCall); ok {
			return &vast.TaskEnableStmt{StmtBase: vast.StmtBase{Pos: pos}, Name: call.Name, Args: call.Args}, nil
		}
		if id, ok := lhs.(*vast.IdRef); ok {
			return &vast.TaskEnableStmt{StmtBase: vast.StmtBase{Pos: pos}, Name: id.Name}, nil
		}
		return &vast.NullStmt{StmtBase: vast.StmtBase{Pos: pos}}, nil

	default:
		return nil, p.errorf("unexpected token %q after expression in statement position", p.cur().Text)
	}
}

// parseEventControl parses `@(sensitivity-list) body` or the all-change
// form `@*`/`@(*)`.
func (p *Parser) parseEventControl(pos vast.Position) (vast.Stmt, error) {
	p.advance() // @
	var sens []vast.Expr

	if p.match(vlex.STAR) {
		// @* — sensitivity list is implicit; nothing to record.
	} else if p.match(vlex.LPAREN) {
		for !p.check(vlex.RPAREN) {
			p.match(vlex.POSEDGE)
			p.match(vlex.NEGEDGE)
			if p.check(vlex.STAR) {
				p.advance()
				continue
			}
			e, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			sens = append(sens, e)
			if p.check(vlex.IDENT) && p.cur().Text == "or" {
				p.advance()
				continue
			}
			if !p.match(vlex.COMMA) {
				break
			}
		}
		if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
			return nil, err
		}
	}

	body, err := p.parseStmtOrBlock()
	if err != nil {
		return nil, err
	}
	return &vast.EventControlStmt{StmtBase: vast.StmtBase{Pos: pos}, Sensitivity: sens, Body: body}, nil
}

func (p *Parser) parseSeqBlock(pos vast.Position) (vast.Stmt, error) {
	p.advance() // begin
	if p.match(vlex.COLON) {
		if _, err := p.expect(vlex.IDENT, "block name"); err != nil {
			return nil, err
		}
	}
	var items []vast.Stmt
	for !p.check(vlex.END) {
		if p.check(vlex.EOF) {
			return nil, p.errorf("unterminated begin...end block")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	p.advance() // end
	return &vast.SeqBlockStmt{StmtBase: vast.StmtBase{Pos: pos}, Items: items}, nil
}

func (p *Parser) parseForkJoin(pos vast.Position) (vast.Stmt, error) {
	p.advance() // fork
	var items []vast.Stmt
	for !p.check(vlex.JOIN) {
		if p.check(vlex.EOF) {
			return nil, p.errorf("unterminated fork...join block")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	p.advance() // join
	return &vast.SeqBlockStmt{StmtBase: vast.StmtBase{Pos: pos}, Items: items}, nil
}

func (p *Parser) parseIf(pos vast.Position) (vast.Stmt, error) {
	p.advance() // if
	if _, err := p.expect(vlex.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseStmtOrBlock()
	if err != nil {
		return nil, err
	}

	var els []vast.Stmt
	if p.match(vlex.ELSE) {
		els, err = p.parseStmtOrBlock()
		if err != nil {
			return nil, err
		}
	}

	return &vast.IfStmt{StmtBase: vast.StmtBase{Pos: pos}, Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseCase(pos vast.Position) (vast.Stmt, error) {
	p.advance() // case/casex/casez
	if _, err := p.expect(vlex.LPAREN, "'('"); err != nil {
		return nil, err
	}
	selector, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(vlex.RPAREN, "')'"); err != nil {
		return nil, err
	}

	var arms []vast.CaseArm
	for !p.check(vlex.ENDCASE) {
		if p.check(vlex.EOF) {
			return nil, p.errorf("unterminated case statement")
		}
		var arm vast.CaseArm
		if p.match(vlex.DEFAULT) {
			p.match(vlex.COLON)
		} else {
			for {
				e, err := p.parseExpr(precLowest)
				if err != nil {
					return nil, err
				}
				arm.Conditions = append(arm.Conditions, e)
				if !p.match(vlex.COMMA) {
					break
				}
			}
			if _, err := p.expect(vlex.COLON, "':'"); err != nil {
				return nil, err
			}
		}
		body, err := p.parseStmtOrBlock()
		if err != nil {
			return nil, err
		}
		arm.Body = body
		arms = append(arms, arm)
	}
	p.advance() // endcase

	return &vast.CaseStmt{StmtBase: vast.StmtBase{Pos: pos}, Selector: selector, Arms: arms}, nil
}

// parseStmtOrBlock parses either a `begin...end` block (flattened into its
// item list) or a single statement wrapped in a one-element list.
func (p *Parser) parseStmtOrBlock() ([]vast.Stmt, error) {
	if p.check(vlex.BEGIN) {
		pos := p.position()
		block, err := p.parseSeqBlock(pos)
		if err != nil {
			return nil, err
		}
		return block.(*vast.SeqBlockStmt).Items, nil
	}
	s, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return []vast.Stmt{s}, nil
}
