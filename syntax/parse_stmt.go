package syntax

import (
	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/report"
)

// parseBlock parses a braced statement block.
//
//	block := '{' {stmt} '}' ;
func (p *Parser) parseBlock() *ast.Block {
	p.assert(TOK_LBRACE)
	start := p.tok.Span
	p.next()

	block := &ast.Block{}

	for !p.got(TOK_RBRACE) {
		if p.got(TOK_EOF) {
			p.reject()
		}

		p.parseStmtRecover(block)
	}

	block.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	return block
}

// parseStmtRecover parses one statement, converting a raised error into a
// diagnostic and resynchronizing at the next `;` or `}` boundary.
func (p *Parser) parseStmtRecover(block *ast.Block) {
	defer func() {
		if x := recover(); x != nil {
			lerr, ok := x.(*report.LocalError)
			if !ok {
				panic(x)
			}

			p.rep.Report(&report.Diagnostic{
				File:    p.file.ReprPath,
				Span:    lerr.Span,
				Kind:    lerr.Kind,
				Message: lerr.Message,
			})

			p.resyncStmt()
		}
	}()

	block.Stmts = append(block.Stmts, p.parseStmt())
}

// resyncStmt skips tokens until the parser is past a `;` or positioned on the
// `}` closing the enclosing block.
func (p *Parser) resyncStmt() {
	depth := 0

	for !p.got(TOK_EOF) {
		switch p.tok.Kind {
		case TOK_LBRACE:
			depth++
		case TOK_RBRACE:
			if depth == 0 {
				return
			}

			depth--
		case TOK_SEMI:
			if depth == 0 {
				p.next()
				return
			}
		}

		p.next()
	}
}

// -----------------------------------------------------------------------------

// parseStmt parses one statement.
//
//	stmt := var-decl | if | loop | while | for | 'return' [expr] ';'
//	      | 'break' ';' | 'continue' ';' | expr [assign-op expr] ';' ;
func (p *Parser) parseStmt() ast.Stmt {
	switch p.tok.Kind {
	case TOK_UINTSMALL, TOK_INTHALF, TOK_UINTHALF, TOK_INT, TOK_UINT,
		TOK_INTLONG, TOK_UINTLONG, TOK_FLOATHALF, TOK_FLOAT, TOK_FLOATLONG,
		TOK_BOOL, TOK_STRINGTYPE, TOK_PTR, TOK_ARRAY:
		return p.parseVarDecl()
	case TOK_IDENT:
		// A leading `Name name` sequence is a declaration with a named type.
		if p.peek().Kind == TOK_IDENT {
			return p.parseVarDecl()
		}

		return p.parseExprOrAssignStmt()
	case TOK_IF:
		return p.parseIfStmt()
	case TOK_LOOP:
		return p.parseLoopStmt()
	case TOK_WHILE:
		return p.parseWhileStmt()
	case TOK_FOR:
		return p.parseForStmt()
	case TOK_RETURN:
		return p.parseReturnStmt()
	case TOK_BREAK:
		stmt := &ast.BreakStmt{ASTBase: ast.NewASTBaseOn(p.tok.Span)}
		p.wantAndNext(TOK_SEMI)
		return stmt
	case TOK_CONTINUE:
		stmt := &ast.ContinueStmt{ASTBase: ast.NewASTBaseOn(p.tok.Span)}
		p.wantAndNext(TOK_SEMI)
		return stmt
	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseVarDecl parses a typed variable declaration.  A declaration without an
// initializer takes the type's zero value.
//
//	var-decl := type-label IDENT ['=' expr] ';' ;
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.tok.Span
	typ := p.parseTypeLabel()

	p.assert(TOK_IDENT)
	decl := &ast.VarDecl{
		Name:     p.tok.Value,
		NameSpan: p.tok.Span,
		Type:     typ,
	}
	p.next()

	if p.got(TOK_ASSIGN) {
		p.next()
		decl.Init = p.parseExpr()
	}

	p.assert(TOK_SEMI)
	decl.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	return decl
}

// assignOpSpellings maps compound assignment token kinds to the binary
// operation the assignment desugars to.
var assignOpSpellings = map[int]string{
	TOK_PLUSASSIGN:  "+",
	TOK_MINUSASSIGN: "-",
	TOK_STARASSIGN:  "*",
	TOK_DIVASSIGN:   "/",
	TOK_MODASSIGN:   "%",
}

// parseExprOrAssignStmt parses an expression statement or an assignment.
// Compound assignments are desugared here: `x =+ e` becomes `x = x + e`.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	lhs := p.parseExpr()

	if p.got(TOK_SEMI) {
		p.next()
		return lhs
	}

	if op, ok := assignOpSpellings[p.tok.Kind]; ok {
		p.next()
		rhs := p.parseExpr()

		combined := &ast.BinaryOp{Op: op, LHS: lhs, RHS: rhs}
		combined.ExprBase = ast.NewExprBase(report.NewSpanOver(lhs.Span(), rhs.Span()))

		stmt := &ast.Assign{LHS: lhs, RHS: combined}
		p.assert(TOK_SEMI)
		stmt.ASTBase = ast.NewASTBaseOver(lhs.Span(), p.tok.Span)
		p.next()

		return stmt
	}

	p.assertAndNext(TOK_ASSIGN)
	rhs := p.parseExpr()

	stmt := &ast.Assign{LHS: lhs, RHS: rhs}
	p.assert(TOK_SEMI)
	stmt.ASTBase = ast.NewASTBaseOver(lhs.Span(), p.tok.Span)
	p.next()

	return stmt
}

// -----------------------------------------------------------------------------

// parseHeaderExpr parses the condition of an if, while, or for header, where
// a struct literal's `{` would be ambiguous with the statement body.
func (p *Parser) parseHeaderExpr() ast.Expr {
	p.allowStructLit = false
	expr := p.parseExpr()
	p.allowStructLit = true

	return expr
}

// parseIfStmt parses an if statement with its elseif and else clauses.
//
//	if := 'if' expr block {'elseif' expr block} ['else' block] ;
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.tok.Span
	p.next()

	stmt := &ast.IfStmt{}

	cond := p.parseHeaderExpr()
	body := p.parseBlock()
	stmt.Branches = append(stmt.Branches, ast.CondBranch{Cond: cond, Body: body})
	end := body.Span()

	for p.got(TOK_ELSEIF) {
		p.next()
		cond = p.parseHeaderExpr()
		body = p.parseBlock()
		stmt.Branches = append(stmt.Branches, ast.CondBranch{Cond: cond, Body: body})
		end = body.Span()
	}

	if p.got(TOK_ELSE) {
		p.next()
		stmt.ElseBody = p.parseBlock()
		end = stmt.ElseBody.Span()
	}

	stmt.ASTBase = ast.NewASTBaseOver(start, end)

	return stmt
}

// parseLoopStmt parses an unconditional loop.
//
//	loop := 'loop' block ;
func (p *Parser) parseLoopStmt() ast.Stmt {
	start := p.tok.Span
	p.next()

	body := p.parseBlock()

	return &ast.LoopStmt{ASTBase: ast.NewASTBaseOver(start, body.Span()), Body: body}
}

// parseWhileStmt parses a while loop.
//
//	while := 'while' expr block ;
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.tok.Span
	p.next()

	cond := p.parseHeaderExpr()
	body := p.parseBlock()

	return &ast.WhileStmt{
		ASTBase: ast.NewASTBaseOver(start, body.Span()),
		Cond:    cond,
		Body:    body,
	}
}

// parseForStmt parses a counting loop.
//
//	for := 'for' IDENT 'in' expr '..' expr ['step' expr] block ;
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.tok.Span

	p.want(TOK_IDENT)
	stmt := &ast.ForStmt{VarName: p.tok.Value, VarSpan: p.tok.Span}

	p.wantAndNext(TOK_IN)
	p.allowStructLit = false
	stmt.Start = p.parseExpr()
	p.assertAndNext(TOK_RANGETO)
	stmt.End = p.parseExpr()

	if p.got(TOK_STEP) {
		p.next()
		stmt.Step = p.parseExpr()
	}
	p.allowStructLit = true

	stmt.Body = p.parseBlock()
	stmt.ASTBase = ast.NewASTBaseOver(start, stmt.Body.Span())

	return stmt
}

// parseReturnStmt parses a return statement.
//
//	return := 'return' [expr] ';' ;
func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.tok.Span
	p.next()

	stmt := &ast.ReturnStmt{}

	if !p.got(TOK_SEMI) {
		stmt.Value = p.parseExpr()
	}

	p.assert(TOK_SEMI)
	stmt.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	return stmt
}
