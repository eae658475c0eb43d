package syntax

import (
	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/report"
)

// binaryPrecs lists the binary operators from loosest to tightest binding.
// Each level maps token kinds to their operator spelling.
var binaryPrecs = []map[int]string{
	{TOK_LOR: "||"},
	{TOK_LAND: "&&"},
	{TOK_EQ: "==", TOK_NEQ: "!="},
	{TOK_LT: "<", TOK_LTEQ: "<=", TOK_GT: ">", TOK_GTEQ: ">="},
	{TOK_BWOR: "|"},
	{TOK_BWAND: "&"},
	{TOK_LSHIFT: "<<", TOK_RSHIFT: ">>"},
	{TOK_PLUS: "+", TOK_MINUS: "-"},
	{TOK_STAR: "*", TOK_DIV: "/", TOK_MOD: "%"},
}

// parseExpr parses an expression.
//
//	expr := bin-expr ;
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr parses a left-associative binary expression at the given
// precedence level.
func (p *Parser) parseBinaryExpr(level int) ast.Expr {
	if level == len(binaryPrecs) {
		return p.parseUnaryExpr()
	}

	lhs := p.parseBinaryExpr(level + 1)

	for {
		op, ok := binaryPrecs[level][p.tok.Kind]
		if !ok {
			return lhs
		}

		p.next()
		rhs := p.parseBinaryExpr(level + 1)

		bin := &ast.BinaryOp{Op: op, LHS: lhs, RHS: rhs}
		bin.ExprBase = ast.NewExprBase(report.NewSpanOver(lhs.Span(), rhs.Span()))
		lhs = bin
	}
}

// parseUnaryExpr parses a unary expression: prefix operators, then an atom
// with its postfix operations, then any trailing casts.
//
//	unary-expr := ('-' | '!' | 'ref' | 'deref') unary-expr
//	            | atom-expr {'as' type-label} ;
func (p *Parser) parseUnaryExpr() ast.Expr {
	switch p.tok.Kind {
	case TOK_MINUS, TOK_NOT:
		op := p.tok.Value
		start := p.tok.Span
		p.next()

		operand := p.parseUnaryExpr()
		unary := &ast.UnaryOp{Op: op, Operand: operand}
		unary.ExprBase = ast.NewExprBase(report.NewSpanOver(start, operand.Span()))
		return unary
	case TOK_REF:
		start := p.tok.Span
		p.next()

		operand := p.parseUnaryExpr()
		ref := &ast.Ref{Value: operand}
		ref.ExprBase = ast.NewExprBase(report.NewSpanOver(start, operand.Span()))
		return ref
	case TOK_DEREF:
		start := p.tok.Span
		p.next()

		operand := p.parseUnaryExpr()
		deref := &ast.Deref{Value: operand}
		deref.ExprBase = ast.NewExprBase(report.NewSpanOver(start, operand.Span()))
		return deref
	}

	expr := p.parseAtomExpr()

	for p.got(TOK_AS) {
		p.next()

		endTok := p.tok
		target := p.parseTypeLabel()

		cast := &ast.Cast{Value: expr, Target: target}
		cast.ExprBase = ast.NewExprBase(report.NewSpanOver(expr.Span(), endTok.Span))
		expr = cast
	}

	return expr
}

// -----------------------------------------------------------------------------

// parseAtomExpr parses an atomic expression and its postfix operations.
//
//	atom-expr := atom {'.' IDENT ['(' args ')'] | '[' expr ']'} ;
func (p *Parser) parseAtomExpr() ast.Expr {
	expr := p.parseAtom()

	for {
		switch p.tok.Kind {
		case TOK_DOT:
			p.want(TOK_IDENT)
			name := p.tok.Value
			nameSpan := p.tok.Span
			p.next()

			if p.got(TOK_LPAREN) {
				call := &ast.Call{Receiver: expr, Name: name, NameSpan: nameSpan}
				end := p.parseArgs(call)
				call.ExprBase = ast.NewExprBase(report.NewSpanOver(expr.Span(), end))
				expr = call
			} else {
				access := &ast.FieldAccess{Root: expr, Name: name, FieldIndex: -1}
				access.ExprBase = ast.NewExprBase(report.NewSpanOver(expr.Span(), nameSpan))
				expr = access
			}
		case TOK_LBRACKET:
			p.next()
			index := p.parseExpr()
			p.assert(TOK_RBRACKET)

			ix := &ast.IndexExpr{Root: expr, Index: index}
			ix.ExprBase = ast.NewExprBase(report.NewSpanOver(expr.Span(), p.tok.Span))
			p.next()
			expr = ix
		default:
			return expr
		}
	}
}

// parseAtom parses an atomic expression.
//
//	atom := INTLIT | FLOATLIT | BOOLLIT | STRINGLIT | '(' expr ')'
//	      | '[' [expr {',' expr}] ']' | struct-lit | IDENT ['::' IDENT]
//	      | call ;
func (p *Parser) parseAtom() ast.Expr {
	switch p.tok.Kind {
	case TOK_INTLIT:
		return p.makeLiteral(ast.LitInt)
	case TOK_FLOATLIT:
		return p.makeLiteral(ast.LitFloat)
	case TOK_BOOLLIT:
		return p.makeLiteral(ast.LitBool)
	case TOK_STRINGLIT:
		return p.makeLiteral(ast.LitString)
	case TOK_LPAREN:
		p.next()

		// The body ambiguity does not reach inside parentheses.
		outerAllow := p.allowStructLit
		p.allowStructLit = true
		expr := p.parseExpr()
		p.allowStructLit = outerAllow

		p.assertAndNext(TOK_RPAREN)
		return expr
	case TOK_LBRACKET:
		return p.parseArrayLit()
	case TOK_IDENT:
		return p.parseNamedAtom()
	default:
		p.reject()
		return nil
	}
}

// makeLiteral builds a literal node from the current token.
func (p *Parser) makeLiteral(kind ast.LitKind) ast.Expr {
	lit := &ast.Literal{Kind: kind, Value: p.tok.Value}
	lit.ExprBase = ast.NewExprBase(p.tok.Span)
	p.next()

	return lit
}

// parseArrayLit parses an array literal.
//
//	array-lit := '[' [expr {',' expr} [',']] ']' ;
func (p *Parser) parseArrayLit() ast.Expr {
	start := p.tok.Span
	p.next()

	lit := &ast.ArrayLit{}

	for !p.got(TOK_RBRACKET) {
		lit.Elems = append(lit.Elems, p.parseExpr())

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			p.assert(TOK_RBRACKET)
		}
	}

	lit.ExprBase = ast.NewExprBase(report.NewSpanOver(start, p.tok.Span))
	p.next()

	return lit
}

// parseNamedAtom parses an expression beginning with an identifier: a plain
// reference, a call, a struct literal, an enum variant access, or a
// dependency-qualified call.
func (p *Parser) parseNamedAtom() ast.Expr {
	name := p.tok.Value
	nameSpan := p.tok.Span
	p.next()

	switch {
	case p.got(TOK_DOUBLECOLON):
		p.want(TOK_IDENT)
		member := p.tok.Value
		memberSpan := p.tok.Span
		p.next()

		if p.got(TOK_LPAREN) {
			call := &ast.Call{Qualifier: name, Name: member, NameSpan: memberSpan}
			end := p.parseArgs(call)
			call.ExprBase = ast.NewExprBase(report.NewSpanOver(nameSpan, end))
			return call
		}

		access := &ast.StaticAccess{Root: name, RootSpan: nameSpan, Name: member}
		access.ExprBase = ast.NewExprBase(report.NewSpanOver(nameSpan, memberSpan))
		return access
	case p.got(TOK_LPAREN):
		call := &ast.Call{Name: name, NameSpan: nameSpan}
		end := p.parseArgs(call)
		call.ExprBase = ast.NewExprBase(report.NewSpanOver(nameSpan, end))
		return call
	case p.got(TOK_LBRACE) && p.allowStructLit:
		return p.parseStructLit(name, nameSpan)
	default:
		ident := &ast.Identifier{Name: name}
		ident.ExprBase = ast.NewExprBase(nameSpan)
		return ident
	}
}

// parseArgs parses a call's argument list, returning the span of the closing
// paren.  The parser must be positioned on the opening paren.
func (p *Parser) parseArgs(call *ast.Call) *report.TextSpan {
	p.next()

	outerAllow := p.allowStructLit
	p.allowStructLit = true

	for !p.got(TOK_RPAREN) {
		call.Args = append(call.Args, p.parseExpr())

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			p.assert(TOK_RPAREN)
		}
	}

	p.allowStructLit = outerAllow

	end := p.tok.Span
	p.next()

	return end
}

// parseStructLit parses a struct literal's field initializer list.  The
// parser must be positioned on the opening brace.
//
//	struct-lit := IDENT '{' [field-init {',' field-init} [',']] '}' ;
//	field-init := IDENT ':' expr ;
func (p *Parser) parseStructLit(name string, nameSpan *report.TextSpan) ast.Expr {
	p.next()

	lit := &ast.StructLit{Name: name, NameSpan: nameSpan}

	outerAllow := p.allowStructLit
	p.allowStructLit = true

	for !p.got(TOK_RBRACE) {
		p.assert(TOK_IDENT)
		init := ast.StructLitField{Name: p.tok.Value, Span: p.tok.Span}

		for _, prev := range lit.Inits {
			if prev.Name == init.Name {
				panic(report.Raise(report.DuplicateDefinition, init.Span,
					"struct literal repeats field `%s`", init.Name))
			}
		}

		p.wantAndNext(TOK_COLON)
		init.Value = p.parseExpr()
		lit.Inits = append(lit.Inits, init)

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			p.assert(TOK_RBRACE)
		}
	}

	p.allowStructLit = outerAllow

	lit.ExprBase = ast.NewExprBase(report.NewSpanOver(nameSpan, p.tok.Span))
	p.next()

	return lit
}
