package syntax

import (
	"bufio"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
)

// Parser is the parser for a Fog source file.  It performs three tasks: syntax
// analysis, AST generation, and global symbol declaration.  It declares global
// symbols as it parses but performs no symbol lookups.  It is a recursive
// descent parser: all parsing functions assume that they begin with the parser
// centered on the first token of their production and must consume all tokens
// (including the last) of their production, leaving the parser on the next
// token.  Parsers are created once per file.
type Parser struct {
	// file is the source file being parsed; the resulting items are written
	// into it.
	file *ast.File

	// project is the name of the project the file belongs to, used to qualify
	// the named types the file declares.
	project string

	// table is the project's global symbol table.
	table *depm.SymbolTable

	rep   *report.Reporter
	lexer *Lexer

	// tok is the current token the parser is positioned on.
	tok *Token

	// ahead is the lookahead token buffer filled by peek.
	ahead *Token

	// allowStructLit controls whether a `Name { ... }` struct literal may
	// start at the current expression position.  It is disabled inside if,
	// while, and for headers where the `{` belongs to the statement body.
	allowStructLit bool
}

// NewParser creates a new parser for the given file and file reader.
func NewParser(project string, table *depm.SymbolTable, rep *report.Reporter, file *ast.File, r *bufio.Reader) *Parser {
	return &Parser{
		file:           file,
		project:        project,
		table:          table,
		rep:            rep,
		lexer:          NewLexer(r),
		allowStructLit: true,
	}
}

// Parse parses the file, appending its items to the AST and declaring its
// global symbols.  Syntax errors are recorded on the reporter; after an error
// the parser resynchronizes at the next item or statement boundary and
// continues, so one pass can produce several diagnostics.
func (p *Parser) Parse() {
	p.next()

	for !p.got(TOK_EOF) {
		p.parseItemRecover()
	}
}

// parseItemRecover parses one top-level item, converting a raised error into a
// diagnostic and skipping to the next plausible item start.
func (p *Parser) parseItemRecover() {
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

			p.resyncItem()
		}
	}()

	p.parseItem()
}

// resyncItem skips tokens until the parser is past a top-level `;` or a
// closing `}` so that the next item can be attempted.
func (p *Parser) resyncItem() {
	depth := 0

	for !p.got(TOK_EOF) {
		switch p.tok.Kind {
		case TOK_LBRACE:
			depth++
		case TOK_RBRACE:
			depth--
			if depth <= 0 {
				p.next()
				return
			}
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

// next moves the parser forward one token.
func (p *Parser) next() {
	if p.ahead != nil {
		p.tok = p.ahead
		p.ahead = nil
		return
	}

	tok, err := p.lexer.NextToken()
	if err != nil {
		panic(err)
	}

	p.tok = tok
}

// peek returns the token after the current one without advancing.
func (p *Parser) peek() *Token {
	if p.ahead == nil {
		tok, err := p.lexer.NextToken()
		if err != nil {
			panic(err)
		}

		p.ahead = tok
	}

	return p.ahead
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotOneOf returns if the parser's current token kind is one of given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.tok.Kind == kind {
			return true
		}
	}

	return false
}

// assert rejects the current token if it is not of the given kind.
func (p *Parser) assert(kind int) {
	if !p.got(kind) {
		p.reject()
	}
}

// assertAndNext performs an assert operation and moves the parser forward.
func (p *Parser) assertAndNext(kind int) {
	p.assert(kind)
	p.next()
}

// want moves the parser forward one token and then asserts that the token the
// parser has moved to is of the given kind.
func (p *Parser) want(kind int) {
	p.next()
	p.assert(kind)
}

// wantAndNext performs a want operation and moves the parser forward.
func (p *Parser) wantAndNext(kind int) {
	p.want(kind)
	p.next()
}

// reject raises an unexpected token error on the current token.
func (p *Parser) reject() {
	if p.got(TOK_EOF) {
		panic(report.Raise(report.ParseError, p.tok.Span, "unexpected end of file"))
	}

	panic(report.Raise(report.ParseError, p.tok.Span, "unexpected token: `%s`", p.tok.Value))
}

// rejectWithMsg raises a parse error with a specific message on the current
// token.
func (p *Parser) rejectWithMsg(msg string, args ...interface{}) {
	panic(report.Raise(report.ParseError, p.tok.Span, msg, args...))
}
