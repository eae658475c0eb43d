package syntax

import "github.com/marci1175/fog/report"

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.
	Value string

	// The text span over which the token exists.  This may not directly
	// correspond to its value: eg. the value of a string token has the leading
	// quotes trimmed off for convenience.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_FUNCTION = iota
	TOK_EXTERNAL
	TOK_STRUCT
	TOK_ENUM
	TOK_TRAIT
	TOK_EXTEND
	TOK_IMPORT

	TOK_PRIV
	TOK_PUB
	TOK_PUBLIB

	TOK_IF
	TOK_ELSEIF
	TOK_ELSE
	TOK_LOOP
	TOK_WHILE
	TOK_FOR
	TOK_IN
	TOK_STEP
	TOK_BREAK
	TOK_CONTINUE
	TOK_RETURN

	TOK_AS
	TOK_REF
	TOK_DEREF

	TOK_UINTSMALL
	TOK_INTHALF
	TOK_UINTHALF
	TOK_INT
	TOK_UINT
	TOK_INTLONG
	TOK_UINTLONG
	TOK_FLOATHALF
	TOK_FLOAT
	TOK_FLOATLONG
	TOK_BOOL
	TOK_STRINGTYPE
	TOK_VOID
	TOK_PTR
	TOK_ARRAY

	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_DIV
	TOK_MOD

	TOK_EQ
	TOK_NEQ
	TOK_LT
	TOK_GT
	TOK_LTEQ
	TOK_GTEQ

	TOK_BWAND
	TOK_BWOR
	TOK_LSHIFT
	TOK_RSHIFT

	TOK_NOT
	TOK_LAND
	TOK_LOR

	TOK_ASSIGN
	TOK_PLUSASSIGN
	TOK_MINUSASSIGN
	TOK_STARASSIGN
	TOK_DIVASSIGN
	TOK_MODASSIGN

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_LBRACKET
	TOK_RBRACKET
	TOK_COMMA
	TOK_DOT
	TOK_RANGETO
	TOK_ELLIPSIS
	TOK_SEMI
	TOK_COLON
	TOK_DOUBLECOLON
	TOK_ATSIGN

	TOK_IDENT
	TOK_INTLIT
	TOK_FLOATLIT
	TOK_BOOLLIT
	TOK_STRINGLIT

	TOK_EOF
)
