package ast

import (
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// LitKind classifies a literal token.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
)

// Literal is a literal constant.  Numeric literals are untyped at parse time
// and adopt the expected type from their context during analysis, defaulting
// to `int` and `float`.
type Literal struct {
	ExprBase

	Kind LitKind

	// The source text of the literal, with string escapes left unprocessed.
	Value string
}

// Identifier is a reference to a named variable or parameter.
type Identifier struct {
	ExprBase

	Name string
}

// -----------------------------------------------------------------------------

// StaticAccess is an access to a member of a named type: `Enum::Variant`.
type StaticAccess struct {
	ExprBase

	Root     string
	RootSpan *report.TextSpan
	Name     string

	// The resolved backing value of the variant, set during analysis.
	Value int64
}

// FieldAccess is an access to a named field of a struct value.
type FieldAccess struct {
	ExprBase

	Root Expr
	Name string

	// The declaration index of the field within its struct, set during
	// analysis.
	FieldIndex int
}

// IndexExpr is an access to an element of an array by index.
type IndexExpr struct {
	ExprBase

	Root  Expr
	Index Expr
}

// -----------------------------------------------------------------------------

// ArrayLit is an array literal: `[e0, e1, ...]`.
type ArrayLit struct {
	ExprBase

	Elems []Expr
}

// StructLitField is one field initializer of a struct literal.
type StructLitField struct {
	Name  string
	Span  *report.TextSpan
	Value Expr
}

// StructLit is a struct literal: `Name { field: value, ... }`.  Every field of
// the struct must be initialized exactly once.
type StructLit struct {
	ExprBase

	Name     string
	NameSpan *report.TextSpan
	Inits    []StructLitField
}

// -----------------------------------------------------------------------------

// Call is a function or method call.  Receiver is nil for free function
// calls; for method calls it is the value the method is invoked on.
type Call struct {
	ExprBase

	Receiver Expr
	Name     string
	NameSpan *report.TextSpan

	// The dependency qualifier of a `dep::fn(...)` call, or empty for an
	// unqualified call.
	Qualifier string

	Args []Expr

	// The mangled name of the overload the call resolved to and its
	// signature, set during analysis.
	ResolvedName string
	ResolvedSig  *types.FuncType
}

// Cast is an explicit type conversion: `expr as type`.
type Cast struct {
	ExprBase

	Value Expr

	// The destination type as written.  The resolved destination is the
	// expression's type.
	Target types.Type

	// How the conversion is performed, set during analysis.
	Kind types.CastKind
}

// Ref takes the address of an addressable value: `ref expr`.
type Ref struct {
	ExprBase

	Value Expr
}

// Deref loads the value a pointer points to: `deref expr`.
type Deref struct {
	ExprBase

	Value Expr
}

// -----------------------------------------------------------------------------

// UnaryOp applies a prefix operator.  Op is the operator spelling.
type UnaryOp struct {
	ExprBase

	Op      string
	Operand Expr
}

// BinaryOp applies an infix operator.  Op is the operator spelling.
type BinaryOp struct {
	ExprBase

	Op  string
	LHS Expr
	RHS Expr
}
