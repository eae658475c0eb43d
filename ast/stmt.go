package ast

import (
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// Stmt is the interface for all AST statement nodes.  Expressions used in
// statement position satisfy it directly.
type Stmt interface {
	ASTNode
}

// Block is a braced sequence of statements with its own lexical scope.
type Block struct {
	ASTBase

	Stmts []Stmt
}

// -----------------------------------------------------------------------------

// VarDecl declares and initializes a new local variable.  Every declaration
// carries an explicit type and an initializer.
type VarDecl struct {
	ASTBase

	Name     string
	NameSpan *report.TextSpan
	Type     types.Type
	Init     Expr
}

// Assign stores the value of RHS into the location denoted by LHS.  Compound
// assignments are desugared by the parser, so RHS already contains the
// combining operation.
type Assign struct {
	ASTBase

	LHS Expr
	RHS Expr
}

// -----------------------------------------------------------------------------

// CondBranch is one condition-guarded branch of an if statement.
type CondBranch struct {
	Cond Expr
	Body *Block
}

// IfStmt is an if statement with any number of elseif branches and an optional
// else body.
type IfStmt struct {
	ASTBase

	Branches []CondBranch
	ElseBody *Block
}

// LoopStmt is an unconditional loop, exited only by break or return.
type LoopStmt struct {
	ASTBase

	Body *Block
}

// WhileStmt is a loop guarded by a condition checked before every iteration.
type WhileStmt struct {
	ASTBase

	Cond Expr
	Body *Block
}

// ForStmt is a counting loop over the half-open range [Start, End) advancing
// by Step each iteration.
type ForStmt struct {
	ASTBase

	VarName string
	VarSpan *report.TextSpan

	Start Expr
	End   Expr

	// The step expression, or nil for the default step of one.
	Step Expr

	Body *Block
}

// -----------------------------------------------------------------------------

// ReturnStmt returns from the enclosing function, with a value unless the
// function returns void.
type ReturnStmt struct {
	ASTBase

	// The returned value, or nil for a bare return.
	Value Expr
}

// BreakStmt exits the innermost enclosing loop.
type BreakStmt struct {
	ASTBase
}

// ContinueStmt jumps to the next iteration of the innermost enclosing loop.
type ContinueStmt struct {
	ASTBase
}
