package codegen

import (
	"github.com/marci1175/fog/ast"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"
)

// genBlock generates a statement block in a fresh scope.  Statements after a
// terminator are unreachable and skipped.
func (g *Generator) genBlock(block *ast.Block) {
	g.pushScope()
	defer g.popScope()

	for _, stmt := range block.Stmts {
		if g.terminated() {
			return
		}

		g.genStmt(stmt)
	}
}

// genStmt generates one statement.
func (g *Generator) genStmt(stmt ast.Stmt) {
	switch v := stmt.(type) {
	case *ast.VarDecl:
		g.genVarDecl(v)
	case *ast.Assign:
		addr := g.genLValueAddr(v.LHS)
		g.block.NewStore(g.genExpr(v.RHS), addr)
	case *ast.IfStmt:
		g.genIfStmt(v)
	case *ast.LoopStmt:
		g.genLoopStmt(v)
	case *ast.WhileStmt:
		g.genWhileStmt(v)
	case *ast.ForStmt:
		g.genForStmt(v)
	case *ast.ReturnStmt:
		if v.Value == nil {
			g.block.NewRet(nil)
		} else {
			g.block.NewRet(g.genExpr(v.Value))
		}
	case *ast.BreakStmt:
		g.block.NewBr(g.breakTargets[len(g.breakTargets)-1])
	case *ast.ContinueStmt:
		g.block.NewBr(g.continueTargets[len(g.continueTargets)-1])
	case ast.Expr:
		g.genExpr(v)
	default:
		raiseICE(stmt.Span(), "statement cannot be generated")
	}
}

// genVarDecl generates a variable declaration.  Declarations without an
// initializer store the type's zero value.
func (g *Generator) genVarDecl(decl *ast.VarDecl) {
	lltyp := g.convType(decl.Type)
	slot := g.alloca(lltyp)

	if decl.Init != nil {
		g.block.NewStore(g.genExpr(decl.Init), slot)
	} else {
		g.block.NewStore(constant.NewZeroInitializer(lltyp), slot)
	}

	g.defineLocal(decl.Name, slot)
}

// -----------------------------------------------------------------------------

// genIfStmt generates an if statement as a chain of conditional branches
// meeting at one merge block.
func (g *Generator) genIfStmt(stmt *ast.IfStmt) {
	var incoming []*ir.Block

	for _, branch := range stmt.Branches {
		cond := g.genExpr(branch.Cond)

		thenBlock := g.appendBlock()
		elseBlock := g.appendBlock()
		g.block.NewCondBr(cond, thenBlock, elseBlock)

		g.block = thenBlock
		g.genBlock(branch.Body)
		if !g.terminated() {
			incoming = append(incoming, g.block)
		}

		g.block = elseBlock
	}

	if stmt.ElseBody != nil {
		g.genBlock(stmt.ElseBody)
	}

	if !g.terminated() {
		incoming = append(incoming, g.block)
	}

	// The final else block doubles as the merge block when nothing needs to
	// jump to it.
	if len(incoming) == 1 && incoming[0] == g.block {
		return
	}

	merge := g.appendBlock()
	for _, block := range incoming {
		block.NewBr(merge)
	}

	g.block = merge
}

// -----------------------------------------------------------------------------

// genLoopStmt generates an unconditional loop: a body block with an
// unconditional back edge and an exit block targeted by break.  A trailing
// `if cond { break; }` branches straight between the exit and the loop head,
// so the canonical counting loop needs no extra merge block.
func (g *Generator) genLoopStmt(stmt *ast.LoopStmt) {
	head := g.appendBlock()
	exit := g.appendBlock()

	g.block.NewBr(head)
	g.block = head

	g.breakTargets = append(g.breakTargets, exit)
	g.continueTargets = append(g.continueTargets, head)

	g.pushScope()

	stmts := stmt.Body.Stmts
	last := len(stmts) - 1

	for i, bodyStmt := range stmts {
		if g.terminated() {
			break
		}

		if i == last {
			if breakIf, ok := trailingBreakIf(bodyStmt); ok {
				cond := g.genExpr(breakIf)
				g.block.NewCondBr(cond, exit, head)
				break
			}
		}

		g.genStmt(bodyStmt)
	}

	g.popScope()

	if !g.terminated() {
		g.block.NewBr(head)
	}

	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]

	g.block = exit
}

// trailingBreakIf matches an if statement of the form `if cond { break; }`
// with no elseif or else, returning its condition.
func trailingBreakIf(stmt ast.Stmt) (ast.Expr, bool) {
	ifStmt, ok := stmt.(*ast.IfStmt)
	if !ok || len(ifStmt.Branches) != 1 || ifStmt.ElseBody != nil {
		return nil, false
	}

	body := ifStmt.Branches[0].Body
	if len(body.Stmts) != 1 {
		return nil, false
	}

	if _, ok := body.Stmts[0].(*ast.BreakStmt); !ok {
		return nil, false
	}

	return ifStmt.Branches[0].Cond, true
}

// genWhileStmt generates a while loop as a loop with a leading conditional
// break: the head block re-evaluates the condition every iteration.
func (g *Generator) genWhileStmt(stmt *ast.WhileStmt) {
	head := g.appendBlock()
	g.block.NewBr(head)
	g.block = head

	cond := g.genExpr(stmt.Cond)

	body := g.appendBlock()
	exit := g.appendBlock()
	g.block.NewCondBr(cond, body, exit)

	g.breakTargets = append(g.breakTargets, exit)
	g.continueTargets = append(g.continueTargets, head)

	g.block = body
	g.genBlock(stmt.Body)
	if !g.terminated() {
		g.block.NewBr(head)
	}

	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]

	g.block = exit
}

// genForStmt generates a counting loop: an induction slot initialized to the
// start bound, a head block comparing against the end bound, and a step block
// advancing the induction variable.
func (g *Generator) genForStmt(stmt *ast.ForStmt) {
	elemPrim := mustPrim(stmt.Start.Type(), stmt.Start.Span())
	lltyp := g.convType(stmt.Start.Type())

	slot := g.alloca(lltyp)
	g.block.NewStore(g.genExpr(stmt.Start), slot)

	end := g.genExpr(stmt.End)

	var step llvalue.Value
	if stmt.Step != nil {
		step = g.genExpr(stmt.Step)
	} else {
		step = constant.NewInt(lltyp.(*lltypes.IntType), 1)
	}

	head := g.appendBlock()
	g.block.NewBr(head)
	g.block = head

	current := g.block.NewLoad(lltyp, slot)

	pred := enum.IPredSLT
	if !elemPrim.IsSigned() {
		pred = enum.IPredULT
	}
	cond := g.block.NewICmp(pred, current, end)

	body := g.appendBlock()
	inc := g.appendBlock()
	exit := g.appendBlock()
	g.block.NewCondBr(cond, body, exit)

	g.breakTargets = append(g.breakTargets, exit)
	g.continueTargets = append(g.continueTargets, inc)

	g.block = body
	g.pushScope()
	g.defineLocal(stmt.VarName, slot)
	g.genBlock(stmt.Body)
	g.popScope()

	if !g.terminated() {
		g.block.NewBr(inc)
	}

	g.block = inc
	next := g.block.NewAdd(g.block.NewLoad(lltyp, slot), step)
	g.block.NewStore(next, slot)
	g.block.NewBr(head)

	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]

	g.block = exit
}
