package walk

import (
	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// walkBlock walks a statement block in a fresh lexical scope.
func (w *Walker) walkBlock(block *ast.Block) {
	w.pushScope()
	defer w.popScope()

	for _, stmt := range block.Stmts {
		w.walkStmt(stmt)
	}
}

// walkStmt walks one statement.
func (w *Walker) walkStmt(stmt ast.Stmt) {
	switch v := stmt.(type) {
	case *ast.VarDecl:
		w.walkVarDecl(v)
	case *ast.Assign:
		w.walkAssign(v)
	case *ast.IfStmt:
		for _, branch := range v.Branches {
			w.walkCond(branch.Cond)
			w.walkBlock(branch.Body)
		}

		if v.ElseBody != nil {
			w.walkBlock(v.ElseBody)
		}
	case *ast.LoopStmt:
		w.loopDepth++
		w.walkBlock(v.Body)
		w.loopDepth--
	case *ast.WhileStmt:
		w.walkCond(v.Cond)

		w.loopDepth++
		w.walkBlock(v.Body)
		w.loopDepth--
	case *ast.ForStmt:
		w.walkForStmt(v)
	case *ast.ReturnStmt:
		w.walkReturn(v)
	case *ast.BreakStmt:
		if w.loopDepth == 0 {
			panic(report.Raise(report.ParseError, v.Span(), "break outside of loop"))
		}
	case *ast.ContinueStmt:
		if w.loopDepth == 0 {
			panic(report.Raise(report.ParseError, v.Span(), "continue outside of loop"))
		}
	case ast.Expr:
		w.walkExpr(v, nil)
	}
}

// walkCond walks a loop or branch condition, which must be a bool.
func (w *Walker) walkCond(cond ast.Expr) {
	w.walkExpr(cond, types.BoolType)
	w.mustEqual(types.BoolType, cond.Type(), cond.Span())
}

// walkVarDecl walks a variable declaration.  A declaration without an
// initializer takes the type's zero value, so any concrete type is legal.
func (w *Walker) walkVarDecl(decl *ast.VarDecl) {
	w.resolveType(decl.Type, decl.NameSpan)
	w.mustBeConcrete(decl.Type, decl.NameSpan)

	if decl.Init != nil {
		w.walkExpr(decl.Init, decl.Type)
		w.mustEqual(decl.Type, decl.Init.Type(), decl.Init.Span())
	}

	w.defineLocal(&localVar{Name: decl.Name, Type: decl.Type}, decl.NameSpan)
}

// walkAssign walks an assignment statement.
func (w *Walker) walkAssign(assign *ast.Assign) {
	w.walkExpr(assign.LHS, nil)
	w.mustBeLValue(assign.LHS)

	w.walkExpr(assign.RHS, assign.LHS.Type())
	w.mustEqual(assign.LHS.Type(), assign.RHS.Type(), assign.RHS.Span())
}

// walkForStmt walks a counting loop.  The bounds and step share one integer
// type, which is also the type of the induction variable.
func (w *Walker) walkForStmt(stmt *ast.ForStmt) {
	w.walkExpr(stmt.Start, types.I32Type)

	elemType := stmt.Start.Type()
	pt, ok := types.InnerType(elemType).(*types.PrimType)
	if !ok || !pt.IsInt() {
		panic(report.Raise(report.TypeMismatch, stmt.Start.Span(),
			"for loop bounds must be integers, not %s", elemType.Repr()))
	}

	w.walkExpr(stmt.End, elemType)
	w.mustEqual(elemType, stmt.End.Type(), stmt.End.Span())

	if stmt.Step != nil {
		w.walkExpr(stmt.Step, elemType)
		w.mustEqual(elemType, stmt.Step.Type(), stmt.Step.Span())
	}

	w.pushScope()
	defer w.popScope()

	w.defineLocal(&localVar{Name: stmt.VarName, Type: elemType}, stmt.VarSpan)

	w.loopDepth++
	w.walkBlock(stmt.Body)
	w.loopDepth--
}

// walkReturn walks a return statement against the enclosing function's return
// type.
func (w *Walker) walkReturn(stmt *ast.ReturnStmt) {
	if stmt.Value == nil {
		w.mustEqual(types.VoidType, w.enclosingReturnType, stmt.Span())
		return
	}

	if types.Equals(w.enclosingReturnType, types.VoidType) {
		panic(report.Raise(report.TypeMismatch, stmt.Value.Span(),
			"void function cannot return a value"))
	}

	w.walkExpr(stmt.Value, w.enclosingReturnType)
	w.mustEqual(w.enclosingReturnType, stmt.Value.Type(), stmt.Value.Span())

	// A pointer into the returning function's own frame would dangle.
	if ref, ok := stmt.Value.(*ast.Ref); ok {
		if name, ok := w.frameLocalRoot(ref.Value); ok {
			panic(report.Raise(report.TypeMismatch, stmt.Value.Span(),
				"cannot return a reference to local `%s`", name))
		}

		switch ref.Value.(type) {
		case *ast.Identifier, *ast.Deref, *ast.FieldAccess, *ast.IndexExpr:
		default:
			// A non-lvalue operand materializes in a frame-local temporary.
			panic(report.Raise(report.TypeMismatch, stmt.Value.Span(),
				"cannot return a reference to a temporary value"))
		}
	}
}

// -----------------------------------------------------------------------------

// mustEqual raises a type mismatch unless the two types are exactly equal.
func (w *Walker) mustEqual(expected, actual types.Type, span *report.TextSpan) {
	if !types.Equals(expected, actual) {
		panic(report.Raise(report.TypeMismatch, span,
			"expected type %s, found %s", expected.Repr(), actual.Repr()))
	}
}

// mustBeConcrete rejects types that cannot be the type of a value.
func (w *Walker) mustBeConcrete(typ types.Type, span *report.TextSpan) {
	switch types.InnerType(typ).(type) {
	case *types.TraitType:
		panic(report.Raise(report.TypeMismatch, span,
			"trait %s cannot be used as a value type", typ.Repr()))
	case *types.FuncType:
		panic(report.Raise(report.TypeMismatch, span,
			"functions cannot be used as values"))
	}

	if types.Equals(typ, types.VoidType) {
		panic(report.Raise(report.TypeMismatch, span, "variable cannot have type void"))
	}
}

// frameLocalRoot returns the local variable an lvalue is rooted in, if any.
// Dereferences stop the walk: they point through a pointer, not into the
// current frame.
func (w *Walker) frameLocalRoot(expr ast.Expr) (string, bool) {
	switch v := expr.(type) {
	case *ast.Identifier:
		if w.lookupLocal(v.Name) != nil {
			return v.Name, true
		}
	case *ast.FieldAccess:
		return w.frameLocalRoot(v.Root)
	case *ast.IndexExpr:
		return w.frameLocalRoot(v.Root)
	}

	return "", false
}

// mustBeLValue rejects assignment targets that do not denote a storage
// location.
func (w *Walker) mustBeLValue(expr ast.Expr) {
	switch v := expr.(type) {
	case *ast.Identifier, *ast.Deref:
		return
	case *ast.FieldAccess:
		w.mustBeLValue(v.Root)
		return
	case *ast.IndexExpr:
		w.mustBeLValue(v.Root)
		return
	}

	panic(report.Raise(report.TypeMismatch, expr.Span(), "cannot assign to this expression"))
}
