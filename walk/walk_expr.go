package walk

import (
	"strconv"
	"strings"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// walkExpr walks an AST expression, resolving names and checking types.  The
// expected type, when non-nil, guides the typing of untyped numeric literals;
// it is a hint, not a constraint: the caller still compares the resulting
// type itself.
func (w *Walker) walkExpr(expr ast.Expr, expected types.Type) {
	switch v := expr.(type) {
	case *ast.Literal:
		w.walkLiteral(v, expected)
	case *ast.Identifier:
		lv := w.lookupLocal(v.Name)
		if lv == nil {
			panic(report.Raise(report.UnresolvedSymbol, v.Span(),
				"undefined variable: `%s`", v.Name))
		}

		v.SetType(lv.Type)
	case *ast.StaticAccess:
		w.walkStaticAccess(v)
	case *ast.FieldAccess:
		w.walkFieldAccess(v)
	case *ast.IndexExpr:
		w.walkIndexExpr(v)
	case *ast.ArrayLit:
		w.walkArrayLit(v, expected)
	case *ast.StructLit:
		w.walkStructLit(v)
	case *ast.Call:
		w.walkCall(v)
	case *ast.Cast:
		w.walkCast(v)
	case *ast.Ref:
		w.walkRef(v)
	case *ast.Deref:
		w.walkDeref(v)
	case *ast.UnaryOp:
		w.walkUnaryOp(v, expected)
	case *ast.BinaryOp:
		w.walkBinaryOp(v, expected)
	default:
		panic(report.Raise(report.TypeMismatch, expr.Span(), "invalid expression"))
	}
}

// -----------------------------------------------------------------------------

// walkLiteral types a literal.  Untyped numeric literals adopt the expected
// type when it is numeric, defaulting to `int` and `float` otherwise.
func (w *Walker) walkLiteral(lit *ast.Literal, expected types.Type) {
	switch lit.Kind {
	case ast.LitBool:
		lit.SetType(types.BoolType)
	case ast.LitString:
		lit.SetType(types.StringType)
	case ast.LitFloat:
		typ := types.F32Type
		if pt, ok := types.InnerType(orVoid(expected)).(*types.PrimType); ok && pt.IsFloat() {
			typ = pt
		}

		lit.SetType(typ)
	case ast.LitInt:
		typ := types.I32Type
		if pt, ok := types.InnerType(orVoid(expected)).(*types.PrimType); ok && pt.IsNumeric() {
			typ = pt
		}

		if typ.IsInt() {
			w.checkIntFits(lit, typ)
		}

		lit.SetType(typ)
	}
}

// orVoid substitutes void for a nil expected type so it can be inspected.
func orVoid(expected types.Type) types.Type {
	if expected == nil {
		return types.VoidType
	}

	return expected
}

// checkIntFits raises a type mismatch if an integer literal does not fit in
// its adopted type.
func (w *Walker) checkIntFits(lit *ast.Literal, pt *types.PrimType) {
	text := strings.ReplaceAll(lit.Value, "_", "")

	var err error
	if pt.IsSigned() {
		_, err = strconv.ParseInt(text, 0, pt.BitWidth())
	} else {
		_, err = strconv.ParseUint(text, 0, pt.BitWidth())
	}

	if err != nil {
		panic(report.Raise(report.TypeMismatch, lit.Span(),
			"literal `%s` does not fit in %s", lit.Value, pt.Repr()))
	}
}

// -----------------------------------------------------------------------------

// walkStaticAccess resolves an `Enum::Variant` access.
func (w *Walker) walkStaticAccess(sa *ast.StaticAccess) {
	sym := w.lookupType(sa.Root, sa.RootSpan)

	et, ok := types.InnerType(sym.Type).(*types.EnumType)
	if !ok {
		panic(report.Raise(report.TypeMismatch, sa.RootSpan,
			"`%s` is not an enum", sa.Root))
	}

	variant, ok := et.Variant(sa.Name)
	if !ok {
		panic(report.Raise(report.UnknownField, sa.Span(),
			"enum `%s` has no variant `%s`", sa.Root, sa.Name))
	}

	sa.Value = variant.Value
	sa.SetType(et)
}

// walkFieldAccess resolves an `a.b` field access.
func (w *Walker) walkFieldAccess(fa *ast.FieldAccess) {
	w.walkExpr(fa.Root, nil)

	st, ok := types.InnerType(fa.Root.Type()).(*types.StructType)
	if !ok {
		panic(report.Raise(report.TypeMismatch, fa.Root.Span(),
			"type %s has no fields", fa.Root.Type().Repr()))
	}

	index := st.FieldIndex(fa.Name)
	if index == -1 {
		panic(report.Raise(report.UnknownField, fa.Span(),
			"struct `%s` has no field `%s`", st.Repr(), fa.Name))
	}

	fa.FieldIndex = index
	fa.SetType(st.Fields[index].Type)
}

// walkIndexExpr checks an `a[i]` array index.
func (w *Walker) walkIndexExpr(ix *ast.IndexExpr) {
	w.walkExpr(ix.Root, nil)

	at, ok := types.InnerType(ix.Root.Type()).(*types.ArrayType)
	if !ok {
		panic(report.Raise(report.TypeMismatch, ix.Root.Span(),
			"cannot index into type %s", ix.Root.Type().Repr()))
	}

	w.walkExpr(ix.Index, types.I32Type)

	pt, ok := types.InnerType(ix.Index.Type()).(*types.PrimType)
	if !ok || !pt.IsInt() {
		panic(report.Raise(report.TypeMismatch, ix.Index.Span(),
			"array index must be an integer, not %s", ix.Index.Type().Repr()))
	}

	ix.SetType(at.Elem)
}

// walkArrayLit types an array literal.  Element types must all be equal; an
// empty literal needs an expected array type to infer from.
func (w *Walker) walkArrayLit(lit *ast.ArrayLit, expected types.Type) {
	var elemExpected types.Type
	if at, ok := types.InnerType(orVoid(expected)).(*types.ArrayType); ok {
		elemExpected = at.Elem
	}

	if len(lit.Elems) == 0 {
		if elemExpected == nil {
			panic(report.Raise(report.TypeMismatch, lit.Span(),
				"cannot infer the element type of an empty array"))
		}

		lit.SetType(&types.ArrayType{Elem: elemExpected})
		return
	}

	w.walkExpr(lit.Elems[0], elemExpected)
	elemType := lit.Elems[0].Type()

	for _, elem := range lit.Elems[1:] {
		w.walkExpr(elem, elemType)
		w.mustEqual(elemType, elem.Type(), elem.Span())
	}

	lit.SetType(&types.ArrayType{Elem: elemType, Len: len(lit.Elems)})
}

// walkStructLit checks a struct literal: the named type must be a struct and
// every field must be initialized exactly once.
func (w *Walker) walkStructLit(lit *ast.StructLit) {
	sym := w.lookupType(lit.Name, lit.NameSpan)

	st, ok := types.InnerType(sym.Type).(*types.StructType)
	if !ok {
		panic(report.Raise(report.TypeMismatch, lit.NameSpan,
			"`%s` is not a struct", lit.Name))
	}

	for _, init := range lit.Inits {
		index := st.FieldIndex(init.Name)
		if index == -1 {
			panic(report.Raise(report.UnknownField, init.Span,
				"struct `%s` has no field `%s`", lit.Name, init.Name))
		}

		w.walkExpr(init.Value, st.Fields[index].Type)
		w.mustEqual(st.Fields[index].Type, init.Value.Type(), init.Value.Span())
	}

	for _, field := range st.Fields {
		found := false
		for _, init := range lit.Inits {
			if init.Name == field.Name {
				found = true
				break
			}
		}

		if !found {
			panic(report.Raise(report.TypeMismatch, lit.Span(),
				"struct literal is missing field `%s`", field.Name))
		}
	}

	lit.SetType(st)
}

// -----------------------------------------------------------------------------

// walkCall resolves and checks a function or method call.
func (w *Walker) walkCall(call *ast.Call) {
	if call.Receiver != nil {
		w.walkMethodCall(call)
		return
	}

	sym := w.lookupFunc(call.Qualifier, call.Name, call.NameSpan)
	sig := sym.Signature()

	if sig.Variadic {
		if len(call.Args) < len(sig.Params) {
			panic(report.Raise(report.TypeMismatch, call.Span(),
				"`%s` expects at least %d arguments, found %d",
				call.Name, len(sig.Params), len(call.Args)))
		}
	} else if len(call.Args) != len(sig.Params) {
		panic(report.Raise(report.TypeMismatch, call.Span(),
			"`%s` expects %d arguments, found %d",
			call.Name, len(sig.Params), len(call.Args)))
	}

	for i, arg := range call.Args {
		if i < len(sig.Params) {
			w.walkExpr(arg, sig.Params[i])
			w.mustEqual(sig.Params[i], arg.Type(), arg.Span())
		} else {
			// Variadic tail: any non-void value, promoted at the call site by
			// code generation.
			w.walkExpr(arg, nil)

			if types.Equals(arg.Type(), types.VoidType) {
				panic(report.Raise(report.TypeMismatch, arg.Span(),
					"cannot pass a void value"))
			}
		}
	}

	call.ResolvedName = sym.MangledName
	call.ResolvedSig = sig
	call.SetType(sig.Ret)
}

// walkMethodCall resolves a `value.method(...)` call against the receiver
// type's method set.
func (w *Walker) walkMethodCall(call *ast.Call) {
	w.walkExpr(call.Receiver, nil)

	recvType := types.InnerType(call.Receiver.Type())
	ms, ok := w.methods[recvType.Repr()]
	if !ok {
		panic(report.Raise(report.UnresolvedSymbol, call.NameSpan,
			"type %s has no method `%s`", recvType.Repr(), call.Name))
	}

	method, ok := ms.methods[call.Name]
	if !ok {
		panic(report.Raise(report.UnresolvedSymbol, call.NameSpan,
			"type %s has no method `%s`", recvType.Repr(), call.Name))
	}

	// Params[0] is the implicit self, bound to the receiver.
	fixed := method.Params[1:]
	if len(call.Args) != len(fixed) {
		panic(report.Raise(report.TypeMismatch, call.Span(),
			"`%s` expects %d arguments, found %d", call.Name, len(fixed), len(call.Args)))
	}

	w.mustEqual(method.Params[0].Type, call.Receiver.Type(), call.Receiver.Span())

	for i, arg := range call.Args {
		w.walkExpr(arg, fixed[i].Type)
		w.mustEqual(fixed[i].Type, arg.Type(), arg.Span())
	}

	sig := &types.FuncType{Ret: method.ReturnType}
	for _, param := range method.Params {
		sig.Params = append(sig.Params, param.Type)
	}

	call.ResolvedName = method.MangledName
	call.ResolvedSig = sig
	call.SetType(method.ReturnType)
}

// -----------------------------------------------------------------------------

// walkCast checks an explicit `as` cast.
func (w *Walker) walkCast(cast *ast.Cast) {
	w.walkExpr(cast.Value, nil)

	w.resolveType(cast.Target, cast.Span())
	w.mustBeConcrete(cast.Target, cast.Span())

	kind, ok := types.LegalCast(cast.Value.Type(), cast.Target)
	if !ok {
		panic(report.Raise(report.TypeMismatch, cast.Span(),
			"cannot cast %s to %s", cast.Value.Type().Repr(), cast.Target.Repr()))
	}

	cast.Kind = kind
	cast.SetType(cast.Target)
}

// walkRef checks a `ref` expression.  The operand must denote a storage
// location or be a call, whose result is spilled to a temporary slot.
func (w *Walker) walkRef(ref *ast.Ref) {
	w.walkExpr(ref.Value, nil)

	switch ref.Value.(type) {
	case *ast.Identifier, *ast.FieldAccess, *ast.IndexExpr, *ast.Deref, *ast.Call:
	default:
		panic(report.Raise(report.TypeMismatch, ref.Span(),
			"cannot take a reference to this expression"))
	}

	if types.Equals(ref.Value.Type(), types.VoidType) {
		panic(report.Raise(report.TypeMismatch, ref.Span(),
			"cannot take a reference to a void value"))
	}

	ref.SetType(&types.PointerType{Elem: ref.Value.Type()})
}

// walkDeref checks a `deref` expression.
func (w *Walker) walkDeref(deref *ast.Deref) {
	w.walkExpr(deref.Value, nil)

	pt, ok := types.InnerType(deref.Value.Type()).(*types.PointerType)
	if !ok {
		panic(report.Raise(report.TypeMismatch, deref.Span(),
			"cannot dereference type %s", deref.Value.Type().Repr()))
	}

	deref.SetType(pt.Elem)
}

// -----------------------------------------------------------------------------

// walkUnaryOp checks a prefix operator application.
func (w *Walker) walkUnaryOp(unary *ast.UnaryOp, expected types.Type) {
	switch unary.Op {
	case "-":
		w.walkExpr(unary.Operand, expected)

		pt, ok := types.InnerType(unary.Operand.Type()).(*types.PrimType)
		if !ok || !pt.IsNumeric() {
			panic(report.Raise(report.TypeMismatch, unary.Span(),
				"cannot negate type %s", unary.Operand.Type().Repr()))
		}
	case "!":
		w.walkExpr(unary.Operand, types.BoolType)
		w.mustEqual(types.BoolType, unary.Operand.Type(), unary.Operand.Span())
	}

	unary.SetType(unary.Operand.Type())
}

// walkBinaryOp checks an infix operator application.  Both operands must have
// exactly the same type; signedness and width are never mixed.
func (w *Walker) walkBinaryOp(bin *ast.BinaryOp, expected types.Type) {
	switch bin.Op {
	case "&&", "||":
		w.walkExpr(bin.LHS, types.BoolType)
		w.mustEqual(types.BoolType, bin.LHS.Type(), bin.LHS.Span())
		w.walkExpr(bin.RHS, types.BoolType)
		w.mustEqual(types.BoolType, bin.RHS.Type(), bin.RHS.Span())

		bin.SetType(types.BoolType)
	case "==", "!=", "<", "<=", ">", ">=":
		w.walkExpr(bin.LHS, nil)
		w.walkExpr(bin.RHS, bin.LHS.Type())
		w.mustEqual(bin.LHS.Type(), bin.RHS.Type(), bin.RHS.Span())

		operand := types.InnerType(bin.LHS.Type())
		if bin.Op == "==" || bin.Op == "!=" {
			if !isEquatable(operand) {
				panic(report.Raise(report.TypeMismatch, bin.Span(),
					"cannot compare values of type %s", bin.LHS.Type().Repr()))
			}
		} else if !isNumericType(operand) {
			panic(report.Raise(report.TypeMismatch, bin.Span(),
				"cannot order values of type %s", bin.LHS.Type().Repr()))
		}

		bin.SetType(types.BoolType)
	default:
		// Arithmetic, shifts, and bitwise operators.
		w.walkExpr(bin.LHS, expected)
		w.walkExpr(bin.RHS, bin.LHS.Type())
		w.mustEqual(bin.LHS.Type(), bin.RHS.Type(), bin.RHS.Span())

		operand := types.InnerType(bin.LHS.Type())

		switch bin.Op {
		case "+", "-", "*", "/":
			if !isNumericType(operand) {
				panic(report.Raise(report.TypeMismatch, bin.Span(),
					"operator `%s` requires numeric operands, found %s",
					bin.Op, bin.LHS.Type().Repr()))
			}
		case "%", "<<", ">>", "&", "|":
			if !isIntType(operand) {
				panic(report.Raise(report.TypeMismatch, bin.Span(),
					"operator `%s` requires integer operands, found %s",
					bin.Op, bin.LHS.Type().Repr()))
			}
		}

		bin.SetType(bin.LHS.Type())
	}
}

func isNumericType(typ types.Type) bool {
	pt, ok := typ.(*types.PrimType)
	return ok && pt.IsNumeric()
}

func isIntType(typ types.Type) bool {
	pt, ok := typ.(*types.PrimType)
	return ok && pt.IsInt()
}

func isEquatable(typ types.Type) bool {
	switch v := typ.(type) {
	case *types.PrimType:
		return v.IsNumeric() || v.Kind == types.PrimBool
	case *types.EnumType:
		return true
	}

	return false
}
