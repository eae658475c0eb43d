package codegen

import (
	"strconv"
	"strings"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/types"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"
)

// genExpr generates an expression and returns its value.
func (g *Generator) genExpr(expr ast.Expr) llvalue.Value {
	switch v := expr.(type) {
	case *ast.Literal:
		return g.genLiteral(v)
	case *ast.Identifier:
		slot := g.lookupLocal(v.Name, v.Span())
		return g.block.NewLoad(g.convType(v.Type()), slot)
	case *ast.StaticAccess:
		return constant.NewInt(g.convType(v.Type()).(*lltypes.IntType), v.Value)
	case *ast.FieldAccess:
		return g.block.NewLoad(g.convType(v.Type()), g.genFieldAddr(v))
	case *ast.IndexExpr:
		return g.block.NewLoad(g.convType(v.Type()), g.genIndexAddr(v))
	case *ast.ArrayLit:
		return g.genArrayLit(v)
	case *ast.StructLit:
		return g.genStructLit(v)
	case *ast.Call:
		return g.genCall(v)
	case *ast.Cast:
		return g.genCast(v)
	case *ast.Ref:
		return g.addrOf(v.Value)
	case *ast.Deref:
		ptr := g.genExpr(v.Value)
		return g.block.NewLoad(g.convType(v.Type()), ptr)
	case *ast.UnaryOp:
		return g.genUnaryOp(v)
	case *ast.BinaryOp:
		return g.genBinaryOp(v)
	default:
		raiseICE(expr.Span(), "expression cannot be generated")
		return nil
	}
}

// genLiteral generates a literal constant.  Numeric literals were range
// checked during analysis, so parse failures here are internal defects.
func (g *Generator) genLiteral(lit *ast.Literal) llvalue.Value {
	switch lit.Kind {
	case ast.LitInt:
		pt := mustPrim(lit.Type(), lit.Span())
		lltyp := g.convType(lit.Type())

		// An integer literal may have adopted a float type from its context.
		if pt.IsFloat() {
			n, err := strconv.ParseUint(lit.Value, 0, 64)
			if err != nil {
				raiseICE(lit.Span(), "malformed integer literal `%s`", lit.Value)
			}

			return constant.NewFloat(lltyp.(*lltypes.FloatType), float64(n))
		}

		var n int64
		if pt.IsSigned() {
			sn, err := strconv.ParseInt(lit.Value, 0, 64)
			if err != nil {
				raiseICE(lit.Span(), "malformed integer literal `%s`", lit.Value)
			}

			n = sn
		} else {
			un, err := strconv.ParseUint(lit.Value, 0, 64)
			if err != nil {
				raiseICE(lit.Span(), "malformed integer literal `%s`", lit.Value)
			}

			n = int64(un)
		}

		return constant.NewInt(lltyp.(*lltypes.IntType), n)
	case ast.LitFloat:
		n, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			raiseICE(lit.Span(), "malformed float literal `%s`", lit.Value)
		}

		return constant.NewFloat(g.convType(lit.Type()).(*lltypes.FloatType), n)
	case ast.LitBool:
		return constant.NewBool(lit.Value == "true")
	case ast.LitString:
		global := g.internString(decodeEscapes(lit.Value))

		zero := constant.NewInt(lltypes.I64, 0)
		return constant.NewGetElementPtr(global.ContentType, global, zero, zero)
	}

	raiseICE(lit.Span(), "literal cannot be generated")
	return nil
}

// decodeEscapes converts the raw source text of a string literal into the
// bytes it denotes.
func decodeEscapes(raw string) string {
	sb := &strings.Builder{}

	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			sb.WriteByte(raw[i])
			continue
		}

		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '0':
			sb.WriteByte(0)
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'x':
			n, _ := strconv.ParseUint(raw[i+1:i+3], 16, 8)
			sb.WriteByte(byte(n))
			i += 2
		}
	}

	return sb.String()
}

// -----------------------------------------------------------------------------

// genArrayLit generates an array literal through a temporary stack slot.
func (g *Generator) genArrayLit(lit *ast.ArrayLit) llvalue.Value {
	lltyp := g.convType(lit.Type())
	slot := g.alloca(lltyp)

	for i, elem := range lit.Elems {
		addr := g.block.NewGetElementPtr(
			lltyp, slot,
			constant.NewInt(lltypes.I64, 0),
			constant.NewInt(lltypes.I64, int64(i)),
		)
		g.block.NewStore(g.genExpr(elem), addr)
	}

	return g.block.NewLoad(lltyp, slot)
}

// genStructLit generates a struct literal through a temporary stack slot.
// Fields are stored in initializer order at their declaration indices.
func (g *Generator) genStructLit(lit *ast.StructLit) llvalue.Value {
	st, ok := types.InnerType(lit.Type()).(*types.StructType)
	if !ok {
		raiseICE(lit.Span(), "struct literal of non-struct type %s", lit.Type().Repr())
	}

	lltyp := g.convType(lit.Type())
	slot := g.alloca(lltyp)

	for _, init := range lit.Inits {
		ndx := st.FieldIndex(init.Name)
		if ndx == -1 {
			raiseICE(init.Span, "unknown field `%s` reached codegen", init.Name)
		}

		addr := g.block.NewGetElementPtr(
			lltyp, slot,
			constant.NewInt(lltypes.I64, 0),
			constant.NewInt(lltypes.I32, int64(ndx)),
		)
		g.block.NewStore(g.genExpr(init.Value), addr)
	}

	return g.block.NewLoad(lltyp, slot)
}

// -----------------------------------------------------------------------------

// genCall generates a function or method call.  Method receivers pass as the
// leading argument; arguments beyond a variadic signature's fixed parameters
// get the C default promotions.
func (g *Generator) genCall(call *ast.Call) llvalue.Value {
	f, ok := g.funcs[call.ResolvedName]
	if !ok {
		raiseICE(call.NameSpan, "call to `%s` resolved to an undeclared function", call.Name)
	}

	var args []llvalue.Value
	if call.Receiver != nil {
		args = append(args, g.genExpr(call.Receiver))
	}

	fixed := len(call.ResolvedSig.Params) - len(args)
	for i, arg := range call.Args {
		value := g.genExpr(arg)
		if i >= fixed {
			value = g.promoteVariadic(value, arg)
		}

		args = append(args, value)
	}

	return g.block.NewCall(f, args...)
}

// promoteVariadic applies the C default argument promotions to a value passed
// in the variadic tail of a call: small integers widen to 32 bits and floats
// widen to double.
func (g *Generator) promoteVariadic(value llvalue.Value, arg ast.Expr) llvalue.Value {
	pt, ok := types.InnerType(arg.Type()).(*types.PrimType)
	if !ok {
		return value
	}

	switch {
	case pt.Kind == types.PrimBool:
		return g.block.NewZExt(value, lltypes.I32)
	case pt.IsInt() && pt.BitWidth() < 32:
		if pt.IsSigned() {
			return g.block.NewSExt(value, lltypes.I32)
		}

		return g.block.NewZExt(value, lltypes.I32)
	case pt.IsFloat() && pt.BitWidth() < 64:
		return g.block.NewFPExt(value, lltypes.Double)
	default:
		return value
	}
}

// -----------------------------------------------------------------------------

// genCast generates an explicit conversion using the cast kind computed
// during analysis.
func (g *Generator) genCast(cast *ast.Cast) llvalue.Value {
	value := g.genExpr(cast.Value)
	dst := g.convType(cast.Type())

	switch cast.Kind {
	case types.CastIdentity, types.CastEnumToInt:
		return value
	case types.CastTrunc:
		return g.block.NewTrunc(value, dst)
	case types.CastSExt:
		return g.block.NewSExt(value, dst)
	case types.CastZExt, types.CastBoolExt:
		return g.block.NewZExt(value, dst)
	case types.CastFPTrunc:
		return g.block.NewFPTrunc(value, dst)
	case types.CastFPExt:
		return g.block.NewFPExt(value, dst)
	case types.CastSIToFP:
		return g.block.NewSIToFP(value, dst)
	case types.CastUIToFP:
		return g.block.NewUIToFP(value, dst)
	case types.CastFPToSI:
		return g.block.NewFPToSI(value, dst)
	case types.CastFPToUI:
		return g.block.NewFPToUI(value, dst)
	default:
		raiseICE(cast.Span(), "cast cannot be generated")
		return nil
	}
}

// -----------------------------------------------------------------------------

// genUnaryOp generates a prefix operator application.
func (g *Generator) genUnaryOp(op *ast.UnaryOp) llvalue.Value {
	operand := g.genExpr(op.Operand)

	switch op.Op {
	case "-":
		pt := mustPrim(op.Type(), op.Span())
		if pt.IsFloat() {
			return g.block.NewFNeg(operand)
		}

		zero := constant.NewInt(g.convType(op.Type()).(*lltypes.IntType), 0)
		return g.block.NewSub(zero, operand)
	case "!":
		return g.block.NewXor(operand, constant.True)
	default:
		raiseICE(op.Span(), "unary operator `%s` cannot be generated", op.Op)
		return nil
	}
}

// genBinaryOp generates an infix operator application.  Both operands are
// always evaluated; `&&` and `||` lower to bitwise operations on `i1`.
func (g *Generator) genBinaryOp(op *ast.BinaryOp) llvalue.Value {
	lhs := g.genExpr(op.LHS)
	rhs := g.genExpr(op.RHS)

	switch op.Op {
	case "&&":
		return g.block.NewAnd(lhs, rhs)
	case "||":
		return g.block.NewOr(lhs, rhs)
	case "==", "!=", "<", "<=", ">", ">=":
		return g.genComparison(op, lhs, rhs)
	}

	pt := mustPrim(op.LHS.Type(), op.Span())

	switch op.Op {
	case "+":
		if pt.IsFloat() {
			return g.block.NewFAdd(lhs, rhs)
		}

		return g.block.NewAdd(lhs, rhs)
	case "-":
		if pt.IsFloat() {
			return g.block.NewFSub(lhs, rhs)
		}

		return g.block.NewSub(lhs, rhs)
	case "*":
		if pt.IsFloat() {
			return g.block.NewFMul(lhs, rhs)
		}

		return g.block.NewMul(lhs, rhs)
	case "/":
		switch {
		case pt.IsFloat():
			return g.block.NewFDiv(lhs, rhs)
		case pt.IsSigned():
			return g.block.NewSDiv(lhs, rhs)
		default:
			return g.block.NewUDiv(lhs, rhs)
		}
	case "%":
		if pt.IsSigned() {
			return g.block.NewSRem(lhs, rhs)
		}

		return g.block.NewURem(lhs, rhs)
	case "<<":
		return g.block.NewShl(lhs, rhs)
	case ">>":
		if pt.IsSigned() {
			return g.block.NewAShr(lhs, rhs)
		}

		return g.block.NewLShr(lhs, rhs)
	case "&":
		return g.block.NewAnd(lhs, rhs)
	case "|":
		return g.block.NewOr(lhs, rhs)
	default:
		raiseICE(op.Span(), "binary operator `%s` cannot be generated", op.Op)
		return nil
	}
}

// genComparison generates a comparison operator.  Integer orderings pick
// signed or unsigned predicates from the operand type; float comparisons use
// the ordered predicates.
func (g *Generator) genComparison(op *ast.BinaryOp, lhs, rhs llvalue.Value) llvalue.Value {
	operandType := types.InnerType(op.LHS.Type())
	if et, ok := operandType.(*types.EnumType); ok {
		operandType = et.Backing
	}

	pt, ok := operandType.(*types.PrimType)
	if !ok {
		raiseICE(op.Span(), "comparison of non-primitive type %s", op.LHS.Type().Repr())
	}

	if pt.IsFloat() {
		var pred enum.FPred
		switch op.Op {
		case "==":
			pred = enum.FPredOEQ
		case "!=":
			pred = enum.FPredONE
		case "<":
			pred = enum.FPredOLT
		case "<=":
			pred = enum.FPredOLE
		case ">":
			pred = enum.FPredOGT
		case ">=":
			pred = enum.FPredOGE
		}

		return g.block.NewFCmp(pred, lhs, rhs)
	}

	signed := pt.IsSigned()

	var pred enum.IPred
	switch op.Op {
	case "==":
		pred = enum.IPredEQ
	case "!=":
		pred = enum.IPredNE
	case "<":
		pred = pick(signed, enum.IPredSLT, enum.IPredULT)
	case "<=":
		pred = pick(signed, enum.IPredSLE, enum.IPredULE)
	case ">":
		pred = pick(signed, enum.IPredSGT, enum.IPredUGT)
	case ">=":
		pred = pick(signed, enum.IPredSGE, enum.IPredUGE)
	}

	return g.block.NewICmp(pred, lhs, rhs)
}

func pick(signed bool, s, u enum.IPred) enum.IPred {
	if signed {
		return s
	}

	return u
}

// -----------------------------------------------------------------------------

// genLValueAddr returns the address of an assignable location.
func (g *Generator) genLValueAddr(expr ast.Expr) llvalue.Value {
	switch v := expr.(type) {
	case *ast.Identifier:
		return g.lookupLocal(v.Name, v.Span())
	case *ast.FieldAccess:
		return g.genFieldAddr(v)
	case *ast.IndexExpr:
		return g.genIndexAddr(v)
	case *ast.Deref:
		return g.genExpr(v.Value)
	default:
		raiseICE(expr.Span(), "expression is not addressable")
		return nil
	}
}

// addrOf returns an address holding the value of an expression.  Assignable
// locations yield their own address; other values spill to a fresh stack slot.
func (g *Generator) addrOf(expr ast.Expr) llvalue.Value {
	switch expr.(type) {
	case *ast.Identifier, *ast.FieldAccess, *ast.IndexExpr, *ast.Deref:
		return g.genLValueAddr(expr)
	default:
		slot := g.alloca(g.convType(expr.Type()))
		g.block.NewStore(g.genExpr(expr), slot)

		return slot
	}
}

// genFieldAddr returns the address of a struct field.
func (g *Generator) genFieldAddr(fa *ast.FieldAccess) llvalue.Value {
	if fa.FieldIndex == -1 {
		raiseICE(fa.Span(), "field access reached codegen unresolved")
	}

	return g.block.NewGetElementPtr(
		g.convType(fa.Root.Type()),
		g.addrOf(fa.Root),
		constant.NewInt(lltypes.I64, 0),
		constant.NewInt(lltypes.I32, int64(fa.FieldIndex)),
	)
}

// genIndexAddr returns the address of an array element.
func (g *Generator) genIndexAddr(ie *ast.IndexExpr) llvalue.Value {
	return g.block.NewGetElementPtr(
		g.convType(ie.Root.Type()),
		g.addrOf(ie.Root),
		constant.NewInt(lltypes.I64, 0),
		g.genExpr(ie.Index),
	)
}
