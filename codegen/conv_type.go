package codegen

import (
	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/types"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
)

// defineTypes lowers the unit's declared struct types to named LLVM types.
// Every struct is registered before any body is filled in, so a field may
// reference a struct defined later in the unit or, through a pointer, its own
// struct.  Enums lower to their backing integer type and need no definition.
func (g *Generator) defineTypes() {
	var defs []*ast.StructDef

	for _, mod := range g.unit.Modules {
		for _, def := range mod.File.Defs {
			if sd, ok := def.(*ast.StructDef); ok {
				g.typeDefs[sd.Type.Name] = g.mod.NewTypeDef(sd.Type.Name, lltypes.NewStruct())
				defs = append(defs, sd)
			}
		}
	}

	for _, sd := range defs {
		st := g.typeDefs[sd.Type.Name].(*lltypes.StructType)
		for _, field := range sd.Type.Fields {
			st.Fields = append(st.Fields, g.convType(field.Type))
		}
	}
}

// convType lowers a Fog type to its LLVM representation.  Strings lower to
// null-terminated `i8*` so that external C functions can consume them
// directly.
func (g *Generator) convType(typ types.Type) lltypes.Type {
	switch v := types.InnerType(typ).(type) {
	case *types.PrimType:
		return convPrimType(v)
	case *types.PointerType:
		return lltypes.NewPointer(g.convType(v.Elem))
	case *types.ArrayType:
		return lltypes.NewArray(uint64(v.Len), g.convType(v.Elem))
	case *types.StructType:
		lltyp, ok := g.typeDefs[v.Name]
		if !ok {
			raiseICE(nil, "struct `%s` reached codegen without a definition", v.Name)
		}

		return lltyp
	case *types.EnumType:
		return convPrimType(v.Backing)
	default:
		raiseICE(nil, "type %s cannot be lowered", typ.Repr())
		return nil
	}
}

func convPrimType(pt *types.PrimType) lltypes.Type {
	switch pt.Kind {
	case types.PrimU8:
		return lltypes.I8
	case types.PrimI16, types.PrimU16:
		return lltypes.I16
	case types.PrimI32, types.PrimU32:
		return lltypes.I32
	case types.PrimI64, types.PrimU64:
		return lltypes.I64
	case types.PrimF16:
		return lltypes.Half
	case types.PrimF32:
		return lltypes.Float
	case types.PrimF64:
		return lltypes.Double
	case types.PrimBool:
		return lltypes.I1
	case types.PrimString:
		return lltypes.I8Ptr
	case types.PrimVoid:
		return lltypes.Void
	}

	// unreachable
	return nil
}

// -----------------------------------------------------------------------------

// newCharArray builds the constant character array backing a string global.
func newCharArray(contents string) *constant.CharArray {
	return constant.NewCharArrayFromString(contents)
}
