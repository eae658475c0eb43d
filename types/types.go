package types

import (
	"fmt"
	"strings"
)

// Type is the interface implemented by all Fog data types.  Two types are
// equal iff they are structurally equal after name references have been
// resolved; Equals implements that comparison.
type Type interface {
	// Repr returns the source-level representation of the type.
	Repr() string

	// equals returns whether this type is exactly equal to other.  Use the
	// package-level Equals function instead of calling this directly.
	equals(other Type) bool
}

// Equals returns whether two types are exactly equal.  There are no implicit
// conversions anywhere in the language: assignment, parameter passing, and
// arithmetic all require exact equality.
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}

	return InnerType(a).equals(InnerType(b))
}

// InnerType unwraps any resolved opaque type references wrapping typ.
func InnerType(typ Type) Type {
	if ot, ok := typ.(*OpaqueType); ok && ot.Value != nil {
		return InnerType(ot.Value)
	}

	return typ
}

// -----------------------------------------------------------------------------

// PrimKind enumerates the primitive types.
type PrimKind int

const (
	PrimU8 PrimKind = iota
	PrimI16
	PrimU16
	PrimI32
	PrimU32
	PrimI64
	PrimU64
	PrimF16
	PrimF32
	PrimF64
	PrimBool
	PrimString
	PrimVoid
)

// PrimType is a primitive Fog type: a sized integer or float, bool, string, or
// void.
type PrimType struct {
	Kind PrimKind
}

// The shared instances of the primitive types.  Primitives carry no state, so
// every use of `int` refers to the same value.
var (
	U8Type     = &PrimType{PrimU8}
	I16Type    = &PrimType{PrimI16}
	U16Type    = &PrimType{PrimU16}
	I32Type    = &PrimType{PrimI32}
	U32Type    = &PrimType{PrimU32}
	I64Type    = &PrimType{PrimI64}
	U64Type    = &PrimType{PrimU64}
	F16Type    = &PrimType{PrimF16}
	F32Type    = &PrimType{PrimF32}
	F64Type    = &PrimType{PrimF64}
	BoolType   = &PrimType{PrimBool}
	StringType = &PrimType{PrimString}
	VoidType   = &PrimType{PrimVoid}
)

// The source-level spellings of the primitive types, ordered by PrimKind.
var primReprs = [...]string{
	"uintsmall", "inthalf", "uinthalf", "int", "uint", "intlong", "uintlong",
	"floathalf", "float", "floatlong", "bool", "string", "void",
}

func (pt *PrimType) Repr() string {
	return primReprs[pt.Kind]
}

func (pt *PrimType) equals(other Type) bool {
	if opt, ok := other.(*PrimType); ok {
		return pt.Kind == opt.Kind
	}

	return false
}

// IsInt returns whether the primitive is an integer type.
func (pt *PrimType) IsInt() bool {
	return pt.Kind <= PrimU64
}

// IsSigned returns whether the primitive is a signed integer type.
func (pt *PrimType) IsSigned() bool {
	switch pt.Kind {
	case PrimI16, PrimI32, PrimI64:
		return true
	}

	return false
}

// IsFloat returns whether the primitive is a floating-point type.
func (pt *PrimType) IsFloat() bool {
	return pt.Kind == PrimF16 || pt.Kind == PrimF32 || pt.Kind == PrimF64
}

// IsNumeric returns whether the primitive is an integer or float type.
func (pt *PrimType) IsNumeric() bool {
	return pt.IsInt() || pt.IsFloat()
}

// BitWidth returns the bit width of a numeric or boolean primitive.
func (pt *PrimType) BitWidth() int {
	switch pt.Kind {
	case PrimU8:
		return 8
	case PrimI16, PrimU16, PrimF16:
		return 16
	case PrimI32, PrimU32, PrimF32:
		return 32
	case PrimI64, PrimU64, PrimF64:
		return 64
	case PrimBool:
		return 1
	}

	return 0
}

// -----------------------------------------------------------------------------

// PointerType is a typed pointer: `ptr<T>`.
type PointerType struct {
	Elem Type
}

func (pt *PointerType) Repr() string {
	return fmt.Sprintf("ptr<%s>", pt.Elem.Repr())
}

func (pt *PointerType) equals(other Type) bool {
	if opt, ok := other.(*PointerType); ok {
		return Equals(pt.Elem, opt.Elem)
	}

	return false
}

// -----------------------------------------------------------------------------

// ArrayType is a fixed-length array: `array<T, N>`.
type ArrayType struct {
	Elem Type
	Len  int
}

func (at *ArrayType) Repr() string {
	return fmt.Sprintf("array<%s, %d>", at.Elem.Repr(), at.Len)
}

func (at *ArrayType) equals(other Type) bool {
	if oat, ok := other.(*ArrayType); ok {
		return at.Len == oat.Len && Equals(at.Elem, oat.Elem)
	}

	return false
}

// -----------------------------------------------------------------------------

// OpaqueType represents a possibly unresolved reference to a named type.  The
// parser produces opaque types for every named type label; the semantic
// analyzer fills in Value once the referenced definition is known.
type OpaqueType struct {
	// The name of the type referenced by the opaque type.
	Name string

	// The resolved type of this opaque type.  Nil until resolution.
	Value Type
}

func (ot *OpaqueType) Repr() string {
	return ot.Name
}

func (ot *OpaqueType) equals(other Type) bool {
	// An unresolved opaque type is equal to nothing, not even itself.
	return false
}

// -----------------------------------------------------------------------------

// StructField is one named field of a struct, in declaration order.
type StructField struct {
	Name string
	Type Type
}

// StructType is a resolved struct type.  Field order is declaration order and
// is significant: it determines the layout of the lowered aggregate.
type StructType struct {
	// The name of the struct prefixed by the project it was declared in; used
	// to identify the struct across modules.
	Name string

	Fields []StructField
}

func (st *StructType) Repr() string {
	return st.Name
}

func (st *StructType) equals(other Type) bool {
	ost, ok := other.(*StructType)
	if !ok || st.Name != ost.Name || len(st.Fields) != len(ost.Fields) {
		return false
	}

	for i, field := range st.Fields {
		if field.Name != ost.Fields[i].Name || !Equals(field.Type, ost.Fields[i].Type) {
			return false
		}
	}

	return true
}

// FieldIndex returns the declaration index of the named field or -1 if the
// struct has no such field.
func (st *StructType) FieldIndex(name string) int {
	for i, field := range st.Fields {
		if field.Name == name {
			return i
		}
	}

	return -1
}

// -----------------------------------------------------------------------------

// EnumVariant is one named variant of an enum with its resolved backing value.
type EnumVariant struct {
	Name  string
	Value int64
}

// EnumType is a resolved enum type.  Enum values are represented as their
// backing integer type.
type EnumType struct {
	Name string

	// The integer type backing the enum.  Defaults to `int`.
	Backing *PrimType

	Variants []EnumVariant
}

func (et *EnumType) Repr() string {
	return et.Name
}

func (et *EnumType) equals(other Type) bool {
	if oet, ok := other.(*EnumType); ok {
		return et.Name == oet.Name && Equals(et.Backing, oet.Backing)
	}

	return false
}

// Variant returns the variant with the given name, if any.
func (et *EnumType) Variant(name string) (EnumVariant, bool) {
	for _, v := range et.Variants {
		if v.Name == name {
			return v, true
		}
	}

	return EnumVariant{}, false
}

// -----------------------------------------------------------------------------

// TraitType is a resolved trait: a named set of function signatures.  Traits
// are not concrete value types; they only constrain extend blocks.
type TraitType struct {
	Name string

	// The required function signatures in declaration order.
	Methods []TraitMethod
}

// TraitMethod is one required function signature of a trait.
type TraitMethod struct {
	Name string
	Sig  *FuncType
}

func (tt *TraitType) Repr() string {
	return tt.Name
}

func (tt *TraitType) equals(other Type) bool {
	if ott, ok := other.(*TraitType); ok {
		return tt.Name == ott.Name
	}

	return false
}

// -----------------------------------------------------------------------------

// FuncType is the type of a function: used for declared functions, external
// declarations, and trait method signatures.
type FuncType struct {
	Params []Type
	Ret    Type

	// Whether the function accepts additional arguments past the fixed
	// parameter list.  Only external declarations may be variadic.
	Variadic bool
}

func (ft *FuncType) Repr() string {
	params := make([]string, len(ft.Params))
	for i, param := range ft.Params {
		params[i] = param.Repr()
	}

	if ft.Variadic {
		params = append(params, "...")
	}

	return fmt.Sprintf("function(%s): %s", strings.Join(params, ", "), ft.Ret.Repr())
}

func (ft *FuncType) equals(other Type) bool {
	oft, ok := other.(*FuncType)
	if !ok || len(ft.Params) != len(oft.Params) || ft.Variadic != oft.Variadic {
		return false
	}

	for i, param := range ft.Params {
		if !Equals(param, oft.Params[i]) {
			return false
		}
	}

	return Equals(ft.Ret, oft.Ret)
}
