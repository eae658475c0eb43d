package ast

import (
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// Visibility enumerates the three visibility levels an item can be declared
// with.
type Visibility int

const (
	// VisPriv items are visible only inside their own project.
	VisPriv Visibility = iota

	// VisPub items are visible to projects that import them.
	VisPub

	// VisPublib items are additionally exported unmangled from the produced
	// artifact so external code can link against them.
	VisPublib
)

// Hint is a code generation hint attached to a function definition.
type Hint int

const (
	HintInline Hint = iota
	HintCold
	HintNoFree
	HintNoUnwind
)

// Def is the interface for all top-level items of a source file.
type Def interface {
	ASTNode
}

// File is the AST of one parsed source file.
type File struct {
	// The absolute path to the file on disk.
	AbsPath string

	// The path used to represent the file in diagnostics, relative to the
	// project root.
	ReprPath string

	// The file imports in source order.
	Imports []*ImportDef

	// The non-import items in source order.
	Defs []Def
}

// -----------------------------------------------------------------------------

// Param is one declared parameter of a function or external declaration.
type Param struct {
	Name string
	Type types.Type

	// The span of the parameter name.
	Span *report.TextSpan
}

// FuncDef is a function definition.
type FuncDef struct {
	ASTBase

	Name       string
	NameSpan   *report.TextSpan
	Visibility Visibility
	Params     []Param
	ReturnType types.Type

	// The feature flags gating this definition.  An empty list means the
	// function is always defined; a non-empty list makes this one overload of
	// its name, compiled in only when one of the listed features is enabled.
	Features []string

	// Code generation hints applied via annotations.
	Hints []Hint

	Body *Block

	// The mangled symbol name assigned during analysis.
	MangledName string
}

// HasHint returns whether the function carries the given hint.
func (fd *FuncDef) HasHint(hint Hint) bool {
	for _, h := range fd.Hints {
		if h == hint {
			return true
		}
	}

	return false
}

// ExternalDef declares a function defined outside the project, linked by its
// unmangled name.
type ExternalDef struct {
	ASTBase

	Name       string
	NameSpan   *report.TextSpan
	Params     []Param
	ReturnType types.Type

	// Whether the declaration accepts extra arguments past the fixed
	// parameters, written as a trailing `...`.
	Variadic bool
}

// -----------------------------------------------------------------------------

// StructDef is a struct definition.  The field list lives on Type; the
// definition node carries the declaration site and visibility.
type StructDef struct {
	ASTBase

	Name       string
	NameSpan   *report.TextSpan
	Visibility Visibility

	// The declared struct type.  Field types referring to other named types
	// are opaque until analysis resolves them.
	Type *types.StructType
}

// VariantDef is one declared variant of an enum.
type VariantDef struct {
	Name string
	Span *report.TextSpan

	// The explicitly assigned backing value, if any.  Variants without an
	// explicit value take the previous variant's value plus one.
	Value    int64
	HasValue bool
}

// EnumDef is an enum definition.
type EnumDef struct {
	ASTBase

	Name       string
	NameSpan   *report.TextSpan
	Visibility Visibility

	// The declared backing integer type.  Defaults to `int`.
	Backing types.Type

	Variants []VariantDef

	// The resolved enum type, populated during analysis.
	Type *types.EnumType
}

// -----------------------------------------------------------------------------

// TraitMethodDef is one required method signature inside a trait definition.
type TraitMethodDef struct {
	Name string
	Span *report.TextSpan
	Sig  *types.FuncType
}

// TraitDef is a trait definition: a named set of required method signatures.
type TraitDef struct {
	ASTBase

	Name       string
	NameSpan   *report.TextSpan
	Visibility Visibility
	Methods    []TraitMethodDef
}

// ExtendDef attaches methods to a named type, optionally implementing a trait.
type ExtendDef struct {
	ASTBase

	// The name of the struct or enum being extended.
	TargetName string
	TargetSpan *report.TextSpan

	// The trait being implemented, or empty for an inherent extension.
	TraitName string

	Methods []*FuncDef
}

// -----------------------------------------------------------------------------

// ImportDef is an import item in one of its two forms: a dependency symbol
// import `import dep::name;` or a file inclusion `import "path.f";`.
type ImportDef struct {
	ASTBase

	// The dependency and symbol for a dependency import.
	Dep    string
	Symbol string

	// The relative path for a file import.  Empty for dependency imports.
	File string
}
