package depm

import (
	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// SymKind indicates what kind of item a symbol corresponds to.
type SymKind int

const (
	// SymFunc symbols are functions and external declarations.
	SymFunc SymKind = iota

	// SymType symbols are structs and enums.
	SymType

	// SymTrait symbols are traits.
	SymTrait
)

// Symbol represents one globally defined Fog symbol.  Functions may have
// several symbols under the same name as long as their feature predicates are
// disjoint; all other kinds are unique per name.
type Symbol struct {
	Name string

	// The name of the project the symbol is defined in.
	Project string

	// The name the symbol is emitted under.  Assigned during analysis: publib
	// and external symbols keep their source name, everything else is prefixed
	// with its project.
	MangledName string

	Kind       SymKind
	Visibility ast.Visibility

	// The type of the symbol: the signature for SymFunc, the defined type for
	// SymType and SymTrait.
	Type types.Type

	// The feature flags gating this symbol.  Empty for symbols that are always
	// defined.  Only functions may be gated.
	Features []string

	// The position of the identifier that defines the symbol.
	DefSpan *report.TextSpan

	// The representative path of the file the symbol is defined in.
	DefFile string

	// Whether the symbol is an external declaration linked by name.
	External bool

	// Whether the external declaration is variadic.
	Variadic bool
}

// Signature returns the symbol's function signature.  It must only be called
// on SymFunc symbols.
func (s *Symbol) Signature() *types.FuncType {
	return types.InnerType(s.Type).(*types.FuncType)
}

// GatedBy returns whether the symbol is gated by the given feature flag.
func (s *Symbol) GatedBy(feature string) bool {
	for _, f := range s.Features {
		if f == feature {
			return true
		}
	}

	return false
}

// EnabledFor returns whether the symbol is defined under the given enabled
// feature set.  Ungated symbols are always defined.
func (s *Symbol) EnabledFor(enabled map[string]bool) bool {
	if len(s.Features) == 0 {
		return true
	}

	for _, f := range s.Features {
		if enabled[f] {
			return true
		}
	}

	return false
}
