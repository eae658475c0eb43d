package depm

import (
	"sort"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/report"
)

// SymbolTable is the global symbol table of one Fog project.  It stores every
// top-level symbol the project defines, keyed by source name; function names
// may map to several candidates distinguished by feature predicates.  The
// table is filled during parsing and becomes immutable once its project
// finishes analysis, after which dependent projects may read it freely.
type SymbolTable struct {
	syms map[string][]*Symbol

	// Names in first-definition order so that iteration is deterministic.
	order []string
}

// NewSymbolTable creates a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{syms: make(map[string][]*Symbol)}
}

// Define adds a symbol to the table.  Two function candidates may share a name
// only if both are feature gated and their feature sets are disjoint; any
// other collision raises DuplicateDefinition.
func (st *SymbolTable) Define(sym *Symbol) {
	existing, ok := st.syms[sym.Name]
	if !ok {
		st.syms[sym.Name] = []*Symbol{sym}
		st.order = append(st.order, sym.Name)
		return
	}

	for _, prev := range existing {
		if prev.Kind != SymFunc || sym.Kind != SymFunc {
			panic(report.Raise(report.DuplicateDefinition, sym.DefSpan,
				"multiple symbols named `%s` declared in scope", sym.Name))
		}

		if len(prev.Features) == 0 || len(sym.Features) == 0 {
			panic(report.Raise(report.DuplicateDefinition, sym.DefSpan,
				"overloads of `%s` must all be feature gated", sym.Name))
		}

		for _, f := range sym.Features {
			if prev.GatedBy(f) {
				panic(report.Raise(report.DuplicateDefinition, sym.DefSpan,
					"overload of `%s` repeats feature `%s`", sym.Name, f))
			}
		}
	}

	st.syms[sym.Name] = append(existing, sym)
}

// Candidates returns all symbols defined under the given name, in definition
// order.  The returned slice must not be mutated.
func (st *SymbolTable) Candidates(name string) []*Symbol {
	return st.syms[name]
}

// Names returns the defined names in first-definition order.
func (st *SymbolTable) Names() []string {
	return st.order
}

// Exported returns the non-private symbols of the table sorted by name.
func (st *SymbolTable) Exported() []*Symbol {
	var exported []*Symbol
	for _, name := range st.order {
		for _, sym := range st.syms[name] {
			if sym.Visibility != ast.VisPriv {
				exported = append(exported, sym)
			}
		}
	}

	sort.SliceStable(exported, func(i, j int) bool {
		return exported[i].Name < exported[j].Name
	})

	return exported
}

// Publish returns the table of symbols visible to dependent projects: only
// `publib` symbols cross the project boundary.
func (st *SymbolTable) Publish() *SymbolTable {
	published := NewSymbolTable()
	for _, name := range st.order {
		for _, sym := range st.syms[name] {
			if sym.Visibility == ast.VisPublib {
				published.syms[sym.Name] = append(published.syms[sym.Name], sym)
			}
		}

		if _, ok := published.syms[name]; ok {
			published.order = append(published.order, name)
		}
	}

	return published
}
