package walk

import (
	"strings"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// Walker performs semantic analysis on the modules of one compilation unit:
// name resolution, feature-filtered overload resolution, type checking, and
// AST annotation for code generation.
type Walker struct {
	unit *depm.Unit
	rep  *report.Reporter

	// mod is the module currently being walked.
	mod *depm.Module

	// methods maps qualified type names to the method sets collected from the
	// unit's extend blocks.
	methods map[string]*methodSet

	// The stack of local scopes used to look up variables.
	localScopes []map[string]*localVar

	// The return type of the enclosing function.
	enclosingReturnType types.Type

	// The number of loops enclosing the current statement.
	loopDepth int
}

// localVar is one local variable or parameter in scope.
type localVar struct {
	Name string
	Type types.Type

	// Whether the variable is a function parameter.
	IsParam bool
}

// methodSet is the set of methods attached to one named type, in declaration
// order.
type methodSet struct {
	order   []string
	methods map[string]*ast.FuncDef

	// traits records the trait names the type implements, so that a second
	// implementation of the same trait is rejected.
	traits map[string]bool
}

func newMethodSet() *methodSet {
	return &methodSet{
		methods: make(map[string]*ast.FuncDef),
		traits:  make(map[string]bool),
	}
}

// -----------------------------------------------------------------------------

// pushScope pushes a new local scope onto the scope stack.
func (w *Walker) pushScope() {
	w.localScopes = append(w.localScopes, make(map[string]*localVar))
}

// popScope pops the top local scope off the scope stack.
func (w *Walker) popScope() {
	w.localScopes = w.localScopes[:len(w.localScopes)-1]
}

// defineLocal defines a local variable in the current scope.  Shadowing an
// outer scope is allowed; redefinition within one scope is not.
func (w *Walker) defineLocal(lv *localVar, span *report.TextSpan) {
	currScope := w.localScopes[len(w.localScopes)-1]

	if _, ok := currScope[lv.Name]; ok {
		panic(report.Raise(report.DuplicateDefinition, span,
			"multiple variables named `%s` declared in scope", lv.Name))
	}

	currScope[lv.Name] = lv
}

// lookupLocal looks up a local variable, traversing the scopes in reverse
// order to implement shadowing.  It returns nil if no variable is found.
func (w *Walker) lookupLocal(name string) *localVar {
	for i := len(w.localScopes) - 1; i > -1; i-- {
		if lv, ok := w.localScopes[i][name]; ok {
			return lv
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// lookupFunc resolves a function name to exactly one enabled candidate.  The
// candidates of the name are filtered by the unit's enabled feature set: no
// survivor is an unresolved symbol, several survivors are an ambiguous
// overload.  A non-empty qualifier restricts the search to the named
// dependency's exports; otherwise the project table is searched first and the
// imports of the current module second.
func (w *Walker) lookupFunc(qualifier, name string, span *report.TextSpan) *depm.Symbol {
	var candidates []*depm.Symbol

	if qualifier != "" {
		table, ok := w.unit.Imports[qualifier]
		if !ok {
			panic(report.Raise(report.UnresolvedSymbol, span,
				"unknown dependency: `%s`", qualifier))
		}

		candidates = exportedCandidates(table, name)
	} else {
		candidates = w.unit.Table.Candidates(name)
		if len(candidates) == 0 {
			candidates = w.importedCandidates(name)
		}
	}

	var enabled []*depm.Symbol
	for _, sym := range candidates {
		if sym.Kind == depm.SymFunc && sym.EnabledFor(w.unit.Enabled) {
			enabled = append(enabled, sym)
		}
	}

	switch len(enabled) {
	case 0:
		panic(report.Raise(report.UnresolvedSymbol, span,
			"undefined function: `%s`", name))
	case 1:
		return enabled[0]
	default:
		var gates []string
		for _, sym := range enabled {
			gates = append(gates, strings.Join(sym.Features, ", "))
		}

		panic(report.Raise(report.AmbiguousOverload, span,
			"call to `%s` matches multiple enabled overloads (gated by: %s)",
			name, strings.Join(gates, "; ")))
	}
}

// lookupType resolves a type or trait name, searching the project table and
// then the current module's imports.
func (w *Walker) lookupType(name string, span *report.TextSpan) *depm.Symbol {
	candidates := w.unit.Table.Candidates(name)
	if len(candidates) == 0 {
		candidates = w.importedCandidates(name)
	}

	for _, sym := range candidates {
		if sym.Kind == depm.SymType || sym.Kind == depm.SymTrait {
			return sym
		}
	}

	panic(report.Raise(report.UnresolvedSymbol, span, "undefined type: `%s`", name))
}

// importedCandidates collects the candidates the current module imported
// under the given name.
func (w *Walker) importedCandidates(name string) []*depm.Symbol {
	var candidates []*depm.Symbol

	for _, imp := range w.mod.File.Imports {
		if imp.Dep == "" || imp.Symbol != name {
			continue
		}

		if table, ok := w.unit.Imports[imp.Dep]; ok {
			candidates = append(candidates, exportedCandidates(table, name)...)
		}
	}

	return candidates
}

// exportedCandidates returns the candidates of a name that a dependency
// actually exports.
func exportedCandidates(table *depm.SymbolTable, name string) []*depm.Symbol {
	var exported []*depm.Symbol
	for _, sym := range table.Candidates(name) {
		if sym.Visibility != ast.VisPriv {
			exported = append(exported, sym)
		}
	}

	return exported
}

// -----------------------------------------------------------------------------

// mangledName computes the emitted symbol name of a function.  The entry
// point, publib functions, and external declarations keep their source name;
// everything else is prefixed with its project.  Feature-gated overloads get
// a feature suffix so that enabled siblings never collide.
func mangledName(sym *depm.Symbol) string {
	if sym.External || sym.Visibility == ast.VisPublib || sym.Name == "main" {
		return sym.Name
	}

	name := sym.Project + "." + sym.Name
	if len(sym.Features) > 0 {
		name += "$" + strings.Join(sym.Features, "$")
	}

	return name
}

// mangledMethodName computes the emitted symbol name of a method.
func mangledMethodName(project, typeName, method string) string {
	return project + "." + typeName + "." + method
}

// -----------------------------------------------------------------------------

// catchErrors converts local errors raised during the walk of one definition
// into diagnostics and resets the walker's per-definition state.
// NB: This function must ALWAYS be deferred.
func (w *Walker) catchErrors() {
	w.localScopes = nil
	w.enclosingReturnType = nil
	w.loopDepth = 0

	if x := recover(); x != nil {
		lerr, ok := x.(*report.LocalError)
		if !ok {
			panic(x)
		}

		w.rep.Report(&report.Diagnostic{
			File:    w.mod.ReprPath,
			Span:    lerr.Span,
			Kind:    lerr.Kind,
			Message: lerr.Message,
		})
	}
}
