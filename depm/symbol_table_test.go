package depm

import (
	"testing"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/report"
)

func funcSym(name string, vis ast.Visibility, features ...string) *Symbol {
	return &Symbol{
		Name:       name,
		Project:    "test",
		Kind:       SymFunc,
		Visibility: vis,
		Features:   features,
		DefSpan:    &report.TextSpan{},
	}
}

// defineErr runs Define and returns the raised error, or nil on success.
func defineErr(st *SymbolTable, sym *Symbol) (lerr *report.LocalError) {
	defer func() {
		if x := recover(); x != nil {
			lerr = x.(*report.LocalError)
		}
	}()

	st.Define(sym)
	return nil
}

func TestDefineOverloadRules(t *testing.T) {
	st := NewSymbolTable()
	st.Define(funcSym("work", ast.VisPriv, "fast"))

	// A disjoint gate is a legal overload.
	if lerr := defineErr(st, funcSym("work", ast.VisPriv, "small")); lerr != nil {
		t.Fatalf("disjoint overload rejected: %s", lerr.Message)
	}

	if len(st.Candidates("work")) != 2 {
		t.Fatalf("got %d candidates, want 2", len(st.Candidates("work")))
	}

	// An ungated candidate collides with every gated one.
	if lerr := defineErr(st, funcSym("work", ast.VisPriv)); lerr == nil {
		t.Errorf("ungated overload accepted")
	} else if lerr.Kind != report.DuplicateDefinition {
		t.Errorf("got %s, want %s", lerr.Kind, report.DuplicateDefinition)
	}

	// Overlapping gates collide.
	if lerr := defineErr(st, funcSym("work", ast.VisPriv, "fast", "tiny")); lerr == nil {
		t.Errorf("overlapping overload accepted")
	}

	// Non-function symbols never overload.
	st.Define(&Symbol{Name: "Vec", Kind: SymType, DefSpan: &report.TextSpan{}})
	if lerr := defineErr(st, &Symbol{Name: "Vec", Kind: SymType, DefSpan: &report.TextSpan{}}); lerr == nil {
		t.Errorf("duplicate type definition accepted")
	}
}

func TestPublishFiltersToPublib(t *testing.T) {
	st := NewSymbolTable()
	st.Define(funcSym("hidden", ast.VisPriv))
	st.Define(funcSym("shared", ast.VisPub))
	st.Define(funcSym("api", ast.VisPublib))
	st.Define(funcSym("gated", ast.VisPublib, "fast"))

	pub := st.Publish()

	names := pub.Names()
	if len(names) != 2 || names[0] != "api" || names[1] != "gated" {
		t.Fatalf("published names = %v, want [api gated]", names)
	}

	if pub.Candidates("hidden") != nil || pub.Candidates("shared") != nil {
		t.Errorf("non-publib symbols crossed the project boundary")
	}
}

func TestExportedSorted(t *testing.T) {
	st := NewSymbolTable()
	st.Define(funcSym("zeta", ast.VisPub))
	st.Define(funcSym("alpha", ast.VisPublib))
	st.Define(funcSym("local", ast.VisPriv))

	exported := st.Exported()
	if len(exported) != 2 {
		t.Fatalf("got %d exported symbols, want 2", len(exported))
	}

	if exported[0].Name != "alpha" || exported[1].Name != "zeta" {
		t.Errorf("exported symbols not sorted by name: %s, %s",
			exported[0].Name, exported[1].Name)
	}
}
