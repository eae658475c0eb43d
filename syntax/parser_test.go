package syntax

import (
	"bufio"
	"strings"
	"testing"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// parseSource parses src as a module of project `test`.
func parseSource(t *testing.T, src string) (*ast.File, *depm.SymbolTable, *report.Reporter) {
	t.Helper()

	table := depm.NewSymbolTable()
	rep := report.NewReporter()
	file := &ast.File{ReprPath: "main.f"}

	p := NewParser("test", table, rep, file, bufio.NewReader(strings.NewReader(src)))
	p.Parse()

	return file, table, rep
}

// parseClean parses src and fails the test if any diagnostics were reported.
func parseClean(t *testing.T, src string) (*ast.File, *depm.SymbolTable) {
	t.Helper()

	file, table, rep := parseSource(t, src)
	for _, diag := range rep.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", diag)
	}

	return file, table
}

func TestParseFuncDef(t *testing.T) {
	file, table := parseClean(t, `
		pub function add(a: int, b: int): int {
			return a + b;
		}
	`)

	fd, ok := file.Defs[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("got %T, want *ast.FuncDef", file.Defs[0])
	}

	if fd.Name != "add" || fd.Visibility != ast.VisPub || len(fd.Params) != 2 {
		t.Errorf("got (%s, %d, %d params)", fd.Name, fd.Visibility, len(fd.Params))
	}

	if !types.Equals(fd.ReturnType, types.I32Type) {
		t.Errorf("got return type %s, want int", fd.ReturnType.Repr())
	}

	syms := table.Candidates("add")
	if len(syms) != 1 || syms[0].Kind != depm.SymFunc {
		t.Fatalf("`add` not declared as a function symbol")
	}
}

func TestParseDefaultVisibility(t *testing.T) {
	file, _ := parseClean(t, `function f(): void { }`)

	if fd := file.Defs[0].(*ast.FuncDef); fd.Visibility != ast.VisPriv {
		t.Errorf("got visibility %d, want priv", fd.Visibility)
	}
}

func TestParseExternalDef(t *testing.T) {
	file, table := parseClean(t, `external function printf(fmt: string, ...): int;`)

	ed := file.Defs[0].(*ast.ExternalDef)
	if ed.Name != "printf" || !ed.Variadic || len(ed.Params) != 1 {
		t.Errorf("got (%s, variadic=%v, %d params)", ed.Name, ed.Variadic, len(ed.Params))
	}

	sym := table.Candidates("printf")[0]
	if !sym.External || !sym.Variadic {
		t.Errorf("symbol not marked external variadic")
	}
}

func TestParseAnnotations(t *testing.T) {
	file, _ := parseClean(t, `
		@feature "fast"
		@inline
		function f(): void { }
	`)

	fd := file.Defs[0].(*ast.FuncDef)
	if len(fd.Features) != 1 || fd.Features[0] != "fast" {
		t.Errorf("got features %v, want [fast]", fd.Features)
	}

	if !fd.HasHint(ast.HintInline) {
		t.Errorf("missing inline hint")
	}
}

func TestParseEnumVariantValues(t *testing.T) {
	file, _ := parseClean(t, `enum Color { Red, Green = 4, Blue, }`)

	ed := file.Defs[0].(*ast.EnumDef)
	want := []int64{0, 4, 5}
	for i, variant := range ed.Variants {
		if variant.Value != want[i] {
			t.Errorf("variant %s: got value %d, want %d", variant.Name, variant.Value, want[i])
		}
	}

	if ed.Type.Name != "test.Color" {
		t.Errorf("got qualified name %s, want test.Color", ed.Type.Name)
	}
}

func TestParseStructDef(t *testing.T) {
	_, table := parseClean(t, `struct Vec { x: float, y: float }`)

	sym := table.Candidates("Vec")[0]
	st := sym.Type.(*types.StructType)
	if st.Name != "test.Vec" || len(st.Fields) != 2 {
		t.Errorf("got (%s, %d fields)", st.Name, len(st.Fields))
	}
}

func TestParseExtendImplicitSelf(t *testing.T) {
	file, _ := parseClean(t, `
		struct Vec { x: float, y: float }

		extend Vec : Sized {
			function len(): float {
				return self.x;
			}
		}
	`)

	xd := file.Defs[1].(*ast.ExtendDef)
	if xd.TargetName != "Vec" || xd.TraitName != "Sized" {
		t.Fatalf("got (%s, %s)", xd.TargetName, xd.TraitName)
	}

	method := xd.Methods[0]
	if len(method.Params) != 1 || method.Params[0].Name != "self" {
		t.Fatalf("implicit self parameter not prepended")
	}

	ot, ok := method.Params[0].Type.(*types.OpaqueType)
	if !ok || ot.Name != "Vec" {
		t.Errorf("self has type %T, want opaque Vec", method.Params[0].Type)
	}
}

func TestParseImports(t *testing.T) {
	file, _ := parseClean(t, "import printn::printn;\nimport \"util.f\";")

	if len(file.Imports) != 2 {
		t.Fatalf("got %d imports, want 2", len(file.Imports))
	}

	if file.Imports[0].Dep != "printn" || file.Imports[0].Symbol != "printn" {
		t.Errorf("dependency import parsed as (%s, %s)", file.Imports[0].Dep, file.Imports[0].Symbol)
	}

	if file.Imports[1].File != "util.f" {
		t.Errorf("file import parsed as %q", file.Imports[1].File)
	}
}

func TestParseCompoundAssignDesugar(t *testing.T) {
	file, _ := parseClean(t, `
		function f(x: int): int {
			x =+ 2;
			return x;
		}
	`)

	body := file.Defs[0].(*ast.FuncDef).Body
	assign, ok := body.Stmts[0].(*ast.Assign)
	if !ok {
		t.Fatalf("got %T, want *ast.Assign", body.Stmts[0])
	}

	bin, ok := assign.RHS.(*ast.BinaryOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("compound assignment not desugared to binary `+`")
	}
}

func TestParseHeaderStructLitAmbiguity(t *testing.T) {
	file, _ := parseClean(t, `
		function f(c: bool): void {
			while c { }
		}
	`)

	body := file.Defs[0].(*ast.FuncDef).Body
	ws, ok := body.Stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.WhileStmt", body.Stmts[0])
	}

	if _, ok := ws.Cond.(*ast.Identifier); !ok {
		t.Errorf("while condition parsed as %T, want identifier", ws.Cond)
	}
}

func TestParseStructLit(t *testing.T) {
	file, _ := parseClean(t, `
		struct Vec { x: float, y: float }

		function f(): void {
			Vec v = Vec{x: 1.0, y: 2.0,};
		}
	`)

	body := file.Defs[1].(*ast.FuncDef).Body
	decl := body.Stmts[0].(*ast.VarDecl)

	lit, ok := decl.Init.(*ast.StructLit)
	if !ok || lit.Name != "Vec" || len(lit.Inits) != 2 {
		t.Fatalf("struct literal not parsed: %T", decl.Init)
	}
}

func TestParseForStmt(t *testing.T) {
	file, _ := parseClean(t, `
		function f(): void {
			for i in 0..10 step 2 { }
		}
	`)

	body := file.Defs[0].(*ast.FuncDef).Body
	fs, ok := body.Stmts[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.ForStmt", body.Stmts[0])
	}

	if fs.VarName != "i" || fs.Step == nil {
		t.Errorf("got (%s, step=%v)", fs.VarName, fs.Step)
	}
}

func TestParseNestedTypeArgs(t *testing.T) {
	// The closing `>>` must split into two `>` tokens.
	file, _ := parseClean(t, `function f(a: array<array<int, 2>, 3>): void { }`)

	param := file.Defs[0].(*ast.FuncDef).Params[0]
	outer, ok := param.Type.(*types.ArrayType)
	if !ok || outer.Len != 3 {
		t.Fatalf("outer type parsed as %T", param.Type)
	}

	inner, ok := outer.Elem.(*types.ArrayType)
	if !ok || inner.Len != 2 || !types.Equals(inner.Elem, types.I32Type) {
		t.Fatalf("inner type parsed as %T", outer.Elem)
	}
}

func TestParseQualifiedCallAndVariant(t *testing.T) {
	file, _ := parseClean(t, `
		enum Color { Red }

		function f(): void {
			Color c = Color::Red;
			dep::run(1);
		}
	`)

	body := file.Defs[1].(*ast.FuncDef).Body

	decl := body.Stmts[0].(*ast.VarDecl)
	if sa, ok := decl.Init.(*ast.StaticAccess); !ok || sa.Root != "Color" || sa.Name != "Red" {
		t.Errorf("variant access parsed as %T", decl.Init)
	}

	call, ok := body.Stmts[1].(*ast.Call)
	if !ok || call.Qualifier != "dep" || call.Name != "run" {
		t.Errorf("qualified call parsed as %T", body.Stmts[1])
	}
}

func TestParseOverloadDeclarations(t *testing.T) {
	// Disjoint feature gates may overload a name.
	_, table := parseClean(t, `
		@feature "a"
		function f(): void { }

		@feature "b"
		function f(): void { }
	`)

	if len(table.Candidates("f")) != 2 {
		t.Fatalf("got %d candidates, want 2", len(table.Candidates("f")))
	}

	// An ungated redeclaration is a duplicate.
	_, _, rep := parseSource(t, `
		function g(): void { }
		function g(): void { }
	`)

	if kind := firstDiagKind(t, rep); kind != report.DuplicateDefinition {
		t.Errorf("got kind %s, want duplicate definition", kind)
	}

	// Overlapping feature gates are a duplicate.
	_, _, rep = parseSource(t, `
		@feature "a"
		function h(): void { }

		@feature "a"
		@feature "b"
		function h(): void { }
	`)

	if kind := firstDiagKind(t, rep); kind != report.DuplicateDefinition {
		t.Errorf("got kind %s, want duplicate definition", kind)
	}
}

func TestParseRecovery(t *testing.T) {
	// The first item is malformed; the parser must resynchronize and still
	// declare the second.
	_, table, rep := parseSource(t, `
		function : void { }

		function g(): void { }
	`)

	if rep.ErrorCount() == 0 {
		t.Fatalf("expected at least one diagnostic")
	}

	if len(table.Candidates("g")) != 1 {
		t.Errorf("`g` not declared after recovery")
	}
}

func firstDiagKind(t *testing.T, rep *report.Reporter) report.ErrorKind {
	t.Helper()

	diags := rep.Diagnostics()
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic")
	}

	return diags[0].Kind
}
