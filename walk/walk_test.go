package walk

import (
	"bufio"
	"strings"
	"testing"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/syntax"
)

// parseUnit parses src as the single module of project `test` compiled with
// the given features enabled.
func parseUnit(t *testing.T, src string, features ...string) (*depm.Unit, *report.Reporter) {
	t.Helper()

	unit := &depm.Unit{
		Project: &depm.Project{Name: "test", Version: "0.1.0"},
		Table:   depm.NewSymbolTable(),
		Enabled: make(map[string]bool),
		Imports: make(map[string]*depm.SymbolTable),
	}

	for _, f := range features {
		unit.Enabled[f] = true
	}

	file := &ast.File{ReprPath: "main.f"}
	rep := report.NewReporter()

	p := syntax.NewParser("test", unit.Table, rep, file, bufio.NewReader(strings.NewReader(src)))
	p.Parse()

	unit.Modules = append(unit.Modules, &depm.Module{
		Name:     "main",
		ReprPath: "main.f",
		File:     file,
	})

	return unit, rep
}

// analyzeSource parses and analyzes src, failing the test on parse errors.
func analyzeSource(t *testing.T, src string, features ...string) *report.Reporter {
	t.Helper()

	unit, rep := parseUnit(t, src, features...)
	if rep.AnyErrors() {
		t.Fatalf("parse errors: %v", rep.Diagnostics()[0])
	}

	Analyze(unit, rep)
	return rep
}

// expectClean fails the test if analysis reported anything.
func expectClean(t *testing.T, src string, features ...string) {
	t.Helper()

	rep := analyzeSource(t, src, features...)
	for _, diag := range rep.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", diag)
	}
}

// expectKind fails the test unless analysis reports a diagnostic of the given
// kind first.
func expectKind(t *testing.T, kind report.ErrorKind, src string, features ...string) {
	t.Helper()

	rep := analyzeSource(t, src, features...)

	diags := rep.Diagnostics()
	if len(diags) == 0 {
		t.Fatalf("expected a %s diagnostic, got none", kind)
	}

	if diags[0].Kind != kind {
		t.Fatalf("got %s (%s), want %s", diags[0].Kind, diags[0].Message, kind)
	}
}

func TestAnalyzeWellFormedProgram(t *testing.T) {
	expectClean(t, `
		struct Vec { x: float, y: float }

		extend Vec {
			function sum(): float {
				return self.x + self.y;
			}
		}

		function main(): void {
			Vec v = Vec{x: 1.0, y: 2.0};
			float s = v.sum();

			int total = 0;
			for i in 0..10 step 2 {
				total =+ i;
			}

			if total > 10 {
				total = 10;
			} else {
				total = 0;
			}
		}
	`)
}

func TestLiteralTyping(t *testing.T) {
	// Untyped literals adopt the expected numeric type.
	expectClean(t, `
		function f(): void {
			intlong a = 5;
			uintsmall b = 200;
			floathalf c = 1.5;
			float d = 2;
		}
	`)

	// A literal that does not fit its adopted type is rejected.
	expectKind(t, report.TypeMismatch, `
		function f(): void {
			uintsmall b = 300;
		}
	`)

	// Without context, integer literals default to int.
	expectKind(t, report.TypeMismatch, `
		function f(a: intlong): intlong {
			return a + 1;
		}

		function g(): intlong {
			int x = 1;
			return f(x);
		}
	`)
}

func TestTypeMismatch(t *testing.T) {
	expectKind(t, report.TypeMismatch, `
		function f(): void {
			int x = true;
		}
	`)

	// Exact equality: no implicit widening between integer types.
	expectKind(t, report.TypeMismatch, `
		function f(): void {
			int x = 1;
			intlong y = 2;
			intlong z = y + x;
		}
	`)
}

func TestUnresolvedSymbol(t *testing.T) {
	expectKind(t, report.UnresolvedSymbol, `
		function f(): void {
			missing();
		}
	`)

	expectKind(t, report.UnresolvedSymbol, `
		function f(): void {
			int x = y;
		}
	`)
}

func TestOverloadResolution(t *testing.T) {
	overloads := `
		@feature "fast"
		function work(): int {
			return 1;
		}

		@feature "small"
		function work(): int {
			return 2;
		}

		function f(): int {
			return work();
		}
	`

	// No gate enabled: the name does not resolve.
	expectKind(t, report.UnresolvedSymbol, overloads)

	// Exactly one gate enabled: resolution succeeds.
	expectClean(t, overloads, "fast")

	// Both gates enabled: the call is ambiguous.
	expectKind(t, report.AmbiguousOverload, overloads, "fast", "small")
}

func TestStructContainmentCycle(t *testing.T) {
	expectKind(t, report.StructContainmentCycle, `
		struct A { b: B }
		struct B { a: A }
	`)

	expectKind(t, report.StructContainmentCycle, `
		struct S { inner: array<S, 2> }
	`)

	// A pointer breaks the containment edge.
	expectClean(t, `
		struct Node { next: ptr<Node>, value: int }
	`)
}

func TestStructCycleDiagnosesMembers(t *testing.T) {
	// Holder reaches the cycle but is not part of it; the single diagnostic
	// names the cycle's own structs.
	rep := analyzeSource(t, `
		struct Holder { a: A }
		struct A { b: B }
		struct B { a: A }
	`)

	diags := rep.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}

	if diags[0].Kind != report.StructContainmentCycle {
		t.Fatalf("got %s, want %s", diags[0].Kind, report.StructContainmentCycle)
	}

	if !strings.Contains(diags[0].Message, "`A`") || !strings.Contains(diags[0].Message, "`B`") {
		t.Errorf("cycle members not named: %s", diags[0].Message)
	}

	if strings.Contains(diags[0].Message, "Holder") {
		t.Errorf("non-member blamed for the cycle: %s", diags[0].Message)
	}
}

func TestTraitConformance(t *testing.T) {
	expectKind(t, report.IncompleteTraitImpl, `
		trait Shape {
			function area(): float;
		}

		struct Circle { r: float }

		extend Circle : Shape { }
	`)

	expectKind(t, report.IncompleteTraitImpl, `
		trait Shape {
			function area(): float;
		}

		struct Circle { r: float }

		extend Circle : Shape {
			function area(): int {
				return 0;
			}
		}
	`)

	expectClean(t, `
		trait Shape {
			function area(): float;
		}

		struct Circle { r: float }

		extend Circle : Shape {
			function area(): float {
				return self.r * self.r;
			}
		}
	`)
}

func TestCastLegality(t *testing.T) {
	expectClean(t, `
		enum Color { Red, Green }

		function f(): void {
			int a = 1000;
			uintsmall b = a as uintsmall;
			intlong c = a as intlong;
			float d = a as float;
			int e = d as int;
			uint g = a as uint;
			int h = Color::Green as int;
		}

		function g(c: Color): int {
			return c as int;
		}
	`)

	expectKind(t, report.TypeMismatch, `
		function f(s: string): void {
			int x = s as int;
		}
	`)
}

func TestPointerOps(t *testing.T) {
	expectClean(t, `
		function f(): void {
			int x = 5;
			ptr<int> p = ref x;
			int y = deref p;
			deref p = 7;
		}
	`)

	// Returning a reference to a local is rejected.
	expectKind(t, report.TypeMismatch, `
		function f(): ptr<int> {
			int x = 5;
			return ref x;
		}
	`)

	// So is a reference to a temporary: the call result only lives in the
	// returning function's frame.
	expectKind(t, report.TypeMismatch, `
		function f(): int {
			return 5;
		}

		function g(): ptr<int> {
			return ref f();
		}
	`)

	// A field of a local is still frame storage.
	expectKind(t, report.TypeMismatch, `
		struct Vec { x: float }

		function f(): ptr<float> {
			Vec v = Vec{x: 1.0};
			return ref v.x;
		}
	`)

	// A reference through a dereference points at the callee's target, not
	// into the frame.
	expectClean(t, `
		function f(p: ptr<int>): ptr<int> {
			return ref deref p;
		}
	`)
}

func TestMissingReturn(t *testing.T) {
	expectKind(t, report.TypeMismatch, `
		function f(c: bool): int {
			if c {
				return 1;
			}
		}
	`)

	// An if with an else on every path is a return.
	expectClean(t, `
		function f(c: bool): int {
			if c {
				return 1;
			} else {
				return 2;
			}
		}
	`)

	// An unconditional loop without a break never falls through.
	expectClean(t, `
		function f(): int {
			loop {
				return 1;
			}
		}
	`)
}

func TestEnumVariantAccess(t *testing.T) {
	expectKind(t, report.UnknownField, `
		enum Color { Red }

		function f(): void {
			Color c = Color::Blue;
		}
	`)
}

func TestUnknownStructField(t *testing.T) {
	expectKind(t, report.UnknownField, `
		struct Vec { x: float }

		function f(v: Vec): float {
			return v.z;
		}
	`)

	expectKind(t, report.UnknownField, `
		struct Vec { x: float }

		function f(): void {
			Vec v = Vec{z: 1.0};
		}
	`)

	// Every field must be initialized.
	expectKind(t, report.TypeMismatch, `
		struct Vec { x: float, y: float }

		function f(): void {
			Vec v = Vec{x: 1.0};
		}
	`)
}

func TestLoopControlOutsideLoop(t *testing.T) {
	expectKind(t, report.ParseError, `
		function f(): void {
			break;
		}
	`)

	expectKind(t, report.ParseError, `
		function f(): void {
			continue;
		}
	`)
}

func TestLocalShadowingAndDuplicates(t *testing.T) {
	expectClean(t, `
		function f(): void {
			int x = 1;
			if x == 1 {
				float x = 2.0;
			}
		}
	`)

	expectKind(t, report.DuplicateDefinition, `
		function f(): void {
			int x = 1;
			int x = 2;
		}
	`)
}

func TestVariadicCallChecking(t *testing.T) {
	expectClean(t, `
		external function printf(fmt: string, ...): int;

		function f(): void {
			printf("%d %f", 42, 3.14);
		}
	`)

	// The fixed prefix is still type checked.
	expectKind(t, report.TypeMismatch, `
		external function printf(fmt: string, ...): int;

		function f(): void {
			printf(42);
		}
	`)
}

func TestMangledNames(t *testing.T) {
	unit, rep := parseUnit(t, `
		publib function exported(): void { }

		pub function helper(): void { }

		function main(): void { }

		@feature "fast"
		function work(): void { }
	`, "fast")

	Analyze(unit, rep)
	if rep.AnyErrors() {
		t.Fatalf("unexpected diagnostics: %v", rep.Diagnostics()[0])
	}

	want := map[string]string{
		"exported": "exported",
		"helper":   "test.helper",
		"main":     "main",
		"work":     "test.work$fast",
	}

	for name, mangled := range want {
		sym := unit.Table.Candidates(name)[0]
		if sym.MangledName != mangled {
			t.Errorf("`%s`: got mangled name %q, want %q", name, sym.MangledName, mangled)
		}
	}
}
