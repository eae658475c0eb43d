package codegen

import (
	"bufio"
	"strings"
	"testing"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/syntax"
	"github.com/marci1175/fog/walk"

	"github.com/llir/llvm/ir"
	"github.com/pmezard/go-difflib/difflib"
)

// lowerModule parses, analyzes, and generates src as the single module of
// project `test`.
func lowerModule(t *testing.T, src string, features ...string) *ir.Module {
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

	unit.Modules = append(unit.Modules, &depm.Module{Name: "main", ReprPath: "main.f", File: file})

	walk.Analyze(unit, rep)
	if rep.AnyErrors() {
		t.Fatalf("analysis failed: %s", rep.Diagnostics()[0])
	}

	mod, err := Generate(unit)
	if err != nil {
		t.Fatalf("generation failed: %s", err)
	}

	return mod
}

// lowerIR returns the textual IR of src.
func lowerIR(t *testing.T, src string, features ...string) string {
	t.Helper()
	return lowerModule(t, src, features...).String()
}

// findFunc locates a function by name in the module.
func findFunc(t *testing.T, mod *ir.Module, name string) *ir.Func {
	t.Helper()

	for _, f := range mod.Funcs {
		if f.Name() == name {
			return f
		}
	}

	t.Fatalf("function %q not found in module", name)
	return nil
}

func TestLoopWithTrailingBreakLowersToThreeBlocks(t *testing.T) {
	mod := lowerModule(t, `
		function count(): int {
			int i = 0;
			loop {
				i =+ 1;
				if i == 10 {
					break;
				}
			}
			return i;
		}
	`)

	f := findFunc(t, mod, "test.count")
	if len(f.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3 (entry, loop, exit)", len(f.Blocks))
	}

	if f.Blocks[0].LocalIdent.LocalName != "entry" {
		t.Errorf("first block named %q, want entry", f.Blocks[0].LocalIdent.LocalName)
	}
}

func TestComparisonPredicateSignedness(t *testing.T) {
	signed := lowerIR(t, `
		function f(a: int, b: int): bool {
			return a < b;
		}
	`)
	if !strings.Contains(signed, "icmp slt") {
		t.Errorf("signed comparison did not lower to icmp slt")
	}

	unsigned := lowerIR(t, `
		function f(a: uint, b: uint): bool {
			return a < b;
		}
	`)
	if !strings.Contains(unsigned, "icmp ult") {
		t.Errorf("unsigned comparison did not lower to icmp ult")
	}

	floats := lowerIR(t, `
		function f(a: float, b: float): bool {
			return a >= b;
		}
	`)
	if !strings.Contains(floats, "fcmp oge") {
		t.Errorf("float comparison did not lower to fcmp oge")
	}
}

func TestArithmeticSelection(t *testing.T) {
	out := lowerIR(t, `
		function f(a: int, b: int): int {
			return a / b % b;
		}

		function g(a: uint, b: uint): uint {
			return a / b % b;
		}

		function h(a: float, b: float): float {
			return a / b;
		}
	`)

	for _, want := range []string{"sdiv", "srem", "udiv", "urem", "fdiv"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s instruction", want)
		}
	}
}

func TestVariadicCallPromotions(t *testing.T) {
	out := lowerIR(t, `
		external function printf(fmt: string, ...): int;

		function f(small: uintsmall, short: inthalf, half: floathalf): void {
			printf("%d %d %f", small, short, half);
		}
	`)

	if !strings.Contains(out, "zext i8") {
		t.Errorf("unsigned small int not zero-extended to i32 in variadic tail")
	}

	if !strings.Contains(out, "sext i16") {
		t.Errorf("signed short int not sign-extended to i32 in variadic tail")
	}

	if !strings.Contains(out, "fpext half") {
		t.Errorf("half float not widened to double in variadic tail")
	}
}

func TestStringLiteralsNullTerminatedAndInterned(t *testing.T) {
	out := lowerIR(t, `
		external function puts(s: string): int;

		function f(): void {
			puts("hi");
			puts("hi");
		}
	`)

	if !strings.Contains(out, `c"hi\00"`) {
		t.Errorf("string literal not emitted as a null-terminated constant")
	}

	if strings.Count(out, `c"hi\00"`) != 1 {
		t.Errorf("identical literals not interned into one global")
	}
}

func TestFunctionHintAttributes(t *testing.T) {
	out := lowerIR(t, `
		@inline
		function f(): void { }

		@cold
		@nounwind
		function g(): void { }
	`)

	for _, want := range []string{"inlinehint", "cold", "nounwind"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s attribute", want)
		}
	}
}

func TestEnumLowersToBackingType(t *testing.T) {
	out := lowerIR(t, `
		enum Flag : uintsmall { Off, On }

		function f(): Flag {
			return Flag::On;
		}
	`)

	if !strings.Contains(out, "ret i8 1") {
		t.Errorf("enum variant did not lower to its backing integer")
	}
}

func TestStructFieldAccess(t *testing.T) {
	out := lowerIR(t, `
		struct Vec { x: float, y: float }

		function f(v: Vec): float {
			return v.y;
		}
	`)

	if !strings.Contains(out, `%test.Vec = type { float, float }`) {
		t.Errorf("struct type definition missing or misshapen:\n%s", out)
	}

	if !strings.Contains(out, "getelementptr") {
		t.Errorf("field access did not lower to a GEP")
	}
}

func TestForwardStructReference(t *testing.T) {
	// B is defined after the struct that contains it by value.
	out := lowerIR(t, `
		struct A { b: B }
		struct B { x: int }

		function f(): int {
			A a = A{b: B{x: 1}};
			return a.b.x;
		}
	`)

	if !strings.Contains(out, "%test.A = type { %test.B }") {
		t.Errorf("forward-referenced struct field not lowered:\n%s", out)
	}

	if !strings.Contains(out, "%test.B = type { i32 }") {
		t.Errorf("struct B definition missing:\n%s", out)
	}
}

func TestMutuallyReferentialStructs(t *testing.T) {
	// The pointer field makes the pair legal; both bodies must still lower.
	out := lowerIR(t, `
		struct A { b: ptr<B> }
		struct B { a: A }

		function f(x: B): B {
			return x;
		}
	`)

	if !strings.Contains(out, "%test.A = type { %test.B* }") {
		t.Errorf("pointer field to a later struct not lowered:\n%s", out)
	}

	if !strings.Contains(out, "%test.B = type { %test.A }") {
		t.Errorf("struct B definition missing:\n%s", out)
	}
}

func TestDisabledOverloadNotEmitted(t *testing.T) {
	out := lowerIR(t, `
		@feature "fast"
		function work(): int {
			return 1;
		}

		@feature "small"
		function work(): int {
			return 2;
		}
	`, "fast")

	if !strings.Contains(out, "@test.work$fast") {
		t.Errorf("enabled overload missing from module")
	}

	if strings.Contains(out, "test.work$small") {
		t.Errorf("disabled overload emitted")
	}
}

func TestDeterministicOutput(t *testing.T) {
	src := `
		external function printf(fmt: string, ...): int;

		struct Point { x: int, y: int }

		enum Color { Red, Green, Blue }

		function main(): void {
			Point p = Point{x: 3, y: 4};
			int sum = 0;
			for i in 0..p.x step 1 {
				sum =+ i;
			}

			while sum > 0 {
				sum =- 1;
			}

			printf("%d\n", sum);
		}
	`

	first := lowerIR(t, src)
	second := lowerIR(t, src)

	if first != second {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "first",
			ToFile:   "second",
			Context:  3,
		})
		t.Fatalf("regeneration produced different IR:\n%s", diff)
	}
}

func TestMethodCallLowering(t *testing.T) {
	out := lowerIR(t, `
		struct Vec { x: float, y: float }

		extend Vec {
			function sum(): float {
				return self.x + self.y;
			}
		}

		function f(v: Vec): float {
			return v.sum();
		}
	`)

	if !strings.Contains(out, "@test.Vec.sum") {
		t.Errorf("method not emitted under its qualified name")
	}
}
