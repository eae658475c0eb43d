package build

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marci1175/fog/report"
)

// writeFile writes contents to path, creating parent directories as needed.
func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

// helloProject lays out an executable project `hello` depending on a library
// `printn` and returns its root directory.
func helloProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fog.toml"), `
name = "hello"
version = "0.1.0"

[dependencies.printn]
version = "0.1.0"
`)
	writeFile(t, filepath.Join(root, "src", "main.f"), `
		import printn::printn;

		function main(): void {
			printn(42);
		}
	`)
	writeFile(t, filepath.Join(root, "deps", "printn", "fog.toml"),
		"name = \"printn\"\nversion = \"0.1.0\"\nis_library = true\n")
	writeFile(t, filepath.Join(root, "deps", "printn", "src", "lib.f"), `
		external function printf(fmt: string, ...): int;

		publib function printn(n: int): void {
			printf("%d\n", n);
		}
	`)

	return root
}

// compileProject runs a full build of the project at root.
func compileProject(t *testing.T, root string) (*Compiler, error) {
	t.Helper()

	c, err := NewCompiler(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Compile(context.Background())
	return c, err
}

func TestCompileProjectWithDependency(t *testing.T) {
	root := helloProject(t)

	c, err := NewCompiler(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	manifest, err := c.Compile(context.Background())
	if err != nil {
		for _, diag := range c.Diagnostics() {
			t.Logf("diagnostic: %s", diag)
		}

		t.Fatalf("Compile: %s", err)
	}

	wantPaths := []string{
		filepath.Join(root, "deps", "printn", "build", "printn.ll"),
		filepath.Join(root, "build", "hello.ll"),
	}

	if len(manifest.BuildOutputPaths) != len(wantPaths) {
		t.Fatalf("got %d artifacts, want %d", len(manifest.BuildOutputPaths), len(wantPaths))
	}

	for i, want := range wantPaths {
		if manifest.BuildOutputPaths[i] != want {
			t.Errorf("artifact %d: got %s, want %s", i, manifest.BuildOutputPaths[i], want)
		}

		if _, err := os.Stat(want); err != nil {
			t.Errorf("artifact not written: %s", err)
		}
	}

	if want := filepath.Join(root, "build", "hello"); manifest.OutputPath != want {
		t.Errorf("output path: got %s, want %s", manifest.OutputPath, want)
	}

	if _, err := os.Stat(filepath.Join(root, "build", "build_manifest.json")); err != nil {
		t.Errorf("build manifest not written: %s", err)
	}
}

func TestCompileReproducible(t *testing.T) {
	root := helloProject(t)

	if _, err := compileProject(t, root); err != nil {
		t.Fatalf("first build: %s", err)
	}

	artifact := filepath.Join(root, "build", "hello.ll")
	first, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatal(err)
	}

	// A fresh session over the same tree regenerates everything.
	if _, err := compileProject(t, root); err != nil {
		t.Fatalf("second build: %s", err)
	}

	second, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("rebuilding produced a different artifact")
	}
}

func TestCompileReportsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fog.toml"), "name = \"broken\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "src", "main.f"), `
		function main(): void {
			int x = true;
		}
	`)

	c, err := compileProject(t, root)
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("got error %v, want ErrBuildFailed", err)
	}

	diags := c.Diagnostics()
	if len(diags) == 0 {
		t.Fatal("no diagnostics collected")
	}

	if diags[0].Kind != report.TypeMismatch {
		t.Errorf("got %s, want %s", diags[0].Kind, report.TypeMismatch)
	}
}

func TestCompileRequiresMainFunction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fog.toml"), "name = \"nomain\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "src", "main.f"), `
		function helper(): int {
			return 1;
		}
	`)

	c, err := compileProject(t, root)
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("got error %v, want ErrBuildFailed", err)
	}

	diags := c.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != report.UnresolvedSymbol {
		t.Fatalf("expected a single unresolved symbol diagnostic, got %v", diags)
	}
}
