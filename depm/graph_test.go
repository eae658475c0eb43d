package depm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/marci1175/fog/report"
)

// writeManifest creates a project directory with the given fog.toml contents.
func writeManifest(t *testing.T, dir, contents string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

// loadRoot loads the project at dir, failing the test on error.
func loadRoot(t *testing.T, dir string) *Project {
	t.Helper()

	proj, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject: %s", err)
	}

	return proj
}

// assertDiagKind fails the test unless err is a diagnostic of the given kind.
func assertDiagKind(t *testing.T, err error, kind report.ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected a %s error, got none", kind)
	}

	var diag *report.Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("expected a diagnostic, got %T: %s", err, err)
	}

	if diag.Kind != kind {
		t.Fatalf("got %s (%s), want %s", diag.Kind, diag.Message, kind)
	}
}

func libManifest(name string) string {
	return fmt.Sprintf("name = \"%s\"\nversion = \"0.1.0\"\nis_library = true\n", name)
}

func TestBuildGraphTopologicalOrder(t *testing.T) {
	// root depends on a and b; b also depends on a.  The shared request for a
	// must resolve to a single node.
	root := t.TempDir()
	writeManifest(t, root, `
name = "root"
version = "0.1.0"

[dependencies.a]
version = "0.1.0"

[dependencies.b]
version = "0.1.0"
`)
	writeManifest(t, filepath.Join(root, "deps", "a"), libManifest("a"))
	writeManifest(t, filepath.Join(root, "deps", "b"), `
name = "b"
version = "0.1.0"
is_library = true

[dependencies.a]
version = "0.1.0"
`)
	writeManifest(t, filepath.Join(root, "deps", "b", "deps", "a"), libManifest("a"))

	graph, err := BuildGraph(loadRoot(t, root), nil)
	if err != nil {
		t.Fatalf("BuildGraph: %s", err)
	}

	if len(graph.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(graph.Nodes))
	}

	// Every node appears after its dependencies.
	seen := make(map[string]bool)
	for _, node := range graph.Nodes {
		for _, dep := range node.Deps {
			if !seen[dep.Project.Name] {
				t.Errorf("node %s appears before its dependency %s",
					node.Project.Name, dep.Project.Name)
			}
		}

		seen[node.Project.Name] = true
	}

	wantLevels := map[string]int{"a": 0, "b": 1, "root": 2}
	for _, node := range graph.Nodes {
		if node.Level != wantLevels[node.Project.Name] {
			t.Errorf("node %s has level %d, want %d",
				node.Project.Name, node.Level, wantLevels[node.Project.Name])
		}
	}

	levels := graph.Levels()
	if len(levels) != 3 {
		t.Fatalf("got %d levels, want 3", len(levels))
	}

	// The two requests for a resolved to one shared node.
	if graph.Nodes[0] != graph.Root.Deps[0] || graph.Nodes[0] != graph.Root.Deps[1].Deps[0] {
		t.Errorf("shared dependency was not resolved to a single node")
	}
}

func TestBuildGraphVersionConflict(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
name = "root"
version = "0.1.0"

[dependencies.a]
version = "0.2.0"
`)
	writeManifest(t, filepath.Join(root, "deps", "a"), libManifest("a"))

	_, err := BuildGraph(loadRoot(t, root), nil)
	assertDiagKind(t, err, report.VersionConflict)
}

func TestBuildGraphCyclicDependency(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
name = "root"
version = "0.1.0"

[dependencies.a]
version = "0.1.0"
`)
	writeManifest(t, filepath.Join(root, "deps", "a"), `
name = "a"
version = "0.1.0"
is_library = true

[dependencies.b]
version = "0.1.0"
`)
	writeManifest(t, filepath.Join(root, "deps", "a", "deps", "b"), `
name = "b"
version = "0.1.0"
is_library = true

[dependencies.a]
version = "0.1.0"
`)
	writeManifest(t, filepath.Join(root, "deps", "a", "deps", "b", "deps", "a"), libManifest("a"))

	_, err := BuildGraph(loadRoot(t, root), nil)
	assertDiagKind(t, err, report.CyclicDependency)
}

func TestBuildGraphMissingDependency(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
name = "root"
version = "0.1.0"

[dependencies.a]
version = "0.1.0"
`)

	_, err := BuildGraph(loadRoot(t, root), nil)
	assertDiagKind(t, err, report.MissingDependency)
}

func TestBuildGraphNonLibraryDependency(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
name = "root"
version = "0.1.0"

[dependencies.a]
version = "0.1.0"
`)
	writeManifest(t, filepath.Join(root, "deps", "a"), "name = \"a\"\nversion = \"0.1.0\"\n")

	_, err := BuildGraph(loadRoot(t, root), nil)
	assertDiagKind(t, err, report.MissingDependency)
}

func TestBuildGraphUndeclaredFeature(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "name = \"root\"\nversion = \"0.1.0\"\n")

	_, err := BuildGraph(loadRoot(t, root), []string{"fast"})
	assertDiagKind(t, err, report.MissingDependency)

	// A dependency request may also only enable declared features.
	gated := t.TempDir()
	writeManifest(t, gated, `
name = "root"
version = "0.1.0"

[dependencies.a]
version = "0.1.0"
features = ["fast"]
`)
	writeManifest(t, filepath.Join(gated, "deps", "a"), libManifest("a"))

	_, err = BuildGraph(loadRoot(t, gated), nil)
	assertDiagKind(t, err, report.MissingDependency)

	declared := t.TempDir()
	writeManifest(t, declared, `
name = "root"
version = "0.1.0"

[dependencies.a]
version = "0.1.0"
features = ["fast"]
`)
	writeManifest(t, filepath.Join(declared, "deps", "a"),
		"name = \"a\"\nversion = \"0.1.0\"\nis_library = true\nfeatures = [\"fast\"]\n")

	graph, err := BuildGraph(loadRoot(t, declared), nil)
	if err != nil {
		t.Fatalf("BuildGraph: %s", err)
	}

	depNode := graph.Root.Deps[0]
	if len(depNode.EnabledFeatures) != 1 || depNode.EnabledFeatures[0] != "fast" {
		t.Errorf("dependency node enabled features = %v, want [fast]", depNode.EnabledFeatures)
	}
}
