package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/marci1175/fog/codegen"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/walk"

	"golang.org/x/sync/errgroup"
)

// ErrBuildFailed indicates that the build stopped because source diagnostics
// were reported.  The diagnostics themselves live on the compiler's reporter;
// the error only signals that there is nothing to link.
var ErrBuildFailed = errors.New("build failed")

// Compiler represents the state of one build session.  It owns the dependency
// graph and the session reporter and drives every project in the graph through
// the full pipeline.
type Compiler struct {
	// rootAbsPath is the absolute path to the root project directory.
	rootAbsPath string

	// features is the set of feature flags requested for the root project.
	features []string

	rep *report.Reporter

	// graph is the resolved dependency graph, set by Compile.
	graph *depm.Graph
}

// NewCompiler creates a new compiler session for the project at rootRelPath
// built with the given feature flags enabled.
func NewCompiler(rootRelPath string, features []string) (*Compiler, error) {
	rootAbsPath, err := filepath.Abs(rootRelPath)
	if err != nil {
		return nil, err
	}

	return &Compiler{
		rootAbsPath: rootAbsPath,
		features:    features,
		rep:         report.NewReporter(),
	}, nil
}

// Diagnostics returns the diagnostics collected during the session.
func (c *Compiler) Diagnostics() []*report.Diagnostic {
	return c.rep.Diagnostics()
}

// Compile runs the full build: it resolves the dependency graph, builds every
// project in it with dependencies before dependents, and writes the build
// manifest for the external linker.  Projects on the same graph level are
// built concurrently.
func (c *Compiler) Compile(ctx context.Context) (*depm.BuildManifest, error) {
	rootProj, err := depm.LoadProject(c.rootAbsPath)
	if err != nil {
		return nil, err
	}

	c.graph, err = depm.BuildGraph(rootProj, c.features)
	if err != nil {
		return nil, err
	}

	for _, level := range c.graph.Levels() {
		eg, egCtx := errgroup.WithContext(ctx)

		for _, node := range level {
			node := node

			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}

				return c.buildNode(node)
			})
		}

		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	buildDir := filepath.Join(rootProj.AbsPath, rootProj.BuildPath)
	manifest := depm.NewBuildManifest(c.graph, filepath.Join(buildDir, rootProj.Name))

	if err := depm.WriteBuildManifest(filepath.Join(buildDir, depm.BuildManifestName), manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}

// buildNode builds one project of the graph: parse, analyze, generate, and
// write the artifact.  Its dependencies have already published their exported
// tables.  Diagnostics land on a node-local reporter first and merge into the
// session reporter once the node finishes, so concurrently built projects
// never interleave their error snapshots.
func (c *Compiler) buildNode(node *depm.Node) error {
	nodeRep := report.NewReporter()

	unit := &depm.Unit{
		Project: node.Project,
		Table:   depm.NewSymbolTable(),
		Enabled: make(map[string]bool),
		Imports: make(map[string]*depm.SymbolTable),
	}

	for _, f := range node.EnabledFeatures {
		unit.Enabled[f] = true
	}

	for _, dep := range node.Deps {
		unit.Imports[dep.Project.Name] = dep.Exports
	}

	c.loadUnit(unit, nodeRep)

	if !nodeRep.AnyErrors() {
		walk.Analyze(unit, nodeRep)
	}

	if !nodeRep.AnyErrors() && !node.Project.IsLibrary {
		checkMainFunction(unit, nodeRep)
	}

	if nodeRep.AnyErrors() {
		c.mergeDiagnostics(nodeRep)
		return ErrBuildFailed
	}

	mod, err := codegen.Generate(unit)
	if err != nil {
		var diag *report.Diagnostic
		if errors.As(err, &diag) {
			c.rep.Report(diag)
			return ErrBuildFailed
		}

		return err
	}

	buildDir := filepath.Join(node.Project.AbsPath, node.Project.BuildPath)
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return err
	}

	artifactPath := filepath.Join(buildDir, node.Project.Name+".ll")
	if err := os.WriteFile(artifactPath, []byte(mod.String()), 0644); err != nil {
		return err
	}

	// Publication point: dependents on the next level read these fields.
	node.ArtifactPath = artifactPath
	node.Exports = unit.Table.Publish()

	return nil
}

// mergeDiagnostics moves a node reporter's diagnostics onto the session
// reporter.
func (c *Compiler) mergeDiagnostics(nodeRep *report.Reporter) {
	for _, diag := range nodeRep.Diagnostics() {
		c.rep.Report(diag)
	}
}

// checkMainFunction verifies that an executable project defines a suitable
// entry point: a `main` function taking no parameters.
func checkMainFunction(unit *depm.Unit, rep *report.Reporter) {
	for _, sym := range unit.Table.Candidates("main") {
		if sym.Kind != depm.SymFunc {
			continue
		}

		if sig := sym.Signature(); sig != nil && len(sig.Params) == 0 {
			return
		}

		rep.Report(&report.Diagnostic{
			File:    sym.DefFile,
			Span:    sym.DefSpan,
			Kind:    report.TypeMismatch,
			Message: "the `main` function cannot take parameters",
		})
		return
	}

	rep.Report(&report.Diagnostic{
		File:    unit.Project.MainModuleName() + ".f",
		Kind:    report.UnresolvedSymbol,
		Message: "executable project defines no `main` function",
	})
}
