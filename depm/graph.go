package depm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marci1175/fog/report"
)

// Node is one project in the dependency graph, compiled under a specific
// enabled feature set.  The same project requested with the same features by
// several dependents is a single shared node.
type Node struct {
	Project *Project

	// The feature flags enabled for this node's compilation, sorted.
	EnabledFeatures []string

	// The direct dependencies of the node, ordered by name.
	Deps []*Node

	// Level is the height of the node above the leaves of the graph: leaves
	// are level zero.  Nodes of the same level never depend on one another,
	// so a level can be built in parallel.
	Level int

	// Exports is the node's published symbol table, set once the node has
	// been analyzed.  Dependents may only read it after publication, which
	// the level ordering guarantees.
	Exports *SymbolTable

	// ArtifactPath is the absolute path of the node's emitted artifact, set
	// once the node has been generated.
	ArtifactPath string
}

// Key returns the cache key identifying the node: its name, version, and
// sorted enabled feature set.
func (n *Node) Key() string {
	return nodeKey(n.Project.Name, n.Project.Version, n.EnabledFeatures)
}

func nodeKey(name, version string, features []string) string {
	return fmt.Sprintf("%s@%s+%s", name, version, strings.Join(features, ","))
}

// Graph is the resolved dependency graph of one build.
type Graph struct {
	Root *Node

	// Nodes in topological order: every node appears after all of its
	// dependencies.
	Nodes []*Node
}

// Levels groups the graph's nodes by level, lowest first.  All nodes of one
// level can be built concurrently once the previous level has finished.
func (g *Graph) Levels() [][]*Node {
	maxLevel := 0
	for _, node := range g.Nodes {
		if node.Level > maxLevel {
			maxLevel = node.Level
		}
	}

	levels := make([][]*Node, maxLevel+1)
	for _, node := range g.Nodes {
		levels[node.Level] = append(levels[node.Level], node)
	}

	return levels
}

// -----------------------------------------------------------------------------

// graphBuilder carries the state of one graph construction.
type graphBuilder struct {
	// cache maps node keys to finished nodes so that shared dependencies are
	// resolved only once.
	cache map[string]*Node

	// onStack is the set of project names on the current resolution path,
	// used to detect dependency cycles.
	onStack map[string]bool

	// versions records the version each project name was first requested at;
	// a second request at a different version is a conflict.
	versions map[string]string

	order []*Node
}

// BuildGraph resolves the dependency graph rooted at the given project,
// compiled with the given enabled features.  The returned graph is in
// topological order; any resolution failure aborts with a dependency error.
func BuildGraph(root *Project, enabled []string) (*Graph, error) {
	gb := &graphBuilder{
		cache:    make(map[string]*Node),
		onStack:  make(map[string]bool),
		versions: make(map[string]string),
	}

	rootNode, err := gb.resolve(root, enabled)
	if err != nil {
		return nil, err
	}

	return &Graph{Root: rootNode, Nodes: gb.order}, nil
}

// resolve builds the node for one loaded project and, recursively, the nodes
// of its dependencies.
func (gb *graphBuilder) resolve(proj *Project, enabled []string) (*Node, error) {
	features := append([]string(nil), enabled...)
	sort.Strings(features)

	for _, f := range features {
		if !proj.DeclaresFeature(f) {
			return nil, &report.Diagnostic{
				Kind: report.MissingDependency,
				Message: fmt.Sprintf("project `%s` does not declare feature `%s`",
					proj.Name, f),
			}
		}
	}

	if version, ok := gb.versions[proj.Name]; ok {
		if version != proj.Version {
			return nil, &report.Diagnostic{
				Kind: report.VersionConflict,
				Message: fmt.Sprintf("project `%s` is required at both version %s and version %s",
					proj.Name, version, proj.Version),
			}
		}
	} else {
		gb.versions[proj.Name] = proj.Version
	}

	key := nodeKey(proj.Name, proj.Version, features)
	if node, ok := gb.cache[key]; ok {
		return node, nil
	}

	if gb.onStack[proj.Name] {
		return nil, &report.Diagnostic{
			Kind:    report.CyclicDependency,
			Message: fmt.Sprintf("dependency cycle through project `%s`", proj.Name),
		}
	}

	gb.onStack[proj.Name] = true
	defer delete(gb.onStack, proj.Name)

	node := &Node{Project: proj, EnabledFeatures: features}

	for _, dep := range proj.Dependencies {
		depProj, err := LoadProject(proj.DepDir(dep.Name))
		if err != nil {
			return nil, err
		}

		if depProj.Name != dep.Name {
			return nil, &report.Diagnostic{
				Kind: report.MissingDependency,
				Message: fmt.Sprintf("dependency folder `%s` contains project `%s`",
					dep.Name, depProj.Name),
			}
		}

		if !depProj.IsLibrary {
			return nil, &report.Diagnostic{
				Kind: report.MissingDependency,
				Message: fmt.Sprintf("dependency `%s` is not a library", dep.Name),
			}
		}

		if depProj.Version != dep.Version {
			return nil, &report.Diagnostic{
				Kind: report.VersionConflict,
				Message: fmt.Sprintf("dependency `%s` is version %s, but version %s is required",
					dep.Name, depProj.Version, dep.Version),
			}
		}

		depNode, err := gb.resolve(depProj, dep.Features)
		if err != nil {
			return nil, err
		}

		node.Deps = append(node.Deps, depNode)

		if depNode.Level+1 > node.Level {
			node.Level = depNode.Level + 1
		}
	}

	gb.cache[key] = node
	gb.order = append(gb.order, node)

	return node, nil
}
