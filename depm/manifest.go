package depm

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// BuildManifestName is the file name of the build manifest written next to
// the root artifact.
const BuildManifestName = "build_manifest.json"

// BuildManifest describes one finished build for the external linker: the
// emitted artifacts in link order, any extra material the projects ask to
// link, and the path of the final output.  The compiler never invokes the
// linker itself.
type BuildManifest struct {
	// The emitted artifact paths, dependencies before dependents, the root
	// project last.
	BuildOutputPaths []string `json:"build_output_paths"`

	// Extra object files and libraries collected from every project in the
	// graph, resolved to absolute paths.
	AdditionalLinkingMaterial []string `json:"additional_linking_material"`

	// The path the linked output should be written to.
	OutputPath string `json:"output_path"`
}

// NewBuildManifest assembles the manifest for a resolved and generated graph.
// Graph order is topological, which is exactly the link order the manifest
// promises.
func NewBuildManifest(g *Graph, outputPath string) *BuildManifest {
	manifest := &BuildManifest{OutputPath: outputPath}

	for _, node := range g.Nodes {
		manifest.BuildOutputPaths = append(manifest.BuildOutputPaths, node.ArtifactPath)

		for _, material := range node.Project.LinkingMaterial {
			manifest.AdditionalLinkingMaterial = append(manifest.AdditionalLinkingMaterial,
				filepath.Join(node.Project.AbsPath, material))
		}
	}

	return manifest
}

// WriteBuildManifest writes the manifest as JSON to the given path.
func WriteBuildManifest(path string, manifest *BuildManifest) error {
	buff, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(buff, '\n'), 0644)
}
