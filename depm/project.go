package depm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/marci1175/fog/report"
	"github.com/pelletier/go-toml"
)

// ManifestName is the file name of a project manifest.
const ManifestName = "fog.toml"

// tomlManifest represents a project manifest as it is encoded in TOML.
type tomlManifest struct {
	Name      string   `toml:"name"`
	Version   string   `toml:"version"`
	IsLibrary bool     `toml:"is_library"`
	Features  []string `toml:"features"`
	BuildPath string   `toml:"build_path"`

	AdditionalLinkingMaterial []string `toml:"additional_linking_material"`

	Dependencies map[string]tomlDependency `toml:"dependencies"`
}

// tomlDependency represents one dependency request in a manifest.
type tomlDependency struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features"`
}

// Dependency is one resolved dependency request of a project.
type Dependency struct {
	Name    string
	Version string

	// The feature flags the dependent asks to enable in the dependency.
	Features []string
}

// Project is a loaded Fog project: the deserialized manifest plus its location
// on disk.
type Project struct {
	Name      string
	Version   string
	IsLibrary bool

	// The feature flags the project declares.  Only declared flags may be
	// enabled by dependents.
	Features []string

	// The directory artifacts are written to, relative to the project root.
	// Defaults to `build`.
	BuildPath string

	// Extra object files or libraries handed to the linker, relative to the
	// project root.
	LinkingMaterial []string

	// The absolute path of the project root directory.
	AbsPath string

	// The project's dependency requests ordered by name.
	Dependencies []Dependency
}

// DeclaresFeature returns whether the project declares the given feature flag.
func (p *Project) DeclaresFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}

	return false
}

// DepDir returns the directory a dependency of the project lives in.
func (p *Project) DepDir(name string) string {
	return filepath.Join(p.AbsPath, "deps", name)
}

// SrcDir returns the project's source directory.
func (p *Project) SrcDir() string {
	return filepath.Join(p.AbsPath, "src")
}

// MainModuleName returns the name of the module compilation starts from:
// `main` for executables, `lib` for libraries.
func (p *Project) MainModuleName() string {
	if p.IsLibrary {
		return "lib"
	}

	return "main"
}

// LoadProject loads and validates the project rooted at abspath.
func LoadProject(abspath string) (*Project, error) {
	buff, err := os.ReadFile(filepath.Join(abspath, ManifestName))
	if err != nil {
		return nil, &report.Diagnostic{
			Kind:    report.MissingDependency,
			Message: fmt.Sprintf("unable to read manifest at `%s`: %s", abspath, err),
		}
	}

	manifest := &tomlManifest{}
	if err := toml.Unmarshal(buff, manifest); err != nil {
		return nil, &report.Diagnostic{
			Kind:    report.MissingDependency,
			Message: fmt.Sprintf("malformed manifest at `%s`: %s", abspath, err),
		}
	}

	proj := &Project{
		Name:            manifest.Name,
		Version:         manifest.Version,
		IsLibrary:       manifest.IsLibrary,
		Features:        manifest.Features,
		BuildPath:       manifest.BuildPath,
		LinkingMaterial: manifest.AdditionalLinkingMaterial,
		AbsPath:         abspath,
	}

	if proj.Name == "" {
		return nil, &report.Diagnostic{
			Kind:    report.MissingDependency,
			Message: fmt.Sprintf("manifest at `%s` is missing a project name", abspath),
		}
	}

	if proj.Version == "" {
		return nil, &report.Diagnostic{
			Kind:    report.MissingDependency,
			Message: fmt.Sprintf("project `%s` is missing a version", proj.Name),
		}
	}

	if proj.BuildPath == "" {
		proj.BuildPath = "build"
	}

	// Dependency order is made deterministic here so that every later stage
	// can iterate the list directly.
	for name, dep := range manifest.Dependencies {
		proj.Dependencies = append(proj.Dependencies, Dependency{
			Name:     name,
			Version:  dep.Version,
			Features: dep.Features,
		})
	}

	sort.Slice(proj.Dependencies, func(i, j int) bool {
		return proj.Dependencies[i].Name < proj.Dependencies[j].Name
	})

	return proj, nil
}
