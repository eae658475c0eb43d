package build

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/syntax"
)

// SourceExt is the file extension of Fog source modules.
const SourceExt = ".f"

// loadUnit discovers and parses the source modules of one compilation unit.
// Compilation starts from the project's main module; file imports pull the
// remaining modules in, so a module never referenced from the main module's
// import closure is not compiled.
func (c *Compiler) loadUnit(unit *depm.Unit, rep *report.Reporter) {
	mainPath := filepath.Join(unit.Project.SrcDir(), unit.Project.MainModuleName()+SourceExt)

	loaded := map[string]bool{mainPath: true}
	queue := []string{mainPath}

	for len(queue) > 0 {
		modPath := queue[0]
		queue = queue[1:]

		mod := c.parseModule(unit, rep, modPath)
		if mod == nil {
			continue
		}

		unit.Modules = append(unit.Modules, mod)

		for _, imp := range mod.File.Imports {
			if imp.File == "" {
				continue
			}

			impPath := filepath.Join(filepath.Dir(modPath), imp.File)
			if loaded[impPath] {
				continue
			}

			loaded[impPath] = true
			queue = append(queue, impPath)
		}
	}
}

// parseModule opens and parses one source module, declaring its global
// symbols into the unit's table.  A module that cannot be opened reports a
// diagnostic and is skipped.
func (c *Compiler) parseModule(unit *depm.Unit, rep *report.Reporter, modPath string) *depm.Module {
	reprPath, err := filepath.Rel(unit.Project.AbsPath, modPath)
	if err != nil {
		reprPath = modPath
	}

	f, err := os.Open(modPath)
	if err != nil {
		rep.Report(&report.Diagnostic{
			File:    reprPath,
			Kind:    report.ParseError,
			Message: fmt.Sprintf("unable to open source module: %s", err),
		})
		return nil
	}
	defer f.Close()

	file := &ast.File{AbsPath: modPath, ReprPath: reprPath}

	p := syntax.NewParser(unit.Project.Name, unit.Table, rep, file, bufio.NewReader(f))
	p.Parse()

	name := filepath.Base(modPath)
	name = name[:len(name)-len(filepath.Ext(name))]

	return &depm.Module{
		Name:     name,
		AbsPath:  modPath,
		ReprPath: reprPath,
		File:     file,
	}
}
