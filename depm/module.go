package depm

import "github.com/marci1175/fog/ast"

// Module is one source module of a project: a single `.f` file under `src/`.
// The main module of an executable project is `src/main.f`.
type Module struct {
	// Name is the file stem of the module, eg. `main` for `src/main.f`.
	Name string

	// AbsPath is the absolute path of the module file on disk.
	AbsPath string

	// ReprPath is the path used to represent the module in diagnostics,
	// relative to the project root.
	ReprPath string

	// File is the parsed AST of the module.
	File *ast.File
}

// Unit is the compilation state of one project while it is being built: its
// parsed modules, its symbol table, the feature set it is compiled under, and
// the exported tables of its direct dependencies.
type Unit struct {
	Project *Project

	Modules []*Module

	// Table is the project-wide symbol table shared by all modules.
	Table *SymbolTable

	// Enabled is the set of feature flags active for this compilation.
	Enabled map[string]bool

	// Imports maps dependency names to their published symbol tables.
	Imports map[string]*SymbolTable
}
