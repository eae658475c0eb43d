package codegen

import (
	"sort"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
)

// declareFuncs declares every function the unit defines or can call: its own
// definitions, its external declarations, and the exported functions of its
// dependencies.
func (g *Generator) declareFuncs() {
	for _, mod := range g.unit.Modules {
		for _, def := range mod.File.Defs {
			switch v := def.(type) {
			case *ast.ExternalDef:
				g.declareExternal(v)
			case *ast.FuncDef:
				if featureEnabled(g.unit, v) {
					g.declareFunc(v)
				}
			case *ast.ExtendDef:
				for _, method := range v.Methods {
					g.declareFunc(method)
				}
			}
		}
	}

	// Dependency exports are declared for linking; the order is fixed by the
	// sorted dependency names and each table's sorted export list.
	depNames := make([]string, 0, len(g.unit.Imports))
	for name := range g.unit.Imports {
		depNames = append(depNames, name)
	}
	sort.Strings(depNames)

	for _, name := range depNames {
		for _, sym := range g.unit.Imports[name].Exported() {
			if sym.Kind != depm.SymFunc {
				continue
			}

			if _, ok := g.funcs[sym.MangledName]; ok {
				continue
			}

			sig := sym.Signature()

			params := make([]*ir.Param, len(sig.Params))
			for i, paramType := range sig.Params {
				params[i] = ir.NewParam("", g.convType(paramType))
			}

			f := g.mod.NewFunc(sym.MangledName, g.convType(sig.Ret), params...)
			f.Sig.Variadic = sig.Variadic
			g.funcs[sym.MangledName] = f
		}
	}
}

// declareExternal declares an external function linked by its source name.
func (g *Generator) declareExternal(ed *ast.ExternalDef) {
	params := make([]*ir.Param, len(ed.Params))
	for i, param := range ed.Params {
		params[i] = ir.NewParam(param.Name, g.convType(param.Type))
	}

	f := g.mod.NewFunc(ed.Name, g.convType(ed.ReturnType), params...)
	f.Sig.Variadic = ed.Variadic
	g.funcs[ed.Name] = f
}

// declareFunc declares a defined function under its mangled name and attaches
// its hint attributes.
func (g *Generator) declareFunc(fd *ast.FuncDef) {
	if fd.MangledName == "" {
		raiseICE(fd.NameSpan, "function `%s` reached codegen without a mangled name", fd.Name)
	}

	params := make([]*ir.Param, len(fd.Params))
	for i, param := range fd.Params {
		params[i] = ir.NewParam(param.Name, g.convType(param.Type))
	}

	f := g.mod.NewFunc(fd.MangledName, g.convType(fd.ReturnType), params...)

	for _, hint := range fd.Hints {
		switch hint {
		case ast.HintInline:
			f.FuncAttrs = append(f.FuncAttrs, enum.FuncAttrInlineHint)
		case ast.HintCold:
			f.FuncAttrs = append(f.FuncAttrs, enum.FuncAttrCold)
		case ast.HintNoFree:
			f.FuncAttrs = append(f.FuncAttrs, enum.FuncAttrNoFree)
		case ast.HintNoUnwind:
			f.FuncAttrs = append(f.FuncAttrs, enum.FuncAttrNoUnwind)
		}
	}

	g.funcs[fd.MangledName] = f
}

// -----------------------------------------------------------------------------

// generateBodies generates the body of every compiled function definition.
func (g *Generator) generateBodies() {
	for _, mod := range g.unit.Modules {
		for _, def := range mod.File.Defs {
			switch v := def.(type) {
			case *ast.FuncDef:
				if featureEnabled(g.unit, v) {
					g.genFuncBody(v)
				}
			case *ast.ExtendDef:
				for _, method := range v.Methods {
					g.genFuncBody(method)
				}
			}
		}
	}
}

// genFuncBody generates one function body.  Every parameter and local gets a
// stack slot in the entry block; reads load it and writes store to it.
func (g *Generator) genFuncBody(fd *ast.FuncDef) {
	g.fn = g.funcs[fd.MangledName]
	g.blockCounter = 0
	g.entry = g.fn.NewBlock("entry")
	g.block = g.entry

	g.pushScope()
	defer g.popScope()

	for i, param := range fd.Params {
		slot := g.alloca(g.convType(param.Type))
		g.block.NewStore(g.fn.Params[i], slot)
		g.defineLocal(param.Name, slot)
	}

	g.genBlock(fd.Body)

	// A fallthrough end is only reachable in void functions; analysis
	// guarantees every other path returns.
	if !g.terminated() {
		if g.fn.Sig.RetType.Equal(lltypes.Void) {
			g.block.NewRet(nil)
		} else {
			g.block.NewUnreachable()
		}
	}
}
