package codegen

import (
	"fmt"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"

	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"
)

// Generator converts the analyzed AST of one compilation unit into a single
// LLVM module.  All iteration runs over the ordered module and definition
// slices, never over maps, so identical input produces byte-identical output.
type Generator struct {
	unit *depm.Unit

	// mod is the LLVM module being generated.
	mod *ir.Module

	// funcs maps mangled names to their declared LLVM functions.
	funcs map[string]*ir.Func

	// typeDefs maps qualified struct names to their named LLVM types.
	typeDefs map[string]lltypes.Type

	// strings interns string literal globals by their processed contents.
	strings map[string]*ir.Global

	// globalCounter numbers anonymous globals such as interned strings.
	globalCounter int

	// fn is the function currently being generated.
	fn *ir.Func

	// entry is the entry block of fn; all allocas land here so that loops
	// never grow the stack.
	entry *ir.Block

	// block is the current block being generated.
	block *ir.Block

	// blockCounter numbers the basic blocks of the current function.
	blockCounter int

	// localScopes is the stack of local scopes mapping names to their stack
	// slots.
	localScopes []map[string]llvalue.Value

	// breakTargets and continueTargets track the enclosing loops.
	breakTargets    []*ir.Block
	continueTargets []*ir.Block
}

// Generate converts the unit into an LLVM module.  Any construct that reaches
// generation in an unresolved state is an internal defect reported as a fatal
// codegen error.
func Generate(unit *depm.Unit) (mod *ir.Module, err error) {
	defer func() {
		if x := recover(); x != nil {
			lerr, ok := x.(*report.LocalError)
			if !ok {
				panic(x)
			}

			mod = nil
			err = &report.Diagnostic{
				Kind:    report.CodegenError,
				Span:    lerr.Span,
				Message: lerr.Message,
			}
		}
	}()

	g := &Generator{
		unit:     unit,
		mod:      ir.NewModule(),
		funcs:    make(map[string]*ir.Func),
		typeDefs: make(map[string]lltypes.Type),
		strings:  make(map[string]*ir.Global),
	}

	g.defineTypes()
	g.declareFuncs()
	g.generateBodies()

	return g.mod, nil
}

// -----------------------------------------------------------------------------

// appendBlock appends a new numbered block to the current function.
func (g *Generator) appendBlock() *ir.Block {
	block := g.fn.NewBlock(fmt.Sprintf("bb%d", g.blockCounter))
	g.blockCounter++

	return block
}

// alloca reserves one stack slot of the given type in the entry block.
func (g *Generator) alloca(typ lltypes.Type) *ir.InstAlloca {
	return g.entry.NewAlloca(typ)
}

// terminated returns whether the current block already has a terminator.
func (g *Generator) terminated() bool {
	return g.block.Term != nil
}

// -----------------------------------------------------------------------------

// pushScope pushes a new local scope onto the scope stack.
func (g *Generator) pushScope() {
	g.localScopes = append(g.localScopes, make(map[string]llvalue.Value))
}

// popScope pops the top local scope off the scope stack.
func (g *Generator) popScope() {
	g.localScopes = g.localScopes[:len(g.localScopes)-1]
}

// defineLocal binds a name to its stack slot in the current scope.
func (g *Generator) defineLocal(name string, slot llvalue.Value) {
	g.localScopes[len(g.localScopes)-1][name] = slot
}

// lookupLocal returns the stack slot of a local variable.  Analysis has
// already resolved every name, so a miss is an internal defect.
func (g *Generator) lookupLocal(name string, span *report.TextSpan) llvalue.Value {
	for i := len(g.localScopes) - 1; i > -1; i-- {
		if slot, ok := g.localScopes[i][name]; ok {
			return slot
		}
	}

	panic(report.Raise(report.CodegenError, span, "undefined local `%s` reached codegen", name))
}

// -----------------------------------------------------------------------------

// internString returns the global constant backing a string literal.  The
// stored bytes are the processed literal contents plus a null terminator.
func (g *Generator) internString(contents string) *ir.Global {
	if global, ok := g.strings[contents]; ok {
		return global
	}

	global := g.mod.NewGlobalDef(
		fmt.Sprintf(".str.%d", g.globalCounter),
		newCharArray(contents+"\x00"),
	)
	global.Immutable = true
	g.globalCounter++

	g.strings[contents] = global
	return global
}

// featureEnabled returns whether a function definition is compiled in under
// the unit's enabled feature set.
func featureEnabled(unit *depm.Unit, fd *ast.FuncDef) bool {
	if len(fd.Features) == 0 {
		return true
	}

	for _, f := range fd.Features {
		if unit.Enabled[f] {
			return true
		}
	}

	return false
}

// raiseICE raises an internal codegen error.
func raiseICE(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(report.CodegenError, span, msg, args...))
}

// mustPrim asserts that a type lowered from analysis is primitive.
func mustPrim(typ types.Type, span *report.TextSpan) *types.PrimType {
	pt, ok := types.InnerType(typ).(*types.PrimType)
	if !ok {
		raiseICE(span, "expected a primitive type, found %s", typ.Repr())
	}

	return pt
}
