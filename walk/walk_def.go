package walk

import (
	"fmt"
	"strings"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// Analyze semantically analyzes all modules of the unit.  Diagnostics are
// recorded on the reporter; the unit may proceed to code generation only if
// the reporter stays clean.
func Analyze(unit *depm.Unit, rep *report.Reporter) {
	w := &Walker{
		unit:    unit,
		rep:     rep,
		methods: make(map[string]*methodSet),
	}

	w.resolveDeclaredTypes()

	// Cycle checking and conformance need fully resolved types, and bodies
	// need both, so each pass only runs if the previous ones found nothing.
	if rep.AnyErrors() {
		return
	}

	w.checkStructCycles()
	w.collectMethods()
	w.assignMangledNames()

	if rep.AnyErrors() {
		return
	}

	for _, mod := range unit.Modules {
		w.mod = mod

		for _, def := range mod.File.Defs {
			w.walkDef(def)
		}
	}
}

// -----------------------------------------------------------------------------

// resolveDeclaredTypes resolves every opaque type reference occurring in the
// unit's declared signatures and type definitions.
func (w *Walker) resolveDeclaredTypes() {
	for _, mod := range w.unit.Modules {
		w.mod = mod

		for _, def := range mod.File.Defs {
			w.resolveDefTypes(def)
		}
	}
}

// resolveDefTypes resolves the types declared by a single definition.
func (w *Walker) resolveDefTypes(def ast.Def) {
	defer w.catchErrors()

	switch v := def.(type) {
	case *ast.FuncDef:
		w.resolveFuncTypes(v)
	case *ast.ExternalDef:
		for _, param := range v.Params {
			w.resolveType(param.Type, param.Span)

			if types.Equals(param.Type, types.VoidType) {
				panic(report.Raise(report.TypeMismatch, param.Span,
					"parameter cannot have type void"))
			}
		}

		w.resolveType(v.ReturnType, v.NameSpan)
	case *ast.StructDef:
		for i := range v.Type.Fields {
			field := &v.Type.Fields[i]
			w.resolveType(field.Type, v.NameSpan)

			if types.Equals(field.Type, types.VoidType) {
				panic(report.Raise(report.TypeMismatch, v.NameSpan,
					"field `%s` cannot have type void", field.Name))
			}
		}
	case *ast.TraitDef:
		for _, method := range v.Methods {
			w.resolveType(method.Sig, method.Span)
		}
	case *ast.ExtendDef:
		for _, method := range v.Methods {
			w.resolveFuncTypes(method)
		}
	}
}

func (w *Walker) resolveFuncTypes(fd *ast.FuncDef) {
	for _, param := range fd.Params {
		w.resolveType(param.Type, param.Span)

		if types.Equals(param.Type, types.VoidType) {
			panic(report.Raise(report.TypeMismatch, param.Span,
				"parameter cannot have type void"))
		}
	}

	w.resolveType(fd.ReturnType, fd.NameSpan)
}

// resolveType fills in the opaque type references inside typ.  Trait types
// resolve as themselves; using one as a value type is rejected later wherever
// a concrete type is required.
func (w *Walker) resolveType(typ types.Type, span *report.TextSpan) {
	switch v := typ.(type) {
	case *types.OpaqueType:
		if v.Value == nil {
			v.Value = w.lookupType(v.Name, span).Type
		}
	case *types.PointerType:
		w.resolveType(v.Elem, span)
	case *types.ArrayType:
		w.resolveType(v.Elem, span)
	case *types.FuncType:
		for _, param := range v.Params {
			w.resolveType(param, span)
		}

		w.resolveType(v.Ret, span)
	}
}

// -----------------------------------------------------------------------------

// Colors of the cycle detection search.
const (
	colorWhite = iota
	colorGrey
	colorBlack
)

// checkStructCycles detects structs that contain themselves by value.  It is
// a three-color depth-first search over the field containment graph: opaque
// references are followed through struct fields and array elements, while
// pointer fields break the edge.  The diagnostic names the members of the
// cycle itself, never a struct that merely reaches it.
func (w *Walker) checkStructCycles() {
	s := &cycleSearch{
		colors: make(map[*types.StructType]int),
		defs:   make(map[*types.StructType]*ast.StructDef),
		files:  make(map[*types.StructType]string),
		rep:    w.rep,
	}

	var roots []*types.StructType
	for _, mod := range w.unit.Modules {
		for _, def := range mod.File.Defs {
			if sd, ok := def.(*ast.StructDef); ok {
				s.defs[sd.Type] = sd
				s.files[sd.Type] = mod.ReprPath
				roots = append(roots, sd.Type)
			}
		}
	}

	for _, root := range roots {
		s.search(root)
	}
}

// cycleSearch carries the state of one containment cycle search.
type cycleSearch struct {
	colors map[*types.StructType]int
	defs   map[*types.StructType]*ast.StructDef
	files  map[*types.StructType]string

	// stack is the grey path of the search; when the search closes on a grey
	// struct, the stack suffix from that struct is the cycle's membership.
	stack []*types.StructType

	rep *report.Reporter
}

// search runs the depth-first search from one struct.
func (s *cycleSearch) search(st *types.StructType) {
	switch s.colors[st] {
	case colorBlack:
		return
	case colorGrey:
		s.reportCycle(st)
		return
	}

	s.colors[st] = colorGrey
	s.stack = append(s.stack, st)

	for _, field := range st.Fields {
		s.searchChildren(field.Type)
	}

	s.stack = s.stack[:len(s.stack)-1]
	if s.colors[st] == colorGrey {
		s.colors[st] = colorBlack
	}
}

// searchChildren searches the types contained by value inside typ.  Pointers
// are not followed because they do not count as containment.
func (s *cycleSearch) searchChildren(typ types.Type) {
	switch v := types.InnerType(typ).(type) {
	case *types.StructType:
		s.search(v)
	case *types.ArrayType:
		s.searchChildren(v.Elem)
	}
}

// reportCycle reports the cycle closing at st.  The members are blackened so
// that each cycle is reported exactly once and structs that only contain a
// cycle member stay clean.
func (s *cycleSearch) reportCycle(st *types.StructType) {
	start := 0
	for i, member := range s.stack {
		if member == st {
			start = i
			break
		}
	}

	var through []string
	for _, member := range s.stack[start+1:] {
		through = append(through, "`"+s.defs[member].Name+"`")
		s.colors[member] = colorBlack
	}
	s.colors[st] = colorBlack

	sd := s.defs[st]
	msg := fmt.Sprintf("struct `%s` contains itself by value", sd.Name)
	if len(through) > 0 {
		msg += " through " + strings.Join(through, ", ")
	}

	s.rep.Report(&report.Diagnostic{
		File:    s.files[st],
		Span:    sd.NameSpan,
		Kind:    report.StructContainmentCycle,
		Message: msg,
	})
}

// -----------------------------------------------------------------------------

// collectMethods gathers the method sets declared by the unit's extend blocks
// and checks trait conformance.
func (w *Walker) collectMethods() {
	for _, mod := range w.unit.Modules {
		w.mod = mod

		for _, def := range mod.File.Defs {
			if xd, ok := def.(*ast.ExtendDef); ok {
				func() {
					defer w.catchErrors()
					w.collectExtend(xd)
				}()
			}
		}
	}
}

// collectExtend registers one extend block's methods.
func (w *Walker) collectExtend(xd *ast.ExtendDef) {
	targetSym := w.lookupType(xd.TargetName, xd.TargetSpan)
	if targetSym.Kind != depm.SymType {
		panic(report.Raise(report.TypeMismatch, xd.TargetSpan,
			"cannot extend `%s`: not a struct or enum", xd.TargetName))
	}

	qualified := types.InnerType(targetSym.Type).Repr()

	ms, ok := w.methods[qualified]
	if !ok {
		ms = newMethodSet()
		w.methods[qualified] = ms
	}

	for _, method := range xd.Methods {
		if _, ok := ms.methods[method.Name]; ok {
			panic(report.Raise(report.DuplicateDefinition, method.NameSpan,
				"type `%s` already has a method named `%s`", xd.TargetName, method.Name))
		}

		method.MangledName = mangledMethodName(w.unit.Project.Name, xd.TargetName, method.Name)
		ms.order = append(ms.order, method.Name)
		ms.methods[method.Name] = method
	}

	if xd.TraitName != "" {
		w.checkTraitConformance(xd, ms)
	}
}

// checkTraitConformance checks that an extend block implementing a trait
// provides every trait method with a matching signature.
func (w *Walker) checkTraitConformance(xd *ast.ExtendDef, ms *methodSet) {
	traitSym := w.lookupType(xd.TraitName, xd.TargetSpan)

	tt, ok := types.InnerType(traitSym.Type).(*types.TraitType)
	if !ok {
		panic(report.Raise(report.TypeMismatch, xd.TargetSpan,
			"`%s` is not a trait", xd.TraitName))
	}

	if ms.traits[tt.Name] {
		panic(report.Raise(report.DuplicateDefinition, xd.TargetSpan,
			"type `%s` already implements trait `%s`", xd.TargetName, xd.TraitName))
	}
	ms.traits[tt.Name] = true

	for _, required := range tt.Methods {
		method, ok := ms.methods[required.Name]
		if !ok {
			panic(report.Raise(report.IncompleteTraitImpl, xd.TargetSpan,
				"type `%s` is missing trait method `%s`", xd.TargetName, required.Name))
		}

		// The implicit self parameter is not part of the trait signature.
		sig := &types.FuncType{Ret: method.ReturnType}
		for _, param := range method.Params[1:] {
			sig.Params = append(sig.Params, param.Type)
		}

		if !types.Equals(sig, required.Sig) {
			panic(report.Raise(report.IncompleteTraitImpl, method.NameSpan,
				"method `%s` has signature %s, but trait `%s` requires %s",
				required.Name, sig.Repr(), xd.TraitName, required.Sig.Repr()))
		}
	}
}

// -----------------------------------------------------------------------------

// assignMangledNames assigns the emitted name of every function symbol and
// definition in the unit.
func (w *Walker) assignMangledNames() {
	for _, name := range w.unit.Table.Names() {
		for _, sym := range w.unit.Table.Candidates(name) {
			if sym.Kind == depm.SymFunc {
				sym.MangledName = mangledName(sym)
			}
		}
	}

	for _, mod := range w.unit.Modules {
		for _, def := range mod.File.Defs {
			if fd, ok := def.(*ast.FuncDef); ok {
				for _, sym := range w.unit.Table.Candidates(fd.Name) {
					if sym.DefSpan == fd.NameSpan {
						fd.MangledName = sym.MangledName
					}
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// walkDef walks the body of one definition.
func (w *Walker) walkDef(def ast.Def) {
	switch v := def.(type) {
	case *ast.FuncDef:
		if !w.featureEnabled(v) {
			return
		}

		w.walkFuncBody(v)
	case *ast.ExtendDef:
		for _, method := range v.Methods {
			w.walkFuncBody(method)
		}
	}
}

// featureEnabled returns whether a function definition is compiled in under
// the unit's enabled feature set.
func (w *Walker) featureEnabled(fd *ast.FuncDef) bool {
	if len(fd.Features) == 0 {
		return true
	}

	for _, f := range fd.Features {
		if w.unit.Enabled[f] {
			return true
		}
	}

	return false
}

// walkFuncBody type checks one function body.
func (w *Walker) walkFuncBody(fd *ast.FuncDef) {
	defer w.catchErrors()

	w.pushScope()
	defer w.popScope()

	for _, param := range fd.Params {
		w.defineLocal(&localVar{
			Name:    param.Name,
			Type:    param.Type,
			IsParam: true,
		}, param.Span)
	}

	w.enclosingReturnType = fd.ReturnType
	w.walkBlock(fd.Body)

	if !types.Equals(fd.ReturnType, types.VoidType) && !blockReturns(fd.Body) {
		panic(report.Raise(report.TypeMismatch, fd.NameSpan,
			"function `%s` is missing a return", fd.Name))
	}
}

// blockReturns conservatively reports whether a block always returns: either
// its last statement is a return, or it is an if statement whose branches all
// return and which has an else.
func blockReturns(block *ast.Block) bool {
	if len(block.Stmts) == 0 {
		return false
	}

	switch v := block.Stmts[len(block.Stmts)-1].(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		if v.ElseBody == nil || !blockReturns(v.ElseBody) {
			return false
		}

		for _, branch := range v.Branches {
			if !blockReturns(branch.Body) {
				return false
			}
		}

		return true
	case *ast.LoopStmt:
		// An unconditional loop with no break never falls through.
		return !blockBreaks(v.Body)
	}

	return false
}

// blockBreaks reports whether a block contains a break that targets the
// enclosing loop.
func blockBreaks(block *ast.Block) bool {
	for _, stmt := range block.Stmts {
		switch v := stmt.(type) {
		case *ast.BreakStmt:
			return true
		case *ast.IfStmt:
			for _, branch := range v.Branches {
				if blockBreaks(branch.Body) {
					return true
				}
			}

			if v.ElseBody != nil && blockBreaks(v.ElseBody) {
				return true
			}
		}
	}

	return false
}
