package syntax

import (
	"strconv"

	"github.com/marci1175/fog/ast"
	"github.com/marci1175/fog/depm"
	"github.com/marci1175/fog/report"
	"github.com/marci1175/fog/types"
)

// parseItem parses one top-level item and appends it to the file.
//
//	item := import | struct | enum | trait | extend | external | func ;
func (p *Parser) parseItem() {
	switch p.tok.Kind {
	case TOK_IMPORT:
		p.file.Imports = append(p.file.Imports, p.parseImport())
	case TOK_STRUCT:
		p.file.Defs = append(p.file.Defs, p.parseStructDef())
	case TOK_ENUM:
		p.file.Defs = append(p.file.Defs, p.parseEnumDef())
	case TOK_TRAIT:
		p.file.Defs = append(p.file.Defs, p.parseTraitDef())
	case TOK_EXTEND:
		p.file.Defs = append(p.file.Defs, p.parseExtendDef())
	case TOK_EXTERNAL:
		p.file.Defs = append(p.file.Defs, p.parseExternalDef())
	case TOK_ATSIGN, TOK_PRIV, TOK_PUB, TOK_PUBLIB, TOK_FUNCTION:
		fd := p.parseFuncDef(false)
		p.declareFunc(fd)
		p.file.Defs = append(p.file.Defs, fd)
	default:
		p.reject()
	}
}

// parseImport parses an import item in either of its two forms.
//
//	import := 'import' (IDENT '::' IDENT | STRINGLIT) ';' ;
func (p *Parser) parseImport() *ast.ImportDef {
	start := p.tok.Span
	p.next()

	imp := &ast.ImportDef{}

	if p.got(TOK_STRINGLIT) {
		imp.File = p.tok.Value
		p.next()
	} else {
		p.assert(TOK_IDENT)
		imp.Dep = p.tok.Value
		p.wantAndNext(TOK_DOUBLECOLON)
		p.assert(TOK_IDENT)
		imp.Symbol = p.tok.Value
		p.next()
	}

	p.assert(TOK_SEMI)
	imp.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	return imp
}

// -----------------------------------------------------------------------------

// annotations is the set of markers parsed off the front of a function
// definition.
type annotations struct {
	features []string
	hints    []ast.Hint
}

// parseAnnotations parses the `@` markers preceding a function definition.
//
//	annotations := {'@' IDENT [STRINGLIT]} ;
func (p *Parser) parseAnnotations() annotations {
	var annots annotations

	for p.got(TOK_ATSIGN) {
		p.want(TOK_IDENT)

		switch p.tok.Value {
		case "feature":
			p.want(TOK_STRINGLIT)
			annots.features = append(annots.features, p.tok.Value)
		case "inline":
			annots.hints = append(annots.hints, ast.HintInline)
		case "cold":
			annots.hints = append(annots.hints, ast.HintCold)
		case "nofree":
			annots.hints = append(annots.hints, ast.HintNoFree)
		case "nounwind":
			annots.hints = append(annots.hints, ast.HintNoUnwind)
		default:
			p.rejectWithMsg("unknown annotation: `@%s`", p.tok.Value)
		}

		p.next()
	}

	return annots
}

// parseFuncDef parses a function definition with its annotations and
// visibility.  Inside an extend block annotations gate nothing, so feature
// markers are rejected there.
//
//	func := annotations [visibility] 'function' IDENT '(' params ')' ':'
//	        type-label block ;
func (p *Parser) parseFuncDef(inExtend bool) *ast.FuncDef {
	start := p.tok.Span

	annots := p.parseAnnotations()
	if inExtend && len(annots.features) > 0 {
		p.rejectWithMsg("methods cannot be feature gated")
	}

	vis := ast.VisPriv
	switch p.tok.Kind {
	case TOK_PRIV:
		p.next()
	case TOK_PUB:
		vis = ast.VisPub
		p.next()
	case TOK_PUBLIB:
		vis = ast.VisPublib
		p.next()
	}

	p.assert(TOK_FUNCTION)
	p.want(TOK_IDENT)

	fd := &ast.FuncDef{
		Name:       p.tok.Value,
		NameSpan:   p.tok.Span,
		Visibility: vis,
		Features:   annots.features,
		Hints:      annots.hints,
	}

	p.wantAndNext(TOK_LPAREN)
	fd.Params, _ = p.parseParams(false)
	p.assertAndNext(TOK_RPAREN)
	p.assertAndNext(TOK_COLON)
	fd.ReturnType = p.parseTypeLabel()

	fd.Body = p.parseBlock()
	fd.ASTBase = ast.NewASTBaseOver(start, fd.Body.Span())

	return fd
}

// parseExternalDef parses an external function declaration.
//
//	external := 'external' 'function' IDENT '(' params ['...'] ')' ':'
//	            type-label ';' ;
func (p *Parser) parseExternalDef() *ast.ExternalDef {
	start := p.tok.Span

	p.wantAndNext(TOK_FUNCTION)
	p.assert(TOK_IDENT)

	ed := &ast.ExternalDef{
		Name:     p.tok.Value,
		NameSpan: p.tok.Span,
	}

	p.wantAndNext(TOK_LPAREN)
	ed.Params, ed.Variadic = p.parseParams(true)
	p.assertAndNext(TOK_RPAREN)
	p.assertAndNext(TOK_COLON)
	ed.ReturnType = p.parseTypeLabel()

	p.assert(TOK_SEMI)
	ed.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	p.declareExternal(ed)

	return ed
}

// parseParams parses a comma-separated parameter list, leaving the parser on
// the closing paren.  A trailing `...` is accepted only when allowVariadic is
// set.
//
//	params := [IDENT ':' type-label {',' IDENT ':' type-label} [',' '...']] ;
func (p *Parser) parseParams(allowVariadic bool) ([]ast.Param, bool) {
	var params []ast.Param

	for !p.got(TOK_RPAREN) {
		if p.got(TOK_ELLIPSIS) {
			if !allowVariadic {
				p.rejectWithMsg("only external functions may be variadic")
			}

			p.want(TOK_RPAREN)
			return params, true
		}

		p.assert(TOK_IDENT)
		param := ast.Param{Name: p.tok.Value, Span: p.tok.Span}
		p.wantAndNext(TOK_COLON)
		param.Type = p.parseTypeLabel()
		params = append(params, param)

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			p.assert(TOK_RPAREN)
		}
	}

	return params, false
}

// -----------------------------------------------------------------------------

// parseStructDef parses a struct definition and declares its type symbol.
//
//	struct := 'struct' IDENT '{' [field {',' field} [',']] '}' ;
//	field  := IDENT ':' type-label ;
func (p *Parser) parseStructDef() *ast.StructDef {
	start := p.tok.Span

	p.want(TOK_IDENT)

	sd := &ast.StructDef{
		Name:       p.tok.Value,
		NameSpan:   p.tok.Span,
		Visibility: ast.VisPub,
	}

	st := &types.StructType{Name: p.project + "." + sd.Name}

	p.wantAndNext(TOK_LBRACE)

	for !p.got(TOK_RBRACE) {
		p.assert(TOK_IDENT)
		fieldName := p.tok.Value
		fieldSpan := p.tok.Span

		if st.FieldIndex(fieldName) != -1 {
			panic(report.Raise(report.DuplicateDefinition, fieldSpan,
				"struct `%s` repeats field `%s`", sd.Name, fieldName))
		}

		p.wantAndNext(TOK_COLON)
		st.Fields = append(st.Fields, types.StructField{
			Name: fieldName,
			Type: p.parseTypeLabel(),
		})

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			p.assert(TOK_RBRACE)
		}
	}

	sd.Type = st
	sd.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	p.table.Define(&depm.Symbol{
		Name:       sd.Name,
		Project:    p.project,
		Kind:       depm.SymType,
		Visibility: sd.Visibility,
		Type:       st,
		DefSpan:    sd.NameSpan,
		DefFile:    p.file.ReprPath,
	})

	return sd
}

// parseEnumDef parses an enum definition and declares its type symbol.
// Variants without an explicit value take the previous value plus one,
// starting from zero.
//
//	enum    := 'enum' IDENT [':' type-label] '{' [variant {',' variant} [',']] '}' ;
//	variant := IDENT ['=' ['-'] INTLIT] ;
func (p *Parser) parseEnumDef() *ast.EnumDef {
	start := p.tok.Span

	p.want(TOK_IDENT)

	ed := &ast.EnumDef{
		Name:       p.tok.Value,
		NameSpan:   p.tok.Span,
		Visibility: ast.VisPub,
	}

	p.next()

	backing := types.I32Type
	if p.got(TOK_COLON) {
		p.next()

		backingSpan := p.tok.Span
		pt, ok := p.parseTypeLabel().(*types.PrimType)
		if !ok || !pt.IsInt() {
			panic(report.Raise(report.ParseError, backingSpan,
				"enum backing type must be an integer type"))
		}

		backing = pt
	}
	ed.Backing = backing

	et := &types.EnumType{Name: p.project + "." + ed.Name, Backing: backing}

	p.assertAndNext(TOK_LBRACE)

	nextValue := int64(0)
	for !p.got(TOK_RBRACE) {
		p.assert(TOK_IDENT)
		variant := ast.VariantDef{Name: p.tok.Value, Span: p.tok.Span}

		if _, ok := et.Variant(variant.Name); ok {
			panic(report.Raise(report.DuplicateDefinition, variant.Span,
				"enum `%s` repeats variant `%s`", ed.Name, variant.Name))
		}

		p.next()

		if p.got(TOK_ASSIGN) {
			p.next()

			neg := false
			if p.got(TOK_MINUS) {
				neg = true
				p.next()
			}

			p.assert(TOK_INTLIT)
			value, err := strconv.ParseInt(p.tok.Value, 0, 64)
			if err != nil {
				p.rejectWithMsg("invalid variant value: `%s`", p.tok.Value)
			}

			if neg {
				value = -value
			}

			variant.Value = value
			variant.HasValue = true
			p.next()
		} else {
			variant.Value = nextValue
		}

		nextValue = variant.Value + 1

		ed.Variants = append(ed.Variants, variant)
		et.Variants = append(et.Variants, types.EnumVariant{
			Name:  variant.Name,
			Value: variant.Value,
		})

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			p.assert(TOK_RBRACE)
		}
	}

	ed.Type = et
	ed.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	p.table.Define(&depm.Symbol{
		Name:       ed.Name,
		Project:    p.project,
		Kind:       depm.SymType,
		Visibility: ed.Visibility,
		Type:       et,
		DefSpan:    ed.NameSpan,
		DefFile:    p.file.ReprPath,
	})

	return ed
}

// -----------------------------------------------------------------------------

// parseTraitDef parses a trait definition and declares its symbol.
//
//	trait  := 'trait' IDENT '{' {method} '}' ;
//	method := 'function' IDENT '(' params ')' ':' type-label ';' ;
func (p *Parser) parseTraitDef() *ast.TraitDef {
	start := p.tok.Span

	p.want(TOK_IDENT)

	td := &ast.TraitDef{
		Name:       p.tok.Value,
		NameSpan:   p.tok.Span,
		Visibility: ast.VisPub,
	}

	tt := &types.TraitType{Name: p.project + "." + td.Name}

	p.wantAndNext(TOK_LBRACE)

	for !p.got(TOK_RBRACE) {
		p.assert(TOK_FUNCTION)
		p.want(TOK_IDENT)

		method := ast.TraitMethodDef{Name: p.tok.Value, Span: p.tok.Span}

		for _, prev := range td.Methods {
			if prev.Name == method.Name {
				panic(report.Raise(report.DuplicateDefinition, method.Span,
					"trait `%s` repeats method `%s`", td.Name, method.Name))
			}
		}

		p.wantAndNext(TOK_LPAREN)
		params, _ := p.parseParams(false)
		p.assertAndNext(TOK_RPAREN)
		p.assertAndNext(TOK_COLON)
		ret := p.parseTypeLabel()
		p.assertAndNext(TOK_SEMI)

		paramTypes := make([]types.Type, len(params))
		for i, param := range params {
			paramTypes[i] = param.Type
		}

		method.Sig = &types.FuncType{Params: paramTypes, Ret: ret}
		td.Methods = append(td.Methods, method)
		tt.Methods = append(tt.Methods, types.TraitMethod{Name: method.Name, Sig: method.Sig})
	}

	td.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	p.table.Define(&depm.Symbol{
		Name:       td.Name,
		Project:    p.project,
		Kind:       depm.SymTrait,
		Visibility: td.Visibility,
		Type:       tt,
		DefSpan:    td.NameSpan,
		DefFile:    p.file.ReprPath,
	})

	return td
}

// parseExtendDef parses an extend block.  Every method gets an implicit
// `self` parameter of the extended type prepended to its parameter list.
//
//	extend := 'extend' IDENT [':' IDENT] '{' {func} '}' ;
func (p *Parser) parseExtendDef() *ast.ExtendDef {
	start := p.tok.Span

	p.want(TOK_IDENT)

	xd := &ast.ExtendDef{
		TargetName: p.tok.Value,
		TargetSpan: p.tok.Span,
	}

	p.next()

	if p.got(TOK_COLON) {
		p.want(TOK_IDENT)
		xd.TraitName = p.tok.Value
		p.next()
	}

	p.assertAndNext(TOK_LBRACE)

	for !p.got(TOK_RBRACE) {
		method := p.parseFuncDef(true)

		for _, prev := range xd.Methods {
			if prev.Name == method.Name {
				panic(report.Raise(report.DuplicateDefinition, method.NameSpan,
					"extend block repeats method `%s`", method.Name))
			}
		}

		method.Params = append([]ast.Param{{
			Name: "self",
			Type: &types.OpaqueType{Name: xd.TargetName},
			Span: method.NameSpan,
		}}, method.Params...)

		xd.Methods = append(xd.Methods, method)
	}

	xd.ASTBase = ast.NewASTBaseOver(start, p.tok.Span)
	p.next()

	return xd
}

// -----------------------------------------------------------------------------

// declareFunc declares a parsed function's global symbol.
func (p *Parser) declareFunc(fd *ast.FuncDef) {
	paramTypes := make([]types.Type, len(fd.Params))
	for i, param := range fd.Params {
		paramTypes[i] = param.Type
	}

	p.table.Define(&depm.Symbol{
		Name:       fd.Name,
		Project:    p.project,
		Kind:       depm.SymFunc,
		Visibility: fd.Visibility,
		Type:       &types.FuncType{Params: paramTypes, Ret: fd.ReturnType},
		Features:   fd.Features,
		DefSpan:    fd.NameSpan,
		DefFile:    p.file.ReprPath,
	})
}

// declareExternal declares an external declaration's global symbol.
func (p *Parser) declareExternal(ed *ast.ExternalDef) {
	paramTypes := make([]types.Type, len(ed.Params))
	for i, param := range ed.Params {
		paramTypes[i] = param.Type
	}

	p.table.Define(&depm.Symbol{
		Name:       ed.Name,
		Project:    p.project,
		Kind:       depm.SymFunc,
		Visibility: ast.VisPriv,
		Type: &types.FuncType{
			Params:   paramTypes,
			Ret:      ed.ReturnType,
			Variadic: ed.Variadic,
		},
		DefSpan:  ed.NameSpan,
		DefFile:  p.file.ReprPath,
		External: true,
		Variadic: ed.Variadic,
	})
}

// -----------------------------------------------------------------------------

// parseTypeLabel parses a source type label.
//
//	type-label := prim-type | 'ptr' '<' type-label '>'
//	            | 'array' '<' type-label ',' INTLIT '>' | IDENT ;
func (p *Parser) parseTypeLabel() types.Type {
	switch p.tok.Kind {
	case TOK_UINTSMALL:
		p.next()
		return types.U8Type
	case TOK_INTHALF:
		p.next()
		return types.I16Type
	case TOK_UINTHALF:
		p.next()
		return types.U16Type
	case TOK_INT:
		p.next()
		return types.I32Type
	case TOK_UINT:
		p.next()
		return types.U32Type
	case TOK_INTLONG:
		p.next()
		return types.I64Type
	case TOK_UINTLONG:
		p.next()
		return types.U64Type
	case TOK_FLOATHALF:
		p.next()
		return types.F16Type
	case TOK_FLOAT:
		p.next()
		return types.F32Type
	case TOK_FLOATLONG:
		p.next()
		return types.F64Type
	case TOK_BOOL:
		p.next()
		return types.BoolType
	case TOK_STRINGTYPE:
		p.next()
		return types.StringType
	case TOK_VOID:
		p.next()
		return types.VoidType
	case TOK_PTR:
		p.wantAndNext(TOK_LT)
		elem := p.parseTypeLabel()
		p.closeAngle()
		return &types.PointerType{Elem: elem}
	case TOK_ARRAY:
		p.wantAndNext(TOK_LT)
		elem := p.parseTypeLabel()
		p.assertAndNext(TOK_COMMA)
		p.assert(TOK_INTLIT)

		length, err := strconv.ParseInt(p.tok.Value, 0, 64)
		if err != nil || length < 0 {
			p.rejectWithMsg("invalid array length: `%s`", p.tok.Value)
		}

		p.next()
		p.closeAngle()
		return &types.ArrayType{Elem: elem, Len: int(length)}
	case TOK_IDENT:
		ot := &types.OpaqueType{Name: p.tok.Value}
		p.next()
		return ot
	default:
		p.reject()
		return nil
	}
}

// closeAngle consumes the closing `>` of a type argument list, splitting a
// `>>` token into its component `>` tokens for nested labels.
func (p *Parser) closeAngle() {
	switch p.tok.Kind {
	case TOK_GT:
		p.next()
	case TOK_RSHIFT:
		p.tok = &Token{Kind: TOK_GT, Value: ">", Span: p.tok.Span}
	default:
		p.reject()
	}
}
