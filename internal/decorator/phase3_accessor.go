package decorator

import (
	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/compat"
)

// phase3DesugarAccessors implements spec.md §4.4 (P3): every `accessor`
// field, decorated or not, is replaced by a private storage field plus a
// get/set proxy pair, so later phases see a uniform shape (spec.md §3
// invariant 4). It must run after phase1EntryAndBindingRewrite when the
// class is decorated, because a decorated accessor's static proxy reads
// through classIdLocal (spec.md §4.4's "for 2023-05 static, the receiver
// is the class identifier, not `this`").
//
// Modeled on esbuild's own private-field lowering in
// js_parser_lower_class.go (lowerPrivateGet/lowerPrivateSet): here the
// pass manufactures the private storage itself rather than lowering an
// access to one that already exists in the source.
func phase3DesugarAccessors(l *lowering, class *ast.Class) {
	var rewritten []ast.Property
	for _, prop := range class.Properties {
		if prop.Kind != ast.PropertyAccessor {
			rewritten = append(rewritten, prop)
			continue
		}

		// A computed accessor key (`accessor [f()] = v`) is evaluated
		// through toPropertyKey exactly once here, before the getter and
		// setter are built, per spec.md §4.4: both proxy methods, and (for
		// a decorated accessor) phase4's decoration-array name slot, all
		// reuse this one memoized local via resolveComputedKey's
		// already-constant short-circuit rather than re-running f().
		if prop.IsComputed {
			if memo := resolveComputedKey(l, prop.Key); memo != nil {
				prop.Key = ast.Ident(prop.Key.Loc, *memo)
			}
		}

		storage := l.scope.GenerateUID(privateFieldSymbolKind(prop.IsStatic), accessorStorageHint(l, prop))
		storageKey := ast.PrivateIdent(prop.Key.Loc, storage)

		if len(prop.Decorators) == 0 {
			// Undecorated accessor: `accessor p = v` becomes
			// `#_p = v; get p(){ return this.#_p } set p(v){ this.#_p = v }`.
			rewritten = append(rewritten, ast.Property{
				Kind:        ast.PropertyField,
				Key:         storageKey,
				IsStatic:    prop.IsStatic,
				IsPrivate:   true,
				Initializer: prop.Initializer,
			})
			rewritten = append(rewritten, accessorProxyPair(l, prop, storageKey, nil, nil, false)...)
			continue
		}

		// Decorated accessor: storage init goes through init_<name>. For a
		// private accessor the get/set pair becomes call-thunks delegating
		// to get_<name>/set_<name>, per spec.md §4.4; a public one keeps
		// direct storage access.
		initLocal := l.scope.GenerateUID(ast.SymbolOther, "init_"+accessorStorageHint(l, prop))
		var getLocal, setLocal *ast.Ref
		if prop.IsPrivate {
			g := l.scope.GenerateUID(ast.SymbolOther, "get_"+accessorStorageHint(l, prop))
			s := l.scope.GenerateUID(ast.SymbolOther, "set_"+accessorStorageHint(l, prop))
			getLocal, setLocal = &g, &s
		}

		var args []ast.Expr
		args = append(args, ast.This(prop.Key.Loc))
		if prop.Initializer != nil {
			args = append(args, *prop.Initializer)
		}
		storageInit := ast.Call(prop.Key.Loc, ast.Ident(prop.Key.Loc, initLocal), args...)

		storageField := ast.Property{
			Kind:        ast.PropertyField,
			Key:         storageKey,
			IsStatic:    prop.IsStatic,
			IsPrivate:   true,
			Initializer: &storageInit,
		}
		rewritten = append(rewritten, storageField)
		rewritten = append(rewritten, accessorProxyPair(l, prop, storageKey, getLocal, setLocal, true)...)

		// Record the allocated locals; phase4 is the phase that knows how to
		// build a DecoratorInfo out of them (spec.md §4.4 "Decorated
		// accessors additionally allocate ...").
		l.state.accessorLocals = append(l.state.accessorLocals, accessorLocalSeed{
			storageKey: storageKey,
			prop:       prop,
			initLocal:  initLocal,
			getLocal:   getLocal,
			setLocal:   setLocal,
		})
	}
	class.Properties = rewritten
}

// accessorLocalSeed threads the locals phase3 allocated for a decorated
// accessor through to phase4, which is the phase that actually knows how
// to build a DecoratorInfo (spec.md §4.4 "Decorated accessors additionally
// allocate ...").
type accessorLocalSeed struct {
	storageKey ast.Expr
	prop       ast.Property
	initLocal  ast.Ref
	getLocal   *ast.Ref
	setLocal   *ast.Ref
}

// accessorProxyPair builds the get/set pair backing an accessor's private
// storage. Non-nil getLocal/setLocal make the pair call-thunks delegating
// to get_<name>/set_<name>; nil ones make it direct storage access.
// decorated selects the receiver: classIdLocal for a decorated static
// accessor under 2023-05, this otherwise.
func accessorProxyPair(l *lowering, prop ast.Property, storageKey ast.Expr, getLocal, setLocal *ast.Ref, decorated bool) []ast.Property {
	loc := prop.Key.Loc

	receiver := func() ast.Expr {
		if decorated && prop.IsStatic && l.state.version == compat.V2023_05 {
			return ast.Ident(loc, l.state.classIdLocal)
		}
		return ast.This(loc)
	}

	var getterBody, setterBody []ast.Stmt
	if getLocal != nil && setLocal != nil {
		ret := ast.Call(loc, ast.Ident(loc, *getLocal), receiver())
		getterBody = []ast.Stmt{ast.ReturnStmt(loc, &ret)}
		v := ast.Ident(loc, l.scope.GenerateUID(ast.SymbolOther, "v"))
		setCall := ast.Call(loc, ast.Ident(loc, *setLocal), receiver(), v)
		setterBody = []ast.Stmt{ast.ExprStmt(loc, setCall)}
	} else {
		ret := ast.Index(loc, receiver(), ast.CloneExpr(storageKey))
		getterBody = []ast.Stmt{ast.ReturnStmt(loc, &ret)}
		v := ast.Ident(loc, l.scope.GenerateUID(ast.SymbolOther, "v"))
		assign := ast.Assign(loc, ast.Index(loc, receiver(), ast.CloneExpr(storageKey)), v)
		setterBody = []ast.Stmt{ast.ExprStmt(loc, assign)}
	}

	getFn := ast.Expr{Loc: loc, Data: &ast.EFunction{Fn: ast.Fn{Body: getterBody}}}
	setFn := ast.Expr{Loc: loc, Data: &ast.EFunction{Fn: ast.Fn{Body: setterBody, Args: []ast.Arg{{Binding: ast.IdBinding(loc, mustLastArgRef(setterBody))}}}}}

	return []ast.Property{
		{Kind: ast.PropertyGet, Key: ast.CloneExpr(prop.Key), IsStatic: prop.IsStatic, IsPrivate: prop.IsPrivate, IsComputed: prop.IsComputed, Value: &getFn},
		{Kind: ast.PropertySet, Key: ast.CloneExpr(prop.Key), IsStatic: prop.IsStatic, IsPrivate: prop.IsPrivate, IsComputed: prop.IsComputed, Value: &setFn},
	}
}

// mustLastArgRef recovers the Ref of the setter's "v" parameter from the
// statement that uses it, so the Fn.Args binding and the body stay
// consistent without threading an extra return value through the two
// call sites above.
func mustLastArgRef(setterBody []ast.Stmt) ast.Ref {
	exprStmt := setterBody[0].Data.(*ast.SExpr)
	switch d := exprStmt.Value.Data.(type) {
	case *ast.EBinary: // "this.#g = v"
		return d.Right.Data.(*ast.EIdentifier).Ref
	case *ast.ECall: // "set_x(this, v)"
		return d.Args[len(d.Args)-1].Data.(*ast.EIdentifier).Ref
	default:
		panic("decorator: unexpected setter body shape")
	}
}

func privateFieldSymbolKind(isStatic bool) ast.SymbolKind {
	if isStatic {
		return ast.SymbolPrivateStaticField
	}
	return ast.SymbolPrivateField
}

func accessorStorageHint(l *lowering, prop ast.Property) string {
	switch d := prop.Key.Data.(type) {
	case *ast.EIdentifier:
		return "_" + l.scope.Symbol(d.Ref).OriginalName
	case *ast.EString:
		return "_" + d.Value
	default:
		return "_accessor"
	}
}
