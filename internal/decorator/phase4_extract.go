package decorator

import (
	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/compat"
	"github.com/declower/declower/internal/runtime"
)

// phase4ExtractDecorators implements spec.md §4.5 (P4): it walks the
// desugared body (P3 has already run) once, converting every remaining
// decorated element into a DecoratorInfo plus whatever AST surgery that
// element's kind requires, and clears every Decorator node off the class
// in the process (spec.md §3 invariant 5).
func phase4ExtractDecorators(l *lowering, class *ast.Class) {
	seedByStorage := make(map[ast.Ref]*accessorLocalSeed, len(l.state.accessorLocals))
	for i := range l.state.accessorLocals {
		seed := &l.state.accessorLocals[i]
		if ref, ok := privateKeyRef(seed.storageKey); ok {
			seedByStorage[ref] = seed
		}
	}

	for i := range class.Properties {
		p := &class.Properties[i]
		if ast.IsStaticBlock(*p) {
			continue
		}

		if p.Kind == ast.PropertyField && p.IsPrivate {
			if ref, ok := privateKeyRef(p.Key); ok {
				if seed, found := seedByStorage[ref]; found {
					l.state.elements = append(l.state.elements, buildAccessorInfo(l, seed, i))
					continue
				}
			}
		}

		if len(p.Decorators) == 0 {
			continue
		}

		decorators, decoratorsThis := memoizeDecorators(l, p.Decorators)
		name := buildElementName(l, p)
		hint := elementHint(l, *p)

		var info *DecoratorInfo
		switch p.Kind {
		case ast.PropertyField:
			thunk := l.scope.GenerateUID(ast.SymbolOther, "init_"+hint)
			args := []ast.Expr{ast.This(p.Key.Loc)}
			if p.Initializer != nil {
				args = append(args, ast.CloneExpr(*p.Initializer))
			}
			call := ast.Call(p.Key.Loc, ast.Ident(p.Key.Loc, thunk), args...)
			p.Initializer = &call
			info = &DecoratorInfo{Kind: ast.ElementField, IsStatic: p.IsStatic, Name: name,
				Decorators: decorators, DecoratorsThis: decoratorsThis, Locals: []ast.Ref{thunk}, sourceIndex: i}

		case ast.PropertyMethod:
			info = extractMethodLike(l, p, ast.ElementMethod, name, decorators, decoratorsThis, hint, i)

		case ast.PropertyGet:
			info = extractMethodLike(l, p, ast.ElementGetter, name, decorators, decoratorsThis, hint, i)

		case ast.PropertySet:
			info = extractMethodLike(l, p, ast.ElementSetter, name, decorators, decoratorsThis, hint, i)

		default:
			continue
		}

		if info.Kind != ast.ElementField {
			if info.IsStatic {
				l.state.needsStaticInit = true
			} else {
				l.state.needsProtoInit = true
			}
		}
		p.Decorators = nil
		l.state.elements = append(l.state.elements, info)
	}

	l.state.classDecorators = class.Decorators
	class.Decorators = nil
}

// extractMethodLike handles METHOD/GETTER/SETTER elements (spec.md §4.5).
// A private-keyed one is moved out from under the runtime's non-
// configurable-private-method restriction by replacing it with a field
// holding a call-thunk local (methods) or a delegating body (get/set); a
// public one is left in place since the runtime can mutate its value
// directly once class evaluation reaches it.
func extractMethodLike(l *lowering, p *ast.Property, kind ast.ElementKind, name ast.Expr, decorators []ast.Decorator, decoratorsThis []*ast.Expr, hint string, sourceIndex int) *DecoratorInfo {
	info := &DecoratorInfo{Kind: kind, IsStatic: p.IsStatic, Name: name, Decorators: decorators, DecoratorsThis: decoratorsThis, sourceIndex: sourceIndex}

	if !p.IsPrivate {
		return info
	}

	loc := p.Key.Loc
	thunk := l.scope.GenerateUID(ast.SymbolOther, "call_"+hint)
	clonedFn := ast.CloneFn((*p.Value).Data.(*ast.EFunction).Fn)
	rewriteSuperReferences(l, clonedFn.Body, p.IsStatic)
	original := ast.Expr{Loc: loc, Data: &ast.EFunction{Fn: clonedFn}}
	info.PrivateMethods = []ast.Expr{original}
	info.Locals = []ast.Ref{thunk}

	switch kind {
	case ast.ElementMethod:
		if ref, ok := privateKeyRef(p.Key); ok {
			l.state.forbiddenPrivateWrites[ref] = forbiddenPrivateWrite{
				name:    "#" + l.scope.Symbol(ref).OriginalName,
				declLoc: loc,
			}
		}
		init := ast.Ident(loc, thunk)
		*p = ast.Property{Kind: ast.PropertyField, Key: p.Key, IsStatic: p.IsStatic, IsPrivate: true, Initializer: &init}
	case ast.ElementGetter:
		ret := ast.Call(loc, ast.Ident(loc, thunk), ast.This(loc))
		fn := ast.Expr{Loc: loc, Data: &ast.EFunction{Fn: ast.Fn{Body: []ast.Stmt{ast.ReturnStmt(loc, &ret)}}}}
		p.Value = &fn
	case ast.ElementSetter:
		v := l.scope.GenerateUID(ast.SymbolOther, "v")
		call := ast.Call(loc, ast.Ident(loc, thunk), ast.This(loc), ast.Ident(loc, v))
		fn := ast.Expr{Loc: loc, Data: &ast.EFunction{Fn: ast.Fn{
			Args: []ast.Arg{{Binding: ast.IdBinding(loc, v)}},
			Body: []ast.Stmt{ast.ExprStmt(loc, call)},
		}}}
		p.Value = &fn
	}

	return info
}

// buildAccessorInfo finishes what phase3 started for one decorated
// accessor: the raw storage get/set closures handed to the runtime as
// privateMethods (spec.md §4.5 "2 closures (getter, setter)") are built
// here, separately from the public-facing delegation pair phase3 already
// spliced into the class body, because the two must not be the same
// function — one reads/writes #G directly, the other calls back into the
// very locals the runtime is about to return.
func buildAccessorInfo(l *lowering, seed *accessorLocalSeed, sourceIndex int) *DecoratorInfo {
	p := seed.prop
	decorators, decoratorsThis := memoizeDecorators(l, p.Decorators)
	name := buildElementName(l, &p)

	locals := []ast.Ref{seed.initLocal}
	var privateMethods []ast.Expr
	if p.IsPrivate {
		getFn, setFn := rawStorageAccessorPair(l, p, seed.storageKey)
		privateMethods = []ast.Expr{getFn, setFn}
		locals = append(locals, *seed.getLocal, *seed.setLocal)
	}

	return &DecoratorInfo{
		Kind:           ast.ElementAccessor,
		IsStatic:       p.IsStatic,
		Name:           name,
		Decorators:     decorators,
		DecoratorsThis: decoratorsThis,
		PrivateMethods: privateMethods,
		Locals:         locals,
		sourceIndex:    sourceIndex,
	}
}

func rawStorageAccessorPair(l *lowering, prop ast.Property, storageKey ast.Expr) (ast.Expr, ast.Expr) {
	loc := prop.Key.Loc
	receiver := func() ast.Expr {
		if prop.IsStatic && l.state.version == compat.V2023_05 {
			return ast.Ident(loc, l.state.classIdLocal)
		}
		return ast.This(loc)
	}

	ret := ast.Index(loc, receiver(), ast.CloneExpr(storageKey))
	getFn := ast.Expr{Loc: loc, Data: &ast.EFunction{Fn: ast.Fn{Body: []ast.Stmt{ast.ReturnStmt(loc, &ret)}}}}

	v := l.scope.GenerateUID(ast.SymbolOther, "v")
	assign := ast.Assign(loc, ast.Index(loc, receiver(), ast.CloneExpr(storageKey)), ast.Ident(loc, v))
	setFn := ast.Expr{Loc: loc, Data: &ast.EFunction{Fn: ast.Fn{
		Args: []ast.Arg{{Binding: ast.IdBinding(loc, v)}},
		Body: []ast.Stmt{ast.ExprStmt(loc, assign)},
	}}}

	return getFn, setFn
}

// memoizeDecorators implements spec.md §4.5's per-decorator handling: a
// receiver capture for the 2023-05 `this.x`/`super.x` shape, and
// memoization of any expression the scope can't prove constant.
func memoizeDecorators(l *lowering, decs []ast.Decorator) ([]ast.Decorator, []*ast.Expr) {
	out := make([]ast.Decorator, len(decs))
	thisArgs := make([]*ast.Expr, len(decs))

	for i, d := range decs {
		val := d.Value

		if l.state.policy.TrackThis {
			if target, ok := ast.MemberTarget(val); ok && (ast.IsThisExpression(target) || ast.IsSuper(target)) {
				t := ast.CloneExpr(target)
				thisArgs[i] = &t
			}
		}

		if !l.scope.IsConstant(val) {
			local := l.scope.GenerateUID(ast.SymbolOther, "dec")
			cloned := ast.CloneExpr(val)
			l.state.preStmts = append(l.state.preStmts, ast.LetDecl(val.Loc, local, &cloned))
			val = ast.Ident(val.Loc, local)
		}

		out[i] = ast.Decorator{Value: val, ThisArg: thisArgs[i]}
	}

	return out, thisArgs
}

// buildElementName implements spec.md §4.5's "name" field: a string for
// identifier/private keys, or a memoized computed-key reference used both
// as the live property key and as the decoration-array name (spec.md §4.6
// end-to-end scenario 6).
func buildElementName(l *lowering, p *ast.Property) ast.Expr {
	loc := p.Key.Loc

	if p.IsPrivate {
		if ref, ok := privateKeyRef(p.Key); ok {
			return ast.Str(loc, "#"+l.scope.Symbol(ref).OriginalName)
		}
	}

	if p.IsComputed {
		memo := resolveComputedKey(l, p.Key)
		if memo == nil {
			return ast.CloneExpr(p.Key)
		}
		p.Key = ast.Ident(loc, *memo)
		return ast.Ident(loc, *memo)
	}

	if s, ok := p.Key.Data.(*ast.EString); ok {
		return ast.Str(loc, s.Value)
	}
	if id, ok := p.Key.Data.(*ast.EIdentifier); ok {
		return ast.Str(loc, l.scope.Symbol(id.Ref).OriginalName)
	}
	return ast.CloneExpr(p.Key)
}

// resolveComputedKey implements spec.md §4.4/§4.5's shared "evaluate a
// non-constant computed key through toPropertyKey exactly once" rule: it
// memoizes key into a fresh local marked Constant, so that a second call
// site needing the very same key — phase3's getter vs. setter pair, or
// phase4's decoration-array name slot — resolves to nil here (the key,
// now a reference to an already-memoized local, is provably constant) and
// falls back to reusing that same local instead of calling toPropertyKey
// a second time. Returns nil when key was already scope-constant (no
// memoization needed at all, e.g. a computed string/number literal).
func resolveComputedKey(l *lowering, key ast.Expr) *ast.Ref {
	memo := l.scope.MaybeGenerateMemoised(ast.SymbolOther, key, "computedKey")
	if memo == nil {
		return nil
	}
	call := l.rt.Call(key.Loc, runtime.ToPropertyKey, ast.CloneExpr(key))
	l.state.preStmts = append(l.state.preStmts, ast.LetDecl(key.Loc, *memo, &call))
	l.scope.Symbol(*memo).Constant = true
	return memo
}

// rewriteSuperReferences implements spec.md §4.5's "super references
// rewritten against the class-id local": a decorated private method's
// body is about to be lifted out of the class into a bare function
// expression, which has no `super` binding of its own, so every
// super.x/super[x]/super.x(...)/super.x = v inside it is rewritten in
// place before the clone is handed to the runtime as a privateMethods
// entry. Modeled on esbuild's lowerSuperPropertyGet/lowerSuperPropertySet
// (internal/js_parser/js_parser_lower_class.go), generalized from "no
// native super support" to "no super binding left in scope at all".
func rewriteSuperReferences(l *lowering, stmts []ast.Stmt, isStatic bool) {
	for i := range stmts {
		rewriteSuperStmt(l, &stmts[i], isStatic)
	}
}

func rewriteSuperStmt(l *lowering, s *ast.Stmt, isStatic bool) {
	switch d := s.Data.(type) {
	case *ast.SExpr:
		rewriteSuperExpr(l, &d.Value, isStatic)
	case *ast.SReturn:
		if d.Value != nil {
			rewriteSuperExpr(l, d.Value, isStatic)
		}
	case *ast.SLocal:
		for i := range d.Decls {
			if d.Decls[i].Value != nil {
				rewriteSuperExpr(l, d.Decls[i].Value, isStatic)
			}
		}
	case *ast.SIf:
		rewriteSuperExpr(l, &d.Test, isStatic)
		rewriteSuperStmt(l, &d.Yes, isStatic)
		if d.No != nil {
			rewriteSuperStmt(l, d.No, isStatic)
		}
	case *ast.SBlock:
		rewriteSuperReferences(l, d.Stmts, isStatic)
	}
}

// rewriteSuperExpr walks e top-down so that a super member appearing as a
// call target or an assignment target is recognized and rewritten as a
// single unit (a method call, or a property write) rather than first
// being corrupted by a naive bottom-up rewrite of its member-access shape
// alone.
func rewriteSuperExpr(l *lowering, e *ast.Expr, isStatic bool) {
	switch d := e.Data.(type) {
	case *ast.ECall:
		if name, isComputed, key, ok := superMemberShape(d.Target); ok {
			for i := range d.Args {
				rewriteSuperExpr(l, &d.Args[i], isStatic)
			}
			getExpr := superGetExpr(l, d.Target.Loc, isStatic, name, isComputed, key)
			callTarget := ast.Dot(e.Loc, getExpr, "call")
			args := append([]ast.Expr{ast.This(e.Loc)}, d.Args...)
			*e = ast.Call(e.Loc, callTarget, args...)
			return
		}
		rewriteSuperExpr(l, &d.Target, isStatic)
		for i := range d.Args {
			rewriteSuperExpr(l, &d.Args[i], isStatic)
		}
	case *ast.EBinary:
		if d.Op == ast.BinOpAssign {
			if name, isComputed, key, ok := superMemberShape(d.Left); ok {
				rewriteSuperExpr(l, &d.Right, isStatic)
				*e = superSetExpr(l, e.Loc, isStatic, name, isComputed, key, d.Right)
				return
			}
		}
		rewriteSuperExpr(l, &d.Left, isStatic)
		rewriteSuperExpr(l, &d.Right, isStatic)
	case *ast.EDot:
		if ast.IsSuper(d.Target) {
			*e = superGetExpr(l, e.Loc, isStatic, d.Name, false, ast.Expr{})
			return
		}
		rewriteSuperExpr(l, &d.Target, isStatic)
	case *ast.EIndex:
		if ast.IsSuper(d.Target) {
			rewriteSuperExpr(l, &d.Index, isStatic)
			*e = superGetExpr(l, e.Loc, isStatic, "", true, d.Index)
			return
		}
		rewriteSuperExpr(l, &d.Target, isStatic)
		rewriteSuperExpr(l, &d.Index, isStatic)
	case *ast.EArray:
		for i := range d.Items {
			rewriteSuperExpr(l, &d.Items[i], isStatic)
		}
	case *ast.EObject:
		for i := range d.Properties {
			if d.Properties[i].Value != nil {
				rewriteSuperExpr(l, d.Properties[i].Value, isStatic)
			}
		}
	case *ast.ESpread:
		rewriteSuperExpr(l, &d.Value, isStatic)
	case *ast.EUnary:
		rewriteSuperExpr(l, &d.Value, isStatic)
	case *ast.ENew:
		rewriteSuperExpr(l, &d.Target, isStatic)
		for i := range d.Args {
			rewriteSuperExpr(l, &d.Args[i], isStatic)
		}
	case *ast.ESequence:
		for i := range d.Exprs {
			rewriteSuperExpr(l, &d.Exprs[i], isStatic)
		}
	case *ast.EArrow:
		// An arrow function has no super binding of its own; any super
		// reference inside one still belongs to this method.
		rewriteSuperReferences(l, d.Body, isStatic)
	}
}

// superMemberShape reports whether e is "super.name" or "super[key]",
// independent of whether it sits inside a call or an assignment target.
func superMemberShape(e ast.Expr) (name string, isComputed bool, key ast.Expr, ok bool) {
	switch d := e.Data.(type) {
	case *ast.EDot:
		if ast.IsSuper(d.Target) {
			return d.Name, false, ast.Expr{}, true
		}
	case *ast.EIndex:
		if ast.IsSuper(d.Target) {
			return "", true, d.Index, true
		}
	}
	return "", false, ast.Expr{}, false
}

// superAccessReceiver is the object a rewritten super access reads/writes
// through: classIdLocal itself in a static context (there is no
// .prototype hop for statics), classIdLocal.prototype in an instance one.
func superAccessReceiver(l *lowering, loc ast.Loc, isStatic bool) ast.Expr {
	classRef := ast.Ident(loc, l.state.classIdLocal)
	if isStatic {
		return classRef
	}
	return ast.Dot(loc, classRef, "prototype")
}

func superPropertyKey(loc ast.Loc, name string, isComputed bool, computedKey ast.Expr) ast.Expr {
	if isComputed {
		return computedKey
	}
	return ast.Str(loc, name)
}

// superGetExpr implements the read half of spec.md §4.5's super rewrite.
// Under the constantSuper assumption (spec.md §6(c)) it trusts
// classIdLocal's own prototype directly, the same simplification Babel's
// real constantSuper assumption makes; otherwise it goes through the
// superPropGet runtime helper, which is expected to walk the actual
// prototype chain with `this` as the receiver so an overridden accessor
// still observes the real instance.
func superGetExpr(l *lowering, loc ast.Loc, isStatic bool, name string, isComputed bool, computedKey ast.Expr) ast.Expr {
	receiver := superAccessReceiver(l, loc, isStatic)
	if l.plugin.constantSuper {
		if !isComputed {
			return ast.Dot(loc, receiver, name)
		}
		return ast.Index(loc, receiver, computedKey)
	}
	key := superPropertyKey(loc, name, isComputed, computedKey)
	return l.rt.Call(loc, runtime.SuperPropGet, receiver, ast.This(loc), key)
}

// superSetExpr is the write half, mirroring superGetExpr's constantSuper
// branch.
func superSetExpr(l *lowering, loc ast.Loc, isStatic bool, name string, isComputed bool, computedKey, value ast.Expr) ast.Expr {
	receiver := superAccessReceiver(l, loc, isStatic)
	if l.plugin.constantSuper {
		var target ast.Expr
		if !isComputed {
			target = ast.Dot(loc, receiver, name)
		} else {
			target = ast.Index(loc, receiver, computedKey)
		}
		return ast.Assign(loc, target, value)
	}
	key := superPropertyKey(loc, name, isComputed, computedKey)
	return l.rt.Call(loc, runtime.SuperPropSet, receiver, ast.This(loc), key, value)
}

func elementHint(l *lowering, p ast.Property) string {
	switch d := p.Key.Data.(type) {
	case *ast.EIdentifier:
		return l.scope.Symbol(d.Ref).OriginalName
	case *ast.EPrivateIdentifier:
		return l.scope.Symbol(d.Ref).OriginalName
	case *ast.EString:
		return d.Value
	default:
		return "member"
	}
}
