package decorator

import "github.com/declower/declower/internal/ast"

// identityHint picks the hint spec.md §4.2 uses to name a class, whether
// or not it ends up decorated: the original syntactic name, the
// named-evaluation inference (spec.md §4.1), or the "decorated_class"
// fallback, in that priority order.
func identityHint(l *lowering, class *ast.Class, site ClassSite) string {
	switch {
	case class.Name != nil && site.Name != "":
		return site.Name
	case site.InferredName != "":
		return site.InferredName
	case l.state.inferredName != "":
		return l.state.inferredName
	default:
		return "decorated_class"
	}
}

// registerClassIdentity gives the class its own id property — a symbol
// this invocation's own scope owns, carrying its original or inferred
// name — regardless of whether it turns out to be decorated.
//
// class.Name, when the class was already named, arrives as a Ref the
// caller owns (see ClassSite.Name's doc comment), not one this
// invocation's own scope.Manager allocated. It's re-pointed at a freshly
// registered symbol carrying the same source name rather than left as-is,
// so the class's own name is among the Refs Result.Scope resolves (the
// ones this invocation allocated or rebound, per plugin.go's doc comment
// on that field), decorated or not.
func registerClassIdentity(l *lowering, class *ast.Class, site ClassSite) string {
	hint := identityHint(l, class, site)
	nameSym := l.scope.NewSymbol(ast.SymbolClass, hint)
	class.Name = &nameSym
	return hint
}

// phase1EntryAndBindingRewrite implements spec.md §4.2 (P1). It only runs
// when the caller has already determined the class is decorated somewhere
// (itself or an element): allocate classIdLocal as the fresh binding the
// rewritten program uses for every internal self-reference (the wrapper
// class's `super(...)` argument, a static accessor's receiver, etc.),
// reusing the same hint registerClassIdentity already settled on.
//
// A full host compiler would also rewrite every *other* reference to the
// original binding name, elsewhere in the enclosing program, to resolve
// through classIdLocal instead. That rewrite is out of scope here: this
// pass only ever sees one class's local scope (spec.md §5), never the
// enclosing program, so "rename every reference" is modeled abstractly by
// handing callers classIdLocal to use at every internal reference site
// rather than literally walking call sites outside the class.
func phase1EntryAndBindingRewrite(l *lowering, hint string) {
	l.state.classIdLocal = l.scope.GenerateUID(ast.SymbolClass, hint)
}
