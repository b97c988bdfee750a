package decorator

import (
	"github.com/google/uuid"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/logger"
	"github.com/declower/declower/internal/runtime"
	"github.com/declower/declower/internal/scope"
)

// lowering is the per-class working state threaded through P1..P6. One is
// created per call to Plugin.LowerClass and discarded afterward — per
// spec.md §5 the pass keeps no state across classes except the Plugin's
// own Visited set.
type lowering struct {
	plugin  *Plugin
	scope   *scope.Manager
	rt      *runtime.Importer
	log     *logger.Log
	source  *logger.Source
	state   classState
	isDecl  bool // true if the original site was a class *declaration*
	isExport bool
}

// resolveLocalName resolves a Ref this invocation's own l.scope allocated
// — as opposed to the caller-supplied resolveName functions threaded
// through toplevel.go, which resolve Refs from whatever table *owns* the
// enclosing program instead.
func (l *lowering) resolveLocalName(ref ast.Ref) string {
	return l.scope.Symbol(ref).OriginalName
}

// ClassSite describes where the class AST node came from, so P1/P5 can
// reconstruct the surrounding statement shape (declaration vs expression,
// export or not), per spec.md §4.1/§4.2.
type ClassSite struct {
	// Kind is one of "declaration", "expression".
	Kind string

	// IsExport is true for "export class ..." / "export default class ...".
	IsExport bool

	// IsDefaultExport is true specifically for "export default class ...".
	IsDefaultExport bool

	// InferredName is the name a named-evaluation context (spec.md §4.1)
	// assigns to an otherwise-anonymous class expression: the LHS of a
	// variable initializer, assignment, property, etc. Empty if none.
	InferredName string

	// Name is the source text of class.Name's binding, when the class had
	// one syntactically. class.Name's Ref belongs to whatever symbol table
	// the caller's enclosing program uses, not to this invocation's own
	// scope.Manager (spec.md §5 — this pass never sees that table), so P1
	// cannot resolve it itself; the caller supplies the string instead.
	Name string
}

// LowerClass runs phases P1..P6 over class and returns the statements that
// should replace the class's original site, per spec.md §2.
//
// class is mutated in place; callers that need to keep the pre-lowering
// tree around (e.g. for the idempotence property of spec.md §8) must clone
// it first with ast.CloneClass.
func (p *Plugin) LowerClass(class *ast.Class, site ClassSite, source *logger.Source) (*Result, error) {
	if p.visited.IsVisited(class) {
		// Idempotence: spec.md §8 "running the pass on its own output is a
		// no-op".
		return &Result{Stmts: []ast.Stmt{declStmtForAlreadyLowered(class, site)}, Log: logger.NewLog()}, nil
	}

	correlationID := uuid.New().String()
	stopP2 := p.metrics.ObservePhase("survey")
	l := &lowering{
		plugin:   p,
		log:      logger.NewLogWithCorrelationID(correlationID),
		source:   source,
		isDecl:   site.Kind == "declaration",
		isExport: site.IsExport,
	}
	l.scope = scope.NewManager()
	l.rt = runtime.NewImporter(
		func(name string) ast.Ref { return l.scope.NewSymbol(ast.SymbolOther, name) },
		func(ast.Ref) {},
	)
	l.state = classState{
		version:                 p.version,
		policy:                  p.policy,
		firstInstanceFieldIndex: -1,
		inferredName:            site.InferredName,
		forbiddenPrivateWrites:  map[ast.Ref]forbiddenPrivateWrite{},
	}

	// registerClassIdentity runs unconditionally, decorated or not: it's
	// what keeps class.Name resolvable through l.scope alone (see its own
	// doc comment), which every caller is entitled to regardless of
	// whether this class turns out to need lowering.
	hint := registerClassIdentity(l, class, site)

	// decorated is decided up front from the untouched tree (spec.md §3's
	// IsDecorated check over the class and every element), because P3's
	// accessor desugaring needs to know whether classIdLocal exists
	// (allocated by P1, below) before it can decide a static accessor's
	// receiver, and P1 itself only runs when there's something to lower.
	decorated := class.IsDecorated()
	if decorated {
		phase1EntryAndBindingRewrite(l, hint)
	}

	// P3 (auto-accessor desugaring) always runs, even for a fully
	// undecorated class, per spec.md §3 invariant 4.
	phase3DesugarAccessors(l, class)
	if err := lowerNestedClassFieldExpressions(l, class, source); err != nil {
		stopP2()
		return nil, err
	}
	stopP2()

	if !decorated {
		p.visited.Mark(class)
		return &Result{Stmts: wrapAsIdentityNoop(l, class, site), Log: l.log, Scope: l.scope}, nil
	}

	stop4 := p.metrics.ObservePhase("extract")
	phase2SurveyElements(l, class)
	phase4ExtractDecorators(l, class)
	stop4()

	stop5 := p.metrics.ObservePhase("emit")
	stmts, expr := phase5Emit(l, class, site)
	stop5()

	stop6 := p.metrics.ObservePhase("validate")
	if fatal := phase6Validate(l, class); fatal != nil {
		stop6()
		p.metrics.FatalDiagnostic(p.version.String())
		return nil, fatal
	}
	stop6()

	l.scope.Crawl()
	p.visited.Mark(class)
	p.metrics.ClassLowered(p.version.String())
	for _, info := range l.state.elements {
		p.metrics.ElementLowered(elementKindName(info.Kind))
	}

	binding := l.state.classIdLocal
	return &Result{Stmts: stmts, Expr: expr, Log: l.log, Binding: &binding, Scope: l.scope}, nil
}

func elementKindName(k ast.ElementKind) string {
	switch k {
	case ast.ElementField:
		return "field"
	case ast.ElementAccessor:
		return "accessor"
	case ast.ElementMethod:
		return "method"
	case ast.ElementGetter:
		return "getter"
	case ast.ElementSetter:
		return "setter"
	default:
		return "unknown"
	}
}

// declStmtForAlreadyLowered re-wraps an already-lowered class back into a
// statement matching its original site shape, without touching it, so
// repeated LowerClass calls on the same *ast.Class compose cleanly.
func declStmtForAlreadyLowered(class *ast.Class, site ClassSite) ast.Stmt {
	return ast.Stmt{Data: &ast.SClass{Class: *class, IsExport: site.IsExport}}
}

// wrapAsIdentityNoop handles the fully-undecorated case (spec.md §4.3 "If
// neither class nor any element is decorated, emit only any pending
// computed-key memoizations and return"). Auto-accessor desugaring (P3)
// has already mutated class in place; there is nothing else to do.
func wrapAsIdentityNoop(l *lowering, class *ast.Class, site ClassSite) []ast.Stmt {
	stmts := append([]ast.Stmt{}, l.state.preStmts...)
	stmts = append(stmts, ast.Stmt{Data: &ast.SClass{Class: *class, IsExport: site.IsExport}})
	return stmts
}
