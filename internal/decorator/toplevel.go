package decorator

import (
	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/logger"
	"github.com/declower/declower/internal/scope"
)

// VisitTopLevelClassStmt implements spec.md §4.1: the entry point a host
// driver calls for each top-level class site it finds (a bare class
// declaration, `export class ...`, or `export default class ...`).
// class is mutated in place, matching LowerClass's own contract.
//
// resolveName resolves a class.Name Ref to its source text — an external
// capability borrowed from whatever symbol table the caller's enclosing
// program uses (see ClassSite.Name), since that Ref was never allocated
// by this invocation's own scope.Manager. It may be nil only when stmt
// holds no named class and no decorated class expression in a variable
// initializer or assignment (e.g. an anonymous default export):
// InferNameFromDecl and InferNameFromAssignment call it without a nil
// check.
//
// The returned *scope.Manager is the one named in Result.Scope — nil when
// stmt wasn't a class site at all, since then LowerClass never ran. A
// driver visiting many top-level statements merges each non-nil one into
// its own whole-program table the same way it would merge LowerClass's
// own Result.Scope (see that field's doc comment).
func (p *Plugin) VisitTopLevelClassStmt(stmt ast.Stmt, source *logger.Source, resolveName func(ast.Ref) string) ([]ast.Stmt, *scope.Manager, error) {
	switch d := stmt.Data.(type) {
	case *ast.SClass:
		site := ClassSite{Kind: "declaration", IsExport: d.IsExport, Name: classNameHint(d.Class.Name, resolveName)}
		res, err := p.LowerClass(&d.Class, site, source)
		if err != nil {
			return nil, nil, err
		}
		return res.Stmts, res.Scope, nil

	case *ast.SExportDefault:
		return p.visitExportDefault(d, source, resolveName)

	case *ast.SLocal:
		return p.visitLocalClassExprs(d, source, resolveName)

	case *ast.SExpr:
		if out, mgr, handled, err := p.visitAssignedClassExpr(d, source, resolveName); handled {
			return out, mgr, err
		}
		return []ast.Stmt{stmt}, nil, nil

	default:
		return []ast.Stmt{stmt}, nil, nil
	}
}

// visitLocalClassExprs implements spec.md §4.1's named-evaluation rule for
// a decorated anonymous class expression on the RHS of a variable
// initializer: "let Foo = @dec class {}" infers the name "Foo" the same
// way InferNameFromDecl does for any other binding context.
//
// A statement with more than one decorated class-expression initializer
// ("let A = @dec class {}, B = @dec class {}") is rare enough that only
// the last one's scope.Manager is returned; the driver merges Result.Scope
// tables one class at a time regardless, so this only matters if a caller
// tries to resolve a Ref from the A class's own helper imports against
// the returned table.
func (p *Plugin) visitLocalClassExprs(d *ast.SLocal, source *logger.Source, resolveName func(ast.Ref) string) ([]ast.Stmt, *scope.Manager, error) {
	var pre []ast.Stmt
	var mgr *scope.Manager

	for i := range d.Decls {
		decl := &d.Decls[i]
		if decl.Value == nil {
			continue
		}
		classExpr, ok := decl.Value.Data.(*ast.EClass)
		if !ok || !classExpr.Class.IsDecorated() {
			continue
		}

		site := ClassSite{Kind: "expression", InferredName: InferNameFromDecl(*decl, resolveName)}
		res, err := p.LowerClass(&classExpr.Class, site, source)
		if err != nil {
			return nil, nil, err
		}
		pre = append(pre, res.Stmts...)
		decl.Value = res.Expr
		mgr = res.Scope
	}

	return append(pre, ast.Stmt{Data: d}), mgr, nil
}

// visitAssignedClassExpr implements spec.md §4.1's named-evaluation rule
// for a decorated anonymous class expression on the RHS of a simple
// assignment ("=", "&&=", "||=", "??="): "Foo = @dec class {}" infers the
// name "Foo" from the assignment target via InferNameFromAssignment.
// handled is false when d.Value isn't one of those assignment shapes at
// all, so the caller falls back to treating the statement as opaque.
func (p *Plugin) visitAssignedClassExpr(d *ast.SExpr, source *logger.Source, resolveName func(ast.Ref) string) (stmts []ast.Stmt, mgr *scope.Manager, handled bool, err error) {
	bin, ok := d.Value.Data.(*ast.EBinary)
	if !ok || !isNameAssignOp(bin.Op) {
		return nil, nil, false, nil
	}
	classExpr, ok := bin.Right.Data.(*ast.EClass)
	if !ok || !classExpr.Class.IsDecorated() {
		return nil, nil, false, nil
	}

	site := ClassSite{Kind: "expression", InferredName: InferNameFromAssignment(d.Value, resolveName)}
	res, err := p.LowerClass(&classExpr.Class, site, source)
	if err != nil {
		return nil, nil, true, err
	}
	bin.Right = *res.Expr
	out := append(append([]ast.Stmt{}, res.Stmts...), ast.Stmt{Data: d})
	return out, res.Scope, true, nil
}

func classNameHint(ref *ast.Ref, resolveName func(ast.Ref) string) string {
	if ref == nil || resolveName == nil {
		return ""
	}
	return resolveName(*ref)
}

// visitExportDefault implements spec.md §4.1's default-export handling: a
// decorated default export is split into a preceding declaration (since
// the pass must reassign the binding) plus a trailing
// "export { Name as default }"; an undecorated one is lowered in place
// (auto-accessor desugaring only) and stays a single default-export
// statement, since nothing there needs the binding reassigned.
func (p *Plugin) visitExportDefault(d *ast.SExportDefault, source *logger.Source, resolveName func(ast.Ref) string) ([]ast.Stmt, *scope.Manager, error) {
	classStmt, ok := d.Value.Data.(*ast.SClass)
	if !ok {
		// Non-class default exports never reach the decorator pass.
		return []ast.Stmt{{Data: d}}, nil, nil
	}

	site := ClassSite{Kind: "declaration", IsExport: true, IsDefaultExport: true,
		Name: classNameHint(classStmt.Class.Name, resolveName)}
	if classStmt.Class.Name == nil {
		// spec.md §4.1: "an anonymous default exports the class under the
		// synthetic name default".
		site.InferredName = "default"
	}

	res, err := p.LowerClass(&classStmt.Class, site, source)
	if err != nil {
		return nil, nil, err
	}

	if res.Binding == nil {
		// Undecorated: no binding reassignment happened, so the original
		// "export default class ..." shape survives unsplit. Any leading
		// preStmts-derived statements (rare — a computed accessor key
		// memoization) still need to precede it.
		if len(res.Stmts) == 0 {
			return res.Stmts, res.Scope, nil
		}
		last := res.Stmts[len(res.Stmts)-1]
		rewrapped, ok := last.Data.(*ast.SClass)
		if !ok {
			return res.Stmts, res.Scope, nil
		}
		out := append([]ast.Stmt{}, res.Stmts[:len(res.Stmts)-1]...)
		out = append(out, ast.Stmt{Data: &ast.SExportDefault{DefaultName: d.DefaultName, Value: ast.Stmt{Data: rewrapped}}})
		return out, res.Scope, nil
	}

	// Decorated: res.Stmts already is the split preceding declaration
	// ("let Name; Name = class {...}; [Name = new (...)(Name);]"); append
	// the trailing re-export clause spec.md §4.1 requires.
	out := append([]ast.Stmt{}, res.Stmts...)
	out = append(out, ast.Stmt{Data: &ast.SExportClause{Items: []ast.ExportItem{
		{Alias: "default", Name: *res.Binding},
	}}})
	return out, res.Scope, nil
}

// --- named evaluation (spec.md §4.1) ----------------------------------------

// isNameAssignOp reports whether op is one of the four assignment
// operators spec.md §4.1 lists for named evaluation: "=", "&&=", "||=",
// "??=".
func isNameAssignOp(op ast.BinOp) bool {
	switch op {
	case ast.BinOpAssign, ast.BinOpLogicalAndAssign, ast.BinOpLogicalOrAssign, ast.BinOpNullishAssign:
		return true
	default:
		return false
	}
}

// InferNameFromDecl implements spec.md §4.1's "RHS of a variable
// initializer" named-evaluation rule. resolveName resolves a binding's Ref
// to its source name — an external capability this pass borrows from
// whatever scope owns the enclosing program (spec.md §9 "Scope and
// renaming"), since a bare variable declaration sits outside the one
// class's local scope this pass otherwise confines itself to.
func InferNameFromDecl(d ast.Decl, resolveName func(ast.Ref) string) string {
	id, ok := d.Binding.Data.(*ast.BIdentifier)
	if !ok {
		return ""
	}
	return resolveName(id.Ref)
}

// InferNameFromAssignment implements spec.md §4.1's "simple assignment
// (=, &&=, ||=, ??=)" named-evaluation rule.
func InferNameFromAssignment(e ast.Expr, resolveName func(ast.Ref) string) string {
	bin, ok := e.Data.(*ast.EBinary)
	if !ok || !isNameAssignOp(bin.Op) {
		return ""
	}
	id, ok := bin.Left.Data.(*ast.EIdentifier)
	if !ok {
		return ""
	}
	return resolveName(id.Ref)
}

// InferNameFromArgDefault implements spec.md §4.1's "assignment-pattern
// default" named-evaluation rule (a default parameter value).
func InferNameFromArgDefault(a ast.Arg, resolveName func(ast.Ref) string) string {
	if a.Default == nil {
		return ""
	}
	id, ok := a.Binding.Data.(*ast.BIdentifier)
	if !ok {
		return ""
	}
	return resolveName(id.Ref)
}

// lowerNestedClassFieldExpressions implements spec.md §4.1's named-
// evaluation rule for the "class-field initializer" context: "field =
// @dec class {}" infers the name "field" from the property's own key.
// Unlike InferNameFromDecl/InferNameFromAssignment (which need the
// caller's resolveName because the binding they name lives outside this
// class's own scope), a field key that is an identifier was already
// registered against this class's own l.scope, so it resolves directly
// with no external table involved.
//
// This runs for every class LowerClass ever sees, decorated or not (the
// nested class expression's own decoration is independent of whether the
// field holding it is decorated), the same way P3's accessor desugaring
// always runs regardless of class.IsDecorated().
func lowerNestedClassFieldExpressions(l *lowering, class *ast.Class, source *logger.Source) error {
	for i := range class.Properties {
		p := &class.Properties[i]
		if p.Initializer == nil {
			continue
		}
		nested, ok := (*p.Initializer).Data.(*ast.EClass)
		if !ok || !nested.Class.IsDecorated() {
			continue
		}

		site := ClassSite{Kind: "expression", InferredName: InferNameFromProperty(*p, l.resolveLocalName)}
		res, err := l.plugin.LowerClass(&nested.Class, site, source)
		if err != nil {
			return err
		}
		l.state.preStmts = append(l.state.preStmts, res.Stmts...)
		p.Initializer = res.Expr
	}
	return nil
}

// InferNameFromProperty implements spec.md §4.1's "object-literal
// property" and "class-field initializer" named-evaluation rules — both
// share the same ast.Property shape in this AST.
//
// A computed key is, per spec.md §4.1, memoized via toPropertyKey and the
// *memoized reference itself* used as the inferred name — not a static
// string. ClassSite.InferredName only carries a string hint, so that
// refinement isn't modeled here; a computed key simply contributes no
// inferred name, so phase1 falls back to its generic hint and P5 emits no
// setFunctionName call for the class.
func InferNameFromProperty(p ast.Property, resolveName func(ast.Ref) string) string {
	if p.IsComputed {
		return ""
	}
	switch d := p.Key.Data.(type) {
	case *ast.EIdentifier:
		return resolveName(d.Ref)
	case *ast.EPrivateIdentifier:
		return resolveName(d.Ref)
	case *ast.EString:
		return d.Value
	default:
		return ""
	}
}
