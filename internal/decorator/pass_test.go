package decorator

import (
	"testing"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/compat"
	"github.com/declower/declower/internal/logger"
	"github.com/declower/declower/internal/scope"
)

func decoratedFieldClass(classNameRef, fieldDecoratorRef ast.Ref) *ast.Class {
	loc := ast.Loc{}
	field := ast.Property{
		Kind:       ast.PropertyField,
		Key:        ast.Str(loc, "x"),
		Decorators: []ast.Decorator{{Value: ast.Ident(loc, fieldDecoratorRef)}},
	}
	return &ast.Class{Name: &classNameRef, Properties: []ast.Property{field}}
}

func TestLowerClassDecoratedFieldEmitsApplyDecsCall(t *testing.T) {
	for _, v := range []string{"2021-12", "2022-03", "2023-01", "2023-05"} {
		t.Run(v, func(t *testing.T) {
			version, err := compat.ParseVersion(v)
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", v, err)
			}
			plugin, err := New(Options{Version: v, HostVersion: version.MinimumHostVersion()})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			classNameRef := ast.Ref{InnerIndex: 1000}
			decoratorRef := ast.Ref{InnerIndex: 2000}
			class := decoratedFieldClass(classNameRef, decoratorRef)
			source := &logger.Source{PrettyPath: "test.js", Contents: "class Widget {}"}

			res, err := plugin.LowerClass(class, ClassSite{Kind: "declaration", Name: "Widget"}, source)
			if err != nil {
				t.Fatalf("LowerClass() error = %v", err)
			}
			if res.Binding == nil {
				t.Fatalf("a decorated class returned a nil Binding")
			}
			if len(res.Stmts) == 0 {
				t.Fatalf("a decorated class returned no statements")
			}

			helper := compat.PolicyFor(version).Helper
			if !stmtsContainCallTo(res.Stmts, res.Scope, helper) {
				t.Fatalf("lowering output for %s does not call %s", v, helper)
			}
		})
	}
}

func TestLowerClassUndecoratedClassStaysABareDeclaration(t *testing.T) {
	plugin, err := New(Options{Version: "2023-05", HostVersion: compat.HostVersion{Major: 7, Minor: 21, Patch: 0}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	classNameRef := ast.Ref{InnerIndex: 1}
	field := ast.Property{Kind: ast.PropertyField, Key: ast.Str(ast.Loc{}, "x")}
	class := &ast.Class{Name: &classNameRef, Properties: []ast.Property{field}}
	source := &logger.Source{PrettyPath: "test.js", Contents: "class Widget {}"}

	res, err := plugin.LowerClass(class, ClassSite{Kind: "declaration", Name: "Widget"}, source)
	if err != nil {
		t.Fatalf("LowerClass() error = %v", err)
	}
	if res.Binding != nil {
		t.Fatalf("an undecorated class got a non-nil Binding")
	}
	if res.Scope == nil {
		t.Fatalf("Result.Scope is nil even though LowerClass always constructs one")
	}
	if len(res.Stmts) != 1 {
		t.Fatalf("LowerClass() on an undecorated class returned %d statements, want 1", len(res.Stmts))
	}
	if _, ok := res.Stmts[0].Data.(*ast.SClass); !ok {
		t.Fatalf("an undecorated class did not stay a bare SClass statement: %T", res.Stmts[0].Data)
	}
}

func TestLowerClassIsIdempotent(t *testing.T) {
	plugin, err := New(Options{Version: "2023-05", HostVersion: compat.HostVersion{Major: 7, Minor: 21, Patch: 0}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	classNameRef := ast.Ref{InnerIndex: 1}
	decoratorRef := ast.Ref{InnerIndex: 2}
	class := decoratedFieldClass(classNameRef, decoratorRef)
	source := &logger.Source{PrettyPath: "test.js", Contents: "class Widget {}"}

	if _, err := plugin.LowerClass(class, ClassSite{Kind: "declaration", Name: "Widget"}, source); err != nil {
		t.Fatalf("first LowerClass() error = %v", err)
	}

	second, err := plugin.LowerClass(class, ClassSite{Kind: "declaration"}, source)
	if err != nil {
		t.Fatalf("re-running LowerClass() on its own output returned an error: %v", err)
	}
	if len(second.Stmts) != 1 {
		t.Fatalf("idempotent re-run returned %d statements, want 1", len(second.Stmts))
	}
	if _, ok := second.Stmts[0].Data.(*ast.SClass); !ok {
		t.Fatalf("idempotent re-run did not re-wrap the already-lowered class as a bare SClass statement: %T", second.Stmts[0].Data)
	}
}

func TestVisitTopLevelClassStmtResolvesTheSyntacticClassName(t *testing.T) {
	plugin, err := New(Options{Version: "2023-05", HostVersion: compat.HostVersion{Major: 7, Minor: 21, Patch: 0}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mgr := scope.NewManager()
	nameRef := mgr.NewSymbol(ast.SymbolClass, "Widget")
	decoratorRef := mgr.NewSymbol(ast.SymbolOther, "logged")

	class := decoratedFieldClass(nameRef, decoratorRef)
	stmt := ast.Stmt{Data: &ast.SClass{Class: *class, IsExport: false}}
	source := &logger.Source{PrettyPath: "test.js", Contents: "class Widget {}"}

	out, lowered, err := plugin.VisitTopLevelClassStmt(stmt, source, func(ref ast.Ref) string { return mgr.Symbol(ref).OriginalName })
	if err != nil {
		t.Fatalf("VisitTopLevelClassStmt() error = %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("VisitTopLevelClassStmt() returned no statements")
	}
	if lowered == nil {
		t.Fatalf("VisitTopLevelClassStmt() returned a nil scope for a class site")
	}
	if !stmtsContainCallTo(out, lowered, compat.PolicyFor(compat.V2023_05).Helper) {
		t.Fatalf("lowering output does not call the expected runtime helper")
	}
}

// --- a small deep-search helper, enough to confirm the emitted tree
// actually calls the expected runtime helper without diffing against an
// exact generated-identifier-name rendering. ---------------------------

func stmtsContainCallTo(stmts []ast.Stmt, mgr *scope.Manager, helper string) bool {
	for _, s := range stmts {
		if stmtContainsCallTo(s, mgr, helper) {
			return true
		}
	}
	return false
}

func stmtContainsCallTo(s ast.Stmt, mgr *scope.Manager, helper string) bool {
	switch d := s.Data.(type) {
	case *ast.SExpr:
		return exprContainsCallTo(d.Value, mgr, helper)
	case *ast.SLocal:
		for _, decl := range d.Decls {
			if decl.Value != nil && exprContainsCallTo(*decl.Value, mgr, helper) {
				return true
			}
		}
	case *ast.SReturn:
		return d.Value != nil && exprContainsCallTo(*d.Value, mgr, helper)
	case *ast.SBlock:
		return stmtsContainCallTo(d.Stmts, mgr, helper)
	case *ast.SIf:
		if exprContainsCallTo(d.Test, mgr, helper) || stmtContainsCallTo(d.Yes, mgr, helper) {
			return true
		}
		return d.No != nil && stmtContainsCallTo(*d.No, mgr, helper)
	case *ast.SClass:
		return classContainsCallTo(&d.Class, mgr, helper)
	case *ast.SExportDefault:
		return stmtContainsCallTo(d.Value, mgr, helper)
	}
	return false
}

func classContainsCallTo(c *ast.Class, mgr *scope.Manager, helper string) bool {
	for _, p := range c.Properties {
		if p.Initializer != nil && exprContainsCallTo(*p.Initializer, mgr, helper) {
			return true
		}
		if p.Value != nil && exprContainsCallTo(*p.Value, mgr, helper) {
			return true
		}
		if p.ClassStaticBlock != nil && stmtsContainCallTo(p.ClassStaticBlock.Stmts, mgr, helper) {
			return true
		}
	}
	return false
}

func exprContainsCallTo(e ast.Expr, mgr *scope.Manager, helper string) bool {
	switch d := e.Data.(type) {
	case *ast.ECall:
		if refNamesHelper(d.Target, mgr, helper) {
			return true
		}
		if exprContainsCallTo(d.Target, mgr, helper) {
			return true
		}
		for _, a := range d.Args {
			if exprContainsCallTo(a, mgr, helper) {
				return true
			}
		}
	case *ast.ENew:
		if exprContainsCallTo(d.Target, mgr, helper) {
			return true
		}
		for _, a := range d.Args {
			if exprContainsCallTo(a, mgr, helper) {
				return true
			}
		}
	case *ast.EBinary:
		return exprContainsCallTo(d.Left, mgr, helper) || exprContainsCallTo(d.Right, mgr, helper)
	case *ast.EUnary:
		return exprContainsCallTo(d.Value, mgr, helper)
	case *ast.ESequence:
		for _, item := range d.Exprs {
			if exprContainsCallTo(item, mgr, helper) {
				return true
			}
		}
	case *ast.EDot:
		return exprContainsCallTo(d.Target, mgr, helper)
	case *ast.EIndex:
		return exprContainsCallTo(d.Target, mgr, helper) || exprContainsCallTo(d.Index, mgr, helper)
	case *ast.EArray:
		for _, item := range d.Items {
			if exprContainsCallTo(item, mgr, helper) {
				return true
			}
		}
	case *ast.ESpread:
		return exprContainsCallTo(d.Value, mgr, helper)
	case *ast.EClass:
		return classContainsCallTo(&d.Class, mgr, helper)
	case *ast.EFunction:
		return stmtsContainCallTo(d.Fn.Body, mgr, helper)
	case *ast.EArrow:
		return stmtsContainCallTo(d.Body, mgr, helper)
	}
	return false
}

func refNamesHelper(e ast.Expr, mgr *scope.Manager, helper string) bool {
	id, ok := e.Data.(*ast.EIdentifier)
	if !ok {
		return false
	}
	return mgr.Symbol(id.Ref).OriginalName == helper
}
