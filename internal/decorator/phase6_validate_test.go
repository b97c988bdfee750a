package decorator

import (
	"strings"
	"testing"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/logger"
)

func newTestLowering(source *logger.Source) *lowering {
	return &lowering{
		log:    logger.NewLog(),
		source: source,
		state:  classState{forbiddenPrivateWrites: map[ast.Ref]forbiddenPrivateWrite{}},
	}
}

func privateWriteMethod(target ast.Expr) ast.Property {
	body := []ast.Stmt{ast.ExprStmt(ast.Loc{}, ast.Assign(ast.Loc{}, target, ast.Num(ast.Loc{}, 1)))}
	fn := ast.Expr{Data: &ast.EFunction{Fn: ast.Fn{Body: body}}}
	return ast.Property{Kind: ast.PropertyMethod, Value: &fn}
}

func TestPhase6ValidateReportsForbiddenWrite(t *testing.T) {
	source := &logger.Source{PrettyPath: "test.js", Contents: "class C {}"}
	l := newTestLowering(source)

	ref := ast.Ref{InnerIndex: 7}
	l.state.forbiddenPrivateWrites[ref] = forbiddenPrivateWrite{name: "#run", declLoc: ast.Loc{Start: 0}}

	target := ast.Index(ast.Loc{}, ast.This(ast.Loc{}), ast.PrivateIdent(ast.Loc{}, ref))
	class := &ast.Class{Properties: []ast.Property{privateWriteMethod(target)}}

	fatal := phase6Validate(l, class)
	if fatal == nil {
		t.Fatalf("phase6Validate did not report the forbidden write")
	}
	if len(fatal.Msgs) == 0 || !strings.Contains(fatal.Msgs[0].Text, "#run") {
		t.Fatalf("fatal diagnostic = %v, want a message mentioning #run", fatal.Msgs)
	}
	if len(fatal.Msgs[0].Notes) != 1 {
		t.Fatalf("expected one note pointing at the declaration site, got %d", len(fatal.Msgs[0].Notes))
	}
}

func TestPhase6ValidateIgnoresUnrelatedPrivateWrites(t *testing.T) {
	source := &logger.Source{PrettyPath: "test.js", Contents: "class C {}"}
	l := newTestLowering(source)

	tracked := ast.Ref{InnerIndex: 7}
	other := ast.Ref{InnerIndex: 8}
	l.state.forbiddenPrivateWrites[tracked] = forbiddenPrivateWrite{name: "#run"}

	target := ast.Index(ast.Loc{}, ast.This(ast.Loc{}), ast.PrivateIdent(ast.Loc{}, other))
	class := &ast.Class{Properties: []ast.Property{privateWriteMethod(target)}}

	if fatal := phase6Validate(l, class); fatal != nil {
		t.Fatalf("phase6Validate reported a write to an untracked private name: %v", fatal.Msgs)
	}
}

func TestPhase6ValidateSkipsWhenNothingTracked(t *testing.T) {
	source := &logger.Source{PrettyPath: "test.js", Contents: "class C {}"}
	l := newTestLowering(source)

	target := ast.Index(ast.Loc{}, ast.This(ast.Loc{}), ast.PrivateIdent(ast.Loc{}, ast.Ref{InnerIndex: 1}))
	class := &ast.Class{Properties: []ast.Property{privateWriteMethod(target)}}

	if fatal := phase6Validate(l, class); fatal != nil {
		t.Fatalf("phase6Validate ran a tree walk despite tracking no forbidden writes: %v", fatal.Msgs)
	}
}

func TestPhase6ValidateFindsWriteInsideStaticBlock(t *testing.T) {
	source := &logger.Source{PrettyPath: "test.js", Contents: "class C {}"}
	l := newTestLowering(source)

	ref := ast.Ref{InnerIndex: 9}
	l.state.forbiddenPrivateWrites[ref] = forbiddenPrivateWrite{name: "#run"}

	target := ast.Index(ast.Loc{}, ast.This(ast.Loc{}), ast.PrivateIdent(ast.Loc{}, ref))
	stmt := ast.ExprStmt(ast.Loc{}, ast.Assign(ast.Loc{}, target, ast.Num(ast.Loc{}, 1)))
	class := &ast.Class{Properties: []ast.Property{
		{Kind: ast.PropertyClassStaticBlock, ClassStaticBlock: &ast.ClassStaticBlock{Stmts: []ast.Stmt{stmt}}},
	}}

	if fatal := phase6Validate(l, class); fatal == nil {
		t.Fatalf("phase6Validate did not find the forbidden write inside a static block")
	}
}
