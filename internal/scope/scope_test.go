package scope

import (
	"testing"

	"github.com/declower/declower/internal/ast"
)

func TestNewSymbolRegistersOriginalName(t *testing.T) {
	m := NewManager()
	ref := m.NewSymbol(ast.SymbolClass, "Foo")
	if got := m.Symbol(ref).OriginalName; got != "Foo" {
		t.Fatalf("OriginalName = %q, want %q", got, "Foo")
	}
}

func TestGenerateUIDAvoidsCollisions(t *testing.T) {
	m := NewManager()
	m.NewSymbol(ast.SymbolOther, "x")

	ref := m.GenerateUID(ast.SymbolOther, "x")
	got := m.Symbol(ref).OriginalName
	if got == "x" {
		t.Fatalf("GenerateUID returned a name already in use: %q", got)
	}

	second := m.GenerateUID(ast.SymbolOther, "x")
	if m.Symbol(second).OriginalName == got {
		t.Fatalf("two successive GenerateUID calls with the same hint returned the same name")
	}
}

func TestRenameResolvesThroughLink(t *testing.T) {
	m := NewManager()
	from := m.NewSymbol(ast.SymbolOther, "a")
	to := m.NewSymbol(ast.SymbolOther, "b")

	m.Rename(from, to)

	if got := m.Symbol(from).OriginalName; got != "b" {
		t.Fatalf("Symbol(from) after Rename = %q, want %q", got, "b")
	}
}

func TestIsConstant(t *testing.T) {
	m := NewManager()
	constRef := m.NewSymbol(ast.SymbolConst, "c")
	m.Symbols[constRef.InnerIndex].Constant = true
	varRef := m.NewSymbol(ast.SymbolHoisted, "v")

	tests := []struct {
		name string
		expr ast.Expr
		want bool
	}{
		{"number literal", ast.Num(ast.Loc{}, 1), true},
		{"string literal", ast.Str(ast.Loc{}, "s"), true},
		{"this", ast.This(ast.Loc{}), true},
		{"constant identifier", ast.Ident(ast.Loc{}, constRef), true},
		{"non-constant identifier", ast.Ident(ast.Loc{}, varRef), false},
		{"call expression", ast.Call(ast.Loc{}, ast.Ident(ast.Loc{}, varRef)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IsConstant(tt.expr); got != tt.want {
				t.Errorf("IsConstant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaybeGenerateMemoisedSkipsConstants(t *testing.T) {
	m := NewManager()
	if ref := m.MaybeGenerateMemoised(ast.SymbolOther, ast.Str(ast.Loc{}, "s"), "hint"); ref != nil {
		t.Fatalf("MaybeGenerateMemoised on a constant expression returned %v, want nil", ref)
	}

	varRef := m.NewSymbol(ast.SymbolHoisted, "v")
	ref := m.MaybeGenerateMemoised(ast.SymbolOther, ast.Ident(ast.Loc{}, varRef), "hint")
	if ref == nil {
		t.Fatalf("MaybeGenerateMemoised on a non-constant expression returned nil")
	}
}

func TestCrawlDropsSupersededNames(t *testing.T) {
	m := NewManager()
	from := m.NewSymbol(ast.SymbolOther, "a")
	to := m.NewSymbol(ast.SymbolOther, "b")
	m.Rename(from, to)
	m.Crawl()

	// "a" is no longer a live name after being superseded by the rename, so
	// a fresh allocation may reuse it.
	reused := m.GenerateUID(ast.SymbolOther, "a")
	if got := m.Symbol(reused).OriginalName; got != "a" {
		t.Fatalf("expected the superseded name to be reusable after Crawl, got %q", got)
	}
}

func TestGenerateDeclaredUIDTracksToDeclare(t *testing.T) {
	m := NewManager()
	ref := m.GenerateDeclaredUID(ast.SymbolOther, "tmp")
	if len(m.ToDeclare) != 1 || m.ToDeclare[0] != ref {
		t.Fatalf("GenerateDeclaredUID did not record %v in ToDeclare: %v", ref, m.ToDeclare)
	}
}
