package runtime

import (
	"testing"

	"github.com/declower/declower/internal/ast"
)

func newTestImporter() (*Importer, func() int) {
	n := 0
	im := NewImporter(
		func(name string) ast.Ref { n++; return ast.Ref{InnerIndex: uint32(n)} },
		func(ast.Ref) {},
	)
	return im, func() int { return n }
}

func TestReferenceDedupsPerHelper(t *testing.T) {
	im, allocations := newTestImporter()

	first := im.Reference(ast.Loc{}, ApplyDecs2305)
	second := im.Reference(ast.Loc{}, ApplyDecs2305)

	firstRef := first.Data.(*ast.EIdentifier).Ref
	secondRef := second.Data.(*ast.EIdentifier).Ref
	if firstRef != secondRef {
		t.Fatalf("two references to the same helper got different refs: %v vs %v", firstRef, secondRef)
	}
	if got := allocations(); got != 1 {
		t.Fatalf("allocated %d symbols for one helper referenced twice, want 1", got)
	}
}

func TestReferenceAllocatesOncePerDistinctHelper(t *testing.T) {
	im, allocations := newTestImporter()
	im.Reference(ast.Loc{}, ApplyDecs2305)
	im.Reference(ast.Loc{}, SetFunctionName)
	if got := allocations(); got != 2 {
		t.Fatalf("allocated %d symbols for two distinct helpers, want 2", got)
	}
}

func TestCallBuildsCallExpressionToHelper(t *testing.T) {
	im, _ := newTestImporter()
	call := im.Call(ast.Loc{}, ToPropertyKey, ast.This(ast.Loc{}))

	c, ok := call.Data.(*ast.ECall)
	if !ok {
		t.Fatalf("Call returned %T, want *ast.ECall", call.Data)
	}
	if len(c.Args) != 1 {
		t.Fatalf("Call built %d args, want 1", len(c.Args))
	}
	if _, ok := c.Target.Data.(*ast.EIdentifier); !ok {
		t.Fatalf("Call target is %T, want *ast.EIdentifier", c.Target.Data)
	}
}

func TestUsedReturnsFirstUseOrder(t *testing.T) {
	im, _ := newTestImporter()
	im.Reference(ast.Loc{}, ApplyDecs2305)
	im.Reference(ast.Loc{}, SetFunctionName)
	im.Reference(ast.Loc{}, ApplyDecs2305) // already used, shouldn't move

	want := []string{ApplyDecs2305, SetFunctionName}
	got := im.Used()
	if len(got) != len(want) {
		t.Fatalf("Used() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Used() = %v, want %v", got, want)
		}
	}
}
