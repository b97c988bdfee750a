package decorator

import (
	"testing"

	"github.com/declower/declower/internal/ast"
)

func infoAt(kind ast.ElementKind, static bool, sourceIndex int) *DecoratorInfo {
	return &DecoratorInfo{Kind: kind, IsStatic: static, sourceIndex: sourceIndex}
}

func TestOrderDecoratorInfosBucketOrder(t *testing.T) {
	// Deliberately shuffled relative to the required emission order:
	// static accessor-like, instance accessor-like, static field, instance field.
	instanceField := infoAt(ast.ElementField, false, 0)
	staticField := infoAt(ast.ElementField, true, 1)
	instanceGetter := infoAt(ast.ElementGetter, false, 2)
	staticAccessor := infoAt(ast.ElementAccessor, true, 3)

	ordered := OrderDecoratorInfos([]*DecoratorInfo{instanceField, staticField, instanceGetter, staticAccessor})

	want := []*DecoratorInfo{staticAccessor, instanceGetter, staticField, instanceField}
	if len(ordered) != len(want) {
		t.Fatalf("OrderDecoratorInfos returned %d infos, want %d", len(ordered), len(want))
	}
	for i := range want {
		if ordered[i] != want[i] {
			t.Fatalf("position %d: got sourceIndex %d, want %d", i, ordered[i].sourceIndex, want[i].sourceIndex)
		}
	}
}

func TestOrderDecoratorInfosStableWithinBucket(t *testing.T) {
	first := infoAt(ast.ElementField, false, 0)
	second := infoAt(ast.ElementField, false, 1)
	third := infoAt(ast.ElementField, false, 2)

	ordered := OrderDecoratorInfos([]*DecoratorInfo{third, first, second})

	if ordered[0] != first || ordered[1] != second || ordered[2] != third {
		t.Fatalf("OrderDecoratorInfos did not preserve source order within a bucket: %v", []int{
			ordered[0].sourceIndex, ordered[1].sourceIndex, ordered[2].sourceIndex,
		})
	}
}

func TestOrderDecoratorInfosDoesNotMutateInput(t *testing.T) {
	in := []*DecoratorInfo{infoAt(ast.ElementField, false, 0), infoAt(ast.ElementAccessor, true, 1)}
	inCopy := append([]*DecoratorInfo{}, in...)

	OrderDecoratorInfos(in)

	for i := range in {
		if in[i] != inCopy[i] {
			t.Fatalf("OrderDecoratorInfos mutated its input slice in place")
		}
	}
}
