package decorator

import "github.com/declower/declower/internal/ast"

// phase2SurveyElements implements spec.md §4.3 (P2): a read-only pass over
// the class body (already past P1's binding rewrite and P3's accessor
// desugaring) that records the metadata P4/P5 need but that is cheapest to
// compute once, in source order, rather than re-deriving per phase:
//
//   - firstInstanceFieldIndex, so P4 knows where to thread the proto-init
//     call when no constructor exists yet (spec.md §4.5).
//   - hasDecoratedInstancePrivate / lastInstancePrivateRef, so P5 can build
//     the 2023-05 instance brand-check closure (spec.md §4.6).
//
// The "is this class decorated at all" question spec.md §4.3 also assigns
// to P2 is answered earlier, by ast.Class.IsDecorated, because it is a
// cheap structural check over the untouched tree and P1 needs the answer
// before P2 would otherwise run (classIdLocal must exist before P3 can
// decide a static accessor's receiver).
func phase2SurveyElements(l *lowering, class *ast.Class) {
	for i, p := range class.Properties {
		if ast.IsStaticBlock(p) {
			continue
		}

		if !p.IsStatic && p.Kind == ast.PropertyField && l.state.firstInstanceFieldIndex == -1 {
			l.state.firstInstanceFieldIndex = i
		}

		if p.IsPrivate && !p.IsStatic && len(p.Decorators) > 0 && isMethodLikeKind(p.Kind) {
			l.state.hasDecoratedInstancePrivate = true
			if ref, ok := privateKeyRef(p.Key); ok {
				l.state.lastInstancePrivateRef = &ref
			}
		}
	}
}

func isMethodLikeKind(k ast.PropertyKind) bool {
	return k == ast.PropertyMethod || k == ast.PropertyGet || k == ast.PropertySet
}

func privateKeyRef(key ast.Expr) (ast.Ref, bool) {
	if id, ok := key.Data.(*ast.EPrivateIdentifier); ok {
		return id.Ref, true
	}
	return ast.Ref{}, false
}
