// Package decorator implements the CORE of spec.md: the decorator
// lowering pass. It rewrites a class AST node carrying decorators (on
// itself, its fields, its accessors, or its methods) into the equivalent
// undecorated AST plus the injected static block, helper calls, and
// auxiliary declarations described in spec.md §2-§4.
//
// The phase split (P1..P6) and most of the node shapes here are modeled on
// esbuild's internal/js_parser/js_parser_lower_class.go, which performs the
// analogous job of lowering private fields/methods, static blocks, and
// super-call interception for one class at a time — the same "multi-phase
// tree rewrite of one class" shape this pass needs, generalized from
// "make a newer feature work on an older runtime" to "make decorators work
// with no native support at all".
package decorator

import (
	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/compat"
)

// DecoratorInfo is the per-element record spec.md §3 requires P4 to
// produce and P5 to consume exactly once.
type DecoratorInfo struct {
	Kind     ast.ElementKind
	IsStatic bool

	// Name is either a string-literal name (identifier/private keys) or an
	// expression referencing a memoized computed-key local, per spec.md §3.
	Name ast.Expr

	Decorators []ast.Decorator

	// DecoratorsThis holds, for each entry in Decorators, the receiver that
	// decorator needs evaluated separately (2023-05 only; spec.md §3
	// "decoratorsThis"). A nil entry means "no separate receiver".
	DecoratorsThis []*ast.Expr

	// PrivateMethods holds the extracted callables the runtime will invoke
	// for a private-key decorated element: two closures (getter, setter)
	// for ACCESSOR, one function expression for METHOD/GETTER/SETTER.
	PrivateMethods []ast.Expr

	// Locals are the fresh identifiers the destructured runtime result
	// writes the initializer/getter/setter thunks into for this element.
	Locals []ast.Ref

	// source order index, used only to keep ties inside a bucket stable
	// when re-sorting into the emission order of spec.md §3 invariant 2.
	sourceIndex int
}

// bucket implements the total order of spec.md §3 invariant 2: static
// accessors/getters/setters, then instance accessors/getters/setters, then
// static fields, then instance fields.
func (d *DecoratorInfo) bucket() int {
	isAccessorLike := d.Kind == ast.ElementAccessor || d.Kind == ast.ElementGetter || d.Kind == ast.ElementSetter
	switch {
	case d.IsStatic && isAccessorLike:
		return 0
	case !d.IsStatic && isAccessorLike:
		return 1
	case d.IsStatic: // field or method — spec only emits fields/accessors/methods
		return 2
	default:
		return 3
	}
}

// OrderDecoratorInfos sorts infos into the emission order spec.md §3
// invariant 2 requires, stable on source order within a bucket.
func OrderDecoratorInfos(infos []*DecoratorInfo) []*DecoratorInfo {
	out := make([]*DecoratorInfo, len(infos))
	copy(out, infos)
	// Insertion sort: the input is small (class element counts are bounded
	// in practice) and this keeps the stability guarantee obvious.
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && lessInfo(out[j], out[j-1]) {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}

func lessInfo(a, b *DecoratorInfo) bool {
	if a.bucket() != b.bucket() {
		return a.bucket() < b.bucket()
	}
	return a.sourceIndex < b.sourceIndex
}

// classState carries the class-level bookkeeping (spec.md §3 "Class-level
// state") threaded through P1..P6 for a single class.
type classState struct {
	version compat.Version
	policy  compat.Policy

	classIdLocal   ast.Ref // internal reference to the decorated class
	classInitLocal *ast.Ref
	protoInitLocal *ast.Ref
	staticInitLocal *ast.Ref

	classDecorators []ast.Decorator

	// classDecoratorsThis parallels classDecorators the same way
	// DecoratorInfo.DecoratorsThis parallels DecoratorInfo.Decorators
	// (spec.md §3 "decoratorsThis"): the receiver a class decorator needs
	// evaluated separately when it was a this.x/super.x member expression
	// (2023-05 only).
	classDecoratorsThis []*ast.Expr

	// inferredName is filled in by named evaluation (spec.md §4.1) for an
	// anonymous decorated class expression.
	inferredName string

	// memoized pre-class assignments accumulated by P4/P3 (computed keys,
	// decorator expressions with unstable effects), emitted immediately
	// before the class expression by P5.
	preStmts []ast.Stmt

	elements []*DecoratorInfo

	// needsProtoInit/needsStaticInit record whether any decorated
	// non-field instance/static element requires the corresponding thunk
	// call to be threaded in, per spec.md §4.5.
	needsProtoInit  bool
	needsStaticInit bool

	// firstInstanceFieldIndex is the index (into Class.Properties, after
	// P3 desugaring) of the first non-static field/accessor in source
	// order, used to thread the proto-init call per spec.md §4.5. -1 if
	// none exists.
	firstInstanceFieldIndex int

	hasDecoratedInstancePrivate bool
	lastInstancePrivateRef      *ast.Ref

	// accessorLocals collects the init_/get_/set_ locals phase3 allocated
	// for each decorated accessor, so phase4 can fold them into that
	// element's DecoratorInfo without re-deriving them from the desugared
	// property list.
	accessorLocals []accessorLocalSeed

	// forbiddenPrivateWrites records, for a decorated private method moved
	// out into a plain field (spec.md §4.5), what P6 reports when it finds
	// a write the original native method would have rejected as
	// non-configurable but the replacement field would silently accept.
	forbiddenPrivateWrites map[ast.Ref]forbiddenPrivateWrite
}

type forbiddenPrivateWrite struct {
	name    string
	declLoc ast.Loc
}
