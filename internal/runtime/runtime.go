// Package runtime names the fixed set of runtime helpers the decorator
// lowering pass calls into, per spec.md §6 "Runtime helpers required".
// The pass never inlines or evaluates these — it only emits references to
// them by name, the same "addHelper" contract esbuild's parser uses for
// its own __decorate/__param legacy-TS-decorator helpers
// (internal/runtime/runtime.go, internal/js_parser/js_parser.go's
// importFromRuntime/callRuntime).
package runtime

import "github.com/declower/declower/internal/ast"

// Names of the helpers spec.md §6 requires the host to provide.
const (
	ApplyDecs       = "applyDecs"
	ApplyDecs2203   = "applyDecs2203"
	ApplyDecs2203R  = "applyDecs2203R"
	ApplyDecs2301   = "applyDecs2301"
	ApplyDecs2305   = "applyDecs2305"
	SetFunctionName = "setFunctionName"
	ToPropertyKey   = "toPropertyKey"
	Identity        = "identity"

	// SuperPropGet/SuperPropSet back the non-constantSuper path of spec.md
	// §4.5's "super references rewritten against the class-id local":
	// receiver-forwarding property access through the actual prototype
	// chain, the way esbuild's lowerSuperPropertyGet/lowerSuperPropertySet
	// emit calls to __superGet/__superSet instead of inlining the walk.
	SuperPropGet = "superPropGet"
	SuperPropSet = "superPropSet"
)

// Importer records which helpers were actually referenced while lowering
// one class, and hands back a stable ast.Ref for each — mirroring esbuild's
// parser.runtimeImports map plus importFromRuntime/callRuntime.
type Importer struct {
	newSymbol func(name string) ast.Ref
	recordUse func(ast.Ref)
	refs      map[string]ast.Ref
	order     []string
}

// NewImporter is constructed with the two scope operations it needs
// (symbol allocation and use-counting) rather than a whole scope.Manager,
// so that helper import bookkeeping stays decoupled from scope internals.
func NewImporter(newSymbol func(name string) ast.Ref, recordUse func(ast.Ref)) *Importer {
	return &Importer{newSymbol: newSymbol, recordUse: recordUse, refs: map[string]ast.Ref{}}
}

// Reference returns (creating on first use) the Ref that names helper.
func (im *Importer) Reference(loc ast.Loc, helper string) ast.Expr {
	ref, ok := im.refs[helper]
	if !ok {
		ref = im.newSymbol(helper)
		im.refs[helper] = ref
		im.order = append(im.order, helper)
	}
	im.recordUse(ref)
	return ast.Ident(loc, ref)
}

// Call builds a call expression to the named helper, the "callRuntime"
// half of the pair.
func (im *Importer) Call(loc ast.Loc, helper string, args ...ast.Expr) ast.Expr {
	return ast.Call(loc, im.Reference(loc, helper), args...)
}

// Used returns the set of helper names actually referenced, in first-use
// order — consumed by a host driver that needs to know which helpers to
// inject into the output module.
func (im *Importer) Used() []string {
	order := make([]string, len(im.order))
	copy(order, im.order)
	return order
}
