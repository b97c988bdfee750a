// Package traverse provides the small amount of generic tree-walking the
// decorator pass needs on top of the external "traversal driver" named in
// spec.md §1/§6 (parent/child navigation, replacement, and a visited-node
// guard). A real host compiler owns the full traversal; this package
// supplies the pass's own instance-local Visited set (spec.md §9 "Global
// state") and a couple of read-only walkers used by P6.
package traverse

import "github.com/declower/declower/internal/ast"

// Visited guards against re-processing a class the pass already rewrote
// (spec.md §4.1 "A Visited set guards against re-visiting after
// replacement"). It is an ordinary instance field, never a package-level
// variable, so two Plugin instances never interfere with each other.
type Visited struct {
	seen map[*ast.Class]bool
}

func NewVisited() *Visited { return &Visited{seen: map[*ast.Class]bool{}} }

func (v *Visited) Mark(c *ast.Class) { v.seen[c] = true }

func (v *Visited) IsVisited(c *ast.Class) bool { return v.seen[c] }

// WalkStmts calls fn for every statement reachable from stmts, including
// nested blocks, in source order. It does not descend into nested function
// or class bodies — those introduce their own scope and are walked
// separately by whoever needs to recurse into them (P6 does, explicitly).
func WalkStmts(stmts []ast.Stmt, fn func(ast.Stmt)) {
	for _, s := range stmts {
		fn(s)
		if block, ok := s.Data.(*ast.SBlock); ok {
			WalkStmts(block.Stmts, fn)
		}
		if ifs, ok := s.Data.(*ast.SIf); ok {
			WalkStmts([]ast.Stmt{ifs.Yes}, fn)
			if ifs.No != nil {
				WalkStmts([]ast.Stmt{*ifs.No}, fn)
			}
		}
	}
}

// WalkExprs calls fn for e and, recursively, every sub-expression of e.
// fn is called bottom-up-unaware (parent first) so callers that need to
// know "is this a write target" can inspect e itself before recursing into
// its operands. It does not descend into function, arrow or class
// expressions, whose bodies are a nested scope.
func WalkExprs(e ast.Expr, fn func(ast.Expr)) {
	fn(e)
	switch d := e.Data.(type) {
	case *ast.EArray:
		for _, it := range d.Items {
			WalkExprs(it, fn)
		}
	case *ast.EObject:
		for _, p := range d.Properties {
			WalkExprs(p.Key, fn)
			if p.Value != nil {
				WalkExprs(*p.Value, fn)
			}
			if p.Initializer != nil {
				WalkExprs(*p.Initializer, fn)
			}
		}
	case *ast.ESpread:
		WalkExprs(d.Value, fn)
	case *ast.EDot:
		WalkExprs(d.Target, fn)
	case *ast.EIndex:
		WalkExprs(d.Target, fn)
		WalkExprs(d.Index, fn)
	case *ast.ECall:
		WalkExprs(d.Target, fn)
		for _, a := range d.Args {
			WalkExprs(a, fn)
		}
	case *ast.ENew:
		WalkExprs(d.Target, fn)
		for _, a := range d.Args {
			WalkExprs(a, fn)
		}
	case *ast.EBinary:
		WalkExprs(d.Left, fn)
		WalkExprs(d.Right, fn)
	case *ast.EUnary:
		WalkExprs(d.Value, fn)
	case *ast.ESequence:
		for _, x := range d.Exprs {
			WalkExprs(x, fn)
		}
	}
}
