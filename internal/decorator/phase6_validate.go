package decorator

import (
	"fmt"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/logger"
	"github.com/declower/declower/internal/traverse"
)

// phase6Validate implements spec.md §4.7 (P6): a decorated private method
// is moved out into a plain private field by P4 (spec.md §4.5), which
// loses the non-configurability a native private method has — a write
// that a correctly-typechecked original program could never have
// performed without throwing. P6 scans the finished body for exactly that
// write and turns it into a fatal diagnostic instead of silently changing
// behavior.
func phase6Validate(l *lowering, class *ast.Class) *FatalError {
	if len(l.state.forbiddenPrivateWrites) == 0 {
		return nil
	}

	check := func(e ast.Expr) {
		var target ast.Expr
		switch d := e.Data.(type) {
		case *ast.EBinary:
			if !ast.IsAssignmentTargetExpr(e) {
				return
			}
			target = d.Left
		case *ast.EUnary:
			if !ast.IsAssignmentTargetExpr(e) {
				return
			}
			target = d.Value
		default:
			return
		}

		idx, ok := target.Data.(*ast.EIndex)
		if !ok {
			return
		}
		priv, ok := idx.Index.Data.(*ast.EPrivateIdentifier)
		if !ok {
			return
		}
		decl, forbidden := l.state.forbiddenPrivateWrites[priv.Ref]
		if !forbidden {
			return
		}
		l.log.AddErrorWithNotes(l.source, e.Loc, fmt.Sprintf(
			"cannot assign to %s because it is a decorated private method and is not writable", decl.name),
			logger.Note{Text: "the decorated method is declared here", Location: l.source.LocationForLoc(decl.declLoc)})
	}

	for _, p := range class.Properties {
		switch {
		case p.ClassStaticBlock != nil:
			walkStmtsDeep(p.ClassStaticBlock.Stmts, check)
		case p.Value != nil:
			if fn, ok := (*p.Value).Data.(*ast.EFunction); ok {
				walkStmtsDeep(fn.Fn.Body, check)
			}
		case p.Initializer != nil:
			walkExprDeep(*p.Initializer, check)
		}
	}

	if !l.log.HasErrors() {
		return nil
	}
	return &FatalError{Msgs: l.log.Msgs()}
}

// walkExprDeep wraps traverse.WalkExprs to also descend into the body of
// any function/arrow expression it finds, since traverse.WalkExprs itself
// stops at the boundary of a nested scope (per its own doc comment).
func walkExprDeep(e ast.Expr, check func(ast.Expr)) {
	traverse.WalkExprs(e, func(inner ast.Expr) {
		check(inner)
		switch d := inner.Data.(type) {
		case *ast.EFunction:
			walkStmtsDeep(d.Fn.Body, check)
		case *ast.EArrow:
			walkStmtsDeep(d.Body, check)
		}
	})
}

func walkStmtsDeep(stmts []ast.Stmt, check func(ast.Expr)) {
	traverse.WalkStmts(stmts, func(s ast.Stmt) {
		for _, e := range stmtExprs(s) {
			walkExprDeep(e, check)
		}
	})
}

func stmtExprs(s ast.Stmt) []ast.Expr {
	switch d := s.Data.(type) {
	case *ast.SExpr:
		return []ast.Expr{d.Value}
	case *ast.SReturn:
		if d.Value != nil {
			return []ast.Expr{*d.Value}
		}
	case *ast.SLocal:
		var out []ast.Expr
		for _, decl := range d.Decls {
			if decl.Value != nil {
				out = append(out, *decl.Value)
			}
		}
		return out
	case *ast.SIf:
		return []ast.Expr{d.Test}
	}
	return nil
}
