package ast

// This file is the "node factory with shape-preserving cloning and type
// predicates" that spec.md §6 treats as an external collaborator. It is
// modeled on the constructor/predicate helpers scattered through esbuild's
// internal/js_ast package (e.g. IsOptionalChain, IsSuperCall) generalized
// into a small, consistent set: one constructor per node kind, one Clone
// per node category, and the handful of Is* predicates the pass needs.

// --- constructors ------------------------------------------------------------

func Ident(loc Loc, ref Ref) Expr { return Expr{Loc: loc, Data: &EIdentifier{Ref: ref}} }

func PrivateIdent(loc Loc, ref Ref) Expr { return Expr{Loc: loc, Data: &EPrivateIdentifier{Ref: ref}} }

func Str(loc Loc, s string) Expr { return Expr{Loc: loc, Data: &EString{Value: s}} }

func Num(loc Loc, n float64) Expr { return Expr{Loc: loc, Data: &ENumber{Value: n}} }

func This(loc Loc) Expr { return Expr{Loc: loc, Data: &EThis{}} }

func Super(loc Loc) Expr { return Expr{Loc: loc, Data: &ESuper{}} }

func Undefined(loc Loc) Expr { return Expr{Loc: loc, Data: &EUndefined{}} }

func Dot(loc Loc, target Expr, name string) Expr {
	return Expr{Loc: loc, Data: &EDot{Target: target, Name: name}}
}

func Index(loc Loc, target, index Expr) Expr {
	return Expr{Loc: loc, Data: &EIndex{Target: target, Index: index}}
}

func Call(loc Loc, target Expr, args ...Expr) Expr {
	return Expr{Loc: loc, Data: &ECall{Target: target, Args: args}}
}

func New(loc Loc, target Expr, args ...Expr) Expr {
	return Expr{Loc: loc, Data: &ENew{Target: target, Args: args}}
}

func Array(loc Loc, items ...Expr) Expr { return Expr{Loc: loc, Data: &EArray{Items: items}} }

func Seq(loc Loc, exprs ...Expr) Expr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return Expr{Loc: loc, Data: &ESequence{Exprs: exprs}}
}

func Assign(loc Loc, target, value Expr) Expr {
	return Expr{Loc: loc, Data: &EBinary{Op: BinOpAssign, Left: target, Right: value}}
}

func ExprStmt(loc Loc, value Expr) Stmt { return Stmt{Loc: loc, Data: &SExpr{Value: value}} }

func ReturnStmt(loc Loc, value *Expr) Stmt { return Stmt{Loc: loc, Data: &SReturn{Value: value}} }

// IdBinding builds a simple identifier binding, used for "let x" / ctor args.
func IdBinding(loc Loc, ref Ref) Binding { return Binding{Loc: loc, Data: &BIdentifier{Ref: ref}} }

func LetDecl(loc Loc, ref Ref, value *Expr) Stmt {
	return Stmt{Loc: loc, Data: &SLocal{Kind: LocalLet, Decls: []Decl{{Binding: IdBinding(loc, ref), Value: value}}}}
}

// --- type predicates -----------------------------------------------------

func IsSuper(e Expr) bool {
	_, ok := e.Data.(*ESuper)
	return ok
}

func IsThisExpression(e Expr) bool {
	_, ok := e.Data.(*EThis)
	return ok
}

func IsPrivateIdentifier(e Expr) bool {
	_, ok := e.Data.(*EPrivateIdentifier)
	return ok
}

// IsMemberExpression reports whether e is "a.b" or "a[b]" — used by P4 to
// recognize "super.x"/"this.x" decorator expressions (spec.md §4.5).
func IsMemberExpression(e Expr) bool {
	switch e.Data.(type) {
	case *EDot, *EIndex:
		return true
	default:
		return false
	}
}

// MemberTarget returns the object half of a member expression, or a zero
// Expr if e is not one.
func MemberTarget(e Expr) (Expr, bool) {
	switch d := e.Data.(type) {
	case *EDot:
		return d.Target, true
	case *EIndex:
		return d.Target, true
	default:
		return Expr{}, false
	}
}

func IsStaticBlock(p Property) bool { return p.Kind == PropertyClassStaticBlock }

func IsClassPrivateProperty(p Property) bool {
	return p.IsPrivate && (p.Kind == PropertyField || p.Kind == PropertyAccessor)
}

func IsClassPrivateMethod(p Property) bool {
	return p.IsPrivate && (p.Kind == PropertyMethod || p.Kind == PropertyGet || p.Kind == PropertySet)
}

func IsClassDeclaration(s Stmt) bool {
	_, ok := s.Data.(*SClass)
	return ok
}

// IsAssignmentTargetExpr reports whether e is itself an expression that
// writes through one of its operands: an assignment ("=", "&&=", "||=",
// "??=") writing its Left, or an increment/decrement writing its Value.
// P6 (spec.md §4.7) uses this, then inspects that operand, to find
// forbidden writes to decorated private methods.
func IsAssignmentTargetExpr(e Expr) bool {
	switch d := e.Data.(type) {
	case *EBinary:
		return d.Op == BinOpAssign || d.Op == BinOpLogicalAndAssign || d.Op == BinOpLogicalOrAssign || d.Op == BinOpNullishAssign
	case *EUnary:
		return d.Op == UnOpPreIncDec || d.Op == UnOpPostIncDec
	default:
		return false
	}
}

// --- cloning ---------------------------------------------------------------

// CloneExpr returns a deep, independent copy of e. The decorator pass uses
// this whenever the same syntax must appear in two places in the output
// (e.g. re-emitting a class expression inside a wrapper static block per
// spec.md §4.6) — never sharing node pointers the way a naive move would,
// per spec.md §9 "cyclic reference" note: sharing is modeled by cloning an
// identifier node, not by aliasing the subtree.
func CloneExpr(e Expr) Expr {
	switch d := e.Data.(type) {
	case *EIdentifier:
		c := *d
		return Expr{Loc: e.Loc, Data: &c}
	case *EPrivateIdentifier:
		c := *d
		return Expr{Loc: e.Loc, Data: &c}
	case *ENumber:
		c := *d
		return Expr{Loc: e.Loc, Data: &c}
	case *EString:
		c := *d
		return Expr{Loc: e.Loc, Data: &c}
	case *EBoolean:
		c := *d
		return Expr{Loc: e.Loc, Data: &c}
	case *ENull:
		return Expr{Loc: e.Loc, Data: &ENull{}}
	case *EUndefined:
		return Expr{Loc: e.Loc, Data: &EUndefined{}}
	case *EThis:
		return Expr{Loc: e.Loc, Data: &EThis{}}
	case *ESuper:
		return Expr{Loc: e.Loc, Data: &ESuper{}}
	case *EMissing:
		return Expr{Loc: e.Loc, Data: &EMissing{}}
	case *EArray:
		items := make([]Expr, len(d.Items))
		for i, it := range d.Items {
			items[i] = CloneExpr(it)
		}
		return Expr{Loc: e.Loc, Data: &EArray{Items: items, HasSpread: d.HasSpread}}
	case *EObject:
		props := make([]Property, len(d.Properties))
		for i, p := range d.Properties {
			props[i] = CloneProperty(p)
		}
		return Expr{Loc: e.Loc, Data: &EObject{Properties: props}}
	case *ESpread:
		v := CloneExpr(d.Value)
		return Expr{Loc: e.Loc, Data: &ESpread{Value: v}}
	case *EDot:
		return Expr{Loc: e.Loc, Data: &EDot{Target: CloneExpr(d.Target), Name: d.Name}}
	case *EIndex:
		return Expr{Loc: e.Loc, Data: &EIndex{Target: CloneExpr(d.Target), Index: CloneExpr(d.Index)}}
	case *ECall:
		args := make([]Expr, len(d.Args))
		for i, a := range d.Args {
			args[i] = CloneExpr(a)
		}
		return Expr{Loc: e.Loc, Data: &ECall{Target: CloneExpr(d.Target), Args: args, OptionalChain: d.OptionalChain}}
	case *ENew:
		args := make([]Expr, len(d.Args))
		for i, a := range d.Args {
			args[i] = CloneExpr(a)
		}
		return Expr{Loc: e.Loc, Data: &ENew{Target: CloneExpr(d.Target), Args: args}}
	case *EFunction:
		return Expr{Loc: e.Loc, Data: &EFunction{Fn: CloneFn(d.Fn)}}
	case *EArrow:
		args := make([]Arg, len(d.Args))
		copy(args, d.Args)
		body := CloneStmts(d.Body)
		return Expr{Loc: e.Loc, Data: &EArrow{Args: args, Body: body, PreferExpr: d.PreferExpr}}
	case *EClass:
		return Expr{Loc: e.Loc, Data: &EClass{Class: CloneClass(d.Class)}}
	case *EBinary:
		return Expr{Loc: e.Loc, Data: &EBinary{Op: d.Op, Left: CloneExpr(d.Left), Right: CloneExpr(d.Right)}}
	case *EUnary:
		return Expr{Loc: e.Loc, Data: &EUnary{Op: d.Op, Value: CloneExpr(d.Value)}}
	case *ESequence:
		exprs := make([]Expr, len(d.Exprs))
		for i, x := range d.Exprs {
			exprs[i] = CloneExpr(x)
		}
		return Expr{Loc: e.Loc, Data: &ESequence{Exprs: exprs}}
	default:
		panic("ast: CloneExpr: unhandled expression kind")
	}
}

func CloneProperty(p Property) Property {
	c := p
	c.Key = CloneExpr(p.Key)
	if p.Value != nil {
		v := CloneExpr(*p.Value)
		c.Value = &v
	}
	if p.Initializer != nil {
		v := CloneExpr(*p.Initializer)
		c.Initializer = &v
	}
	if p.ClassStaticBlock != nil {
		c.ClassStaticBlock = &ClassStaticBlock{Stmts: CloneStmts(p.ClassStaticBlock.Stmts)}
	}
	c.Decorators = make([]Decorator, len(p.Decorators))
	for i, d := range p.Decorators {
		c.Decorators[i] = Decorator{Value: CloneExpr(d.Value)}
		if d.ThisArg != nil {
			v := CloneExpr(*d.ThisArg)
			c.Decorators[i].ThisArg = &v
		}
	}
	return c
}

func CloneClass(cl Class) Class {
	c := cl
	if cl.Extends != nil {
		v := CloneExpr(*cl.Extends)
		c.Extends = &v
	}
	c.Properties = make([]Property, len(cl.Properties))
	for i, p := range cl.Properties {
		c.Properties[i] = CloneProperty(p)
	}
	c.Decorators = make([]Decorator, len(cl.Decorators))
	copy(c.Decorators, cl.Decorators)
	return c
}

func CloneFn(fn Fn) Fn {
	c := fn
	c.Args = make([]Arg, len(fn.Args))
	copy(c.Args, fn.Args)
	c.Body = CloneStmts(fn.Body)
	return c
}

func CloneStmt(s Stmt) Stmt {
	switch d := s.Data.(type) {
	case *SExpr:
		return Stmt{Loc: s.Loc, Data: &SExpr{Value: CloneExpr(d.Value)}}
	case *SReturn:
		if d.Value == nil {
			return Stmt{Loc: s.Loc, Data: &SReturn{}}
		}
		v := CloneExpr(*d.Value)
		return Stmt{Loc: s.Loc, Data: &SReturn{Value: &v}}
	case *SBlock:
		return Stmt{Loc: s.Loc, Data: &SBlock{Stmts: CloneStmts(d.Stmts)}}
	case *SLocal:
		decls := make([]Decl, len(d.Decls))
		for i, decl := range d.Decls {
			decls[i] = decl
			if decl.Value != nil {
				v := CloneExpr(*decl.Value)
				decls[i].Value = &v
			}
		}
		return Stmt{Loc: s.Loc, Data: &SLocal{Kind: d.Kind, Decls: decls}}
	case *SClass:
		return Stmt{Loc: s.Loc, Data: &SClass{Class: CloneClass(d.Class), IsExport: d.IsExport}}
	case *SIf:
		no := (*Stmt)(nil)
		if d.No != nil {
			n := CloneStmt(*d.No)
			no = &n
		}
		return Stmt{Loc: s.Loc, Data: &SIf{Test: CloneExpr(d.Test), Yes: CloneStmt(d.Yes), No: no}}
	case *SExportDefault:
		return Stmt{Loc: s.Loc, Data: &SExportDefault{DefaultName: d.DefaultName, Value: CloneStmt(d.Value)}}
	case *SExportClause:
		items := make([]ExportItem, len(d.Items))
		copy(items, d.Items)
		return Stmt{Loc: s.Loc, Data: &SExportClause{Items: items}}
	default:
		panic("ast: CloneStmt: unhandled statement kind")
	}
}

func CloneStmts(stmts []Stmt) []Stmt {
	out := make([]Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = CloneStmt(s)
	}
	return out
}
