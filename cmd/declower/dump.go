package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/scope"
)

// dumper renders the lowered statement tree as indented pseudo-source.
// Real JS/TS codegen is out of scope (spec.md §1 Non-goals), so this
// purposely stays a structural dump rather than a printer that could
// round-trip — enough to inspect what the pass produced.
//
// Resolving a Ref needs two tables, not one: lowered is the table
// returned alongside the output (Result.Scope) and owns everything the
// pass itself introduced or rebound — the class's own id property,
// classIdLocal, runtime-helper imports, every generated local. outer is
// this CLI's own table, built while reading the fixture, and is the only
// one that can resolve a Ref the pass merely copied through unchanged
// (a decorator expression's free variables, a computed key). The two
// were allocated independently and both number their own symbols from
// zero, so an index valid in one is not proof it doesn't also happen to
// be valid (and wrong) in the other; a real host driver avoids this by
// merging every class's Result.Scope into one whole-program table as it
// goes (see that field's doc comment) — this demo dumper instead just
// tries lowered first and falls back to outer, which is right for every
// Ref this pass actually owns and only risks a wrong name for the rarer
// copied-through case.
type dumper struct {
	lowered *scope.Manager
	outer   *scope.Manager
	indent  int
	out     strings.Builder
}

func dumpStmts(stmts []ast.Stmt, lowered, outer *scope.Manager) string {
	d := &dumper{lowered: lowered, outer: outer}
	for _, s := range stmts {
		d.stmt(s)
	}
	return d.out.String()
}

func (d *dumper) line(format string, args ...interface{}) {
	d.out.WriteString(strings.Repeat("  ", d.indent))
	fmt.Fprintf(&d.out, format, args...)
	d.out.WriteString("\n")
}

func (d *dumper) name(ref ast.Ref) string {
	if sym := lookupSymbol(d.lowered, ref); sym != nil {
		return sym.OriginalName
	}
	if sym := lookupSymbol(d.outer, ref); sym != nil {
		return sym.OriginalName
	}
	return fmt.Sprintf("ref#%d", ref.InnerIndex)
}

func lookupSymbol(mgr *scope.Manager, ref ast.Ref) *ast.Symbol {
	if mgr == nil || int(ref.InnerIndex) >= len(mgr.Symbols) {
		return nil
	}
	return mgr.Symbol(ref)
}

func (d *dumper) stmt(s ast.Stmt) {
	switch v := s.Data.(type) {
	case *ast.SLocal:
		kind := [...]string{"var", "let", "const"}[v.Kind]
		for _, decl := range v.Decls {
			name := d.bindingName(decl.Binding)
			if decl.Value == nil {
				d.line("%s %s;", kind, name)
			} else {
				d.line("%s %s = %s;", kind, name, d.expr(*decl.Value))
			}
		}
	case *ast.SExpr:
		d.line("%s;", d.expr(v.Value))
	case *ast.SReturn:
		if v.Value == nil {
			d.line("return;")
		} else {
			d.line("return %s;", d.expr(*v.Value))
		}
	case *ast.SClass:
		prefix := ""
		if v.IsExport {
			prefix = "export "
		}
		d.line("%sclass %s", prefix, d.classHeader(v.Class))
	case *ast.SBlock:
		d.line("{")
		d.indent++
		for _, inner := range v.Stmts {
			d.stmt(inner)
		}
		d.indent--
		d.line("}")
	case *ast.SIf:
		d.line("if (%s)", d.expr(v.Test))
		d.indent++
		d.stmt(v.Yes)
		d.indent--
		if v.No != nil {
			d.line("else")
			d.indent++
			d.stmt(*v.No)
			d.indent--
		}
	case *ast.SExportDefault:
		d.out.WriteString(strings.Repeat("  ", d.indent) + "export default ")
		prev := d.indent
		d.indent = 0
		d.stmt(v.Value)
		d.indent = prev
	case *ast.SExportClause:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = fmt.Sprintf("%s as %s", d.name(it.Name), it.Alias)
		}
		d.line("export { %s };", strings.Join(items, ", "))
	default:
		d.line("<%T>", v)
	}
}

func (d *dumper) bindingName(b ast.Binding) string {
	if id, ok := b.Data.(*ast.BIdentifier); ok {
		return d.name(id.Ref)
	}
	return "<binding>"
}

func (d *dumper) classHeader(c ast.Class) string {
	var sb strings.Builder
	if c.Name != nil {
		sb.WriteString(d.name(*c.Name))
		sb.WriteString(" ")
	}
	if c.Extends != nil {
		sb.WriteString("extends ")
		sb.WriteString(d.expr(*c.Extends))
		sb.WriteString(" ")
	}
	sb.WriteString(fmt.Sprintf("{ /* %d properties */ }", len(c.Properties)))
	return sb.String()
}

func (d *dumper) expr(e ast.Expr) string {
	switch v := e.Data.(type) {
	case *ast.EIdentifier:
		return d.name(v.Ref)
	case *ast.EPrivateIdentifier:
		return d.name(v.Ref)
	case *ast.EString:
		return strconv.Quote(v.Value)
	case *ast.ENumber:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *ast.EBoolean:
		return strconv.FormatBool(v.Value)
	case *ast.ENull:
		return "null"
	case *ast.EUndefined:
		return "void 0"
	case *ast.EThis:
		return "this"
	case *ast.ESuper:
		return "super"
	case *ast.EDot:
		return fmt.Sprintf("%s.%s", d.expr(v.Target), v.Name)
	case *ast.EIndex:
		return fmt.Sprintf("%s[%s]", d.expr(v.Target), d.expr(v.Index))
	case *ast.ECall:
		return fmt.Sprintf("%s(%s)", d.expr(v.Target), d.exprList(v.Args))
	case *ast.ENew:
		return fmt.Sprintf("new %s(%s)", d.expr(v.Target), d.exprList(v.Args))
	case *ast.EArray:
		return fmt.Sprintf("[%s]", d.exprList(v.Items))
	case *ast.ESequence:
		return fmt.Sprintf("(%s)", d.exprList(v.Exprs))
	case *ast.EBinary:
		return fmt.Sprintf("%s %s %s", d.expr(v.Left), binOpText(v.Op), d.expr(v.Right))
	case *ast.EUnary:
		return fmt.Sprintf("%s%s", unOpText(v.Op), d.expr(v.Value))
	case *ast.EClass:
		return "class " + d.classHeader(v.Class)
	case *ast.EFunction:
		return "function(...) { ... }"
	case *ast.EArrow:
		return "(...) => { ... }"
	case *ast.ESpread:
		return "..." + d.expr(v.Value)
	case *ast.EMissing:
		return ""
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

func (d *dumper) exprList(items []ast.Expr) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = d.expr(it)
	}
	return strings.Join(parts, ", ")
}

func binOpText(op ast.BinOp) string {
	switch op {
	case ast.BinOpAssign:
		return "="
	case ast.BinOpLogicalAndAssign:
		return "&&="
	case ast.BinOpLogicalOrAssign:
		return "||="
	case ast.BinOpNullishAssign:
		return "??="
	case ast.BinOpIn:
		return "in"
	default:
		return "<binop>"
	}
}

func unOpText(op ast.UnOp) string {
	switch op {
	case ast.UnOpPreIncDec, ast.UnOpPostIncDec:
		return "++"
	default:
		return "<unop>"
	}
}
