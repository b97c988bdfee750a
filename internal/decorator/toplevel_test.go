package decorator

import (
	"testing"

	"github.com/declower/declower/internal/ast"
)

func resolverFor(names map[ast.Ref]string) func(ast.Ref) string {
	return func(ref ast.Ref) string { return names[ref] }
}

func TestInferNameFromDecl(t *testing.T) {
	ref := ast.Ref{InnerIndex: 1}
	resolve := resolverFor(map[ast.Ref]string{ref: "Widget"})
	decl := ast.Decl{Binding: ast.IdBinding(ast.Loc{}, ref)}

	if got := InferNameFromDecl(decl, resolve); got != "Widget" {
		t.Fatalf("InferNameFromDecl() = %q, want %q", got, "Widget")
	}
}

func TestInferNameFromAssignment(t *testing.T) {
	ref := ast.Ref{InnerIndex: 2}
	resolve := resolverFor(map[ast.Ref]string{ref: "Widget"})

	tests := []struct {
		name string
		op   ast.BinOp
		want string
	}{
		{"plain assign", ast.BinOpAssign, "Widget"},
		{"logical and assign", ast.BinOpLogicalAndAssign, "Widget"},
		{"logical or assign", ast.BinOpLogicalOrAssign, "Widget"},
		{"nullish assign", ast.BinOpNullishAssign, "Widget"},
		{"comma is not a named-evaluation context", ast.BinOpComma, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ast.Expr{Data: &ast.EBinary{Op: tt.op, Left: ast.Ident(ast.Loc{}, ref), Right: ast.Num(ast.Loc{}, 1)}}
			if got := InferNameFromAssignment(e, resolve); got != tt.want {
				t.Errorf("InferNameFromAssignment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInferNameFromAssignmentRejectsNonIdentifierTarget(t *testing.T) {
	e := ast.Assign(ast.Loc{}, ast.Dot(ast.Loc{}, ast.This(ast.Loc{}), "x"), ast.Num(ast.Loc{}, 1))
	if got := InferNameFromAssignment(e, resolverFor(nil)); got != "" {
		t.Fatalf("InferNameFromAssignment on a member-expression target = %q, want \"\"", got)
	}
}

func TestInferNameFromArgDefault(t *testing.T) {
	ref := ast.Ref{InnerIndex: 3}
	resolve := resolverFor(map[ast.Ref]string{ref: "Widget"})
	def := ast.Num(ast.Loc{}, 1)

	withDefault := ast.Arg{Binding: ast.IdBinding(ast.Loc{}, ref), Default: &def}
	if got := InferNameFromArgDefault(withDefault, resolve); got != "Widget" {
		t.Fatalf("InferNameFromArgDefault() = %q, want %q", got, "Widget")
	}

	withoutDefault := ast.Arg{Binding: ast.IdBinding(ast.Loc{}, ref)}
	if got := InferNameFromArgDefault(withoutDefault, resolve); got != "" {
		t.Fatalf("InferNameFromArgDefault with no default = %q, want \"\"", got)
	}
}

func TestInferNameFromProperty(t *testing.T) {
	ref := ast.Ref{InnerIndex: 4}
	resolve := resolverFor(map[ast.Ref]string{ref: "widget"})

	identKey := ast.Property{Key: ast.Ident(ast.Loc{}, ref)}
	if got := InferNameFromProperty(identKey, resolve); got != "widget" {
		t.Fatalf("InferNameFromProperty(identifier key) = %q, want %q", got, "widget")
	}

	stringKey := ast.Property{Key: ast.Str(ast.Loc{}, "literal")}
	if got := InferNameFromProperty(stringKey, resolve); got != "literal" {
		t.Fatalf("InferNameFromProperty(string key) = %q, want %q", got, "literal")
	}

	computedKey := ast.Property{Key: ast.Ident(ast.Loc{}, ref), IsComputed: true}
	if got := InferNameFromProperty(computedKey, resolve); got != "" {
		t.Fatalf("InferNameFromProperty(computed key) = %q, want \"\" (not modeled, see DESIGN.md)", got)
	}
}

func TestIsNameAssignOp(t *testing.T) {
	yes := []ast.BinOp{ast.BinOpAssign, ast.BinOpLogicalAndAssign, ast.BinOpLogicalOrAssign, ast.BinOpNullishAssign}
	for _, op := range yes {
		if !isNameAssignOp(op) {
			t.Errorf("isNameAssignOp(%v) = false, want true", op)
		}
	}
	if isNameAssignOp(ast.BinOpComma) || isNameAssignOp(ast.BinOpIn) {
		t.Errorf("isNameAssignOp reported a non-assignment operator as a named-evaluation context")
	}
}
