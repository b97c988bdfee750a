package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/scope"
)

// Fixture is the JSON shape `declower run` accepts: a class described at
// the level of detail the decorator pass actually needs (which elements
// exist, which carry decorators, their static/private bits), rather than
// full JS source text — parsing real source is explicitly out of scope
// (spec.md §1 Non-goals), so a fixture plays the role a parser's output
// would normally play at this boundary.
type Fixture struct {
	ClassName  string           `json:"class_name,omitempty"`
	Extends    string           `json:"extends,omitempty"`
	Decorators []string         `json:"decorators,omitempty"`
	Elements   []FixtureElement `json:"elements"`
	Export     bool             `json:"export,omitempty"`
	Default    bool             `json:"default,omitempty"`
}

// FixtureElement describes one class body element. Kind is one of
// "field", "method", "getter", "setter", "accessor".
type FixtureElement struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Private    bool     `json:"private,omitempty"`
	Static     bool     `json:"static,omitempty"`
	Decorators []string `json:"decorators,omitempty"`
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// builder turns a Fixture into an *ast.Class, allocating every identifier
// it needs through a scope.Manager the caller owns — this manager models
// the enclosing program's own symbol table (spec.md §9 "Scope and
// renaming" treats it as an external capability), distinct from the
// scope.Manager Plugin.LowerClass allocates internally for the class's own
// locals.
type builder struct {
	mgr   *scope.Manager
	names map[string]ast.Ref
}

func newBuilder(mgr *scope.Manager) *builder {
	return &builder{mgr: mgr, names: map[string]ast.Ref{}}
}

func (b *builder) freeVar(kind ast.SymbolKind, name string) ast.Ref {
	if ref, ok := b.names[name]; ok {
		return ref
	}
	ref := b.mgr.NewSymbol(kind, name)
	b.names[name] = ref
	return ref
}

func (b *builder) decoratorExprs(names []string) []ast.Decorator {
	decs := make([]ast.Decorator, len(names))
	for i, n := range names {
		decs[i] = ast.Decorator{Value: ast.Ident(ast.Loc{}, b.freeVar(ast.SymbolOther, n))}
	}
	return decs
}

func (b *builder) build(fx *Fixture) (*ast.Class, error) {
	class := &ast.Class{Decorators: b.decoratorExprs(fx.Decorators)}

	if fx.ClassName != "" {
		ref := b.mgr.NewSymbol(ast.SymbolClass, fx.ClassName)
		class.Name = &ref
	}
	if fx.Extends != "" {
		ext := ast.Ident(ast.Loc{}, b.freeVar(ast.SymbolOther, fx.Extends))
		class.Extends = &ext
	}

	for _, el := range fx.Elements {
		prop, err := b.buildElement(el)
		if err != nil {
			return nil, err
		}
		class.Properties = append(class.Properties, prop)
	}
	return class, nil
}

func (b *builder) buildElement(el FixtureElement) (ast.Property, error) {
	prop := ast.Property{
		IsStatic:   el.Static,
		IsPrivate:  el.Private,
		Decorators: b.decoratorExprs(el.Decorators),
	}

	if el.Private {
		prop.Key = ast.PrivateIdent(ast.Loc{}, b.mgr.NewSymbol(privateSymbolKind(el.Kind, el.Static), "#"+el.Name))
	} else {
		prop.Key = ast.Str(ast.Loc{}, el.Name)
	}
	if el.Name == "constructor" && !el.Private {
		prop.IsConstructor = true
	}

	switch el.Kind {
	case "field":
		prop.Kind = ast.PropertyField
	case "accessor":
		prop.Kind = ast.PropertyAccessor
	case "method":
		prop.Kind = ast.PropertyMethod
		fn := ast.Expr{Data: &ast.EFunction{Fn: ast.Fn{Body: nil}}}
		prop.Value = &fn
	case "getter":
		prop.Kind = ast.PropertyGet
		fn := ast.Expr{Data: &ast.EFunction{Fn: ast.Fn{Body: nil}}}
		prop.Value = &fn
	case "setter":
		prop.Kind = ast.PropertySet
		valueRef := b.mgr.GenerateUID(ast.SymbolOther, "v")
		fn := ast.Expr{Data: &ast.EFunction{Fn: ast.Fn{Args: []ast.Arg{{Binding: ast.IdBinding(ast.Loc{}, valueRef)}}}}}
		prop.Value = &fn
	default:
		return ast.Property{}, fmt.Errorf("fixture: unknown element kind %q", el.Kind)
	}
	return prop, nil
}

func privateSymbolKind(kind string, static bool) ast.SymbolKind {
	switch {
	case kind == "field" || kind == "accessor":
		if static {
			return ast.SymbolPrivateStaticField
		}
		return ast.SymbolPrivateField
	case kind == "getter":
		if static {
			return ast.SymbolPrivateStaticGet
		}
		return ast.SymbolPrivateGet
	case kind == "setter":
		if static {
			return ast.SymbolPrivateStaticSet
		}
		return ast.SymbolPrivateSet
	default:
		if static {
			return ast.SymbolPrivateStaticMethod
		}
		return ast.SymbolPrivateMethod
	}
}
