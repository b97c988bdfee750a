// Package ast defines the tagged-union expression/statement tree that the
// decorator lowering pass reads and rewrites, plus the symbol/scope types
// threaded through it. It plays the role that spec.md §6 calls "the AST
// type system and constructor API" and "the node factory with shape-
// preserving cloning and type predicates" — modeled directly on esbuild's
// internal/js_ast package, scaled down to the node kinds a decorator
// lowering needs (it is not a general-purpose JS/TS AST).
package ast

import "github.com/declower/declower/internal/logger"

type Loc = logger.Loc

// Ref is a pointer into a Symbols table: a single index, so fresh symbols
// created mid-pass can be appended without invalidating previously issued
// refs.
type Ref struct {
	InnerIndex uint32
}

var InvalidRef = Ref{InnerIndex: ^uint32(0)}

func (r Ref) IsValid() bool { return r != InvalidRef }

type SymbolKind uint8

const (
	SymbolOther SymbolKind = iota
	SymbolHoisted
	SymbolConst
	SymbolClass

	SymbolPrivateField
	SymbolPrivateMethod
	SymbolPrivateGet
	SymbolPrivateSet
	SymbolPrivateGetSetPair
	SymbolPrivateStaticField
	SymbolPrivateStaticMethod
	SymbolPrivateStaticGet
	SymbolPrivateStaticSet
	SymbolPrivateStaticGetSetPair
)

func (k SymbolKind) IsPrivate() bool {
	return k >= SymbolPrivateField && k <= SymbolPrivateStaticGetSetPair
}

// Symbol is one entry in the pass's flat symbol table. Unlike esbuild's
// full Symbol (which also tracks minification slots and cross-file link
// state) this only keeps what a single-class lowering needs.
type Symbol struct {
	OriginalName     string
	Kind             SymbolKind
	Link             Ref
	UseCountEstimate uint32
	MustNotBeRenamed bool

	// Constant is set by scope analysis (spec.md §6 "isStatic") when this
	// symbol's value is known not to change between program start and class
	// evaluation — the "scope-constant" predicate of spec.md §4.5.
	Constant bool
}

type ScopeKind int

const (
	ScopeBlock ScopeKind = iota
	ScopeClassName
	ScopeClassBody
	ScopeFunctionArgs
	ScopeFunctionBody
	ScopeEntry
)

func (k ScopeKind) StopsHoisting() bool { return k >= ScopeEntry }

type ScopeMember struct {
	Ref Ref
	Loc Loc
}

// Scope is a lexical scope node. The decorator pass only ever allocates
// fresh identifiers and renames existing ones through the scope.Manager
// (internal/scope) that owns a tree of these — it never walks Members
// itself, per spec.md §9 "Scope and renaming".
type Scope struct {
	Kind      ScopeKind
	Parent    *Scope
	Children  []*Scope
	Members   map[string]ScopeMember
	Generated []Ref
}

func NewScope(kind ScopeKind, parent *Scope) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Members: map[string]ScopeMember{}}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}
