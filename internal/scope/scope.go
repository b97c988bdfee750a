// Package scope implements the "Scope interface consumed" external
// contract of spec.md §6: fresh-identifier allocation, renaming, purity
// testing, and memoization-worthiness testing, plus the crawl() resync the
// pass calls after mutating a class's bindings.
//
// It is modeled on the scope/symbol methods scattered across esbuild's
// internal/js_parser/js_parser.go (newSymbol, generateTempRef,
// declareSymbol, mergeSymbols) and the Scope/Symbol data it operates on
// (internal/js_ast). Here those methods are lifted out from the parser
// into a standalone Manager so the decorator pass can depend on the
// *capability* without depending on a parser.
package scope

import (
	"fmt"

	"github.com/declower/declower/internal/ast"
)

// Manager owns the symbol table and scope tree for one class being
// lowered. It is created fresh per Plugin.LowerClass call — per spec.md §5
// there is no cross-invocation mutable state.
type Manager struct {
	Symbols []ast.Symbol
	Root    *ast.Scope
	Current *ast.Scope

	// ToDeclare accumulates refs that need a hoisted "let" declaration in
	// the enclosing block, the way esbuild's tempRefsToDeclare does for
	// generateTempRef(tempRefNeedsDeclare, ...).
	ToDeclare []ast.Ref

	used map[string]bool
}

func NewManager() *Manager {
	root := ast.NewScope(ast.ScopeEntry, nil)
	return &Manager{Root: root, Current: root, used: map[string]bool{}}
}

// NewSymbol registers a symbol without generating a fresh name, mirroring
// esbuild's parser.newSymbol — used when the caller already has a unique
// source name (e.g. binding the original class name during P1).
func (m *Manager) NewSymbol(kind ast.SymbolKind, name string) ast.Ref {
	ref := ast.Ref{InnerIndex: uint32(len(m.Symbols))}
	m.Symbols = append(m.Symbols, ast.Symbol{Kind: kind, OriginalName: name, Link: ast.InvalidRef})
	m.used[name] = true
	return ref
}

func (m *Manager) Symbol(ref ast.Ref) *ast.Symbol { return &m.Symbols[m.resolve(ref).InnerIndex] }

func (m *Manager) resolve(ref ast.Ref) ast.Ref {
	for {
		link := m.Symbols[ref.InnerIndex].Link
		if !link.IsValid() || link == ref {
			return ref
		}
		ref = link
	}
}

func (m *Manager) uniqueName(hint string) string {
	if hint == "" {
		hint = "_"
	}
	if !m.used[hint] {
		return hint
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", hint, i)
		if !m.used[candidate] {
			return candidate
		}
	}
}

// GenerateUID allocates a fresh identifier safe in the current scope,
// per spec.md §6 "generateUidIdentifier(hint)". It is NOT automatically
// declared; the caller is responsible for introducing a binding (e.g. a
// function parameter, or a destructuring target).
func (m *Manager) GenerateUID(kind ast.SymbolKind, hint string) ast.Ref {
	name := m.uniqueName(hint)
	ref := m.NewSymbol(kind, name)
	m.Current.Generated = append(m.Current.Generated, ref)
	return ref
}

// GenerateDeclaredUID mirrors spec.md §6 "generateDeclaredUidIdentifier",
// which "registers a var-like binding" — the pass uses this for locals it
// will reference before any explicit declaration statement exists yet.
func (m *Manager) GenerateDeclaredUID(kind ast.SymbolKind, hint string) ast.Ref {
	ref := m.GenerateUID(kind, hint)
	m.ToDeclare = append(m.ToDeclare, ref)
	return ref
}

// Rename points `from` at `to`, matching esbuild's mergeSymbols: any
// existing reference to `from` now resolves through `to` via Symbol().
func (m *Manager) Rename(from, to ast.Ref) {
	m.Symbols[from.InnerIndex].Link = to
}

// PushScope / PopScope track nested scopes (class body, method bodies)
// during the single-pass walk P1-P6 perform; most of the pass only needs
// Current to know where GenerateUID should anchor new Generated entries.
func (m *Manager) PushScope(kind ast.SymbolKind, sk ast.ScopeKind) {
	m.Current = ast.NewScope(sk, m.Current)
}

func (m *Manager) PopScope() {
	if m.Current.Parent != nil {
		m.Current = m.Current.Parent
	}
}

// IsConstant implements spec.md §6 "isStatic(expr)": true when the scope
// analysis can prove the expression is "scope-constant" per spec.md §4.5
// — no observable effect, and bound to nothing that can change before
// class evaluation.
//
// An EIdentifier's Ref may name a free variable bound outside the class
// entirely (e.g. a decorator expression referencing an import) rather
// than anything this Manager itself allocated — this Manager only ever
// sees one class's own local scope, per spec.md §5. Such a ref is out of
// range for m.Symbols, so it is treated the same as any other expression
// this analysis can't prove constant: conservatively false.
func (m *Manager) IsConstant(e ast.Expr) bool {
	switch d := e.Data.(type) {
	case *ast.ENumber, *ast.EString, *ast.EBoolean, *ast.ENull, *ast.EUndefined, *ast.EThis:
		return true
	case *ast.EIdentifier:
		if int(d.Ref.InnerIndex) >= len(m.Symbols) {
			return false
		}
		return m.Symbol(d.Ref).Constant
	default:
		return false
	}
}

// MaybeGenerateMemoised mirrors spec.md §6
// "maybeGenerateMemoised(expr) — returns an id if memoization would be
// beneficial". It returns nil when the expression is already
// scope-constant, since re-evaluating it twice is indistinguishable from
// evaluating it once.
func (m *Manager) MaybeGenerateMemoised(kind ast.SymbolKind, e ast.Expr, hint string) *ast.Ref {
	if m.IsConstant(e) {
		return nil
	}
	ref := m.GenerateUID(kind, hint)
	return &ref
}

// Crawl re-synchronizes the manager's name-collision table with the
// current symbol set, per spec.md §6 "scope.crawl()" — called once per
// class after all renames/allocations for that class are final.
func (m *Manager) Crawl() {
	used := make(map[string]bool, len(m.Symbols))
	for i, sym := range m.Symbols {
		ref := ast.Ref{InnerIndex: uint32(i)}
		if m.resolve(ref) != ref {
			continue // superseded by a rename; its name is no longer live
		}
		used[sym.OriginalName] = true
	}
	m.used = used
}
