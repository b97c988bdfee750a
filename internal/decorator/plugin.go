package decorator

import (
	"fmt"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/compat"
	"github.com/declower/declower/internal/logger"
	"github.com/declower/declower/internal/scope"
	"github.com/declower/declower/internal/telemetry"
	"github.com/declower/declower/internal/traverse"
)

// Options configures one Plugin instance, per spec.md §6 "Plugin entry".
type Options struct {
	// Version selects which of the four decorator proposal revisions to
	// emit.
	Version string

	// HostVersion is the surrounding compiler's own version, checked
	// against the version's minimum requirement (spec.md §6).
	HostVersion compat.HostVersion

	// ConstantSuper mirrors spec.md §6's "assumption flag `constantSuper`
	// (defaulting from the deprecated `loose` option)". When true, `super`
	// references inside an extracted private method body (spec.md §4.5)
	// are rewritten against a directly memoized superclass reference
	// instead of always going through the runtime's brand-checked path.
	ConstantSuper bool

	// Loose is the deprecated predecessor of ConstantSuper (spec.md §9
	// "Open questions"): "assumption wins" — Loose only supplies a default
	// for ConstantSuper when the caller hasn't set it explicitly.
	Loose bool
}

// ConfigError is a spec.md §7.2 "Configuration error": reported once at
// plugin construction, never mid-pass.
type ConfigError struct{ Text string }

func (e *ConfigError) Error() string { return e.Text }

// Plugin is the spec.md §6 "Plugin entry" external interface: constructed
// once per host configuration, then invoked once per decorated class.
type Plugin struct {
	version       compat.Version
	policy        compat.Policy
	constantSuper bool
	visited       *traverse.Visited
	metrics       *telemetry.Metrics
}

// New constructs a Plugin, validating the version string and the host
// version requirement up front (spec.md §6/§7.2). It never returns a
// usable Plugin alongside a non-nil error.
func New(opts Options) (*Plugin, error) {
	version, err := compat.ParseVersion(opts.Version)
	if err != nil {
		return nil, &ConfigError{Text: err.Error()}
	}

	min := version.MinimumHostVersion()
	if !opts.HostVersion.AtLeast(min) {
		return nil, &ConfigError{Text: fmt.Sprintf(
			"decorator version %q requires host version >= %s, but host reported %s",
			opts.Version, min, opts.HostVersion)}
	}

	constantSuper := opts.ConstantSuper
	if !opts.ConstantSuper && opts.Loose {
		// spec.md §9: "assumption wins" — loose is a deprecated default only.
		constantSuper = opts.Loose
	}

	return &Plugin{
		version:       version,
		policy:        compat.PolicyFor(version),
		constantSuper: constantSuper,
		visited:       traverse.NewVisited(),
		metrics:       telemetry.NewMetrics(),
	}, nil
}

// Result is what LowerClass hands back to the host driver: the rewritten
// statements that should replace the original class declaration/expression
// site, plus the diagnostics accumulated while doing it.
type Result struct {
	Stmts []ast.Stmt
	Expr  *ast.Expr
	Log   *logger.Log

	// Binding is the Ref naming the class's external binding (classIdLocal)
	// when the class was decorated, nil otherwise. The top-level visitor
	// (spec.md §4.1) needs this to build a trailing "export { Name as
	// default }" clause after splitting a decorated default export.
	Binding *ast.Ref

	// Scope is the symbol table every Ref this invocation itself allocated
	// or rebound resolves against — the class's own id property,
	// classIdLocal, every runtime-helper import, every generated local.
	// It is never shared across classes (spec.md §5).
	//
	// Refs embedded in subtrees this pass only copies through unchanged —
	// a decorator expression's free variables, a computed key's
	// identifiers, a method body — are NOT reachable through Scope: they
	// were never this invocation's to own, and resolve only through
	// whatever table the caller already built the input tree against. A
	// host driver integrating many classes into one program owns merging
	// Scope into that same table, the way esbuild's linker merges each
	// file's own ast.Symbols into a whole-program table; that merge is
	// outside this pass's scope.
	Scope *scope.Manager
}

// FatalError is returned by LowerClass when P6 (spec.md §4.7) found a
// forbidden write to a decorated private method. The pass has otherwise
// already mutated its working copy of the tree by the time this is
// returned, matching spec.md §7's "aborts the compilation" contract: the
// host must discard the whole compilation, not patch around the error.
type FatalError struct {
	Msgs []logger.Msg
}

func (e *FatalError) Error() string {
	if len(e.Msgs) == 0 {
		return "decorator lowering: fatal error"
	}
	return e.Msgs[0].String()
}
