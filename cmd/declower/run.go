package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/declower/declower/internal/ast"
	"github.com/declower/declower/internal/compat"
	"github.com/declower/declower/internal/decorator"
	"github.com/declower/declower/internal/logger"
	"github.com/declower/declower/internal/scope"
)

var (
	versionFlag       string
	hostVersionFlag   string
	constantSuperFlag bool
	looseFlag         bool
)

var runCmd = &cobra.Command{
	Use:   "run <fixture.json>",
	Short: "Lower a JSON-encoded class fixture and print the resulting statements",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&versionFlag, "version", "2023-05", "decorator proposal revision: 2021-12, 2022-03, 2023-01, 2023-05")
	runCmd.Flags().StringVar(&hostVersionFlag, "host-version", "", "host compiler version (major.minor.patch); defaults to the revision's own minimum")
	runCmd.Flags().BoolVar(&constantSuperFlag, "constant-super", false, "assume a memoized, non-overridable superclass reference")
	runCmd.Flags().BoolVar(&looseFlag, "loose", false, "deprecated predecessor of --constant-super")
}

func runRun(_ *cobra.Command, args []string) error {
	fx, err := loadFixture(args[0])
	if err != nil {
		return err
	}

	version, err := compat.ParseVersion(versionFlag)
	if err != nil {
		return err
	}
	hostVersion := version.MinimumHostVersion()
	if hostVersionFlag != "" {
		parsed, err := parseHostVersion(hostVersionFlag)
		if err != nil {
			return err
		}
		hostVersion = parsed
	}

	plugin, err := decorator.New(decorator.Options{
		Version:       versionFlag,
		HostVersion:   hostVersion,
		ConstantSuper: constantSuperFlag,
		Loose:         looseFlag,
	})
	if err != nil {
		return err
	}

	mgr := scope.NewManager()
	class, err := newBuilder(mgr).build(fx)
	if err != nil {
		return err
	}

	source := &logger.Source{PrettyPath: args[0]}
	stmt := topLevelStmt(mgr, class, fx)

	out, loweredScope, err := plugin.VisitTopLevelClassStmt(stmt, source, func(ref ast.Ref) string { return mgr.Symbol(ref).OriginalName })
	if err != nil {
		if fatal, ok := err.(*decorator.FatalError); ok {
			for _, msg := range fatal.Msgs {
				fmt.Println(msg.String())
			}
			return fmt.Errorf("lowering aborted")
		}
		return err
	}

	fmt.Print(dumpStmts(out, loweredScope, mgr))
	return nil
}

// topLevelStmt wraps the built class into the statement shape
// Plugin.VisitTopLevelClassStmt expects, matching what a real parser would
// hand it for the export form the fixture describes.
func topLevelStmt(mgr *scope.Manager, class *ast.Class, fx *Fixture) ast.Stmt {
	classStmt := ast.Stmt{Data: &ast.SClass{Class: *class, IsExport: fx.Export}}
	if !fx.Default {
		return classStmt
	}
	defaultName := mgr.NewSymbol(ast.SymbolOther, "default")
	return ast.Stmt{Data: &ast.SExportDefault{DefaultName: defaultName, Value: classStmt}}
}

func parseHostVersion(s string) (compat.HostVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return compat.HostVersion{}, fmt.Errorf("--host-version: want major.minor.patch, got %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return compat.HostVersion{}, fmt.Errorf("--host-version: %w", err)
		}
		nums[i] = n
	}
	return compat.HostVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}
