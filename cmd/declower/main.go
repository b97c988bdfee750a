// Command declower is a small standalone demo/debug CLI around the
// decorator lowering pass, modeled on cmd/aleutian's cobra command tree
// (cmd_chat.go): package-level flag variables bound in init(), a root
// command that does nothing but dispatch, and one subcommand per verb.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "declower",
	Short: "Run the ECMAScript decorators lowering pass over a class fixture",
}

func init() {
	rootCmd.AddCommand(runCmd)
}
