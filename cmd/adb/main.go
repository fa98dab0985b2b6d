// Command adb inspects, signs, verifies, and transforms ADB containers.
// It operates without a compiled-in schema throughout: "fields" and
// "dump" decode structurally, by value tag alone (slot count, scalar
// vs. vector, nested container), never by field name. Named-field
// semantics stay with schema-aware callers of the library; this tool's
// job is the ambient plumbing: block listing, structural introspection,
// signing, verification, transform, and metrics.
package main

import (
	"github.com/spf13/cobra"

	"github.com/pkgadb/adbc/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "adb [command] (flags)",
	Short: "ADB container inspection and signing tool",
}

// logger is the CLI's log.Logger; tests may swap it out to capture output.
var logger log.Logger = log.Default{}

func main() {
	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		blocksCmd,
		fieldsCmd,
		dumpCmd,
		digestCmd,
		signCmd,
		verifyCmd,
		xfrmCmd,
		statCmd,
	)
	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("%s", err)
	}
}
