package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkgadb/adbc"
	"github.com/pkgadb/adbc/vfs"
	"github.com/spf13/cobra"
)

var dumpMaxDepth int

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "print the root value tree, recursing into objects and arrays",
	Long: `dump walks the container's root value with no compiled-in schema,
indenting one level per nested object/array slot. It stops descending
at --max-depth (default 8) to bound output on a deeply nested or
cyclical-looking tree; a value past that depth prints as "...".`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().IntVar(&dumpMaxDepth, "max-depth", 8, "stop recursing past this many nested levels")
}

func runDump(cmd *cobra.Command, args []string) error {
	db, err := adb.Map(vfs.Default, args[0], nil, 0, nil, nil)
	if err != nil {
		return err
	}
	defer db.Free()

	out := cmd.OutOrStdout()
	view := adb.Obj(db, adb.Root(db), nil)
	dumpView(out, db, view, 0)
	return nil
}

func dumpView(out io.Writer, db *adb.DB, view *adb.ObjView, depth int) {
	if depth > dumpMaxDepth {
		fmt.Fprintf(out, "%s...\n", indent(depth))
		return
	}
	for i := 1; i < int(view.N()); i++ {
		v := view.RoVal(i)
		switch v.Type() {
		case adb.TypeObject, adb.TypeArray:
			fmt.Fprintf(out, "%s[%d] %s\n", indent(depth), i, tagName(v.Type()))
			dumpView(out, db, adb.Obj(db, v, nil), depth+1)
		default:
			fmt.Fprintf(out, "%s[%d] %s = %s\n", indent(depth), i, tagName(v.Type()), previewVal(db, v))
		}
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
