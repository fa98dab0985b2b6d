package main

import (
	"io"
	"os"

	"github.com/pkgadb/adbc"
	"github.com/spf13/cobra"
)

var xfrmDropData bool

var xfrmCmd = &cobra.Command{
	Use:   "xfrm <in> <out>",
	Short: "copy a container, optionally emptying DATA blocks",
	Args:  cobra.ExactArgs(2),
	RunE:  runXfrm,
}

func init() {
	xfrmCmd.Flags().BoolVar(&xfrmDropData, "drop-data", false, "replace each DATA block with an empty DATA block instead of passing it through")
}

func runXfrm(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	return adb.Xfrm(in, out, func(blockType adb.BlockType, r io.Reader, w io.Writer) (int64, error) {
		if xfrmDropData && blockType == adb.BlockDATA {
			// Emits an empty DATA block: consuming but not writing the
			// payload avoids the verbatim bulk-copy fast path, which
			// would otherwise pass the original bytes through.
			n, err := io.Copy(io.Discard, r)
			return n, err
		}
		return io.Copy(w, r)
	})
}
