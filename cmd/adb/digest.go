package main

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkgadb/adbc"
	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest <file>",
	Short: "print a diagnostic content fingerprint for a container's ADB block",
	Long: `digest hashes the ADB block's payload with xxhash for a quick,
non-cryptographic equality check between two containers. It is not the
hash used for write-side interning (that hash is fixed by the format,
seed 5381, and is never exposed as a standalone digest) and it is not a
substitute for signature verification.`,
	Args: cobra.ExactArgs(1),
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	_, blocks, err := adb.ListBlocksBytes(data)
	if err != nil {
		return err
	}
	if len(blocks) == 0 || blocks[0].Type != adb.BlockADB {
		return fmt.Errorf("digest: no ADB block")
	}
	// blocks[0] is the ADB block; its payload starts headerSize+4 bytes
	// in (container header + block header) and runs for Size-4 bytes.
	const containerHeaderSize = 8
	const blockHeaderSize = 4
	start := containerHeaderSize + blocks[0].Offset + blockHeaderSize
	end := start + blocks[0].Size - blockHeaderSize
	payload := data[start:end]
	fmt.Printf("%016x\n", xxhash.Sum64(payload))
	return nil
}
