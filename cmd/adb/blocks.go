package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/pkgadb/adbc"
	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks <file>",
	Short: "list a container's blocks",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocks,
}

func runBlocks(cmd *cobra.Command, args []string) error {
	hdr, blocks, err := adb.ListBlocks(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("magic=%#x schema=%d\n", hdr.Magic, hdr.Schema)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"offset", "type", "size", "padding"})
	for _, b := range blocks {
		table.Append([]string{
			fmt.Sprintf("%d", b.Offset),
			blockTypeName(b.Type),
			fmt.Sprintf("%d", b.Size),
			fmt.Sprintf("%d", b.Padding),
		})
	}
	table.Render()
	return nil
}

func blockTypeName(t adb.BlockType) string {
	switch t {
	case adb.BlockADB:
		return "ADB"
	case adb.BlockSIG:
		return "SIG"
	case adb.BlockDATA:
		return "DATA"
	default:
		return fmt.Sprintf("reserved(%d)", t)
	}
}
