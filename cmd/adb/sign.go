package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pkgadb/adbc"
	"github.com/pkgadb/adbc/trust"
	"github.com/spf13/cobra"
)

var signKeyIDHex string

var signCmd = &cobra.Command{
	Use:   "sign <file> <out>",
	Short: "append a detached SIG block, signing with a freshly generated key",
	Long: `sign generates a fresh ed25519 key (printing its key id and
private key so the caller can reuse it with verify), signs the input
container's ADB block, and writes the input plus the new SIG block to
<out>. It exists to exercise the signature driver end to end; real key
management is out of scope (see DESIGN.md).`,
	Args: cobra.ExactArgs(2),
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringVar(&signKeyIDHex, "key-id", "01", "hex key id to embed in the SIG block")
}

func runSign(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	_, blocks, err := adb.ListBlocksBytes(data)
	if err != nil {
		return err
	}
	if len(blocks) == 0 || blocks[0].Type != adb.BlockADB {
		return fmt.Errorf("sign: no ADB block")
	}
	const containerHeaderSize = 8
	const blockHeaderSize = 4
	header := data[:containerHeaderSize]
	start := containerHeaderSize + blocks[0].Offset + blockHeaderSize
	end := start + blocks[0].Size - blockHeaderSize
	payload := data[start:end]

	keyID, err := hex.DecodeString(signKeyIDHex)
	if err != nil {
		return fmt.Errorf("sign: bad --key-id: %w", err)
	}
	key, err := trust.NewKey(keyID)
	if err != nil {
		return err
	}
	sigPayload, err := adb.SignWith(header, payload, adb.HashSHA512, key)
	if err != nil {
		return err
	}

	sigBlock := encodeBlock(adb.BlockSIG, sigPayload)
	result := append(append([]byte{}, data...), sigBlock...)
	if err := os.WriteFile(out, result, 0644); err != nil {
		return err
	}
	fmt.Printf("key-id=%s private-key=%x\n", signKeyIDHex, key.Priv)
	return nil
}

// encodeBlock frames payload as one block of type t, padded to the
// container alignment. Block encoding itself is internal to package
// adb; the CLI re-derives it here since appending a signature is a
// CLI-only convenience, not a library operation spec.md names.
func encodeBlock(t adb.BlockType, payload []byte) []byte {
	const align = 32
	size := uint32(4 + len(payload))
	pad := (align - size%align) % align
	raw := (uint32(t) << 30) | size
	buf := make([]byte, 4+len(payload)+int(pad))
	buf[0] = byte(raw)
	buf[1] = byte(raw >> 8)
	buf[2] = byte(raw >> 16)
	buf[3] = byte(raw >> 24)
	copy(buf[4:], payload)
	return buf
}
