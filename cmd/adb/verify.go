package main

import (
	"encoding/hex"
	"fmt"

	"github.com/pkgadb/adbc"
	"github.com/pkgadb/adbc/trust"
	"github.com/pkgadb/adbc/vfs"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	verifyPubKeyHex string
	verifyKeyIDHex  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file...>",
	Short: "verify one or more containers against a single trusted ed25519 key",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyPubKeyHex, "pubkey", "", "hex ed25519 public key to trust")
	verifyCmd.Flags().StringVar(&verifyKeyIDHex, "key-id", "01", "hex key id matching the trusted key")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyPubKeyHex == "" {
		return fmt.Errorf("verify: --pubkey is required")
	}
	pub, err := hex.DecodeString(verifyPubKeyHex)
	if err != nil {
		return fmt.Errorf("verify: bad --pubkey: %w", err)
	}
	keyID, err := hex.DecodeString(verifyKeyIDHex)
	if err != nil {
		return fmt.Errorf("verify: bad --key-id: %w", err)
	}
	ks := trust.NewStore(trust.Key{ID: keyID, Pub: pub})

	var g errgroup.Group
	for _, path := range args {
		path := path
		g.Go(func() error {
			m := adb.NewMetrics(nil)
			db, err := adb.Map(vfs.Default, path, nil, 0, ks, m)
			if err != nil {
				fmt.Printf("%s: FAIL (%v)\n", path, err)
				return err
			}
			defer db.Free()
			fmt.Printf("%s: OK\n", path)
			return nil
		})
	}
	return g.Wait()
}
