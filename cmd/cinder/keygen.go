package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinderledger/cinder/internal/identity"
	"github.com/cinderledger/cinder/internal/keystore"
)

var (
	keygenOut        string
	keygenPubOut     string
	keygenPassphrase string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new wallet key pair",
	Long: `Keygen generates a fresh 2048-bit RSA wallet key pair.

The private key is written to --out (sealed under --passphrase when one is
given, plain PKCS#8 PEM otherwise). The public identity is written to
--pub-out and echoed to stdout; share it freely — it is the string other
wallets pay.`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringVar(&keygenOut, "out", "wallet.key", "Private key output path")
	keygenCmd.Flags().StringVar(&keygenPubOut, "pub-out", "wallet.pub", "Public identity output path")
	keygenCmd.Flags().StringVar(&keygenPassphrase, "passphrase", "", "Seal the private key under this passphrase")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	w, err := identity.NewWallet(nil)
	if err != nil {
		return err
	}

	priv, err := w.PrivatePEM()
	if err != nil {
		return err
	}

	if keygenPassphrase != "" {
		if err := keystore.WriteFile(keygenOut, priv, keygenPassphrase); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(keygenOut, []byte(priv), 0o600); err != nil {
			return fmt.Errorf("write private key: %w", err)
		}
	}

	if err := os.WriteFile(keygenPubOut, []byte(w.PublicPEM()), 0o644); err != nil {
		return fmt.Errorf("write public identity: %w", err)
	}

	fmt.Printf("wrote %s and %s\n\n%s", keygenOut, keygenPubOut, w.PublicPEM())
	return nil
}

// loadKey reads a private key PEM from path, opening the keystore envelope
// when a passphrase is supplied.
func loadKey(path, passphrase string) (string, error) {
	if passphrase != "" {
		return keystore.ReadFile(path, passphrase)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read private key: %w", err)
	}
	return string(data), nil
}
