package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinderledger/cinder/internal/identity"
	"github.com/cinderledger/cinder/internal/record"
)

var (
	sendKey        string
	sendPassphrase string
	sendAmount     int64
	sendPayee      string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transfer to a cinderd node",
	Long: `Send builds a transfer record paying --amount from the wallet at --key to
--payee, signs it locally, and submits it to the node:

  cinder send --key wallet.key --amount 50 --payee bob.pub

--payee may be a path to a public identity file or a literal identity
string. The private key never leaves this machine.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendKey, "key", "wallet.key", "Private key path")
	sendCmd.Flags().StringVar(&sendPassphrase, "passphrase", "", "Passphrase for a sealed private key")
	sendCmd.Flags().Int64Var(&sendAmount, "amount", 0, "Amount to transfer")
	sendCmd.Flags().StringVar(&sendPayee, "payee", "", "Payee identity (string or file path)")
	_ = sendCmd.MarkFlagRequired("payee")
}

func runSend(cmd *cobra.Command, args []string) error {
	priv, err := loadKey(sendKey, sendPassphrase)
	if err != nil {
		return err
	}
	w, err := identity.LoadWallet(priv, nil)
	if err != nil {
		return err
	}

	payee := resolveIdentity(sendPayee)
	rec := record.New(sendAmount, w.PublicPEM(), payee)
	sig, err := w.Sign(rec)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"amount":    rec.Amount,
		"payer":     rec.Payer,
		"payee":     rec.Payee,
		"signature": base64.StdEncoding.EncodeToString(sig),
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 60 * time.Second} // admission mines before responding
	resp, err := client.Post(nodeURL+"/api/v1/transfers", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit transfer: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		fmt.Printf("accepted: entry %v (solution %v)\n", out["fingerprint"], out["solution"])
	case http.StatusUnprocessableEntity:
		fmt.Println("rejected: signature did not verify")
	default:
		return fmt.Errorf("node returned %d: %v", resp.StatusCode, out["error"])
	}
	return nil
}

// resolveIdentity treats s as a file path when one exists, otherwise as a
// literal identity string.
func resolveIdentity(s string) string {
	if data, err := os.ReadFile(s); err == nil {
		return strings.TrimSpace(string(data)) + "\n"
	}
	return s
}
