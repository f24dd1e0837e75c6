package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var chainFormat string

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Fetch and display a node's chain",
	Long: `Chain fetches every entry from the node and prints them as a table:

  cinder chain --node http://localhost:8080

Use --format json for the raw response.`,
	RunE: runChain,
}

func init() {
	chainCmd.Flags().StringVar(&chainFormat, "format", "text", "Output format: text or json")
}

// chainEntry mirrors the node's entry view.
type chainEntry struct {
	Index       int    `json:"index"`
	Fingerprint string `json:"fingerprint"`
	Entry       struct {
		PrevFingerprint string    `json:"prev_fingerprint"`
		Timestamp       time.Time `json:"timestamp"`
		Solution        int64     `json:"solution"`
		Record          struct {
			Amount int64  `json:"amount"`
			Payer  string `json:"payer"`
			Payee  string `json:"payee"`
		} `json:"record"`
	} `json:"entry"`
}

func runChain(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(nodeURL + "/api/v1/chain/entries")
	if err != nil {
		return fmt.Errorf("fetch chain: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned %d", resp.StatusCode)
	}

	var payload struct {
		Entries []chainEntry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode chain: %w", err)
	}

	if chainFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload.Entries)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDX\tAMOUNT\tPAYER\tPAYEE\tSOLUTION\tFINGERPRINT")
	for _, e := range payload.Entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%s\n",
			e.Index,
			e.Entry.Record.Amount,
			shortID(e.Entry.Record.Payer),
			shortID(e.Entry.Record.Payee),
			e.Entry.Solution,
			e.Fingerprint[:16],
		)
	}
	return tw.Flush()
}
