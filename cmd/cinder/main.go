// Command cinder is the command-line companion to cinderd. It generates
// wallet key pairs, signs and submits transfers to a running node, inspects
// the chain, and can run a self-contained in-process demo.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	nodeURL string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cinder",
	Short: "cinder ledger CLI",
	Long: `cinder is the command-line interface for the cinder ledger.

It generates wallet key pairs, signs and submits transfers to a cinderd
node, and inspects the node's chain.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.cinder")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if nodeURL == "" {
			nodeURL = viper.GetString("node_url")
		}
		if nodeURL == "" {
			nodeURL = "http://localhost:8080"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.cinder/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "node", "", "cinderd node URL (default http://localhost:8080)")

	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cinder CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cinder", version)
	},
}

// shortID abbreviates an identity string for table output. PEM identities
// collapse to a hash prefix; well-known labels pass through unchanged.
func shortID(identity string) string {
	if !strings.HasPrefix(identity, "-----BEGIN") {
		return identity
	}
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])[:10]
}
