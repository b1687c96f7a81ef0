package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"statement-import-service/cmd/importer/config"

	"github.com/spf13/cobra"
)

// banksCmd lists the bank formats known to the parser config registry
var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List known bank statement formats",
	Long: `Banks lists the statement formats the importer can parse with a line
grammar, either from the remote registry or the bundled defaults.

Examples:
  importer banks
  importer banks --registry-url https://example.com/banks.json
  importer banks --output-format json`,

	RunE: runBanks,
}

func init() {
	rootCmd.AddCommand(banksCmd)

	banksCmd.Flags().StringVar(&registryURL, "registry-url", "", "remote parser config registry URL (default: bundled configs)")
	banksCmd.Flags().DurationVar(&registryTTL, "registry-ttl", 12*time.Hour, "registry cache TTL")
	banksCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json")
}

func runBanks(cmd *cobra.Command, args []string) error {
	registry, err := config.CreateRegistry(config.Settings{
		RegistryURL: registryURL,
		RegistryTTL: registryTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create parser config registry: %w", err)
	}

	configs := registry.Configs(context.Background())

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(configs)
	}

	fmt.Printf("Known bank formats (%d):\n\n", len(configs))
	for _, c := range configs {
		fmt.Printf("  %s\n", c.BankID)
		fmt.Printf("    markers:     %s\n", strings.Join(c.BankMarkers, ", "))
		fmt.Printf("    date format: %s\n", c.DateFormat)
		fmt.Printf("    join lines:  %t\n", c.JoinLines)
		fmt.Println()
	}

	return nil
}
