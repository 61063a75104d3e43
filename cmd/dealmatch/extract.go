package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridgelinecap/dealmatch/internal/config"
	"github.com/ridgelinecap/dealmatch/internal/extract"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract identifiers from email text",
		Long: `Run the identifier extractor over ad-hoc text and print the resulting
sets as JSON. Useful for debugging why an email did or did not match.

Examples:
  dealmatch extract --subject "Draw 6 - 168 Las Palmas"
  dealmatch extract --subject "Payoff request" --body-file email.txt`,
		RunE: runExtract,
	}

	cmd.Flags().String("subject", "", "email subject line")
	cmd.Flags().String("body", "", "email body text")
	cmd.Flags().String("body-file", "", "read the body from a file")

	return cmd
}

func runExtract(cmd *cobra.Command, _ []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	body, _ := cmd.Flags().GetString("body")
	bodyFile, _ := cmd.Flags().GetString("body-file")

	if bodyFile != "" {
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}

	blacklist := viper.GetStringSlice("matching.address_blacklist")
	if len(blacklist) == 0 {
		blacklist = config.DefaultAddressBlacklist
	}

	extractor, err := extract.New(blacklist)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	ids := extractor.Extract(subject, body)

	out, err := json.MarshalIndent(map[string][]string{
		"loan_numbers": ids.LoanNumbers,
		"addresses":    ids.Addresses,
		"deal_names":   ids.DealNames,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
