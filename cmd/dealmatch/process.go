package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/ridgelinecap/dealmatch/internal/common"
	"github.com/ridgelinecap/dealmatch/internal/config"
	"github.com/ridgelinecap/dealmatch/internal/crm"
	"github.com/ridgelinecap/dealmatch/internal/engine"
	"github.com/ridgelinecap/dealmatch/internal/extract"
	"github.com/ridgelinecap/dealmatch/internal/model"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a batch of change events",
		Long: `Process a batch of CRM change-notification events, matching each new or
direction-changed email against deals and writing the winning association.

Examples:
  dealmatch process --events batch.json   # Process events from a file
  cat batch.json | dealmatch process      # Process events from stdin
  dealmatch process -e batch.json --dry-run  # Match without writing associations`,
		RunE: runProcess,
	}

	cmd.Flags().StringP("events", "e", "-", "path to a JSON file of change events (- for stdin)")
	cmd.Flags().Bool("dry-run", false, "match emails without writing associations")

	_ = viper.BindPFlag("process.events", cmd.Flags().Lookup("events"))
	_ = viper.BindPFlag("process.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return common.NewUserError("configuration error", err)
	}

	events, err := readEvents(viper.GetString("process.events"))
	if err != nil {
		return err
	}

	client, err := crm.NewClient(crm.Config{
		BaseURL:           cfg.CRM.BaseURL,
		AccessToken:       cfg.CRM.AccessToken,
		Timeout:           cfg.CRM.RequestTimeout,
		AssociationTypeID: cfg.CRM.AssociationTypeID,
	}, cfg.Retry)
	if err != nil {
		return fmt.Errorf("failed to create CRM client: %w", err)
	}

	extractor, err := extract.New(cfg.Matching.AddressBlacklist)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	pacer := rate.NewLimiter(rate.Every(cfg.Matching.SearchDelay), 1)
	matcher := engine.NewMatcher(client, pacer, engine.MatcherConfig{
		AllowedStages:        cfg.Matching.AllowedStages,
		AcceptanceThreshold:  cfg.Matching.AcceptanceThreshold,
		LoanNumberProperties: cfg.Matching.LoanNumberProperties,
		DealNameProperty:     cfg.Matching.DealNameProperty,
		AddressProperty:      cfg.Matching.AddressProperty,
	})
	resolver := engine.NewResolver(client)

	processor := engine.NewProcessor(client, extractor, matcher, resolver, viper.GetBool("process.dry_run"))

	summary, err := processor.ProcessBatch(ctx, events)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	slog.Info("Invocation succeeded",
		"matched", summary.Matched,
		"skipped", summary.Skipped)
	fmt.Printf("Processed %d emails: %d matched (%d via fallback), %d unmatched, %d skipped\n",
		summary.Processed, summary.Matched, summary.FallbackMatched, summary.Unmatched, summary.Skipped)

	return nil
}

// readEvents reads a batch of change events from a JSON file or stdin.
// Accepts either a bare array or an object with an "events" key.
func readEvents(path string) ([]model.ChangeEvent, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	var events []model.ChangeEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}

	var wrapper struct {
		Events []model.ChangeEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}
	return wrapper.Events, nil
}
