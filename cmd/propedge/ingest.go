package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/repository"
	"github.com/yourusername/prop-edge/internal/service"
)

var (
	ingestDryRun bool
	ingestOut    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch player prop odds and store them as quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		source, err := newOddsSource()
		if err != nil {
			return err
		}

		var quotesRepo repository.QuoteRepository
		if !ingestDryRun {
			db, repos, err := openRepositories(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			quotesRepo = repos.Quote
		}

		quotes, m, err := service.NewIngestionService(source, quotesRepo, logger).Ingest(ctx)
		if err != nil {
			return err
		}
		fmt.Println(m.String())

		if ingestOut != "" {
			if err := writeQuotesFile(ingestOut, quotes); err != nil {
				return err
			}
			fmt.Printf("Wrote %d quotes to %s\n", len(quotes), ingestOut)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Fetch and normalize without storing")
	ingestCmd.Flags().StringVarP(&ingestOut, "out", "o", "", "Also write normalized quotes to a JSON file")
}

func writeQuotesFile(path string, quotes []models.MarketQuote) error {
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode quotes: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readQuotesFile(path string) ([]models.MarketQuote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quotes file: %w", err)
	}
	var quotes []models.MarketQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes file: %w", err)
	}
	return quotes, nil
}
