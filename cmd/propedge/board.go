package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/prop-edge/internal/repository"
	"github.com/yourusername/prop-edge/internal/service"
)

var (
	boardQuotesFile string
	boardIngest     bool
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Build, store and publish the edge board",
	Long: `Builds the edge board from quotes stored within the lookback window, or
from a JSON quotes file with --quotes, which needs no database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var repos *repository.Repositories
		if boardQuotesFile == "" {
			db, r, err := openRepositories(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			repos = r
		}

		svc, closePub, err := newBoardService(ctx, repos, nil)
		if err != nil {
			return err
		}
		defer closePub()

		var run *service.BoardRun
		if boardQuotesFile != "" {
			quotes, err := readQuotesFile(boardQuotesFile)
			if err != nil {
				return err
			}
			run, err = svc.RunQuotes(ctx, quotes)
			if err != nil {
				return err
			}
		} else {
			if boardIngest {
				source, err := newOddsSource()
				if err != nil {
					return err
				}
				if _, _, err := service.NewIngestionService(source, repos.Quote, logger).Ingest(ctx); err != nil {
					logger.WithError(err).Warn("Ingestion failed, building from stored quotes")
				}
			}
			run, err = svc.Run(ctx)
			if err != nil {
				return err
			}
		}

		printBoard(run)
		return nil
	},
}

func init() {
	boardCmd.Flags().StringVarP(&boardQuotesFile, "quotes", "q", "", "Read quotes from a JSON file instead of the database")
	boardCmd.Flags().BoolVar(&boardIngest, "ingest", false, "Fetch fresh odds before building")
}

func printBoard(run *service.BoardRun) {
	result := run.Result
	fmt.Printf("Run %s: %d quotes, %d markets, %d entries, %d skipped, %d published\n",
		run.RunID, result.Quotes, result.Markets, len(result.Entries), result.Skipped, run.Published)

	positive := result.PositiveEntries()
	if len(positive) == 0 {
		fmt.Println("No positive edges")
	}
	for _, e := range positive {
		fmt.Printf("  %-40s %-5s line=%-6.1f mean=%-6.2f p=%.3f edge=%+.2f%% fresh=%.2f %s\n",
			e.MarketKey, e.Side, e.Line, e.ProjectionMean, e.PModel, e.EdgePct, e.FreshnessScore, e.Source)
	}
	for _, p := range run.Artifacts {
		fmt.Printf("Wrote %s\n", p)
	}
}
