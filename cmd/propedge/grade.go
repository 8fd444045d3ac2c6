package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/prop-edge/internal/artifacts"
	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/normalize"
)

var marketFlags struct {
	game   string
	player string
	stat   string
}

var pickFlags struct {
	side    string
	line    float64
	price   int
	stake   float64
	pHit    float64
	mean    float64
	userTag string
}

var resultFlags struct {
	actual    float64
	closing   float64
	source    string
	settledAt string
}

var reportDate string

func addMarketFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&marketFlags.game, "game", "", "Game identifier")
	cmd.Flags().StringVar(&marketFlags.player, "player", "", "Player name or subject id")
	cmd.Flags().StringVar(&marketFlags.stat, "stat", "", "Stat type (PTS, REB, AST, 3PM, PRA)")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("stat")
}

func flagMarket() models.MarketKey {
	return models.MarketKey{
		GameID:    marketFlags.game,
		SubjectID: normalize.SubjectID(marketFlags.player),
		StatType:  marketFlags.stat,
	}
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Record a pick",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		side, err := models.ParseSide(pickFlags.side)
		if err != nil {
			return err
		}

		db, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := newGradingService(ctx, repos, nil)
		if err != nil {
			return err
		}

		pick := &models.Pick{
			UserTag:       pickFlags.userTag,
			Market:        flagMarket(),
			Side:          side,
			Stake:         pickFlags.stake,
			LineAtPick:    pickFlags.line,
			PriceAtPick:   pickFlags.price,
			ProjectedMean: pickFlags.mean,
			PHit:          pickFlags.pHit,
		}
		if err := svc.RecordPick(ctx, pick); err != nil {
			return err
		}
		fmt.Printf("Recorded pick %s on %s %s %.1f\n", pick.ID, pick.Market, pick.Side, pick.LineAtPick)
		return nil
	},
}

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Record a settled result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		result := &models.Result{
			Market:      flagMarket(),
			ActualValue: resultFlags.actual,
			Source:      resultFlags.source,
		}
		if cmd.Flags().Changed("closing-line") {
			closing := resultFlags.closing
			result.ClosingLine = &closing
		}
		if resultFlags.settledAt != "" {
			t, err := time.Parse(time.RFC3339, resultFlags.settledAt)
			if err != nil {
				return fmt.Errorf("invalid --settled-at: %w", err)
			}
			result.SettledAt = t.UTC()
		}

		db, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := newGradingService(ctx, repos, nil)
		if err != nil {
			return err
		}
		if err := svc.RecordResult(ctx, result); err != nil {
			return err
		}
		fmt.Printf("Recorded result %s: %s = %.1f\n", result.ID, result.Market, result.ActualValue)
		return nil
	},
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade picks against results and compute metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := newGradingService(ctx, repos, nil)
		if err != nil {
			return err
		}
		run, err := svc.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %d graded (%d new), %d open, %d skipped\n",
			run.RunID, run.Report.Graded, len(run.Report.Grades), run.Report.Open, run.Report.Skipped)
		printReport(run.Metrics)
		for _, p := range run.Artifacts {
			fmt.Printf("Wrote %s\n", p)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a day's metrics artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now().UTC()
		if reportDate != "" {
			t, err := time.Parse(artifacts.DateLayout, reportDate)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			day = t
		}

		writer, err := newWriter()
		if err != nil {
			return err
		}
		artifact, err := artifacts.ReadMetrics(writer.MetricsPath(day))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(artifact)
	},
}

func init() {
	addMarketFlags(pickCmd)
	pickCmd.Flags().StringVar(&pickFlags.side, "side", "", "over or under")
	pickCmd.Flags().Float64Var(&pickFlags.line, "line", 0, "Line at pick time")
	pickCmd.Flags().IntVar(&pickFlags.price, "price", 0, "American price at pick time")
	pickCmd.Flags().Float64Var(&pickFlags.stake, "stake", 100, "Stake")
	pickCmd.Flags().Float64Var(&pickFlags.pHit, "p-hit", 0, "Model probability of the side hitting")
	pickCmd.Flags().Float64Var(&pickFlags.mean, "mean", 0, "Projected mean at pick time")
	pickCmd.Flags().StringVar(&pickFlags.userTag, "user", "default", "User tag")
	_ = pickCmd.MarkFlagRequired("side")
	_ = pickCmd.MarkFlagRequired("line")
	_ = pickCmd.MarkFlagRequired("price")

	addMarketFlags(resultCmd)
	resultCmd.Flags().Float64Var(&resultFlags.actual, "actual", 0, "Actual stat value")
	resultCmd.Flags().Float64Var(&resultFlags.closing, "closing-line", 0, "Closing line, when known")
	resultCmd.Flags().StringVar(&resultFlags.source, "source", "manual", "Result source")
	resultCmd.Flags().StringVar(&resultFlags.settledAt, "settled-at", "", "Settlement time (RFC3339, default now)")
	_ = resultCmd.MarkFlagRequired("actual")

	reportCmd.Flags().StringVar(&reportDate, "date", "", "Artifact date (YYYY-MM-DD, default today)")
}

func printReport(report artifacts.MetricsReport) {
	o := report.Overall
	fmt.Printf("Overall: n=%d correct=%.1f%% clv=%.2f clv+=%.1f%% mae=%.2f rmse=%.2f profit=%.2f\n",
		o.Count, o.CorrectPct*100, o.CLVMean, o.CLVPctPositive*100, o.MAE, o.RMSE, o.TotalProfit)
	stats := make([]string, 0, len(report.ByStat))
	for stat := range report.ByStat {
		stats = append(stats, stat)
	}
	sort.Strings(stats)
	for _, stat := range stats {
		m := report.ByStat[stat]
		fmt.Printf("  %-4s n=%d correct=%.1f%% clv=%.2f mae=%.2f\n", stat, m.Count, m.CorrectPct*100, m.CLVMean, m.MAE)
	}
	if report.StopLoss {
		fmt.Println("STOP-LOSS TRIGGERED: accuracy fell beyond the configured threshold")
	}
}
