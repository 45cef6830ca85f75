package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storelens/storelens/internal/analyze"
	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/logging"
	"github.com/storelens/storelens/internal/reports"
)

var (
	asOfFlag   string
	outputFlag string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis and export the report",
	Long: `Load the configured snapshot, build the fact model and run every
analysis engine:
- RFM, lifetime-value and churn-risk segmentation
- monthly revenue trend and cohort retention
- Pareto cut-off, pricing opportunities and market-expansion scores

The report is exported as timestamped JSON into the output folder.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&asOfFlag, "as-of", "", "As-of date (YYYY-MM-DD), overrides engine.asOfDate")
	analyzeCmd.Flags().StringVar(&outputFlag, "output", "", "Output folder, overrides output.dir")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("📊 storelens analysis starting...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if asOfFlag != "" {
		cfg.Engine.AsOfDate = asOfFlag
	}
	if outputFlag != "" {
		cfg.Output.Dir = outputFlag
	}
	log := logging.New(cfg.LogLevel)

	fmt.Println("📦 Loading snapshot...")
	model, err := loadFactModel(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	fmt.Printf("⚙️  Running engines (as of %s)...\n", cfg.Engine.AsOfDate)
	report, err := analyze.NewEngine(cfg.Engine, log).Run(model)
	if err != nil {
		return err
	}

	filename := reports.TimestampedFilename(cfg.Output.Dir, "storelens")
	if err := reports.ExportJSON(filename, report); err != nil {
		return err
	}

	fmt.Printf("✅ Report %s exported to %s\n", report.RunID, filename)
	printSummary(report)
	return nil
}

func printSummary(report *reports.Report) {
	fmt.Printf("\n📋 Summary (as of %s):\n", report.AsOfDate)
	fmt.Printf("   👥 Segments: %d | never purchased: %d\n",
		len(report.Segmentation.Segments), report.Segmentation.NeverPurchased)
	fmt.Printf("   📈 Trend months: %d | cohorts: %d\n",
		len(report.Trend.Rows), len(report.Cohorts.Rows))
	fmt.Printf("   🏆 Pareto: top %d products (%.2f%% of catalog) carry %.2f%% of revenue\n",
		report.Pareto.TopProducts, report.Pareto.CatalogSharePct, report.Pareto.RevenueSharePct)
	fmt.Printf("   💰 Pricing categories: %d | market states: %d\n",
		len(report.Pricing.Rows), len(report.Markets.Rows))
	if a := report.Audit; a.OmittedCohorts+a.OmittedCategories+a.OmittedStates > 0 {
		fmt.Printf("   ⚠️  Omitted for insufficient data: %d cohorts, %d categories, %d states\n",
			a.OmittedCohorts, a.OmittedCategories, a.OmittedStates)
	}
}
