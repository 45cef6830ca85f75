package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storelens/storelens/internal/analyze"
	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/logging"
	"github.com/storelens/storelens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis and serve the report over HTTP",
	Long: `Run the full analysis once and expose the resulting report bundle
read-only:
- GET /api/health
- GET /api/report
- GET /api/report/:section (segmentation|trend|cohorts|pareto|pricing|markets|audit)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 storelens server starting...")

	fmt.Println("📝 Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	fmt.Println("📦 Loading snapshot...")
	model, err := loadFactModel(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	fmt.Println("⚙️  Running engines...")
	report, err := analyze.NewEngine(cfg.Engine, log).Run(model)
	if err != nil {
		return err
	}

	srv := server.NewServer(report)

	fmt.Printf("🌐 Serving report %s on %s...\n", report.RunID, cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
