package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/facts"
	"github.com/storelens/storelens/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the snapshot before analysis",
	Long: `Load the configured snapshot and build the fact model to verify
referential integrity: order lines must resolve to orders, products and
sellers, reviews to orders, scores to [1,5]. A violation is reported with
the offending record; the analysis commands would abort on the same data.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 Checking snapshot integrity...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	snap, err := loadSnapshot(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	fmt.Printf("📦 Snapshot loaded: %d customers, %d sellers, %d products, %d categories\n",
		len(snap.Customers), len(snap.Sellers), len(snap.Products), len(snap.Categories))
	fmt.Printf("   %d orders, %d order items, %d payments, %d reviews\n",
		len(snap.Orders), len(snap.Items), len(snap.Payments), len(snap.Reviews))

	model, err := facts.Build(snap, log)
	if err != nil {
		var integrity *facts.IntegrityError
		if errors.As(err, &integrity) {
			fmt.Printf("❌ Integrity violation: %s %q: %s\n", integrity.Entity, integrity.Key, integrity.Reason)
			return err
		}
		return err
	}

	delivered := model.DeliveredOrders()
	fmt.Printf("✅ Integrity OK: %d delivered orders eligible for analysis\n", len(delivered))

	unresolved := 0
	for id := range model.Products {
		if _, ok := model.CategoryOf(id); !ok {
			unresolved++
		}
	}
	if unresolved > 0 {
		fmt.Printf("⚠️  %d products without a resolved category (excluded from category aggregates)\n", unresolved)
	}

	if err := cfg.Engine.Validate(); err != nil {
		var param *config.ParamError
		if errors.As(err, &param) {
			fmt.Printf("❌ Engine parameter %s=%v: %s\n", param.Name, param.Value, param.Reason)
		}
		return err
	}
	fmt.Println("✅ Engine parameters valid")

	return nil
}
