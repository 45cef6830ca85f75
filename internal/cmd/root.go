package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storelens",
	Short: "storelens - descriptive analytics over an e-commerce order snapshot",
	Long: `storelens computes decision-grade descriptive metrics over a fixed
e-commerce transaction snapshot: revenue concentration, RFM and
lifetime-value segmentation, churn-risk bands, cohort retention,
pricing opportunities and market-expansion scores.

Every run reads an immutable snapshot (CSV directory or database) and an
explicit as-of date, so two runs over the same data always produce the
same report.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
