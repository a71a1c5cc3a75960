package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/metiseon/metiseon/internal/app"
	"github.com/metiseon/metiseon/internal/backtest"
	"github.com/metiseon/metiseon/internal/config"
	"github.com/metiseon/metiseon/internal/logger"
)

var (
	backtestFrom   string
	backtestTo     string
	backtestBudget float64
	backtestPct    float64
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the weekly decision loop over a historical range",
	Long:  "Run the allocator against historical data, booking simulated fills into the ledger, and show performance statistics",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().Float64Var(&backtestBudget, "budget", 0, "Fixed weekly budget, overrides config")
	backtestCmd.Flags().Float64Var(&backtestPct, "pct", 0, "Weekly budget as a fraction of NAV, overrides config")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	from, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	to, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("end date must be after start date")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log := logger.Must(debug)
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Backtest(cmd.Context(), from, to, backtest.Options{
		Budget: backtestBudget,
		Pct:    backtestPct,
	})
	if err != nil {
		return err
	}

	fmt.Println("=== METISEON Backtest ===")
	fmt.Printf("Period:    %s to %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Printf("Decisions: %d (%d booked)\n", len(res.Decisions), res.BookedCount())
	fmt.Printf("Final NAV: %.2f\n", res.FinalNAV)
	fmt.Printf("Return:    %.2f%%\n", res.Stats.TotalReturn)
	fmt.Printf("Drawdown:  %.2f%%\n", res.Stats.MaxDrawdown)
	fmt.Printf("Sharpe:    %.2f\n", res.Stats.SharpeRatio)
	return nil
}
