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
	tradeAsOf   string
	tradeBudget float64
	tradePct    float64
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Run this week's decision once and book it",
	Long:  "Make the single weekly decision for the most recent Friday, book any resulting trade into the ledger, and archive the run report",
	RunE:  runTrade,
}

func init() {
	tradeCmd.Flags().StringVar(&tradeAsOf, "as-of", "", "Decision date YYYY-MM-DD, defaults to today")
	tradeCmd.Flags().Float64Var(&tradeBudget, "budget", 0, "Fixed budget for this run, overrides config")
	tradeCmd.Flags().Float64Var(&tradePct, "pct", 0, "Budget as a fraction of NAV, overrides config")

	rootCmd.AddCommand(tradeCmd)
}

func runTrade(cmd *cobra.Command, args []string) error {
	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if tradeAsOf != "" {
		var err error
		asOf, err = time.Parse("2006-01-02", tradeAsOf)
		if err != nil {
			return fmt.Errorf("invalid as-of date format (expected YYYY-MM-DD): %w", err)
		}
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

	res, err := a.Trade(cmd.Context(), asOf, backtest.Options{
		Budget: tradeBudget,
		Pct:    tradePct,
	})
	if err != nil {
		return err
	}

	d := res.Decisions[len(res.Decisions)-1]
	fmt.Printf("%s: %s", d.Date.Format("2006-01-02"), d.Outcome)
	if d.Booked() {
		fmt.Printf(" %s x %s @ %.2f", d.Qty.String(), d.Ticker, d.Price)
	}
	fmt.Println()
	fmt.Printf("NAV: %.2f\n", res.FinalNAV)
	return nil
}
