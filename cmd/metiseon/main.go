package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "metiseon",
	Short: "METISEON - weekly single-asset robo allocator",
	Long: `METISEON buys one asset per week: it scores a configured universe on
fundamental durability, gates it on relative volatility, sizes a fixed
budget into the winner and books the fill into a cost-basis ledger.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "metiseon.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
