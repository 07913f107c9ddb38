package cli

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

var (
	simulateSymbol   string
	simulateKind     string
	simulatePrice    float64
	simulateBaseline float64
	simulateVolume   float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Send a synthetic alert through the configured channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulatePrice <= 0 || simulateBaseline <= 0 {
			return errors.New("--price and --baseline must be greater than zero")
		}

		kind := settings.RuleKind(simulateKind)
		switch kind {
		case settings.Pump, settings.ShortPump, settings.Dump:
		default:
			return fmt.Errorf("--kind must be one of pump, short, dump (got %q)", simulateKind)
		}

		return getApp().SimulateAlert(
			cmd.Context(),
			settings.NormalizeSymbol(simulateSymbol),
			kind,
			decimal.NewFromFloat(simulatePrice),
			decimal.NewFromFloat(simulateBaseline),
			decimal.NewFromFloat(simulateVolume),
		)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSymbol, "symbol", "BTCUSDT", "Symbol to report")
	simulateCmd.Flags().StringVar(&simulateKind, "kind", "pump", "Rule kind: pump, short or dump")
	simulateCmd.Flags().Float64Var(&simulatePrice, "price", 0, "Current price")
	simulateCmd.Flags().Float64Var(&simulateBaseline, "baseline", 0, "Baseline price")
	simulateCmd.Flags().Float64Var(&simulateVolume, "volume", 1_000_000, "24h quote volume")
}
