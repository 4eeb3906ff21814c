package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"octopus-price-alerts/internal/tariff"
)

var (
	simulateCommodity string
	simulatePrice     float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次价格观测并触发告警流程",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulatePrice <= 0 {
			return errors.New("--price 必须大于 0")
		}

		commodity, err := tariff.Parse(simulateCommodity)
		if err != nil {
			return err
		}

		return getApp().SimulateAlert(cmd.Context(), commodity, decimal.NewFromFloat(simulatePrice))
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateCommodity, "commodity", "electricity", "Commodity to simulate (electricity|gas)")
	simulateCmd.Flags().Float64Var(&simulatePrice, "price", 0, "Observed price to simulate")
}
