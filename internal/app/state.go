package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"octopus-price-alerts/internal/tariff"
)

// ShowState prints the durable alert state record per commodity.
func (a *App) ShowState(ctx context.Context) error {
	mapping, err := a.newStateStore().Load(ctx)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Commodity\tNotified\tLast Price\tUnit")

	for _, commodity := range tariff.All() {
		st := mapping.Get(commodity)
		lastPrice := "-"
		if st.LastPrice != nil {
			lastPrice = st.LastPrice.StringFixed(4)
		}
		fmt.Fprintf(writer, "%s\t%t\t%s\t%s\n", commodity, st.Notified, lastPrice, commodity.Unit())
	}

	writer.Flush()
	return nil
}
