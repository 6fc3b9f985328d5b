package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swotlab/swotlab/internal/abtest"
)

func newMetricsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show A/B test counters",
		Long:  `Show view and conversion counters per variant with conversion rates.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), nil, func(svc *services) error {
				printCounters(cmd, svc.metrics.Snapshot())
				return nil
			})
		},
	}
}

func printCounters(cmd *cobra.Command, c abtest.Counters) {
	out := cmd.OutOrStdout()

	// Print table header
	fmt.Fprintln(out, "VARIANT  VIEWS      CONVERSIONS  RATE")
	fmt.Fprintln(out, strings.Repeat("─", 42))

	for _, v := range []abtest.Variant{abtest.A, abtest.B} {
		fmt.Fprintf(out, "%-7s  %-9s  %-11s  %s\n",
			v,
			formatNumber(c.Views(v)),
			formatNumber(c.Conversions(v)),
			formatPercent(c.ConversionRate(v)),
		)
	}
	fmt.Fprintln(out)

	if c.ViewsA+c.ViewsB == 0 {
		fmt.Fprintln(out, "No views recorded yet.")
	}
}
