package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

func newReportCommand(opts *RootOptions) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize payments: total, per-category breakdown and top expenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				summary, err := app.Payments.Summary(ctx, filter)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), summary)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total: %s over %d payments\n\n", summary.TotalExpenses.StringFixed(2), summary.Count)

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
				for _, c := range summary.Categories {
					fmt.Fprintf(tw, "%s\t%s\t%s%%\n", c.Category, c.Amount.StringFixed(2), c.Percentage.StringFixed(2))
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				fmt.Fprintln(out, "\nTop expenses:")
				tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, p := range summary.TopExpenses {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Date.Format(domain.DateLayout), p.Amount.StringFixed(2), p.CostCenter.Label(), p.Description)
				}
				return tw.Flush()
			})
		},
	}
	flags.register(cmd)
	return cmd
}
