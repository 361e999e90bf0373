package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/payments"
	"github.com/dvloznov/payment-tracker/internal/report"
)

// filterFlags are the report filter flags shared by payments list and report.
type filterFlags struct {
	start, end string
	account    int64
	costCenter int64
	category   string
	search     string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().Int64Var(&f.account, "account", 0, "account id")
	cmd.Flags().Int64Var(&f.costCenter, "cost-center", 0, "cost center id")
	cmd.Flags().StringVar(&f.category, "category", "", "cost center category")
	cmd.Flags().StringVar(&f.search, "search", "", "text to look for in description, account or cost center")
}

func (f *filterFlags) filter() (report.Filter, error) {
	out := report.Filter{Category: f.category, Search: f.search}
	if f.start != "" {
		d, err := civil.ParseDate(f.start)
		if err != nil {
			return out, fmt.Errorf("invalid --start: %w", err)
		}
		out.StartDate = &d
	}
	if f.end != "" {
		d, err := civil.ParseDate(f.end)
		if err != nil {
			return out, fmt.Errorf("invalid --end: %w", err)
		}
		out.EndDate = &d
	}
	if f.account > 0 {
		out.AccountID = &f.account
	}
	if f.costCenter > 0 {
		out.CostCenterID = &f.costCenter
	}
	return out, nil
}

func newPaymentsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List, add and delete payments",
	}
	cmd.AddCommand(newPaymentsListCommand(opts))
	cmd.AddCommand(newPaymentsAddCommand(opts))
	cmd.AddCommand(newPaymentsDeleteCommand(opts))
	return cmd
}

func newPaymentsListCommand(opts *RootOptions) *cobra.Command {
	var flags filterFlags
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments by category, subcategory and newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				var items []domain.PaymentWithRelations
				var footer string
				if page > 0 {
					p, err := app.Payments.Query(ctx, filter, page)
					if err != nil {
						return err
					}
					if opts.Format == "json" {
						return writeJSON(cmd.OutOrStdout(), p)
					}
					items = p.Items
					footer = fmt.Sprintf("Page %d of %d (%d payments)\n", p.Page, p.TotalPages, p.TotalItems)
				} else {
					items, err = app.Payments.List(ctx, filter)
					if err != nil {
						return err
					}
					if opts.Format == "json" {
						return writeJSON(cmd.OutOrStdout(), items)
					}
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tCOST CENTER\tACCOUNT\tDESCRIPTION")
				for _, p := range items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
						p.ID, p.Date.Format(domain.DateLayout), p.Amount.StringFixed(2),
						p.CostCenter.Label(), p.Account.Name, p.Description)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), footer)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "page number; 0 lists everything")
	return cmd
}

func newPaymentsAddCommand(opts *RootOptions) *cobra.Command {
	var (
		date, amount, description string
		accountID, costCenterID   int64
		receipt, request          string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a payment, optionally with receipt and request files",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			uploads := make(map[domain.Slot]*payments.Upload)
			for slot, path := range map[domain.Slot]string{domain.SlotReceipt: receipt, domain.SlotRequest: request} {
				if path == "" {
					continue
				}
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", slot, err)
				}
				defer f.Close()
				uploads[slot] = &payments.Upload{Filename: filepath.Base(path), Content: f}
			}

			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				when, err := domain.ParseDateIn(date, app.Payments.Engine().Location())
				if err != nil {
					return err
				}
				created, err := app.Payments.Create(ctx, domain.Payment{
					Date:         when,
					Amount:       value,
					Description:  description,
					AccountID:    accountID,
					CostCenterID: costCenterID,
				}, uploads)
				if err != nil {
					return err
				}
				return printCreated(cmd, opts, "payment", created.ID, created)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "payment date, YYYY-MM-DD or RFC 3339 (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "decimal amount (required)")
	cmd.Flags().StringVar(&description, "description", "", "free text")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id (required)")
	cmd.Flags().Int64Var(&costCenterID, "cost-center", 0, "cost center id (required)")
	cmd.Flags().StringVar(&receipt, "receipt", "", "receipt file to attach")
	cmd.Flags().StringVar(&request, "request", "", "request file to attach")
	for _, name := range []string{"date", "amount", "account", "cost-center"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newPaymentsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a payment and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid payment id %q", args[0])
			}
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				deleted, err := app.Payments.Delete(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("payment %d: %w", id, domain.ErrNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted payment %d\n", id)
				return nil
			})
		},
	}
}
