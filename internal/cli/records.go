package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

func newAccountsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List and add accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts in creation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				accounts, err := app.Store.ListAccounts(ctx)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), accounts)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE")
				for _, a := range accounts {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", a.ID, a.Name, a.Type)
				}
				return tw.Flush()
			})
		},
	})

	var account domain.Account
	var accountType string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			account.Type = domain.AccountType(accountType)
			if err := account.Validate(); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				created, err := app.Store.CreateAccount(ctx, account)
				if err != nil {
					return err
				}
				return printCreated(cmd, opts, "account", created.ID, created)
			})
		},
	}
	add.Flags().StringVar(&account.Name, "name", "", "account name (required)")
	add.Flags().StringVar(&accountType, "type", "", "PayPal, CreditCard or BankAccount (required)")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("type")
	cmd.AddCommand(add)

	return cmd
}

func newCostCentersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost-centers",
		Short: "List and add cost centers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cost centers in creation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				costCenters, err := app.Store.ListCostCenters(ctx)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), costCenters)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCATEGORY\tSUBCATEGORY")
				for _, c := range costCenters {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Category, c.Subcategory)
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "List distinct categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				categories, err := app.Payments.Categories(ctx)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), categories)
				}
				for _, c := range categories {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	})

	var costCenter domain.CostCenter
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a cost center",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := costCenter.Validate(); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				created, err := app.Store.CreateCostCenter(ctx, costCenter)
				if err != nil {
					return err
				}
				return printCreated(cmd, opts, "cost center", created.ID, created)
			})
		},
	}
	add.Flags().StringVar(&costCenter.Category, "category", "", "category (required)")
	add.Flags().StringVar(&costCenter.Subcategory, "subcategory", "", "subcategory (required)")
	_ = add.MarkFlagRequired("category")
	_ = add.MarkFlagRequired("subcategory")
	cmd.AddCommand(add)

	return cmd
}

func newSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample accounts and cost centers into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) error {
				seeded, err := store.Seed(ctx, app.Store)
				if err != nil {
					return err
				}
				if !seeded {
					fmt.Fprintln(cmd.OutOrStdout(), "Store already has data, nothing seeded.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d accounts and %d cost centers.\n",
					len(store.SampleAccounts), len(store.SampleCostCenters))
				return nil
			})
		},
	}
}

func printCreated(cmd *cobra.Command, opts *RootOptions, what string, id int64, v interface{}) error {
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %d\n", what, id)
	return nil
}
