package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// NewCustomersCommand creates the customers command group.
func NewCustomersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "cus"},
		Short:   "Manage customers",
		Long:    "Create, inspect, list and search customers",
	}

	cmd.AddCommand(newCustomersCreateCommand(app))
	cmd.AddCommand(newCustomersGetCommand(app))
	cmd.AddCommand(newCustomersUpdateCommand(app))
	cmd.AddCommand(newCustomersDeleteCommand(app))
	cmd.AddCommand(newCustomersListCommand(app))
	cmd.AddCommand(newCustomersSearchCommand(app))

	return cmd
}

func registerCustomerFlags(cmd *cobra.Command, metadata *map[string]string) {
	cmd.Flags().String("email", "", "customer email")
	cmd.Flags().String("name", "", "customer name")
	cmd.Flags().String("phone", "", "customer phone")
	cmd.Flags().String("description", "", "customer description")
	cmd.Flags().String("tax-exempt", "", "tax exemption (none, exempt, reverse)")
	cmd.Flags().StringToStringVar(metadata, "metadata", nil, "metadata key=value pairs; an empty value removes the key")
}

func customerParamsFromFlags(cmd *cobra.Command, metadata map[string]string) (*stripe.CustomerParams, error) {
	flags := cmd.Flags()

	params := &stripe.CustomerParams{
		Email:       stringFlag(flags, "email"),
		Name:        stringFlag(flags, "name"),
		Phone:       stringFlag(flags, "phone"),
		Description: stringFlag(flags, "description"),
	}

	if raw := stringFlag(flags, "tax-exempt"); raw != nil {
		exempt, err := stripe.ParseCustomerTaxExempt(*raw)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		params.TaxExempt = &exempt
	}

	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	return params, nil
}

func newCustomersCreateCommand(app *App) *cobra.Command {
	var metadata map[string]string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := customerParamsFromFlags(cmd, metadata)
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			customer, err := client.Customers().Create(commandContext(cmd), params)
			if err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}

			return app.renderCustomer(customer)
		},
	}

	registerCustomerFlags(cmd, &metadata)

	return cmd
}

func newCustomersGetCommand(app *App) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "get CUSTOMER_ID...",
		Short: "Get customer details",
		Long:  "Display one or more customers. Several ids are fetched concurrently.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				customer, err := client.Customers().Get(commandContext(cmd), args[0], nil)
				if err != nil {
					return fmt.Errorf("failed to get customer: %w", err)
				}

				return app.renderCustomer(customer)
			}

			customers := make([]stripe.Customer, len(args))

			group, ctx := errgroup.WithContext(commandContext(cmd))
			group.SetLimit(max(concurrency, 1))

			for i, id := range args {
				group.Go(func() error {
					customer, err := client.Customers().Get(ctx, id, nil)
					if err != nil {
						return fmt.Errorf("failed to get customer %s: %w", id, err)
					}

					customers[i] = *customer

					return nil
				})
			}

			err = group.Wait()
			if err != nil {
				return err //nolint:wrapcheck
			}

			return app.renderCustomers(customers, false, true)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", defaultMaxConcurrency, "maximum parallel requests")

	return cmd
}

func newCustomersUpdateCommand(app *App) *cobra.Command {
	var metadata map[string]string

	cmd := &cobra.Command{
		Use:   "update CUSTOMER_ID",
		Short: "Update a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := customerParamsFromFlags(cmd, metadata)
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			customer, err := client.Customers().Update(commandContext(cmd), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to update customer: %w", err)
			}

			return app.renderCustomer(customer)
		},
	}

	registerCustomerFlags(cmd, &metadata)

	return cmd
}

func newCustomersDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CUSTOMER_ID",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			deleted, err := client.Customers().Delete(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete customer: %w", err)
			}

			return app.render(deleted, func(table *tablewriter.Table) error {
				table.Header("ID", "Deleted")

				return table.Append(deleted.ID, formatBool(deleted.Deleted)) //nolint:wrapcheck
			})
		},
	}
}

func newCustomersListCommand(app *App) *cobra.Command {
	var (
		flags listFlags
		email string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			params := &stripe.CustomerListParams{ListParams: flags.listParams(), Created: flags.created()}
			if email != "" {
				params.Email = stripe.String(email)
			}

			ctx := commandContext(cmd)

			if flags.All {
				customers, err := client.Customers().ListAll(ctx, params).All()
				if err != nil {
					return fmt.Errorf("failed to list customers: %w", err)
				}

				return app.renderCustomers(customers, false, true)
			}

			page, err := client.Customers().List(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to list customers: %w", err)
			}

			return app.renderCustomers(page.Data, page.HasMore, false)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&email, "email", "", "filter by exact email")

	return cmd
}

func newCustomersSearchCommand(app *App) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search customers",
		Long:  `Search customers with the search query language, for example "email~'example.com'"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			params := &stripe.CustomerSearchParams{SearchParams: flags.searchParams(args[0])}
			ctx := commandContext(cmd)

			if flags.All {
				customers, err := client.Customers().SearchAll(ctx, params).All()
				if err != nil {
					return fmt.Errorf("failed to search customers: %w", err)
				}

				return app.renderCustomers(customers, false, true)
			}

			result, err := client.Customers().Search(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to search customers: %w", err)
			}

			return app.renderCustomers(result.Data, result.HasMore, false)
		},
	}

	flags.register(cmd)

	return cmd
}

func (a *App) renderCustomer(customer *stripe.Customer) error {
	return a.render(customer, func(table *tablewriter.Table) error {
		table.Header("Property", "Value")
		_ = table.Append("ID", customer.ID)
		_ = table.Append("Email", formatValue(customer.Email))
		_ = table.Append("Name", formatValue(customer.Name))
		_ = table.Append("Phone", formatValue(customer.Phone))
		_ = table.Append("Description", formatValue(customer.Description))
		_ = table.Append("Tax Exempt", formatValue(customer.TaxExempt.String()))
		_ = table.Append("Balance", fmt.Sprintf("%d", customer.Balance))
		_ = table.Append("Created", formatTimestamp(customer.Created))

		for _, key := range sortedKeys(customer.Metadata) {
			_ = table.Append("metadata."+key, customer.Metadata[key])
		}

		return nil
	})
}

func (a *App) renderCustomers(customers []stripe.Customer, hasMore, all bool) error {
	if len(customers) == 0 && a.plainTable() {
		_, err := fmt.Fprintln(a.out, "No customers found")

		return err //nolint:wrapcheck
	}

	err := a.render(customers, func(table *tablewriter.Table) error {
		table.Header("ID", "Email", "Name", "Created")

		for _, customer := range customers {
			_ = table.Append(customer.ID, formatValue(customer.Email), formatValue(customer.Name), formatTimestamp(customer.Created))
		}

		return nil
	})
	if err != nil {
		return err
	}

	if a.plainTable() {
		a.pageFooter(hasMore, all)
	}

	return nil
}
