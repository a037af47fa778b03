package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// NewChargesCommand creates the charges command group.
func NewChargesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "charges",
		Aliases: []string{"charge", "ch"},
		Short:   "Manage charges",
		Long:    "Create, capture, list and search charges",
	}

	cmd.AddCommand(newChargesCreateCommand(app))
	cmd.AddCommand(newChargesGetCommand(app))
	cmd.AddCommand(newChargesUpdateCommand(app))
	cmd.AddCommand(newChargesCaptureCommand(app))
	cmd.AddCommand(newChargesListCommand(app))
	cmd.AddCommand(newChargesSearchCommand(app))

	return cmd
}

func newChargesCreateCommand(app *App) *cobra.Command {
	var metadata map[string]string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a charge",
		Long: `Create a charge. Amounts are in the smallest currency unit.

Examples:
  stripe charges create --amount 2000 --currency usd --source tok_visa
  stripe charges create --amount 500 --currency eur --customer cus_123 --capture=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			params := &stripe.ChargeParams{
				Amount:              int64Flag(flags, "amount"),
				Currency:            stringFlag(flags, "currency"),
				Customer:            stringFlag(flags, "customer"),
				Source:              stringFlag(flags, "source"),
				Description:         stringFlag(flags, "description"),
				ReceiptEmail:        stringFlag(flags, "receipt-email"),
				StatementDescriptor: stringFlag(flags, "statement-descriptor"),
			}

			if flags.Changed("capture") {
				capture, _ := flags.GetBool("capture")
				params.Capture = stripe.Bool(capture)
			}

			for key, value := range metadata {
				params.AddMetadata(key, value)
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			charge, err := client.Charges().Create(commandContext(cmd), params)
			if err != nil {
				return fmt.Errorf("failed to create charge: %w", err)
			}

			return app.renderCharge(charge)
		},
	}

	cmd.Flags().Int64("amount", 0, "amount in the smallest currency unit")
	cmd.Flags().String("currency", "", "three-letter ISO currency code")
	cmd.Flags().String("customer", "", "customer to charge")
	cmd.Flags().String("source", "", "payment source or token")
	cmd.Flags().String("description", "", "charge description")
	cmd.Flags().String("receipt-email", "", "email to send the receipt to")
	cmd.Flags().String("statement-descriptor", "", "text on the card statement")
	cmd.Flags().Bool("capture", true, "capture immediately")
	cmd.Flags().StringToStringVar(&metadata, "metadata", nil, "metadata key=value pairs")

	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("currency")

	return cmd
}

func newChargesGetCommand(app *App) *cobra.Command {
	var expand []string

	cmd := &cobra.Command{
		Use:   "get CHARGE_ID",
		Short: "Get charge details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			params := &stripe.ChargeRetrieveParams{}
			for _, field := range expand {
				params.AddExpand(field)
			}

			charge, err := client.Charges().Get(commandContext(cmd), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to get charge: %w", err)
			}

			return app.renderCharge(charge)
		},
	}

	cmd.Flags().StringSliceVar(&expand, "expand", nil, "fields to expand, e.g. customer")

	return cmd
}

func newChargesUpdateCommand(app *App) *cobra.Command {
	var metadata map[string]string

	cmd := &cobra.Command{
		Use:   "update CHARGE_ID",
		Short: "Update a charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			params := &stripe.ChargeUpdateParams{
				Customer:     stringFlag(flags, "customer"),
				Description:  stringFlag(flags, "description"),
				ReceiptEmail: stringFlag(flags, "receipt-email"),
			}

			for key, value := range metadata {
				params.AddMetadata(key, value)
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			charge, err := client.Charges().Update(commandContext(cmd), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to update charge: %w", err)
			}

			return app.renderCharge(charge)
		},
	}

	cmd.Flags().String("customer", "", "attach the charge to a customer")
	cmd.Flags().String("description", "", "charge description")
	cmd.Flags().String("receipt-email", "", "email to send the receipt to")
	cmd.Flags().StringToStringVar(&metadata, "metadata", nil, "metadata key=value pairs; an empty value removes the key")

	return cmd
}

func newChargesCaptureCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture CHARGE_ID",
		Short: "Capture an uncaptured charge",
		Long:  "Capture a charge created with --capture=false. --amount captures part of it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			params := &stripe.ChargeCaptureParams{
				Amount:       int64Flag(flags, "amount"),
				ReceiptEmail: stringFlag(flags, "receipt-email"),
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			charge, err := client.Charges().Capture(commandContext(cmd), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to capture charge: %w", err)
			}

			return app.renderCharge(charge)
		},
	}

	cmd.Flags().Int64("amount", 0, "amount to capture, defaults to the full amount")
	cmd.Flags().String("receipt-email", "", "email to send the receipt to")

	return cmd
}

func newChargesListCommand(app *App) *cobra.Command {
	var (
		flags    listFlags
		customer string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List charges",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			params := &stripe.ChargeListParams{ListParams: flags.listParams(), Created: flags.created()}
			if customer != "" {
				params.Customer = stripe.String(customer)
			}

			ctx := commandContext(cmd)

			if flags.All {
				charges, err := client.Charges().ListAll(ctx, params).All()
				if err != nil {
					return fmt.Errorf("failed to list charges: %w", err)
				}

				return app.renderCharges(charges, false, true)
			}

			page, err := client.Charges().List(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to list charges: %w", err)
			}

			return app.renderCharges(page.Data, page.HasMore, false)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&customer, "customer", "", "only charges of this customer")

	return cmd
}

func newChargesSearchCommand(app *App) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search charges",
		Long:  `Search charges with the search query language, for example "amount>999 AND status:'succeeded'"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			params := &stripe.ChargeSearchParams{SearchParams: flags.searchParams(args[0])}
			ctx := commandContext(cmd)

			if flags.All {
				charges, err := client.Charges().SearchAll(ctx, params).All()
				if err != nil {
					return fmt.Errorf("failed to search charges: %w", err)
				}

				return app.renderCharges(charges, false, true)
			}

			result, err := client.Charges().Search(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to search charges: %w", err)
			}

			return app.renderCharges(result.Data, result.HasMore, false)
		},
	}

	flags.register(cmd)

	return cmd
}

func chargeCustomerID(charge *stripe.Charge) string {
	if charge.Customer == nil {
		return ""
	}

	return charge.Customer.ID()
}

func (a *App) renderCharge(charge *stripe.Charge) error {
	return a.render(charge, func(table *tablewriter.Table) error {
		table.Header("Property", "Value")
		_ = table.Append("ID", charge.ID)
		_ = table.Append("Amount", formatAmount(charge.Amount, charge.Currency))
		_ = table.Append("Captured", formatAmount(charge.AmountCaptured, charge.Currency))
		_ = table.Append("Refunded", formatAmount(charge.AmountRefunded, charge.Currency))
		_ = table.Append("Status", formatValue(charge.Status.String()))
		_ = table.Append("Paid", formatBool(charge.Paid))
		_ = table.Append("Customer", formatValue(chargeCustomerID(charge)))
		_ = table.Append("Description", formatValue(charge.Description))
		_ = table.Append("Created", formatTimestamp(charge.Created))

		if charge.FailureCode != "" {
			_ = table.Append("Failure", charge.FailureCode+": "+charge.FailureMessage)
		}

		for _, key := range sortedKeys(charge.Metadata) {
			_ = table.Append("metadata."+key, charge.Metadata[key])
		}

		return nil
	})
}

func (a *App) renderCharges(charges []stripe.Charge, hasMore, all bool) error {
	if len(charges) == 0 && a.plainTable() {
		_, err := fmt.Fprintln(a.out, "No charges found")

		return err //nolint:wrapcheck
	}

	err := a.render(charges, func(table *tablewriter.Table) error {
		table.Header("ID", "Amount", "Status", "Captured", "Customer", "Created")

		for i := range charges {
			charge := &charges[i]
			_ = table.Append(
				charge.ID,
				formatAmount(charge.Amount, charge.Currency),
				formatValue(charge.Status.String()),
				formatBool(charge.Captured),
				formatValue(chargeCustomerID(charge)),
				formatTimestamp(charge.Created),
			)
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
