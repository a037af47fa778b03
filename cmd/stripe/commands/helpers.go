package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// Default values shared by the resource commands.
const (
	defaultPageSize       = 10
	defaultMaxConcurrency = 4
)

// listFlags holds the pagination flags of a list command.
type listFlags struct {
	Limit         int64
	StartingAfter string
	EndingBefore  string
	All           bool
	CreatedAfter  int64
	CreatedBefore int64
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.Limit, "limit", defaultPageSize, "results per page (1-100)")
	cmd.Flags().StringVar(&f.StartingAfter, "starting-after", "", "list items after this id")
	cmd.Flags().StringVar(&f.EndingBefore, "ending-before", "", "list items before this id")
	cmd.Flags().BoolVar(&f.All, "all", false, "fetch all pages")
	cmd.Flags().Int64Var(&f.CreatedAfter, "created-after", 0, "only items created at or after this unix time")
	cmd.Flags().Int64Var(&f.CreatedBefore, "created-before", 0, "only items created before this unix time")
	cmd.MarkFlagsMutuallyExclusive("starting-after", "ending-before")
}

func (f *listFlags) listParams() stripe.ListParams {
	params := stripe.ListParams{}

	if f.Limit > 0 {
		params.Limit = stripe.Int64(f.Limit)
	}

	switch {
	case f.StartingAfter != "":
		params.Cursor = stripe.StartingAfter(f.StartingAfter)
	case f.EndingBefore != "":
		params.Cursor = stripe.EndingBefore(f.EndingBefore)
	}

	return params
}

func (f *listFlags) created() *stripe.RangeQueryParams {
	if f.CreatedAfter == 0 && f.CreatedBefore == 0 {
		return nil
	}

	created := &stripe.RangeQueryParams{}
	if f.CreatedAfter != 0 {
		created.GreaterThanOrEqual = stripe.Int64(f.CreatedAfter)
	}

	if f.CreatedBefore != 0 {
		created.LesserThan = stripe.Int64(f.CreatedBefore)
	}

	return created
}

// searchFlags holds the flags of a search command.
type searchFlags struct {
	Limit int64
	Page  string
	All   bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.Limit, "limit", defaultPageSize, "results per page (1-100)")
	cmd.Flags().StringVar(&f.Page, "page", "", "next_page token of a previous search")
	cmd.Flags().BoolVar(&f.All, "all", false, "fetch all pages")
}

func (f *searchFlags) searchParams(query string) stripe.SearchParams {
	params := stripe.SearchParams{Query: query}

	if f.Limit > 0 {
		params.Limit = stripe.Int64(f.Limit)
	}

	if f.Page != "" {
		params.Page = stripe.String(f.Page)
	}

	return params
}

// stringFlag returns a pointer to the flag value when the flag was given.
func stringFlag(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}

	value, err := flags.GetString(name)
	if err != nil {
		return nil
	}

	return &value
}

// int64Flag returns a pointer to the flag value when the flag was given.
func int64Flag(flags *pflag.FlagSet, name string) *int64 {
	if !flags.Changed(name) {
		return nil
	}

	value, err := flags.GetInt64(name)
	if err != nil {
		return nil
	}

	return &value
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func formatTimestamp(unix int64) string {
	if unix == 0 {
		return NotAvailable
	}

	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func formatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, currency)
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// plainTable reports whether output is an unfiltered table.
func (a *App) plainTable() bool {
	output := a.viper.GetString(keyOutput)

	return (output == OutputFormatTable || output == "") && a.viper.GetString(keyQuery) == ""
}

// pageFooter is printed under a table that shows only the first page.
func (a *App) pageFooter(hasMore, all bool) {
	if hasMore && !all {
		_, _ = fmt.Fprintln(a.out, "\nMore results available. Use --all to fetch all pages.")
	}
}
