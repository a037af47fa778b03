package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"

	NotAvailable = "N/A"
	Masked       = "***"
)

// ErrUnknownOutputFormat is returned for an --output value outside the known set.
var ErrUnknownOutputFormat = errors.New("output format must be table, json or yaml")

// tableFunc fills a table with the rows of one result.
type tableFunc func(table *tablewriter.Table) error

// render writes data in the selected output format. A --query expression
// switches table output to JSON since the filtered shape is unknown.
func (a *App) render(data interface{}, fillTable tableFunc) error {
	output := a.viper.GetString(keyOutput)
	expression := a.viper.GetString(keyQuery)

	if expression != "" {
		filtered, err := applyQuery(data, expression)
		if err != nil {
			return err
		}

		data = filtered

		if output != OutputFormatYAML {
			output = OutputFormatJSON
		}
	}

	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(a.out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(a.out)
		encoder.SetIndent(2)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close() //nolint:wrapcheck
	case OutputFormatTable, "":
		table := tablewriter.NewWriter(a.out)

		err := fillTable(table)
		if err != nil {
			return err
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutputFormat, output)
	}
}

// applyQuery runs a jq expression over data. The data is first converted to
// plain JSON values so struct tags decide the field names.
func applyQuery(data interface{}, expression string) (interface{}, error) {
	// Zsh escapes ! even inside single quotes.
	expression = strings.ReplaceAll(expression, `\!`, `!`)

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid query expression: %w", err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	var generic interface{}

	err = json.Unmarshal(raw, &generic)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	iter := query.Run(generic)

	var results []interface{}

	for {
		value, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := value.(error); isErr {
			return nil, fmt.Errorf("query error: %w", err)
		}

		results = append(results, value)
	}

	if len(results) == 1 {
		return results[0], nil
	}

	return results, nil
}

func formatValue(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}
