package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outputFormat returns the --output value, defaulting to table.
func outputFormat() string {
	format := viper.GetString("output")
	if format == "" {
		return constants.OutputTable
	}

	return format
}

func validateOutputFormat(format string) error {
	switch format {
	case constants.OutputTable, constants.OutputJSON, constants.OutputYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

// render writes data as JSON or YAML, or hands a fresh table to fillTable.
func render(w io.Writer, data interface{}, fillTable func(table *tablewriter.Table) error) error {
	format := outputFormat()

	err := validateOutputFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case constants.OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	case constants.OutputYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(data)
	default:
		table := tablewriter.NewWriter(w)

		err := fillTable(table)
		if err != nil {
			return err
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// cells converts a row of strings for tablewriter's variadic Header and Append.
func cells(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}

	return out
}
