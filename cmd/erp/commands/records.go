package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	flags := &queryBuildFlags{}

	cmd := &cobra.Command{
		Use:     "list ENTITY",
		Aliases: []string{"ls"},
		Short:   "List entity records",
		Long:    "List records of an entity, filtered by a criteria document and shaped by query options",
		Example: `  erp list accounts --where '{"currency": ["EUR", "USD"]}' --fields code,title,balance
  erp list production-lines --sort "code desc" --limit 10 --count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			entity, err := erp.LookupEntity(args[0])
			if err != nil {
				return err
			}

			opts, err := buildQueryOptions(cmd, entity.Fields, flags)
			if err != nil {
				return err
			}

			if opts.Limit == nil {
				opts.WithLimit(constants.DefaultListLimit)
			}

			columns, err := listColumns(entity.Fields, opts.Fields)
			if err != nil {
				return err
			}

			records, err := recordsClient(ctx, entity.Name)
			if err != nil {
				return err
			}

			list, err := records.GetAll(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", entity.Name, err)
			}

			err = render(cmd.OutOrStdout(), list, func(table *tablewriter.Table) error {
				table.Header(cells(columns)...)

				for _, record := range list.Data {
					row := make([]string, len(columns))
					for i, column := range columns {
						row[i] = cellValue(record[column])
					}

					_ = table.Append(cells(row)...)
				}

				return nil
			})
			if err != nil {
				return err
			}

			if list.Count != nil && outputFormat() == constants.OutputTable {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\n", *list.Count)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.where, "where", "w", "", "criteria document (JSON or YAML, - for stdin)")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "query options document")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")
	cmd.Flags().StringVar(&flags.sort, "sort", "", `sort fields and direction, e.g. "code,title desc"`)
	cmd.Flags().IntVar(&flags.limit, "limit", constants.DefaultListLimit, "maximum number of rows")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "number of rows to skip")
	cmd.Flags().BoolVar(&flags.count, "count", false, "request the total row count")

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENTITY ID",
		Short: "Get an entity record",
		Long:  "Fetch a single record of an entity by its key",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			entity, err := erp.LookupEntity(args[0])
			if err != nil {
				return err
			}

			records, err := recordsClient(ctx, entity.Name)
			if err != nil {
				return err
			}

			record, err := records.GetByID(ctx, args[1])
			if err != nil {
				return fmt.Errorf("failed to get %s %q: %w", entity.Name, args[1], err)
			}

			return render(cmd.OutOrStdout(), record, func(table *tablewriter.Table) error {
				table.Header("Field", "Value")

				for _, column := range recordColumns(entity.Fields, *record) {
					_ = table.Append(column, cellValue((*record)[column]))
				}

				return nil
			})
		},
	}
}

func recordsClient(ctx context.Context, entity string) (erp.EntityClient[erp.Record], error) {
	client, err := createClient(ctx)
	if err != nil {
		return nil, err
	}

	return client.Records(entity)
}

// listColumns returns the wire columns shown by `erp list`: the selected
// fields, or every column of the entity.
func listColumns(table *erp.FieldTable, fields []string) ([]string, error) {
	if len(fields) == 0 {
		return table.WireNames(), nil
	}

	columns, err := table.WireAll(fields)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}

	return columns, nil
}

// recordColumns orders a record's keys: known columns first in table order,
// then any extra keys sorted.
func recordColumns(table *erp.FieldTable, record erp.Record) []string {
	columns := make([]string, 0, len(record))
	seen := make(map[string]bool, len(record))

	for _, wire := range table.WireNames() {
		if _, ok := record[wire]; ok {
			columns = append(columns, wire)
			seen[wire] = true
		}
	}

	var extra []string

	for key := range record {
		if !seen[key] {
			extra = append(extra, key)
		}
	}

	sort.Strings(extra)

	return append(columns, extra...)
}

func cellValue(value interface{}) string {
	if value == nil {
		return ""
	}

	return fmt.Sprint(value)
}
