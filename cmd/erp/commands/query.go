package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command group. Its subcommands work
// offline and never contact the API.
func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Compile filters and query strings",
		Long:    "Translate criteria documents and query options into the filter and query-string syntax of an entity",
	}

	cmd.AddCommand(newQueryCompileCommand())
	cmd.AddCommand(newQueryBuildCommand())

	return cmd
}

func newQueryCompileCommand() *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "compile ENTITY",
		Short: "Compile criteria into a filter expression",
		Long: `Compile a JSON or YAML criteria document into the filter expression sent as
the q parameter. Pass "-" to read the document from standard input.`,
		Example: `  erp query compile accounts --where '{"code": "ABC", "currency": ["EUR", "USD"]}'
  erp query compile production-lines --where '{capacityPerHour: {gte: 100, lte: 500}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := erp.LookupEntity(args[0])
			if err != nil {
				return err
			}

			if where == "" {
				return constants.ErrDocumentRequired
			}

			doc, err := readDocument(cmd.InOrStdin(), where)
			if err != nil {
				return err
			}

			criteria, err := erp.ParseCriteria(doc)
			if err != nil {
				return fmt.Errorf("failed to parse criteria: %w", err)
			}

			filter, err := criteria.Compile(entity.Fields)
			if err != nil {
				return fmt.Errorf("failed to compile criteria: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), filter)

			return nil
		},
	}

	cmd.Flags().StringVarP(&where, "where", "w", "", "criteria document (JSON or YAML, - for stdin)")

	return cmd
}

type queryBuildFlags struct {
	where  string
	file   string
	fields []string
	sort   string
	limit  int
	offset int
	count  bool
}

func newQueryBuildCommand() *cobra.Command {
	flags := &queryBuildFlags{}

	cmd := &cobra.Command{
		Use:   "build ENTITY",
		Short: "Assemble a query string",
		Long: `Assemble the URL query string for listing an entity. Options are read from
an options document given with --file; individual flags override it.`,
		Example: `  erp query build accounts --where '{"isActive": true}' --fields code,title --sort "code desc" --limit 10
  erp query build location-codes --file options.yml --count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := erp.LookupEntity(args[0])
			if err != nil {
				return err
			}

			opts, err := buildQueryOptions(cmd, entity.Fields, flags)
			if err != nil {
				return err
			}

			query, err := erp.Assemble(entity.Fields, opts)
			if err != nil {
				return fmt.Errorf("failed to assemble query: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), query)

			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.where, "where", "w", "", "criteria document (JSON or YAML, - for stdin)")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "query options document")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")
	cmd.Flags().StringVar(&flags.sort, "sort", "", `sort fields and direction, e.g. "code,title desc"`)
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "maximum number of rows")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "number of rows to skip")
	cmd.Flags().BoolVar(&flags.count, "count", false, "request the total row count")

	return cmd
}

// buildQueryOptions merges the options document with explicitly set flags.
func buildQueryOptions(cmd *cobra.Command, table *erp.FieldTable, flags *queryBuildFlags) (*erp.QueryOptions, error) {
	opts := erp.NewQueryOptions()

	if flags.file != "" {
		data, err := os.ReadFile(filepath.Clean(flags.file))
		if err != nil {
			return nil, fmt.Errorf("failed to read options file: %w", err)
		}

		opts, err = erp.ParseQueryOptions(table, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse options file: %w", err)
		}
	}

	if flags.where != "" {
		doc, err := readDocument(cmd.InOrStdin(), flags.where)
		if err != nil {
			return nil, err
		}

		criteria, err := erp.ParseCriteria(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse criteria: %w", err)
		}

		_, err = opts.WithCriteria(table, criteria)
		if err != nil {
			return nil, fmt.Errorf("failed to compile criteria: %w", err)
		}
	}

	if cmd.Flags().Changed("fields") {
		opts.WithFields(flags.fields...)
	}

	if flags.sort != "" {
		sortSpec, err := erp.ParseSortString(flags.sort)
		if err != nil {
			return nil, err
		}

		opts.WithSort(sortSpec)
	}

	if cmd.Flags().Changed("limit") {
		opts.WithLimit(flags.limit)
	}

	if cmd.Flags().Changed("offset") {
		opts.WithOffset(flags.offset)
	}

	if cmd.Flags().Changed("count") {
		opts.WithCount(flags.count)
	}

	return opts, nil
}

// readDocument returns value itself, or standard input when value is "-".
func readDocument(stdin io.Reader, value string) ([]byte, error) {
	if strings.TrimSpace(value) != "-" {
		return []byte(value), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read document from stdin: %w", err)
	}

	return data, nil
}
