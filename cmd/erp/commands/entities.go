package commands

import (
	"strconv"
	"strings"

	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EntityInfo describes an entity for display.
type EntityInfo struct {
	Name        string      `json:"name"         yaml:"name"`
	DisplayName string      `json:"display_name" yaml:"display_name"`
	Path        string      `json:"path"         yaml:"path"`
	Fields      []FieldInfo `json:"fields"       yaml:"fields"`
}

// FieldInfo pairs a logical field name with its wire column.
type FieldInfo struct {
	Logical string `json:"logical" yaml:"logical"`
	Wire    string `json:"wire"    yaml:"wire"`
}

// NewEntitiesCommand creates the entities command.
func NewEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "entities [ENTITY]",
		Aliases: []string{"entity"},
		Short:   "List entities and their fields",
		Long:    "List the known entities, or show the logical to wire field mapping of one entity",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				entity, err := erp.LookupEntity(args[0])
				if err != nil {
					return err
				}

				info := describeEntity(entity)

				return render(cmd.OutOrStdout(), info, func(table *tablewriter.Table) error {
					table.Header("Logical", "Wire")

					for _, field := range info.Fields {
						_ = table.Append(field.Logical, field.Wire)
					}

					return nil
				})
			}

			infos := make([]EntityInfo, 0, len(erp.Entities()))
			for _, entity := range erp.Entities() {
				infos = append(infos, describeEntity(entity))
			}

			return render(cmd.OutOrStdout(), infos, func(table *tablewriter.Table) error {
				table.Header("Name", "Display Name", "Path", "Fields")

				for _, info := range infos {
					_ = table.Append(info.Name, info.DisplayName, info.Path, strconv.Itoa(len(info.Fields)))
				}

				return nil
			})
		},
	}
}

func describeEntity(entity erp.Entity) EntityInfo {
	wireNames := entity.Fields.WireNames()

	info := EntityInfo{
		Name:        entity.Name,
		DisplayName: displayName(entity.Name),
		Path:        entity.Path,
		Fields:      make([]FieldInfo, 0, len(wireNames)),
	}

	for _, wire := range wireNames {
		info.Fields = append(info.Fields, FieldInfo{Logical: erp.LogicalName(wire), Wire: wire})
	}

	return info
}

// displayName turns "item-alternatives" into "Item Alternatives".
func displayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
