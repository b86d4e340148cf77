package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TYPE ID",
		Short: "Get a resource",
		Long:  "Fetch a single resource by type and id",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cli, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			defer cli.Close()

			resource, err := cli.Resources(args[0]).Get(ctx, args[1])
			if err != nil {
				if aidbox.IsNotFound(err) {
					return fmt.Errorf("%s/%s: %w", args[0], args[1], err)
				}

				return fmt.Errorf("failed to get %s/%s: %w", args[0], args[1], err)
			}

			return renderResource(cmd.OutOrStdout(), resource)
		},
	}
}

// searchFlags are the query options shared by search and count.
type searchFlags struct {
	filters []string
	sort    []string
	limit   int
	page    int
}

func (f *searchFlags) register(cmd *cobra.Command, paging bool) {
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "search parameter as key=value (repeatable)")

	if paging {
		cmd.Flags().IntVarP(&f.limit, "limit", "l", 0, "page size")
		cmd.Flags().IntVar(&f.page, "page", 0, "page number, starting at 1")
		cmd.Flags().StringSliceVarP(&f.sort, "sort", "s", nil, "sort keys, prefix with - for descending")
	}
}

func (f *searchFlags) apply(set *aidbox.SearchSet) (*aidbox.SearchSet, error) {
	filters, err := parseFilters(f.filters)
	if err != nil {
		return nil, err
	}

	if len(filters) > 0 {
		set = set.Search(filters)
	}

	if f.limit > 0 {
		set = set.Limit(f.limit)
	}

	if f.page > 0 {
		set = set.Page(f.page)
	}

	if len(f.sort) > 0 {
		set = set.Sort(f.sort...)
	}

	return set, nil
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var (
		flags searchFlags
		first bool
	)

	cmd := &cobra.Command{
		Use:   "search TYPE",
		Short: "Search resources",
		Long: `Search resources of a type.

Filters are passed to the server as search parameters, for example
--filter name=Jane --filter birthdate=gt1990-01-01.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cli, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			defer cli.Close()

			set, err := flags.apply(cli.Resources(args[0]))
			if err != nil {
				return err
			}

			if first {
				resource, err := set.First(ctx)
				if err != nil {
					return fmt.Errorf("failed to search %s: %w", args[0], err)
				}

				if resource == nil {
					return renderResources(cmd.OutOrStdout(), nil)
				}

				return renderResource(cmd.OutOrStdout(), resource)
			}

			resources, err := set.All(ctx)
			if err != nil {
				return fmt.Errorf("failed to search %s: %w", args[0], err)
			}

			return renderResources(cmd.OutOrStdout(), resources)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVar(&first, "first", false, "show only the first match")

	return cmd
}

// NewCountCommand creates the count command.
func NewCountCommand() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "count TYPE",
		Short: "Count resources",
		Long:  "Ask the server how many resources of a type match the filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cli, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			defer cli.Close()

			set, err := flags.apply(cli.Resources(args[0]))
			if err != nil {
				return err
			}

			count, err := set.Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", args[0], err)
			}

			done, err := encode(cmd.OutOrStdout(), map[string]interface{}{
				"resource_type": args[0],
				"count":         count,
			})
			if done || err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), count)

			return nil
		},
	}

	flags.register(cmd, false)

	return cmd
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema TYPE",
		Short: "Show a resource type's fields",
		Long:  "List the fields the server defines for a resource type, as the client names them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cli, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			defer cli.Close()

			schema, err := cli.Schema(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get schema of %s: %w", args[0], err)
			}

			done, err := encode(cmd.OutOrStdout(), map[string]interface{}{
				"resource_type": schema.ResourceType(),
				"fields":        schema.Fields(),
			})
			if done || err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Field")

			for _, field := range schema.Fields() {
				err = table.Append(field)
				if err != nil {
					return fmt.Errorf("failed to append table row: %w", err)
				}
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}
