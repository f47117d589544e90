package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dashkit-io/gdash/internal/constants"
	"github.com/dashkit-io/gdash/pkg/dashboard"
	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewDashboardCommand creates the dashboard command group.
func NewDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dashboards", "db"},
		Short:   "Manage dashboards",
		Long:    "Search, fetch, import, and normalize Grafana dashboards",
	}

	cmd.AddCommand(newDashboardSearchCommand())
	cmd.AddCommand(newDashboardGetCommand())
	cmd.AddCommand(newDashboardDeleteCommand())
	cmd.AddCommand(newDashboardImportCommand())
	cmd.AddCommand(newDashboardNormalizeCommand())
	cmd.AddCommand(newDashboardSlugCommand())

	return cmd
}

func newDashboardSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search dashboards",
		Long:  "Search dashboards by title; with no query, list everything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			hits, err := client.Dashboards().Search(context.Background(), query)
			if err != nil {
				return err
			}

			return outputDashboardHits(hits)
		},
	}
}

func newDashboardGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TITLE_OR_SLUG",
		Short: "Get a dashboard",
		Long:  "Fetch one dashboard; titles are slugged before the lookup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			dash, err := client.Dashboards().Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			return encoder.Encode(dash)
		},
	}
}

func newDashboardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TITLE_OR_SLUG",
		Short: "Delete a dashboard",
		Long:  "Delete a dashboard; titles are slugged before the lookup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			err = client.Dashboards().Delete(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Dashboard %q deleted\n", args[0])

			return nil
		},
	}
}

func newDashboardImportCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a dashboard",
		Long:  "Import a dashboard JSON file, normalizing its panel ids first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboardImportCommand(args[0], overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite an existing dashboard with the same slug")

	return cmd
}

func runDashboardImportCommand(path string, overwrite bool) error {
	client, err := CreateClient()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dashboard file: %w", err)
	}

	normalized, err := dashboard.RegenerateTemplateIDs(raw)
	if err != nil {
		return err
	}

	var dash grafana.Dashboard
	if err := json.Unmarshal(normalized, &dash); err != nil {
		return fmt.Errorf("parsing dashboard file: %w", err)
	}

	result, err := client.Dashboards().Save(context.Background(), dash, overwrite)
	if err != nil {
		return err
	}

	fmt.Printf("Dashboard imported: %v\n", result["slug"])

	return nil
}

func newDashboardNormalizeCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Normalize a dashboard template",
		Long: `Reassign every panel id in the template to the canonical sequence.

Panel ids are renumbered from 10 upward, row by row, with the counter
running continuously across rows. All other fields pass through
untouched. The result is written to stdout unless --out is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboardNormalizeCommand(args[0], outFile)
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the normalized template to a file")

	return cmd
}

func runDashboardNormalizeCommand(path, outFile string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dashboard file: %w", err)
	}

	normalized, err := dashboard.RegenerateTemplateIDs(raw)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := os.WriteFile(outFile, normalized, constants.ConfigFilePerm); err != nil {
			return fmt.Errorf("writing normalized template: %w", err)
		}

		return nil
	}

	fmt.Println(string(normalized))

	return nil
}

func newDashboardSlugCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "slug TITLE",
		Short: "Slug a dashboard title",
		Long:  "Print the slug the by-slug endpoints expect for the given title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(dashboard.Slug(args[0]))
			return nil
		},
	}
}

func outputDashboardHits(hits []grafana.DashboardHit) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(hits)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(hits)
	default:
		if len(hits) == 0 {
			fmt.Println("No dashboards found")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Title", "URI", "Tags", "Starred")

		for _, hit := range hits {
			starred := No
			if hit.IsStarred {
				starred = Yes
			}

			table.Append(
				fmt.Sprintf("%d", hit.ID),
				hit.Title,
				hit.URI,
				strings.Join(hit.Tags, ", "),
				starred,
			)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	return nil
}
