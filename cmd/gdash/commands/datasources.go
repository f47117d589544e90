package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"syscall"

	"github.com/dashkit-io/gdash/pkg/dashboard"
	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// NewDatasourceCommand creates the datasource command group.
func NewDatasourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasource",
		Aliases: []string{"datasources", "ds"},
		Short:   "Manage datasources",
		Long:    "List, create, update, and delete Grafana datasources by name or id",
	}

	cmd.AddCommand(newDatasourceListCommand())
	cmd.AddCommand(newDatasourceGetCommand())
	cmd.AddCommand(newDatasourceCreateCommand())
	cmd.AddCommand(newDatasourceUpdateCommand())
	cmd.AddCommand(newDatasourceDeleteCommand())

	return cmd
}

func newDatasourceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasources",
		Long:  "List all datasources registered with the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			datasources, err := client.Datasources().List(context.Background())
			if err != nil {
				if grafana.IsNotFound(err) {
					fmt.Println("No datasources found")
					return nil
				}

				return err
			}

			return outputDatasources(datasources)
		},
	}
}

func newDatasourceGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME_OR_ID",
		Short: "Get a datasource",
		Long:  "Fetch one datasource, addressed by name or numeric id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			datasource, err := client.Datasources().Get(context.Background(), refFromArg(args[0]))
			if err != nil {
				return err
			}

			return outputDatasource(datasource)
		},
	}
}

// DatasourceCreateOptions holds the options for creating a datasource.
type DatasourceCreateOptions struct {
	Type              string
	Name              string
	Database          string
	URL               string
	Access            string
	Default           bool
	BasicAuthUser     string
	BasicAuthPassword string
	PromptBasicAuth   bool
	JSONData          string
}

func newDatasourceCreateCommand() *cobra.Command {
	var opts DatasourceCreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a datasource",
		Long:  "Create a new datasource from the given provider settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasourceCreateCommand(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "provider type (e.g. graphite, prometheus)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "datasource name")
	cmd.Flags().StringVar(&opts.Database, "database", "", "database name")
	cmd.Flags().StringVar(&opts.URL, "url", "", "datasource URL")
	cmd.Flags().StringVar(&opts.Access, "access", "", "access mode (proxy or direct)")
	cmd.Flags().BoolVar(&opts.Default, "default", false, "mark as the default datasource")
	cmd.Flags().StringVar(&opts.BasicAuthUser, "basic-auth-user", "", "basic auth username for the datasource")
	cmd.Flags().StringVar(&opts.BasicAuthPassword, "basic-auth-password", "", "basic auth password for the datasource")
	cmd.Flags().BoolVar(&opts.PromptBasicAuth, "prompt-basic-auth", false, "prompt for the basic auth password")
	cmd.Flags().StringVar(&opts.JSONData, "json-data", "", "provider-specific settings as a JSON object")

	return cmd
}

func runDatasourceCreateCommand(opts DatasourceCreateOptions) error {
	client, err := CreateClient()
	if err != nil {
		return err
	}

	params := map[string]interface{}{
		"type":     opts.Type,
		"name":     opts.Name,
		"database": opts.Database,
		"url":      opts.URL,
	}

	if opts.Access != "" {
		params["access"] = opts.Access
	}

	if opts.Default {
		params["default"] = true
	}

	if opts.BasicAuthUser != "" {
		params["basicAuthUser"] = opts.BasicAuthUser
	}

	password := opts.BasicAuthPassword
	if opts.PromptBasicAuth {
		fmt.Fprint(os.Stderr, "Basic auth password: ")

		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))

		fmt.Fprintln(os.Stderr)

		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		password = string(passwordBytes)
	}

	if password != "" {
		params["basicAuthPassword"] = password
	}

	if opts.JSONData != "" {
		if !dashboard.IsValidJSON(opts.JSONData) {
			return &grafana.InvalidArgumentError{Message: "--json-data must be a valid JSON object"}
		}

		var jsonData map[string]interface{}
		if err := json.Unmarshal([]byte(opts.JSONData), &jsonData); err != nil {
			return fmt.Errorf("parsing --json-data: %w", err)
		}

		params["jsonData"] = jsonData
	}

	datasource, err := client.Datasources().Create(context.Background(), params)
	if err != nil {
		return err
	}

	return outputDatasource(datasource)
}

func newDatasourceUpdateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update NAME_OR_ID",
		Short: "Update a datasource",
		Long: `Update a datasource by merging the given fields over its current state.

The existing resource is fetched in full, the fields from --data are
overlaid (nested objects merge key-wise), and the result is submitted as
a full replacement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasourceUpdateCommand(args[0], data)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "fields to change, as a JSON object (required)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runDatasourceUpdateCommand(arg, data string) error {
	client, err := CreateClient()
	if err != nil {
		return err
	}

	if !dashboard.IsValidJSON(data) {
		return &grafana.InvalidArgumentError{Message: "--data must be a valid JSON object"}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return fmt.Errorf("parsing --data: %w", err)
	}

	ref := refFromArg(arg)

	params := map[string]interface{}{
		"data": fields,
	}

	if ref.IsName() {
		params["datasource"] = ref.Name()
	} else {
		params["datasource"] = ref.ID()
	}

	datasource, err := client.Datasources().Update(context.Background(), params)
	if err != nil {
		return err
	}

	return outputDatasource(datasource)
}

func newDatasourceDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME_OR_ID",
		Short: "Delete a datasource",
		Long:  "Delete a datasource, addressed by name or numeric id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			err = client.Datasources().Delete(context.Background(), refFromArg(args[0]))
			if err != nil {
				return err
			}

			fmt.Printf("Datasource %s deleted\n", args[0])

			return nil
		},
	}
}

func outputDatasources(datasources grafana.Datasources) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(datasources)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(datasources)
	default:
		ids := make([]int64, 0, len(datasources))
		for id := range datasources {
			ids = append(ids, id)
		}

		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Name", "Type", "URL", "Access", "Default")

		for _, id := range ids {
			ds := datasources[id]

			isDefault := No
			if cast.ToBool(ds["isDefault"]) {
				isDefault = Yes
			}

			table.Append(
				fmt.Sprintf("%d", id),
				ds.Name(),
				ds.Type(),
				cast.ToString(ds["url"]),
				cast.ToString(ds["access"]),
				isDefault,
			)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	return nil
}

func outputDatasource(datasource grafana.Datasource) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(datasource)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(datasource)
	default:
		keys := make([]string, 0, len(datasource))
		for key := range datasource {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Field", "Value")

		for _, key := range keys {
			table.Append(key, formatValue(datasource[key]))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	return nil
}
