package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dashkit-io/gdash/pkg/gclient"
	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Common string constants used throughout the commands package.
const (
	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	Yes = "yes"
	No  = "no"
)

// Common static errors used throughout the commands package.
var (
	ErrNoAPIEndpointConfigured = errors.New("no API endpoint configured, use --api or GDASH_API")
)

// CreateClient builds a grafana.Client from the viper configuration.
func CreateClient() (grafana.Client, error) {
	endpoint := viper.GetString("api")
	if endpoint == "" {
		return nil, ErrNoAPIEndpointConfigured
	}

	config := &grafana.Config{
		APIEndpoint: endpoint,
		APIKey:      viper.GetString("token"),
		Username:    viper.GetString("username"),
		Password:    viper.GetString("password"),
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = &stderrLogger{}
	}

	client, err := gclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return client, nil
}

// formatValue renders a mapping value for table output; nested structures
// are shown as compact JSON.
func formatValue(value interface{}) string {
	switch value.(type) {
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}

		return string(data)
	default:
		return cast.ToString(value)
	}
}

// refFromArg interprets a positional argument as a datasource reference:
// all-digit arguments address by id, anything else by name.
func refFromArg(arg string) grafana.DatasourceRef {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return grafana.ByID(id)
	}

	return grafana.ByName(arg)
}

// stderrLogger writes structured log lines to stderr for --verbose runs.
type stderrLogger struct{}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	fmt.Fprintf(os.Stderr, "[%s] %s %v\n", level, msg, fields)
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("debug", msg, fields)
}

func (l *stderrLogger) Info(msg string, fields map[string]interface{}) {
	l.log("info", msg, fields)
}

func (l *stderrLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("warn", msg, fields)
}

func (l *stderrLogger) Error(msg string, fields map[string]interface{}) {
	l.log("error", msg, fields)
}
