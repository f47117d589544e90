// Package gclient provides the main entry point for creating Grafana API clients.
package gclient

import (
	"fmt"
	"strings"

	"github.com/dashkit-io/gdash/internal/client"
	"github.com/dashkit-io/gdash/pkg/grafana"
)

// New creates a new Grafana API client from config.
func New(config *grafana.Config) (grafana.Client, error) {
	if config == nil {
		return nil, grafana.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, grafana.ErrAPIEndpointRequired
	}

	// Normalize API endpoint
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	config.APIEndpoint = apiEndpoint

	grafanaClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return grafanaClient, nil
}
