// Package client implements the grafana.Client interface on top of the
// internal HTTP transport.
package client

import (
	"github.com/dashkit-io/gdash/internal/http"
	"github.com/dashkit-io/gdash/pkg/grafana"
)

// Client implements the grafana.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     grafana.Logger

	// Resource clients
	datasources grafana.DatasourcesClient
	dashboards  grafana.DashboardsClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *grafana.Config) []http.Option {
	var httpOpts []http.Option

	switch {
	case config.APIKey != "":
		httpOpts = append(httpOpts, http.WithAPIKey(config.APIKey))
	case config.Username != "":
		httpOpts = append(httpOpts, http.WithBasicAuth(config.Username, config.Password))
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return httpOpts
}

// New creates a new Grafana API client.
func New(config *grafana.Config) (*Client, error) {
	if config == nil {
		return nil, grafana.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, grafana.ErrAPIEndpointRequired
	}

	httpClient := http.NewClient(config.APIEndpoint, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient: httpClient,
		baseURL:    config.APIEndpoint,
		logger:     config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// Datasources implements grafana.Client.Datasources.
func (c *Client) Datasources() grafana.DatasourcesClient {
	return c.datasources
}

// Dashboards implements grafana.Client.Dashboards.
func (c *Client) Dashboards() grafana.DashboardsClient {
	return c.dashboards
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.datasources = NewDatasourcesClient(c.httpClient)
	c.dashboards = NewDashboardsClient(c.httpClient)
}

// loggerAdapter adapts grafana.Logger to http.Logger.
type loggerAdapter struct {
	logger grafana.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
