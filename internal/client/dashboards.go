package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dashkit-io/gdash/internal/http"
	"github.com/dashkit-io/gdash/pkg/dashboard"
	"github.com/dashkit-io/gdash/pkg/grafana"
)

// DashboardsClient implements grafana.DashboardsClient.
type DashboardsClient struct {
	httpClient *http.Client
}

// NewDashboardsClient creates a new dashboards client.
func NewDashboardsClient(httpClient *http.Client) *DashboardsClient {
	return &DashboardsClient{
		httpClient: httpClient,
	}
}

// Get implements grafana.DashboardsClient.Get. Titles are slugged before
// hitting the by-slug endpoint, so "Main Dashboard" and "main-dashboard"
// address the same resource.
func (c *DashboardsClient) Get(ctx context.Context, title string) (grafana.Dashboard, error) {
	resp, err := c.httpClient.Get(ctx, "/api/dashboards/db/"+dashboard.Slug(title), nil)
	if err != nil {
		return nil, err
	}

	var dash grafana.Dashboard

	err = json.Unmarshal(resp.Body, &dash)
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard: %w", err)
	}

	// A body of JSON null unmarshals into a nil map
	if dash == nil {
		dash = grafana.Dashboard{}
	}

	dash["status"] = resp.StatusCode

	return dash, nil
}

// Save implements grafana.DashboardsClient.Save.
func (c *DashboardsClient) Save(ctx context.Context, dash grafana.Dashboard, overwrite bool) (grafana.Dashboard, error) {
	body := map[string]interface{}{
		"dashboard": dash,
		"overwrite": overwrite,
	}

	resp, err := c.httpClient.Post(ctx, "/api/dashboards/db", body)
	if err != nil {
		return nil, err
	}

	var result grafana.Dashboard

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing save response: %w", err)
	}

	return result, nil
}

// Delete implements grafana.DashboardsClient.Delete.
func (c *DashboardsClient) Delete(ctx context.Context, title string) error {
	_, err := c.httpClient.Delete(ctx, "/api/dashboards/db/"+dashboard.Slug(title))

	return err
}

// Search implements grafana.DashboardsClient.Search.
func (c *DashboardsClient) Search(ctx context.Context, query string) ([]grafana.DashboardHit, error) {
	var values url.Values

	if query != "" {
		values = url.Values{"query": []string{query}}
	}

	resp, err := c.httpClient.Get(ctx, "/api/search", values)
	if err != nil {
		return nil, err
	}

	var hits []grafana.DashboardHit

	err = json.Unmarshal(resp.Body, &hits)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	return hits, nil
}
