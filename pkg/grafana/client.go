package grafana

import (
	"context"
)

// DatasourcesClient provides CRUD operations against the datasource
// collection. Every call is synchronous and performs at most one network
// round trip, except name resolution which performs exactly one collection
// fetch before the targeted call. Nothing is cached between calls.
type DatasourcesClient interface {
	// List fetches the collection and maps it by server-assigned id. An
	// empty or unreachable collection yields ErrDatasourcesNotFound.
	List(ctx context.Context) (Datasources, error)
	// Resolve translates a name or id reference into the canonical numeric
	// id used by single-resource endpoints.
	Resolve(ctx context.Context, ref DatasourceRef) (int64, error)
	// Get fetches one datasource as its raw server representation.
	Get(ctx context.Context, ref DatasourceRef) (Datasource, error)
	// Create validates the parameter mapping and submits a new datasource.
	Create(ctx context.Context, params map[string]interface{}) (Datasource, error)
	// Update fetches the existing resource, overlays the caller's partial
	// fields, and submits the merge as a full replacement.
	Update(ctx context.Context, params map[string]interface{}) (Datasource, error)
	// Delete removes the datasource addressed by ref.
	Delete(ctx context.Context, ref DatasourceRef) error
}

// DashboardsClient provides dashboard bookkeeping operations. Dashboards
// are addressed by slug; titles are slugged before hitting the by-slug
// endpoints.
type DashboardsClient interface {
	Get(ctx context.Context, title string) (Dashboard, error)
	Save(ctx context.Context, dash Dashboard, overwrite bool) (Dashboard, error)
	Delete(ctx context.Context, title string) error
	Search(ctx context.Context, query string) ([]DashboardHit, error)
}

// Client is the top-level entry point, grouping resource clients behind
// accessors. Use pkg/gclient.New to construct one.
type Client interface {
	Datasources() DatasourcesClient
	Dashboards() DashboardsClient
}
