package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dashkit-io/gdash/internal/http"
	"github.com/dashkit-io/gdash/internal/params"
	"github.com/dashkit-io/gdash/pkg/grafana"
)

// DatasourcesClient implements grafana.DatasourcesClient.
type DatasourcesClient struct {
	httpClient *http.Client
}

// NewDatasourcesClient creates a new datasources client.
func NewDatasourcesClient(httpClient *http.Client) *DatasourcesClient {
	return &DatasourcesClient{
		httpClient: httpClient,
	}
}

// fetchList retrieves the collection in server order. Name resolution
// depends on that order: the first match wins when names are duplicated.
func (c *DatasourcesClient) fetchList(ctx context.Context) ([]grafana.Datasource, error) {
	resp, err := c.httpClient.Get(ctx, "/api/datasources", nil)
	if err != nil {
		return nil, err
	}

	var list []grafana.Datasource

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing datasource list: %w", err)
	}

	return list, nil
}

// List implements grafana.DatasourcesClient.List. An unreachable endpoint
// and an empty collection both yield the normalized not-found result, so
// identity resolution can treat them uniformly.
func (c *DatasourcesClient) List(ctx context.Context) (grafana.Datasources, error) {
	list, err := c.fetchList(ctx)
	if err != nil || len(list) == 0 {
		return nil, grafana.ErrDatasourcesNotFound
	}

	datasources := make(grafana.Datasources, len(list))
	for _, ds := range list {
		datasources[ds.ID()] = ds
	}

	return datasources, nil
}

// Resolve implements grafana.DatasourcesClient.Resolve. Numeric references
// pass through; name references cost one collection fetch. Id 0 is
// reserved on the server and always rejected.
func (c *DatasourcesClient) Resolve(ctx context.Context, ref grafana.DatasourceRef) (int64, error) {
	if !ref.IsName() {
		if ref.ID() == 0 {
			return 0, grafana.ErrZeroDatasourceID
		}

		return ref.ID(), nil
	}

	if ref.Name() == "" {
		return 0, grafana.ErrEmptyDatasourceRef
	}

	list, err := c.fetchList(ctx)
	if err != nil || len(list) == 0 {
		return 0, grafana.ErrDatasourcesNotFound
	}

	for _, ds := range list {
		if ds.Name() != ref.Name() {
			continue
		}

		if ds.ID() == 0 {
			return 0, grafana.ErrZeroDatasourceID
		}

		return ds.ID(), nil
	}

	return 0, &grafana.APIError{
		Status:  404,
		Message: fmt.Sprintf("No Datasource named %q found", ref.Name()),
	}
}

// Get implements grafana.DatasourcesClient.Get. The returned mapping is
// annotated with a "status" key carrying the response code; it is
// metadata, not persisted state, and is stripped again before any merge.
func (c *DatasourcesClient) Get(ctx context.Context, ref grafana.DatasourceRef) (grafana.Datasource, error) {
	id, err := c.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, fmt.Sprintf("/api/datasources/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var datasource grafana.Datasource

	err = json.Unmarshal(resp.Body, &datasource)
	if err != nil {
		return nil, fmt.Errorf("parsing datasource: %w", err)
	}

	// A body of JSON null unmarshals into a nil map
	if datasource == nil {
		datasource = grafana.Datasource{}
	}

	datasource["status"] = resp.StatusCode

	return datasource, nil
}

// Create implements grafana.DatasourcesClient.Create. Fields the caller
// left unset are omitted from the outgoing payload rather than sent as
// null.
func (c *DatasourcesClient) Create(ctx context.Context, p map[string]interface{}) (grafana.Datasource, error) {
	payload, err := buildCreatePayload(p)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/api/datasources", payload)
	if err != nil {
		return nil, err
	}

	var datasource grafana.Datasource

	err = json.Unmarshal(resp.Body, &datasource)
	if err != nil {
		return nil, fmt.Errorf("parsing create response: %w", err)
	}

	return datasource, nil
}

// buildCreatePayload validates the parameter mapping and assembles the
// outgoing resource representation.
func buildCreatePayload(p map[string]interface{}) (map[string]interface{}, error) {
	dsType, err := params.RequiredString(p, "type")
	if err != nil {
		return nil, err
	}

	if !grafana.ValidDatasourceType(dsType) {
		return nil, &grafana.InvalidArgumentError{
			Message: fmt.Sprintf("datasource type %q is not valid, allowed types: %s",
				dsType, strings.Join(grafana.AllowedDatasourceTypes, ", ")),
		}
	}

	name, err := params.RequiredString(p, "name")
	if err != nil {
		return nil, err
	}

	database, err := params.RequiredString(p, "database")
	if err != nil {
		return nil, err
	}

	dsURL, err := params.RequiredString(p, "url")
	if err != nil {
		return nil, err
	}

	access, err := params.OptionalString(p, "access", "proxy")
	if err != nil {
		return nil, err
	}

	isDefault, err := params.OptionalBool(p, "default", false)
	if err != nil {
		return nil, err
	}

	basicAuthUser, err := params.OptionalString(p, "basicAuthUser", "")
	if err != nil {
		return nil, err
	}

	basicAuthPassword, err := params.OptionalString(p, "basicAuthPassword", "")
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"type":      dsType,
		"name":      name,
		"database":  database,
		"url":       dsURL,
		"access":    access,
		"isDefault": isDefault,
		"basicAuth": basicAuthUser != "" || basicAuthPassword != "",
	}

	if basicAuthUser != "" {
		payload["basicAuthUser"] = basicAuthUser
	}

	if basicAuthPassword != "" {
		payload["basicAuthPassword"] = basicAuthPassword
	}

	for _, field := range []string{"user", "password", "jsonData", "secureJsonData"} {
		if value, ok := p[field]; ok && value != nil {
			payload[field] = value
		}
	}

	return payload, nil
}

// Update implements grafana.DatasourcesClient.Update: merge-update
// semantics. The existing resource is fetched in full, its status metadata
// stripped, caller fields overlaid (caller wins, nested mappings merge
// key-wise, everything else is replaced wholesale), and the merge
// submitted as a full replacement keyed by the resolved numeric id.
func (c *DatasourcesClient) Update(ctx context.Context, p map[string]interface{}) (grafana.Datasource, error) {
	data, err := params.RequiredMap(p, "data")
	if err != nil {
		return nil, err
	}

	refValue, err := params.Fetch(p, "datasource", params.Spec{
		Required: true,
		Kinds:    []params.Kind{params.String, params.Int},
	})
	if err != nil {
		return nil, err
	}

	ref, err := grafana.RefFrom(refValue)
	if err != nil {
		return nil, err
	}

	id, err := c.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	existing, err := c.Get(ctx, grafana.ByID(id))
	if err != nil {
		return nil, err
	}

	delete(existing, "status")

	canonical, err := canonicalMap(data)
	if err != nil {
		return nil, err
	}

	merged := mergeMaps(existing, canonical)

	resp, err := c.httpClient.Put(ctx, fmt.Sprintf("/api/datasources/%d", id), merged)
	if err != nil {
		return nil, err
	}

	var datasource grafana.Datasource

	err = json.Unmarshal(resp.Body, &datasource)
	if err != nil {
		return nil, fmt.Errorf("parsing update response: %w", err)
	}

	return datasource, nil
}

// Delete implements grafana.DatasourcesClient.Delete.
func (c *DatasourcesClient) Delete(ctx context.Context, ref grafana.DatasourceRef) error {
	id, err := c.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, fmt.Sprintf("/api/datasources/%d", id))

	return err
}
