package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	internalhttp "github.com/dashkit-io/gdash/internal/http"
	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(serverURL string) *internalhttp.Client {
	return internalhttp.NewClient(serverURL,
		internalhttp.WithRetryConfig(0, time.Millisecond, time.Millisecond))
}

func listHandler(t *testing.T, list []grafana.Datasource) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/datasources", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func TestDatasourcesClient_List(t *testing.T) {
	server := httptest.NewServer(listHandler(t, []grafana.Datasource{
		{"id": float64(1), "name": "graphite", "type": "graphite"},
		{"id": float64(2), "name": "events", "type": "elasticsearch"},
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	result, err := datasources.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "graphite", result[1].Name())
	assert.Equal(t, "elasticsearch", result[2].Type())
}

func TestDatasourcesClient_List_Empty(t *testing.T) {
	server := httptest.NewServer(listHandler(t, []grafana.Datasource{}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	_, err := datasources.List(context.Background())
	require.Error(t, err)

	apiErr := &grafana.APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "No Datasources found", apiErr.Message)
}

func TestDatasourcesClient_List_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	server.Close() // connection refused from here on

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	_, err := datasources.List(context.Background())
	require.Error(t, err)

	apiErr := &grafana.APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "No Datasources found", apiErr.Message)
}

func TestDatasourcesClient_Resolve(t *testing.T) {
	server := httptest.NewServer(listHandler(t, []grafana.Datasource{
		{"id": float64(7), "name": "graphite", "type": "graphite"},
		{"id": float64(8), "name": "graphite", "type": "graphite"},
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	t.Run("numeric id passes through without a fetch", func(t *testing.T) {
		id, err := datasources.Resolve(context.Background(), grafana.ByID(42))
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("id 0 is rejected", func(t *testing.T) {
		_, err := datasources.Resolve(context.Background(), grafana.ByID(0))
		require.ErrorIs(t, err, grafana.ErrZeroDatasourceID)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := datasources.Resolve(context.Background(), grafana.ByName(""))
		require.ErrorIs(t, err, grafana.ErrEmptyDatasourceRef)
	})

	t.Run("name resolves to first match in server order", func(t *testing.T) {
		id, err := datasources.Resolve(context.Background(), grafana.ByName("graphite"))
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("unmatched name yields a 404 result", func(t *testing.T) {
		_, err := datasources.Resolve(context.Background(), grafana.ByName("missing"))
		require.Error(t, err)
		assert.True(t, grafana.IsNotFound(err))
	})
}

func TestDatasourcesClient_Resolve_ListedZeroID(t *testing.T) {
	server := httptest.NewServer(listHandler(t, []grafana.Datasource{
		{"id": float64(0), "name": "broken"},
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	// A listed resource carrying the reserved id is as unroutable as a
	// direct reference to it
	_, err := datasources.Resolve(context.Background(), grafana.ByName("broken"))
	require.ErrorIs(t, err, grafana.ErrZeroDatasourceID)
}

func TestDatasourcesClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/datasources/5", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		_ = json.NewEncoder(w).Encode(grafana.Datasource{
			"id":     5,
			"name":   "graphite",
			"type":   "graphite",
			"url":    "http://graphite:8080",
			"access": "proxy",
		})
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	datasource, err := datasources.Get(context.Background(), grafana.ByID(5))
	require.NoError(t, err)
	assert.Equal(t, "graphite", datasource.Name())
	// Reads are annotated with the response status
	assert.Equal(t, 200, datasource["status"])
}

func TestDatasourcesClient_Get_NullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	// A 2xx response with a null body still yields an annotated mapping
	datasource, err := datasources.Get(context.Background(), grafana.ByID(5))
	require.NoError(t, err)
	require.NotNil(t, datasource)
	assert.Equal(t, 200, datasource["status"])
}

func TestDatasourcesClient_Create(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/datasources", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(grafana.Datasource{"id": 9, "name": received["name"]})
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	created, err := datasources.Create(context.Background(), map[string]interface{}{
		"type":          "graphite",
		"name":          "graphite",
		"database":      "metrics",
		"url":           "http://graphite:8080",
		"basicAuthUser": "metrics-ro",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID())

	// Defaults applied
	assert.Equal(t, "proxy", received["access"])
	assert.Equal(t, false, received["isDefault"])
	// basicAuth derived from the supplied username
	assert.Equal(t, true, received["basicAuth"])
	assert.Equal(t, "metrics-ro", received["basicAuthUser"])
	// Unset fields are omitted, not sent as null
	assert.NotContains(t, received, "basicAuthPassword")
	assert.NotContains(t, received, "jsonData")
	assert.NotContains(t, received, "password")
}

func TestDatasourcesClient_Create_InvalidType(t *testing.T) {
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	_, err := datasources.Create(context.Background(), map[string]interface{}{
		"type":     "bogus",
		"name":     "n",
		"database": "d",
		"url":      "http://x",
	})
	require.Error(t, err)

	var invalidErr *grafana.InvalidArgumentError

	require.ErrorAs(t, err, &invalidErr)
	assert.Contains(t, err.Error(), `"bogus"`)
	assert.Contains(t, err.Error(), "graphite")
	assert.Contains(t, err.Error(), "prometheus")

	// Argument errors are raised before any network call
	assert.Equal(t, 0, requests)
}

func TestDatasourcesClient_Create_MissingField(t *testing.T) {
	datasources := NewDatasourcesClient(newTestTransport("http://127.0.0.1:0"))

	_, err := datasources.Create(context.Background(), map[string]interface{}{
		"type": "graphite",
		"name": "graphite",
		"url":  "http://x",
	})
	require.Error(t, err)

	var missingErr *grafana.MissingParameterError

	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "database", missingErr.Field)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDatasourcesClient_Update(t *testing.T) {
	existing := grafana.Datasource{
		"id":     float64(1),
		"name":   "graphite",
		"type":   "graphite",
		"access": "proxy",
		"url":    "http://old:8080",
		"jsonData": map[string]interface{}{
			"tlsSkipVerify": false,
			"timeout":       float64(5),
		},
	}

	var submitted map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "GET" && r.URL.Path == "/api/datasources":
			_ = json.NewEncoder(w).Encode([]grafana.Datasource{existing})
		case r.Method == "GET" && r.URL.Path == "/api/datasources/1":
			_ = json.NewEncoder(w).Encode(existing)
		case r.Method == "PUT" && r.URL.Path == "/api/datasources/1":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "message": "Datasource updated"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	result, err := datasources.Update(context.Background(), map[string]interface{}{
		"datasource": "graphite",
		"data": map[string]interface{}{
			"url": "http://x:1",
			"jsonData": map[string]interface{}{
				"tlsSkipVerify": true,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ID())

	// Caller fields win
	assert.Equal(t, "http://x:1", submitted["url"])
	// All other fields survive the merge untouched
	assert.Equal(t, "graphite", submitted["type"])
	assert.Equal(t, "proxy", submitted["access"])
	assert.Equal(t, "graphite", submitted["name"])
	// Nested mappings merge key-wise
	jsonData := submitted["jsonData"].(map[string]interface{})
	assert.Equal(t, true, jsonData["tlsSkipVerify"])
	assert.InDelta(t, 5, jsonData["timeout"], 0)
	// The status annotation from the read is metadata, never persisted
	assert.NotContains(t, submitted, "status")
}

func TestDatasourcesClient_Update_BadArguments(t *testing.T) {
	datasources := NewDatasourcesClient(newTestTransport("http://127.0.0.1:0"))

	t.Run("missing data", func(t *testing.T) {
		_, err := datasources.Update(context.Background(), map[string]interface{}{
			"datasource": "graphite",
		})

		var missingErr *grafana.MissingParameterError

		require.ErrorAs(t, err, &missingErr)
		assert.Equal(t, "data", missingErr.Field)
	})

	t.Run("reference of the wrong type", func(t *testing.T) {
		_, err := datasources.Update(context.Background(), map[string]interface{}{
			"datasource": true,
			"data":       map[string]interface{}{"url": "http://x"},
		})

		var mismatchErr *grafana.TypeMismatchError

		require.ErrorAs(t, err, &mismatchErr)
		assert.Equal(t, "datasource", mismatchErr.Field)
	})
}

func TestDatasourcesClient_Delete(t *testing.T) {
	deleted := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "GET" && r.URL.Path == "/api/datasources":
			_ = json.NewEncoder(w).Encode([]grafana.Datasource{
				{"id": float64(3), "name": "events"},
			})
		case r.Method == "DELETE" && r.URL.Path == "/api/datasources/3":
			deleted = true

			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Data source deleted"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	datasources := NewDatasourcesClient(newTestTransport(server.URL))

	err := datasources.Delete(context.Background(), grafana.ByName("events"))
	require.NoError(t, err)
	assert.True(t, deleted)
}
