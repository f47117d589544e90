package grafana_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasourceAccessors(t *testing.T) {
	t.Parallel()

	var datasource grafana.Datasource

	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "name": "graphite", "type": "graphite"}`), &datasource))

	assert.Equal(t, int64(7), datasource.ID())
	assert.Equal(t, "graphite", datasource.Name())
	assert.Equal(t, "graphite", datasource.Type())

	empty := grafana.Datasource{}
	assert.Equal(t, int64(0), empty.ID())
	assert.Empty(t, empty.Name())
	assert.Empty(t, empty.Type())
}

func TestRefFrom(t *testing.T) {
	t.Parallel()

	t.Run("string addresses by name", func(t *testing.T) {
		t.Parallel()

		ref, err := grafana.RefFrom("graphite")
		require.NoError(t, err)
		assert.True(t, ref.IsName())
		assert.Equal(t, "graphite", ref.Name())
	})

	t.Run("integer kinds address by id", func(t *testing.T) {
		t.Parallel()

		for _, value := range []interface{}{7, int64(7), float64(7), json.Number("7")} {
			ref, err := grafana.RefFrom(value)
			require.NoError(t, err, "value %T", value)
			assert.False(t, ref.IsName())
			assert.Equal(t, int64(7), ref.ID())
		}
	})

	t.Run("empty string is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := grafana.RefFrom("")
		require.ErrorIs(t, err, grafana.ErrEmptyDatasourceRef)
	})

	t.Run("unusable values are argument errors", func(t *testing.T) {
		t.Parallel()

		for _, value := range []interface{}{nil, true, []interface{}{1}} {
			_, err := grafana.RefFrom(value)

			var invalidErr *grafana.InvalidArgumentError

			require.ErrorAs(t, err, &invalidErr, "value %T", value)
		}
	})
}

func TestDatasourceRefString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "graphite", grafana.ByName("graphite").String())
	assert.Equal(t, "7", grafana.ByID(7).String())
}

func TestValidDatasourceType(t *testing.T) {
	t.Parallel()

	for _, allowed := range grafana.AllowedDatasourceTypes {
		assert.True(t, grafana.ValidDatasourceType(allowed), allowed)
	}

	assert.False(t, grafana.ValidDatasourceType("bogus"))
	assert.False(t, grafana.ValidDatasourceType(""))
	assert.False(t, grafana.ValidDatasourceType("Graphite"))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, grafana.IsNotFound(grafana.ErrDatasourcesNotFound))
	assert.True(t, grafana.IsNotFound(fmt.Errorf("looking up: %w", grafana.ErrDatasourcesNotFound)))
	assert.False(t, grafana.IsNotFound(&grafana.APIError{Status: 500, Message: "boom"}))
	assert.False(t, grafana.IsNotFound(errors.New("plain error")))
	assert.False(t, grafana.IsNotFound(nil))
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	err := &grafana.APIError{Status: 404, Message: "No Datasources found"}
	assert.Equal(t, "No Datasources found (status: 404)", err.Error())
}
