package params

import (
	"testing"

	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_RequiredMissing(t *testing.T) {
	t.Parallel()

	_, err := Fetch(map[string]interface{}{}, "name", Spec{Required: true, Kinds: []Kind{String}})
	require.Error(t, err)

	var missingErr *grafana.MissingParameterError

	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "name", missingErr.Field)
	assert.Contains(t, err.Error(), "name")
}

func TestFetch_NilCountsAsAbsent(t *testing.T) {
	t.Parallel()

	p := map[string]interface{}{"access": nil}

	value, err := Fetch(p, "access", Spec{Kinds: []Kind{String}, Default: "proxy"})
	require.NoError(t, err)
	assert.Equal(t, "proxy", value)
}

func TestFetch_TypeMismatch(t *testing.T) {
	t.Parallel()

	p := map[string]interface{}{"name": 42}

	_, err := Fetch(p, "name", Spec{Required: true, Kinds: []Kind{String}})
	require.Error(t, err)

	var mismatchErr *grafana.TypeMismatchError

	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, "name", mismatchErr.Field)
	assert.Equal(t, "string", mismatchErr.Expected)
	assert.Equal(t, "integer", mismatchErr.Actual)
	assert.Contains(t, err.Error(), `"name"`)
	assert.Contains(t, err.Error(), "string")
	assert.Contains(t, err.Error(), "integer")
}

func TestFetch_CompositeKinds(t *testing.T) {
	t.Parallel()

	spec := Spec{Required: true, Kinds: []Kind{String, Int}}

	value, err := Fetch(map[string]interface{}{"datasource": "graphite"}, "datasource", spec)
	require.NoError(t, err)
	assert.Equal(t, "graphite", value)

	value, err = Fetch(map[string]interface{}{"datasource": 7}, "datasource", spec)
	require.NoError(t, err)
	assert.Equal(t, 7, value)

	_, err = Fetch(map[string]interface{}{"datasource": true}, "datasource", spec)
	require.Error(t, err)

	var mismatchErr *grafana.TypeMismatchError

	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, "string or integer", mismatchErr.Expected)
	assert.Equal(t, "boolean", mismatchErr.Actual)
}

func TestFetch_NumberKinds(t *testing.T) {
	t.Parallel()

	// Decoded JSON numbers arrive as float64; integral ones still satisfy Int.
	value, err := Fetch(map[string]interface{}{"id": float64(3)}, "id", Spec{Required: true, Kinds: []Kind{Int}})
	require.NoError(t, err)
	assert.InDelta(t, 3, value, 0)

	_, err = Fetch(map[string]interface{}{"id": 3.5}, "id", Spec{Required: true, Kinds: []Kind{Int}})
	require.Error(t, err)

	value, err = Fetch(map[string]interface{}{"span": 3.5}, "span", Spec{Required: true, Kinds: []Kind{Number}})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, value, 0)
}

func TestFetch_AnyKind(t *testing.T) {
	t.Parallel()

	value, err := Fetch(map[string]interface{}{"anything": []interface{}{1}}, "anything", Spec{Required: true})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1}, value)
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	p := map[string]interface{}{
		"name":    "graphite",
		"default": true,
		"jsonData": map[string]interface{}{
			"tlsSkipVerify": true,
		},
	}

	name, err := RequiredString(p, "name")
	require.NoError(t, err)
	assert.Equal(t, "graphite", name)

	access, err := OptionalString(p, "access", "proxy")
	require.NoError(t, err)
	assert.Equal(t, "proxy", access)

	isDefault, err := OptionalBool(p, "default", false)
	require.NoError(t, err)
	assert.True(t, isDefault)

	jsonData, err := OptionalMap(p, "jsonData")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"tlsSkipVerify": true}, jsonData)

	absent, err := OptionalMap(p, "secureJsonData")
	require.NoError(t, err)
	assert.Nil(t, absent)

	_, err = RequiredMap(p, "data")
	require.Error(t, err)
}
