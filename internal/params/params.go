// Package params implements the parameter-contract checks shared by all
// resource operations: required/optional presence and expected-kind
// validation over dynamically shaped parameter mappings. It is
// side-effect-free and performs no I/O.
package params

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/spf13/cast"
)

// Kind names the shapes a parameter value may take. Specs may list several
// kinds for one field (composite kinds), in which case any of them passes.
type Kind int

const (
	String Kind = iota + 1
	Int
	Number
	Bool
	Map
	Slice
)

// String implements fmt.Stringer; the names appear in mismatch messages.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "integer"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Map:
		return "map"
	case Slice:
		return "list"
	default:
		return "unknown"
	}
}

// Spec is the contract for a single field.
type Spec struct {
	Required bool
	Kinds    []Kind
	Default  interface{}
}

// Fetch returns the field's value from p, or Spec.Default when the field
// is optional and absent. A required absent field yields a
// MissingParameterError; a present value of the wrong kind yields a
// TypeMismatchError naming the field, the expected kinds, and the actual
// one encountered.
func Fetch(p map[string]interface{}, field string, spec Spec) (interface{}, error) {
	value, present := p[field]
	if !present || value == nil {
		if spec.Required {
			return nil, &grafana.MissingParameterError{Field: field}
		}

		return spec.Default, nil
	}

	if len(spec.Kinds) == 0 {
		return value, nil
	}

	actual := kindOf(value)
	for _, k := range spec.Kinds {
		if actual == k || (k == Number && actual == Int) {
			return value, nil
		}
	}

	return nil, &grafana.TypeMismatchError{
		Field:    field,
		Expected: kindNames(spec.Kinds),
		Actual:   actual.String(),
	}
}

// RequiredString fetches a mandatory string field.
func RequiredString(p map[string]interface{}, field string) (string, error) {
	value, err := Fetch(p, field, Spec{Required: true, Kinds: []Kind{String}})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}

// OptionalString fetches an optional string field with a default.
func OptionalString(p map[string]interface{}, field, def string) (string, error) {
	value, err := Fetch(p, field, Spec{Kinds: []Kind{String}, Default: def})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}

// OptionalBool fetches an optional boolean field with a default.
func OptionalBool(p map[string]interface{}, field string, def bool) (bool, error) {
	value, err := Fetch(p, field, Spec{Kinds: []Kind{Bool}, Default: def})
	if err != nil {
		return false, err
	}

	return value.(bool), nil
}

// RequiredMap fetches a mandatory mapping field.
func RequiredMap(p map[string]interface{}, field string) (map[string]interface{}, error) {
	value, err := Fetch(p, field, Spec{Required: true, Kinds: []Kind{Map}})
	if err != nil {
		return nil, err
	}

	return value.(map[string]interface{}), nil
}

// OptionalMap fetches an optional mapping field; absent yields nil.
func OptionalMap(p map[string]interface{}, field string) (map[string]interface{}, error) {
	value, err := Fetch(p, field, Spec{Kinds: []Kind{Map}})
	if err != nil {
		return nil, err
	}

	if value == nil {
		return nil, nil
	}

	return value.(map[string]interface{}), nil
}

func kindOf(value interface{}) Kind {
	switch v := value.(type) {
	case string:
		return String
	case bool:
		return Bool
	case map[string]interface{}:
		return Map
	case []interface{}:
		return Slice
	case json.Number:
		if _, err := cast.ToInt64E(v); err == nil {
			return Int
		}

		return Number
	case float32:
		if float64(v) == math.Trunc(float64(v)) {
			return Int
		}

		return Number
	case float64:
		if v == math.Trunc(v) {
			return Int
		}

		return Number
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int
	default:
		return 0
	}
}

func kindNames(kinds []Kind) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}

	return strings.Join(names, " or ")
}
