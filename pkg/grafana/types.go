package grafana

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Datasource is the raw server representation of a datasource. The
// management API hands back provider-specific settings (jsonData,
// secureJsonData) as opaque mappings, so the whole resource stays a
// mapping rather than a fixed struct. Read operations annotate it with a
// "status" key carrying the HTTP status code of the response; that key is
// response metadata, not persisted state.
type Datasource map[string]interface{}

// ID returns the server-assigned numeric id, or 0 if absent.
func (d Datasource) ID() int64 {
	id, err := cast.ToInt64E(d["id"])
	if err != nil {
		return 0
	}

	return id
}

// Name returns the datasource name, or "" if absent.
func (d Datasource) Name() string {
	return cast.ToString(d["name"])
}

// Type returns the provider type string, or "" if absent.
func (d Datasource) Type() string {
	return cast.ToString(d["type"])
}

// Datasources maps server-assigned ids to datasources. It is built fresh
// from each list response and never cached across calls.
type Datasources map[int64]Datasource

// Dashboard is the raw server representation of a dashboard.
type Dashboard map[string]interface{}

// DashboardHit is a single result from the dashboard search endpoint.
type DashboardHit struct {
	ID        int64    `json:"id"        yaml:"id"`
	UID       string   `json:"uid"       yaml:"uid"`
	Title     string   `json:"title"     yaml:"title"`
	URI       string   `json:"uri"       yaml:"uri"`
	Type      string   `json:"type"      yaml:"type"`
	Tags      []string `json:"tags"      yaml:"tags"`
	IsStarred bool     `json:"isStarred" yaml:"isStarred"`
}

// DatasourceRef addresses a datasource by exactly one of its identity
// fields: the server-assigned numeric id or the unique name. Exactly one
// variant is set; Resolve translates either into the canonical numeric id
// before any single-resource endpoint is called.
type DatasourceRef struct {
	id     int64
	name   string
	byName bool
}

// ByID addresses a datasource by its numeric id.
func ByID(id int64) DatasourceRef {
	return DatasourceRef{id: id}
}

// ByName addresses a datasource by its unique name.
func ByName(name string) DatasourceRef {
	return DatasourceRef{name: name, byName: true}
}

// RefFrom builds a DatasourceRef from a dynamically typed value: strings
// address by name, integer kinds address by id. Anything else is an
// argument error.
func RefFrom(value interface{}) (DatasourceRef, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return DatasourceRef{}, ErrEmptyDatasourceRef
		}

		return ByName(v), nil
	case nil, bool:
		return DatasourceRef{}, &InvalidArgumentError{
			Message: fmt.Sprintf("datasource reference must be a name or a numeric id, got %T", value),
		}
	}

	id, err := cast.ToInt64E(value)
	if err != nil {
		return DatasourceRef{}, &InvalidArgumentError{
			Message: fmt.Sprintf("datasource reference must be a name or a numeric id, got %T", value),
		}
	}

	return ByID(id), nil
}

// IsName reports whether the reference addresses by name.
func (r DatasourceRef) IsName() bool {
	return r.byName
}

// Name returns the name variant, or "" for id references.
func (r DatasourceRef) Name() string {
	return r.name
}

// ID returns the id variant, or 0 for name references.
func (r DatasourceRef) ID() int64 {
	return r.id
}

// String implements fmt.Stringer for log and error messages.
func (r DatasourceRef) String() string {
	if r.byName {
		return r.name
	}

	return fmt.Sprintf("%d", r.id)
}

// AllowedDatasourceTypes lists the provider type strings accepted by
// Datasources.Create.
var AllowedDatasourceTypes = []string{
	"grafana",
	"graphite",
	"influxdb",
	"elasticsearch",
	"prometheus",
	"mysql",
	"postgres",
	"opentsdb",
	"cloudwatch",
}

// ValidDatasourceType reports whether t is an allowed provider type.
func ValidDatasourceType(t string) bool {
	for _, allowed := range AllowedDatasourceTypes {
		if t == allowed {
			return true
		}
	}

	return false
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a grafana.Client.
//
// Authentication: APIKey takes precedence and is sent as a Bearer token;
// otherwise Username/Password are sent as HTTP basic auth; with neither,
// requests go out unauthenticated.
//
// Per-request timeouts are controlled via the context passed to client
// methods. Retry behavior for transient failures (>=500, 429, connection
// errors) can be tuned via RetryMax/RetryWaitMin/RetryWaitMax and is
// handled entirely by the transport.
type Config struct {
	// APIEndpoint: base URL for the Grafana API (e.g. "https://grafana.example.com").
	APIEndpoint string

	// APIKey: service account or API token, sent as a Bearer token.
	APIKey string
	// Username: account username for HTTP basic auth.
	Username string
	// Password: account password for HTTP basic auth.
	Password string

	// RetryMax: maximum number of retries for transient failures. If 0, the
	// transport default is used.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}
