package checkpoint

import "strings"

// Key identifies the checkpoint slot for one endpoint.
type Key struct {
	// Endpoint is the API endpoint path (e.g., "/v1/changes").
	Endpoint string
}

// String generates a deterministic Redis key string.
// Format: ingest:checkpoint:<endpoint>
//
// Example:
//
//	ingest:checkpoint:v1/changes
func (k Key) String() string {
	endpoint := strings.Trim(k.Endpoint, "/")
	return "ingest:checkpoint:" + endpoint
}
