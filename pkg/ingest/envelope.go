package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is an opaque record returned verbatim from the target API.
// The ingestor never interprets its fields beyond locating the results
// collection in the response envelope.
type Record map[string]any

// decodeEnvelope unwraps a response body into its records. APIs differ in
// how they wrap a page: some return a bare JSON array, others an object
// with a "results" array. Any other shape fails with ErrBadEnvelope.
func decodeEnvelope(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrBadEnvelope)
	}

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
		}
		return records, nil

	case '{':
		var wrapped struct {
			Results *[]Record `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
		}
		if wrapped.Results == nil {
			return nil, fmt.Errorf("%w: object has no results array", ErrBadEnvelope)
		}
		return *wrapped.Results, nil

	default:
		return nil, fmt.Errorf("%w: body is neither array nor object", ErrBadEnvelope)
	}
}
