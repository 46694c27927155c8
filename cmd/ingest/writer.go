package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fluxdata/rest-ingest/pkg/ingest"
	"github.com/rs/zerolog"
)

// writeCSV streams records to w batch by batch: a header of the sorted
// union of top-level keys, then one row per record. Nested values are
// re-encoded as JSON so the CSV stays flat.
func writeCSV(w io.Writer, records []ingest.Record, batchSize int, logger zerolog.Logger) error {
	if len(records) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)

	cols := columnNames(records)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for batch := range ingest.Batches(records, batchSize) {
		for _, rec := range batch {
			row := make([]string, len(cols))
			for i, col := range cols {
				row[i] = formatValue(rec[col])
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}

		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("flush batch: %w", err)
		}

		logger.Info().Int("rows", len(batch)).Msg("Wrote batch")
	}

	return nil
}

// columnNames returns the sorted union of top-level keys across records.
func columnNames(records []ingest.Record) []string {
	seen := make(map[string]struct{})
	var cols []string

	for _, rec := range records {
		for key := range rec {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				cols = append(cols, key)
			}
		}
	}

	sort.Strings(cols)
	return cols
}

// formatValue renders a record value as a CSV cell.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		// Nested objects and arrays stay JSON-encoded
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
