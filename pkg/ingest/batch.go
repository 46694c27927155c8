package ingest

import "iter"

// DefaultBatchSize is the batch size used when callers pass a
// non-positive size to Batches.
const DefaultBatchSize = 50

// Batches yields records in contiguous chunks of size, in input order.
// Every chunk has exactly size records except possibly the last. The
// sequence is lazy and holds no state between invocations; it decouples
// fetch volume from downstream processing granularity (bulk insert chunk
// size, CSV flush size) without blocking the fetch on a consumer.
func Batches(records []Record, size int) iter.Seq[[]Record] {
	if size <= 0 {
		size = DefaultBatchSize
	}

	return func(yield func([]Record) bool) {
		for start := 0; start < len(records); start += size {
			end := min(start+size, len(records))
			if !yield(records[start:end:end]) {
				return
			}
		}
	}
}
