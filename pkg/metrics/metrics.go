// Package metrics provides the centralized Prometheus registry reference
// for the ingestion client. All metrics are defined in their respective
// packages (ingest, checkpoint) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the ingestion client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/ingest):
//   - ingest_requests_total{endpoint, status} (Counter): Request attempts by endpoint and HTTP status (or "transport_error"/"read_error")
//   - ingest_request_duration_seconds{endpoint} (Histogram): Attempt duration by endpoint
//
// Retry Metrics (pkg/ingest):
//   - ingest_retries_total{endpoint} (Counter): Retry attempts by endpoint
//   - ingest_retry_backoff_seconds (Histogram): Backoff duration between attempts
//   - ingest_retry_exhausted_total{endpoint} (Counter): Requests that exhausted max retries
//
// Fetch Metrics (pkg/ingest):
//   - ingest_pages_fetched_total{endpoint} (Counter): Non-empty pages fetched by endpoint
//   - ingest_records_fetched_total{endpoint, mode} (Counter): Records fetched by endpoint and mode (paginated, incremental)
//
// Checkpoint Metrics (pkg/checkpoint):
//   - ingest_checkpoint_hits_total (Counter): Cursor lookups that found a value
//   - ingest_checkpoint_misses_total (Counter): Cursor lookups with no stored value
//   - ingest_checkpoint_errors_total{operation} (Counter): Checkpoint operation errors
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   sum(rate(ingest_requests_total{status!="200"}[5m])) /
//   sum(rate(ingest_requests_total[5m]))
//
//   # Retry Exhaustion Rate
//   rate(ingest_retry_exhausted_total[5m])
//
//   # P95 Attempt Latency
//   histogram_quantile(0.95, rate(ingest_request_duration_seconds_bucket[5m]))
//
//   # Records per Minute by Endpoint
//   sum by (endpoint) (rate(ingest_records_fetched_total[1m])) * 60
