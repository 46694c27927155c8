// Package ingest provides a resilient client for pulling records from
// paginated or incrementally-updatable REST APIs.
//
// The Ingestor issues all traffic through a single retry-capable request
// primitive with exponential backoff, then exposes two fetch modes on top
// of it:
//
//   - FetchPaginated walks an endpoint page by page, strictly
//     sequentially, and returns the concatenation of all pages.
//   - FetchIncremental issues exactly one request, optionally scoped by a
//     "since" cursor, for endpoints that return their full delta at once.
//
// Responses may arrive either as a bare JSON array of records or wrapped
// in an object under a "results" key; both shapes are unwrapped uniformly
// and anything else fails with ErrBadEnvelope.
//
// Batches chunks an already-fetched record slice for downstream consumers
// (bulk inserts, CSV writers) without touching the network.
//
// Example:
//
//	ing, err := ingest.New(ingest.DefaultConfig("https://api.example.com"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	records, err := ing.FetchPaginated(ctx, "/v1/users", ingest.PaginateOptions{
//		PerPage:  100,
//		MaxPages: 20,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for batch := range ingest.Batches(records, 50) {
//		store.BulkInsert(ctx, batch)
//	}
package ingest
