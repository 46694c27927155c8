// Package checkpoint persists the incremental-fetch cursor per endpoint
// in Redis.
//
// An incremental fetch asks the target API for everything changed since a
// cursor (a timestamp or opaque identifier). The cursor has to survive
// between runs or every run re-fetches the full history; this package
// gives each endpoint one durable slot for it.
//
// Usage:
//
//	store := checkpoint.NewStore(redisClient)
//
//	since, err := store.Get(ctx, "/v1/changes")
//	if errors.Is(err, checkpoint.ErrNoCheckpoint) {
//		since = "" // first run, fetch everything
//	}
//
//	records, err := ing.FetchIncremental(ctx, "/v1/changes", since, nil)
//	// ... hand records downstream ...
//
//	err = store.Set(ctx, "/v1/changes", time.Now().UTC().Format(time.RFC3339))
//
// Records themselves are never stored here; the slot holds only the
// cursor string.
package checkpoint
