package integration

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fluxdata/rest-ingest/internal/testutil"
	"github.com/fluxdata/rest-ingest/pkg/checkpoint"
	"github.com/fluxdata/rest-ingest/pkg/ingest"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newIngestor(t *testing.T, baseURL string) *ingest.Ingestor {
	t.Helper()

	nop := zerolog.Nop()
	cfg := ingest.DefaultConfig(baseURL)
	cfg.Logger = &nop

	ing, err := ingest.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create ingestor: %v", err)
	}
	return ing
}

// TestPaginatedFetchFlow tests the complete flow: paginated fetch from a
// mock API through batching, with all pages concatenated in order.
func TestPaginatedFetchFlow(t *testing.T) {
	mockAPI := testutil.NewMockAPI()
	defer mockAPI.Close()

	mockAPI.SetPagedResponse("/v1/crimes", []string{
		testutil.RecordsJSON(0, 100),
		testutil.RecordsJSON(100, 100),
		testutil.RecordsJSON(200, 7),
	})

	ing := newIngestor(t, mockAPI.URL())

	records, err := ing.FetchPaginated(context.Background(), "/v1/crimes", ingest.PaginateOptions{})
	if err != nil {
		t.Fatalf("FetchPaginated failed: %v", err)
	}

	if len(records) != 207 {
		t.Errorf("Expected 207 records, got %d", len(records))
	}
	if mockAPI.GetRequestCount() != 3 {
		t.Errorf("Expected 3 page requests, got %d", mockAPI.GetRequestCount())
	}

	// Batch handoff covers the records exactly once
	total := 0
	batches := 0
	for batch := range ingest.Batches(records, 50) {
		total += len(batch)
		batches++
	}
	if total != 207 || batches != 5 {
		t.Errorf("Batching covered %d records in %d batches, want 207 in 5", total, batches)
	}
}

// TestIncrementalCheckpointFlow tests an incremental fetch driven by a
// Redis-backed checkpoint across two simulated runs.
func TestIncrementalCheckpointFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mockAPI := testutil.NewMockAPI()
	defer mockAPI.Close()

	mockAPI.SetResponse("/v1/changes", testutil.MockResponse{
		StatusCode: 200,
		Body:       testutil.WrappedJSON(testutil.RecordsJSON(0, 5)),
	})

	store := checkpoint.NewStore(redisClient)
	ing := newIngestor(t, mockAPI.URL())
	ctx := context.Background()

	// Run 1: no checkpoint stored yet, fetch the full delta
	if _, err := store.Get(ctx, "/v1/changes"); !errors.Is(err, checkpoint.ErrNoCheckpoint) {
		t.Fatalf("Expected ErrNoCheckpoint before first run, got %v", err)
	}

	records, err := ing.FetchIncremental(ctx, "/v1/changes", "", nil)
	if err != nil {
		t.Fatalf("First incremental fetch failed: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("Expected 5 records, got %d", len(records))
	}
	if _, present := mockAPI.GetLastQuery()["since"]; present {
		t.Error("First run should not send a since cursor")
	}

	cursor := time.Now().UTC().Format(time.RFC3339)
	if err := store.Set(ctx, "/v1/changes", cursor); err != nil {
		t.Fatalf("Failed to store checkpoint: %v", err)
	}

	// Run 2: resume from the stored cursor
	since, err := store.Get(ctx, "/v1/changes")
	if err != nil {
		t.Fatalf("Checkpoint lookup failed: %v", err)
	}
	if since != cursor {
		t.Errorf("Stored cursor = %q, want %q", since, cursor)
	}

	if _, err := ing.FetchIncremental(ctx, "/v1/changes", since, nil); err != nil {
		t.Fatalf("Second incremental fetch failed: %v", err)
	}
	if got := mockAPI.GetLastQuery().Get("since"); got != cursor {
		t.Errorf("since param = %q, want %q", got, cursor)
	}
}

// TestRetryFlow tests that transient server errors are retried and the
// fetch still completes.
func TestRetryFlow(t *testing.T) {
	mockAPI := testutil.NewMockAPI()
	defer mockAPI.Close()

	failures := 2
	mockAPI.SetHandler("/v1/flaky", func(w http.ResponseWriter, r *http.Request) {
		if failures > 0 {
			failures--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testutil.RecordsJSON(0, 3)))
	})

	nop := zerolog.Nop()
	cfg := ingest.DefaultConfig(mockAPI.URL())
	cfg.BackoffFactor = 10 * time.Millisecond
	cfg.Logger = &nop

	ing, err := ingest.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create ingestor: %v", err)
	}

	records, err := ing.FetchPaginated(context.Background(), "/v1/flaky", ingest.PaginateOptions{PerPage: 10})
	if err != nil {
		t.Fatalf("FetchPaginated failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(records))
	}
	if mockAPI.GetRequestCount() != 3 {
		t.Errorf("Expected 3 attempts (2 failures + 1 success), got %d", mockAPI.GetRequestCount())
	}
}
