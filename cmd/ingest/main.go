package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fluxdata/rest-ingest/pkg/checkpoint"
	"github.com/fluxdata/rest-ingest/pkg/ingest"
	"github.com/fluxdata/rest-ingest/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Configuration from environment
	baseURL := getEnv("BASE_URL", "")
	endpoint := getEnv("ENDPOINT", "")
	mode := getEnv("MODE", "paginated")
	pageParam := getEnv("PAGE_PARAM", "page")
	perPage := getEnvInt("PER_PAGE", 100)
	maxPages := getEnvInt("MAX_PAGES", 0)
	since := getEnv("SINCE", "")
	batchSize := getEnvInt("BATCH_SIZE", 50)
	outPath := getEnv("OUTPUT", "")
	redisURL := getEnv("REDIS_URL", "")
	metricsAddr := getEnv("METRICS_ADDR", "")

	// Setup logging: console plus append-file sink
	logger, err := logging.Setup(logging.Config{
		Level: logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		File:  getEnv("LOG_FILE", "pipeline.log"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	if baseURL == "" || endpoint == "" {
		logger.Fatal().Msg("BASE_URL and ENDPOINT are required")
	}

	ctx := context.Background()

	// Create ingestor
	cfg := ingest.DefaultConfig(baseURL)
	cfg.MaxRetries = getEnvInt("MAX_RETRIES", cfg.MaxRetries)
	ingLogger := logging.NewLogger("ingestor")
	cfg.Logger = &ingLogger

	ing, err := ingest.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create ingestor")
	}

	// Optional Redis-backed checkpoint store
	var store *checkpoint.Store
	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		store = checkpoint.NewStore(redisClient)
		logger.Info().Str("addr", redisURL).Msg("Connected to Redis")
	}

	// Optional Prometheus metrics endpoint
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		logger.Info().Str("addr", metricsAddr).Msg("Serving Prometheus metrics")
	}

	var records []ingest.Record

	switch mode {
	case "paginated":
		records, err = ing.FetchPaginated(ctx, endpoint, ingest.PaginateOptions{
			PageParam: pageParam,
			PerPage:   perPage,
			MaxPages:  maxPages,
		})

	case "incremental":
		if since == "" && store != nil {
			cursor, cerr := store.Get(ctx, endpoint)
			switch {
			case cerr == nil:
				since = cursor
			case errors.Is(cerr, checkpoint.ErrNoCheckpoint):
				logger.Info().Str("endpoint", endpoint).Msg("No checkpoint stored; fetching full delta")
			default:
				logger.Warn().Err(cerr).Msg("Checkpoint lookup failed; fetching without cursor")
			}
		}

		started := time.Now().UTC()
		records, err = ing.FetchIncremental(ctx, endpoint, since, nil)
		if err == nil && store != nil {
			if cerr := store.Set(ctx, endpoint, started.Format(time.RFC3339)); cerr != nil {
				logger.Warn().Err(cerr).Msg("Failed to store checkpoint")
			}
		}

	default:
		logger.Fatal().Str("mode", mode).Msg("MODE must be 'paginated' or 'incremental'")
	}

	if err != nil {
		logger.Fatal().Err(err).Str("endpoint", endpoint).Msg("Fetch failed")
	}

	logger.Info().Int("records", len(records)).Msg("Fetch complete")

	// Write batches as CSV
	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", outPath).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := writeCSV(out, records, batchSize, logger); err != nil {
		logger.Fatal().Err(err).Msg("CSV write failed")
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
