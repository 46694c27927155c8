package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxLoggedBody bounds how much of an error response body is kept for
// logs and error messages.
const maxLoggedBody = 512

// doRequest is the resilient request primitive underlying all fetch
// operations: up to MaxRetries attempts with exponential backoff, where a
// response counts as successful iff its status is exactly 200. All other
// statuses and transport failures are logged and retried; only exhaustion
// surfaces to the caller.
func (ing *Ingestor) doRequest(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	endpoint := endpointLabel(rawURL)

	var lastErr error
	for attempt := 1; attempt <= ing.config.MaxRetries; attempt++ {
		body, err := ing.attempt(ctx, endpoint, rawURL, params)
		if err == nil {
			if attempt > 1 {
				ing.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return body, nil
		}
		lastErr = err

		ing.logger.Warn().
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Err(err).
			Msg("Request attempt failed")

		if attempt >= ing.config.MaxRetries {
			break
		}

		// Delay before retry k is BackoffFactor * 2^(k-1).
		backoff := ing.config.BackoffFactor << (attempt - 1)
		ingestRetriesTotal.WithLabelValues(endpoint).Inc()
		ingestRetryBackoffSeconds.Observe(backoff.Seconds())

		ing.logger.Info().
			Str("endpoint", endpoint).
			Dur("backoff", backoff).
			Msg("Retrying request after backoff")

		if err := ing.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	ingestRetryExhaustedTotal.WithLabelValues(endpoint).Inc()
	ing.logger.Error().
		Str("url", rawURL).
		Int("max_retries", ing.config.MaxRetries).
		Msg("Retry attempts exhausted")

	return nil, &ExhaustedError{
		URL:      rawURL,
		Attempts: ing.config.MaxRetries,
		Err:      lastErr,
	}
}

// attempt issues one GET request bounded by the per-attempt timeout.
func (ing *Ingestor) attempt(ctx context.Context, endpoint, rawURL string, params url.Values) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, ing.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")

	start := ing.clock.Now()
	resp, err := ing.httpClient.Do(req)
	ingestRequestDuration.WithLabelValues(endpoint).Observe(ing.clock.Since(start).Seconds())

	if err != nil {
		ingestRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, fmt.Errorf("http get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ingestRequestsTotal.WithLabelValues(endpoint, "read_error").Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	ingestRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxLoggedBody),
		}
	}

	return body, nil
}

// wait blocks for the backoff duration, honoring context cancellation.
func (ing *Ingestor) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		ing.logger.Warn().Msg("Context cancelled during retry backoff")
		return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
	case <-ing.clock.After(d):
		return nil
	}
}

// endpointLabel reduces a URL to its path for metric labels, keeping
// label cardinality independent of hosts and query strings.
func endpointLabel(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return u.Path
	}
	return rawURL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
