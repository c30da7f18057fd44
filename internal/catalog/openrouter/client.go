// Package openrouter implements the catalog client for the OpenRouter
// model listing API. It fetches the raw catalog with bounded retries and
// decodes records tolerantly: a malformed record is skipped with a warning,
// an unusable response body fails the fetch.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/davidbz/freeloader/internal/domain"
	"github.com/davidbz/freeloader/internal/observability"
)

const (
	providerName = "openrouter"
	modelsPath   = "/models"

	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
	backoffFactor     = 2.0
)

// Client fetches the model catalog over HTTP.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new OpenRouter catalog client.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return providerName
}

// Endpoint returns the catalog endpoint URL.
func (c *Client) Endpoint() string {
	return c.config.BaseURL + modelsPath
}

// catalogResponse mirrors the upstream payload envelope.
type catalogResponse struct {
	Data []json.RawMessage `json:"data"`
}

// statusError reports a non-200 upstream response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// FetchModels returns every model record the catalog currently lists.
// Records that fail to decode are dropped with a warning; a response without
// a data list is an error.
func (c *Client) FetchModels(ctx context.Context) ([]domain.ModelRecord, error) {
	logger := observability.FromContext(ctx)

	body, err := c.fetchWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload catalogResponse
	if decodeErr := decoder.Decode(&payload); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", decodeErr)
	}

	if payload.Data == nil {
		return nil, errors.New("unexpected catalog response: data is not a list")
	}

	records := make([]domain.ModelRecord, 0, len(payload.Data))
	skipped := 0
	for _, raw := range payload.Data {
		record, decodeErr := decodeRecord(raw)
		if decodeErr != nil {
			skipped++
			logger.Warn("skipping malformed model record",
				observability.Error(decodeErr))
			continue
		}
		if record.ID == "" {
			skipped++
			continue
		}
		records = append(records, record)
	}

	logger.Info("fetched model catalog",
		observability.Int("models", len(records)),
		observability.Int("skipped", skipped))

	return records, nil
}

// fetchWithRetry performs the catalog request with exponential backoff.
// Rate limits and server errors are retried; other client errors are not.
func (c *Client) fetchWithRetry(ctx context.Context) ([]byte, error) {
	logger := observability.FromContext(ctx)

	attempts := c.config.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.fetchOnce(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("catalog fetch succeeded after retry",
					observability.Int("attempt", attempt))
			}
			return body, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt == attempts {
			break
		}

		delay := backoffDelay(attempt)
		logger.Warn("catalog fetch failed, retrying",
			observability.Error(err),
			observability.Int("attempt", attempt),
			observability.Int("max_attempts", attempts),
			observability.Duration("retry_delay", delay))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("catalog fetch failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// isRetryable reports whether a fetch error is worth another attempt.
func isRetryable(err error) bool {
	var status *statusError
	if errors.As(err, &status) {
		return status.retryable()
	}

	// Network-level failures are retryable unless the context ended.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// backoffDelay computes the exponential backoff delay with jitter.
func backoffDelay(attempt int) time.Duration {
	backoff := float64(initialRetryDelay) * math.Pow(backoffFactor, float64(attempt-1))
	if backoff > float64(maxRetryDelay) {
		backoff = float64(maxRetryDelay)
	}

	jitter := backoff * 0.1 * (2.0*float64(time.Now().UnixNano()%100)/100.0 - 1.0)

	return time.Duration(backoff + jitter)
}

// decodeRecord unmarshals one record, preserving raw pricing values.
func decodeRecord(raw json.RawMessage) (domain.ModelRecord, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var record domain.ModelRecord
	if err := decoder.Decode(&record); err != nil {
		return domain.ModelRecord{}, err
	}

	return record, nil
}
