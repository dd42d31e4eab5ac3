// Package birdweather implements the BirdWeather GraphQL data client. It
// translates each query kind into a fully-paginated, schema-normalized
// tabular result and owns the pagination stop conditions used for
// incremental sync.
package birdweather

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/birdweather-sync/internal/conf"
	"github.com/tphakala/birdweather-sync/internal/errors"
	"github.com/tphakala/birdweather-sync/internal/httpclient"
	"github.com/tphakala/birdweather-sync/internal/logging"
)

// Package-level logger specific to the birdweather service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "birdweather.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "birdweather", serviceLevelVar)
	if err != nil {
		// Fallback: log error to standard log and disable service logging
		log.Printf("Failed to initialize birdweather file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("birdweather")
		closeLogger = func() error { return nil }
	}
}

// Config holds the client configuration.
type Config struct {
	URL     string        // GraphQL endpoint
	Token   string        // bearer token, optional
	Timeout time.Duration // per-request HTTP timeout
	Retry   RetryPolicy   // transient failure retry policy
	Debug   bool          // verbose request/response logging
}

// DefaultConfig returns a Config with the production endpoint and retry
// defaults. The token must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		URL:     "https://app.birdweather.com/graphql",
		Timeout: 120 * time.Second,
		Retry:   DefaultRetryPolicy(),
	}
}

// ConfigFromSettings builds a client Config from application settings.
func ConfigFromSettings(s *conf.Settings) Config {
	cfg := DefaultConfig()
	if s.API.URL != "" {
		cfg.URL = s.API.URL
	}
	if s.API.Timeout > 0 {
		cfg.Timeout = s.API.Timeout
	}
	if s.API.MaxRetries > 0 {
		cfg.Retry.MaxAttempts = s.API.MaxRetries
	}
	cfg.Token = s.Station.Token
	cfg.Debug = s.Debug
	return cfg
}

// Client provides methods for querying the BirdWeather GraphQL API. The
// only local state is the cache mapping a station token to its resolved
// numeric identifier, scoped to this instance's lifetime.
type Client struct {
	config     Config
	httpClient *httpclient.Client
	stations   *cache.Cache // token -> numeric station id
	retry      RetryPolicy
}

// NewClient creates a new BirdWeather API client.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.Newf("BirdWeather GraphQL URL is required").
			Category(errors.CategoryConfiguration).
			Component("birdweather").
			Build()
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	client := &Client{
		config: config,
		httpClient: httpclient.New(&httpclient.Config{
			DefaultTimeout: config.Timeout,
		}),
		stations: cache.New(cache.NoExpiration, 0),
		retry:    config.Retry.normalized(),
	}

	logger.Info("BirdWeather client initialized",
		"url", config.URL,
		"timeout", config.Timeout,
		"max_attempts", client.retry.MaxAttempts,
		"token_configured", config.Token != "")

	return client, nil
}

// Close cleans up client resources.
func (c *Client) Close() {
	c.httpClient.Close()
	logger.Info("Closing BirdWeather client")

	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			// Use standard log since our logger might be closing
			log.Printf("Error closing birdweather logger: %v", err)
		}
	}
}

// graphQLError is one entry of a GraphQL error payload.
type graphQLError struct {
	Message string `json:"message"`
}

// graphQLResponse is the response envelope for every query.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// execute sends a GraphQL query and decodes the data payload into out.
//
// Transient transport failures are retried per the configured policy with
// exponential backoff. That covers both the request itself and reading the
// response body: a timeout or connection reset mid-body is the same
// transient condition as one at connect time. A GraphQL error payload or a
// non-200 status indicates a request defect, not a transient condition, and
// is raised immediately without retry.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	payload := map[string]any{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Newf("failed to marshal GraphQL payload: %w", err).
			Category(errors.CategoryValidation).
			Component("birdweather").
			Build()
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		statusCode, respBody, reqErr := c.roundTrip(ctx, body)
		if reqErr != nil {
			lastErr = reqErr
			if attempt == c.retry.MaxAttempts-1 {
				break
			}
			delay := c.retry.Backoff(attempt)
			logger.Warn("Request failed, retrying",
				"attempt", attempt+1,
				"max_attempts", c.retry.MaxAttempts,
				"delay", delay,
				"error", reqErr)
			if sleepErr := c.retry.Sleep(ctx, delay); sleepErr != nil {
				return errors.Newf("retry wait interrupted: %w", sleepErr).
					Category(errors.CategoryTimeout).
					Component("birdweather").
					Build()
			}
			continue
		}
		return c.decode(statusCode, respBody, out)
	}
	return lastErr
}

// roundTrip posts the payload and reads the full response body. Failures on
// either side come back classified as transport errors for the retry loop.
func (c *Client) roundTrip(ctx context.Context, body []byte) (int, []byte, error) {
	resp, err := c.post(ctx, body)
	if err != nil {
		return 0, nil, classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, classifyTransportError(err)
	}
	return resp.StatusCode, bodyBytes, nil
}

// post sends the request body to the GraphQL endpoint with auth headers.
func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return c.httpClient.Do(ctx, req)
}

// decode validates the HTTP status and unmarshals the GraphQL data payload
// into out.
func (c *Client) decode(statusCode int, bodyBytes []byte, out any) error {
	if statusCode != http.StatusOK {
		if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
			logger.Error("BirdWeather API authentication failed",
				"status_code", statusCode,
				"message", "Check your BIRDWEATHER_TOKEN in the configuration")
		}
		return errors.Newf("BirdWeather API error (status %d): %s", statusCode, truncate(string(bodyBytes), 500)).
			Category(statusErrorCategory(statusCode)).
			Context("status_code", statusCode).
			Component("birdweather").
			Build()
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return errors.Newf("failed to parse GraphQL response: %w", err).
			Category(errors.CategoryFileParsing).
			Context("response_size", len(bodyBytes)).
			Component("birdweather").
			Build()
	}

	// A GraphQL-level error payload indicates a query defect; never retried.
	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		logger.Error("GraphQL errors in response", "errors", messages)
		return errors.Newf("GraphQL errors: %s", strings.Join(messages, "; ")).
			Category(errors.CategoryValidation).
			Context("error_count", len(envelope.Errors)).
			Component("birdweather").
			Build()
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Newf("failed to parse GraphQL data: %w", err).
				Category(errors.CategoryFileParsing).
				Component("birdweather").
				Build()
		}
	}
	return nil
}

// classifyTransportError wraps a transport failure with timeout or network
// categorization so the retry loop and callers can tell them apart.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Newf("request timed out: %w", err).
			Category(errors.CategoryTimeout).
			Component("birdweather").
			Build()
	}
	return errors.Newf("network error: %w", err).
		Category(errors.CategoryNetwork).
		Component("birdweather").
		Build()
}

// statusErrorCategory maps an HTTP status to an error category.
func statusErrorCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusNotFound:
		return errors.CategoryNotFound
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	default:
		return errors.CategoryValidation
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
