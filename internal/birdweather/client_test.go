package birdweather

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdweather-sync/internal/errors"
)

const testURL = "https://mock.birdweather.test/graphql"

// sleepRecorder captures the backoff delays the retry loop asked for
// instead of actually sleeping.
type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

// newTestClient builds a client against the mock endpoint with an
// instant, recorded sleep so retry tests run without a real clock.
func newTestClient(t *testing.T) (*Client, *sleepRecorder) {
	t.Helper()

	rec := &sleepRecorder{}
	client, err := NewClient(Config{
		URL:   testURL,
		Token: "test-token",
		Retry: RetryPolicy{
			MaxAttempts: 3,
			Backoff:     ExponentialBackoff(time.Second),
			Sleep:       rec.sleep,
		},
	})
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient.StdClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return client, rec
}

// graphQLRequest is the decoded form of an outgoing request body, captured
// by responders that need to assert on query variables.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func decodeGraphQLRequest(t *testing.T, req *http.Request) graphQLRequest {
	t.Helper()
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var out graphQLRequest
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

// registerResponses registers a responder that serves the given JSON
// bodies in sequence, one per request.
func registerResponses(t *testing.T, bodies ...string) {
	t.Helper()
	call := 0
	httpmock.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		require.Less(t, call, len(bodies), "unexpected extra request")
		resp := httpmock.NewStringResponse(http.StatusOK, bodies[call])
		resp.Header.Set("Content-Type", "application/json")
		call++
		return resp, nil
	})
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestExecute_RetriesTransientFailures(t *testing.T) {
	client, rec := newTestClient(t)

	call := 0
	httpmock.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		call++
		if call < 3 {
			return nil, errors.NewStd("connection refused")
		}
		return httpmock.NewStringResponse(http.StatusOK,
			`{"data": {"stations": {"nodes": [{"id": "4882", "name": "Test Station"}]}}}`), nil
	})

	id, err := client.ResolveStationID(context.Background(), "backyard-station")
	require.NoError(t, err)
	assert.Equal(t, "4882", id)

	// Backoff doubles per attempt: 1s after the first failure, 2s after
	// the second.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

// brokenBody fails on the first read, standing in for a connection reset
// after the response headers have arrived.
type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.NewStd("connection reset by peer") }
func (brokenBody) Close() error             { return nil }

func TestExecute_RetriesBodyReadFailures(t *testing.T) {
	client, rec := newTestClient(t)

	call := 0
	httpmock.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		call++
		if call < 3 {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       brokenBody{},
				Header:     http.Header{"Content-Type": []string{"application/json"}},
			}, nil
		}
		return httpmock.NewStringResponse(http.StatusOK,
			`{"data": {"stations": {"nodes": [{"id": "4882", "name": "Test Station"}]}}}`), nil
	})

	// A failure mid-body is the same transient condition as one at connect
	// time and goes through the same backoff schedule.
	id, err := client.ResolveStationID(context.Background(), "backyard-station")
	require.NoError(t, err)
	assert.Equal(t, "4882", id)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestExecute_ExhaustsRetryBudget(t *testing.T) {
	client, rec := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testURL,
		httpmock.NewErrorResponder(errors.NewStd("connection refused")))

	_, err := client.ResolveStationID(context.Background(), "backyard-station")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
	assert.True(t, errors.IsRetryable(err))

	// Three attempts, but no sleep after the last one.
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
	assert.Len(t, rec.delays, 2)
}

func TestExecute_GraphQLErrorsAreNotRetried(t *testing.T) {
	client, rec := newTestClient(t)

	registerResponses(t,
		`{"data": null, "errors": [{"message": "Field 'bogus' doesn't exist"}]}`)

	_, err := client.ResolveStationID(context.Background(), "backyard-station")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field 'bogus' doesn't exist")
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	assert.False(t, errors.IsRetryable(err))

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Empty(t, rec.delays)
}

func TestExecute_HTTPErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		category   errors.ErrorCategory
	}{
		{"unauthorized", http.StatusUnauthorized, errors.CategoryConfiguration},
		{"forbidden", http.StatusForbidden, errors.CategoryConfiguration},
		{"not_found", http.StatusNotFound, errors.CategoryNotFound},
		{"rate_limited", http.StatusTooManyRequests, errors.CategoryLimit},
		{"server_error", http.StatusInternalServerError, errors.CategoryValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newTestClient(t)
			httpmock.RegisterResponder(http.MethodPost, testURL,
				httpmock.NewStringResponder(tt.statusCode, "nope"))

			_, err := client.ResolveStationID(context.Background(), "backyard-station")
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, tt.category))
			assert.Equal(t, 1, httpmock.GetTotalCallCount())
			assert.Empty(t, rec.delays)
		})
	}
}

func TestExecute_SendsAuthAndContentType(t *testing.T) {
	client, _ := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		return httpmock.NewStringResponse(http.StatusOK,
			`{"data": {"stations": {"nodes": [{"id": "1", "name": "s"}]}}}`), nil
	})

	_, err := client.ResolveStationID(context.Background(), "backyard-station")
	require.NoError(t, err)
}

func TestResolveStationID_NumericPassthrough(t *testing.T) {
	client, _ := newTestClient(t)

	id, err := client.ResolveStationID(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", id)

	// A numeric id never touches the network.
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestResolveStationID_EmptyToken(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.ResolveStationID(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestResolveStationID_LookupAndCache(t *testing.T) {
	client, _ := newTestClient(t)

	registerResponses(t,
		`{"data": {"stations": {"nodes": [{"id": "4882", "name": "Backyard"}]}}}`)

	id, err := client.ResolveStationID(context.Background(), "backyard-station")
	require.NoError(t, err)
	assert.Equal(t, "4882", id)

	// Second resolution of the same token is served from the cache.
	id, err = client.ResolveStationID(context.Background(), "backyard-station")
	require.NoError(t, err)
	assert.Equal(t, "4882", id)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestResolveStationID_NotFound(t *testing.T) {
	client, _ := newTestClient(t)

	registerResponses(t, `{"data": {"stations": {"nodes": []}}}`)

	_, err := client.ResolveStationID(context.Background(), "no-such-station")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "no-such-station")
}

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(time.Second)
	assert.Equal(t, time.Second, backoff(0))
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
	assert.Equal(t, 8*time.Second, backoff(3))
}

func TestRetryPolicy_Normalized(t *testing.T) {
	p := RetryPolicy{}.normalized()
	assert.Equal(t, 3, p.MaxAttempts)
	require.NotNil(t, p.Backoff)
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.NotNil(t, p.Sleep)
}
