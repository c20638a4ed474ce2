package fleetdesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": status < 300,
		"code":    status,
		"message": "ok",
		"data":    data,
		"meta":    map[string]any{"requestId": "req12345"},
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    status,
		"message": message,
		"error":   map[string]string{"code": code, "message": message},
		"meta":    map[string]any{"requestId": "req12345"},
	})
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", "tok")
	c.retryDelay = time.Millisecond
	return c
}

func TestLogin_StoresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ops@example.com", body["email"])
		writeEnvelope(w, 200, map[string]any{"token": "fresh", "expiresAt": time.Now().Add(time.Hour)})
	})

	res, err := c.Login(context.Background(), "ops@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.Token)
	assert.Equal(t, "fresh", c.Token())
}

func TestListHistory_SendsQueryAndAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		assert.Empty(t, r.URL.Query().Get("endDate"))
		writeEnvelope(w, 200, map[string]any{
			"data":       []map[string]any{{"_id": "rec-1", "itemType": "assets", "actionType": "create"}},
			"totalCount": 11,
			"totalPages": 2,
		})
	})

	page, err := c.ListHistory(context.Background(), HistoryQuery{Page: 2, StartDate: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "rec-1", page.Data[0].ID)
	assert.Equal(t, 2, page.TotalPages)
}

func TestHistory_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeError(w, 503, "UNAVAILABLE", "try later")
			return
		}
		writeEnvelope(w, 200, []map[string]any{{"_id": "a"}, {"_id": "b"}})
	})

	records, err := c.LatestHistory(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 3, calls.Load())
}

func TestHistory_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeError(w, 500, "INTERNAL_ERROR", "boom")
	})

	_, err := c.GetHistory(context.Background(), "rec-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", apiErr.Code)
	assert.EqualValues(t, 3, calls.Load())
}

func TestHistory_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeError(w, 404, CodeNotFound, "Resource not found")
	})

	_, err := c.HistoryDetails(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestSubmitQuote_NotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Zero(t, r.ContentLength)
		writeError(w, 502, "BAD_GATEWAY", "upstream")
	})

	_, err := c.SubmitQuote(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestQuoteStore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/quote/store", r.URL.Path)
		writeEnvelope(w, 200, map[string]any{
			"products":    []map[string]any{{"id": "p1", "category": "Laptops", "quantity": 2}},
			"services":    []any{},
			"state":       map[string]any{"currentStep": 1},
			"productFlow": map[string]any{"step": 1, "stepName": "Category", "totalSteps": 4},
		})
	})

	view, err := c.QuoteStore(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Products, 1)
	assert.Contains(t, string(view.Products[0]), `"id":"p1"`)
	assert.Equal(t, 4, view.ProductFlow.TotalSteps)
}

func TestUnauthorizedAndNonJSONErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/quotes" {
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		writeError(w, 401, CodeInvalidToken, "Invalid or expired token")
	})

	_, err := c.QuoteStore(context.Background())
	assert.True(t, IsUnauthorized(err))

	_, err = c.ListQuotes(context.Background(), 1, 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 504, apiErr.StatusCode)
	assert.Equal(t, "gateway timeout", apiErr.Message)
	assert.True(t, IsRetryable(err))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(&APIError{StatusCode: 422}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 503}))
	assert.False(t, IsRetryable(&decodeError{err: assert.AnError}))
}
