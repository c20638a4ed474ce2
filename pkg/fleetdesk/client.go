// Package fleetdesk is a Go client for the fleetdesk API.
package fleetdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8080"

	// historyAttempts is the total number of tries for history reads.
	historyAttempts = 3
)

// Client is a minimal HTTP client for the fleetdesk API. It is safe for
// concurrent use once configured.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	debug      bool
	retryDelay time.Duration
}

// NewClient constructs a client with sane defaults. An empty baseURL uses
// DefaultBaseURL.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		debug:      os.Getenv("ENV") == "development",
		retryDelay: 500 * time.Millisecond,
	}
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

// doRequest sends one request and decodes the envelope's data into result.
// Non-2xx responses become *APIError.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	// Debug logging for development
	if c.debug {
		ev := log.Debug().Str("method", method).Str("endpoint", c.baseURL+endpoint)
		if payload != nil {
			ev = ev.RawJSON("request", payload)
		}
		ev.Msg("[FLEETDESK] Outgoing request")
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Bytes("response", respBody).
			Msg("[FLEETDESK] Incoming response")
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		return &decodeError{err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message, RequestID: env.Meta.RequestID}
		if env.Error != nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}
	if result == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// doWithRetry repeats doRequest while the failure is retryable, waiting
// retryDelay, then twice that, between attempts.
func (c *Client) doWithRetry(ctx context.Context, attempts int, method, endpoint string, result any) error {
	var err error
	delay := c.retryDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.doRequest(ctx, method, endpoint, nil, result); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		log.Warn().Err(err).Str("endpoint", endpoint).Int("attempt", attempt).Msg("[FLEETDESK] Retrying request")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

func pathEscape(id string) string { return url.PathEscape(id) }
