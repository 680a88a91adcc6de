// Package client is the Go SDK for the alert backend. It owns the pieces a
// frontend should not reimplement: local token-expiry detection, the
// refresh-and-retry-once discipline on authorization failures, and the
// presigned media upload workflow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultHTTPTimeout = 15 * time.Second

type Config struct {
	BaseURL string
	// Secrets stores the refresh credential. Defaults to an in-memory
	// store, which does not survive restarts; pass a FileSecretStore (or
	// a platform keychain adapter) for a persistent session.
	Secrets SecretStore
	// HTTPTimeout bounds every request including body read. Presigned
	// PUTs of large videos may need a higher value than the default 15s.
	HTTPTimeout time.Duration
	Logger      *zap.SugaredLogger
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	log     *zap.SugaredLogger
}

func New(cfg Config) *Client {
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.Secrets == nil {
		cfg.Secrets = NewMemorySecretStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
		session: NewSession(cfg.BaseURL, httpClient, cfg.Secrets, cfg.Logger),
		log:     cfg.Logger,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// do runs one authenticated request under the uniform retry contract:
// attach the current access token; on 401/403 refresh the session and retry
// the call exactly once; a second authorization failure (or a failed
// refresh) surfaces ErrAuthenticationRequired with no further calls. Every
// authenticated operation goes through here so the discipline cannot drift
// per endpoint.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, method, path, query, payload)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.session.AccessToken())

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &TransportError{Err: err}
		}

		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
			return resp, nil
		}
		resp.Body.Close()

		if attempt > 0 {
			return nil, fmt.Errorf("%w: retried call rejected with status %d", ErrAuthenticationRequired, resp.StatusCode)
		}
		if err := c.session.Status(ctx); err != nil {
			return nil, fmt.Errorf("%w: session refresh failed", ErrAuthenticationRequired)
		}
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func decodeBody(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
