package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Session holds the short-lived access credential and orchestrates its
// refresh. The authenticated flag is never persisted: it is always a
// projection of credential validity at the moment of the last check.
//
// Credential fields are single-writer: every mutation goes through the
// mutex, and concurrent refreshes collapse into one network call via the
// single-flight group.
type Session struct {
	baseURL string
	http    *http.Client
	secrets SecretStore
	log     *zap.SugaredLogger

	mu            sync.Mutex
	accessToken   string
	authenticated bool

	refreshGroup singleflight.Group

	now func() time.Time
}

func NewSession(baseURL string, httpClient *http.Client, secrets SecretStore, log *zap.SugaredLogger) *Session {
	return &Session{
		baseURL: baseURL,
		http:    httpClient,
		secrets: secrets,
		log:     log,
		now:     time.Now,
	}
}

func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Status re-derives the session state from the credentials at hand,
// refreshing the access token over the network when it is expired.
func (s *Session) Status(ctx context.Context) error {
	s.mu.Lock()
	token := s.accessToken
	s.mu.Unlock()

	if token == "" {
		// No access credential means no session. A dangling refresh
		// credential from a previous install is useless, drop it.
		s.setUnauthenticated()
		if err := s.secrets.Delete(RefreshTokenKey); err != nil {
			s.log.Errorw("failed to delete refresh token", "error", err)
		}
		return ErrAuthenticationRequired
	}

	if !IsTokenExpired(token, s.now()) {
		s.setAuthenticated(token)
		return nil
	}

	return s.refresh(ctx)
}

// refresh funnels concurrent callers into a single /token exchange. Every
// waiter observes the outcome of that one call.
func (s *Session) refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do(RefreshTokenKey, func() (interface{}, error) {
		return nil, s.doRefresh(ctx)
	})
	return err
}

func (s *Session) doRefresh(ctx context.Context) error {
	refreshToken, err := s.secrets.Get(RefreshTokenKey)
	if err != nil {
		s.setUnauthenticated()
		if !errors.Is(err, ErrSecretNotFound) {
			s.log.Errorw("failed to read refresh token", "error", err)
		}
		return ErrAuthenticationRequired
	}

	resp, err := s.postJSON(ctx, "/token", map[string]string{"refreshToken": refreshToken})
	if err != nil {
		s.setUnauthenticated()
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.setUnauthenticated()
		return fmt.Errorf("%w: refresh rejected with status %d", ErrAuthenticationRequired, resp.StatusCode)
	}

	var decoded accessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || decoded.AccessToken == "" {
		s.setUnauthenticated()
		return fmt.Errorf("%w: token response", ErrDecoding)
	}

	s.setAuthenticated(decoded.AccessToken)
	return nil
}

// Login exchanges credentials for a token pair: the access token stays in
// process memory, the refresh token goes to the secret store.
func (s *Session) Login(ctx context.Context, email, password string) error {
	resp, err := s.postJSON(ctx, "/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.setUnauthenticated()
		return fmt.Errorf("%w: login failed with status %d", ErrInvalidCredentials, resp.StatusCode)
	}

	return s.storePair(resp)
}

func (s *Session) Register(ctx context.Context, username, email, password string) error {
	resp, err := s.postJSON(ctx, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.setUnauthenticated()
		return fmt.Errorf("%w: registration failed with status %d", ErrInvalidCredentials, resp.StatusCode)
	}

	return s.storePair(resp)
}

// Logout invalidates the server-side refresh credential best effort and
// always clears local state.
func (s *Session) Logout(ctx context.Context) error {
	refreshToken, err := s.secrets.Get(RefreshTokenKey)
	if err == nil && refreshToken != "" {
		body, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/logout", bytes.NewReader(body))
		if reqErr == nil {
			req.Header.Set("Content-Type", "application/json")
			if resp, doErr := s.http.Do(req); doErr == nil {
				resp.Body.Close()
			} else {
				s.log.Warnw("logout request failed", "error", doErr)
			}
		}
	}

	s.setUnauthenticated()
	return s.secrets.Delete(RefreshTokenKey)
}

func (s *Session) storePair(resp *http.Response) error {
	var pair tokenPairResponse
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil || pair.AccessToken == "" {
		return fmt.Errorf("%w: token pair response", ErrDecoding)
	}

	if err := s.secrets.Set(RefreshTokenKey, pair.RefreshToken); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}

	s.setAuthenticated(pair.AccessToken)
	return nil
}

func (s *Session) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.http.Do(req)
}

func (s *Session) setAuthenticated(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
	s.authenticated = true
}

func (s *Session) setUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}
