package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// sequenceRecorder wraps a handler and records the order of request paths.
type sequenceRecorder struct {
	mu    sync.Mutex
	paths []string
	next  http.Handler
}

func (r *sequenceRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.mu.Unlock()
	r.next.ServeHTTP(w, req)
}

func (r *sequenceRecorder) sequence() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.paths, " ")
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(Config{BaseURL: baseURL, Secrets: NewMemorySecretStore()})
}

func TestRetryAfterRefreshSucceeds(t *testing.T) {
	var createCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"accessToken": tokenWithExp(t, time.Now().Add(time.Hour))})
	})
	mux.HandleFunc("/alerts/create", func(w http.ResponseWriter, _ *http.Request) {
		createCalls++
		if createCalls == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Alert created"})
	})
	recorder := &sequenceRecorder{next: mux}
	server := httptest.NewServer(recorder)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.session.setAuthenticated(tokenWithExp(t, time.Now().Add(-time.Minute)))
	c.session.secrets.Set(RefreshTokenKey, "valid-refresh")

	err := c.CreateAlert(context.Background(), CreateAlertRequest{
		Type:        "fire",
		Description: "smoke over the ridge",
		Location:    GeoPoint{Type: "Point", Coordinates: [2]float64{76.88, 43.23}},
	})
	if err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	want := "/alerts/create /token /alerts/create"
	if got := recorder.sequence(); got != want {
		t.Fatalf("call sequence = %q, want %q", got, want)
	}
}

func TestSecondAuthFailureStopsRetrying(t *testing.T) {
	var createCalls, tokenCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		tokenCalls++
		json.NewEncoder(w).Encode(map[string]string{"accessToken": tokenWithExp(t, time.Now().Add(time.Hour))})
	})
	mux.HandleFunc("/alerts/get", func(w http.ResponseWriter, _ *http.Request) {
		createCalls++
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.session.setAuthenticated(tokenWithExp(t, time.Now().Add(-time.Minute)))
	c.session.secrets.Set(RefreshTokenKey, "valid-refresh")

	_, err := c.ListAlerts(context.Background())
	if !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("err = %v, want ErrAuthenticationRequired", err)
	}
	if createCalls != 2 {
		t.Fatalf("alert calls = %d, want 2", createCalls)
	}
	if tokenCalls != 1 {
		t.Fatalf("token calls = %d, want 1", tokenCalls)
	}
}

func TestFailedRefreshSurfacesAuthError(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.session.setAuthenticated(tokenWithExp(t, time.Now().Add(-time.Minute)))
	c.session.secrets.Set(RefreshTokenKey, "revoked-refresh")

	_, err := c.FetchProfile(context.Background())
	if !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("err = %v, want ErrAuthenticationRequired", err)
	}
	if calls != 1 {
		t.Fatalf("profile calls = %d, want 1 (no retry after failed refresh)", calls)
	}
}

func TestServerErrorIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.session.setAuthenticated(tokenWithExp(t, time.Now().Add(time.Hour)))

	_, err := c.ListAlerts(context.Background())

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if serverErr.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", serverErr.Status)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	c := newTestClient(t, server.URL)
	c.session.setAuthenticated(tokenWithExp(t, time.Now().Add(time.Hour)))

	_, err := c.ListAlerts(context.Background())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestUpdateProfileConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.session.setAuthenticated(tokenWithExp(t, time.Now().Add(time.Hour)))

	err := c.UpdateProfile(context.Background(), "taken@example.com", "taken")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestBearerTokenIsAttached(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Alert{})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	token := tokenWithExp(t, time.Now().Add(time.Hour))
	c.session.setAuthenticated(token)

	if _, err := c.ListAlerts(context.Background()); err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if got != "Bearer "+token {
		t.Fatalf("Authorization = %q, want bearer token", got)
	}
}
