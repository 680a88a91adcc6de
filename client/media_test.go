package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mediaServer serves both the API endpoints and the "object storage" PUT
// targets so a test can watch the full upload workflow.
type mediaServer struct {
	*httptest.Server
	credentials int32
	mu          sync.Mutex
	puts        []storedPut
	failPutAt   int // 1-based index of the PUT to fail, 0 for none
	putStatus   int // status for the failed PUT
}

func (ms *mediaServer) storedPuts() []storedPut {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]storedPut(nil), ms.puts...)
}

type storedPut struct {
	key         string
	contentType string
	body        []byte
}

func newMediaServer(t *testing.T) *mediaServer {
	t.Helper()
	ms := &mediaServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/media/presigned-url", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&ms.credentials, 1)
		key := fmt.Sprintf("media/%08x-%s", n, r.URL.Query().Get("filename"))
		json.NewEncoder(w).Encode(UploadCredential{
			UploadURL: ms.URL + "/storage/" + key,
			Key:       key,
		})
	})
	mux.HandleFunc("/storage/", func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		if ms.failPutAt > 0 && len(ms.puts)+1 == ms.failPutAt {
			w.WriteHeader(ms.putStatus)
			return
		}
		body, _ := io.ReadAll(r.Body)
		ms.puts = append(ms.puts, storedPut{
			key:         strings.TrimPrefix(r.URL.Path, "/storage/"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		w.WriteHeader(http.StatusOK)
	})

	ms.Server = httptest.NewServer(mux)
	t.Cleanup(ms.Close)
	return ms
}

func newMediaClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := New(Config{BaseURL: baseURL, Secrets: NewMemorySecretStore()})
	c.session.setAuthenticated(tokenWithExp(t, time.Now().Add(time.Hour)))
	return c
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadMediaRecompressesImages(t *testing.T) {
	server := newMediaServer(t)
	c := newMediaClient(t, server.URL)

	keys, err := c.UploadMedia(context.Background(), []MediaItem{
		{Filename: "photo.png", Data: pngBytes(t)},
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("keys = %v, want 1 entry", keys)
	}
	puts := server.storedPuts()
	if len(puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(puts))
	}

	put := puts[0]
	if put.contentType != "image/jpeg" {
		t.Fatalf("content type = %q, want image/jpeg", put.contentType)
	}
	if put.key != keys[0] {
		t.Fatalf("stored key %q does not match returned key %q", put.key, keys[0])
	}
	if _, err := jpeg.Decode(bytes.NewReader(put.body)); err != nil {
		t.Fatalf("uploaded body is not a JPEG: %v", err)
	}
}

func TestUploadMediaVideoPassesThrough(t *testing.T) {
	server := newMediaServer(t)
	c := newMediaClient(t, server.URL)

	raw := []byte("fake mp4 payload")
	if _, err := c.UploadMedia(context.Background(), []MediaItem{
		{Filename: "clip.mp4", Data: raw, IsVideo: true},
	}); err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}

	put := server.storedPuts()[0]
	if put.contentType != "video/mp4" {
		t.Fatalf("content type = %q, want video/mp4", put.contentType)
	}
	if !bytes.Equal(put.body, raw) {
		t.Fatal("video bytes were modified in transit")
	}
}

func TestUploadMediaAbortsBatchOnFailure(t *testing.T) {
	server := newMediaServer(t)
	server.failPutAt = 2
	server.putStatus = http.StatusInternalServerError
	c := newMediaClient(t, server.URL)

	items := []MediaItem{
		{Filename: "a.mp4", Data: []byte("a"), IsVideo: true},
		{Filename: "b.mp4", Data: []byte("b"), IsVideo: true},
		{Filename: "c.mp4", Data: []byte("c"), IsVideo: true},
	}
	keys, err := c.UploadMedia(context.Background(), items)

	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if len(keys) != 1 {
		t.Fatalf("partial keys = %v, want the 1 uploaded before the failure", keys)
	}
	// The third item must never have been attempted.
	if got := len(server.storedPuts()); got != 1 {
		t.Fatalf("stored puts = %d, want 1", got)
	}
}

func TestUploadExpiredCredential(t *testing.T) {
	server := newMediaServer(t)
	server.failPutAt = 1
	server.putStatus = http.StatusForbidden
	c := newMediaClient(t, server.URL)

	_, err := c.UploadMedia(context.Background(), []MediaItem{
		{Filename: "a.mp4", Data: []byte("a"), IsVideo: true},
	})
	if !errors.Is(err, ErrUploadExpired) {
		t.Fatalf("err = %v, want ErrUploadExpired", err)
	}
}

func TestResolveSignedURLsPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var keys []string
		if err := json.Unmarshal([]byte(r.URL.Query().Get("keys")), &keys); err != nil {
			t.Errorf("decode keys param: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		urls := make([]string, len(keys))
		for i, key := range keys {
			urls[i] = "https://storage.example.com/" + key + "?sig=abc"
		}
		json.NewEncoder(w).Encode(urls)
	}))
	defer server.Close()

	c := newMediaClient(t, server.URL)

	keys := []string{"media/3-c.jpg", "media/1-a.jpg", "media/2-b.jpg"}
	urls, err := c.ResolveSignedURLs(context.Background(), keys)
	if err != nil {
		t.Fatalf("ResolveSignedURLs: %v", err)
	}
	for i, key := range keys {
		if !strings.Contains(urls[i], key) {
			t.Fatalf("urls[%d] = %q, want URL for %q", i, urls[i], key)
		}
	}
}

func TestResolveSignedURLsEmptyKeysSkipsNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newMediaClient(t, server.URL)

	urls, err := c.ResolveSignedURLs(context.Background(), nil)
	if err != nil {
		t.Fatalf("ResolveSignedURLs: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("urls = %v, want empty", urls)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("empty key list still hit the network")
	}
}

func TestResolveSignedURLsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]string{"only-one"})
	}))
	defer server.Close()

	c := newMediaClient(t, server.URL)

	_, err := c.ResolveSignedURLs(context.Background(), []string{"media/a", "media/b"})
	if !errors.Is(err, ErrMediaResolution) {
		t.Fatalf("err = %v, want ErrMediaResolution", err)
	}
}

func TestListAlertsWithMediaDegradesPerAlert(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/alerts/get", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]Alert{
			{ID: "a1", Media: []string{"media/good.jpg"}},
			{ID: "a2", Media: []string{"media/poison.jpg"}},
			{ID: "a3"},
		})
	})
	mux.HandleFunc("/media/getSignedUrl", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("keys"), "poison") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]string{"https://storage.example.com/media/good.jpg?sig=abc"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newMediaClient(t, server.URL)

	alerts, err := c.ListAlertsWithMedia(context.Background())
	if err != nil {
		t.Fatalf("ListAlertsWithMedia: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("alerts = %d, want 3", len(alerts))
	}
	if len(alerts[0].Media) != 1 || !strings.Contains(alerts[0].Media[0], "sig=") {
		t.Fatalf("alert a1 media = %v, want signed URL", alerts[0].Media)
	}
	if len(alerts[1].Media) != 0 {
		t.Fatalf("alert a2 media = %v, want degraded empty list", alerts[1].Media)
	}
}
