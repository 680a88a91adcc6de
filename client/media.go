package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"

	_ "image/gif"
	_ "image/png"
)

const jpegQuality = 80

// MediaItem is one piece of media queued for upload.
type MediaItem struct {
	Filename string
	Data     []byte
	// IsVideo skips recompression: video bytes pass through unmodified,
	// still images are re-encoded as bounded-quality JPEG.
	IsVideo bool
}

func (m MediaItem) payload() ([]byte, string) {
	if m.IsVideo {
		return m.Data, "video/mp4"
	}

	img, _, err := image.Decode(bytes.NewReader(m.Data))
	if err != nil {
		// Undecodable image data is uploaded as-is.
		return m.Data, "image/jpeg"
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return m.Data, "image/jpeg"
	}
	return buf.Bytes(), "image/jpeg"
}

// RequestUploadCredential asks the server to mint a storage key and a
// matching single-use upload URL. The URL is only good for about a minute:
// the PUT has to happen promptly after this call.
func (c *Client) RequestUploadCredential(ctx context.Context, filename, contentType string) (*UploadCredential, error) {
	query := url.Values{}
	query.Set("contentType", contentType)
	if filename != "" {
		query.Set("filename", filename)
	}

	resp, err := c.do(ctx, http.MethodPut, "/media/presigned-url", query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &ServerError{Status: resp.StatusCode}
	}

	var credential UploadCredential
	if err := decodeBody(resp, &credential); err != nil {
		return nil, err
	}
	return &credential, nil
}

// UploadMedia uploads the items one at a time, in order, bounding memory to
// one decoded item. The batch aborts on the first failure; the keys
// uploaded so far are returned alongside the error, but a caller creating
// an alert must discard them rather than attach a partial media list.
func (c *Client) UploadMedia(ctx context.Context, items []MediaItem) ([]string, error) {
	keys := make([]string, 0, len(items))

	for _, item := range items {
		data, contentType := item.payload()

		credential, err := c.RequestUploadCredential(ctx, item.Filename, contentType)
		if err != nil {
			return keys, err
		}

		if err := c.putObject(ctx, credential.UploadURL, data, contentType); err != nil {
			return keys, err
		}

		keys = append(keys, credential.Key)
	}

	return keys, nil
}

// putObject PUTs raw bytes straight to object storage. The presigned URL is
// the credential, so no bearer token is attached.
func (c *Client) putObject(ctx context.Context, uploadURL string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case isSuccess(resp.StatusCode):
		return nil
	case resp.StatusCode == http.StatusForbidden:
		// Storage rejects expired or already-consumed presigned URLs
		// with 403.
		return ErrUploadExpired
	default:
		return fmt.Errorf("%w: storage returned status %d", ErrUploadFailed, resp.StatusCode)
	}
}

// ResolveSignedURLs exchanges storage keys for time-limited GET URLs in one
// batched request. The response preserves input order. URLs must never be
// cached beyond the current request cycle: they expire, the keys do not.
func (c *Client) ResolveSignedURLs(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}

	encodedKeys, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("encode keys: %w", err)
	}

	query := url.Values{}
	query.Set("keys", string(encodedKeys))

	resp, err := c.do(ctx, http.MethodGet, "/media/getSignedUrl", query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: status %d", ErrMediaResolution, resp.StatusCode)
	}

	var urls []string
	if err := decodeBody(resp, &urls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaResolution, err)
	}
	if len(urls) != len(keys) {
		return nil, fmt.Errorf("%w: got %d URLs for %d keys", ErrMediaResolution, len(urls), len(keys))
	}
	return urls, nil
}
