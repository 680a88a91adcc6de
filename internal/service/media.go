package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/util"
)

const mediaKeyRandomBytes = 16

// MediaService mints storage keys and exchanges them for presigned URLs.
// Keys are permanent; every URL derived from one is short-lived and
// recomputed per request.
type MediaService struct {
	s3     *minio.Client
	cfg    *util.S3Config
	bucket string
}

func NewMediaService(s3 *minio.Client, cfg *util.S3Config) *MediaService {
	return &MediaService{
		s3:     s3,
		cfg:    cfg,
		bucket: cfg.Bucket,
	}
}

// PresignUpload mints a fresh key and a single-use PUT URL bound to the
// given content type. The URL expires after cfg.UploadURLTTL (60s default);
// the client has to finish its upload inside that window.
func (s *MediaService) PresignUpload(ctx context.Context, filename, contentType string) (*models.UploadCredential, error) {
	key, err := mintMediaKey(filename)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	uploadURL, err := s.s3.PresignHeader(ctx, http.MethodPut, s.bucket, key, s.cfg.UploadURLTTL, url.Values{}, headers)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &models.UploadCredential{
		UploadURL: uploadURL.String(),
		Key:       key,
	}, nil
}

// PresignGet returns one time-limited GET URL per key, preserving input
// order.
func (s *MediaService) PresignGet(ctx context.Context, keys []string) ([]string, error) {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		signedURL, err := s.s3.PresignedGetObject(ctx, s.bucket, key, s.cfg.SignedURLTTL, nil)
		if err != nil {
			return nil, fmt.Errorf("presign get for %q: %w", key, err)
		}
		urls = append(urls, signedURL.String())
	}
	return urls, nil
}

func mintMediaKey(filename string) (string, error) {
	raw := make([]byte, mediaKeyRandomBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	key := "media/" + hex.EncodeToString(raw)
	if filename != "" {
		key += "-" + filename
	}
	return key, nil
}
