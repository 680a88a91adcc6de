package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abaila/abaila/internal/storage"
)

const (
	tokenKeyPrefix = "refresh:token:"
	userKeyPrefix  = "refresh:user:"
)

// RefreshTokenStore keeps refresh credentials in Redis, indexed both by
// token (for /token and /logout lookups) and by user (so issuing a new
// credential invalidates the previous one).
type RefreshTokenStore struct {
	client *redis.Client
}

func NewRefreshTokenStore(client *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{client: client}
}

func (s *RefreshTokenStore) Save(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	userKey := userKeyPrefix + strconv.FormatInt(userID, 10)

	// A user gets exactly one active refresh credential: drop the old
	// token mapping before writing the new pair.
	oldToken, err := s.client.Get(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("get previous refresh token: %w", err)
	}

	pipe := s.client.TxPipeline()
	if oldToken != "" {
		pipe.Del(ctx, tokenKeyPrefix+oldToken)
	}
	pipe.Set(ctx, tokenKeyPrefix+token, userID, ttl)
	pipe.Set(ctx, userKey, token, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) UserID(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, storage.ErrRefreshNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get refresh token: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse refresh token owner: %w", err)
	}
	return userID, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, token string) error {
	userID, err := s.UserID(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrRefreshNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tokenKeyPrefix+token)
	pipe.Del(ctx, userKeyPrefix+strconv.FormatInt(userID, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	userKey := userKeyPrefix + strconv.FormatInt(userID, 10)

	token, err := s.client.Get(ctx, userKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get user refresh token: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tokenKeyPrefix+token)
	pipe.Del(ctx, userKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete user refresh tokens: %w", err)
	}
	return nil
}
