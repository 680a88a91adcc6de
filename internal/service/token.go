package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/abaila/abaila/internal/util"
)

var (
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrInvalidUserID        = errors.New("invalid userID")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
)

// TokenService issues and verifies the two JWT kinds: short-lived access
// tokens and longer-lived refresh tokens, each signed with its own secret.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(cfg *util.TokenConfig) *TokenService {
	return &TokenService{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

type jwtClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (ts *TokenService) CreateAccessToken(userID int64, now time.Time) (string, error) {
	return ts.createToken(userID, now, ts.accessTTL, ts.accessSecret)
}

func (ts *TokenService) CreateRefreshToken(userID int64, now time.Time) (string, error) {
	return ts.createToken(userID, now, ts.refreshTTL, ts.refreshSecret)
}

func (ts *TokenService) createToken(userID int64, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	// A fresh JTI keeps two same-second tokens for one user distinct.
	claims := &jwtClaims{
		UserID: strconv.FormatInt(userID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signed string: %w", err)
	}

	return signedToken, nil
}

func (ts *TokenService) ValidateAccessToken(token string) (int64, error) {
	return ts.validateToken(token, ts.accessSecret)
}

func (ts *TokenService) ValidateRefreshToken(token string) (int64, error) {
	return ts.validateToken(token, ts.refreshSecret)
}

func (ts *TokenService) validateToken(token string, secret []byte) (int64, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithLeeway(util.JWTLeeWay),
		jwt.WithExpirationRequired(),
	}

	parsedToken, err := jwt.ParseWithClaims(
		token,
		&jwtClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
				return nil, ErrInvalidSigningMethod
			}
			return secret, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if parsedToken == nil || !parsedToken.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(*jwtClaims)
	if !ok || claims.UserID == "" {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return 0, ErrInvalidUserID
	}

	return userID, nil
}

func (ts *TokenService) RefreshTTL() time.Duration {
	return ts.refreshTTL
}
