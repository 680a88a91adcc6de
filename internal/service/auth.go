package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/storage"
)

var (
	// ErrInvalidLogin covers both unknown email and wrong password so a
	// caller cannot probe which of the two failed.
	ErrInvalidLogin = errors.New("invalid email or password")

	ErrRefreshMissing = errors.New("refresh token required")
	ErrRefreshInvalid = errors.New("invalid refresh token")
	ErrInvalidPayload = errors.New("invalid request payload")
)

type AuthService struct {
	users        storage.UserRepository
	refreshStore storage.RefreshTokenStore
	tokens       *TokenService
	validate     *validator.Validate
	log          *zap.SugaredLogger
}

func NewAuthService(
	users storage.UserRepository,
	refreshStore storage.RefreshTokenStore,
	tokens *TokenService,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		users:        users,
		refreshStore: refreshStore,
		tokens:       tokens,
		validate:     validator.New(),
		log:          log,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenPairResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		return nil, err
	}

	s.log.Infow("user registered", "userID", user.ID, "username", user.Username)

	return s.issuePair(ctx, user.ID)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPairResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidLogin
	}

	return s.issuePair(ctx, user.ID)
}

// issuePair creates an access/refresh pair and records the refresh token
// server-side, replacing any previous one the user held.
func (s *AuthService) issuePair(ctx context.Context, userID int64) (*models.TokenPairResponse, error) {
	now := time.Now()

	accessToken, err := s.tokens.CreateAccessToken(userID, now)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshToken, err := s.tokens.CreateRefreshToken(userID, now)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	if err := s.refreshStore.Save(ctx, userID, refreshToken, s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.TokenPairResponse{
		Message:      "Login successful",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a stored refresh token for a fresh access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrRefreshMissing
	}

	storedUserID, err := s.refreshStore.UserID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrRefreshNotFound) {
			return "", ErrRefreshInvalid
		}
		return "", fmt.Errorf("look up refresh token: %w", err)
	}

	claimUserID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil || claimUserID != storedUserID {
		// Signature failure or a token that no longer matches its
		// server-side record invalidates the stored credential.
		if delErr := s.refreshStore.Delete(ctx, refreshToken); delErr != nil {
			s.log.Errorw("failed to delete mismatched refresh token", "error", delErr)
		}
		return "", ErrRefreshInvalid
	}

	accessToken, err := s.tokens.CreateAccessToken(storedUserID, time.Now())
	if err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}

	return accessToken, nil
}

// Logout invalidates the server-side refresh credential. Unknown tokens are
// not an error: logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refreshStore.Delete(ctx, refreshToken)
}

// ValidateAccess verifies a bearer token and returns its owner.
func (s *AuthService) ValidateAccess(token string) (int64, error) {
	return s.tokens.ValidateAccessToken(token)
}
