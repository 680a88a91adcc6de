package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/abaila/abaila/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrRefreshNotFound = errors.New("refresh token not found")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Storage interface {
	UserRepository
	AlertRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, email, username string) error
}

type AlertRepository interface {
	CreateAlert(ctx context.Context, userID int64, alert models.Alert) error
	ListAlertsByCreator(ctx context.Context, userID int64) ([]models.Alert, error)
}

// RefreshTokenStore owns the server side of the refresh credential:
// exactly one active token per user, expiring with the credential itself.
type RefreshTokenStore interface {
	Save(ctx context.Context, userID int64, token string, ttl time.Duration) error
	UserID(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}
