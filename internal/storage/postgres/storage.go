package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abaila/abaila/internal/storage"
)

type Storage struct {
	db *sql.DB
	*UserRepository
	*AlertRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:              db,
		UserRepository:  NewUserRepository(db),
		AlertRepository: NewAlertRepository(db),
	}
}

// UpdateProfile shadows the embedded repository method so callers holding a
// *Storage always get the transactional variant.
func (s *Storage) UpdateProfile(ctx context.Context, userID int64, email, username string) error {
	return s.UpdateProfileTx(ctx, userID, email, username)
}

// UpdateProfileTx updates email and username atomically: the existence check
// and the write happen in one transaction so a concurrent registration with
// the same email surfaces as ErrUserExists, not a half-applied update.
func (s *Storage) UpdateProfileTx(ctx context.Context, userID int64, email, username string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	userRepoTx := NewUserRepository(tx)

	if _, err := userRepoTx.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return storage.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user in tx: %w", err)
	}

	if err := userRepoTx.UpdateProfile(ctx, userID, email, username); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
