package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/storage"
)

type AlertRepository struct {
	db storage.DBTX
}

func NewAlertRepository(db storage.DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) CreateAlert(ctx context.Context, userID int64, alert models.Alert) error {
	query := `INSERT INTO alerts (id, title, description, type, longitude, latitude, media, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.Title,
		alert.Description,
		alert.Type,
		alert.Location.Coordinates[0],
		alert.Location.Coordinates[1],
		pq.Array(alert.Media),
		alert.CreatedAt,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) ListAlertsByCreator(ctx context.Context, userID int64) ([]models.Alert, error) {
	query := `SELECT a.id, a.title, a.description, a.type, a.longitude, a.latitude, a.media,
		a.likes, a.comments, a.views, a.created_at, u.username
		FROM alerts a JOIN users u ON u.id = a.created_by
		WHERE a.created_by = $1
		ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var media pq.StringArray
		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Description,
			&a.Type,
			&a.Location.Coordinates[0],
			&a.Location.Coordinates[1],
			&media,
			&a.Likes,
			&a.Comments,
			&a.Views,
			&a.CreatedAt,
			&a.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Location.Type = "Point"
		a.Media = media
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alert rows: %w", err)
	}
	return alerts, nil
}
