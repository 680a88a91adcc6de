package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/storage"
)

type AlertService struct {
	alerts   storage.AlertRepository
	webhook  *WebhookService
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewAlertService(alerts storage.AlertRepository, webhook *WebhookService, log *zap.SugaredLogger) *AlertService {
	return &AlertService{
		alerts:   alerts,
		webhook:  webhook,
		validate: validator.New(),
		log:      log,
	}
}

// Create persists a new alert owned by userID. The creator reference is set
// once here and never updated afterwards.
func (s *AlertService) Create(ctx context.Context, userID int64, req models.CreateAlertRequest) (*models.Alert, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	location := req.Location
	if location.Type == "" {
		location.Type = "Point"
	}

	alert := models.Alert{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Location:    location,
		Media:       req.Media,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.alerts.CreateAlert(ctx, userID, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}

	s.log.Infow("alert created", "alertID", alert.ID, "type", alert.Type, "media", len(alert.Media))
	s.webhook.NotifyAlertCreated(ctx, &alert)

	return &alert, nil
}

func (s *AlertService) List(ctx context.Context, userID int64) ([]models.Alert, error) {
	alerts, err := s.alerts.ListAlertsByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts, nil
}
