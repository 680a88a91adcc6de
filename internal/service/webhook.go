package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abaila/abaila/internal/models"
)

const (
	defaultHTTPStatusThreshold = 300
	webhookTimeout             = 10 * time.Second
)

// WebhookService pushes alert-created notifications to an external endpoint.
// Delivery is best effort: a failed webhook never fails the alert creation.
type WebhookService struct {
	client     *http.Client
	log        *zap.SugaredLogger
	webhookURL string
}

func NewWebhookService(log *zap.SugaredLogger, webhookURL string) *WebhookService {
	return &WebhookService{
		client:     &http.Client{Timeout: webhookTimeout},
		log:        log,
		webhookURL: webhookURL,
	}
}

type alertCreatedEvent struct {
	Event     string          `json:"event"`
	AlertID   string          `json:"alert_id"`
	AlertType string          `json:"alert_type"`
	Location  models.GeoPoint `json:"location"`
	CreatedAt time.Time       `json:"created_at"`
}

func (s *WebhookService) NotifyAlertCreated(ctx context.Context, alert *models.Alert) {
	if s.webhookURL == "" {
		return
	}

	event := alertCreatedEvent{
		Event:     "alert.created",
		AlertID:   alert.ID.String(),
		AlertType: alert.Type,
		Location:  alert.Location,
		CreatedAt: alert.CreatedAt,
	}

	// The request context dies when the handler returns; the delivery must
	// outlive it.
	ctx = context.WithoutCancel(ctx)

	go func() {
		payload, err := json.Marshal(event)
		if err != nil {
			s.log.Errorw("failed to marshal webhook payload", "error", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(payload))
		if err != nil {
			s.log.Errorw("failed to create webhook request", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.log.Errorw("failed to send webhook", "error", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= defaultHTTPStatusThreshold {
			s.log.Warnw("webhook returned non-2xx status", "status", resp.StatusCode)
		}
	}()
}
