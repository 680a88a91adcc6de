package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/storage/memory"
)

func newWebhookReceiver(t *testing.T) (*httptest.Server, <-chan alertCreatedEvent) {
	t.Helper()
	events := make(chan alertCreatedEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event alertCreatedEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode webhook payload: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		events <- event
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, events
}

func waitForEvent(t *testing.T, events <-chan alertCreatedEvent) alertCreatedEvent {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
		return alertCreatedEvent{}
	}
}

func TestAlertCreateDeliversWebhook(t *testing.T) {
	server, events := newWebhookReceiver(t)
	log := zap.NewNop().Sugar()

	svc := NewAlertService(memory.NewAlertStore(), NewWebhookService(log, server.URL), log)

	alert, err := svc.Create(context.Background(), 42, models.CreateAlertRequest{
		Title:    "Fire",
		Type:     "fire",
		Location: models.GeoPoint{Type: "Point", Coordinates: [2]float64{76.88, 43.23}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	event := waitForEvent(t, events)
	if event.Event != "alert.created" {
		t.Fatalf("event = %q, want alert.created", event.Event)
	}
	if event.AlertID != alert.ID.String() {
		t.Fatalf("alert ID = %q, want %q", event.AlertID, alert.ID)
	}
	if event.AlertType != "fire" {
		t.Fatalf("alert type = %q, want fire", event.AlertType)
	}
	if event.Location.Coordinates != alert.Location.Coordinates {
		t.Fatalf("location = %v, want %v", event.Location.Coordinates, alert.Location.Coordinates)
	}
}

func TestWebhookOutlivesCallerContext(t *testing.T) {
	server, events := newWebhookReceiver(t)

	svc := NewWebhookService(zap.NewNop().Sugar(), server.URL)

	// An HTTP handler's context is canceled as soon as the handler
	// returns; the notification must still go out.
	ctx, cancel := context.WithCancel(context.Background())
	svc.NotifyAlertCreated(ctx, &models.Alert{Type: "flood", CreatedAt: time.Now().UTC()})
	cancel()

	event := waitForEvent(t, events)
	if event.AlertType != "flood" {
		t.Fatalf("alert type = %q, want flood", event.AlertType)
	}
}
