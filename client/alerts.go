package client

import (
	"context"
	"errors"
	"net/http"
)

func (c *Client) CreateAlert(ctx context.Context, req CreateAlertRequest) error {
	resp, err := c.do(ctx, http.MethodPost, "/alerts/create", nil, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return &ServerError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	resp, err := c.do(ctx, http.MethodGet, "/alerts/get", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &ServerError{Status: resp.StatusCode}
	}

	var alerts []Alert
	if err := decodeBody(resp, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListAlertsWithMedia lists the caller's alerts and swaps each alert's
// stored media keys for fresh signed URLs. A resolution failure for one
// alert degrades that alert to an empty media list instead of failing the
// whole listing; only a dead session stops the walk.
func (c *Client) ListAlertsWithMedia(ctx context.Context) ([]Alert, error) {
	alerts, err := c.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range alerts {
		if len(alerts[i].Media) == 0 {
			continue
		}

		urls, err := c.ResolveSignedURLs(ctx, alerts[i].Media)
		if err != nil {
			if errors.Is(err, ErrAuthenticationRequired) {
				return nil, err
			}
			c.log.Warnw("failed to resolve media for alert", "alertID", alerts[i].ID, "error", err)
			alerts[i].Media = []string{}
			continue
		}
		alerts[i].Media = urls
	}

	return alerts, nil
}
