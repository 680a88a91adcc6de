package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abaila/abaila/internal/models"
)

// (POST /alerts/create).
func (c *Controller) CreateAlert(ctx echo.Context) error {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return err
	}

	var req models.CreateAlertRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if _, err := c.alerts.Create(ctx.Request().Context(), userID, req); err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"message": "Alert created"})
}

// (GET /alerts/get).
func (c *Controller) ListAlerts(ctx echo.Context) error {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return err
	}

	alerts, err := c.alerts.List(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, alerts)
}
