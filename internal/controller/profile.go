package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abaila/abaila/internal/models"
)

func userIDFrom(ctx echo.Context) (int64, error) {
	userID, ok := ctx.Get(models.MwUserIDKey).(int64)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}
	return userID, nil
}

// (GET /profile).
func (c *Controller) GetProfile(ctx echo.Context) error {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return err
	}

	profile, err := c.profiles.Get(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, profile)
}

// (PUT /profile/update).
func (c *Controller) UpdateProfile(ctx echo.Context) error {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return err
	}

	var req models.ProfileUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.profiles.Update(ctx.Request().Context(), userID, req); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"message": "Profile updated"})
}
