package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abaila/abaila/internal/models"
)

// (POST /login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	pair, err := c.auth.Login(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, pair)
}

// (POST /register).
func (c *Controller) Register(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	pair, err := c.auth.Register(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, pair)
}

// (POST /token).
func (c *Controller) RefreshToken(ctx echo.Context) error {
	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	accessToken, err := c.auth.Refresh(ctx.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, models.AccessTokenResponse{AccessToken: accessToken})
}

// (DELETE /logout).
func (c *Controller) Logout(ctx echo.Context) error {
	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.auth.Logout(ctx.Request().Context(), req.RefreshToken); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
