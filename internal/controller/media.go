package controller

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// (PUT /media/presigned-url).
func (c *Controller) PresignUpload(ctx echo.Context) error {
	contentType := ctx.QueryParam("contentType")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	filename := ctx.QueryParam("filename")

	credential, err := c.media.PresignUpload(ctx.Request().Context(), filename, contentType)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, credential)
}

// (GET /media/getSignedUrl).
func (c *Controller) GetSignedURLs(ctx echo.Context) error {
	var keys []string
	if err := json.Unmarshal([]byte(ctx.QueryParam("keys")), &keys); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON format for keys parameter")
	}

	urls, err := c.media.PresignGet(ctx.Request().Context(), keys)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, urls)
}
