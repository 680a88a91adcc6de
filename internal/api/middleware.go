package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/service"
)

const bearerPrefix = "Bearer "

// BearerAuthMiddleware verifies the Authorization bearer token and stores
// the authenticated user's ID in the echo context. Missing, malformed,
// expired and invalid tokens all yield 401: the credential is the problem,
// not the caller's permissions.
func BearerAuthMiddleware(authService *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			token := strings.TrimPrefix(authHeader, bearerPrefix)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
			}

			userID, err := authService.ValidateAccess(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(models.MwUserIDKey, userID)

			return next(c)
		}
	}
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				a.log.Errorw("Request", fields...)
			} else {
				a.log.Infow("Request", fields...)
			}
			return nil
		},
	}
}
