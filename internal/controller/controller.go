package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abaila/abaila/internal/service"
)

type Controller struct {
	log      *zap.SugaredLogger
	auth     *service.AuthService
	profiles *service.ProfileService
	alerts   *service.AlertService
	media    *service.MediaService
}

func NewController(
	log *zap.SugaredLogger,
	auth *service.AuthService,
	profiles *service.ProfileService,
	alerts *service.AlertService,
	media *service.MediaService,
) *Controller {
	return &Controller{
		log:      log,
		auth:     auth,
		profiles: profiles,
		alerts:   alerts,
		media:    media,
	}
}

// RegisterRoutes wires every route by hand: the auth endpoints stay open,
// everything else sits behind the bearer middleware.
func (c *Controller) RegisterRoutes(e *echo.Echo, bearerAuth echo.MiddlewareFunc) {
	e.GET("/ping", c.CheckServer)

	e.POST("/login", c.Login)
	e.POST("/register", c.Register)
	e.POST("/token", c.RefreshToken)
	e.DELETE("/logout", c.Logout)

	g := e.Group("", bearerAuth)
	g.GET("/profile", c.GetProfile)
	g.PUT("/profile/update", c.UpdateProfile)
	g.POST("/alerts/create", c.CreateAlert)
	g.GET("/alerts/get", c.ListAlerts)
	g.PUT("/media/presigned-url", c.PresignUpload)
	g.GET("/media/getSignedUrl", c.GetSignedURLs)
}

// (GET /ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}
