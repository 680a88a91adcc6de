package api

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/abaila/abaila/internal/controller"
	"github.com/abaila/abaila/internal/service"
	"github.com/abaila/abaila/internal/util"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 5 * time.Second
)

type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	authService     *service.AuthService
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	cleanupFuncs    []func()
}

func NewAPI(
	c *controller.Controller,
	authService *service.AuthService,
	sc *util.ServerConfig,
	l *zap.SugaredLogger,
	cleanupFuncs []func(),
) *API {
	e := echo.New()
	e.HideBanner = true

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	return &API{
		server:          e,
		controller:      c,
		authService:     authService,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
		cleanupFuncs:    cleanupFuncs,
	}
}

func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))

	a.controller.RegisterRoutes(a.server, BearerAuthMiddleware(a.authService))

	a.ListenGracefulShutdown(ctx)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.log.Errorf("shutdown: %v", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	longShutdown := make(chan struct{}, 1)

	go func() {
		time.Sleep(a.gracefulTimeout)
		longShutdown <- struct{}{}
	}()

	select {
	case <-shutdownCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			a.log.Info("server shutdown completed")
		} else {
			a.log.Errorf("server shutdown: %v", ctx.Err())
		}
	case <-longShutdown:
		a.log.Infof("finished")
	}
}
