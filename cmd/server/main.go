package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/abaila/abaila/internal/api"
	"github.com/abaila/abaila/internal/controller"
	"github.com/abaila/abaila/internal/migrations"
	"github.com/abaila/abaila/internal/service"
	"github.com/abaila/abaila/internal/storage/postgres"
	redisstorage "github.com/abaila/abaila/internal/storage/redis"
	"github.com/abaila/abaila/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger, "./internal/migrations"); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	s3Config := util.NewS3Config()
	s3Client, err := util.NewS3Client(logger, s3Config)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	store := postgres.NewStorage(db)
	refreshStore := redisstorage.NewRefreshTokenStore(redisClient)
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	tokenService := service.NewTokenService(util.NewTokenConfig())
	authService := service.NewAuthService(store, refreshStore, tokenService, logger)
	profileService := service.NewProfileService(store)
	webhookService := service.NewWebhookService(logger, util.GetWebhookURL())
	alertService := service.NewAlertService(store, webhookService, logger)
	mediaService := service.NewMediaService(s3Client, s3Config)

	ctrl := controller.NewController(logger, authService, profileService, alertService, mediaService)

	apiServer := api.NewAPI(ctrl, authService, util.NewServerConfig(), logger, cleanupFuncs)
	apiServer.Run(ctx)
}
