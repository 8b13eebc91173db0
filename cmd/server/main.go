package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/internal/auth"
	"github.com/inkwell-mail/inkwell/internal/blobstore"
	"github.com/inkwell-mail/inkwell/internal/config"
	"github.com/inkwell-mail/inkwell/internal/handler"
	"github.com/inkwell-mail/inkwell/internal/httpserver"
	"github.com/inkwell-mail/inkwell/internal/repository"
	"github.com/inkwell-mail/inkwell/internal/service/ingest"
	"github.com/inkwell-mail/inkwell/internal/service/retention"
	"github.com/inkwell-mail/inkwell/pkg/db"
	"github.com/inkwell-mail/inkwell/pkg/logger"
)

func main() {
	confPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logger.New()
	defer logger.Sync()

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DB, logger)
	if err != nil {
		logger.Fatal("db initialization failed", zap.Error(err))
	}
	defer pool.Close()

	store, err := blobstore.New(cfg.Storage.Config)
	if err != nil {
		logger.Fatal("object storage initialization failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	inboxRepo := repository.NewInboxRepository(pool)

	ingestSvc := ingest.NewService(
		store, articleRepo, inboxRepo,
		cfg.Storage.RawBucket, cfg.Storage.ArticleBucket,
		logger,
	)

	if cfg.Storage.RawRetentionDays > 0 {
		sweeper := retention.New(store, cfg.Storage.RawBucket, cfg.Storage.RawRetentionDays, logger)
		go sweeper.Run(ctx)
	}

	router := httpserver.NewRouter(
		handler.NewIngestHandler(ingestSvc, cfg.Ingest.Secret, logger),
		handler.NewUserHandler(userRepo),
		handler.NewInboxHandler(inboxRepo),
		handler.NewArticleHandler(articleRepo, store, cfg.Storage.ArticleBucket, logger),
		auth.NewVerifier(cfg.Auth),
		pool,
	)

	logger.Info("starting api server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
