package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/internal/blobstore"
	"github.com/inkwell-mail/inkwell/internal/config"
	"github.com/inkwell-mail/inkwell/internal/repository"
	"github.com/inkwell-mail/inkwell/internal/service/dispatch"
	"github.com/inkwell-mail/inkwell/internal/smtprecv"
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

	dispatcher := dispatch.New(cfg.Ingest.APIURL, cfg.Ingest.Secret, logger)
	backend := smtprecv.NewBackend(
		repository.NewUserRepository(pool),
		store,
		dispatcher,
		cfg.Storage.RawBucket,
		logger,
	)
	server := smtprecv.NewServer(backend, cfg.SMTP.Listen, cfg.SMTP.Domain)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		server.Close()
	}()

	logger.Info("starting mail receiver",
		zap.String("listen", cfg.SMTP.Listen),
		zap.String("domain", cfg.SMTP.Domain),
	)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("smtp server stopped", zap.Error(err))
	}

	// Accepted deliveries get their one handoff attempt before exit.
	dispatcher.Wait()
}
