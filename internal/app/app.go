package app

import (
	"context"
	"fmt"
	"log"

	"github.com/psarz/g2g-converter/internal/artifact"
	"github.com/psarz/g2g-converter/internal/cache"
	"github.com/psarz/g2g-converter/internal/config"
	"github.com/psarz/g2g-converter/internal/handler"
	"github.com/psarz/g2g-converter/internal/history"
	"github.com/psarz/g2g-converter/internal/server"
)

type App struct {
	server  *server.Server
	history *history.Store
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	parseCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	historyStore := history.Open(cfg.HistoryDSN, cfg.HistoryPath)

	var artifacts handler.ArtifactStore
	if cfg.Artifact.Enabled {
		s3, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			log.Printf("Artifact store disabled: %v", err)
		} else {
			artifacts = s3
		}
	}

	api := handler.New(cfg.Version, cfg.MaxBodyBytes, parseCache, historyStore, artifacts)
	mux := server.NewMux(api)
	srv := server.New(cfg.Port, mux)

	return &App{
		server:  srv,
		history: historyStore,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.history.Close(); err == nil {
		err = cerr
	}
	return err
}
