package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moneyapp/moneyapp/internal/domain/categorization"
	"github.com/moneyapp/moneyapp/internal/domain/extraction"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/handler"
	"github.com/moneyapp/moneyapp/internal/domain/ledger"
	"github.com/moneyapp/moneyapp/internal/extract"
	"github.com/moneyapp/moneyapp/pkg/config"
	"github.com/moneyapp/moneyapp/pkg/cron"
	"github.com/moneyapp/moneyapp/pkg/metrics"
	"github.com/moneyapp/moneyapp/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Store     *ledger.Store
	Engine    *categorization.Engine
	Service   *extraction.Service
	Handler   *handler.Handler
	Metrics   *metrics.Metrics
	Archive   storage.Archive
	Scheduler *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := ledger.NewStore(cfg.Ledger.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init ledger: %w", err)
	}

	var ocr extraction.OCRClient = extract.DisabledOCR{}
	if cfg.Gemini.APIKey != "" {
		vision, err := extract.NewVisionOCR(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to init ocr: %w", err)
		}
		ocr = vision
	} else {
		logger.Warn("GEMINI_API_KEY not set, ocr disabled")
	}

	svc := extraction.NewService(extract.NewPDFExtractor(), ocr, logger).
		WithTabularReaders(extract.NewCSVReader(), extract.NewExcelReader())

	engine := categorization.NewEngine()
	m := metrics.New(prometheus.DefaultRegisterer)

	h := handler.New(svc, store, engine, m, logger)

	var archive storage.Archive
	if cfg.Storage.Enabled {
		local, err := storage.NewLocalArchive(cfg.Storage.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to init upload archive: %w", err)
		}
		archive = local
		h = h.WithArchive(archive)
	}

	deps := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Engine:    engine,
		Service:   svc,
		Handler:   h,
		Metrics:   m,
		Archive:   archive,
		Scheduler: cron.NewScheduler(store, cfg.Ledger.SnapshotDir, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}
