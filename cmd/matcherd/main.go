package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apmatch/invoice-matcher/internal/common"
	"github.com/apmatch/invoice-matcher/internal/export"
	"github.com/apmatch/invoice-matcher/internal/llm/openai"
	"github.com/apmatch/invoice-matcher/internal/ocr"
	"github.com/apmatch/invoice-matcher/internal/pipeline"
	"github.com/apmatch/invoice-matcher/internal/repository"
	"github.com/apmatch/invoice-matcher/internal/server"
	"github.com/apmatch/invoice-matcher/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	if err := repository.Migrate(ctx, db, logger); err != nil {
		logger.Error("migrate db", "error", err)
		os.Exit(1)
	}

	companies := repository.NewCompanyRepository(db, logger)
	documents := repository.NewDocumentRepository(db, logger)
	matches := repository.NewMatchRepository(db, logger)

	files, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.MaxUploadMB, logger)
	if err != nil {
		logger.Error("init file store", "error", err)
		os.Exit(1)
	}

	reports, err := export.NewService(cfg.Storage.ReportsDir, logger)
	if err != nil {
		logger.Error("init report dir", "error", err)
		os.Exit(1)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	llmClient := openai.NewClient(openai.Config{
		Enabled:       cfg.LLM.Enabled,
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
		MaxInputChars: cfg.LLM.MaxInputChars,
	}, logger)

	proc := pipeline.NewProcessor(extractor, llmClient, logger)
	stage := pipeline.NewDocumentStage(documents, proc, files.Path, logger)

	s := server.New(companies, documents, matches, files, stage, reports, cfg.Storage.MaxUploadMB, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http.serving", "addr", cfg.Server.HTTPAddr, "llm_enabled", cfg.LLM.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http.serve_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http.shutdown_failed", "error", err)
	}
	logger.Info("stopped")
}
