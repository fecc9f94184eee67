package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/apmatch/invoice-matcher/internal/common"
	"github.com/apmatch/invoice-matcher/internal/ocr"
)

// runocr extracts text from one file and prints it, for poking at OCR
// behavior without the service running.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <path-to-pdf-or-image>")
		os.Exit(2)
	}
	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		logger.Error("cannot read input", "path", path, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res, err := extractor.Extract(ctx, path)
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	logger.Info("extraction ok",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	fmt.Println(res.Text)
}
