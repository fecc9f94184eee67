package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/apmatch/invoice-matcher/constants"
	"github.com/apmatch/invoice-matcher/internal/entity"
	"github.com/apmatch/invoice-matcher/internal/matcher"
)

// runmatch reconciles two parsed documents straight from JSON files, handy
// for replaying a verdict or testing rule changes against saved extractions.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) != 3 {
		logger.Error("usage", "cmd", "runmatch <po.json> <invoice.json>")
		os.Exit(2)
	}

	po, err := loadDocument(os.Args[1])
	if err != nil {
		logger.Error("load purchase order", "path", os.Args[1], "error", err)
		os.Exit(1)
	}
	inv, err := loadDocument(os.Args[2])
	if err != nil {
		logger.Error("load invoice", "path", os.Args[2], "error", err)
		os.Exit(1)
	}

	result := matcher.Match(po, inv)
	status := matcher.DeriveStatus(result)

	out, err := json.MarshalIndent(map[string]any{
		"status": string(status),
		"result": result,
	}, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if status != constants.MatchStatusMatched {
		os.Exit(3)
	}
}

func loadDocument(path string) (*entity.StructuredDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc entity.StructuredDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
