package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/apmatch/invoice-matcher/internal/common"
)

// DDL kept portable across sqlite and postgres: TEXT ids (UUID strings),
// TEXT JSON columns, TIMESTAMP set from Go rather than by the engine.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		contact_person TEXT,
		email          TEXT,
		created_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		company_id  TEXT NOT NULL REFERENCES companies(id),
		filename    TEXT NOT NULL,
		doc_type    TEXT NOT NULL,
		uploaded_at TIMESTAMP NOT NULL,
		ocr_text    TEXT,
		parsed_json TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_company ON documents(company_id)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id               TEXT PRIMARY KEY,
		company_id       TEXT NOT NULL REFERENCES companies(id),
		po_id            TEXT NOT NULL REFERENCES documents(id),
		invoice_id       TEXT NOT NULL REFERENCES documents(id),
		status           TEXT NOT NULL,
		mismatches       TEXT NOT NULL,
		fraud_flags      TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		created_at       TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_company ON matches(company_id)`,
}

// Migrate applies the embedded DDL. Statements are idempotent, so running at
// every startup is safe.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Error("db.migrate_failed", "error", err)
			return common.NewAppError("MIGRATE_ERROR", "applying schema", err)
		}
	}
	logger.Info("db.migrated", "statements", len(migrations))
	return nil
}
