package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/constants"
	"github.com/apmatch/invoice-matcher/internal/common"
	"github.com/apmatch/invoice-matcher/internal/entity"
)

type MatchRepository interface {
	Create(ctx context.Context, m *entity.Match) (*entity.Match, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Match, error)
}

type matchRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMatchRepository(db *sql.DB, logger *slog.Logger) MatchRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchRepo{db: db, logger: logger}
}

// Create assigns the ID and timestamp; the caller fills everything else.
func (r *matchRepo) Create(ctx context.Context, m *entity.Match) (*entity.Match, error) {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (id, company_id, po_id, invoice_id, status, mismatches, fraud_flags, confidence_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID.String(), m.CompanyID.String(), m.POID.String(), m.InvoiceID.String(),
		string(m.Status), string(m.Mismatches), string(m.FraudFlags), m.ConfidenceScore, m.CreatedAt)
	if err != nil {
		r.logger.Error("repo.match.create_failed", "company_id", m.CompanyID, "error", err)
		return nil, common.WrapError(err, "create match")
	}
	return m, nil
}

func (r *matchRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Match, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, po_id, invoice_id, status, mismatches, fraud_flags, confidence_score, created_at
		 FROM matches WHERE id = $1`, id.String())

	var (
		m                            entity.Match
		rawID, rawCID, rawPO, rawInv string
		status, mismatches, flags    string
	)
	err := row.Scan(&rawID, &rawCID, &rawPO, &rawInv, &status, &mismatches, &flags, &m.ConfidenceScore, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("repo.match.get_failed", "id", id, "error", err)
		return nil, common.WrapError(err, "get match")
	}
	ids := []struct {
		raw string
		dst *uuid.UUID
	}{
		{rawID, &m.ID}, {rawCID, &m.CompanyID}, {rawPO, &m.POID}, {rawInv, &m.InvoiceID},
	}
	for _, p := range ids {
		v, err := uuid.Parse(p.raw)
		if err != nil {
			return nil, common.WrapError(err, "parse match id")
		}
		*p.dst = v
	}
	m.Status = constants.MatchStatus(status)
	m.Mismatches = []byte(mismatches)
	m.FraudFlags = []byte(flags)
	return &m, nil
}
