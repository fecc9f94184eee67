package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/internal/common"
	"github.com/apmatch/invoice-matcher/internal/entity"
)

type CompanyRepository interface {
	Create(ctx context.Context, name string, contactPerson, email *string) (*entity.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
}

type companyRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCompanyRepository(db *sql.DB, logger *slog.Logger) CompanyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &companyRepo{db: db, logger: logger}
}

func (r *companyRepo) Create(ctx context.Context, name string, contactPerson, email *string) (*entity.Company, error) {
	c := &entity.Company{
		ID:            uuid.New(),
		Name:          name,
		ContactPerson: contactPerson,
		Email:         email,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, contact_person, email, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID.String(), c.Name, c.ContactPerson, c.Email, c.CreatedAt)
	if err != nil {
		r.logger.Error("repo.company.create_failed", "name", name, "error", err)
		return nil, common.WrapError(err, "create company")
	}
	return c, nil
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, contact_person, email, created_at FROM companies WHERE id = $1`,
		id.String())

	var (
		c     entity.Company
		rawID string
	)
	err := row.Scan(&rawID, &c.Name, &c.ContactPerson, &c.Email, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("repo.company.get_failed", "id", id, "error", err)
		return nil, common.WrapError(err, "get company")
	}
	c.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, common.WrapError(err, "parse company id")
	}
	return &c, nil
}
