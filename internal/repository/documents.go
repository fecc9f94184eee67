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

type DocumentRepository interface {
	Create(ctx context.Context, companyID uuid.UUID, filename string, docType constants.DocType) (*entity.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Document, error)
	SaveOCRText(ctx context.Context, id uuid.UUID, text string) error
	SaveParsed(ctx context.Context, id uuid.UUID, ocrText string, parsed []byte) error
}

type documentRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewDocumentRepository(db *sql.DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger}
}

func (r *documentRepo) Create(ctx context.Context, companyID uuid.UUID, filename string, docType constants.DocType) (*entity.Document, error) {
	d := &entity.Document{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Filename:   filename,
		DocType:    docType,
		UploadedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, company_id, filename, doc_type, uploaded_at) VALUES ($1, $2, $3, $4, $5)`,
		d.ID.String(), d.CompanyID.String(), d.Filename, string(d.DocType), d.UploadedAt)
	if err != nil {
		r.logger.Error("repo.document.create_failed", "company_id", companyID, "filename", filename, "error", err)
		return nil, common.WrapError(err, "create document")
	}
	return d, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, filename, doc_type, uploaded_at, ocr_text, parsed_json
		 FROM documents WHERE id = $1`, id.String())
	d, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("repo.document.get_failed", "id", id, "error", err)
		return nil, common.WrapError(err, "get document")
	}
	return d, nil
}

func (r *documentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, filename, doc_type, uploaded_at, ocr_text, parsed_json
		 FROM documents WHERE company_id = $1 ORDER BY uploaded_at, id`, companyID.String())
	if err != nil {
		r.logger.Error("repo.document.list_failed", "company_id", companyID, "error", err)
		return nil, common.WrapError(err, "list documents")
	}
	defer rows.Close()

	out := make([]*entity.Document, 0, 16)
	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, common.WrapError(err, "scan document")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *documentRepo) SaveOCRText(ctx context.Context, id uuid.UUID, text string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET ocr_text = $1 WHERE id = $2`, text, id.String())
	if err != nil {
		r.logger.Error("repo.document.save_ocr_failed", "id", id, "error", err)
		return common.WrapError(err, "save ocr text")
	}
	return requireRow(res)
}

func (r *documentRepo) SaveParsed(ctx context.Context, id uuid.UUID, ocrText string, parsed []byte) error {
	var parsedCol any
	if len(parsed) > 0 {
		parsedCol = string(parsed)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET ocr_text = $1, parsed_json = $2 WHERE id = $3`,
		ocrText, parsedCol, id.String())
	if err != nil {
		r.logger.Error("repo.document.save_parsed_failed", "id", id, "error", err)
		return common.WrapError(err, "save parsed document")
	}
	return requireRow(res)
}

func scanDocument(scan func(dest ...any) error) (*entity.Document, error) {
	var (
		d              entity.Document
		rawID, rawCID  string
		docType        string
		ocrText        sql.NullString
		parsed         sql.NullString
	)
	if err := scan(&rawID, &rawCID, &d.Filename, &docType, &d.UploadedAt, &ocrText, &parsed); err != nil {
		return nil, err
	}
	var err error
	if d.ID, err = uuid.Parse(rawID); err != nil {
		return nil, err
	}
	if d.CompanyID, err = uuid.Parse(rawCID); err != nil {
		return nil, err
	}
	d.DocType = constants.DocType(docType)
	if ocrText.Valid {
		d.OCRText = &ocrText.String
	}
	if parsed.Valid && parsed.String != "" {
		d.ParsedJSON = []byte(parsed.String)
	}
	return &d, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.WrapError(err, "rows affected")
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
