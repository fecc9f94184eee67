package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/apmatch/invoice-matcher/internal/entity"
	"github.com/apmatch/invoice-matcher/internal/pipeline"
	"github.com/apmatch/invoice-matcher/internal/repository"
	"github.com/apmatch/invoice-matcher/internal/storage"
)

// ReportWriter is the export dependency, satisfied by *export.Service.
type ReportWriter interface {
	WriteMatchReport(matchID uuid.UUID, po, inv *entity.StructuredDocument, res entity.MatchResult) (string, error)
}

// Server wires repositories, the extraction pipeline, the file store and the
// report renderer behind the HTTP boundary.
type Server struct {
	Companies repository.CompanyRepository
	Documents repository.DocumentRepository
	Matches   repository.MatchRepository
	Files     storage.FileStore
	Stage     *pipeline.DocumentStage
	Reports   ReportWriter

	MaxUploadBytes int64
	Logger         *slog.Logger
}

func New(
	companies repository.CompanyRepository,
	documents repository.DocumentRepository,
	matches repository.MatchRepository,
	files storage.FileStore,
	stage *pipeline.DocumentStage,
	reports ReportWriter,
	maxUploadMB int,
	logger *slog.Logger,
) *Server {
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Companies:      companies,
		Documents:      documents,
		Matches:        matches,
		Files:          files,
		Stage:          stage,
		Reports:        reports,
		MaxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		Logger:         logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Post("/companies", s.handleCreateCompany)
	r.Get("/companies/{id}", s.handleGetCompany)

	r.Post("/upload", s.handleUpload)
	r.Get("/documents", s.handleListDocuments)
	r.Get("/documents/{id}", s.handleGetDocument)
	r.Post("/documents/{id}/ocr", s.handleRunOCR)
	r.Post("/documents/{id}/parse", s.handleRunParse)

	r.Post("/match", s.handleMatch)
	r.Get("/match/{id}", s.handleGetMatch)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// urlID parses the {id} path parameter; a garbled UUID reads as not-found.
func urlID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
