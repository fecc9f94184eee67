package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/apmatch/invoice-matcher/internal/entity"
)

// Service renders reconciliation verdicts into XLSX reports on disk.
type Service struct {
	reportsDir string
	logger     *slog.Logger
}

func NewService(reportsDir string, logger *slog.Logger) (*Service, error) {
	if reportsDir == "" {
		reportsDir = "./uploads/reports"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &Service{reportsDir: reportsDir, logger: logger}, nil
}

// WriteMatchReport renders one workbook for a match and returns its path.
// Layout: document summaries side by side, then mismatches, then fraud flags,
// then the score.
func (s *Service) WriteMatchReport(matchID uuid.UUID, po, inv *entity.StructuredDocument, res entity.MatchResult) (string, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Match Report"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Match ID")
	write(2, 1, matchID.String())

	write(1, 3, "")
	write(2, 3, "Purchase Order")
	write(3, 3, "Invoice")
	row := 4
	for _, line := range []struct {
		label   string
		po, inv string
	}{
		{"Document No", po.DocNumber, inv.DocNumber},
		{"Date", po.Date, inv.Date},
		{"Vendor", po.VendorName, inv.VendorName},
		{"GSTIN", po.VendorGSTIN, inv.VendorGSTIN},
		{"Currency", po.Currency, inv.Currency},
		{"Grand Total", formatAmount(po.GrandTotal), formatAmount(inv.GrandTotal)},
		{"Line Items", fmt.Sprintf("%d", len(po.Items)), fmt.Sprintf("%d", len(inv.Items))},
	} {
		write(1, row, line.label)
		write(2, row, line.po)
		write(3, row, line.inv)
		row++
	}

	row++
	write(1, row, "Mismatches")
	row++
	if len(res.Mismatches) == 0 {
		write(2, row, "none")
		row++
	}
	for _, m := range res.Mismatches {
		write(2, row, m.Type)
		write(3, row, describeMismatch(m))
		row++
	}

	row++
	write(1, row, "Fraud Flags")
	row++
	if len(res.FraudFlags) == 0 {
		write(2, row, "none")
		row++
	}
	for _, flag := range res.FraudFlags {
		write(2, row, flag)
		row++
	}

	row++
	write(1, row, "Confidence Score")
	write(2, row, res.Score)

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "C", 36)

	name := fmt.Sprintf("report_%s_%s.xlsx", matchID.String(), strings.ReplaceAll(uuid.New().String(), "-", ""))
	path := filepath.Join(s.reportsDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.report.ok",
		"match_id", matchID.String(),
		"path", path,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func describeMismatch(m entity.Mismatch) string {
	switch m.Type {
	case entity.MismatchTotal:
		return fmt.Sprintf("PO %s vs Invoice %s (diff %.2f%%)",
			formatAmount(m.POTotal), formatAmount(m.InvoiceTotal), deref(m.DifferencePct)*100)
	case entity.MismatchMissingItem:
		return m.Item
	case entity.MismatchVendor:
		return fmt.Sprintf("PO %q vs Invoice %q", m.POVendor, m.InvoiceVendor)
	}
	return ""
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
