package matcher

import (
	"math"
	"strings"
	"time"

	"github.com/apmatch/invoice-matcher/internal/entity"
)

const (
	totalTolerancePct  = 0.02
	totalPenaltyCap    = 50.0
	missingItemPenalty = 10.0
	datePenalty        = 15.0
	vendorPenalty      = 8.0
)

// Match reconciles an invoice against its purchase order. Pure and
// deterministic: same inputs, same result, no I/O, no clock. Rules run in a
// fixed order so reports and persisted mismatch lists are stable:
// totals, line items, dates, vendor.
//
// Every comparison is skipped when either side lacks the field. Absence is
// not a discrepancy; only contradiction is.
func Match(po, inv *entity.StructuredDocument) entity.MatchResult {
	res := entity.MatchResult{
		Mismatches: []entity.Mismatch{},
		FraudFlags: []string{},
	}
	score := 100.0

	score -= checkTotals(po, inv, &res)
	score -= checkItems(po, inv, &res)
	score -= checkDates(po, inv, &res)
	score -= checkVendor(po, inv, &res)

	if score < 0 {
		score = 0
	}
	res.Score = math.Round(score*100) / 100
	return res
}

// checkTotals compares grand totals when both are present. The difference is
// relative to the PO total; a zero PO total uses divisor 1 so a nonzero
// invoice is still flagged instead of dividing by zero.
func checkTotals(po, inv *entity.StructuredDocument, res *entity.MatchResult) float64 {
	if po.GrandTotal == nil || inv.GrandTotal == nil {
		return 0
	}
	divisor := *po.GrandTotal
	if divisor == 0 {
		divisor = 1
	}
	diffPct := math.Abs(*inv.GrandTotal-*po.GrandTotal) / divisor
	if diffPct <= totalTolerancePct {
		return 0
	}
	d := diffPct
	res.Mismatches = append(res.Mismatches, entity.Mismatch{
		Type:          entity.MismatchTotal,
		POTotal:       po.GrandTotal,
		InvoiceTotal:  inv.GrandTotal,
		DifferencePct: &d,
	})
	return math.Min(totalPenaltyCap, diffPct*100)
}

// checkItems verifies every PO line appears on the invoice. Descriptions are
// compared case-folded; exact match first, then a substring containment
// fallback in either direction ("steel rod" matches "steel rod 10mm").
// Duplicate descriptions collapse to one key, first-seen order, so
// missing-item mismatches come out in document order and a duplicated PO line
// is only penalized once. The penalty itself is unbounded: a wholly unrelated
// invoice should crater the score.
func checkItems(po, inv *entity.StructuredDocument, res *entity.MatchResult) float64 {
	if len(po.Items) == 0 {
		return 0
	}

	invKeys := make([]string, 0, len(inv.Items))
	invSeen := make(map[string]struct{}, len(inv.Items))
	for _, it := range inv.Items {
		k := foldDescription(it.Description)
		if k == "" {
			continue
		}
		if _, dup := invSeen[k]; !dup {
			invSeen[k] = struct{}{}
			invKeys = append(invKeys, k)
		}
	}

	poKeys := make([]string, 0, len(po.Items))
	poSeen := make(map[string]struct{}, len(po.Items))
	for _, it := range po.Items {
		k := foldDescription(it.Description)
		if k == "" {
			continue
		}
		if _, dup := poSeen[k]; !dup {
			poSeen[k] = struct{}{}
			poKeys = append(poKeys, k)
		}
	}

	var penalty float64
	for _, pk := range poKeys {
		if _, ok := invSeen[pk]; ok {
			continue
		}
		if fuzzyPresent(pk, invKeys) {
			continue
		}
		res.Mismatches = append(res.Mismatches, entity.Mismatch{
			Type: entity.MismatchMissingItem,
			Item: pk,
		})
		penalty += missingItemPenalty
	}
	return penalty
}

func fuzzyPresent(key string, invKeys []string) bool {
	for _, ik := range invKeys {
		if strings.Contains(ik, key) || strings.Contains(key, ik) {
			return true
		}
	}
	return false
}

func foldDescription(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// checkDates flags an invoice dated strictly before its purchase order.
// Dates that fail to parse as YYYY-MM-DD are skipped silently: a garbled date
// is an extraction problem, not evidence of fraud.
func checkDates(po, inv *entity.StructuredDocument, res *entity.MatchResult) float64 {
	poDate, err := time.Parse(time.DateOnly, po.Date)
	if err != nil {
		return 0
	}
	invDate, err := time.Parse(time.DateOnly, inv.Date)
	if err != nil {
		return 0
	}
	if !invDate.Before(poDate) {
		return 0
	}
	res.FraudFlags = append(res.FraudFlags, entity.FraudInvoiceDateBeforePO)
	return datePenalty
}

// checkVendor compares vendor names case-insensitively when both are present.
// The mismatch carries the raw extracted names so a report shows exactly what
// the documents said.
func checkVendor(po, inv *entity.StructuredDocument, res *entity.MatchResult) float64 {
	if po.VendorName == "" || inv.VendorName == "" {
		return 0
	}
	if strings.EqualFold(strings.TrimSpace(po.VendorName), strings.TrimSpace(inv.VendorName)) {
		return 0
	}
	res.Mismatches = append(res.Mismatches, entity.Mismatch{
		Type:          entity.MismatchVendor,
		POVendor:      po.VendorName,
		InvoiceVendor: inv.VendorName,
	})
	return vendorPenalty
}
