package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b20\d{2}[-/.]\d{1,2}[-/.]\d{1,2}\b|\b\d{1,2}[-/.]\d{1,2}[-/.]20\d{2}\b`)
	reCurr   = regexp.MustCompile(`\b(inr|usd|eur|gbp|rs)\b|[₹$£€]`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(,\d{2,3})*(\.\d{2})\b|\b\d+\.\d{2}\b`)
	reDocNo  = regexp.MustCompile(`\b(po|inv|invoice|order)[-#/ ]?\d+`)
)

func hasDatePattern(s string) bool     { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }
func hasDocNoPattern(s string) bool    { return reDocNo.MatchString(s) }

// heuristicConfidence scores decoded text by how much it looks like a
// PO/invoice: date-ish, currency-ish, amount-ish, and doc-number-ish tokens
// each add a little. Purely advisory; never gates the pipeline.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if hasDocNoPattern(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
