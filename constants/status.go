package constants

// MatchStatus is the ternary verdict derived from a reconciliation result.
type MatchStatus string

// Stable values (store these exact strings in DB).
const (
	MatchStatusMatched MatchStatus = "Matched" // no mismatches, no fraud flags
	MatchStatusWarning MatchStatus = "Warning" // discrepancies found, score >= 60
	MatchStatusFailed  MatchStatus = "Failed"  // discrepancies found, score < 60
)
