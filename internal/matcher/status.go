package matcher

import (
	"github.com/apmatch/invoice-matcher/constants"
	"github.com/apmatch/invoice-matcher/internal/entity"
)

const warningThreshold = 60.0

// DeriveStatus collapses a result into the ternary verdict. Matched requires
// a completely clean run; any mismatch or fraud flag demotes to Warning or
// Failed on the score alone.
func DeriveStatus(res entity.MatchResult) constants.MatchStatus {
	if len(res.Mismatches) == 0 && len(res.FraudFlags) == 0 {
		return constants.MatchStatusMatched
	}
	if res.Score >= warningThreshold {
		return constants.MatchStatusWarning
	}
	return constants.MatchStatusFailed
}
