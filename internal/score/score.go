// Package score computes match confidence for pooled deal candidates.
// Scoring is pure: a candidate plus the extracted identifiers always yields
// the same score. Loan-number and fallback matches never reach the scorer;
// both are fixed at 100.
package score

import (
	"strings"

	"github.com/ridgelinecap/dealmatch/internal/model"
)

const (
	dealNameBase      = 85
	dealNameSubstring = 90
	dealNameExact     = 95

	addressBase        = 80
	addressNumberBonus = 5
	addressLengthBonus = 5
	longAddressLength  = 25

	corroborationBonus = 10
	maxScore           = 100
)

// Candidate scores a pooled candidate against the identifiers extracted
// from the email.
func Candidate(c model.Candidate, ids model.ParsedIdentifiers) int {
	var s int
	switch c.Type {
	case model.MatchDealName:
		s = dealNameScore(c.MatchedText, c.Deal.Name)
	case model.MatchAddress:
		s = addressScore(c.MatchedText, c.Deal)
	default:
		return 0
	}

	s += corroboration(c, ids)

	if s > maxScore {
		s = maxScore
	}
	return s
}

func dealNameScore(matched, storedName string) int {
	if strings.EqualFold(matched, storedName) {
		return dealNameExact
	}
	if containsFold(storedName, matched) {
		return dealNameSubstring
	}
	return dealNameBase
}

func addressScore(matched string, deal model.Deal) int {
	s := addressBase

	if number := leadingNumber(matched); number != "" {
		if strings.Contains(deal.Address, number) || strings.Contains(deal.Name, number) {
			s += addressNumberBonus
		}
	}
	if len(matched) > longAddressLength {
		s += addressLengthBonus
	}
	return s
}

// corroboration adds a bonus for each additional distinct identifier type
// beyond the channel's own whose extracted value appears in the
// corresponding stored field.
func corroboration(c model.Candidate, ids model.ParsedIdentifiers) int {
	var bonus int

	if c.Type != model.MatchLoanNumber && anyLoanNumberMatches(ids.LoanNumbers, c.Deal) {
		bonus += corroborationBonus
	}
	if c.Type != model.MatchDealName && anyContainsFold(c.Deal.Name, ids.DealNames) {
		bonus += corroborationBonus
	}
	if c.Type != model.MatchAddress && anyContainsFold(c.Deal.Address, ids.Addresses) {
		bonus += corroborationBonus
	}

	return bonus
}

func anyLoanNumberMatches(numbers []string, deal model.Deal) bool {
	stored := deal.AllLoanNumbers()
	for _, n := range numbers {
		for _, s := range stored {
			if containsFold(s, n) {
				return true
			}
		}
	}
	return false
}

func anyContainsFold(stored string, values []string) bool {
	for _, v := range values {
		if containsFold(stored, v) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func leadingNumber(address string) string {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return ""
	}
	for _, r := range fields[0] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return fields[0]
}
