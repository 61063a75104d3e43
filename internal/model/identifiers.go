package model

import "strings"

// ParsedIdentifiers holds the identifier sets extracted from one email.
// Each slice has set semantics: deduplicated case-insensitively with the
// original casing of the first occurrence preserved, in extraction order.
type ParsedIdentifiers struct {
	LoanNumbers []string
	Addresses   []string
	DealNames   []string
}

// Empty reports whether no identifiers of any kind were extracted.
func (p ParsedIdentifiers) Empty() bool {
	return len(p.LoanNumbers) == 0 && len(p.Addresses) == 0 && len(p.DealNames) == 0
}

// Total returns the number of extracted identifiers across all sets.
func (p ParsedIdentifiers) Total() int {
	return len(p.LoanNumbers) + len(p.Addresses) + len(p.DealNames)
}

// DedupeFold removes duplicates from values comparing case-insensitively,
// keeping the first occurrence and its original casing.
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
