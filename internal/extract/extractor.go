// Package extract pulls weak textual identifiers out of unstructured email
// text. Extraction is pure and deterministic: identical input always yields
// identical identifier sets.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ridgelinecap/dealmatch/internal/model"
)

const (
	minAddressLength  = 6
	minFragmentLength = 3
	maxFragmentLength = 80
)

// Extractor extracts loan numbers, addresses, and deal-name fragments from
// subject and body text. Safe for concurrent use.
type Extractor struct {
	blacklist []*regexp.Regexp
}

// New creates an extractor. blacklist is a list of regex patterns; any
// address candidate matching one is discarded as a known false positive.
func New(blacklist []string) (*Extractor, error) {
	compiled := make([]*regexp.Regexp, 0, len(blacklist))
	for _, pattern := range blacklist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile blacklist pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return &Extractor{blacklist: compiled}, nil
}

// Extract runs all three identifier extractions over the given text and
// returns the deduplicated sets.
func (e *Extractor) Extract(subject, body string) model.ParsedIdentifiers {
	return model.ParsedIdentifiers{
		LoanNumbers: e.extractLoanNumbers(subject, body),
		Addresses:   e.extractAddresses(subject, body),
		DealNames:   e.extractDealNames(subject, body),
	}
}

func (e *Extractor) extractLoanNumbers(subject, body string) []string {
	var numbers []string
	combined := subject + "\n" + body

	for _, p := range loanPatterns {
		text := combined
		if p.subjectOnly {
			text = firstLine(subject)
		}
		for _, match := range p.re.FindAllStringSubmatch(text, -1) {
			numbers = append(numbers, p.canonicalize(match))
		}
	}

	return model.DedupeFold(numbers)
}

func (e *Extractor) extractAddresses(subject, body string) []string {
	var addresses []string

	// The address pattern runs line by line; an address split across a line
	// boundary is not a match.
	lines := strings.Split(body, "\n")
	lines = append(lines, subject)
	for _, line := range lines {
		for _, match := range addressPattern.FindAllString(line, -1) {
			candidate := strings.TrimSpace(match)
			if len(candidate) < minAddressLength {
				continue
			}
			if e.blacklisted(candidate) {
				continue
			}
			addresses = append(addresses, candidate)
		}
	}

	return model.DedupeFold(addresses)
}

func (e *Extractor) extractDealNames(subject, body string) []string {
	var names []string

	subjectLine := firstLine(subject)
	for _, re := range subjectNamePatterns {
		if match := re.FindStringSubmatch(subjectLine); match != nil {
			if name, ok := cleanName(match[1]); ok {
				names = append(names, name)
			}
		}
	}

	for _, match := range bodyNamePattern.FindAllStringSubmatch(body, -1) {
		if name, ok := cleanName(match[1]); ok {
			names = append(names, name)
		}
	}

	return model.DedupeFold(names)
}

func (e *Extractor) blacklisted(candidate string) bool {
	for _, re := range e.blacklist {
		if re.MatchString(candidate) {
			return true
		}
	}
	return false
}

// cleanName trims a captured fragment at stop words and punctuation and
// enforces the length bounds.
func cleanName(raw string) (string, bool) {
	name := nameStopWords.ReplaceAllString(raw, "")
	name = strings.Join(strings.Fields(name), " ")
	name = strings.TrimRight(name, " .,;:-–—|")
	if len(name) < minFragmentLength || len(name) > maxFragmentLength {
		return "", false
	}
	return name, true
}

// CleanFragment normalizes a deal-name fragment for searching: first line
// only, whitespace collapsed, trailing punctuation stripped. Returns ""
// when nothing searchable remains.
func CleanFragment(fragment string) string {
	line := firstLine(fragment)
	line = strings.Join(strings.Fields(line), " ")
	line = strings.TrimRight(line, " .,;:-–—|")
	if len(line) < minFragmentLength {
		return ""
	}
	return line
}

// StreetCore reduces a full address to its searchable street core: the text
// before the first comma with a trailing street-suffix token stripped.
// Returns "" when the remainder no longer looks like a street address
// (leading number followed by a word).
func StreetCore(address string) string {
	core := address
	if idx := strings.Index(core, ","); idx >= 0 {
		core = core[:idx]
	}

	fields := strings.Fields(core)
	if len(fields) >= 2 {
		last := strings.ToLower(strings.TrimRight(fields[len(fields)-1], "."))
		if _, ok := streetSuffixSet[last]; ok {
			fields = fields[:len(fields)-1]
		}
	}

	core = strings.Join(fields, " ")
	if !streetCoreValid.MatchString(core) {
		return ""
	}
	return core
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
