package extract

import (
	"regexp"
	"strings"
)

// loanPattern pairs a recognizer with the canonicalizer that normalizes its
// captures. Patterns run in order; all matches from all patterns pool into
// one deduplicated set.
type loanPattern struct {
	canonicalize func(match []string) string
	re           *regexp.Regexp
	subjectOnly  bool
}

var loanPatterns = []loanPattern{
	// Canonical dash-grouped format: letter prefix plus two fixed-width
	// digit groups, with any of -._ or space (or nothing) between them.
	// Re-canonicalized to the upper-case dash form.
	{
		re: regexp.MustCompile(`\b([A-Za-z]{2,4})[-._ ]?(\d{4})[-._ ]?(\d{4})\b`),
		canonicalize: func(m []string) string {
			return strings.ToUpper(m[1] + "-" + m[2] + "-" + m[3])
		},
	},
	// Bare numeric id preceded by a contextual keyword and optional separator.
	{
		re: regexp.MustCompile(`(?i)\b(?:loan|deal|file|document)\s*(?:#|no\.?|num(?:ber)?|id)?\s*[:#-]?\s*(\d{5,10})\b`),
		canonicalize: func(m []string) string {
			return m[1]
		},
	},
	// Servicer-style bare numeric subject: digits following a delimiter
	// character in the subject line.
	{
		re:          regexp.MustCompile(`[-–—:|#]\s*(\d{7,10})\b`),
		subjectOnly: true,
		canonicalize: func(m []string) string {
			return m[1]
		},
	},
}

// streetSuffixAlternation lists the recognized street-suffix abbreviations.
const streetSuffixAlternation = `Avenue|Ave|Boulevard|Blvd|Circle|Cir|Court|Ct|Drive|Dr|Highway|Hwy|Lane|Ln|Loop|Parkway|Pkwy|Place|Pl|Road|Rd|Square|Sq|Street|St|Terrace|Ter|Trail|Trl|Way`

// addressPattern matches a street address on a single line: leading number,
// one to four capitalized tokens, a street suffix, and an optional
// unit/city/state/zip tail.
var addressPattern = regexp.MustCompile(
	`\b\d{1,6}\s+(?:[A-Z][A-Za-z'.-]*\s+){1,4}(?i:` + streetSuffixAlternation + `)\b\.?` +
		`(?:,?\s*(?i:#|unit|apt\.?|ste\.?|suite)\s*[0-9A-Za-z-]+)?` +
		`(?:,\s*[A-Z][A-Za-z .]*)?` +
		`(?:,?\s*[A-Z]{2}\b)?` +
		`(?:\s+\d{5}(?:-\d{4})?)?`)

// subjectNamePatterns capture deal-name fragments from known subject
// prefixes, up to the next delimiter.
var subjectNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:(?:re|fw|fwd)\s*:\s*)*draw\s*#?\s*\d+\s*[-–—:]\s*([^|–—]+)`),
	regexp.MustCompile(`(?i)^(?:(?:re|fw|fwd)\s*:\s*)*payments?\s*:\s*([^|–—]+)`),
	regexp.MustCompile(`(?i)^(?:(?:re|fw|fwd)\s*:\s*)*title\s*work\s*\|\s*([^|–—]+)`),
	regexp.MustCompile(`(?i)^(?:(?:re|fw|fwd)\s*:\s*)*(?:payoff|insurance|inspection|appraisal)\s*[-–—:|]\s*([^|–—]+)`),
}

// bodyNamePattern captures "property/loan/deal at/on/for/located at <name>"
// mentions in the body, bounded by punctuation.
var bodyNamePattern = regexp.MustCompile(
	`(?i)\b(?:property|loan|deal)\s+(?:located\s+at|at|on|for)\s+([0-9A-Za-z][0-9A-Za-z '&-]{1,78})`)

// nameStopWords truncates a captured fragment at the first trailing clause.
var nameStopWords = regexp.MustCompile(
	`(?i)\s+(?:is|are|was|were|has|have|had|will|that|which|per|and|or)\s.*$`)

var streetCoreValid = regexp.MustCompile(`^\d+\s+[A-Za-z0-9]`)

var streetSuffixSet = buildStreetSuffixSet()

func buildStreetSuffixSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range strings.Split(streetSuffixAlternation, "|") {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}
