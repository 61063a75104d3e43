package model

// EmailState tracks an email through the per-email state machine.
type EmailState string

const (
	// StateReceived is the initial state after the change event is accepted.
	StateReceived EmailState = "RECEIVED"
	// StateParsed means identifier extraction has run.
	StateParsed EmailState = "PARSED"
	// StateLoanMatched means the loan-number channel found a deal.
	StateLoanMatched EmailState = "LOAN_MATCHED"
	// StateCandidateScored means a scored candidate met the threshold.
	StateCandidateScored EmailState = "CANDIDATE_SCORED"
	// StateFallbackMatched means the single-contact-deal heuristic matched.
	StateFallbackMatched EmailState = "FALLBACK_MATCHED"
	// StateUnmatched means no channel or fallback produced a match.
	StateUnmatched EmailState = "UNMATCHED"
	// StateAssociated is terminal: the association write succeeded.
	StateAssociated EmailState = "ASSOCIATED"
	// StateSkipped is terminal: processing failed and the email was skipped.
	StateSkipped EmailState = "SKIPPED"
)
