package model

// MatchType identifies which channel produced a match.
type MatchType string

const (
	// MatchLoanNumber is a match found through a loan-number search.
	MatchLoanNumber MatchType = "loan_number"
	// MatchDealName is a match found through a deal-name search.
	MatchDealName MatchType = "deal_name"
	// MatchAddress is a match found through an address search.
	MatchAddress MatchType = "address"
	// MatchSingleContactDeal is a fallback match through the email's sole
	// contact's sole deal.
	MatchSingleContactDeal MatchType = "single_contact_deal"
)

// Candidate is a deal pooled by the deal-name or address channel, awaiting
// scoring. MatchedText is the cleaned value that produced the search hit.
type Candidate struct {
	Deal        Deal
	Type        MatchType
	MatchedText string
	Score       int
}

// Result is the winning match for one email. Produced at most once per
// email per invocation and never persisted.
type Result struct {
	Deal       Deal
	Type       MatchType
	Confidence int
}
