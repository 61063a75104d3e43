package engine

import "github.com/ridgelinecap/dealmatch/internal/model"

// IdentifierExtractor defines the contract for pulling identifier sets out
// of email text.
type IdentifierExtractor interface {
	Extract(subject, body string) model.ParsedIdentifiers
}
