// Package model defines the core domain types shared across the application.
package model

import "time"

// EmailMessage represents the content of an inbound email record as read
// from the CRM. It is fetched fresh per change event and never persisted.
type EmailMessage struct {
	ReceivedAt time.Time
	ID         string
	Subject    string
	Body       string
}
