package crm

import "fmt"

// APIError is a non-success response from the CRM store. It is surfaced
// without retry; only rate-limit responses are retried.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("crm api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("crm api error: status %d: %s", e.StatusCode, e.Message)
}
