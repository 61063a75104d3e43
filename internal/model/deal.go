package model

// Deal represents a loan/property deal record in the CRM. Deals are owned
// and mutated only by the external store; the engine treats them as read-only.
type Deal struct {
	ID             string
	Name           string
	LoanNumber     string
	AltLoanNumbers []string
	Address        string
	Stage          string
}

// AllLoanNumbers returns the primary loan number followed by any alternate
// servicer loan numbers, skipping empty fields.
func (d Deal) AllLoanNumbers() []string {
	numbers := make([]string, 0, 1+len(d.AltLoanNumbers))
	if d.LoanNumber != "" {
		numbers = append(numbers, d.LoanNumber)
	}
	for _, n := range d.AltLoanNumbers {
		if n != "" {
			numbers = append(numbers, n)
		}
	}
	return numbers
}
