package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(nil)
	require.NoError(t, err)
	return e
}

func TestExtractor_LoanNumbers(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name    string
		subject string
		body    string
		want    []string
	}{
		{
			name: "keyword prefixed number in body",
			body: "Loan number 399536679 re the rehab draw",
			want: []string{"399536679"},
		},
		{
			name:    "servicer style bare numeric subject",
			subject: "RECORDED DOCUMENTS - 399558497",
			want:    []string{"399558497"},
		},
		{
			name:    "canonical dash grouped format",
			subject: "Re: RHL-2024-0047 payoff quote",
			want:    []string{"RHL-2024-0047"},
		},
		{
			name:    "canonical format with space separators",
			subject: "Re: rhl 2024 0047 payoff quote",
			want:    []string{"RHL-2024-0047"},
		},
		{
			name: "canonical variants dedupe to one entry",
			body: "Files RHL-2024-0047 and rhl.2024.0047 and RHL 2024 0047",
			want: []string{"RHL-2024-0047"},
		},
		{
			name: "keyword with separator and hash",
			body: "see deal #4415087 for details",
			want: []string{"4415087"},
		},
		{
			name: "keyword number too short",
			body: "loan 1234 is not a valid id",
			want: nil,
		},
		{
			name:    "subject number too short for delimiter rule",
			subject: "Draw 6 - 168 Las Palmas",
			want:    nil,
		},
		{
			name: "bare number without keyword ignored",
			body: "call me at 5125551234567 ok",
			want: nil,
		},
		{
			name:    "multiple sources pool together",
			subject: "SERVICING | 77012345",
			body:    "the file no. 99887766 was recorded",
			want:    []string{"99887766", "77012345"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.subject, tt.body)
			assert.ElementsMatch(t, tt.want, got.LoanNumbers)
		})
	}
}

func TestExtractor_Addresses(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name    string
		subject string
		body    string
		want    []string
	}{
		{
			name: "full address with city state zip",
			body: "The property at 123 Main Street, Austin, TX 78701 is ready for inspection.",
			want: []string{"123 Main Street, Austin, TX 78701"},
		},
		{
			name:    "street address in subject",
			subject: "Inspection scheduled for 4821 Copper Ridge Dr",
			want:    []string{"4821 Copper Ridge Dr"},
		},
		{
			name: "address with unit",
			body: "Send keys to 771 Geary Blvd Unit 2B please",
			want: []string{"771 Geary Blvd Unit 2B"},
		},
		{
			name: "address split across lines is not matched",
			body: "The house at 123 Main\nStreet needs work",
			want: nil,
		},
		{
			name: "no suffix means no address",
			body: "Draw 6 funds for 168 Las Palmas were released",
			want: nil,
		},
		{
			name: "lowercase street tokens are not matched",
			body: "meet me at 55 the corner st ok",
			want: nil,
		},
		{
			name: "duplicate addresses collapse case-insensitively",
			body: "123 Main St\n123 MAIN ST",
			want: []string{"123 Main St"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.subject, tt.body)
			assert.ElementsMatch(t, tt.want, got.Addresses)
		})
	}
}

func TestExtractor_AddressMinLength(t *testing.T) {
	e := newTestExtractor(t)

	// No candidate shorter than 6 characters after trimming survives,
	// whatever the input.
	bodies := []string{
		"1 A St",
		"9 B Ct or nothing",
		"The property at 123 Main Street, Austin, TX 78701.",
		"77 Oak Ln\n5 X Dr",
	}
	for _, body := range bodies {
		for _, addr := range e.Extract("", body).Addresses {
			assert.GreaterOrEqual(t, len(addr), 6, "address %q from body %q", addr, body)
		}
	}
}

func TestExtractor_AddressBlacklist(t *testing.T) {
	blocked, err := New([]string{`(?i)\belm\b`})
	require.NoError(t, err)
	open := newTestExtractor(t)

	body := "Packet sent to 456 Elm St yesterday"

	assert.Empty(t, blocked.Extract("", body).Addresses)
	assert.Equal(t, []string{"456 Elm St"}, open.Extract("", body).Addresses)
}

func TestExtractor_BlacklistCompileError(t *testing.T) {
	_, err := New([]string{`(unclosed`})
	assert.Error(t, err)
}

func TestExtractor_DealNames(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name    string
		subject string
		body    string
		want    []string
	}{
		{
			name:    "draw prefix",
			subject: "Draw 6 - 168 Las Palmas",
			want:    []string{"168 Las Palmas"},
		},
		{
			name:    "draw prefix behind reply markers",
			subject: "RE: FW: Draw 2 - Oakhurst Bridge",
			want:    []string{"Oakhurst Bridge"},
		},
		{
			name:    "payments prefix",
			subject: "PAYMENTS: Oakhurst Bridge",
			want:    []string{"Oakhurst Bridge"},
		},
		{
			name:    "title work prefix",
			subject: "TITLE WORK | 771 Geary",
			want:    []string{"771 Geary"},
		},
		{
			name:    "payoff prefix",
			subject: "Payoff - Summit Ridge",
			want:    []string{"Summit Ridge"},
		},
		{
			name:    "fragment stops at next delimiter",
			subject: "Draw 3 - Willow Creek | wire details",
			want:    []string{"Willow Creek"},
		},
		{
			name: "body mention bounded by punctuation",
			body: "Quick update on the loan for Summit Ridge, wire goes out Friday.",
			want: []string{"Summit Ridge"},
		},
		{
			name: "body mention truncated at stop word",
			body: "The property at Brookside Manor is behind schedule.",
			want: []string{"Brookside Manor"},
		},
		{
			name:    "too short fragment discarded",
			subject: "Draw 1 - X",
			want:    nil,
		},
		{
			name:    "plain subject yields nothing",
			subject: "Quick question",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.subject, tt.body)
			assert.ElementsMatch(t, tt.want, got.DealNames)
		})
	}
}

func TestExtractor_Deterministic(t *testing.T) {
	e := newTestExtractor(t)

	subject := "Draw 6 - 168 Las Palmas"
	body := "Loan number 399536679 for the property at 123 Main Street, Austin, TX 78701.\n" +
		"Also see file RHL-2024-0047 regarding the deal for Summit Ridge."

	first := e.Extract(subject, body)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(subject, body))
	}
}

func TestCleanFragment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses whitespace", in: "  Summit   Ridge  ", want: "Summit Ridge"},
		{name: "first line only", in: "Summit Ridge\nsecond line", want: "Summit Ridge"},
		{name: "strips trailing punctuation", in: "Summit Ridge -", want: "Summit Ridge"},
		{name: "too short after cleaning", in: " x.", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFragment(tt.in))
		})
	}
}

func TestStreetCore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips city state and suffix",
			in:   "123 Main Street, Austin, TX 78701",
			want: "123 Main",
		},
		{
			name: "strips suffix with period",
			in:   "771 Geary Blvd.",
			want: "771 Geary",
		},
		{
			name: "keeps non-suffix last token",
			in:   "168 Las Palmas",
			want: "168 Las Palmas",
		},
		{
			name: "rejects core without leading number",
			in:   "Main Street, Austin",
			want: "",
		},
		{
			name: "rejects bare number",
			in:   "123 St",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StreetCore(tt.in))
		})
	}
}
