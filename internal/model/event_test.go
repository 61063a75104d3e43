package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeEvent_IsEmailChange(t *testing.T) {
	tests := []struct {
		name  string
		event ChangeEvent
		want  bool
	}{
		{
			name:  "email creation",
			event: ChangeEvent{ObjectType: "EMAIL", SubscriptionType: "object.creation"},
			want:  true,
		},
		{
			name:  "lowercase object type",
			event: ChangeEvent{ObjectType: "email", SubscriptionType: "object.creation"},
			want:  true,
		},
		{
			name:  "direction property change",
			event: ChangeEvent{ObjectType: "EMAIL", SubscriptionType: "object.propertyChange", PropertyName: "direction"},
			want:  true,
		},
		{
			name:  "unrelated property change",
			event: ChangeEvent{ObjectType: "EMAIL", SubscriptionType: "object.propertyChange", PropertyName: "subject"},
			want:  false,
		},
		{
			name:  "contact creation",
			event: ChangeEvent{ObjectType: "CONTACT", SubscriptionType: "object.creation"},
			want:  false,
		},
		{
			name:  "deletion",
			event: ChangeEvent{ObjectType: "EMAIL", SubscriptionType: "object.deletion"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.IsEmailChange())
		})
	}
}

func TestChangeEvent_UnmarshalJSON(t *testing.T) {
	payload := `{"objectType":"EMAIL","subscriptionType":"object.propertyChange","objectId":"861512","propertyName":"direction"}`

	var event ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &event))

	assert.Equal(t, "861512", event.ObjectID)
	assert.True(t, event.IsEmailChange())
}

func TestParsedIdentifiers_EmptyAndTotal(t *testing.T) {
	var ids ParsedIdentifiers
	assert.True(t, ids.Empty())
	assert.Equal(t, 0, ids.Total())

	ids.LoanNumbers = []string{"44150870"}
	ids.DealNames = []string{"Palm Villas", "Sunrise"}
	assert.False(t, ids.Empty())
	assert.Equal(t, 3, ids.Total())
}

func TestDedupeFold(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			name:   "nil input",
			values: nil,
			want:   nil,
		},
		{
			name:   "keeps first casing",
			values: []string{"Palm Villas", "PALM VILLAS", "palm villas"},
			want:   []string{"Palm Villas"},
		},
		{
			name:   "preserves order",
			values: []string{"b", "a", "B", "c"},
			want:   []string{"b", "a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeFold(tt.values))
		})
	}
}
