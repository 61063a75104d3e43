package model

import "strings"

// ChangeEvent is one inbound change notification from the CRM's event
// stream. Only email creations and changes to the direction property are
// eligible for matching.
type ChangeEvent struct {
	ObjectType       string `json:"objectType"`
	SubscriptionType string `json:"subscriptionType"`
	ObjectID         string `json:"objectId"`
	PropertyName     string `json:"propertyName,omitempty"`
}

// IsEmailChange reports whether this event should trigger matching: the
// object is an email record and the change is a creation or a change to
// the "direction" property.
func (e ChangeEvent) IsEmailChange() bool {
	if !strings.EqualFold(e.ObjectType, "email") {
		return false
	}
	if strings.Contains(strings.ToLower(e.SubscriptionType), "creation") {
		return true
	}
	return strings.EqualFold(e.PropertyName, "direction")
}
