package normalize

import (
	"encoding/json"

	"github.com/david/grant-curator/internal/models"
)

// Value is the one true shape a normalized field takes. Exactly one of Text,
// List, or Recipients is populated, selected by Kind:
//
//	text, amount, date, acceptance_rate, award_structure -> Text
//	string_list                                          -> List
//	recipients                                           -> Recipients
//
// Both the bucket classifier and the merge engine consume this shape.
type Value struct {
	Kind       FieldKind                `json:"kind"`
	Text       string                   `json:"text,omitempty"`
	List       []string                 `json:"list,omitempty"`
	Recipients []models.RecipientRecord `json:"recipients,omitempty"`
}

// Encode renders the value as JSON for storage on a contribution.
func (v Value) Encode() (json.RawMessage, error) {
	return json.Marshal(v)
}

// DecodeValue restores a stored normalized value.
func DecodeValue(raw json.RawMessage) (Value, error) {
	var v Value
	err := json.Unmarshal(raw, &v)
	return v, err
}
