package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AwardStructures is the fixed enumeration for the award_structure field.
// "Other" requires accompanying free text.
var AwardStructures = []string{
	"Lump Sum",
	"Installments",
	"Milestone-based",
	"Reimbursement",
	"Matching",
	"Other",
}

// Normalize converts a raw payload for the named field into its canonical
// Value. It is a pure function: on failure it returns a *ValidationError and
// nothing else happens.
func Normalize(fieldName string, payload json.RawMessage) (Value, error) {
	spec := Lookup(fieldName)

	switch spec.Kind {
	case KindAmount:
		return normalizeAmount(fieldName, payload)
	case KindDate:
		return normalizeDate(fieldName, payload)
	case KindAcceptanceRate:
		return normalizeAcceptanceRate(fieldName, payload)
	case KindStringList:
		return normalizeStringList(fieldName, payload)
	case KindAwardStructure:
		return normalizeAwardStructure(fieldName, payload)
	case KindRecipients:
		return normalizeRecipients(fieldName, payload)
	default:
		return normalizeText(fieldName, payload)
	}
}

// flexNumber accepts a JSON number or a numeric string, preserving the
// literal for display formatting.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*n = ""
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*n = flexNumber(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = flexNumber(num.String())
	return nil
}

func (n flexNumber) empty() bool { return n == "" }

func (n flexNumber) float() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// AmountInput is the payload shape for award_amount contributions.
type AmountInput struct {
	IsRange  bool       `json:"is_range"`
	Currency string     `json:"currency"`
	Amount   flexNumber `json:"amount"`
	Min      flexNumber `json:"min"`
	Max      flexNumber `json:"max"`
}

func normalizeAmount(field string, payload json.RawMessage) (Value, error) {
	var in AmountInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return Value{}, validationErr(field, "malformed amount payload")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	if in.IsRange {
		if in.Min.empty() && in.Max.empty() {
			return Value{}, validationErr(field, "missing amount")
		}
		if in.Min.empty() || in.Max.empty() {
			return Value{}, validationErr(field, "range requires both min and max")
		}
		if _, err := in.Min.float(); err != nil {
			return Value{}, validationErr(field, "min is not a number")
		}
		if _, err := in.Max.float(); err != nil {
			return Value{}, validationErr(field, "max is not a number")
		}
		return Value{
			Kind: KindAmount,
			Text: fmt.Sprintf("%s %s - %s %s", currency, in.Min, currency, in.Max),
		}, nil
	}

	if in.Amount.empty() {
		return Value{}, validationErr(field, "missing amount")
	}
	if _, err := in.Amount.float(); err != nil {
		return Value{}, validationErr(field, "amount is not a number")
	}
	return Value{Kind: KindAmount, Text: fmt.Sprintf("%s %s", currency, in.Amount)}, nil
}

// DateInput is the payload shape for deadline and decision_date
// contributions. Type is "specific" (default) or "rolling".
type DateInput struct {
	Type string `json:"type"`
	Date string `json:"date"` // ISO date, e.g. 2026-03-15
	Text string `json:"text"` // free text, e.g. "mid March 2026"
}

func normalizeDate(field string, payload json.RawMessage) (Value, error) {
	var in DateInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return Value{}, validationErr(field, "malformed date payload")
	}

	date := strings.TrimSpace(in.Date)
	text := cleanText(in.Text)

	if strings.EqualFold(strings.TrimSpace(in.Type), "rolling") {
		if text != "" {
			return Value{Kind: KindDate, Text: text}, nil
		}
		return Value{Kind: KindDate, Text: "Rolling"}, nil
	}

	if date != "" {
		if !validISODate(date) {
			return Value{}, validationErr(field, "date must be YYYY-MM-DD")
		}
		return Value{Kind: KindDate, Text: date}, nil
	}
	if text != "" {
		return Value{Kind: KindDate, Text: text}, nil
	}
	return Value{}, validationErr(field, "specific date requires a date or text")
}

// AcceptanceRateInput is the payload shape for acceptance_rate contributions.
// Either a direct percentage or both raw counts must be provided; with counts
// the percentage is derived.
type AcceptanceRateInput struct {
	Percentage           flexNumber `json:"percentage"`
	ApplicationsReceived *int       `json:"applications_received"`
	AwardsMade           *int       `json:"awards_made"`
	Year                 int        `json:"year"`
}

func normalizeAcceptanceRate(field string, payload json.RawMessage) (Value, error) {
	var in AcceptanceRateInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return Value{}, validationErr(field, "malformed acceptance rate payload")
	}

	hasCounts := in.ApplicationsReceived != nil && in.AwardsMade != nil

	var pct string
	switch {
	case !in.Percentage.empty():
		if _, err := in.Percentage.float(); err != nil {
			return Value{}, validationErr(field, "percentage is not a number")
		}
		pct = string(in.Percentage)
	case hasCounts:
		if *in.ApplicationsReceived == 0 {
			return Value{}, validationErr(field, "applications_received must be greater than zero")
		}
		if *in.ApplicationsReceived < 0 || *in.AwardsMade < 0 {
			return Value{}, validationErr(field, "counts must not be negative")
		}
		derived := math.Round(float64(*in.AwardsMade)/float64(*in.ApplicationsReceived)*1000) / 10
		pct = strconv.FormatFloat(derived, 'f', 1, 64)
	default:
		return Value{}, validationErr(field, "requires a percentage or both applications_received and awards_made")
	}

	text := pct + "%"
	if hasCounts {
		if in.Year > 0 {
			text = fmt.Sprintf("%s%% (%d of %d, %d)", pct, *in.AwardsMade, *in.ApplicationsReceived, in.Year)
		} else {
			text = fmt.Sprintf("%s%% (%d of %d)", pct, *in.AwardsMade, *in.ApplicationsReceived)
		}
	} else if in.Year > 0 {
		text = fmt.Sprintf("%s%% (%d)", pct, in.Year)
	}

	return Value{Kind: KindAcceptanceRate, Text: text}, nil
}

// StringListInput is the payload shape for preferred_applicants and
// application_requirements. Items wins when present; otherwise Text is split
// into lines, stripped of bullets and numbering.
type StringListInput struct {
	Items []string `json:"items"`
	Text  string   `json:"text"`
}

func normalizeStringList(field string, payload json.RawMessage) (Value, error) {
	var in StringListInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return Value{}, validationErr(field, "malformed list payload")
	}

	var items []string
	if len(in.Items) > 0 {
		for _, item := range in.Items {
			item = cleanText(item)
			if item != "" {
				items = append(items, item)
			}
		}
	} else {
		items = splitAndCleanList(in.Text)
	}

	if len(items) == 0 {
		return Value{}, validationErr(field, "list is empty")
	}
	return Value{Kind: KindStringList, List: items}, nil
}

// AwardStructureInput is the payload shape for award_structure contributions.
type AwardStructureInput struct {
	Structure string `json:"structure"`
	OtherText string `json:"other_text"`
}

func normalizeAwardStructure(field string, payload json.RawMessage) (Value, error) {
	var in AwardStructureInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return Value{}, validationErr(field, "malformed award structure payload")
	}

	structure := strings.TrimSpace(in.Structure)
	if structure == "" {
		return Value{}, validationErr(field, "missing structure")
	}

	var known bool
	for _, s := range AwardStructures {
		if strings.EqualFold(s, structure) {
			structure = s
			known = true
			break
		}
	}
	if !known {
		return Value{}, validationErr(field, "structure must be one of: "+strings.Join(AwardStructures, ", "))
	}

	if structure == "Other" {
		other := cleanText(in.OtherText)
		if other == "" {
			return Value{}, validationErr(field, `structure "Other" requires a description`)
		}
		return Value{Kind: KindAwardStructure, Text: other}, nil
	}
	return Value{Kind: KindAwardStructure, Text: structure}, nil
}

// TextInput is the payload shape for pass-through text fields, including the
// catch-all for unregistered field names. A bare JSON string is also
// accepted.
type TextInput struct {
	Text string `json:"text"`
}

func normalizeText(field string, payload json.RawMessage) (Value, error) {
	var in TextInput
	if err := json.Unmarshal(payload, &in); err != nil {
		var s string
		if err := json.Unmarshal(payload, &s); err != nil {
			return Value{}, validationErr(field, "malformed text payload")
		}
		in.Text = s
	}

	text := SanitizeText(in.Text)
	if text == "" {
		return Value{}, validationErr(field, "empty text")
	}
	return Value{Kind: KindText, Text: text}, nil
}

func validISODate(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := parseISODate(s)
	return err == nil
}
