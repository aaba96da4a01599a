package normalize

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func mustNormalize(t *testing.T, field, payload string) Value {
	t.Helper()
	v, err := Normalize(field, json.RawMessage(payload))
	if err != nil {
		t.Fatalf("Normalize(%s, %s) failed: %v", field, payload, err)
	}
	return v
}

func mustFail(t *testing.T, field, payload string) *ValidationError {
	t.Helper()
	_, err := Normalize(field, json.RawMessage(payload))
	if err == nil {
		t.Fatalf("Normalize(%s, %s) expected error, got none", field, payload)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Normalize(%s, %s) returned %T, want *ValidationError", field, payload, err)
	}
	return ve
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"single amount", `{"amount": 50000}`, "USD 50000", false},
		{"single amount string", `{"amount": "50000", "currency": "eur"}`, "EUR 50000", false},
		{"range", `{"is_range": true, "min": 25000, "max": 100000}`, "USD 25000 - USD 100000", false},
		{"range missing max", `{"is_range": true, "min": 25000}`, "", true},
		{"range missing both", `{"is_range": true}`, "", true},
		{"missing amount", `{}`, "", true},
		{"non-numeric", `{"amount": "a lot"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Normalize("award_amount", json.RawMessage(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", v.Text)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Kind != KindAmount {
				t.Errorf("kind = %s, want %s", v.Kind, KindAmount)
			}
			if v.Text != tt.want {
				t.Errorf("text = %q, want %q", v.Text, tt.want)
			}
		})
	}
}

func TestNormalizeAmountRangeBothRequired(t *testing.T) {
	ve := mustFail(t, "award_amount", `{"is_range": true, "max": 100000}`)
	if !strings.Contains(ve.Message, "both min and max") {
		t.Errorf("message = %q, want mention of both min and max", ve.Message)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"specific iso", `{"type": "specific", "date": "2026-03-15"}`, "2026-03-15", false},
		{"default type is specific", `{"date": "2026-03-15"}`, "2026-03-15", false},
		{"specific text", `{"type": "specific", "text": "mid March 2026"}`, "mid March 2026", false},
		{"rolling", `{"type": "rolling"}`, "Rolling", false},
		{"rolling with text", `{"type": "rolling", "text": "Rolling, reviewed quarterly"}`, "Rolling, reviewed quarterly", false},
		{"bad iso", `{"date": "15/03/2026"}`, "", true},
		{"nothing", `{"type": "specific"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Normalize("deadline", json.RawMessage(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", v.Text)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Text != tt.want {
				t.Errorf("text = %q, want %q", v.Text, tt.want)
			}
		})
	}
}

func TestNormalizeAcceptanceRate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"direct percentage", `{"percentage": 12}`, "12%", false},
		{"percentage with year", `{"percentage": "8.5", "year": 2024}`, "8.5% (2024)", false},
		{"derived from counts", `{"applications_received": 500, "awards_made": 25, "year": 2024}`, "5.0% (25 of 500, 2024)", false},
		{"derived no year", `{"applications_received": 200, "awards_made": 30}`, "15.0% (30 of 200)", false},
		{"derived rounds to tenth", `{"applications_received": 3, "awards_made": 1}`, "33.3% (1 of 3)", false},
		{"zero applications", `{"applications_received": 0, "awards_made": 5}`, "", true},
		{"negative awards", `{"applications_received": 10, "awards_made": -1}`, "", true},
		{"only one count", `{"applications_received": 500}`, "", true},
		{"nothing", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Normalize("acceptance_rate", json.RawMessage(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", v.Text)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Text != tt.want {
				t.Errorf("text = %q, want %q", v.Text, tt.want)
			}
		})
	}
}

func TestNormalizeStringList(t *testing.T) {
	v := mustNormalize(t, "application_requirements", `{"items": ["Budget", " Letter of intent ", ""]}`)
	if len(v.List) != 2 || v.List[0] != "Budget" || v.List[1] != "Letter of intent" {
		t.Errorf("items = %v", v.List)
	}

	v = mustNormalize(t, "preferred_applicants", `{"text": "- Nonprofits\n2. Universities\n• Nonprofits\n"}`)
	if len(v.List) != 2 {
		t.Fatalf("list = %v, want 2 deduplicated items", v.List)
	}
	if v.List[0] != "Nonprofits" || v.List[1] != "Universities" {
		t.Errorf("list = %v", v.List)
	}

	mustFail(t, "application_requirements", `{"text": "  \n \n"}`)
}

func TestNormalizeAwardStructure(t *testing.T) {
	v := mustNormalize(t, "award_structure", `{"structure": "milestone-BASED"}`)
	if v.Text != "Milestone-based" {
		t.Errorf("text = %q, want canonical casing", v.Text)
	}

	v = mustNormalize(t, "award_structure", `{"structure": "Other", "other_text": "Annual stipend plus travel budget"}`)
	if v.Text != "Annual stipend plus travel budget" {
		t.Errorf("text = %q", v.Text)
	}

	mustFail(t, "award_structure", `{"structure": "Other"}`)
	mustFail(t, "award_structure", `{"structure": "Quarterly"}`)
	mustFail(t, "award_structure", `{}`)
}

func TestNormalizeText(t *testing.T) {
	v := mustNormalize(t, "mission", `{"text": "Support   rural health"}`)
	if v.Text != "Support rural health" {
		t.Errorf("text = %q", v.Text)
	}

	// Bare JSON string is accepted too.
	v = mustNormalize(t, "eligibility", `"Registered nonprofits only"`)
	if v.Text != "Registered nonprofits only" {
		t.Errorf("text = %q", v.Text)
	}

	// Markup is stripped, content kept.
	v = mustNormalize(t, "mission", `{"text": "<script>alert(1)</script><b>Clean water</b> access"}`)
	if v.Text != "Clean water access" {
		t.Errorf("text = %q", v.Text)
	}

	mustFail(t, "mission", `{"text": ""}`)
}

func TestNormalizeUnknownFieldCatchAll(t *testing.T) {
	spec := Lookup("contact_person")
	if !spec.CatchAll || spec.Kind != KindText {
		t.Fatalf("unknown field spec = %+v, want text catch-all", spec)
	}

	v := mustNormalize(t, "contact_person", `{"text": "Dr. Amara Osei"}`)
	if v.Kind != KindText || v.Text != "Dr. Amara Osei" {
		t.Errorf("value = %+v", v)
	}

	mustFail(t, "contact_person", `{"text": "   "}`)
}

func TestValueEncodeDecode(t *testing.T) {
	v := mustNormalize(t, "past_recipients", `{"recipients": [{"organization_name": "Acme Labs", "themes": "water, health, water"}]}`)
	if len(v.Recipients) != 1 {
		t.Fatalf("recipients = %v", v.Recipients)
	}
	if len(v.Recipients[0].Themes) != 2 {
		t.Errorf("themes = %v, want deduplicated", v.Recipients[0].Themes)
	}

	raw, err := v.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	back, err := DecodeValue(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if back.Kind != KindRecipients || len(back.Recipients) != 1 {
		t.Errorf("round trip = %+v", back)
	}
}
