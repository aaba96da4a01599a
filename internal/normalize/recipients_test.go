package normalize

import (
	"encoding/json"
	"testing"
)

func TestNormalizeRecipientsDropsEmptyRecords(t *testing.T) {
	payload := `{"recipients": [
		{"organization_name": "Helix Institute", "country": "Kenya"},
		{"organization_name": "", "summary": ""},
		{"project_title": "Solar microgrids", "career_stage": "early career"}
	]}`

	v, err := Normalize("past_recipients", json.RawMessage(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Recipients) != 2 {
		t.Fatalf("kept %d records, want 2: %+v", len(v.Recipients), v.Recipients)
	}
	if v.Recipients[0].OrganizationName != "Helix Institute" {
		t.Errorf("first record = %+v", v.Recipients[0])
	}
}

func TestNormalizeRecipientsRequiresIdentification(t *testing.T) {
	// A record with only country and summary identifies nobody.
	payload := `{"recipients": [{"country": "Peru", "summary": "A community project"}]}`
	if _, err := Normalize("past_recipients", json.RawMessage(payload)); err == nil {
		t.Fatal("expected error for unidentified recipients")
	}

	if _, err := Normalize("past_recipients", json.RawMessage(`{"recipients": []}`)); err == nil {
		t.Fatal("expected error for empty recipients")
	}
}

func TestSplitThemes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"water, health, water", []string{"water", "health"}},
		{"  Climate ,  climate,", []string{"Climate"}},
		{"", nil},
		{" , , ", nil},
	}

	for _, tt := range tests {
		got := splitThemes(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitThemes(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitThemes(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
