package normalize

import (
	"reflect"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", "Registered nonprofits only", "Registered nonprofits only"},
		{"whitespace collapsed", "  too   many \n spaces ", "too many spaces"},
		{"script stripped", "<script>alert(1)</script>Clean water", "Clean water"},
		{"tags flattened", "<p>First line</p> <p>Second line</p>", "First line Second line"},
		{"angle brackets no html", "amounts < 5000 and > 1000", "amounts < 5000 and > 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitAndCleanList(t *testing.T) {
	in := "1. Project budget\n- Letter of intent\n• Two references\n\n2) project budget\n"
	want := []string{"Project budget", "Letter of intent", "Two references"}

	got := splitAndCleanList(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitAndCleanList = %v, want %v", got, want)
	}
}

func TestStripLeadingNumbering(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1. Budget", "Budget"},
		{"12) References", "References"},
		{"3 - Timeline", "Timeline"},
		{"2026 target", "target"},
		{"No numbering", "No numbering"},
		{"42", "42"},
	}

	for _, tt := range tests {
		if got := stripLeadingNumbering(tt.in); got != tt.want {
			t.Errorf("stripLeadingNumbering(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
