package classify

import (
	"testing"

	"github.com/david/grant-curator/internal/models"
)

func labels(known, partial, unknown int) []Label {
	var out []Label
	for i := 0; i < known; i++ {
		out = append(out, LabelKnown)
	}
	for i := 0; i < partial; i++ {
		out = append(out, LabelPartial)
	}
	for i := 0; i < unknown; i++ {
		out = append(out, LabelUnknown)
	}
	return out
}

func TestVerdictDecisionTable(t *testing.T) {
	tests := []struct {
		name                    string
		known, partial, unknown int
		want                    string
	}{
		{"all known", 5, 0, 0, VerdictReady},
		{"one partial", 4, 1, 0, VerdictReady},
		{"two partial", 3, 2, 0, VerdictPartial},
		{"all partial", 0, 5, 0, VerdictPartial},
		{"one unknown", 4, 0, 1, VerdictPartial},
		{"two unknown", 3, 0, 2, VerdictPartial},
		{"three unknown", 2, 0, 3, VerdictLowConfidence},
		{"all unknown", 0, 0, 5, VerdictLowConfidence},
		{"three unknown beats partials", 0, 2, 3, VerdictLowConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Verdict(labels(tt.known, tt.partial, tt.unknown))
			if got != tt.want {
				t.Errorf("Verdict(%d known, %d partial, %d unknown) = %q, want %q",
					tt.known, tt.partial, tt.unknown, got, tt.want)
			}
		})
	}
}

// Every possible label distribution across five buckets must land on exactly
// one verdict, and adding unknowns never raises confidence.
func TestVerdictTotalAndMonotone(t *testing.T) {
	rank := map[string]int{
		VerdictReady:         2,
		VerdictPartial:       1,
		VerdictLowConfidence: 0,
	}

	for known := 0; known <= 5; known++ {
		for partial := 0; partial+known <= 5; partial++ {
			unknown := 5 - known - partial
			v := Verdict(labels(known, partial, unknown))
			if _, ok := rank[v]; !ok {
				t.Fatalf("Verdict(%d/%d/%d) = %q, not a defined verdict", known, partial, unknown, v)
			}

			// Degrade one known to unknown; verdict must not improve.
			if known > 0 {
				worse := Verdict(labels(known-1, partial, unknown+1))
				if rank[worse] > rank[v] {
					t.Errorf("degrading a bucket improved verdict: %q -> %q (%d/%d/%d)",
						v, worse, known, partial, unknown)
				}
			}
		}
	}
}

func TestClassifyUsesSentinelBeforeNormalization(t *testing.T) {
	raw := models.Grant{Title: "Just extracted"} // TimelineStatus empty
	c := Classify(raw)
	if c.Verdict != VerdictNotEvaluated {
		t.Errorf("verdict = %q, want %q", c.Verdict, VerdictNotEvaluated)
	}
	// Buckets are still computed for internal use.
	if len(c.BucketLabels) != len(Buckets) {
		t.Errorf("bucket labels = %d, want %d", len(c.BucketLabels), len(Buckets))
	}
}

func TestClassifyNormalizedGrant(t *testing.T) {
	g := models.Grant{
		Title:                   "Clean Water Challenge",
		Mission:                 "Deploy solar-powered water purification in rural Kenya",
		MissionSpecificity:      "specific",
		Eligibility:             "Registered nonprofits",
		AwardAmount:             "USD 50000",
		AwardStructure:          "Lump Sum",
		DeadlineText:            "2026-03-15",
		DecisionDateText:        "June 2026",
		ApplicationRequirements: []string{"Budget", "Letter of intent"},
		PastRecipients:          []models.RecipientRecord{{OrganizationName: "Helix Institute"}},
		TimelineStatus:          models.TimelineActive,
	}

	c := Classify(g)
	if c.Verdict != VerdictReady {
		t.Errorf("verdict = %q, want %q (labels %v)", c.Verdict, VerdictReady, c.BucketLabels)
	}
	for b, reason := range c.Reasons {
		if reason == "" {
			t.Errorf("bucket %s has empty reason", b)
		}
	}
}
