package classify

import (
	"testing"
	"time"

	"github.com/david/grant-curator/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestClassifyTimeline(t *testing.T) {
	deadline := timePtr(time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC))

	tests := []struct {
		name  string
		grant models.Grant
		want  Label
	}{
		{
			"deadline and decision date",
			models.Grant{DeadlineText: "2026-03-15", DecisionDateText: "June 2026", TimelineStatus: models.TimelineActive},
			LabelKnown,
		},
		{
			"status with explicit date",
			models.Grant{DeadlineAt: deadline, TimelineStatus: models.TimelineClosed},
			LabelKnown,
		},
		{
			"rolling only",
			models.Grant{DeadlineText: "Rolling", TimelineStatus: models.TimelineRolling},
			LabelPartial,
		},
		{
			"deadline text only",
			models.Grant{DeadlineText: "spring 2026", TimelineStatus: models.TimelineUnknown},
			LabelPartial,
		},
		{
			"nothing",
			models.Grant{TimelineStatus: models.TimelineUnknown},
			LabelUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTimeline(tt.grant)
			if got.Label != tt.want {
				t.Errorf("label = %s (%s), want %s", got.Label, got.Reason, tt.want)
			}
			if got.Reason == "" {
				t.Error("reason must never be empty")
			}
		})
	}
}

func TestClassifyWinnerSignal(t *testing.T) {
	withRecipients := models.Grant{PastRecipients: []models.RecipientRecord{{OrganizationName: "Helix Institute"}}}
	if got := classifyWinnerSignal(withRecipients); got.Label != LabelKnown {
		t.Errorf("recipients listed: label = %s, want known", got.Label)
	}

	withRate := models.Grant{AcceptanceRate: "5.0% (25 of 500, 2024)"}
	if got := classifyWinnerSignal(withRate); got.Label != LabelPartial {
		t.Errorf("rate only: label = %s, want partial", got.Label)
	}

	if got := classifyWinnerSignal(models.Grant{}); got.Label != LabelUnknown {
		t.Errorf("no signal: label = %s, want unknown", got.Label)
	}
}

func TestClassifyMission(t *testing.T) {
	tests := []struct {
		name  string
		grant models.Grant
		want  Label
	}{
		{"no mission", models.Grant{}, LabelUnknown},
		{"specific signal", models.Grant{Mission: "Malaria vaccine delivery in West Africa", MissionSpecificity: "specific"}, LabelKnown},
		{"generic signal", models.Grant{Mission: "Making the world a better place", MissionSpecificity: "generic"}, LabelPartial},
		{"mission without signal", models.Grant{Mission: "Supporting communities"}, LabelPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMission(tt.grant); got.Label != tt.want {
				t.Errorf("label = %s, want %s", got.Label, tt.want)
			}
		})
	}
}

func TestClassifyApplicationBurden(t *testing.T) {
	withReqs := models.Grant{ApplicationRequirements: []string{"Budget", "Two references"}}
	if got := classifyApplicationBurden(withReqs); got.Label != LabelKnown {
		t.Errorf("requirements: label = %s, want known", got.Label)
	}

	withEligibility := models.Grant{Eligibility: "Registered nonprofits"}
	if got := classifyApplicationBurden(withEligibility); got.Label != LabelPartial {
		t.Errorf("eligibility only: label = %s, want partial", got.Label)
	}

	withPreferred := models.Grant{PreferredApplicants: []string{"Early-career researchers"}}
	if got := classifyApplicationBurden(withPreferred); got.Label != LabelPartial {
		t.Errorf("preferred only: label = %s, want partial", got.Label)
	}

	if got := classifyApplicationBurden(models.Grant{}); got.Label != LabelUnknown {
		t.Errorf("nothing: label = %s, want unknown", got.Label)
	}
}

func TestClassifyAwardStructure(t *testing.T) {
	tests := []struct {
		name  string
		grant models.Grant
		want  Label
	}{
		{"amount and structure", models.Grant{AwardAmount: "USD 50000", AwardStructure: "Lump Sum"}, LabelKnown},
		{"range stays partial", models.Grant{AwardAmount: "USD 25000 - USD 100000", AwardStructure: "Installments"}, LabelPartial},
		{"amount only", models.Grant{AwardAmount: "USD 50000"}, LabelPartial},
		{"structure only", models.Grant{AwardStructure: "Matching"}, LabelPartial},
		{"nothing", models.Grant{}, LabelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyAwardStructure(tt.grant); got.Label != tt.want {
				t.Errorf("label = %s (%s), want %s", got.Label, got.Reason, tt.want)
			}
		})
	}
}

func TestClassifyBucketsAlwaysComplete(t *testing.T) {
	results := ClassifyBuckets(models.Grant{})
	if len(results) != len(Buckets) {
		t.Fatalf("got %d buckets, want %d", len(results), len(Buckets))
	}
	for _, b := range Buckets {
		r, ok := results[b]
		if !ok {
			t.Errorf("bucket %s missing", b)
			continue
		}
		if r.Label != LabelUnknown {
			t.Errorf("empty grant bucket %s = %s, want unknown", b, r.Label)
		}
	}
}
