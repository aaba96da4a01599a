package contrib

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/david/grant-curator/internal/models"
)

func TestBadgeThresholds(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, BadgeNew},
		{1, BadgeContributor},
		{4, BadgeContributor},
		{5, BadgeActive},
		{9, BadgeActive},
		{10, BadgeAdvanced},
		{19, BadgeAdvanced},
		{20, BadgeExpert},
		{100, BadgeExpert},
	}

	for _, tt := range tests {
		if got := Badge(tt.count); got != tt.want {
			t.Errorf("Badge(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestProfileCountsApprovedAndMergedOnly(t *testing.T) {
	g := testGrant()
	e, _, _ := newTestEngine(g)
	ctx := context.Background()
	contributor := uuid.New()

	mustSubmit := func() *models.Contribution {
		c, err := e.Submit(ctx, SubmitInput{
			GrantID:       &g.ID,
			FieldName:     "mission",
			RawValue:      json.RawMessage(`{"text": "Support rural health clinics"}`),
			ContributorID: contributor,
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		return c
	}

	pending := mustSubmit()
	_ = pending

	approvedOnly := mustSubmit()
	if _, err := e.Approve(ctx, approvedOnly.ID, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	merged := mustSubmit()
	if _, err := e.Approve(ctx, merged.ID, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if _, err := e.Merge(ctx, merged.ID); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	rejected := mustSubmit()
	if _, err := e.Reject(ctx, rejected.ID, "no source"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	profile, err := e.Profile(ctx, contributor)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.AcceptedCount != 2 {
		t.Errorf("accepted count = %d, want 2 (approved + merged)", profile.AcceptedCount)
	}
	if profile.Badge != BadgeContributor {
		t.Errorf("badge = %q, want %q", profile.Badge, BadgeContributor)
	}
}
