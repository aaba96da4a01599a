package contrib

import (
	"context"

	"github.com/google/uuid"
)

// Badge tiers by accepted-contribution count.
const (
	BadgeNew         = "New Contributor"
	BadgeContributor = "Contributor"
	BadgeActive      = "Active Contributor"
	BadgeAdvanced    = "Advanced Contributor"
	BadgeExpert      = "Expert Contributor"
)

// Badge derives the tier from the count of a contributor's approved or
// merged contributions. Never persisted; recompute, never drift.
func Badge(acceptedCount int) string {
	switch {
	case acceptedCount >= 20:
		return BadgeExpert
	case acceptedCount >= 10:
		return BadgeAdvanced
	case acceptedCount >= 5:
		return BadgeActive
	case acceptedCount >= 1:
		return BadgeContributor
	default:
		return BadgeNew
	}
}

// Profile is the read-time reputation view for one contributor.
type Profile struct {
	ContributorID uuid.UUID `json:"contributor_id"`
	AcceptedCount int       `json:"accepted_count"`
	Badge         string    `json:"badge"`
}

// Profile computes the contributor's current reputation from stored
// contribution statuses.
func (e *Engine) Profile(ctx context.Context, contributorID uuid.UUID) (Profile, error) {
	count, err := e.contributions.CountAcceptedByContributor(ctx, contributorID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ContributorID: contributorID,
		AcceptedCount: count,
		Badge:         Badge(count),
	}, nil
}
