package normalize

import (
	"strings"
	"time"

	"github.com/david/grant-curator/internal/models"
)

// DeriveTimelineStatus computes the timing state for a grant entering the
// catalog from its deadline fields. Upstream normalization may overwrite
// this later; it only has to be honest about what the fields show now.
func DeriveTimelineStatus(deadlineText string, deadlineAt *time.Time, now time.Time) models.TimelineStatus {
	if strings.EqualFold(strings.TrimSpace(deadlineText), "Rolling") {
		return models.TimelineRolling
	}
	if deadlineAt != nil {
		if deadlineAt.After(now) {
			return models.TimelineActive
		}
		return models.TimelineClosed
	}
	return models.TimelineUnknown
}
