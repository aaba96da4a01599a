package classify

import (
	"strings"

	"github.com/david/grant-curator/internal/models"
)

// Label is the tri-state confidence level for one informational bucket.
type Label string

const (
	LabelKnown   Label = "known"
	LabelPartial Label = "partial"
	LabelUnknown Label = "unknown"
)

// Bucket names one of the five informational dimensions a grant is judged on.
type Bucket string

const (
	BucketTimelineClarity       Bucket = "timeline_clarity"
	BucketWinnerSignal          Bucket = "winner_signal"
	BucketMissionSpecificity    Bucket = "mission_specificity"
	BucketApplicationBurden     Bucket = "application_burden"
	BucketAwardStructureClarity Bucket = "award_structure_clarity"
)

// Buckets is the evaluation order. Every bucket always gets a label; absence
// of signal classifies as unknown, never as an omission.
var Buckets = []Bucket{
	BucketTimelineClarity,
	BucketWinnerSignal,
	BucketMissionSpecificity,
	BucketApplicationBurden,
	BucketAwardStructureClarity,
}

// BucketResult carries the label plus a short reason for tooltip rendering.
type BucketResult struct {
	Label  Label  `json:"label"`
	Reason string `json:"reason"`
}

// ClassifyBuckets computes a label per bucket from the grant's current field
// values. Pure and idempotent: same fields, same labels. It never errors;
// missing data is a valid outcome (unknown).
func ClassifyBuckets(g models.Grant) map[Bucket]BucketResult {
	return map[Bucket]BucketResult{
		BucketTimelineClarity:       classifyTimeline(g),
		BucketWinnerSignal:          classifyWinnerSignal(g),
		BucketMissionSpecificity:    classifyMission(g),
		BucketApplicationBurden:     classifyApplicationBurden(g),
		BucketAwardStructureClarity: classifyAwardStructure(g),
	}
}

func classifyTimeline(g models.Grant) BucketResult {
	hasDeadline := g.DeadlineText != "" || g.DeadlineAt != nil
	hasDecision := g.DecisionDateText != "" || g.DecisionDateAt != nil

	if hasDeadline && hasDecision {
		return BucketResult{LabelKnown, "deadline_and_decision_date"}
	}
	if (g.TimelineStatus == models.TimelineActive || g.TimelineStatus == models.TimelineClosed) &&
		(g.DeadlineAt != nil || g.DecisionDateAt != nil) {
		return BucketResult{LabelKnown, "status_with_explicit_dates"}
	}
	if g.TimelineStatus == models.TimelineRolling {
		return BucketResult{LabelPartial, "rolling_only"}
	}
	if hasDeadline || hasDecision {
		return BucketResult{LabelPartial, "single_timing_signal"}
	}
	return BucketResult{LabelUnknown, "no_timing_information"}
}

func classifyWinnerSignal(g models.Grant) BucketResult {
	if len(g.PastRecipients) > 0 {
		return BucketResult{LabelKnown, "past_recipients_listed"}
	}
	if g.AcceptanceRate != "" {
		return BucketResult{LabelPartial, "acceptance_rate_only"}
	}
	return BucketResult{LabelUnknown, "no_recipient_history"}
}

// classifyMission consumes the precomputed specificity signal; the linguistic
// narrowness heuristic lives upstream. Mission text without a signal is
// treated as generic, not as absent.
func classifyMission(g models.Grant) BucketResult {
	if g.Mission == "" {
		return BucketResult{LabelUnknown, "no_mission_text"}
	}
	if g.MissionSpecificity == "specific" {
		return BucketResult{LabelKnown, "narrow_priority_language"}
	}
	return BucketResult{LabelPartial, "generic_mission"}
}

func classifyApplicationBurden(g models.Grant) BucketResult {
	if len(g.ApplicationRequirements) > 0 {
		return BucketResult{LabelKnown, "requirements_enumerated"}
	}
	if len(g.PreferredApplicants) > 0 || g.Eligibility != "" {
		return BucketResult{LabelPartial, "partial_requirement_info"}
	}
	return BucketResult{LabelUnknown, "no_application_detail"}
}

func classifyAwardStructure(g models.Grant) BucketResult {
	hasAmount := g.AwardAmount != ""
	hasStructure := g.AwardStructure != ""
	isRange := strings.Contains(g.AwardAmount, " - ")

	switch {
	case hasAmount && hasStructure && !isRange:
		return BucketResult{LabelKnown, "amount_and_structure"}
	case hasAmount && isRange:
		return BucketResult{LabelPartial, "amount_is_range"}
	case hasAmount || hasStructure:
		return BucketResult{LabelPartial, "amount_or_structure_only"}
	default:
		return BucketResult{LabelUnknown, "no_award_information"}
	}
}
