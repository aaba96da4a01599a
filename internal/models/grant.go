package models

import (
	"time"

	"github.com/google/uuid"
)

// TimelineStatus is the upstream-normalized timing state of a grant.
type TimelineStatus string

const (
	TimelineActive  TimelineStatus = "active"
	TimelineClosed  TimelineStatus = "closed"
	TimelineRolling TimelineStatus = "rolling"
	TimelineUnknown TimelineStatus = "unknown"
)

// GrantReviewStatus gates whether a newly submitted grant is visible to
// non-admin users. It is independent of per-field contribution moderation.
type GrantReviewStatus string

const (
	GrantPendingReview GrantReviewStatus = "pending_review"
	GrantApproved      GrantReviewStatus = "approved"
	GrantRejected      GrantReviewStatus = "rejected"
)

// RecipientRecord describes one past recipient of a grant. Only non-empty
// sub-fields are retained.
type RecipientRecord struct {
	OrganizationName string   `json:"organization_name,omitempty"`
	OrganizationType string   `json:"organization_type,omitempty"`
	Country          string   `json:"country,omitempty"`
	CareerStage      string   `json:"career_stage,omitempty"`
	ProjectTitle     string   `json:"project_title,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	Themes           []string `json:"themes,omitempty"`
}

// Grant is a funding opportunity record. Raw fields come from extraction or
// admin entry; canonical fields are produced by upstream normalization and
// take display precedence without replacing the raw values. Field mutations
// after creation go through the moderation merge engine only.
type Grant struct {
	ID uuid.UUID `json:"id"`

	// Raw fields
	Title                   string            `json:"title"`
	Summary                 string            `json:"summary"`
	Mission                 string            `json:"mission"`
	Eligibility             string            `json:"eligibility"`
	AwardAmount             string            `json:"award_amount"`
	AwardStructure          string            `json:"award_structure"`
	DeadlineText            string            `json:"deadline_text"`
	DeadlineAt              *time.Time        `json:"deadline_at"`
	DecisionDateText        string            `json:"decision_date_text"`
	DecisionDateAt          *time.Time        `json:"decision_date_at"`
	PreferredApplicants     []string          `json:"preferred_applicants"`
	ApplicationRequirements []string          `json:"application_requirements"`
	PastRecipients          []RecipientRecord `json:"past_recipients"`
	AcceptanceRate          string            `json:"acceptance_rate"`
	SourceURL               string            `json:"source_url"`

	// Canonical/derived fields
	CanonicalTitle     string         `json:"canonical_title"`
	CanonicalSummary   string         `json:"canonical_summary"`
	TimelineStatus     TimelineStatus `json:"timeline_status"`
	MissionSpecificity string         `json:"mission_specificity"` // "specific", "generic", or "" when no signal

	ReviewStatus GrantReviewStatus `json:"review_status"`
	Embedding    []float32         `json:"-"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// DisplayTitle prefers the canonical title when upstream normalization has
// produced one.
func (g Grant) DisplayTitle() string {
	if g.CanonicalTitle != "" {
		return g.CanonicalTitle
	}
	return g.Title
}

// DisplaySummary prefers the canonical summary when present.
func (g Grant) DisplaySummary() string {
	if g.CanonicalSummary != "" {
		return g.CanonicalSummary
	}
	return g.Summary
}

// Normalized reports whether upstream normalization has run. Grants that have
// not been normalized yet must not receive a readiness verdict.
func (g Grant) Normalized() bool {
	return g.TimelineStatus != ""
}
