package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContributionStatus tracks a contribution through moderation. Transitions
// are one-directional: pending -> {approved, rejected}, approved -> merged.
// Rejected and merged are terminal.
type ContributionStatus string

const (
	ContributionPending  ContributionStatus = "pending"
	ContributionApproved ContributionStatus = "approved"
	ContributionRejected ContributionStatus = "rejected"
	ContributionMerged   ContributionStatus = "merged"
)

// ProposedGrant carries minimal grant metadata for contributions that target
// a grant not yet in the catalog.
type ProposedGrant struct {
	Title     string `json:"title"`
	SourceURL string `json:"source_url,omitempty"`
}

// Contribution is a proposed correction to exactly one field of exactly one
// grant. It is an audit record: created by a contributor, mutated only by a
// reviewer, never deleted.
type Contribution struct {
	ID              uuid.UUID          `json:"id"`
	GrantID         *uuid.UUID         `json:"grant_id"`
	ProposedGrant   *ProposedGrant     `json:"proposed_grant,omitempty"`
	FieldName       string             `json:"field_name"`
	NormalizedValue json.RawMessage    `json:"normalized_value"`
	SourceURL       string             `json:"source_url,omitempty"`
	Justification   string             `json:"justification,omitempty"`
	ContributorID   uuid.UUID          `json:"contributor_id"`
	Status          ContributionStatus `json:"status"`
	AdminNotes      string             `json:"admin_notes,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// Contributor is an authenticated account that may submit contributions.
type Contributor struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
