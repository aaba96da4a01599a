package contrib

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/david/grant-curator/internal/models"
	"github.com/david/grant-curator/internal/normalize"
)

// GrantStore is the grant persistence contract the engine consumes.
type GrantStore interface {
	GetGrant(ctx context.Context, id uuid.UUID) (*models.Grant, error)
	// SetGrantReviewStatus flips the review status only when the current
	// status matches from; it reports whether a row changed.
	SetGrantReviewStatus(ctx context.Context, id uuid.UUID, from, to models.GrantReviewStatus) (bool, error)
}

// ContributionStore is the contribution persistence contract.
type ContributionStore interface {
	InsertContribution(ctx context.Context, c *models.Contribution) error
	GetContribution(ctx context.Context, id uuid.UUID) (*models.Contribution, error)
	// SetContributionStatus flips status only when the current status matches
	// from; it reports whether a row changed.
	SetContributionStatus(ctx context.Context, id uuid.UUID, from, to models.ContributionStatus, adminNotes string) (bool, error)
	// MergeContribution atomically flips the contribution from approved to
	// merged and applies the column assignments to the grant. Both writes
	// commit together or not at all.
	MergeContribution(ctx context.Context, contributionID, grantID uuid.UUID, fields map[string]any) (*models.Grant, error)
	CountAcceptedByContributor(ctx context.Context, contributorID uuid.UUID) (int, error)
}

// Engine runs the contribution intake and moderation policy on top of the
// stores. All policy decisions live here; the stores only do conditional
// writes.
type Engine struct {
	grants        GrantStore
	contributions ContributionStore
}

func NewEngine(grants GrantStore, contributions ContributionStore) *Engine {
	return &Engine{grants: grants, contributions: contributions}
}

// SubmitInput is one proposed field correction.
type SubmitInput struct {
	GrantID       *uuid.UUID
	ProposedGrant *models.ProposedGrant
	FieldName     string
	RawValue      json.RawMessage
	SourceURL     string
	Justification string
	ContributorID uuid.UUID
}

// Submit validates and normalizes a proposed correction and stores it as a
// pending contribution. Validation failures happen before any persistence;
// the insert is the only side effect, so a retry is safe. Multiple pending
// proposals for the same (grant, field) are allowed on purpose: reviewers
// pick the best one.
func (e *Engine) Submit(ctx context.Context, in SubmitInput) (*models.Contribution, error) {
	if in.GrantID == nil {
		if in.ProposedGrant == nil || normalize.SanitizeText(in.ProposedGrant.Title) == "" {
			return nil, &normalize.ValidationError{Field: "grant", Message: "a grant reference or proposed grant title is required"}
		}
	} else {
		if _, err := e.grants.GetGrant(ctx, *in.GrantID); err != nil {
			return nil, err
		}
	}

	if in.SourceURL != "" {
		u, err := url.Parse(in.SourceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, &normalize.ValidationError{Field: "source_url", Message: "must be an absolute http(s) URL"}
		}
	}

	value, err := normalize.Normalize(in.FieldName, in.RawValue)
	if err != nil {
		return nil, err
	}
	encoded, err := value.Encode()
	if err != nil {
		return nil, err
	}

	c := &models.Contribution{
		ID:              uuid.New(),
		GrantID:         in.GrantID,
		ProposedGrant:   in.ProposedGrant,
		FieldName:       in.FieldName,
		NormalizedValue: encoded,
		SourceURL:       in.SourceURL,
		Justification:   normalize.SanitizeText(in.Justification),
		ContributorID:   in.ContributorID,
		Status:          models.ContributionPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := e.contributions.InsertContribution(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Approve marks a pending contribution as correct without writing it into
// the grant. Merging is a separate, optional follow-up.
func (e *Engine) Approve(ctx context.Context, id uuid.UUID, note string) (*models.Contribution, error) {
	return e.review(ctx, id, models.ContributionApproved, note, "approve")
}

// Reject declines a pending contribution, keeping the reason on record.
func (e *Engine) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Contribution, error) {
	return e.review(ctx, id, models.ContributionRejected, reason, "reject")
}

func (e *Engine) review(ctx context.Context, id uuid.UUID, to models.ContributionStatus, note, action string) (*models.Contribution, error) {
	c, err := e.contributions.GetContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ContributionPending {
		return nil, &InvalidTransitionError{Entity: "contribution", From: string(c.Status), Action: action}
	}

	changed, err := e.contributions.SetContributionStatus(ctx, id, models.ContributionPending, to, note)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost a race with another reviewer; report the state we lost to.
		c, err = e.contributions.GetContribution(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{Entity: "contribution", From: string(c.Status), Action: action}
	}

	c.Status = to
	c.AdminNotes = note
	return c, nil
}

// Merge writes an approved contribution's normalized value into the target
// grant's field and marks the contribution merged, in one transaction.
// Last merge wins per field; merges are not serialized across contributions.
func (e *Engine) Merge(ctx context.Context, id uuid.UUID) (*models.Grant, error) {
	c, err := e.contributions.GetContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ContributionApproved {
		return nil, &InvalidTransitionError{Entity: "contribution", From: string(c.Status), Action: "merge"}
	}
	if c.GrantID == nil {
		return nil, &NotFoundError{Entity: "grant"}
	}
	if _, err := e.grants.GetGrant(ctx, *c.GrantID); err != nil {
		return nil, err
	}

	value, err := normalize.DecodeValue(c.NormalizedValue)
	if err != nil {
		return nil, err
	}
	fields, err := fieldAssignments(c.FieldName, value)
	if err != nil {
		return nil, err
	}

	return e.contributions.MergeContribution(ctx, c.ID, *c.GrantID, fields)
}

// ApproveGrant makes a newly submitted grant visible to non-admin users.
// This machine is independent of per-field contribution moderation.
func (e *Engine) ApproveGrant(ctx context.Context, id uuid.UUID) (*models.Grant, error) {
	return e.reviewGrant(ctx, id, models.GrantApproved, "approve")
}

// RejectGrant declines a newly submitted grant.
func (e *Engine) RejectGrant(ctx context.Context, id uuid.UUID) (*models.Grant, error) {
	return e.reviewGrant(ctx, id, models.GrantRejected, "reject")
}

func (e *Engine) reviewGrant(ctx context.Context, id uuid.UUID, to models.GrantReviewStatus, action string) (*models.Grant, error) {
	g, err := e.grants.GetGrant(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.ReviewStatus != models.GrantPendingReview {
		return nil, &InvalidTransitionError{Entity: "grant", From: string(g.ReviewStatus), Action: action}
	}

	changed, err := e.grants.SetGrantReviewStatus(ctx, id, models.GrantPendingReview, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		g, err = e.grants.GetGrant(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{Entity: "grant", From: string(g.ReviewStatus), Action: action}
	}

	g.ReviewStatus = to
	return g, nil
}

// fieldAssignments maps a normalized value to grant column assignments.
// Date fields also populate the typed timestamp when the value parses to a
// concrete date; "Rolling" and vague text leave it null.
func fieldAssignments(fieldName string, v normalize.Value) (map[string]any, error) {
	switch fieldName {
	case "mission":
		return map[string]any{"mission": v.Text}, nil
	case "eligibility":
		return map[string]any{"eligibility": v.Text}, nil
	case "award_amount":
		return map[string]any{"award_amount": v.Text}, nil
	case "award_structure":
		return map[string]any{"award_structure": v.Text}, nil
	case "acceptance_rate":
		return map[string]any{"acceptance_rate": v.Text}, nil
	case "deadline":
		return map[string]any{
			"deadline_text": v.Text,
			"deadline_at":   normalize.ParseDateText(v.Text),
		}, nil
	case "decision_date":
		return map[string]any{
			"decision_date_text": v.Text,
			"decision_date_at":   normalize.ParseDateText(v.Text),
		}, nil
	case "preferred_applicants":
		return map[string]any{"preferred_applicants": v.List}, nil
	case "application_requirements":
		return map[string]any{"application_requirements": v.List}, nil
	case "past_recipients":
		return map[string]any{"past_recipients": v.Recipients}, nil
	default:
		// Catch-all contributions have no grant column; they stay on record
		// as approved annotations but cannot be merged.
		return nil, &normalize.ValidationError{Field: fieldName, Message: "field has no mergeable grant column"}
	}
}
