package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/david/grant-curator/internal/contrib"
	"github.com/david/grant-curator/internal/models"
)

const contributionCols = `id, grant_id, proposed_grant, field_name, normalized_value,
	source_url, justification, contributor_id, status, admin_notes, created_at`

func scanContribution(scan func(dest ...interface{}) error) (models.Contribution, error) {
	var c models.Contribution
	var proposedRaw []byte
	var sourceURL, justification, adminNotes *string
	var status string

	err := scan(
		&c.ID, &c.GrantID, &proposedRaw, &c.FieldName, &c.NormalizedValue,
		&sourceURL, &justification, &c.ContributorID, &status, &adminNotes, &c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	if len(proposedRaw) > 0 {
		_ = json.Unmarshal(proposedRaw, &c.ProposedGrant)
	}
	if sourceURL != nil {
		c.SourceURL = *sourceURL
	}
	if justification != nil {
		c.Justification = *justification
	}
	if adminNotes != nil {
		c.AdminNotes = *adminNotes
	}
	c.Status = models.ContributionStatus(status)

	return c, nil
}

func (s *Store) InsertContribution(ctx context.Context, c *models.Contribution) error {
	var proposed []byte
	if c.ProposedGrant != nil {
		encoded, err := json.Marshal(c.ProposedGrant)
		if err != nil {
			return fmt.Errorf("encode proposed grant failed: %w", err)
		}
		proposed = encoded
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO contributions (
			id, grant_id, proposed_grant, field_name, normalized_value,
			source_url, justification, contributor_id, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`,
		c.ID, c.GrantID, proposed, c.FieldName, c.NormalizedValue,
		c.SourceURL, c.Justification, c.ContributorID, string(c.Status),
	).Scan(&c.CreatedAt)
}

func (s *Store) GetContribution(ctx context.Context, id uuid.UUID) (*models.Contribution, error) {
	sql := fmt.Sprintf("SELECT %s FROM contributions WHERE id = $1", contributionCols)
	row := s.pool.QueryRow(ctx, sql, id)

	c, err := scanContribution(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &contrib.NotFoundError{Entity: "contribution", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get contribution failed: %w", err)
	}

	return &c, nil
}

// SetContributionStatus flips status only from the expected current status.
// An empty note preserves any existing admin notes.
func (s *Store) SetContributionStatus(ctx context.Context, id uuid.UUID, from, to models.ContributionStatus, adminNotes string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE contributions
		SET status = $3, admin_notes = CASE WHEN $4 <> '' THEN $4 ELSE admin_notes END
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), adminNotes)
	if err != nil {
		return false, fmt.Errorf("update contribution status failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MergeContribution flips the contribution to merged and writes the field
// assignments into the grant in a single transaction, so a partial merge can
// never be observed. Returns the updated grant.
func (s *Store) MergeContribution(ctx context.Context, contributionID, grantID uuid.UUID, fields map[string]any) (*models.Grant, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin merge failed: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE contributions SET status = $3
		WHERE id = $1 AND status = $2
	`, contributionID, string(models.ContributionApproved), string(models.ContributionMerged))
	if err != nil {
		return nil, fmt.Errorf("merge status flip failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// The engine checked status before this transaction; a concurrent
		// reviewer merged first. Surface that, do not write the field.
		c, getErr := s.GetContribution(ctx, contributionID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &contrib.InvalidTransitionError{Entity: "contribution", From: string(c.Status), Action: "merge"}
	}

	setClause, args, err := buildFieldUpdate(fields, 2)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		UPDATE grants SET %s, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, setClause, grantCols)
	row := tx.QueryRow(ctx, sql, append([]interface{}{grantID}, args...)...)

	g, err := scanGrant(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &contrib.NotFoundError{Entity: "grant", ID: grantID}
	}
	if err != nil {
		return nil, fmt.Errorf("merge field write failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit merge failed: %w", err)
	}

	return &g, nil
}

// ListContributionsParams filters the contribution audit trail.
type ListContributionsParams struct {
	GrantID       *uuid.UUID
	ContributorID *uuid.UUID
	Status        string
	Limit         int
	Offset        int
}

func (s *Store) ListContributions(ctx context.Context, params ListContributionsParams) ([]models.Contribution, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.GrantID != nil {
		where += fmt.Sprintf(" AND grant_id = $%d", argIdx)
		args = append(args, *params.GrantID)
		argIdx++
	}
	if params.ContributorID != nil {
		where += fmt.Sprintf(" AND contributor_id = $%d", argIdx)
		args = append(args, *params.ContributorID)
		argIdx++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, params.Status)
		argIdx++
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	sql := fmt.Sprintf(
		"SELECT %s FROM contributions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		contributionCols, where, argIdx, argIdx+1,
	)
	args = append(args, limit, params.Offset)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list contributions failed: %w", err)
	}
	defer rows.Close()

	var contributions []models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan contribution failed: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if contributions == nil {
		contributions = []models.Contribution{}
	}
	return contributions, nil
}

// CountAcceptedByContributor counts approved or merged contributions; both
// states represent an accepted correction for reputation purposes.
func (s *Store) CountAcceptedByContributor(ctx context.Context, contributorID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM contributions
		WHERE contributor_id = $1 AND status IN ($2, $3)
	`, contributorID, string(models.ContributionApproved), string(models.ContributionMerged)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count accepted contributions failed: %w", err)
	}
	return count, nil
}
