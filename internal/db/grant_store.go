package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/david/grant-curator/internal/contrib"
	"github.com/david/grant-curator/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// grantCols is the comprehensive column list for all grant queries.
const grantCols = `id, title, summary, mission, eligibility, award_amount, award_structure,
	deadline_text, deadline_at, decision_date_text, decision_date_at,
	preferred_applicants, application_requirements, past_recipients, acceptance_rate,
	source_url, canonical_title, canonical_summary, timeline_status, mission_specificity,
	review_status, created_at, updated_at`

func scanGrant(scan func(dest ...interface{}) error) (models.Grant, error) {
	var g models.Grant
	var summary, mission, eligibility, awardAmount, awardStructure *string
	var deadlineText, decisionDateText, acceptanceRate, sourceURL *string
	var canonicalTitle, canonicalSummary *string
	var timelineStatus, reviewStatus string
	var recipientsRaw []byte

	err := scan(
		&g.ID, &g.Title, &summary, &mission, &eligibility, &awardAmount, &awardStructure,
		&deadlineText, &g.DeadlineAt, &decisionDateText, &g.DecisionDateAt,
		&g.PreferredApplicants, &g.ApplicationRequirements, &recipientsRaw, &acceptanceRate,
		&sourceURL, &canonicalTitle, &canonicalSummary, &timelineStatus, &g.MissionSpecificity,
		&reviewStatus, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return g, err
	}

	if summary != nil {
		g.Summary = *summary
	}
	if mission != nil {
		g.Mission = *mission
	}
	if eligibility != nil {
		g.Eligibility = *eligibility
	}
	if awardAmount != nil {
		g.AwardAmount = *awardAmount
	}
	if awardStructure != nil {
		g.AwardStructure = *awardStructure
	}
	if deadlineText != nil {
		g.DeadlineText = *deadlineText
	}
	if decisionDateText != nil {
		g.DecisionDateText = *decisionDateText
	}
	if acceptanceRate != nil {
		g.AcceptanceRate = *acceptanceRate
	}
	if sourceURL != nil {
		g.SourceURL = *sourceURL
	}
	if canonicalTitle != nil {
		g.CanonicalTitle = *canonicalTitle
	}
	if canonicalSummary != nil {
		g.CanonicalSummary = *canonicalSummary
	}
	if len(recipientsRaw) > 0 {
		_ = json.Unmarshal(recipientsRaw, &g.PastRecipients)
	}
	g.TimelineStatus = models.TimelineStatus(timelineStatus)
	g.ReviewStatus = models.GrantReviewStatus(reviewStatus)

	return g, nil
}

func (s *Store) CreateGrant(ctx context.Context, g *models.Grant) error {
	recipients, err := encodeRecipients(g.PastRecipients)
	if err != nil {
		return err
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO grants (
			title, summary, mission, eligibility, award_amount, award_structure,
			deadline_text, deadline_at, decision_date_text, decision_date_at,
			preferred_applicants, application_requirements, past_recipients, acceptance_rate,
			source_url, timeline_status, mission_specificity, review_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id, created_at, updated_at
	`,
		g.Title, g.Summary, g.Mission, g.Eligibility, g.AwardAmount, g.AwardStructure,
		g.DeadlineText, g.DeadlineAt, g.DecisionDateText, g.DecisionDateAt,
		g.PreferredApplicants, g.ApplicationRequirements, recipients, g.AcceptanceRate,
		g.SourceURL, string(g.TimelineStatus), g.MissionSpecificity, string(g.ReviewStatus),
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

func (s *Store) GetGrant(ctx context.Context, id uuid.UUID) (*models.Grant, error) {
	sql := fmt.Sprintf("SELECT %s FROM grants WHERE id = $1", grantCols)
	row := s.pool.QueryRow(ctx, sql, id)

	g, err := scanGrant(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &contrib.NotFoundError{Entity: "grant", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get grant failed: %w", err)
	}

	return &g, nil
}

// SetGrantReviewStatus flips review_status only from the expected current
// status; concurrent reviewers race on the row, not on the engine.
func (s *Store) SetGrantReviewStatus(ctx context.Context, id uuid.UUID, from, to models.GrantReviewStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE grants SET review_status = $3, updated_at = NOW()
		WHERE id = $1 AND review_status = $2
	`, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("update review status failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListGrantsParams filters the grant catalog.
type ListGrantsParams struct {
	Query          string
	QueryEmbedding []float32
	ReviewStatus   string // "approved" (default), "pending_review", "rejected", or "all"
	Limit          int
	Offset         int
}

// ListGrantsResult is one page of grants plus the unpaged total.
type ListGrantsResult struct {
	Grants []models.Grant `json:"grants"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func (s *Store) ListGrants(ctx context.Context, params ListGrantsParams) (*ListGrantsResult, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	status := params.ReviewStatus
	if status == "" {
		status = string(models.GrantApproved)
	}
	if status != "all" {
		where += fmt.Sprintf(" AND review_status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	if params.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR canonical_title ILIKE '%%' || $%d || '%%' OR mission ILIKE '%%' || $%d || '%%')", argIdx, argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM grants " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM grants %s", grantCols, where)

	if len(params.QueryEmbedding) > 0 {
		selectSQL += fmt.Sprintf(`
			ORDER BY
				CASE WHEN embedding IS NULL THEN 1 ELSE 0 END ASC,
				COALESCE(1 - (embedding <=> $%d), -1) DESC,
				updated_at DESC
		`, argIdx)
		args = append(args, pgvector.NewVector(params.QueryEmbedding))
		argIdx++
	} else {
		selectSQL += " ORDER BY updated_at DESC, created_at DESC"
	}

	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if grants == nil {
		grants = []models.Grant{}
	}

	return &ListGrantsResult{
		Grants: grants,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

// SetGrantEmbedding stores the search embedding for a grant.
func (s *Store) SetGrantEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	_, err := s.pool.Exec(ctx, "UPDATE grants SET embedding = $2 WHERE id = $1", id, pgvector.NewVector(embedding))
	return err
}

// SetMissionSpecificity records the upstream specificity signal for a grant.
func (s *Store) SetMissionSpecificity(ctx context.Context, id uuid.UUID, signal string) error {
	_, err := s.pool.Exec(ctx, "UPDATE grants SET mission_specificity = $2, updated_at = NOW() WHERE id = $1", id, signal)
	return err
}

// ListGrantsMissingSpecificity returns approved grants that have mission text
// but no specificity signal yet.
func (s *Store) ListGrantsMissingSpecificity(ctx context.Context, limit int) ([]models.Grant, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM grants
		WHERE mission IS NOT NULL AND mission != '' AND mission_specificity = ''
		ORDER BY updated_at DESC
		LIMIT $1
	`, grantCols)

	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM grants").Scan(&total)
	stats["grants"] = total

	reviewCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT review_status, COUNT(*) FROM grants GROUP BY review_status")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr == nil {
				reviewCounts[status] = count
			}
		}
	}
	stats["grant_review_counts"] = reviewCounts

	contributionCounts := map[string]int{}
	crows, err := s.pool.Query(ctx, "SELECT status, COUNT(*) FROM contributions GROUP BY status")
	if err == nil {
		defer crows.Close()
		for crows.Next() {
			var status string
			var count int
			if scanErr := crows.Scan(&status, &count); scanErr == nil {
				contributionCounts[status] = count
			}
		}
	}
	stats["contribution_counts"] = contributionCounts

	return stats, nil
}

// buildFieldUpdate renders a merge field map into a deterministic SET clause.
// Recipient slices are stored as JSONB; everything else maps directly.
func buildFieldUpdate(fields map[string]any, startIdx int) (string, []interface{}, error) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var set []string
	var args []interface{}
	idx := startIdx
	for _, col := range cols {
		val := fields[col]
		if recipients, ok := val.([]models.RecipientRecord); ok {
			encoded, err := encodeRecipients(recipients)
			if err != nil {
				return "", nil, err
			}
			val = encoded
		}
		set = append(set, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	return strings.Join(set, ", "), args, nil
}

func encodeRecipients(recipients []models.RecipientRecord) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(recipients)
	if err != nil {
		return nil, fmt.Errorf("encode recipients failed: %w", err)
	}
	return encoded, nil
}
