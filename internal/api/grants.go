package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/david/grant-curator/internal/ai"
	"github.com/david/grant-curator/internal/classify"
	"github.com/david/grant-curator/internal/db"
	"github.com/david/grant-curator/internal/models"
	"github.com/david/grant-curator/internal/normalize"
)

// grantView is a grant plus its read-time classification. The classification
// is computed per response, never stored.
type grantView struct {
	models.Grant
	Classification classify.Classification `json:"classification"`
}

func toGrantView(g models.Grant) grantView {
	return grantView{Grant: g, Classification: classify.Classify(g)}
}

func toGrantViews(grants []models.Grant) []grantView {
	views := make([]grantView, 0, len(grants))
	for _, g := range grants {
		views = append(views, toGrantView(g))
	}
	return views
}

func (s *Server) handleListGrants(c echo.Context) error {
	q := c.QueryParam("q")

	limit := 20
	offset := 0
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		offset = o
	}

	// Generate embedding for semantic search
	var queryEmbedding []float32
	if q != "" {
		aiCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		vec, err := s.AI.GenerateEmbedding(aiCtx, q)
		if err != nil {
			c.Logger().Errorf("Failed to generate query embedding: %v", err)
			// Fall back to keyword search; queryEmbedding stays nil.
		} else {
			queryEmbedding = vec
		}
	}

	result, err := s.Store.ListGrants(c.Request().Context(), db.ListGrantsParams{
		Query:          q,
		QueryEmbedding: queryEmbedding,
		ReviewStatus:   string(models.GrantApproved),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return domainError(c, err)
	}

	views := toGrantViews(result.Grants)

	// Verdicts exist only at read time, so this filter applies to the fetched
	// page, not the unpaged total.
	if verdict := c.QueryParam("verdict"); verdict != "" {
		filtered := make([]grantView, 0, len(views))
		for _, v := range views {
			if v.Classification.Verdict == verdict {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"grants": views,
		"total":  result.Total,
		"limit":  result.Limit,
		"offset": result.Offset,
	})
}

func (s *Server) handleAdminListGrants(c echo.Context) error {
	limit := 50
	offset := 0
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		offset = o
	}

	status := c.QueryParam("review_status")
	if status == "" {
		status = string(models.GrantPendingReview)
	}

	result, err := s.Store.ListGrants(c.Request().Context(), db.ListGrantsParams{
		Query:        c.QueryParam("q"),
		ReviewStatus: status,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"grants": toGrantViews(result.Grants),
		"total":  result.Total,
		"limit":  result.Limit,
		"offset": result.Offset,
	})
}

func (s *Server) handleGetGrant(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid grant ID"})
	}

	g, err := s.Store.GetGrant(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, toGrantView(*g))
}

func (s *Server) handleGetClassification(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid grant ID"})
	}

	g, err := s.Store.GetGrant(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, classify.Classify(*g))
}

// createGrantRequest is the admin entry form for a new grant record.
type createGrantRequest struct {
	Title            string `json:"title"`
	Summary          string `json:"summary"`
	Mission          string `json:"mission"`
	Eligibility      string `json:"eligibility"`
	AwardAmount      string `json:"award_amount"`
	AwardStructure   string `json:"award_structure"`
	DeadlineText     string `json:"deadline_text"`
	DecisionDateText string `json:"decision_date_text"`
	SourceURL        string `json:"source_url"`
}

func (s *Server) handleCreateGrant(c echo.Context) error {
	var req createGrantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	title := normalize.SanitizeText(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Title is required"})
	}

	deadlineText := strings.TrimSpace(req.DeadlineText)
	deadlineAt := normalize.ParseDateText(deadlineText)
	now := time.Now().UTC()

	g := &models.Grant{
		Title:            title,
		Summary:          normalize.SanitizeText(req.Summary),
		Mission:          normalize.SanitizeText(req.Mission),
		Eligibility:      normalize.SanitizeText(req.Eligibility),
		AwardAmount:      strings.TrimSpace(req.AwardAmount),
		AwardStructure:   strings.TrimSpace(req.AwardStructure),
		DeadlineText:     deadlineText,
		DeadlineAt:       deadlineAt,
		DecisionDateText: strings.TrimSpace(req.DecisionDateText),
		SourceURL:        strings.TrimSpace(req.SourceURL),
		TimelineStatus:   normalize.DeriveTimelineStatus(deadlineText, deadlineAt, now),
		ReviewStatus:     models.GrantPendingReview,
	}
	if g.DecisionDateText != "" {
		g.DecisionDateAt = normalize.ParseDateText(g.DecisionDateText)
	}

	if err := s.Store.CreateGrant(c.Request().Context(), g); err != nil {
		return domainError(c, err)
	}

	s.embedGrantAsync(*g)

	return c.JSON(http.StatusCreated, toGrantView(*g))
}

// embedGrantAsync fires off embedding generation without blocking the
// request. The grant is searchable by keyword immediately either way.
func (s *Server) embedGrantAsync(g models.Grant) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		text := g.DisplayTitle()
		if g.Mission != "" {
			text += "\n" + g.Mission
		}
		vec, err := s.AI.GenerateEmbedding(ctx, text)
		if err != nil {
			log.Printf("embedding generation failed for grant %s: %v", g.ID, err)
			return
		}
		if err := s.Store.SetGrantEmbedding(ctx, g.ID, vec); err != nil {
			log.Printf("embedding write failed for grant %s: %v", g.ID, err)
		}
	}()
}

func (s *Server) handleApproveGrant(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid grant ID"})
	}

	g, err := s.Engine.ApproveGrant(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toGrantView(*g))
}

func (s *Server) handleRejectGrant(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid grant ID"})
	}

	g, err := s.Engine.RejectGrant(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toGrantView(*g))
}

func (s *Server) handleRecomputeSpecificity(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "A recompute job is already running",
			"job_id": job.ID,
		})
	}

	batchSize := 200
	if raw := strings.TrimSpace(c.QueryParam("batch_size")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 2000 {
			batchSize = parsed
		}
	}

	// context.WithoutCancel detaches from HTTP lifecycle but preserves
	// trace values. We add our own timeout for safety.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	// Run in background goroutine — returns 202 immediately.
	go func() {
		defer jobCancel()

		classified, failed, err := s.recomputeSpecificity(jobCtx, batchSize)

		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			log.Printf("[specificity-job %s] failed: %v", jobID, err)
			return
		}
		job.Status = "completed"
		job.Result = map[string]interface{}{
			"classified":      classified,
			"failed":          failed,
			"batch_size_used": batchSize,
		}
		log.Printf("[specificity-job %s] completed: classified=%d failed=%d", jobID, classified, failed)
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Specificity recompute started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

// recomputeSpecificity classifies the mission text of grants that carry no
// specificity signal yet. Per-grant model failures are counted, not fatal.
func (s *Server) recomputeSpecificity(ctx context.Context, batchSize int) (classified, failed int, err error) {
	grants, err := s.Store.ListGrantsMissingSpecificity(ctx, batchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("list grants missing specificity: %w", err)
	}

	for _, g := range grants {
		if ctx.Err() != nil {
			return classified, failed, ctx.Err()
		}

		signal, err := ai.ClassifyMissionSpecificity(ctx, s.AI, g.Mission)
		if err != nil {
			failed++
			log.Printf("specificity classification failed for grant %s: %v", g.ID, err)
			continue
		}
		if err := s.Store.SetMissionSpecificity(ctx, g.ID, signal); err != nil {
			failed++
			log.Printf("specificity write failed for grant %s: %v", g.ID, err)
			continue
		}
		classified++
	}

	return classified, failed, nil
}
