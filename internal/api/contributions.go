package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/david/grant-curator/internal/auth"
	"github.com/david/grant-curator/internal/contrib"
	"github.com/david/grant-curator/internal/db"
	"github.com/david/grant-curator/internal/models"
)

// submitContributionRequest proposes a value for one field of one grant.
// Either grant_id or proposed_grant must be present.
type submitContributionRequest struct {
	GrantID       *uuid.UUID            `json:"grant_id"`
	ProposedGrant *models.ProposedGrant `json:"proposed_grant"`
	FieldName     string                `json:"field_name"`
	Value         json.RawMessage       `json:"value"`
	SourceURL     string                `json:"source_url"`
	Justification string                `json:"justification"`
}

func (s *Server) handleSubmitContribution(c echo.Context) error {
	contributorID, err := auth.GetContributorIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req submitContributionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	contribution, err := s.Engine.Submit(c.Request().Context(), contrib.SubmitInput{
		GrantID:       req.GrantID,
		ProposedGrant: req.ProposedGrant,
		FieldName:     req.FieldName,
		RawValue:      req.Value,
		SourceURL:     req.SourceURL,
		Justification: req.Justification,
		ContributorID: contributorID,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusCreated, contribution)
}

func (s *Server) handleListMyContributions(c echo.Context) error {
	contributorID, err := auth.GetContributorIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	params := db.ListContributionsParams{ContributorID: &contributorID}
	params.Status = c.QueryParam("status")
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}

	contributions, err := s.Store.ListContributions(c.Request().Context(), params)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, contributions)
}

func (s *Server) handleGetMyProfile(c echo.Context) error {
	contributorID, err := auth.GetContributorIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	contributor, err := s.AuthService.GetContributor(c.Request().Context(), contributorID)
	if err != nil {
		return domainError(c, err)
	}

	profile, err := s.Engine.Profile(c.Request().Context(), contributorID)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"contributor": contributor,
		"reputation":  profile,
	})
}

func (s *Server) handleListGrantContributions(c echo.Context) error {
	grantID, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid grant ID"})
	}

	// 404 for a grant that does not exist; an empty history is a 200.
	if _, err := s.Store.GetGrant(c.Request().Context(), grantID); err != nil {
		return domainError(c, err)
	}

	params := db.ListContributionsParams{GrantID: &grantID}
	params.Status = c.QueryParam("status")
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}

	contributions, err := s.Store.ListContributions(c.Request().Context(), params)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, contributions)
}

func (s *Server) handleListPendingContributions(c echo.Context) error {
	params := db.ListContributionsParams{Status: string(models.ContributionPending)}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}

	contributions, err := s.Store.ListContributions(c.Request().Context(), params)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, contributions)
}

// reviewRequest carries the optional reviewer note for approve/reject.
type reviewRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleApproveContribution(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid contribution ID"})
	}

	var req reviewRequest
	_ = c.Bind(&req)

	contribution, err := s.Engine.Approve(c.Request().Context(), id, req.Note)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, contribution)
}

func (s *Server) handleRejectContribution(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid contribution ID"})
	}

	var req reviewRequest
	_ = c.Bind(&req)

	contribution, err := s.Engine.Reject(c.Request().Context(), id, req.Note)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, contribution)
}

func (s *Server) handleMergeContribution(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid contribution ID"})
	}

	grant, err := s.Engine.Merge(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toGrantView(*grant))
}

func (s *Server) handleSourcePreview(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid contribution ID"})
	}

	contribution, err := s.Store.GetContribution(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	if contribution.SourceURL == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Contribution has no source URL"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	preview, err := s.Sources.Preview(ctx, contribution.SourceURL)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Source fetch failed: " + err.Error()})
	}
	return c.JSON(http.StatusOK, preview)
}
