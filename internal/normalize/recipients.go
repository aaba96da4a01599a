package normalize

import (
	"encoding/json"
	"strings"

	"github.com/david/grant-curator/internal/models"
)

// RecipientInput is one proposed past-recipient record. Themes is a single
// comma-separated string as entered by the contributor.
type RecipientInput struct {
	OrganizationName string `json:"organization_name"`
	OrganizationType string `json:"organization_type"`
	Country          string `json:"country"`
	CareerStage      string `json:"career_stage"`
	ProjectTitle     string `json:"project_title"`
	Summary          string `json:"summary"`
	Themes           string `json:"themes"`
}

// RecipientsInput is the payload shape for past_recipients contributions.
type RecipientsInput struct {
	Recipients []RecipientInput `json:"recipients"`
}

func normalizeRecipients(field string, payload json.RawMessage) (Value, error) {
	var in RecipientsInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return Value{}, validationErr(field, "malformed recipients payload")
	}

	var records []models.RecipientRecord
	identified := 0
	for _, r := range in.Recipients {
		rec := models.RecipientRecord{
			OrganizationName: cleanText(r.OrganizationName),
			OrganizationType: cleanText(r.OrganizationType),
			Country:          cleanText(r.Country),
			CareerStage:      cleanText(r.CareerStage),
			ProjectTitle:     cleanText(r.ProjectTitle),
			Summary:          cleanText(r.Summary),
			Themes:           splitThemes(r.Themes),
		}
		if recipientEmpty(rec) {
			continue
		}
		if rec.OrganizationName != "" || rec.OrganizationType != "" || rec.ProjectTitle != "" {
			identified++
		}
		records = append(records, rec)
	}

	if identified == 0 {
		return Value{}, validationErr(field, "at least one recipient needs an organization name, type, or project title")
	}
	return Value{Kind: KindRecipients, Recipients: records}, nil
}

func recipientEmpty(r models.RecipientRecord) bool {
	return r.OrganizationName == "" && r.OrganizationType == "" && r.Country == "" &&
		r.CareerStage == "" && r.ProjectTitle == "" && r.Summary == "" && len(r.Themes) == 0
}

// splitThemes splits a comma-separated theme string, trimming entries and
// dropping repeats while preserving first-occurrence order.
func splitThemes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var themes []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		t := cleanText(part)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		themes = append(themes, t)
	}
	return themes
}
