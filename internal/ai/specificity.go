package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// SpecificitySignals are the values the mission-specificity classifier may
// emit. The bucket classifier consumes the stored signal; it never runs this
// model itself.
var SpecificitySignals = []string{"specific", "generic"}

type specificityResult struct {
	Specificity string `json:"specificity"`
	Rationale   string `json:"rationale"`
}

// ClassifyMissionSpecificity asks the local model whether a grant's mission
// text reads as narrowly focused or generic. Returns one of
// SpecificitySignals.
func ClassifyMissionSpecificity(ctx context.Context, client *OllamaClient, mission string) (string, error) {
	prompt := fmt.Sprintf(`You are reviewing the mission statement of a grant program.

MISSION TEXT: %s

Decide whether the mission names a narrow, domain-specific funding priority
(e.g. a named disease, technology, region, or population) or reads as a
generic statement that could describe almost any grant.

Return a JSON object with this format:
{
  "specificity": "specific" or "generic",
  "rationale": "one short sentence"
}

RESPOND ONLY WITH JSON.`, mission)

	resp, err := client.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return "", err
	}

	var result specificityResult
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return "", fmt.Errorf("failed to parse specificity json: %w. Response: %s", err, resp)
	}

	signal := strings.ToLower(strings.TrimSpace(result.Specificity))
	for _, allowed := range SpecificitySignals {
		if signal == allowed {
			return allowed, nil
		}
	}
	return "", fmt.Errorf("model returned unknown specificity %q", result.Specificity)
}
