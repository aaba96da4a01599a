package classify

import "github.com/david/grant-curator/internal/models"

// Readiness verdicts shown to end users.
const (
	VerdictReady         = "Ready for Evaluation"
	VerdictPartial       = "Partial — Missing Signals"
	VerdictLowConfidence = "Low Confidence Grant"

	// VerdictNotEvaluated is the sentinel for grants that have not been
	// through upstream normalization yet.
	VerdictNotEvaluated = "not yet evaluated"
)

// Classification is the read-only result consumed by the UI layer.
type Classification struct {
	BucketLabels map[Bucket]Label  `json:"bucket_labels"`
	Reasons      map[Bucket]string `json:"reasons"`
	Verdict      string            `json:"verdict"`
}

// Verdict reduces bucket labels to one readiness verdict. Decision table,
// checked lowest confidence first so ties always resolve downward:
//
//	unknown >= 3                 -> Low Confidence Grant
//	unknown == 0 && partial <= 1 -> Ready for Evaluation
//	anything else                -> Partial — Missing Signals
func Verdict(labels []Label) string {
	var unknown, partial int
	for _, l := range labels {
		switch l {
		case LabelUnknown:
			unknown++
		case LabelPartial:
			partial++
		}
	}

	switch {
	case unknown >= 3:
		return VerdictLowConfidence
	case unknown == 0 && partial <= 1:
		return VerdictReady
	default:
		return VerdictPartial
	}
}

// Classify computes the full bucket map and verdict for a grant. Derived
// data only: nothing here is persisted, so a merged field is reflected on
// the very next read.
func Classify(g models.Grant) Classification {
	results := ClassifyBuckets(g)

	labels := make(map[Bucket]Label, len(results))
	reasons := make(map[Bucket]string, len(results))
	ordered := make([]Label, 0, len(Buckets))
	for _, b := range Buckets {
		labels[b] = results[b].Label
		reasons[b] = results[b].Reason
		ordered = append(ordered, results[b].Label)
	}

	verdict := Verdict(ordered)
	if !g.Normalized() {
		verdict = VerdictNotEvaluated
	}

	return Classification{BucketLabels: labels, Reasons: reasons, Verdict: verdict}
}
