package ai

// FeedbackSource tags where a FeedbackRecord came from, so consumers can tell
// model output apart from degraded fallbacks.
type FeedbackSource string

const (
	SourceGenerated         FeedbackSource = "generated"
	SourceManuallyExtracted FeedbackSource = "manually_extracted"
	SourceTemplate          FeedbackSource = "template"
)

// FeedbackRecord is the single shape every generation path produces. Scores
// are always within [0,10] and narrative fields are never empty.
type FeedbackRecord struct {
	TeachingQualityScore   float64
	StudentEngagementScore float64
	OverallScore           float64

	Strengths               string
	AreasForImprovement     string
	SpecificRecommendations string

	Source FeedbackSource
}
