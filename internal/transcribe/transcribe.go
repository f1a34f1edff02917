package transcribe

import (
	"context"

	"github.com/effectiveclass/classlens/internal/models"
)

// Segment is one timed span of recognized speech.
type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	AvgLogprob   float64 `json:"avg_logprob"`
	NoSpeechProb float64 `json:"no_speech_prob"`
}

type Result struct {
	Text                string    `json:"text"`
	Segments            []Segment `json:"segments"`
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
	Duration            float64   `json:"duration"`
}

// Transcriber is the speech-to-text capability: given audio (or a video file
// when no isolated audio exists) and a language hint, return timed text
// segments with confidence.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string, languageHint models.Language) (*Result, error)
}
