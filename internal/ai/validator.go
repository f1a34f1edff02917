package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/effectiveclass/classlens/internal/models"
)

// Default scores substituted for missing or non-numeric values.
const (
	defaultQualityScore    = 7.0
	defaultEngagementScore = 6.5
	defaultOverallScore    = 7.0
)

var englishIndicators = []string{
	"the", "teacher", "students", "learning", "could",
	"would", "should", "improve", "teaching", "classroom",
}

// ParseResponse turns a raw model response into a validated FeedbackRecord.
// It never fails: structural or language problems degrade to manual
// extraction and finally to the per-language template.
func ParseResponse(content string, language models.Language) FeedbackRecord {
	if span, ok := extractJSONSpan(content); ok {
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(span), &raw); err == nil {
			record := normalizeFeedback(raw)
			if requiresCyrillic(language) && isEnglishFeedback(record) {
				return TemplateFeedback(language)
			}
			record.Source = SourceGenerated
			return record
		}
	}

	if record, ok := extractFeedbackManually(content); ok {
		return record
	}
	return TemplateFeedback(language)
}

// extractJSONSpan returns the first brace-delimited span of the text, from
// the first '{' through the last '}'.
func extractJSONSpan(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

func normalizeFeedback(raw map[string]interface{}) FeedbackRecord {
	return FeedbackRecord{
		TeachingQualityScore:   NormalizeScore(raw["teaching_quality_score"], defaultQualityScore),
		StudentEngagementScore: NormalizeScore(raw["student_engagement_score"], defaultEngagementScore),
		OverallScore:           NormalizeScore(raw["overall_score"], defaultOverallScore),

		Strengths:               NormalizeNarrative(raw["strengths"]),
		AreasForImprovement:     NormalizeNarrative(raw["areas_for_improvement"]),
		SpecificRecommendations: NormalizeNarrative(raw["specific_recommendations"]),
	}
}

// NormalizeScore coerces a decoded JSON value to a float in [0,10],
// substituting the default for anything non-numeric.
func NormalizeScore(value interface{}, fallback float64) float64 {
	switch v := value.(type) {
	case float64:
		return clampScore(v)
	case int:
		return clampScore(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return clampScore(f)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return clampScore(f)
		}
	}
	return fallback
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// NormalizeNarrative coerces a decoded JSON value to a non-empty string.
// Lists are joined, other values stringified, and anything empty becomes the
// fixed placeholder.
func NormalizeNarrative(value interface{}) string {
	var text string
	switch v := value.(type) {
	case nil:
		text = ""
	case string:
		text = v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		text = strings.Join(parts, " ")
	default:
		text = fmt.Sprint(v)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return placeholderNarrative
	}
	return text
}

func requiresCyrillic(language models.Language) bool {
	return language == models.LanguageRussian || language == models.LanguageTajik
}

// isEnglishFeedback classifies the narrative text of a record as English. A
// single Cyrillic character anywhere disqualifies the classification;
// otherwise three or more hits from the English indicator list confirm it.
func isEnglishFeedback(record FeedbackRecord) bool {
	text := strings.ToLower(strings.Join([]string{
		record.Strengths,
		record.AreasForImprovement,
		record.SpecificRecommendations,
	}, " "))

	for _, r := range text {
		if (r >= 'а' && r <= 'я') || r == 'ё' || r == 'ӣ' || r == 'ӯ' || r == 'ҳ' || r == 'қ' || r == 'ҷ' || r == 'ғ' {
			return false
		}
	}

	hits := 0
	for _, indicator := range englishIndicators {
		if strings.Contains(text, indicator) {
			hits++
		}
	}
	return hits >= 3
}

var sectionKeywords = []struct {
	section  string
	keywords []string
}{
	{"strengths", []string{"strength", "сильная", "сильные", "қувва"}},
	{"improvements", []string{"improvement", "улучшение", "улучшения", "беҳтар"}},
	{"recommendations", []string{"recommendation", "рекомендация", "рекомендации", "тавсия"}},
}

// extractFeedbackManually recovers feedback from free-form model text when no
// JSON span decodes. It scans line by line, switching the active section when
// a line mentions a section keyword, and accumulates non-empty, non-brace
// lines into that section.
func extractFeedbackManually(content string) (FeedbackRecord, bool) {
	sections := map[string]*strings.Builder{
		"strengths":       {},
		"improvements":    {},
		"recommendations": {},
	}

	current := ""
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if section, ok := matchSection(lower); ok {
			current = section
			continue
		}

		if current == "" || strings.HasPrefix(line, "{") || strings.HasPrefix(line, "}") {
			continue
		}

		builder := sections[current]
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(line)
	}

	strengths := sections["strengths"].String()
	improvements := sections["improvements"].String()
	recommendations := sections["recommendations"].String()
	if strengths == "" && improvements == "" && recommendations == "" {
		return FeedbackRecord{}, false
	}

	return FeedbackRecord{
		TeachingQualityScore:    7.0,
		StudentEngagementScore:  6.5,
		OverallScore:            6.8,
		Strengths:               orPlaceholder(strengths),
		AreasForImprovement:     orPlaceholder(improvements),
		SpecificRecommendations: orPlaceholder(recommendations),
		Source:                  SourceManuallyExtracted,
	}, true
}

func matchSection(lower string) (string, bool) {
	for _, entry := range sectionKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.section, true
			}
		}
	}
	return "", false
}

func orPlaceholder(text string) string {
	if text == "" {
		return placeholderNarrative
	}
	return text
}
