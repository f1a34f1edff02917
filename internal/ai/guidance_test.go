package ai

import (
	"strings"
	"testing"

	"github.com/effectiveclass/classlens/internal/models"
)

func TestSubjectGuidance(t *testing.T) {
	tests := []struct {
		name     string
		subject  models.Subject
		language models.Language
		fragment string
	}{
		{"mathematics english", models.SubjectMathematics, models.LanguageEnglish, "mathematical concepts"},
		{"unknown subject falls back", models.SubjectMusic, models.LanguageEnglish, "general teaching effectiveness"},
		{"russian default", models.SubjectMusic, models.LanguageRussian, "эффективности преподавания"},
		{"unknown language falls back to english", models.SubjectMathematics, models.Language("de"), "mathematical concepts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubjectGuidance(tt.subject, "Quadratic equations", tt.language)
			if !strings.Contains(got, tt.fragment) {
				t.Errorf("SubjectGuidance missing %q in %q", tt.fragment, got)
			}
			if !strings.Contains(got, "Quadratic equations") {
				t.Errorf("Expected theme interpolated, got %q", got)
			}
		})
	}
}

func TestSubjectGuidanceCoversAllLanguages(t *testing.T) {
	for _, language := range []models.Language{models.LanguageEnglish, models.LanguageRussian, models.LanguageTajik} {
		if _, ok := defaultGuidance[language]; !ok {
			t.Errorf("Missing default guidance for %s", language)
		}
		if _, ok := subjectGuidance[language]; !ok {
			t.Errorf("Missing subject guidance for %s", language)
		}
	}
}
