package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/effectiveclass/classlens/internal/models"
)

type scriptedClient struct {
	responses []scriptedResponse
	calls     int
	models    []string
}

type scriptedResponse struct {
	content string
	err     error
}

func (c *scriptedClient) CreateCompletion(ctx context.Context, req ChatRequest) (string, error) {
	c.models = append(c.models, req.Model)
	if c.calls >= len(c.responses) {
		return "", errors.New("no scripted response left")
	}
	resp := c.responses[c.calls]
	c.calls++
	return resp.content, resp.err
}

func newTestGenerator(client ChatClient) (*Generator, *[]time.Duration) {
	gen := NewGenerator(client, GeneratorConfig{
		APIKey:    "test-key",
		Primary:   RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second},
		Secondary: RetryPolicy{MaxAttempts: 2, BaseDelay: 3 * time.Second},
	})

	var slept []time.Duration
	gen.sleep = func(d time.Duration) { slept = append(slept, d) }
	gen.jitter = func() float64 { return 0.5 }
	return gen, &slept
}

const validAnswer = `{
  "teaching_quality_score": 8,
  "student_engagement_score": 7,
  "overall_score": 8,
  "strengths": "Четкая структура урока.",
  "areas_for_improvement": "Мало групповой работы.",
  "specific_recommendations": "Добавьте обсуждения в парах."
}`

func TestGenerateWithoutAPIKey(t *testing.T) {
	gen := NewGenerator(&scriptedClient{}, GeneratorConfig{})

	record := gen.Generate(context.Background(), models.SubjectMathematics, "Fractions", "transcript", models.LanguageRussian)

	if record.Source != SourceTemplate {
		t.Fatalf("expected template without credentials, got %s", record.Source)
	}
	if record != TemplateFeedback(models.LanguageRussian) {
		t.Error("expected the exact Russian template record")
	}
}

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	client := &scriptedClient{responses: []scriptedResponse{{content: validAnswer}}}
	gen, slept := newTestGenerator(client)

	record := gen.Generate(context.Background(), models.SubjectPhysics, "Optics", "transcript", models.LanguageRussian)

	if record.Source != SourceGenerated {
		t.Fatalf("expected generated feedback, got %s", record.Source)
	}
	if record.TeachingQualityScore != 8 {
		t.Errorf("expected quality 8, got %v", record.TeachingQualityScore)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 call, got %d", client.calls)
	}
	if len(*slept) != 0 {
		t.Errorf("expected no sleeps, got %v", *slept)
	}
}

func TestGenerateRateLimitBackoff(t *testing.T) {
	rateLimited := &APIError{StatusCode: http.StatusTooManyRequests, Message: "rate limited"}
	client := &scriptedClient{responses: []scriptedResponse{
		{err: rateLimited},
		{err: rateLimited},
		{content: validAnswer},
	}}
	gen, slept := newTestGenerator(client)

	record := gen.Generate(context.Background(), models.SubjectHistory, "WWII", "transcript", models.LanguageRussian)

	if record.Source != SourceGenerated {
		t.Fatalf("expected generated feedback after retries, got %s", record.Source)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", client.calls)
	}
	if len(*slept) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(*slept))
	}
	// base 2s with jitter fixed at 0.5s: 2.5s then 4.5s.
	if (*slept)[0] != 2500*time.Millisecond {
		t.Errorf("expected first delay 2.5s, got %s", (*slept)[0])
	}
	if (*slept)[1] != 4500*time.Millisecond {
		t.Errorf("expected second delay 4.5s, got %s", (*slept)[1])
	}
	if (*slept)[1] <= (*slept)[0] {
		t.Error("expected strictly increasing backoff")
	}
}

func TestGenerateFallsBackToSecondaryModel(t *testing.T) {
	rateLimited := &APIError{StatusCode: http.StatusTooManyRequests, Message: "rate limited"}
	client := &scriptedClient{responses: []scriptedResponse{
		{err: rateLimited},
		{err: rateLimited},
		{err: rateLimited},
		{content: validAnswer},
	}}
	gen, _ := newTestGenerator(client)

	record := gen.Generate(context.Background(), models.SubjectBiology, "Cells", "transcript", models.LanguageRussian)

	if record.Source != SourceGenerated {
		t.Fatalf("expected generated feedback from secondary, got %s", record.Source)
	}
	if client.calls != 4 {
		t.Fatalf("expected 4 calls, got %d", client.calls)
	}
	for i := 0; i < 3; i++ {
		if client.models[i] != defaultPrimaryModel {
			t.Errorf("call %d expected primary model, got %s", i, client.models[i])
		}
	}
	if client.models[3] != defaultSecondaryModel {
		t.Errorf("expected secondary model on final call, got %s", client.models[3])
	}
}

func TestGenerateBothModelsExhausted(t *testing.T) {
	serverErr := &APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	client := &scriptedClient{responses: []scriptedResponse{
		{err: serverErr},
		{err: serverErr},
		{err: serverErr},
		{err: serverErr},
		{err: serverErr},
	}}
	gen, slept := newTestGenerator(client)

	record := gen.Generate(context.Background(), models.SubjectChemistry, "Acids", "transcript", models.LanguageTajik)

	if record.Source != SourceTemplate {
		t.Fatalf("expected template after exhaustion, got %s", record.Source)
	}
	if record != TemplateFeedback(models.LanguageTajik) {
		t.Error("expected the Tajik template record")
	}
	if client.calls != 5 {
		t.Fatalf("expected 3 primary + 2 secondary calls, got %d", client.calls)
	}
	// Non-rate-limit errors wait a flat base delay between attempts.
	want := []time.Duration{2 * time.Second, 2 * time.Second, 3 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %d", len(want), len(*slept))
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep %d: expected %s, got %s", i, d, (*slept)[i])
		}
	}
}

func TestBuildPromptLanguageInstruction(t *testing.T) {
	tests := []struct {
		language models.Language
		fragment string
	}{
		{models.LanguageRussian, "MUST respond in Russian language"},
		{models.LanguageTajik, "MUST respond in Tajik language"},
	}

	for _, tt := range tests {
		prompt := buildPrompt(models.SubjectMathematics, "Algebra", "short transcript", tt.language)
		if !strings.Contains(prompt, tt.fragment) {
			t.Errorf("%s prompt missing %q", tt.language, tt.fragment)
		}
	}

	english := buildPrompt(models.SubjectMathematics, "Algebra", "short transcript", models.LanguageEnglish)
	if strings.Contains(english, "MUST respond in Russian") || strings.Contains(english, "MUST respond in Tajik") {
		t.Error("English prompt should carry no Cyrillic instruction")
	}
}

func TestBuildPromptNoSpeech(t *testing.T) {
	prompt := buildPrompt(models.SubjectMusic, "Rhythm", "", models.LanguageEnglish)
	if !strings.Contains(prompt, "No clear speech was detected") {
		t.Error("expected no-speech note for empty transcript")
	}

	prompt = buildPrompt(models.SubjectMusic, "Rhythm", "The video contains no clear speech.", models.LanguageEnglish)
	if !strings.Contains(prompt, "No clear speech was detected") {
		t.Error("expected no-speech note for marker transcript")
	}
}

func TestTruncateRunes(t *testing.T) {
	long := make([]rune, 0, 1000)
	for i := 0; i < 1000; i++ {
		long = append(long, 'я')
	}
	got := truncateRunes(string(long), transcriptExcerptRunes)
	if len([]rune(got)) != transcriptExcerptRunes {
		t.Errorf("expected %d runes, got %d", transcriptExcerptRunes, len([]rune(got)))
	}

	if truncateRunes("short", transcriptExcerptRunes) != "short" {
		t.Error("expected short strings unchanged")
	}
}
