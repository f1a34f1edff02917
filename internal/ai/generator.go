package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/effectiveclass/classlens/internal/models"
)

const (
	defaultPrimaryModel   = "meta-llama/llama-4-scout:free"
	defaultSecondaryModel = "mistralai/mistral-7b-instruct:free"

	// Transcript excerpt length embedded in the prompt.
	transcriptExcerptRunes = 800

	noSpeechMarker = "no clear speech"
)

// RetryPolicy bounds one model's retry loop. Rate-limited calls back off
// exponentially from BaseDelay with jitter; other failures wait a flat
// BaseDelay between attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type GeneratorConfig struct {
	APIKey         string
	PrimaryModel   string
	SecondaryModel string
	Primary        RetryPolicy
	Secondary      RetryPolicy
}

// Generator produces structured pedagogical feedback from an unreliable
// text-generation endpoint. Generate never fails: the degradation chain is
// primary model -> secondary model -> manual extraction -> template.
type Generator struct {
	client ChatClient
	config GeneratorConfig

	sleep  func(time.Duration)
	jitter func() float64
}

func NewGenerator(client ChatClient, config GeneratorConfig) *Generator {
	if config.PrimaryModel == "" {
		config.PrimaryModel = defaultPrimaryModel
	}
	if config.SecondaryModel == "" {
		config.SecondaryModel = defaultSecondaryModel
	}
	if config.Primary.MaxAttempts == 0 {
		config.Primary = RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
	}
	if config.Secondary.MaxAttempts == 0 {
		config.Secondary = RetryPolicy{MaxAttempts: 2, BaseDelay: 3 * time.Second}
	}

	return &Generator{
		client: client,
		config: config,
		sleep:  time.Sleep,
		jitter: rand.Float64,
	}
}

func (g *Generator) Generate(ctx context.Context, subject models.Subject, theme, transcript string, language models.Language) FeedbackRecord {
	if g.config.APIKey == "" || g.client == nil {
		logrus.Warnf("[Feedback] No API key configured, using template feedback for %s", language)
		return TemplateFeedback(language)
	}

	prompt := buildPrompt(subject, theme, transcript, language)

	content, ok := g.callWithRetry(ctx, g.config.PrimaryModel, g.config.Primary, ChatRequest{
		Model: g.config.PrimaryModel,
		Messages: []Message{
			{Role: "system", Content: primarySystemPrompt(language)},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   3000,
	})
	if ok {
		return ParseResponse(content, language)
	}

	logrus.Warnf("[Feedback] Primary model exhausted for %s, falling back to %s", language, g.config.SecondaryModel)

	content, ok = g.callWithRetry(ctx, g.config.SecondaryModel, g.config.Secondary, ChatRequest{
		Model: g.config.SecondaryModel,
		Messages: []Message{
			{Role: "system", Content: "You are an educational expert providing classroom feedback."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2500,
	})
	if ok {
		return ParseResponse(content, language)
	}

	logrus.Errorf("[Feedback] All models exhausted for %s, using template", language)
	return TemplateFeedback(language)
}

func (g *Generator) callWithRetry(ctx context.Context, model string, policy RetryPolicy, req ChatRequest) (string, bool) {
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		content, err := g.client.CreateCompletion(ctx, req)
		if err == nil {
			logrus.Infof("[Feedback] Generated feedback using %s", model)
			return content, true
		}

		last := attempt == policy.MaxAttempts-1

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			if last {
				logrus.Errorf("[Feedback] Rate limit exceeded for %s after %d attempts", model, policy.MaxAttempts)
				return "", false
			}
			delay := time.Duration(float64(policy.BaseDelay)*math.Pow(2, float64(attempt)) + g.jitter()*float64(time.Second))
			logrus.Warnf("[Feedback] Rate limited by %s, retrying in %s (attempt %d/%d)",
				model, delay.Round(100*time.Millisecond), attempt+1, policy.MaxAttempts)
			g.sleep(delay)
			continue
		}

		if last {
			logrus.Errorf("[Feedback] Error from %s after %d attempts: %v", model, policy.MaxAttempts, err)
			return "", false
		}
		logrus.Warnf("[Feedback] Error from %s, retrying (attempt %d/%d): %v", model, attempt+1, policy.MaxAttempts, err)
		g.sleep(policy.BaseDelay)
	}
	return "", false
}

func primarySystemPrompt(language models.Language) string {
	return fmt.Sprintf("You are an expert educational consultant with deep knowledge of teaching methodologies "+
		"and classroom dynamics. You MUST respond in %s language only. Provide detailed and comprehensive "+
		"feedback with specific examples and actionable recommendations.", language.Name())
}

func buildPrompt(subject models.Subject, theme, transcript string, language models.Language) string {
	var languageInstruction string
	switch language {
	case models.LanguageTajik:
		languageInstruction = "IMPORTANT: You MUST respond in Tajik language (тоҷикӣ) using Cyrillic script. " +
			"Do NOT respond in English or any other language. Use proper Tajik grammar and vocabulary.\n"
	case models.LanguageRussian:
		languageInstruction = "IMPORTANT: You MUST respond in Russian language (русский) using Cyrillic script. " +
			"Do NOT respond in English or any other language. Use proper Russian grammar and vocabulary.\n"
	}

	var transcriptInfo string
	if transcript == "" || strings.Contains(strings.ToLower(transcript), noSpeechMarker) {
		transcriptInfo = "Note: No clear speech was detected in the video. Please provide feedback based on " +
			"general teaching principles and the subject/theme information provided."
	} else {
		transcriptInfo = fmt.Sprintf("Transcription: %s...", truncateRunes(transcript, transcriptExcerptRunes))
	}

	guidance := SubjectGuidance(subject, theme, language)
	langName := language.Name()

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert educational consultant analyzing a classroom video.\n%s", languageInstruction)
	fmt.Fprintf(&b, "Please provide comprehensive, detailed feedback in %s language ONLY.\n\n", langName)
	fmt.Fprintf(&b, "SUBJECT: %s\nTHEME: %s\n%s\n\n%s\n\n", subject, theme, transcriptInfo, guidance)
	fmt.Fprintf(&b, "Please provide detailed feedback in the following JSON format, responding in %s language:\n", langName)
	fmt.Fprintf(&b, `{
    "teaching_quality_score": 0-10,
    "student_engagement_score": 0-10,
    "overall_score": 0-10,
    "strengths": "Provide 5-7 detailed strengths specific to %[1]s and %[2]s, with concrete observations from the video and the teaching techniques used.",
    "areas_for_improvement": "Provide 5-7 detailed areas for improvement specific to %[1]s and %[2]s, with concrete examples and why each improvement would help.",
    "specific_recommendations": "Provide 6-8 specific, actionable recommendations for improving teaching in %[1]s, with step-by-step strategies, activities, and assessment methods."
}`, subject, theme)
	fmt.Fprintf(&b, "\n\nREQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. Use the subject (%s) and theme (%s) extensively throughout your feedback.\n", subject, theme)
	fmt.Fprintf(&b, "2. Make the feedback specific to the subject area, not generic.\n")
	fmt.Fprintf(&b, "3. Respond ONLY in %s language, not in English.\n", langName)
	fmt.Fprintf(&b, "4. Use the transcription content to provide specific examples and observations.\n")
	fmt.Fprintf(&b, "5. Focus on practical advice with concrete implementation steps.\n")

	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
