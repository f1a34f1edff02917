package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/effectiveclass/classlens/internal/models"
)

const noSpeechFallback = "No clear speech detected in the video. This could be due to " +
	"background music, unclear audio, or no speech content."

// whisperLanguage maps application language codes to the codes the speech
// model expects. Tajik differs; the mapping is applied here and nowhere else.
var whisperLanguage = map[models.Language]string{
	models.LanguageEnglish: "en",
	models.LanguageRussian: "ru",
	models.LanguageTajik:   "tg",
}

// WhisperClient talks to an OpenAI-compatible whisper transcription server
// (verbose_json response format).
type WhisperClient struct {
	baseURL             string
	apiKey              string
	model               string
	confidenceThreshold float64
	httpClient          *http.Client
}

type WhisperConfig struct {
	BaseURL             string
	APIKey              string
	Model               string
	ConfidenceThreshold float64
}

func NewWhisperClient(config WhisperConfig) *WhisperClient {
	if config.Model == "" {
		config.Model = "base"
	}
	return &WhisperClient{
		baseURL:             strings.TrimRight(config.BaseURL, "/"),
		apiKey:              config.APIKey,
		model:               config.Model,
		confidenceThreshold: config.ConfidenceThreshold,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

type whisperResponse struct {
	Text                string    `json:"text"`
	Segments            []Segment `json:"segments"`
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
	Duration            float64   `json:"duration"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, mediaPath string, languageHint models.Language) (*Result, error) {
	file, err := os.Open(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(mediaPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy media file: %w", err)
	}

	writer.WriteField("model", c.model)
	writer.WriteField("response_format", "verbose_json")
	if lang, ok := whisperLanguage[languageHint]; ok {
		writer.WriteField("language", lang)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription server error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var whisperResp whisperResponse
	if err := json.Unmarshal(respBody, &whisperResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return c.assemble(&whisperResp, mediaPath), nil
}

// assemble drops low-confidence segments and concatenates the survivors,
// substituting the fixed no-speech sentence when nothing remains.
func (c *WhisperClient) assemble(resp *whisperResponse, mediaPath string) *Result {
	var text strings.Builder
	kept := make([]Segment, 0, len(resp.Segments))

	for _, segment := range resp.Segments {
		if segment.AvgLogprob <= c.confidenceThreshold {
			continue
		}
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(strings.TrimSpace(segment.Text))
		kept = append(kept, segment)
	}

	transcription := strings.TrimSpace(text.String())
	if transcription == "" {
		logrus.Warnf("[Transcribe] No speech detected in %s", mediaPath)
		transcription = noSpeechFallback
	} else {
		logrus.Infof("[Transcribe] Transcription completed, length: %d characters", len(transcription))
	}

	return &Result{
		Text:                transcription,
		Segments:            kept,
		Language:            resp.Language,
		LanguageProbability: resp.LanguageProbability,
		Duration:            resp.Duration,
	}
}
