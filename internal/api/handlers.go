package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/effectiveclass/classlens/internal/database"
	"github.com/effectiveclass/classlens/internal/models"
	"github.com/effectiveclass/classlens/internal/processing"
	"github.com/effectiveclass/classlens/internal/storage"
)

// allowedVideoExts is the upload extension allow-list.
var allowedVideoExts = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// PipelineRunner processes one uploaded video end to end.
type PipelineRunner interface {
	Run(ctx context.Context, videoID uint, outputLanguage models.Language) error
}

type App struct {
	Storage       storage.Storage
	VideoRepo     *database.VideoRepository
	FeedbackRepo  *database.FeedbackRepository
	TaskRepo      *database.TaskRepository
	Pipeline      PipelineRunner
	MaxUploadSize int64
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	VideoID  uint   `json:"video_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// UploadHandler accepts a multipart video upload plus its lesson metadata and
// kicks off background processing.
func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Video file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedVideoExts[ext] {
		writeError(w, http.StatusBadRequest, "Unsupported video format")
		return
	}

	subject := models.Subject(r.FormValue("subject"))
	if !subject.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown subject")
		return
	}

	theme := strings.TrimSpace(r.FormValue("theme"))
	if theme == "" {
		writeError(w, http.StatusBadRequest, "Theme is required")
		return
	}

	language := models.Language(r.FormValue("language"))
	if language == "" {
		language = models.LanguageRussian
	}
	if !language.Valid() {
		writeError(w, http.StatusBadRequest, "Unsupported language")
		return
	}

	// feedback_language overrides the instruction language for the generated
	// feedback only.
	feedbackLanguage := models.Language(r.FormValue("feedback_language"))
	if feedbackLanguage == "" {
		feedbackLanguage = language
	}
	if !feedbackLanguage.Valid() {
		writeError(w, http.StatusBadRequest, "Unsupported feedback language")
		return
	}

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	video := &models.VideoAnalysis{
		VideoFilename: filename,
		VideoPath:     app.Storage.FilePath(filename),
		Subject:       subject,
		Theme:         theme,
		Language:      language,
	}
	if err := app.VideoRepo.Insert(video); err != nil {
		app.Storage.DeleteFile(filename)
		writeError(w, http.StatusInternalServerError, "Failed to save video information")
		return
	}

	go func(id uint, language models.Language) {
		if err := app.Pipeline.Run(context.Background(), id, language); err != nil {
			logrus.Errorf("[API] Background processing for video %d: %v", id, err)
		}
	}(video.ID, feedbackLanguage)

	writeJSON(w, http.StatusOK, uploadResponse{
		VideoID:  video.ID,
		Filename: filename,
		Status:   string(models.StatusPending),
		Message:  "Video uploaded, processing started",
	})
}

type statusResponse struct {
	VideoID  uint    `json:"video_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Task     string  `json:"current_task,omitempty"`
	Error    string  `json:"error,omitempty"`
}

func (app *App) StatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	video, err := app.VideoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load video")
		return
	}

	resp := statusResponse{
		VideoID:  video.ID,
		Status:   string(video.Status),
		Progress: statusProgress(video.Status),
	}
	if task, err := app.TaskRepo.CurrentTask(video.ID); err == nil && task != nil {
		resp.Task = string(task.TaskType)
	}
	if video.Status == models.StatusFailed {
		if tasks, err := app.TaskRepo.GetByVideoID(video.ID); err == nil {
			for _, t := range tasks {
				if t.ErrorMessage != "" {
					resp.Error = t.ErrorMessage
				}
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusProgress(status models.Status) float64 {
	switch status {
	case models.StatusProcessing:
		return 0.5
	case models.StatusCompleted:
		return 1.0
	default:
		return 0.0
	}
}

type feedbackResponse struct {
	VideoID       uint                `json:"video_id"`
	Status        string              `json:"status"`
	Subject       models.Subject      `json:"subject"`
	Theme         string              `json:"theme"`
	Language      models.Language     `json:"language"`
	Transcription string              `json:"transcription,omitempty"`
	Feedback      []models.AIFeedback `json:"feedback"`
}

func (app *App) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	video, err := app.VideoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load video")
		return
	}

	if video.Status != models.StatusCompleted {
		writeError(w, http.StatusConflict, "Processing not finished yet")
		return
	}

	feedback, err := app.FeedbackRepo.GetByVideoID(video.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load feedback")
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{
		VideoID:       video.ID,
		Status:        string(video.Status),
		Subject:       video.Subject,
		Theme:         video.Theme,
		Language:      video.Language,
		Transcription: video.Transcription,
		Feedback:      feedback,
	})
}

func videoIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid video id")
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var _ PipelineRunner = (*processing.Pipeline)(nil)
