package processing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/effectiveclass/classlens/internal/ai"
	"github.com/effectiveclass/classlens/internal/models"
	"github.com/effectiveclass/classlens/internal/transcribe"
	"github.com/effectiveclass/classlens/internal/vision"
)

// AudioExtractor yields a path to an extracted audio track, or "" when the
// video has no audio stream.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// VideoAnalyzer produces engagement and technical metrics from a video file.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, videoPath string) (*vision.AnalysisResult, error)
}

// FeedbackGenerator produces a feedback record. It always returns a usable
// record, degrading to a template when models are unavailable.
type FeedbackGenerator interface {
	Generate(ctx context.Context, subject models.Subject, theme, transcript string, language models.Language) ai.FeedbackRecord
}

// VideoStore is the slice of the video repository the pipeline needs.
type VideoStore interface {
	GetByID(id uint) (*models.VideoAnalysis, error)
	Save(video *models.VideoAnalysis) error
	SetStatus(id uint, status models.Status) error
}

// FeedbackStore persists generated feedback rows.
type FeedbackStore interface {
	Insert(feedback *models.AIFeedback) error
}

// TaskStore records per-stage progress.
type TaskStore interface {
	Start(videoID uint, taskType models.TaskType) (*models.ProcessingTask, error)
	Complete(task *models.ProcessingTask) error
	Fail(task *models.ProcessingTask, errMsg string) error
}

// Pipeline drives one video through audio extraction, transcription, visual
// analysis and feedback generation, recording progress as it goes.
type Pipeline struct {
	videos   VideoStore
	feedback FeedbackStore
	tasks    TaskStore

	audio       AudioExtractor
	transcriber transcribe.Transcriber
	analyzer    VideoAnalyzer
	generator   FeedbackGenerator

	locks *runLocks
}

func NewPipeline(
	videos VideoStore,
	feedback FeedbackStore,
	tasks TaskStore,
	audio AudioExtractor,
	transcriber transcribe.Transcriber,
	analyzer VideoAnalyzer,
	generator FeedbackGenerator,
) *Pipeline {
	return &Pipeline{
		videos:      videos,
		feedback:    feedback,
		tasks:       tasks,
		audio:       audio,
		transcriber: transcriber,
		analyzer:    analyzer,
		generator:   generator,
		locks:       newRunLocks(),
	}
}

// Run processes the video end to end, producing feedback in outputLanguage.
// An empty outputLanguage falls back to the video's instruction language. At
// most one run per video id is active at a time; a second concurrent call
// gets ErrRunInProgress. Audio and visual failures degrade the result, a
// transcription failure fails the run.
func (p *Pipeline) Run(ctx context.Context, videoID uint, outputLanguage models.Language) (err error) {
	if err := p.locks.acquire(videoID); err != nil {
		return err
	}
	defer p.locks.release(videoID)

	video, err := p.videos.GetByID(videoID)
	if err != nil {
		return fmt.Errorf("load video %d: %w", videoID, err)
	}
	if outputLanguage == "" {
		outputLanguage = video.Language
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[Pipeline] Panic while processing video %d: %v", videoID, r)
			p.markFailed(videoID)
			err = fmt.Errorf("processing video %d: panic: %v", videoID, r)
		}
	}()

	logrus.Infof("[Pipeline] Starting processing for video %d (%s)", videoID, video.VideoFilename)
	if err := p.videos.SetStatus(videoID, models.StatusProcessing); err != nil {
		p.markFailed(videoID)
		return fmt.Errorf("mark video %d processing: %w", videoID, err)
	}
	video.Status = models.StatusProcessing

	audioPath := p.extractAudio(ctx, video)

	transcript, err := p.runTranscription(ctx, video, audioPath)
	if err != nil {
		p.markFailed(videoID)
		return fmt.Errorf("transcribe video %d: %w", videoID, err)
	}

	technical := p.runVisualAnalysis(ctx, video)
	p.runFeedback(ctx, video, transcript, technical, outputLanguage)

	video.Status = models.StatusCompleted
	if err := p.videos.Save(video); err != nil {
		p.markFailed(videoID)
		return fmt.Errorf("save video %d: %w", videoID, err)
	}
	logrus.Infof("[Pipeline] Completed processing for video %d", videoID)
	return nil
}

// extractAudio is best effort. The extracted file is kept on disk next to the
// video so reruns and debugging can reuse it.
func (p *Pipeline) extractAudio(ctx context.Context, video *models.VideoAnalysis) string {
	task, _ := p.tasks.Start(video.ID, models.TaskAudioExtraction)

	audioPath, err := p.audio.Extract(ctx, video.VideoPath)
	if err != nil {
		logrus.Warnf("[Pipeline] Audio extraction failed for video %d: %v", video.ID, err)
		p.failTask(task, err)
		return ""
	}
	if audioPath == "" {
		logrus.Infof("[Pipeline] Video %d has no audio stream", video.ID)
	}
	video.AudioPath = audioPath
	if err := p.videos.Save(video); err != nil {
		logrus.Warnf("[Pipeline] Failed to record audio path for video %d: %v", video.ID, err)
	}
	p.completeTask(task)
	return audioPath
}

func (p *Pipeline) runTranscription(ctx context.Context, video *models.VideoAnalysis, audioPath string) (string, error) {
	task, _ := p.tasks.Start(video.ID, models.TaskTranscription)

	mediaPath := audioPath
	if mediaPath == "" {
		mediaPath = video.VideoPath
	}
	result, err := p.transcriber.Transcribe(ctx, mediaPath, video.Language)
	if err != nil {
		p.failTask(task, err)
		return "", err
	}

	// The transcript is committed before the remaining stages run; a failed
	// run keeps it.
	video.Transcription = result.Text
	if err := p.videos.Save(video); err != nil {
		logrus.Warnf("[Pipeline] Failed to record transcription for video %d: %v", video.ID, err)
	}
	p.completeTask(task)
	logrus.Infof("[Pipeline] Transcription for video %d: %d chars", video.ID, len(result.Text))
	return result.Text, nil
}

// runVisualAnalysis fills the JSON analysis columns on the video and returns
// the technical analysis as JSON for the feedback record. Failures leave
// everything empty.
func (p *Pipeline) runVisualAnalysis(ctx context.Context, video *models.VideoAnalysis) string {
	task, _ := p.tasks.Start(video.ID, models.TaskVideoAnalysis)

	result, err := p.analyzer.Analyze(ctx, video.VideoPath)
	if err != nil {
		logrus.Warnf("[Pipeline] Visual analysis failed for video %d: %v", video.ID, err)
		p.failTask(task, err)
		return ""
	}

	video.FaceDetectionData = marshalJSON(result.FaceDetectionData)
	video.MotionAnalysisData = marshalJSON(result.MotionAnalysisData)
	video.EngagementMetrics = marshalJSON(result.EngagementMetrics)
	p.completeTask(task)
	return marshalJSON(result.TechnicalAnalysis)
}

func (p *Pipeline) runFeedback(ctx context.Context, video *models.VideoAnalysis, transcript, technical string, language models.Language) {
	task, _ := p.tasks.Start(video.ID, models.TaskAIFeedback)

	record := p.generator.Generate(ctx, video.Subject, video.Theme, transcript, language)

	feedback := &models.AIFeedback{
		VideoAnalysisID:         video.ID,
		Language:                language,
		TeachingQualityScore:    record.TeachingQualityScore,
		StudentEngagementScore:  record.StudentEngagementScore,
		OverallScore:            record.OverallScore,
		Strengths:               record.Strengths,
		AreasForImprovement:     record.AreasForImprovement,
		SpecificRecommendations: record.SpecificRecommendations,
		TechnicalAnalysis:       technical,
	}
	if err := p.feedback.Insert(feedback); err != nil {
		logrus.Errorf("[Pipeline] Failed to save feedback for video %d: %v", video.ID, err)
		p.failTask(task, err)
		return
	}
	p.completeTask(task)
	logrus.Infof("[Pipeline] Feedback for video %d (source %s): quality=%.1f engagement=%.1f overall=%.1f",
		video.ID, record.Source, record.TeachingQualityScore, record.StudentEngagementScore, record.OverallScore)
}

func (p *Pipeline) markFailed(videoID uint) {
	if err := p.videos.SetStatus(videoID, models.StatusFailed); err != nil {
		logrus.Errorf("[Pipeline] Failed to mark video %d failed: %v", videoID, err)
	}
}

func (p *Pipeline) completeTask(task *models.ProcessingTask) {
	if task == nil {
		return
	}
	if err := p.tasks.Complete(task); err != nil {
		logrus.Warnf("[Pipeline] Failed to complete task %d: %v", task.ID, err)
	}
}

func (p *Pipeline) failTask(task *models.ProcessingTask, cause error) {
	if task == nil {
		return
	}
	if err := p.tasks.Fail(task, cause.Error()); err != nil {
		logrus.Warnf("[Pipeline] Failed to record task %d failure: %v", task.ID, err)
	}
}

func marshalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
