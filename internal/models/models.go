package models

import (
	"time"

	"gorm.io/gorm"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
	LanguageTajik   Language = "tj"
)

func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageRussian, LanguageTajik:
		return true
	}
	return false
}

// Name returns the English name of the language, used in prompts.
func (l Language) Name() string {
	switch l {
	case LanguageRussian:
		return "Russian"
	case LanguageTajik:
		return "Tajik"
	default:
		return "English"
	}
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type Subject string

const (
	SubjectMathematics       Subject = "mathematics"
	SubjectPhysics           Subject = "physics"
	SubjectChemistry         Subject = "chemistry"
	SubjectBiology           Subject = "biology"
	SubjectHistory           Subject = "history"
	SubjectGeography         Subject = "geography"
	SubjectLiterature        Subject = "literature"
	SubjectLanguage          Subject = "language"
	SubjectComputerScience   Subject = "computer_science"
	SubjectArt               Subject = "art"
	SubjectMusic             Subject = "music"
	SubjectPhysicalEducation Subject = "physical_education"
	SubjectOther             Subject = "other"
)

var AllSubjects = []Subject{
	SubjectMathematics, SubjectPhysics, SubjectChemistry, SubjectBiology,
	SubjectHistory, SubjectGeography, SubjectLiterature, SubjectLanguage,
	SubjectComputerScience, SubjectArt, SubjectMusic,
	SubjectPhysicalEducation, SubjectOther,
}

func (s Subject) Valid() bool {
	for _, known := range AllSubjects {
		if s == known {
			return true
		}
	}
	return false
}

type TaskType string

const (
	TaskAudioExtraction TaskType = "audio_extraction"
	TaskTranscription   TaskType = "transcription"
	TaskVideoAnalysis   TaskType = "video_analysis"
	TaskAIFeedback      TaskType = "ai_feedback"
)

// VideoAnalysis is one submitted classroom video and everything the pipeline
// derives from it. Visual-analysis tracks are stored as JSON text columns so
// the same schema works on SQLite and PostgreSQL.
type VideoAnalysis struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	VideoFilename string   `gorm:"size:255;not null" json:"video_filename"`
	VideoPath     string   `gorm:"size:500;not null" json:"video_path"`
	Subject       Subject  `gorm:"size:100;not null" json:"subject"`
	Theme         string   `gorm:"size:200;not null" json:"theme"`
	Language      Language `gorm:"size:10;not null" json:"language"`

	Status    Status    `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Transcription string `gorm:"type:text" json:"transcription,omitempty"`
	AudioPath     string `gorm:"size:500" json:"audio_path,omitempty"`

	FaceDetectionData  string `gorm:"type:text" json:"-"`
	MotionAnalysisData string `gorm:"type:text" json:"-"`
	EngagementMetrics  string `gorm:"type:text" json:"-"`

	AIFeedback []AIFeedback `gorm:"foreignKey:VideoAnalysisID;constraint:OnDelete:CASCADE" json:"ai_feedback,omitempty"`
}

func (VideoAnalysis) TableName() string {
	return "video_analyses"
}

// BeforeSave keeps updated_at from ever preceding created_at.
func (v *VideoAnalysis) BeforeSave(tx *gorm.DB) error {
	if !v.CreatedAt.IsZero() && v.UpdatedAt.Before(v.CreatedAt) {
		v.UpdatedAt = v.CreatedAt
	}
	return nil
}

// AIFeedback is one generated feedback record per requested output language.
// Scores are clamped to [0,10] and narrative fields are never empty by the
// time a row is persisted.
type AIFeedback struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	VideoAnalysisID uint     `gorm:"not null;index" json:"video_analysis_id"`
	Language        Language `gorm:"size:10;not null" json:"language"`

	TeachingQualityScore   float64 `json:"teaching_quality_score"`
	StudentEngagementScore float64 `json:"student_engagement_score"`
	OverallScore           float64 `json:"overall_score"`

	Strengths               string `gorm:"type:text" json:"strengths"`
	AreasForImprovement     string `gorm:"type:text" json:"areas_for_improvement"`
	SpecificRecommendations string `gorm:"type:text" json:"specific_recommendations"`

	TechnicalAnalysis string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (AIFeedback) TableName() string {
	return "ai_feedbacks"
}

// ProcessingTask tracks one pipeline stage for one video. Rows reference the
// video by plain id with no FK constraint so they survive a deleted video for
// audit purposes.
type ProcessingTask struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	VideoAnalysisID uint       `gorm:"not null;index" json:"video_analysis_id"`
	TaskType        TaskType   `gorm:"size:50;not null" json:"task_type"`
	Status          Status     `gorm:"size:20;default:pending" json:"status"`
	Progress        float64    `gorm:"default:0" json:"progress"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func (ProcessingTask) TableName() string {
	return "processing_tasks"
}
