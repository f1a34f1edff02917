package database

import (
	"fmt"
	"time"

	"github.com/effectiveclass/classlens/internal/models"
)

type FeedbackRepository struct {
	db *DB
}

func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Insert(feedback *models.AIFeedback) error {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	if result := r.db.GORM().Create(feedback); result.Error != nil {
		return fmt.Errorf("failed to insert feedback: %w", result.Error)
	}
	return nil
}

func (r *FeedbackRepository) GetByVideoID(videoID uint) ([]models.AIFeedback, error) {
	var feedbacks []models.AIFeedback
	result := r.db.GORM().
		Where("video_analysis_id = ?", videoID).
		Order("created_at").
		Find(&feedbacks)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", result.Error)
	}
	return feedbacks, nil
}
