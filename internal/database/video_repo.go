package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/effectiveclass/classlens/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Insert(video *models.VideoAnalysis) error {
	now := time.Now().UTC()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now
	if video.Status == "" {
		video.Status = models.StatusPending
	}

	if result := r.db.GORM().Create(video); result.Error != nil {
		return fmt.Errorf("failed to insert video: %w", result.Error)
	}
	return nil
}

func (r *VideoRepository) GetByID(id uint) (*models.VideoAnalysis, error) {
	var video models.VideoAnalysis
	result := r.db.GORM().First(&video, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", result.Error)
	}
	return &video, nil
}

// Save persists the full record and refreshes updated_at.
func (r *VideoRepository) Save(video *models.VideoAnalysis) error {
	video.UpdatedAt = time.Now().UTC()
	if result := r.db.GORM().Save(video); result.Error != nil {
		return fmt.Errorf("failed to save video: %w", result.Error)
	}
	return nil
}

func (r *VideoRepository) SetStatus(id uint, status models.Status) error {
	result := r.db.GORM().Model(&models.VideoAnalysis{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) List() ([]models.VideoAnalysis, error) {
	var videos []models.VideoAnalysis
	result := r.db.GORM().Order("created_at DESC").Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list videos: %w", result.Error)
	}
	return videos, nil
}

// Delete removes the video row; owned feedback rows go with it via the
// cascade, processing tasks stay behind.
func (r *VideoRepository) Delete(id uint) error {
	result := r.db.GORM().Select("AIFeedback").Delete(&models.VideoAnalysis{ID: id})
	if result.Error != nil {
		return fmt.Errorf("failed to delete video: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVideoNotFound
	}
	return nil
}
