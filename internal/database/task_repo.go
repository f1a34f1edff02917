package database

import (
	"fmt"
	"time"

	"github.com/effectiveclass/classlens/internal/models"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Start creates a running task row for one pipeline stage and returns it.
func (r *TaskRepository) Start(videoID uint, taskType models.TaskType) (*models.ProcessingTask, error) {
	now := time.Now().UTC()
	task := &models.ProcessingTask{
		VideoAnalysisID: videoID,
		TaskType:        taskType,
		Status:          models.StatusProcessing,
		StartedAt:       &now,
	}
	if result := r.db.GORM().Create(task); result.Error != nil {
		return nil, fmt.Errorf("failed to start task: %w", result.Error)
	}
	return task, nil
}

func (r *TaskRepository) Complete(task *models.ProcessingTask) error {
	now := time.Now().UTC()
	task.Status = models.StatusCompleted
	task.Progress = 1.0
	task.CompletedAt = &now
	if result := r.db.GORM().Save(task); result.Error != nil {
		return fmt.Errorf("failed to complete task: %w", result.Error)
	}
	return nil
}

func (r *TaskRepository) Fail(task *models.ProcessingTask, errMsg string) error {
	now := time.Now().UTC()
	task.Status = models.StatusFailed
	task.ErrorMessage = errMsg
	task.CompletedAt = &now
	if result := r.db.GORM().Save(task); result.Error != nil {
		return fmt.Errorf("failed to mark task failed: %w", result.Error)
	}
	return nil
}

func (r *TaskRepository) GetByVideoID(videoID uint) ([]models.ProcessingTask, error) {
	var tasks []models.ProcessingTask
	result := r.db.GORM().
		Where("video_analysis_id = ?", videoID).
		Order("id").
		Find(&tasks)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", result.Error)
	}
	return tasks, nil
}

// CurrentTask returns the most recent non-terminal task for a video, or nil.
func (r *TaskRepository) CurrentTask(videoID uint) (*models.ProcessingTask, error) {
	var task models.ProcessingTask
	result := r.db.GORM().
		Where("video_analysis_id = ? AND status = ?", videoID, models.StatusProcessing).
		Order("id DESC").
		Limit(1).
		Find(&task)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get current task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &task, nil
}
