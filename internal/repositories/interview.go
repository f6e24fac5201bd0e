package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/mock-interviewer/internal/models"
)

var ErrInterviewNotFound = errors.New("interview not found")

type InterviewRepository interface {
	Create(interview *models.Interview) error
	FindByID(id uuid.UUID) (*models.Interview, error)
	FindBySession(sessionID uuid.UUID) ([]models.Interview, error)
	UpdateIndexStatus(id uuid.UUID, status models.IndexStatus) error
	MarkIndexFailed(id uuid.UUID, errorMsg string) error
	FindPendingIndex(limit int) ([]models.Interview, error)
	FindPendingIndexExcluding(limit int, exclude []uuid.UUID) ([]models.Interview, error)
	ResetIndexStatus() (int64, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(interview *models.Interview) error {
	if err := r.db.Create(interview).Error; err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

func (r *interviewRepository) FindByID(id uuid.UUID) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.Where("id = ?", id).First(&interview).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}
	return &interview, nil
}

func (r *interviewRepository) FindBySession(sessionID uuid.UUID) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&interviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find interviews: %w", err)
	}
	return interviews, nil
}

func (r *interviewRepository) UpdateIndexStatus(id uuid.UUID, status models.IndexStatus) error {
	updates := map[string]interface{}{
		"index_status": status,
		"updated_at":   time.Now(),
	}
	if status == models.IndexIndexed {
		updates["index_error"] = nil
	}

	result := r.db.Model(&models.Interview{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update index status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}

	return nil
}

func (r *interviewRepository) MarkIndexFailed(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Interview{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"index_status": models.IndexFailed,
			"index_error":  errorMsg,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update index error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}

	return nil
}

func (r *interviewRepository) FindPendingIndex(limit int) ([]models.Interview, error) {
	return r.FindPendingIndexExcluding(limit, nil)
}

// FindPendingIndexExcluding returns the oldest pending interviews whose id is
// not in exclude.
func (r *interviewRepository) FindPendingIndexExcluding(limit int, exclude []uuid.UUID) ([]models.Interview, error) {
	query := r.db.
		Select("id", "session_id", "index_status", "created_at").
		Where("index_status = ?", models.IndexPending)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var interviews []models.Interview
	err := query.
		Order("created_at ASC").
		Limit(limit).
		Find(&interviews).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending interviews: %w", err)
	}

	return interviews, nil
}

// ResetIndexStatus moves failed and stuck interviews back to pending.
func (r *interviewRepository) ResetIndexStatus() (int64, error) {
	result := r.db.Model(&models.Interview{}).
		Where("index_status IN ?", []models.IndexStatus{models.IndexFailed, models.IndexProcessing}).
		Updates(map[string]interface{}{
			"index_status": models.IndexPending,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset index status: %w", result.Error)
	}

	return result.RowsAffected, nil
}
