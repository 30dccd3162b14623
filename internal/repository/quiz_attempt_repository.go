package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizAttemptRepository) Update(attempt *model.QuizAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *QuizAttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgress returns the open attempt for a (user, package) pair, of which
// there is at most one.
func (r *QuizAttemptRepository) FindInProgress(userID, packageID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.Where("user_id = ? AND package_id = ? AND status = ?",
		userID, packageID, model.AttemptInProgress).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *QuizAttemptRepository) ListByUser(userID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64
	query := r.DB.Model(&model.QuizAttempt{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("started_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *QuizAttemptRepository) CountByUserAndStatus(userID uint, status model.AttemptStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}
