package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAnswerRepository struct {
	DB *gorm.DB
}

func NewQuizAnswerRepository(db *gorm.DB) *QuizAnswerRepository {
	return &QuizAnswerRepository{DB: db}
}

func (r *QuizAnswerRepository) Create(answer *model.QuizAnswer) error {
	return r.DB.Create(answer).Error
}

func (r *QuizAnswerRepository) ListByAttempt(attemptID uint) ([]model.QuizAnswer, error) {
	var answers []model.QuizAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Order("answered_at ASC, id ASC").Find(&answers).Error
	return answers, err
}

// CountCorrect is the authoritative score source at completion time.
func (r *QuizAnswerRepository) CountCorrect(attemptID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAnswer{}).
		Where("attempt_id = ? AND is_correct = ?", attemptID, true).
		Count(&count).Error
	return count, err
}
