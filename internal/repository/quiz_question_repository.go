package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizQuestionRepository struct {
	DB *gorm.DB
}

func NewQuizQuestionRepository(db *gorm.DB) *QuizQuestionRepository {
	return &QuizQuestionRepository{DB: db}
}

func (r *QuizQuestionRepository) Create(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuizQuestionRepository) FindByID(id uint) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizQuestionRepository) Update(q *model.QuizQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuizQuestionRepository) CountByPackage(packageID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizQuestion{}).Where("package_id = ?", packageID).Count(&count).Error
	return count, err
}

// FindByPackageAndOrder resolves the question sitting at a given position in
// the package's dense order.
func (r *QuizQuestionRepository) FindByPackageAndOrder(packageID uint, orderIndex int) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	err := r.DB.Where("package_id = ? AND order_index = ?", packageID, orderIndex).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizQuestionRepository) ListByPackage(packageID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("package_id = ?", packageID).Order("order_index ASC").Find(&questions).Error
	return questions, err
}

func (r *QuizQuestionRepository) FindByIDs(ids []uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}
