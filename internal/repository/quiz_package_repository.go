package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizPackageRepository struct {
	DB *gorm.DB
}

func NewQuizPackageRepository(db *gorm.DB) *QuizPackageRepository {
	return &QuizPackageRepository{DB: db}
}

func (r *QuizPackageRepository) Create(pkg *model.QuizPackage) error {
	return r.DB.Create(pkg).Error
}

func (r *QuizPackageRepository) FindByID(id uint) (*model.QuizPackage, error) {
	var pkg model.QuizPackage
	if err := r.DB.First(&pkg, id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *QuizPackageRepository) Update(pkg *model.QuizPackage) error {
	return r.DB.Save(pkg).Error
}

func (r *QuizPackageRepository) List(page, limit int) ([]model.QuizPackage, int64, error) {
	var pkgs []model.QuizPackage
	var total int64
	if err := r.DB.Model(&model.QuizPackage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&pkgs).Error
	return pkgs, total, err
}
