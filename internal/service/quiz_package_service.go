package service

import (
	"errors"
	"fmt"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

type QuizPackageService struct {
	PackageRepo  *repository.QuizPackageRepository
	QuestionRepo *repository.QuizQuestionRepository
	DB           *gorm.DB
}

func NewQuizPackageService(packageRepo *repository.QuizPackageRepository, questionRepo *repository.QuizQuestionRepository, db *gorm.DB) *QuizPackageService {
	return &QuizPackageService{
		PackageRepo:  packageRepo,
		QuestionRepo: questionRepo,
		DB:           db,
	}
}

type QuizPackageRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type QuizQuestionRequest struct {
	QuestionText  string `json:"questionText" binding:"required"`
	OptionA       string `json:"optionA" binding:"required"`
	OptionB       string `json:"optionB" binding:"required"`
	OptionC       string `json:"optionC" binding:"required"`
	OptionD       string `json:"optionD" binding:"required"`
	OptionE       string `json:"optionE" binding:"required"`
	CorrectAnswer string `json:"correctAnswer" binding:"required,oneof=A B C D E"`
}

// PackageListItem augments a package with its question count and whether it
// has reached the attemptable size.
type PackageListItem struct {
	model.QuizPackage
	QuestionCount int64 `json:"questionCount"`
	Attemptable   bool  `json:"attemptable"`
}

func (s *QuizPackageService) CreatePackage(creatorID uint, req QuizPackageRequest) (*model.QuizPackage, error) {
	pkg := &model.QuizPackage{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   creatorID,
	}
	if err := s.PackageRepo.Create(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *QuizPackageService) UpdatePackage(packageID uint, req QuizPackageRequest) (*model.QuizPackage, error) {
	pkg, err := s.PackageRepo.FindByID(packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPackageNotFound
		}
		return nil, err
	}
	pkg.Title = req.Title
	pkg.Description = req.Description
	if err := s.PackageRepo.Update(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// DeletePackage removes a package and cascades to its questions, attempts and
// ledger entries.
func (s *QuizPackageService) DeletePackage(packageID uint) error {
	if _, err := s.PackageRepo.FindByID(packageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPackageNotFound
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var attemptIDs []uint
		if err := tx.Model(&model.QuizAttempt{}).
			Where("package_id = ?", packageID).
			Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}
		if len(attemptIDs) > 0 {
			if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&model.QuizAnswer{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("package_id = ?", packageID).Delete(&model.QuizAttempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("package_id = ?", packageID).Delete(&model.QuizQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuizPackage{}, packageID).Error
	})
}

func (s *QuizPackageService) GetPackage(packageID uint) (*PackageListItem, error) {
	pkg, err := s.PackageRepo.FindByID(packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPackageNotFound
		}
		return nil, err
	}
	count, err := s.QuestionRepo.CountByPackage(packageID)
	if err != nil {
		return nil, err
	}
	return &PackageListItem{
		QuizPackage:   *pkg,
		QuestionCount: count,
		Attemptable:   count == util.RequiredQuestionCount,
	}, nil
}

func (s *QuizPackageService) ListPackages(page, limit int) ([]PackageListItem, int64, error) {
	pkgs, total, err := s.PackageRepo.List(page, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PackageListItem, 0, len(pkgs))
	for _, pkg := range pkgs {
		count, err := s.QuestionRepo.CountByPackage(pkg.ID)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, PackageListItem{
			QuizPackage:   pkg,
			QuestionCount: count,
			Attemptable:   count == util.RequiredQuestionCount,
		})
	}
	return items, total, nil
}

// AddQuestion appends a question at the end of the package's dense order.
func (s *QuizPackageService) AddQuestion(packageID uint, req QuizQuestionRequest) (*model.QuizQuestion, error) {
	if _, err := s.PackageRepo.FindByID(packageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPackageNotFound
		}
		return nil, err
	}
	if !util.IsAnswerOption(req.CorrectAnswer) {
		return nil, fmt.Errorf("%w: correct answer must be one of A-E", util.ErrInvalidState)
	}

	var question *model.QuizQuestion
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.QuizQuestion{}).Where("package_id = ?", packageID).Count(&count).Error; err != nil {
			return err
		}
		question = &model.QuizQuestion{
			PackageID:     packageID,
			QuestionText:  req.QuestionText,
			OptionA:       req.OptionA,
			OptionB:       req.OptionB,
			OptionC:       req.OptionC,
			OptionD:       req.OptionD,
			OptionE:       req.OptionE,
			CorrectAnswer: req.CorrectAnswer,
			OrderIndex:    int(count),
		}
		return tx.Create(question).Error
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

// UpdateQuestion edits texts and the answer key; order is not affected.
func (s *QuizPackageService) UpdateQuestion(packageID, questionID uint, req QuizQuestionRequest) (*model.QuizQuestion, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	if question.PackageID != packageID {
		return nil, util.ErrQuestionNotFound
	}
	if !util.IsAnswerOption(req.CorrectAnswer) {
		return nil, fmt.Errorf("%w: correct answer must be one of A-E", util.ErrInvalidState)
	}

	question.QuestionText = req.QuestionText
	question.OptionA = req.OptionA
	question.OptionB = req.OptionB
	question.OptionC = req.OptionC
	question.OptionD = req.OptionD
	question.OptionE = req.OptionE
	question.CorrectAnswer = req.CorrectAnswer
	if err := s.QuestionRepo.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion removes a question, cascades its ledger entries and shifts
// every later question's order_index down by one so the range stays dense and
// zero-based.
func (s *QuizPackageService) DeleteQuestion(packageID, questionID uint) error {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}
	if question.PackageID != packageID {
		return util.ErrQuestionNotFound
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.QuizAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.QuizQuestion{}, questionID).Error; err != nil {
			return err
		}
		return tx.Model(&model.QuizQuestion{}).
			Where("package_id = ? AND order_index > ?", packageID, question.OrderIndex).
			Update("order_index", gorm.Expr("order_index - 1")).Error
	})
}

func (s *QuizPackageService) ListQuestions(packageID uint) ([]model.QuizQuestion, error) {
	if _, err := s.PackageRepo.FindByID(packageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPackageNotFound
		}
		return nil, err
	}
	return s.QuestionRepo.ListByPackage(packageID)
}
