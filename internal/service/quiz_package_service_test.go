package service

import (
	"errors"
	"testing"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

func newPackageService(t *testing.T) (*QuizPackageService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewQuizPackageService(
		repository.NewQuizPackageRepository(db),
		repository.NewQuizQuestionRepository(db),
		db,
	)
	return svc, db
}

func questionRequest(text, correct string) QuizQuestionRequest {
	return QuizQuestionRequest{
		QuestionText:  text,
		OptionA:       "alpha",
		OptionB:       "bravo",
		OptionC:       "charlie",
		OptionD:       "delta",
		OptionE:       "echo",
		CorrectAnswer: correct,
	}
}

func TestAddQuestionAppendsAtEnd(t *testing.T) {
	svc, _ := newPackageService(t)

	pkg, err := svc.CreatePackage(1, QuizPackageRequest{Title: "Networking"})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}

	for i, text := range []string{"q1", "q2", "q3"} {
		q, err := svc.AddQuestion(pkg.ID, questionRequest(text, "B"))
		if err != nil {
			t.Fatalf("add question %d: %v", i, err)
		}
		if q.OrderIndex != i {
			t.Fatalf("question %q expected order %d, got %d", text, i, q.OrderIndex)
		}
	}
}

func TestAddQuestionUnknownPackage(t *testing.T) {
	svc, _ := newPackageService(t)

	_, err := svc.AddQuestion(42, questionRequest("q", "A"))
	if !errors.Is(err, util.ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestDeleteQuestionRenumbers(t *testing.T) {
	svc, _ := newPackageService(t)

	pkg, err := svc.CreatePackage(1, QuizPackageRequest{Title: "Databases"})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}

	texts := []string{"q1", "q2", "q3", "q4"}
	created := make([]*model.QuizQuestion, 0, len(texts))
	for _, text := range texts {
		q, err := svc.AddQuestion(pkg.ID, questionRequest(text, "A"))
		if err != nil {
			t.Fatalf("add %q: %v", text, err)
		}
		created = append(created, q)
	}

	if err := svc.DeleteQuestion(pkg.ID, created[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := svc.ListQuestions(pkg.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(remaining))
	}
	wantTexts := []string{"q1", "q3", "q4"}
	for i, q := range remaining {
		if q.OrderIndex != i {
			t.Fatalf("order must stay dense and zero-based, position %d has index %d", i, q.OrderIndex)
		}
		if q.QuestionText != wantTexts[i] {
			t.Fatalf("position %d expected %q, got %q", i, wantTexts[i], q.QuestionText)
		}
	}
}

func TestDeleteQuestionWrongPackage(t *testing.T) {
	svc, _ := newPackageService(t)

	pkgA, _ := svc.CreatePackage(1, QuizPackageRequest{Title: "A"})
	pkgB, _ := svc.CreatePackage(1, QuizPackageRequest{Title: "B"})
	q, err := svc.AddQuestion(pkgA.ID, questionRequest("q", "A"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.DeleteQuestion(pkgB.ID, q.ID); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestUpdateQuestion(t *testing.T) {
	svc, _ := newPackageService(t)

	pkg, _ := svc.CreatePackage(1, QuizPackageRequest{Title: "OS"})
	q, err := svc.AddQuestion(pkg.ID, questionRequest("old", "A"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := svc.UpdateQuestion(pkg.ID, q.ID, questionRequest("new", "E"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.QuestionText != "new" || updated.CorrectAnswer != "E" {
		t.Fatalf("unexpected question after update: %+v", updated)
	}
	if updated.OrderIndex != q.OrderIndex {
		t.Fatal("editing a question must not move it")
	}
}

func TestDeletePackageCascades(t *testing.T) {
	svc, db := newPackageService(t)

	pkg, _ := svc.CreatePackage(1, QuizPackageRequest{Title: "Cascade"})
	q, err := svc.AddQuestion(pkg.ID, questionRequest("q", "A"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	attempt := model.QuizAttempt{UserID: 1, PackageID: pkg.ID, Status: model.AttemptCompleted, TotalQuestions: 1}
	if err := db.Create(&attempt).Error; err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	answer := model.QuizAnswer{AttemptID: attempt.ID, QuestionID: q.ID, SelectedAnswer: "A", IsCorrect: true}
	if err := db.Create(&answer).Error; err != nil {
		t.Fatalf("create answer: %v", err)
	}

	if err := svc.DeletePackage(pkg.ID); err != nil {
		t.Fatalf("delete package: %v", err)
	}

	for name, m := range map[string]interface{}{
		"packages":  &model.QuizPackage{},
		"questions": &model.QuizQuestion{},
		"attempts":  &model.QuizAttempt{},
		"answers":   &model.QuizAnswer{},
	} {
		var count int64
		if err := db.Model(m).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Fatalf("expected no %s left, got %d", name, count)
		}
	}
}

func TestGetPackageAttemptable(t *testing.T) {
	svc, _ := newPackageService(t)

	pkg, _ := svc.CreatePackage(1, QuizPackageRequest{Title: "Partial"})
	if _, err := svc.AddQuestion(pkg.ID, questionRequest("q", "A")); err != nil {
		t.Fatalf("add: %v", err)
	}

	item, err := svc.GetPackage(pkg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item.QuestionCount != 1 {
		t.Fatalf("expected count 1, got %d", item.QuestionCount)
	}
	if item.Attemptable {
		t.Fatal("a partial package must not be attemptable")
	}
}
