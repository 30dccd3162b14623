package service

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedPackage(t *testing.T, db *gorm.DB, questionCount int) (*model.QuizPackage, []model.QuizQuestion) {
	t.Helper()
	pkg := &model.QuizPackage{Title: "Go Fundamentals", Description: "basics", CreatedBy: 1}
	if err := db.Create(pkg).Error; err != nil {
		t.Fatalf("create package: %v", err)
	}
	questions := make([]model.QuizQuestion, 0, questionCount)
	for i := 0; i < questionCount; i++ {
		q := model.QuizQuestion{
			PackageID:     pkg.ID,
			QuestionText:  fmt.Sprintf("Question %d", i+1),
			OptionA:       "alpha",
			OptionB:       "bravo",
			OptionC:       "charlie",
			OptionD:       "delta",
			OptionE:       "echo",
			CorrectAnswer: "A",
			OrderIndex:    i,
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("create question %d: %v", i, err)
		}
		questions = append(questions, q)
	}
	return pkg, questions
}

// newAttemptEnv builds an AttemptService over an in-memory database with a
// package of the given size, and lowers the required question count to match
// so short runs are expressible.
func newAttemptEnv(t *testing.T, questionCount int) (*AttemptService, *gorm.DB, *model.QuizPackage, []model.QuizQuestion) {
	t.Helper()
	db := newTestDB(t)
	pkg, questions := seedPackage(t, db, questionCount)

	svc := NewAttemptService(
		repository.NewQuizAttemptRepository(db),
		repository.NewQuizAnswerRepository(db),
		repository.NewQuizQuestionRepository(db),
		repository.NewQuizPackageRepository(db),
		nil,
		db,
	)
	svc.RequiredQuestions = questionCount
	return svc, db, pkg, questions
}

func backdateAttempt(t *testing.T, db *gorm.DB, attemptID uint, by time.Duration) {
	t.Helper()
	err := db.Model(&model.QuizAttempt{}).
		Where("id = ?", attemptID).
		Update("started_at", time.Now().Add(-by)).Error
	if err != nil {
		t.Fatalf("backdate attempt: %v", err)
	}
}

func TestStartAttemptUnknownPackage(t *testing.T) {
	svc, _, _, _ := newAttemptEnv(t, 2)

	_, err := svc.StartAttempt(1, 9999)
	if !errors.Is(err, util.ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestStartAttemptRequiresFullPackage(t *testing.T) {
	svc, _, pkg, _ := newAttemptEnv(t, 50)
	svc.RequiredQuestions = util.RequiredQuestionCount

	_, err := svc.StartAttempt(1, pkg.ID)
	if !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if !strings.Contains(err.Error(), "50") {
		t.Fatalf("error should report the actual question count, got %q", err.Error())
	}
}

func TestStartAttemptResumesOpenAttempt(t *testing.T) {
	svc, _, pkg, questions := newAttemptEnv(t, 3)

	first, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.SubmitAnswer(first.AttemptID, questions[0].ID, "A", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	second, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.AttemptID != first.AttemptID {
		t.Fatalf("expected resumed attempt %d, got %d", first.AttemptID, second.AttemptID)
	}
	if second.CurrentQuestionIndex != 1 {
		t.Fatalf("resume must not rewind the pointer, got index %d", second.CurrentQuestionIndex)
	}
	if second.CurrentQuestion == nil || second.CurrentQuestion.ID != questions[1].ID {
		t.Fatalf("resume should serve the second question")
	}

	var count int64
	if err := svc.DB.Model(&model.QuizAttempt{}).Where("user_id = ? AND package_id = ?", 1, pkg.ID).Count(&count).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single attempt row, got %d", count)
	}
}

func TestStartAttemptSeparatePerUser(t *testing.T) {
	svc, _, pkg, _ := newAttemptEnv(t, 2)

	a, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start user 1: %v", err)
	}
	b, err := svc.StartAttempt(2, pkg.ID)
	if err != nil {
		t.Fatalf("start user 2: %v", err)
	}
	if a.AttemptID == b.AttemptID {
		t.Fatal("different users must get different attempts")
	}
}

func TestSubmitAnswerRejectsInvalidOption(t *testing.T) {
	svc, _, pkg, questions := newAttemptEnv(t, 2)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "F", 1)
	if !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for option F, got %v", err)
	}
}

func TestSubmitAnswerRejectsWrongQuestion(t *testing.T) {
	svc, _, pkg, questions := newAttemptEnv(t, 3)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// out of order
	_, err = svc.SubmitAnswer(snap.AttemptID, questions[2].ID, "A", 1)
	if !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	// duplicate of an already-answered position
	if _, err := svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "A", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err = svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "B", 1)
	if !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on duplicate, got %v", err)
	}

	current, err := svc.GetSnapshot(snap.AttemptID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if current.CurrentQuestionIndex != 1 {
		t.Fatalf("rejected submissions must not move the pointer, got %d", current.CurrentQuestionIndex)
	}
}

func TestSubmitAnswerForeignAttempt(t *testing.T) {
	svc, _, pkg, questions := newAttemptEnv(t, 2)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "A", 2)
	if !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("foreign attempt must look missing, got %v", err)
	}

	_, err = svc.SubmitAnswer(snap.AttemptID+100, questions[0].ID, "A", 1)
	if !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("unknown attempt must look missing, got %v", err)
	}
}

func TestFullAttemptFlow(t *testing.T) {
	svc, _, pkg, questions := newAttemptEnv(t, 2)

	snap, err := svc.StartAttempt(7, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Status != model.AttemptInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", snap.Status)
	}
	if snap.TotalQuestions != 2 || snap.CurrentQuestionIndex != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
	if snap.TimeRemainingSeconds <= 0 || snap.TimeRemainingSeconds > svc.TimeBudgetSeconds {
		t.Fatalf("unexpected time remaining %d", snap.TimeRemainingSeconds)
	}

	mid, err := svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "A", 7)
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if mid.Status != model.AttemptInProgress || mid.CurrentQuestionIndex != 1 {
		t.Fatalf("unexpected mid snapshot: %+v", mid)
	}

	final, err := svc.SubmitAnswer(snap.AttemptID, questions[1].ID, "B", 7)
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if final.Status != model.AttemptCompleted {
		t.Fatalf("last answer must complete the attempt, got %s", final.Status)
	}
	if final.CurrentQuestion != nil {
		t.Fatal("a finished attempt must not carry a question")
	}

	// terminal attempts have no live snapshot
	gone, err := svc.GetSnapshot(snap.AttemptID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if gone != nil {
		t.Fatal("expected nil snapshot for a completed attempt")
	}

	result, err := svc.GetResult(snap.AttemptID, 7)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result for the owner")
	}
	if result.Score != 1 || result.CorrectAnswers != 1 || result.IncorrectAnswers != 1 {
		t.Fatalf("unexpected scoring: %+v", result)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(result.Answers))
	}
	if result.Answers[0].CorrectAnswer != "A" || !result.Answers[0].IsCorrect {
		t.Fatalf("first review entry wrong: %+v", result.Answers[0])
	}
	if result.Answers[1].SelectedAnswer != "B" || result.Answers[1].IsCorrect {
		t.Fatalf("second review entry wrong: %+v", result.Answers[1])
	}

	// results are private to the owner
	foreign, err := svc.GetResult(snap.AttemptID, 8)
	if err != nil {
		t.Fatalf("foreign result: %v", err)
	}
	if foreign != nil {
		t.Fatal("foreign users must not see results")
	}
}

func TestSnapshotTimesOutExpiredAttempt(t *testing.T) {
	svc, db, pkg, questions := newAttemptEnv(t, 2)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	backdateAttempt(t, db, snap.AttemptID, 3*time.Hour)

	got, err := svc.GetSnapshot(snap.AttemptID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil snapshot for an expired attempt")
	}

	var attempt model.QuizAttempt
	if err := db.First(&attempt, snap.AttemptID).Error; err != nil {
		t.Fatalf("reload attempt: %v", err)
	}
	if attempt.Status != model.AttemptTimedOut {
		t.Fatalf("expected TIME_OUT, got %s", attempt.Status)
	}
	if attempt.TimeRemainingSeconds != 0 {
		t.Fatalf("expected zero remaining, got %d", attempt.TimeRemainingSeconds)
	}
	if attempt.CompletedAt == nil {
		t.Fatal("timing out must stamp completed_at")
	}

	// a timed-out attempt accepts no further answers and serves no result
	if _, err := svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "A", 1); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound after timeout, got %v", err)
	}
	result, err := svc.GetResult(snap.AttemptID, 1)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result != nil {
		t.Fatal("timed-out attempts have no result view")
	}
}

func TestSubmitAnswerTimesOutOnExpiredBudget(t *testing.T) {
	svc, db, pkg, questions := newAttemptEnv(t, 3)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	backdateAttempt(t, db, snap.AttemptID, 3*time.Hour)

	got, err := svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "A", 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Status != model.AttemptTimedOut {
		t.Fatalf("expected TIME_OUT on an exhausted budget, got %s", got.Status)
	}
	if got.TimeRemainingSeconds != 0 {
		t.Fatalf("expected zero remaining, got %d", got.TimeRemainingSeconds)
	}
}

func TestCompleteAttemptRecountsFromLedger(t *testing.T) {
	svc, db, pkg, questions := newAttemptEnv(t, 3)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "A", 1); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if _, err := svc.SubmitAnswer(snap.AttemptID, questions[1].ID, "C", 1); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	// drift the running counter; completion must not trust it
	if err := db.Model(&model.QuizAttempt{}).Where("id = ?", snap.AttemptID).Update("score", 99).Error; err != nil {
		t.Fatalf("tamper score: %v", err)
	}

	result, err := svc.CompleteAttempt(snap.AttemptID, 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("score must be recounted from the ledger, got %d", result.Score)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(result.Answers))
	}

	// completing again is a no-op returning the same outcome
	again, err := svc.CompleteAttempt(snap.AttemptID, 1)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if again.Score != result.Score || again.CompletedAt == nil || again.CompletedAt.Unix() != result.CompletedAt.Unix() {
		t.Fatalf("repeat completion must change nothing: %+v vs %+v", again, result)
	}
}

func TestCompleteAttemptForeignUser(t *testing.T) {
	svc, _, pkg, _ := newAttemptEnv(t, 2)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = svc.CompleteAttempt(snap.AttemptID, 2)
	if !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("foreign completion must look missing, got %v", err)
	}
}

func TestListUserAttempts(t *testing.T) {
	svc, _, pkg, questions := newAttemptEnv(t, 2)

	snap, err := svc.StartAttempt(1, pkg.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(snap.AttemptID, questions[0].ID, "A", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.SubmitAnswer(snap.AttemptID, questions[1].ID, "A", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	items, total, err := svc.ListUserAttempts(1, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one attempt, got total=%d len=%d", total, len(items))
	}
	if items[0].PackageTitle != pkg.Title {
		t.Fatalf("expected title %q, got %q", pkg.Title, items[0].PackageTitle)
	}
	if items[0].Status != model.AttemptCompleted || items[0].Score != 2 {
		t.Fatalf("unexpected history entry: %+v", items[0])
	}

	other, total, err := svc.ListUserAttempts(2, 1, 10)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if total != 0 || len(other) != 0 {
		t.Fatal("history must be scoped to the caller")
	}
}
