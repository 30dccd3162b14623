package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// AttemptService owns the attempt state machine: IN_PROGRESS moves to
// COMPLETED (last answer or explicit completion) or TIME_OUT (budget
// exhausted, detected lazily on the next read or write). Both are terminal.
type AttemptService struct {
	AttemptRepo  *repository.QuizAttemptRepository
	AnswerRepo   *repository.QuizAnswerRepository
	QuestionRepo *repository.QuizQuestionRepository
	PackageRepo  *repository.QuizPackageRepository
	Dashboard    *DashboardService
	DB           *gorm.DB

	// RequiredQuestions and TimeBudgetSeconds default to the platform
	// constants; NewAttemptService sets them.
	RequiredQuestions int
	TimeBudgetSeconds int

	locks sync.Map // attempt id -> *sync.Mutex
}

func NewAttemptService(
	attemptRepo *repository.QuizAttemptRepository,
	answerRepo *repository.QuizAnswerRepository,
	questionRepo *repository.QuizQuestionRepository,
	packageRepo *repository.QuizPackageRepository,
	dashboard *DashboardService,
	db *gorm.DB,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:       attemptRepo,
		AnswerRepo:        answerRepo,
		QuestionRepo:      questionRepo,
		PackageRepo:       packageRepo,
		Dashboard:         dashboard,
		DB:                db,
		RequiredQuestions: util.RequiredQuestionCount,
		TimeBudgetSeconds: util.AttemptTimeBudgetSeconds,
	}
}

// QuestionView is a question as shown to the taker: the answer key is
// withheld.
type QuestionView struct {
	ID           uint   `json:"id"`
	QuestionText string `json:"questionText"`
	OptionA      string `json:"optionA"`
	OptionB      string `json:"optionB"`
	OptionC      string `json:"optionC"`
	OptionD      string `json:"optionD"`
	OptionE      string `json:"optionE"`
	OrderIndex   int    `json:"orderIndex"`
}

type AttemptSnapshot struct {
	AttemptID            uint                `json:"attemptId"`
	PackageID            uint                `json:"packageId"`
	QuizTitle            string              `json:"quizTitle"`
	Status               model.AttemptStatus `json:"status"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	TotalQuestions       int                 `json:"totalQuestions"`
	TimeRemainingSeconds int                 `json:"timeRemainingSeconds"`
	CurrentQuestion      *QuestionView       `json:"currentQuestion,omitempty"`
}

// AnswerReview is the post-completion, full-disclosure view of one ledger
// entry, answer key included.
type AnswerReview struct {
	QuestionID     uint   `json:"questionId"`
	QuestionText   string `json:"questionText"`
	OptionA        string `json:"optionA"`
	OptionB        string `json:"optionB"`
	OptionC        string `json:"optionC"`
	OptionD        string `json:"optionD"`
	OptionE        string `json:"optionE"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
}

type ResultSummary struct {
	AttemptID        uint           `json:"attemptId"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"totalQuestions"`
	CorrectAnswers   int            `json:"correctAnswers"`
	IncorrectAnswers int            `json:"incorrectAnswers"`
	TimeTakenSeconds int            `json:"timeTakenSeconds"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	Answers          []AnswerReview `json:"answers"`
}

// lock serializes mutations per attempt id; two concurrent submissions for
// the same attempt would otherwise race on the position pointer.
func (s *AttemptService) lock(attemptID uint) func() {
	v, _ := s.locks.LoadOrStore(attemptID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// remainingSeconds derives the live budget from started_at every time; the
// stored value is a snapshot for readers, never an input.
func (s *AttemptService) remainingSeconds(a *model.QuizAttempt) int {
	elapsed := int(time.Since(a.StartedAt).Seconds())
	remaining := s.TimeBudgetSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StartAttempt opens an attempt against a complete package, or resumes the
// caller's open attempt on that package if one exists.
func (s *AttemptService) StartAttempt(userID, packageID uint) (*AttemptSnapshot, error) {
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
	if int(count) != s.RequiredQuestions {
		return nil, fmt.Errorf("%w: quiz package must have exactly %d questions, found %d",
			util.ErrInvalidState, s.RequiredQuestions, count)
	}

	if existing, err := s.AttemptRepo.FindInProgress(userID, packageID); err == nil {
		return s.buildSnapshot(existing, pkg.Title)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		UserID:               userID,
		PackageID:            packageID,
		Status:               model.AttemptInProgress,
		Score:                0,
		TotalQuestions:       int(count),
		CurrentQuestionIndex: 0,
		StartedAt:            time.Now(),
		TimeRemainingSeconds: s.TimeBudgetSeconds,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	monitoring.AttemptsStarted.Inc()

	return s.buildSnapshot(attempt, pkg.Title)
}

// GetSnapshot returns the live view of an in-flight attempt, or nil when the
// attempt is unknown or already terminal. An exhausted budget makes this a
// side-effecting read: the attempt is persisted as TIME_OUT and nil is
// returned, pointing the caller at the result path.
func (s *AttemptService) GetSnapshot(attemptID uint) (*AttemptSnapshot, error) {
	unlock := s.lock(attemptID)
	defer unlock()

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if attempt.Status.Terminal() {
		return nil, nil
	}

	if s.remainingSeconds(attempt) == 0 {
		if err := s.timeOut(attempt); err != nil {
			return nil, err
		}
		return nil, nil
	}

	title := ""
	if pkg, err := s.PackageRepo.FindByID(attempt.PackageID); err == nil {
		title = pkg.Title
	}
	return s.buildSnapshot(attempt, title)
}

// SubmitAnswer grades the answer for the attempt's current question, appends
// it to the ledger and advances the pointer. The position check is the sole
// guard against duplicate or out-of-order submissions.
func (s *AttemptService) SubmitAnswer(attemptID, questionID uint, selectedAnswer string, userID uint) (*AttemptSnapshot, error) {
	if !util.IsAnswerOption(selectedAnswer) {
		return nil, fmt.Errorf("%w: invalid answer option %q", util.ErrInvalidState, selectedAnswer)
	}

	unlock := s.lock(attemptID)
	defer unlock()

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	// A missing attempt, someone else's attempt and a finished attempt are
	// indistinguishable to the caller.
	if err != nil || attempt.UserID != userID || attempt.Status != model.AttemptInProgress {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, util.ErrAttemptNotFound
	}

	count, err := s.QuestionRepo.CountByPackage(attempt.PackageID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no questions found", util.ErrInvalidState)
	}

	question, err := s.QuestionRepo.FindByPackageAndOrder(attempt.PackageID, attempt.CurrentQuestionIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question id does not match the current question", util.ErrInvalidState)
		}
		return nil, err
	}
	if question.ID != questionID {
		return nil, fmt.Errorf("%w: question id does not match the current question", util.ErrInvalidState)
	}

	now := time.Now()
	isCorrect := selectedAnswer == question.CorrectAnswer

	attempt.CurrentQuestionIndex++
	if isCorrect {
		attempt.Score++
	}
	attempt.TimeRemainingSeconds = s.remainingSeconds(attempt)

	isLast := attempt.CurrentQuestionIndex >= attempt.TotalQuestions
	if isLast || attempt.TimeRemainingSeconds == 0 {
		if attempt.TimeRemainingSeconds == 0 {
			attempt.Status = model.AttemptTimedOut
		} else {
			attempt.Status = model.AttemptCompleted
		}
		attempt.CompletedAt = &now
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		entry := &model.QuizAnswer{
			AttemptID:      attempt.ID,
			QuestionID:     question.ID,
			SelectedAnswer: selectedAnswer,
			IsCorrect:      isCorrect,
			AnsweredAt:     now,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	if attempt.Status.Terminal() {
		monitoring.AttemptsFinished.WithLabelValues(string(attempt.Status)).Inc()
		if attempt.Status == model.AttemptCompleted && s.Dashboard != nil {
			_ = s.Dashboard.RecordScore(attempt.PackageID, attempt.UserID, attempt.Score)
		}
	}

	title := ""
	if pkg, err := s.PackageRepo.FindByID(attempt.PackageID); err == nil {
		title = pkg.Title
	}
	return s.buildSnapshot(attempt, title)
}

// CompleteAttempt finishes an attempt by explicit user action. The final
// score is recounted from the ledger rather than trusted from the running
// counter. Calling it on an already-terminal attempt returns the existing
// results unchanged.
func (s *AttemptService) CompleteAttempt(attemptID, userID uint) (*ResultSummary, error) {
	unlock := s.lock(attemptID)
	defer unlock()

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil || attempt.UserID != userID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, util.ErrAttemptNotFound
	}

	if attempt.Status.Terminal() {
		return s.buildResult(attempt)
	}

	correct, err := s.AnswerRepo.CountCorrect(attempt.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt.Status = model.AttemptCompleted
	attempt.Score = int(correct)
	attempt.CompletedAt = &now
	attempt.TimeRemainingSeconds = s.remainingSeconds(attempt)
	if err := s.AttemptRepo.Update(attempt); err != nil {
		return nil, err
	}

	monitoring.AttemptsFinished.WithLabelValues(string(model.AttemptCompleted)).Inc()
	if s.Dashboard != nil {
		_ = s.Dashboard.RecordScore(attempt.PackageID, attempt.UserID, attempt.Score)
	}

	return s.buildResult(attempt)
}

// GetResult returns the full review for a COMPLETED attempt, or nil when the
// attempt is unknown, foreign or not COMPLETED. Timed-out attempts are not
// served here.
func (s *AttemptService) GetResult(attemptID, userID uint) (*ResultSummary, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if attempt.UserID != userID || attempt.Status != model.AttemptCompleted {
		return nil, nil
	}
	return s.buildResult(attempt)
}

type AttemptHistoryItem struct {
	model.QuizAttempt
	PackageTitle string `json:"packageTitle"`
}

// ListUserAttempts returns the caller's attempt history, newest first, with
// package titles resolved.
func (s *AttemptService) ListUserAttempts(userID uint, page, limit int) ([]AttemptHistoryItem, int64, error) {
	attempts, total, err := s.AttemptRepo.ListByUser(userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	titles := make(map[uint]string)
	items := make([]AttemptHistoryItem, 0, len(attempts))
	for _, a := range attempts {
		title, ok := titles[a.PackageID]
		if !ok {
			if pkg, err := s.PackageRepo.FindByID(a.PackageID); err == nil {
				title = pkg.Title
			}
			titles[a.PackageID] = title
		}
		items = append(items, AttemptHistoryItem{QuizAttempt: a, PackageTitle: title})
	}
	return items, total, nil
}

func (s *AttemptService) timeOut(attempt *model.QuizAttempt) error {
	now := time.Now()
	attempt.Status = model.AttemptTimedOut
	attempt.CompletedAt = &now
	attempt.TimeRemainingSeconds = 0
	if err := s.AttemptRepo.Update(attempt); err != nil {
		return err
	}
	monitoring.AttemptsFinished.WithLabelValues(string(model.AttemptTimedOut)).Inc()
	return nil
}

func (s *AttemptService) buildSnapshot(attempt *model.QuizAttempt, title string) (*AttemptSnapshot, error) {
	snapshot := &AttemptSnapshot{
		AttemptID:            attempt.ID,
		PackageID:            attempt.PackageID,
		QuizTitle:            title,
		Status:               attempt.Status,
		CurrentQuestionIndex: attempt.CurrentQuestionIndex,
		TotalQuestions:       attempt.TotalQuestions,
		TimeRemainingSeconds: attempt.TimeRemainingSeconds,
	}
	if attempt.Status == model.AttemptInProgress {
		snapshot.TimeRemainingSeconds = s.remainingSeconds(attempt)
	}

	// No question past the end: the caller should complete. Terminal
	// attempts never carry a question.
	if attempt.Status.Terminal() || attempt.CurrentQuestionIndex >= attempt.TotalQuestions {
		return snapshot, nil
	}

	question, err := s.QuestionRepo.FindByPackageAndOrder(attempt.PackageID, attempt.CurrentQuestionIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snapshot, nil
		}
		return nil, err
	}
	snapshot.CurrentQuestion = &QuestionView{
		ID:           question.ID,
		QuestionText: question.QuestionText,
		OptionA:      question.OptionA,
		OptionB:      question.OptionB,
		OptionC:      question.OptionC,
		OptionD:      question.OptionD,
		OptionE:      question.OptionE,
		OrderIndex:   question.OrderIndex,
	}
	return snapshot, nil
}

func (s *AttemptService) buildResult(attempt *model.QuizAttempt) (*ResultSummary, error) {
	entries, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.QuestionID)
	}
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	qMap := make(map[uint]model.QuizQuestion, len(questions))
	for _, q := range questions {
		qMap[q.ID] = q
	}

	reviews := make([]AnswerReview, 0, len(entries))
	correct := 0
	for _, e := range entries {
		q := qMap[e.QuestionID]
		if e.IsCorrect {
			correct++
		}
		reviews = append(reviews, AnswerReview{
			QuestionID:     e.QuestionID,
			QuestionText:   q.QuestionText,
			OptionA:        q.OptionA,
			OptionB:        q.OptionB,
			OptionC:        q.OptionC,
			OptionD:        q.OptionD,
			OptionE:        q.OptionE,
			SelectedAnswer: e.SelectedAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      e.IsCorrect,
		})
	}

	timeTaken := 0
	if attempt.CompletedAt != nil && !attempt.StartedAt.IsZero() {
		timeTaken = int(attempt.CompletedAt.Sub(attempt.StartedAt).Seconds())
	}

	return &ResultSummary{
		AttemptID:        attempt.ID,
		Score:            attempt.Score,
		TotalQuestions:   attempt.TotalQuestions,
		CorrectAnswers:   correct,
		IncorrectAnswers: len(reviews) - correct,
		TimeTakenSeconds: timeTaken,
		CompletedAt:      attempt.CompletedAt,
		Answers:          reviews,
	}, nil
}
