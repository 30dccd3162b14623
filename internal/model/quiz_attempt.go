package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptTimedOut   AttemptStatus = "TIME_OUT"
)

// Terminal reports whether no further transition may leave the status.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptCompleted || s == AttemptTimedOut
}

// QuizAttempt is one user's single run through a package. At most one
// IN_PROGRESS attempt exists per (user, package); the pointer only moves
// forward and COMPLETED/TIME_OUT are terminal.
//
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID               uint          `gorm:"index" json:"userId"`
	PackageID            uint          `gorm:"index" json:"packageId"`
	Status               AttemptStatus `gorm:"size:20;default:'IN_PROGRESS'" json:"status"`
	Score                int           `gorm:"default:0" json:"score"`
	TotalQuestions       int           `gorm:"default:0" json:"totalQuestions"`
	CurrentQuestionIndex int           `gorm:"default:0" json:"currentQuestionIndex"`
	StartedAt            time.Time     `json:"startedAt"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
	TimeRemainingSeconds int           `json:"timeRemainingSeconds"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
