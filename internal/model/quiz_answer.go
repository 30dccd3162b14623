package model

import "time"

// QuizAnswer is an append-only ledger entry recording one submitted answer.
// Correctness is derived at write time against the question's answer key.
//
// swagger:model QuizAnswer
type QuizAnswer struct {
	BaseModel
	AttemptID      uint      `gorm:"index" json:"attemptId"`
	QuestionID     uint      `gorm:"index" json:"questionId"`
	SelectedAnswer string    `gorm:"size:1;not null" json:"selectedAnswer"`
	IsCorrect      bool      `gorm:"default:false" json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
