package model

// QuizQuestion is a five-option question inside a package. OrderIndex values
// within a package are dense and zero-based; deleting a question shifts all
// later indexes down by one.
//
// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	PackageID     uint   `gorm:"index" json:"packageId"`
	QuestionText  string `gorm:"type:text;not null" json:"questionText"`
	OptionA       string `gorm:"type:text" json:"optionA"`
	OptionB       string `gorm:"type:text" json:"optionB"`
	OptionC       string `gorm:"type:text" json:"optionC"`
	OptionD       string `gorm:"type:text" json:"optionD"`
	OptionE       string `gorm:"type:text" json:"optionE"`
	CorrectAnswer string `gorm:"size:1;not null" json:"correctAnswer"`
	OrderIndex    int    `gorm:"index;default:0" json:"orderIndex"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
