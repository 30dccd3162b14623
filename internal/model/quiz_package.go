package model

// QuizPackage is an admin-authored collection of questions. A package is only
// attemptable once its question count reaches the required size exactly.
//
// swagger:model QuizPackage
type QuizPackage struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CreatedBy   uint   `gorm:"index" json:"createdBy"`
}

func (QuizPackage) TableName() string {
	return "quiz_packages"
}
