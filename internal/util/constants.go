package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// Quiz engine constants.
const (
	// RequiredQuestionCount is the exact number of questions a package must
	// hold before it can be attempted.
	RequiredQuestionCount = 110

	// AttemptTimeBudgetSeconds is the wall-clock budget of one attempt
	// (120 minutes).
	AttemptTimeBudgetSeconds = 7200
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeImage = "image/"
)

// AnswerOptions is the closed set of selectable option letters.
var AnswerOptions = []string{"A", "B", "C", "D", "E"}

// IsAnswerOption reports whether s is one of the five option letters.
func IsAnswerOption(s string) bool {
	for _, o := range AnswerOptions {
		if s == o {
			return true
		}
	}
	return false
}
