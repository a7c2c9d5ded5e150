package models

// SessionStatus is the lifecycle state of an exercise session.
type SessionStatus string

const (
	SessionInProgress     SessionStatus = "in_progress"
	SessionShowingResults SessionStatus = "showing_results"
	SessionCompleted      SessionStatus = "completed"
)

// QuestionAttemptState is the mutable per-question state inside a session.
// UserAnswer is empty until the learner answers; IsCorrect is nil until the
// answer has been checked.
type QuestionAttemptState struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer,omitempty"`
	IsChecked  bool   `json:"is_checked"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
}

// Answered reports whether the learner has provided a non-empty answer.
func (s *QuestionAttemptState) Answered() bool {
	return s.UserAnswer != ""
}

// ScoreSummary is the aggregate result surfaced when a session reaches
// the results screen.
type ScoreSummary struct {
	Percentage     int `json:"percentage"`
	CorrectCount   int `json:"correct_count"`
	AnsweredCount  int `json:"answered_count"`
	ElapsedSeconds int `json:"elapsed_seconds"`
}

// CheckResult is returned by a check-answer operation, carrying the
// correctness outcome and the authored feedback for it.
type CheckResult struct {
	QuestionID    string `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	Feedback      string `json:"feedback,omitempty"`
	Justification string `json:"justification,omitempty"`
}
