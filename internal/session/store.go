package session

import (
	"errors"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/validator"
)

var (
	ErrIndexOutOfRange = errors.New("question index out of range")
	ErrAnswerRequired  = errors.New("an answer is required before checking")
)

// Store holds the ordered per-question attempt states for one exercise
// session. Answers are mutable until a question is checked; checking is
// idempotent-once and freezes the question until Reset.
type Store struct {
	questions []models.Question
	states    []models.QuestionAttemptState
	answers   *validator.AnswerValidator
}

// NewStore creates a store with all questions unanswered.
func NewStore(questions []models.Question, answers *validator.AnswerValidator) *Store {
	s := &Store{
		questions: questions,
		answers:   answers,
	}
	s.Reset()
	return s
}

// Len returns the number of questions in the session.
func (s *Store) Len() int {
	return len(s.questions)
}

// Question returns the authored question at index.
func (s *Store) Question(index int) (*models.Question, error) {
	if index < 0 || index >= len(s.questions) {
		return nil, ErrIndexOutOfRange
	}
	return &s.questions[index], nil
}

// State returns a copy of the attempt state at index.
func (s *Store) State(index int) (models.QuestionAttemptState, error) {
	if index < 0 || index >= len(s.states) {
		return models.QuestionAttemptState{}, ErrIndexOutOfRange
	}
	return s.states[index], nil
}

// States returns a copy of all attempt states in question order.
func (s *Store) States() []models.QuestionAttemptState {
	out := make([]models.QuestionAttemptState, len(s.states))
	copy(out, s.states)
	return out
}

// SetAnswer overwrites the answer at index. Once the question has been
// checked it is read-only and SetAnswer is a silent no-op.
func (s *Store) SetAnswer(index int, answer string) error {
	if index < 0 || index >= len(s.states) {
		return ErrIndexOutOfRange
	}
	if s.states[index].IsChecked {
		return nil
	}
	s.states[index].UserAnswer = answer
	return nil
}

// CheckAnswer validates the answer at index and freezes the question.
// It requires a non-empty answer. Re-checking an already checked question
// returns the stored result without re-invoking validation.
func (s *Store) CheckAnswer(index int) (bool, error) {
	if index < 0 || index >= len(s.states) {
		return false, ErrIndexOutOfRange
	}
	state := &s.states[index]
	if state.IsChecked {
		return state.IsCorrect != nil && *state.IsCorrect, nil
	}
	if !state.Answered() {
		return false, ErrAnswerRequired
	}

	correct := s.answers.Validate(&s.questions[index], state.UserAnswer)
	state.IsChecked = true
	state.IsCorrect = &correct
	return correct, nil
}

// Reset reinitializes every question to unanswered, for "Try Again".
func (s *Store) Reset() {
	s.states = make([]models.QuestionAttemptState, len(s.questions))
	for i := range s.questions {
		s.states[i] = models.QuestionAttemptState{QuestionID: s.questions[i].ID}
	}
}

// AnsweredCount counts questions with a non-empty answer.
func (s *Store) AnsweredCount() int {
	count := 0
	for i := range s.states {
		if s.states[i].Answered() {
			count++
		}
	}
	return count
}

// CorrectCount counts questions checked and found correct.
func (s *Store) CorrectCount() int {
	count := 0
	for i := range s.states {
		if s.states[i].IsCorrect != nil && *s.states[i].IsCorrect {
			count++
		}
	}
	return count
}
