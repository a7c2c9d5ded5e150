package session

import (
	"errors"
	"math"
	"time"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/validator"
)

var (
	ErrCheckRequired     = errors.New("answer must be checked before continuing")
	ErrAtFirstQuestion   = errors.New("already at the first question")
	ErrSessionFinished   = errors.New("session is no longer in progress")
	ErrResultsNotReached = errors.New("session has not reached the results screen")
)

// Controller drives a single exercise session through its lifecycle:
// answering and checking questions, forward/backward navigation, the
// results screen, retry, and the final score.
type Controller struct {
	store     *Store
	tracker   *AssignmentTracker
	current   int
	status    models.SessionStatus
	startedAt time.Time
	now       func() time.Time
}

// NewController starts a session on the given questions at question 0.
func NewController(questions []models.Question, answers *validator.AnswerValidator) (*Controller, error) {
	c := &Controller{
		store:  NewStore(questions, answers),
		status: models.SessionInProgress,
		now:    time.Now,
	}
	c.startedAt = c.now()
	if err := c.rebuildTracker(); err != nil {
		return nil, err
	}
	return c, nil
}

// Status returns the session lifecycle state.
func (c *Controller) Status() models.SessionStatus {
	return c.status
}

// CurrentIndex returns the zero-based index of the current question.
func (c *Controller) CurrentIndex() int {
	return c.current
}

// Len returns the number of questions in the session.
func (c *Controller) Len() int {
	return c.store.Len()
}

// CurrentQuestion returns the question the session is positioned on.
func (c *Controller) CurrentQuestion() (*models.Question, error) {
	return c.store.Question(c.current)
}

// CurrentState returns a copy of the current question's attempt state.
func (c *Controller) CurrentState() (models.QuestionAttemptState, error) {
	return c.store.State(c.current)
}

// States returns a copy of every question's attempt state.
func (c *Controller) States() []models.QuestionAttemptState {
	return c.store.States()
}

// Tracker returns the drag-and-drop tracker for the current question, or
// nil when the current question is not drag-and-drop.
func (c *Controller) Tracker() *AssignmentTracker {
	return c.tracker
}

// SetAnswer records an answer for the current question. Checked questions
// keep their original answer.
func (c *Controller) SetAnswer(answer string) error {
	if c.status != models.SessionInProgress {
		return ErrSessionFinished
	}
	return c.store.SetAnswer(c.current, answer)
}

// CheckAnswer validates the current question and returns the verdict with
// the authored feedback. Checking twice returns the stored verdict.
func (c *Controller) CheckAnswer() (*models.CheckResult, error) {
	if c.status != models.SessionInProgress {
		return nil, ErrSessionFinished
	}
	question, err := c.store.Question(c.current)
	if err != nil {
		return nil, err
	}
	correct, err := c.store.CheckAnswer(c.current)
	if err != nil {
		return nil, err
	}

	result := &models.CheckResult{
		QuestionID:    question.ID,
		IsCorrect:     correct,
		Justification: question.Justification,
	}
	if correct {
		result.Feedback = question.CorrectFeedback
		if result.Feedback == "" {
			result.Feedback = "Correct!"
		}
	} else {
		result.Feedback = question.IncorrectFeedback
		if result.Feedback == "" {
			result.Feedback = "Incorrect, try to review the rule."
		}
	}
	return result, nil
}

// Assign places a draggable token into a blank of the current question and
// refreshes the stored answer with the flattened assignment.
func (c *Controller) Assign(blankIndex int, tokenID string) error {
	if err := c.dragMutationAllowed(); err != nil {
		return err
	}
	if err := c.tracker.Assign(blankIndex, tokenID); err != nil {
		return err
	}
	return c.store.SetAnswer(c.current, c.tracker.FlattenedAnswer())
}

// Unassign returns the token in a blank of the current question to the pool
// and refreshes the stored answer.
func (c *Controller) Unassign(blankIndex int) error {
	if err := c.dragMutationAllowed(); err != nil {
		return err
	}
	if err := c.tracker.Unassign(blankIndex); err != nil {
		return err
	}
	return c.store.SetAnswer(c.current, c.tracker.FlattenedAnswer())
}

func (c *Controller) dragMutationAllowed() error {
	if c.status != models.SessionInProgress {
		return ErrSessionFinished
	}
	if c.tracker == nil {
		return ErrNotDragAndDrop
	}
	state, err := c.store.State(c.current)
	if err != nil {
		return err
	}
	if state.IsChecked {
		return ErrQuestionChecked
	}
	return nil
}

// GoNext advances to the next question, or to the results screen from the
// last one. An answered question whose type demands explicit checking
// blocks until checked; answered free-response questions are checked
// implicitly on the way out. Unanswered questions may be skipped.
func (c *Controller) GoNext() error {
	if c.status != models.SessionInProgress {
		return ErrSessionFinished
	}
	question, err := c.store.Question(c.current)
	if err != nil {
		return err
	}
	state, err := c.store.State(c.current)
	if err != nil {
		return err
	}

	if state.Answered() && !state.IsChecked {
		if question.Type.RequiresCheck() {
			return ErrCheckRequired
		}
		if _, err := c.store.CheckAnswer(c.current); err != nil {
			return err
		}
	}

	if c.current == c.store.Len()-1 {
		c.status = models.SessionShowingResults
		c.tracker = nil
		return nil
	}
	c.current++
	return c.rebuildTracker()
}

// GoPrevious steps back one question. Earlier answers stay frozen once
// checked; revisiting only changes what is displayed.
func (c *Controller) GoPrevious() error {
	if c.status != models.SessionInProgress {
		return ErrSessionFinished
	}
	if c.current == 0 {
		return ErrAtFirstQuestion
	}
	c.current--
	return c.rebuildTracker()
}

// TryAgain wipes every answer and restarts the session from question 0.
// Only available from the results screen.
func (c *Controller) TryAgain() error {
	if c.status != models.SessionShowingResults {
		return ErrResultsNotReached
	}
	c.store.Reset()
	c.current = 0
	c.status = models.SessionInProgress
	return c.rebuildTracker()
}

// Complete marks the session finished. Only available from the results
// screen, and only once.
func (c *Controller) Complete() error {
	if c.status != models.SessionShowingResults {
		return ErrResultsNotReached
	}
	c.status = models.SessionCompleted
	return nil
}

// Score computes the session summary. The percentage is relative to the
// answered questions, not the session length; a session with no answered
// questions scores zero.
func (c *Controller) Score() models.ScoreSummary {
	answered := c.store.AnsweredCount()
	correct := c.store.CorrectCount()

	percentage := 0
	if answered > 0 {
		percentage = int(math.Round(float64(correct) / float64(answered) * 100))
	}
	return models.ScoreSummary{
		Percentage:     percentage,
		CorrectCount:   correct,
		AnsweredCount:  answered,
		ElapsedSeconds: int(c.now().Sub(c.startedAt).Seconds()),
	}
}

// rebuildTracker reconstructs the drag-and-drop tracker for the current
// question from its stored answer, or clears it for other types.
func (c *Controller) rebuildTracker() error {
	question, err := c.store.Question(c.current)
	if err != nil {
		return err
	}
	if question.Type != models.DragAndDrop {
		c.tracker = nil
		return nil
	}
	state, err := c.store.State(c.current)
	if err != nil {
		return err
	}
	tracker, err := NewAssignmentTracker(question, state.UserAnswer)
	if err != nil {
		return err
	}
	c.tracker = tracker
	return nil
}
