package services

import (
	"context"
	"io"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/progress"
	"github.com/linguabridge/learning-service/internal/session"
)

// ===== REQUESTS =====

type StartSessionRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	SubtopicID string `json:"subtopic_id" validate:"required"`
}

type AnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type AssignRequest struct {
	BlankIndex *int   `json:"blank_index" validate:"required,min=0"`
	TokenID    string `json:"token_id" validate:"required"`
}

type UnassignRequest struct {
	BlankIndex *int `json:"blank_index" validate:"required,min=0"`
}

// ===== RESPONSES =====

// QuestionView is the client-facing shape of a question. Correct answers,
// blank solutions and model answers are stripped; checking happens
// server-side only.
type QuestionView struct {
	ID           string              `json:"game_id"`
	Type         models.QuestionType `json:"type"`
	Title        string              `json:"title,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Question     string              `json:"question,omitempty"`
	ImageURL     string              `json:"image_url,omitempty"`

	Options          []string `json:"options,omitempty"`
	AudioFile        string   `json:"audio_file,omitempty"`
	BlankCount       int      `json:"blank_count,omitempty"`
	SentenceToRepeat string   `json:"sentence_to_repeat,omitempty"`
	AudioModelFile   string   `json:"audio_model_file,omitempty"`

	// Unsupported marks question types this service version cannot play;
	// the client renders a placeholder instead of the exercise.
	Unsupported bool `json:"unsupported,omitempty"`
}

// DragView is the visible drag-and-drop state for the current question.
type DragView struct {
	Pool        []session.Token  `json:"pool"`
	Assignments []*session.Token `json:"assignments"`
}

// SessionView is the full client-facing session state after any operation.
type SessionView struct {
	ID             string                       `json:"session_id"`
	UserID         string                       `json:"user_id"`
	UnitID         string                       `json:"unit_id"`
	SubtopicID     string                       `json:"subtopic_id"`
	Status         models.SessionStatus         `json:"status"`
	CurrentIndex   int                          `json:"current_index"`
	TotalQuestions int                          `json:"total_questions"`
	Question       *QuestionView                `json:"question,omitempty"`
	State          *models.QuestionAttemptState `json:"state,omitempty"`
	Drag           *DragView                    `json:"drag,omitempty"`
	Summary        *models.ScoreSummary         `json:"summary,omitempty"`
}

// FinishSessionResponse reports the final score and what the completion
// changed in the learner's progress. ProgressSaved is false when the
// progress write failed; the session itself still finished.
type FinishSessionResponse struct {
	SessionID     string                     `json:"session_id"`
	Summary       models.ScoreSummary        `json:"summary"`
	Completion    *progress.CompletionResult `json:"completion,omitempty"`
	ProgressSaved bool                       `json:"progress_saved"`
	Warning       string                     `json:"warning,omitempty"`
}

// UnitSummary is the browsing view of a unit with the learner's lock
// state folded in.
type UnitSummary struct {
	ID          string            `json:"unit_id"`
	Title       string            `json:"unit_title"`
	Description string            `json:"description,omitempty"`
	Order       int               `json:"order"`
	IsCompleted bool              `json:"is_completed"`
	Subtopics   []SubtopicSummary `json:"subtopics"`
}

// SubtopicSummary carries the grammar theory plus per-learner state.
type SubtopicSummary struct {
	ID            string   `json:"subtopic_id"`
	Title         string   `json:"subtopic_title"`
	Description   string   `json:"description,omitempty"`
	Usage         string   `json:"usage,omitempty"`
	Examples      []string `json:"examples,omitempty"`
	Image         string   `json:"image,omitempty"`
	Order         int      `json:"order"`
	QuestionCount int      `json:"question_count"`
	IsLocked      bool     `json:"is_locked"`
	IsCompleted   bool     `json:"is_completed"`
	Score         int      `json:"score,omitempty"`
}

// ===== SERVICE INTERFACES =====

// SessionService drives exercise sessions from start to finish.
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionView, error)
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	SetAnswer(ctx context.Context, sessionID string, req *AnswerRequest) (*SessionView, error)
	Check(ctx context.Context, sessionID string) (*models.CheckResult, error)
	Assign(ctx context.Context, sessionID string, req *AssignRequest) (*SessionView, error)
	Unassign(ctx context.Context, sessionID string, req *UnassignRequest) (*SessionView, error)
	Next(ctx context.Context, sessionID string) (*SessionView, error)
	Previous(ctx context.Context, sessionID string) (*SessionView, error)
	TryAgain(ctx context.Context, sessionID string) (*SessionView, error)
	Finish(ctx context.Context, sessionID string) (*FinishSessionResponse, error)
}

// ContentService exposes the curriculum for browsing and import.
type ContentService interface {
	ListUnits(ctx context.Context, userID string) ([]UnitSummary, error)
	GetUnit(ctx context.Context, unitID, userID string) (*UnitSummary, error)
	Import(ctx context.Context, workbook io.Reader) (*models.ImportSummary, error)
}

// ProgressService exposes the learner's stored progress.
type ProgressService interface {
	Snapshot(ctx context.Context, userID string) ([]*models.UnitProgress, error)
	Recent(ctx context.Context, userID string, limit int) ([]models.CompletedSubtopic, error)
	Init(ctx context.Context, userID string) error
}
