package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of learning events
type EventType string

const (
	// Session events
	EventExerciseCompleted EventType = "exercise.completed"

	// Progress events
	EventSubtopicUnlocked EventType = "progress.subtopic_unlocked"
	EventUnitCompleted    EventType = "progress.unit_completed"
)

const eventSource = "learning-service"

// LearningEvent is the base event structure published to the bus.
type LearningEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ExerciseCompletedEvent is emitted when a learner finishes a session,
// whether or not the score reached the completion threshold.
type ExerciseCompletedEvent struct {
	UserID           string `json:"user_id"`
	UnitID           string `json:"unit_id"`
	SubtopicID       string `json:"subtopic_id"`
	Score            int    `json:"score"`
	CorrectCount     int    `json:"correct_count"`
	AnsweredCount    int    `json:"answered_count"`
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	Passed           bool   `json:"passed"`
	UnitCompleted    bool   `json:"unit_completed"`
	UnlockedSubtopic string `json:"unlocked_subtopic,omitempty"`
	UnlockedUnit     string `json:"unlocked_unit,omitempty"`
}

// SubtopicUnlockedEvent is emitted when the cascade opens a new subtopic.
type SubtopicUnlockedEvent struct {
	UserID     string `json:"user_id"`
	UnitID     string `json:"unit_id"`
	SubtopicID string `json:"subtopic_id"`
}

// UnitCompletedEvent is emitted when every subtopic of a unit is complete.
type UnitCompletedEvent struct {
	UserID string `json:"user_id"`
	UnitID string `json:"unit_id"`
}

// NewLearningEvent wraps a payload in the standard envelope.
func NewLearningEvent(eventType EventType, data interface{}) *LearningEvent {
	return &LearningEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}
