package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linguabridge/learning-service/internal/models"
)

func multipleChoiceQuestion() *models.Question {
	return &models.Question{
		ID:      "mc-1",
		Type:    models.MultipleChoice,
		Options: []string{"a", "b", "c"},
		Answer:  "b",
	}
}

func dragAndDropQuestion() *models.Question {
	return &models.Question{
		ID:               "dnd-1",
		Type:             models.DragAndDrop,
		Question:         "I ___ to the store",
		Blanks:           []models.Blank{{ID: "0", CorrectAnswer: "went"}},
		DraggableOptions: []string{"went", "go"},
	}
}

func TestAnswerValidator_MultipleChoice(t *testing.T) {
	v := NewAnswerValidator()
	q := multipleChoiceQuestion()

	tests := []struct {
		name      string
		submitted string
		want      bool
	}{
		{"correct option", "b", true},
		{"correct option with whitespace", " b ", true},
		{"wrong option", "a", false},
		{"not an option", "d", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(q, tt.submitted))
		})
	}
}

func TestAnswerValidator_ListeningMultipleChoice(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{
		ID:        "lmc-1",
		Type:      models.ListeningMultipleChoice,
		Options:   []string{"was", "were"},
		Answer:    "were",
		AudioFile: "audio/u1s1q3.mp3",
	}

	assert.True(t, v.Validate(q, "were"))
	assert.False(t, v.Validate(q, "was"))
}

func TestAnswerValidator_DragAndDrop(t *testing.T) {
	v := NewAnswerValidator()
	q := dragAndDropQuestion()

	assert.False(t, v.Validate(q, "go"), "wrong token assigned")
	assert.True(t, v.Validate(q, "went"), "correct token assigned")
	assert.False(t, v.Validate(q, ""), "unassigned blank fails")

	multi := &models.Question{
		ID:       "dnd-2",
		Type:     models.DragAndDrop,
		Question: "She ___ been ___ for hours",
		Blanks: []models.Blank{
			{ID: "0", CorrectAnswer: "has"},
			{ID: "1", CorrectAnswer: "reading"},
		},
		DraggableOptions: []string{"has", "have", "reading", "read"},
	}

	assert.True(t, v.Validate(multi, "has reading"))
	assert.False(t, v.Validate(multi, "have reading"), "no partial credit")
	assert.False(t, v.Validate(multi, "has"), "missing blank fails")
}

func TestAnswerValidator_ListeningWriting(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{
		ID:          "lw-1",
		Type:        models.ListeningWriting,
		AudioFile:   "audio/u1s2q1.mp3",
		ModelAnswer: "he went",
	}

	assert.True(t, v.Validate(q, "  Hé went.  "), "normalization makes answers equal")
	assert.True(t, v.Validate(q, "He   went"))
	assert.False(t, v.Validate(q, "she went"))
}

func TestAnswerValidator_SpeakingRepetition(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{
		ID:               "sr-1",
		Type:             models.SpeakingRepetition,
		SentenceToRepeat: "I have never been to London",
		AudioModelFile:   "audio/u2s1q4.mp3",
	}

	assert.True(t, v.Validate(q, "i have never been to london!"))
	assert.False(t, v.Validate(q, "i have been to london"))
}

func TestAnswerValidator_UnknownType(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{ID: "x-1", Type: "video_quiz", Answer: "yes"}

	assert.False(t, v.Validate(q, "yes"))
}

func TestAnswerValidator_Deterministic(t *testing.T) {
	v := NewAnswerValidator()
	q := multipleChoiceQuestion()

	first := v.Validate(q, "b")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, v.Validate(q, "b"))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims and lowercases", "  Hello World  ", "hello world"},
		{"strips diacritics", "Hé wênt", "he went"},
		{"strips punctuation", "he went.", "he went"},
		{"collapses whitespace", "he \t went", "he went"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}
