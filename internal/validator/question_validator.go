package validator

import (
	"fmt"
	"strings"

	"github.com/linguabridge/learning-service/internal/models"
)

// QuestionValidator handles authored-content validation for questions.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator.
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete authored question.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if question.Instructions == "" && question.Question == "" {
		return fmt.Errorf("question must have instructions or question text")
	}
	return v.ValidateContent(question)
}

// ValidateContent validates the type-specific fields of a question.
func (v *QuestionValidator) ValidateContent(question *models.Question) error {
	switch question.Type {
	case models.MultipleChoice, models.ListeningMultipleChoice:
		return v.validateChoiceContent(question)
	case models.DragAndDrop:
		return v.validateDragAndDropContent(question)
	case models.ListeningWriting:
		return v.validateListeningWritingContent(question)
	case models.SpeakingRepetition:
		return v.validateSpeakingRepetitionContent(question)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

// ValidateBatch validates multiple questions.
func (v *QuestionValidator) ValidateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}
	for i := range questions {
		if err := v.ValidateQuestion(&questions[i]); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}
	return nil
}

func (v *QuestionValidator) validateChoiceContent(question *models.Question) error {
	if len(question.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(question.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}
	if question.Answer == "" {
		return fmt.Errorf("correct answer is required")
	}

	found := false
	for _, option := range question.Options {
		if option == "" {
			return fmt.Errorf("option text cannot be empty")
		}
		if option == question.Answer {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("correct answer %q does not match any option", question.Answer)
	}

	if question.Type == models.ListeningMultipleChoice && question.AudioFile == "" {
		return fmt.Errorf("listening question requires an audio file")
	}
	return nil
}

func (v *QuestionValidator) validateDragAndDropContent(question *models.Question) error {
	if question.Question == "" {
		return fmt.Errorf("template is required")
	}
	if len(question.Blanks) == 0 {
		return fmt.Errorf("must have at least 1 blank")
	}

	markers := strings.Count(question.Question, "___")
	if markers != len(question.Blanks) {
		return fmt.Errorf("template has %d blank markers but %d blanks are defined", markers, len(question.Blanks))
	}

	if len(question.DraggableOptions) < len(question.Blanks) {
		return fmt.Errorf("must have at least as many draggable options as blanks")
	}

	pool := make(map[string]bool, len(question.DraggableOptions))
	for _, token := range question.DraggableOptions {
		if token == "" {
			return fmt.Errorf("draggable option text cannot be empty")
		}
		pool[token] = true
	}

	for _, blank := range question.Blanks {
		if blank.CorrectAnswer == "" {
			return fmt.Errorf("blank %q must have a correct answer", blank.ID)
		}
		if !pool[blank.CorrectAnswer] {
			return fmt.Errorf("blank %q answer %q is not among the draggable options", blank.ID, blank.CorrectAnswer)
		}
	}
	return nil
}

func (v *QuestionValidator) validateListeningWritingContent(question *models.Question) error {
	if question.AudioFile == "" {
		return fmt.Errorf("audio file is required")
	}
	if question.ModelAnswer == "" {
		return fmt.Errorf("model answer is required")
	}
	return nil
}

func (v *QuestionValidator) validateSpeakingRepetitionContent(question *models.Question) error {
	if question.SentenceToRepeat == "" {
		return fmt.Errorf("sentence to repeat is required")
	}
	return nil
}
