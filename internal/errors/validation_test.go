package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorFormatting(t *testing.T) {
	err := NewValidationError("subtopic_id", "is required", nil)
	assert.Equal(t, "validation error on field 'subtopic_id': is required", err.Error())

	withRule := NewValidationErrorWithRule("score", "must be between 0 and 100", "score_range", 120)
	assert.Equal(t, "score_range", withRule.Rule)
	assert.Equal(t, 120, withRule.Value)
}

func TestValidationErrorsAggregateMessage(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("user_id", "is required", nil))
	assert.Equal(t, "validation failed: user_id is required", errs.Error())

	errs = append(errs, *NewValidationError("answer", "is required", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestToValidationErrors_DomainMessages(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("question_type", func(validator.FieldLevel) bool { return false }))
	require.NoError(t, v.RegisterValidation("score_range", func(validator.FieldLevel) bool { return false }))

	type submission struct {
		SubtopicID string `validate:"required"`
		Type       string `validate:"question_type"`
		Score      int    `validate:"score_range"`
	}

	err := v.Struct(submission{Type: "matching_pairs", Score: 120})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 3)

	byRule := make(map[string]ValidationError, len(errs))
	for _, e := range errs {
		byRule[e.Rule] = e
	}

	assert.Equal(t, "is required", byRule["required"].Message)
	assert.Contains(t, byRule["question_type"].Message, "multiple_choice")
	assert.Contains(t, byRule["question_type"].Message, "speaking_repetition")
	assert.Equal(t, "must be between 0 and 100", byRule["score_range"].Message)
	assert.Equal(t, "matching_pairs", byRule["question_type"].Value)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	errs := ToValidationErrors(assert.AnError)
	assert.Empty(t, errs)
}
