package validator

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/linguabridge/learning-service/internal/models"
)

// AnswerValidator decides correctness for a submitted answer against the
// authored question definition. It is pure: same inputs always yield the
// same boolean, and it never errors — rejecting empty answers is the
// caller's precondition, not a validator concern.
type AnswerValidator struct{}

// NewAnswerValidator creates a new answer validator.
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// Validate reports whether the submitted answer is correct for the question.
// Unknown question types are never correct.
func (v *AnswerValidator) Validate(question *models.Question, submitted string) bool {
	switch question.Type {
	case models.MultipleChoice, models.ListeningMultipleChoice:
		return strings.TrimSpace(submitted) == strings.TrimSpace(question.Answer)
	case models.DragAndDrop:
		return v.validateDragAndDrop(question, submitted)
	case models.ListeningWriting:
		return Normalize(submitted) == Normalize(question.ModelAnswer)
	case models.SpeakingRepetition:
		target := question.ModelAnswer
		if target == "" {
			target = question.SentenceToRepeat
		}
		return Normalize(submitted) == Normalize(target)
	default:
		return false
	}
}

// validateDragAndDrop compares the flattened blank assignment (blank tokens
// in authored order, space-joined) against each blank's designated answer.
// Any unassigned or mismatched blank fails; there is no partial credit.
func (v *AnswerValidator) validateDragAndDrop(question *models.Question, submitted string) bool {
	tokens := strings.Fields(submitted)
	if len(tokens) != len(question.Blanks) {
		return false
	}
	for i, blank := range question.Blanks {
		if tokens[i] != blank.CorrectAnswer {
			return false
		}
	}
	return true
}

// stripDiacritics decomposes to NFD, drops combining marks, and recomposes.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares free-text answers for comparison: lowercase, trimmed,
// diacritics and punctuation stripped, whitespace collapsed. "  Hé went.  "
// and "he went" normalize to the same string.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))

	stripped, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		stripped = lowered
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, stripped)

	return strings.Join(strings.Fields(cleaned), " ")
}
