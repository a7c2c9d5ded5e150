package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linguabridge/learning-service/internal/models"
)

// Validator is the main validator instance combining struct-tag validation
// of API requests with question content and answer validation.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
	answerValidator   *AnswerValidator
}

// New creates a new centralized validator instance.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
		answerValidator:   NewAnswerValidator(),
	}
}

// Validate validates struct tags on a request object.
func (v *Validator) Validate(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Question returns the question content validator.
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// Answer returns the answer validator.
func (v *Validator) Answer() *AnswerValidator {
	return v.answerValidator
}

// validateQuestionType implements the question_type struct tag.
func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsSupported()
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)

	// Report json field names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
