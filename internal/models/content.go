package models

// QuestionType identifies one of the five exercise game variants.
type QuestionType string

const (
	MultipleChoice          QuestionType = "multiple_choice"
	DragAndDrop             QuestionType = "drag_and_drop"
	ListeningMultipleChoice QuestionType = "listening_multiple_choice"
	ListeningWriting        QuestionType = "listening_writing"
	SpeakingRepetition      QuestionType = "speaking_repetition"
)

// AllQuestionTypes lists every supported question type in a stable order.
var AllQuestionTypes = []QuestionType{
	MultipleChoice,
	DragAndDrop,
	ListeningMultipleChoice,
	ListeningWriting,
	SpeakingRepetition,
}

// IsSupported reports whether t is one of the known question types.
// Unknown types are surfaced to the client as an "unsupported" placeholder
// instead of failing the session.
func (t QuestionType) IsSupported() bool {
	for _, known := range AllQuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RequiresCheck reports whether answers of this type must be explicitly
// checked before the session may advance past the question. Free-response
// types (listening_writing, speaking_repetition) are checked implicitly on
// advance instead.
func (t QuestionType) RequiresCheck() bool {
	switch t {
	case MultipleChoice, ListeningMultipleChoice, DragAndDrop:
		return true
	default:
		return false
	}
}

// Blank is a fill-in slot in a drag-and-drop question template.
type Blank struct {
	ID            string `json:"id"`
	CorrectAnswer string `json:"correct_answer"`
}

// Question is an authored, immutable exercise definition. Which fields are
// populated depends on Type; ValidateContent in the validator package
// enforces the per-type shape at load/import time.
type Question struct {
	ID           string       `json:"game_id" validate:"required"`
	Type         QuestionType `json:"type" validate:"required,question_type"`
	Title        string       `json:"title"`
	Instructions string       `json:"instructions"`
	Question     string       `json:"question"`

	// Feedback shown after checking
	Justification     string `json:"justification,omitempty"`
	CorrectFeedback   string `json:"correct_feedback,omitempty"`
	IncorrectFeedback string `json:"incorrect_feedback,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`

	// multiple_choice / listening_multiple_choice
	Options   []string `json:"options,omitempty"`
	Answer    string   `json:"answer,omitempty"`
	AudioFile string   `json:"audio_file,omitempty"`

	// drag_and_drop
	Blanks           []Blank  `json:"blanks,omitempty"`
	DraggableOptions []string `json:"draggable_options,omitempty"`

	// listening_writing
	ModelAnswer string `json:"model_answer,omitempty"`

	// speaking_repetition
	SentenceToRepeat string `json:"sentence_to_repeat,omitempty"`
	AudioModelFile   string `json:"audio_model_file,omitempty"`
}

// Subtopic is the smallest unlockable content unit: an ordered sequence of
// questions plus the grammar theory shown alongside them.
type Subtopic struct {
	ID          string     `json:"subtopic_id" validate:"required"`
	UnitID      string     `json:"unit_id"`
	Title       string     `json:"subtopic_title"`
	Description string     `json:"description,omitempty"`
	Usage       string     `json:"usage,omitempty"`
	Examples    []string   `json:"examples,omitempty"`
	Image       string     `json:"image,omitempty"`
	Order       int        `json:"order"`
	Questions   []Question `json:"games"`
}

// Unit is a collection of subtopics; a unit is complete when all of its
// subtopics are complete.
type Unit struct {
	ID          string     `json:"unit_id" validate:"required"`
	Title       string     `json:"unit_title"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	Subtopics   []Subtopic `json:"subtopics"`
}
