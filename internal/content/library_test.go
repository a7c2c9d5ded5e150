package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/utils"
)

const unitFixture = `[
  {
    "unit_id": "unit_2",
    "unit_title": "Past Simple",
    "order": 2,
    "subtopics": [
      {
        "subtopic_id": "sub_3",
        "subtopic_title": "Irregular verbs",
        "order": 1,
        "games": [
          {
            "game_id": "g1",
            "type": "multiple_choice",
            "question": "She ___ to school yesterday.",
            "options": ["go", "went"],
            "answer": "went"
          }
        ]
      }
    ]
  },
  {
    "unit_id": "unit_1",
    "unit_title": "Present Simple",
    "order": 1,
    "subtopics": [
      {
        "subtopic_id": "sub_2",
        "subtopic_title": "Negatives",
        "order": 2,
        "games": [
          {
            "game_id": "g2",
            "type": "speaking_repetition",
            "instructions": "Repeat the sentence",
            "sentence_to_repeat": "I do not play tennis"
          }
        ]
      },
      {
        "subtopic_id": "sub_1",
        "subtopic_title": "Affirmatives",
        "order": 1,
        "games": [
          {
            "game_id": "g3",
            "type": "drag_and_drop",
            "question": "He ___ tennis",
            "blanks": [{"id": "0", "correct_answer": "plays"}],
            "draggable_options": ["plays", "play"]
          }
        ]
      }
    ]
  }
]`

func writeFixture(t *testing.T, name, data string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return dir
}

func TestLibrary_LoadDirSortsByOrder(t *testing.T) {
	lib := NewLibrary(utils.NewDevelopmentLogger())
	dir := writeFixture(t, "units.json", unitFixture)

	require.NoError(t, lib.LoadDir(dir))

	units := lib.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "unit_1", units[0].ID)
	assert.Equal(t, "unit_2", units[1].ID)

	require.Len(t, units[0].Subtopics, 2)
	assert.Equal(t, "sub_1", units[0].Subtopics[0].ID, "subtopics sorted by order")
	assert.Equal(t, "unit_1", units[0].Subtopics[0].UnitID, "unit id backfilled")
}

func TestLibrary_LoadDirRejectsInvalidQuestion(t *testing.T) {
	lib := NewLibrary(utils.NewDevelopmentLogger())
	dir := writeFixture(t, "bad.json", `{
	  "unit_id": "unit_1",
	  "subtopics": [{
	    "subtopic_id": "sub_1",
	    "games": [{
	      "game_id": "g1",
	      "type": "multiple_choice",
	      "question": "Pick one",
	      "options": ["only-one"],
	      "answer": "only-one"
	    }]
	  }]
	}`)

	err := lib.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 options")
}

func TestLibrary_LoadDirEmpty(t *testing.T) {
	lib := NewLibrary(utils.NewDevelopmentLogger())
	assert.Error(t, lib.LoadDir(t.TempDir()))
}

func TestLibrary_Lookups(t *testing.T) {
	lib := NewLibrary(utils.NewDevelopmentLogger())
	dir := writeFixture(t, "units.json", unitFixture)
	require.NoError(t, lib.LoadDir(dir))

	unit, err := lib.Unit("unit_2")
	require.NoError(t, err)
	assert.Equal(t, "Past Simple", unit.Title)

	sub, err := lib.Subtopic("sub_2")
	require.NoError(t, err)
	assert.Equal(t, "Negatives", sub.Title)

	owner, sub, err := lib.UnitForSubtopic("sub_3")
	require.NoError(t, err)
	assert.Equal(t, "unit_2", owner.ID)
	assert.Equal(t, "sub_3", sub.ID)

	_, err = lib.Unit("unit_99")
	assert.Error(t, err)
	_, err = lib.Subtopic("sub_99")
	assert.Error(t, err)
}

func TestLibrary_ReplaceUnitsUpserts(t *testing.T) {
	lib := NewLibrary(utils.NewDevelopmentLogger())
	dir := writeFixture(t, "units.json", unitFixture)
	require.NoError(t, lib.LoadDir(dir))

	require.NoError(t, lib.ReplaceUnits([]models.Unit{
		{
			ID:    "unit_2",
			Title: "Past Simple (revised)",
			Order: 2,
			Subtopics: []models.Subtopic{{
				ID:    "sub_3",
				Order: 1,
				Questions: []models.Question{{
					ID:       "g9",
					Type:     models.MultipleChoice,
					Question: "They ___ home late.",
					Options:  []string{"come", "came"},
					Answer:   "came",
				}},
			}},
		},
		{
			ID:    "unit_3",
			Title: "Future",
			Order: 3,
			Subtopics: []models.Subtopic{{
				ID:    "sub_5",
				Order: 1,
				Questions: []models.Question{{
					ID:               "g10",
					Type:             models.SpeakingRepetition,
					Instructions:     "Repeat",
					SentenceToRepeat: "I will call you",
				}},
			}},
		},
	}))

	units := lib.Units()
	require.Len(t, units, 3)
	unit, err := lib.Unit("unit_2")
	require.NoError(t, err)
	assert.Equal(t, "Past Simple (revised)", unit.Title)
	assert.Equal(t, "unit_3", units[2].ID)
}
