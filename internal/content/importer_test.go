package content

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/linguabridge/learning-service/internal/utils"
)

var workbookHeader = []interface{}{
	"unit_id", "unit_title", "unit_order",
	"subtopic_id", "subtopic_title", "subtopic_order",
	"game_id", "type", "instructions", "question", "answer",
	"options", "audio_file", "blanks", "draggable_options",
	"model_answer", "sentence_to_repeat", "audio_model_file",
	"justification", "correct_feedback", "incorrect_feedback",
}

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &workbookHeader))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImporter_ImportWorkbook(t *testing.T) {
	im := NewImporter(utils.NewDevelopmentLogger())

	buf := buildWorkbook(t, [][]interface{}{
		{
			"unit_1", "Present Simple", "1",
			"sub_1", "Affirmatives", "1",
			"g1", "multiple_choice", "", "He ___ tennis every day.", "plays",
			"play|plays", "", "", "",
			"", "", "",
			"Third person adds -s.", "Well done!", "Check the verb ending.",
		},
		{
			"unit_1", "Present Simple", "1",
			"sub_1", "Affirmatives", "1",
			"g2", "drag_and_drop", "Fill the gap", "She ___ early", "",
			"", "", "0:wakes", "wakes|wake",
			"", "", "",
			"", "", "",
		},
		{
			"unit_2", "Past Simple", "2",
			"sub_2", "Irregular verbs", "1",
			"g3", "listening_writing", "Write what you hear", "", "",
			"", "audio/u2.mp3", "", "",
			"he went home", "", "",
			"", "", "",
		},
	})

	units, summary, err := im.ImportWorkbook(buf)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 3, summary.SuccessCount)
	assert.Equal(t, 0, summary.ErrorCount)
	assert.Equal(t, 2, summary.ImportedUnits)
	assert.Equal(t, 3, summary.CreatedQuestions)

	require.Len(t, units, 2)
	assert.Equal(t, "unit_1", units[0].ID)
	require.Len(t, units[0].Subtopics, 1)
	require.Len(t, units[0].Subtopics[0].Questions, 2)

	dnd := units[0].Subtopics[0].Questions[1]
	require.Len(t, dnd.Blanks, 1)
	assert.Equal(t, "wakes", dnd.Blanks[0].CorrectAnswer)
	assert.Equal(t, []string{"wakes", "wake"}, dnd.DraggableOptions)
}

func TestImporter_RowErrorsAreCollected(t *testing.T) {
	im := NewImporter(utils.NewDevelopmentLogger())

	buf := buildWorkbook(t, [][]interface{}{
		{
			"unit_1", "Present Simple", "1",
			"sub_1", "Affirmatives", "1",
			"g1", "multiple_choice", "", "Pick", "nope",
			"a|b", "", "", "",
			"", "", "", "", "", "",
		},
		{
			"unit_1", "Present Simple", "1",
			"sub_1", "Affirmatives", "1",
			"g2", "multiple_choice", "", "He ___ tennis.", "plays",
			"play|plays", "", "", "",
			"", "", "", "", "", "",
		},
	})

	units, summary, err := im.ImportWorkbook(buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 1, summary.ErrorCount)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Errors[0].Row, "spreadsheet row number, not index")

	require.Len(t, units, 1)
	assert.Len(t, units[0].Subtopics[0].Questions, 1, "valid rows still import")
}

func TestImporter_EmptyWorkbook(t *testing.T) {
	im := NewImporter(utils.NewDevelopmentLogger())
	buf := buildWorkbook(t, nil)

	_, _, err := im.ImportWorkbook(buf)
	assert.Error(t, err)
}
