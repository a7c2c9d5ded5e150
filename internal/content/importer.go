package content

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/utils"
	"github.com/linguabridge/learning-service/internal/validator"
)

// Importer reads curriculum workbooks and turns them into units. Each
// spreadsheet row is one question; unit and subtopic columns group rows.
type Importer struct {
	logger utils.Logger
}

// Workbook column layout, one question per row.
const (
	colUnitID = iota
	colUnitTitle
	colUnitOrder
	colSubtopicID
	colSubtopicTitle
	colSubtopicOrder
	colQuestionID
	colQuestionType
	colInstructions
	colQuestionText
	colAnswer
	colOptions
	colAudioFile
	colBlanks
	colDraggableOptions
	colModelAnswer
	colSentenceToRepeat
	colAudioModelFile
	colJustification
	colCorrectFeedback
	colIncorrectFeedback
	columnCount
)

// Multi-value cells use "|" between entries; blank cells use "id:answer"
// pairs separated by "|".
const cellSeparator = "|"

func NewImporter(logger utils.Logger) *Importer {
	return &Importer{logger: logger}
}

// ImportWorkbook parses the first sheet of an xlsx workbook. Rows that fail
// parsing or content validation are reported in the summary and skipped;
// valid rows still import.
func (im *Importer) ImportWorkbook(r io.Reader) ([]models.Unit, *models.ImportSummary, error) {
	start := time.Now()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("workbook has no data rows")
	}

	summary := &models.ImportSummary{TotalRows: len(rows) - 1}
	qv := validator.NewQuestionValidator()

	var units []models.Unit
	unitIndex := make(map[string]int)
	subIndex := make(map[string]map[string]int)

	for i, row := range rows[1:] { // skip header
		rowNum := i + 2
		summary.ProcessedRows++

		question, unitRef, subRef, err := parseRow(row)
		if err != nil {
			summary.Errors = append(summary.Errors, rowError(rowNum, err))
			continue
		}
		if err := qv.ValidateQuestion(question); err != nil {
			summary.Errors = append(summary.Errors, models.ImportRowError{
				Row: rowNum, Field: "type", Message: err.Error(),
			})
			continue
		}

		ui, ok := unitIndex[unitRef.ID]
		if !ok {
			units = append(units, *unitRef)
			ui = len(units) - 1
			unitIndex[unitRef.ID] = ui
			subIndex[unitRef.ID] = make(map[string]int)
		}
		si, ok := subIndex[unitRef.ID][subRef.ID]
		if !ok {
			subRef.UnitID = unitRef.ID
			units[ui].Subtopics = append(units[ui].Subtopics, *subRef)
			si = len(units[ui].Subtopics) - 1
			subIndex[unitRef.ID][subRef.ID] = si
		}
		units[ui].Subtopics[si].Questions = append(units[ui].Subtopics[si].Questions, *question)
		summary.SuccessCount++
		summary.CreatedQuestions++
	}

	summary.ErrorCount = len(summary.Errors)
	summary.ImportedUnits = len(units)
	summary.ProcessingTime = time.Since(start).String()

	im.logger.Info("Workbook imported",
		"rows", summary.TotalRows,
		"questions", summary.CreatedQuestions,
		"units", summary.ImportedUnits,
		"errors", summary.ErrorCount)
	return units, summary, nil
}

func parseRow(row []string) (*models.Question, *models.Unit, *models.Subtopic, error) {
	padded := make([]string, columnCount)
	copy(padded, row)
	for i := range padded {
		padded[i] = strings.TrimSpace(padded[i])
	}

	if padded[colUnitID] == "" {
		return nil, nil, nil, fmt.Errorf("unit_id is required")
	}
	if padded[colSubtopicID] == "" {
		return nil, nil, nil, fmt.Errorf("subtopic_id is required")
	}
	if padded[colQuestionID] == "" {
		return nil, nil, nil, fmt.Errorf("game_id is required")
	}

	unitOrder, err := parseOrder(padded[colUnitOrder])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unit order: %w", err)
	}
	subOrder, err := parseOrder(padded[colSubtopicOrder])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("subtopic order: %w", err)
	}

	blanks, err := parseBlanks(padded[colBlanks])
	if err != nil {
		return nil, nil, nil, err
	}

	question := &models.Question{
		ID:                padded[colQuestionID],
		Type:              models.QuestionType(padded[colQuestionType]),
		Instructions:      padded[colInstructions],
		Question:          padded[colQuestionText],
		Answer:            padded[colAnswer],
		Options:           splitCell(padded[colOptions]),
		AudioFile:         padded[colAudioFile],
		Blanks:            blanks,
		DraggableOptions:  splitCell(padded[colDraggableOptions]),
		ModelAnswer:       padded[colModelAnswer],
		SentenceToRepeat:  padded[colSentenceToRepeat],
		AudioModelFile:    padded[colAudioModelFile],
		Justification:     padded[colJustification],
		CorrectFeedback:   padded[colCorrectFeedback],
		IncorrectFeedback: padded[colIncorrectFeedback],
	}
	unit := &models.Unit{
		ID:    padded[colUnitID],
		Title: padded[colUnitTitle],
		Order: unitOrder,
	}
	subtopic := &models.Subtopic{
		ID:    padded[colSubtopicID],
		Title: padded[colSubtopicTitle],
		Order: subOrder,
	}
	return question, unit, subtopic, nil
}

func parseOrder(cell string) (int, error) {
	if cell == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", cell)
	}
	return n, nil
}

func splitCell(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, cellSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBlanks(cell string) ([]models.Blank, error) {
	if cell == "" {
		return nil, nil
	}
	var blanks []models.Blank
	for _, entry := range splitCell(cell) {
		id, answer, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("blank %q must be id:answer", entry)
		}
		blanks = append(blanks, models.Blank{
			ID:            strings.TrimSpace(id),
			CorrectAnswer: strings.TrimSpace(answer),
		})
	}
	return blanks, nil
}

func rowError(row int, err error) models.ImportRowError {
	return models.ImportRowError{Row: row, Message: err.Error()}
}
