package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/linguabridge/learning-service/internal/content"
	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/progress"
)

type contentService struct {
	library  *content.Library
	importer *content.Importer
	engine   *progress.Engine
	logger   *slog.Logger
}

func NewContentService(library *content.Library, importer *content.Importer, engine *progress.Engine, logger *slog.Logger) ContentService {
	return &contentService{
		library:  library,
		importer: importer,
		engine:   engine,
		logger:   logger,
	}
}

// ListUnits returns every unit with the learner's lock and completion state
// folded into each subtopic.
func (s *contentService) ListUnits(ctx context.Context, userID string) ([]UnitSummary, error) {
	docs, err := s.engine.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	stateByUnit, err := indexProgress(docs)
	if err != nil {
		return nil, err
	}

	units := s.library.Units()
	out := make([]UnitSummary, 0, len(units))
	for i := range units {
		out = append(out, buildUnitSummary(&units[i], stateByUnit[units[i].ID]))
	}
	return out, nil
}

func (s *contentService) GetUnit(ctx context.Context, unitID, userID string) (*UnitSummary, error) {
	unit, err := s.library.Unit(unitID)
	if err != nil {
		return nil, ErrUnitNotFound
	}

	docs, err := s.engine.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	stateByUnit, err := indexProgress(docs)
	if err != nil {
		return nil, err
	}

	summary := buildUnitSummary(unit, stateByUnit[unit.ID])
	return &summary, nil
}

// Import parses a curriculum workbook and merges the resulting units into
// the library. Row-level failures are reported in the summary; the valid
// rows still land.
func (s *contentService) Import(ctx context.Context, workbook io.Reader) (*models.ImportSummary, error) {
	units, summary, err := s.importer.ImportWorkbook(workbook)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	if len(units) > 0 {
		if err := s.library.ReplaceUnits(units); err != nil {
			return nil, fmt.Errorf("merging imported units: %w", err)
		}
	}

	s.logger.Info("Curriculum import applied",
		"units", summary.ImportedUnits,
		"questions", summary.CreatedQuestions,
		"errors", summary.ErrorCount)
	return summary, nil
}

type unitState struct {
	completed bool
	subtopics map[string]models.SubtopicProgress
}

func indexProgress(docs []*models.UnitProgress) (map[string]unitState, error) {
	out := make(map[string]unitState, len(docs))
	for _, doc := range docs {
		states, err := doc.SubtopicList()
		if err != nil {
			return nil, fmt.Errorf("decoding progress for unit %s: %w", doc.UnitID, err)
		}
		st := unitState{
			completed: doc.IsUnitCompleted,
			subtopics: make(map[string]models.SubtopicProgress, len(states)),
		}
		for _, sp := range states {
			st.subtopics[sp.SubtopicID] = sp
		}
		out[doc.UnitID] = st
	}
	return out, nil
}

func buildUnitSummary(unit *models.Unit, state unitState) UnitSummary {
	summary := UnitSummary{
		ID:          unit.ID,
		Title:       unit.Title,
		Description: unit.Description,
		Order:       unit.Order,
		IsCompleted: state.completed,
		Subtopics:   make([]SubtopicSummary, 0, len(unit.Subtopics)),
	}
	for i := range unit.Subtopics {
		sub := &unit.Subtopics[i]

		// Subtopics without a stored state default to locked; the engine
		// only leaves the first subtopic of the first unit open.
		sp, ok := state.subtopics[sub.ID]
		if !ok {
			sp = models.SubtopicProgress{SubtopicID: sub.ID, IsLocked: true}
		}

		summary.Subtopics = append(summary.Subtopics, SubtopicSummary{
			ID:            sub.ID,
			Title:         sub.Title,
			Description:   sub.Description,
			Usage:         sub.Usage,
			Examples:      sub.Examples,
			Image:         sub.Image,
			Order:         sub.Order,
			QuestionCount: len(sub.Questions),
			IsLocked:      sp.IsLocked,
			IsCompleted:   sp.IsCompleted,
			Score:         sp.Score,
		})
	}
	return summary
}
