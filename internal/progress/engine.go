package progress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/repositories"
	"github.com/linguabridge/learning-service/internal/utils"
)

// CompletionThreshold is the minimum session score that completes a
// subtopic and triggers the unlock cascade.
const CompletionThreshold = 80

// ContentSource gives the engine the curriculum shape it cascades over.
// Units and their subtopics are expected in ascending Order.
type ContentSource interface {
	Units() []models.Unit
	Unit(unitID string) (*models.Unit, error)
	UnitForSubtopic(subtopicID string) (*models.Unit, *models.Subtopic, error)
}

// CompletionResult reports what a completion attempt changed.
type CompletionResult struct {
	Passed            bool   `json:"passed"`
	Score             int    `json:"score"`
	SubtopicCompleted bool   `json:"subtopic_completed"`
	UnitCompleted     bool   `json:"unit_completed"`
	UnlockedSubtopic  string `json:"unlocked_subtopic,omitempty"`
	UnlockedUnit      string `json:"unlocked_unit,omitempty"`
}

// Engine applies finished exercise sessions to the learner's persisted
// progress: marking subtopics complete and unlocking whatever the
// completion makes reachable.
type Engine struct {
	repo    repositories.ProgressRepository
	content ContentSource
	logger  utils.Logger
}

func NewEngine(repo repositories.ProgressRepository, content ContentSource, logger utils.Logger) *Engine {
	return &Engine{
		repo:    repo,
		content: content,
		logger:  logger,
	}
}

// ApplyCompletion records a finished session for the subtopic. The score is
// always written (last-write-wins, so a weaker re-attempt still shows); only
// at or above the threshold is the subtopic marked complete and the next
// subtopic unlocked. Completing the last subtopic of a unit completes the
// unit and unlocks the first subtopic of the next one. A sub-threshold score
// never revokes a completion the learner already earned.
func (e *Engine) ApplyCompletion(ctx context.Context, userID, subtopicID string, score int) (*CompletionResult, error) {
	result := &CompletionResult{Score: score, Passed: score >= CompletionThreshold}

	unit, subtopic, err := e.content.UnitForSubtopic(subtopicID)
	if err != nil {
		return nil, fmt.Errorf("resolving subtopic %s: %w", subtopicID, err)
	}

	doc, err := e.loadOrDefault(ctx, userID, unit)
	if err != nil {
		return nil, err
	}
	states, err := doc.SubtopicList()
	if err != nil {
		return nil, fmt.Errorf("decoding progress for unit %s: %w", unit.ID, err)
	}

	now := time.Now().UTC()
	found := false
	completedAll := true
	for i := range states {
		if states[i].SubtopicID == subtopicID {
			found = true
			states[i].Score = score
			if result.Passed {
				states[i].IsCompleted = true
				states[i].IsLocked = false
				states[i].CompletedAt = &now
				result.SubtopicCompleted = true
			}
		}
		if !states[i].IsCompleted {
			completedAll = false
		}
	}
	if !found {
		return nil, fmt.Errorf("subtopic %s not present in unit %s progress", subtopicID, unit.ID)
	}

	if result.Passed {
		// Unlock the next subtopic of the same unit, if any.
		if next := nextSubtopic(unit, subtopic); next != nil {
			for i := range states {
				if states[i].SubtopicID == next.ID && states[i].IsLocked {
					states[i].IsLocked = false
					result.UnlockedSubtopic = next.ID
				}
			}
		}
		doc.IsUnitCompleted = completedAll
		result.UnitCompleted = completedAll
	}

	if err := doc.SetSubtopicList(states); err != nil {
		return nil, err
	}
	if err := e.repo.Put(ctx, doc); err != nil {
		e.logger.LogError(err, "Failed to save unit progress",
			"user_id", userID, "unit_id", unit.ID)
		return nil, fmt.Errorf("saving progress for unit %s: %w", unit.ID, err)
	}

	// Crossing a unit boundary unlocks the next unit's first subtopic.
	// The two documents are written sequentially without a transaction; a
	// failure here leaves the completed unit saved and is surfaced to the
	// caller.
	if result.Passed && completedAll {
		if err := e.unlockNextUnit(ctx, userID, unit, result); err != nil {
			return result, err
		}
	}

	e.logger.Info("Applied subtopic completion",
		"user_id", userID,
		"subtopic_id", subtopicID,
		"score", score,
		"unit_completed", result.UnitCompleted,
		"unlocked_subtopic", result.UnlockedSubtopic,
		"unlocked_unit", result.UnlockedUnit)
	return result, nil
}

func (e *Engine) unlockNextUnit(ctx context.Context, userID string, unit *models.Unit, result *CompletionResult) error {
	next := nextUnit(e.content.Units(), unit)
	if next == nil || len(next.Subtopics) == 0 {
		return nil
	}

	doc, err := e.loadOrDefault(ctx, userID, next)
	if err != nil {
		return err
	}
	states, err := doc.SubtopicList()
	if err != nil {
		return fmt.Errorf("decoding progress for unit %s: %w", next.ID, err)
	}

	first := next.Subtopics[0].ID
	changed := false
	for i := range states {
		if states[i].SubtopicID == first && states[i].IsLocked {
			states[i].IsLocked = false
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := doc.SetSubtopicList(states); err != nil {
		return err
	}
	if err := e.repo.Put(ctx, doc); err != nil {
		e.logger.LogError(err, "Failed to unlock next unit",
			"user_id", userID, "unit_id", next.ID)
		return fmt.Errorf("unlocking unit %s: %w", next.ID, err)
	}
	result.UnlockedUnit = next.ID
	result.UnlockedSubtopic = first
	return nil
}

// EnsureInitialProgress seeds progress documents for every unit the first
// time a learner shows up. Everything starts locked except the first
// subtopic of the first unit. Existing documents are left alone.
func (e *Engine) EnsureInitialProgress(ctx context.Context, userID string) error {
	units := e.content.Units()
	for unitIdx, unit := range units {
		if _, err := e.repo.Get(ctx, userID, unit.ID); err == nil {
			continue
		} else if !repositories.IsNotFound(err) {
			return fmt.Errorf("checking progress for unit %s: %w", unit.ID, err)
		}

		doc := defaultDocument(userID, &units[unitIdx], unitIdx == 0)
		if err := e.repo.Put(ctx, doc); err != nil {
			return fmt.Errorf("seeding progress for unit %s: %w", unit.ID, err)
		}
	}
	e.logger.Info("Seeded initial progress", "user_id", userID, "units", len(units))
	return nil
}

// Snapshot returns the learner's progress for every unit, synthesizing a
// default document for units without one so the caller always sees the
// full curriculum.
func (e *Engine) Snapshot(ctx context.Context, userID string) ([]*models.UnitProgress, error) {
	stored, err := e.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading progress for user %s: %w", userID, err)
	}
	byUnit := make(map[string]*models.UnitProgress, len(stored))
	for _, doc := range stored {
		byUnit[doc.UnitID] = doc
	}

	units := e.content.Units()
	out := make([]*models.UnitProgress, 0, len(units))
	for i := range units {
		if doc, ok := byUnit[units[i].ID]; ok {
			out = append(out, doc)
			continue
		}
		out = append(out, defaultDocument(userID, &units[i], i == 0))
	}
	return out, nil
}

// IsSubtopicUnlocked reports whether the learner may start the subtopic.
// Without a stored document only the first subtopic of the first unit is
// open.
func (e *Engine) IsSubtopicUnlocked(ctx context.Context, userID, subtopicID string) (bool, error) {
	unit, _, err := e.content.UnitForSubtopic(subtopicID)
	if err != nil {
		return false, err
	}

	doc, err := e.repo.Get(ctx, userID, unit.ID)
	if repositories.IsNotFound(err) {
		units := e.content.Units()
		isFirstUnit := len(units) > 0 && units[0].ID == unit.ID
		return isFirstUnit && len(unit.Subtopics) > 0 && unit.Subtopics[0].ID == subtopicID, nil
	}
	if err != nil {
		return false, err
	}

	states, err := doc.SubtopicList()
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if s.SubtopicID == subtopicID {
			return !s.IsLocked, nil
		}
	}
	return false, nil
}

// RecentCompletions returns the learner's most recently completed
// subtopics, newest first, capped at limit.
func (e *Engine) RecentCompletions(ctx context.Context, userID string, limit int) ([]models.CompletedSubtopic, error) {
	stored, err := e.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading progress for user %s: %w", userID, err)
	}

	var completed []models.CompletedSubtopic
	for _, doc := range stored {
		states, err := doc.SubtopicList()
		if err != nil {
			return nil, err
		}
		for _, s := range states {
			if s.IsCompleted {
				completed = append(completed, models.CompletedSubtopic{
					UnitID:      doc.UnitID,
					SubtopicID:  s.SubtopicID,
					Score:       s.Score,
					CompletedAt: s.CompletedAt,
				})
			}
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		ti, tj := completed[i].CompletedAt, completed[j].CompletedAt
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ti.After(*tj)
	})
	if limit > 0 && len(completed) > limit {
		completed = completed[:limit]
	}
	return completed, nil
}

func (e *Engine) loadOrDefault(ctx context.Context, userID string, unit *models.Unit) (*models.UnitProgress, error) {
	doc, err := e.repo.Get(ctx, userID, unit.ID)
	if err == nil {
		return doc, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, fmt.Errorf("loading progress for unit %s: %w", unit.ID, err)
	}

	units := e.content.Units()
	isFirstUnit := len(units) > 0 && units[0].ID == unit.ID
	return defaultDocument(userID, unit, isFirstUnit), nil
}

// defaultDocument builds the all-locked progress document for a unit. The
// first subtopic starts unlocked only in the first unit.
func defaultDocument(userID string, unit *models.Unit, firstUnit bool) *models.UnitProgress {
	states := make([]models.SubtopicProgress, len(unit.Subtopics))
	for i, sub := range unit.Subtopics {
		states[i] = models.SubtopicProgress{
			SubtopicID: sub.ID,
			IsLocked:   !(firstUnit && i == 0),
		}
	}

	doc := &models.UnitProgress{
		UserID: userID,
		UnitID: unit.ID,
	}
	// Marshal cannot fail for this shape.
	_ = doc.SetSubtopicList(states)
	return doc
}

func nextSubtopic(unit *models.Unit, current *models.Subtopic) *models.Subtopic {
	for i := range unit.Subtopics {
		if unit.Subtopics[i].ID == current.ID && i+1 < len(unit.Subtopics) {
			return &unit.Subtopics[i+1]
		}
	}
	return nil
}

func nextUnit(units []models.Unit, current *models.Unit) *models.Unit {
	for i := range units {
		if units[i].ID == current.ID && i+1 < len(units) {
			return &units[i+1]
		}
	}
	return nil
}
