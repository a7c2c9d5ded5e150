package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/linguabridge/learning-service/internal/cache"
	"github.com/linguabridge/learning-service/internal/content"
	"github.com/linguabridge/learning-service/internal/events"
	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/progress"
	"github.com/linguabridge/learning-service/internal/session"
	"github.com/linguabridge/learning-service/internal/validator"
)

// exerciseSession is one live session in the registry. The mutex orders
// concurrent operations on the same session; finished guards double-finish.
type exerciseSession struct {
	mu         sync.Mutex
	id         string
	userID     string
	unitID     string
	subtopicID string
	controller *session.Controller
	finished   bool
}

type sessionService struct {
	library   *content.Library
	progress  *progress.Engine
	publisher events.EventPublisher
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator

	mu       sync.RWMutex
	sessions map[string]*exerciseSession
}

func NewSessionService(
	library *content.Library,
	engine *progress.Engine,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	logger *slog.Logger,
	v *validator.Validator,
) SessionService {
	return &sessionService{
		library:   library,
		progress:  engine,
		publisher: publisher,
		cache:     cacheService,
		logger:    logger,
		validator: v,
		sessions:  make(map[string]*exerciseSession),
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	s.logger.Info("Starting exercise session",
		"user_id", req.UserID,
		"subtopic_id", req.SubtopicID)

	unit, subtopic, err := s.library.UnitForSubtopic(req.SubtopicID)
	if err != nil {
		return nil, ErrSubtopicNotFound
	}
	if len(subtopic.Questions) == 0 {
		return nil, ErrSubtopicEmpty
	}

	unlocked, err := s.progress.IsSubtopicUnlocked(ctx, req.UserID, req.SubtopicID)
	if err != nil {
		return nil, fmt.Errorf("checking lock state: %w", err)
	}
	if !unlocked {
		return nil, ErrSubtopicLocked
	}

	questions := make([]models.Question, len(subtopic.Questions))
	copy(questions, subtopic.Questions)

	controller, err := session.NewController(questions, s.validator.Answer())
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	es := &exerciseSession{
		id:         uuid.NewString(),
		userID:     req.UserID,
		unitID:     unit.ID,
		subtopicID: subtopic.ID,
		controller: controller,
	}

	s.mu.Lock()
	s.sessions[es.id] = es
	s.mu.Unlock()

	s.logger.Info("Exercise session started",
		"session_id", es.id,
		"user_id", req.UserID,
		"questions", len(questions))
	return s.view(es)
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*SessionView, error) {
	es, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	return s.view(es)
}

// ===== ANSWERING =====

func (s *sessionService) SetAnswer(ctx context.Context, sessionID string, req *AnswerRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	return s.mutate(sessionID, func(es *exerciseSession) error {
		return es.controller.SetAnswer(req.Answer)
	})
}

func (s *sessionService) Check(ctx context.Context, sessionID string) (*models.CheckResult, error) {
	es, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	result, err := es.controller.CheckAnswer()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sessionService) Assign(ctx context.Context, sessionID string, req *AssignRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	return s.mutate(sessionID, func(es *exerciseSession) error {
		return es.controller.Assign(*req.BlankIndex, req.TokenID)
	})
}

func (s *sessionService) Unassign(ctx context.Context, sessionID string, req *UnassignRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	return s.mutate(sessionID, func(es *exerciseSession) error {
		return es.controller.Unassign(*req.BlankIndex)
	})
}

// ===== NAVIGATION =====

func (s *sessionService) Next(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.mutate(sessionID, func(es *exerciseSession) error {
		return es.controller.GoNext()
	})
}

func (s *sessionService) Previous(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.mutate(sessionID, func(es *exerciseSession) error {
		return es.controller.GoPrevious()
	})
}

func (s *sessionService) TryAgain(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.mutate(sessionID, func(es *exerciseSession) error {
		return es.controller.TryAgain()
	})
}

// ===== COMPLETION =====

func (s *sessionService) Finish(ctx context.Context, sessionID string) (*FinishSessionResponse, error) {
	es, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if es.finished {
		return nil, ErrSessionCompleted
	}
	if err := es.controller.Complete(); err != nil {
		return nil, err
	}
	es.finished = true

	summary := es.controller.Score()
	resp := &FinishSessionResponse{
		SessionID: es.id,
		Summary:   summary,
	}

	completion, err := s.progress.ApplyCompletion(ctx, es.userID, es.subtopicID, summary.Percentage)
	if err != nil {
		// The session result stands even when the progress write fails;
		// the client is told so it can retry later.
		s.logger.Error("Progress update failed after session finish",
			"session_id", es.id,
			"user_id", es.userID,
			"error", err)
		resp.Warning = "session finished but progress could not be saved"
	} else {
		resp.Completion = completion
		resp.ProgressSaved = true
		s.invalidateProgressCache(ctx, es.userID)
	}

	s.publishCompletion(ctx, es, summary, completion)

	s.logger.Info("Exercise session finished",
		"session_id", es.id,
		"user_id", es.userID,
		"score", summary.Percentage,
		"progress_saved", resp.ProgressSaved)
	return resp, nil
}

func (s *sessionService) publishCompletion(ctx context.Context, es *exerciseSession, summary models.ScoreSummary, completion *progress.CompletionResult) {
	payload := events.ExerciseCompletedEvent{
		UserID:         es.userID,
		UnitID:         es.unitID,
		SubtopicID:     es.subtopicID,
		Score:          summary.Percentage,
		CorrectCount:   summary.CorrectCount,
		AnsweredCount:  summary.AnsweredCount,
		ElapsedSeconds: summary.ElapsedSeconds,
	}
	if completion != nil {
		payload.Passed = completion.Passed
		payload.UnitCompleted = completion.UnitCompleted
		payload.UnlockedSubtopic = completion.UnlockedSubtopic
		payload.UnlockedUnit = completion.UnlockedUnit
	}

	s.publish(ctx, es.id, events.NewLearningEvent(events.EventExerciseCompleted, payload))
	if completion == nil {
		return
	}

	if completion.UnlockedSubtopic != "" {
		unlockedUnit := es.unitID
		if completion.UnlockedUnit != "" {
			unlockedUnit = completion.UnlockedUnit
		}
		s.publish(ctx, es.id, events.NewLearningEvent(events.EventSubtopicUnlocked, events.SubtopicUnlockedEvent{
			UserID:     es.userID,
			UnitID:     unlockedUnit,
			SubtopicID: completion.UnlockedSubtopic,
		}))
	}
	if completion.UnitCompleted {
		s.publish(ctx, es.id, events.NewLearningEvent(events.EventUnitCompleted, events.UnitCompletedEvent{
			UserID: es.userID,
			UnitID: es.unitID,
		}))
	}
}

func (s *sessionService) publish(ctx context.Context, sessionID string, event *events.LearningEvent) {
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		// Event delivery is best effort; the completion is already saved.
		s.logger.Warn("Failed to publish learning event",
			"session_id", sessionID,
			"event_type", event.Type,
			"error", err)
	}
}

func (s *sessionService) invalidateProgressCache(ctx context.Context, userID string) {
	if err := s.cache.DeletePattern(ctx, progressCachePattern(userID)); err != nil {
		s.logger.Warn("Failed to invalidate progress cache",
			"user_id", userID,
			"error", err)
	}
}

// ===== INTERNALS =====

func (s *sessionService) lookup(sessionID string) (*exerciseSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	es, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return es, nil
}

func (s *sessionService) mutate(sessionID string, op func(*exerciseSession) error) (*SessionView, error) {
	es, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	if err := op(es); err != nil {
		return nil, err
	}
	return s.view(es)
}

// view builds the client-facing snapshot. Callers must hold the session
// mutex (or be the only holder, as in Start).
func (s *sessionService) view(es *exerciseSession) (*SessionView, error) {
	c := es.controller
	v := &SessionView{
		ID:             es.id,
		UserID:         es.userID,
		UnitID:         es.unitID,
		SubtopicID:     es.subtopicID,
		Status:         c.Status(),
		CurrentIndex:   c.CurrentIndex(),
		TotalQuestions: c.Len(),
	}

	if c.Status() != models.SessionInProgress {
		summary := c.Score()
		v.Summary = &summary
		return v, nil
	}

	question, err := c.CurrentQuestion()
	if err != nil {
		return nil, err
	}
	state, err := c.CurrentState()
	if err != nil {
		return nil, err
	}
	v.Question = sanitizeQuestion(question)
	v.State = &state

	if tracker := c.Tracker(); tracker != nil {
		v.Drag = &DragView{
			Pool:        tracker.Pool(),
			Assignments: tracker.Assignments(),
		}
	}
	return v, nil
}

func sanitizeQuestion(q *models.Question) *QuestionView {
	return &QuestionView{
		ID:               q.ID,
		Type:             q.Type,
		Title:            q.Title,
		Instructions:     q.Instructions,
		Question:         q.Question,
		ImageURL:         q.ImageURL,
		Options:          q.Options,
		AudioFile:        q.AudioFile,
		BlankCount:       len(q.Blanks),
		SentenceToRepeat: q.SentenceToRepeat,
		AudioModelFile:   q.AudioModelFile,
		Unsupported:      !q.Type.IsSupported(),
	}
}

func progressCachePattern(userID string) string {
	return fmt.Sprintf("progress:%s:*", userID)
}
