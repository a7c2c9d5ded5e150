package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguabridge/learning-service/internal/cache"
	"github.com/linguabridge/learning-service/internal/content"
	"github.com/linguabridge/learning-service/internal/events"
	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/progress"
	"github.com/linguabridge/learning-service/internal/repositories"
	"github.com/linguabridge/learning-service/internal/session"
	"github.com/linguabridge/learning-service/internal/utils"
	"github.com/linguabridge/learning-service/internal/validator"
)

// ===== TEST DOUBLES =====

type fakeProgressRepo struct {
	docs   map[string]*models.UnitProgress
	putErr error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{docs: make(map[string]*models.UnitProgress)}
}

func (f *fakeProgressRepo) Get(_ context.Context, userID, unitID string) (*models.UnitProgress, error) {
	doc, ok := f.docs[userID+"/"+unitID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *doc
	return &c, nil
}

func (f *fakeProgressRepo) Put(_ context.Context, p *models.UnitProgress) error {
	if f.putErr != nil {
		return f.putErr
	}
	c := *p
	f.docs[p.UserID+"/"+p.UnitID] = &c
	return nil
}

func (f *fakeProgressRepo) GetByUser(_ context.Context, userID string) ([]*models.UnitProgress, error) {
	var out []*models.UnitProgress
	for _, doc := range f.docs {
		if doc.UserID == userID {
			c := *doc
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) Delete(_ context.Context, userID string) error {
	for k, doc := range f.docs {
		if doc.UserID == userID {
			delete(f.docs, k)
		}
	}
	return nil
}

// noopCache always misses; invalidations are recorded.
type noopCache struct {
	deletedPatterns []string
}

func (n *noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (n *noopCache) Get(context.Context, string, interface{}) error                { return cache.ErrCacheMiss }
func (n *noopCache) Delete(context.Context, string) error                          { return nil }
func (n *noopCache) DeletePattern(_ context.Context, pattern string) error {
	n.deletedPatterns = append(n.deletedPatterns, pattern)
	return nil
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mcQuestion(id, answer string) models.Question {
	return models.Question{
		ID:       id,
		Type:     models.MultipleChoice,
		Question: "Pick " + answer,
		Options:  []string{"a", "b"},
		Answer:   answer,
	}
}

func testLibrary(t *testing.T) *content.Library {
	t.Helper()
	lib := content.NewLibrary(utils.NewSlogLogger(testLogger()))
	require.NoError(t, lib.ReplaceUnits([]models.Unit{
		{
			ID:    "unit_1",
			Order: 1,
			Subtopics: []models.Subtopic{
				{
					ID:    "sub_1",
					Order: 1,
					Questions: []models.Question{
						mcQuestion("q1", "b"),
						mcQuestion("q2", "a"),
						mcQuestion("q3", "b"),
						mcQuestion("q4", "a"),
					},
				},
				{ID: "sub_2", Order: 2, Questions: []models.Question{mcQuestion("q5", "a")}},
			},
		},
		{
			ID:    "unit_2",
			Order: 2,
			Subtopics: []models.Subtopic{
				{ID: "sub_3", Order: 1, Questions: []models.Question{mcQuestion("q6", "a")}},
			},
		},
	}))
	return lib
}

type serviceFixture struct {
	svc       SessionService
	repo      *fakeProgressRepo
	publisher *events.MockEventPublisher
	cache     *noopCache
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newFakeProgressRepo()
	lib := testLibrary(t)
	logger := testLogger()
	engine := progress.NewEngine(repo, lib, utils.NewSlogLogger(logger))
	publisher := events.NewMockEventPublisher(logger)
	cacheSvc := &noopCache{}

	return &serviceFixture{
		svc:       NewSessionService(lib, engine, publisher, cacheSvc, logger, validator.New()),
		repo:      repo,
		publisher: publisher,
		cache:     cacheSvc,
	}
}

func startSession(t *testing.T, f *serviceFixture) *SessionView {
	t.Helper()
	view, err := f.svc.Start(context.Background(), &StartSessionRequest{
		UserID:     "user-1",
		SubtopicID: "sub_1",
	})
	require.NoError(t, err)
	return view
}

// answerAndCheck answers the current question and checks it.
func answerAndCheck(t *testing.T, f *serviceFixture, sessionID, answer string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SetAnswer(ctx, sessionID, &AnswerRequest{Answer: answer})
	require.NoError(t, err)
	_, err = f.svc.Check(ctx, sessionID)
	require.NoError(t, err)
}

// ===== TESTS =====

func TestSessionService_StartReturnsFirstQuestion(t *testing.T) {
	f := newServiceFixture(t)
	view := startSession(t, f)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, models.SessionInProgress, view.Status)
	assert.Equal(t, 0, view.CurrentIndex)
	assert.Equal(t, 4, view.TotalQuestions)
	require.NotNil(t, view.Question)
	assert.Equal(t, "q1", view.Question.ID)
}

func TestSessionService_StartRejectsLockedSubtopic(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Start(context.Background(), &StartSessionRequest{
		UserID:     "user-1",
		SubtopicID: "sub_2",
	})
	assert.ErrorIs(t, err, ErrSubtopicLocked)
}

func TestSessionService_StartUnknownSubtopic(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Start(context.Background(), &StartSessionRequest{
		UserID:     "user-1",
		SubtopicID: "sub_99",
	})
	assert.ErrorIs(t, err, ErrSubtopicNotFound)
}

func TestSessionService_StartValidatesRequest(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Start(context.Background(), &StartSessionRequest{SubtopicID: "sub_1"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSessionService_UnknownSession(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_AnswerDoesNotLeakSolution(t *testing.T) {
	f := newServiceFixture(t)
	view := startSession(t, f)

	next, err := f.svc.SetAnswer(context.Background(), view.ID, &AnswerRequest{Answer: "b"})
	require.NoError(t, err)
	require.NotNil(t, next.State)
	assert.Equal(t, "b", next.State.UserAnswer)
	assert.False(t, next.State.IsChecked)
}

func TestSessionService_FullRunPartialScore(t *testing.T) {
	// Answer three of four questions, two of them correctly, skip the
	// last. Score is 67 and below the threshold, so nothing unlocks but
	// the score still lands in the progress document.
	f := newServiceFixture(t)
	view := startSession(t, f)
	ctx := context.Background()

	answerAndCheck(t, f, view.ID, "b") // q1 correct
	_, err := f.svc.Next(ctx, view.ID)
	require.NoError(t, err)

	answerAndCheck(t, f, view.ID, "a") // q2 correct
	_, err = f.svc.Next(ctx, view.ID)
	require.NoError(t, err)

	answerAndCheck(t, f, view.ID, "a") // q3 wrong
	_, err = f.svc.Next(ctx, view.ID)
	require.NoError(t, err)

	results, err := f.svc.Next(ctx, view.ID) // skip q4
	require.NoError(t, err)
	assert.Equal(t, models.SessionShowingResults, results.Status)
	require.NotNil(t, results.Summary)
	assert.Equal(t, 67, results.Summary.Percentage)

	finish, err := f.svc.Finish(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, finish.ProgressSaved)
	require.NotNil(t, finish.Completion)
	assert.False(t, finish.Completion.Passed)

	doc, err := f.repo.Get(ctx, "user-1", "unit_1")
	require.NoError(t, err, "failed session still records its score")
	states, err := doc.SubtopicList()
	require.NoError(t, err)
	assert.Equal(t, 67, states[0].Score)
	assert.False(t, states[0].IsCompleted)
	assert.True(t, states[1].IsLocked)

	// Completion event still goes out for a failed session.
	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventExerciseCompleted, f.publisher.Events[0].Type)
}

func TestSessionService_PerfectRunUnlocksNext(t *testing.T) {
	f := newServiceFixture(t)
	view := startSession(t, f)
	ctx := context.Background()

	for _, answer := range []string{"b", "a", "b", "a"} {
		answerAndCheck(t, f, view.ID, answer)
		_, err := f.svc.Next(ctx, view.ID)
		require.NoError(t, err)
	}

	finish, err := f.svc.Finish(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, finish.Summary.Percentage)
	require.NotNil(t, finish.Completion)
	assert.True(t, finish.Completion.Passed)
	assert.Equal(t, "sub_2", finish.Completion.UnlockedSubtopic)
	assert.Contains(t, f.cache.deletedPatterns, "progress:user-1:*")

	// The cascade result is mirrored on the bus.
	require.Len(t, f.publisher.Events, 2)
	assert.Equal(t, events.EventExerciseCompleted, f.publisher.Events[0].Type)
	assert.Equal(t, events.EventSubtopicUnlocked, f.publisher.Events[1].Type)
	unlocked, ok := f.publisher.Events[1].Data.(events.SubtopicUnlockedEvent)
	require.True(t, ok)
	assert.Equal(t, "unit_1", unlocked.UnitID)
	assert.Equal(t, "sub_2", unlocked.SubtopicID)

	// The unlocked subtopic can now start.
	_, err = f.svc.Start(ctx, &StartSessionRequest{UserID: "user-1", SubtopicID: "sub_2"})
	require.NoError(t, err)
}

func TestSessionService_UnitCompletionPublishesEvents(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	view := startSession(t, f)
	for _, answer := range []string{"b", "a", "b", "a"} {
		answerAndCheck(t, f, view.ID, answer)
		_, err := f.svc.Next(ctx, view.ID)
		require.NoError(t, err)
	}
	_, err := f.svc.Finish(ctx, view.ID)
	require.NoError(t, err)

	// Completing sub_2 finishes unit_1 and opens unit_2's first subtopic.
	view2, err := f.svc.Start(ctx, &StartSessionRequest{UserID: "user-1", SubtopicID: "sub_2"})
	require.NoError(t, err)
	answerAndCheck(t, f, view2.ID, "a")
	_, err = f.svc.Next(ctx, view2.ID)
	require.NoError(t, err)
	finish, err := f.svc.Finish(ctx, view2.ID)
	require.NoError(t, err)
	assert.True(t, finish.Completion.UnitCompleted)

	types := make([]events.EventType, 0, len(f.publisher.Events))
	for _, e := range f.publisher.Events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventUnitCompleted)

	var lastUnlock events.SubtopicUnlockedEvent
	for _, e := range f.publisher.Events {
		if data, ok := e.Data.(events.SubtopicUnlockedEvent); ok {
			lastUnlock = data
		}
	}
	assert.Equal(t, "unit_2", lastUnlock.UnitID, "cross-unit unlock names the new unit")
	assert.Equal(t, "sub_3", lastUnlock.SubtopicID)
}

func TestSessionService_FinishRequiresResultsScreen(t *testing.T) {
	f := newServiceFixture(t)
	view := startSession(t, f)

	_, err := f.svc.Finish(context.Background(), view.ID)
	assert.ErrorIs(t, err, session.ErrResultsNotReached)
}

func TestSessionService_DoubleFinishRejected(t *testing.T) {
	f := newServiceFixture(t)
	view := startSession(t, f)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.Next(ctx, view.ID)
		require.NoError(t, err)
	}
	_, err := f.svc.Finish(ctx, view.ID)
	require.NoError(t, err)

	_, err = f.svc.Finish(ctx, view.ID)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestSessionService_ProgressWriteFailureSurfacedAsWarning(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.putErr = errors.New("connection reset")
	view := startSession(t, f)
	ctx := context.Background()

	for _, answer := range []string{"b", "a", "b", "a"} {
		answerAndCheck(t, f, view.ID, answer)
		_, err := f.svc.Next(ctx, view.ID)
		require.NoError(t, err)
	}

	finish, err := f.svc.Finish(ctx, view.ID)
	require.NoError(t, err, "session finish survives the storage failure")
	assert.False(t, finish.ProgressSaved)
	assert.NotEmpty(t, finish.Warning)
	assert.Equal(t, 100, finish.Summary.Percentage)
}

func TestSessionService_TryAgainFromResults(t *testing.T) {
	f := newServiceFixture(t)
	view := startSession(t, f)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.Next(ctx, view.ID)
		require.NoError(t, err)
	}

	restarted, err := f.svc.TryAgain(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, restarted.Status)
	assert.Equal(t, 0, restarted.CurrentIndex)
	require.NotNil(t, restarted.State)
	assert.False(t, restarted.State.IsChecked)
}
