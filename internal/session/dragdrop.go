package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/linguabridge/learning-service/internal/models"
)

var (
	ErrBlankOutOfRange = errors.New("blank index out of range")
	ErrTokenNotFound   = errors.New("token not found")
	ErrQuestionChecked = errors.New("question already checked")
	ErrBlankUnassigned = errors.New("blank has no assigned token")
	ErrNotDragAndDrop  = errors.New("question is not a drag and drop exercise")
)

// Token is a single draggable word in a drag-and-drop exercise. IDs are
// stable for the lifetime of the tracker so the client can address tokens
// across assign/unassign moves.
type Token struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// AssignmentTracker tracks which draggable tokens occupy which blanks for
// the current drag-and-drop question. Every token is either in the pool or
// in exactly one blank; moves conserve the token set.
type AssignmentTracker struct {
	question *models.Question
	pool     []Token
	assigned []*Token // one slot per blank, nil when empty
}

// NewAssignmentTracker builds a tracker for the question, seeding blank
// assignments from a previously stored flattened answer so navigating back
// to the question restores its visual state.
func NewAssignmentTracker(q *models.Question, storedAnswer string) (*AssignmentTracker, error) {
	if q.Type != models.DragAndDrop {
		return nil, ErrNotDragAndDrop
	}

	t := &AssignmentTracker{
		question: q,
		pool:     make([]Token, 0, len(q.DraggableOptions)),
		assigned: make([]*Token, len(q.Blanks)),
	}
	for i, text := range q.DraggableOptions {
		t.pool = append(t.pool, Token{
			ID:   fmt.Sprintf("opt-%s-%d", q.ID, i),
			Text: text,
		})
	}

	// The stored answer keeps only the token texts, so rebuild by matching
	// each word against an unused pool token. The flattened form is lossy:
	// it records no gaps, so a partial assignment with an empty earlier
	// blank re-packs left-to-right on restore.
	words := strings.Fields(storedAnswer)
	for i, word := range words {
		if i >= len(t.assigned) {
			break
		}
		for _, tok := range t.pool {
			if tok.Text == word {
				if err := t.Assign(i, tok.ID); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return t, nil
}

// Assign places the token into the blank at blankIndex. The token may come
// from the pool or from another blank; a token already occupying the target
// blank returns to the pool.
func (t *AssignmentTracker) Assign(blankIndex int, tokenID string) error {
	if blankIndex < 0 || blankIndex >= len(t.assigned) {
		return ErrBlankOutOfRange
	}

	token, err := t.take(tokenID)
	if err != nil {
		return err
	}
	if prev := t.assigned[blankIndex]; prev != nil {
		t.pool = append(t.pool, *prev)
	}
	t.assigned[blankIndex] = token
	return nil
}

// Unassign returns the token in the blank at blankIndex to the pool.
func (t *AssignmentTracker) Unassign(blankIndex int) error {
	if blankIndex < 0 || blankIndex >= len(t.assigned) {
		return ErrBlankOutOfRange
	}
	token := t.assigned[blankIndex]
	if token == nil {
		return ErrBlankUnassigned
	}
	t.pool = append(t.pool, *token)
	t.assigned[blankIndex] = nil
	return nil
}

// take removes the token from wherever it currently lives.
func (t *AssignmentTracker) take(tokenID string) (*Token, error) {
	for i, tok := range t.pool {
		if tok.ID == tokenID {
			taken := tok
			t.pool = append(t.pool[:i], t.pool[i+1:]...)
			return &taken, nil
		}
	}
	for i, tok := range t.assigned {
		if tok != nil && tok.ID == tokenID {
			taken := *tok
			t.assigned[i] = nil
			return &taken, nil
		}
	}
	return nil, ErrTokenNotFound
}

// FlattenedAnswer joins the assigned token texts in blank order, skipping
// empty blanks. This is the canonical form handed to answer validation.
func (t *AssignmentTracker) FlattenedAnswer() string {
	parts := make([]string, 0, len(t.assigned))
	for _, tok := range t.assigned {
		if tok != nil {
			parts = append(parts, tok.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Pool returns a copy of the unassigned tokens.
func (t *AssignmentTracker) Pool() []Token {
	out := make([]Token, len(t.pool))
	copy(out, t.pool)
	return out
}

// Assignments returns one entry per blank, nil where the blank is empty.
func (t *AssignmentTracker) Assignments() []*Token {
	out := make([]*Token, len(t.assigned))
	for i, tok := range t.assigned {
		if tok != nil {
			c := *tok
			out[i] = &c
		}
	}
	return out
}

// TokenCount returns the total number of tokens across pool and blanks.
func (t *AssignmentTracker) TokenCount() int {
	count := len(t.pool)
	for _, tok := range t.assigned {
		if tok != nil {
			count++
		}
	}
	return count
}
