package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SubtopicProgress records one learner's state for a single subtopic. It is
// embedded in the owning UnitProgress document, not a table of its own.
type SubtopicProgress struct {
	SubtopicID  string     `json:"subtopic_id"`
	IsLocked    bool       `json:"is_locked"`
	IsCompleted bool       `json:"is_completed"`
	Score       int        `json:"score"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// UnitProgress is the persisted progress document, one per (user, unit).
// The subtopic states live in a single jsonb column and the whole document
// is read-modified-written; concurrent writers are last-write-wins.
type UnitProgress struct {
	UserID          string         `json:"user_id" gorm:"primaryKey;size:64"`
	UnitID          string         `json:"unit_id" gorm:"primaryKey;size:64"`
	IsUnitCompleted bool           `json:"is_unit_completed"`
	Subtopics       datatypes.JSON `json:"subtopics" gorm:"type:jsonb"` // []SubtopicProgress

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UnitProgress) TableName() string {
	return "unit_progress"
}

// SubtopicList decodes the embedded subtopic states.
func (p *UnitProgress) SubtopicList() ([]SubtopicProgress, error) {
	if len(p.Subtopics) == 0 {
		return nil, nil
	}
	var list []SubtopicProgress
	if err := json.Unmarshal(p.Subtopics, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetSubtopicList encodes the subtopic states back into the document.
func (p *UnitProgress) SetSubtopicList(list []SubtopicProgress) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	p.Subtopics = raw
	return nil
}

// CompletedSubtopic is a flattened view of one completed subtopic, used by
// the recent-activity listing.
type CompletedSubtopic struct {
	UnitID      string     `json:"unit_id"`
	SubtopicID  string     `json:"subtopic_id"`
	Score       int        `json:"score"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
