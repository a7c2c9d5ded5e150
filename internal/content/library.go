package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/utils"
	"github.com/linguabridge/learning-service/internal/validator"
)

// Library holds the loaded curriculum in memory: ordered units, each with
// ordered subtopics and their questions. Content is immutable after load;
// ReplaceUnits swaps whole units in (used by the Excel importer).
type Library struct {
	mu     sync.RWMutex
	units  []models.Unit
	logger utils.Logger
}

// NewLibrary creates an empty library.
func NewLibrary(logger utils.Logger) *Library {
	return &Library{logger: logger}
}

// LoadDir reads every unit JSON file under dir into the library. A file may
// hold a single unit object or an array of units. Questions failing content
// validation reject the whole file.
func (l *Library) LoadDir(dir string) error {
	qv := validator.NewQuestionValidator()

	var loaded []models.Unit
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		units, err := loadUnitsFile(path, qv)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		loaded = append(loaded, units...)
		return nil
	})
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		return fmt.Errorf("no unit files found under %s", dir)
	}

	sortUnits(loaded)

	l.mu.Lock()
	l.units = loaded
	l.mu.Unlock()

	l.logger.Info("Curriculum loaded", "dir", dir, "units", len(loaded))
	return nil
}

func loadUnitsFile(path string, qv *validator.QuestionValidator) ([]models.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var units []models.Unit
	if err := json.Unmarshal(data, &units); err != nil {
		var single models.Unit
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parsing unit JSON: %w", err)
		}
		units = []models.Unit{single}
	}

	for i := range units {
		if err := validateUnit(&units[i], qv); err != nil {
			return nil, err
		}
	}
	return units, nil
}

func validateUnit(unit *models.Unit, qv *validator.QuestionValidator) error {
	if unit.ID == "" {
		return fmt.Errorf("unit id is required")
	}
	for i := range unit.Subtopics {
		sub := &unit.Subtopics[i]
		if sub.ID == "" {
			return fmt.Errorf("unit %s: subtopic %d has no id", unit.ID, i)
		}
		sub.UnitID = unit.ID
		for j := range sub.Questions {
			if err := qv.ValidateQuestion(&sub.Questions[j]); err != nil {
				return fmt.Errorf("unit %s subtopic %s question %d: %w", unit.ID, sub.ID, j+1, err)
			}
		}
	}
	return nil
}

// ReplaceUnits upserts units into the library, keeping the order sorted.
func (l *Library) ReplaceUnits(units []models.Unit) error {
	qv := validator.NewQuestionValidator()
	for i := range units {
		if err := validateUnit(&units[i], qv); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	byID := make(map[string]int, len(l.units))
	for i := range l.units {
		byID[l.units[i].ID] = i
	}
	for _, unit := range units {
		if idx, ok := byID[unit.ID]; ok {
			l.units[idx] = unit
		} else {
			l.units = append(l.units, unit)
		}
	}
	sortUnits(l.units)
	return nil
}

// Units returns the units in curriculum order.
func (l *Library) Units() []models.Unit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Unit, len(l.units))
	copy(out, l.units)
	return out
}

// Unit returns a single unit by ID.
func (l *Library) Unit(unitID string) (*models.Unit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := range l.units {
		if l.units[i].ID == unitID {
			unit := l.units[i]
			return &unit, nil
		}
	}
	return nil, fmt.Errorf("unit %s not found", unitID)
}

// Subtopic returns a single subtopic by ID.
func (l *Library) Subtopic(subtopicID string) (*models.Subtopic, error) {
	_, sub, err := l.UnitForSubtopic(subtopicID)
	return sub, err
}

// UnitForSubtopic returns the subtopic and the unit that contains it.
func (l *Library) UnitForSubtopic(subtopicID string) (*models.Unit, *models.Subtopic, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := range l.units {
		for j := range l.units[i].Subtopics {
			if l.units[i].Subtopics[j].ID == subtopicID {
				unit := l.units[i]
				sub := l.units[i].Subtopics[j]
				return &unit, &sub, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("subtopic %s not found", subtopicID)
}

func sortUnits(units []models.Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Order < units[j].Order
	})
	for i := range units {
		subs := units[i].Subtopics
		sort.SliceStable(subs, func(a, b int) bool {
			return subs[a].Order < subs[b].Order
		})
	}
}
