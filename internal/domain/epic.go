package domain

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Epic groups work units for progress roll-up.
type Epic struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	WorkUnits []string  `json:"workUnits,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EpicsData is the epics collection document.
type EpicsData struct {
	Epics map[string]*Epic `json:"epics"`
}

// NewEpicsData returns an empty epics document.
func NewEpicsData() *EpicsData {
	return &EpicsData{Epics: map[string]*Epic{}}
}

var epicIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateEpicID enforces kebab-case epic identifiers.
func ValidateEpicID(id string) error {
	if !epicIDPattern.MatchString(id) {
		return NewValidation("invalid epic id %q: must be lowercase letters, digits, and hyphens (kebab-case)", id)
	}
	return nil
}

// Epic resolves an epic by id.
func (d *EpicsData) Epic(id string) (*Epic, error) {
	e, ok := d.Epics[id]
	if !ok {
		return nil, NewNotFound("epic", id)
	}
	return e, nil
}

// AddEpic creates a new epic after validating its identifier shape.
func (d *EpicsData) AddEpic(id, title string, now time.Time) (*Epic, error) {
	if err := ValidateEpicID(id); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidation("epic title is required")
	}
	if _, exists := d.Epics[id]; exists {
		return nil, NewValidation("epic %s already exists", id)
	}
	now = now.UTC()
	e := &Epic{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
	d.Epics[id] = e
	return e, nil
}

// AddWorkUnit records a unit reference on the epic.
func (e *Epic) AddWorkUnit(unitID string, now time.Time) {
	if !slices.Contains(e.WorkUnits, unitID) {
		e.WorkUnits = append(e.WorkUnits, unitID)
		e.UpdatedAt = now.UTC()
	}
}

// RemoveWorkUnit drops a unit reference from the epic.
func (e *Epic) RemoveWorkUnit(unitID string, now time.Time) {
	if i := slices.Index(e.WorkUnits, unitID); i >= 0 {
		e.WorkUnits = slices.Delete(e.WorkUnits, i, i+1)
		e.UpdatedAt = now.UTC()
	}
}

// EpicProgress is the roll-up over an epic's referenced work units.
type EpicProgress struct {
	EpicID          string  `json:"epicId"`
	Title           string  `json:"title"`
	TotalUnits      int     `json:"totalUnits"`
	DoneUnits       int     `json:"doneUnits"`
	PercentDone     float64 `json:"percentDone"`
	TotalPoints     int     `json:"totalPoints"`
	CompletedPoints int     `json:"completedPoints"`
}

// Progress resolves the epic's unit references against the current
// collection and rolls up completion counts and story points. References
// to units that no longer resolve are skipped.
func (e *Epic) Progress(units *WorkUnitsData) EpicProgress {
	p := EpicProgress{EpicID: e.ID, Title: e.Title}
	for _, id := range e.WorkUnits {
		u, ok := units.WorkUnits[id]
		if !ok {
			continue
		}
		p.TotalUnits++
		points := 0
		if u.Estimate != nil {
			points = *u.Estimate
		}
		p.TotalPoints += points
		if u.Status == StatusDone {
			p.DoneUnits++
			p.CompletedPoints += points
		}
	}
	if p.TotalUnits > 0 {
		p.PercentDone = float64(p.DoneUnits) / float64(p.TotalUnits) * 100
	}
	return p
}
