package domain

import (
	"slices"
	"strings"
	"time"
)

// Status represents one of the seven workflow stages.
type Status string

// Canonical workflow stages. Done and blocked are terminal for the state
// machine; blocked is exited only by an explicit unblock outside it.
const (
	StatusBacklog      Status = "backlog"
	StatusSpecifying   Status = "specifying"
	StatusTesting      Status = "testing"
	StatusImplementing Status = "implementing"
	StatusValidating   Status = "validating"
	StatusDone         Status = "done"
	StatusBlocked      Status = "blocked"
)

// StatusOrder lists the stages in board order. Bucket iteration follows
// this order so reports are deterministic.
var StatusOrder = []Status{
	StatusBacklog,
	StatusSpecifying,
	StatusTesting,
	StatusImplementing,
	StatusValidating,
	StatusDone,
	StatusBlocked,
}

// ValidStatus reports whether s is one of the seven stages.
func ValidStatus(s Status) bool {
	return slices.Contains(StatusOrder, s)
}

// WorkUnitType classifies a tracked item.
type WorkUnitType string

// WorkUnitType values.
const (
	TypeStory WorkUnitType = "story"
	TypeTask  WorkUnitType = "task"
	TypeBug   WorkUnitType = "bug"
)

var validTypes = []WorkUnitType{TypeStory, TypeTask, TypeBug}

// ValidWorkUnitType reports whether t is a known work unit type.
func ValidWorkUnitType(t WorkUnitType) bool {
	return slices.Contains(validTypes, t)
}

// StateEntry is one append-only transition record.
type StateEntry struct {
	State     Status    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// Metrics accumulates consumption counters for a work unit. Both fields
// only ever increase.
type Metrics struct {
	ActualTokens int `json:"actualTokens"`
	Iterations   int `json:"iterations"`
}

// WorkUnit is one tracked story, task, or bug.
type WorkUnit struct {
	ID                string       `json:"id"`
	Type              WorkUnitType `json:"type"`
	Title             string       `json:"title"`
	Status            Status       `json:"status"`
	Estimate          *int         `json:"estimate,omitempty"`
	Metrics           Metrics      `json:"metrics"`
	StateHistory      []StateEntry `json:"stateHistory"`
	Blocks            []string     `json:"blocks,omitempty"`
	Epic              string       `json:"epic,omitempty"`
	Rules             []LedgerItem `json:"rules,omitempty"`
	Examples          []LedgerItem `json:"examples,omitempty"`
	Questions         []LedgerItem `json:"questions,omitempty"`
	ArchitectureNotes []LedgerItem `json:"architectureNotes,omitempty"`
	EventStorm        EventStorm   `json:"eventStorm"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Meta carries document-level bookkeeping.
type Meta struct {
	Version     int       `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// WorkUnitsData is the work-units collection document. Every id in
// WorkUnits appears in exactly one States bucket, and that bucket's key
// equals the unit's Status.
type WorkUnitsData struct {
	Meta      Meta                 `json:"meta"`
	WorkUnits map[string]*WorkUnit `json:"workUnits"`
	States    map[Status][]string  `json:"states"`
}

// SchemaVersion is the current work-units document version.
const SchemaVersion = 2

// NewWorkUnitsData returns an empty collection skeleton at the current
// schema version.
func NewWorkUnitsData() *WorkUnitsData {
	d := &WorkUnitsData{
		Meta:      Meta{Version: SchemaVersion},
		WorkUnits: map[string]*WorkUnit{},
		States:    map[Status][]string{},
	}
	for _, s := range StatusOrder {
		d.States[s] = []string{}
	}
	return d
}

// Unit resolves a work unit by id.
func (d *WorkUnitsData) Unit(id string) (*WorkUnit, error) {
	u, ok := d.WorkUnits[id]
	if !ok {
		return nil, NewNotFound("work unit", id)
	}
	return u, nil
}

// NewWorkUnitInput holds creation parameters for a work unit.
type NewWorkUnitInput struct {
	ID    string
	Type  WorkUnitType
	Title string
}

// AddWorkUnit creates a new unit in backlog and registers it in both the
// id map and the backlog bucket.
func (d *WorkUnitsData) AddWorkUnit(in NewWorkUnitInput, now time.Time) (*WorkUnit, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, NewValidation("title is required")
	}
	if !ValidWorkUnitType(in.Type) {
		return nil, NewValidation("invalid work unit type %q: valid types are story, task, bug", in.Type)
	}
	if _, exists := d.WorkUnits[in.ID]; exists {
		return nil, NewValidation("work unit %s already exists", in.ID)
	}

	now = now.UTC()
	u := &WorkUnit{
		ID:           in.ID,
		Type:         in.Type,
		Title:        in.Title,
		Status:       StatusBacklog,
		StateHistory: []StateEntry{{State: StatusBacklog, Timestamp: now}},
		EventStorm:   EventStorm{NextItemID: 1},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.WorkUnits[u.ID] = u
	d.States[StatusBacklog] = append(d.States[StatusBacklog], u.ID)
	return u, nil
}

// UnitIDs returns every work unit id in deterministic board order: stage
// buckets in StatusOrder, ids in bucket order.
func (d *WorkUnitsData) UnitIDs() []string {
	var ids []string
	for _, s := range StatusOrder {
		ids = append(ids, d.States[s]...)
	}
	return ids
}
