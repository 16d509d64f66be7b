package domain

import (
	"slices"
	"time"
)

// Transition describes one applied stage change.
type Transition struct {
	ID        string    `json:"id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// SetStatus moves a work unit to a new stage: removes the id from its old
// bucket, appends it to the new one, appends a history entry, and bumps
// UpdatedAt. Rejects stages outside the seven known values.
func (d *WorkUnitsData) SetStatus(id string, next Status, now time.Time) (Transition, error) {
	if !ValidStatus(next) {
		return Transition{}, NewState("unknown stage %q: valid stages are %s", next, statusList())
	}
	u, err := d.Unit(id)
	if err != nil {
		return Transition{}, err
	}

	now = now.UTC()
	prev := u.Status
	d.removeFromBucket(prev, id)
	d.States[next] = append(d.States[next], id)
	u.Status = next
	u.StateHistory = append(u.StateHistory, StateEntry{State: next, Timestamp: now})
	u.UpdatedAt = now
	return Transition{ID: id, From: prev, To: next, Timestamp: now}, nil
}

func (d *WorkUnitsData) removeFromBucket(s Status, id string) {
	bucket := d.States[s]
	if i := slices.Index(bucket, id); i >= 0 {
		d.States[s] = slices.Delete(bucket, i, i+1)
	}
}

func statusList() string {
	out := ""
	for i, s := range StatusOrder {
		if i > 0 {
			out += ", "
		}
		out += string(s)
	}
	return out
}

// advanceKey identifies one auto-advance rule.
type advanceKey struct {
	From  Status
	Event string
}

// Workflow events recognized by the auto-advance table.
const (
	EventSpecApproved           = "spec-approved"
	EventTestsPass              = "tests-pass"
	EventImplementationComplete = "implementation-complete"
	EventValidationPass         = "validation-pass"
)

// autoAdvanceRules maps (current stage, event) to the next stage. New
// rules are additive; there is no branching logic around them.
var autoAdvanceRules = map[advanceKey]Status{
	{StatusSpecifying, EventSpecApproved}:             StatusTesting,
	{StatusTesting, EventTestsPass}:                   StatusImplementing,
	{StatusImplementing, EventImplementationComplete}: StatusValidating,
	{StatusValidating, EventValidationPass}:           StatusDone,
}

// AutoAdvanceResult reports the outcome of an auto-advance attempt. A
// non-applied result is still a success: re-delivering an event to a unit
// that already moved on is expected.
type AutoAdvanceResult struct {
	Applied bool   `json:"applied"`
	From    Status `json:"from"`
	To      Status `json:"to,omitempty"`
}

// AutoAdvance applies the declarative rule table. When the unit's current
// status equals from and a rule exists for event, the manual transition
// runs; otherwise the call is an idempotent no-op.
func (d *WorkUnitsData) AutoAdvance(id string, from Status, event string, now time.Time) (AutoAdvanceResult, error) {
	u, err := d.Unit(id)
	if err != nil {
		return AutoAdvanceResult{}, err
	}

	to, ok := autoAdvanceRules[advanceKey{From: from, Event: event}]
	if !ok || u.Status != from {
		return AutoAdvanceResult{Applied: false, From: u.Status}, nil
	}

	if _, err := d.SetStatus(id, to, now); err != nil {
		return AutoAdvanceResult{}, err
	}
	return AutoAdvanceResult{Applied: true, From: from, To: to}, nil
}

// CheckInvariants verifies that every unit id sits in exactly one states
// bucket and that the bucket matches the unit's status. Used by tests and
// by the store's post-migration check.
func (d *WorkUnitsData) CheckInvariants() error {
	seen := map[string]Status{}
	for _, s := range StatusOrder {
		for _, id := range d.States[s] {
			if prior, dup := seen[id]; dup {
				return NewState("id %s appears in both %s and %s buckets", id, prior, s)
			}
			seen[id] = s
		}
	}
	for id, u := range d.WorkUnits {
		bucket, ok := seen[id]
		if !ok {
			return NewState("id %s missing from states buckets", id)
		}
		if bucket != u.Status {
			return NewState("id %s is in bucket %s but has status %s", id, bucket, u.Status)
		}
		delete(seen, id)
	}
	for id := range seen {
		return NewState("bucket id %s has no work unit record", id)
	}
	return nil
}
