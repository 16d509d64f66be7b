package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// ItemKind names one of the eight tracked exploration list kinds.
type ItemKind string

// Narrative list kinds.
const (
	KindRule             ItemKind = "rule"
	KindExample          ItemKind = "example"
	KindQuestion         ItemKind = "question"
	KindArchitectureNote ItemKind = "architecture-note"
)

// Event-storm item kinds.
const (
	KindDomainEvent ItemKind = "domain-event"
	KindCommand     ItemKind = "command"
	KindPolicy      ItemKind = "policy"
	KindHotspot     ItemKind = "hotspot"
)

// ItemKinds lists every tracked kind in a fixed reporting order.
var ItemKinds = []ItemKind{
	KindRule, KindExample, KindQuestion, KindArchitectureNote,
	KindDomainEvent, KindCommand, KindPolicy, KindHotspot,
}

// ValidItemKind reports whether k is a tracked list kind.
func ValidItemKind(k ItemKind) bool {
	return slices.Contains(ItemKinds, k)
}

// eventStormKinds are the kinds stored under EventStorm.Items.
var eventStormKinds = []ItemKind{KindDomainEvent, KindCommand, KindPolicy, KindHotspot}

// IsEventStormKind reports whether k lives in the event-storm structure.
func IsEventStormKind(k ItemKind) bool {
	return slices.Contains(eventStormKinds, k)
}

// specifyingOnlyKinds may only be added while the unit is in specifying.
var specifyingOnlyKinds = []ItemKind{KindRule, KindExample, KindQuestion}

// LedgerItem is one soft-deletable entry in a narrative list. Items are
// never physically removed; Deleted flags them out and their id is never
// reused.
type LedgerItem struct {
	ID        int        `json:"id"`
	Text      string     `json:"text"`
	Deleted   bool       `json:"deleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// EventStormItem is one typed event-storm artifact. The optional fields
// apply per kind: Actor to commands, Timestamp to domain events,
// BoundedContext to policies, Concern to hotspots.
type EventStormItem struct {
	ID             int        `json:"id"`
	Type           ItemKind   `json:"type"`
	Text           string     `json:"text"`
	Deleted        bool       `json:"deleted"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	Actor          string     `json:"actor,omitempty"`
	Timestamp      string     `json:"timestamp,omitempty"`
	BoundedContext string     `json:"boundedContext,omitempty"`
	Concern        string     `json:"concern,omitempty"`
}

// EventStorm groups a unit's event-storm artifacts. NextItemID is the
// unit-wide monotone counter that allocates ids for all eight list kinds.
type EventStorm struct {
	Level      string           `json:"level,omitempty"`
	Items      []EventStormItem `json:"items,omitempty"`
	NextItemID int              `json:"nextItemId"`
}

// EventStormLevels are the accepted granularity levels.
var EventStormLevels = []string{"big-picture", "process-modeling", "software-design"}

// AddItemInput carries the payload for a new ledger or event-storm item.
type AddItemInput struct {
	Kind           ItemKind
	Text           string
	Actor          string
	Timestamp      string
	BoundedContext string
	Concern        string
}

// AddedItem reports the allocated item.
type AddedItem struct {
	Kind ItemKind `json:"kind"`
	ID   int      `json:"id"`
	Text string   `json:"text"`
}

// nextItemID allocates from the unit's monotone counter. Documents
// migrated from older schemas may carry a zero counter.
func (u *WorkUnit) nextItemID() int {
	if u.EventStorm.NextItemID < 1 {
		u.EventStorm.NextItemID = 1
	}
	id := u.EventStorm.NextItemID
	u.EventStorm.NextItemID++
	return id
}

// ledgerMutable rejects ledger mutations on finished or stuck units.
func (u *WorkUnit) ledgerMutable() error {
	if u.Status == StatusDone || u.Status == StatusBlocked {
		return NewState("cannot modify exploration items on %s work unit %s (status: %s)", u.Status, u.ID, u.Status)
	}
	return nil
}

// narrativeList returns the list backing a narrative kind.
func (u *WorkUnit) narrativeList(k ItemKind) *[]LedgerItem {
	switch k {
	case KindRule:
		return &u.Rules
	case KindExample:
		return &u.Examples
	case KindQuestion:
		return &u.Questions
	case KindArchitectureNote:
		return &u.ArchitectureNotes
	}
	return nil
}

// AddItem appends an active item of the given kind, allocating its id
// from the unit counter. Rules, examples, and questions may only be
// captured during specifying; the other kinds anywhere short of
// done/blocked.
func (u *WorkUnit) AddItem(in AddItemInput, now time.Time) (AddedItem, error) {
	if !ValidItemKind(in.Kind) {
		return AddedItem{}, NewValidation("unknown item kind %q: valid kinds are %s", in.Kind, kindList())
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return AddedItem{}, NewValidation("item text is required")
	}
	if err := u.ledgerMutable(); err != nil {
		return AddedItem{}, err
	}
	if slices.Contains(specifyingOnlyKinds, in.Kind) && u.Status != StatusSpecifying {
		return AddedItem{}, NewState("%ss can only be added while specifying; work unit %s is %s", in.Kind, u.ID, u.Status)
	}

	now = now.UTC()
	id := u.nextItemID()
	if IsEventStormKind(in.Kind) {
		u.EventStorm.Items = append(u.EventStorm.Items, EventStormItem{
			ID:             id,
			Type:           in.Kind,
			Text:           in.Text,
			CreatedAt:      now,
			Actor:          in.Actor,
			Timestamp:      in.Timestamp,
			BoundedContext: in.BoundedContext,
			Concern:        in.Concern,
		})
	} else {
		list := u.narrativeList(in.Kind)
		*list = append(*list, LedgerItem{ID: id, Text: in.Text})
	}
	u.UpdatedAt = now
	return AddedItem{Kind: in.Kind, ID: id, Text: in.Text}, nil
}

// findItem locates an item's deletion flags by kind and id.
func (u *WorkUnit) findItem(k ItemKind, itemID int) (deleted *bool, deletedAt **time.Time, ok bool) {
	if IsEventStormKind(k) {
		for i := range u.EventStorm.Items {
			it := &u.EventStorm.Items[i]
			if it.ID == itemID && it.Type == k {
				return &it.Deleted, &it.DeletedAt, true
			}
		}
		return nil, nil, false
	}
	list := u.narrativeList(k)
	if list == nil {
		return nil, nil, false
	}
	for i := range *list {
		it := &(*list)[i]
		if it.ID == itemID {
			return &it.Deleted, &it.DeletedAt, true
		}
	}
	return nil, nil, false
}

// SoftDelete flags an item deleted. Deleting an already-deleted item is a
// successful no-op; changed reports whether anything was flagged.
func (u *WorkUnit) SoftDelete(k ItemKind, itemID int, now time.Time) (changed bool, err error) {
	if !ValidItemKind(k) {
		return false, NewValidation("unknown item kind %q: valid kinds are %s", k, kindList())
	}
	if err := u.ledgerMutable(); err != nil {
		return false, err
	}
	deleted, deletedAt, ok := u.findItem(k, itemID)
	if !ok {
		return false, NewNotFound(string(k), itemIDString(u.ID, itemID))
	}
	if *deleted {
		return false, nil
	}
	now = now.UTC()
	*deleted = true
	*deletedAt = &now
	u.UpdatedAt = now
	return true, nil
}

// Restore clears an item's deletion flags. Restoring an active item is a
// successful no-op; changed reports whether anything was cleared.
func (u *WorkUnit) Restore(k ItemKind, itemID int, now time.Time) (changed bool, err error) {
	if !ValidItemKind(k) {
		return false, NewValidation("unknown item kind %q: valid kinds are %s", k, kindList())
	}
	if err := u.ledgerMutable(); err != nil {
		return false, err
	}
	deleted, deletedAt, ok := u.findItem(k, itemID)
	if !ok {
		return false, NewNotFound(string(k), itemIDString(u.ID, itemID))
	}
	if !*deleted {
		return false, nil
	}
	*deleted = false
	*deletedAt = nil
	u.UpdatedAt = now.UTC()
	return true, nil
}

// DeletedItem is one soft-deleted entry tagged with its original kind.
type DeletedItem struct {
	Kind      ItemKind   `json:"kind"`
	ID        int        `json:"id"`
	Text      string     `json:"text"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// DeletedItems returns every soft-deleted item across all eight lists.
func (u *WorkUnit) DeletedItems() []DeletedItem {
	var out []DeletedItem
	for _, k := range ItemKinds {
		if IsEventStormKind(k) {
			for _, it := range u.EventStorm.Items {
				if it.Type == k && it.Deleted {
					out = append(out, DeletedItem{Kind: k, ID: it.ID, Text: it.Text, DeletedAt: it.DeletedAt})
				}
			}
			continue
		}
		for _, it := range *u.narrativeList(k) {
			if it.Deleted {
				out = append(out, DeletedItem{Kind: k, ID: it.ID, Text: it.Text, DeletedAt: it.DeletedAt})
			}
		}
	}
	return out
}

// SetEventStormLevel sets the storm granularity level.
func (u *WorkUnit) SetEventStormLevel(level string, now time.Time) error {
	if !slices.Contains(EventStormLevels, level) {
		return NewValidation("unknown event storm level %q: valid levels are %s", level, strings.Join(EventStormLevels, ", "))
	}
	if err := u.ledgerMutable(); err != nil {
		return err
	}
	u.EventStorm.Level = level
	u.UpdatedAt = now.UTC()
	return nil
}

func kindList() string {
	parts := make([]string, len(ItemKinds))
	for i, k := range ItemKinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func itemIDString(unitID string, itemID int) string {
	return unitID + "#" + strconv.Itoa(itemID)
}
