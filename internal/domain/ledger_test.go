package domain

import (
	"errors"
	"testing"
	"time"
)

func specifyingUnit(t *testing.T) (*WorkUnitsData, *WorkUnit) {
	t.Helper()
	d := newTestData(t, "AUTH-001")
	if _, err := d.SetStatus("AUTH-001", StatusSpecifying, time.Now()); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	return d, d.WorkUnits["AUTH-001"]
}

func TestAddItemAllocatesSequentialIDs(t *testing.T) {
	_, u := specifyingUnit(t)
	now := time.Now()

	first, err := u.AddItem(AddItemInput{Kind: KindRule, Text: "must refresh token"}, now)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	second, err := u.AddItem(AddItemInput{Kind: KindQuestion, Text: "which token store?"}, now)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	third, err := u.AddItem(AddItemInput{Kind: KindDomainEvent, Text: "TokenIssued", Timestamp: "on login"}, now)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if first.ID != 1 || second.ID != 2 || third.ID != 3 {
		t.Fatalf("ids = %d, %d, %d: counter must be shared across kinds", first.ID, second.ID, third.ID)
	}
	if len(u.EventStorm.Items) != 1 || u.EventStorm.Items[0].Type != KindDomainEvent {
		t.Fatalf("event storm items = %+v", u.EventStorm.Items)
	}
}

func TestNarrativeKindsRequireSpecifying(t *testing.T) {
	d := newTestData(t, "AUTH-001")
	u := d.WorkUnits["AUTH-001"] // still backlog
	now := time.Now()

	for _, k := range []ItemKind{KindRule, KindExample, KindQuestion} {
		if _, err := u.AddItem(AddItemInput{Kind: k, Text: "x"}, now); !errors.Is(err, ErrState) {
			t.Fatalf("%s in backlog: expected StateError, got %v", k, err)
		}
	}
	// Architecture notes and storm artifacts are allowed in any working stage.
	if _, err := u.AddItem(AddItemInput{Kind: KindArchitectureNote, Text: "keep it stateless"}, now); err != nil {
		t.Fatalf("architecture note in backlog: %v", err)
	}
	if _, err := u.AddItem(AddItemInput{Kind: KindHotspot, Text: "session expiry unclear", Concern: "security"}, now); err != nil {
		t.Fatalf("hotspot in backlog: %v", err)
	}
}

func TestLedgerFrozenWhenDoneOrBlocked(t *testing.T) {
	for _, status := range []Status{StatusDone, StatusBlocked} {
		d, u := specifyingUnit(t)
		now := time.Now()
		item, err := u.AddItem(AddItemInput{Kind: KindRule, Text: "r"}, now)
		if err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
		if _, err := d.SetStatus("AUTH-001", status, now); err != nil {
			t.Fatalf("SetStatus() error = %v", err)
		}
		if _, err := u.AddItem(AddItemInput{Kind: KindArchitectureNote, Text: "n"}, now); !errors.Is(err, ErrState) {
			t.Fatalf("add on %s unit: expected StateError, got %v", status, err)
		}
		if _, err := u.SoftDelete(KindRule, item.ID, now); !errors.Is(err, ErrState) {
			t.Fatalf("delete on %s unit: expected StateError, got %v", status, err)
		}
	}
}

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	_, u := specifyingUnit(t)
	now := time.Now()

	item, err := u.AddItem(AddItemInput{Kind: KindExample, Text: "login with expired token"}, now)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	changed, err := u.SoftDelete(KindExample, item.ID, now)
	if err != nil || !changed {
		t.Fatalf("SoftDelete() = %t, %v", changed, err)
	}
	if !u.Examples[0].Deleted || u.Examples[0].DeletedAt == nil {
		t.Fatalf("item not flagged: %+v", u.Examples[0])
	}

	// Idempotent: deleting again is a successful no-op.
	changed, err = u.SoftDelete(KindExample, item.ID, now)
	if err != nil || changed {
		t.Fatalf("second SoftDelete() = %t, %v", changed, err)
	}

	changed, err = u.Restore(KindExample, item.ID, now)
	if err != nil || !changed {
		t.Fatalf("Restore() = %t, %v", changed, err)
	}
	got := u.Examples[0]
	if got.Deleted || got.DeletedAt != nil {
		t.Fatalf("restore left flags set: %+v", got)
	}
	if got.ID != item.ID || got.Text != "login with expired token" {
		t.Fatalf("restore changed the item: %+v", got)
	}

	// Restoring an active item is also a successful no-op.
	changed, err = u.Restore(KindExample, item.ID, now)
	if err != nil || changed {
		t.Fatalf("second Restore() = %t, %v", changed, err)
	}
}

func TestItemIDsNeverReused(t *testing.T) {
	_, u := specifyingUnit(t)
	now := time.Now()

	first, err := u.AddItem(AddItemInput{Kind: KindRule, Text: "a"}, now)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := u.SoftDelete(KindRule, first.ID, now); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	second, err := u.AddItem(AddItemInput{Kind: KindRule, Text: "b"}, now)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("id %d reused after deleting %d", second.ID, first.ID)
	}
	if len(u.Rules) != 2 {
		t.Fatalf("deleted items must stay in the list, got %d", len(u.Rules))
	}
}

func TestSoftDeleteMissingItem(t *testing.T) {
	_, u := specifyingUnit(t)
	if _, err := u.SoftDelete(KindRule, 99, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeletedItemsTaggedWithKind(t *testing.T) {
	_, u := specifyingUnit(t)
	now := time.Now()

	rule, _ := u.AddItem(AddItemInput{Kind: KindRule, Text: "r"}, now)
	cmd, _ := u.AddItem(AddItemInput{Kind: KindCommand, Text: "IssueToken", Actor: "user"}, now)
	if _, err := u.AddItem(AddItemInput{Kind: KindQuestion, Text: "q"}, now); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := u.SoftDelete(KindRule, rule.ID, now); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if _, err := u.SoftDelete(KindCommand, cmd.ID, now); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	got := u.DeletedItems()
	if len(got) != 2 {
		t.Fatalf("deleted = %+v", got)
	}
	if got[0].Kind != KindRule || got[1].Kind != KindCommand {
		t.Fatalf("kinds = %s, %s", got[0].Kind, got[1].Kind)
	}
}

func TestSetEventStormLevel(t *testing.T) {
	_, u := specifyingUnit(t)
	now := time.Now()
	if err := u.SetEventStormLevel("big-picture", now); err != nil {
		t.Fatalf("SetEventStormLevel() error = %v", err)
	}
	if u.EventStorm.Level != "big-picture" {
		t.Fatalf("level = %q", u.EventStorm.Level)
	}
	if err := u.SetEventStormLevel("galaxy", now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
