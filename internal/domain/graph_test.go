package domain

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestTransitiveBlockedFollowsChain(t *testing.T) {
	d := newTestData(t, "API-001", "API-002", "API-003", "API-004")
	now := time.Now()
	mustBlock(t, d, "API-001", "API-002", now)
	mustBlock(t, d, "API-002", "API-003", now)
	mustBlock(t, d, "API-002", "API-004", now)

	got, err := d.TransitiveBlocked("API-001")
	if err != nil {
		t.Fatalf("TransitiveBlocked() error = %v", err)
	}
	want := []string{"API-002", "API-003", "API-004"}
	if !slices.Equal(got, want) {
		t.Fatalf("blocked = %v, want %v", got, want)
	}
}

func TestTransitiveBlockedTerminatesOnCycle(t *testing.T) {
	d := newTestData(t, "API-001", "API-002")
	now := time.Now()
	mustBlock(t, d, "API-001", "API-002", now)
	mustBlock(t, d, "API-002", "API-001", now)

	got, err := d.TransitiveBlocked("API-001")
	if err != nil {
		t.Fatalf("TransitiveBlocked() error = %v", err)
	}
	// The cycle leads back to the origin, which is excluded from its own
	// result set.
	if !slices.Equal(got, []string{"API-002"}) {
		t.Fatalf("blocked = %v, want [API-002]", got)
	}
}

func TestBlockValidation(t *testing.T) {
	d := newTestData(t, "API-001")
	now := time.Now()
	if err := d.Block("API-001", "API-001", now); !errors.Is(err, ErrValidation) {
		t.Fatalf("self-block: expected ValidationError, got %v", err)
	}
	if err := d.Block("API-001", "API-404", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing target: expected NotFound, got %v", err)
	}
}

func TestBlockIsIdempotent(t *testing.T) {
	d := newTestData(t, "API-001", "API-002")
	now := time.Now()
	mustBlock(t, d, "API-001", "API-002", now)
	mustBlock(t, d, "API-001", "API-002", now)
	if got := d.WorkUnits["API-001"].Blocks; len(got) != 1 {
		t.Fatalf("blocks = %v, want a single edge", got)
	}
	if err := d.Unblock("API-001", "API-002", now); err != nil {
		t.Fatalf("Unblock() error = %v", err)
	}
	if got := d.WorkUnits["API-001"].Blocks; len(got) != 0 {
		t.Fatalf("blocks = %v after unblock", got)
	}
}

func TestBottlenecksRankingAndFilters(t *testing.T) {
	d := newTestData(t, "API-001", "API-002", "API-003", "API-004", "API-005", "DB-001")
	now := time.Now()
	// API-001 transitively blocks three units; DB-001 blocks two.
	mustBlock(t, d, "API-001", "API-002", now)
	mustBlock(t, d, "API-002", "API-003", now)
	mustBlock(t, d, "API-002", "API-004", now)
	mustBlock(t, d, "DB-001", "API-004", now)
	mustBlock(t, d, "DB-001", "API-005", now)
	// API-005 blocks one unit: score 1 falls below the reporting floor.
	mustBlock(t, d, "API-005", "API-003", now)

	got := d.Bottlenecks()
	if len(got) != 3 {
		t.Fatalf("got %d bottlenecks: %+v", len(got), got)
	}
	if got[0].ID != "API-001" || got[0].Score != 3 {
		t.Fatalf("top = %+v", got[0])
	}
	if !slices.Equal(got[0].Direct, []string{"API-002"}) {
		t.Fatalf("direct = %v", got[0].Direct)
	}
	if !slices.Equal(got[0].TransitiveOnly, []string{"API-003", "API-004"}) {
		t.Fatalf("transitive-only = %v", got[0].TransitiveOnly)
	}
}

func TestBottlenecksExcludesDoneAndBlocked(t *testing.T) {
	d := newTestData(t, "API-001", "API-002", "API-003")
	now := time.Now()
	mustBlock(t, d, "API-001", "API-002", now)
	mustBlock(t, d, "API-001", "API-003", now)
	if _, err := d.SetStatus("API-001", StatusDone, now); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if got := d.Bottlenecks(); len(got) != 0 {
		t.Fatalf("done unit must not rank: %+v", got)
	}
}

func TestBottlenecksSurviveCycle(t *testing.T) {
	d := newTestData(t, "API-001", "API-002", "API-003")
	now := time.Now()
	mustBlock(t, d, "API-001", "API-002", now)
	mustBlock(t, d, "API-002", "API-001", now)
	mustBlock(t, d, "API-002", "API-003", now)

	got := d.Bottlenecks()
	for _, b := range got {
		if b.ID == "API-002" {
			if b.Score != 2 {
				t.Fatalf("API-002 score = %d, want 2", b.Score)
			}
			return
		}
	}
	t.Fatalf("API-002 missing from %+v", got)
}

func mustBlock(t *testing.T, d *WorkUnitsData, blocker, blocked string, now time.Time) {
	t.Helper()
	if err := d.Block(blocker, blocked, now); err != nil {
		t.Fatalf("Block(%s, %s) error = %v", blocker, blocked, err)
	}
}
