package jsonfile

import (
	"fmt"
	"sort"

	"fspec/internal/domain"
)

// workUnitsMigrations maps a document version to the step that lifts it
// one version forward. Steps run in sequence until the document reaches
// domain.SchemaVersion.
var workUnitsMigrations = map[int]func(*domain.WorkUnitsData) error{
	0: migrateWorkUnitsV0toV1,
	1: migrateWorkUnitsV1toV2,
}

// migrateWorkUnits lifts a parsed work-units document to the current
// schema version in memory. The caller persists the result only on the
// write path; reads migrate transiently. A document from a newer schema
// than this build understands is a MigrationError.
func migrateWorkUnits(path string, d *domain.WorkUnitsData) error {
	if d.Meta.Version > domain.SchemaVersion {
		return &MigrationError{
			Path:    path,
			Version: d.Meta.Version,
			Err:     fmt.Errorf("document is newer than supported version %d", domain.SchemaVersion),
		}
	}
	if d.WorkUnits == nil {
		d.WorkUnits = map[string]*domain.WorkUnit{}
	}
	if d.States == nil {
		d.States = map[domain.Status][]string{}
	}
	for d.Meta.Version < domain.SchemaVersion {
		step, ok := workUnitsMigrations[d.Meta.Version]
		if !ok {
			return &MigrationError{
				Path:    path,
				Version: d.Meta.Version,
				Err:     fmt.Errorf("no migration step from version %d", d.Meta.Version),
			}
		}
		if err := step(d); err != nil {
			return &MigrationError{Path: path, Version: d.Meta.Version, Err: err}
		}
		d.Meta.Version++
	}
	if err := d.CheckInvariants(); err != nil {
		return &MigrationError{Path: path, Version: d.Meta.Version, Err: err}
	}
	return nil
}

// migrateWorkUnitsV0toV1 repairs pre-versioned documents: stray map
// keys and unit statuses outside the known stage set.
func migrateWorkUnitsV0toV1(d *domain.WorkUnitsData) error {
	for id, u := range d.WorkUnits {
		if u == nil {
			return fmt.Errorf("work unit %s has no record", id)
		}
		u.ID = id
		if !domain.ValidStatus(u.Status) {
			return fmt.Errorf("work unit %s has unknown status %q", id, u.Status)
		}
	}
	return nil
}

// migrateWorkUnitsV1toV2 introduces the per-unit item counter and the
// per-stage buckets: the counter is re-seeded past the highest allocated
// item id, and the buckets are rebuilt from unit statuses in id-sorted
// order.
func migrateWorkUnitsV1toV2(d *domain.WorkUnitsData) error {
	rebuilt := map[domain.Status][]string{}
	for _, s := range domain.StatusOrder {
		rebuilt[s] = []string{}
	}
	for _, id := range sortedUnitIDs(d) {
		u := d.WorkUnits[id]
		rebuilt[u.Status] = append(rebuilt[u.Status], id)

		next := 1
		for _, it := range u.Rules {
			next = max(next, it.ID+1)
		}
		for _, it := range u.Examples {
			next = max(next, it.ID+1)
		}
		for _, it := range u.Questions {
			next = max(next, it.ID+1)
		}
		for _, it := range u.ArchitectureNotes {
			next = max(next, it.ID+1)
		}
		for _, it := range u.EventStorm.Items {
			next = max(next, it.ID+1)
		}
		if u.EventStorm.NextItemID < next {
			u.EventStorm.NextItemID = next
		}
	}
	d.States = rebuilt
	return nil
}

func sortedUnitIDs(d *domain.WorkUnitsData) []string {
	ids := make([]string, 0, len(d.WorkUnits))
	for id := range d.WorkUnits {
		ids = append(ids, id)
	}
	// Insertion order is lost in a versionless document; sorted order is
	// the deterministic substitute.
	sort.Strings(ids)
	return ids
}

// migrateEpics normalizes the epics document; it has never changed
// shape, so only missing maps are repaired.
func migrateEpics(path string, d *domain.EpicsData) error {
	if d.Epics == nil {
		d.Epics = map[string]*domain.Epic{}
	}
	for id, e := range d.Epics {
		if e == nil {
			return &MigrationError{Path: path, Err: fmt.Errorf("epic %s has no record", id)}
		}
		e.ID = id
	}
	return nil
}

// migratePrefixes normalizes the prefixes document.
func migratePrefixes(path string, d *domain.PrefixesData) error {
	if d.Prefixes == nil {
		d.Prefixes = map[string]*domain.Prefix{}
	}
	for id, p := range d.Prefixes {
		if p == nil {
			return &MigrationError{Path: path, Err: fmt.Errorf("prefix %s has no record", id)}
		}
		p.ID = id
	}
	return nil
}
