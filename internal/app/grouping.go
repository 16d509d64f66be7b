package app

import (
	"context"
	"sort"

	"fspec/internal/domain"
)

// EpicResult wraps a single epic.
type EpicResult struct {
	Success bool         `json:"success"`
	Epic    *domain.Epic `json:"epic"`
}

// CreateEpic registers a new epic after validating its kebab-case id.
func (s *Service) CreateEpic(ctx context.Context, id, title string) (EpicResult, error) {
	var epic *domain.Epic
	_, err := s.store.UpdateEpics(ctx, func(d *domain.EpicsData) error {
		var err error
		epic, err = d.AddEpic(id, title, s.clock())
		return err
	})
	if err != nil {
		return EpicResult{}, err
	}
	return EpicResult{Success: true, Epic: epic}, nil
}

// EpicListResult lists all epics.
type EpicListResult struct {
	Success bool           `json:"success"`
	Epics   []*domain.Epic `json:"epics"`
}

// ListEpics returns every epic, sorted by id.
func (s *Service) ListEpics(ctx context.Context) (EpicListResult, error) {
	d, err := s.store.ReadEpics(ctx)
	if err != nil {
		return EpicListResult{}, err
	}
	res := EpicListResult{Success: true, Epics: []*domain.Epic{}}
	for _, e := range d.Epics {
		res.Epics = append(res.Epics, e)
	}
	sort.Slice(res.Epics, func(i, j int) bool { return res.Epics[i].ID < res.Epics[j].ID })
	return res, nil
}

// AssignEpic links a work unit to an epic, updating the unit's epic
// field and the epic's member list together. An empty epic id detaches
// the unit.
func (s *Service) AssignEpic(ctx context.Context, unitID, epicID string) (WorkUnitResult, error) {
	var unit *domain.WorkUnit
	err := s.store.UpdateWorkUnitsAndEpics(ctx, func(units *domain.WorkUnitsData, epics *domain.EpicsData) error {
		u, err := units.Unit(unitID)
		if err != nil {
			return err
		}
		now := s.clock()

		if u.Epic != "" && u.Epic != epicID {
			if prev, ok := epics.Epics[u.Epic]; ok {
				prev.RemoveWorkUnit(unitID, now)
			}
		}
		if epicID != "" {
			e, err := epics.Epic(epicID)
			if err != nil {
				return err
			}
			e.AddWorkUnit(unitID, now)
		}
		u.Epic = epicID
		u.UpdatedAt = now.UTC()
		unit = u
		return nil
	})
	if err != nil {
		return WorkUnitResult{}, err
	}
	return WorkUnitResult{Success: true, WorkUnit: unit}, nil
}

// EpicProgressResult wraps the roll-up for one epic.
type EpicProgressResult struct {
	Success  bool                `json:"success"`
	Progress domain.EpicProgress `json:"progress"`
}

// EpicProgress rolls up completion counts and story points over the
// epic's referenced units.
func (s *Service) EpicProgress(ctx context.Context, epicID string) (EpicProgressResult, error) {
	epics, err := s.store.ReadEpics(ctx)
	if err != nil {
		return EpicProgressResult{}, err
	}
	e, err := epics.Epic(epicID)
	if err != nil {
		return EpicProgressResult{}, err
	}
	units, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return EpicProgressResult{}, err
	}
	return EpicProgressResult{Success: true, Progress: e.Progress(units)}, nil
}

// DeleteEpicResult reports an epic deletion.
type DeleteEpicResult struct {
	Success      bool   `json:"success"`
	EpicID       string `json:"epicId"`
	ClearedUnits int    `json:"clearedUnits"`
}

// DeleteEpic removes the epic record. Work units are never deleted with
// it: with force, every referencing unit has its epic field cleared in
// the same multi-document mutation; without force, deletion fails while
// references remain.
func (s *Service) DeleteEpic(ctx context.Context, epicID string, force bool) (DeleteEpicResult, error) {
	cleared := 0
	err := s.store.UpdateWorkUnitsAndEpics(ctx, func(units *domain.WorkUnitsData, epics *domain.EpicsData) error {
		if _, err := epics.Epic(epicID); err != nil {
			return err
		}
		var referencing []string
		for _, id := range units.UnitIDs() {
			if units.WorkUnits[id].Epic == epicID {
				referencing = append(referencing, id)
			}
		}
		if len(referencing) > 0 && !force {
			return domain.NewState("epic %s still has %d work units; use force to detach them", epicID, len(referencing))
		}
		now := s.clock().UTC()
		for _, id := range referencing {
			units.WorkUnits[id].Epic = ""
			units.WorkUnits[id].UpdatedAt = now
			cleared++
		}
		delete(epics.Epics, epicID)
		return nil
	})
	if err != nil {
		return DeleteEpicResult{}, err
	}
	return DeleteEpicResult{Success: true, EpicID: epicID, ClearedUnits: cleared}, nil
}

// PrefixResult wraps a single prefix.
type PrefixResult struct {
	Success bool           `json:"success"`
	Prefix  *domain.Prefix `json:"prefix"`
}

// CreatePrefix registers a new identifier namespace.
func (s *Service) CreatePrefix(ctx context.Context, id, description string) (PrefixResult, error) {
	var prefix *domain.Prefix
	_, err := s.store.UpdatePrefixes(ctx, func(d *domain.PrefixesData) error {
		var err error
		prefix, err = d.AddPrefix(id, description, s.clock())
		return err
	})
	if err != nil {
		return PrefixResult{}, err
	}
	return PrefixResult{Success: true, Prefix: prefix}, nil
}

// PrefixListResult lists all prefixes.
type PrefixListResult struct {
	Success  bool             `json:"success"`
	Prefixes []*domain.Prefix `json:"prefixes"`
}

// ListPrefixes returns every prefix, sorted by id.
func (s *Service) ListPrefixes(ctx context.Context) (PrefixListResult, error) {
	d, err := s.store.ReadPrefixes(ctx)
	if err != nil {
		return PrefixListResult{}, err
	}
	res := PrefixListResult{Success: true, Prefixes: []*domain.Prefix{}}
	for _, p := range d.Prefixes {
		res.Prefixes = append(res.Prefixes, p)
	}
	sort.Slice(res.Prefixes, func(i, j int) bool { return res.Prefixes[i].ID < res.Prefixes[j].ID })
	return res, nil
}

// DeletePrefixResult reports a prefix deletion.
type DeletePrefixResult struct {
	Success  bool   `json:"success"`
	PrefixID string `json:"prefixId"`
}

// DeletePrefix removes an identifier namespace. Namespaces with live
// work units cannot be deleted; the in-use check holds the work-units
// lock through the commit so a concurrent creation cannot race past it.
func (s *Service) DeletePrefix(ctx context.Context, prefixID string) (DeletePrefixResult, error) {
	err := s.store.UpdateWorkUnitsAndPrefixes(ctx, func(units *domain.WorkUnitsData, d *domain.PrefixesData) error {
		if _, err := d.Prefix(prefixID); err != nil {
			return err
		}
		if used := units.UnitsWithPrefix(prefixID); len(used) > 0 {
			return domain.NewState("prefix %s is used by %d work units", prefixID, len(used))
		}
		delete(d.Prefixes, prefixID)
		return nil
	})
	if err != nil {
		return DeletePrefixResult{}, err
	}
	return DeletePrefixResult{Success: true, PrefixID: prefixID}, nil
}
