// Package app exposes one service method per tracker operation. Every
// method opens exactly one store transaction, delegates the pure work to
// the domain package, and returns a typed result.
package app

import (
	"context"
	"time"

	"fspec/internal/domain"
	"fspec/internal/storage/jsonfile"
)

// Estimation defaults applied when config leaves the tunables unset.
const (
	DefaultTokensPerPoint         = 25000
	DefaultGuideConfidenceSamples = 3
)

// Clock returns the current time.
type Clock func() time.Time

// Config holds service tunables. TokensPerPoint is the expected-token
// baseline behind prefix calibration; it is a product setting, not a
// structural constant.
type Config struct {
	TokensPerPoint         int
	GuideConfidenceSamples int
}

// Service implements the tracker operations over one store handle.
type Service struct {
	store          *jsonfile.Store
	clock          Clock
	tokensPerPoint int
	guideSamples   int
}

// NewService constructs a service bound to a store handle.
func NewService(store *jsonfile.Store, clock Clock, cfg Config) *Service {
	if clock == nil {
		clock = time.Now
	}
	if cfg.TokensPerPoint <= 0 {
		cfg.TokensPerPoint = DefaultTokensPerPoint
	}
	if cfg.GuideConfidenceSamples <= 0 {
		cfg.GuideConfidenceSamples = DefaultGuideConfidenceSamples
	}
	return &Service{
		store:          store,
		clock:          clock,
		tokensPerPoint: cfg.TokensPerPoint,
		guideSamples:   cfg.GuideConfidenceSamples,
	}
}

// WorkUnitResult wraps a single work unit.
type WorkUnitResult struct {
	Success  bool             `json:"success"`
	WorkUnit *domain.WorkUnit `json:"workUnit"`
}

// CreateWorkUnitInput holds creation parameters. The id is allocated
// from the prefix namespace.
type CreateWorkUnitInput struct {
	Prefix string
	Type   domain.WorkUnitType
	Title  string
}

// CreateWorkUnit allocates the next id in the prefix namespace and
// creates the unit in backlog. The prefix must be registered first; the
// check runs inside the same two-document transaction as the write, so
// a concurrent prefix deletion cannot slip between them.
func (s *Service) CreateWorkUnit(ctx context.Context, in CreateWorkUnitInput) (WorkUnitResult, error) {
	if err := domain.ValidatePrefixID(in.Prefix); err != nil {
		return WorkUnitResult{}, err
	}
	var unit *domain.WorkUnit
	err := s.store.UpdateWorkUnitsAndPrefixes(ctx, func(d *domain.WorkUnitsData, prefixes *domain.PrefixesData) error {
		if _, err := prefixes.Prefix(in.Prefix); err != nil {
			return err
		}
		var err error
		unit, err = d.AddWorkUnit(domain.NewWorkUnitInput{
			ID:    d.NextWorkUnitID(in.Prefix),
			Type:  in.Type,
			Title: in.Title,
		}, s.clock())
		return err
	})
	if err != nil {
		return WorkUnitResult{}, err
	}
	return WorkUnitResult{Success: true, WorkUnit: unit}, nil
}

// GetWorkUnit returns one unit from a committed snapshot.
func (s *Service) GetWorkUnit(ctx context.Context, id string) (WorkUnitResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return WorkUnitResult{}, err
	}
	u, err := d.Unit(id)
	if err != nil {
		return WorkUnitResult{}, err
	}
	return WorkUnitResult{Success: true, WorkUnit: u}, nil
}

// WorkUnitListResult wraps a filtered unit listing.
type WorkUnitListResult struct {
	Success   bool               `json:"success"`
	WorkUnits []*domain.WorkUnit `json:"workUnits"`
}

// ListWorkUnits returns units in board order, optionally filtered by
// stage.
func (s *Service) ListWorkUnits(ctx context.Context, status domain.Status) (WorkUnitListResult, error) {
	if status != "" && !domain.ValidStatus(status) {
		return WorkUnitListResult{}, domain.NewState("unknown stage %q", status)
	}
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return WorkUnitListResult{}, err
	}
	res := WorkUnitListResult{Success: true, WorkUnits: []*domain.WorkUnit{}}
	for _, id := range d.UnitIDs() {
		u := d.WorkUnits[id]
		if status != "" && u.Status != status {
			continue
		}
		res.WorkUnits = append(res.WorkUnits, u)
	}
	return res, nil
}

// BoardColumn is one stage bucket in the board summary.
type BoardColumn struct {
	Status domain.Status `json:"status"`
	Units  []BoardEntry  `json:"units"`
}

// BoardEntry is one unit line on the board.
type BoardEntry struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Type     domain.WorkUnitType `json:"type"`
	Estimate *int                `json:"estimate,omitempty"`
}

// BoardResult summarizes the whole collection by stage.
type BoardResult struct {
	Success bool          `json:"success"`
	Columns []BoardColumn `json:"columns"`
}

// Board returns the per-stage view of the collection from one committed
// snapshot.
func (s *Service) Board(ctx context.Context) (BoardResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return BoardResult{}, err
	}
	res := BoardResult{Success: true}
	for _, status := range domain.StatusOrder {
		col := BoardColumn{Status: status, Units: []BoardEntry{}}
		for _, id := range d.States[status] {
			u := d.WorkUnits[id]
			col.Units = append(col.Units, BoardEntry{ID: u.ID, Title: u.Title, Type: u.Type, Estimate: u.Estimate})
		}
		res.Columns = append(res.Columns, col)
	}
	return res, nil
}
