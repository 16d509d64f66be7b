package app

import (
	"context"

	"fspec/internal/domain"
)

// EstimateResult reports an estimate assignment.
type EstimateResult struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Estimate int    `json:"estimate"`
}

// AssignEstimate sets a unit's story point value from the closed set.
func (s *Service) AssignEstimate(ctx context.Context, id string, points int) (EstimateResult, error) {
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		u, err := d.Unit(id)
		if err != nil {
			return err
		}
		return u.SetEstimate(points, s.clock())
	})
	if err != nil {
		return EstimateResult{}, err
	}
	return EstimateResult{Success: true, ID: id, Estimate: points}, nil
}

// MetricsResult reports a unit's accumulated consumption.
type MetricsResult struct {
	Success bool           `json:"success"`
	ID      string         `json:"id"`
	Metrics domain.Metrics `json:"metrics"`
}

// RecordTokens accumulates consumed tokens onto a unit.
func (s *Service) RecordTokens(ctx context.Context, id string, delta int) (MetricsResult, error) {
	var metrics domain.Metrics
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		u, err := d.Unit(id)
		if err != nil {
			return err
		}
		if err := u.RecordTokens(delta, s.clock()); err != nil {
			return err
		}
		metrics = u.Metrics
		return nil
	})
	if err != nil {
		return MetricsResult{}, err
	}
	return MetricsResult{Success: true, ID: id, Metrics: metrics}, nil
}

// IncrementIteration bumps a unit's iteration counter.
func (s *Service) IncrementIteration(ctx context.Context, id string) (MetricsResult, error) {
	var metrics domain.Metrics
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		u, err := d.Unit(id)
		if err != nil {
			return err
		}
		u.IncrementIteration(s.clock())
		metrics = u.Metrics
		return nil
	})
	if err != nil {
		return MetricsResult{}, err
	}
	return MetricsResult{Success: true, ID: id, Metrics: metrics}, nil
}

// CycleTimeResult reports elapsed whole hours from first transition to
// done. Completed is false when the unit has not reached done.
type CycleTimeResult struct {
	Success   bool   `json:"success"`
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
	Hours     int    `json:"hours"`
}

// CycleTime computes a unit's backlog-to-done elapsed time.
func (s *Service) CycleTime(ctx context.Context, id string) (CycleTimeResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return CycleTimeResult{}, err
	}
	u, err := d.Unit(id)
	if err != nil {
		return CycleTimeResult{}, err
	}
	hours, ok := u.CycleTime()
	return CycleTimeResult{Success: true, ID: id, Completed: ok, Hours: hours}, nil
}

// UnitAccuracyResult compares one unit's consumption to its estimate.
type UnitAccuracyResult struct {
	Success  bool                `json:"success"`
	Accuracy domain.UnitAccuracy `json:"accuracy"`
}

// EstimateAccuracy evaluates a single unit against the expected-range
// heuristic.
func (s *Service) EstimateAccuracy(ctx context.Context, id string) (UnitAccuracyResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return UnitAccuracyResult{}, err
	}
	u, err := d.Unit(id)
	if err != nil {
		return UnitAccuracyResult{}, err
	}
	return UnitAccuracyResult{Success: true, Accuracy: u.Accuracy(s.tokensPerPoint)}, nil
}

// AccuracySummaryResult aggregates done units by estimate bucket.
type AccuracySummaryResult struct {
	Success bool                    `json:"success"`
	Buckets []domain.EstimateBucket `json:"buckets"`
}

// EstimateAccuracySummary aggregates per-point averages over done units.
func (s *Service) EstimateAccuracySummary(ctx context.Context) (AccuracySummaryResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return AccuracySummaryResult{}, err
	}
	return AccuracySummaryResult{Success: true, Buckets: d.EstimateBuckets()}, nil
}

// PrefixAccuracyResult reports calibration per identifier prefix.
type PrefixAccuracyResult struct {
	Success        bool                    `json:"success"`
	TokensPerPoint int                     `json:"tokensPerPoint"`
	Prefixes       []domain.PrefixAccuracy `json:"prefixes"`
}

// EstimateAccuracyByPrefix classifies each prefix group against the
// configured tokens-per-point baseline.
func (s *Service) EstimateAccuracyByPrefix(ctx context.Context) (PrefixAccuracyResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return PrefixAccuracyResult{}, err
	}
	return PrefixAccuracyResult{
		Success:        true,
		TokensPerPoint: s.tokensPerPoint,
		Prefixes:       d.AccuracyByPrefix(s.tokensPerPoint),
	}, nil
}

// GuideResult reports forward-looking estimation guidance.
type GuideResult struct {
	Success bool                 `json:"success"`
	Buckets []domain.GuideBucket `json:"buckets"`
}

// EstimationGuide reports observed consumption ranges per estimate
// bucket with a sample-count confidence qualifier.
func (s *Service) EstimationGuide(ctx context.Context) (GuideResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return GuideResult{}, err
	}
	return GuideResult{Success: true, Buckets: d.EstimationGuide(s.guideSamples)}, nil
}
