package app

import (
	"context"

	"fspec/internal/domain"
)

// TransitionResult reports an applied stage change.
type TransitionResult struct {
	Success    bool              `json:"success"`
	Transition domain.Transition `json:"transition"`
}

// SetStatus applies a manual stage transition in one transaction.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.Status) (TransitionResult, error) {
	var tr domain.Transition
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		var err error
		tr, err = d.SetStatus(id, status, s.clock())
		return err
	})
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{Success: true, Transition: tr}, nil
}

// AdvanceResult reports an auto-advance attempt. Success is true even
// when nothing applied: re-delivered events are expected and harmless.
type AdvanceResult struct {
	Success bool                     `json:"success"`
	Result  domain.AutoAdvanceResult `json:"result"`
}

// AutoAdvance consults the declarative rule table for (from, event) and
// applies the transition when the unit is still in from.
func (s *Service) AutoAdvance(ctx context.Context, id string, from domain.Status, event string) (AdvanceResult, error) {
	var res domain.AutoAdvanceResult
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		var err error
		res, err = d.AutoAdvance(id, from, event, s.clock())
		return err
	})
	if err != nil {
		return AdvanceResult{}, err
	}
	return AdvanceResult{Success: true, Result: res}, nil
}

// HistoryResult wraps a unit's append-only transition history.
type HistoryResult struct {
	Success bool                `json:"success"`
	ID      string              `json:"id"`
	History []domain.StateEntry `json:"history"`
}

// History returns a unit's transition history, earliest first.
func (s *Service) History(ctx context.Context, id string) (HistoryResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return HistoryResult{}, err
	}
	u, err := d.Unit(id)
	if err != nil {
		return HistoryResult{}, err
	}
	return HistoryResult{Success: true, ID: id, History: u.StateHistory}, nil
}
