package app

import (
	"context"

	"fspec/internal/domain"
)

// BlockResult reports an edge mutation.
type BlockResult struct {
	Success bool     `json:"success"`
	Blocker string   `json:"blocker"`
	Blocks  []string `json:"blocks"`
}

// Block records that blocker blocks blocked.
func (s *Service) Block(ctx context.Context, blockerID, blockedID string) (BlockResult, error) {
	var blocks []string
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		if err := d.Block(blockerID, blockedID, s.clock()); err != nil {
			return err
		}
		blocks = d.WorkUnits[blockerID].Blocks
		return nil
	})
	if err != nil {
		return BlockResult{}, err
	}
	return BlockResult{Success: true, Blocker: blockerID, Blocks: blocks}, nil
}

// Unblock removes a blocking edge.
func (s *Service) Unblock(ctx context.Context, blockerID, blockedID string) (BlockResult, error) {
	var blocks []string
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		if err := d.Unblock(blockerID, blockedID, s.clock()); err != nil {
			return err
		}
		blocks = d.WorkUnits[blockerID].Blocks
		return nil
	})
	if err != nil {
		return BlockResult{}, err
	}
	return BlockResult{Success: true, Blocker: blockerID, Blocks: blocks}, nil
}

// BlockedResult reports one unit's transitive blast radius.
type BlockedResult struct {
	Success    bool     `json:"success"`
	ID         string   `json:"id"`
	Direct     []string `json:"direct"`
	Transitive []string `json:"transitive"`
}

// TransitiveBlocked computes everything a unit holds up, directly or
// through intermediate units.
func (s *Service) TransitiveBlocked(ctx context.Context, id string) (BlockedResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return BlockedResult{}, err
	}
	transitive, err := d.TransitiveBlocked(id)
	if err != nil {
		return BlockedResult{}, err
	}
	return BlockedResult{
		Success:    true,
		ID:         id,
		Direct:     d.WorkUnits[id].Blocks,
		Transitive: transitive,
	}, nil
}

// BottlenecksResult ranks actionable bottlenecks.
type BottlenecksResult struct {
	Success     bool                `json:"success"`
	Bottlenecks []domain.Bottleneck `json:"bottlenecks"`
}

// Bottlenecks ranks units by how much work they transitively hold up.
func (s *Service) Bottlenecks(ctx context.Context) (BottlenecksResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return BottlenecksResult{}, err
	}
	return BottlenecksResult{Success: true, Bottlenecks: d.Bottlenecks()}, nil
}
