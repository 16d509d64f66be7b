package app

import (
	"context"

	"fspec/internal/domain"
)

// AddItemInput carries the payload for a new exploration item.
type AddItemInput struct {
	UnitID         string
	Kind           domain.ItemKind
	Text           string
	Actor          string
	Timestamp      string
	BoundedContext string
	Concern        string
}

// ItemResult reports a ledger mutation.
type ItemResult struct {
	Success bool             `json:"success"`
	UnitID  string           `json:"unitId"`
	Item    domain.AddedItem `json:"item"`
	Message string           `json:"message,omitempty"`
}

// AddItem appends one exploration item of any of the eight kinds.
func (s *Service) AddItem(ctx context.Context, in AddItemInput) (ItemResult, error) {
	var added domain.AddedItem
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		u, err := d.Unit(in.UnitID)
		if err != nil {
			return err
		}
		added, err = u.AddItem(domain.AddItemInput{
			Kind:           in.Kind,
			Text:           in.Text,
			Actor:          in.Actor,
			Timestamp:      in.Timestamp,
			BoundedContext: in.BoundedContext,
			Concern:        in.Concern,
		}, s.clock())
		return err
	})
	if err != nil {
		return ItemResult{}, err
	}
	return ItemResult{Success: true, UnitID: in.UnitID, Item: added}, nil
}

// SoftDeleteItem flags an item deleted; re-deleting is a successful
// no-op.
func (s *Service) SoftDeleteItem(ctx context.Context, unitID string, kind domain.ItemKind, itemID int) (ItemResult, error) {
	var changed bool
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		u, err := d.Unit(unitID)
		if err != nil {
			return err
		}
		changed, err = u.SoftDelete(kind, itemID, s.clock())
		return err
	})
	if err != nil {
		return ItemResult{}, err
	}
	res := ItemResult{Success: true, UnitID: unitID, Item: domain.AddedItem{Kind: kind, ID: itemID}}
	if !changed {
		res.Message = "item was already deleted"
	}
	return res, nil
}

// RestoreItem clears an item's deletion flags; restoring an active item
// is a successful no-op with a message.
func (s *Service) RestoreItem(ctx context.Context, unitID string, kind domain.ItemKind, itemID int) (ItemResult, error) {
	var changed bool
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		u, err := d.Unit(unitID)
		if err != nil {
			return err
		}
		changed, err = u.Restore(kind, itemID, s.clock())
		return err
	})
	if err != nil {
		return ItemResult{}, err
	}
	res := ItemResult{Success: true, UnitID: unitID, Item: domain.AddedItem{Kind: kind, ID: itemID}}
	if !changed {
		res.Message = "item was not deleted"
	}
	return res, nil
}

// DeletedItemsResult lists every soft-deleted item on a unit.
type DeletedItemsResult struct {
	Success bool                 `json:"success"`
	UnitID  string               `json:"unitId"`
	Items   []domain.DeletedItem `json:"items"`
}

// ListDeletedItems returns all soft-deleted items across the eight
// lists, tagged with their original kind.
func (s *Service) ListDeletedItems(ctx context.Context, unitID string) (DeletedItemsResult, error) {
	d, err := s.store.ReadWorkUnits(ctx)
	if err != nil {
		return DeletedItemsResult{}, err
	}
	u, err := d.Unit(unitID)
	if err != nil {
		return DeletedItemsResult{}, err
	}
	return DeletedItemsResult{Success: true, UnitID: unitID, Items: u.DeletedItems()}, nil
}

// StormLevelResult reports an event-storm level change.
type StormLevelResult struct {
	Success bool   `json:"success"`
	UnitID  string `json:"unitId"`
	Level   string `json:"level"`
}

// SetEventStormLevel sets the storm granularity on a unit.
func (s *Service) SetEventStormLevel(ctx context.Context, unitID, level string) (StormLevelResult, error) {
	_, err := s.store.UpdateWorkUnits(ctx, func(d *domain.WorkUnitsData) error {
		u, err := d.Unit(unitID)
		if err != nil {
			return err
		}
		return u.SetEventStormLevel(level, s.clock())
	})
	if err != nil {
		return StormLevelResult{}, err
	}
	return StormLevelResult{Success: true, UnitID: unitID, Level: level}, nil
}
