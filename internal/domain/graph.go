package domain

import (
	"slices"
	"sort"
	"time"
)

// Block records that blocker blocks blocked. Adding an existing edge is a
// no-op. Self-edges are rejected.
func (d *WorkUnitsData) Block(blockerID, blockedID string, now time.Time) error {
	if blockerID == blockedID {
		return NewValidation("work unit %s cannot block itself", blockerID)
	}
	blocker, err := d.Unit(blockerID)
	if err != nil {
		return err
	}
	if _, err := d.Unit(blockedID); err != nil {
		return err
	}
	if slices.Contains(blocker.Blocks, blockedID) {
		return nil
	}
	blocker.Blocks = append(blocker.Blocks, blockedID)
	blocker.UpdatedAt = now.UTC()
	return nil
}

// Unblock removes an edge. Removing an absent edge is a no-op.
func (d *WorkUnitsData) Unblock(blockerID, blockedID string, now time.Time) error {
	blocker, err := d.Unit(blockerID)
	if err != nil {
		return err
	}
	if i := slices.Index(blocker.Blocks, blockedID); i >= 0 {
		blocker.Blocks = slices.Delete(blocker.Blocks, i, i+1)
		blocker.UpdatedAt = now.UTC()
	}
	return nil
}

// TransitiveBlocked returns every work unit reachable from id along
// Blocks edges, excluding id itself. The blocks graph may contain cycles;
// the visited set guarantees termination, a revisited id contributes
// nothing further. Results are sorted for stable output.
func (d *WorkUnitsData) TransitiveBlocked(id string) ([]string, error) {
	if _, err := d.Unit(id); err != nil {
		return nil, err
	}
	visited := map[string]bool{id: true}
	var reached []string
	stack := slices.Clone(d.WorkUnits[id].Blocks)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[next] {
			continue
		}
		visited[next] = true
		reached = append(reached, next)
		if u, ok := d.WorkUnits[next]; ok {
			stack = append(stack, u.Blocks...)
		}
	}
	sort.Strings(reached)
	return reached, nil
}

// Bottleneck ranks one work unit by how many units it transitively
// blocks.
type Bottleneck struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Status         Status   `json:"status"`
	Score          int      `json:"score"`
	Direct         []string `json:"direct"`
	TransitiveOnly []string `json:"transitiveOnly,omitempty"`
}

// minBottleneckScore filters out units that only hold up one other unit.
const minBottleneckScore = 2

// Bottlenecks ranks actionable bottlenecks: units that are neither done
// nor blocked, have outgoing edges, and transitively block at least two
// units. Sorted by score descending; ties keep board encounter order.
func (d *WorkUnitsData) Bottlenecks() []Bottleneck {
	var out []Bottleneck
	for _, id := range d.UnitIDs() {
		u := d.WorkUnits[id]
		if u.Status == StatusDone || u.Status == StatusBlocked {
			continue
		}
		if len(u.Blocks) == 0 {
			continue
		}
		transitive, err := d.TransitiveBlocked(id)
		if err != nil {
			continue
		}
		if len(transitive) < minBottleneckScore {
			continue
		}
		direct := slices.Clone(u.Blocks)
		sort.Strings(direct)
		var indirect []string
		for _, t := range transitive {
			if !slices.Contains(direct, t) {
				indirect = append(indirect, t)
			}
		}
		out = append(out, Bottleneck{
			ID:             id,
			Title:          u.Title,
			Status:         u.Status,
			Score:          len(transitive),
			Direct:         direct,
			TransitiveOnly: indirect,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
