package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValidEstimates is the closed set of accepted story point values.
var ValidEstimates = []int{1, 2, 3, 5, 8, 13, 21}

// ValidEstimate reports whether v is an accepted story point value.
func ValidEstimate(v int) bool {
	for _, e := range ValidEstimates {
		if e == v {
			return true
		}
	}
	return false
}

// EstimateList renders the valid set for error messages: "1, 2, 3, 5, 8, 13, 21".
func EstimateList() string {
	parts := make([]string, len(ValidEstimates))
	for i, e := range ValidEstimates {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ", ")
}

// SetEstimate assigns a story point value from the closed set.
func (u *WorkUnit) SetEstimate(points int, now time.Time) error {
	if !ValidEstimate(points) {
		return NewValidation("invalid estimate %d: valid values are %s", points, EstimateList())
	}
	u.Estimate = &points
	u.UpdatedAt = now.UTC()
	return nil
}

// RecordTokens accumulates consumed tokens. The accumulator never
// decreases, so negative deltas are rejected.
func (u *WorkUnit) RecordTokens(delta int, now time.Time) error {
	if delta < 0 {
		return NewValidation("token delta must be >= 0, got %d", delta)
	}
	u.Metrics.ActualTokens += delta
	u.UpdatedAt = now.UTC()
	return nil
}

// IncrementIteration bumps the iteration counter by one.
func (u *WorkUnit) IncrementIteration(now time.Time) {
	u.Metrics.Iterations++
	u.UpdatedAt = now.UTC()
}

// CycleTime returns the whole hours between the unit's first recorded
// transition and its done entry. ok is false when the unit never reached
// done.
func (u *WorkUnit) CycleTime() (hours int, ok bool) {
	if len(u.StateHistory) == 0 {
		return 0, false
	}
	start := u.StateHistory[0].Timestamp
	for _, entry := range u.StateHistory {
		if entry.State == StatusDone {
			return int(entry.Timestamp.Sub(start).Hours()), true
		}
	}
	return 0, false
}

// Comparison outcomes for single-unit estimate accuracy.
const (
	ComparisonWithin  = "within expected range"
	ComparisonAbove   = "above expected range"
	ComparisonBelow   = "below expected range"
	ComparisonNoData  = "no estimate assigned"
	comparisonBandPct = 50
)

// UnitAccuracy compares one unit's actual consumption against its
// estimate.
type UnitAccuracy struct {
	ID           string `json:"id"`
	Estimated    int    `json:"estimated"`
	ActualTokens int    `json:"actualTokens"`
	Iterations   int    `json:"iterations"`
	Comparison   string `json:"comparison"`
}

// Accuracy evaluates the unit against the expected-range heuristic:
// expected tokens are estimate times tokensPerPoint, and actuals within
// half of expected either way count as within range.
func (u *WorkUnit) Accuracy(tokensPerPoint int) UnitAccuracy {
	acc := UnitAccuracy{
		ID:           u.ID,
		ActualTokens: u.Metrics.ActualTokens,
		Iterations:   u.Metrics.Iterations,
		Comparison:   ComparisonNoData,
	}
	if u.Estimate == nil {
		return acc
	}
	acc.Estimated = *u.Estimate
	expected := *u.Estimate * tokensPerPoint
	band := expected * comparisonBandPct / 100
	switch {
	case u.Metrics.ActualTokens > expected+band:
		acc.Comparison = ComparisonAbove
	case u.Metrics.ActualTokens < expected-band:
		acc.Comparison = ComparisonBelow
	default:
		acc.Comparison = ComparisonWithin
	}
	return acc
}

// EstimateBucket aggregates done units that share an estimate value.
type EstimateBucket struct {
	Bucket        string  `json:"bucket"`
	Points        int     `json:"points"`
	AvgTokens     float64 `json:"avgTokens"`
	AvgIterations float64 `json:"avgIterations"`
	Samples       int     `json:"samples"`
}

// doneByEstimate groups done, estimated units by point value.
func (d *WorkUnitsData) doneByEstimate() map[int][]*WorkUnit {
	groups := map[int][]*WorkUnit{}
	for _, id := range d.States[StatusDone] {
		u := d.WorkUnits[id]
		if u == nil || u.Estimate == nil {
			continue
		}
		groups[*u.Estimate] = append(groups[*u.Estimate], u)
	}
	return groups
}

// EstimateBuckets computes per-point averages over done units. Buckets
// are labeled "<N>-point" and sorted ascending by point value.
func (d *WorkUnitsData) EstimateBuckets() []EstimateBucket {
	groups := d.doneByEstimate()
	out := make([]EstimateBucket, 0, len(groups))
	for points, units := range groups {
		var tokens, iterations int
		for _, u := range units {
			tokens += u.Metrics.ActualTokens
			iterations += u.Metrics.Iterations
		}
		n := len(units)
		out = append(out, EstimateBucket{
			Bucket:        fmt.Sprintf("%d-point", points),
			Points:        points,
			AvgTokens:     float64(tokens) / float64(n),
			AvgIterations: float64(iterations) / float64(n),
			Samples:       n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points < out[j].Points })
	return out
}

// Calibration assessments for prefix-level accuracy.
const (
	AssessmentCalibrated    = "well-calibrated"
	AssessmentUnderEstimate = "under-estimating"
	AssessmentOverEstimate  = "over-estimating"

	RecommendIncrease = "increase estimates"
	RecommendDecrease = "decrease estimates"

	calibrationBandPct = 10
)

// PrefixAccuracy reports calibration for one identifier prefix.
type PrefixAccuracy struct {
	Prefix         string  `json:"prefix"`
	Samples        int     `json:"samples"`
	TotalPoints    int     `json:"totalPoints"`
	ExpectedTokens int     `json:"expectedTokens"`
	ActualTokens   int     `json:"actualTokens"`
	DeviationPct   float64 `json:"deviationPct"`
	Assessment     string  `json:"assessment"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// AccuracyByPrefix groups done, estimated units by the alphabetic prefix
// of their id and compares total actual tokens against the baseline of
// total points times tokensPerPoint. Deviations inside ten percent either
// way are well-calibrated; beyond that the report recommends adjusting
// estimates in the compensating direction.
func (d *WorkUnitsData) AccuracyByPrefix(tokensPerPoint int) []PrefixAccuracy {
	type group struct {
		points  int
		tokens  int
		samples int
	}
	groups := map[string]*group{}
	for _, id := range d.States[StatusDone] {
		u := d.WorkUnits[id]
		if u == nil || u.Estimate == nil {
			continue
		}
		prefix := IDPrefix(id)
		g := groups[prefix]
		if g == nil {
			g = &group{}
			groups[prefix] = g
		}
		g.points += *u.Estimate
		g.tokens += u.Metrics.ActualTokens
		g.samples++
	}

	prefixes := make([]string, 0, len(groups))
	for p := range groups {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	out := make([]PrefixAccuracy, 0, len(prefixes))
	for _, prefix := range prefixes {
		g := groups[prefix]
		expected := g.points * tokensPerPoint
		acc := PrefixAccuracy{
			Prefix:         prefix,
			Samples:        g.samples,
			TotalPoints:    g.points,
			ExpectedTokens: expected,
			ActualTokens:   g.tokens,
		}
		if expected > 0 {
			acc.DeviationPct = (float64(g.tokens) - float64(expected)) / float64(expected) * 100
		}
		switch {
		case acc.DeviationPct > calibrationBandPct:
			acc.Assessment = AssessmentUnderEstimate
			acc.Recommendation = RecommendIncrease
		case acc.DeviationPct < -calibrationBandPct:
			acc.Assessment = AssessmentOverEstimate
			acc.Recommendation = RecommendDecrease
		default:
			acc.Assessment = AssessmentCalibrated
		}
		out = append(out, acc)
	}
	return out
}

// Guide confidence qualifiers.
const (
	ConfidenceLow  = "low"
	ConfidenceHigh = "high"
)

// GuideBucket reports observed consumption ranges for one estimate value.
type GuideBucket struct {
	Bucket        string `json:"bucket"`
	Points        int    `json:"points"`
	MinTokens     int    `json:"minTokens"`
	MaxTokens     int    `json:"maxTokens"`
	MinIterations int    `json:"minIterations"`
	MaxIterations int    `json:"maxIterations"`
	Samples       int    `json:"samples"`
	Confidence    string `json:"confidence"`
}

// EstimationGuide reports, per estimate bucket observed among done units,
// the token and iteration ranges plus a confidence qualifier driven by
// sample count.
func (d *WorkUnitsData) EstimationGuide(confidenceSamples int) []GuideBucket {
	groups := d.doneByEstimate()
	out := make([]GuideBucket, 0, len(groups))
	for points, units := range groups {
		b := GuideBucket{
			Bucket:        fmt.Sprintf("%d-point", points),
			Points:        points,
			MinTokens:     units[0].Metrics.ActualTokens,
			MaxTokens:     units[0].Metrics.ActualTokens,
			MinIterations: units[0].Metrics.Iterations,
			MaxIterations: units[0].Metrics.Iterations,
			Samples:       len(units),
		}
		for _, u := range units[1:] {
			b.MinTokens = min(b.MinTokens, u.Metrics.ActualTokens)
			b.MaxTokens = max(b.MaxTokens, u.Metrics.ActualTokens)
			b.MinIterations = min(b.MinIterations, u.Metrics.Iterations)
			b.MaxIterations = max(b.MaxIterations, u.Metrics.Iterations)
		}
		b.Confidence = ConfidenceLow
		if b.Samples >= confidenceSamples {
			b.Confidence = ConfidenceHigh
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points < out[j].Points })
	return out
}

// IDPrefix returns the alphabetic prefix of a work unit id: "AUTH" for
// "AUTH-001". Ids without a dash return unchanged.
func IDPrefix(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
