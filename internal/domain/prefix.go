package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Prefix is an identifier namespace for work unit ids.
type Prefix struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Epic        string    `json:"epic,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PrefixesData is the prefixes collection document.
type PrefixesData struct {
	Prefixes map[string]*Prefix `json:"prefixes"`
}

// NewPrefixesData returns an empty prefixes document.
func NewPrefixesData() *PrefixesData {
	return &PrefixesData{Prefixes: map[string]*Prefix{}}
}

var prefixIDPattern = regexp.MustCompile(`^[A-Z]{2,6}$`)

// ValidatePrefixID enforces the 2-6 uppercase letter prefix shape.
func ValidatePrefixID(id string) error {
	if !prefixIDPattern.MatchString(id) {
		return NewValidation("invalid prefix %q: must be 2-6 uppercase letters", id)
	}
	return nil
}

// Prefix resolves a prefix by id.
func (d *PrefixesData) Prefix(id string) (*Prefix, error) {
	p, ok := d.Prefixes[id]
	if !ok {
		return nil, NewNotFound("prefix", id)
	}
	return p, nil
}

// AddPrefix registers a new identifier namespace.
func (d *PrefixesData) AddPrefix(id, description string, now time.Time) (*Prefix, error) {
	if err := ValidatePrefixID(id); err != nil {
		return nil, err
	}
	if _, exists := d.Prefixes[id]; exists {
		return nil, NewValidation("prefix %s already exists", id)
	}
	p := &Prefix{ID: id, Description: strings.TrimSpace(description), CreatedAt: now.UTC()}
	d.Prefixes[id] = p
	return p, nil
}

// NextWorkUnitID allocates the next id in a prefix namespace by scanning
// existing ids for the highest numeric suffix. Ids are zero-padded to
// three digits but wider suffixes survive a round-trip.
func (d *WorkUnitsData) NextWorkUnitID(prefix string) string {
	maxSuffix := 0
	marker := prefix + "-"
	for id := range d.WorkUnits {
		if !strings.HasPrefix(id, marker) {
			continue
		}
		n, err := strconv.Atoi(id[len(marker):])
		if err != nil {
			continue
		}
		if n > maxSuffix {
			maxSuffix = n
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, maxSuffix+1)
}

// UnitsWithPrefix returns the ids in a prefix namespace, in board order.
func (d *WorkUnitsData) UnitsWithPrefix(prefix string) []string {
	var out []string
	marker := prefix + "-"
	for _, id := range d.UnitIDs() {
		if strings.HasPrefix(id, marker) {
			out = append(out, id)
		}
	}
	return out
}
