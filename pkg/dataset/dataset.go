// Package dataset holds the market-share table: a country → year → Snapshot
// map seeded with built-in figures and optionally overridden by a live payload.
package dataset

import (
	"slices"
	"sync"
)

// Source identifies where the current table came from.
type Source string

// Known sources. The string values are what the UI shows.
const (
	SourceDemo Source = "Demo"
	SourceLive Source = "API (live)"
)

// Label returns the human-readable source label.
func (s Source) Label() string { return string(s) }

// Snapshot is the brand breakdown for one country and year.
// Labels and Values are positionally aligned.
type Snapshot struct {
	Labels []string  `json:"labels" yaml:"labels"`
	Values []float64 `json:"values" yaml:"values"`
}

// Len returns the number of brands.
func (s Snapshot) Len() int { return len(s.Labels) }

// Empty reports whether the snapshot has no brands.
func (s Snapshot) Empty() bool { return len(s.Labels) == 0 }

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Labels: append([]string{}, s.Labels...),
		Values: append([]float64{}, s.Values...),
	}
}

// Years maps a year to its snapshot.
type Years map[int]Snapshot

// Payload is a partial table keyed by country, used for overrides.
type Payload map[string]Years

// Countries returns the payload's country keys in sorted order.
func (p Payload) Countries() []string {
	out := make([]string, 0, len(p))
	for c := range p {
		out = append(out, c)
	}

	slices.Sort(out)

	return out
}

// Store is the process-wide dataset. It is safe for concurrent use: the
// live override is merged from a background goroutine while renders read.
type Store struct {
	mu      sync.RWMutex
	data    map[string]Years
	order   []string
	version uint64
	source  Source
}

// NewStore returns a store seeded with the built-in table.
func NewStore() *Store {
	s := &Store{
		data:   make(map[string]Years, len(builtinOrder)),
		order:  slices.Clone(builtinOrder),
		source: SourceDemo,
	}

	for country, years := range builtinTable() {
		s.data[country] = copyYears(years)
	}

	return s
}

// Get returns a copy of the snapshot for country and year, or an empty
// snapshot when either key is missing. It never fails.
func (s *Store) Get(country string, year int) Snapshot {
	snap, _ := s.Lookup(country, year)

	return snap
}

// Lookup is Get plus the Version the snapshot was read at.
func (s *Store) Lookup(country string, year int) (Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(country, year), s.version
}

func (s *Store) getLocked(country string, year int) Snapshot {
	years, ok := s.data[country]
	if !ok {
		return Snapshot{Labels: []string{}, Values: []float64{}}
	}

	snap, ok := years[year]
	if !ok {
		return Snapshot{Labels: []string{}, Values: []float64{}}
	}

	return snap.Clone()
}

// MergeOverride writes every snapshot in p over the stored one for the same
// country and year. Countries and years absent from p keep their snapshots.
func (s *Store) MergeOverride(p Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, country := range p.Countries() {
		years, known := s.data[country]
		if !known {
			s.order = append(s.order, country)
			years = make(Years, len(p[country]))
			s.data[country] = years
		}

		for y, snap := range p[country] {
			years[y] = snap.Clone()
		}
	}

	s.version++
	s.source = SourceLive
}

// Countries returns known countries: built-ins first, then countries added
// by an override in sorted order.
func (s *Store) Countries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.order)
}

// Years returns the sorted union of years across all countries.
func (s *Store) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]struct{})

	for _, years := range s.data {
		for y := range years {
			seen[y] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}

	slices.Sort(out)

	return out
}

// YearRange returns the smallest and largest known year.
// ok is false when the store holds no years at all.
func (s *Store) YearRange() (lo, hi int, ok bool) {
	years := s.Years()
	if len(years) == 0 {
		return 0, 0, false
	}

	return years[0], years[len(years)-1], true
}

// Version increases by one on every merge. Render caches key on it.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Source reports whether the live override has been applied.
func (s *Store) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.source
}

// Export returns a deep copy of the full table.
func (s *Store) Export() Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Payload, len(s.data))
	for country, years := range s.data {
		out[country] = copyYears(years)
	}

	return out
}

func copyYears(in Years) Years {
	out := make(Years, len(in))
	for y, snap := range in {
		out[y] = snap.Clone()
	}

	return out
}
