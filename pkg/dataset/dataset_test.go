package dataset_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
)

func TestStore_GetBuiltin(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()
	got := s.Get("USA", 2024)

	assert.Equal(t, []string{"Apple", "Samsung", "OnePlus", "Google", "Motorola", "Others"}, got.Labels)
	assert.Equal(t, []float64{51, 25, 6, 6, 4, 8}, got.Values)
}

func TestStore_AllBuiltinsAligned(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()

	for _, c := range s.Countries() {
		for _, y := range s.Years() {
			snap := s.Get(c, y)
			require.False(t, snap.Empty(), "%s %d", c, y)
			assert.Len(t, snap.Values, snap.Len(), "%s %d", c, y)
		}
	}
}

func TestStore_GetMissingIsEmpty(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()

	for _, snap := range []dataset.Snapshot{s.Get("Atlantis", 2025), s.Get("Global", 1999)} {
		assert.NotNil(t, snap.Labels)
		assert.NotNil(t, snap.Values)
		assert.True(t, snap.Empty())
		assert.Empty(t, snap.Values)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()

	first := s.Get("Global", 2025)
	first.Labels[0] = "Mutated"
	first.Values[0] = -1

	second := s.Get("Global", 2025)
	assert.Equal(t, "Samsung", second.Labels[0])
	assert.InDelta(t, 20.0, second.Values[0], 0)
}

func TestStore_MergeOverrideKeepsOtherYears(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()
	global2022 := s.Get("Global", 2022)
	usa2025 := s.Get("USA", 2025)

	s.MergeOverride(dataset.Payload{
		"Global": {2025: {Labels: []string{"X"}, Values: []float64{100}}},
	})

	assert.Equal(t, dataset.Snapshot{Labels: []string{"X"}, Values: []float64{100}}, s.Get("Global", 2025))
	assert.Equal(t, global2022, s.Get("Global", 2022))
	assert.Equal(t, usa2025, s.Get("USA", 2025))
	assert.Equal(t, dataset.SourceLive, s.Source())
	assert.Equal(t, uint64(1), s.Version())
}

func TestStore_LookupReportsVersion(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()

	snap, version := s.Lookup("USA", 2025)
	assert.Equal(t, uint64(0), version)
	assert.Equal(t, s.Get("USA", 2025), snap)

	s.MergeOverride(dataset.Payload{"USA": {2025: {Labels: []string{"X"}, Values: []float64{1}}}})

	snap, version = s.Lookup("USA", 2025)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, []string{"X"}, snap.Labels)
}

func TestStore_MergeOverrideAppendsNewCountries(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()
	s.MergeOverride(dataset.Payload{
		"Brazil":  {2025: {Labels: []string{"Samsung"}, Values: []float64{40}}},
		"Austria": {2025: {Labels: []string{"Apple"}, Values: []float64{30}}},
	})

	assert.Equal(t, []string{"Global", "India", "USA", "China", "Austria", "Brazil"}, s.Countries())
}

func TestStore_MergeOverrideCopiesInput(t *testing.T) {
	t.Parallel()

	p := dataset.Payload{"USA": {2025: {Labels: []string{"X"}, Values: []float64{1}}}}

	s := dataset.NewStore()
	s.MergeOverride(p)

	p["USA"][2025].Labels[0] = "changed"

	assert.Equal(t, "X", s.Get("USA", 2025).Labels[0])
}

func TestStore_DefaultsToDemo(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()

	assert.Equal(t, dataset.SourceDemo, s.Source())
	assert.Equal(t, "Demo", s.Source().Label())
	assert.Equal(t, "API (live)", dataset.SourceLive.Label())
	assert.Zero(t, s.Version())
}

func TestStore_YearRange(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()

	lo, hi, ok := s.YearRange()
	require.True(t, ok)
	assert.Equal(t, 2022, lo)
	assert.Equal(t, 2026, hi)
	assert.Equal(t, []int{2022, 2023, 2024, 2025, 2026}, s.Years())
}

func TestStore_Export(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()
	exported := s.Export()

	require.Len(t, exported, 4)
	exported["USA"][2024].Labels[0] = "changed"

	assert.Equal(t, "Apple", s.Get("USA", 2024).Labels[0])
}

func TestStore_ConcurrentMergeAndGet(t *testing.T) {
	t.Parallel()

	s := dataset.NewStore()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_ = s.Get("USA", 2025)
		}()

		go func() {
			defer wg.Done()

			s.MergeOverride(dataset.Payload{"USA": {2025: {Labels: []string{"X"}, Values: []float64{1}}}})
		}()
	}

	wg.Wait()

	assert.Equal(t, uint64(8), s.Version())
}
