package engine_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
)

type fakeChart struct {
	engine.Handle

	id int
}

func (c *fakeChart) Render(w io.Writer) error {
	err := c.Check()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte{byte('0' + c.id)})

	return err
}

type fakeEngine struct {
	mu      sync.Mutex
	charts  []*fakeChart
	failing bool
	// maxAlive records the largest number of undestroyed charts seen at
	// creation time.
	maxAlive int
}

var errCreate = errors.New("create failed")

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Create(_ context.Context, cfg engine.Config) (engine.Chart, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failing {
		return nil, errCreate
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	alive := 1

	for _, c := range e.charts {
		if !c.Destroyed() {
			alive++
		}
	}

	e.maxAlive = max(e.maxAlive, alive)

	c := &fakeChart{id: len(e.charts)}
	e.charts = append(e.charts, c)

	return c, nil
}

func barConfig() engine.Config {
	return engine.Config{
		Type:    engine.TypeBar,
		Labels:  []string{"A", "B"},
		Dataset: engine.Dataset{Values: []float64{1, 2}},
	}
}

func TestSlot_ReplaceDestroysPrevious(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	slot := engine.NewSlot(e)
	ctx := context.Background()

	first, err := slot.Replace(ctx, barConfig())
	require.NoError(t, err)

	second, err := slot.Replace(ctx, barConfig())
	require.NoError(t, err)

	require.ErrorIs(t, first.Render(io.Discard), engine.ErrChartDestroyed)

	var buf bytes.Buffer
	require.NoError(t, second.Render(&buf))
	assert.Equal(t, "1", buf.String())

	assert.Equal(t, int64(1), slot.Live())
	assert.Equal(t, int64(2), slot.Created())
	assert.Equal(t, 1, e.maxAlive)
	assert.Same(t, second, slot.Current())
}

func TestSlot_ManyReplacesKeepOneLive(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	slot := engine.NewSlot(e)

	for range 25 {
		_, err := slot.Replace(context.Background(), barConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(1), slot.Live())
	}

	assert.Equal(t, 1, e.maxAlive)
}

func TestSlot_Close(t *testing.T) {
	t.Parallel()

	slot := engine.NewSlot(&fakeEngine{})

	c, err := slot.Replace(context.Background(), barConfig())
	require.NoError(t, err)

	slot.Close()
	slot.Close()

	assert.Zero(t, slot.Live())
	assert.Nil(t, slot.Current())
	require.ErrorIs(t, c.Render(io.Discard), engine.ErrChartDestroyed)
}

func TestSlot_DoubleDestroyCountsOnce(t *testing.T) {
	t.Parallel()

	slot := engine.NewSlot(&fakeEngine{})

	c, err := slot.Replace(context.Background(), barConfig())
	require.NoError(t, err)

	c.Destroy()
	c.Destroy()
	slot.Close()

	assert.Zero(t, slot.Live())
}

func TestSlot_FailedCreateLeavesEmpty(t *testing.T) {
	t.Parallel()

	e := &fakeEngine{}
	slot := engine.NewSlot(e)

	_, err := slot.Replace(context.Background(), barConfig())
	require.NoError(t, err)

	e.failing = true

	_, err = slot.Replace(context.Background(), barConfig())
	require.ErrorIs(t, err, errCreate)

	assert.Nil(t, slot.Current())
	assert.Zero(t, slot.Live())
}

func TestSlot_UnwrapAndRegions(t *testing.T) {
	t.Parallel()

	slot := engine.NewSlot(&fakeEngine{})

	c, err := slot.Replace(context.Background(), barConfig())
	require.NoError(t, err)

	_, ok := engine.Unwrap(c).(*fakeChart)
	assert.True(t, ok)

	mapper, ok := c.(engine.Mapper)
	require.True(t, ok)
	assert.Empty(t, mapper.Regions())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := barConfig()
	require.NoError(t, cfg.Validate())

	cfg.Type = "line"
	require.ErrorIs(t, cfg.Validate(), engine.ErrUnsupportedType)

	cfg = barConfig()
	cfg.Dataset.Values = cfg.Dataset.Values[:1]
	require.ErrorIs(t, cfg.Validate(), engine.ErrMisaligned)
}

func TestConfig_HasPlugin(t *testing.T) {
	t.Parallel()

	cfg := engine.Config{Plugins: []string{"faux3d"}}

	assert.True(t, cfg.HasPlugin("faux3d"))
	assert.False(t, cfg.HasPlugin("other"))
}
