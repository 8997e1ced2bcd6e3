package controller_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
)

func waitFetched(t *testing.T, ctl *controller.Controller) {
	t.Helper()

	select {
	case <-ctl.Fetched():
	case <-time.After(5 * time.Second):
		t.Fatal("startup fetch did not finish")
	}
}

func TestStartup_FailureKeepsDemoAndRaisesToast(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	f := newFixture(t)
	before := f.store.Get("India", 2024)

	f.ctl.Startup(context.Background(), dataset.NewFetcher(srv.URL, time.Second))
	waitFetched(t, f.ctl)

	toast, ok := f.ctl.CurrentToast()
	require.True(t, ok)
	assert.Equal(t, "Live data not available — using demo data", toast.Message)
	assert.Equal(t, 3200*time.Millisecond, toast.TTL)

	frame, err := f.ctl.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Demo", frame.SourceLabel)
	require.NotNil(t, frame.Toast)
	assert.Equal(t, before, f.store.Get("India", 2024))
}

func TestStartup_MalformedPayloadIsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte(`{"India":{"2024":{"labels":["A","B"],"values":[1]}}}`))
	}))
	t.Cleanup(srv.Close)

	f := newFixture(t)

	f.ctl.Startup(context.Background(), dataset.NewFetcher(srv.URL, time.Second))
	waitFetched(t, f.ctl)

	_, ok := f.ctl.CurrentToast()
	assert.True(t, ok)
	assert.Equal(t, dataset.SourceDemo, f.store.Source())
}

func TestStartup_SuccessMergesLiveData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte(`{"Global":{"2025":{"labels":["Apple","Samsung"],"values":[55,45]}}}`))
	}))
	t.Cleanup(srv.Close)

	f := newFixture(t)

	f.ctl.Startup(context.Background(), dataset.NewFetcher(srv.URL, time.Second))
	waitFetched(t, f.ctl)

	_, ok := f.ctl.CurrentToast()
	assert.False(t, ok)

	frame, err := f.ctl.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "API (live)", frame.SourceLabel)
	assert.Equal(t, "Apple — 55%", frame.Summary.Headline)
}

func TestStartup_EmptyEndpointRaisesToast(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.ctl.Startup(context.Background(), dataset.NewFetcher("", time.Second))
	waitFetched(t, f.ctl)

	_, ok := f.ctl.CurrentToast()
	assert.True(t, ok)
	assert.Equal(t, dataset.SourceDemo, f.store.Source())
}

func TestStartup_FailureToastShownOnLaterPageLoad(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.ctl.Startup(context.Background(), dataset.NewFetcher("", time.Second))
	waitFetched(t, f.ctl)

	f.clock.Advance(5 * time.Second)

	_, ok := f.ctl.CurrentToast()
	require.False(t, ok)

	frame, err := f.ctl.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Demo", frame.SourceLabel)
	require.NotNil(t, frame.Toast)
	assert.Equal(t, controller.FetchFailureToast, frame.Toast.Message)
	assert.Equal(t, 3200*time.Millisecond, frame.Toast.Remaining(f.clock.Now()))

	f.clock.Advance(time.Minute)

	err = f.ctl.Present(context.Background(), func(fr controller.Frame) error {
		require.NotNil(t, fr.Toast)
		assert.Equal(t, controller.FetchFailureToast, fr.Toast.Message)

		return nil
	})
	require.NoError(t, err)
}

func TestRender_NoToastWithoutNotice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.clock.Advance(5 * time.Second)

	frame, err := f.ctl.Render(context.Background())
	require.NoError(t, err)
	assert.Nil(t, frame.Toast)
}

type countingSource struct {
	calls int
}

func (s *countingSource) Endpoint() string { return "stub" }

func (s *countingSource) Apply(context.Context, *dataset.Store) error {
	s.calls++

	return errors.New("offline")
}

func TestStartup_RunsOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	src := &countingSource{}

	f.ctl.Startup(context.Background(), src)
	f.ctl.Startup(context.Background(), src)
	waitFetched(t, f.ctl)

	assert.Equal(t, 1, src.calls)
}

func TestToast_ExpiresAndIsReplaced(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.ctl.ShowToast("first")
	f.clock.Advance(3 * time.Second)
	f.ctl.ShowToast("second")

	toast, ok := f.ctl.CurrentToast()
	require.True(t, ok)
	assert.Equal(t, "second", toast.Message)
	assert.Equal(t, uint64(2), toast.Seq)

	f.clock.Advance(3 * time.Second)

	toast, ok = f.ctl.CurrentToast()
	require.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, toast.Remaining(f.clock.Now()))

	f.clock.Advance(200 * time.Millisecond)

	_, ok = f.ctl.CurrentToast()
	assert.False(t, ok)
}
