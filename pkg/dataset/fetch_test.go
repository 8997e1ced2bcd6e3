package dataset_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetcher_ApplySuccess(t *testing.T) {
	t.Parallel()

	srv := serve(t, http.StatusOK, `{"USA":{"2025":{"labels":["X"],"values":[100]}}}`)
	store := dataset.NewStore()

	f := dataset.NewFetcher(srv.URL, time.Second, dataset.WithHTTPClient(srv.Client()))
	require.NoError(t, f.Apply(context.Background(), store))

	assert.Equal(t, dataset.SourceLive, store.Source())
	assert.Equal(t, []string{"X"}, store.Get("USA", 2025).Labels)
	assert.Len(t, store.Get("USA", 2024).Labels, 6)
}

func TestFetcher_NonOKLeavesStore(t *testing.T) {
	t.Parallel()

	srv := serve(t, http.StatusServiceUnavailable, `oops`)
	store := dataset.NewStore()
	before := store.Export()

	err := dataset.NewFetcher(srv.URL, time.Second).Apply(context.Background(), store)
	require.ErrorIs(t, err, dataset.ErrUnexpectedStatus)

	assert.Equal(t, before, store.Export())
	assert.Equal(t, dataset.SourceDemo, store.Source())
}

func TestFetcher_MalformedIsFailure(t *testing.T) {
	t.Parallel()

	srv := serve(t, http.StatusOK, `{"USA":{"2025":{"labels":["X","Y"],"values":[100]}}}`)
	store := dataset.NewStore()

	err := dataset.NewFetcher(srv.URL, time.Second).Apply(context.Background(), store)
	require.ErrorIs(t, err, dataset.ErrInvalidPayload)

	assert.Equal(t, dataset.SourceDemo, store.Source())
	assert.Len(t, store.Get("USA", 2024).Labels, 6)
}

func TestFetcher_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	_, err := dataset.NewFetcher(srv.URL, 50*time.Millisecond).Fetch(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_NoEndpoint(t *testing.T) {
	t.Parallel()

	f := dataset.NewFetcher("", 0)

	_, err := f.Fetch(context.Background())
	require.ErrorIs(t, err, dataset.ErrNoEndpoint)
	assert.Empty(t, f.Endpoint())
}
