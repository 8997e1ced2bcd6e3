package controller

import (
	"context"

	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
)

// Startup launches the one-shot live data fetch. The first render does not
// wait for it. A missing source or endpoint counts as a failure: built-in
// data stays and the failure toast is raised, then raised again on every
// page load. Only the first call has an effect.
func (c *Controller) Startup(ctx context.Context, src Source) {
	c.fetchOnce.Do(func() {
		go func() {
			defer close(c.fetched)

			c.fetch(ctx, src)
		}()
	})
}

// Fetched is closed once the startup fetch has finished.
func (c *Controller) Fetched() <-chan struct{} { return c.fetched }

func (c *Controller) fetch(ctx context.Context, src Source) {
	if src == nil || src.Endpoint() == "" {
		c.logger.InfoContext(ctx, "live data disabled, using demo data")
		c.metrics.RecordFetch(ctx, observability.FetchSkipped)
		c.ShowNotice(FetchFailureToast)

		return
	}

	err := src.Apply(ctx, c.store)
	if err != nil {
		c.metrics.RecordFetch(ctx, observability.FetchFailed)
		c.ShowNotice(FetchFailureToast)

		return
	}

	c.metrics.RecordFetch(ctx, observability.FetchLive)
}
