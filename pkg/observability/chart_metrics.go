package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRendersTotal     = "sharechart.chart.renders.total"
	metricRenderDuration   = "sharechart.chart.render.duration.seconds"
	metricFetchTotal       = "sharechart.source.fetch.total"
	metricCacheHitsTotal   = "sharechart.render_cache.hits.total"
	metricCacheMissesTotal = "sharechart.render_cache.misses.total"

	attrChartMode = "chart_mode"
	attrEngine    = "engine"
	attrOutcome   = "outcome"
	attrFormat    = "format"
)

// Fetch outcomes.
const (
	FetchLive    = "live"
	FetchFailed  = "failed"
	FetchSkipped = "skipped"
)

// ChartMetrics holds chart-specific instruments. All methods are safe on a
// nil receiver.
type ChartMetrics struct {
	renders        metric.Int64Counter
	renderDuration metric.Float64Histogram
	fetches        metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
}

// NewChartMetrics creates chart instruments from mt.
func NewChartMetrics(mt metric.Meter) (*ChartMetrics, error) {
	renders, err := mt.Int64Counter(metricRendersTotal,
		metric.WithDescription("Charts created, by chart mode and engine"),
		metric.WithUnit("{chart}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRendersTotal, err)
	}

	renderDur, err := mt.Float64Histogram(metricRenderDuration,
		metric.WithDescription("Chart creation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRenderDuration, err)
	}

	fetches, err := mt.Int64Counter(metricFetchTotal,
		metric.WithDescription("Live data fetch attempts by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFetchTotal, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Render cache hits by format"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Render cache misses by format"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &ChartMetrics{
		renders:        renders,
		renderDuration: renderDur,
		fetches:        fetches,
		cacheHits:      hits,
		cacheMisses:    misses,
	}, nil
}

// RecordRender records one chart creation.
func (cm *ChartMetrics) RecordRender(ctx context.Context, mode, engine string, d time.Duration) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrChartMode, mode),
		attribute.String(attrEngine, engine),
	)

	cm.renders.Add(ctx, 1, attrs)
	cm.renderDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordFetch records the outcome of the live data fetch.
func (cm *ChartMetrics) RecordFetch(ctx context.Context, outcome string) {
	if cm == nil {
		return
	}

	cm.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordCache records a render cache lookup.
func (cm *ChartMetrics) RecordCache(ctx context.Context, format string, hit bool) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrFormat, format))

	if hit {
		cm.cacheHits.Add(ctx, 1, attrs)

		return
	}

	cm.cacheMisses.Add(ctx, 1, attrs)
}
