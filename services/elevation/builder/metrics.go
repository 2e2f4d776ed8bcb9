// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package builder

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for the elevation pass.
var (
	tracer = otel.Tracer("relief.builder")
	meter  = otel.Meter("relief.builder")
)

// Metrics for the elevation pass.
var (
	tilesProcessed metric.Int64Counter
	tilesFailed    metric.Int64Counter
	edgesUpdated   metric.Int64Counter
	attrCacheHits  metric.Int64Counter
	attrCacheMiss  metric.Int64Counter
	readerTrims    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		tilesProcessed, err = meter.Int64Counter(
			"elevation_tiles_processed_total",
			metric.WithDescription("Tiles successfully updated with elevation data"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		tilesFailed, err = meter.Int64Counter(
			"elevation_tiles_failed_total",
			metric.WithDescription("Tiles skipped due to a mid-tile failure"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesUpdated, err = meter.Int64Counter(
			"elevation_edges_updated_total",
			metric.WithDescription("Directed-edge records rewritten"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		attrCacheHits, err = meter.Int64Counter(
			"elevation_attribute_cache_hits_total",
			metric.WithDescription("Geo attribute cache hits (second direction of a segment)"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		attrCacheMiss, err = meter.Int64Counter(
			"elevation_attribute_cache_misses_total",
			metric.WithDescription("Geo attribute cache misses (terrain sampled)"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		readerTrims, err = meter.Int64Counter(
			"elevation_reader_trims_total",
			metric.WithDescription("Reader cache trims triggered by the memory budget"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordTileProcessed(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	tilesProcessed.Add(ctx, 1)
}

func recordTileFailed(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	tilesFailed.Add(ctx, 1)
}

func recordEdgesUpdated(ctx context.Context, n int) {
	if initMetrics() != nil {
		return
	}
	edgesUpdated.Add(ctx, int64(n))
}

func recordAttrCache(ctx context.Context, hit bool) {
	if initMetrics() != nil {
		return
	}
	if hit {
		attrCacheHits.Add(ctx, 1)
	} else {
		attrCacheMiss.Add(ctx, 1)
	}
}

func recordReaderTrim(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	readerTrims.Add(ctx, 1)
}

// startTileSpan creates a span for one tile's update.
func startTileSpan(ctx context.Context, id string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "builder.updateTile",
		trace.WithAttributes(
			attribute.String("tile.id", id),
		),
	)
}
