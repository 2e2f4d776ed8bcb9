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
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/relief/services/elevation/geo"
	"github.com/AleutianAI/relief/services/elevation/grade"
	"github.com/AleutianAI/relief/services/elevation/sample"
	"github.com/AleutianAI/relief/services/elevation/tiles"
)

// PostingInterval is the target spacing, in meters, used to resample an
// edge's shape before height sampling.
const PostingInterval = 60.0

// WorkerResult aggregates one worker's outcome for the orchestrator.
type WorkerResult struct {
	Processed int
	Failed    int

	// Err is the first tile error the worker hit, nil when Failed == 0.
	Err error
}

// worker owns the per-thread state of the pass: a private governed
// reader, the terrain service handle, and the geo attribute cache that
// deduplicates sampling between the two directions of a segment.
// Nothing here is shared across workers except the queue.
type worker struct {
	queue  *tileQueue
	reader *tiles.Reader
	svc    sample.Service
	cache  map[uint32]grade.Attributes
	logger *slog.Logger
}

// run drains the queue, one tile at a time. A tile that fails mid-update
// is logged, counted, and skipped; the pass continues with the next tile.
func (w *worker) run(ctx context.Context) WorkerResult {
	var result WorkerResult
	for {
		id, ok := w.queue.pop()
		if !ok {
			return result
		}
		if err := w.updateTile(ctx, id); err != nil {
			w.logger.Error("tile update failed",
				slog.String("tile", id.String()),
				slog.String("error", err.Error()),
			)
			recordTileFailed(ctx)
			result.Failed++
			if result.Err == nil {
				result.Err = fmt.Errorf("tile %s: %w", id, err)
			}
			continue
		}
		recordTileProcessed(ctx)
		result.Processed++
	}
}

// updateTile rewrites every directed-edge record of one tile with
// elevation-derived attributes and persists the tile.
//
// The geo attribute cache is cleared per tile and keyed by the
// edge-info offset, so a physical segment is sampled once even though
// two directed records reference it. Processing is strictly sequential
// over the edge indices: the first record of a pair populates the
// cache, the second consumes it.
func (w *worker) updateTile(ctx context.Context, id tiles.ID) error {
	ctx, span := startTileSpan(ctx, id.String())
	defer span.End()

	h, err := w.reader.OpenForMutation(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	h.SetHasElevation(true)

	// At most two directed edges reference one edge-info record, so 2x
	// the edge count bounds the cache.
	count := h.EdgeCount()
	w.cache = make(map[uint32]grade.Attributes, 2*count)

	for i := 0; i < count; i++ {
		edge := h.Edge(i)
		offset := edge.EdgeInfoOffset

		attrs, cached := w.cache[offset]
		if !cached {
			attrs = w.computeEdge(h, edge)
			w.cache[offset] = attrs

			mean := attrs.MeanElevation
			if mean == grade.NoDataValue {
				mean = tiles.NoElevationData
			}
			h.SetMeanElevation(offset, mean)
		}
		recordAttrCache(ctx, cached)

		// The record traversing the shape in point order takes the
		// forward triple; its twin takes the reverse triple.
		if edge.Forward {
			edge.WeightedGrade = attrs.ForwardBucket
			edge.MaxUpSlope = attrs.ForwardMaxUp
			edge.MaxDownSlope = attrs.ForwardMaxDown
		} else {
			edge.WeightedGrade = attrs.ReverseBucket
			edge.MaxUpSlope = attrs.ReverseMaxUp
			edge.MaxDownSlope = attrs.ReverseMaxDown
		}
	}

	if err := h.Persist(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	recordEdgesUpdated(ctx, count)

	if w.reader.OverBudget() {
		w.queue.trimUnder(w.reader.Trim)
		recordReaderTrim(ctx)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// computeEdge samples terrain along one physical edge and estimates its
// grade attributes.
//
// Tunnels and ferry segments skip sampling entirely. Bridges and edges
// shorter than three posting intervals sample only the two endpoints
// with the edge length as the interval; everything else resamples the
// shape every PostingInterval meters.
func (w *worker) computeEdge(h *tiles.Handle, edge *tiles.DirectedEdge) grade.Attributes {
	if edge.Tunnel || edge.Ferry {
		return grade.Flat()
	}
	shape := h.ShapeOf(edge)
	if len(shape) < 2 {
		return grade.Flat()
	}

	length := edge.LengthMeters
	interval := PostingInterval
	var pts []geo.Point
	if length < PostingInterval*3 || edge.Bridge {
		pts = []geo.Point{shape[0], shape[len(shape)-1]}
		interval = length
	} else {
		pts = geo.Resample(shape, PostingInterval)
	}

	heights := w.svc.Heights(pts)
	return grade.Estimate(heights, interval, length)
}
