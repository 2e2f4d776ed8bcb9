// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package builder runs the elevation pass: it distributes the
// dataset's tiles over a pool of workers, each of which rewrites the
// directed-edge records of its tiles with terrain-derived weighted
// grade, max slopes, and mean elevation.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/relief/services/elevation/config"
	"github.com/AleutianAI/relief/services/elevation/sample"
	"github.com/AleutianAI/relief/services/elevation/tiles"
)

// Build runs the elevation pass over the configured tile store.
//
// Description:
//
//	Validates that terrain data is configured and present (absence is a
//	warn-and-skip, not an error), opens the tile store, resolves the
//	worker count, enumerates and shuffles the tile set when tileIDs is
//	empty, and drains the queue with one governed reader and one geo
//	attribute cache per worker.
//
// Inputs:
//
//	ctx - Context passed through to tracing and metrics. The pass
//	      itself runs to completion; there is no mid-pass cancellation.
//	cfg - Validated pass configuration.
//	logger - Destination for progress and warnings. Must not be nil.
//	tileIDs - Explicit tiles to process. Empty means the whole dataset
//	          in randomized order.
//
// Outputs:
//
//	error - Nil when every processed tile succeeded, or when the pass
//	        was skipped for lack of terrain data. Otherwise the first
//	        tile error, annotated with the failed-tile count; the
//	        remaining tiles were still processed.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, tileIDs []tiles.ID) error {
	if cfg.ElevationDir == "" || !sample.Exists(cfg.ElevationDir) {
		logger.Warn("elevation storage directory does not exist, skipping elevation pass",
			slog.String("elevation_dir", cfg.ElevationDir),
		)
		return nil
	}

	svc, err := sample.NewSRTMSource(cfg.ElevationDir, logger)
	if err != nil {
		return fmt.Errorf("open elevation source: %w", err)
	}

	store, err := tiles.OpenStore(tiles.StoreConfig{
		Path:   cfg.TileStorePath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("open tile store: %w", err)
	}
	defer store.Close()

	if len(tileIDs) == 0 {
		tileIDs, err = store.IDs()
		if err != nil {
			return err
		}
		Shuffle(tileIDs, cfg.ShuffleSeed)
	}

	return run(ctx, store, svc, cfg, logger, tileIDs)
}

// run executes the pass against an open store. Split from Build so
// tests can drive it with an in-memory store and synthetic terrain.
func run(ctx context.Context, store *tiles.Store, svc sample.Service, cfg *config.Config, logger *slog.Logger, tileIDs []tiles.ID) error {
	if len(tileIDs) == 0 {
		logger.Info("no tiles to process")
		return nil
	}

	workers := cfg.Concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	runID := uuid.NewString()
	logger.Info("adding elevation to tiles",
		slog.Int("tiles", len(tileIDs)),
		slog.Int("workers", workers),
		slog.String("run_id", runID),
	)

	queue := newTileQueue(tileIDs)
	results := make([]WorkerResult, workers)

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			w := &worker{
				queue:  queue,
				reader: tiles.NewReader(store, cfg.ReaderBudgetBytes),
				svc:    svc,
				logger: logger,
			}
			results[i] = w.run(ctx)
			return nil
		})
	}
	// Workers report failures through their WorkerResult, never as a
	// group error.
	_ = g.Wait()

	var processed, failed int
	var firstErr error
	for _, r := range results {
		processed += r.Processed
		failed += r.Failed
		if firstErr == nil {
			firstErr = r.Err
		}
	}

	logger.Info("finished elevation pass",
		slog.Int("processed", processed),
		slog.Int("failed", failed),
		slog.String("run_id", runID),
	)

	if failed > 0 {
		return fmt.Errorf("elevation pass: %d of %d tiles failed: %w",
			failed, len(tileIDs), firstErr)
	}
	return nil
}
