// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tiles

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/relief/services/elevation/geo"
)

// tilePrefix namespaces tile records inside the store.
var tilePrefix = []byte("tile/")

// ErrTileNotFound indicates the requested tile id is not in the store.
var ErrTileNotFound = errors.New("tile not found")

// StoreConfig configures a tile Store.
type StoreConfig struct {
	// Path is the store directory. Ignored when InMemory is true.
	Path string

	// InMemory opens the store without disk persistence. For tests.
	InMemory bool

	// Logger receives store-level log output. Defaults to slog.Default.
	Logger *slog.Logger
}

// Store persists gob-encoded tiles in BadgerDB.
//
// Thread Safety: safe for concurrent use; BadgerDB serializes writes.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLogger adapts slog to BadgerDB's logger interface.
type badgerLogger struct{ logger *slog.Logger }

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenStore opens (or creates) a tile store.
func OpenStore(cfg StoreConfig) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for a persistent store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open tile store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func tileKey(id ID) []byte {
	key := make([]byte, len(tilePrefix)+8)
	copy(key, tilePrefix)
	binary.BigEndian.PutUint64(key[len(tilePrefix):], uint64(id))
	return key
}

// Put encodes and writes a tile.
func (s *Store) Put(t *Tile) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t); err != nil {
		return fmt.Errorf("encode tile %s: %w", t.ID, err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tileKey(t.ID), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("write tile %s: %w", t.ID, err)
	}
	return nil
}

// Get reads and decodes a tile. Returns ErrTileNotFound for unknown ids.
func (s *Store) Get(id ID) (*Tile, error) {
	var tile Tile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tileKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrTileNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&tile)
		})
	})
	if err != nil {
		return nil, err
	}
	return &tile, nil
}

// IDs enumerates every tile id in the store, in key order.
func (s *Store) IDs() ([]ID, error) {
	var ids []ID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = tilePrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			ids = append(ids, ID(binary.BigEndian.Uint64(key[len(tilePrefix):])))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate tiles: %w", err)
	}
	return ids, nil
}

// Handle is a tile opened for in-place mutation. Edits are visible in
// the store only after Persist.
type Handle struct {
	store *Store
	tile  *Tile
}

// OpenForMutation loads a tile for editing.
func (s *Store) OpenForMutation(id ID) (*Handle, error) {
	tile, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return &Handle{store: s, tile: tile}, nil
}

// EdgeCount returns the number of directed-edge records.
func (h *Handle) EdgeCount() int { return len(h.tile.Edges) }

// Edge returns a writable reference to directed edge i.
func (h *Handle) Edge(i int) *DirectedEdge { return &h.tile.Edges[i] }

// ShapeOf returns the shape geometry referenced by a directed edge.
func (h *Handle) ShapeOf(e *DirectedEdge) []geo.Point {
	info := h.tile.Infos[e.EdgeInfoOffset]
	if info == nil {
		return nil
	}
	return info.Shape
}

// SetMeanElevation sets the mean elevation on the edge-info record at
// offset. Unknown offsets are ignored.
func (h *Handle) SetMeanElevation(offset uint32, v float64) {
	if info := h.tile.Infos[offset]; info != nil {
		info.MeanElevation = v
	}
}

// SetHasElevation marks the tile's header metadata.
func (h *Handle) SetHasElevation(has bool) {
	h.tile.HasElevation = has
}

// Persist writes the mutated tile back to the store.
func (h *Handle) Persist() error {
	return h.store.Put(h.tile)
}
