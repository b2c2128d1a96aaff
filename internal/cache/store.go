// Package cache persists the merged changes seen so far together with the
// watermark of the last successful fetch pass.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/bjulian5/portsync/internal/model"
)

// document is the on-disk layout
type document struct {
	Version   int                   `json:"version"`
	Timestamp time.Time             `json:"timestamp"`
	Records   []*model.ChangeRecord `json:"records"`
}

// Store reads and writes the cache document
type Store struct {
	fs               afero.Fs
	path             string
	version          int
	initialWatermark time.Time
	logger           zerolog.Logger
}

// NewStore creates a store for the document at path. Snapshots written by a
// different version are ignored and replaced on the next save.
func NewStore(fs afero.Fs, path string, version int, initialWatermark time.Time, logger zerolog.Logger) *Store {
	return &Store{
		fs:               fs,
		path:             path,
		version:          version,
		initialWatermark: initialWatermark,
		logger:           logger.With().Str("component", "cache").Logger(),
	}
}

// Path returns the location of the cache document
func (s *Store) Path() string {
	return s.path
}

// Load reads the cache. A missing, unreadable-as-JSON or stale-version document
// yields an empty snapshot at the initial watermark.
func (s *Store) Load() (*Snapshot, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info().Str("path", s.path).Msg("no cache found, starting cold")
			return s.coldStart(), nil
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("cache is not valid JSON, starting cold")
		return s.coldStart(), nil
	}

	if doc.Version != s.version {
		s.logger.Info().
			Int("found", doc.Version).
			Int("expected", s.version).
			Msg("cache version mismatch, starting cold")
		return s.coldStart(), nil
	}

	snap := NewSnapshot(s.version, doc.Timestamp)
	if snap.Watermark.IsZero() {
		snap.Watermark = s.initialWatermark
	}
	for _, rec := range doc.Records {
		if err := snap.Insert(rec); err != nil {
			s.logger.Warn().Err(err).Msg("skipping cached record")
		}
	}

	s.logger.Debug().
		Int("records", snap.Len()).
		Time("watermark", snap.Watermark).
		Msg("cache loaded")
	return snap, nil
}

func (s *Store) coldStart() *Snapshot {
	return NewSnapshot(s.version, s.initialWatermark)
}

// Save replaces the cache document with snap. The document is written to a
// temporary file in the same directory and renamed over the old one.
func (s *Store) Save(snap *Snapshot) error {
	doc := document{
		Version:   s.version,
		Timestamp: snap.Watermark.UTC(),
		Records:   snap.Records(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace cache: %w", err)
	}

	s.logger.Info().
		Int("records", snap.Len()).
		Time("watermark", doc.Timestamp).
		Msg("cache saved")
	return nil
}
