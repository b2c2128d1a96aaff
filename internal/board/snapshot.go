package board

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/paginate"
)

// Lister reads board items page by page
type Lister interface {
	ListBoardItems(ctx context.Context, board gh.Board, cursor string) (paginate.Page[*model.BoardEntry], error)
}

// Snapshot is the board as read at the start of a run, indexed by linked URL
type Snapshot struct {
	entries []*model.BoardEntry
	byURL   map[string]*model.BoardEntry
}

// NewSnapshot indexes entries. When two entries link the same URL the first
// one is kept in the index.
func NewSnapshot(entries []*model.BoardEntry, logger zerolog.Logger) *Snapshot {
	s := &Snapshot{byURL: make(map[string]*model.BoardEntry, len(entries))}
	for _, e := range entries {
		s.entries = append(s.entries, e)
		if !e.IsLinked() {
			continue
		}
		if first, ok := s.byURL[e.URL]; ok {
			logger.Warn().
				Str("url", e.URL).
				Str("kept", first.ID).
				Str("ignored", e.ID).
				Msg("board has more than one entry for a change")
			continue
		}
		s.byURL[e.URL] = e
	}
	return s
}

// Load reads every board item
func Load(ctx context.Context, lister Lister, board gh.Board, logger zerolog.Logger) (*Snapshot, error) {
	listPage := func(ctx context.Context, cursor string) (paginate.Page[*model.BoardEntry], error) {
		return lister.ListBoardItems(ctx, board, cursor)
	}
	entries, err := paginate.All(ctx, listPage)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}
	logger.Info().Int("entries", len(entries)).Msg("board loaded")
	return NewSnapshot(entries, logger), nil
}

// Lookup returns the entry linked to url
func (s *Snapshot) Lookup(url string) (*model.BoardEntry, bool) {
	e, ok := s.byURL[url]
	return e, ok
}

// Entries returns every entry in board order, including unlinked ones
func (s *Snapshot) Entries() []*model.BoardEntry {
	return s.entries
}

// Len returns the number of entries
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// add records an entry created during this run
func (s *Snapshot) add(e *model.BoardEntry) {
	s.entries = append(s.entries, e)
	if e.IsLinked() {
		if _, ok := s.byURL[e.URL]; !ok {
			s.byURL[e.URL] = e
		}
	}
}
