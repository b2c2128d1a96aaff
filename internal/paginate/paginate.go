// Package paginate walks cursor-paginated remote collections.
//
// Every collection the tool reads (merged changes, the files of one change and
// the board items) shares the same page shape, so the loops live here once.
package paginate

import (
	"context"
	"errors"
	"fmt"
)

// ErrStalledCursor is returned when the remote claims more pages but hands
// back a cursor that would repeat the page just read.
var ErrStalledCursor = errors.New("pagination cursor did not advance")

// Page is one round of a paginated collection
type Page[T any] struct {
	Items       []T
	EndCursor   string
	HasNextPage bool
}

// FetchFunc retrieves the page that starts after cursor. An empty cursor
// requests the first page.
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// VisitFunc is called for each item in order. Returning false stops the walk
// without error.
type VisitFunc[T any] func(item T) (bool, error)

// Each walks pages until the remote reports no further pages or visit asks to
// stop. Pages are requested one at a time; a fetch error aborts the walk.
func Each[T any](ctx context.Context, fetch FetchFunc[T], visit VisitFunc[T]) error {
	cursor := ""
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := fetch(ctx, cursor)
		if err != nil {
			return fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		for _, item := range p.Items {
			more, err := visit(item)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}

		if !p.HasNextPage {
			return nil
		}
		if p.EndCursor == "" || p.EndCursor == cursor {
			return fmt.Errorf("page %d: %w", page, ErrStalledCursor)
		}
		cursor = p.EndCursor
	}
}

// All collects every item of the collection in page order
func All[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var items []T
	err := Each(ctx, fetch, func(item T) (bool, error) {
		items = append(items, item)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AllWithRestart collects a collection whose cursors cannot be trusted. When a
// page fails, the whole list is fetched again from the first page, up to
// attempts times in total. Only the last attempt's items are returned.
func AllWithRestart[T any](ctx context.Context, attempts int, fetch FetchFunc[T]) ([]T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		items, err := All(ctx, fetch)
		if err == nil {
			return items, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}
