package engine

import (
	"context"
	"fmt"

	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/paginate"
)

// fakeGitHub is an in-memory source repository and board
type fakeGitHub struct {
	vocab    *config.Vocabulary
	changes  []*model.ChangeRecord // newest update first
	files    map[int][]string
	released map[string]bool // commits contained in every marker
	entries  []*model.BoardEntry
	writes   int
}

func (f *fakeGitHub) ListMergedChanges(ctx context.Context, repo gh.Repo, cursor string) (paginate.Page[*model.ChangeRecord], error) {
	var page paginate.Page[*model.ChangeRecord]
	for _, c := range f.changes {
		cp := *c
		page.Items = append(page.Items, &cp)
	}
	return page, nil
}

func (f *fakeGitHub) ListChangeFiles(ctx context.Context, repo gh.Repo, number int, cursor string) (paginate.Page[string], error) {
	return paginate.Page[string]{Items: f.files[number]}, nil
}

func (f *fakeGitHub) ListBoardItems(ctx context.Context, board gh.Board, cursor string) (paginate.Page[*model.BoardEntry], error) {
	var page paginate.Page[*model.BoardEntry]
	for _, e := range f.entries {
		cp := *e
		page.Items = append(page.Items, &cp)
	}
	return page, nil
}

func (f *fakeGitHub) AddBoardItem(ctx context.Context, projectID, contentID string) (string, error) {
	f.writes++
	for _, c := range f.changes {
		if c.ID == contentID {
			id := fmt.Sprintf("I_%d", len(f.entries)+1)
			f.entries = append(f.entries, &model.BoardEntry{ID: id, URL: c.URL})
			return id, nil
		}
	}
	return "", fmt.Errorf("content %s: %w", contentID, gh.ErrNotFound)
}

func (f *fakeGitHub) entry(itemID string) (*model.BoardEntry, error) {
	for _, e := range f.entries {
		if e.ID == itemID {
			return e, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, gh.ErrNotFound)
}

func (f *fakeGitHub) SetTextField(ctx context.Context, projectID, itemID, fieldID, text string) error {
	f.writes++
	e, err := f.entry(itemID)
	if err != nil {
		return err
	}
	if fieldID != f.vocab.Board.Owner.FieldID {
		return fmt.Errorf("unexpected text field %s", fieldID)
	}
	e.Owner = text
	return nil
}

func (f *fakeGitHub) SetSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	f.writes++
	e, err := f.entry(itemID)
	if err != nil {
		return err
	}
	switch fieldID {
	case f.vocab.Board.Disposition.FieldID:
		for label, id := range f.vocab.Board.Disposition.Options {
			if id == optionID {
				e.Disposition = model.Disposition(label)
				return nil
			}
		}
	case f.vocab.Board.Release.FieldID:
		for _, opt := range f.vocab.Board.Release.Options {
			if opt.ID == optionID {
				e.Release = opt.Name
				return nil
			}
		}
	}
	return fmt.Errorf("unknown option %s for field %s", optionID, fieldID)
}

func (f *fakeGitHub) Compare(ctx context.Context, ref, commit string) (model.Ancestry, error) {
	if f.released[commit] {
		return model.AncestryAncestorOrEqual, nil
	}
	return model.AncestryDescendant, nil
}
