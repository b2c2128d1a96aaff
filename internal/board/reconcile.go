package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
)

// Writer performs board writes
type Writer interface {
	AddBoardItem(ctx context.Context, projectID, contentID string) (string, error)
	SetTextField(ctx context.Context, projectID, itemID, fieldID, text string) error
	SetSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error
}

// Action summarizes what reconciling one change did
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionPlanned   Action = "planned"
	ActionFailed    Action = "failed"
)

// Outcome is the result of reconciling one change
type Outcome struct {
	Action    Action
	Entry     *model.BoardEntry
	Mutations []Mutation
}

// Target describes the board in the shape the GitHub client expects
func Target(v *config.Vocabulary) gh.Board {
	return gh.Board{
		Org:                v.Board.Org,
		Number:             v.Board.Number,
		ProjectID:          v.Board.ProjectID,
		OwnerField:         v.Board.Owner.FieldName,
		OwnerFieldID:       v.Board.Owner.FieldID,
		DispositionField:   v.Board.Disposition.FieldName,
		DispositionFieldID: v.Board.Disposition.FieldID,
		ReleaseField:       v.Board.Release.FieldName,
		ReleaseFieldID:     v.Board.Release.FieldID,
	}
}

// Reconciler applies decisions to the board and keeps its snapshot current
type Reconciler struct {
	writer   Writer
	vocab    *config.Vocabulary
	snapshot *Snapshot
	dryRun   bool
	logger   zerolog.Logger
}

// NewReconciler creates a reconciler over snapshot. In dry-run mode
// mutations are planned and logged but never sent.
func NewReconciler(writer Writer, vocab *config.Vocabulary, snapshot *Snapshot, dryRun bool, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		writer:   writer,
		vocab:    vocab,
		snapshot: snapshot,
		dryRun:   dryRun,
		logger:   logger.With().Str("component", "board").Logger(),
	}
}

// Reconcile plans and applies the writes for one decision. Writes for the
// same change are attempted independently; their failures are joined.
func (r *Reconciler) Reconcile(ctx context.Context, d Decision) (Outcome, error) {
	existing, _ := r.snapshot.Lookup(d.Change.URL)
	muts := Plan(existing, d)

	out := Outcome{Action: ActionUnchanged, Entry: existing, Mutations: muts}
	if len(muts) == 0 {
		return out, nil
	}
	if r.dryRun {
		out.Action = ActionPlanned
		return out, nil
	}

	entry := existing
	if muts[0].Kind == AddEntry {
		id, err := r.writer.AddBoardItem(ctx, r.vocab.Board.ProjectID, muts[0].Value)
		if err != nil {
			out.Action = ActionFailed
			return out, err
		}
		entry = &model.BoardEntry{ID: id, URL: d.Change.URL}
		r.snapshot.add(entry)
		muts = muts[1:]
		out.Action = ActionCreated
	} else {
		out.Action = ActionUpdated
	}
	out.Entry = entry

	var errs []error
	for _, m := range muts {
		if err := r.apply(ctx, entry, m); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		if out.Action == ActionUpdated {
			out.Action = ActionFailed
		}
		return out, errors.Join(errs...)
	}
	return out, nil
}

// apply performs one field write and folds it into entry on success
func (r *Reconciler) apply(ctx context.Context, entry *model.BoardEntry, m Mutation) error {
	projectID := r.vocab.Board.ProjectID

	switch m.Kind {
	case SetOwner:
		if err := r.writer.SetTextField(ctx, projectID, entry.ID, r.vocab.Board.Owner.FieldID, m.Value); err != nil {
			return err
		}
		entry.Owner = m.Value

	case SetDisposition:
		d := model.Disposition(m.Value)
		optionID, ok := r.vocab.DispositionOptionID(d)
		if !ok {
			return fmt.Errorf("no board option for disposition %q", m.Value)
		}
		if err := r.writer.SetSingleSelect(ctx, projectID, entry.ID, r.vocab.Board.Disposition.FieldID, optionID); err != nil {
			return err
		}
		entry.Disposition = d

	case SetRelease:
		optionID, ok := r.vocab.ReleaseOptionID(m.Value)
		if !ok {
			return fmt.Errorf("no board option for release %q", m.Value)
		}
		if err := r.writer.SetSingleSelect(ctx, projectID, entry.ID, r.vocab.Board.Release.FieldID, optionID); err != nil {
			return err
		}
		entry.Release = m.Value

	default:
		return fmt.Errorf("unexpected mutation %s", m)
	}
	return nil
}
