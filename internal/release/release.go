// Package release attributes merged changes to the oldest release line that
// shipped them.
package release

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
)

// Comparer reports how a commit relates to a release marker ref
type Comparer interface {
	Compare(ctx context.Context, ref, commit string) (model.Ancestry, error)
}

// RefComparer is the remote view used by RemoteComparer
type RefComparer interface {
	CompareRef(ctx context.Context, repo gh.Repo, ref, commit string) (model.Ancestry, error)
}

// RemoteComparer compares through the GitHub API
type RemoteComparer struct {
	Client RefComparer
	Repo   gh.Repo
}

// Compare implements Comparer
func (c RemoteComparer) Compare(ctx context.Context, ref, commit string) (model.Ancestry, error) {
	return c.Client.CompareRef(ctx, c.Repo, ref, commit)
}

// Attributor walks release markers oldest to newest
type Attributor struct {
	comparer Comparer
	markers  []config.ReleaseMarker
	logger   zerolog.Logger
}

// NewAttributor creates an attributor over markers, which must be ordered
// oldest first.
func NewAttributor(comparer Comparer, markers []config.ReleaseMarker, logger zerolog.Logger) *Attributor {
	return &Attributor{
		comparer: comparer,
		markers:  markers,
		logger:   logger.With().Str("component", "release").Logger(),
	}
}

// Attribute returns the label of the oldest marker that contains commit, or ""
// when none does. A marker that cannot be compared is logged and skipped.
func (a *Attributor) Attribute(ctx context.Context, commit string) string {
	if commit == "" {
		return ""
	}

	for _, m := range a.markers {
		if ctx.Err() != nil {
			return ""
		}

		ancestry, err := a.comparer.Compare(ctx, m.Ref, commit)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("marker", m.Ref).
				Str("commit", commit).
				Msg("release comparison failed")
			continue
		}

		a.logger.Debug().
			Str("marker", m.Ref).
			Str("commit", commit).
			Stringer("ancestry", ancestry).
			Msg("compared")

		if ancestry.InRelease() {
			return m.Label
		}
	}
	return ""
}
