// Package git answers ancestry questions against a local clone of the source
// repository.
package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/bjulian5/portsync/internal/model"
)

// Repository is a read-only handle on a local clone
type Repository struct {
	path string
	repo *git.Repository
}

// Open opens the repository containing path
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return &Repository{path: path, repo: repo}, nil
}

// Path returns the path the repository was opened from
func (r *Repository) Path() string {
	return r.path
}

// Compare reports how commit relates to ref. Bare names are looked up as tags
// first, then as any revision.
func (r *Repository) Compare(ctx context.Context, ref, commit string) (model.Ancestry, error) {
	if err := ctx.Err(); err != nil {
		return model.AncestryUnknown, err
	}

	marker, err := r.resolveCommit(ref)
	if err != nil {
		return model.AncestryUnknown, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}

	if !plumbing.IsHash(commit) {
		return model.AncestryUnknown, fmt.Errorf("invalid commit id %q", commit)
	}
	candidate, err := r.repo.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		return model.AncestryUnknown, fmt.Errorf("failed to read commit %s: %w", commit, err)
	}

	if candidate.Hash == marker.Hash {
		return model.AncestryAncestorOrEqual, nil
	}

	isAncestor, err := candidate.IsAncestor(marker)
	if err != nil {
		return model.AncestryUnknown, fmt.Errorf("failed to walk history of %s: %w", ref, err)
	}
	if isAncestor {
		return model.AncestryAncestorOrEqual, nil
	}

	if err := ctx.Err(); err != nil {
		return model.AncestryUnknown, err
	}

	isDescendant, err := marker.IsAncestor(candidate)
	if err != nil {
		return model.AncestryUnknown, fmt.Errorf("failed to walk history of %s: %w", commit, err)
	}
	if isDescendant {
		return model.AncestryDescendant, nil
	}
	return model.AncestryDiverged, nil
}

// resolveCommit finds the commit a ref points at, peeling annotated tags
func (r *Repository) resolveCommit(ref string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(plumbing.NewTagReferenceName(ref)))
	if err != nil {
		hash, err = r.repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			return nil, err
		}
	}

	c, err := r.repo.CommitObject(*hash)
	if err == nil {
		return c, nil
	}
	tag, tagErr := r.repo.TagObject(*hash)
	if tagErr != nil {
		return nil, err
	}
	return tag.Commit()
}
