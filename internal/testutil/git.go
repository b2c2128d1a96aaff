// Package testutil builds throwaway git repositories for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var signature = object.Signature{
	Name:  "Test User",
	Email: "test@example.com",
	When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

// TestRepo is a repository in a temporary directory
type TestRepo struct {
	Dir  string
	Repo *git.Repository
}

// NewTestRepo initializes an empty repository on branch main
func NewTestRepo(t *testing.T) *TestRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	return &TestRepo{Dir: dir, Repo: repo}
}

// Commit writes a file named after title and commits it on the current branch
func (r *TestRepo) Commit(t *testing.T, title string) string {
	t.Helper()

	wt, err := r.Repo.Worktree()
	require.NoError(t, err)

	name := "file-" + title + ".txt"
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, name), []byte(title+"\n"), 0644))
	_, err = wt.Add(name)
	require.NoError(t, err)

	sig := signature
	hash, err := wt.Commit(title, &git.CommitOptions{Author: &sig, Committer: &sig})
	require.NoError(t, err)
	return hash.String()
}

// Branch creates a branch at hash and checks it out
func (r *TestRepo) Branch(t *testing.T, name, hash string) {
	t.Helper()

	wt, err := r.Repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Hash:   plumbing.NewHash(hash),
		Create: true,
	}))
}

// Checkout switches to an existing branch
func (r *TestRepo) Checkout(t *testing.T, name string) {
	t.Helper()

	wt, err := r.Repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	}))
}

// Tag creates a tag at hash. Annotated tags get a tag object.
func (r *TestRepo) Tag(t *testing.T, name, hash string, annotated bool) {
	t.Helper()

	var opts *git.CreateTagOptions
	if annotated {
		sig := signature
		opts = &git.CreateTagOptions{Tagger: &sig, Message: "release " + name}
	}
	_, err := r.Repo.CreateTag(name, plumbing.NewHash(hash), opts)
	require.NoError(t, err)
}
