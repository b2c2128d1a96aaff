package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/portsync/internal/cache"
	"github.com/bjulian5/portsync/internal/classify"
	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/fetch"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/release"
)

var runStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	vocab *config.Vocabulary
	fs    afero.Fs
	gh    *fakeGitHub
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	vocab, err := config.LoadVocabulary()
	require.NoError(t, err)

	merged := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return &harness{
		vocab: vocab,
		fs:    afero.NewMemMapFs(),
		gh: &fakeGitHub{
			vocab: vocab,
			changes: []*model.ChangeRecord{
				{
					ID:          "PR_200",
					URL:         "https://github.com/microsoft/TypeScript/pull/200",
					MergedAt:    merged.Add(time.Hour),
					UpdatedAt:   merged.Add(2 * time.Hour),
					BaseRefName: "main",
					MergeCommit: "bbb",
					Author:      "outsider",
				},
				{
					ID:          "PR_100",
					URL:         "https://github.com/microsoft/TypeScript/pull/100",
					MergedAt:    merged,
					UpdatedAt:   merged,
					BaseRefName: "main",
					MergeCommit: "aaa",
					Author:      "carol",
					Assignees:   []string{"alice"},
					Reviews:     []model.Review{{Author: "bob", State: model.ReviewApproved}},
				},
			},
			files: map[int][]string{
				100: {"src/compiler/checker.ts"},
				200: {"src/services/completions.ts"},
			},
			released: map[string]bool{"bbb": true},
		},
	}
}

func (h *harness) ops(t *testing.T, trusted []string, dryRun bool) *SyncOperations {
	t.Helper()
	rules := h.vocab.Classify
	rules.TrustedOwners = trusted
	classifier, err := classify.New(rules)
	require.NoError(t, err)

	store := cache.NewStore(h.fs, "/pr_cache.json", h.vocab.Cache.Version, h.vocab.Cache.InitialWatermark, zerolog.Nop())
	fetcher := fetch.NewFetcher(h.gh, store, fetch.Options{
		Repo:                gh.Repo{Owner: "microsoft", Name: "TypeScript"},
		MainBranch:          "main",
		FileRefetchAttempts: 1,
		Now:                 func() time.Time { return runStart },
	}, zerolog.Nop())

	return &SyncOperations{
		Fetcher:    fetcher,
		Classifier: classifier,
		Attributor: release.NewAttributor(h.gh, h.vocab.Release.Markers, zerolog.Nop()),
		Board:      h.gh,
		Vocabulary: h.vocab,
		DryRun:     dryRun,
		Logger:     zerolog.Nop(),
	}
}

func TestPerformSync_CreatesEntries(t *testing.T) {
	h := newHarness(t)

	result, err := h.ops(t, []string{"alice", "bob"}, false).PerformSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.New)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, h.gh.entries, 2)

	// Reconciled in merge order.
	assert.Equal(t, &model.BoardEntry{
		ID:          "I_1",
		URL:         "https://github.com/microsoft/TypeScript/pull/100",
		Owner:       "alice",
		Disposition: model.DispositionNeedsPorting,
	}, h.gh.entries[0])
	assert.Equal(t, &model.BoardEntry{
		ID:          "I_2",
		URL:         "https://github.com/microsoft/TypeScript/pull/200",
		Disposition: model.DispositionLanguageService,
		Release:     "5.8 (or earlier)",
	}, h.gh.entries[1])
}

func TestPerformSync_SecondPassRevisesOwnerOnly(t *testing.T) {
	h := newHarness(t)

	_, err := h.ops(t, []string{"alice", "bob"}, false).PerformSync(context.Background())
	require.NoError(t, err)

	// Someone marks the change ported by hand, and alice leaves the trusted set.
	h.gh.entries[0].Disposition = model.DispositionPorted
	writes := h.gh.writes

	result, err := h.ops(t, []string{"bob"}, false).PerformSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.New)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, writes+1, h.gh.writes)
	require.Len(t, h.gh.entries, 2)
	assert.Equal(t, "bob", h.gh.entries[0].Owner)
	assert.Equal(t, model.DispositionPorted, h.gh.entries[0].Disposition)
}

func TestPerformSync_Idempotent(t *testing.T) {
	h := newHarness(t)

	_, err := h.ops(t, []string{"alice", "bob"}, false).PerformSync(context.Background())
	require.NoError(t, err)
	writes := h.gh.writes

	result, err := h.ops(t, []string{"alice", "bob"}, false).PerformSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Unchanged)
	assert.Equal(t, writes, h.gh.writes)
	assert.Len(t, h.gh.entries, 2)
}

func TestPerformSync_DryRunWritesNothingToBoard(t *testing.T) {
	h := newHarness(t)

	result, err := h.ops(t, []string{"alice"}, true).PerformSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Planned)
	assert.Equal(t, 0, h.gh.writes)
	assert.Empty(t, h.gh.entries)
}

func TestSummarizeCache(t *testing.T) {
	h := newHarness(t)
	_, err := h.ops(t, nil, false).PerformSync(context.Background())
	require.NoError(t, err)

	store := cache.NewStore(h.fs, "/pr_cache.json", h.vocab.Cache.Version, h.vocab.Cache.InitialWatermark, zerolog.Nop())
	snap, err := store.Load()
	require.NoError(t, err)

	classifier, err := classify.New(h.vocab.Classify)
	require.NoError(t, err)

	summary := SummarizeCache(snap, classifier)
	assert.Equal(t, 2, summary.Records)
	assert.True(t, runStart.Equal(summary.Watermark))
	assert.Equal(t, 1, summary.ByDisposition[model.DispositionNeedsPorting])
	assert.Equal(t, 1, summary.ByDisposition[model.DispositionLanguageService])
	assert.True(t, summary.Oldest.Before(summary.Newest))
}
