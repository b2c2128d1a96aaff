package followup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
)

var source = gh.Repo{Owner: "microsoft", Name: "TypeScript"}

func testVocabulary(t *testing.T) *config.Vocabulary {
	t.Helper()
	v, err := config.LoadVocabulary()
	require.NoError(t, err)
	return v
}

func searchFor(number int) string {
	return fmt.Sprintf(`repo:microsoft/typescript-go is:issue label:"Porting PR" #%d in:title`, number)
}

func entry(number int, owner string) *model.BoardEntry {
	return &model.BoardEntry{
		ID:          fmt.Sprintf("I_%d", number),
		URL:         fmt.Sprintf("https://github.com/microsoft/TypeScript/pull/%d", number),
		Owner:       owner,
		Disposition: model.DispositionNeedsPorting,
		Release:     "5.8 (or earlier)",
	}
}

func detail(number int) *model.ChangeDetail {
	return &model.ChangeDetail{Number: number, Title: "Fix narrowing", MergeCommit: "abc123"}
}

func TestFiler_CreatesOnceThenSkips(t *testing.T) {
	vocab := testVocabulary(t)
	client := &MockClient{}

	client.On("SearchIssues", searchFor(4821)).Return([]string{}, nil).Once()
	client.On("GetChangeDetail", source, 4821).Return(detail(4821), nil).Once()
	client.On("ResolveUserID", "jakebailey").Return("U_jake", nil).Once()
	client.On("CreateIssue", mock.MatchedBy(func(spec gh.IssueSpec) bool {
		return spec.RepositoryID == "R_kgDOM0QWIw" &&
			spec.Title == "Port TypeScript PR #4821: Fix narrowing" &&
			assert.ObjectsAreEqual([]string{"LA_kwDOM0QWI88AAAACCeGIEQ"}, spec.LabelIDs) &&
			assert.ObjectsAreEqual([]string{"BOT_kgDOC9w8XQ", "U_jake"}, spec.AssigneeIDs)
	})).Return(&gh.Issue{Number: 99, URL: "https://github.com/microsoft/typescript-go/issues/99"}, nil).Once()

	filer := NewFiler(client, vocab, Options{Limit: 10}, zerolog.Nop())
	entries := []*model.BoardEntry{entry(4821, "  jakebailey ")}

	result, err := filer.Run(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Drafts, 1)
	assert.Equal(t, "https://github.com/microsoft/typescript-go/issues/99", result.Drafts[0].URL)
	assert.Equal(t, []string{"Copilot", "jakebailey"}, result.Drafts[0].Owners)

	// The issue now exists.
	client.On("SearchIssues", searchFor(4821)).Return([]string{"https://github.com/microsoft/typescript-go/issues/99"}, nil).Once()

	result, err = filer.Run(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Existing)
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "CreateIssue", 1)
}

func TestFiler_DryRunPreviews(t *testing.T) {
	vocab := testVocabulary(t)
	client := &MockClient{}
	client.On("SearchIssues", searchFor(4821)).Return(nil, nil).Once()
	client.On("GetChangeDetail", source, 4821).Return(detail(4821), nil).Once()

	filer := NewFiler(client, vocab, Options{DryRun: true}, zerolog.Nop())
	result, err := filer.Run(context.Background(), []*model.BoardEntry{entry(4821, "")})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Previewed)
	require.Len(t, result.Drafts, 1)
	d := result.Drafts[0]
	assert.Equal(t, "Port TypeScript PR #4821: Fix narrowing", d.Title)
	assert.Equal(t, []string{"Copilot"}, d.Owners)
	assert.Contains(t, d.Body, "https://github.com/microsoft/TypeScript/pull/4821")
	assert.Contains(t, d.Body, "https://github.com/microsoft/TypeScript/commit/abc123.patch")
	assert.Empty(t, d.URL)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "CreateIssue", mock.Anything)
}

func TestFiler_LimitCountsAttemptsNotExisting(t *testing.T) {
	vocab := testVocabulary(t)
	client := &MockClient{}

	client.On("SearchIssues", searchFor(1)).Return([]string{"https://github.com/microsoft/typescript-go/issues/1"}, nil).Once()
	client.On("SearchIssues", searchFor(2)).Return(nil, nil).Once()
	client.On("GetChangeDetail", source, 2).Return(nil, errors.New("HTTP 502")).Once()
	client.On("SearchIssues", searchFor(3)).Return(nil, nil).Once()
	client.On("GetChangeDetail", source, 3).Return(detail(3), nil).Once()

	filer := NewFiler(client, vocab, Options{DryRun: true, Limit: 2}, zerolog.Nop())
	result, err := filer.Run(context.Background(), []*model.BoardEntry{
		entry(1, ""), entry(2, ""), entry(3, ""), entry(4, ""),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Existing)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Previewed)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "SearchIssues", searchFor(4))
}

func TestFiler_Candidates(t *testing.T) {
	vocab := testVocabulary(t)
	client := &MockClient{}

	newer := entry(10, "")
	newer.Release = "5.9"
	ported := entry(11, "")
	ported.Disposition = model.DispositionPorted
	unreleased := entry(12, "")
	unreleased.Release = ""
	unlinked := entry(13, "")
	unlinked.URL = ""

	filer := NewFiler(client, vocab, Options{}, zerolog.Nop())
	result, err := filer.Run(context.Background(), []*model.BoardEntry{newer, ported, unreleased, unlinked})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, client.Calls)
}

func TestFiler_UnresolvableOwnerDropped(t *testing.T) {
	vocab := testVocabulary(t)
	client := &MockClient{}

	client.On("SearchIssues", searchFor(5)).Return(nil, nil).Once()
	client.On("GetChangeDetail", source, 5).Return(detail(5), nil).Once()
	client.On("ResolveUserID", "ghost").Return("", gh.ErrNotFound).Once()
	client.On("CreateIssue", mock.MatchedBy(func(spec gh.IssueSpec) bool {
		return assert.ObjectsAreEqual([]string{"BOT_kgDOC9w8XQ"}, spec.AssigneeIDs)
	})).Return(&gh.Issue{Number: 1, URL: "u"}, nil).Once()

	filer := NewFiler(client, vocab, Options{}, zerolog.Nop())
	result, err := filer.Run(context.Background(), []*model.BoardEntry{entry(5, "ghost")})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	client.AssertExpectations(t)
}

func TestUserResolver_Caches(t *testing.T) {
	client := &MockClient{}
	client.On("ResolveUserID", "Alice").Return("U_alice", nil).Once()

	u := NewUserResolver(client, map[string]string{"Copilot": "BOT_1"})

	id, err := u.Resolve(context.Background(), "copilot")
	require.NoError(t, err)
	assert.Equal(t, "BOT_1", id)

	for range 2 {
		id, err = u.Resolve(context.Background(), "Alice")
		require.NoError(t, err)
		assert.Equal(t, "U_alice", id)
	}
	client.AssertExpectations(t)
}
