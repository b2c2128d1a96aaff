package gh

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/paginate"
)

const mergedChangesQuery = `
query($owner: String!, $name: String!, $pageSize: Int!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    pullRequests(states: MERGED, first: $pageSize, after: $cursor, orderBy: {field: UPDATED_AT, direction: DESC}) {
      pageInfo { endCursor hasNextPage }
      nodes {
        id
        url
        title
        mergedAt
        updatedAt
        baseRefName
        mergeCommit { oid }
        author { login }
        assignees(first: 10) { nodes { login } }
        reviews(first: 10) { nodes { author { login } state } }
      }
    }
  }
}`

const changeFilesQuery = `
query($owner: String!, $name: String!, $number: Int!, $pageSize: Int!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $number) {
      files(first: $pageSize, after: $cursor) {
        pageInfo { endCursor hasNextPage }
        nodes { path }
      }
    }
  }
}`

const changeDetailQuery = `
query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $number) {
      number
      title
      body
      mergeCommit { oid }
    }
  }
}`

const compareQuery = `
query($owner: String!, $name: String!, $ref: String!, $commit: String!) {
  repository(owner: $owner, name: $name) {
    ref(qualifiedName: $ref) {
      compare(headRef: $commit) { status }
    }
  }
}`

type changeJSON struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	MergedAt    time.Time `json:"mergedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	BaseRefName string    `json:"baseRefName"`
	MergeCommit *struct {
		OID string `json:"oid"`
	} `json:"mergeCommit"`
	Author    *actor `json:"author"`
	Assignees struct {
		Nodes []actor `json:"nodes"`
	} `json:"assignees"`
	Reviews struct {
		Nodes []struct {
			Author *actor `json:"author"`
			State  string `json:"state"`
		} `json:"nodes"`
	} `json:"reviews"`
}

// toRecord converts a change node to a record. Missing nested objects
// (deleted accounts, absent merge commits) become empty values.
func (c *changeJSON) toRecord() *model.ChangeRecord {
	rec := &model.ChangeRecord{
		ID:          c.ID,
		URL:         c.URL,
		Title:       c.Title,
		MergedAt:    c.MergedAt,
		UpdatedAt:   c.UpdatedAt,
		BaseRefName: c.BaseRefName,
	}
	if c.MergeCommit != nil {
		rec.MergeCommit = c.MergeCommit.OID
	}
	if c.Author != nil {
		rec.Author = c.Author.Login
	}
	for _, a := range c.Assignees.Nodes {
		if a.Login != "" {
			rec.Assignees = append(rec.Assignees, a.Login)
		}
	}
	for _, r := range c.Reviews.Nodes {
		if r.Author == nil || r.Author.Login == "" {
			continue
		}
		rec.Reviews = append(rec.Reviews, model.Review{
			Author: r.Author.Login,
			State:  model.ReviewState(r.State),
		})
	}
	return rec
}

// ListMergedChanges returns one page of merged pull requests, most recently
// updated first. File lists are not populated.
func (c *Client) ListMergedChanges(ctx context.Context, repo Repo, cursor string) (paginate.Page[*model.ChangeRecord], error) {
	var data struct {
		Repository *struct {
			PullRequests struct {
				PageInfo pageInfo     `json:"pageInfo"`
				Nodes    []changeJSON `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"repository"`
	}

	vars := map[string]any{
		"owner":    repo.Owner,
		"name":     repo.Name,
		"pageSize": c.pageSize,
		"cursor":   cursorVar(cursor),
	}
	if err := c.graphql(ctx, mergedChangesQuery, vars, &data); err != nil {
		return paginate.Page[*model.ChangeRecord]{}, fmt.Errorf("failed to list merged changes of %s: %w", repo, err)
	}
	if data.Repository == nil {
		return paginate.Page[*model.ChangeRecord]{}, fmt.Errorf("repository %s: %w", repo, ErrNotFound)
	}

	prs := data.Repository.PullRequests
	page := paginate.Page[*model.ChangeRecord]{
		EndCursor:   prs.PageInfo.EndCursor,
		HasNextPage: prs.PageInfo.HasNextPage,
	}
	for i := range prs.Nodes {
		page.Items = append(page.Items, prs.Nodes[i].toRecord())
	}
	return page, nil
}

// ListChangeFiles returns one page of the paths touched by a pull request
func (c *Client) ListChangeFiles(ctx context.Context, repo Repo, number int, cursor string) (paginate.Page[string], error) {
	var data struct {
		Repository *struct {
			PullRequest *struct {
				Files *struct {
					PageInfo pageInfo `json:"pageInfo"`
					Nodes    []struct {
						Path string `json:"path"`
					} `json:"nodes"`
				} `json:"files"`
			} `json:"pullRequest"`
		} `json:"repository"`
	}

	vars := map[string]any{
		"owner":    repo.Owner,
		"name":     repo.Name,
		"number":   number,
		"pageSize": c.pageSize,
		"cursor":   cursorVar(cursor),
	}
	if err := c.graphql(ctx, changeFilesQuery, vars, &data); err != nil {
		return paginate.Page[string]{}, fmt.Errorf("failed to list files of #%d: %w", number, err)
	}
	if data.Repository == nil || data.Repository.PullRequest == nil {
		return paginate.Page[string]{}, fmt.Errorf("pull request #%d: %w", number, ErrNotFound)
	}

	files := data.Repository.PullRequest.Files
	if files == nil {
		return paginate.Page[string]{}, nil
	}
	page := paginate.Page[string]{
		EndCursor:   files.PageInfo.EndCursor,
		HasNextPage: files.PageInfo.HasNextPage,
	}
	for _, n := range files.Nodes {
		page.Items = append(page.Items, n.Path)
	}
	return page, nil
}

// GetChangeDetail fetches the title, body and merge commit of a pull request
func (c *Client) GetChangeDetail(ctx context.Context, repo Repo, number int) (*model.ChangeDetail, error) {
	var data struct {
		Repository *struct {
			PullRequest *struct {
				Number      int    `json:"number"`
				Title       string `json:"title"`
				Body        string `json:"body"`
				MergeCommit *struct {
					OID string `json:"oid"`
				} `json:"mergeCommit"`
			} `json:"pullRequest"`
		} `json:"repository"`
	}

	vars := map[string]any{
		"owner":  repo.Owner,
		"name":   repo.Name,
		"number": number,
	}
	if err := c.graphql(ctx, changeDetailQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch #%d: %w", number, err)
	}
	if data.Repository == nil || data.Repository.PullRequest == nil {
		return nil, fmt.Errorf("pull request #%d: %w", number, ErrNotFound)
	}

	pr := data.Repository.PullRequest
	detail := &model.ChangeDetail{
		Number: pr.Number,
		Title:  pr.Title,
		Body:   pr.Body,
	}
	if pr.MergeCommit != nil {
		detail.MergeCommit = pr.MergeCommit.OID
	}
	return detail, nil
}

// CompareRef reports how commit relates to ref. Bare tag names are qualified
// as refs/tags/<name>.
func (c *Client) CompareRef(ctx context.Context, repo Repo, ref, commit string) (model.Ancestry, error) {
	qualified := ref
	if !strings.HasPrefix(ref, "refs/") {
		qualified = "refs/tags/" + ref
	}

	var data struct {
		Repository *struct {
			Ref *struct {
				Compare *struct {
					Status string `json:"status"`
				} `json:"compare"`
			} `json:"ref"`
		} `json:"repository"`
	}

	vars := map[string]any{
		"owner":  repo.Owner,
		"name":   repo.Name,
		"ref":    qualified,
		"commit": commit,
	}
	if err := c.graphql(ctx, compareQuery, vars, &data); err != nil {
		return model.AncestryUnknown, fmt.Errorf("failed to compare %s with %s: %w", commit, ref, err)
	}
	if data.Repository == nil || data.Repository.Ref == nil {
		return model.AncestryUnknown, fmt.Errorf("ref %s: %w", qualified, ErrNotFound)
	}
	if data.Repository.Ref.Compare == nil {
		return model.AncestryUnknown, fmt.Errorf("commit %s: %w", commit, ErrNotFound)
	}

	return ancestryFromStatus(data.Repository.Ref.Compare.Status), nil
}

// ancestryFromStatus maps a comparison status, where the ref is the base and
// the candidate commit is the head.
func ancestryFromStatus(status string) model.Ancestry {
	switch status {
	case "BEHIND", "IDENTICAL":
		return model.AncestryAncestorOrEqual
	case "AHEAD":
		return model.AncestryDescendant
	case "DIVERGED":
		return model.AncestryDiverged
	default:
		return model.AncestryUnknown
	}
}
