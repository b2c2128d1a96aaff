package gh

import (
	"context"
	"fmt"
)

const searchIssuesQuery = `
query($query: String!) {
  search(query: $query, type: ISSUE, first: 10) {
    nodes {
      ... on Issue { url }
    }
  }
}`

const createIssueMutation = `
mutation($repositoryId: ID!, $title: String!, $body: String!, $labelIds: [ID!], $assigneeIds: [ID!]) {
  createIssue(input: {repositoryId: $repositoryId, title: $title, body: $body, labelIds: $labelIds, assigneeIds: $assigneeIds}) {
    issue { number url }
  }
}`

const userIDQuery = `
query($login: String!) {
  user(login: $login) { id }
}`

// SearchIssues runs an issue search and returns the URLs of the matches
func (c *Client) SearchIssues(ctx context.Context, query string) ([]string, error) {
	var data struct {
		Search struct {
			Nodes []struct {
				URL string `json:"url"`
			} `json:"nodes"`
		} `json:"search"`
	}

	if err := c.graphql(ctx, searchIssuesQuery, map[string]any{"query": query}, &data); err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	var urls []string
	for _, n := range data.Search.Nodes {
		if n.URL != "" {
			urls = append(urls, n.URL)
		}
	}
	return urls, nil
}

// CreateIssue files a new issue
func (c *Client) CreateIssue(ctx context.Context, spec IssueSpec) (*Issue, error) {
	var data struct {
		CreateIssue struct {
			Issue *struct {
				Number int    `json:"number"`
				URL    string `json:"url"`
			} `json:"issue"`
		} `json:"createIssue"`
	}

	vars := map[string]any{
		"repositoryId": spec.RepositoryID,
		"title":        spec.Title,
		"body":         spec.Body,
		"labelIds":     spec.LabelIDs,
		"assigneeIds":  spec.AssigneeIDs,
	}
	if err := c.graphql(ctx, createIssueMutation, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	if data.CreateIssue.Issue == nil {
		return nil, fmt.Errorf("issue was created but not returned")
	}
	return &Issue{Number: data.CreateIssue.Issue.Number, URL: data.CreateIssue.Issue.URL}, nil
}

// ResolveUserID looks up the node id of a user login
func (c *Client) ResolveUserID(ctx context.Context, login string) (string, error) {
	var data struct {
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
	}

	if err := c.graphql(ctx, userIDQuery, map[string]any{"login": login}, &data); err != nil {
		return "", fmt.Errorf("failed to resolve user %s: %w", login, err)
	}
	if data.User == nil || data.User.ID == "" {
		return "", fmt.Errorf("user %s: %w", login, ErrNotFound)
	}
	return data.User.ID, nil
}
