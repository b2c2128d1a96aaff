// Package gh talks to the GitHub GraphQL API through the gh CLI.
package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when a queried object does not exist
var ErrNotFound = errors.New("not found")

// Runner executes the gh CLI. stdin is passed to the process unchanged.
type Runner interface {
	Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error)
}

// ExecRunner runs the gh binary found on PATH
type ExecRunner struct {
	Token string
}

// Run executes gh with args, exporting the token as GH_TOKEN
func (r ExecRunner) Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Stdin = bytes.NewReader(stdin)
	if r.Token != "" {
		cmd.Env = append(os.Environ(), "GH_TOKEN="+r.Token)
	}
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// gh still prints the response body on GraphQL errors
			return output, fmt.Errorf("gh CLI error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to execute gh: %w", err)
	}
	return output, nil
}

// Client provides GitHub operations via gh CLI
type Client struct {
	runner   Runner
	pageSize int
}

// NewClient creates a client that shells out to gh with the given token
func NewClient(token string, pageSize int) *Client {
	return NewClientWithRunner(ExecRunner{Token: token}, pageSize)
}

// NewClientWithRunner creates a client on top of an arbitrary runner
func NewClientWithRunner(runner Runner, pageSize int) *Client {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &Client{runner: runner, pageSize: pageSize}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// graphql posts one query or mutation and decodes its data into out
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	output, runErr := c.runner.Run(ctx, body, "api", "graphql", "--input", "-")

	var resp graphqlResponse
	if len(output) > 0 {
		if err := json.Unmarshal(output, &resp); err != nil && runErr == nil {
			return fmt.Errorf("failed to parse GraphQL response: %w", err)
		}
	}
	if len(resp.Errors) > 0 {
		return resp.err()
	}
	if runErr != nil {
		return runErr
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse GraphQL data: %w", err)
	}
	return nil
}

func (r *graphqlResponse) err() error {
	messages := make([]string, 0, len(r.Errors))
	notFound := false
	for _, e := range r.Errors {
		messages = append(messages, e.Message)
		if e.Type == "NOT_FOUND" {
			notFound = true
		}
	}
	msg := strings.Join(messages, "; ")
	if notFound {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("GraphQL error: %s", msg)
}
