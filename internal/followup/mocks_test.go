package followup

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
)

type MockClient struct {
	mock.Mock
}

// SearchIssues implements Client.
func (m *MockClient) SearchIssues(ctx context.Context, query string) ([]string, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// GetChangeDetail implements Client.
func (m *MockClient) GetChangeDetail(ctx context.Context, repo gh.Repo, number int) (*model.ChangeDetail, error) {
	args := m.Called(repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChangeDetail), args.Error(1)
}

// CreateIssue implements Client.
func (m *MockClient) CreateIssue(ctx context.Context, spec gh.IssueSpec) (*gh.Issue, error) {
	args := m.Called(spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gh.Issue), args.Error(1)
}

// ResolveUserID implements Client.
func (m *MockClient) ResolveUserID(ctx context.Context, login string) (string, error) {
	args := m.Called(login)
	return args.String(0), args.Error(1)
}
