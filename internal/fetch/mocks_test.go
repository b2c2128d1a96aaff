package fetch

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/paginate"
)

type MockSource struct {
	mock.Mock
}

// ListMergedChanges implements Source.
func (m *MockSource) ListMergedChanges(ctx context.Context, repo gh.Repo, cursor string) (paginate.Page[*model.ChangeRecord], error) {
	args := m.Called(repo, cursor)
	return args.Get(0).(paginate.Page[*model.ChangeRecord]), args.Error(1)
}

// ListChangeFiles implements Source.
func (m *MockSource) ListChangeFiles(ctx context.Context, repo gh.Repo, number int, cursor string) (paginate.Page[string], error) {
	args := m.Called(repo, number, cursor)
	return args.Get(0).(paginate.Page[string]), args.Error(1)
}
