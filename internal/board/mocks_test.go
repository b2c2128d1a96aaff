package board

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/paginate"
)

type MockWriter struct {
	mock.Mock
}

// AddBoardItem implements Writer.
func (m *MockWriter) AddBoardItem(ctx context.Context, projectID, contentID string) (string, error) {
	args := m.Called(projectID, contentID)
	return args.String(0), args.Error(1)
}

// SetTextField implements Writer.
func (m *MockWriter) SetTextField(ctx context.Context, projectID, itemID, fieldID, text string) error {
	args := m.Called(projectID, itemID, fieldID, text)
	return args.Error(0)
}

// SetSingleSelect implements Writer.
func (m *MockWriter) SetSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	args := m.Called(projectID, itemID, fieldID, optionID)
	return args.Error(0)
}

type MockLister struct {
	mock.Mock
}

// ListBoardItems implements Lister.
func (m *MockLister) ListBoardItems(ctx context.Context, board gh.Board, cursor string) (paginate.Page[*model.BoardEntry], error) {
	args := m.Called(board, cursor)
	return args.Get(0).(paginate.Page[*model.BoardEntry]), args.Error(1)
}
