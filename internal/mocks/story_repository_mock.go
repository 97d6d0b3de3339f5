package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

func (_m *MockStoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	ret := _m.Called(ctx, querier, story)
	return ret.Error(0)
}

func (_m *MockStoryRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetByIDForUpdate(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) List(ctx context.Context, querier interfaces.DBTX, filter interfaces.StoryListFilter) ([]*models.Story, error) {
	ret := _m.Called(ctx, querier, filter)

	var r0 []*models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListByAuthor(ctx context.Context, querier interfaces.DBTX, authorID uuid.UUID) ([]*models.Story, error) {
	ret := _m.Called(ctx, querier, authorID)

	var r0 []*models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.StoryStatus) error {
	ret := _m.Called(ctx, querier, id, status)
	return ret.Error(0)
}

func (_m *MockStoryRepository) SetUpvoteCount(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, count int) error {
	ret := _m.Called(ctx, querier, id, count)
	return ret.Error(0)
}

func (_m *MockStoryRepository) AddUpvote(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	ret := _m.Called(ctx, querier, storyID, userID)
	return ret.Error(0)
}

func (_m *MockStoryRepository) RemoveUpvote(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	ret := _m.Called(ctx, querier, storyID, userID)
	return ret.Error(0)
}

func (_m *MockStoryRepository) HasUpvoted(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, querier, storyID, userID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockStoryRepository) CountUpvotes(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, querier, storyID)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockStoryRepository) PublishPersonal(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	ret := _m.Called(ctx, querier, id)
	return ret.Error(0)
}

func (_m *MockStoryRepository) Subscribe(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	ret := _m.Called(ctx, querier, storyID, userID)
	return ret.Error(0)
}

func (_m *MockStoryRepository) Unsubscribe(ctx context.Context, querier interfaces.DBTX, storyID, userID uuid.UUID) error {
	ret := _m.Called(ctx, querier, storyID, userID)
	return ret.Error(0)
}

func (_m *MockStoryRepository) ListSubscriberIDs(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, querier, storyID)

	var r0 []uuid.UUID
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

// NewMockStoryRepository creates a new instance of MockStoryRepository.
// It also registers a testing interface on the mock.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.StoryRepository = (*MockStoryRepository)(nil)
