package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// MockChapterRepository is a mock type for the ChapterRepository type
type MockChapterRepository struct {
	mock.Mock
}

func (_m *MockChapterRepository) Create(ctx context.Context, querier interfaces.DBTX, chapter *models.Chapter) error {
	ret := _m.Called(ctx, querier, chapter)
	return ret.Error(0)
}

func (_m *MockChapterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Chapter, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Chapter
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Chapter)
	}
	return r0, ret.Error(1)
}

func (_m *MockChapterRepository) GetBySlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) (*models.Chapter, error) {
	ret := _m.Called(ctx, querier, storyID, chapterNumber)

	var r0 *models.Chapter
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Chapter)
	}
	return r0, ret.Error(1)
}

func (_m *MockChapterRepository) ExistsForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) (bool, error) {
	ret := _m.Called(ctx, querier, storyID, chapterNumber)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockChapterRepository) ListByStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]*models.Chapter, error) {
	ret := _m.Called(ctx, querier, storyID)

	var r0 []*models.Chapter
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Chapter)
	}
	return r0, ret.Error(1)
}

func (_m *MockChapterRepository) MaxChapterNumber(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, querier, storyID)
	return ret.Int(0), ret.Error(1)
}

// NewMockChapterRepository creates a new instance of MockChapterRepository.
func NewMockChapterRepository(t interface {
	mock.TestingT
	Helper()
}) *MockChapterRepository {
	m := &MockChapterRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.ChapterRepository = (*MockChapterRepository)(nil)

// MockReadingRepository is a mock type for the ReadingRepository type
type MockReadingRepository struct {
	mock.Mock
}

func (_m *MockReadingRepository) UpsertView(ctx context.Context, querier interfaces.DBTX, view *models.ChapterView) (*models.ChapterView, error) {
	ret := _m.Called(ctx, querier, view)

	var r0 *models.ChapterView
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ChapterView)
	}
	return r0, ret.Error(1)
}

func (_m *MockReadingRepository) GetView(ctx context.Context, querier interfaces.DBTX, chapterID, userID uuid.UUID) (*models.ChapterView, error) {
	ret := _m.Called(ctx, querier, chapterID, userID)

	var r0 *models.ChapterView
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ChapterView)
	}
	return r0, ret.Error(1)
}

func (_m *MockReadingRepository) CountQualifiedReaders(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, minPercentage int) (int, error) {
	ret := _m.Called(ctx, querier, storyID, minPercentage)
	return ret.Int(0), ret.Error(1)
}

// NewMockReadingRepository creates a new instance of MockReadingRepository.
func NewMockReadingRepository(t interface {
	mock.TestingT
	Helper()
}) *MockReadingRepository {
	m := &MockReadingRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.ReadingRepository = (*MockReadingRepository)(nil)
