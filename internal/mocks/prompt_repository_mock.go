package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// MockPromptRepository is a mock type for the PromptRepository type
type MockPromptRepository struct {
	mock.Mock
}

func (_m *MockPromptRepository) Create(ctx context.Context, querier interfaces.DBTX, prompt *models.Prompt) error {
	ret := _m.Called(ctx, querier, prompt)
	return ret.Error(0)
}

func (_m *MockPromptRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Prompt, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Prompt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Prompt)
	}
	return r0, ret.Error(1)
}

func (_m *MockPromptRepository) ListForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) ([]*models.Prompt, error) {
	ret := _m.Called(ctx, querier, storyID, chapterNumber)

	var r0 []*models.Prompt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Prompt)
	}
	return r0, ret.Error(1)
}

func (_m *MockPromptRepository) GetTopForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int) (*models.Prompt, error) {
	ret := _m.Called(ctx, querier, storyID, chapterNumber)

	var r0 *models.Prompt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Prompt)
	}
	return r0, ret.Error(1)
}

func (_m *MockPromptRepository) SetVoteCount(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID, count int) error {
	ret := _m.Called(ctx, querier, promptID, count)
	return ret.Error(0)
}

func (_m *MockPromptRepository) MarkWinner(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID) error {
	ret := _m.Called(ctx, querier, promptID)
	return ret.Error(0)
}

func (_m *MockPromptRepository) SetStatus(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID, status models.PromptStatus) error {
	ret := _m.Called(ctx, querier, promptID, status)
	return ret.Error(0)
}

func (_m *MockPromptRepository) RejectSiblings(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int, winnerID uuid.UUID) error {
	ret := _m.Called(ctx, querier, storyID, chapterNumber, winnerID)
	return ret.Error(0)
}

func (_m *MockPromptRepository) ArchiveOpenForStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) error {
	ret := _m.Called(ctx, querier, storyID)
	return ret.Error(0)
}

// NewMockPromptRepository creates a new instance of MockPromptRepository.
func NewMockPromptRepository(t interface {
	mock.TestingT
	Helper()
}) *MockPromptRepository {
	m := &MockPromptRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.PromptRepository = (*MockPromptRepository)(nil)

// MockVoteRepository is a mock type for the VoteRepository type
type MockVoteRepository struct {
	mock.Mock
}

func (_m *MockVoteRepository) Create(ctx context.Context, querier interfaces.DBTX, vote *models.PromptVote) error {
	ret := _m.Called(ctx, querier, vote)
	return ret.Error(0)
}

func (_m *MockVoteRepository) GetForSlot(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int, userID uuid.UUID) (*models.PromptVote, error) {
	ret := _m.Called(ctx, querier, storyID, chapterNumber, userID)

	var r0 *models.PromptVote
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.PromptVote)
	}
	return r0, ret.Error(1)
}

func (_m *MockVoteRepository) Delete(ctx context.Context, querier interfaces.DBTX, voteID uuid.UUID) error {
	ret := _m.Called(ctx, querier, voteID)
	return ret.Error(0)
}

func (_m *MockVoteRepository) CountForPrompt(ctx context.Context, querier interfaces.DBTX, promptID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, querier, promptID)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockVoteRepository) ListVotedPromptIDs(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, chapterNumber int, userID uuid.UUID) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, querier, storyID, chapterNumber, userID)

	var r0 []uuid.UUID
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

// NewMockVoteRepository creates a new instance of MockVoteRepository.
func NewMockVoteRepository(t interface {
	mock.TestingT
	Helper()
}) *MockVoteRepository {
	m := &MockVoteRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.VoteRepository = (*MockVoteRepository)(nil)
