package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
)

// MockRewardService is a mock type for the RewardService type
type MockRewardService struct {
	mock.Mock
}

func (_m *MockRewardService) GrantWelcomeBonus(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID) error {
	ret := _m.Called(ctx, tx, userID)
	return ret.Error(0)
}

func (_m *MockRewardService) ProcessDailyLogin(ctx context.Context, userID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, userID)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockRewardService) ProcessReadingMilestones(ctx context.Context, storyID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, storyID)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockRewardService) ProcessReferral(ctx context.Context, tx interfaces.DBTX, referredUserID, referrerUserID uuid.UUID) error {
	ret := _m.Called(ctx, tx, referredUserID, referrerUserID)
	return ret.Error(0)
}

func (_m *MockRewardService) ProcessSocialShare(ctx context.Context, userID, storyID uuid.UUID, platform string) (int, error) {
	ret := _m.Called(ctx, userID, storyID, platform)
	return ret.Int(0), ret.Error(1)
}

// NewMockRewardService creates a new instance of MockRewardService.
func NewMockRewardService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRewardService {
	m := &MockRewardService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
