package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// MockUserRepository is a mock type for the UserRepository type
type MockUserRepository struct {
	mock.Mock
}

func (_m *MockUserRepository) CreateUser(ctx context.Context, querier interfaces.DBTX, user *models.User) error {
	ret := _m.Called(ctx, querier, user)
	return ret.Error(0)
}

func (_m *MockUserRepository) GetUserByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.User, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) GetUserByUsername(ctx context.Context, querier interfaces.DBTX, username string) (*models.User, error) {
	ret := _m.Called(ctx, querier, username)

	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) CreateProfile(ctx context.Context, querier interfaces.DBTX, profile *models.UserProfile) error {
	ret := _m.Called(ctx, querier, profile)
	return ret.Error(0)
}

func (_m *MockUserRepository) GetProfile(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) (*models.UserProfile, error) {
	ret := _m.Called(ctx, querier, userID)

	var r0 *models.UserProfile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.UserProfile)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) GetProfileForUpdate(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) (*models.UserProfile, error) {
	ret := _m.Called(ctx, querier, userID)

	var r0 *models.UserProfile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.UserProfile)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) GetProfileByReferralCode(ctx context.Context, querier interfaces.DBTX, code string) (*models.UserProfile, error) {
	ret := _m.Called(ctx, querier, code)

	var r0 *models.UserProfile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.UserProfile)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) UpdateCredits(ctx context.Context, querier interfaces.DBTX, profile *models.UserProfile) error {
	ret := _m.Called(ctx, querier, profile)
	return ret.Error(0)
}

func (_m *MockUserRepository) UpdateLoginStreak(ctx context.Context, querier interfaces.DBTX, profile *models.UserProfile) error {
	ret := _m.Called(ctx, querier, profile)
	return ret.Error(0)
}

func (_m *MockUserRepository) MarkReferralRewarded(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) error {
	ret := _m.Called(ctx, querier, userID)
	return ret.Error(0)
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository(t interface {
	mock.TestingT
	Helper()
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.UserRepository = (*MockUserRepository)(nil)
