package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// MockGenerationTaskPublisher is a mock type for the GenerationTaskPublisher type
type MockGenerationTaskPublisher struct {
	mock.Mock
}

func (_m *MockGenerationTaskPublisher) PublishGenerationTask(ctx context.Context, task models.GenerationTask) error {
	ret := _m.Called(ctx, task)
	return ret.Error(0)
}

// NewMockGenerationTaskPublisher creates a new instance of MockGenerationTaskPublisher.
func NewMockGenerationTaskPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockGenerationTaskPublisher {
	m := &MockGenerationTaskPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.GenerationTaskPublisher = (*MockGenerationTaskPublisher)(nil)

// MockSettingsEventPublisher is a mock type for the SettingsEventPublisher type
type MockSettingsEventPublisher struct {
	mock.Mock
}

func (_m *MockSettingsEventPublisher) PublishSettingUpdate(ctx context.Context, setting models.SiteSetting) error {
	ret := _m.Called(ctx, setting)
	return ret.Error(0)
}

// NewMockSettingsEventPublisher creates a new instance of MockSettingsEventPublisher.
func NewMockSettingsEventPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockSettingsEventPublisher {
	m := &MockSettingsEventPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.SettingsEventPublisher = (*MockSettingsEventPublisher)(nil)

// MockAIClient is a mock type for the AIClient type
type MockAIClient struct {
	mock.Mock
}

func (_m *MockAIClient) GenerateText(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	ret := _m.Called(ctx, systemPrompt, userPrompt)
	return ret.String(0), ret.Error(1)
}

// NewMockAIClient creates a new instance of MockAIClient.
func NewMockAIClient(t interface {
	mock.TestingT
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.AIClient = (*MockAIClient)(nil)

// MockPaymentProvider is a mock type for the PaymentProvider type
type MockPaymentProvider struct {
	mock.Mock
}

func (_m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, params interfaces.CheckoutParams) (*models.CheckoutSession, error) {
	ret := _m.Called(ctx, params)

	var r0 *models.CheckoutSession
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.CheckoutSession)
	}
	return r0, ret.Error(1)
}

// NewMockPaymentProvider creates a new instance of MockPaymentProvider.
func NewMockPaymentProvider(t interface {
	mock.TestingT
	Helper()
}) *MockPaymentProvider {
	m := &MockPaymentProvider{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.PaymentProvider = (*MockPaymentProvider)(nil)

// MockReaderCountCache is a mock type for the ReaderCountCache type
type MockReaderCountCache struct {
	mock.Mock
}

func (_m *MockReaderCountCache) Get(ctx context.Context, storyID uuid.UUID) (int, bool, error) {
	ret := _m.Called(ctx, storyID)
	return ret.Int(0), ret.Bool(1), ret.Error(2)
}

func (_m *MockReaderCountCache) Set(ctx context.Context, storyID uuid.UUID, count int) error {
	ret := _m.Called(ctx, storyID, count)
	return ret.Error(0)
}

func (_m *MockReaderCountCache) Invalidate(ctx context.Context, storyID uuid.UUID) error {
	ret := _m.Called(ctx, storyID)
	return ret.Error(0)
}

// NewMockReaderCountCache creates a new instance of MockReaderCountCache.
func NewMockReaderCountCache(t interface {
	mock.TestingT
	Helper()
}) *MockReaderCountCache {
	m := &MockReaderCountCache{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.ReaderCountCache = (*MockReaderCountCache)(nil)
