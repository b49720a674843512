package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pagemark/readsync/domain"
	"github.com/pagemark/readsync/internal/provider"
)

// --- Repository mocks ---

type MockAuthSessionRepository struct {
	mock.Mock
}

func (m *MockAuthSessionRepository) CreateSession(ctx context.Context, session *domain.AuthSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockAuthSessionRepository) GetSessionByToken(ctx context.Context, sessionToken string) (*domain.AuthSession, error) {
	args := m.Called(ctx, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

func (m *MockAuthSessionRepository) GetSessionByState(ctx context.Context, state string) (*domain.AuthSession, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

func (m *MockAuthSessionRepository) TransitionSession(ctx context.Context, sessionID string, newStatus domain.SessionStatus, userID string) (bool, error) {
	args := m.Called(ctx, sessionID, newStatus, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthSessionRepository) SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) UpsertByGithubUID(ctx context.Context, githubUID, username, avatarURL string) (*domain.User, error) {
	args := m.Called(ctx, githubUID, username, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) BindDevice(ctx context.Context, deviceID, userID string) (*domain.Device, error) {
	args := m.Called(ctx, deviceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

func (m *MockDeviceRepository) GetDeviceByDeviceID(ctx context.Context, deviceID string) (*domain.Device, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

func (m *MockDeviceRepository) TouchDevice(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) SaveToken(ctx context.Context, token *domain.UserToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetTokenByValue(ctx context.Context, value string) (*domain.UserToken, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserToken), args.Error(1)
}

func (m *MockTokenRepository) RevokeToken(ctx context.Context, userID, value string) (bool, error) {
	args := m.Called(ctx, userID, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) RevokeAllTokens(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTokenRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// --- Provider mock ---

type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) AuthorizeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProviderClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) FetchProfile(ctx context.Context, accessToken string) (*provider.Profile, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Profile), args.Error(1)
}
