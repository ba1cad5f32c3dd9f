package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fdms-kiosk-backend/internal/remote"
)

// MockSettingsAPI
type MockSettingsAPI struct {
	mock.Mock
}

func (m *MockSettingsAPI) Get(ctx context.Context) (*remote.Envelope, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Envelope), args.Error(1)
}

// MockAdminAPI
type MockAdminAPI struct {
	mock.Mock
}

func (m *MockAdminAPI) Login(ctx context.Context, password string) (*remote.Envelope, error) {
	args := m.Called(ctx, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Envelope), args.Error(1)
}
