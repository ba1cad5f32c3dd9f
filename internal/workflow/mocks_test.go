package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fdms-kiosk-backend/internal/domain"
	"fdms-kiosk-backend/internal/remote"
)

// MockMovementAPI
type MockMovementAPI struct {
	mock.Mock
}

func (m *MockMovementAPI) List(ctx context.Context) (*remote.Envelope, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Envelope), args.Error(1)
}

func (m *MockMovementAPI) Checkout(ctx context.Context, record *domain.AssetMovementRecord) (*remote.Envelope, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Envelope), args.Error(1)
}

func (m *MockMovementAPI) Return(ctx context.Context, id string, ret *domain.ReturnRecord) (*remote.Envelope, error) {
	args := m.Called(ctx, id, ret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Envelope), args.Error(1)
}

// MockReasonAPI
type MockReasonAPI struct {
	mock.Mock
}

func (m *MockReasonAPI) List(ctx context.Context) (*remote.Envelope, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Envelope), args.Error(1)
}
