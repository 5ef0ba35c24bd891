package gateway

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of Gateway.
type MockGateway struct {
	mock.Mock
}

var _ Gateway = (*MockGateway)(nil)

// NewMockGateway creates a new MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) SendCommand(ctx context.Context, cmd string) (Reply, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(Reply), args.Error(1) //nolint:forcetypeassert
}

func (m *MockGateway) ReadBinary(ctx context.Context, cmd string, expected int) ([]int32, error) {
	args := m.Called(ctx, cmd, expected)
	data, _ := args.Get(0).([]int32)

	return data, args.Error(1)
}
