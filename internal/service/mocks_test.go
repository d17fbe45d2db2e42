package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"smartq/internal/domain"
	"smartq/internal/schema"
)

// --- MockTransport ---
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Invoke(ctx context.Context, prompt string, desc *schema.Descriptor, timeout time.Duration) (string, error) {
	args := m.Called(ctx, prompt, desc, timeout)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) Model() string {
	return "mock"
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ domain.Cache = (*MockCache)(nil)
