package mocks

import (
	"context"

	"text-adventure/internal/model"
	"text-adventure/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockPlayerStateRepository is a mock type for the PlayerStateRepository type
type MockPlayerStateRepository struct {
	mock.Mock
}

// Save provides a mock function with given fields: ctx, state
func (_m *MockPlayerStateRepository) Save(ctx context.Context, state *model.PlayerState) error {
	ret := _m.Called(ctx, state)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *model.PlayerState) error); ok {
		r0 = rf(ctx, state)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Load provides a mock function with given fields: ctx, playerName
func (_m *MockPlayerStateRepository) Load(ctx context.Context, playerName string) (*model.PlayerState, error) {
	ret := _m.Called(ctx, playerName)

	var r0 *model.PlayerState
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.PlayerState); ok {
		r0 = rf(ctx, playerName)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.PlayerState)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, playerName)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// List provides a mock function with given fields: ctx
func (_m *MockPlayerStateRepository) List(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)

	var r0 []string
	if rf, ok := ret.Get(0).(func(context.Context) []string); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockPlayerStateRepository creates a new instance of MockPlayerStateRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockPlayerStateRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPlayerStateRepository {
	m := &MockPlayerStateRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ repository.PlayerStateRepository = (*MockPlayerStateRepository)(nil)
