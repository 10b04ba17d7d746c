package mocks

import (
	"context"

	"text-adventure/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockNarrator is a mock type for the Narrator type
type MockNarrator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, prompt
func (_m *MockNarrator) Generate(ctx context.Context, prompt string) (string, error) {
	ret := _m.Called(ctx, prompt)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string) string); ok {
		r0 = rf(ctx, prompt)
	} else {
		r0 = ret.String(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, prompt)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockNarrator creates a new instance of MockNarrator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockNarrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNarrator {
	m := &MockNarrator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ service.Narrator = (*MockNarrator)(nil)
