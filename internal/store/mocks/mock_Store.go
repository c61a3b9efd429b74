// Package mocks provides test doubles for the store package.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/sells-group/lead-ingest/internal/model"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// FetchSnapshot provides a mock function with given fields: ctx
func (_m *MockStore) FetchSnapshot(ctx context.Context) ([]model.ExistingLead, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for FetchSnapshot")
	}

	var r0 []model.ExistingLead
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]model.ExistingLead, error)); ok {
		return rf(ctx)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ExistingLead)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// InsertMany provides a mock function with given fields: ctx, leads
func (_m *MockStore) InsertMany(ctx context.Context, leads []model.Lead) (int, error) {
	ret := _m.Called(ctx, leads)

	if len(ret) == 0 {
		panic("no return value specified for InsertMany")
	}

	if rf, ok := ret.Get(0).(func(context.Context, []model.Lead) (int, error)); ok {
		return rf(ctx, leads)
	}
	return ret.Int(0), ret.Error(1)
}

// UpdateByID provides a mock function with given fields: ctx, id, patch
func (_m *MockStore) UpdateByID(ctx context.Context, id string, patch model.Patch) error {
	ret := _m.Called(ctx, id, patch)

	if len(ret) == 0 {
		panic("no return value specified for UpdateByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, model.Patch) error); ok {
		return rf(ctx, id, patch)
	}
	return ret.Error(0)
}

// FindByEmail provides a mock function with given fields: ctx, email
func (_m *MockStore) FindByEmail(ctx context.Context, email string) (*model.ExistingLead, error) {
	ret := _m.Called(ctx, email)

	if len(ret) == 0 {
		panic("no return value specified for FindByEmail")
	}

	var r0 *model.ExistingLead
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.ExistingLead, error)); ok {
		return rf(ctx, email)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ExistingLead)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}

	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
