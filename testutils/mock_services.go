package testutils

import (
	"sync"
	"time"

	"owlistic-notes/notes/database"

	"github.com/stretchr/testify/mock"
)

// MockSaver mocks the lifecycle service's Saver for testing
type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) Save() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSaver) HasPendingChanges() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockStore mocks the store behind a data context for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load() (database.Snapshot, error) {
	args := m.Called()
	return args.Get(0).(database.Snapshot), args.Error(1)
}

func (m *MockStore) Commit(cs database.ChangeSet) error {
	args := m.Called(cs)
	return args.Error(0)
}

func (m *MockStore) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// FakeClock is a settable time source.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
