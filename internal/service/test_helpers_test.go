package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

type testClock struct {
	now time.Time
}

// Now advances one second per call so creation order is observable.
func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T) (*store.Store, *store.MemoryBackend) {
	t.Helper()
	backend := store.NewMemoryBackend(nil)
	clock := &testClock{now: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)}
	n := 0
	s := store.New(backend,
		store.WithClock(clock.Now),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return s, backend
}

func ptr[T any](v T) *T {
	return &v
}
