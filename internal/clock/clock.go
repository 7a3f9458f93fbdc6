// Package clock provides the server time source and id generation used to
// stamp records, engagement rows and stories.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Monotonic wraps a Clock and never reports a millisecond earlier than one it
// already returned, so wall-clock steps backwards cannot reorder writes.
// Safe for concurrent use.
type Monotonic struct {
	base Clock
	last atomic.Int64
}

func NewMonotonic(base Clock) *Monotonic {
	return &Monotonic{base: base}
}

func (m *Monotonic) Now() time.Time {
	return time.UnixMilli(m.NowMillis())
}

// NowMillis returns the current time in epoch milliseconds.
func (m *Monotonic) NowMillis() int64 {
	now := m.base.Now().UnixMilli()
	for {
		last := m.last.Load()
		if now <= last {
			return last
		}
		if m.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// Millis reads c in epoch milliseconds.
func Millis(c Clock) int64 {
	if m, ok := c.(interface{ NowMillis() int64 }); ok {
		return m.NowMillis()
	}
	return c.Now().UnixMilli()
}

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
