package lww

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock hands out timestamps for local writes. Successive calls on one replica
// must not go backwards.
type Clock interface {
	Now() Timestamp
}

// Observer is implemented by clocks that want to hear about timestamps learned
// through Merge, e.g. Lamport clocks.
type Observer interface {
	Observe(ts Timestamp)
}

type ClockFunc func() Timestamp

func (f ClockFunc) Now() Timestamp { return f() }

// WallClock reads unix milliseconds, the unit JavaScript peers use, so
// timestamps stay exact as JSON numbers. Each call returns more than the one
// before, even if the system clock is stepped back or two writes land in the
// same millisecond. The zero value is ready to use.
type WallClock struct {
	mu   sync.Mutex
	last Timestamp
	now  func() time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

func (c *WallClock) Now() Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	if now == nil {
		now = time.Now
	}
	ts := Timestamp(now().UnixMilli())
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}

// LogicalClock is a Lamport counter. Every call to Now ticks it and Observe
// moves it past anything seen from other replicas.
type LogicalClock struct {
	counter atomic.Int64
}

func NewLogicalClock(start Timestamp) *LogicalClock {
	c := &LogicalClock{}
	c.counter.Store(int64(start))
	return c
}

func (c *LogicalClock) Now() Timestamp {
	return Timestamp(c.counter.Add(1))
}

func (c *LogicalClock) Observe(ts Timestamp) {
	for {
		cur := c.counter.Load()
		if int64(ts) <= cur || c.counter.CompareAndSwap(cur, int64(ts)) {
			return
		}
	}
}

// FixedClock always returns the same instant.
type FixedClock Timestamp

func (c FixedClock) Now() Timestamp { return Timestamp(c) }
