package lww

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallClockNeverGoesBack(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	readings := []time.Time{base, base.Add(-time.Second), base, base.Add(time.Second)}
	c := NewWallClock()
	c.now = func() time.Time {
		r := readings[0]
		readings = readings[1:]
		return r
	}

	assert.Equal(t, Timestamp(1_700_000_000_000), c.Now())
	assert.Equal(t, Timestamp(1_700_000_000_001), c.Now(), "stepped back")
	assert.Equal(t, Timestamp(1_700_000_000_002), c.Now(), "same millisecond")
	assert.Equal(t, Timestamp(1_700_000_001_000), c.Now())
}

func TestWallClockDefault(t *testing.T) {
	c := NewWallClock()
	a := c.Now()
	b := c.Now()
	assert.Greater(t, b, a)

	// milliseconds fit in a float64 without rounding
	assert.Less(t, int64(a), int64(1)<<53)
	assert.InDelta(t, time.Now().UnixMilli(), int64(a), float64(time.Minute.Milliseconds()))
}

func TestWallClockZeroValue(t *testing.T) {
	set := New[string](WithClock(&WallClock{}))
	set.Add("x")
	set.Remove("x")
	set.Add("x")

	assert.True(t, set.Has("x"))
	ts, _ := set.AddedAt("x")
	assert.Positive(t, int64(ts))
}

func TestLogicalClock(t *testing.T) {
	c := NewLogicalClock(0)
	assert.Equal(t, Timestamp(1), c.Now())
	assert.Equal(t, Timestamp(2), c.Now())

	c.Observe(10)
	assert.Equal(t, Timestamp(11), c.Now())

	c.Observe(3)
	assert.Equal(t, Timestamp(12), c.Now())
}

func TestLogicalClockConcurrent(t *testing.T) {
	c := NewLogicalClock(0)
	var wg sync.WaitGroup
	seen := make([]Timestamp, 100)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = c.Now()
			c.Observe(Timestamp(i))
		}(i)
	}
	wg.Wait()

	unique := map[Timestamp]bool{}
	for _, ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, len(seen))
}

func TestFixedClockAndFunc(t *testing.T) {
	assert.Equal(t, Timestamp(9999), FixedClock(9999).Now())

	var c Clock = ClockFunc(func() Timestamp { return 7 })
	assert.Equal(t, Timestamp(7), c.Now())
}

func TestDefaultClockIsWall(t *testing.T) {
	set := New[string]()
	_, ok := set.clock.(*WallClock)
	assert.True(t, ok)

	set = New[string](WithClock(nil))
	_, ok = set.clock.(*WallClock)
	assert.True(t, ok)
}
