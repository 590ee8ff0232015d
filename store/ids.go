package store

import (
	"sync/atomic"
	"time"
)

type IDGenerator interface {
	Next() int64
}

// ClockID hands out millisecond timestamps, bumped past the previous id
// whenever two calls land in the same millisecond.
type ClockID struct {
	now  func() time.Time
	last atomic.Int64
}

// NewClockID starts strictly above floor so loaded comments keep the lowest ids.
func NewClockID(now func() time.Time, floor int64) *ClockID {
	if now == nil {
		now = time.Now
	}
	g := &ClockID{now: now}
	g.last.Store(floor)
	return g
}

func (g *ClockID) Next() int64 {
	for {
		last := g.last.Load()
		id := g.now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		if g.last.CompareAndSwap(last, id) {
			return id
		}
	}
}
