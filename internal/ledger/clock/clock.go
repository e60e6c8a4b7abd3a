// Package clock provides the logical time source the lease ledger reads from.
//
// Logical time is a monotonically non-decreasing integer counter. The ledger
// never observes wall-clock time; how the counter advances is an environment
// concern.
package clock

import "sync/atomic"

// Source yields the current logical time.
type Source interface {
	Now() int64
}

// Manual is a logical clock advanced explicitly by its owner. The zero value
// starts at time 0 and is ready to use.
type Manual struct {
	now atomic.Int64
}

// NewManual returns a manual clock starting at the given time.
func NewManual(start int64) *Manual {
	m := &Manual{}
	if start > 0 {
		m.now.Store(start)
	}
	return m
}

// Now returns the current logical time.
func (m *Manual) Now() int64 {
	return m.now.Load()
}

// Advance moves the clock forward by delta and returns the new time.
// Negative deltas are ignored; the clock never moves backwards.
func (m *Manual) Advance(delta int64) int64 {
	if delta <= 0 {
		return m.now.Load()
	}
	return m.now.Add(delta)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() int64

// Now implements Source.
func (f SourceFunc) Now() int64 {
	return f()
}
