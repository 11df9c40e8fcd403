package pitch

import "sync/atomic"

// Counter accumulates metric evaluations across window scans. It is owned
// by the caller and safe for concurrent use. A nil *Counter discards counts.
type Counter struct {
	n atomic.Int64
}

// Add records n evaluations
func (c *Counter) Add(n int64) {
	if c == nil {
		return
	}
	c.n.Add(n)
}

// Load returns the total so far
func (c *Counter) Load() int64 {
	if c == nil {
		return 0
	}
	return c.n.Load()
}

// Reset zeroes the counter and returns the previous total
func (c *Counter) Reset() int64 {
	if c == nil {
		return 0
	}
	return c.n.Swap(0)
}
