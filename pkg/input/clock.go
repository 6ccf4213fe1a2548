package input

import "time"

// MaxFrameStep caps the elapsed time of one frame, so a stall does not
// turn into a jump.
const MaxFrameStep = 100 * time.Millisecond

// Clock measures the time between frames.
type Clock struct {
	last time.Time
}

// Tick returns seconds since the previous Tick, clamped to MaxFrameStep.
// The first Tick returns 0.
func (c *Clock) Tick(now time.Time) float64 {
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	dt := now.Sub(c.last)
	c.last = now
	if dt < 0 {
		return 0
	}
	return min(dt, MaxFrameStep).Seconds()
}
