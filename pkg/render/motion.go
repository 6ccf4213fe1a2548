package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/taigrr/diorama/pkg/math3d"
)

// TargetLerp moves a camera target to a destination over a fixed number of
// frames. Each step covers (destination - target) / remaining, so the motion
// is linear, and the last step lands on the destination exactly.
type TargetLerp struct {
	Destination math3d.Vec3
	Remaining   int
}

// Start begins a transition lasting frames steps.
func (l *TargetLerp) Start(destination math3d.Vec3, frames int) error {
	if frames <= 0 {
		return errors.Wrapf(math3d.ErrDegenerate, "lerp over %d frames", frames)
	}
	l.Destination = destination
	l.Remaining = frames
	return nil
}

// Active reports whether steps remain.
func (l *TargetLerp) Active() bool {
	return l.Remaining > 0
}

// Step advances the camera target by one frame. It returns false once the
// transition has finished and leaves the camera untouched in that case.
func (l *TargetLerp) Step(c *Camera) bool {
	if l.Remaining <= 0 {
		return false
	}
	c.Target = c.Target.Add(l.Destination.Sub(c.Target).Div(float64(l.Remaining)))
	l.Remaining--
	if l.Remaining == 0 {
		c.Target = l.Destination
	}
	return true
}

// Zoom eases a field of view toward a goal at one degree per step.
// The rate is constant rather than proportional, so a 30 degree change
// always takes 30 frames.
type Zoom struct {
	Degrees float64 // current FOV
	Goal    float64 // FOV being approached
}

// NewZoom starts at deg with no pending change.
func NewZoom(deg float64) Zoom {
	return Zoom{Degrees: deg, Goal: deg}
}

// Step moves one degree toward Goal, landing on it when less than a degree
// remains. It reports whether the value changed.
func (z *Zoom) Step() bool {
	diff := z.Goal - z.Degrees
	switch {
	case diff == 0:
		return false
	case math.Abs(diff) <= 1:
		z.Degrees = z.Goal
	case diff > 0:
		z.Degrees++
	default:
		z.Degrees--
	}
	return true
}

// Apply writes the current FOV into the camera.
func (z *Zoom) Apply(c *Camera) {
	c.SetFOVDegrees(z.Degrees)
}
