package stage

import "github.com/charmbracelet/harmonica"

// Spin is an angle driven by a velocity that a spring pulls back to rest,
// so an impulse turns into a smooth coast-down.
type Spin struct {
	Angle    float64
	Velocity float64

	spring harmonica.Spring
	accel  float64 // spring velocity of Velocity itself
}

// NewSpin creates a spin updated fps times per second.
func NewSpin(fps int) Spin {
	return Spin{
		// critically damped: no swing back past zero
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Impulse adds to the angular velocity.
func (s *Spin) Impulse(v float64) {
	s.Velocity += v
}

// Update advances one frame: the angle moves by the velocity, then the
// velocity decays toward zero.
func (s *Spin) Update() {
	s.Angle += s.Velocity
	s.Velocity, s.accel = s.spring.Update(s.Velocity, s.accel, 0)
}
