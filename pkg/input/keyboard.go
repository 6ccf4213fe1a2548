package input

import (
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

// Controls is the per-frame view of input the scene reads.
type Controls interface {
	// Held reports whether the action is down this frame.
	Held(a Action) bool
	// Pressed reports whether the action went down since the previous frame.
	Pressed(a Action) bool
}

// When the terminal sends no release, a key stays held until no press or
// repeat has arrived for a while. The first window covers the delay before
// the keyboard starts repeating; later windows cover the repeat interval.
const (
	DefaultFirstHoldTimeout = 700 * time.Millisecond
	DefaultHoldTimeout      = 300 * time.Millisecond
)

// Keyboard tracks action state from key events. Feed events with Handle
// (or Press/Release), then call Advance once per frame before reading.
type Keyboard struct {
	bindings         Bindings
	FirstHoldTimeout time.Duration
	HoldTimeout      time.Duration

	down      [actionCount]bool
	repeating [actionCount]bool
	lastSeen  [actionCount]time.Time
	pending   [actionCount]bool // went down since the last Advance
	edge      [actionCount]bool // pending, latched for the current frame
}

// NewKeyboard creates a keyboard with the given bindings.
func NewKeyboard(b Bindings) *Keyboard {
	return &Keyboard{
		bindings:         b,
		FirstHoldTimeout: DefaultFirstHoldTimeout,
		HoldTimeout:      DefaultHoldTimeout,
	}
}

// Handle applies a terminal event and reports whether it matched a binding.
func (k *Keyboard) Handle(ev uv.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		matched := false
		for a, keys := range k.bindings {
			if !ev.MatchString(keys...) {
				continue
			}
			matched = true
			if ev.IsRepeat {
				k.Repeat(a, now)
			} else {
				k.Press(a, now)
			}
		}
		return matched
	case uv.KeyReleaseEvent:
		matched := false
		for a, keys := range k.bindings {
			if ev.MatchString(keys...) {
				k.Release(a)
				matched = true
			}
		}
		return matched
	}
	return false
}

// Press marks a as down at time now. A press of a key that is already
// down counts as a repeat.
func (k *Keyboard) Press(a Action, now time.Time) {
	if a < 0 || a >= actionCount {
		return
	}
	if k.down[a] {
		k.Repeat(a, now)
		return
	}
	k.pending[a] = true
	k.repeating[a] = false
	k.down[a] = true
	k.lastSeen[a] = now
}

// Repeat keeps a held at time now without a new press edge, even when
// its hold had already expired.
func (k *Keyboard) Repeat(a Action, now time.Time) {
	if a < 0 || a >= actionCount {
		return
	}
	k.down[a] = true
	k.repeating[a] = true
	k.lastSeen[a] = now
}

// Release marks a as up.
func (k *Keyboard) Release(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	k.down[a] = false
}

// Advance starts a new frame: pressed edges collected since the last call
// become visible, and stale holds expire.
func (k *Keyboard) Advance(now time.Time) {
	for a := range actionCount {
		k.edge[a] = k.pending[a]
		k.pending[a] = false
		timeout := k.FirstHoldTimeout
		if k.repeating[a] {
			timeout = k.HoldTimeout
		}
		if k.down[a] && timeout > 0 && now.Sub(k.lastSeen[a]) > timeout {
			k.down[a] = false
		}
	}
}

// Held implements Controls.
func (k *Keyboard) Held(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return k.down[a] || k.edge[a]
}

// Pressed implements Controls.
func (k *Keyboard) Pressed(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return k.edge[a]
}
