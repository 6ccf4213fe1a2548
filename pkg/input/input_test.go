package input

import (
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPressedLastsOneFrame(t *testing.T) {
	k := NewKeyboard(DefaultBindings())

	k.Press(Focus, t0)
	assert.False(t, k.Pressed(Focus), "edge visible before Advance")

	k.Advance(t0)
	assert.True(t, k.Pressed(Focus))
	assert.True(t, k.Held(Focus))

	k.Advance(t0.Add(10 * time.Millisecond))
	assert.False(t, k.Pressed(Focus), "edge survived a second frame")
	assert.True(t, k.Held(Focus))
}

func TestRepeatDoesNotRetrigger(t *testing.T) {
	k := NewKeyboard(DefaultBindings())

	k.Press(ToggleCamera, t0)
	k.Advance(t0)
	require.True(t, k.Pressed(ToggleCamera))

	// Key repeat while held.
	k.Press(ToggleCamera, t0.Add(50*time.Millisecond))
	k.Advance(t0.Add(60 * time.Millisecond))
	assert.False(t, k.Pressed(ToggleCamera))

	k.Release(ToggleCamera)
	k.Press(ToggleCamera, t0.Add(100*time.Millisecond))
	k.Advance(t0.Add(110 * time.Millisecond))
	assert.True(t, k.Pressed(ToggleCamera), "press after release should trigger")
}

func TestTapWithinOneFrameCountsAsHeld(t *testing.T) {
	k := NewKeyboard(DefaultBindings())
	k.Press(Jump, t0)
	k.Release(Jump)
	k.Advance(t0)

	assert.True(t, k.Pressed(Jump))
	assert.True(t, k.Held(Jump))

	k.Advance(t0.Add(time.Millisecond))
	assert.False(t, k.Held(Jump))
}

func TestHoldExpires(t *testing.T) {
	k := NewKeyboard(DefaultBindings())
	k.HoldTimeout = 200 * time.Millisecond

	k.Press(MoveForward, t0)
	k.Advance(t0.Add(150 * time.Millisecond))
	assert.True(t, k.Held(MoveForward))

	// A repeat refreshes the hold.
	k.Press(MoveForward, t0.Add(180*time.Millisecond))
	k.Advance(t0.Add(300 * time.Millisecond))
	assert.True(t, k.Held(MoveForward))

	k.Advance(t0.Add(400 * time.Millisecond))
	assert.False(t, k.Held(MoveForward))
}

func TestHoldSurvivesRepeatDelay(t *testing.T) {
	k := NewKeyboard(DefaultBindings())

	// Terminals wait about half a second before the first repeat.
	k.Handle(uv.KeyPressEvent{Code: 'w', Text: "w"}, t0)
	k.Advance(t0.Add(500 * time.Millisecond))
	assert.True(t, k.Held(MoveForward))

	k.Handle(uv.KeyPressEvent{Code: 'w', Text: "w", IsRepeat: true}, t0.Add(520*time.Millisecond))
	k.Advance(t0.Add(700 * time.Millisecond))
	assert.True(t, k.Held(MoveForward))

	// Once repeating, the shorter window applies.
	k.Advance(t0.Add(900 * time.Millisecond))
	assert.False(t, k.Held(MoveForward))
}

func TestRepeatAfterExpiryDoesNotRetrigger(t *testing.T) {
	k := NewKeyboard(DefaultBindings())
	k.FirstHoldTimeout = 100 * time.Millisecond

	k.Handle(uv.KeyPressEvent{Code: 'f', Text: "f"}, t0)
	k.Advance(t0)
	require.True(t, k.Pressed(Focus))

	k.Advance(t0.Add(200 * time.Millisecond))
	require.False(t, k.Held(Focus), "hold should have expired")

	assert.True(t, k.Handle(uv.KeyPressEvent{Code: 'f', Text: "f", IsRepeat: true}, t0.Add(250*time.Millisecond)))
	k.Advance(t0.Add(260 * time.Millisecond))
	assert.True(t, k.Held(Focus))
	assert.False(t, k.Pressed(Focus), "repeat fired a second press")
}

func TestHandleKeyEvents(t *testing.T) {
	k := NewKeyboard(DefaultBindings())

	assert.True(t, k.Handle(uv.KeyPressEvent{Code: 'w', Text: "w"}, t0))
	k.Advance(t0)
	assert.True(t, k.Held(MoveForward))
	assert.False(t, k.Held(MoveBack))

	assert.True(t, k.Handle(uv.KeyReleaseEvent{Code: 'w', Text: "w"}, t0))
	k.Advance(t0.Add(time.Millisecond))
	assert.False(t, k.Held(MoveForward))

	assert.False(t, k.Handle(uv.KeyPressEvent{Code: 'p', Text: "p"}, t0), "unbound key matched")
	assert.False(t, k.Handle(uv.WindowSizeEvent{Width: 80, Height: 24}, t0))
}

func TestOutOfRangeActions(t *testing.T) {
	k := NewKeyboard(DefaultBindings())
	k.Press(Action(-1), t0)
	k.Press(actionCount, t0)
	k.Advance(t0)
	assert.False(t, k.Held(Action(-1)))
	assert.False(t, k.Pressed(actionCount))
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := ParseAction("fly")
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestParseBindings(t *testing.T) {
	b, err := ParseBindings(map[string][]string{
		"jump":  {"j", "k"},
		"focus": {"enter"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"j", "k"}, b[Jump])
	assert.Equal(t, []string{"enter"}, b[Focus])
	assert.Equal(t, DefaultBindings()[MoveForward], b[MoveForward], "unlisted action lost its default")

	_, err = ParseBindings(map[string][]string{"fly": {"v"}})
	assert.True(t, errors.Is(err, ErrUnknownAction))

	_, err = ParseBindings(map[string][]string{"jump": {}})
	assert.Error(t, err)
}

func TestDefaultBindingsCoverEveryAction(t *testing.T) {
	b := DefaultBindings()
	for _, a := range Actions() {
		assert.NotEmpty(t, b[a], "action %s has no default key", a)
	}
}

func TestClock(t *testing.T) {
	var c Clock
	assert.Equal(t, 0.0, c.Tick(t0))
	assert.InDelta(t, 0.016, c.Tick(t0.Add(16*time.Millisecond)), 1e-9)
	assert.InDelta(t, 0.1, c.Tick(t0.Add(5*time.Second)), 1e-9, "long frame not clamped")
	assert.Equal(t, 0.0, c.Tick(t0), "backwards time should not go negative")
}
