package stage

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/diorama/pkg/config"
	"github.com/taigrr/diorama/pkg/input"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

const tol = 1e-9

// controls is a scripted input.Controls.
type controls struct {
	held    map[input.Action]bool
	pressed map[input.Action]bool
}

func hold(actions ...input.Action) controls {
	c := controls{held: map[input.Action]bool{}, pressed: map[input.Action]bool{}}
	for _, a := range actions {
		c.held[a] = true
	}
	return c
}

func press(actions ...input.Action) controls {
	c := hold(actions...)
	for _, a := range actions {
		c.pressed[a] = true
	}
	return c
}

func (c controls) Held(a input.Action) bool    { return c.held[a] }
func (c controls) Pressed(a input.Action) bool { return c.pressed[a] }

type recorder struct {
	calls []render.DrawCall
}

func (r *recorder) Submit(call render.DrawCall) {
	r.calls = append(r.calls, call)
}

const (
	bodyTex render.TextureID = iota + 1
	targetTex
	hitTex
	markerTex
)

func newStage(t *testing.T, modify func(*config.Config, *Options)) *Stage {
	t.Helper()
	cfg := config.Default()
	opts := Options{
		BodyTexture:   bodyTex,
		TargetTexture: targetTex,
		HitTexture:    hitTex,
		MarkerTexture: markerTex,
	}
	if modify != nil {
		modify(&cfg, &opts)
	}
	s, err := New(cfg, opts)
	require.NoError(t, err)
	return s
}

func step(t *testing.T, s *Stage, c controls, frames int) {
	t.Helper()
	for range frames {
		require.NoError(t, s.Update(c))
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FPS = 0
	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func TestInitialState(t *testing.T) {
	s := newStage(t, nil)

	st := s.Status()
	assert.Equal(t, MainCamera, st.Camera)
	assert.Equal(t, "figure", st.Focus)
	assert.Equal(t, math3d.Zero3(), st.Position)
	assert.InDelta(t, 45, st.FOV, tol)
	assert.Zero(t, st.Hits)
	assert.Same(t, s.MainCamera(), s.Camera())

	// The main camera orbits behind the figure, looking at it.
	cam := s.MainCamera()
	assert.Equal(t, math3d.Zero3(), cam.Target)
	assert.InDelta(t, 30, cam.Eye.Distance(cam.Target), 1e-6)
	assert.Less(t, cam.Eye.Z, 0.0)
	assert.Greater(t, cam.Eye.Y, 0.0)
}

func TestWalkForward(t *testing.T) {
	s := newStage(t, nil)
	step(t, s, hold(input.MoveForward), 10)

	pos := s.Status().Position
	assert.InDelta(t, 0, pos.X, tol)
	assert.InDelta(t, 2, pos.Z, tol)
	assert.NotZero(t, s.Figure().Swing(), "limbs should swing while walking")
}

func TestWalkFollowsHeading(t *testing.T) {
	s := newStage(t, func(c *config.Config, _ *Options) {
		c.TurnSpeed = math.Pi / 2
	})
	// One frame turning right a quarter turn, then walk: forward is now +X.
	step(t, s, hold(input.TurnRight), 1)
	step(t, s, hold(input.MoveForward), 5)

	pos := s.Status().Position
	assert.InDelta(t, 1, pos.X, 1e-6)
	assert.InDelta(t, 0, pos.Z, 1e-6)
	assert.InDelta(t, math.Pi/2, s.Status().Heading, tol)

	// The main camera follows the heading.
	assert.InDelta(t, math.Pi/2, s.MainCamera().Rotation.Y, tol)
}

func TestTurnAndWalkSameFrame(t *testing.T) {
	s := newStage(t, func(c *config.Config, _ *Options) {
		c.TurnSpeed = math.Pi / 2
	})
	step(t, s, hold(input.TurnRight, input.MoveForward), 1)

	pos := s.Status().Position
	assert.InDelta(t, s.cfg.MoveSpeed, pos.X, 1e-6, "walked along the old heading")
	assert.InDelta(t, 0, pos.Z, 1e-6)
}

func TestTurnLeftWraps(t *testing.T) {
	s := newStage(t, nil)
	step(t, s, hold(input.TurnLeft), 1)
	assert.InDelta(t, 2*math.Pi-0.05, s.Status().Heading, tol)
}

func TestMovementIsClamped(t *testing.T) {
	s := newStage(t, func(c *config.Config, _ *Options) {
		c.MoveSpeed = 1
	})
	step(t, s, hold(input.MoveRight, input.MoveBack), 100)

	pos := s.Status().Position
	assert.InDelta(t, 20, pos.X, tol)
	assert.InDelta(t, -20, pos.Z, tol)
}

func TestFocusCompletesInLerpFrames(t *testing.T) {
	s := newStage(t, func(c *config.Config, o *Options) {
		c.LerpFrames = 10
		o.Targets = []math3d.Vec3{math3d.V3(0, 0, 20), math3d.V3(5, 1, 5)}
	})
	want := math3d.V3(5, 1, 5)

	step(t, s, press(input.Focus), 1)
	assert.Equal(t, "target1", s.Status().Focus)
	step(t, s, hold(), 8)
	require.True(t, s.Focusing(), "finished early")
	assert.False(t, s.MainCamera().Target.ApproxEqual(want, 1e-6))

	step(t, s, hold(), 1)
	assert.False(t, s.Focusing())
	assert.True(t, s.MainCamera().Target.ApproxEqual(want, tol), "target = %v", s.MainCamera().Target)

	// The view ray now runs through the focused target.
	assert.True(t, s.Hit(1))
	assert.False(t, s.Hit(0))
	assert.Equal(t, 1, s.Status().Hits)

	// Focus again returns to the figure.
	step(t, s, press(input.Focus), 1)
	assert.Equal(t, "figure", s.Status().Focus)
	step(t, s, hold(), 9)
	assert.True(t, s.MainCamera().Target.ApproxEqual(math3d.Zero3(), tol))
}

func TestFocusMovesLinearly(t *testing.T) {
	s := newStage(t, func(c *config.Config, o *Options) {
		c.LerpFrames = 4
		o.Targets = []math3d.Vec3{math3d.V3(8, 0, 0)}
	})

	var xs []float64
	step(t, s, press(input.Focus), 1)
	xs = append(xs, s.MainCamera().Target.X)
	for range 3 {
		step(t, s, hold(), 1)
		xs = append(xs, s.MainCamera().Target.X)
	}
	assert.InDeltaSlice(t, []float64{2, 4, 6, 8}, xs, tol)
}

func TestScopeEasesFOV(t *testing.T) {
	s := newStage(t, nil)

	step(t, s, hold(input.Scope), 10)
	assert.InDelta(t, 35, s.Status().FOV, 1e-6)

	step(t, s, hold(input.Scope), 15)
	assert.InDelta(t, 20, s.Status().FOV, 1e-6)

	step(t, s, hold(input.Scope), 5)
	assert.InDelta(t, 20, s.Status().FOV, 1e-6, "overshot the scope FOV")

	step(t, s, hold(), 1)
	assert.InDelta(t, 21, s.Status().FOV, 1e-6)
	step(t, s, hold(), 24)
	assert.InDelta(t, 45, s.Status().FOV, 1e-6)
}

func TestToggleCamera(t *testing.T) {
	s := newStage(t, nil)

	step(t, s, press(input.ToggleCamera), 1)
	assert.Equal(t, DebugCamera, s.Mode())
	assert.Same(t, s.DebugCamera(), s.Camera())

	// Held without a new press does not toggle back.
	step(t, s, hold(input.ToggleCamera), 3)
	assert.Equal(t, DebugCamera, s.Mode())

	step(t, s, press(input.ToggleCamera), 1)
	assert.Equal(t, MainCamera, s.Mode())
}

func TestLookPitchesActiveCamera(t *testing.T) {
	s := newStage(t, nil)
	before := s.MainCamera().Rotation.X

	step(t, s, hold(input.LookUp), 2)
	assert.InDelta(t, before-0.1, s.MainCamera().Rotation.X, tol)
	assert.InDelta(t, debugPitch, s.DebugCamera().Rotation.X, tol, "inactive camera moved")
}

func TestDebugSpinCoastsToRest(t *testing.T) {
	s := newStage(t, nil)
	step(t, s, press(input.ToggleCamera, input.Spin), 1)

	yaw := s.DebugCamera().Rotation.Y
	assert.Greater(t, yaw, 0.0)

	step(t, s, hold(), 300)
	assert.InDelta(t, 0, s.spin.Velocity, 1e-4)
	assert.NotEqual(t, yaw, s.DebugCamera().Rotation.Y)
}

func TestMarkerFacesActiveCamera(t *testing.T) {
	s := newStage(t, nil)

	check := func() {
		t.Helper()
		cam := s.Camera()
		got := s.Graph().Local(s.Marker()).Rotation
		assert.True(t, got.ApproxEqual(render.Billboard(cam.Rotation), tol))

		// The marker's +Z points back at the camera.
		front := s.Frame().RelativeDirection(s.Marker(), math3d.Forward())
		assert.InDelta(t, -1, front.Dot(cam.Forward()), 1e-6)
	}

	check()
	step(t, s, press(input.ToggleCamera, input.Spin), 1)
	step(t, s, hold(), 10)
	check()
}

func TestJump(t *testing.T) {
	s := newStage(t, nil)
	fig := s.Figure()
	spine := fig.Node(Spine)

	step(t, s, press(input.Jump), 1)
	assert.True(t, s.Status().Jumping)
	assert.Greater(t, s.Graph().Local(spine).Translation.Y, SpineHeight)

	// A second press mid-air does not restart the jump.
	assert.False(t, fig.Jump())

	step(t, s, hold(), fig.JumpFrames-1)
	assert.False(t, s.Status().Jumping)
	assert.Equal(t, SpineHeight, s.Graph().Local(spine).Translation.Y)
}

func TestSwingBounces(t *testing.T) {
	s := newStage(t, nil)
	fig := s.Figure()

	step(t, s, hold(input.MoveForward), 1)
	assert.InDelta(t, fig.SwingSpeed, s.Graph().Local(fig.Node(ArmL)).Rotation.X, tol)
	assert.InDelta(t, -fig.SwingSpeed, s.Graph().Local(fig.Node(ArmR)).Rotation.X, tol)

	seenPositive, seenNegative := false, false
	for range 100 {
		step(t, s, hold(input.MoveForward), 1)
		sw := fig.Swing()
		require.LessOrEqual(t, math.Abs(sw), fig.SwingLimit+tol)
		seenPositive = seenPositive || sw > 0
		seenNegative = seenNegative || sw < 0
	}
	assert.True(t, seenPositive && seenNegative, "swing never reversed")
}

func TestDraw(t *testing.T) {
	s := newStage(t, func(c *config.Config, o *Options) {
		c.LerpFrames = 1
		o.Targets = []math3d.Vec3{math3d.V3(0, 0, 20), math3d.V3(5, 1, 5)}
	})

	var r recorder
	s.Draw(&r)
	// twelve limbs, two targets, one marker
	require.Len(t, r.calls, 15)

	counts := map[render.TextureID]int{}
	for _, c := range r.calls {
		counts[c.Texture]++
		assert.Equal(t, s.Camera().ViewMatrix(), c.View)
		assert.Equal(t, s.Camera().ProjectionMatrix(), c.Projection)
	}
	assert.Equal(t, map[render.TextureID]int{bodyTex: 12, targetTex: 2, markerTex: 1}, counts)

	step(t, s, press(input.Focus), 1)
	r.calls = nil
	s.Draw(&r)
	counts = map[render.TextureID]int{}
	for _, c := range r.calls {
		counts[c.Texture]++
	}
	assert.Equal(t, 1, counts[hitTex])
	assert.Equal(t, 1, counts[targetTex])
}

func TestDrawSkipsTargetsOutOfView(t *testing.T) {
	s := newStage(t, func(_ *config.Config, o *Options) {
		o.Targets = []math3d.Vec3{math3d.V3(0, 0, 20), math3d.V3(0, 0, -200)}
	})

	var r recorder
	s.Draw(&r)
	counts := map[render.TextureID]int{}
	for _, c := range r.calls {
		counts[c.Texture]++
	}
	assert.Equal(t, 1, counts[targetTex], "target behind the camera was submitted")
	assert.Len(t, r.calls, 14)
}

func TestDrawFollowsRefreshOrder(t *testing.T) {
	s := newStage(t, nil)
	var r recorder
	s.Draw(&r)

	head := s.Frame().World(s.Figure().Node(Head))
	chest := s.Frame().World(s.Figure().Node(Chest))
	chestAt, headAt := -1, -1
	for i, c := range r.calls {
		switch c.World {
		case chest:
			if chestAt < 0 {
				chestAt = i
			}
		case head:
			headAt = i
		}
	}
	require.GreaterOrEqual(t, chestAt, 0)
	assert.Less(t, chestAt, headAt)
}

func TestSetAspect(t *testing.T) {
	s := newStage(t, nil)
	require.NoError(t, s.SetAspect(2))
	assert.Equal(t, 2.0, s.DebugCamera().AspectRatio)

	for _, bad := range []float64{0, -1, math.NaN()} {
		err := s.SetAspect(bad)
		assert.True(t, errors.Is(err, math3d.ErrDegenerate), "aspect %v: %v", bad, err)
		assert.Equal(t, 2.0, s.MainCamera().AspectRatio)
		assert.Equal(t, 2.0, s.DebugCamera().AspectRatio)
	}

	// A rejected aspect leaves the stage usable.
	step(t, s, hold(input.MoveForward), 3)
	step(t, s, press(input.ToggleCamera), 1)
	step(t, s, hold(), 3)
}

func TestPartNames(t *testing.T) {
	assert.Len(t, Parts(), 13)
	assert.Equal(t, "hand_l", HandL.String())
	assert.Equal(t, "unknown", Part(99).String())

	s := newStage(t, nil)
	for _, p := range Parts() {
		id, ok := s.Graph().Lookup(p.String())
		require.True(t, ok, p.String())
		assert.Equal(t, s.Figure().Node(p), id)
	}
}
