// Package stage composes the diorama: a jointed figure the player walks
// around, pickable target spheres, a marker that always faces the viewer,
// and two cameras, one following the figure and one spinning free for
// debugging. One Update per frame, then Draw.
package stage

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/taigrr/diorama/pkg/config"
	"github.com/taigrr/diorama/pkg/input"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/models"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// CameraMode selects the active camera.
type CameraMode int

const (
	MainCamera CameraMode = iota
	DebugCamera
)

func (m CameraMode) String() string {
	if m == DebugCamera {
		return "debug"
	}
	return "main"
}

const (
	mainPitch   = 0.35
	debugPitch  = 0.6
	debugOrbit  = 1.5 // times the main orbit distance
	spinImpulse = 0.15
)

// DefaultTargets places the target spheres around the origin.
func DefaultTargets() []math3d.Vec3 {
	return []math3d.Vec3{
		math3d.V3(-12, 2, 10),
		math3d.V3(0, 3, 15),
		math3d.V3(12, 2, 10),
		math3d.V3(-8, 1, -12),
		math3d.V3(8, 1, -12),
	}
}

// Options supplies meshes, textures and logging. Zero values get defaults.
type Options struct {
	Body          render.MeshRenderer // drawn for every figure part except the root
	BodyTexture   render.TextureID
	TargetTexture render.TextureID
	HitTexture    render.TextureID
	MarkerTexture render.TextureID

	Targets        []math3d.Vec3
	TargetRadius   float64
	MarkerPosition math3d.Vec3

	Log logrus.FieldLogger
}

type drawable struct {
	mesh    render.MeshRenderer
	texture render.TextureID
	target  int // index into targets, or -1
}

type target struct {
	node   scene.NodeID
	radius float64
	hit    bool
}

// Stage owns the scene graph and everything that moves in it.
type Stage struct {
	cfg  config.Config
	opts Options
	log  logrus.FieldLogger

	graph     *scene.Graph
	frame     scene.Frame
	field     scene.NodeID
	figure    *Figure
	marker    scene.NodeID
	targets   []target
	drawables []drawable

	main  *render.Camera
	debug *render.Camera
	mode  CameraMode

	heading float64
	focus   scene.NodeID // scene.None follows the figure
	lerp    render.TargetLerp
	zoom    render.Zoom
	spin    Spin
	frames  int
}

// New builds the stage from a validated configuration.
func New(cfg config.Config, opts Options) (*Stage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Body == nil {
		opts.Body = models.Cube(2)
	}
	if opts.Targets == nil {
		opts.Targets = DefaultTargets()
	}
	if opts.TargetRadius <= 0 {
		opts.TargetRadius = 1.5
	}
	if opts.MarkerPosition == (math3d.Vec3{}) {
		opts.MarkerPosition = math3d.V3(0, 14, 0)
	}
	if opts.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Log = l
	}

	s := &Stage{
		cfg:   cfg,
		opts:  opts,
		log:   opts.Log,
		graph: scene.NewGraph(),
		focus: scene.None,
		zoom:  render.NewZoom(cfg.FOV),
		spin:  NewSpin(cfg.FPS),
	}
	if err := s.build(); err != nil {
		return nil, err
	}

	s.main = s.newCamera(mainPitch)
	s.debug = s.newCamera(debugPitch)

	s.frame = s.graph.Refresh()
	s.main.Target = s.focusPoint()
	if err := s.settle(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stage) build() error {
	var err error
	if s.field, err = s.graph.Add("field", scene.None); err != nil {
		return err
	}
	if s.figure, err = NewFigure(s.graph, s.field); err != nil {
		return err
	}
	sphere := models.UVSphere(s.opts.TargetRadius, 8, 12)
	for i, pos := range s.opts.Targets {
		id, err := s.graph.Add(fmt.Sprintf("target%d", i), s.field)
		if err != nil {
			return errors.Wrapf(err, "target %d", i)
		}
		s.graph.Local(id).Translation = pos
		s.targets = append(s.targets, target{node: id, radius: s.opts.TargetRadius})
	}
	if s.marker, err = s.graph.Add("marker", s.field); err != nil {
		return err
	}
	s.graph.Local(s.marker).Translation = s.opts.MarkerPosition

	s.drawables = make([]drawable, s.graph.Len())
	for i := range s.drawables {
		s.drawables[i].target = -1
	}
	for _, p := range Parts() {
		if p == Root {
			continue
		}
		s.drawables[s.figure.Node(p)] = drawable{mesh: s.opts.Body, texture: s.opts.BodyTexture, target: -1}
	}
	for i, t := range s.targets {
		s.drawables[t.node] = drawable{mesh: sphere, texture: s.opts.TargetTexture, target: i}
	}
	// Billboards turn their +Z toward the viewer.
	sign := models.Quad(4)
	sign.Transform(math3d.RotateY(math.Pi))
	s.drawables[s.marker] = drawable{mesh: sign, texture: s.opts.MarkerTexture, target: -1}
	return nil
}

func (s *Stage) newCamera(pitch float64) *render.Camera {
	c := render.NewCamera()
	c.SetFOVDegrees(s.cfg.FOV)
	c.NearZ = s.cfg.Near
	c.FarZ = s.cfg.Far
	c.Rotation = math3d.V3(pitch, 0, 0)
	return c
}

// Update advances one frame from the given controls.
func (s *Stage) Update(ctrl input.Controls) error {
	s.frames++

	if ctrl.Pressed(input.ToggleCamera) {
		s.mode = 1 - s.mode
		s.log.WithField("camera", s.mode).Info("camera switched")
	}
	if ctrl.Pressed(input.Spin) {
		s.spin.Impulse(spinImpulse)
	}

	walking, err := s.movePlayer(ctrl)
	if err != nil {
		return err
	}
	if ctrl.Pressed(input.Jump) && s.figure.Jump() {
		s.log.WithField("frame", s.frames).Debug("jump")
	}
	s.figure.Animate(s.graph, walking)
	s.frame = s.graph.Refresh()

	if ctrl.Pressed(input.Focus) {
		if err := s.toggleFocus(); err != nil {
			return err
		}
	}

	pitch := 0.0
	if ctrl.Held(input.LookUp) {
		pitch -= s.cfg.TurnSpeed
	}
	if ctrl.Held(input.LookDown) {
		pitch += s.cfg.TurnSpeed
	}
	s.Camera().Rotate(pitch, 0, 0)

	s.zoom.Goal = s.cfg.FOV
	if ctrl.Held(input.Scope) {
		s.zoom.Goal = s.cfg.ScopeFOV
	}
	return s.settle()
}

// movePlayer turns and walks the figure root along its own axes and reports
// whether it walked.
func (s *Stage) movePlayer(ctrl input.Controls) (bool, error) {
	root := s.figure.Node(Root)

	if ctrl.Held(input.TurnLeft) {
		s.heading -= s.cfg.TurnSpeed
	}
	if ctrl.Held(input.TurnRight) {
		s.heading += s.cfg.TurnSpeed
	}
	s.heading = math3d.WrapAngle(s.heading)
	s.graph.Local(root).Rotation.Y = s.heading

	var dir math3d.Vec3
	if ctrl.Held(input.MoveForward) {
		dir = dir.Add(math3d.Forward())
	}
	if ctrl.Held(input.MoveBack) {
		dir = dir.Sub(math3d.Forward())
	}
	if ctrl.Held(input.MoveRight) {
		dir = dir.Add(math3d.Right())
	}
	if ctrl.Held(input.MoveLeft) {
		dir = dir.Sub(math3d.Right())
	}
	dir, err := dir.NormalizeSafe()
	if err != nil {
		return false, nil
	}

	// Walk along this frame's heading, not last frame's.
	if err := s.graph.RefreshNode(root); err != nil {
		return false, errors.Wrap(err, "refresh figure root")
	}
	step := s.graph.RelativeDirection(root, dir).Scale(s.cfg.MoveSpeed)
	local := s.graph.Local(root)
	local.Translation = local.Translation.Add(step).Clamp(s.cfg.Limits.Vec3())
	return true, nil
}

// toggleFocus switches the main camera between the figure and the target
// nearest to it, easing the target over LerpFrames.
func (s *Stage) toggleFocus() error {
	if s.focus != scene.None || len(s.targets) == 0 {
		s.focus = scene.None
	} else {
		from := s.frame.Position(s.figure.Node(Root))
		best := math.Inf(1)
		for _, t := range s.targets {
			if d := s.frame.Position(t.node).Distance(from); d < best {
				best = d
				s.focus = t.node
			}
		}
	}
	if err := s.lerp.Start(s.focusPoint(), s.cfg.LerpFrames); err != nil {
		return errors.Wrap(err, "focus")
	}
	s.log.WithFields(logrus.Fields{
		"focus":  s.focusName(),
		"frames": s.cfg.LerpFrames,
	}).Info("focus")
	return nil
}

func (s *Stage) focusPoint() math3d.Vec3 {
	if s.focus == scene.None {
		return s.frame.Position(s.figure.Node(Root))
	}
	return s.frame.Position(s.focus)
}

func (s *Stage) focusName() string {
	if s.focus == scene.None {
		return "figure"
	}
	n, err := s.graph.Node(s.focus)
	if err != nil {
		return "unknown"
	}
	return n.Name
}

// settle places both cameras from the refreshed graph, turns the marker to
// the active camera, refreshes again, and runs the hit test.
func (s *Stage) settle() error {
	s.main.Rotation.Y = s.heading
	if s.lerp.Active() {
		// Track a moving focus; the last step still lands on it.
		s.lerp.Destination = s.focusPoint()
		s.lerp.Step(s.main)
	} else {
		s.main.Target = s.focusPoint()
	}
	s.main.Orbit(s.cfg.OrbitDistance)
	s.zoom.Step()
	s.zoom.Apply(s.main)
	if err := s.main.Refresh(); err != nil {
		return errors.Wrap(err, "main camera")
	}

	s.spin.Update()
	s.debug.Rotation.Y = math3d.WrapAngle(s.spin.Angle)
	s.debug.Orbit(s.cfg.OrbitDistance * debugOrbit)
	if err := s.debug.Refresh(); err != nil {
		return errors.Wrap(err, "debug camera")
	}

	cam := s.Camera()
	s.graph.Local(s.marker).Rotation = render.Billboard(cam.Rotation)
	s.frame = s.graph.Refresh()

	for i := range s.targets {
		t := &s.targets[i]
		hit, err := cam.Pick(s.sphere(*t))
		if err != nil {
			return errors.Wrapf(err, "hit test target %d", i)
		}
		if hit != t.hit {
			s.log.WithFields(logrus.Fields{"target": i, "hit": hit}).Debug("target hit changed")
		}
		t.hit = hit
	}
	return nil
}

// SetAspect updates the aspect ratio of both cameras. On error neither
// camera changes.
func (s *Stage) SetAspect(aspect float64) error {
	prev := s.main.AspectRatio
	if err := s.main.SetAspect(aspect); err != nil {
		return errors.Wrapf(err, "aspect %v", aspect)
	}
	if err := s.debug.SetAspect(aspect); err != nil {
		if rerr := s.main.SetAspect(prev); rerr != nil {
			s.log.WithError(rerr).Warn("restore main camera aspect")
		}
		return errors.Wrapf(err, "aspect %v", aspect)
	}
	return nil
}

// Draw submits every drawable node in refresh order with the active
// camera's matrices. Targets under the view ray use the hit texture.
func (s *Stage) Draw(sub render.Submitter) {
	cam := s.Camera()
	view, proj := cam.ViewMatrix(), cam.ProjectionMatrix()
	frustum := cam.Frustum()
	for _, id := range s.frame.Order() {
		d := s.drawables[id]
		if d.mesh == nil {
			continue
		}
		tex := d.texture
		if d.target >= 0 {
			t := s.targets[d.target]
			if !frustum.IntersectsSphere(s.sphere(t)) {
				continue
			}
			if t.hit {
				tex = s.opts.HitTexture
			}
		}
		sub.Submit(render.DrawCall{
			Mesh:       d.mesh,
			World:      s.frame.World(id),
			View:       view,
			Projection: proj,
			Texture:    tex,
		})
	}
}

// sphere returns a target's bounds as of the last refresh.
func (s *Stage) sphere(t target) render.Sphere {
	return render.Sphere{Center: s.frame.Position(t.node), Radius: t.radius}
}

// Camera returns the active camera.
func (s *Stage) Camera() *render.Camera {
	if s.mode == DebugCamera {
		return s.debug
	}
	return s.main
}

// MainCamera returns the camera that follows the figure.
func (s *Stage) MainCamera() *render.Camera { return s.main }

// DebugCamera returns the free spinning camera.
func (s *Stage) DebugCamera() *render.Camera { return s.debug }

// Mode returns which camera is active.
func (s *Stage) Mode() CameraMode { return s.mode }

// Graph returns the scene graph.
func (s *Stage) Graph() *scene.Graph { return s.graph }

// Frame returns the snapshot taken by the last Update.
func (s *Stage) Frame() scene.Frame { return s.frame }

// Figure returns the player's figure.
func (s *Stage) Figure() *Figure { return s.figure }

// Marker returns the billboard marker node.
func (s *Stage) Marker() scene.NodeID { return s.marker }

// Focusing reports whether the main camera target is still easing.
func (s *Stage) Focusing() bool { return s.lerp.Active() }

// Hit reports whether target i was under the view ray after the last Update.
func (s *Stage) Hit(i int) bool {
	if i < 0 || i >= len(s.targets) {
		return false
	}
	return s.targets[i].hit
}

// Status is a summary for the HUD.
type Status struct {
	Frame    int
	Position math3d.Vec3
	Heading  float64 // radians
	FOV      float64 // degrees, main camera
	Camera   CameraMode
	Focus    string
	Hits     int
	Jumping  bool
}

// Status reports the current state.
func (s *Stage) Status() Status {
	hits := 0
	for _, t := range s.targets {
		if t.hit {
			hits++
		}
	}
	return Status{
		Frame:    s.frames,
		Position: s.frame.Position(s.figure.Node(Root)),
		Heading:  s.heading,
		FOV:      s.main.FOVDegrees(),
		Camera:   s.mode,
		Focus:    s.focusName(),
		Hits:     hits,
		Jumping:  s.figure.Jumping(),
	}
}
