package stage

import (
	"math"

	"github.com/pkg/errors"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/scene"
)

// Part names one joint of the figure.
type Part int

const (
	Root Part = iota
	Spine
	Chest
	Head
	ArmL
	ArmR
	HandL
	HandR
	Hip
	LegL
	LegR
	FootL
	FootR

	partCount
)

var partNames = [partCount]string{
	"root", "spine", "chest", "head",
	"arm_l", "arm_r", "hand_l", "hand_r",
	"hip", "leg_l", "leg_r", "foot_l", "foot_r",
}

func (p Part) String() string {
	if p < 0 || p >= partCount {
		return "unknown"
	}
	return partNames[p]
}

// Parts lists every part in rig order.
func Parts() []Part {
	parts := make([]Part, partCount)
	for i := range parts {
		parts[i] = Part(i)
	}
	return parts
}

// SpineHeight is the spine's resting offset above the root.
const SpineHeight = 4.5

// Rig layout: each part's parent and offset from it. Root hangs off
// whatever node the figure is built under.
var rig = [partCount]struct {
	parent Part
	offset math3d.Vec3
}{
	Root:  {Root, math3d.Vec3{}},
	Spine: {Root, math3d.V3(0, SpineHeight, 0)},
	Chest: {Spine, math3d.Vec3{}},
	Head:  {Chest, math3d.V3(0, 3, 0)},
	ArmL:  {Chest, math3d.V3(-3, 0, 0)},
	ArmR:  {Chest, math3d.V3(3, 0, 0)},
	HandL: {ArmL, math3d.V3(0, -3, 0)},
	HandR: {ArmR, math3d.V3(0, -3, 0)},
	Hip:   {Spine, math3d.V3(0, -3, 0)},
	LegL:  {Hip, math3d.V3(-3, -3, 0)},
	LegR:  {Hip, math3d.V3(3, -3, 0)},
	FootL: {LegL, math3d.V3(0, -3, 0)},
	FootR: {LegR, math3d.V3(0, -3, 0)},
}

// Figure is a jointed body in a scene graph. Arms and legs swing while it
// walks, and a jump lifts the spine along a half sine.
type Figure struct {
	nodes [partCount]scene.NodeID

	SwingLimit float64 // radians either side of rest
	SwingSpeed float64 // radians per frame
	JumpFrames int
	JumpHeight float64

	swing    float64
	swingDir float64
	jump     int // frames left in the current jump
}

// NewFigure adds the rig to g under parent (scene.None for a root).
func NewFigure(g *scene.Graph, parent scene.NodeID) (*Figure, error) {
	f := &Figure{
		SwingLimit: math.Pi / 6,
		SwingSpeed: 0.05,
		JumpFrames: 20,
		JumpHeight: 3,
		swingDir:   1,
	}
	for _, p := range Parts() {
		under := parent
		if p != Root {
			under = f.nodes[rig[p].parent]
		}
		id, err := g.Add(p.String(), under)
		if err != nil {
			return nil, errors.Wrapf(err, "figure part %s", p)
		}
		g.Local(id).Translation = rig[p].offset
		f.nodes[p] = id
	}
	return f, nil
}

// Node returns the graph node of p.
func (f *Figure) Node(p Part) scene.NodeID {
	return f.nodes[p]
}

// Swing returns the current limb angle.
func (f *Figure) Swing() float64 {
	return f.swing
}

// Jump starts a jump unless one is already running and reports whether it
// started.
func (f *Figure) Jump() bool {
	if f.Jumping() {
		return false
	}
	f.jump = f.JumpFrames
	return true
}

// Jumping reports whether a jump is in progress.
func (f *Figure) Jumping() bool {
	return f.jump > 0
}

// Animate advances the swing (only while walking) and the jump by one frame
// and writes them into the local transforms.
func (f *Figure) Animate(g *scene.Graph, walking bool) {
	if walking {
		f.swing += f.swingDir * f.SwingSpeed
		if f.swing >= f.SwingLimit {
			f.swing = f.SwingLimit
			f.swingDir = -1
		} else if f.swing <= -f.SwingLimit {
			f.swing = -f.SwingLimit
			f.swingDir = 1
		}
	}
	g.Local(f.nodes[ArmL]).Rotation.X = f.swing
	g.Local(f.nodes[ArmR]).Rotation.X = -f.swing
	g.Local(f.nodes[LegL]).Rotation.X = -f.swing
	g.Local(f.nodes[LegR]).Rotation.X = f.swing

	lift := 0.0
	if f.jump > 0 {
		f.jump--
		lift = f.JumpHeight * math.Sin(math.Pi*float64(f.jump)/float64(f.JumpFrames))
	}
	g.Local(f.nodes[Spine]).Translation.Y = SpineHeight + lift
}
