// diorama - a jointed figure, two cameras and a few targets, rendered in
// your terminal.
//
// Controls (defaults, rebindable in the config file):
//
//	W/A/S/D     - Walk forward/left/back/right relative to the figure
//	Q/E, ←/→    - Turn
//	↑/↓         - Pitch the active camera
//	Space       - Jump
//	F           - Ease the camera onto the nearest target, and back
//	Z (hold)    - Scope: narrow the field of view
//	Tab         - Switch between the follow and debug cameras
//	R           - Spin the debug camera
//	X           - Toggle wireframe
//	Esc         - Quit
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/taigrr/diorama/pkg/config"
	"github.com/taigrr/diorama/pkg/models"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/stage"
)

type options struct {
	configPath  string
	texturePath string
	modelPath   string
	fps         int
	logFile     string
	debug       bool
	snapshot    string
	width       int
	height      int
	frames      int
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "diorama",
		Short: "Walk a jointed figure around a 3D diorama in your terminal",
		Long: `Walk a jointed figure around a 3D diorama in your terminal.

W/A/S/D walk, Q/E turn, arrows pitch the camera, Space jumps, F focuses the
nearest target, hold Z to scope, Tab switches cameras, R spins the debug
camera, X toggles wireframe, Esc quits.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&o.texturePath, "texture", "t", "", "texture image (PNG/JPG) for the figure")
	f.StringVarP(&o.modelPath, "model", "m", "", "GLB model drawn for each figure part")
	f.IntVar(&o.fps, "fps", 0, "target FPS (overrides the config file)")
	f.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	f.BoolVar(&o.debug, "debug", false, "debug logging")
	f.StringVar(&o.snapshot, "snapshot", "", "render headless and write a PNG instead of opening the terminal")
	f.IntVar(&o.width, "width", 160, "snapshot width in pixels")
	f.IntVar(&o.height, "height", 90, "snapshot height in pixels")
	f.IntVar(&o.frames, "frames", 1, "frames to simulate before the snapshot")
	return cmd
}

func run(ctx context.Context, o options) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if o.fps > 0 {
		cfg.FPS = o.fps
	}

	log, closeLog, err := newLogger(o.logFile, o.debug)
	if err != nil {
		return err
	}
	defer closeLog()
	if o.debug {
		log.Debugf("config:\n%s", spew.Sdump(cfg))
	}

	bindings, err := cfg.KeyBindings()
	if err != nil {
		return err
	}

	bank, opts, err := loadAssets(o, log)
	if err != nil {
		return err
	}
	st, err := stage.New(cfg, opts)
	if err != nil {
		return errors.Wrap(err, "build stage")
	}

	if o.snapshot != "" {
		return snapshot(st, bank, cfg, o)
	}
	return play(ctx, st, bank, cfg, bindings, log)
}

func newLogger(path string, debug bool) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if path == "" {
		// stdout belongs to the renderer
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	log.SetOutput(f)
	return log, func() { f.Close() }, nil
}

// loadAssets fills the texture bank and the stage options from the flags.
// An explicit --texture wins over a texture embedded in the model.
func loadAssets(o options, log logrus.FieldLogger) (*render.TextureBank, stage.Options, error) {
	bank := render.NewTextureBank()
	opts := stage.Options{Log: log}

	var body *render.Texture
	if o.modelPath != "" {
		mesh, img, err := models.NewGLTFLoader().Load(o.modelPath)
		if err != nil {
			return nil, opts, errors.Wrap(err, "load model")
		}
		mesh.FitToSize(2)
		opts.Body = mesh
		if img != nil {
			body = render.TextureFromImage(img)
		}
		log.WithFields(logrus.Fields{
			"model":     o.modelPath,
			"vertices":  mesh.VertexCount(),
			"triangles": mesh.TriangleCount(),
			"embedded":  img != nil,
		}).Info("model loaded")
	}
	if o.texturePath != "" {
		tex, err := render.LoadTexture(o.texturePath)
		if err != nil {
			return nil, opts, errors.Wrap(err, "load texture")
		}
		body = tex
	}
	if body == nil {
		body = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}

	opts.BodyTexture = bank.Add(body)
	opts.TargetTexture = bank.Add(render.NewSolidTexture(render.RGB(70, 130, 220)))
	opts.HitTexture = bank.Add(render.NewSolidTexture(render.RGB(240, 80, 60)))
	opts.MarkerTexture = bank.Add(render.NewCheckerTexture(32, 32, 8, render.ColorYellow, render.RGB(40, 40, 40)))
	return bank, opts, nil
}

func background(cfg config.Config) render.Color {
	return render.RGB(cfg.Background[0], cfg.Background[1], cfg.Background[2])
}

// Reticle colors, idle and over a target.
var (
	reticleColor    = render.RGB(230, 230, 230)
	reticleHitColor = render.RGB(240, 80, 60)
)

// drawFrame renders the stage into the rasterizer's framebuffer with a
// reticle where the hit test ray points. The debug camera also shows the
// ground grid, the world axes and the follow camera's target.
func drawFrame(st *stage.Stage, r *render.Rasterizer, cfg config.Config) {
	r.BeginFrame(background(cfg))
	st.Draw(r)
	if st.Mode() == stage.DebugCamera {
		vp := st.Camera().ViewProjectionMatrix()
		r.DrawGrid(vp, 0, cfg.Limits.X, 5, render.ColorGray)
		r.DrawAxes(vp, 5)
		r.DrawCross(st.MainCamera().Target, 2, vp, render.ColorWhite)
	}

	c := reticleColor
	if st.Status().Hits > 0 {
		c = reticleHitColor
	}
	r.Framebuffer().DrawReticle(2, c)
}

// snapshot runs the stage headless for o.frames frames and writes the last
// one to o.snapshot.
func snapshot(st *stage.Stage, bank *render.TextureBank, cfg config.Config, o options) error {
	if o.width <= 0 || o.height <= 0 {
		return errors.Errorf("snapshot size %dx%d", o.width, o.height)
	}
	if err := st.SetAspect(float64(o.width) / float64(o.height)); err != nil {
		return err
	}
	idle := idleControls{}
	for range max(o.frames-1, 0) {
		if err := st.Update(idle); err != nil {
			return err
		}
	}

	fb := render.NewFramebuffer(o.width, o.height)
	r := render.NewRasterizer(fb, bank)
	drawFrame(st, r, cfg)
	return fb.SavePNG(o.snapshot)
}
