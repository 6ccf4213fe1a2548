package main

import (
	"context"
	"fmt"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/taigrr/diorama/pkg/config"
	"github.com/taigrr/diorama/pkg/input"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/stage"
)

// idleControls reports nothing held.
type idleControls struct{}

func (idleControls) Held(input.Action) bool    { return false }
func (idleControls) Pressed(input.Action) bool { return false }

// hudRows is the number of terminal rows reserved above the scene.
const hudRows = 1

func play(ctx context.Context, st *stage.Stage, bank *render.TextureBank, cfg config.Config, bindings input.Bindings, log logrus.FieldLogger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return errors.Wrap(err, "get terminal size")
	}
	if err := term.Start(); err != nil {
		return errors.Wrap(err, "start terminal")
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	presenter := render.NewPresenter(term, width, height, hudRows)
	fbWidth, fbHeight := presenter.FramebufferSize()
	rasterizer := render.NewRasterizer(render.NewFramebuffer(fbWidth, fbHeight), bank)
	if err := st.SetAspect(float64(fbWidth) / float64(fbHeight)); err != nil {
		return err
	}

	keys := input.NewKeyboard(bindings)
	hud := newHUD()
	var clock input.Clock
	events := term.Events()

	log.WithFields(logrus.Fields{"cols": width, "rows": height, "fps": cfg.FPS}).Info("started")

	targetDuration := time.Second / time.Duration(cfg.FPS)
	for {
		select {
		case <-ctx.Done():
			log.Info("interrupted")
			return nil
		default:
		}

		now := time.Now()
		dt := clock.Tick(now)

	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					break drain
				}
				if ev, resized := ev.(uv.WindowSizeEvent); resized {
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					presenter.Resize(width, height)
					fbWidth, fbHeight = presenter.FramebufferSize()
					rasterizer.SetTarget(render.NewFramebuffer(fbWidth, fbHeight))
					if err := st.SetAspect(float64(fbWidth) / float64(fbHeight)); err != nil {
						return err
					}
					log.WithFields(logrus.Fields{"cols": width, "rows": height}).Debug("resized")
					continue
				}
				keys.Handle(ev, now)
			default:
				break drain
			}
		}
		keys.Advance(now)

		if keys.Pressed(input.Quit) {
			log.Info("quit")
			return nil
		}
		if keys.Pressed(input.Wireframe) {
			rasterizer.Wireframe = !rasterizer.Wireframe
		}

		if err := st.Update(keys); err != nil {
			return errors.Wrap(err, "update")
		}
		drawFrame(st, rasterizer, cfg)
		if err := presenter.Present(rasterizer.Framebuffer()); err != nil {
			return err
		}

		hud.tick(dt)
		fmt.Fprint(os.Stdout, hud.render(width, st.Status(), rasterizer))

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
