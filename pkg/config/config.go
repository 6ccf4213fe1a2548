// Package config loads diorama settings from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/taigrr/diorama/pkg/input"
	"github.com/taigrr/diorama/pkg/math3d"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid config")

// Limits bounds the figure's translation to ±X, ±Y, ±Z.
type Limits struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec3 returns the limits as a vector.
func (l Limits) Vec3() math3d.Vec3 {
	return math3d.V3(l.X, l.Y, l.Z)
}

// RGB is a background color.
type RGB [3]uint8

// Config holds every tunable of the diorama.
type Config struct {
	FPS           int                 `yaml:"fps"`
	FOV           float64             `yaml:"fov"`       // degrees
	ScopeFOV      float64             `yaml:"scope_fov"` // degrees while scoped
	Near          float64             `yaml:"near"`
	Far           float64             `yaml:"far"`
	LerpFrames    int                 `yaml:"lerp_frames"`
	MoveSpeed     float64             `yaml:"move_speed"` // units per frame
	TurnSpeed     float64             `yaml:"turn_speed"` // radians per frame
	OrbitDistance float64             `yaml:"orbit_distance"`
	Limits        Limits              `yaml:"limits"`
	Bindings      map[string][]string `yaml:"bindings"`
	Background    RGB                 `yaml:"background"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		FPS:           30,
		FOV:           45,
		ScopeFOV:      20,
		Near:          0.1,
		Far:           1000,
		LerpFrames:    100,
		MoveSpeed:     0.2,
		TurnSpeed:     0.05,
		OrbitDistance: 30,
		Limits:        Limits{X: 20, Y: 10, Z: 20},
		Background:    RGB{30, 30, 40},
	}
}

// Load reads path as YAML over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges. Errors wrap ErrInvalid.
func (c Config) Validate() error {
	check := func(ok bool, format string, args ...any) error {
		if ok {
			return nil
		}
		return errors.Wrapf(ErrInvalid, format, args...)
	}
	for _, err := range []error{
		check(c.FPS > 0, "fps %d must be positive", c.FPS),
		check(c.FOV > 0 && c.FOV < 180, "fov %v outside (0, 180)", c.FOV),
		check(c.ScopeFOV > 0 && c.ScopeFOV < 180, "scope_fov %v outside (0, 180)", c.ScopeFOV),
		check(c.Near > 0, "near %v must be positive", c.Near),
		check(c.Far > c.Near, "far %v must exceed near %v", c.Far, c.Near),
		check(c.LerpFrames > 0, "lerp_frames %d must be positive", c.LerpFrames),
		check(c.MoveSpeed > 0, "move_speed %v must be positive", c.MoveSpeed),
		check(c.TurnSpeed > 0, "turn_speed %v must be positive", c.TurnSpeed),
		check(c.OrbitDistance > 0, "orbit_distance %v must be positive", c.OrbitDistance),
		check(c.Limits.X >= 0 && c.Limits.Y >= 0 && c.Limits.Z >= 0, "limits %+v must not be negative", c.Limits),
	} {
		if err != nil {
			return err
		}
	}
	if _, err := c.KeyBindings(); err != nil {
		return invalidError{cause: err}
	}
	return nil
}

// invalidError matches ErrInvalid and unwraps to the error that made the
// config invalid.
type invalidError struct {
	cause error
}

func (e invalidError) Error() string        { return ErrInvalid.Error() + ": " + e.cause.Error() }
func (e invalidError) Unwrap() error        { return e.cause }
func (e invalidError) Cause() error         { return e.cause }
func (e invalidError) Is(target error) bool { return target == ErrInvalid }

// KeyBindings resolves the bindings section over the default layout.
func (c Config) KeyBindings() (input.Bindings, error) {
	return input.ParseBindings(c.Bindings)
}
