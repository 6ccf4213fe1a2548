// Package input turns terminal key events into per-frame control state.
package input

import (
	"sort"

	"github.com/pkg/errors"
)

// Action is a named control the scene reacts to.
type Action int

const (
	MoveForward Action = iota
	MoveBack
	MoveLeft
	MoveRight
	TurnLeft
	TurnRight
	LookUp
	LookDown
	Jump
	Focus
	Scope
	ToggleCamera
	Spin
	Wireframe
	Quit

	actionCount
)

var actionNames = [actionCount]string{
	MoveForward:  "move_forward",
	MoveBack:     "move_back",
	MoveLeft:     "move_left",
	MoveRight:    "move_right",
	TurnLeft:     "turn_left",
	TurnRight:    "turn_right",
	LookUp:       "look_up",
	LookDown:     "look_down",
	Jump:         "jump",
	Focus:        "focus",
	Scope:        "scope",
	ToggleCamera: "toggle_camera",
	Spin:         "spin",
	Wireframe:    "wireframe",
	Quit:         "quit",
}

// ErrUnknownAction is returned for binding names that match no Action.
var ErrUnknownAction = errors.New("unknown action")

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "action(?)"
	}
	return actionNames[a]
}

// ParseAction returns the Action with the given config name.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return Action(a), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownAction, "%q", name)
}

// Actions returns every action in declaration order.
func Actions() []Action {
	out := make([]Action, actionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// Bindings maps actions to key strings in ultraviolet's notation
// ("w", "up", "ctrl+c", "space", "tab").
type Bindings map[Action][]string

// DefaultBindings returns the stock key layout.
func DefaultBindings() Bindings {
	return Bindings{
		MoveForward:  {"w"},
		MoveBack:     {"s"},
		MoveLeft:     {"a"},
		MoveRight:    {"d"},
		TurnLeft:     {"q", "left"},
		TurnRight:    {"e", "right"},
		LookUp:       {"up"},
		LookDown:     {"down"},
		Jump:         {"space"},
		Focus:        {"f"},
		Scope:        {"z"},
		ToggleCamera: {"tab"},
		Spin:         {"r"},
		Wireframe:    {"x"},
		Quit:         {"escape", "ctrl+c"},
	}
}

// ParseBindings converts config names to Bindings, starting from the
// defaults so that unlisted actions keep their stock keys.
func ParseBindings(named map[string][]string) (Bindings, error) {
	b := DefaultBindings()

	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		a, err := ParseAction(n)
		if err != nil {
			return nil, err
		}
		keys := named[n]
		if len(keys) == 0 {
			return nil, errors.Errorf("action %q bound to no keys", n)
		}
		b[a] = append([]string(nil), keys...)
	}
	return b, nil
}
