package pipeline

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode is set of enabled effects
type Mode uint

const (
	// ModeDebug draws dot at every detected center
	ModeDebug Mode = 1 << iota
	// ModeSparkle spawns image-textured particles at every detected center
	ModeSparkle
	// ModeCircle spawns translucent disc particles at every detected center
	ModeCircle
)

var modeNames = []struct {
	mode Mode
	name string
}{
	{ModeDebug, "debug"},
	{ModeSparkle, "sparkle"},
	{ModeCircle, "circle"},
}

// ParseMode parses comma separated list of effect names, e.g. "debug,circle"
func ParseMode(s string) (Mode, error) {
	var mode Mode
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, m := range modeNames {
			if m.name == part {
				mode |= m.mode
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Errorf("unknown mode '%s'", part)
		}
	}
	return mode, nil
}

// String returns comma separated names of enabled effects
func (mode Mode) String() string {
	names := make([]string, 0, len(modeNames))
	for _, m := range modeNames {
		if mode&m.mode != 0 {
			names = append(names, m.name)
		}
	}
	return strings.Join(names, ",")
}

// State is run state which may change between frames: enabled effects, threshold and number of objects.
type State struct {
	Mode      Mode
	Threshold int
	NObjects  int
}

// Toggle flips given effects
func (st *State) Toggle(mode Mode) {
	st.Mode ^= mode
}

// Has reports whether all given effects are enabled
func (st State) Has(mode Mode) bool {
	return st.Mode&mode == mode
}

// AdjustThreshold shifts threshold by delta, clamped to 0..255
func (st *State) AdjustThreshold(delta int) {
	st.Threshold = clampThreshold(st.Threshold + delta)
}

func clampThreshold(threshold int) int {
	if threshold < 0 {
		return 0
	}
	if threshold > 255 {
		return 255
	}
	return threshold
}
