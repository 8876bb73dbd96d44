package galaxy

import (
	"fmt"
	"strings"
)

// Mode selects how positional jitter is combined with the arm position.
type Mode int

const (
	// Deferred keeps positions on the noise-free spiral and stores the jitter
	// and a per-point scale for the vertex shader to apply at draw time.
	Deferred Mode = iota
	// Baked adds the jitter into the stored positions at generation time.
	Baked
)

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case Deferred:
		return "deferred"
	case Baked:
		return "baked"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name as used in config files and flags.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deferred", "shader":
		return Deferred, nil
	case "baked", "points":
		return Baked, nil
	}
	return Deferred, fmt.Errorf("unknown render mode %q (want deferred or baked)", s)
}
