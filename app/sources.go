package app

import (
	"github.com/Normaly0/galaxy-gen/config"
	"github.com/Normaly0/galaxy-gen/galaxy"
)

// ConfigSource turns config file reloads into parameter edits.
type ConfigSource struct {
	watcher *config.Watcher
	mode    galaxy.Mode
}

// NewConfigSource reads reloads from w. Reloaded files keep the render mode
// the state was created with.
func NewConfigSource(w *config.Watcher, mode galaxy.Mode) *ConfigSource {
	return &ConfigSource{watcher: w, mode: mode}
}

// Poll returns the galaxy section of the newest reload.
func (c *ConfigSource) Poll() (galaxy.Parameters, bool) {
	select {
	case cfg := <-c.watcher.Changes():
		return cfg.ParamsFor(c.mode), true
	default:
		return galaxy.Parameters{}, false
	}
}

// ChanSource adapts a channel of parameters.
type ChanSource <-chan galaxy.Parameters

// Poll drains the channel and returns the newest value.
func (c ChanSource) Poll() (galaxy.Parameters, bool) {
	var (
		p  galaxy.Parameters
		ok bool
	)
	for {
		select {
		case next, open := <-c:
			if !open {
				return p, ok
			}
			p, ok = next, true
		default:
			return p, ok
		}
	}
}
