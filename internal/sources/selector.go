package sources

import (
	"errors"
	"fmt"

	"github.com/medialens/medialens/internal/clients"
	"github.com/medialens/medialens/internal/config"
)

// ErrNoSource means no usable data source is configured.
var ErrNoSource = errors.New("sources: no data source configured")

// Selector resolves which configured Source feeds library analysis.
// Built once at startup from explicit dependencies; nothing here reads
// global state.
type Selector struct {
	mode     config.DataSource
	plex     Source
	tautulli Source
	pinned   Source
}

// NewSelector wires the configured clients into a Selector. A nil or
// unconfigured client leaves that source unavailable.
func NewSelector(cfg *config.Config, plex *clients.Plex, tautulli *clients.Tautulli) *Selector {
	s := &Selector{mode: cfg.DataSource}
	if cfg.PlexEnabled() && plex != nil {
		s.plex = NewPlexSource(plex)
	}
	if cfg.TautulliEnabled() && tautulli != nil {
		s.tautulli = NewTautulliSource(tautulli)
	}
	return s
}

// NewStaticSelector pins the selector to one already-built source,
// bypassing configuration entirely.
func NewStaticSelector(src Source) *Selector {
	return &Selector{pinned: src}
}

// Pick returns the active Source. In auto mode the statistics server wins
// when both are configured; it carries pre-computed file sizes that the
// media server only exposes per item.
func (s *Selector) Pick() (Source, error) {
	if s.pinned != nil {
		return s.pinned, nil
	}
	switch s.mode {
	case config.SourcePlex:
		if s.plex == nil {
			return nil, fmt.Errorf("%w: plex requested but not configured", ErrNoSource)
		}
		return s.plex, nil
	case config.SourceTautulli:
		if s.tautulli == nil {
			return nil, fmt.Errorf("%w: tautulli requested but not configured", ErrNoSource)
		}
		return s.tautulli, nil
	default: // auto
		if s.tautulli != nil {
			return s.tautulli, nil
		}
		if s.plex != nil {
			return s.plex, nil
		}
		return nil, ErrNoSource
	}
}

// Available reports which sources the selector can serve.
func (s *Selector) Available() []string {
	if s.pinned != nil {
		return []string{s.pinned.Name()}
	}
	var names []string
	if s.plex != nil {
		names = append(names, s.plex.Name())
	}
	if s.tautulli != nil {
		names = append(names, s.tautulli.Name())
	}
	return names
}
