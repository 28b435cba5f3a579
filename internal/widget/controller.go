// Package widget owns the per-window control surfaces: one small widget
// subtree per lock-screen window, created on demand, refreshed from player
// state and torn down when the window or the player goes away.
package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/playerlock/playerlock/internal/artwork"
	"github.com/playerlock/playerlock/internal/config"
	"github.com/playerlock/playerlock/internal/domain"
)

// capabilityRecheck is the fallback poll interval for button enablement;
// players are unreliable about notifying capability changes.
const capabilityRecheck = time.Second

// State is the per-window widget data. All fields are guarded by the
// owning controller's mutex.
type State struct {
	win     domain.Window
	surface domain.Surface

	// visible is the surface's base visibility (player present or not);
	// suppressed overlays the host's idle-hide on top of it, so an
	// idle-show restores exactly what hide covered up.
	visible    bool
	suppressed bool

	// destroyed guards against mutating widgets whose backing window
	// went away while an async art fetch was still in flight.
	destroyed bool

	// artGen invalidates superseded art fetches: a completion whose
	// generation no longer matches is discarded.
	artGen uint64

	recheck *time.Timer
}

// Controller owns the mapping from window identity to widget state.
type Controller struct {
	logger  *zap.Logger
	cfg     *config.Config
	toolkit domain.Toolkit
	source  domain.Source
	fetcher domain.Fetcher

	mu     sync.Mutex
	states map[string]*State
}

// NewController creates a widget controller
func NewController(
	logger *zap.Logger,
	cfg *config.Config,
	toolkit domain.Toolkit,
	source domain.Source,
	fetcher domain.Fetcher,
) *Controller {
	return &Controller{
		logger:  logger,
		cfg:     cfg,
		toolkit: toolkit,
		source:  source,
		fetcher: fetcher,
		states:  make(map[string]*State),
	}
}

// Ensure returns the window's existing widget state or constructs the
// widget subtree and stores it. Idempotent. Returns nil if the toolkit
// failed to build the surface; callers treat that as "no widget".
func (c *Controller) Ensure(win domain.Window) *State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.states[win.ID()]; ok {
		return s
	}

	s := &State{win: win}
	actions := domain.Actions{
		Previous:  func() { c.transport(s, "previous", domain.Player.Previous) },
		PlayPause: func() { c.transport(s, "play-pause", domain.Player.PlayPause) },
		Next:      func() { c.transport(s, "next", domain.Player.Next) },
	}

	surface, err := c.toolkit.BuildSurface(win, c.cfg.Position, c.cfg.ArtSize, actions)
	if err != nil {
		c.logger.Error("Failed to build control surface",
			zap.String("window", win.ID()),
			zap.Error(err))
		return nil
	}

	s.surface = surface
	s.visible = true
	c.states[win.ID()] = s

	c.logger.Debug("Control surface created", zap.String("window", win.ID()))
	return s
}

// Lookup returns the window's widget state, or nil when none exists
func (c *Controller) Lookup(win domain.Window) *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[win.ID()]
}

// Refresh repopulates the surface from the current player: label stack,
// play/pause icon, button enablement plus the one-second re-check, and
// the album art fetch. With no player (or a stopped one) the whole
// control surface is hidden instead of cleared.
func (c *Controller) Refresh(s *State) {
	if s == nil {
		return
	}

	p := c.source.Current()

	var meta domain.Metadata
	var caps domain.Capabilities
	if p != nil {
		var err error
		meta, err = p.Metadata()
		if err != nil {
			c.logger.Warn("Metadata query failed",
				zap.String("player", p.Name()),
				zap.Error(err))
		}
		caps = p.Capabilities()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s.destroyed {
		return
	}

	if p == nil || meta.Status == domain.StatusStopped {
		s.visible = false
		s.surface.SetVisible(false)
		return
	}

	s.surface.SetLabels(meta.Title, meta.Album, meta.Artist)
	s.surface.SetPlaying(meta.Status == domain.StatusPlaying)
	s.surface.SetCapabilities(caps)
	c.armRecheckLocked(s)

	gen, fetch := c.resetArtLocked(s, meta.ArtURL)

	s.visible = true
	s.surface.SetVisible(!s.suppressed)

	if fetch {
		go c.fetchArt(s, gen, meta.ArtURL)
	}
}

// SetVisible shows or hides the surface. Used to de-emphasize a window
// that lost focus.
func (c *Controller) SetVisible(s *State, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == nil || s.destroyed {
		return
	}
	s.visible = visible
	s.surface.SetVisible(visible && !s.suppressed)
}

// Suppress overlays the host's idle-hide state on the surface without
// touching its base visibility, so lifting the suppression restores
// whatever was showing before.
func (c *Controller) Suppress(s *State, suppressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == nil || s.destroyed {
		return
	}
	s.suppressed = suppressed
	s.surface.SetVisible(s.visible && !suppressed)
}

// Destroy detaches and frees the window's widget state. Safe to call
// when no state exists.
func (c *Controller) Destroy(win domain.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.states[win.ID()]
	if !ok {
		return
	}
	c.destroyLocked(s)
	delete(c.states, win.ID())
}

// TeardownAll destroys every window's widget state; used when the
// tracked player vanishes.
func (c *Controller) TeardownAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, s := range c.states {
		c.destroyLocked(s)
		delete(c.states, id)
	}
}

func (c *Controller) destroyLocked(s *State) {
	s.destroyed = true
	if s.recheck != nil {
		s.recheck.Stop()
	}
	s.surface.Destroy()
	c.logger.Debug("Control surface destroyed", zap.String("window", s.win.ID()))
}

// transport runs one player command from a button press. Failures are
// logged and absorbed; the UI is refreshed after a successful command so
// the play/pause icon tracks the new state immediately.
func (c *Controller) transport(s *State, command string, call func(domain.Player) error) {
	p := c.source.Current()
	if p == nil {
		return
	}
	if err := call(p); err != nil {
		c.logger.Warn("Transport command failed",
			zap.String("command", command),
			zap.Error(err))
		return
	}
	c.Refresh(s)
}

// armRecheckLocked re-arms the capability poll. The timer is one-shot
// and re-armed on every refresh.
func (c *Controller) armRecheckLocked(s *State) {
	if s.recheck != nil {
		s.recheck.Stop()
	}
	s.recheck = time.AfterFunc(capabilityRecheck, func() {
		c.recheckCapabilities(s)
	})
}

func (c *Controller) recheckCapabilities(s *State) {
	p := c.source.Current()
	if p == nil {
		return
	}
	caps := p.Capabilities()

	c.mu.Lock()
	defer c.mu.Unlock()
	if s.destroyed {
		return
	}
	s.surface.SetCapabilities(caps)
}

// resetArtLocked synchronously resets the art to the placeholder and, if
// a fetch should follow, bumps the generation counter and reports it.
func (c *Controller) resetArtLocked(s *State, uri string) (uint64, bool) {
	if c.cfg.ArtSize <= 0 {
		return 0, false
	}
	s.surface.SetArt(nil)
	if uri == "" {
		return 0, false
	}
	s.artGen++
	return s.artGen, true
}

// fetchArt runs the asynchronous half of the art pipeline: fetch, decode,
// apply. Any stage failure leaves the placeholder in place; there are no
// retries.
func (c *Controller) fetchArt(s *State, gen uint64, uri string) {
	data, err := c.fetcher.Fetch(context.Background(), uri)
	if err != nil {
		c.logArtFailure(uri, err)
		return
	}

	img, err := artwork.ScaleSquare(data, c.cfg.ArtSize)
	if err != nil {
		c.logArtFailure(uri, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s.destroyed || s.artGen != gen {
		c.logger.Debug("Discarding stale art fetch",
			zap.String("window", s.win.ID()),
			zap.Uint64("generation", gen))
		return
	}
	s.surface.SetArt(img)
}

func (c *Controller) logArtFailure(uri string, err error) {
	stage := "fetch"
	var se *artwork.StageError
	if errors.As(err, &se) {
		stage = string(se.Stage)
	}
	c.logger.Warn("Album art fetch failed",
		zap.String("stage", stage),
		zap.String("uri", uri),
		zap.Error(err))
}
