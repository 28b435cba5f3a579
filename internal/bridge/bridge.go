// Package bridge implements the lifecycle hooks the host lock application
// drives: activation, focus changes, window teardown, idle hide/show and
// unload. It is the only caller of the widget controller's create and
// destroy entry points outside the player event path.
package bridge

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/playerlock/playerlock/internal/config"
	"github.com/playerlock/playerlock/internal/domain"
	"github.com/playerlock/playerlock/internal/widget"
)

// Module identity reported to the host.
const (
	ModuleName    = "playerlock"
	ModuleVersion = "v1.0.2"
)

// updateDebounce coalesces metadata bursts from rapid track skipping
// before the focused surface is rebuilt.
const updateDebounce = 300 * time.Millisecond

// PlayerEvents is the discovery adapter as seen from the bridge.
type PlayerEvents interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Events() <-chan domain.Event
}

// Bridge wires host lifecycle hooks to the widget controller and the
// player discovery adapter.
type Bridge struct {
	logger     *zap.Logger
	cfg        *config.Config
	discovery  PlayerEvents
	controller *widget.Controller

	mu      sync.Mutex
	focused domain.Window
	hidden  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates the event bridge
func New(
	logger *zap.Logger,
	cfg *config.Config,
	discovery PlayerEvents,
	controller *widget.Controller,
) *Bridge {
	return &Bridge{
		logger:     logger,
		cfg:        cfg,
		discovery:  discovery,
		controller: controller,
	}
}

// OnActivation starts player discovery and the event loop. A failing bus
// connection is logged and absorbed; the module keeps running with no
// player until unload.
func (b *Bridge) OnActivation(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.mu.Lock()
	b.cancel = cancel
	b.done = make(chan struct{})
	b.mu.Unlock()

	if err := b.discovery.Start(loopCtx); err != nil {
		b.logger.Warn("Player discovery unavailable, continuing without a player",
			zap.Error(err))
	}

	go b.runLoop(loopCtx)

	b.logger.Info("Module activated",
		zap.String("module", ModuleName),
		zap.String("version", ModuleVersion))
}

// OnFocusChange rebuilds and reveals the newly focused window's widget
// and hides the previously focused one. The old widget stays constructed,
// only hidden.
func (b *Bridge) OnFocusChange(win, old domain.Window) {
	if win == nil {
		return
	}

	b.mu.Lock()
	b.focused = win
	hidden := b.hidden
	b.mu.Unlock()

	s := b.controller.Ensure(win)
	b.controller.Refresh(s)
	b.controller.Suppress(s, hidden && !b.cfg.ShowHidden)

	if old != nil && old.ID() != win.ID() {
		if prev := b.controller.Lookup(old); prev != nil {
			b.controller.SetVisible(prev, false)
		}
	}
}

// OnWindowDestroy frees the window's widget state
func (b *Bridge) OnWindowDestroy(win domain.Window) {
	if win == nil {
		return
	}

	b.mu.Lock()
	if b.focused != nil && b.focused.ID() == win.ID() {
		b.focused = nil
	}
	b.mu.Unlock()

	b.controller.Destroy(win)
}

// OnIdleHide hides the focused window's widget while the lock screen is
// in its hidden idle state, unless configured to stay visible.
func (b *Bridge) OnIdleHide() {
	b.mu.Lock()
	b.hidden = true
	focused := b.focused
	b.mu.Unlock()

	if focused == nil || b.cfg.ShowHidden {
		return
	}
	b.controller.Suppress(b.controller.Lookup(focused), true)
}

// OnIdleShow restores the focused window's widget to whatever visibility
// it had before the hide.
func (b *Bridge) OnIdleShow() {
	b.mu.Lock()
	b.hidden = false
	focused := b.focused
	b.mu.Unlock()

	if focused == nil {
		return
	}
	b.controller.Suppress(b.controller.Lookup(focused), false)
}

// OnUnload stops the event loop and releases the bus connection.
func (b *Bridge) OnUnload(ctx context.Context) error {
	b.mu.Lock()
	cancel := b.cancel
	done := b.done
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	var err error
	err = multierr.Append(err, b.discovery.Stop(ctx))
	b.controller.TeardownAll()

	b.logger.Info("Module unloaded")
	return err
}

// runLoop dispatches discovery events to the widget controller.
// Appearance and vanish act immediately; metadata updates are debounced
// so rapid track skipping does not rebuild the surface per track.
func (b *Bridge) runLoop(ctx context.Context) {
	defer close(b.done)

	events := b.discovery.Events()

	timer := time.NewTimer(updateDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case domain.PlayerAppeared:
				b.logger.Debug("Player appeared")
				b.refreshFocused()
			case domain.PlayerVanished:
				b.logger.Debug("Player vanished, tearing down surfaces")
				b.controller.TeardownAll()
			case domain.PlayerUpdated:
				pending = true
				timer.Reset(updateDebounce)
			}

		case <-timer.C:
			if pending {
				pending = false
				b.refreshFocused()
			}
		}
	}
}

// refreshFocused rebuilds the focused window's widget from player state
func (b *Bridge) refreshFocused() {
	b.mu.Lock()
	focused := b.focused
	hidden := b.hidden
	b.mu.Unlock()

	if focused == nil {
		return
	}

	s := b.controller.Ensure(focused)
	b.controller.Refresh(s)
	b.controller.Suppress(s, hidden && !b.cfg.ShowHidden)
}
