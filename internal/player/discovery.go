package player

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mpris "github.com/Pauloo27/go-mpris"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/playerlock/playerlock/internal/domain"
)

// Discovery watches the session bus for MPRIS players and tracks at most
// one current handle. The first player to appear wins; later appearances
// are ignored until the tracked one vanishes.
type Discovery struct {
	logger          *zap.Logger
	events          chan domain.Event
	mu              sync.RWMutex
	running         bool
	cancel          context.CancelFunc
	conn            DBusClient // Interface for testability
	current         *Handle
	lastDropWarning time.Time      // Rate limiting for "channel full" warnings
	wg              sync.WaitGroup // Tracks active producer goroutines

	// connect and newTransport are swapped out in tests
	connect      func() (DBusClient, *dbus.Conn, error)
	newTransport func(name string) transport
}

// NewDiscovery creates a new discovery adapter
func NewDiscovery(logger *zap.Logger) *Discovery {
	d := &Discovery{
		logger: logger,
		events: make(chan domain.Event, 16),
	}
	d.connect = func() (DBusClient, *dbus.Conn, error) {
		client, err := NewStdDBusClient()
		if err != nil {
			return nil, nil, err
		}
		return client, client.Conn(), nil
	}
	return d
}

// Start connects to the session bus, adopts an already-running player if
// one exists, subscribes to appearance/vanish and property-change signals
// and spawns the signal loop. Non-blocking; Stop tears everything down.
func (d *Discovery) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = true
	watchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	conn, raw, err := d.connect()
	if err != nil {
		d.mu.Lock()
		d.running = false
		d.cancel = nil
		d.mu.Unlock()
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	d.mu.Lock()
	d.conn = conn
	if d.newTransport == nil {
		d.newTransport = func(name string) transport {
			return mpris.New(raw, name)
		}
	}
	d.mu.Unlock()

	if err := d.adoptExisting(); err != nil {
		d.logger.Warn("Failed to detect existing players", zap.Error(err))
	}

	// Metadata and playback-status changes from the tracked player
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(mprisPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		d.logger.Error("Failed to add PropertiesChanged match", zap.Error(err))
		return fmt.Errorf("failed to add match signal: %w", err)
	}

	// Player appearance/vanish tracking
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		// Non-fatal, continue with the initially adopted player only
		d.logger.Warn("Failed to add NameOwnerChanged match", zap.Error(err))
	}

	d.wg.Add(1)
	go d.watchSignals(watchCtx)

	d.logger.Info("Player discovery started")
	return nil
}

// Stop tears down the signal loop and closes the bus connection.
func (d *Discovery) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.running = false
	d.mu.Unlock()

	// Wait for producer goroutines before closing the channel to avoid a
	// send on a closed channel.
	d.wg.Wait()
	close(d.events)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			d.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
	}
	d.current = nil

	d.logger.Info("Player discovery stopped")
	return nil
}

// Events returns a read-only channel that emits player lifecycle events
func (d *Discovery) Events() <-chan domain.Event {
	return d.events
}

// Current returns the tracked player, or nil when no player is active
func (d *Discovery) Current() domain.Player {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return nil
	}
	return d.current
}

// adoptExisting queries the bus for running MPRIS players and adopts the
// first one, exactly as a name-appeared signal would.
func (d *Discovery) adoptExisting() error {
	names, err := d.conn.ListNames()
	if err != nil {
		return fmt.Errorf("failed to list bus names: %w", err)
	}

	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			d.logger.Info("Detected running MPRIS player", zap.String("name", name))
			d.adopt(name)
			return nil
		}
	}
	return nil
}

// adopt instantiates a handle for name unless a player is already
// tracked, in which case the appearance is ignored.
func (d *Discovery) adopt(name string) {
	d.mu.Lock()
	if d.current != nil {
		d.mu.Unlock()
		d.logger.Debug("Player already tracked, ignoring",
			zap.String("name", name),
			zap.String("tracked", d.current.name))
		return
	}

	owner, err := d.conn.GetNameOwner(name)
	if err != nil {
		d.logger.Warn("Failed to resolve player owner",
			zap.String("name", name), zap.Error(err))
	}

	handle := newHandle(d.logger, d.conn, d.newTransport(name), name, owner)
	d.current = handle
	d.mu.Unlock()

	d.logger.Info("Adopted player",
		zap.String("name", name),
		zap.String("owner", owner))

	meta, err := handle.Metadata()
	if err != nil {
		d.logger.Warn("Failed to fetch initial metadata",
			zap.String("player", name), zap.Error(err))
	}
	d.emit(domain.Event{Kind: domain.PlayerAppeared, Metadata: meta})
}

// watchSignals consumes D-Bus signals until the context is cancelled
func (d *Discovery) watchSignals(ctx context.Context) {
	defer d.wg.Done()

	signals := make(chan *dbus.Signal, 16)
	d.conn.Signal(signals)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			if sig == nil {
				continue
			}
			if sig.Name == "org.freedesktop.DBus.NameOwnerChanged" {
				d.handleNameOwnerChanged(sig)
			} else {
				d.handlePropertiesChanged(sig)
			}
		}
	}
}

// handleNameOwnerChanged tracks player appearance and vanish
func (d *Discovery) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}

	name, ok := sig.Body[0].(string)
	if !ok || !strings.HasPrefix(name, mprisPrefix) {
		return
	}
	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)

	switch {
	case newOwner != "" && oldOwner == "":
		d.adopt(name)

	case newOwner == "" && oldOwner != "":
		d.mu.Lock()
		tracked := d.current != nil && d.current.name == name
		if tracked {
			d.current = nil
		}
		d.mu.Unlock()

		if tracked {
			d.logger.Info("Tracked player vanished", zap.String("name", name))
			d.emit(domain.Event{Kind: domain.PlayerVanished})
		}

	default:
		// Ownership transfer: keep the handle, update the unique name
		d.mu.Lock()
		if d.current != nil && d.current.name == name {
			d.current.owner = newOwner
		}
		d.mu.Unlock()
	}
}

// handlePropertiesChanged reacts to metadata and playback-status changes
// from the tracked player; all other senders are ignored.
func (d *Discovery) handlePropertiesChanged(sig *dbus.Signal) {
	if sig.Name != "org.freedesktop.DBus.Properties.PropertiesChanged" {
		return
	}
	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != playerInterface {
		return
	}
	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	d.mu.RLock()
	handle := d.current
	d.mu.RUnlock()
	if handle == nil {
		return
	}
	if sig.Sender != handle.owner && sig.Sender != handle.name {
		return
	}

	_, hasMetadata := changedProps["Metadata"]
	_, hasStatus := changedProps["PlaybackStatus"]
	if !hasMetadata && !hasStatus {
		return
	}

	// The signal rarely carries both halves; re-query the handle so the
	// event always holds a complete picture.
	meta, err := handle.Metadata()
	if err != nil {
		d.logger.Warn("Failed to query metadata after change",
			zap.String("player", handle.name), zap.Error(err))
		return
	}

	d.logger.Debug("Player state changed",
		zap.String("player", handle.name),
		zap.String("title", meta.Title),
		zap.String("status", string(meta.Status)))

	d.emit(domain.Event{Kind: domain.PlayerUpdated, Metadata: meta})
}

// emit performs a non-blocking send so a slow consumer can never stall
// the signal loop; dropped events are rate-limit warned.
func (d *Discovery) emit(ev domain.Event) {
	select {
	case d.events <- ev:
	default:
		d.logDropWarning()
	}
}

func (d *Discovery) logDropWarning() {
	d.mu.Lock()
	defer d.mu.Unlock()

	const warningInterval = 5 * time.Second
	now := time.Now()
	if now.Sub(d.lastDropWarning) >= warningInterval {
		d.logger.Warn("Events channel full, dropping player event")
		d.lastDropWarning = now
	}
}
