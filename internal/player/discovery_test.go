package player

import (
	"errors"
	"testing"

	mpris "github.com/Pauloo27/go-mpris"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/playerlock/playerlock/internal/domain"
)

// noopDBusClient prevents panics when code under test touches the bus.
type noopDBusClient struct{}

func (noopDBusClient) Close() error { return nil }
func (noopDBusClient) AddMatchSignal(...dbus.MatchOption) error { return nil }
func (noopDBusClient) Signal(chan<- *dbus.Signal) {}
func (noopDBusClient) ListNames() ([]string, error) { return nil, nil }
func (noopDBusClient) GetNameOwner(string) (string, error) { return ":1.42", nil }
func (noopDBusClient) GetProperty(_, _, _ string) (dbus.Variant, error) {
	return dbus.Variant{}, errors.New("not wired")
}

// fakeTransport stands in for the MPRIS player wrapper.
type fakeTransport struct {
	meta   map[string]dbus.Variant
	status mpris.PlaybackStatus

	nextCalls   int
	prevCalls   int
	toggleCalls int
	cmdErr      error
}

func (f *fakeTransport) Next() error      { f.nextCalls++; return f.cmdErr }
func (f *fakeTransport) Previous() error  { f.prevCalls++; return f.cmdErr }
func (f *fakeTransport) PlayPause() error { f.toggleCalls++; return f.cmdErr }
func (f *fakeTransport) GetMetadata() (map[string]dbus.Variant, error) {
	return f.meta, nil
}
func (f *fakeTransport) GetPlaybackStatus() (mpris.PlaybackStatus, error) {
	return f.status, nil
}

func newTestDiscovery() (*Discovery, *fakeTransport) {
	ft := &fakeTransport{
		meta: map[string]dbus.Variant{
			"xesam:title": dbus.MakeVariant("Bohemian Rhapsody"),
		},
		status: mpris.PlaybackPlaying,
	}
	d := NewDiscovery(zap.NewNop())
	d.conn = noopDBusClient{}
	d.running = true
	d.newTransport = func(string) transport { return ft }
	return d, ft
}

func drainEvent(t *testing.T, d *Discovery) (domain.Event, bool) {
	t.Helper()
	select {
	case ev := <-d.events:
		return ev, true
	default:
		return domain.Event{}, false
	}
}

// TestAdoptFirstAppearedWins verifies that a second name-appeared without
// an intervening vanish keeps the first handle active.
func TestAdoptFirstAppearedWins(t *testing.T) {
	d, _ := newTestDiscovery()

	d.adopt("org.mpris.MediaPlayer2.spotify")
	d.adopt("org.mpris.MediaPlayer2.vlc")

	p := d.Current()
	if p == nil {
		t.Fatal("expected a tracked player")
	}
	if p.Name() != "org.mpris.MediaPlayer2.spotify" {
		t.Errorf("expected first player to stay tracked, got %q", p.Name())
	}

	ev, ok := drainEvent(t, d)
	if !ok || ev.Kind != domain.PlayerAppeared {
		t.Fatalf("expected a PlayerAppeared event, got %+v (ok=%v)", ev, ok)
	}
	if ev.Metadata.Title != "Bohemian Rhapsody" {
		t.Errorf("expected initial metadata in the event, got %q", ev.Metadata.Title)
	}
	if _, ok := drainEvent(t, d); ok {
		t.Error("second appearance must not emit an event")
	}
}

// TestVanishClearsTrackedPlayer covers the tracked player leaving the bus.
func TestVanishClearsTrackedPlayer(t *testing.T) {
	d, _ := newTestDiscovery()
	d.adopt("org.mpris.MediaPlayer2.spotify")
	drainEvent(t, d)

	d.handleNameOwnerChanged(&dbus.Signal{
		Name: "org.freedesktop.DBus.NameOwnerChanged",
		Body: []interface{}{"org.mpris.MediaPlayer2.spotify", ":1.42", ""},
	})

	if d.Current() != nil {
		t.Error("expected no tracked player after vanish")
	}
	ev, ok := drainEvent(t, d)
	if !ok || ev.Kind != domain.PlayerVanished {
		t.Fatalf("expected a PlayerVanished event, got %+v (ok=%v)", ev, ok)
	}
}

// TestVanishOfOtherPlayerIgnored keeps the tracked handle when an
// unrelated player leaves.
func TestVanishOfOtherPlayerIgnored(t *testing.T) {
	d, _ := newTestDiscovery()
	d.adopt("org.mpris.MediaPlayer2.spotify")
	drainEvent(t, d)

	d.handleNameOwnerChanged(&dbus.Signal{
		Name: "org.freedesktop.DBus.NameOwnerChanged",
		Body: []interface{}{"org.mpris.MediaPlayer2.vlc", ":1.77", ""},
	})

	if d.Current() == nil {
		t.Error("tracked player must survive an unrelated vanish")
	}
	if _, ok := drainEvent(t, d); ok {
		t.Error("unrelated vanish must not emit an event")
	}
}

// TestOwnershipTransferUpdatesOwner keeps the handle but remaps its
// unique name.
func TestOwnershipTransferUpdatesOwner(t *testing.T) {
	d, _ := newTestDiscovery()
	d.adopt("org.mpris.MediaPlayer2.spotify")
	drainEvent(t, d)

	d.handleNameOwnerChanged(&dbus.Signal{
		Name: "org.freedesktop.DBus.NameOwnerChanged",
		Body: []interface{}{"org.mpris.MediaPlayer2.spotify", ":1.42", ":1.99"},
	})

	if d.current == nil || d.current.owner != ":1.99" {
		t.Fatalf("expected owner remapped to :1.99, got %+v", d.current)
	}
}

// TestPropertiesChangedEmitsUpdate covers the standard metadata-change path.
func TestPropertiesChangedEmitsUpdate(t *testing.T) {
	d, ft := newTestDiscovery()
	d.adopt("org.mpris.MediaPlayer2.spotify")
	drainEvent(t, d)

	ft.meta = map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Stairway to Heaven"),
		"xesam:artist": dbus.MakeVariant([]string{"Led Zeppelin"}),
	}
	ft.status = mpris.PlaybackPaused

	d.handlePropertiesChanged(&dbus.Signal{
		Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
		Sender: ":1.42",
		Body: []interface{}{
			"org.mpris.MediaPlayer2.Player",
			map[string]dbus.Variant{"Metadata": dbus.MakeVariant(map[string]dbus.Variant{})},
			[]string{},
		},
	})

	ev, ok := drainEvent(t, d)
	if !ok || ev.Kind != domain.PlayerUpdated {
		t.Fatalf("expected a PlayerUpdated event, got %+v (ok=%v)", ev, ok)
	}
	if ev.Metadata.Title != "Stairway to Heaven" {
		t.Errorf("Title: got %q", ev.Metadata.Title)
	}
	if ev.Metadata.Artist != "Led Zeppelin" {
		t.Errorf("Artist: got %q", ev.Metadata.Artist)
	}
	if ev.Metadata.Status != domain.StatusPaused {
		t.Errorf("Status: got %v", ev.Metadata.Status)
	}
}

// TestPropertiesChangedEdgeCases consolidates ignored signals into a table.
func TestPropertiesChangedEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		signal *dbus.Signal
	}{
		{
			name: "Wrong Signal Name",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.SomeOtherSignal",
				Body: []interface{}{},
			},
		},
		{
			name: "Wrong Interface",
			signal: &dbus.Signal{
				Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
				Sender: ":1.42",
				Body:   []interface{}{"org.mpris.MediaPlayer2", map[string]dbus.Variant{}, []string{}},
			},
		},
		{
			name: "Short Body",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
				Body: []interface{}{"org.mpris.MediaPlayer2.Player"},
			},
		},
		{
			name: "Unknown Sender",
			signal: &dbus.Signal{
				Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
				Sender: ":1.200",
				Body: []interface{}{
					"org.mpris.MediaPlayer2.Player",
					map[string]dbus.Variant{"PlaybackStatus": dbus.MakeVariant("Playing")},
					[]string{},
				},
			},
		},
		{
			name: "Irrelevant Property",
			signal: &dbus.Signal{
				Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
				Sender: ":1.42",
				Body: []interface{}{
					"org.mpris.MediaPlayer2.Player",
					map[string]dbus.Variant{"Volume": dbus.MakeVariant(0.5)},
					[]string{},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDiscovery()
			d.adopt("org.mpris.MediaPlayer2.spotify")
			drainEvent(t, d)

			d.handlePropertiesChanged(tt.signal)

			if _, ok := drainEvent(t, d); ok {
				t.Error("signal should have been ignored")
			}
		})
	}
}

// TestPropertiesChangedWithoutPlayer must not panic or emit.
func TestPropertiesChangedWithoutPlayer(t *testing.T) {
	d, _ := newTestDiscovery()

	d.handlePropertiesChanged(&dbus.Signal{
		Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
		Sender: ":1.42",
		Body: []interface{}{
			"org.mpris.MediaPlayer2.Player",
			map[string]dbus.Variant{"PlaybackStatus": dbus.MakeVariant("Playing")},
			[]string{},
		},
	})

	if _, ok := drainEvent(t, d); ok {
		t.Error("no event expected without a tracked player")
	}
}
