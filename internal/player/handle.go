package player

import (
	"fmt"

	mpris "github.com/Pauloo27/go-mpris"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/playerlock/playerlock/internal/domain"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisPath       = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
)

// transport is the slice of the MPRIS player wrapper the handle needs.
// Satisfied by *mpris.Player; faked in tests.
type transport interface {
	Next() error
	Previous() error
	PlayPause() error
	GetMetadata() (map[string]dbus.Variant, error)
	GetPlaybackStatus() (mpris.PlaybackStatus, error)
}

// Handle is a reference to one media player on the bus. At most one
// exists per discovery adapter at any time.
type Handle struct {
	logger *zap.Logger
	conn   DBusClient
	mp     transport
	name   string // well-known bus name
	owner  string // unique name currently owning it
}

func newHandle(logger *zap.Logger, conn DBusClient, mp transport, name, owner string) *Handle {
	return &Handle{
		logger: logger,
		conn:   conn,
		mp:     mp,
		name:   name,
		owner:  owner,
	}
}

// Name returns the player's well-known bus name
func (h *Handle) Name() string {
	return h.name
}

// Metadata queries the player's current track metadata and playback status
func (h *Handle) Metadata() (domain.Metadata, error) {
	raw, err := h.mp.GetMetadata()
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("failed to get metadata: %w", err)
	}

	status, err := h.mp.GetPlaybackStatus()
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("failed to get playback status: %w", err)
	}

	return parseMetadata(h.logger, raw, string(status)), nil
}

// Capabilities reads CanGoNext/CanGoPrevious/CanPause. Notifications for
// these are unreliable, so callers poll; a failed read counts as "not
// capable" and is only logged at debug level.
func (h *Handle) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanGoNext:     h.boolProperty("CanGoNext"),
		CanGoPrevious: h.boolProperty("CanGoPrevious"),
		CanPause:      h.boolProperty("CanPause"),
	}
}

func (h *Handle) boolProperty(prop string) bool {
	variant, err := h.conn.GetProperty(h.name, mprisPath, playerInterface+"."+prop)
	if err != nil {
		h.logger.Debug("Capability read failed",
			zap.String("player", h.name),
			zap.String("property", prop),
			zap.Error(err))
		return false
	}
	b, ok := variant.Value().(bool)
	return ok && b
}

// Next skips to the next track
func (h *Handle) Next() error {
	return h.mp.Next()
}

// Previous skips to the previous track
func (h *Handle) Previous() error {
	return h.mp.Previous()
}

// PlayPause toggles between playing and paused
func (h *Handle) PlayPause() error {
	return h.mp.PlayPause()
}

// parseMetadata converts MPRIS metadata to the domain model
func parseMetadata(logger *zap.Logger, metadata map[string]dbus.Variant, status string) domain.Metadata {
	var meta domain.Metadata

	switch status {
	case "Playing":
		meta.Status = domain.StatusPlaying
	case "Paused":
		meta.Status = domain.StatusPaused
	default:
		meta.Status = domain.StatusStopped
	}

	if metadata == nil {
		return meta
	}

	if titleVar, ok := metadata["xesam:title"]; ok {
		if title, ok := titleVar.Value().(string); ok {
			meta.Title = title
		}
	}

	// Artist can be an array or a plain string depending on the player
	if artistVar, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			if len(artists) > 0 {
				meta.Artist = artists[0]
			}
		case string:
			meta.Artist = artists
		default:
			logger.Debug("Unexpected artist type in metadata",
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}

	if albumVar, ok := metadata["xesam:album"]; ok {
		if album, ok := albumVar.Value().(string); ok {
			meta.Album = album
		}
	}

	if artVar, ok := metadata["mpris:artUrl"]; ok {
		if artURL, ok := artVar.Value().(string); ok {
			if artURL == "" {
				// Some players (browsers, local files) send an empty artUrl
				logger.Debug("Empty artUrl received",
					zap.String("title", meta.Title))
			} else {
				meta.ArtURL = artURL
			}
		}
	}

	return meta
}
