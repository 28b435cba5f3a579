package domain

import (
	"context"
	"image"
)

// Player is a handle to one media player on the bus
type Player interface {
	// Name returns the player's well-known bus name
	Name() string

	// Metadata queries the player's current track metadata and playback
	// status
	Metadata() (Metadata, error)

	// Capabilities reads the player's current transport capabilities.
	// Failed property reads are treated as "not capable".
	Capabilities() Capabilities

	// Transport commands. Failures are reported, never fatal.
	Next() error
	Previous() error
	PlayPause() error
}

// Source exposes the currently tracked player
// Implementations should handle D-Bus/MPRIS communication
type Source interface {
	// Current returns the tracked player, or nil when no player is active
	Current() Player
}

// Fetcher defines the interface for retrieving album artwork
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Window represents one lock-screen output surface supplied by the host
// application. The widget controller keys its per-window state on ID.
type Window interface {
	ID() string
}

// Actions are the transport callbacks wired to a surface's buttons.
type Actions struct {
	Previous  func()
	PlayPause func()
	Next      func()
}

// Toolkit builds control surfaces on host windows.
type Toolkit interface {
	// BuildSurface constructs the widget subtree on the given window:
	// optional album art, the label stack and the three transport
	// buttons, placed according to pos.
	BuildSurface(win Window, pos Position, artSize int, actions Actions) (Surface, error)
}

// Surface is the per-window control surface. All mutations are absorbed
// by the backing toolkit; none of them return errors.
type Surface interface {
	// SetVisible shows or hides the whole surface
	SetVisible(visible bool)

	// SetLabels repopulates the label stack. Empty fields are omitted
	// entirely, not rendered as blank rows.
	SetLabels(title, album, artist string)

	// SetArt replaces the album art image. A nil image resets the art
	// to the generic placeholder icon.
	SetArt(img image.Image)

	// SetPlaying switches the play/pause button icon
	SetPlaying(playing bool)

	// SetCapabilities updates transport button enablement
	SetCapabilities(caps Capabilities)

	// Destroy detaches the surface from its window
	Destroy()
}
