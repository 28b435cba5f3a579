package domain

// PlaybackStatus represents the current state of the media player
type PlaybackStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlaybackStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlaybackStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlaybackStatus = "Stopped"
)

// Metadata contains information about the currently playing media
type Metadata struct {
	// Title of the currently playing track
	Title string
	// Artist name
	Artist string
	// Album name
	Album string
	// ArtURL is the URL or local path to the album artwork
	ArtURL string
	// Status is the current playback status
	Status PlaybackStatus
}

// Capabilities are the transport abilities the player currently reports.
// Players tend to be sloppy about emitting change notifications for these,
// so consumers re-poll them instead of trusting a single read.
type Capabilities struct {
	CanGoNext     bool
	CanGoPrevious bool
	CanPause      bool
}

// EventKind distinguishes the player lifecycle events the discovery
// adapter emits.
type EventKind int

const (
	// PlayerAppeared is emitted when a player is adopted as the tracked one
	PlayerAppeared EventKind = iota
	// PlayerVanished is emitted when the tracked player leaves the bus
	PlayerVanished
	// PlayerUpdated is emitted when the tracked player's metadata or
	// playback status changes
	PlayerUpdated
)

// Event is one player lifecycle notification.
type Event struct {
	Kind     EventKind
	Metadata Metadata
}
