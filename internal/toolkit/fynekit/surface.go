package fynekit

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/playerlock/playerlock/internal/domain"
)

// Toolkit builds fyne-backed control surfaces on LockWindows.
type Toolkit struct {
	logger *zap.Logger
}

// NewToolkit creates the fyne toolkit adapter
func NewToolkit(logger *zap.Logger) *Toolkit {
	return &Toolkit{logger: logger}
}

// surface is one window's control surface: album art, label stack and
// the three transport buttons inside a show/hide wrapper.
type surface struct {
	owner  *LockWindow
	parent *fyne.Container   // container the surface was inserted into
	mount  fyne.CanvasObject // object to remove from parent on destroy
	reveal *fyne.Container   // visibility wrapper (the revealer role)
	labels *fyne.Container
	art    *canvas.Image // nil when art is disabled

	prev      *widget.Button
	playPause *widget.Button
	next      *widget.Button
}

// BuildSurface constructs the widget subtree on win and places it per
// pos: edge positions are anchored on the overlay plane, the two
// clock-relative positions are inserted into the window's info area next
// to the clock.
func (t *Toolkit) BuildSurface(win domain.Window, pos domain.Position, artSize int, actions domain.Actions) (domain.Surface, error) {
	lw, ok := win.(*LockWindow)
	if !ok {
		return nil, fmt.Errorf("window %q was not created by this toolkit", win.ID())
	}

	s := &surface{owner: lw}

	s.prev = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), func() {
		if actions.Previous != nil {
			actions.Previous()
		}
	})
	s.playPause = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		if actions.PlayPause != nil {
			actions.PlayPause()
		}
	})
	s.next = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), func() {
		if actions.Next != nil {
			actions.Next()
		}
	})

	s.labels = container.NewVBox()

	box := container.NewHBox()
	if artSize > 0 {
		s.art = canvas.NewImageFromResource(theme.MediaMusicIcon())
		s.art.FillMode = canvas.ImageFillContain
		s.art.SetMinSize(fyne.NewSize(float32(artSize), float32(artSize)))
		box.Add(s.art)
	}
	box.Add(container.NewCenter(s.labels))
	box.Add(container.NewCenter(container.NewHBox(s.prev, s.playPause, s.next)))

	s.reveal = container.NewPadded(box)

	if pos.ClockRelative() {
		idx := lw.clockIndex()
		if pos == domain.PositionUnderClock {
			idx++
		}
		objects := lw.infoBox.Objects
		objects = append(objects, nil)
		copy(objects[idx+1:], objects[idx:])
		objects[idx] = s.reveal
		lw.infoBox.Objects = objects
		lw.infoBox.Refresh()

		s.parent = lw.infoBox
		s.mount = s.reveal
	} else {
		h, v := pos.Align()
		anchored := container.New(&anchorLayout{h: h, v: v}, s.reveal)
		lw.root.Add(anchored)

		s.parent = lw.root
		s.mount = anchored
	}

	t.logger.Debug("Control surface built",
		zap.String("window", lw.ID()),
		zap.String("position", pos.String()))

	return s, nil
}

func (s *surface) SetVisible(visible bool) {
	if visible {
		s.reveal.Show()
	} else {
		s.reveal.Hide()
	}
	s.reveal.Refresh()
}

func (s *surface) SetLabels(title, album, artist string) {
	s.labels.Objects = nil
	if title != "" {
		s.labels.Add(widget.NewLabelWithStyle(title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	}
	if album != "" {
		s.labels.Add(widget.NewLabel(album))
	}
	if artist != "" {
		s.labels.Add(widget.NewLabel(artist))
	}
	s.labels.Refresh()
}

func (s *surface) SetArt(img image.Image) {
	if s.art == nil {
		return
	}
	if img == nil {
		s.art.Image = nil
		s.art.Resource = theme.MediaMusicIcon()
	} else {
		s.art.Resource = nil
		s.art.Image = img
	}
	s.art.Refresh()
}

func (s *surface) SetPlaying(playing bool) {
	if playing {
		s.playPause.SetIcon(theme.MediaPauseIcon())
	} else {
		s.playPause.SetIcon(theme.MediaPlayIcon())
	}
}

func (s *surface) SetCapabilities(caps domain.Capabilities) {
	setEnabled(s.prev, caps.CanGoPrevious)
	setEnabled(s.playPause, caps.CanPause)
	setEnabled(s.next, caps.CanGoNext)
}

func (s *surface) Destroy() {
	s.parent.Remove(s.mount)
	s.parent.Refresh()
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}
