// Package fynekit renders control surfaces with the Fyne toolkit. It
// stands in for the host lock application's widget tree: one LockWindow
// per output, an info area with a clock, and an overlay plane the
// anchored surfaces live on.
package fynekit

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LockWindow is one lock-screen output surface.
type LockWindow struct {
	id      string
	win     fyne.Window
	root    *fyne.Container // stacked: info area below, anchored surfaces above
	infoBox *fyne.Container // vertical info area holding the clock
	clock   fyne.CanvasObject
}

// NewLockWindow creates a lock-screen window of the given size.
func NewLockWindow(a fyne.App, id string, width, height int) *LockWindow {
	clock := widget.NewLabelWithStyle(
		time.Now().Format("15:04"),
		fyne.TextAlignCenter,
		fyne.TextStyle{Bold: true},
	)
	infoBox := container.NewVBox(clock)
	root := container.NewMax(container.NewCenter(infoBox))

	win := a.NewWindow("playerlock")
	win.SetContent(root)
	win.Resize(fyne.NewSize(float32(width), float32(height)))

	return &LockWindow{
		id:      id,
		win:     win,
		root:    root,
		infoBox: infoBox,
		clock:   clock,
	}
}

// ID identifies the window for per-window widget state
func (w *LockWindow) ID() string {
	return w.id
}

// Window exposes the underlying fyne window to the host
func (w *LockWindow) Window() fyne.Window {
	return w.win
}

// SetClock updates the clock label text
func (w *LockWindow) SetClock(text string) {
	if label, ok := w.clock.(*widget.Label); ok {
		label.SetText(text)
	}
}

// clockIndex returns the clock's position within the info area
func (w *LockWindow) clockIndex() int {
	for i, obj := range w.infoBox.Objects {
		if obj == w.clock {
			return i
		}
	}
	return 0
}
