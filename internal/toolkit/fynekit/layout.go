package fynekit

import (
	"fyne.io/fyne/v2"

	"github.com/playerlock/playerlock/internal/domain"
)

// surfaceMargin keeps the surface off the window edge.
const surfaceMargin float32 = 5

// anchorLayout pins its children at their minimum size to one corner or
// edge midpoint of the available area.
type anchorLayout struct {
	h domain.HAlign
	v domain.VAlign
}

func (l *anchorLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	min := fyne.NewSize(0, 0)
	for _, obj := range objects {
		min = min.Max(obj.MinSize())
	}
	return min
}

func (l *anchorLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, obj := range objects {
		min := obj.MinSize()
		obj.Resize(min)

		var x float32
		switch l.h {
		case domain.AlignStart:
			x = surfaceMargin
		case domain.AlignEnd:
			x = size.Width - min.Width - surfaceMargin
		default:
			x = (size.Width - min.Width) / 2
		}

		var y float32
		if l.v == domain.AlignBottom {
			y = size.Height - min.Height - surfaceMargin
		} else {
			y = surfaceMargin
		}

		obj.Move(fyne.NewPos(x, y))
	}
}
