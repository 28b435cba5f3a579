package artwork

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // WebP art from browser players
)

// ScaleSquare decodes raw image bytes and scales them into a size×size
// square, preserving aspect ratio and center-cropping the excess.
func ScaleSquare(data []byte, size int) (image.Image, error) {
	if size <= 0 {
		return nil, &StageError{Stage: StageDecode, Err: fmt.Errorf("invalid art size: %d", size)}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: fmt.Errorf("failed to decode image: %w", err)}
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, &StageError{Stage: StageDecode, Err: fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())}
	}

	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
}
