package imagehash

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Sample converts an image to single-channel grayscale and resizes it to
// exactly width x height with a Lanczos (antialiasing) filter. Values are
// luminance intensities in the 0-255 range. This is the shared preprocessing
// step of every hash algorithm.
func Sample(img image.Image, width, height int) ([][]float64, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidParameter)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: sample size %dx%d", ErrInvalidParameter, width, height)
	}
	gray := imaging.Grayscale(img)
	resized := imaging.Resize(gray, width, height, imaging.Lanczos)

	pixels := make([][]float64, height)
	for y := 0; y < height; y++ {
		pixels[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			// Grayscale output carries the luminance in every channel.
			pixels[y][x] = float64(resized.NRGBAAt(x, y).R)
		}
	}
	return pixels, nil
}
