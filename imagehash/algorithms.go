package imagehash

import (
	"fmt"
	"image"
	"math/bits"
	"sort"

	"imagehasher/transform"
)

// Default parameters shared by the algorithms.
const (
	DefaultHashSize       = 8
	DefaultHighfreqFactor = 4
)

// AverageHash resizes the image to hashSize x hashSize and sets each bit to
// whether the pixel is strictly brighter than the arithmetic mean. Cheap,
// captures the coarse luminance layout.
func AverageHash(img image.Image, hashSize int) (*ImageHash, error) {
	if err := checkHashSize(hashSize); err != nil {
		return nil, err
	}
	pixels, err := Sample(img, hashSize, hashSize)
	if err != nil {
		return nil, err
	}

	var sum float64
	for _, row := range pixels {
		for _, p := range row {
			sum += p
		}
	}
	mean := sum / float64(hashSize*hashSize)

	return New(thresholdGrid(pixels, mean)), nil
}

// PHash samples to (hashSize*highfreqFactor)^2, applies the 2-D DCT and
// keeps the top-left hashSize x hashSize low-frequency block, thresholded
// against its median. Discarding the high-frequency coefficients makes the
// hash robust to resizing, mild compression and small edits.
func PHash(img image.Image, hashSize, highfreqFactor int) (*ImageHash, error) {
	if err := checkHashSize(hashSize); err != nil {
		return nil, err
	}
	if highfreqFactor <= 0 {
		return nil, fmt.Errorf("%w: highfreq factor must be positive, got %d", ErrInvalidParameter, highfreqFactor)
	}
	imgSize := hashSize * highfreqFactor
	pixels, err := Sample(img, imgSize, imgSize)
	if err != nil {
		return nil, err
	}

	coeffs := transform.DCT2D(pixels)
	block := make([]float64, 0, hashSize*hashSize)
	for y := 0; y < hashSize; y++ {
		block = append(block, coeffs[y][:hashSize]...)
	}
	med := median(block)

	grid := make([][]bool, hashSize)
	for y := 0; y < hashSize; y++ {
		grid[y] = make([]bool, hashSize)
		for x := 0; x < hashSize; x++ {
			grid[y][x] = coeffs[y][x] > med
		}
	}
	return New(grid), nil
}

// PHashSimple is the legacy perceptual hash variant: the DCT runs along one
// axis only (each row), the sub-block skips the DC column (rows [0:hashSize),
// columns [1:hashSize+1)) and the threshold is the arithmetic mean rather
// than the median. The behavior differs subtly from PHash and is kept
// exactly as is.
func PHashSimple(img image.Image, hashSize, highfreqFactor int) (*ImageHash, error) {
	if err := checkHashSize(hashSize); err != nil {
		return nil, err
	}
	if highfreqFactor <= 0 {
		return nil, fmt.Errorf("%w: highfreq factor must be positive, got %d", ErrInvalidParameter, highfreqFactor)
	}
	imgSize := hashSize * highfreqFactor
	// The sub-block skips column 0, so the sampled grid must span one column
	// past the hash size.
	if imgSize < hashSize+1 {
		return nil, fmt.Errorf("%w: sample size %d cannot skip the DC column for hash size %d", ErrInvalidParameter, imgSize, hashSize)
	}
	pixels, err := Sample(img, imgSize, imgSize)
	if err != nil {
		return nil, err
	}

	coeffs := transform.DCTRows(pixels)
	var sum float64
	for y := 0; y < hashSize; y++ {
		for x := 1; x <= hashSize; x++ {
			sum += coeffs[y][x]
		}
	}
	mean := sum / float64(hashSize*hashSize)

	grid := make([][]bool, hashSize)
	for y := 0; y < hashSize; y++ {
		grid[y] = make([]bool, hashSize)
		for x := 0; x < hashSize; x++ {
			grid[y][x] = coeffs[y][x+1] > mean
		}
	}
	return New(grid), nil
}

// DHash samples to hashSize+1 columns by hashSize rows and sets each bit to
// whether a pixel is brighter than its left neighbor. Captures local
// horizontal gradient structure.
func DHash(img image.Image, hashSize int) (*ImageHash, error) {
	if err := checkHashSize(hashSize); err != nil {
		return nil, err
	}
	pixels, err := Sample(img, hashSize+1, hashSize)
	if err != nil {
		return nil, err
	}

	grid := make([][]bool, hashSize)
	for y := 0; y < hashSize; y++ {
		grid[y] = make([]bool, hashSize)
		for x := 0; x < hashSize; x++ {
			grid[y][x] = pixels[y][x+1] > pixels[y][x]
		}
	}
	return New(grid), nil
}

// DHashVertical is the vertical counterpart of DHash: hashSize columns by
// hashSize+1 rows, each bit comparing a pixel to the one above it.
func DHashVertical(img image.Image, hashSize int) (*ImageHash, error) {
	if err := checkHashSize(hashSize); err != nil {
		return nil, err
	}
	pixels, err := Sample(img, hashSize, hashSize+1)
	if err != nil {
		return nil, err
	}

	grid := make([][]bool, hashSize)
	for y := 0; y < hashSize; y++ {
		grid[y] = make([]bool, hashSize)
		for x := 0; x < hashSize; x++ {
			grid[y][x] = pixels[y+1][x] > pixels[y][x]
		}
	}
	return New(grid), nil
}

// WHashOptions configures the wavelet hash. The zero value selects the
// defaults: hash size 8, automatic image scale, Haar wavelets, top-level LL
// band removed.
type WHashOptions struct {
	// HashSize must be a power of two. 0 selects DefaultHashSize.
	HashSize int
	// ImageScale must be a power of two no smaller than HashSize. 0 selects
	// the largest power of two that fits the image's smaller dimension.
	ImageScale int
	// Mode names the wavelet family: "haar" (default) or "db4".
	Mode string
	// KeepMaxLL skips the removal of the lowest-frequency band. Removal
	// (the default) strips the dominant flat-illumination component.
	KeepMaxLL bool
}

// WHash decomposes the image with a discrete wavelet transform and hashes
// the low-frequency approximation band against its median. Sub-band energy
// is robust to both frequency noise and small spatial shifts.
func WHash(img image.Image, opts WHashOptions) (*ImageHash, error) {
	hashSize := opts.HashSize
	if hashSize == 0 {
		hashSize = DefaultHashSize
	}
	if err := checkHashSize(hashSize); err != nil {
		return nil, err
	}
	if hashSize&(hashSize-1) != 0 {
		return nil, fmt.Errorf("%w: hash size %d is not a power of 2", ErrInvalidParameter, hashSize)
	}
	// Resolve the wavelet before any sampling work.
	wave, err := transform.WaveletByName(opts.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidParameter)
	}

	scale := opts.ImageScale
	if scale != 0 {
		if scale < 0 || scale&(scale-1) != 0 {
			return nil, fmt.Errorf("%w: image scale %d is not a power of 2", ErrInvalidParameter, scale)
		}
	} else {
		b := img.Bounds()
		minDim := b.Dx()
		if b.Dy() < minDim {
			minDim = b.Dy()
		}
		scale = hashSize
		if minDim > 0 {
			if natural := 1 << (bits.Len(uint(minDim)) - 1); natural > scale {
				scale = natural
			}
		}
	}

	llMaxLevel := log2(scale)
	level := log2(hashSize)
	if level > llMaxLevel {
		return nil, fmt.Errorf("%w: hash size %d exceeds image scale %d", ErrInvalidParameter, hashSize, scale)
	}
	dwtLevel := llMaxLevel - level

	pixels, err := Sample(img, scale, scale)
	if err != nil {
		return nil, err
	}
	for y := range pixels {
		for x := range pixels[y] {
			pixels[y][x] /= 255
		}
	}

	// Strip the lowest-frequency band: full Haar decomposition, zero the
	// approximation, reconstruct.
	if !opts.KeepMaxLL {
		dec, err := transform.Wavedec2(pixels, transform.Haar, llMaxLevel)
		if err != nil {
			return nil, err
		}
		for y := range dec.Approx {
			for x := range dec.Approx[y] {
				dec.Approx[y][x] = 0
			}
		}
		pixels, err = transform.Waverec2(dec, transform.Haar)
		if err != nil {
			return nil, err
		}
	}

	dec, err := transform.Wavedec2(pixels, wave, dwtLevel)
	if err != nil {
		return nil, err
	}
	band := dec.Approx

	flat := make([]float64, 0, hashSize*hashSize)
	for _, row := range band {
		flat = append(flat, row...)
	}
	med := median(flat)

	return New(thresholdGrid(band, med)), nil
}

func checkHashSize(hashSize int) error {
	if hashSize <= 0 {
		return fmt.Errorf("%w: hash size must be positive, got %d", ErrInvalidParameter, hashSize)
	}
	return nil
}

// thresholdGrid sets a bit wherever the value strictly exceeds the
// threshold; ties resolve to false.
func thresholdGrid(values [][]float64, threshold float64) [][]bool {
	grid := make([][]bool, len(values))
	for y, row := range values {
		grid[y] = make([]bool, len(row))
		for x, v := range row {
			grid[y][x] = v > threshold
		}
	}
	return grid
}

// median returns the middle value of the data, averaging the two middle
// values for even counts.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func log2(n int) int {
	return bits.Len(uint(n)) - 1
}
