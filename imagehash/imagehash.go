// Package imagehash computes compact perceptual fingerprints of raster
// images. Visually similar images produce fingerprints a small Hamming
// distance apart; unrelated images land far apart. Six algorithms are
// provided: average_hash, phash, phash_simple, dhash, dhash_vertical and
// whash.
package imagehash

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ImageHash is a fixed-size 2-D boolean grid. The size is fixed at
// construction; instances are never mutated after creation.
type ImageHash struct {
	bits [][]bool
}

// New wraps a boolean grid in an ImageHash. The grid is stored as given and
// must not be modified by the caller afterwards.
func New(grid [][]bool) *ImageHash {
	return &ImageHash{bits: grid}
}

// Rows returns the number of grid rows.
func (h *ImageHash) Rows() int { return len(h.bits) }

// Cols returns the number of grid columns.
func (h *ImageHash) Cols() int {
	if len(h.bits) == 0 {
		return 0
	}
	return len(h.bits[0])
}

// BitCount returns the total number of bits in the grid.
func (h *ImageHash) BitCount() int { return h.Rows() * h.Cols() }

// Bits returns a copy of the underlying grid.
func (h *ImageHash) Bits() [][]bool {
	out := make([][]bool, len(h.bits))
	for y, row := range h.bits {
		out[y] = make([]bool, len(row))
		copy(out[y], row)
	}
	return out
}

// Int returns the integer view of the hash. Bit (rows-1-y)*cols + x is set
// iff grid[y][x] is true, so the most-significant bit corresponds to the
// image's top-right corner region. The bottom-up row order is kept for
// compatibility with other implementations; the width is rows*cols bits with
// no truncation.
func (h *ImageHash) Int() *big.Int {
	v := new(big.Int)
	rows := len(h.bits)
	for y, row := range h.bits {
		cols := len(row)
		for x, b := range row {
			if b {
				v.SetBit(v, (rows-1-y)*cols+x, 1)
			}
		}
	}
	return v
}

// Hex returns the canonical textual form: uppercase hex, zero-padded to
// ceil(rows*cols/4) digits. It round-trips exactly through FromString.
func (h *ImageHash) Hex() string {
	digits := (h.BitCount() + 3) / 4
	return fmt.Sprintf("%0*X", digits, h.Int())
}

// String implements fmt.Stringer as the hex form.
func (h *ImageHash) String() string { return h.Hex() }

// FromInt rebuilds a size×size hash from its integer view. It is the exact
// inverse of Int: row y is read from bits (size-1-y)*size + x. Values needing
// more than size*size bits are rejected.
func FromInt(v *big.Int, size int) (*ImageHash, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value", ErrDecodeOverflow)
	}
	if v.BitLen() > size*size {
		return nil, fmt.Errorf("%w: %d bits supplied, %d expected", ErrDecodeOverflow, v.BitLen(), size*size)
	}
	grid := make([][]bool, size)
	for y := 0; y < size; y++ {
		grid[y] = make([]bool, size)
		for x := 0; x < size; x++ {
			grid[y][x] = v.Bit((size-1-y)*size+x) == 1
		}
	}
	return New(grid), nil
}

// FromString decodes a hex string produced by Hex. The bit count len*4 must
// be a perfect square, otherwise no square grid can be formed.
func FromString(hexstr string) (*ImageHash, error) {
	bits := len(hexstr) * 4
	size := int(math.Sqrt(float64(bits)))
	if size*size != bits {
		return nil, fmt.Errorf("%w: %d bits is not a square grid", ErrDecodeOverflow, bits)
	}
	v, ok := new(big.Int).SetString(strings.ToLower(hexstr), 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not valid hex", ErrDecodeOverflow, hexstr)
	}
	return FromInt(v, size)
}

// Distance returns the Hamming distance to other: the number of differing
// bit positions over the flattened grids. Hashes with different total bit
// counts cannot be compared.
func (h *ImageHash) Distance(other *ImageHash) (int, error) {
	if other == nil {
		return 0, fmt.Errorf("%w: other hash is nil", ErrShapeMismatch)
	}
	if h.BitCount() != other.BitCount() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, h.Rows(), h.Cols(), other.Rows(), other.Cols())
	}
	a := h.flatten()
	b := other.flatten()
	dist := 0
	for i := range a {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist, nil
}

// Equal reports whether both hashes have identical bits, compared over the
// flattened grids. A nil operand compares unequal; Equal never fails.
func (h *ImageHash) Equal(other *ImageHash) bool {
	if h == nil || other == nil {
		return false
	}
	a := h.flatten()
	b := other.flatten()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Xor returns the element-wise inequality grid of two same-shape hashes.
func (h *ImageHash) Xor(other *ImageHash) ([][]bool, error) {
	if other == nil {
		return nil, fmt.Errorf("%w: other hash is nil", ErrShapeMismatch)
	}
	if h.Rows() != other.Rows() || h.Cols() != other.Cols() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, h.Rows(), h.Cols(), other.Rows(), other.Cols())
	}
	out := make([][]bool, h.Rows())
	for y := range h.bits {
		out[y] = make([]bool, len(h.bits[y]))
		for x := range h.bits[y] {
			out[y][x] = h.bits[y][x] != other.bits[y][x]
		}
	}
	return out, nil
}

func (h *ImageHash) flatten() []bool {
	out := make([]bool, 0, h.BitCount())
	for _, row := range h.bits {
		out = append(out, row...)
	}
	return out
}
