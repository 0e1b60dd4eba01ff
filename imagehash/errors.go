package imagehash

import "errors"

// Failure classes reported by the hashing core. Callers match them with
// errors.Is; every error returned by this package wraps exactly one of them
// except decode failures, which propagate unchanged from the image loader.
var (
	// ErrInvalidParameter covers non-positive hash sizes and the
	// power-of-two violations of the wavelet hash. Reported at call entry,
	// before any sampling work, never silently clamped.
	ErrInvalidParameter = errors.New("invalid hash parameter")

	// ErrShapeMismatch is returned when two hashes with different bit
	// counts are compared or combined.
	ErrShapeMismatch = errors.New("hash shapes do not match")

	// ErrDecodeOverflow is returned by FromInt when the value needs more
	// bits than the requested size holds, and by FromString when the hex
	// length cannot form a square grid.
	ErrDecodeOverflow = errors.New("hash value does not fit")

	// ErrUnknownMethod is returned by MethodByName for names outside the
	// closed set of supported algorithms.
	ErrUnknownMethod = errors.New("unknown hash method")
)
