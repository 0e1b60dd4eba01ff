package imagehash

import (
	"fmt"
	"image"
	"sort"
)

// Method computes a hash for a decoded image using the default parameters
// of one of the supported algorithms.
type Method func(img image.Image) (*ImageHash, error)

// methods is the closed set of supported algorithm names. Selection is by
// explicit lookup; there is no reflective dispatch.
var methods = map[string]Method{
	"average_hash": func(img image.Image) (*ImageHash, error) {
		return AverageHash(img, DefaultHashSize)
	},
	"phash": func(img image.Image) (*ImageHash, error) {
		return PHash(img, DefaultHashSize, DefaultHighfreqFactor)
	},
	"phash_simple": func(img image.Image) (*ImageHash, error) {
		return PHashSimple(img, DefaultHashSize, DefaultHighfreqFactor)
	},
	"dhash": func(img image.Image) (*ImageHash, error) {
		return DHash(img, DefaultHashSize)
	},
	"dhash_vertical": func(img image.Image) (*ImageHash, error) {
		return DHashVertical(img, DefaultHashSize)
	},
	"whash": func(img image.Image) (*ImageHash, error) {
		return WHash(img, WHashOptions{})
	},
}

// MethodByName resolves an algorithm name to its default-parameter form.
func MethodByName(name string) (Method, error) {
	m, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	return m, nil
}

// MethodNames lists the supported algorithm names in sorted order.
func MethodNames() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
