// Package imageloader decodes image files into image.Image values for the
// hashing core. Loaders are tried in registration order; standard formats go
// through the stdlib and x/image decoders, RAW camera files through the
// embedded preview that exiftool can extract.
package imageloader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/barasher/go-exiftool"

	"imagehasher/logging"
)

// ImageLoader loads a specific family of image formats.
type ImageLoader interface {
	CanLoad(path string) bool
	LoadImage(path string) (image.Image, error)
}

var standardFormats = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif", ".webp"}

var rawFormats = []string{".dng", ".raf", ".arw", ".nef", ".cr2", ".cr3", ".nrw", ".srf"}

// IsImageFile reports whether the extension belongs to any supported format.
func IsImageFile(ext string) bool {
	ext = strings.ToLower(ext)
	for _, f := range standardFormats {
		if ext == f {
			return true
		}
	}
	return IsRawFormat(ext)
}

// IsRawFormat reports whether the extension is a RAW camera format.
func IsRawFormat(ext string) bool {
	ext = strings.ToLower(ext)
	for _, f := range rawFormats {
		if ext == f {
			return true
		}
	}
	return false
}

// IsTiffFormat reports whether the extension is a TIFF variant.
func IsTiffFormat(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".tif" || ext == ".tiff"
}

// DefaultImageLoader handles the formats the registered stdlib and x/image
// decoders understand.
type DefaultImageLoader struct{}

func (l *DefaultImageLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range standardFormats {
		if ext == f {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	return false
}

func (l *DefaultImageLoader) LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// RawImageLoader handles RAW camera formats by extracting the embedded
// preview JPEG with exiftool and decoding that.
type RawImageLoader struct {
	mu      sync.Mutex
	et      *exiftool.Exiftool
	initErr error
}

// NewRawImageLoader creates a RAW loader. The exiftool process is started
// lazily on first use.
func NewRawImageLoader() *RawImageLoader {
	return &RawImageLoader{}
}

func (l *RawImageLoader) CanLoad(path string) bool {
	if !IsRawFormat(filepath.Ext(path)) {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Preview tags to try, in order of decreasing size/quality.
var previewTags = []string{"JpgFromRaw", "PreviewImage", "ThumbnailImage"}

func (l *RawImageLoader) LoadImage(path string) (image.Image, error) {
	et, err := l.tool()
	if err != nil {
		return nil, fmt.Errorf("exiftool unavailable for %s: %w", path, err)
	}

	l.mu.Lock()
	metas := et.ExtractMetadata(path)
	l.mu.Unlock()
	if len(metas) == 0 {
		return nil, fmt.Errorf("no metadata extracted from %s", path)
	}
	meta := metas[0]
	if meta.Err != nil {
		return nil, fmt.Errorf("failed to read RAW file %s: %w", path, meta.Err)
	}

	for _, tag := range previewTags {
		raw, err := meta.GetString(tag)
		if err != nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, "base64:"))
		if err != nil {
			logging.LogWarning("Invalid %s payload in %s: %v", tag, path, err)
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			logging.LogWarning("Cannot decode %s preview of %s: %v", tag, path, err)
			continue
		}
		return img, nil
	}
	return nil, fmt.Errorf("no usable embedded preview in RAW file: %s", path)
}

func (l *RawImageLoader) tool() (*exiftool.Exiftool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.et == nil && l.initErr == nil {
		l.et, l.initErr = exiftool.NewExiftool(exiftool.ExtractAllBinaryMetadata())
	}
	return l.et, l.initErr
}

// Close stops the background exiftool process if one was started.
func (l *RawImageLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.et != nil {
		err := l.et.Close()
		l.et = nil
		return err
	}
	return nil
}

// ImageLoaderRegistry manages available image loaders.
type ImageLoaderRegistry struct {
	loaders []ImageLoader
}

// NewImageLoaderRegistry creates a registry with the default loaders.
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	return &ImageLoaderRegistry{
		loaders: []ImageLoader{
			&DefaultImageLoader{},
			NewRawImageLoader(),
		},
	}
}

// RegisterLoader adds a custom loader to the registry.
func (r *ImageLoaderRegistry) RegisterLoader(loader ImageLoader) {
	r.loaders = append(r.loaders, loader)
}

// CanLoadFile checks if any registered loader can handle the given file.
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return true
		}
	}
	return false
}

// LoadImage tries to load an image using the first loader that accepts it.
// Decode failures are surfaced unchanged; the caller does not retry.
func (r *ImageLoaderRegistry) LoadImage(path string) (image.Image, error) {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return loader.LoadImage(path)
		}
	}
	return nil, fmt.Errorf("no suitable loader found for image: %s", path)
}

var (
	defaultRegistry     *ImageLoaderRegistry
	defaultRegistryOnce sync.Once
)

// LoadImage loads an image through the shared default registry.
func LoadImage(path string) (image.Image, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewImageLoaderRegistry()
	})
	return defaultRegistry.LoadImage(path)
}
