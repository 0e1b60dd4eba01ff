// Package scanner walks a folder, fingerprints every readable image on a
// worker pool and stores the digests in the database.
package scanner

import (
	"database/sql"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"imagehasher/database"
	"imagehasher/imagehash"
	"imagehasher/imageloader"
	"imagehasher/logging"
	"imagehasher/types"
)

// ScanOptions defines the options for scanning.
type ScanOptions struct {
	FolderPath   string
	SourcePrefix string
	ForceRewrite bool
	DebugMode    bool
	DbPath       string
	MaxWorkers   int
	HashSize     int
}

// ProcessImageResult holds the result of processing one image.
type ProcessImageResult struct {
	Path    string
	Success bool
	Error   error
}

// ScanAndStoreFolder scans a folder and stores image digests in the database.
func ScanAndStoreFolder(db *sql.DB, options ScanOptions) error {
	if options.HashSize <= 0 {
		options.HashSize = imagehash.DefaultHashSize
	}
	maxWorkers := options.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 8
	}

	var wg sync.WaitGroup
	resultsChan := make(chan ProcessImageResult, 100)
	semaphore := make(chan struct{}, maxWorkers)

	stats := countFilesToProcess(options)
	printStartupInfo(stats, options)

	tracker := newProgressTracker(stats, resultsChan)
	defer tracker.stop()

	startTime := time.Now()
	registry := imageloader.NewImageLoaderRegistry()

	err := filepath.Walk(options.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			if err != nil && options.DebugMode {
				logging.LogError("Error accessing path %s: %v", path, err)
			}
			return nil
		}

		if !registry.CanLoadFile(path) {
			return nil
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(p string, modTime time.Time, size int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := processImageFile(db, registry, p, modTime, size, options)
			resultsChan <- result
		}(path, info.ModTime(), info.Size())

		return nil
	})

	wg.Wait()
	close(resultsChan)

	tracker.printSummary(startTime)
	return err
}

// processImageFile loads one image, computes the stored digests and writes
// them to the database.
func processImageFile(db *sql.DB, registry *imageloader.ImageLoaderRegistry,
	path string, modTime time.Time, size int64, options ScanOptions) ProcessImageResult {

	modified := modTime.Format(time.RFC3339)

	if !options.ForceRewrite {
		exists, storedModTime, err := database.CheckImageExists(db, path, options.SourcePrefix)
		if err == nil && exists && storedModTime == modified {
			// Unchanged since last scan.
			return ProcessImageResult{Path: path, Success: true}
		}
	}

	img, err := registry.LoadImage(path)
	if err != nil {
		return ProcessImageResult{Path: path, Error: err}
	}

	info, err := buildImageInfo(img, path, options)
	if err != nil {
		return ProcessImageResult{Path: path, Error: err}
	}
	info.ModifiedAt = modified
	info.Size = size

	if err := database.StoreImageInfo(db, info, options.ForceRewrite); err != nil {
		return ProcessImageResult{Path: path, Error: err}
	}

	return ProcessImageResult{Path: path, Success: true}
}

// buildImageInfo computes the four stored digests for one decoded image.
func buildImageInfo(img image.Image, path string, options ScanOptions) (types.ImageInfo, error) {
	var info types.ImageInfo

	avg, err := imagehash.AverageHash(img, options.HashSize)
	if err != nil {
		return info, fmt.Errorf("average hash for %s: %w", path, err)
	}
	per, err := imagehash.PHash(img, options.HashSize, imagehash.DefaultHighfreqFactor)
	if err != nil {
		return info, fmt.Errorf("perceptual hash for %s: %w", path, err)
	}
	dif, err := imagehash.DHash(img, options.HashSize)
	if err != nil {
		return info, fmt.Errorf("difference hash for %s: %w", path, err)
	}
	wav, err := imagehash.WHash(img, imagehash.WHashOptions{HashSize: options.HashSize})
	if err != nil {
		return info, fmt.Errorf("wavelet hash for %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	bounds := img.Bounds()

	info = types.ImageInfo{
		Path:           path,
		SourcePrefix:   options.SourcePrefix,
		Format:         strings.TrimPrefix(ext, "."),
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		AverageHash:    avg.Hex(),
		PerceptualHash: per.Hex(),
		DifferenceHash: dif.Hex(),
		WaveletHash:    wav.Hex(),
		IsRawFormat:    imageloader.IsRawFormat(ext),
	}
	return info, nil
}

// FileStats tracks information about files to be processed.
type FileStats struct {
	totalFiles int
	rawFiles   int
	tifFiles   int
}

// countFilesToProcess counts and classifies files before processing starts.
func countFilesToProcess(options ScanOptions) FileStats {
	stats := FileStats{}
	registry := imageloader.NewImageLoaderRegistry()

	if options.DebugMode {
		logging.DebugLog("Starting image scan on folder: %s", options.FolderPath)
		logging.DebugLog("Force rewrite: %v, Source prefix: %s", options.ForceRewrite, options.SourcePrefix)
	}

	filepath.Walk(options.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if registry.CanLoadFile(path) {
			stats.totalFiles++

			ext := strings.ToLower(filepath.Ext(path))
			if imageloader.IsRawFormat(ext) {
				stats.rawFiles++
			}
			if imageloader.IsTiffFormat(ext) {
				stats.tifFiles++
			}
		}
		return nil
	})

	return stats
}

// printStartupInfo displays information about the scan before starting.
func printStartupInfo(stats FileStats, options ScanOptions) {
	fmt.Printf("Starting image indexing...\nTotal image files to process: %d (including %d RAW files and %d TIF files)\n",
		stats.totalFiles, stats.rawFiles, stats.tifFiles)
	fmt.Printf("Force rewrite mode: %v\n", options.ForceRewrite)

	if options.SourcePrefix != "" {
		fmt.Printf("Source prefix: %s\n", options.SourcePrefix)
	}

	if options.DebugMode {
		fmt.Printf("Debug mode: enabled\n")
		logging.DebugLog("Found %d image files to process (%d RAW files, %d TIF files)",
			stats.totalFiles, stats.rawFiles, stats.tifFiles)
	}
}
