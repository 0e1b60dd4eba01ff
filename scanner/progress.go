package scanner

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"imagehasher/imageloader"
	"imagehasher/logging"
)

// ProgressTracker tracks progress of the scan operation.
type ProgressTracker struct {
	processed    int
	errors       int
	rawProcessed int
	tifProcessed int
	ticker       *time.Ticker
	done         chan bool
	drained      chan bool
	mu           sync.Mutex
	totalFiles   int
	rawFiles     int
	tifFiles     int
}

// newProgressTracker starts the display and result-collection goroutines.
func newProgressTracker(stats FileStats, resultsChan chan ProcessImageResult) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan bool),
		drained:    make(chan bool),
		totalFiles: stats.totalFiles,
		rawFiles:   stats.rawFiles,
		tifFiles:   stats.tifFiles,
	}

	go tracker.displayProgress()
	go tracker.processResults(resultsChan)

	return tracker
}

// displayProgress shows the progress periodically.
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Printf("\rProgress: %d/%d (Errors: %d, RAW: %d/%d, TIF: %d/%d)",
					p.processed, p.totalFiles, p.errors, p.rawProcessed, p.rawFiles, p.tifProcessed, p.tifFiles)
			} else {
				fmt.Printf("\rProgress: %d/%d (RAW: %d/%d, TIF: %d/%d)",
					p.processed, p.totalFiles, p.rawProcessed, p.rawFiles, p.tifProcessed, p.tifFiles)
			}
			p.mu.Unlock()
		}
	}
}

// processResults updates the tracker state based on processing results.
func (p *ProgressTracker) processResults(resultsChan chan ProcessImageResult) {
	for result := range resultsChan {
		p.mu.Lock()
		p.processed++

		ext := strings.ToLower(filepath.Ext(result.Path))
		if imageloader.IsRawFormat(ext) {
			p.rawProcessed++
		}
		if imageloader.IsTiffFormat(ext) {
			p.tifProcessed++
		}

		if !result.Success {
			p.errors++
			if result.Error != nil {
				logging.LogImageProcessed(result.Path, false, result.Error.Error())
			}
		} else {
			logging.LogImageProcessed(result.Path, true, "")
		}

		p.mu.Unlock()
	}
	close(p.drained)
}

// printSummary prints the final statistics once every result has been
// collected. The results channel must be closed before calling it.
func (p *ProgressTracker) printSummary(startTime time.Time) {
	<-p.drained
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Printf("\nProcessed %d images (%d errors) in %v\n",
		p.processed, p.errors, time.Since(startTime).Round(time.Millisecond))
}

// stop ends the progress tracking.
func (p *ProgressTracker) stop() {
	p.ticker.Stop()
	p.done <- true
}
