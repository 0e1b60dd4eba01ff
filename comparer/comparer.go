// Package comparer implements pairwise hash comparison: the batch mode over
// a list of files and the search mode over previously indexed images.
package comparer

import (
	"database/sql"
	"fmt"
	"image"
	"sort"
	"sync"

	"imagehasher/database"
	"imagehasher/imagehash"
	"imagehasher/imageloader"
	"imagehasher/logging"
	"imagehasher/types"
)

// Match reports one pair of files within the distance cutoff. Prior is
// always a file that appeared earlier in the argument order than File.
type Match struct {
	Distance int
	File     string
	Prior    string
}

// BatchOptions configures CompareFiles.
type BatchOptions struct {
	Method     string
	Cutoff     int
	Files      []string
	MaxWorkers int
}

// CompareFiles hashes every file in argument order and reports, for each
// file, its distance to every earlier file when that distance is within the
// cutoff. Hash computations run on a worker pool; the pairwise scan is
// sequential so matches keep first-encountered order.
func CompareFiles(options BatchOptions) ([]Match, error) {
	method, err := imagehash.MethodByName(options.Method)
	if err != nil {
		return nil, err
	}
	if options.Cutoff < 0 {
		return nil, fmt.Errorf("%w: negative cutoff %d", imagehash.ErrInvalidParameter, options.Cutoff)
	}

	maxWorkers := options.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 8
	}

	hashes := make([]*imagehash.ImageHash, len(options.Files))
	errs := make([]error, len(options.Files))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxWorkers)

	for i, file := range options.Files {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			img, err := imageloader.LoadImage(file)
			if err != nil {
				errs[i] = err
				return
			}
			h, err := method(img)
			if err != nil {
				errs[i] = fmt.Errorf("cannot hash %s: %w", file, err)
				return
			}
			hashes[i] = h
			logging.DebugLog("Hashed %s: %s", file, h.Hex())
		}(i, file)
	}
	wg.Wait()

	// Fail on the first bad file in argument order; there is no partial
	// success mode.
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", options.Files[i], err)
		}
	}

	var matches []Match
	for i := 1; i < len(hashes); i++ {
		for j := 0; j < i; j++ {
			d, err := hashes[i].Distance(hashes[j])
			if err != nil {
				return nil, err
			}
			if d <= options.Cutoff {
				matches = append(matches, Match{Distance: d, File: options.Files[i], Prior: options.Files[j]})
			}
		}
	}
	return matches, nil
}

// SearchOptions configures SearchDatabase.
type SearchOptions struct {
	QueryPath    string
	Cutoff       int
	SourcePrefix string
	DebugMode    bool
	HashSize     int
}

// storedMethods maps each supported search method to its digest column in a
// stored record and its size-aware hash computation.
var storedMethods = []struct {
	name    string
	hex     func(types.ImageInfo) string
	compute func(img image.Image, hashSize int) (*imagehash.ImageHash, error)
}{
	{
		"average_hash",
		func(i types.ImageInfo) string { return i.AverageHash },
		func(img image.Image, hashSize int) (*imagehash.ImageHash, error) {
			return imagehash.AverageHash(img, hashSize)
		},
	},
	{
		"phash",
		func(i types.ImageInfo) string { return i.PerceptualHash },
		func(img image.Image, hashSize int) (*imagehash.ImageHash, error) {
			return imagehash.PHash(img, hashSize, imagehash.DefaultHighfreqFactor)
		},
	},
	{
		"dhash",
		func(i types.ImageInfo) string { return i.DifferenceHash },
		func(img image.Image, hashSize int) (*imagehash.ImageHash, error) {
			return imagehash.DHash(img, hashSize)
		},
	},
	{
		"whash",
		func(i types.ImageInfo) string { return i.WaveletHash },
		func(img image.Image, hashSize int) (*imagehash.ImageHash, error) {
			return imagehash.WHash(img, imagehash.WHashOptions{HashSize: hashSize})
		},
	},
}

// SearchDatabase hashes the query image and ranks the stored images by their
// smallest Hamming distance across the stored digests. Only images within
// the cutoff are returned, closest first.
func SearchDatabase(db *sql.DB, options SearchOptions) ([]types.ImageMatch, error) {
	if options.DebugMode {
		logging.DebugLog("Starting image search for: %s", options.QueryPath)
		logging.DebugLog("Cutoff: %d, Source Prefix: %s", options.Cutoff, options.SourcePrefix)
	}
	hashSize := options.HashSize
	if hashSize <= 0 {
		hashSize = imagehash.DefaultHashSize
	}

	img, err := imageloader.LoadImage(options.QueryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load query image: %w", err)
	}

	queryHashes := make(map[string]*imagehash.ImageHash, len(storedMethods))
	for _, m := range storedMethods {
		h, err := m.compute(img, hashSize)
		if err != nil {
			return nil, fmt.Errorf("cannot compute %s for query: %w", m.name, err)
		}
		queryHashes[m.name] = h
		if options.DebugMode {
			logging.DebugLog("Query %s: %s", m.name, h.Hex())
		}
	}

	stored, err := database.QueryStoredImages(db, options.SourcePrefix)
	if err != nil {
		return nil, err
	}

	var matches []types.ImageMatch
	for _, info := range stored {
		best := -1
		bestMethod := ""
		for _, m := range storedMethods {
			hexDigest := m.hex(info)
			if hexDigest == "" {
				continue
			}
			storedHash, err := imagehash.FromString(hexDigest)
			if err != nil {
				logging.LogWarning("Corrupt %s digest for %s: %v", m.name, info.Path, err)
				continue
			}
			d, err := queryHashes[m.name].Distance(storedHash)
			if err != nil {
				continue
			}
			if best < 0 || d < best {
				best = d
				bestMethod = m.name
			}
		}

		if best >= 0 && best <= options.Cutoff {
			matches = append(matches, types.ImageMatch{
				Path:         info.Path,
				SourcePrefix: info.SourcePrefix,
				Method:       bestMethod,
				Distance:     best,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if options.DebugMode {
		logging.DebugLog("Search completed. Stored images: %d, matches: %d", len(stored), len(matches))
	}
	return matches, nil
}
