package comparer

import (
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imagehasher/database"
	"imagehasher/imagehash"
	"imagehasher/imageloader"
	"imagehasher/types"
)

// writeTestPNG renders and encodes a gradient with the given brightness
// offset. Identical offsets produce identical files.
func writeTestPNG(t *testing.T, dir, name string, offset int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := x*3 + offset
			if v > 255 {
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("cannot create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("cannot encode %s: %v", path, err)
	}
	return path
}

// writeNoisePNG renders a deterministic high-frequency pattern.
func writeNoisePNG(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*31 + y*57 + x*y*13) % 256)})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("cannot create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("cannot encode %s: %v", path, err)
	}
	return path
}

func TestCompareFilesFindsDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png", 0)
	b := writeTestPNG(t, dir, "b.png", 0)
	c := writeNoisePNG(t, dir, "c.png")

	matches, err := CompareFiles(BatchOptions{
		Method: "average_hash",
		Cutoff: 0,
		Files:  []string{a, b, c},
	})
	if err != nil {
		t.Fatalf("CompareFiles() error: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	m := matches[0]
	if m.Distance != 0 || m.File != b || m.Prior != a {
		t.Errorf("match = %+v, want {0 %s %s}", m, b, a)
	}
}

func TestCompareFilesOrdering(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png", 0)
	b := writeTestPNG(t, dir, "b.png", 10)
	c := writeTestPNG(t, dir, "c.png", 20)

	// A cutoff of 64 admits every 8x8 pair.
	matches, err := CompareFiles(BatchOptions{
		Method: "average_hash",
		Cutoff: 64,
		Files:  []string{a, b, c},
	})
	if err != nil {
		t.Fatalf("CompareFiles() error: %v", err)
	}

	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3: %+v", len(matches), matches)
	}
	wantPairs := []struct{ file, prior string }{
		{b, a},
		{c, a},
		{c, b},
	}
	for i, want := range wantPairs {
		if matches[i].File != want.file || matches[i].Prior != want.prior {
			t.Errorf("match %d = {%s %s}, want {%s %s}",
				i, matches[i].File, matches[i].Prior, want.file, want.prior)
		}
	}
}

func TestCompareFilesUnknownMethod(t *testing.T) {
	_, err := CompareFiles(BatchOptions{Method: "md5", Cutoff: 5})
	if !errors.Is(err, imagehash.ErrUnknownMethod) {
		t.Errorf("CompareFiles(md5) = %v, want ErrUnknownMethod", err)
	}
}

func TestCompareFilesNegativeCutoff(t *testing.T) {
	_, err := CompareFiles(BatchOptions{Method: "dhash", Cutoff: -1})
	if !errors.Is(err, imagehash.ErrInvalidParameter) {
		t.Errorf("CompareFiles(cutoff -1) = %v, want ErrInvalidParameter", err)
	}
}

func TestCompareFilesMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png", 0)
	missing := filepath.Join(dir, "missing.png")

	_, err := CompareFiles(BatchOptions{
		Method: "average_hash",
		Cutoff: 10,
		Files:  []string{a, missing},
	})
	if err == nil {
		t.Fatal("CompareFiles() with a missing file should fail")
	}
}

func TestCompareFilesEmptyInput(t *testing.T) {
	matches, err := CompareFiles(BatchOptions{Method: "phash", Cutoff: 10})
	if err != nil {
		t.Fatalf("CompareFiles() error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches for no files, want 0", len(matches))
	}
}

func storeHashes(t *testing.T, db *sql.DB, path, prefix string, hashSize int) {
	t.Helper()

	img, err := imageloader.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage(%s) error: %v", path, err)
	}
	avg, err := imagehash.AverageHash(img, hashSize)
	if err != nil {
		t.Fatalf("AverageHash() error: %v", err)
	}
	per, err := imagehash.PHash(img, hashSize, imagehash.DefaultHighfreqFactor)
	if err != nil {
		t.Fatalf("PHash() error: %v", err)
	}
	dif, err := imagehash.DHash(img, hashSize)
	if err != nil {
		t.Fatalf("DHash() error: %v", err)
	}
	wav, err := imagehash.WHash(img, imagehash.WHashOptions{HashSize: hashSize})
	if err != nil {
		t.Fatalf("WHash() error: %v", err)
	}

	info := types.ImageInfo{
		Path:           path,
		SourcePrefix:   prefix,
		Format:         "png",
		AverageHash:    avg.Hex(),
		PerceptualHash: per.Hex(),
		DifferenceHash: dif.Hex(),
		WaveletHash:    wav.Hex(),
	}
	if err := database.StoreImageInfo(db, info, false); err != nil {
		t.Fatalf("StoreImageInfo() error: %v", err)
	}
}

func TestSearchDatabase(t *testing.T) {
	dir := t.TempDir()
	stored := writeTestPNG(t, dir, "stored.png", 0)
	noise := writeNoisePNG(t, dir, "noise.png")
	query := writeTestPNG(t, dir, "query.png", 0)

	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "search.db"))
	if err != nil {
		t.Fatalf("InitDatabase() error: %v", err)
	}
	defer db.Close()

	storeHashes(t, db, stored, "test", imagehash.DefaultHashSize)
	storeHashes(t, db, noise, "test", imagehash.DefaultHashSize)

	matches, err := SearchDatabase(db, SearchOptions{
		QueryPath: query,
		Cutoff:    2,
	})
	if err != nil {
		t.Fatalf("SearchDatabase() error: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if matches[0].Path != stored {
		t.Errorf("matched %s, want %s", matches[0].Path, stored)
	}
	if matches[0].Distance != 0 {
		t.Errorf("distance = %d, want 0", matches[0].Distance)
	}
}

func TestSearchDatabaseCustomHashSize(t *testing.T) {
	dir := t.TempDir()
	stored := writeTestPNG(t, dir, "stored.png", 0)
	query := writeTestPNG(t, dir, "query.png", 0)

	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "search.db"))
	if err != nil {
		t.Fatalf("InitDatabase() error: %v", err)
	}
	defer db.Close()

	// Digests indexed at a non-default size must match queries at that size.
	storeHashes(t, db, stored, "test", 16)

	matches, err := SearchDatabase(db, SearchOptions{
		QueryPath: query,
		Cutoff:    2,
		HashSize:  16,
	})
	if err != nil {
		t.Fatalf("SearchDatabase() error: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if matches[0].Distance != 0 {
		t.Errorf("distance = %d, want 0", matches[0].Distance)
	}
}

func TestSearchDatabaseMissingQuery(t *testing.T) {
	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "search.db"))
	if err != nil {
		t.Fatalf("InitDatabase() error: %v", err)
	}
	defer db.Close()

	_, err = SearchDatabase(db, SearchOptions{QueryPath: "/no/such/query.png", Cutoff: 5})
	if err == nil {
		t.Error("SearchDatabase() with a missing query image should fail")
	}
}
