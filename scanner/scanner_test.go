package scanner

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imagehasher/database"
)

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 8)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("cannot create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("cannot encode %s: %v", path, err)
	}
}

func TestScanAndStoreFolder(t *testing.T) {
	folder := t.TempDir()
	writePNG(t, filepath.Join(folder, "a.png"))
	writePNG(t, filepath.Join(folder, "b.png"))
	if err := os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatalf("cannot write text file: %v", err)
	}

	sub := filepath.Join(folder, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("cannot create subfolder: %v", err)
	}
	writePNG(t, filepath.Join(sub, "c.png"))

	dbPath := filepath.Join(t.TempDir(), "scan.db")
	db, err := database.InitDatabase(dbPath)
	if err != nil {
		t.Fatalf("InitDatabase() error: %v", err)
	}
	defer db.Close()

	options := ScanOptions{
		FolderPath:   folder,
		SourcePrefix: "test",
		DbPath:       dbPath,
		MaxWorkers:   2,
	}
	if err := ScanAndStoreFolder(db, options); err != nil {
		t.Fatalf("ScanAndStoreFolder() error: %v", err)
	}

	images, err := database.QueryStoredImages(db, "test")
	if err != nil {
		t.Fatalf("QueryStoredImages() error: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("indexed %d images, want 3", len(images))
	}
	for _, info := range images {
		if info.AverageHash == "" || info.PerceptualHash == "" ||
			info.DifferenceHash == "" || info.WaveletHash == "" {
			t.Errorf("missing digest for %s: %+v", info.Path, info)
		}
		// All files render the same gradient.
		if info.AverageHash != images[0].AverageHash {
			t.Errorf("identical images produced different digests: %s vs %s",
				info.AverageHash, images[0].AverageHash)
		}
	}
}

func TestScanSkipsUnchangedFiles(t *testing.T) {
	folder := t.TempDir()
	path := filepath.Join(folder, "a.png")
	writePNG(t, path)

	dbPath := filepath.Join(t.TempDir(), "scan.db")
	db, err := database.InitDatabase(dbPath)
	if err != nil {
		t.Fatalf("InitDatabase() error: %v", err)
	}
	defer db.Close()

	options := ScanOptions{FolderPath: folder, SourcePrefix: "test", DbPath: dbPath, MaxWorkers: 1}
	if err := ScanAndStoreFolder(db, options); err != nil {
		t.Fatalf("first scan error: %v", err)
	}
	if err := ScanAndStoreFolder(db, options); err != nil {
		t.Fatalf("second scan error: %v", err)
	}

	images, err := database.QueryStoredImages(db, "test")
	if err != nil {
		t.Fatalf("QueryStoredImages() error: %v", err)
	}
	if len(images) != 1 {
		t.Errorf("rescan duplicated rows: got %d, want 1", len(images))
	}
}

func TestCountFilesToProcess(t *testing.T) {
	folder := t.TempDir()
	writePNG(t, filepath.Join(folder, "a.png"))
	writePNG(t, filepath.Join(folder, "b.png"))
	if err := os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatalf("cannot write text file: %v", err)
	}

	stats := countFilesToProcess(ScanOptions{FolderPath: folder})
	if stats.totalFiles != 2 {
		t.Errorf("totalFiles = %d, want 2", stats.totalFiles)
	}
	if stats.rawFiles != 0 || stats.tifFiles != 0 {
		t.Errorf("rawFiles = %d, tifFiles = %d, want 0", stats.rawFiles, stats.tifFiles)
	}
}
