package database

import (
	"database/sql"
	"fmt"
	"time"

	"imagehasher/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection, creating the
// schema when missing.
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		source_prefix TEXT,
		format TEXT,
		width INTEGER,
		height INTEGER,
		created_at TEXT,
		modified_at TEXT,
		size INTEGER,
		average_hash TEXT,
		perceptual_hash TEXT,
		difference_hash TEXT,
		wavelet_hash TEXT,
		UNIQUE(path, source_prefix)
	);
	CREATE INDEX IF NOT EXISTS idx_path ON images(path);
	CREATE INDEX IF NOT EXISTS idx_average_hash ON images(average_hash);
	CREATE INDEX IF NOT EXISTS idx_perceptual_hash ON images(perceptual_hash);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenDatabase opens an existing database connection.
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// CheckImageExists checks if an image already exists in the database and
// returns its stored modification time.
func CheckImageExists(db *sql.DB, path string, sourcePrefix string) (bool, string, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM images WHERE path = ? AND source_prefix = ?", path, sourcePrefix).Scan(&count)
	if err != nil {
		return false, "", fmt.Errorf("database error for %s: %v", path, err)
	}

	if count == 0 {
		return false, "", nil
	}

	var storedModTime string
	err = db.QueryRow("SELECT modified_at FROM images WHERE path = ? AND source_prefix = ?", path, sourcePrefix).Scan(&storedModTime)
	if err != nil {
		return true, "", fmt.Errorf("cannot get modified time for %s: %v", path, err)
	}

	return true, storedModTime, nil
}

// StoreImageInfo stores one image's metadata and hash digests.
func StoreImageInfo(db *sql.DB, imageInfo types.ImageInfo, forceRewrite bool) error {
	now := time.Now().Format(time.RFC3339)

	var stmt *sql.Stmt
	var insertErr error

	if forceRewrite {
		stmt, insertErr = db.Prepare(`
			INSERT OR REPLACE INTO images (
				path, source_prefix, format, width, height, created_at, modified_at, size,
				average_hash, perceptual_hash, difference_hash, wavelet_hash
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	} else {
		stmt, insertErr = db.Prepare(`
			INSERT OR IGNORE INTO images (
				path, source_prefix, format, width, height, created_at, modified_at, size,
				average_hash, perceptual_hash, difference_hash, wavelet_hash
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	}

	if insertErr != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", imageInfo.Path, insertErr)
	}
	defer stmt.Close()

	_, err := stmt.Exec(
		imageInfo.Path,
		imageInfo.SourcePrefix,
		imageInfo.Format,
		imageInfo.Width,
		imageInfo.Height,
		now,
		imageInfo.ModifiedAt,
		imageInfo.Size,
		imageInfo.AverageHash,
		imageInfo.PerceptualHash,
		imageInfo.DifferenceHash,
		imageInfo.WaveletHash,
	)

	if err != nil {
		return fmt.Errorf("cannot insert data for %s: %v", imageInfo.Path, err)
	}

	return nil
}

// QueryStoredImages retrieves the stored digests, optionally filtered by
// source prefix.
func QueryStoredImages(db *sql.DB, sourcePrefix string) ([]types.ImageInfo, error) {
	query := `SELECT path, source_prefix, average_hash, perceptual_hash, difference_hash, wavelet_hash
		FROM images WHERE source_prefix = ? OR ? = ''`

	rows, err := db.Query(query, sourcePrefix, sourcePrefix)
	if err != nil {
		return nil, fmt.Errorf("database query error: %v", err)
	}
	defer rows.Close()

	var images []types.ImageInfo
	for rows.Next() {
		var info types.ImageInfo
		if err := rows.Scan(&info.Path, &info.SourcePrefix, &info.AverageHash,
			&info.PerceptualHash, &info.DifferenceHash, &info.WaveletHash); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		images = append(images, info)
	}
	return images, rows.Err()
}

// ScanStats contains statistics from a scan operation.
type ScanStats struct {
	TotalImages  int
	ErrorCount   int
	UniqueHashes int
}

// GetScanStats retrieves statistics about indexed images.
func GetScanStats(db *sql.DB, sourcePrefix string) (*ScanStats, error) {
	var stats ScanStats

	var totalQuery string
	var args []interface{}

	if sourcePrefix != "" {
		totalQuery = "SELECT COUNT(*) FROM images WHERE source_prefix = ?"
		args = append(args, sourcePrefix)
	} else {
		totalQuery = "SELECT COUNT(*) FROM images"
	}

	if err := db.QueryRow(totalQuery, args...).Scan(&stats.TotalImages); err != nil {
		return nil, fmt.Errorf("failed to get total images: %v", err)
	}

	var hashQuery string
	if sourcePrefix != "" {
		hashQuery = "SELECT COUNT(DISTINCT average_hash) FROM images WHERE source_prefix = ?"
	} else {
		hashQuery = "SELECT COUNT(DISTINCT average_hash) FROM images"
	}

	if err := db.QueryRow(hashQuery, args...).Scan(&stats.UniqueHashes); err != nil {
		return nil, fmt.Errorf("failed to get unique hashes: %v", err)
	}

	return &stats, nil
}
