package types

// ImageInfo holds the metadata and hash digests stored for one image.
type ImageInfo struct {
	ID             int64  `json:"id"`
	Path           string `json:"path"`
	SourcePrefix   string `json:"source_prefix"`
	Format         string `json:"format"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	CreatedAt      string `json:"created_at"`
	ModifiedAt     string `json:"modified_at"`
	Size           int64  `json:"size"`
	AverageHash    string `json:"average_hash"`
	PerceptualHash string `json:"perceptual_hash"`
	DifferenceHash string `json:"difference_hash"`
	WaveletHash    string `json:"wavelet_hash"`
	IsRawFormat    bool   `json:"is_raw_format"`
}

// ImageMatch holds one search result: the stored image plus the smallest
// Hamming distance across the compared hash methods.
type ImageMatch struct {
	Path         string
	SourcePrefix string
	Method       string
	Distance     int
}
