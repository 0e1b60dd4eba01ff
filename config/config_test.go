package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HashSize != 8 {
		t.Errorf("HashSize = %d, want 8", cfg.HashSize)
	}
	if cfg.MaxWorkers != 0 {
		t.Errorf("MaxWorkers = %d, want 0", cfg.MaxWorkers)
	}
	if cfg.LogFile != "imagehasher.log" {
		t.Errorf("LogFile = %q, want \"imagehasher.log\"", cfg.LogFile)
	}
	if cfg.DefaultCutoff != 10 {
		t.Errorf("DefaultCutoff = %d, want 10", cfg.DefaultCutoff)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("IMAGEHASHER_DATABASE", "/var/lib/images.db")
	t.Setenv("IMAGEHASHER_HASH_SIZE", "16")
	t.Setenv("IMAGEHASHER_MAX_WORKERS", "4")
	t.Setenv("IMAGEHASHER_CUTOFF", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DatabasePath != "/var/lib/images.db" {
		t.Errorf("DatabasePath = %q, want \"/var/lib/images.db\"", cfg.DatabasePath)
	}
	if cfg.HashSize != 16 {
		t.Errorf("HashSize = %d, want 16", cfg.HashSize)
	}
	if cfg.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, want 4", cfg.MaxWorkers)
	}
	if cfg.DefaultCutoff != 3 {
		t.Errorf("DefaultCutoff = %d, want 3", cfg.DefaultCutoff)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("IMAGEHASHER_HASH_SIZE", "huge")

	if _, err := Load(); err == nil {
		t.Error("Load() with a non-numeric hash size should fail")
	}
}
