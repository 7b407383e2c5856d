package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.StorageDriver != "minio" {
		t.Errorf("expected default storage driver 'minio', got '%s'", cfg.StorageDriver)
	}
	if cfg.BucketUploads != DefaultUploadsBucket {
		t.Errorf("expected default uploads bucket '%s', got '%s'", DefaultUploadsBucket, cfg.BucketUploads)
	}
	if cfg.NumStagingWorkers != defaultNumStagingWorkers {
		t.Errorf("expected %d staging workers, got %d", defaultNumStagingWorkers, cfg.NumStagingWorkers)
	}
	if cfg.JobTimeout != 5*time.Minute {
		t.Errorf("expected default job timeout 5m, got %v", cfg.JobTimeout)
	}
	if cfg.ResultRetention != 24*time.Hour {
		t.Errorf("expected default result retention 24h, got %v", cfg.ResultRetention)
	}
	if cfg.SynthesizerBackend != "imagen" {
		t.Errorf("expected default synthesizer backend 'imagen', got '%s'", cfg.SynthesizerBackend)
	}
	if cfg.MaxEncodeDimension != defaultMaxEncodeDim {
		t.Errorf("expected default max encode dimension %d, got %d", defaultMaxEncodeDim, cfg.MaxEncodeDimension)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("NUM_STAGING_WORKERS", "4")
	t.Setenv("JOB_TIMEOUT_MINUTES", "10")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.StorageDriver != "local" {
		t.Errorf("expected storage driver 'local', got '%s'", cfg.StorageDriver)
	}
	if cfg.NumStagingWorkers != 4 {
		t.Errorf("expected 4 staging workers, got %d", cfg.NumStagingWorkers)
	}
	if cfg.JobTimeout != 10*time.Minute {
		t.Errorf("expected job timeout 10m, got %v", cfg.JobTimeout)
	}
}

func TestInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("NUM_STAGING_WORKERS", "not-a-number")
	t.Setenv("STALE_JOB_AGE_MINUTES", "-3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.NumStagingWorkers != defaultNumStagingWorkers {
		t.Errorf("expected fallback to %d staging workers, got %d", defaultNumStagingWorkers, cfg.NumStagingWorkers)
	}
	if cfg.StaleJobAge != 15*time.Minute {
		t.Errorf("expected fallback stale job age 15m, got %v", cfg.StaleJobAge)
	}
}
