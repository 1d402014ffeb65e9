package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 2021 {
		t.Errorf("Port = %d, expected 2021", cfg.Port)
	}
	if cfg.Fusion.MinIoU != 0.05 {
		t.Errorf("MinIoU = %v, expected 0.05", cfg.Fusion.MinIoU)
	}
	if cfg.Fusion.SpeciesMinConfidence != 0.90 {
		t.Errorf("SpeciesMinConfidence = %v, expected 0.90", cfg.Fusion.SpeciesMinConfidence)
	}
	if cfg.Fusion.PlantMinConfidence != 0.25 {
		t.Errorf("PlantMinConfidence = %v, expected 0.25", cfg.Fusion.PlantMinConfidence)
	}
	if cfg.Redis.TTL != 24*time.Hour {
		t.Errorf("Redis TTL = %v, expected 24h", cfg.Redis.TTL)
	}
	if cfg.Primary.InputSize != 300 {
		t.Errorf("Primary.InputSize = %d, expected 300", cfg.Primary.InputSize)
	}
	if cfg.Primary.MinConfidence != 0 {
		t.Errorf("Primary.MinConfidence = %v, expected 0", cfg.Primary.MinConfidence)
	}
	if cfg.ArchiveWorkers != 1 {
		t.Errorf("ArchiveWorkers = %d, expected 1", cfg.ArchiveWorkers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults rejected: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FUSION_MIN_IOU", "0.1")
	t.Setenv("FUSION_SPECIES_WORKERS", "4")
	t.Setenv("FUSION_INFERENCE_TIMEOUT", "5s")
	t.Setenv("PRIMARY_MODEL_PATH", "/models/yard.pb")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, expected 9090", cfg.Port)
	}
	if cfg.Fusion.MinIoU != 0.1 {
		t.Errorf("MinIoU = %v, expected 0.1", cfg.Fusion.MinIoU)
	}
	if cfg.Fusion.SpeciesWorkers != 4 {
		t.Errorf("SpeciesWorkers = %d, expected 4", cfg.Fusion.SpeciesWorkers)
	}
	if cfg.Fusion.InferenceTimeout != 5*time.Second {
		t.Errorf("InferenceTimeout = %v, expected 5s", cfg.Fusion.InferenceTimeout)
	}
	if cfg.Primary.ModelPath != "/models/yard.pb" {
		t.Errorf("Primary.ModelPath = %q", cfg.Primary.ModelPath)
	}
	if !cfg.Redis.Enabled {
		t.Error("Redis should be enabled")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, ".env"))
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FUSION_PLANT_MIN_CONFIDENCE=0.4\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FUSION_PLANT_MIN_CONFIDENCE") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Fusion.PlantMinConfidence != 0.4 {
		t.Errorf("PlantMinConfidence = %v, expected 0.4", cfg.Fusion.PlantMinConfidence)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "fusion:\n  min_iou: 0.2\n  crop_quality: 75\nspecies:\n  labels_path: /srv/species.txt\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write yaml: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Fusion.MinIoU != 0.2 || cfg.Fusion.CropQuality != 75 {
		t.Errorf("yaml not applied: %+v", cfg.Fusion)
	}
	if cfg.Species.LabelsPath != "/srv/species.txt" {
		t.Errorf("Species.LabelsPath = %q", cfg.Species.LabelsPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"iou above one", func(c *Config) { c.Fusion.MinIoU = 1.5 }},
		{"negative plant floor", func(c *Config) { c.Fusion.PlantMinConfidence = -0.1 }},
		{"no workers", func(c *Config) { c.Fusion.SpeciesWorkers = 0 }},
		{"bad quality", func(c *Config) { c.Fusion.CropQuality = 0 }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"zero input", func(c *Config) { c.Species.InputSize = 0 }},
		{"primary floor above plant floor", func(c *Config) { c.Primary.MinConfidence = 0.3 }},
		{"no archive workers", func(c *Config) { c.ArchiveWorkers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Port:           2021,
		ArchiveWorkers: 1,
		Primary:        ModelConfig{InputSize: 300},
		Species:        ModelConfig{InputSize: 300, MinConfidence: 0.5},
		Fusion: FusionConfig{
			PlantMinConfidence:   0.25,
			MinIoU:               0.05,
			SpeciesMinConfidence: 0.9,
			SpeciesWorkers:       1,
			CropQuality:          90,
		},
	}
}
