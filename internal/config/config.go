package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"` // bytes
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ImageDirectory  string        `mapstructure:"image_dir"`
	ImageBufferSize int           `mapstructure:"buffer_limit"`
	FlushInterval   int           `mapstructure:"flush_interval"` // seconds between buffer flushes
	ArchiveWorkers  int           `mapstructure:"archive_workers"`
	DatabasePath    string        `mapstructure:"db_path"`
	LogDirectory    string        `mapstructure:"log_dir"`
	LogLevel        string        `mapstructure:"log_level"`

	Primary ModelConfig  `mapstructure:"primary"`
	Species ModelConfig  `mapstructure:"species"`
	Fusion  FusionConfig `mapstructure:"fusion"`
	Redis   RedisConfig  `mapstructure:"redis"`
}

// ModelConfig describes one OpenCV DNN model and its preprocessing.
type ModelConfig struct {
	ModelPath     string  `mapstructure:"model_path"`
	ConfigPath    string  `mapstructure:"config_path"`
	LabelsPath    string  `mapstructure:"labels_path"`
	InputSize     int     `mapstructure:"input_size"`
	Scale         float64 `mapstructure:"scale"`
	Mean          float64 `mapstructure:"mean"`
	SwapRB        bool    `mapstructure:"swap_rb"`
	MinConfidence float64 `mapstructure:"min_confidence"` // rows below this never leave the detector
}

// FusionConfig holds the acceptance thresholds of the plant pipeline.
type FusionConfig struct {
	PlantMinConfidence   float64       `mapstructure:"plant_min_confidence"`
	MinIoU               float64       `mapstructure:"min_iou"`
	SpeciesMinConfidence float64       `mapstructure:"species_min_confidence"`
	SpeciesWorkers       int           `mapstructure:"species_workers"`
	InferenceTimeout     time.Duration `mapstructure:"inference_timeout"`
	CropQuality          int           `mapstructure:"crop_quality"` // JPEG quality of plant crops
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load reads configuration from defaults, an optional .env file (ENV_FILE), an optional
// YAML file named by CONFIG_FILE and environment variables, in increasing
// priority. Nested keys map to env vars with '.' replaced by '_', e.g.
// PRIMARY_MODEL_PATH or FUSION_MIN_IOU.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 2021)
	v.SetDefault("read_timeout", 30*time.Second)
	v.SetDefault("write_timeout", 60*time.Second)
	v.SetDefault("max_upload_size", 20<<20)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("image_dir", filepath.Join(".", "images"))
	v.SetDefault("buffer_limit", 16)
	v.SetDefault("flush_interval", 30)
	v.SetDefault("archive_workers", 1)
	v.SetDefault("db_path", filepath.Join(".", "data", "garden.db"))
	v.SetDefault("log_dir", filepath.Join(".", "logs"))
	v.SetDefault("log_level", "info")

	v.SetDefault("primary.model_path", filepath.Join(".", "models", "garden", "frozen_inference_graph.pb"))
	v.SetDefault("primary.config_path", filepath.Join(".", "models", "garden", "ssd_mobilenet_v2_garden.pbtxt"))
	v.SetDefault("primary.labels_path", filepath.Join(".", "models", "garden", "labels.txt"))
	v.SetDefault("primary.input_size", 300)
	v.SetDefault("primary.scale", 1.0/127.5)
	v.SetDefault("primary.mean", 127.5)
	v.SetDefault("primary.swap_rb", true)
	v.SetDefault("primary.min_confidence", 0.0)

	v.SetDefault("species.model_path", filepath.Join(".", "models", "species", "frozen_inference_graph.pb"))
	v.SetDefault("species.config_path", filepath.Join(".", "models", "species", "ssd_mobilenet_v2_species.pbtxt"))
	v.SetDefault("species.labels_path", filepath.Join(".", "models", "species", "labels.txt"))
	v.SetDefault("species.input_size", 300)
	v.SetDefault("species.scale", 1.0/127.5)
	v.SetDefault("species.mean", 127.5)
	v.SetDefault("species.swap_rb", true)
	v.SetDefault("species.min_confidence", 0.5)

	v.SetDefault("fusion.plant_min_confidence", 0.25)
	v.SetDefault("fusion.min_iou", 0.05)
	v.SetDefault("fusion.species_min_confidence", 0.90)
	v.SetDefault("fusion.species_workers", 1)
	v.SetDefault("fusion.inference_timeout", 20*time.Second)
	v.SetDefault("fusion.crop_quality", 90)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	thresholds := map[string]float64{
		"fusion.plant_min_confidence":   c.Fusion.PlantMinConfidence,
		"fusion.min_iou":                c.Fusion.MinIoU,
		"fusion.species_min_confidence": c.Fusion.SpeciesMinConfidence,
		"primary.min_confidence":        c.Primary.MinConfidence,
		"species.min_confidence":        c.Species.MinConfidence,
	}
	for key, value := range thresholds {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", key, value)
		}
	}
	if c.Primary.MinConfidence > c.Fusion.PlantMinConfidence {
		return fmt.Errorf("primary.min_confidence (%v) must not exceed fusion.plant_min_confidence (%v)",
			c.Primary.MinConfidence, c.Fusion.PlantMinConfidence)
	}
	if c.Fusion.SpeciesWorkers < 1 {
		return fmt.Errorf("fusion.species_workers must be positive, got %d", c.Fusion.SpeciesWorkers)
	}
	if c.ArchiveWorkers < 1 {
		return fmt.Errorf("archive_workers must be positive, got %d", c.ArchiveWorkers)
	}
	if c.Fusion.CropQuality < 1 || c.Fusion.CropQuality > 100 {
		return fmt.Errorf("fusion.crop_quality must be within [1,100], got %d", c.Fusion.CropQuality)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Primary.InputSize <= 0 || c.Species.InputSize <= 0 {
		return fmt.Errorf("model input sizes must be positive")
	}
	return nil
}
