package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr              string   `json:"addr" yaml:"addr" toml:"addr"`
	UploadDir         string   `json:"upload_dir" yaml:"upload_dir" toml:"upload_dir"`
	ModelPath         string   `json:"model_path" yaml:"model_path" toml:"model_path"`
	LabelsPath        string   `json:"labels_path" yaml:"labels_path" toml:"labels_path"`
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions" toml:"allowed_extensions"`
	InputWidth        int      `json:"input_width" yaml:"input_width" toml:"input_width"`
	InputHeight       int      `json:"input_height" yaml:"input_height" toml:"input_height"`
	Layout            string   `json:"layout" yaml:"layout" toml:"layout"`
	ResizeFilter      string   `json:"resize_filter" yaml:"resize_filter" toml:"resize_filter"`
	ScoreMode         string   `json:"score_mode" yaml:"score_mode" toml:"score_mode"`
	InferTimeoutSec   int      `json:"infer_timeout_seconds" yaml:"infer_timeout_seconds" toml:"infer_timeout_seconds"`
	MaxUploadBytes    int64    `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	MaxPixels         int      `json:"max_pixels" yaml:"max_pixels" toml:"max_pixels"`
	LogLevel          string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	ONNXLibraryPath   string   `json:"onnx_library_path" yaml:"onnx_library_path" toml:"onnx_library_path"`
	Store             Store    `json:"store" yaml:"store" toml:"store"`
	Kafka             Kafka    `json:"kafka" yaml:"kafka" toml:"kafka"`
	CORS              CORS     `json:"cors" yaml:"cors" toml:"cors"`
}

// Store selects and configures the prediction record store.
type Store struct {
	Driver        string `json:"driver" yaml:"driver" toml:"driver"` // memory|sqlite|postgres|redis
	DSN           string `json:"dsn" yaml:"dsn" toml:"dsn"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" toml:"redis_db"`
	RedisKey      string `json:"redis_key" yaml:"redis_key" toml:"redis_key"`
}

// Kafka enables publishing prediction events. Empty Brokers disables it.
type Kafka struct {
	Brokers []string `json:"brokers" yaml:"brokers" toml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic" toml:"topic"`
}

// CORS is opt-in; when disabled no CORS middleware is installed.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Defaults applied by WithDefaults.
const (
	DefaultAddr           = ":8080"
	DefaultUploadDir      = "uploads"
	DefaultModelPath      = "model.onnx"
	DefaultLabelsPath     = "labels.txt"
	DefaultInputSize      = 224
	DefaultLayout         = "nhwc"
	DefaultResizeFilter   = "bilinear"
	DefaultScoreMode      = "probabilities"
	DefaultMaxUploadBytes = 16 << 20
	DefaultMaxPixels      = 50_000_000
	DefaultLogLevel       = "info"
	DefaultStoreDriver    = "sqlite"
	DefaultSQLiteDSN      = "images.db"
	DefaultRedisKey       = "imgclassd:predictions"
	DefaultKafkaTopic     = "predictions"
)

// DefaultAllowedExtensions mirrors the image types accepted by the upload endpoint.
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// WithDefaults returns a copy of cfg with unspecified fields filled in.
func (cfg Config) WithDefaults() Config {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = DefaultUploadDir
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	if cfg.LabelsPath == "" {
		cfg.LabelsPath = DefaultLabelsPath
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}
	if cfg.InputWidth <= 0 {
		cfg.InputWidth = DefaultInputSize
	}
	if cfg.InputHeight <= 0 {
		cfg.InputHeight = DefaultInputSize
	}
	if cfg.Layout == "" {
		cfg.Layout = DefaultLayout
	}
	if cfg.ResizeFilter == "" {
		cfg.ResizeFilter = DefaultResizeFilter
	}
	if cfg.ScoreMode == "" {
		cfg.ScoreMode = DefaultScoreMode
	}
	if cfg.InferTimeoutSec < 0 {
		cfg.InferTimeoutSec = 0
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultStoreDriver
	}
	if cfg.Store.Driver == "sqlite" && cfg.Store.DSN == "" {
		cfg.Store.DSN = DefaultSQLiteDSN
	}
	if cfg.Store.RedisKey == "" {
		cfg.Store.RedisKey = DefaultRedisKey
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	return cfg
}

// ApplyEnv overrides fields from IMGCLASSD_* environment variables.
// getenv is usually os.Getenv; tests pass a map lookup.
func (cfg Config) ApplyEnv(getenv func(string) string) Config {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	str("IMGCLASSD_ADDR", &cfg.Addr)
	str("IMGCLASSD_UPLOAD_DIR", &cfg.UploadDir)
	str("IMGCLASSD_MODEL_PATH", &cfg.ModelPath)
	str("IMGCLASSD_LABELS_PATH", &cfg.LabelsPath)
	str("IMGCLASSD_LOG_LEVEL", &cfg.LogLevel)
	str("IMGCLASSD_ONNX_LIBRARY_PATH", &cfg.ONNXLibraryPath)
	str("IMGCLASSD_STORE_DRIVER", &cfg.Store.Driver)
	str("IMGCLASSD_STORE_DSN", &cfg.Store.DSN)
	str("IMGCLASSD_REDIS_ADDR", &cfg.Store.RedisAddr)
	str("IMGCLASSD_REDIS_PASSWORD", &cfg.Store.RedisPassword)
	num("IMGCLASSD_INFER_TIMEOUT_SECONDS", &cfg.InferTimeoutSec)
	num("IMGCLASSD_MAX_PIXELS", &cfg.MaxPixels)
	if v := getenv("IMGCLASSD_ALLOWED_EXTENSIONS"); v != "" {
		cfg.AllowedExtensions = SplitCSV(v)
	}
	if v := getenv("IMGCLASSD_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = SplitCSV(v)
	}
	return cfg
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
