package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the gemdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Refiner   RefinerConfig   `yaml:"refiner"`
	Reranker  RerankerConfig  `yaml:"reranker"`
	Cache     CacheConfig     `yaml:"cache"`
	Fusion    FusionConfig    `yaml:"fusion"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds catalog table and asset settings.
type CatalogConfig struct {
	Path      string `yaml:"path"`       // CSV table with path/category/description columns
	AssetsDir string `yaml:"assets_dir"` // root for item image files; empty disables base64 payloads
}

// IndexConfig holds vector index settings. The photo and sketch indices are
// built offline over the same catalog row order.
type IndexConfig struct {
	PhotoPath  string `yaml:"photo_path"`
	SketchPath string `yaml:"sketch_path"` // empty disables sketch search
	Dimensions int    `yaml:"dimensions"`
	CandidateK int    `yaml:"candidate_k"` // nearest neighbours retrieved before filtering
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	TextModel   string `yaml:"text_model"`
	ImageModel  string `yaml:"image_model"`
	SketchModel string `yaml:"sketch_model"`
	Dimensions  int    `yaml:"dimensions"`
}

// RefinerConfig holds the handwriting OCR/refinement provider settings. One
// vision-capable chat model serves both the transcription and cleanup passes.
type RefinerConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// RerankerConfig holds the cross-encoder scoring service settings.
type RerankerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CacheConfig holds the embedding cache backend settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
}

// FusionConfig holds score fusion settings.
type FusionConfig struct {
	VisualWeight  float64 `yaml:"visual_weight"`
	LexicalWeight float64 `yaml:"lexical_weight"`
	RerankPool    int     `yaml:"rerank_pool"` // fused shortlist size fed to the reranker
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Dimensions <= 0 {
		c.Index.Dimensions = 512
	}
	if c.Index.CandidateK <= 0 {
		c.Index.CandidateK = 50
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = c.Index.Dimensions
	}
	if c.Reranker.TimeoutSec <= 0 {
		c.Reranker.TimeoutSec = 15
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Fusion.VisualWeight == 0 && c.Fusion.LexicalWeight == 0 {
		c.Fusion.VisualWeight = 0.4
		c.Fusion.LexicalWeight = 0.6
	}
	if c.Fusion.RerankPool <= 0 {
		c.Fusion.RerankPool = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Index.PhotoPath == "" {
		return fmt.Errorf("index.photo_path is required")
	}
	if c.Embedding.BaseURL == "" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.base_url or embedding.api_key is required")
	}
	if c.Fusion.VisualWeight < 0 || c.Fusion.LexicalWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative")
	}
	if sum := c.Fusion.VisualWeight + c.Fusion.LexicalWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("fusion weights must sum to 1, got %g", sum)
	}
	if c.Refiner.Enabled && c.Refiner.Model == "" {
		return fmt.Errorf("refiner.model is required when the refiner is enabled")
	}
	if c.Reranker.Enabled && c.Reranker.BaseURL == "" {
		return fmt.Errorf("reranker.base_url is required when the reranker is enabled")
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache is enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
