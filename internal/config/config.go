package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	BaaS      BaaSConfig      `yaml:"baas"`
	Storage   StorageConfig   `yaml:"storage"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	View      ViewConfig      `yaml:"view"`
	Cache     CacheConfig     `yaml:"cache"`
	Swagger   SwaggerConfig   `yaml:"swagger"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	// PublicURL is the externally reachable base used for auth redirects.
	PublicURL string `yaml:"publicURL"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g. "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// BaaSConfig holds the connection settings for the backend-as-a-service
// provider (identity, row store and blob store share one base URL).
type BaaSConfig struct {
	BaseURL              string `yaml:"baseURL"`
	AnonKey              string `yaml:"anonKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RateLimit            int    `yaml:"rateLimit"`
	BurstLimit           int    `yaml:"burstLimit"`
}

// StorageConfig holds the avatar blob-store settings.
type StorageConfig struct {
	Bucket         string `yaml:"bucket"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

// SentimentConfig holds the market-sentiment feed settings.
type SentimentConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	CacheTTLMinutes      int    `yaml:"cacheTTLMinutes"`
}

// ViewConfig holds dashboard view defaults.
type ViewConfig struct {
	PageSize int `yaml:"pageSize"`
}

// CacheConfig holds the in-memory cache settings shared by the view-state
// and toast stores.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoadConfig loads configuration from a YAML file and applies defaults
// for anything not set.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:" + strings.TrimPrefix(cfg.Server.Port, ":")
		logrus.Infof("Server.PublicURL not set, defaulting to %s", cfg.Server.PublicURL)
	}

	if cfg.BaaS.RequestTimeoutMillis == 0 {
		cfg.BaaS.RequestTimeoutMillis = 10000
		logrus.Infof("BaaS.RequestTimeoutMillis not set, defaulting to %d ms", cfg.BaaS.RequestTimeoutMillis)
	}
	if cfg.BaaS.RateLimit == 0 {
		cfg.BaaS.RateLimit = 20
	}
	if cfg.BaaS.BurstLimit == 0 {
		cfg.BaaS.BurstLimit = 5
	}

	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "avatars"
	}
	if cfg.Storage.MaxUploadBytes == 0 {
		cfg.Storage.MaxUploadBytes = 5 * 1024 * 1024
	}

	if cfg.Sentiment.BaseURL == "" {
		cfg.Sentiment.BaseURL = "https://api.alternative.me"
		logrus.Infof("Sentiment.BaseURL not set, defaulting to %s", cfg.Sentiment.BaseURL)
	}
	if cfg.Sentiment.RequestTimeoutMillis == 0 {
		cfg.Sentiment.RequestTimeoutMillis = 10000
	}
	if cfg.Sentiment.CacheTTLMinutes == 0 {
		cfg.Sentiment.CacheTTLMinutes = 60
		logrus.Infof("Sentiment.CacheTTLMinutes not set, defaulting to %d minutes", cfg.Sentiment.CacheTTLMinutes)
	}

	if cfg.View.PageSize == 0 {
		cfg.View.PageSize = 50
	}

	if cfg.Cache.DefaultExpirationMinutes == 0 {
		cfg.Cache.DefaultExpirationMinutes = 12 * 60
	}
	if cfg.Cache.CleanupIntervalMinutes == 0 {
		cfg.Cache.CleanupIntervalMinutes = 30
	}

	if cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}
