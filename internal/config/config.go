package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config represents the entire application configuration
type Config struct {
	Env     string        `json:"env"`
	Port    int           `json:"port"`
	AppName string        `json:"app_name"`
	MongoDB MongoDBConfig `json:"mongodb"`
	Redis   RedisConfig   `json:"redis"`
	Ingest  IngestConfig  `json:"ingest"`
	S3      S3Config      `json:"s3"`
	Logging LoggingConfig `json:"logging"`
	CORS    CORSConfig    `json:"cors"`
}

// MongoDBConfig contains MongoDB connection details
type MongoDBConfig struct {
	URI      string `json:"uri"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       string `json:"db"`
}

type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// IngestConfig controls the ingestion pipeline and its surrounding plumbing.
// ChunkSize bounds the pipeline's per-batch working set.
type IngestConfig struct {
	ChunkSize         int    `json:"chunk_size"`
	Workers           int    `json:"workers"`
	QueueDepth        int    `json:"queue_depth"`
	TempDir           string `json:"temp_dir"`
	RateLimitRequests int    `json:"rate_limit_requests"`
	RateLimitPeriod   int    `json:"rate_limit_period"`
}

// S3Config contains the source-archival bucket settings. Archival is skipped
// entirely when Enabled is false.
type S3Config struct {
	Enabled   bool   `json:"enabled"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
}

// LoggingConfig contains logging-related configurations
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age,omitempty"`
}

// LoadConfig reads configuration from the specified file path and applies
// defaults for anything left unset. It is called once at process start; the
// resulting struct is passed by reference and never reloaded mid-run.
func LoadConfig(filePath string) (*Config, error) {
	configData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(configData, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.AppName == "" {
		c.AppName = "locally-connector"
	}
	if c.MongoDB.DB == "" {
		c.MongoDB.DB = "locally_staging"
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 500
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.QueueDepth <= 0 {
		c.Ingest.QueueDepth = 64
	}
	if c.Ingest.TempDir == "" {
		c.Ingest.TempDir = os.TempDir()
	}
	if c.Ingest.RateLimitRequests <= 0 {
		c.Ingest.RateLimitRequests = 5
	}
	if c.Ingest.RateLimitPeriod <= 0 {
		c.Ingest.RateLimitPeriod = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	}
}
