package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends understood by the engine
const (
	StorageFile  = "file"
	StorageAzure = "azure"
	StorageRedis = "redis"
	StorageS3    = "s3"
	StorageMongo = "mongo"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port    string `yaml:"port"`
	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file"`

	// Generative AI configuration
	GeminiAPIKey string `yaml:"gemini_api_key"`
	ContentModel string `yaml:"content_model"`
	ImageModel   string `yaml:"image_model"`
	DefaultTopic string `yaml:"default_topic"`

	// Automation configuration
	AutomationInterval   time.Duration `yaml:"automation_interval"`
	FailureBackoff       time.Duration `yaml:"failure_backoff"`
	StatsSchedule        string        `yaml:"stats_schedule"`
	TokenRefreshSchedule string        `yaml:"token_refresh_schedule"`

	// State storage configuration
	StorageBackend   string `yaml:"storage_backend"`
	StateDir         string `yaml:"state_dir"`
	StorageAccount   string `yaml:"azure_storage_account"`
	StorageContainer string `yaml:"azure_storage_container"`
	RedisAddr        string `yaml:"redis_addr"`
	RedisPassword    string `yaml:"redis_password"`
	RedisDB          int    `yaml:"redis_db"`
	S3Bucket         string `yaml:"s3_bucket"`
	S3Region         string `yaml:"s3_region"`
	S3Prefix         string `yaml:"s3_prefix"`
	MongoURI         string `yaml:"mongo_uri"`
	MongoDatabase    string `yaml:"mongo_database"`
	ArchiveRenders   bool   `yaml:"archive_renders"`

	// YouTube configuration
	YouTubeAPIBaseURL    string `yaml:"youtube_api_base_url"`
	YouTubeUploadBaseURL string `yaml:"youtube_upload_base_url"`
	GoogleClientID       string `yaml:"google_client_id"`
	GoogleClientSecret   string `yaml:"google_client_secret"`
	TokenFile            string `yaml:"token_file"`

	// Event streaming
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	// Notification configuration
	TeamsWebhookURL   string `yaml:"teams_webhook_url"`
	NotificationEmail string `yaml:"notification_email"`
	SMTPHost          string `yaml:"smtp_host"`
	SMTPPort          int    `yaml:"smtp_port"`
	SMTPUsername      string `yaml:"smtp_username"`
	SMTPPassword      string `yaml:"smtp_password"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:                 "8080",
		ContentModel:         "gemini-2.5-flash",
		ImageModel:           "imagen-3.0-generate-002",
		DefaultTopic:         "surprising historical facts",
		AutomationInterval:   30 * time.Minute,
		FailureBackoff:       time.Minute,
		StatsSchedule:        "0 */15 * * * *",
		TokenRefreshSchedule: "0 */45 * * * *",
		StorageBackend:       StorageFile,
		StateDir:             "data",
		StorageContainer:     "youtube-automation",
		RedisAddr:            "localhost:6379",
		S3Region:             "us-east-1",
		MongoDatabase:        "youtube_automation",
		YouTubeAPIBaseURL:    "https://www.googleapis.com/youtube/v3",
		YouTubeUploadBaseURL: "https://www.googleapis.com/upload/youtube/v3",
		TokenFile:            "token.json",
		KafkaTopic:           "video-status",
		SMTPPort:             587,
	}
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables. Environment variables take precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Debug = getBoolEnv("DEBUG", c.Debug)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", getEnv("API_KEY", c.GeminiAPIKey))
	c.ContentModel = getEnv("GEMINI_CONTENT_MODEL", c.ContentModel)
	c.ImageModel = getEnv("GEMINI_IMAGE_MODEL", c.ImageModel)
	c.DefaultTopic = getEnv("DEFAULT_TOPIC", c.DefaultTopic)

	c.AutomationInterval = getDurationEnv("AUTOMATION_INTERVAL", c.AutomationInterval)
	c.FailureBackoff = getDurationEnv("AUTOMATION_FAILURE_BACKOFF", c.FailureBackoff)
	c.StatsSchedule = getEnv("STATS_SCHEDULE", c.StatsSchedule)
	c.TokenRefreshSchedule = getEnv("TOKEN_REFRESH_SCHEDULE", c.TokenRefreshSchedule)

	c.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", c.StorageBackend))
	c.StateDir = getEnv("STATE_DIR", c.StateDir)
	c.StorageAccount = getEnv("AZURE_STORAGE_ACCOUNT", c.StorageAccount)
	c.StorageContainer = getEnv("AZURE_STORAGE_CONTAINER", c.StorageContainer)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getIntEnv("REDIS_DB", c.RedisDB)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3Prefix = getEnv("S3_PREFIX", c.S3Prefix)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.ArchiveRenders = getBoolEnv("ARCHIVE_RENDERS", c.ArchiveRenders)

	c.YouTubeAPIBaseURL = getEnv("YOUTUBE_API_BASE_URL", c.YouTubeAPIBaseURL)
	c.YouTubeUploadBaseURL = getEnv("YOUTUBE_UPLOAD_BASE_URL", c.YouTubeUploadBaseURL)
	c.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", c.GoogleClientID)
	c.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", c.GoogleClientSecret)
	c.TokenFile = getEnv("YOUTUBE_TOKEN_FILE", c.TokenFile)

	c.KafkaBrokers = getSliceEnv("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)

	c.TeamsWebhookURL = getEnv("TEAMS_WEBHOOK_URL", c.TeamsWebhookURL)
	c.NotificationEmail = getEnv("NOTIFICATION_EMAIL", c.NotificationEmail)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getIntEnv("SMTP_PORT", c.SMTPPort)
	c.SMTPUsername = getEnv("SMTP_USERNAME", c.SMTPUsername)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageFile:
		if c.StateDir == "" {
			return fmt.Errorf("STATE_DIR is required for the file storage backend")
		}
	case StorageAzure:
		if c.StorageAccount == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required for the azure storage backend")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis storage backend")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo storage backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of file, azure, redis, s3, mongo (got %q)", c.StorageBackend)
	}

	if c.AutomationInterval <= 0 {
		return fmt.Errorf("AUTOMATION_INTERVAL must be positive")
	}

	if c.FailureBackoff < 0 {
		return fmt.Errorf("AUTOMATION_FAILURE_BACKOFF must not be negative")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// OAuthConfigured reports whether headless token refresh is possible
func (c *Config) OAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}
