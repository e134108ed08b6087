package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	OpenFoodFacts OpenFoodFactsConfig
	Cache         CacheConfig
	RateLimit     RateLimitConfig
	Upload        UploadConfig
	Database      DatabaseConfig
	Suggestions   SuggestionsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// OpenFoodFactsConfig holds product database configuration
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// UploadConfig holds temporary upload storage configuration
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxPixels         int64    `mapstructure:"max_pixels"` // width*height ceiling for decoded images
}

// DatabaseConfig holds the user store location
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SuggestionsConfig holds the allergies and conditions offered at registration
type SuggestionsConfig struct {
	Allergies        []string `mapstructure:"allergies"`
	HealthConditions []string `mapstructure:"health_conditions"`
}

// DefaultSuggestedAllergies are offered when no list is configured
var DefaultSuggestedAllergies = []string{
	"Peanuts", "Dust", "Pollen", "Gluten", "Dairy", "Eggs", "Fish", "Shellfish",
	"Soy", "Wheat", "Tree Nuts", "Corn", "Sesame", "Mustard", "Sulfites",
	"Nightshades", "Legumes", "Citrus", "Bananas", "Chocolate", "Alcohol",
	"Histamine", "Salicylates", "Mushrooms", "Lactose",
}

// DefaultSuggestedHealthConditions are offered when no list is configured
var DefaultSuggestedHealthConditions = []string{
	"Diabetes", "Hypertension", "Asthma", "Thyroid", "Celiac Disease",
	"Kidney Disease", "Gout", "Lactose Intolerance", "IBS", "Histamine Intolerance",
	"Alpha-gal Syndrome", "Hypersensitivity", "Oral Allergy Syndrome",
	"Shellfish Allergy", "Fish Allergy", "Gluten Sensitivity", "Insulin Resistance",
	"Autoimmune Diseases", "Heart Disease", "High Cholesterol",
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/foodguard/")

	// FOODGUARD_OPENFOODFACTS_BASE_URL -> openfoodfacts.base_url
	v.SetEnvPrefix("FOODGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_bytes", 10<<20) // 10 MiB

	// OpenFoodFacts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.timeout", "5s")
	v.SetDefault("openfoodfacts.user_agent", "FoodGuard/1.0")
	v.SetDefault("openfoodfacts.requests_per_minute", 100)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)

	// Upload defaults
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.allowed_extensions", []string{"png", "jpg", "jpeg"})
	v.SetDefault("upload.max_pixels", 40_000_000)

	// Database defaults
	v.SetDefault("database.path", "data/users.db")

	v.SetDefault("suggestions.allergies", DefaultSuggestedAllergies)
	v.SetDefault("suggestions.health_conditions", DefaultSuggestedHealthConditions)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("OpenFoodFacts base URL is required (set FOODGUARD_OPENFOODFACTS_BASE_URL)")
	}

	if config.OpenFoodFacts.Timeout <= 0 {
		return fmt.Errorf("OpenFoodFacts timeout must be positive, got: %s", config.OpenFoodFacts.Timeout)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if len(config.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed upload extension is required")
	}

	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive, got: %d", config.Server.MaxUploadBytes)
	}

	if config.Upload.MaxPixels <= 0 {
		return fmt.Errorf("max image pixels must be positive, got: %d", config.Upload.MaxPixels)
	}

	return nil
}
