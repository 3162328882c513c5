// Package config loads and holds the application configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Conf is the global configuration, populated exactly once by Init at process start.
var Conf Config

// Config mirrors the structure of config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Search   SearchConfig   `mapstructure:"search"`
	Chat     ChatConfig     `mapstructure:"chat"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig groups all backing-store connection settings.
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig holds the MySQL connection settings.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds the token signing settings.
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig holds the settings for the search-analytics stream.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// MinIOConfig holds the object-storage settings used for catalog exports.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// GeminiConfig holds the generative-language API settings.
// An empty APIKey switches search into mock mode instead of failing requests.
type GeminiConfig struct {
	APIKey     string                 `mapstructure:"api_key"`
	BaseURL    string                 `mapstructure:"base_url"`
	Model      string                 `mapstructure:"model"`
	Generation GeminiGenerationConfig `mapstructure:"generation"`
}

// GeminiGenerationConfig controls sampling for ranking and chat calls.
type GeminiGenerationConfig struct {
	Temperature     float64 `mapstructure:"temperature"`
	TopK            int     `mapstructure:"top_k"`
	TopP            float64 `mapstructure:"top_p"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

// SearchConfig holds ranking-proxy settings.
type SearchConfig struct {
	// MaxResults caps every shortlist, ranked or fallback.
	MaxResults int `mapstructure:"max_results"`
}

// ChatConfig holds assistant settings.
type ChatConfig struct {
	Rules        string `mapstructure:"rules"`
	HistoryLimit int    `mapstructure:"history_limit"`
}

// Init reads the YAML file at configPath and unmarshals it into Conf.
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read config file: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}
}
