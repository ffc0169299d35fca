package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort      = "10000"
	DefaultChunkSize = 400
	DefaultHFBaseURL = "https://router.huggingface.co/v1"
	DefaultLogLevel  = "info"
	DefaultDBDriver  = "pgdriver"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingHFToken     = errors.New("HF_TOKEN is required")
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	RAG      RAGConfig      `yaml:"rag"`
	App      AppConfig      `yaml:"app"`
}

type ServerConfig struct {
	Port             string   `yaml:"port"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
}

type DatabaseConfig struct {
	URL    string `yaml:"url"`
	Driver string `yaml:"driver"`
	Debug  bool   `yaml:"debug"`
}

// LLMConfig holds the inference endpoint settings. The model id is not
// configurable, see models.InferenceModel.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
}

type RAGConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

type AppConfig struct {
	LogLevel string `yaml:"log_level"`
	Version  string `yaml:"version"`
}

// Load builds the process configuration. Values come from, in increasing
// priority: defaults, the optional YAML file at path, a .env file and the
// process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server:   ServerConfig{Port: DefaultPort},
		Database: DatabaseConfig{Driver: DefaultDBDriver},
		LLM:      LLMConfig{BaseURL: DefaultHFBaseURL},
		RAG:      RAGConfig{ChunkSize: DefaultChunkSize},
		App:      AppConfig{LogLevel: DefaultLogLevel, Version: "1.0.0"},
	}
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		cfg.Server.CORSAllowOrigins = splitList(origins)
	}
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Debug = getEnvAsBool("DB_DEBUG", cfg.Database.Debug)
	cfg.LLM.Key = getEnv("HF_TOKEN", cfg.LLM.Key)
	cfg.LLM.BaseURL = getEnv("HF_BASE_URL", cfg.LLM.BaseURL)
	cfg.RAG.ChunkSize = getEnvAsInt("CHUNK_SIZE", cfg.RAG.ChunkSize)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
}

// ValidateIngest checks the values the ingest job cannot run without.
func (c *Config) ValidateIngest() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// ValidateServer checks the values the query service cannot start without.
func (c *Config) ValidateServer() error {
	if err := c.ValidateIngest(); err != nil {
		return err
	}
	if c.LLM.Key == "" {
		return ErrMissingHFToken
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("Invalid integer, using default")
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Bool("default", defaultValue).Msg("Invalid boolean, using default")
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
