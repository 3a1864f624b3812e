package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	HTTPClient HTTPClientConfig `yaml:"http_client"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	API        APIConfig        `yaml:"api"`
	Render     RenderConfig     `yaml:"render"`
	Storage    StorageConfig    `yaml:"storage"`
}

type ServerConfig struct {
	Addr                string   `yaml:"addr"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	AllowOrigins        []string `yaml:"allow_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPClientConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxRetries     int `yaml:"max_retries"`
}

type LimiterConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// APIConfig points at the external slide-generation service. The streaming
// endpoint lives on its own URL, independent of BaseURL.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	StreamingURL   string `yaml:"streaming_url"`
	QuestionPrefix string `yaml:"question_prefix"`
}

type RenderConfig struct {
	FontPath string  `yaml:"font_path"`
	FontSize float64 `yaml:"font_size"`
}

type StorageConfig struct {
	Type       string `yaml:"type"`
	BasePath   string `yaml:"base_path"`
	BaseURL    string `yaml:"base_url"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	SQLitePath string `yaml:"sqlite_path"`
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnvOverrides(cfg), nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return applyEnvOverrides(cfg), nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 0,
			AllowOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTPClient: HTTPClientConfig{
			TimeoutSeconds: 0,
			MaxRetries:     0,
		},
		Limiter: LimiterConfig{
			MaxConcurrent: 10,
			RatePerSecond: 5,
		},
		API: APIConfig{
			BaseURL:      "http://localhost:8000",
			StreamingURL: "http://localhost:8000/streaming",
		},
		Render: RenderConfig{
			FontSize: 28,
		},
		Storage: StorageConfig{
			Type:       "local",
			BasePath:   "./output",
			BaseURL:    "/files",
			RedisAddr:  "localhost:6379",
			TTLSeconds: 86400,
			SQLitePath: "./data/decks.db",
		},
	}
}

func applyEnvOverrides(cfg *Config) *Config {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("STREAMING_URL"); v != "" {
		cfg.API.StreamingURL = v
	}
	if v := os.Getenv("QUESTION_PREFIX"); v != "" {
		cfg.API.QuestionPrefix = v
	}
	if v := os.Getenv("RENDER_FONT_PATH"); v != "" {
		cfg.Render.FontPath = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("STORAGE_BASE_PATH"); v != "" {
		cfg.Storage.BasePath = v
	}
	if v := os.Getenv("STORAGE_BASE_URL"); v != "" {
		cfg.Storage.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("HTTP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPClient.MaxRetries = n
		}
	}
	return cfg
}
