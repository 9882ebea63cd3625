package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
	LLM      LLMConfig      `mapstructure:"llm"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// LLMConfig carries everything the chat gateway needs to reach the upstream
// providers. An empty APIKey means the provider is not configured.
type LLMConfig struct {
	Gemini         ProviderConfig `mapstructure:"gemini"`
	OpenAI         ProviderConfig `mapstructure:"openai"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
}

type ProviderConfig struct {
	APIKey       string   `mapstructure:"api_key"`
	BaseURL      string   `mapstructure:"base_url"`
	DefaultModel string   `mapstructure:"default_model"`
	Models       []string `mapstructure:"models"`
}

type JWTConfig struct {
	SecretKey          string        `mapstructure:"secret_key"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_token_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_token_expiry"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// envBindings maps config keys to the flat environment names used by
// deployments that predate the YAML file.
var envBindings = map[string]string{
	"server.port":         "SERVER_PORT",
	"database.driver":     "DATABASE_DRIVER",
	"database.url":        "DATABASE_URL",
	"llm.gemini.api_key":  "GEMINI_API_KEY",
	"llm.gemini.base_url": "GEMINI_BASE_URL",
	"llm.openai.api_key":  "OPENAI_API_KEY",
	"llm.openai.base_url": "OPENAI_BASE_URL",
	"jwt.secret_key":      "JWT_SECRET_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Authorization"})
	v.SetDefault("cors.expose_headers", []string{"Content-Type", "X-Request-ID"})

	v.SetDefault("llm.request_timeout", 120*time.Second)
	v.SetDefault("llm.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.gemini.default_model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.models", []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"})
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai.default_model", "gpt-4o")
	v.SetDefault("llm.openai.models", []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"})

	v.SetDefault("jwt.secret_key", "haruchat-secret-key-change-in-production")
	v.SetDefault("jwt.access_token_expiry", 24*time.Hour)
	v.SetDefault("jwt.refresh_token_expiry", 30*24*time.Hour)
}

// LoadConfig reads the optional .env file at envPath into the process
// environment, then the optional YAML file at configPath, and lets
// environment variables override both. Empty paths are skipped.
func LoadConfig(configPath string, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
