package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/faqbot"
	"github.com/flarexio/faqbot/auth"
	"github.com/flarexio/faqbot/history"
	"github.com/flarexio/faqbot/persistence/redis"
)

type AppConfig struct {
	faqbot.Config `yaml:",inline"`

	Redis   redis.Config   `yaml:"redis"`
	Auth    auth.Config    `yaml:"auth"`
	History history.Config `yaml:"history"`
	HTTP    HTTPConfig     `yaml:"http"`
}

type HTTPConfig struct {
	CORSOrigins  []string `yaml:"corsOrigins"`
	SecureCookie bool     `yaml:"secureCookie"`
}

// AuthEnabled reports whether accounts and history can be served. Both need
// a signing secret and a Redis store; there is no built-in secret.
func (cfg AppConfig) AuthEnabled() bool {
	return cfg.Auth.Secret != "" && cfg.Redis.Address != ""
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Config: faqbot.DefaultConfig(),
		Auth: auth.Config{
			TokenTTL: auth.DefaultTokenTTL,
		},
		History: history.Config{
			Limit:       history.DefaultLimit,
			Suggestions: history.DefaultSuggestions,
		},
	}
}

// loadConfig layers the defaults, the YAML file, .env files and the process
// environment, in that order. A missing config file is not an error.
func loadConfig(path, configFile string) (AppConfig, error) {
	cfg := defaultAppConfig()

	if configFile == "" {
		configFile = filepath.Join(path, "config.yaml")
	}

	f, err := os.Open(configFile)
	switch {
	case err == nil:
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("%w: %s: %w", faqbot.ErrConfig, configFile, err)
		}

	case errors.Is(err, fs.ErrNotExist):

	default:
		return cfg, err
	}

	for _, env := range []string{filepath.Join(path, ".env"), ".env"} {
		if err := godotenv.Load(env); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s: %w", faqbot.ErrConfig, env, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if value := os.Getenv("REDIS_ADDR"); value != "" {
		cfg.Redis.Address = value
	}

	if value := os.Getenv("REDIS_PASSWORD"); value != "" {
		cfg.Redis.Password = value
	}

	if value := os.Getenv("JWT_SECRET"); value != "" {
		cfg.Auth.Secret = value
	}

	if value := os.Getenv("CORS_ORIGINS"); value != "" {
		cfg.HTTP.CORSOrigins = strings.Split(value, ",")
	}

	if p := cfg.Source.Path; p != "" && !filepath.IsAbs(p) {
		cfg.Source.Path = filepath.Join(path, p)
	}

	if cfg.Vector.Path == "" {
		cfg.Vector.Path = filepath.Join(path, "vectors")
	}

	cfg.Completion.Instruction = cfg.Instruction()

	return cfg, cfg.Validate()
}
