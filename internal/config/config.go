package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Session struct {
		TTL string `yaml:"ttl"` // persisted session expiry, default 1h
	} `yaml:"session"`
	Questions struct {
		TTL string `yaml:"ttl"` // question bank cache, default 10m
	} `yaml:"questions"`
	RateLimit struct {
		GlobalPerMinute  int `yaml:"globalPerMinute"`
		SessionPerMinute int `yaml:"sessionPerMinute"`
		AnswerPerSecond  int `yaml:"answerPerSecond"`
	} `yaml:"ratelimit"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Limit returns raw when positive, else the fallback.
func Limit(raw, fallback int) int {
	if raw > 0 {
		return raw
	}
	return fallback
}
