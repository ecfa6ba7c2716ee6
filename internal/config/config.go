// Package config loads runtime settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultServerURL = "https://hanab.live"

// Config is everything a bot process needs to come up.
type Config struct {
	Username  string
	Password  string
	ServerURL string

	// RedisURL enables the replay export cache when set.
	RedisURL string

	// DatabaseURL enables the finished-game archive when set.
	DatabaseURL string

	LogLevel logrus.Level
}

// Load reads the environment for bot number index (1-based). The first
// bot uses HANABI_USERNAME/HANABI_PASSWORD; later ones append their index,
// so one .env file can hold a whole table of bots.
func Load(index int) (*Config, error) {
	// Missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	suffix := ""
	if index > 1 {
		suffix = strconv.Itoa(index)
	}

	cfg := &Config{
		Username:    os.Getenv("HANABI_USERNAME" + suffix),
		Password:    os.Getenv("HANABI_PASSWORD" + suffix),
		ServerURL:   strings.TrimSuffix(os.Getenv("HANABI_SERVER_URL"), "/"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    logrus.InfoLevel,
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("missing HANABI_USERNAME%s/HANABI_PASSWORD%s", suffix, suffix)
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := logrus.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("bad LOG_LEVEL %q: %w", raw, err)
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// LoadAnonymous reads the settings that need no credentials. Replay runs
// never talk to the websocket, so a missing username is fine there.
func LoadAnonymous() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerURL: strings.TrimSuffix(os.Getenv("HANABI_SERVER_URL"), "/"),
		RedisURL:  os.Getenv("REDIS_URL"),
		LogLevel:  logrus.InfoLevel,
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		cfg.LogLevel = level
	}
	return cfg
}

// WebsocketURL is the ws endpoint derived from the server URL.
func (c *Config) WebsocketURL() string {
	url := strings.Replace(c.ServerURL, "https://", "wss://", 1)
	url = strings.Replace(url, "http://", "ws://", 1)
	return url + "/ws"
}
