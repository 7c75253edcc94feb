package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	API   APIConfig  `toml:"api"`
	Poll  PollConfig `toml:"poll"`
	Feeds []string   `toml:"feeds"`
	Log   LogConfig  `toml:"log"`
}

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type PollConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Poll: PollConfig{IntervalSeconds: 2},
		Feeds: []string{
			"https://www.nature.com/nature.rss",
			"https://feeds.arstechnica.com/arstechnica/index",
			"https://www.technologyreview.com/feed/",
			"https://feeds.bbci.co.uk/news/technology/rss.xml",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the config file at path, or the default location
// (<UserConfigDir>/ryeku/config.toml) when path is empty. A missing file is
// not an error; defaults apply. RYEKU_API_URL overrides the API base URL.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "ryeku", "config.toml")
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if v := os.Getenv("RYEKU_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	return cfg, nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}
