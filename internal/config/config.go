package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Aggregation struct {
		PolitenessDelayMS     int      `yaml:"politeness_delay_ms"`
		MaxSources            int      `yaml:"max_sources"`
		MaxAfterSpecialized   int      `yaml:"max_after_specialized"`
		AdapterTimeoutSeconds int      `yaml:"adapter_timeout_seconds"`
		ScrapeCap             int      `yaml:"scrape_cap"`
		Priority              []string `yaml:"priority"`
		GridAPIURL            string   `yaml:"grid_api_url"`
	} `yaml:"aggregation"`

	Refresh struct {
		Enabled         bool     `yaml:"enabled"`
		IntervalSeconds int      `yaml:"interval_seconds"`
		Locations       []string `yaml:"locations"`
	} `yaml:"refresh"`

	Email struct {
		Enabled        bool     `yaml:"enabled"`
		IMAPHost       string   `yaml:"imap_host"`
		IMAPPort       int      `yaml:"imap_port"`
		Username       string   `yaml:"username"`
		KeyringAccount string   `yaml:"keyring_account"`
		Senders        []string `yaml:"senders"`
		MaxMessages    int      `yaml:"max_messages"`
	} `yaml:"email"`

	Parcels struct {
		Enabled   bool              `yaml:"enabled"`
		Shapefile string            `yaml:"shapefile"`
		County    string            `yaml:"county"`
		Fields    map[string]string `yaml:"fields"`
	} `yaml:"parcels"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// PolitenessDelay is the pause inserted between consecutive source fetches.
func (c Config) PolitenessDelay() time.Duration {
	if c.Aggregation.PolitenessDelayMS <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.Aggregation.PolitenessDelayMS) * time.Millisecond
}

func (c Config) AdapterTimeout() time.Duration {
	if c.Aggregation.AdapterTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Aggregation.AdapterTimeoutSeconds) * time.Second
}
