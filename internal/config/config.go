package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port int `yaml:"port"`
	} `yaml:"app"`

	Agent struct {
		ID      string `yaml:"id"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"agent"`

	Search struct {
		DefaultTitles []string `yaml:"default_titles"`
		MaxResults    int      `yaml:"max_results"`
	} `yaml:"search"`

	Polling struct {
		MaxWaitSeconds  int `yaml:"max_wait_seconds"`
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"polling"`

	Launch struct {
		BaseDelayMS   int     `yaml:"base_delay_ms"`
		MaxRetries    int     `yaml:"max_retries"`
		BackoffFactor float64 `yaml:"backoff_factor"`
		JitterMS      int     `yaml:"jitter_ms"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"launch"`

	Batches struct {
		TTLMinutes int `yaml:"ttl_minutes"` // 0 keeps batches forever
	} `yaml:"batches"`
}

// Default returns the built-in configuration; everything except the agent id
// and credential works out of the box.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.Search.DefaultTitles = []string{
		"Software Engineer",
		"Engineering Manager",
		"Product Manager",
		"Recruiter",
	}
	cfg.Search.MaxResults = 500
	cfg.Polling.MaxWaitSeconds = 120
	cfg.Polling.IntervalSeconds = 5
	cfg.Launch.BaseDelayMS = 2000
	cfg.Launch.MaxRetries = 3
	cfg.Launch.BackoffFactor = 2.0
	cfg.Launch.JitterMS = 750
	cfg.Launch.RatePerSecond = 0.5
	cfg.Launch.Burst = 1
	return cfg
}

// Load reads the yaml file at path over the built-in defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) MaxWait() time.Duration {
	return time.Duration(c.Polling.MaxWaitSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

func (c Config) LaunchBaseDelay() time.Duration {
	return time.Duration(c.Launch.BaseDelayMS) * time.Millisecond
}

func (c Config) LaunchJitter() time.Duration {
	return time.Duration(c.Launch.JitterMS) * time.Millisecond
}

func (c Config) BatchTTL() time.Duration {
	return time.Duration(c.Batches.TTLMinutes) * time.Minute
}
