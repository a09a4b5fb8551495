package config

import (
	"os"
	"strconv"
	"strings"
)

// OverlayEnv applies environment variables on top of the loaded config. The
// agent credential itself never lives here; see the secrets package.
func OverlayEnv(cfg *Config) {
	setStr := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setStr("PHANTOM_AGENT_ID", &cfg.Agent.ID)
	setStr("PHANTOM_BASE_URL", &cfg.Agent.BaseURL)
	setInt("PORT", &cfg.App.Port)
	setInt("MAX_WAIT_SECONDS", &cfg.Polling.MaxWaitSeconds)
	setInt("POLL_INTERVAL_SECONDS", &cfg.Polling.IntervalSeconds)
	setInt("MAX_RESULTS", &cfg.Search.MaxResults)
	setInt("LAUNCH_BASE_DELAY_MS", &cfg.Launch.BaseDelayMS)
	setInt("LAUNCH_MAX_RETRIES", &cfg.Launch.MaxRetries)
	setFloat("LAUNCH_BACKOFF_FACTOR", &cfg.Launch.BackoffFactor)
	setInt("LAUNCH_JITTER_MS", &cfg.Launch.JitterMS)
	setInt("BATCH_TTL_MINUTES", &cfg.Batches.TTLMinutes)

	if v := os.Getenv("DEFAULT_TITLES"); v != "" {
		var titles []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				titles = append(titles, t)
			}
		}
		if len(titles) > 0 {
			cfg.Search.DefaultTitles = titles
		}
	}
}
