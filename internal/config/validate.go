package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus the validation result.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	// Normalize the default titles: trim, drop empties, dedupe
	// case-insensitively while keeping first-seen order.
	seen := map[string]bool{}
	var titles []string
	for _, t := range out.Search.DefaultTitles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		titles = append(titles, t)
	}
	out.Search.DefaultTitles = titles

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if len(out.Search.DefaultTitles) == 0 {
		res.addErr("search.default_titles must have at least 1 title")
	}
	if out.Search.MaxResults <= 0 {
		res.addErr("search.max_results must be > 0")
	}

	if out.Polling.MaxWaitSeconds <= 0 {
		res.addErr("polling.max_wait_seconds must be > 0")
	}
	if out.Polling.IntervalSeconds <= 0 {
		res.addErr("polling.interval_seconds must be > 0")
	} else if out.Polling.IntervalSeconds < 2 {
		res.addWarn("polling.interval_seconds is very low (%d) and may rate-limit the agent API.", out.Polling.IntervalSeconds)
	}
	if out.Polling.MaxWaitSeconds > 600 {
		res.addWarn("polling.max_wait_seconds (%d) holds HTTP requests open a long time; callers may time out first.", out.Polling.MaxWaitSeconds)
	}

	if out.Launch.MaxRetries < 0 {
		res.addErr("launch.max_retries must be >= 0")
	}
	if out.Launch.BackoffFactor < 1 {
		res.addErr("launch.backoff_factor must be >= 1")
	}
	if out.Launch.BaseDelayMS < 0 {
		res.addErr("launch.base_delay_ms must be >= 0")
	}
	if out.Launch.RatePerSecond <= 0 {
		res.addErr("launch.rate_per_second must be > 0")
	}
	if out.Launch.Burst <= 0 {
		res.addErr("launch.burst must be >= 1")
	}

	if out.Batches.TTLMinutes < 0 {
		res.addErr("batches.ttl_minutes must be >= 0")
	}
	if out.Batches.TTLMinutes == 0 {
		res.addWarn("batches.ttl_minutes is 0; the batch table grows for the life of the process.")
	}

	return out, res
}
