package launch

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"prospector-engine/internal/domain"
	"prospector-engine/internal/phantom"
)

// Agent is the one call the launcher needs from the agent client.
type Agent interface {
	Launch(ctx context.Context, searchURL string) (string, error)
}

// Launcher starts one agent run per title, sequentially, pacing launches so a
// big batch never hammers the remote service. The rate limiter is shared
// across batches.
type Launcher struct {
	Agent   Agent
	Limiter *rate.Limiter
}

type Options struct {
	BaseDelay     time.Duration // stagger between consecutive launches
	MaxRetries    int           // retries after the first failed attempt
	BackoffFactor float64       // delay multiplier per attempt
	Jitter        time.Duration // random extra delay, uniform in [0, Jitter)
	OnLaunched    func(run domain.Run)
}

// LaunchAll launches every title of the batch in order. A title that
// exhausts its retries is recorded as an error run; the remaining titles
// still launch. Every title ends up with exactly one run.
func (l *Launcher) LaunchAll(ctx context.Context, b *domain.Batch, opts Options) {
	for i, title := range b.Titles {
		if i > 0 {
			if !sleep(ctx, opts.BaseDelay+jitter(opts.Jitter)) {
				// Context gone: record the rest as never launched.
				l.record(b, title, "", phantom.BuildSearchURL(title, b.Company), ctx.Err().Error(), opts)
				continue
			}
		}
		if l.Limiter != nil {
			if err := l.Limiter.Wait(ctx); err != nil {
				l.record(b, title, "", phantom.BuildSearchURL(title, b.Company), err.Error(), opts)
				continue
			}
		}

		searchURL := phantom.BuildSearchURL(title, b.Company)
		id, err := l.launchWithRetry(ctx, searchURL, opts)
		if err != nil {
			log.Printf("level=warn msg=\"launch failed\" batch=%s title=%q err=%v", b.ID, title, err)
			l.record(b, title, "", searchURL, err.Error(), opts)
			continue
		}
		log.Printf("level=info msg=\"launched\" batch=%s title=%q container=%s", b.ID, title, id)
		l.record(b, title, id, searchURL, "", opts)
	}
}

func (l *Launcher) record(b *domain.Batch, title, containerID, searchURL, detail string, opts Options) {
	run := &domain.Run{
		Title:       title,
		SearchURL:   searchURL,
		ContainerID: containerID,
		Status:      domain.StatusRunning,
		Error:       detail,
	}
	if detail != "" {
		run.Status = domain.StatusError
	}
	b.AddRun(run)
	if opts.OnLaunched != nil {
		opts.OnLaunched(*run)
	}
}

// launchWithRetry retries a failed launch with exponential backoff. Failures
// that look like rate limiting or server trouble (429, 5xx, timeouts) back
// off twice as hard as plain client errors; a Retry-After header overrides
// the computed delay.
func (l *Launcher) launchWithRetry(ctx context.Context, searchURL string, opts Options) (string, error) {
	factor := opts.BackoffFactor
	if factor < 1 {
		factor = 2
	}

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(opts.BaseDelay, factor, attempt, lastErr)
			delay += jitter(opts.Jitter)
			log.Printf("level=warn msg=\"retrying launch\" attempt=%d max=%d delay=%s err=%v",
				attempt, opts.MaxRetries, delay, lastErr)
			if !sleep(ctx, delay) {
				return "", ctx.Err()
			}
		}

		id, err := l.Agent.Launch(ctx, searchURL)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func backoffDelay(base time.Duration, factor float64, attempt int, err error) time.Duration {
	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := float64(base)
	for i := 1; i < attempt; i++ {
		delay *= factor
	}
	if severe(err) {
		delay *= 2
	}
	return time.Duration(delay)
}

// severe marks failures worth backing off harder for: rate limits, request
// timeouts, server-side errors, and raw transport failures.
func severe(err error) bool {
	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 ||
			httpErr.StatusCode == 408 ||
			httpErr.StatusCode >= 500
	}
	return true
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
