package phantom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"prospector-engine/internal/domain"
)

const defaultBaseURL = "https://api.phantombuster.com/api/v2"

// Client talks to the agent API: launch a search run, fetch a run's output.
type Client struct {
	baseURL string
	apiKey  string
	agentID string
	hc      *http.Client
}

type Config struct {
	APIKey  string
	AgentID string
	BaseURL string // defaults to the public API
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		agentID: cfg.AgentID,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Launch starts an agent run pointed at searchURL and returns its container
// id. Transport and HTTP failures come back as *domain.HTTPError so the
// launcher can classify them for backoff.
func (c *Client) Launch(ctx context.Context, searchURL string) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"id": c.agentID,
		"argument": map[string]string{
			"searchUrl": searchURL,
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/agents/launch", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Phantombuster-Key-1", c.apiKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("agent launch: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode >= 400 {
		return "", &domain.HTTPError{
			StatusCode: res.StatusCode,
			RetryAfter: parseRetryAfter(res.Header.Get("Retry-After")),
			Err:        fmt.Errorf("agent launch: %s", trimBody(body)),
		}
	}

	id, err := decodeLaunch(body)
	if err != nil {
		return "", fmt.Errorf("agent launch: %w", err)
	}
	return id, nil
}

// Output is the outcome of one fetch-output call. A transport failure is
// reported in Err with Status set to error, never as a function error, so a
// polling loop can treat it as terminal-for-now without special-casing.
type Output struct {
	Status domain.Status
	Result json.RawMessage
	Err    error
}

// FetchOutput reads the current status and result payload of a container.
func (c *Client) FetchOutput(ctx context.Context, containerID string) Output {
	u := fmt.Sprintf("%s/agents/fetch-output?id=%s", c.baseURL, containerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Output{Status: domain.StatusError, Err: err}
	}
	req.Header.Set("X-Phantombuster-Key-1", c.apiKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return Output{Status: domain.StatusError, Err: fmt.Errorf("agent fetch-output: %w", err)}
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if res.StatusCode >= 400 {
		return Output{
			Status: domain.StatusError,
			Err:    fmt.Errorf("agent fetch-output: status %d: %s", res.StatusCode, trimBody(body)),
		}
	}

	status, result, err := decodeOutput(body)
	if err != nil {
		return Output{Status: domain.StatusError, Err: fmt.Errorf("agent fetch-output: %w", err)}
	}
	return Output{Status: status, Result: result}
}

// parseRetryAfter handles the seconds form of the header; zero if absent.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func trimBody(b []byte) string {
	const max = 256
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
