package httpapi

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"

	"prospector-engine/internal/config"
	"prospector-engine/internal/events"
	"prospector-engine/internal/phantom"
	"prospector-engine/internal/store"
)

// Agent is the slice of the agent client the handlers need. *phantom.Client
// satisfies it; tests substitute fakes.
type Agent interface {
	Launch(ctx context.Context, searchURL string) (string, error)
	FetchOutput(ctx context.Context, containerID string) phantom.Output
}

type Deps struct {
	Store *store.Batches
	Hub   *events.Hub
	Agent Agent

	// Launch pacing, shared across concurrent batches.
	Limiter *rate.Limiter

	// Atomic store of config.Config, reloadable via PUT /config.
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
