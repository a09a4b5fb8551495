package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"

	"prospector-engine/internal/config"
	"prospector-engine/internal/domain"
	"prospector-engine/internal/events"
	"prospector-engine/internal/launch"
	"prospector-engine/internal/poll"
	"prospector-engine/internal/store"
)

type SearchHandler struct {
	Store   *store.Batches
	Hub     *events.Hub
	Agent   Agent
	Limiter *rate.Limiter
	CfgVal  *atomic.Value // config.Config
}

type searchRequest struct {
	Company string   `json:"company"`
	Titles  []string `json:"titles"`
	// Wait turns the request synchronous: launch, then poll within the
	// configured budget and return merged results directly.
	Wait bool `json:"wait"`
}

func (h SearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON body: "+err.Error())
		return
	}

	company := strings.TrimSpace(req.Company)
	if company == "" {
		// No batch is created on validation failure.
		WriteError(w, r, http.StatusBadRequest, "validation_error", "company is required")
		return
	}

	titles := normalizeTitles(req.Titles)
	if len(titles) == 0 {
		titles = cfg.Search.DefaultTitles
	}

	batch := h.Store.Create(company, titles)
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.Make(reqID, events.TypeBatchCreated, map[string]any{
		"batchId": batch.ID,
		"company": company,
		"titles":  titles,
	}))

	launcher := &launch.Launcher{Agent: h.Agent, Limiter: h.Limiter}
	opts := launch.Options{
		BaseDelay:     cfg.LaunchBaseDelay(),
		MaxRetries:    cfg.Launch.MaxRetries,
		BackoffFactor: cfg.Launch.BackoffFactor,
		Jitter:        cfg.LaunchJitter(),
		OnLaunched: func(run domain.Run) {
			h.Hub.Publish(events.Make(reqID, events.TypeRunLaunched, map[string]any{
				"batchId": batch.ID,
				"title":   run.Title,
				"run":     runViewOf(run),
			}))
		},
	}
	// Launches run off a background context: a caller hanging up must not
	// cancel agent jobs mid-batch.
	launcher.LaunchAll(context.Background(), batch, opts)

	if req.Wait {
		done := poll.PollBatch(r.Context(), h.Agent, batch, poll.Options{
			Budget:     cfg.MaxWait(),
			Interval:   cfg.PollInterval(),
			OnTerminal: h.publishTerminal(reqID, batch.ID),
		})
		if done {
			h.Hub.Publish(events.Make(reqID, events.TypeBatchFinished, map[string]any{"batchId": batch.ID}))
		}
		writeJSON(w, resultsViewOf(batch, cfg.Search.MaxResults))
		return
	}

	writeJSON(w, batchViewOf(batch))
}

func (h SearchHandler) publishTerminal(reqID, batchID string) func(domain.Run) {
	return func(run domain.Run) {
		h.Hub.Publish(events.Make(reqID, events.TypeRunFinished, map[string]any{
			"batchId": batchID,
			"title":   run.Title,
			"status":  string(run.Status),
		}))
	}
}

// normalizeTitles trims, drops empties, and dedupes while keeping order;
// titles must be unique within a batch.
func normalizeTitles(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
