package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"

	"prospector-engine/internal/config"
	"prospector-engine/internal/domain"
	"prospector-engine/internal/events"
	"prospector-engine/internal/poll"
	"prospector-engine/internal/store"
)

type ResultsHandler struct {
	Store  *store.Batches
	Hub    *events.Hub
	Agent  Agent
	CfgVal *atomic.Value // config.Config
}

// GetByPath handles GET /results/{batchId}: poll the batch's still-running
// runs within the wait budget, then report merged + per-title results. A
// caller may need to come back: allFinished=false means re-poll later.
func (h ResultsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/results/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_batch_id", "invalid batch id")
		return
	}

	batch, ok := h.Store.Get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_batch", "no batch with id "+id)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	reqID := RequestIDFrom(r.Context())

	if len(batch.Running()) > 0 {
		done := poll.PollBatch(r.Context(), h.Agent, batch, poll.Options{
			Budget:   cfg.MaxWait(),
			Interval: cfg.PollInterval(),
			OnTerminal: func(run domain.Run) {
				h.Hub.Publish(events.Make(reqID, events.TypeRunFinished, map[string]any{
					"batchId": batch.ID,
					"title":   run.Title,
					"status":  string(run.Status),
				}))
			},
		})
		if done {
			h.Hub.Publish(events.Make(reqID, events.TypeBatchFinished, map[string]any{"batchId": batch.ID}))
		}
	}

	writeJSON(w, resultsViewOf(batch, cfg.Search.MaxResults))
}
