package httpapi

import (
	"fmt"
	"net/http"
	"time"
)

type HealthHandler struct{}

// Root is the plain-text liveness response at GET /.
func (h HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such route")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "prospector engine is up")
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"ok": true, "time": time.Now().Format(time.RFC3339)})
}
