package httpapi

import (
	"encoding/json"
	"net/http"
)

// Disclaimer rides along on every error payload: absent remote data is
// reported as absent, never substituted with invented values.
const Disclaimer = "missing or partial remote results are reported as absent; no data is fabricated"

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
	Disclaimer string `json:"disclaimer"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Disclaimer = Disclaimer
	WriteJSON(w, status, e)
}
