package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"prospector-engine/internal/config"
	"prospector-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // config.Config
}

// SetAgentKey stores the agent API key in the OS keychain. The running agent
// client keeps its key until restart.
func (h SecretsHandler) SetAgentKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	account := secrets.AgentKeyringAccount(cfg)
	if err := secrets.SetAgentKey(account, body.Key); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "account": account})
}
