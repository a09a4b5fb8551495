package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{}
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Root,
	}))
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Search batches
	sh := SearchHandler{Store: d.Store, Hub: d.Hub, Agent: d.Agent, Limiter: d.Limiter, CfgVal: d.CfgVal}
	mux.HandleFunc("/search-profiles", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Run,
	}))

	rh := ResultsHandler{Store: d.Store, Hub: d.Hub, Agent: d.Agent, CfgVal: d.CfgVal}
	mux.HandleFunc("/results/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.GetByPath, // expects /results/{batchId}
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use CfgVal, NOT a snapshot cfg)
	kh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/agent", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: kh.SetAgentKey,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
