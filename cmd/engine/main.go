package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"prospector-engine/internal/config"
	"prospector-engine/internal/events"
	"prospector-engine/internal/httpapi"
	"prospector-engine/internal/phantom"
	"prospector-engine/internal/secrets"
	"prospector-engine/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("level=info msg=\"no .env file\"")
	}

	// Engine data dir: env wins, else local folder.
	dataDir := os.Getenv("PROSPECTOR_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable.
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.OverlayEnv(&cfg)
		normalized, vr := config.NormalizeAndValidate(cfg)
		if !vr.OK() {
			return cfg, fmt.Errorf("config invalid: %v", vr.Errors)
		}
		for _, warn := range vr.Warnings {
			log.Printf("level=warn msg=\"config\" warning=%q", warn)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	if cfg.Agent.ID == "" {
		log.Fatal("no agent configured: set agent.id in config or PHANTOM_AGENT_ID")
	}

	// The agent credential is required up front; without it every launch
	// would fail, so refuse to start at all.
	apiKey, err := secrets.GetAgentKey(secrets.AgentKeyringAccount(cfg))
	if err != nil {
		log.Fatalf("agent credential missing: %v", err)
	}

	agent := phantom.New(phantom.Config{
		APIKey:  apiKey,
		AgentID: cfg.Agent.ID,
		BaseURL: cfg.Agent.BaseURL,
	})

	batches := store.New(cfg.BatchTTL())
	batches.StartJanitor(context.Background(), time.Minute)

	hub := events.NewHub()

	deps := httpapi.Deps{
		Store:       batches,
		Hub:         hub,
		Agent:       agent,
		Limiter:     rate.NewLimiter(rate.Limit(cfg.Launch.RatePerSecond), cfg.Launch.Burst),
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	}

	handler := httpapi.Chain(
		httpapi.NewMux(deps),
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Recover,
		httpapi.Cors,
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("level=info msg=\"engine listening\" addr=%s agent=%s config=%s", addr, cfg.Agent.ID, userCfgPath)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.Serve(ln))
}
