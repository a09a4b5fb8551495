package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"prospector-engine/internal/config"
	"prospector-engine/internal/domain"
	"prospector-engine/internal/events"
	"prospector-engine/internal/phantom"
	"prospector-engine/internal/store"
)

// fakeAgent launches instantly and reports every container finished with a
// fixed payload.
type fakeAgent struct {
	nextID   int32
	launched int32
	output   phantom.Output
}

func (f *fakeAgent) Launch(_ context.Context, _ string) (string, error) {
	atomic.AddInt32(&f.launched, 1)
	n := atomic.AddInt32(&f.nextID, 1)
	return "cont-" + string(rune('0'+n)), nil
}

func (f *fakeAgent) FetchOutput(_ context.Context, _ string) phantom.Output {
	return f.output
}

func testDeps(t *testing.T, agent Agent) (Deps, *store.Batches) {
	t.Helper()
	cfg := config.Default()
	// No stagger in tests.
	cfg.Launch.BaseDelayMS = 0
	cfg.Launch.JitterMS = 0
	cfg.Polling.IntervalSeconds = 1

	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	batches := store.New(0)
	return Deps{
		Store:  batches,
		Hub:    events.NewHub(),
		Agent:  agent,
		CfgVal: &cfgVal,
	}, batches
}

func TestSearchProfiles_MissingCompanyIs400AndNoBatch(t *testing.T) {
	deps, batches := testDeps(t, &fakeAgent{})
	mux := NewMux(deps)

	req := httptest.NewRequest(http.MethodPost, "/search-profiles", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
	var e APIError
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("bad error payload: %v", err)
	}
	if e.Error.Code != "validation_error" {
		t.Fatalf("got code %q", e.Error.Code)
	}
	if e.Disclaimer == "" {
		t.Fatal("error payload missing disclaimer")
	}
	if batches.Len() != 0 {
		t.Fatalf("validation failure created %d batches", batches.Len())
	}
}

func TestSearchProfiles_CreatesOneRunPerTitle(t *testing.T) {
	agent := &fakeAgent{}
	deps, batches := testDeps(t, agent)
	mux := NewMux(deps)

	body := `{"company":"Acme","titles":["CTO","VP Engineering"]}`
	req := httptest.NewRequest(http.MethodPost, "/search-profiles", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	var view BatchView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if view.BatchID == "" || view.Company != "Acme" {
		t.Fatalf("bad batch view: %+v", view)
	}
	if len(view.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(view.Runs))
	}
	for _, title := range []string{"CTO", "VP Engineering"} {
		run, ok := view.Runs[title]
		if !ok {
			t.Fatalf("no run for %q", title)
		}
		if run.Status != "running" || run.ContainerID == "" || run.URL == "" {
			t.Fatalf("run %q not launched: %+v", title, run)
		}
	}
	if _, ok := batches.Get(view.BatchID); !ok {
		t.Fatal("batch not stored")
	}
}

func TestSearchProfiles_DefaultTitles(t *testing.T) {
	agent := &fakeAgent{}
	deps, _ := testDeps(t, agent)
	mux := NewMux(deps)

	req := httptest.NewRequest(http.MethodPost, "/search-profiles", strings.NewReader(`{"company":"Acme"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	var view BatchView
	_ = json.NewDecoder(rec.Body).Decode(&view)
	want := config.Default().Search.DefaultTitles
	if len(view.Titles) != len(want) {
		t.Fatalf("expected %d default titles, got %v", len(want), view.Titles)
	}
	if int(agent.launched) != len(want) {
		t.Fatalf("expected %d launches, got %d", len(want), agent.launched)
	}
}

func TestSearchProfiles_WaitReturnsMergedResults(t *testing.T) {
	agent := &fakeAgent{output: phantom.Output{
		Status: domain.StatusFinished,
		Result: json.RawMessage(`[{"url":"https://a"},{"url":"https://b"}]`),
	}}
	deps, _ := testDeps(t, agent)
	mux := NewMux(deps)

	body := `{"company":"Acme","titles":["CTO"],"wait":true}`
	req := httptest.NewRequest(http.MethodPost, "/search-profiles", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	var view ResultsView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !view.AllFinished {
		t.Fatal("expected allFinished")
	}
	if view.MergedCount != 2 || len(view.Merged) != 2 {
		t.Fatalf("expected 2 merged, got count=%d len=%d", view.MergedCount, len(view.Merged))
	}
}

func TestSearchProfiles_InvalidJSONIs400(t *testing.T) {
	deps, batches := testDeps(t, &fakeAgent{})
	mux := NewMux(deps)

	req := httptest.NewRequest(http.MethodPost, "/search-profiles", strings.NewReader(`{nope`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
	if batches.Len() != 0 {
		t.Fatal("invalid JSON created a batch")
	}
}

func TestSearchProfiles_MethodNotAllowed(t *testing.T) {
	deps, _ := testDeps(t, &fakeAgent{})
	mux := NewMux(deps)

	req := httptest.NewRequest(http.MethodGet, "/search-profiles", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got status %d", rec.Code)
	}
}
