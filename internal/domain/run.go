package domain

import (
	"encoding/json"
	"sync"
	"time"
)

// Status is the lifecycle state of a single agent run.
type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusAborted  Status = "aborted"
	StatusError    Status = "error"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusAborted || s == StatusError
}

// Run tracks the launch/poll/result lifecycle for one (title, company) search.
// Result holds whatever payload the agent returned, verbatim; nil means the
// agent returned nothing, and we keep it that way.
type Run struct {
	Title       string
	SearchURL   string
	ContainerID string
	Status      Status
	Result      json.RawMessage
	Error       string
}

// Batch groups the per-title runs submitted under one caller request.
// Runs are keyed by title; titles are unique within a batch.
type Batch struct {
	ID        string
	Company   string
	Titles    []string
	CreatedAt time.Time

	mu   sync.Mutex
	runs map[string]*Run
}

func NewBatch(id, company string, titles []string) *Batch {
	return &Batch{
		ID:        id,
		Company:   company,
		Titles:    titles,
		CreatedAt: time.Now().UTC(),
		runs:      make(map[string]*Run, len(titles)),
	}
}

// AddRun records the run for a title. The first run registered for a title
// wins; its container id is never overwritten afterwards.
func (b *Batch) AddRun(r *Run) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.runs[r.Title]; ok {
		return
	}
	b.runs[r.Title] = r
}

// Complete moves a run to a terminal state. Terminal runs are never reopened
// or rewritten: a second Complete for the same title is a no-op.
func (b *Batch) Complete(title string, status Status, result json.RawMessage, detail string) {
	if !status.Terminal() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.runs[title]
	if !ok || r.Status.Terminal() {
		return
	}
	r.Status = status
	r.Result = result
	r.Error = detail
}

// Run returns a copy of the run for a title.
func (b *Batch) Run(title string) (Run, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.runs[title]
	if !ok {
		return Run{}, false
	}
	return *r, true
}

// Running returns the titles whose runs are still in flight, in batch order.
func (b *Batch) Running() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, t := range b.Titles {
		if r, ok := b.runs[t]; ok && !r.Status.Terminal() {
			out = append(out, t)
		}
	}
	return out
}

// AllTerminal reports whether every title has a run and none is still running.
func (b *Batch) AllTerminal() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.Titles {
		r, ok := b.runs[t]
		if !ok || !r.Status.Terminal() {
			return false
		}
	}
	return true
}

// Snapshot returns copies of all registered runs, in batch title order.
func (b *Batch) Snapshot() []Run {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Run, 0, len(b.runs))
	for _, t := range b.Titles {
		if r, ok := b.runs[t]; ok {
			out = append(out, *r)
		}
	}
	return out
}
