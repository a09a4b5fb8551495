package httpapi

import (
	"prospector-engine/internal/domain"
	"prospector-engine/internal/results"
)

// RunView is the wire form of one run's state.
type RunView struct {
	ContainerID string `json:"containerId,omitempty"`
	Status      string `json:"status"`
	URL         string `json:"url"`
	Error       string `json:"error,omitempty"`
}

func runViewOf(run domain.Run) RunView {
	return RunView{
		ContainerID: run.ContainerID,
		Status:      string(run.Status),
		URL:         run.SearchURL,
		Error:       run.Error,
	}
}

// BatchView is the fire-and-poll response of POST /search-profiles.
type BatchView struct {
	BatchID string             `json:"batchId"`
	Company string             `json:"company"`
	Titles  []string           `json:"titles"`
	Runs    map[string]RunView `json:"runs"`
}

func batchViewOf(b *domain.Batch) BatchView {
	v := BatchView{
		BatchID: b.ID,
		Company: b.Company,
		Titles:  b.Titles,
		Runs:    make(map[string]RunView, len(b.Titles)),
	}
	for _, run := range b.Snapshot() {
		v.Runs[run.Title] = runViewOf(run)
	}
	return v
}

// TitleResult carries one run's normalized result list.
type TitleResult struct {
	Status      string `json:"status"`
	ContainerID string `json:"containerId,omitempty"`
	Count       int    `json:"count"`
	Results     []any  `json:"results"`
	Error       string `json:"error,omitempty"`
}

// ResultsView is the response of GET /results/{batchId}.
type ResultsView struct {
	BatchID     string                 `json:"batchId"`
	Company     string                 `json:"company"`
	Titles      []string               `json:"titles"`
	AllFinished bool                   `json:"allFinished"`
	MergedCount int                    `json:"mergedCount"`
	Merged      []any                  `json:"merged"`
	PerTitle    map[string]TitleResult `json:"perTitle"`
}

// resultsViewOf merges every run's normalized items, first-seen-wins, and
// truncates the merged and per-title lists to maxResults.
func resultsViewOf(b *domain.Batch, maxResults int) ResultsView {
	v := ResultsView{
		BatchID:     b.ID,
		Company:     b.Company,
		Titles:      b.Titles,
		AllFinished: b.AllTerminal(),
		PerTitle:    make(map[string]TitleResult, len(b.Titles)),
	}

	var all []any
	for _, run := range b.Snapshot() {
		items := results.Normalize(run.Result)
		all = append(all, items...)
		v.PerTitle[run.Title] = TitleResult{
			Status:      string(run.Status),
			ContainerID: run.ContainerID,
			Count:       len(items),
			Results:     orEmpty(results.Truncate(items, maxResults)),
			Error:       run.Error,
		}
	}

	merged := results.Dedupe(all)
	v.MergedCount = len(merged)
	v.Merged = orEmpty(results.Truncate(merged, maxResults))
	return v
}

// orEmpty keeps empty lists as [] on the wire instead of null.
func orEmpty(items []any) []any {
	if items == nil {
		return []any{}
	}
	return items
}
