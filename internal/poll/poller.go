package poll

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"prospector-engine/internal/domain"
	"prospector-engine/internal/phantom"
)

// Agent is the one call the poller needs from the agent client.
type Agent interface {
	FetchOutput(ctx context.Context, containerID string) phantom.Output
}

type Options struct {
	Budget     time.Duration // wall-clock cap for the whole loop
	Interval   time.Duration // sleep between rounds
	OnTerminal func(run domain.Run)
}

// Step probes one run once and applies the outcome. Terminal runs are left
// untouched; a probe failure is terminal-for-now and recorded as an error
// without disturbing sibling runs.
func Step(ctx context.Context, agent Agent, b *domain.Batch, title string, onTerminal func(domain.Run)) {
	run, ok := b.Run(title)
	if !ok || run.Status.Terminal() {
		return
	}

	out := agent.FetchOutput(ctx, run.ContainerID)
	switch {
	case out.Err != nil:
		b.Complete(title, domain.StatusError, nil, out.Err.Error())
	case out.Status == domain.StatusFinished:
		// Result goes in verbatim; a finished run with no payload stays
		// payload-less.
		b.Complete(title, domain.StatusFinished, out.Result, "")
	case out.Status == domain.StatusAborted:
		b.Complete(title, domain.StatusAborted, nil, "agent run aborted")
	case out.Status == domain.StatusError:
		b.Complete(title, domain.StatusError, nil, "agent run failed")
	default:
		// still running
		return
	}

	if onTerminal != nil {
		if after, ok := b.Run(title); ok {
			onTerminal(after)
		}
	}
}

// PollBatch repeatedly probes every still-running run of the batch, all runs
// of a round concurrently, until none remain or the budget is spent. It
// reports whether every run reached a terminal state. Best-effort by
// contract: callers re-poll on false.
func PollBatch(ctx context.Context, agent Agent, b *domain.Batch, opts Options) bool {
	deadline := time.Now().Add(opts.Budget)

	for {
		titles := b.Running()
		if len(titles) == 0 {
			return b.AllTerminal()
		}

		var g errgroup.Group
		for _, title := range titles {
			title := title
			g.Go(func() error {
				Step(ctx, agent, b, title, opts.OnTerminal)
				return nil
			})
		}
		_ = g.Wait()

		if len(b.Running()) == 0 {
			return b.AllTerminal()
		}
		if time.Now().Add(opts.Interval).After(deadline) {
			log.Printf("level=info msg=\"poll budget spent\" batch=%s still_running=%d", b.ID, len(b.Running()))
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(opts.Interval):
		}
	}
}
