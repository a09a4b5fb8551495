package store

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"prospector-engine/internal/domain"
)

// Batches is the process-scoped batch table. Identifiers are v4 UUIDs, so
// concurrent creation never collides. Without a TTL the table grows for the
// life of the process.
type Batches struct {
	mu  sync.Mutex
	m   map[string]*domain.Batch
	ttl time.Duration // zero disables eviction
}

func New(ttl time.Duration) *Batches {
	return &Batches{
		m:   make(map[string]*domain.Batch),
		ttl: ttl,
	}
}

// Create allocates a new batch with an empty run set.
func (s *Batches) Create(company string, titles []string) *domain.Batch {
	b := domain.NewBatch(uuid.NewString(), company, titles)
	s.mu.Lock()
	s.m[b.ID] = b
	s.mu.Unlock()
	return b
}

func (s *Batches) Get(id string) (*domain.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[id]
	return b, ok
}

func (s *Batches) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// StartJanitor evicts batches older than the TTL on the given cadence until
// ctx is done. No-op when the TTL is zero.
func (s *Batches) StartJanitor(ctx context.Context, every time.Duration) {
	if s.ttl <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := s.evictExpired(time.Now()); n > 0 {
					log.Printf("level=info msg=\"evicted expired batches\" count=%d", n)
				}
			}
		}
	}()
}

func (s *Batches) evictExpired(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, b := range s.m {
		if now.Sub(b.CreatedAt) > s.ttl {
			delete(s.m, id)
			n++
		}
	}
	return n
}
