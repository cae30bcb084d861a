// Package feed implements catalog change-notification transports.
package feed

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// Memory is an in-process feed. The product service publishes to it after every write.
type Memory struct {
	mu     sync.Mutex
	subs   map[int]chan domain.CatalogEvent
	next   int
	buffer int
}

// NewMemory builds a feed whose subscribers buffer up to buffer events.
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 16
	}
	return &Memory{subs: make(map[int]chan domain.CatalogEvent), buffer: buffer}
}

// Subscribe implements reconcile.ChangeFeed.
func (m *Memory) Subscribe(ctx context.Context) (<-chan domain.CatalogEvent, error) {
	m.mu.Lock()
	id := m.next
	m.next++
	ch := make(chan domain.CatalogEvent, m.buffer)
	m.subs[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// PublishCatalogEvent fans ev out to every subscriber. A full subscriber already has a refresh pending, since
// every event triggers a full catalog reload, so the event is dropped for it.
func (m *Memory) PublishCatalogEvent(_ context.Context, ev domain.CatalogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}
