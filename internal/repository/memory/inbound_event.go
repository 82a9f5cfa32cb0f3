// Package memory holds process-local stores used when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"projectgateway/internal/domain"
)

// InboundEventLedger keeps inbound events in memory.
type InboundEventLedger struct {
	mu               sync.Mutex
	events           []*domain.InboundEvent
	seen             map[string]struct{}
	rejectDuplicates bool
}

// NewInboundEventLedger returns an empty ledger.
func NewInboundEventLedger(rejectDuplicates bool) *InboundEventLedger {
	return &InboundEventLedger{seen: make(map[string]struct{}), rejectDuplicates: rejectDuplicates}
}

// Append implements domain.EventLedger.
func (l *InboundEventLedger) Append(_ context.Context, e *domain.InboundEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := e.Source + "/" + e.DeliveryID
	if e.DeliveryID != "" {
		if _, dup := l.seen[key]; dup && l.rejectDuplicates {
			return domain.ErrDuplicateDelivery
		}
		l.seen[key] = struct{}{}
	}
	cp := *e
	cp.ID = uuid.NewString()
	e.ID = cp.ID
	l.events = append(l.events, &cp)
	return nil
}

// Events returns a snapshot of stored events in arrival order.
func (l *InboundEventLedger) Events() []domain.InboundEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.InboundEvent, len(l.events))
	for i, e := range l.events {
		out[i] = *e
	}
	return out
}
